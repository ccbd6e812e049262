package control

import (
	"context"
	"sync"
	"testing"

	"github.com/muurk/bravia/internal/device"
	"github.com/muurk/bravia/internal/protocol"
)

// step is one expected request and the canned reply.
type step struct {
	typ        protocol.MessageType
	command    string
	parameters string // "" matches a request with default parameters
	ignore     bool
	answer     string
	err        error
}

type scriptedSender struct {
	t     *testing.T
	mu    sync.Mutex
	steps []step
	next  int
}

func newScript(t *testing.T, steps ...step) *scriptedSender {
	t.Helper()
	s := &scriptedSender{t: t, steps: steps}
	t.Cleanup(func() {
		if s.next != len(s.steps) {
			t.Errorf("only %d of %d scripted requests were sent", s.next, len(s.steps))
		}
	})
	return s
}

func (s *scriptedSender) Send(ctx context.Context, req device.Request) (*protocol.Packet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.next >= len(s.steps) {
		s.t.Fatalf("unexpected request %c %s %q", req.Type, req.Command, req.Parameters)
	}
	st := s.steps[s.next]
	s.next++

	if req.Type != st.typ || req.Command != st.command || req.Parameters != st.parameters {
		s.t.Fatalf("request %d = %c %s %q, want %c %s %q",
			s.next, req.Type, req.Command, req.Parameters, st.typ, st.command, st.parameters)
	}
	if req.IgnoreDeviceError != st.ignore {
		s.t.Errorf("request %d IgnoreDeviceError = %v, want %v", s.next, req.IgnoreDeviceError, st.ignore)
	}
	if st.err != nil {
		return nil, st.err
	}
	return &protocol.Packet{Type: protocol.Answer, Command: st.command, Parameters: st.answer}, nil
}

func enquiry(command, answer string) step {
	return step{typ: protocol.Enquiry, command: command, answer: answer}
}

func controlStep(command, parameters, answer string) step {
	return step{typ: protocol.Control, command: command, parameters: parameters, answer: answer}
}

const (
	on      = protocol.ParametersOn
	off     = protocol.ParametersOff
	success = protocol.SuccessParameters
	na      = protocol.NotAvailableParameters
)
