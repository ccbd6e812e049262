package device

import (
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/bravia/internal/logging"
	"github.com/muurk/bravia/internal/protocol"
)

const readBufferSize = 1024

// Request is one outbound Control or Enquiry packet.
type Request struct {
	Type       protocol.MessageType
	Command    string
	Parameters string // empty means protocol.DefaultParameters

	// IgnoreDeviceError returns an all-F answer to the caller instead of
	// failing with ErrDevice. Some enquiries use that value to mean "none".
	IgnoreDeviceError bool
}

// CloseEvent describes the end of a connection.
type CloseEvent struct {
	// Intentional is true when Disconnect closed the connection and false
	// when the display or the network did.
	Intentional bool
	// Err is the read error that ended an unintentional close, nil on a clean EOF.
	Err error
}

type result struct {
	packet *protocol.Packet
	err    error
}

type pendingRequest struct {
	command           string
	ignoreDeviceError bool
	done              chan result
}

// complete delivers the outcome. Callers remove the request from the
// pending slot under the device lock first, so it is completed once.
func (p *pendingRequest) complete(pkt *protocol.Packet, err error) {
	select {
	case p.done <- result{packet: pkt, err: err}:
	default:
	}
}

// Device is a connection to one display. It is safe for concurrent use:
// concurrent Send calls are served one at a time in arrival order.
type Device struct {
	address string
	opts    options

	mu         sync.Mutex
	state      State
	conn       net.Conn
	pending    *pendingRequest
	readerDone chan struct{}
	peerClosed chan struct{}
	closed     chan struct{} // closed when an in-progress Disconnect finishes

	// slot admits one request at a time; waiting senders queue on it.
	slot chan struct{}

	observers observers
}

// New validates the address and returns a disconnected Device.
func New(address string, opts ...Option) (*Device, error) {
	if err := ValidateAddress(address); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := ValidateModel(o.model); err != nil {
		return nil, err
	}
	if o.port <= 0 || o.port > 65535 {
		return nil, NewValidationError("port %d out of range", o.port)
	}
	if o.dialer == nil {
		o.dialer = &net.Dialer{Timeout: o.dialTimeout}
	}

	return &Device{
		address: address,
		opts:    o,
		state:   Disconnected,
		slot:    make(chan struct{}, 1),
	}, nil
}

// Address returns the display's IPv4 address
func (d *Device) Address() string {
	return d.address
}

// Model returns the model name given at construction, possibly empty
func (d *Device) Model() string {
	return d.opts.model
}

// State returns the current connection state
func (d *Device) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// OnClose registers fn to run whenever the connection ends. The returned
// function removes the registration.
func (d *Device) OnClose(fn func(CloseEvent)) (unsubscribe func()) {
	return d.observers.addClose(fn)
}

// OnNotify registers fn to receive decoded notifications. fn runs on the
// reader goroutine in packet order and must not block.
func (d *Device) OnNotify(fn func(protocol.Notification)) (unsubscribe func()) {
	return d.observers.addNotify(fn)
}

func (d *Device) setState(s State) {
	if d.state == s {
		return
	}
	logging.LogStateChange(d.address, d.state.String(), s.String())
	d.state = s
}

// Connect opens the control connection. It is a no-op when already
// connected and fails with ErrAlreadyConnecting while another Connect or a
// Disconnect is in progress.
func (d *Device) Connect(ctx context.Context) error {
	d.mu.Lock()
	switch d.state {
	case Connected:
		d.mu.Unlock()
		return nil
	case Connecting:
		d.mu.Unlock()
		return &Error{Type: ErrTypeAlreadyConnecting, Message: "a connection is being established", Address: d.address}
	case Disconnecting:
		d.mu.Unlock()
		return &Error{Type: ErrTypeAlreadyConnecting, Message: "a disconnect is in progress", Address: d.address}
	}
	d.setState(Connecting)
	d.mu.Unlock()

	target := net.JoinHostPort(d.address, strconv.Itoa(d.opts.port))
	logging.LogConnection(target, "connecting")

	conn, err := d.opts.dialer.DialContext(ctx, "tcp", target)

	d.mu.Lock()
	if err != nil {
		d.setState(Disconnected)
		d.mu.Unlock()
		logging.Warn("Connect failed", zap.String("address", target), zap.Error(err))
		return ClassifyNetworkError(err, d.address)
	}
	d.conn = conn
	d.readerDone = make(chan struct{})
	d.peerClosed = make(chan struct{})
	d.setState(Connected)
	readerDone := d.readerDone
	d.mu.Unlock()

	logging.LogConnection(target, "connected")
	go d.readLoop(conn, readerDone)
	return nil
}

// Disconnect closes the connection gracefully: it half-closes the write
// side, then waits for the display to close its side, for the close grace
// period, or for the disconnect ceiling, whichever comes first.
// A request still pending fails with ErrConnectionLost.
func (d *Device) Disconnect(ctx context.Context) error {
	d.mu.Lock()
	switch d.state {
	case Disconnected:
		d.mu.Unlock()
		return nil
	case Connecting:
		d.mu.Unlock()
		return &Error{Type: ErrTypeAlreadyConnecting, Message: "a connection is being established", Address: d.address}
	case Disconnecting:
		closed := d.closed
		d.mu.Unlock()
		select {
		case <-closed:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	ceiling := time.NewTimer(d.opts.disconnectTimeout)
	defer ceiling.Stop()

	d.setState(Disconnecting)
	conn := d.conn
	readerDone := d.readerDone
	peerClosed := d.peerClosed
	pending := d.pending
	d.pending = nil
	closed := make(chan struct{})
	d.closed = closed
	d.mu.Unlock()

	if pending != nil {
		pending.complete(nil, &Error{
			Type:    ErrTypeConnectionLost,
			Message: "disconnected while waiting for answer",
			Command: pending.command,
			Address: d.address,
		})
	}

	logging.LogConnection(d.address, "disconnecting")

	// The half-close is the local close acknowledgement the grace period
	// is measured from.
	var grace <-chan time.Time
	if cw, ok := conn.(interface{ CloseWrite() error }); ok && cw.CloseWrite() == nil {
		t := time.NewTimer(d.opts.closeGrace)
		defer t.Stop()
		grace = t.C
	} else {
		ready := make(chan time.Time)
		close(ready)
		grace = ready
	}

	select {
	case <-peerClosed:
	case <-grace:
	case <-ceiling.C:
	case <-ctx.Done():
	}

	_ = conn.Close()
	<-readerDone

	d.mu.Lock()
	d.conn = nil
	d.setState(Disconnected)
	d.closed = nil
	d.mu.Unlock()
	close(closed)

	logging.LogConnection(d.address, "disconnected")
	d.observers.emitClose(CloseEvent{Intentional: true})
	return nil
}

// Send writes one request and waits for the Answer with the same command.
//
// Concurrent calls are queued in arrival order; a call whose ctx ends while
// queued returns ctx's error without touching the socket. After the write
// the call waits up to the response timeout. If the connection closes first
// it fails with ErrConnectionLost.
func (d *Device) Send(ctx context.Context, req Request) (*protocol.Packet, error) {
	if d.State() != Connected {
		return nil, &Error{Type: ErrTypeNotConnected, Message: "not connected", Command: req.Command, Address: d.address}
	}

	buf, err := protocol.Encode(req.Type, req.Command, req.Parameters)
	if err != nil {
		return nil, &Error{Type: ErrTypeValidation, Message: err.Error(), Command: req.Command, Address: d.address, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	select {
	case d.slot <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-d.slot }()

	d.mu.Lock()
	if d.state != Connected || d.conn == nil {
		d.mu.Unlock()
		return nil, &Error{Type: ErrTypeNotConnected, Message: "not connected", Command: req.Command, Address: d.address}
	}
	p := &pendingRequest{
		command:           req.Command,
		ignoreDeviceError: req.IgnoreDeviceError,
		done:              make(chan result, 1),
	}
	d.pending = p
	conn := d.conn
	d.mu.Unlock()

	logging.LogPacket(d.address, "sent", byte(req.Type), req.Command, string(buf[7:23]))

	_ = conn.SetWriteDeadline(time.Now().Add(d.opts.writeTimeout))
	n, err := conn.Write(buf)
	if err != nil || n != len(buf) {
		d.clearPending(p)
		return nil, &Error{
			Type:    ErrTypeWriteIncomplete,
			Message: "wrote " + strconv.Itoa(n) + " of " + strconv.Itoa(len(buf)) + " bytes",
			Command: req.Command,
			Address: d.address,
			Err:     err,
		}
	}

	timer := time.NewTimer(d.opts.responseTimeout)
	defer timer.Stop()

	select {
	case r := <-p.done:
		return r.packet, r.err
	case <-timer.C:
		d.clearPending(p)
		return nil, &Error{
			Type:      ErrTypeTimeout,
			Message:   "no answer within " + d.opts.responseTimeout.String(),
			Command:   req.Command,
			Address:   d.address,
			Retryable: true,
		}
	case <-ctx.Done():
		d.clearPending(p)
		return nil, ctx.Err()
	}
}

func (d *Device) clearPending(p *pendingRequest) {
	d.mu.Lock()
	if d.pending == p {
		d.pending = nil
	}
	d.mu.Unlock()
}

func (d *Device) readLoop(conn net.Conn, done chan struct{}) {
	defer close(done)

	framer := protocol.NewFramer()
	buf := make([]byte, readBufferSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			d.handleData(framer, buf[:n])
		}
		if err != nil {
			d.handleReadEnd(conn, err)
			return
		}
	}
}

// handleData routes each complete packet to notification observers first,
// then to the pending request.
func (d *Device) handleData(framer *protocol.Framer, data []byte) {
	logging.LogRawBytes("Received bytes", data)

	packets := framer.Feed(data)
	if dropped := framer.Dropped(); dropped > 0 {
		logging.Debug("Discarded bytes outside packet framing",
			zap.String("address", d.address),
			zap.Int("bytes", dropped),
		)
	}

	for _, pkt := range packets {
		logging.LogPacket(d.address, "received", byte(pkt.Type), pkt.Command, pkt.Parameters)

		if pkt.Type == protocol.Notify {
			if n, ok := protocol.DecodeNotification(pkt); ok {
				d.observers.emitNotify(n)
			} else {
				logging.Debug("Dropped notification",
					zap.String("command", pkt.Command),
					zap.String("parameters", pkt.Parameters),
				)
			}
		}

		d.matchAnswer(pkt)
	}
}

func (d *Device) matchAnswer(pkt *protocol.Packet) {
	if pkt.Type != protocol.Answer {
		return
	}

	d.mu.Lock()
	p := d.pending
	if p == nil || p.command != pkt.Command {
		d.mu.Unlock()
		return
	}
	d.pending = nil
	d.mu.Unlock()

	if pkt.IsDeviceError() && !p.ignoreDeviceError {
		p.complete(nil, &Error{
			Type:    ErrTypeDevice,
			Message: "display answered with error sentinel",
			Command: pkt.Command,
			Address: d.address,
		})
		return
	}
	p.complete(pkt, nil)
}

// handleReadEnd runs when the reader stops. During Disconnect it only
// signals that the display closed its side; otherwise the close was not
// requested and the device tears the connection down itself.
func (d *Device) handleReadEnd(conn net.Conn, readErr error) {
	d.mu.Lock()
	if d.conn != conn {
		d.mu.Unlock()
		return
	}
	if d.state == Disconnecting {
		select {
		case <-d.peerClosed:
		default:
			close(d.peerClosed)
		}
		d.mu.Unlock()
		return
	}

	pending := d.pending
	d.pending = nil
	d.conn = nil
	d.setState(Disconnected)
	d.mu.Unlock()

	_ = conn.Close()

	var cause error
	if !errors.Is(readErr, io.EOF) {
		cause = readErr
	}

	if pending != nil {
		pending.complete(nil, &Error{
			Type:      ErrTypeConnectionLost,
			Message:   "connection closed while waiting for answer",
			Command:   pending.command,
			Address:   d.address,
			Err:       cause,
			Retryable: true,
		})
	}

	logging.LogConnection(d.address, "closed by peer")
	d.observers.emitClose(CloseEvent{Intentional: false, Err: cause})
}
