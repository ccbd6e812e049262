package bridge

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/muurk/bravia/internal/control"
	"github.com/muurk/bravia/internal/device"
	"github.com/muurk/bravia/internal/logging"
	"github.com/muurk/bravia/internal/protocol"
)

const tracerName = "github.com/muurk/bravia/internal/bridge"

// instrumentedSender counts, times and traces every request the bridge
// sends.
type instrumentedSender struct {
	next    control.Sender
	metrics *metrics
	tracer  trace.Tracer
}

func newInstrumentedSender(next control.Sender, m *metrics) *instrumentedSender {
	return &instrumentedSender{
		next:    next,
		metrics: m,
		tracer:  otel.Tracer(tracerName),
	}
}

func (s *instrumentedSender) Send(ctx context.Context, req device.Request) (*protocol.Packet, error) {
	requestID := uuid.NewString()
	ctx, span := s.tracer.Start(ctx, "bravia.send",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("bravia.command", req.Command),
			attribute.String("bravia.type", req.Type.String()),
			attribute.String("bravia.request_id", requestID),
		))
	defer span.End()

	start := time.Now()
	pkt, err := s.next.Send(ctx, req)
	elapsed := time.Since(start)

	outcome := outcomeOK
	if err != nil {
		outcome = outcomeFor(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		logging.Debug("Request failed",
			zap.String("request_id", requestID),
			zap.String("command", req.Command),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
	} else {
		s.metrics.requestDuration.WithLabelValues(req.Command).Observe(elapsed.Seconds())
		span.SetAttributes(attribute.String("bravia.answer", pkt.Parameters))
	}
	s.metrics.requestsTotal.WithLabelValues(req.Command, outcome).Inc()
	return pkt, err
}

// outcomeFor names an error for the outcome label, e.g. "timeout".
func outcomeFor(err error) string {
	switch {
	case device.IsValidationError(err):
		return "validation"
	case device.IsTimeoutError(err):
		return "timeout"
	case device.IsDeviceError(err):
		return "device_error"
	case device.IsConnectionLost(err):
		return "connection_lost"
	case device.IsStateError(err):
		return "not_connected"
	case device.IsConnectionError(err):
		return "connection"
	case errorIsContext(err):
		return "cancelled"
	}
	return "error"
}
