package history

import (
	"context"
	"fmt"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"go.uber.org/zap"

	"github.com/muurk/bravia/internal/config"
	"github.com/muurk/bravia/internal/logging"
	"github.com/muurk/bravia/internal/protocol"
)

// Measurement is the name of the points written for notifications.
const Measurement = "tv_state"

const (
	defaultConnectTimeout = 10 * time.Second
	batchSize             = 50
	flushIntervalMillis   = 5000
)

// Writer records display state changes as InfluxDB points. Writes are
// batched and non-blocking; failures are logged.
type Writer struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
	device   string

	mu     sync.RWMutex
	closed bool
}

// Connect pings the server in cfg and returns a writer tagging points with
// device.
func Connect(ctx context.Context, cfg *config.InfluxDB, device string) (*Writer, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, ErrDisabled
	}

	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(batchSize).
			SetFlushInterval(flushIntervalMillis))

	pingCtx, cancel := context.WithTimeout(ctx, defaultConnectTimeout)
	defer cancel()
	healthy, err := client.Ping(pingCtx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping failed: %w", ErrConnectionFailed, err)
	}
	if !healthy {
		client.Close()
		return nil, fmt.Errorf("%w: server not healthy", ErrConnectionFailed)
	}

	w := &Writer{
		client:   client,
		writeAPI: client.WriteAPI(cfg.Org, cfg.Bucket),
		device:   device,
	}
	go w.logErrors(w.writeAPI.Errors())

	logging.Info("InfluxDB history enabled",
		zap.String("url", cfg.URL), zap.String("bucket", cfg.Bucket))
	return w, nil
}

func (w *Writer) logErrors(errs <-chan error) {
	for err := range errs {
		logging.Warn("InfluxDB write failed", zap.Error(err))
	}
}

// WriteNotification queues a point for n. Notifications of unknown
// commands are skipped.
func (w *Writer) WriteNotification(n protocol.Notification, at time.Time) {
	p := NotificationPoint(w.device, n, at)
	if p == nil {
		return
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return
	}
	w.writeAPI.WritePoint(p)
}

// NotificationPoint builds the point for n, or nil if n carries nothing
// worth recording.
func NotificationPoint(device string, n protocol.Notification, at time.Time) *write.Point {
	fields := map[string]interface{}{}
	switch n.Command {
	case protocol.CommandPower, protocol.CommandAudioMute, protocol.CommandPictureMute:
		fields["status"] = n.Status
	case protocol.CommandVolume:
		fields["volume"] = int64(n.Volume)
	case protocol.CommandInput:
		fields["input_type"] = n.Input.Type
		fields["input_port"] = int64(n.Input.Port)
	default:
		return nil
	}

	return write.NewPoint(Measurement,
		map[string]string{
			"device":  device,
			"command": n.Command,
		},
		fields,
		at)
}

// Flush sends any buffered points.
func (w *Writer) Flush() {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if !w.closed {
		w.writeAPI.Flush()
	}
}

// Close flushes and releases the client. Later writes are dropped.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	w.writeAPI.Flush()
	w.client.Close()
	return nil
}
