package bridge

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/muurk/bravia/internal/config"
	"github.com/muurk/bravia/internal/control"
	"github.com/muurk/bravia/internal/device"
	"github.com/muurk/bravia/internal/history"
	"github.com/muurk/bravia/internal/logging"
	"github.com/muurk/bravia/internal/mqtt"
	"github.com/muurk/bravia/internal/protocol"
	"github.com/muurk/bravia/internal/version"
)

// Defaults
const (
	DefaultMinDelay        = time.Second
	DefaultMaxDelay        = 30 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	readHeaderTimeout      = 10 * time.Second
	refreshTimeout         = 15 * time.Second
)

// Config holds the bridge configuration
type Config struct {
	Name    string // registry name, used for MQTT topics and InfluxDB tags
	Address string
	Model   string

	Listen  string // HTTP listen address; empty disables the HTTP server
	Metrics bool   // expose /metrics

	MinDelay time.Duration // reconnect backoff bounds
	MaxDelay time.Duration

	MQTT     *config.MQTT     // nil disables MQTT
	InfluxDB *config.InfluxDB // nil disables history

	DeviceOptions  []device.Option
	ControlOptions []control.Option
}

// ConfigFromRegistry builds a Config for target from the bridge section of
// the registry.
func ConfigFromRegistry(b *config.Bridge, target config.Target) Config {
	cfg := Config{
		Name:    target.Name,
		Address: target.Address,
		Model:   target.Model,
		Listen:  b.Listen,
		Metrics: b.Metrics,
	}
	if cfg.Name == "" {
		cfg.Name = config.DeviceNameFor(target.Model, target.Address)
	}
	if b.Reconnect != nil {
		cfg.MinDelay = b.Reconnect.MinDelay
		cfg.MaxDelay = b.Reconnect.MaxDelay
	}
	if b.MQTT != nil && b.MQTT.Broker != "" {
		cfg.MQTT = b.MQTT
	}
	if b.InfluxDB != nil && b.InfluxDB.URL != "" {
		cfg.InfluxDB = b.InfluxDB
	}
	return cfg
}

// Bridge keeps one display connected and exposes it over HTTP, a WebSocket
// event stream, MQTT and InfluxDB.
type Bridge struct {
	cfg      Config
	dev      *device.Device
	ctl      *control.Controller
	hub      *Hub
	metrics  *metrics
	registry *prometheus.Registry
	router   http.Handler

	mu         sync.RWMutex
	snapshot   *control.Snapshot
	refreshing int
	missed     []protocol.Notification // received while refreshing
	lateScene  *string                 // scene set while refreshing

	sinkMu    sync.RWMutex
	mqtt      *mqtt.Client
	mqttQueue chan stateMessage
	history   *history.Writer

	reconnect chan struct{}
	wg        sync.WaitGroup
}

// New creates a Bridge. It does not connect; call Run.
func New(cfg Config) (*Bridge, error) {
	if cfg.MinDelay <= 0 {
		cfg.MinDelay = DefaultMinDelay
	}
	if cfg.MaxDelay < cfg.MinDelay {
		cfg.MaxDelay = max(DefaultMaxDelay, cfg.MinDelay)
	}
	if cfg.Name == "" {
		cfg.Name = config.DeviceNameFor(cfg.Model, cfg.Address)
	}

	opts := append([]device.Option{device.WithModel(cfg.Model)}, cfg.DeviceOptions...)
	dev, err := device.New(cfg.Address, opts...)
	if err != nil {
		return nil, err
	}

	b := &Bridge{
		cfg:       cfg,
		dev:       dev,
		registry:  prometheus.NewRegistry(),
		reconnect: make(chan struct{}, 1),
	}
	b.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	b.metrics = newMetrics(b.registry, func() float64 { return float64(dev.State()) })
	b.ctl = control.New(newInstrumentedSender(dev, b.metrics), cfg.ControlOptions...)
	b.hub = newHub(b.metrics)
	b.router = b.buildRouter()

	dev.OnNotify(b.handleNotification)
	dev.OnClose(b.handleClose)
	return b, nil
}

// Handler returns the HTTP handler serving the API, the event stream and
// metrics.
func (b *Bridge) Handler() http.Handler {
	return b.router
}

// Device returns the managed display connection.
func (b *Bridge) Device() *device.Device {
	return b.dev
}

// Controller returns the instrumented controller.
func (b *Bridge) Controller() *control.Controller {
	return b.ctl
}

// Snapshot returns a copy of the last known state, or nil.
func (b *Bridge) Snapshot() *control.Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapshot.Clone()
}

// Start runs the bridge until SIGINT or SIGTERM.
func (b *Bridge) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return b.Run(ctx)
}

// Run connects the sinks, keeps the display connected and serves HTTP
// until ctx ends, then shuts everything down.
func (b *Bridge) Run(ctx context.Context) error {
	logging.Info("Starting bridge",
		zap.String("device", b.cfg.Name),
		zap.String("address", b.cfg.Address),
		zap.String("listen", b.cfg.Listen),
		zap.String("version", version.Full()))

	b.connectSinks(ctx)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.supervise(runCtx)
	}()

	var srv *http.Server
	errCh := make(chan error, 1)
	if b.cfg.Listen != "" {
		srv = &http.Server{
			Addr:              b.cfg.Listen,
			Handler:           b.router,
			ReadHeaderTimeout: readHeaderTimeout,
		}
		go func() {
			logging.Info("HTTP server listening", zap.String("addr", b.cfg.Listen))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("http server: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		logging.Info("Shutdown signal received, stopping bridge...")
	case runErr = <-errCh:
	}

	cancel()
	shutdownCtx, done := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer done()
	if err := b.Shutdown(shutdownCtx, srv); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// Shutdown stops the HTTP server, disconnects the display and closes the
// sinks. srv may be nil.
func (b *Bridge) Shutdown(ctx context.Context, srv *http.Server) error {
	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			logging.Warn("HTTP shutdown incomplete", zap.Error(err))
		}
	}
	b.hub.closeAll()

	err := b.dev.Disconnect(ctx)
	if device.IsStateError(err) {
		err = nil
	}

	waitDone := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
		// A dial in flight during the first Disconnect may have completed
		// since; the supervisor is gone now, so this one sticks.
		if b.dev.State() != device.Disconnected {
			if derr := b.dev.Disconnect(ctx); derr != nil && err == nil {
				err = derr
			}
		}
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, supervisor still running")
	}

	b.closeSinks()
	logging.Info("Bridge stopped")
	logging.Sync()
	return err
}

// supervise connects the display and reconnects it with exponential
// backoff whenever the connection drops.
func (b *Bridge) supervise(ctx context.Context) {
	delay := b.cfg.MinDelay
	attempt := 0
	for {
		if b.dev.State() != device.Connected {
			if attempt > 0 {
				b.metrics.reconnectsTotal.Inc()
			}
			attempt++

			if err := b.dev.Connect(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				wait := b.retryDelay(delay, err)
				logging.Warn("Connect failed, retrying",
					zap.String("address", b.cfg.Address),
					zap.Duration("retry_in", wait),
					zap.Bool("retryable", device.IsRetryable(err)),
					zap.String("reason", device.GetShortErrorMessage(err)))
				if !sleep(ctx, wait) {
					return
				}
				delay = min(wait*2, b.cfg.MaxDelay)
				continue
			}

			delay = b.cfg.MinDelay
			b.hub.Broadcast(EventConnection, ConnectionPayload{State: device.Connected.String()})
			if _, err := b.refresh(ctx); err != nil {
				logging.Warn("Initial state read failed", zap.Error(err))
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-b.reconnect:
		}
	}
}

// retryDelay is how long to wait after a failed connect. Errors that will
// not clear by themselves, such as a name that does not resolve, wait the
// full MaxDelay.
func (b *Bridge) retryDelay(delay time.Duration, err error) time.Duration {
	if !device.IsRetryable(err) {
		return b.cfg.MaxDelay
	}
	return delay
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// refresh reads the full state and fans it out.
func (b *Bridge) refresh(ctx context.Context) (*control.Snapshot, error) {
	b.mu.Lock()
	b.refreshing++
	start := len(b.missed)
	b.mu.Unlock()

	snap, err := b.ctl.Snapshot(ctx)

	b.mu.Lock()
	b.refreshing--
	if err == nil {
		// Notifications that raced the reads are newer than what was read.
		for _, n := range b.missed[start:] {
			if n.Command == protocol.CommandPower && !n.Status {
				snap = &control.Snapshot{UpdatedAt: snap.UpdatedAt}
			}
			snap.Apply(n)
		}
		if b.lateScene != nil && snap.Power {
			snap.Scene = b.lateScene
		}
		b.snapshot = snap
	}
	if b.refreshing == 0 {
		b.missed = nil
		b.lateScene = nil
	}
	b.mu.Unlock()
	if err != nil {
		return nil, err
	}

	out := snap.Clone()
	b.hub.Broadcast(EventState, out)
	b.publishSnapshot(out)
	return out, nil
}

func (b *Bridge) handleClose(ev device.CloseEvent) {
	payload := ConnectionPayload{State: device.Disconnected.String(), Intentional: ev.Intentional}
	if ev.Err != nil {
		payload.Error = ev.Err.Error()
	}
	b.hub.Broadcast(EventConnection, payload)

	if ev.Intentional {
		return
	}
	logging.Warn("Display connection lost", zap.String("address", b.cfg.Address), zap.Error(ev.Err))
	select {
	case b.reconnect <- struct{}{}:
	default:
	}
}

func (b *Bridge) handleNotification(n protocol.Notification) {
	b.metrics.notificationsTotal.WithLabelValues(n.Command).Inc()

	b.mu.Lock()
	if b.snapshot == nil || (n.Command == protocol.CommandPower && !n.Status) {
		// Nothing but power is readable in standby.
		b.snapshot = &control.Snapshot{}
	}
	b.snapshot.Apply(n)
	if b.refreshing > 0 {
		b.missed = append(b.missed, n)
	}
	b.mu.Unlock()

	if n.Command == protocol.CommandPower && n.Status {
		go b.refreshAfterPowerOn()
	}

	b.hub.Broadcast(EventNotify, n)
	b.publishNotification(n)

	b.sinkMu.RLock()
	h := b.history
	b.sinkMu.RUnlock()
	if h != nil {
		h.WriteNotification(n, time.Now())
	}
}

func (b *Bridge) refreshAfterPowerOn() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()
	if _, err := b.refresh(ctx); err != nil {
		logging.Debug("State refresh after power on failed", zap.Error(err))
	}
}

// setScene records a scene change; the display sends no notification
// for it.
func (b *Bridge) setScene(scene string) {
	b.mu.Lock()
	s := scene
	if b.snapshot != nil {
		b.snapshot.Scene = &s
	}
	if b.refreshing > 0 {
		b.lateScene = &s
	}
	b.mu.Unlock()
	b.publishState(mqtt.FieldScene, scene)
}
