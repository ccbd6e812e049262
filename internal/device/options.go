package device

import (
	"context"
	"net"
	"time"
)

// Protocol defaults
const (
	DefaultPort              = 20060
	DefaultResponseTimeout   = 5000 * time.Millisecond
	DefaultWriteTimeout      = 100 * time.Millisecond
	DefaultCloseGrace        = 500 * time.Millisecond
	DefaultDisconnectTimeout = 5000 * time.Millisecond
	DefaultDialTimeout       = 5 * time.Second
)

// Dialer opens the TCP connection. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

type options struct {
	port              int
	model             string
	responseTimeout   time.Duration
	writeTimeout      time.Duration
	closeGrace        time.Duration
	disconnectTimeout time.Duration
	dialTimeout       time.Duration
	dialer            Dialer
}

func defaultOptions() options {
	return options{
		port:              DefaultPort,
		responseTimeout:   DefaultResponseTimeout,
		writeTimeout:      DefaultWriteTimeout,
		closeGrace:        DefaultCloseGrace,
		disconnectTimeout: DefaultDisconnectTimeout,
		dialTimeout:       DefaultDialTimeout,
	}
}

// Option configures a Device.
type Option func(*options)

// WithModel records the model name reported by discovery.
func WithModel(model string) Option {
	return func(o *options) {
		o.model = model
	}
}

// WithPort overrides the control port. Displays always listen on 20060;
// other values are for test servers.
func WithPort(port int) Option {
	return func(o *options) {
		o.port = port
	}
}

// WithResponseTimeout sets how long Send waits for an answer after the
// packet is written.
func WithResponseTimeout(d time.Duration) Option {
	return func(o *options) {
		o.responseTimeout = d
	}
}

// WithWriteTimeout bounds a single packet write. A socket that cannot take
// 24 bytes within it fails the request with ErrWriteIncomplete instead of
// holding the queue.
func WithWriteTimeout(d time.Duration) Option {
	return func(o *options) {
		o.writeTimeout = d
	}
}

// WithCloseGrace sets how long Disconnect waits for the display to close
// its side after the local half-close.
func WithCloseGrace(d time.Duration) Option {
	return func(o *options) {
		o.closeGrace = d
	}
}

// WithDisconnectTimeout sets the ceiling for Disconnect, measured from its start.
func WithDisconnectTimeout(d time.Duration) Option {
	return func(o *options) {
		o.disconnectTimeout = d
	}
}

// WithDialTimeout bounds the TCP connect.
func WithDialTimeout(d time.Duration) Option {
	return func(o *options) {
		o.dialTimeout = d
	}
}

// WithDialer replaces the default net.Dialer.
func WithDialer(d Dialer) Option {
	return func(o *options) {
		o.dialer = d
	}
}
