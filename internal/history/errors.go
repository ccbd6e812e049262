package history

import "errors"

var (
	// ErrDisabled is returned by Connect when no InfluxDB URL is configured.
	ErrDisabled = errors.New("history: influxdb disabled")

	// ErrConnectionFailed is returned when the server does not answer the ping.
	ErrConnectionFailed = errors.New("history: connection failed")
)
