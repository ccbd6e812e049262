// Package bridge keeps one BRAVIA display connected and exposes it to
// other systems.
//
// A Bridge owns a device.Device and reconnects it with exponential backoff
// whenever the display drops the connection. On top of that connection it
// serves:
//
//   - a JSON API under /api/v1 (chi)
//   - a WebSocket event stream at /api/v1/events carrying state snapshots,
//     notifications and connection changes
//   - Prometheus metrics at /metrics
//   - retained MQTT state topics and set command topics (optional)
//   - an InfluxDB history of notifications (optional)
//
// Every request the bridge issues runs in an OpenTelemetry span.
package bridge
