// Package logging provides structured logging for the bravia tools.
//
// It wraps a package-level zap logger with helpers for the events the
// control client produces: connection lifecycle, packets on the wire and
// raw socket reads.
//
// # Log Levels
//
//   - Debug: packets, raw bytes, discarded framing noise, dropped notifications
//   - Info: connections, bridge requests
//   - Warn: reconnect attempts, sink failures
//   - Error: startup failures
//
// # Configuration
//
// The CLI stays silent unless a level is requested:
//
//	BRAVIA_LOG_LEVEL=debug bravia power --device 192.168.1.20
//
// Long running processes pass an explicit level:
//
//	if err := logging.Initialize("info"); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// Output goes to stderr so that command output on stdout stays parseable.
// BRAVIA_LOG_FORMAT=json switches to one JSON object per line.
package logging
