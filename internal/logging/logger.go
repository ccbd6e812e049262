package logging

import (
	"encoding/hex"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

// LogLevelEnvVar names the variable read when no level is passed to
// Initialize. Unset means silent.
const LogLevelEnvVar = "BRAVIA_LOG_LEVEL"

// LogFormatEnvVar selects "json" output instead of the colored console
// encoding, for log shippers in front of the bridge.
const LogFormatEnvVar = "BRAVIA_LOG_FORMAT"

// maxDumpBytes caps hex/ASCII dumps in log fields.
const maxDumpBytes = 256

// Initialize installs the package logger at level, falling back to
// BRAVIA_LOG_LEVEL. With neither set every call is a no-op.
func Initialize(level string) error {
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}
	if level == "" {
		logger = zap.NewNop()
		return nil
	}

	logger = zap.New(
		zapcore.NewCore(newEncoder(os.Getenv(LogFormatEnvVar)), zapcore.Lock(os.Stderr), ParseLevel(level)),
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.ErrorOutput(zapcore.Lock(os.Stderr)),
	)
	return nil
}

func newEncoder(format string) zapcore.Encoder {
	if strings.EqualFold(format, "json") {
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		return zapcore.NewJSONEncoder(cfg)
	}
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

// ParseLevel maps a level name to a zap level. Unknown names map to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	}
	return zapcore.InfoLevel
}

// SetLogger swaps the package logger; nil restores the no-op logger.
func SetLogger(l *zap.Logger) {
	logger = l
}

// GetLogger never returns nil.
func GetLogger() *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger
}

func Info(msg string, fields ...zap.Field)  { GetLogger().Info(msg, fields...) }
func Debug(msg string, fields ...zap.Field) { GetLogger().Debug(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { GetLogger().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { GetLogger().Error(msg, fields...) }

// LogConnection records a lifecycle event (connected, closed, reconnecting)
// for the display at address.
func LogConnection(address string, event string) {
	GetLogger().Info("Connection event",
		zap.String("address", address),
		zap.String("event", event),
	)
}

func LogStateChange(address, from, to string) {
	GetLogger().Debug("Connection state changed",
		zap.String("address", address),
		zap.String("from", from),
		zap.String("to", to),
	)
}

// LogPacket records one decoded frame. direction is "sent" or "received".
func LogPacket(address, direction string, messageType byte, command, parameters string) {
	GetLogger().Debug("Packet",
		zap.String("address", address),
		zap.String("direction", direction),
		zap.String("type", string(rune(messageType))),
		zap.String("command", command),
		zap.String("parameters", parameters),
	)
}

func LogHTTPRequest(remoteAddr string, method string, path string, status int) {
	GetLogger().Info("HTTP request",
		zap.String("remote_addr", remoteAddr),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
	)
}

// LogRawBytes dumps data as hex and printable ASCII at debug level. The
// dump is skipped entirely when debug is off.
func LogRawBytes(label string, data []byte) {
	l := GetLogger()
	if !l.Core().Enabled(zapcore.DebugLevel) {
		return
	}
	l.Debug(label,
		zap.Int("length", len(data)),
		zap.String("hex", hexDump(data)),
		zap.String("ascii", asciiDump(data)),
	)
}

func hexDump(data []byte) string {
	if len(data) > maxDumpBytes {
		return hex.EncodeToString(data[:maxDumpBytes]) + "..."
	}
	return hex.EncodeToString(data)
}

func asciiDump(data []byte) string {
	if len(data) > maxDumpBytes {
		data = data[:maxDumpBytes]
	}
	out := []byte(string(data))
	for i, b := range out {
		if b < ' ' || b > '~' {
			out[i] = '.'
		}
	}
	return string(out)
}

// Sync flushes buffered entries. Errors from syncing a terminal are ignored.
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
