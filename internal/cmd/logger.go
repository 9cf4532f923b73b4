package cmd

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger writes console-encoded entries to w. Only warnings and errors
// are shown unless debug is set.
func newLogger(debug bool, w io.Writer) *zap.Logger {
	level := zap.WarnLevel
	config := zap.NewProductionEncoderConfig()
	if debug {
		level = zap.DebugLevel
		config = zap.NewDevelopmentEncoderConfig()
	}
	config.TimeKey = "timestamp"
	config.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(config), zapcore.AddSync(w), level)
	opts := []zap.Option{}
	if debug {
		opts = append(opts, zap.AddCaller())
	}
	return zap.New(core, opts...)
}
