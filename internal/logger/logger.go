package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options control the process logger.
type Options struct {
	JSON  bool
	Debug bool
	// Outputs defaults to stdout.
	Outputs []string
}

// New builds the process logger. JSON switches the encoding, debug lowers the level.
func New(json bool, debug bool) (*zap.Logger, error) {
	return Build(Options{JSON: json, Debug: debug})
}

// Build constructs a logger from o.
func Build(o Options) (*zap.Logger, error) {
	return Config(o).Build()
}

// Config returns the zap configuration for o. The caller annotation is
// only added in debug mode.
func Config(o Options) zap.Config {
	level := zapcore.InfoLevel
	if o.Debug {
		level = zapcore.DebugLevel
	}

	encoding := "console"
	encodeLevel := zapcore.CapitalColorLevelEncoder
	if o.JSON {
		encoding = "json"
		encodeLevel = zapcore.LowercaseLevelEncoder
	}

	outputs := o.Outputs
	if len(outputs) == 0 {
		outputs = []string{"stdout"}
	}

	enc := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		EncodeLevel:    encodeLevel,
		TimeKey:        "time",
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		NameKey:        "logger",
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	if o.Debug {
		enc.CallerKey = "caller"
		enc.EncodeCaller = zapcore.ShortCallerEncoder
	}

	return zap.Config{
		Encoding:          encoding,
		Level:             zap.NewAtomicLevelAt(level),
		DisableCaller:     !o.Debug,
		DisableStacktrace: !o.Debug,
		OutputPaths:       outputs,
		ErrorOutputPaths:  []string{"stderr"},
		EncoderConfig:     enc,
	}
}
