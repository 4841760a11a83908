package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger with convenience methods.
type Logger struct {
	*zap.Logger
}

// Config defines logger configuration.
type Config struct {
	Name        string
	Level       string // "debug", "info", "warn", "error"
	Development bool
	OutputPaths []string
}

// New creates a new logger with the provided configuration.
func New(cfg Config) (*Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	zapCfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       cfg.Development,
		Encoding:          encodingFormat(cfg.Development),
		EncoderConfig:     encoderConfig(cfg.Development),
		OutputPaths:       cfg.OutputPaths,
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     false,
		DisableStacktrace: !cfg.Development,
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	if cfg.Name != "" {
		logger = logger.Named(cfg.Name)
	}

	return &Logger{Logger: logger}, nil
}

// NewFile creates a JSON logger appending to path at the given level.
func NewFile(path, level, name string) (*Logger, error) {
	return New(Config{
		Name:        name,
		Level:       level,
		OutputPaths: []string{path},
	})
}

// NewConsole creates a colored console logger on stderr, leaving stdout to
// the program's own output.
func NewConsole(level, name string) (*Logger, error) {
	return New(Config{
		Name:        name,
		Level:       level,
		Development: true,
		OutputPaths: []string{"stderr"},
	})
}

// NewCore creates a logger over a caller-supplied core.
func NewCore(core zapcore.Core, name string) *Logger {
	logger := zap.New(core)
	if name != "" {
		logger = logger.Named(name)
	}
	return &Logger{Logger: logger}
}

// NewNop creates a logger that discards everything.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// parseLevel converts string level to zapcore.Level.
func parseLevel(level string) (zapcore.Level, error) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel, err
	}
	return l, nil
}

// encodingFormat returns encoding format based on environment.
func encodingFormat(development bool) string {
	if development {
		return "console"
	}
	return "json"
}

// encoderConfig returns encoder configuration based on environment.
func encoderConfig(development bool) zapcore.EncoderConfig {
	if development {
		return zapcore.EncoderConfig{
			TimeKey:        "T",
			LevelKey:       "L",
			NameKey:        "N",
			CallerKey:      "C",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "M",
			StacktraceKey:  "S",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalColorLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		}
	}

	return zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

var (
	global   *Logger
	globalMu sync.RWMutex
)

// Init installs l as the process-wide logger. Only the first call takes
// effect; it reports whether l was installed.
func Init(l *Logger) bool {
	if l == nil {
		return false
	}
	globalMu.Lock()
	defer globalMu.Unlock()
	if global != nil {
		return false
	}
	global = l
	return true
}

// L returns the process-wide logger, or a no-op logger before Init.
func L() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if global == nil {
		return nop
	}
	return global
}

var nop = NewNop()
