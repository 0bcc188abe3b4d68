package logger

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// Config drives how the zap logger is built.
type Config struct {
	Development bool
	Level       string
	// Encoding is "json" or "console". Development defaults to console.
	Encoding string
	// Service identifies the process. Console output prints it as the root
	// of every logger name; JSON output carries it as the "service" field.
	Service string
	// Output receives encoded entries. Defaults to stderr.
	Output zapcore.WriteSyncer
}

func (c Config) encoding() string {
	switch {
	case c.Encoding != "":
		return c.Encoding
	case c.Development:
		return "console"
	default:
		return "json"
	}
}

func (c Config) level() (zapcore.Level, error) {
	if c.Level == "" {
		if c.Development {
			return zapcore.DebugLevel, nil
		}
		return zapcore.InfoLevel, nil
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(c.Level))); err != nil {
		return level, fmt.Errorf("logger: invalid level %q: %w", c.Level, err)
	}
	return level, nil
}

var (
	mu     sync.RWMutex
	global *zap.Logger
)

// Init builds a zap logger with the provided config and stores it globally.
func Init(cfg Config) (*zap.Logger, error) {
	l, err := New(cfg)
	if err != nil {
		return nil, err
	}

	mu.Lock()
	defer mu.Unlock()

	if global != nil {
		_ = global.Sync()
	}

	global = l
	return global, nil
}

// MustInit panics if the logger cannot be built.
func MustInit(cfg Config) *zap.Logger {
	l, err := Init(cfg)
	if err != nil {
		panic(err)
	}
	return l
}

// L returns the global logger, creating a development logger if Init was never called.
func L() *zap.Logger {
	mu.RLock()
	l := global
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if global == nil {
		dev, err := zap.NewDevelopment()
		if err != nil {
			global = zap.NewNop()
		} else {
			global = dev
		}
	}
	return global
}

// Sync flushes any buffered log entries on the global logger.
func Sync() error {
	mu.RLock()
	l := global
	mu.RUnlock()

	if l == nil {
		return nil
	}

	if err := l.Sync(); err != nil {
		if errors.Is(err, syscall.ENOTTY) || errors.Is(err, os.ErrInvalid) {
			return nil
		}
		return err
	}
	return nil
}

// New returns a zap.Logger configured according to cfg.
func New(cfg Config) (*zap.Logger, error) {
	level, err := cfg.level()
	if err != nil {
		return nil, err
	}

	out := cfg.Output
	colorize := false
	if out == nil {
		out = zapcore.Lock(os.Stderr)
		colorize = shouldColorize(os.Stderr)
	}

	encoding := cfg.encoding()
	var enc zapcore.Encoder
	switch encoding {
	case "console":
		enc = zapcore.NewConsoleEncoder(consoleEncoderConfig(colorize))
	case "json":
		enc = zapcore.NewJSONEncoder(jsonEncoderConfig())
	default:
		return nil, fmt.Errorf("logger: unknown encoding %q", encoding)
	}

	opts := []zap.Option{
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.ErrorOutput(zapcore.Lock(os.Stderr)),
	}
	if cfg.Development {
		opts = append(opts, zap.Development())
	}

	l := zap.New(zapcore.NewCore(enc, out, zap.NewAtomicLevelAt(level)), opts...)
	if cfg.Service == "" {
		return l, nil
	}
	if encoding == "console" {
		return l.Named(cfg.Service), nil
	}
	return l.With(zap.String("service", cfg.Service)), nil
}

func jsonEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
}

// consoleEncoderConfig lays entries out as
// "time | LEVEL | [service.component] | caller | msg".
func consoleEncoderConfig(colorize bool) zapcore.EncoderConfig {
	cfg := jsonEncoderConfig()
	cfg.ConsoleSeparator = " | "
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	cfg.EncodeLevel = levelEncoder(colorize)
	cfg.EncodeName = bracketNameEncoder
	return cfg
}

func bracketNameEncoder(name string, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + name + "]")
}

func levelEncoder(colorize bool) zapcore.LevelEncoder {
	return func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		label := fmt.Sprintf("%-5s", level.CapitalString())
		if colorize {
			label = levelColor(level) + label + colorReset
		}
		enc.AppendString(label)
	}
}

func shouldColorize(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isTerminal(f)
}

func isTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

const colorReset = "\x1b[0m"

func levelColor(level zapcore.Level) string {
	switch {
	case level <= zapcore.DebugLevel:
		return "\x1b[36m"
	case level == zapcore.WarnLevel:
		return "\x1b[33m"
	case level == zapcore.ErrorLevel, level == zapcore.FatalLevel:
		return "\x1b[31m"
	case level == zapcore.DPanicLevel, level == zapcore.PanicLevel:
		return "\x1b[35m"
	default:
		return "\x1b[32m"
	}
}

// Named returns the global logger scoped to a component.
func Named(component string) *zap.Logger {
	return L().Named(component)
}
