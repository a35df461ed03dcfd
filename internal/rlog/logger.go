// Package rlog provides structured logging for the symbol resolution core using zap.
package rlog

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger with resolver-specific helpers.
type Logger struct {
	*zap.Logger
}

var (
	// L is the global logger instance.
	L    *Logger
	once sync.Once
)

// Init initializes the global logger with the given configuration.
// Safe to call multiple times; only the first call takes effect.
func Init(debug bool) {
	once.Do(func() {
		L = New(debug)
	})
}

// New creates a new Logger instance.
func New(debug bool) *Logger {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		logger = zap.NewNop()
	}

	return &Logger{Logger: logger}
}

// NewNop creates a no-op logger, used as the package default so that
// embedding the core never prints anything unless a caller opts in via Init.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

func init() {
	L = NewNop()
}

// Hex formats a uint64 as a 0x-prefixed hex string for logging.
func Hex(addr uint64) string {
	return "0x" + hexString(addr)
}

func hexString(v uint64) string {
	const digits = "0123456789abcdef"
	if v == 0 {
		return "0"
	}
	buf := make([]byte, 16)
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = digits[v&0xf]
		v >>= 4
	}
	return string(buf[i:])
}

// Addr creates an address field.
func Addr(addr uint64) zap.Field {
	return zap.String("addr", Hex(addr))
}

// Sym creates a symbol-name field.
func Sym(name string) zap.Field {
	return zap.String("sym", name)
}

// Section creates a section-name field.
func Section(name string) zap.Field {
	return zap.String("section", name)
}
