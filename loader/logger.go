package loader

import (
	"log/slog"

	charmlog "github.com/charmbracelet/log"
)

// Logger is the structured logging interface used by the loader.
//
// Attributes are alternating key-value pairs, following log/slog:
//
//	logger.Debug("include expanded", "file", "types.raml", "path", "$.types")
//
// Two adapters are provided: [NewSlogAdapter] for log/slog and
// [NewCharmAdapter] for github.com/charmbracelet/log:
//
//	logger := loader.NewCharmAdapter(log.NewWithOptions(os.Stderr, log.Options{Level: log.DebugLevel}))
//	l, err := loader.New(loader.WithLogger(logger))
type Logger interface {
	// Debug logs at debug level. Use for detailed diagnostic information.
	Debug(msg string, attrs ...any)

	// Info logs at info level.
	Info(msg string, attrs ...any)

	// Warn logs at warn level.
	Warn(msg string, attrs ...any)

	// Error logs at error level.
	Error(msg string, attrs ...any)

	// With returns a Logger that adds attrs to every entry.
	With(attrs ...any) Logger
}

// NopLogger discards all output. It is the default logger.
type NopLogger struct{}

// Debug implements Logger.
func (NopLogger) Debug(_ string, _ ...any) {}

// Info implements Logger.
func (NopLogger) Info(_ string, _ ...any) {}

// Warn implements Logger.
func (NopLogger) Warn(_ string, _ ...any) {}

// Error implements Logger.
func (NopLogger) Error(_ string, _ ...any) {}

// With implements Logger.
func (n NopLogger) With(_ ...any) Logger { return n }

var _ Logger = NopLogger{}

// SlogAdapter wraps a *slog.Logger to implement Logger.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter. If logger is nil, slog.Default() is used.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger}
}

// Debug implements Logger.
func (s *SlogAdapter) Debug(msg string, attrs ...any) { s.logger.Debug(msg, attrs...) }

// Info implements Logger.
func (s *SlogAdapter) Info(msg string, attrs ...any) { s.logger.Info(msg, attrs...) }

// Warn implements Logger.
func (s *SlogAdapter) Warn(msg string, attrs ...any) { s.logger.Warn(msg, attrs...) }

// Error implements Logger.
func (s *SlogAdapter) Error(msg string, attrs ...any) { s.logger.Error(msg, attrs...) }

// With implements Logger.
func (s *SlogAdapter) With(attrs ...any) Logger {
	return &SlogAdapter{logger: s.logger.With(attrs...)}
}

var _ Logger = (*SlogAdapter)(nil)

// CharmAdapter wraps a *charmbracelet/log.Logger to implement Logger.
type CharmAdapter struct {
	logger *charmlog.Logger
}

// NewCharmAdapter creates a CharmAdapter. If logger is nil, the
// charmbracelet/log default logger is used.
func NewCharmAdapter(logger *charmlog.Logger) *CharmAdapter {
	if logger == nil {
		logger = charmlog.Default()
	}
	return &CharmAdapter{logger: logger}
}

// Debug implements Logger.
func (c *CharmAdapter) Debug(msg string, attrs ...any) { c.logger.Debug(msg, attrs...) }

// Info implements Logger.
func (c *CharmAdapter) Info(msg string, attrs ...any) { c.logger.Info(msg, attrs...) }

// Warn implements Logger.
func (c *CharmAdapter) Warn(msg string, attrs ...any) { c.logger.Warn(msg, attrs...) }

// Error implements Logger.
func (c *CharmAdapter) Error(msg string, attrs ...any) { c.logger.Error(msg, attrs...) }

// With implements Logger.
func (c *CharmAdapter) With(attrs ...any) Logger {
	return &CharmAdapter{logger: c.logger.With(attrs...)}
}

var _ Logger = (*CharmAdapter)(nil)
