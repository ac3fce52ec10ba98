package stmtcache

import "log/slog"

type (
	// Option configures a [Cache].
	Option   func(*settings)
	settings struct {
		logger *slog.Logger
	}
)

// WithLogger sets the logger used to report statements
// that fail to close when they are evicted or cleared.
// By default, such failures are discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

func newSettings(options []Option) settings {
	var s settings
	for _, apply := range options {
		apply(&s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}
