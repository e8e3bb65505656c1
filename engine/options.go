package engine

import (
	"log/slog"

	"github.com/jacentio/shoplist/notify"
	"github.com/jacentio/shoplist/suggest"
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Nil keeps slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithNotifier sets the alert center the engine reports to.
func WithNotifier(c *notify.Center) Option {
	return func(e *Engine) {
		if c != nil {
			e.alerts = c
		}
	}
}

// WithSuggestions sets the vocabulary used by FilterSuggestions.
func WithSuggestions(idx *suggest.Index) Option {
	return func(e *Engine) {
		if idx != nil {
			e.suggestions = idx
		}
	}
}

// WithIDGenerator sets the item id generator.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) {
		if fn != nil {
			e.newID = fn
		}
	}
}
