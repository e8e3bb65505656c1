// Package notify implements a single-slot alert that hides itself after a delay.
package notify

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultDelay is how long an alert stays visible.
const DefaultDelay = 3 * time.Second

// Kind classifies an alert.
type Kind int

const (
	Info Kind = iota
	Success
	Warning
	Error
)

func (k Kind) String() string {
	switch k {
	case Info:
		return "info"
	case Success:
		return "success"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Alert is the user-facing notification state.
type Alert struct {
	Visible bool
	Message string
	Kind    Kind
}

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler func(d time.Duration, f func()) Timer

func afterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Center holds at most one visible alert. A newer Show always wins over an
// older alert and its pending expiry.
type Center struct {
	mu         sync.Mutex
	alert      Alert
	timer      Timer
	generation uint64

	delay    time.Duration
	schedule Scheduler
	logger   *slog.Logger
	listener func(Alert)
}

// Option configures a Center.
type Option func(*Center)

// WithDelay sets the auto-hide delay. Non-positive values keep the default.
func WithDelay(d time.Duration) Option {
	return func(c *Center) {
		if d > 0 {
			c.delay = d
		}
	}
}

// WithScheduler replaces time.AfterFunc, mainly for tests.
func WithScheduler(s Scheduler) Option {
	return func(c *Center) {
		if s != nil {
			c.schedule = s
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Center) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithListener registers fn to receive every state change. fn is called
// without the Center lock held.
func WithListener(fn func(Alert)) Option {
	return func(c *Center) {
		c.listener = fn
	}
}

// New creates a hidden Center.
func New(opts ...Option) *Center {
	c := &Center{
		delay:    DefaultDelay,
		schedule: afterFunc,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Show replaces the current alert and restarts the expiry.
func (c *Center) Show(message string, kind Kind) {
	c.mu.Lock()
	c.stopLocked()
	c.generation++
	gen := c.generation
	c.alert = Alert{Visible: true, Message: message, Kind: kind}
	c.timer = c.schedule(c.delay, func() { c.expire(gen) })
	alert := c.alert
	c.mu.Unlock()

	c.notify(alert)
}

// Dismiss hides the alert now and cancels its expiry.
func (c *Center) Dismiss() {
	c.mu.Lock()
	c.stopLocked()
	c.generation++
	c.alert = Alert{}
	c.mu.Unlock()

	c.notify(Alert{})
}

// Current returns the alert state.
func (c *Center) Current() Alert {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.alert
}

// expire hides the alert only if no Show or Dismiss happened since gen was scheduled.
func (c *Center) expire(gen uint64) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.alert = Alert{}
	c.mu.Unlock()

	c.logger.Debug("alert expired", "generation", gen)
	c.notify(Alert{})
}

func (c *Center) stopLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Center) notify(a Alert) {
	if c.listener != nil {
		c.listener(a)
	}
}
