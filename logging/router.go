package logging

import (
	"context"
	"log"
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Sink receives filtered events from the router.
type Sink interface {
	Write(Event) error
	Close(context.Context) error
}

type Config struct {
	EnabledSinks    []string
	MinimumSeverity Severity
	Fields          map[string]any
}

func DefaultConfig() Config {
	return Config{
		EnabledSinks:    []string{"console"},
		MinimumSeverity: SeverityInfo,
	}
}

func (c Config) HasSink(name string) bool {
	for _, s := range c.EnabledSinks {
		if s == name {
			return true
		}
	}
	return false
}

// Router fans events out to the enabled sinks, stamping time and
// filtering by severity. Writes are serialized; a failing sink falls
// back to the standard logger rather than failing the caller.
type Router struct {
	cfg      Config
	clock    Clock
	fallback *log.Logger
	fields   map[string]any

	mu    sync.Mutex
	sinks map[string]Sink
}

func NewRouter(cfg Config, clock Clock, fallback *log.Logger, sinks map[string]Sink) (*Router, error) {
	if clock == nil {
		clock = SystemClock{}
	}
	if fallback == nil {
		fallback = log.Default()
	}
	enabled := make(map[string]Sink, len(sinks))
	for name, sink := range sinks {
		if sink == nil || !cfg.HasSink(name) {
			continue
		}
		enabled[name] = sink
	}
	var fields map[string]any
	if len(cfg.Fields) > 0 {
		fields = make(map[string]any, len(cfg.Fields))
		for k, v := range cfg.Fields {
			fields[k] = v
		}
	}
	return &Router{cfg: cfg, clock: clock, fallback: fallback, fields: fields, sinks: enabled}, nil
}

func (r *Router) Publish(event Event) {
	if r == nil {
		return
	}
	if event.Severity < r.cfg.MinimumSeverity {
		return
	}
	if event.Time.IsZero() {
		event.Time = r.clock.Now()
	}
	if len(r.fields) > 0 {
		if event.Extra == nil {
			event.Extra = make(map[string]any, len(r.fields))
		}
		for k, v := range r.fields {
			if _, exists := event.Extra[k]; !exists {
				event.Extra[k] = v
			}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for name, sink := range r.sinks {
		if err := sink.Write(event); err != nil {
			r.fallback.Printf("sink %s rejected %s event: %v", name, event.Type, err)
		}
	}
}

func (r *Router) Close(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var firstErr error
	for name, sink := range r.sinks {
		if err := sink.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(r.sinks, name)
	}
	return firstErr
}
