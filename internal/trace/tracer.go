// Package trace provides structured diagnostics for the runtime CLI:
// leveled events with ring-buffer or streaming sinks.
package trace

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Tracer is the main interface for emitting trace events.
type Tracer interface {
	// Emit records a trace event. Must be goroutine-safe.
	Emit(ev *Event)

	// Flush ensures all buffered events are written.
	Flush() error

	// Close flushes and releases resources.
	Close() error

	// Level returns the current tracing level.
	Level() Level

	// Enabled returns true if tracing is active (Level > LevelOff).
	Enabled() bool
}

// StorageMode determines how events are stored.
type StorageMode uint8

const (
	ModeStream StorageMode = iota + 1 // immediate write
	ModeRing                          // circular buffer
)

// String returns the string representation of StorageMode.
func (m StorageMode) String() string {
	switch m {
	case ModeStream:
		return "stream"
	case ModeRing:
		return "ring"
	default:
		return "unknown"
	}
}

// ParseMode converts a string to StorageMode.
func ParseMode(s string) (StorageMode, error) {
	switch strings.ToLower(s) {
	case "stream":
		return ModeStream, nil
	case "ring":
		return ModeRing, nil
	default:
		return ModeRing, fmt.Errorf("invalid storage mode: %q (expected: stream|ring)", s)
	}
}

// Config holds tracer configuration.
type Config struct {
	Level    Level
	Mode     StorageMode
	Output   io.Writer // stream target
	Capacity int       // ring capacity, 0 for default
}

// New builds a tracer from the configuration.
func New(cfg Config) Tracer {
	if cfg.Level == LevelOff {
		return Nop
	}
	switch cfg.Mode {
	case ModeStream:
		return NewStreamTracer(cfg.Output, cfg.Level)
	default:
		return NewRingTracer(cfg.Capacity, cfg.Level)
	}
}

// Point emits an instant event through t.
func Point(t Tracer, scope Scope, name string, a, b int64) {
	if t == nil || !t.Enabled() {
		return
	}
	t.Emit(&Event{Time: time.Now(), Kind: KindPoint, Scope: scope, Name: name, A: a, B: b})
}

// Span emits a begin event and returns a function emitting the matching
// end event with the elapsed duration.
func Span(t Tracer, scope Scope, name string) func() {
	if t == nil || !t.Enabled() {
		return func() {}
	}
	start := time.Now()
	t.Emit(&Event{Time: start, Kind: KindBegin, Scope: scope, Name: name})
	return func() {
		t.Emit(&Event{Time: time.Now(), Kind: KindEnd, Scope: scope, Name: name, Dur: time.Since(start)})
	}
}

// nopTracer is a no-op implementation for zero overhead when tracing is
// disabled.
type nopTracer struct{}

func (nopTracer) Emit(*Event)   {}
func (nopTracer) Flush() error  { return nil }
func (nopTracer) Close() error  { return nil }
func (nopTracer) Level() Level  { return LevelOff }
func (nopTracer) Enabled() bool { return false }

// Nop is the package-level singleton nop tracer.
var Nop Tracer = nopTracer{}
