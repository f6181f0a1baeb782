// Package replay records a machine's observable event stream to a
// msgpack-framed log and validates a later run against it. Two runs of
// the same program must produce identical streams; a divergence means
// nondeterminism crept into the runtime or the program.
package replay

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when the log format changes.
const schemaVersion = 1

const terminatorOp = "eot"

// Header is the first record of every log.
type Header struct {
	Schema  int    `msgpack:"schema"`
	Kind    string `msgpack:"kind"`
	Program string `msgpack:"program"`
}

// Event is one observable runtime event: control transfers, prints, exit.
type Event struct {
	Op string `msgpack:"op"`
	A  int64  `msgpack:"a"`
	B  int64  `msgpack:"b"`
}

func (e Event) String() string {
	return fmt.Sprintf("%s(%d,%d)", e.Op, e.A, e.B)
}

// Recorder streams events to a log. It satisfies the runtime's EventSink.
// Encoding errors are sticky and surface from Close.
type Recorder struct {
	enc *msgpack.Encoder
	err error
	n   int
}

// NewRecorder writes a log header for the given program to w.
func NewRecorder(w io.Writer, program string) (*Recorder, error) {
	enc := msgpack.NewEncoder(w)
	if err := enc.Encode(Header{Schema: schemaVersion, Kind: "header", Program: program}); err != nil {
		return nil, fmt.Errorf("write log header: %w", err)
	}
	return &Recorder{enc: enc}, nil
}

// Record appends one event.
func (r *Recorder) Record(op string, a, b int64) {
	if r.err != nil {
		return
	}
	if err := r.enc.Encode(Event{Op: op, A: a, B: b}); err != nil {
		r.err = err
		return
	}
	r.n++
}

// Len returns the number of events recorded so far.
func (r *Recorder) Len() int {
	return r.n
}

// Close writes the terminator and reports any sticky encoding error.
func (r *Recorder) Close() error {
	if r.err != nil {
		return r.err
	}
	return r.enc.Encode(Event{Op: terminatorOp})
}

// MemorySink collects events in memory, for verification runs.
type MemorySink struct {
	Events []Event
}

// Record appends one event.
func (s *MemorySink) Record(op string, a, b int64) {
	s.Events = append(s.Events, Event{Op: op, A: a, B: b})
}

// Log is a fully parsed event log.
type Log struct {
	Header Header
	Events []Event
}

// Load parses a log from r, checking header and terminator.
func Load(r io.Reader) (*Log, error) {
	dec := msgpack.NewDecoder(r)
	var h Header
	if err := dec.Decode(&h); err != nil {
		return nil, fmt.Errorf("read log header: %w", err)
	}
	if h.Kind != "header" {
		return nil, fmt.Errorf("missing header record")
	}
	if h.Schema != schemaVersion {
		return nil, fmt.Errorf("unsupported log schema %d", h.Schema)
	}
	l := &Log{Header: h}
	for {
		var ev Event
		if err := dec.Decode(&ev); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("truncated log: no terminator")
			}
			return nil, fmt.Errorf("read log event: %w", err)
		}
		if ev.Op == terminatorOp {
			return l, nil
		}
		l.Events = append(l.Events, ev)
	}
}

// LoadFile parses the log at path.
func LoadFile(path string) (*Log, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Verify checks a fresh run's event stream against the log, event by
// event in order.
func (l *Log) Verify(got []Event) error {
	n := len(l.Events)
	if len(got) < n {
		n = len(got)
	}
	for i := 0; i < n; i++ {
		if got[i] != l.Events[i] {
			return fmt.Errorf("replay mismatch at event %d: logged %s, got %s", i, l.Events[i], got[i])
		}
	}
	if len(got) != len(l.Events) {
		return fmt.Errorf("replay mismatch: logged %d events, got %d", len(l.Events), len(got))
	}
	return nil
}
