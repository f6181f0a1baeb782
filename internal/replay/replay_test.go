package replay

import (
	"bytes"
	"strings"
	"testing"
)

func record(t *testing.T, program string, events []Event) []byte {
	t.Helper()
	var buf bytes.Buffer
	rec, err := NewRecorder(&buf, program)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	for _, ev := range events {
		rec.Record(ev.Op, ev.A, ev.B)
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("close recorder: %v", err)
	}
	return buf.Bytes()
}

func TestRecordLoadRoundTrip(t *testing.T) {
	events := []Event{
		{Op: "reset", A: 3},
		{Op: "shift", A: 3, B: 1},
		{Op: "resume", A: 3, B: 1},
		{Op: "exit", A: 0},
	}
	data := record(t, "state", events)

	l, err := Load(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if l.Header.Program != "state" {
		t.Fatalf("program = %q, want state", l.Header.Program)
	}
	if err := l.Verify(events); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestVerifyDetectsDivergence(t *testing.T) {
	events := []Event{{Op: "print", A: 1}, {Op: "exit", A: 0}}
	l, err := Load(bytes.NewReader(record(t, "p", events)))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	err = l.Verify([]Event{{Op: "print", A: 2}, {Op: "exit", A: 0}})
	if err == nil || !strings.Contains(err.Error(), "mismatch at event 0") {
		t.Fatalf("expected mismatch at event 0, got %v", err)
	}

	err = l.Verify(events[:1])
	if err == nil || !strings.Contains(err.Error(), "logged 2 events, got 1") {
		t.Fatalf("expected length mismatch, got %v", err)
	}
}

func TestLoadRejectsTruncatedLog(t *testing.T) {
	data := record(t, "p", []Event{{Op: "exit"}})
	// Chop off the terminator record.
	if _, err := Load(bytes.NewReader(data[:len(data)-4])); err == nil {
		t.Fatalf("expected error for truncated log")
	}
}

func TestMemorySinkCollects(t *testing.T) {
	var s MemorySink
	s.Record("reset", 1, 0)
	s.Record("exit", 0, 0)
	if len(s.Events) != 2 || s.Events[0].Op != "reset" {
		t.Fatalf("unexpected events: %v", s.Events)
	}
}
