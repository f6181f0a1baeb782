package rts

import "sync/atomic"

// Allocator balance counters. They are process-wide because the heap entry
// points are free functions with no machine argument, and atomic because
// independent machines may run concurrently (the CLI's --all mode).
var counters struct {
	objectAllocs  atomic.Int64
	objectFrees   atomic.Int64
	segmentAllocs atomic.Int64
	segmentFrees  atomic.Int64
	nodeAllocs    atomic.Int64
	nodeFrees     atomic.Int64
	arenaAllocs   atomic.Int64
	arenaFrees    atomic.Int64
	clones        atomic.Int64
	prompts       atomic.Int64
}

// Stats is a snapshot of the allocator balance counters.
type Stats struct {
	ObjectAllocs  int64
	ObjectFrees   int64
	SegmentAllocs int64
	SegmentFrees  int64
	NodeAllocs    int64
	NodeFrees     int64
	ArenaAllocs   int64
	ArenaFrees    int64
	Clones        int64
	Prompts       int64
}

// ReadStats returns the current counter values.
func ReadStats() Stats {
	return Stats{
		ObjectAllocs:  counters.objectAllocs.Load(),
		ObjectFrees:   counters.objectFrees.Load(),
		SegmentAllocs: counters.segmentAllocs.Load(),
		SegmentFrees:  counters.segmentFrees.Load(),
		NodeAllocs:    counters.nodeAllocs.Load(),
		NodeFrees:     counters.nodeFrees.Load(),
		ArenaAllocs:   counters.arenaAllocs.Load(),
		ArenaFrees:    counters.arenaFrees.Load(),
		Clones:        counters.clones.Load(),
		Prompts:       counters.prompts.Load(),
	}
}

// Sub returns the counter deltas between two snapshots.
func (s Stats) Sub(from Stats) Stats {
	return Stats{
		ObjectAllocs:  s.ObjectAllocs - from.ObjectAllocs,
		ObjectFrees:   s.ObjectFrees - from.ObjectFrees,
		SegmentAllocs: s.SegmentAllocs - from.SegmentAllocs,
		SegmentFrees:  s.SegmentFrees - from.SegmentFrees,
		NodeAllocs:    s.NodeAllocs - from.NodeAllocs,
		NodeFrees:     s.NodeFrees - from.NodeFrees,
		ArenaAllocs:   s.ArenaAllocs - from.ArenaAllocs,
		ArenaFrees:    s.ArenaFrees - from.ArenaFrees,
		Clones:        s.Clones - from.Clones,
		Prompts:       s.Prompts - from.Prompts,
	}
}

// Balanced reports whether every allocation in the delta has a matching free.
func (s Stats) Balanced() bool {
	return s.ObjectAllocs == s.ObjectFrees &&
		s.SegmentAllocs == s.SegmentFrees &&
		s.NodeAllocs == s.NodeFrees &&
		s.ArenaAllocs == s.ArenaFrees
}
