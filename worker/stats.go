package worker

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/meshworks/gridnode/message"
)

// KindStats is the accumulated view of one message kind's dispatches.
type KindStats struct {
	Count    uint64
	Failures uint64
	Elapsed  time.Duration
}

// Stats observes dispatches without altering their semantics. Attached
// to a worker only when debug is enabled; aggregation and rendering
// beyond this snapshot live outside the node.
type Stats struct {
	mu    sync.Mutex
	kinds map[message.Kind]KindStats
}

func NewStats() *Stats {
	return &Stats{kinds: make(map[message.Kind]KindStats)}
}

// Observe records one completed dispatch.
func (s *Stats) Observe(kind message.Kind, ok bool, elapsed time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ks := s.kinds[kind]
	ks.Count++
	if !ok {
		ks.Failures++
	}
	ks.Elapsed += elapsed
	s.kinds[kind] = ks
}

// Snapshot returns a copy of the per-kind counters.
func (s *Stats) Snapshot() map[message.Kind]KindStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[message.Kind]KindStats, len(s.kinds))
	for k, v := range s.kinds {
		out[k] = v
	}
	return out
}

func (s *Stats) String() string {
	snap := s.Snapshot()
	kinds := make([]string, 0, len(snap))
	for k := range snap {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	var b strings.Builder
	for _, k := range kinds {
		ks := snap[message.Kind(k)]
		fmt.Fprintf(&b, "%s: %d dispatched, %d failed, %v total\n", k, ks.Count, ks.Failures, ks.Elapsed)
	}
	return b.String()
}
