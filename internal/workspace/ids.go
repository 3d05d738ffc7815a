// Package workspace owns the user's domain collections: tasks, projects and
// memory facts. Each store is the single owner of its slice; callers only
// see copies.
package workspace

import (
	"strconv"
	"sync"
	"time"
)

// IDGen hands out millisecond-based ids that never repeat within a process,
// even when called several times in the same millisecond.
type IDGen struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDGen creates a generator. A nil now uses time.Now.
func NewIDGen(now func() time.Time) *IDGen {
	if now == nil {
		now = time.Now
	}
	return &IDGen{now: now}
}

// Next returns a fresh id.
func (g *IDGen) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := g.now().UnixMilli()
	if n <= g.last {
		n = g.last + 1
	}
	g.last = n
	return strconv.FormatInt(n, 10)
}
