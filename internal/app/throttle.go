package app

import (
	"sync"
	"time"

	"github.com/zodiora/live/internal/core"
	"github.com/zodiora/live/internal/domain"
)

// CursorGate coalesces high-frequency cursor samples per connection.
// Samples within one interval overwrite each other and only the latest
// one is flushed when the interval elapses, so a burst costs one
// broadcast and stale positions are never sent.
type CursorGate struct {
	mu       sync.Mutex
	interval time.Duration
	pending  map[core.ClientID]domain.Cursor
	flush    func(core.ClientID, domain.Cursor)
}

func NewCursorGate(interval time.Duration, flush func(core.ClientID, domain.Cursor)) *CursorGate {
	return &CursorGate{
		interval: interval,
		pending:  make(map[core.ClientID]domain.Cursor),
		flush:    flush,
	}
}

// Offer records a sample. The first sample in a quiet interval arms the
// flush timer; later ones just replace the pending value.
func (g *CursorGate) Offer(id core.ClientID, c domain.Cursor) {
	if g.interval <= 0 {
		g.flush(id, c)
		return
	}
	g.mu.Lock()
	_, armed := g.pending[id]
	g.pending[id] = c
	g.mu.Unlock()
	if !armed {
		time.AfterFunc(g.interval, func() { g.fire(id) })
	}
}

func (g *CursorGate) fire(id core.ClientID) {
	g.mu.Lock()
	c, ok := g.pending[id]
	delete(g.pending, id)
	g.mu.Unlock()
	if ok {
		g.flush(id, c)
	}
}

// Forget discards any pending sample for a gone connection; its armed
// timer then fires into nothing.
func (g *CursorGate) Forget(id core.ClientID) {
	g.mu.Lock()
	delete(g.pending, id)
	g.mu.Unlock()
}
