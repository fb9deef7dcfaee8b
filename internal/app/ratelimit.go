package app

import (
	"sync"
	"time"

	"github.com/zodiora/live/internal/domain"
)

// SlidingWindow keeps per-user event timestamps and rejects anything past
// limit-per-window. Used as the chat flood guard.
type SlidingWindow struct {
	mu      sync.Mutex
	history map[domain.UserID][]time.Time
	limit   int
	window  time.Duration
}

func NewSlidingWindow(limit int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{
		history: make(map[domain.UserID][]time.Time),
		limit:   limit,
		window:  window,
	}
}

func (sw *SlidingWindow) Allow(uid domain.UserID, now time.Time) bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if sw.limit <= 0 {
		return true
	}
	windowStart := now.Add(-sw.window)

	attempts := sw.history[uid]
	fresh := make([]time.Time, 0, len(attempts))
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= sw.limit {
		sw.history[uid] = fresh
		return false
	}

	fresh = append(fresh, now)
	sw.history[uid] = fresh
	return true
}

// Forget drops a user's history once they hold no seat anywhere.
func (sw *SlidingWindow) Forget(uid domain.UserID) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	delete(sw.history, uid)
}
