package app

import (
	"math/rand/v2"
	"sync"

	"github.com/zodiora/live/internal/domain"
)

// codeAlphabet omits characters people misread over voice or handwriting
// (0/O, 1/I/L).
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// CodeDirectory hands out the short human-entry codes participants share
// to pull friends into a session. A code is unique among non-terminal
// sessions and returns to the pool the moment its session completes.
type CodeDirectory struct {
	mu        sync.Mutex
	bySession map[domain.SessionID]domain.RoomCode
	byCode    map[domain.RoomCode]domain.SessionID
}

func NewCodeDirectory() *CodeDirectory {
	return &CodeDirectory{
		bySession: make(map[domain.SessionID]domain.RoomCode),
		byCode:    make(map[domain.RoomCode]domain.SessionID),
	}
}

// Issue mints a fresh code and binds it to id. Collisions re-roll; with a
// 31-character alphabet the space is ~887M codes, so the loop is short.
func (d *CodeDirectory) Issue(id domain.SessionID) domain.RoomCode {
	d.mu.Lock()
	defer d.mu.Unlock()
	for {
		code := randomCode()
		if _, taken := d.byCode[code]; taken {
			continue
		}
		d.byCode[code] = id
		d.bySession[id] = code
		return code
	}
}

// Resolve maps a code back to its live session.
func (d *CodeDirectory) Resolve(code domain.RoomCode) (domain.SessionID, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id, ok := d.byCode[code]
	return id, ok
}

// Release frees the code held by id, if any.
func (d *CodeDirectory) Release(id domain.SessionID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if code, ok := d.bySession[id]; ok {
		delete(d.byCode, code)
		delete(d.bySession, id)
	}
}

func randomCode() domain.RoomCode {
	buf := make([]byte, domain.RoomCodeLen)
	for i := range buf {
		buf[i] = codeAlphabet[rand.IntN(len(codeAlphabet))]
	}
	return domain.RoomCode(buf)
}
