package app

import (
	"github.com/zodiora/live/internal/core"
	"github.com/zodiora/live/internal/domain"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	MarkSlow
	Disconnect
	DropFrame
)

// Policy decides what happens to a client whose send buffer stayed full
// while the session fanned out an event.
type Policy interface {
	OnBackpressure(session domain.SessionID, id core.ClientID) BackpressureAction
}

// SimplePolicy disconnects slow consumers so one stalled reader cannot
// hold a session's event stream hostage.
type SimplePolicy struct{}

func (SimplePolicy) OnBackpressure(session domain.SessionID, id core.ClientID) BackpressureAction {
	return Disconnect
}
