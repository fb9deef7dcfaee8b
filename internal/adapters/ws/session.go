package ws

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/zodiora/live/internal/app"
	"github.com/zodiora/live/internal/core"
	"github.com/zodiora/live/internal/domain"
)

// badPayload is the uniform rejection for frames that fail to decode or
// validate; the kernel never sees them.
func (ctl *Controller) badPayload(c *wsConn, err error) {
	log.Error().Err(err).Str("module", "ws").Msg("bad payload")
	ctl.sendError(c, fmt.Errorf("%w: invalid payload", domain.ErrInvalidConfig))
}

func (ctl *Controller) handleCreate(cid core.ClientID, c *wsConn, data []byte) {
	var p struct {
		SessionType     string `json:"session_type" validate:"required"`
		Title           string `json:"title" validate:"required"`
		Description     string `json:"description"`
		MaxParticipants int    `json:"max_participants" validate:"gte=0,lte=64"`
		IsPrivate       bool   `json:"is_private"`
		Password        string `json:"password" validate:"max=128"`
		Layout          string `json:"layout" validate:"max=32"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.badPayload(c, err)
		return
	}
	if err := ctl.validate.Struct(p); err != nil {
		ctl.badPayload(c, err)
		return
	}

	meta, err := ctl.manager.Create(cid, app.CreateParams{
		Type:            domain.SessionType(p.SessionType),
		Title:           p.Title,
		Description:     p.Description,
		MaxParticipants: p.MaxParticipants,
		IsPrivate:       p.IsPrivate,
		Password:        p.Password,
		Layout:          p.Layout,
	})
	if err != nil {
		ctl.sendError(c, err)
		return
	}
	// The snapshot pushed by the seat is the ack; the client reads its
	// session id and room code from there.
	log.Info().Str("module", "ws").Str("cid", string(cid)).Str("sid", string(meta.ID)).Msg("create ok")
}

func (ctl *Controller) handleJoin(cid core.ClientID, c *wsConn, data []byte) {
	var p struct {
		SessionID string `json:"session_id"`
		RoomCode  string `json:"room_code" validate:"max=12"`
		Password  string `json:"password" validate:"max=128"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.badPayload(c, err)
		return
	}
	if err := ctl.validate.Struct(p); err != nil {
		ctl.badPayload(c, err)
		return
	}

	if err := ctl.manager.Join(cid, app.JoinParams{
		SessionID: p.SessionID,
		RoomCode:  p.RoomCode,
		Password:  p.Password,
	}); err != nil {
		ctl.sendError(c, err)
	}
}

func (ctl *Controller) handleLeave(cid core.ClientID, c *wsConn) {
	ctl.manager.Leave(cid)
}

func (ctl *Controller) handleStart(cid core.ClientID, c *wsConn) {
	if err := ctl.manager.Start(cid); err != nil {
		ctl.sendError(c, err)
	}
}

func (ctl *Controller) handleEnd(cid core.ClientID, c *wsConn) {
	if err := ctl.manager.End(cid); err != nil {
		ctl.sendError(c, err)
	}
}

func (ctl *Controller) handleRequestState(cid core.ClientID, c *wsConn) {
	ev, err := ctl.manager.Snapshot(cid)
	if err != nil {
		ctl.sendError(c, err)
		return
	}
	ctl.sendJSON(c, ev)
}

func (ctl *Controller) handlePing(c *wsConn) {
	resp := struct {
		Type string `json:"type"`
	}{
		Type: core.EvtPong,
	}
	ctl.sendJSON(c, resp)
}
