package ws

import (
	"encoding/json"

	"github.com/zodiora/live/internal/app"
	"github.com/zodiora/live/internal/core"
	"github.com/zodiora/live/internal/domain"
)

func (ctl *Controller) handleMessage(cid core.ClientID, c *wsConn, data []byte) {
	var p struct {
		Content          string `json:"content" validate:"required"`
		ReplyTo          string `json:"reply_to"`
		AttachedEntityID string `json:"attached_entity_id" validate:"max=128"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.badPayload(c, err)
		return
	}
	if err := ctl.validate.Struct(p); err != nil {
		ctl.badPayload(c, err)
		return
	}

	if err := ctl.manager.PostMessage(cid, app.MessageParams{
		Content:          p.Content,
		ReplyTo:          domain.MessageID(p.ReplyTo),
		AttachedEntityID: p.AttachedEntityID,
	}); err != nil {
		ctl.sendError(c, err)
	}
}

func (ctl *Controller) handleReaction(cid core.ClientID, c *wsConn, data []byte) {
	var p struct {
		MessageID string `json:"message_id" validate:"required"`
		Symbol    string `json:"symbol" validate:"required,max=16"`
		Label     string `json:"label" validate:"max=32"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.badPayload(c, err)
		return
	}
	if err := ctl.validate.Struct(p); err != nil {
		ctl.badPayload(c, err)
		return
	}

	if err := ctl.manager.AddReaction(cid, domain.MessageID(p.MessageID), p.Symbol, p.Label); err != nil {
		ctl.sendError(c, err)
	}
}

func (ctl *Controller) handleTyping(cid core.ClientID, c *wsConn, typing bool) {
	if err := ctl.manager.SetTyping(cid, typing); err != nil {
		ctl.sendError(c, err)
	}
}
