package ws

import (
	"encoding/json"

	"github.com/zodiora/live/internal/core"
	"github.com/zodiora/live/internal/domain"
)

func (ctl *Controller) handleReveal(cid core.ClientID, c *wsConn, data []byte) {
	var p struct {
		CardID string `json:"card_id" validate:"required"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.badPayload(c, err)
		return
	}
	if err := ctl.validate.Struct(p); err != nil {
		ctl.badPayload(c, err)
		return
	}

	if err := ctl.manager.Reveal(cid, domain.CardID(p.CardID)); err != nil {
		ctl.sendError(c, err)
	}
}
