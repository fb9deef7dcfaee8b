package ws

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/zodiora/live/internal/core"
)

// handleCursor is fire-and-forget: samples feed the coalescing gate and
// bad ones are dropped without a reply, because by the time an error
// could travel back the position is stale anyway.
func (ctl *Controller) handleCursor(cid core.ClientID, data []byte) {
	var p struct {
		X       float64 `json:"x"`
		Y       float64 `json:"y"`
		Element string  `json:"element" validate:"max=64"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Debug().Err(err).Str("module", "ws").Str("cid", string(cid)).Msg("bad cursor sample")
		return
	}
	if err := ctl.validate.Struct(p); err != nil {
		return
	}
	ctl.manager.UpdateCursor(cid, p.X, p.Y, p.Element)
}
