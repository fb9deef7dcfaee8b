package ws

import (
	"encoding/json"

	"github.com/pion/webrtc/v4"

	"github.com/zodiora/live/internal/core"
)

// handleJoinVoice flips the caller's voice presence and hands back the
// ICE configuration for the media leg. Audio itself never touches this
// process; the external media service takes it from here.
func (ctl *Controller) handleJoinVoice(cid core.ClientID, c *wsConn) {
	if err := ctl.manager.JoinVoice(cid); err != nil {
		ctl.sendError(c, err)
		return
	}
	resp := struct {
		Type      string               `json:"type"`
		RTCConfig webrtc.Configuration `json:"rtc_config"`
	}{
		Type:      core.EvtVoiceJoined,
		RTCConfig: ctl.ice,
	}
	ctl.sendJSON(c, resp)
}

func (ctl *Controller) handleLeaveVoice(cid core.ClientID, c *wsConn) {
	if err := ctl.manager.LeaveVoice(cid); err != nil {
		ctl.sendError(c, err)
	}
}

func (ctl *Controller) handleVoiceFlag(cid core.ClientID, c *wsConn, data []byte, set func(core.ClientID, bool) error) {
	var p struct {
		Value bool `json:"value"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		ctl.badPayload(c, err)
		return
	}
	if err := set(cid, p.Value); err != nil {
		ctl.sendError(c, err)
	}
}
