package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/zodiora/live/internal/core"
	"github.com/zodiora/live/internal/domain"
)

func (ctl *Controller) writePump(ctx context.Context, cid core.ClientID, c *wsConn) {
	ticker := time.NewTicker(ctl.pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			c.Close()
			return
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "ws").Str("cid", string(cid)).Msg("set write deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "ws").Str("cid", string(cid)).Msg("write")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, cid core.ClientID, c *wsConn) {
	defer func() {
		c.Close()
		ctl.manager.DropConnection(cid)
		log.Info().Str("module", "ws").Str("cid", string(cid)).Msg("connection closed")
	}()

	c.conn.SetReadLimit(ctl.readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				return
			}
			ctl.dispatch(cid, c, data)
		}
	}
}

func (ctl *Controller) dispatch(cid core.ClientID, c *wsConn, data []byte) {
	var env struct {
		Type      string `json:"type"`
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "ws").Str("cid", string(cid)).Msg("bad json")
		return
	}

	switch env.Type {
	case "create_session", "join_session", "ping":
		// session_id is join input here, not a claim about the current seat.
	default:
		if !ctl.sameSession(cid, c, env.SessionID) {
			return
		}
	}

	switch env.Type {
	case "create_session":
		ctl.handleCreate(cid, c, data)
	case "join_session":
		ctl.handleJoin(cid, c, data)
	case "leave_session":
		ctl.handleLeave(cid, c)
	case "start_session":
		ctl.handleStart(cid, c)
	case "end_session":
		ctl.handleEnd(cid, c)
	case "request_state":
		ctl.handleRequestState(cid, c)
	case "cursor_update":
		ctl.handleCursor(cid, data)
	case "send_message":
		ctl.handleMessage(cid, c, data)
	case "add_reaction":
		ctl.handleReaction(cid, c, data)
	case "typing_start":
		ctl.handleTyping(cid, c, true)
	case "typing_stop":
		ctl.handleTyping(cid, c, false)
	case "reveal_resource":
		ctl.handleReveal(cid, c, data)
	case "join_voice":
		ctl.handleJoinVoice(cid, c)
	case "leave_voice":
		ctl.handleLeaveVoice(cid, c)
	case "set_muted":
		ctl.handleVoiceFlag(cid, c, data, ctl.manager.SetMuted)
	case "set_deafened":
		ctl.handleVoiceFlag(cid, c, data, ctl.manager.SetDeafened)
	case "set_speaking":
		ctl.handleVoiceFlag(cid, c, data, ctl.manager.SetSpeaking)
	case "ping":
		ctl.handlePing(c)
	default:
		log.Warn().Str("module", "ws").Str("type", env.Type).Msg("unknown event")
	}
}

func (ctl *Controller) sendJSON(c *wsConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

// sameSession refuses frames that name a session other than the one the
// connection is seated in. Frames without a session_id act on the bound
// session directly.
func (ctl *Controller) sameSession(cid core.ClientID, c *wsConn, claimed string) bool {
	if claimed == "" {
		return true
	}
	sid, _, ok := ctl.manager.Registry().SessionOf(cid)
	if !ok || string(sid) != claimed {
		ctl.sendError(c, fmt.Errorf("%w: session %q", domain.ErrNotFound, claimed))
		return false
	}
	return true
}

// sendError maps a rejection onto the wire error event. The socket stays
// up; only transport failures close connections.
func (ctl *Controller) sendError(c *wsConn, err error) {
	ctl.sendJSON(c, struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Type:    core.EvtError,
		Code:    domain.Code(err),
		Message: err.Error(),
	})
}
