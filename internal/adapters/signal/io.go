package signal

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"venue/internal/protocol"
)

func (ctl *Controller) writePump(ctx context.Context, c *wsConn) {
	ping := time.NewTicker(ctl.PingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump ping failed")
				return
			}
		case payload, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, cancel context.CancelFunc, viewerID string, c *wsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("viewer", viewerID).Msg("readPump closing")
		cancel()
		ctl.roomLimiter.Forget(viewerID)
		ctl.Hub.Disconnect(viewerID)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Error().Err(err).Str("module", "signal").Str("viewer", viewerID).Msg("readPump read error")
				}
				return
			}
			ctl.handleAction(viewerID, data)
		}
	}
}

// handleAction is the dispatcher: one hub operation per recognized
// kind. Malformed envelopes are dropped without closing the connection;
// unknown kinds are ignored so newer clients keep working.
func (ctl *Controller) handleAction(actorID string, data []byte) {
	act, err := protocol.ParseAction(data)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("viewer", actorID).Msg("dropping malformed message")
		return
	}

	switch act.Kind() {
	case protocol.ActionCreateRoom:
		ctl.handleCreateRoom(actorID, act)
	case protocol.ActionEnterRoom:
		ctl.handleEnterRoom(actorID, act)
	case protocol.ActionRequestRoom:
		ctl.handleRequestRoom(actorID)
	case protocol.ActionRequestArmchair:
		ctl.handleRequestArmchair(actorID)
	case protocol.ActionUpdateName:
		ctl.handleUpdateName(actorID, act)
	case protocol.ActionSkin:
		ctl.handleSkin(actorID, act)
	case protocol.ActionRequestSkin:
		ctl.handleRequestSkin(actorID)
	case protocol.ActionPositionUpdate:
		ctl.handlePositionUpdate(actorID, act)
	case protocol.ActionUpdateUser:
		ctl.handleUpdateUser(actorID)
	case protocol.ActionOffer, protocol.ActionAnswer, protocol.ActionCandidate:
		ctl.handleRelay(actorID, act)
	default:
		log.Debug().Str("module", "signal").Str("type", act.Type).Msg("ignoring unknown kind")
	}
}
