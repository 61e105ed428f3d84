package signal

import (
	"github.com/rs/zerolog/log"

	"venue/internal/protocol"
)

// handleRelay forwards offer/answer/candidate payloads to the named
// target. Failures are logged and dropped; peers retry at the
// negotiation-protocol level, so the sender gets no error back.
func (ctl *Controller) handleRelay(actorID string, act *protocol.Action) {
	target := act.Param("targetId")
	if target == "" {
		log.Warn().Str("module", "signal").Str("viewer", actorID).Str("kind", act.Type).Msg("relay without targetId")
		return
	}
	_ = ctl.Hub.Relay(act.Kind(), actorID, target, act.SDP)
}
