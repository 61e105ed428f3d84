package signal

import (
	"strconv"

	"github.com/rs/zerolog/log"

	"venue/internal/domain"
	"venue/internal/protocol"
)

func (ctl *Controller) handleUpdateName(actorID string, act *protocol.Action) {
	name := act.Param("userName")
	if err := ctl.Hub.Session.UpdateName(actorID, name); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("viewer", actorID).Msg("UpdateName rejected")
	}
}

// handleSkin applies the appearance selectors together with the display
// name, matching the combined Skin message the client sends.
func (ctl *Controller) handleSkin(actorID string, act *protocol.Action) {
	body, errB := strconv.Atoi(act.Param("body"))
	skin, errS := strconv.Atoi(act.Param("skin"))
	material, errM := strconv.Atoi(act.Param("material"))
	if errB != nil || errS != nil || errM != nil {
		log.Warn().Str("module", "signal").Str("viewer", actorID).Msg("bad Skin selectors")
		return
	}
	look := domain.Appearance{Body: body, Skin: skin, Material: material}
	if err := ctl.Hub.Session.UpdateAppearance(actorID, look); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("viewer", actorID).Msg("Skin rejected")
		return
	}
	if err := ctl.Hub.Session.UpdateName(actorID, act.Param("userName")); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("viewer", actorID).Msg("Skin name rejected")
	}
}

func (ctl *Controller) handleRequestSkin(actorID string) {
	v, ok := ctl.Hub.Session.Viewer(actorID)
	if !ok {
		log.Warn().Str("module", "signal").Str("viewer", actorID).Msg("RequestSkin: unknown viewer")
		return
	}
	ctl.sendResponse(actorID, protocol.TypeSkin, map[string]string{
		"body":     strconv.Itoa(v.Appearance.Body),
		"skin":     strconv.Itoa(v.Appearance.Skin),
		"material": strconv.Itoa(v.Appearance.Material),
		"userName": v.Name,
	})
}

func (ctl *Controller) handlePositionUpdate(actorID string, act *protocol.Action) {
	x, errX := strconv.ParseFloat(act.Param("position_x"), 64)
	y, errY := strconv.ParseFloat(act.Param("position_y"), 64)
	z, errZ := strconv.ParseFloat(act.Param("position_z"), 64)
	if errX != nil || errY != nil || errZ != nil {
		log.Warn().Str("module", "signal").Str("viewer", actorID).Msg("bad PositionUpdate coordinates")
		return
	}
	pos := domain.Position{X: x, Y: y, Z: z}
	if err := ctl.Hub.Session.UpdatePosition(actorID, pos); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("viewer", actorID).Msg("PositionUpdate rejected")
	}
}

func (ctl *Controller) handleUpdateUser(actorID string) {
	if err := ctl.Hub.Session.ElevateRole(actorID); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("viewer", actorID).Msg("UpdateUser rejected")
		return
	}
	ctl.sendResponse(actorID, protocol.TypeUpdateUser, map[string]string{
		"playerId": actorID,
		"role":     string(domain.RoleElevated),
	})
}
