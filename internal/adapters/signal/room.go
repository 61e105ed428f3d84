package signal

import (
	"strconv"

	"github.com/rs/zerolog/log"

	"venue/internal/protocol"
)

func (ctl *Controller) handleCreateRoom(actorID string, act *protocol.Action) {
	if !ctl.roomLimiter.Allow(actorID) {
		log.Warn().Str("module", "signal").Str("viewer", actorID).Msg("CreateRoom rate limited")
		return
	}

	capacity := ctl.Hub.DefaultCapacity
	if raw := act.Param("capacity"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			log.Warn().Err(err).Str("module", "signal").Str("capacity", raw).Msg("bad CreateRoom capacity")
			return
		}
		capacity = n
	}

	room, err := ctl.Hub.CreateRoom(actorID, capacity)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("viewer", actorID).Msg("CreateRoom rejected")
		return
	}
	ctl.sendResponse(actorID, protocol.TypeNewRoom, map[string]string{
		"userId":  actorID,
		"room_id": room.ID,
	})
}

func (ctl *Controller) handleEnterRoom(actorID string, act *protocol.Action) {
	seat, overflow, err := ctl.Hub.EnterRoom(actorID, act.Param("room_id"))
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("viewer", actorID).Msg("EnterRoom rejected")
		return
	}
	if overflow {
		ctl.sendResponse(actorID, protocol.TypeNewRoom, map[string]string{
			"userId":  actorID,
			"room_id": seat.RoomID,
		})
	}
	ctl.sendResponse(actorID, protocol.TypeArmchairID, map[string]string{
		"room_id":  seat.RoomID,
		"armchair": strconv.Itoa(seat.SeatIndex),
	})
	ctl.sendResponse(actorID, protocol.TypeChangeScene, map[string]string{
		"room_id": seat.RoomID,
	})
}

// handleRequestRoom reports the actor's seated room, or the active room
// when the actor is not seated yet.
func (ctl *Controller) handleRequestRoom(actorID string) {
	roomID := ""
	if seat, ok := ctl.Hub.Session.SeatOf(actorID); ok {
		roomID = seat.RoomID
	} else if active, ok := ctl.Hub.Session.ActiveRoom(); ok {
		roomID = active.ID
	}
	room, ok := ctl.Hub.Session.Room(roomID)
	if !ok {
		log.Warn().Str("module", "signal").Str("viewer", actorID).Msg("RequestRoom: no room available")
		return
	}
	ctl.sendResponse(actorID, protocol.TypeRoom, map[string]string{
		"room_id":  room.ID,
		"capacity": strconv.Itoa(room.Capacity),
		"occupied": strconv.Itoa(room.Occupied()),
	})
}

func (ctl *Controller) handleRequestArmchair(actorID string) {
	seat, ok := ctl.Hub.Session.SeatOf(actorID)
	if !ok {
		log.Warn().Str("module", "signal").Str("viewer", actorID).Msg("RequestArmchair: viewer not seated")
		return
	}
	ctl.sendResponse(actorID, protocol.TypeArmchairID, map[string]string{
		"room_id":  seat.RoomID,
		"armchair": strconv.Itoa(seat.SeatIndex),
	})
}
