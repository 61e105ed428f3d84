// Package app wires the session model, the connection registry and the
// delivery policies into the hub the transport adapters drive.
package app

import (
	"errors"

	"github.com/rs/zerolog/log"

	"venue/internal/core"
	"venue/internal/domain"
	"venue/internal/protocol"
)

// Hub coordinates viewer lifecycle, seating and message delivery. It
// owns no locks itself; Session and Registry synchronize internally.
type Hub struct {
	Registry *Registry
	Session  *core.Session
	Policy   OverflowPolicy

	// DefaultCapacity is used when CreateRoom gets no explicit capacity.
	DefaultCapacity int
}

func NewHub(session *core.Session, registry *Registry, policy OverflowPolicy, defaultCapacity int) *Hub {
	return &Hub{
		Registry:        registry,
		Session:         session,
		Policy:          policy,
		DefaultCapacity: defaultCapacity,
	}
}

// Connect creates a viewer for a freshly accepted connection and binds
// its outbound channel.
func (h *Hub) Connect(conn Conn) (domain.Viewer, error) {
	v := h.Session.AddViewer()
	if err := h.Registry.Register(v.ID, conn); err != nil {
		_ = h.Session.RemoveViewer(v.ID)
		return domain.Viewer{}, err
	}
	log.Info().Str("module", "app.hub").Str("viewer", v.ID).Msg("viewer connected")
	return v, nil
}

// Disconnect removes the viewer from registry and session (freeing any
// held seat) and notifies the remaining viewers. It is idempotent, so
// an explicit close and a failed-write cleanup may race harmlessly.
func (h *Hub) Disconnect(id string) {
	if conn, ok := h.Registry.Unregister(id); ok {
		conn.Close()
	}
	if err := h.Session.RemoveViewer(id); err != nil {
		return
	}
	log.Info().Str("module", "app.hub").Str("viewer", id).Msg("viewer disconnected")

	snap := h.Session.Snapshot()
	resp := protocol.Response{
		Type:       protocol.TypeDeleteUser,
		ExpState:   snap,
		Parameters: map[string]string{"playerId": id},
	}
	payload, err := resp.Encode()
	if err != nil {
		log.Error().Err(err).Str("module", "app.hub").Msg("encode DeleteUser")
		return
	}
	for peer := range snap.Viewers {
		h.Deliver(peer, payload)
	}
}

// Deliver sends a payload to one viewer. A closed channel triggers the
// same cleanup as an explicit disconnect; an unknown recipient is the
// caller's problem to log or ignore.
func (h *Hub) Deliver(to string, payload []byte) error {
	err := h.Registry.Send(to, payload)
	if errors.Is(err, ErrChannelClosed) {
		log.Warn().Err(err).Str("module", "app.hub").Str("viewer", to).Msg("channel closed, cleaning up")
		h.Disconnect(to)
	}
	return err
}

// CreateRoom allocates a room on behalf of an elevated viewer.
func (h *Hub) CreateRoom(actorID string, capacity int) (domain.Room, error) {
	v, ok := h.Session.Viewer(actorID)
	if !ok {
		return domain.Room{}, core.ErrUnknownViewer
	}
	if v.Role != domain.RoleElevated {
		return domain.Room{}, core.ErrNotElevated
	}
	return h.Session.CreateRoom(capacity)
}

// EnterRoom seats the viewer in the requested room, or in the active
// room when no room id is given. The overflow return reports that the
// policy redirected the viewer into a different room than requested.
func (h *Hub) EnterRoom(viewerID, roomID string) (seat core.SeatAssignment, overflow bool, err error) {
	if roomID == "" {
		room, ok := h.Session.ActiveRoom()
		if !ok {
			return core.SeatAssignment{}, false, core.ErrUnknownRoom
		}
		roomID = room.ID
	}
	seat, err = h.Session.JoinRoom(roomID, viewerID)
	if errors.Is(err, core.ErrRoomFull) && h.Policy != nil {
		seat, err = h.Policy.OnRoomFull(h, viewerID, roomID)
	}
	if err != nil {
		return core.SeatAssignment{}, false, err
	}
	return seat, seat.RoomID != roomID, nil
}

// Relay forwards a negotiation payload verbatim to the target viewer.
// An absent target is logged and dropped; the sender is not notified.
func (h *Hub) Relay(kind protocol.ActionKind, from, to, sdp string) error {
	env := protocol.SignalEnvelope{Kind: kind, From: from, Data: sdp}
	payload, err := env.Encode()
	if err != nil {
		return err
	}
	if err := h.Deliver(to, payload); err != nil {
		log.Warn().Err(err).Str("module", "app.hub").Str("kind", string(kind)).Str("from", from).Str("to", to).Msg("relay dropped")
		return err
	}
	log.Debug().Str("module", "app.hub").Str("kind", string(kind)).Str("from", from).Str("to", to).Msg("relayed")
	return nil
}
