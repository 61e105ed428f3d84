// Package core holds the authoritative in-memory session state: the
// viewer set, the room registry and the seat allocator. One mutex
// guards it all; no method touches a transport, so the lock is never
// held across a network send.
package core

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"venue/internal/domain"
)

// SeatAssignment is the result of a successful join.
type SeatAssignment struct {
	RoomID    string `json:"room_id"`
	SeatIndex int    `json:"armchair"`
}

// RoomInfo is a read-only occupancy view for APIs.
type RoomInfo struct {
	ID       string `json:"id"`
	Capacity int    `json:"capacity"`
	Occupied int    `json:"occupied"`
	Full     bool   `json:"isFull"`
}

type seatRef struct {
	roomID string
	index  int
}

// Session is a threadsafe in-memory session model.
type Session struct {
	mu      sync.RWMutex
	viewers map[string]*domain.Viewer
	rooms   map[string]*domain.Room
	order   []string           // room ids in creation order
	seats   map[string]seatRef // viewer id -> held seat
}

func NewSession() *Session {
	return &Session{
		viewers: make(map[string]*domain.Viewer),
		rooms:   make(map[string]*domain.Room),
		seats:   make(map[string]seatRef),
	}
}

// AddViewer creates a viewer with a fresh id and default attributes.
func (s *Session) AddViewer() domain.Viewer {
	v := domain.NewViewer()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewers[v.ID] = v
	log.Info().Str("module", "core.session").Str("viewer", v.ID).Msg("viewer added")
	return *v
}

// RemoveViewer deletes the viewer and frees any seat it held. Seat
// indices are never compacted or renumbered.
func (s *Session) RemoveViewer(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.viewers[id]; !ok {
		return ErrUnknownViewer
	}
	if ref, seated := s.seats[id]; seated {
		if room, ok := s.rooms[ref.roomID]; ok {
			seat := &room.Armchairs[ref.index-1]
			seat.UserID = ""
			seat.Busy = false
			room.Full = false
			log.Info().Str("module", "core.session").Str("viewer", id).Str("room", ref.roomID).Int("armchair", ref.index).Msg("seat freed")
		}
		delete(s.seats, id)
	}
	delete(s.viewers, id)
	log.Info().Str("module", "core.session").Str("viewer", id).Msg("viewer removed")
	return nil
}

// Viewer returns a copy of the viewer.
func (s *Session) Viewer(id string) (domain.Viewer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.viewers[id]
	if !ok {
		return domain.Viewer{}, false
	}
	return *v, true
}

// ViewerIDs returns the ids of all connected viewers.
func (s *Session) ViewerIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.viewers))
	for id := range s.viewers {
		out = append(out, id)
	}
	return out
}

func (s *Session) UpdateName(id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.viewers[id]
	if !ok {
		return ErrUnknownViewer
	}
	return v.SetName(name)
}

func (s *Session) UpdatePosition(id string, p domain.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.viewers[id]
	if !ok {
		return ErrUnknownViewer
	}
	v.Position = p
	return nil
}

func (s *Session) UpdateAppearance(id string, a domain.Appearance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.viewers[id]
	if !ok {
		return ErrUnknownViewer
	}
	v.Appearance = a
	return nil
}

// ElevateRole promotes the viewer to the elevated role.
func (s *Session) ElevateRole(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.viewers[id]
	if !ok {
		return ErrUnknownViewer
	}
	v.Role = domain.RoleElevated
	log.Info().Str("module", "core.session").Str("viewer", id).Msg("role elevated")
	return nil
}

// CreateRoom allocates a room with capacity armchairs indexed
// 1..capacity, all free.
func (s *Session) CreateRoom(capacity int) (domain.Room, error) {
	if capacity < 1 {
		return domain.Room{}, ErrInvalidCapacity
	}
	room := &domain.Room{
		ID:        uuid.NewString(),
		Capacity:  capacity,
		Armchairs: make([]domain.Armchair, capacity),
	}
	for i := range room.Armchairs {
		room.Armchairs[i].ID = i + 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ID] = room
	s.order = append(s.order, room.ID)
	log.Info().Str("module", "core.session").Str("room", room.ID).Int("capacity", capacity).Msg("room created")
	return copyRoom(room), nil
}

// Room returns a copy of the room.
func (s *Session) Room(id string) (domain.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return domain.Room{}, false
	}
	return copyRoom(room), true
}

// ActiveRoom returns the most recently created room that still has a
// free seat. New joiners without an explicit room id land here.
func (s *Session) ActiveRoom() (domain.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.order) - 1; i >= 0; i-- {
		if room := s.rooms[s.order[i]]; !room.Full {
			return copyRoom(room), true
		}
	}
	return domain.Room{}, false
}

// JoinRoom assigns the first free armchair by ascending index. A viewer
// holding a seat anywhere is never assigned a second one.
func (s *Session) JoinRoom(roomID, viewerID string) (SeatAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.viewers[viewerID]; !ok {
		return SeatAssignment{}, ErrUnknownViewer
	}
	room, ok := s.rooms[roomID]
	if !ok {
		return SeatAssignment{}, ErrUnknownRoom
	}
	if _, seated := s.seats[viewerID]; seated {
		return SeatAssignment{}, ErrAlreadySeated
	}
	if room.Full {
		return SeatAssignment{}, ErrRoomFull
	}
	for i := range room.Armchairs {
		seat := &room.Armchairs[i]
		if seat.Busy {
			continue
		}
		seat.UserID = viewerID
		seat.Busy = true
		room.Full = allBusy(room)
		s.seats[viewerID] = seatRef{roomID: roomID, index: seat.ID}
		log.Info().Str("module", "core.session").Str("viewer", viewerID).Str("room", roomID).Int("armchair", seat.ID).Bool("full", room.Full).Msg("seat assigned")
		return SeatAssignment{RoomID: roomID, SeatIndex: seat.ID}, nil
	}
	// Unreachable while Full tracks occupancy; kept as a guard.
	room.Full = true
	return SeatAssignment{}, ErrRoomFull
}

// SeatOf reports the seat currently held by the viewer, if any.
func (s *Session) SeatOf(viewerID string) (SeatAssignment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ref, ok := s.seats[viewerID]
	if !ok {
		return SeatAssignment{}, false
	}
	return SeatAssignment{RoomID: ref.roomID, SeatIndex: ref.index}, true
}

// Rooms returns an occupancy listing in creation order.
func (s *Session) Rooms() []RoomInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]RoomInfo, 0, len(s.order))
	for _, id := range s.order {
		room := s.rooms[id]
		out = append(out, RoomInfo{
			ID:       room.ID,
			Capacity: room.Capacity,
			Occupied: room.Occupied(),
			Full:     room.Full,
		})
	}
	return out
}

// Snapshot produces a consistent point-in-time deep copy of the whole
// session. Mutations after Snapshot returns never show through.
func (s *Session) Snapshot() *domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := &domain.Snapshot{
		Viewers: make(map[string]domain.Viewer, len(s.viewers)),
		Rooms:   make(map[string]domain.Room, len(s.rooms)),
	}
	for id, v := range s.viewers {
		snap.Viewers[id] = *v
	}
	for id, room := range s.rooms {
		snap.Rooms[id] = copyRoom(room)
	}
	return snap
}

func copyRoom(room *domain.Room) domain.Room {
	cp := *room
	cp.Armchairs = make([]domain.Armchair, len(room.Armchairs))
	copy(cp.Armchairs, room.Armchairs)
	return cp
}

func allBusy(room *domain.Room) bool {
	for _, a := range room.Armchairs {
		if !a.Busy {
			return false
		}
	}
	return true
}
