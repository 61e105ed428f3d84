// Package domain contains entities without logic, just meta-data.
package domain

import (
	"errors"

	"github.com/google/uuid"
)

const MaxNameLen = 36

var ErrNameTooLong = errors.New("display name too long")

// Role is a viewer's privilege level. Elevated viewers may create rooms.
type Role string

const (
	RoleStandard Role = "standard"
	RoleElevated Role = "elevated"
)

// Position is a point in the shared 3D space.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Appearance holds the avatar variant selectors a client picks.
type Appearance struct {
	Body     int `json:"body"`
	Skin     int `json:"skin"`
	Material int `json:"material"`
}

// Viewer is one connected user session.
type Viewer struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Position   Position   `json:"position"`
	Appearance Appearance `json:"appearance"`
	Role       Role       `json:"role"`
}

// NewViewer is a tiny helper to avoid ad-hoc struct literals elsewhere.
// Viewers start anonymous, at the origin, with the standard role.
func NewViewer() *Viewer {
	return &Viewer{
		ID:   uuid.NewString(),
		Role: RoleStandard,
	}
}

func (v *Viewer) SetName(name string) error {
	if len(name) > MaxNameLen {
		return ErrNameTooLong
	}
	v.Name = name
	return nil
}
