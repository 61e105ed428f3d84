package core

import "errors"

var (
	ErrUnknownViewer   = errors.New("unknown viewer")
	ErrUnknownRoom     = errors.New("unknown room")
	ErrInvalidCapacity = errors.New("invalid room capacity")
	ErrAlreadySeated   = errors.New("viewer already seated")
	ErrRoomFull        = errors.New("room is full")
	ErrNotElevated     = errors.New("viewer role is not elevated")
)
