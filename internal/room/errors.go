package room

import "errors"

var (
	// ErrEmptyName rejects participants without a display name.
	ErrEmptyName = errors.New("display name is required")
	// ErrRoomNotFound is returned when no room exists under the given id.
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomFull is returned when a room already holds two participants.
	ErrRoomFull = errors.New("room is full")
	// ErrIDExhausted is returned when no unique room id could be generated.
	ErrIDExhausted = errors.New("room id space exhausted")
	// ErrParticipantNotFound is returned when the participant id does not
	// belong to the room.
	ErrParticipantNotFound = errors.New("participant not found")
)
