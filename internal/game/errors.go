package game

import "errors"

var (
	// ErrAlreadyPlayed rejects selecting a card committed in a prior
	// confrontation.
	ErrAlreadyPlayed = errors.New("card already played")
	// ErrCardNotFound rejects selecting a card the participant never held.
	ErrCardNotFound = errors.New("card not found in hand")
	// ErrNotYourTurn rejects out-of-order selections under the alternating
	// turn format.
	ErrNotYourTurn = errors.New("not your turn")
	// ErrGameOver rejects actions against a resolved room.
	ErrGameOver = errors.New("game already resolved")
	// ErrRoomNotReady rejects game actions while the room waits for a
	// second participant.
	ErrRoomNotReady = errors.New("room is waiting for an opponent")
)
