package server

import (
	"errors"

	"github.com/cardbattle/war-server-go/internal/game"
	"github.com/cardbattle/war-server-go/internal/room"
)

// Client-to-server message types.
const (
	MsgCreateRoom   = "create_room"
	MsgJoinRoom     = "join_room"
	MsgSelectCard   = "select_card"
	MsgDeclareReady = "declare_ready"
	MsgNewGame      = "new_game"
	MsgLeave        = "leave"
)

// Server-to-client message types. Broadcast types reuse the synchronizer's
// event tags so subscribers and direct replies speak one vocabulary.
const (
	MsgRoomCreated = "room_created"
	MsgRoomJoined  = "room_joined"
	MsgAck         = "ack"
	MsgError       = "error"
)

// ClientMessage is one inbound action from a participant.
type ClientMessage struct {
	Type   string `json:"type"`
	Name   string `json:"name,omitempty"`
	RoomID string `json:"room_id,omitempty"`
	CardID string `json:"card_id,omitempty"`
}

// ServerMessage is one outbound frame to a participant.
type ServerMessage struct {
	Type          string         `json:"type"`
	RoomID        string         `json:"room_id,omitempty"`
	ParticipantID string         `json:"participant_id,omitempty"`
	Snapshot      *room.Snapshot `json:"snapshot,omitempty"`
	Message       string         `json:"message,omitempty"`
	Code          string         `json:"code,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// errorCode maps core errors onto the stable wire codes clients match on.
func errorCode(err error) string {
	switch {
	case errors.Is(err, room.ErrEmptyName):
		return "empty_name"
	case errors.Is(err, room.ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, room.ErrRoomFull):
		return "room_full"
	case errors.Is(err, room.ErrParticipantNotFound):
		return "participant_not_found"
	case errors.Is(err, room.ErrIDExhausted):
		return "id_exhausted"
	case errors.Is(err, game.ErrAlreadyPlayed):
		return "already_played"
	case errors.Is(err, game.ErrCardNotFound):
		return "card_not_found"
	case errors.Is(err, game.ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, game.ErrGameOver):
		return "game_over"
	case errors.Is(err, game.ErrRoomNotReady):
		return "room_not_ready"
	default:
		return "internal"
	}
}

func errorMessage(err error) ServerMessage {
	return ServerMessage{
		Type:  MsgError,
		Code:  errorCode(err),
		Error: err.Error(),
	}
}
