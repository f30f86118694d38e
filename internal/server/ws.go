package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // the browser client is served from a different origin
	},
}

const sendBuffer = 256

// client is one websocket connection. Messages are processed sequentially
// in its read loop, which gives each participant the in-order application
// guarantee; cross-participant ordering is whatever the server receives
// first.
type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}

	roomID        string
	participantID string
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	conn.SetReadLimit(s.cfg.ReadLimit)

	c := &client{
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}

	go c.writePump()
	s.readPump(c)
}

func (c *client) writePump() {
	defer c.conn.Close()
	for {
		select {
		case msg := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (s *Server) readPump(c *client) {
	defer func() {
		close(c.done)
		c.conn.Close()
		s.handleDisconnect(c)
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.logger.Debug("malformed client message", zap.Error(err))
			c.reply(ServerMessage{Type: MsgError, Code: "malformed", Error: "malformed message"})
			continue
		}

		s.handleMessage(c, msg)
	}
}

func (s *Server) handleMessage(c *client, msg ClientMessage) {
	switch msg.Type {
	case MsgCreateRoom:
		if c.roomID != "" {
			c.reply(ServerMessage{Type: MsgError, Code: "already_in_room", Error: "leave the current room first"})
			return
		}
		snap, participantID, err := s.sync.Create(msg.Name)
		if err != nil {
			c.reply(errorMessage(err))
			return
		}
		c.roomID, c.participantID = snap.RoomID, participantID
		s.subscribe(c)
		own := snap.RedactFor(participantID)
		c.reply(ServerMessage{
			Type:          MsgRoomCreated,
			RoomID:        snap.RoomID,
			ParticipantID: participantID,
			Snapshot:      &own,
		})

	case MsgJoinRoom:
		if c.roomID != "" {
			c.reply(ServerMessage{Type: MsgError, Code: "already_in_room", Error: "leave the current room first"})
			return
		}
		snap, participantID, err := s.sync.Join(msg.RoomID, msg.Name)
		if err != nil {
			c.reply(errorMessage(err))
			return
		}
		c.roomID, c.participantID = snap.RoomID, participantID
		s.subscribe(c)
		own := snap.RedactFor(participantID)
		c.reply(ServerMessage{
			Type:          MsgRoomJoined,
			RoomID:        snap.RoomID,
			ParticipantID: participantID,
			Snapshot:      &own,
		})

	case MsgSelectCard:
		snap, err := s.sync.SelectCard(c.roomID, c.participantID, msg.CardID)
		if err != nil {
			c.reply(errorMessage(err))
			return
		}
		// Acknowledged to the requester only; the opponent learns nothing
		// until both declare ready.
		own := snap.RedactFor(c.participantID)
		c.reply(ServerMessage{Type: MsgAck, RoomID: c.roomID, Snapshot: &own})

	case MsgDeclareReady:
		// The success output is the broadcast snapshot both subscribers
		// receive; no direct reply.
		if _, err := s.sync.DeclareReady(c.roomID, c.participantID); err != nil {
			c.reply(errorMessage(err))
		}

	case MsgNewGame:
		if _, err := s.sync.NewGame(c.roomID); err != nil {
			c.reply(errorMessage(err))
		}

	case MsgLeave:
		s.handleDisconnect(c)
		c.reply(ServerMessage{Type: MsgAck})

	default:
		c.reply(ServerMessage{Type: MsgError, Code: "unknown_type", Error: "unknown message type: " + msg.Type})
	}
}

// handleDisconnect removes the participant from their room, if any. A
// disconnect is a state transition for the room, not a fault.
func (s *Server) handleDisconnect(c *client) {
	if c.roomID == "" {
		return
	}
	if err := s.sync.Leave(c.roomID, c.participantID); err != nil {
		s.logger.Debug("leave on disconnect failed",
			zap.String("room_id", c.roomID),
			zap.String("participant_id", c.participantID),
			zap.Error(err),
		)
	}
	c.roomID, c.participantID = "", ""
}

// subscribe forwards the participant's authoritative event stream onto the
// connection.
func (s *Server) subscribe(c *client) {
	events, err := s.sync.Subscribe(c.roomID, c.participantID)
	if err != nil {
		s.logger.Warn("subscribe failed",
			zap.String("room_id", c.roomID),
			zap.Error(err),
		)
		return
	}

	go func() {
		for ev := range events {
			c.reply(ServerMessage{
				Type:     string(ev.Type),
				RoomID:   ev.RoomID,
				Snapshot: ev.Snapshot,
				Message:  ev.Message,
			})
		}
	}()
}

// reply queues a frame for the connection, dropping it if the client has
// stopped draining its buffer.
func (c *client) reply(msg ServerMessage) {
	b, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- b:
	default:
	}
}
