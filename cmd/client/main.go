package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/url"
	"os"

	"github.com/gorilla/websocket"
	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"

	"github.com/cardbattle/war-server-go/internal/room"
	"github.com/cardbattle/war-server-go/internal/server"
)

var addr = flag.String("addr", "localhost:8080", "server host:port")

func main() {
	flag.Parse()

	pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("W", pterm.FgRed.ToStyle()),
		putils.LettersFromStringWithStyle("ar", pterm.FgDarkGray.ToStyle()),
	).Render()

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		pterm.Error.Printfln("Could not reach the server at %s: %v", *addr, err)
		os.Exit(1)
	}
	defer conn.Close()

	name, _ := pterm.DefaultInteractiveTextInput.WithDefaultText("Enter your name").Show()
	pterm.Println()

	incoming := make(chan server.ServerMessage, 16)
	go readLoop(conn, incoming)

	c := &client{conn: conn, incoming: incoming, name: name}
	if err := c.enterRoom(); err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}

	c.play()
}

type client struct {
	conn     *websocket.Conn
	incoming chan server.ServerMessage

	name          string
	roomID        string
	participantID string
	snap          *room.Snapshot
}

func readLoop(conn *websocket.Conn, out chan<- server.ServerMessage) {
	defer close(out)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg server.ServerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		out <- msg
	}
}

func (c *client) send(msg server.ClientMessage) error {
	return c.conn.WriteJSON(msg)
}

// next blocks until the server sends another frame. A closed channel
// means the connection dropped.
func (c *client) next() (server.ServerMessage, error) {
	msg, ok := <-c.incoming
	if !ok {
		return server.ServerMessage{}, fmt.Errorf("connection to the server was lost")
	}
	return msg, nil
}

func (c *client) enterRoom() error {
	mode, _ := pterm.DefaultInteractiveSelect.
		WithDefaultText("What would you like to do?").
		WithOptions([]string{"Create a room", "Join a room"}).
		Show()

	switch mode {
	case "Create a room":
		if err := c.send(server.ClientMessage{Type: server.MsgCreateRoom, Name: c.name}); err != nil {
			return err
		}
	default:
		roomID, _ := pterm.DefaultInteractiveTextInput.WithDefaultText("Enter the room code").Show()
		if err := c.send(server.ClientMessage{Type: server.MsgJoinRoom, Name: c.name, RoomID: roomID}); err != nil {
			return err
		}
	}

	msg, err := c.next()
	if err != nil {
		return err
	}
	if msg.Type == server.MsgError {
		return fmt.Errorf("%s", msg.Error)
	}
	c.roomID = msg.RoomID
	c.participantID = msg.ParticipantID
	c.snap = msg.Snapshot

	pterm.Success.Printfln("You are in room %s", c.roomID)
	if msg.Type == server.MsgRoomCreated {
		pterm.Info.Printfln("Share the code %s with your opponent", pterm.LightCyan(c.roomID))
	}
	return nil
}

func (c *client) play() {
	for {
		switch c.snap.Status {
		case "WAITING":
			if !c.waitFor("Waiting for an opponent to join ...", func() bool {
				return c.snap.Status != "WAITING"
			}) {
				return
			}
		case "READY", "IN_PROGRESS", "AWAITING_BATTLE":
			printState(c.snap, c.participantID)
			if !c.takeTurn() {
				return
			}
		case "RESOLVED":
			printState(c.snap, c.participantID)
			printOutcome(c.snap, c.participantID)
			if !c.afterGame() {
				return
			}
		default:
			prev := c.snap.Status
			if !c.waitFor("Waiting for the room ...", func() bool {
				return c.snap.Status != prev
			}) {
				return
			}
		}
	}
}

// takeTurn selects a card and declares readiness, then waits for the
// confrontation to commit. Returns false when the session is over.
func (c *client) takeTurn() bool {
	me := findParticipant(c.snap, c.participantID)
	if me == nil {
		return false
	}

	// alternating rooms gate the pick on the turn marker
	if c.snap.TurnID != "" && c.snap.TurnID != c.participantID && !me.Ready {
		return c.waitFor("Waiting for your opponent to pick first ...", func() bool {
			return c.snap.Status == "RESOLVED" || c.snap.TurnID == "" || c.snap.TurnID == c.participantID
		})
	}

	if !me.Ready {
		options := make([]string, len(me.Hand))
		for i, card := range me.Hand {
			options[i] = card.String()
		}
		pick, _ := pterm.DefaultInteractiveSelect.
			WithDefaultText("Select a card to commit").
			WithOptions(options).
			WithMaxHeight(10).
			Show()
		cardID := ""
		for i, label := range options {
			if label == pick {
				cardID = me.Hand[i].ID
			}
		}

		if err := c.send(server.ClientMessage{Type: server.MsgSelectCard, RoomID: c.roomID, CardID: cardID}); err != nil {
			pterm.Error.Println(err.Error())
			return false
		}
		committed, alive := c.awaitAck()
		if !alive {
			return false
		}
		if !committed {
			// rejected pick, reprompt from the refreshed snapshot
			return true
		}
		if err := c.send(server.ClientMessage{Type: server.MsgDeclareReady, RoomID: c.roomID}); err != nil {
			pterm.Error.Println(err.Error())
			return false
		}
	}

	return c.waitForBattle()
}

// awaitAck consumes frames until the select_card ack or error arrives.
// Interleaved broadcasts still refresh the local snapshot. An
// already_played rejection means the selection stuck on a previous
// attempt, so it counts as committed.
func (c *client) awaitAck() (committed, alive bool) {
	for {
		msg, err := c.next()
		if err != nil {
			pterm.Error.Println(err.Error())
			return false, false
		}
		switch msg.Type {
		case server.MsgAck:
			if msg.Snapshot != nil {
				c.snap = msg.Snapshot
			}
			return true, true
		case server.MsgError:
			if msg.Code == "already_played" {
				return true, true
			}
			pterm.Error.Printfln("Rejected: %s", msg.Error)
			return false, true
		default:
			if !c.apply(msg) {
				return false, false
			}
		}
	}
}

// waitForBattle spins until the confrontation commits. The commit
// always removes at least the selected card from the hand, so a
// shrinking hand is the signal that the battle resolved.
func (c *client) waitForBattle() bool {
	me := findParticipant(c.snap, c.participantID)
	if me == nil {
		return false
	}
	before := me.Remaining
	return c.waitFor("Waiting for the battle to resolve ...", func() bool {
		if c.snap.Status == "RESOLVED" {
			return true
		}
		me := findParticipant(c.snap, c.participantID)
		return me != nil && me.Remaining < before
	})
}

// waitFor consumes broadcasts under a spinner until done reports true
// against the refreshed snapshot.
func (c *client) waitFor(text string, done func() bool) bool {
	spinner, _ := pterm.DefaultSpinner.Start(text)
	for {
		msg, err := c.next()
		if err != nil {
			spinner.Fail()
			pterm.Error.Println(err.Error())
			return false
		}
		if !c.apply(msg) {
			spinner.Fail()
			return false
		}
		if done() {
			spinner.Success()
			return true
		}
	}
}

// apply folds a broadcast into local state. Returns false when the room
// is gone and the session should end.
func (c *client) apply(msg server.ServerMessage) bool {
	switch msg.Type {
	case "room_state":
		if msg.Snapshot != nil {
			c.snap = msg.Snapshot
		}
	case "participant_left":
		pterm.Warning.Println(msg.Message)
		if msg.Snapshot != nil {
			c.snap = msg.Snapshot
		}
	case "room_closed":
		pterm.Warning.Println("The room was closed")
		return false
	case server.MsgError:
		pterm.Error.Println(msg.Error)
	}
	return true
}

func (c *client) afterGame() bool {
	choice, _ := pterm.DefaultInteractiveSelect.
		WithDefaultText("The game is over. What now?").
		WithOptions([]string{"Play again", "Leave"}).
		Show()

	if choice == "Leave" {
		c.send(server.ClientMessage{Type: server.MsgLeave, RoomID: c.roomID})
		pterm.Info.Println("Thanks for playing")
		return false
	}

	if err := c.send(server.ClientMessage{Type: server.MsgNewGame, RoomID: c.roomID}); err != nil {
		pterm.Error.Println(err.Error())
		return false
	}
	return c.waitFor("Dealing a fresh game ...", func() bool {
		return c.snap.Status != "RESOLVED"
	})
}

func findParticipant(snap *room.Snapshot, id string) *room.ParticipantSnapshot {
	for i := range snap.Participants {
		if snap.Participants[i].ID == id {
			return &snap.Participants[i]
		}
	}
	return nil
}
