// Package game serializes concurrent participant actions into a single
// ordered stream of authoritative state transitions per room and fans each
// committed state out to the room's subscribers.
package game

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/cardbattle/war-server-go/internal/battle"
	"github.com/cardbattle/war-server-go/internal/card"
	"github.com/cardbattle/war-server-go/internal/room"
	"go.uber.org/zap"
)

// EventType tags an event fanned out to room subscribers.
type EventType string

const (
	// EventSnapshot carries a fresh authoritative room snapshot.
	EventSnapshot EventType = "room_state"
	// EventParticipantLeft notifies the remaining participant of a leave
	// or disconnect. Connectivity is a state transition, not a fault.
	EventParticipantLeft EventType = "participant_left"
	// EventRoomClosed signals room teardown.
	EventRoomClosed EventType = "room_closed"
)

// Event is one fan-out message to a subscribed participant.
type Event struct {
	Type     EventType      `json:"type"`
	RoomID   string         `json:"room_id"`
	Snapshot *room.Snapshot `json:"snapshot,omitempty"`
	Message  string         `json:"message,omitempty"`
}

// subscriberBuffer bounds the per-subscriber event queue. A subscriber that
// falls this far behind starts losing intermediate snapshots; the next one
// it does receive supersedes them anyway.
const subscriberBuffer = 8

// Synchronizer gates turn resolution on both participants being ready,
// commits each confrontation atomically under the room's lock, and
// broadcasts the resulting snapshot. All mutation of a room's game state
// goes through it.
type Synchronizer struct {
	registry *room.Manager
	rules    battle.Rules
	logger   *zap.Logger

	rngMu sync.Mutex
	rng   *rand.Rand

	subMu sync.Mutex
	subs  map[string]map[string]chan Event
}

// NewSynchronizer creates a synchronizer over the given registry. The
// ruleset is validated up front so dealing can never come up short of
// cards. A nil rng is seeded from the clock; tests inject a fixed source
// for reproducible deals.
func NewSynchronizer(registry *room.Manager, rules battle.Rules, rng *rand.Rand, logger *zap.Logger) (*Synchronizer, error) {
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Synchronizer{
		registry: registry,
		rules:    rules,
		logger:   logger,
		rng:      rng,
		subs:     make(map[string]map[string]chan Event),
	}, nil
}

// Rules returns the ruleset the synchronizer resolves turns with.
func (s *Synchronizer) Rules() battle.Rules {
	return s.rules
}

// Create allocates a new room for the host and returns its snapshot.
func (s *Synchronizer) Create(hostName string) (room.Snapshot, string, error) {
	r, host, err := s.registry.CreateRoom(hostName)
	if err != nil {
		return room.Snapshot{}, "", err
	}
	return r.Snapshot(), host.ID, nil
}

// Join seats a guest in an existing room. Filling a room deals a fresh
// shuffled deck and broadcasts the Ready state.
func (s *Synchronizer) Join(roomID, guestName string) (room.Snapshot, string, error) {
	r, guest, err := s.registry.JoinRoom(roomID, guestName)
	if err != nil {
		return room.Snapshot{}, "", err
	}

	snap := r.CommitSnapshot(func(r *room.Room) {
		if r.Status == room.StatusReady && len(r.Participants) == room.MaxParticipants {
			s.dealLocked(r)
		}
	})

	s.broadcast(roomID, Event{Type: EventSnapshot, RoomID: roomID, Snapshot: &snap})
	return snap, guest.ID, nil
}

// SelectCard records a participant's pending selection. The card stays in
// the hand until the confrontation commits, so a failed selection leaves
// the room unchanged. Re-selecting before readiness replaces the pending
// card.
func (s *Synchronizer) SelectCard(roomID, participantID, cardID string) (room.Snapshot, error) {
	r, ok := s.registry.GetRoom(roomID)
	if !ok {
		return room.Snapshot{}, room.ErrRoomNotFound
	}

	var opErr error
	snap := r.CommitSnapshot(func(r *room.Room) {
		if opErr = playableStatus(r); opErr != nil {
			return
		}
		p, ok := r.Participants.ByID(participantID)
		if !ok {
			opErr = room.ErrParticipantNotFound
			return
		}
		if s.rules.Format == battle.FormatAlternating && r.TurnID != "" && r.TurnID != participantID {
			opErr = ErrNotYourTurn
			return
		}

		idx := indexOf(p.Hand, cardID)
		if idx == -1 {
			if indexOf(p.Played, cardID) != -1 {
				opErr = ErrAlreadyPlayed
			} else {
				opErr = ErrCardNotFound
			}
			return
		}

		selected := p.Hand[idx]
		selected.FaceUp = false // selections stay hidden until both reveal
		p.Pending = &selected

		if s.rules.Format == battle.FormatAlternating {
			r.TurnID = otherParticipantID(r, participantID)
		}
	})
	if opErr != nil {
		return room.Snapshot{}, opErr
	}

	s.logger.Debug("card selected",
		zap.String("room_id", roomID),
		zap.String("participant_id", participantID),
		zap.String("card_id", cardID),
	)

	return snap, nil
}

// DeclareReady marks the participant ready. Once both participants of the
// room are ready with pending selections the confrontation is resolved,
// committed, and the end-of-game conditions evaluated, all within a single
// critical section on the room; the resulting snapshot is broadcast to both
// participants.
func (s *Synchronizer) DeclareReady(roomID, participantID string) (room.Snapshot, error) {
	r, ok := s.registry.GetRoom(roomID)
	if !ok {
		return room.Snapshot{}, room.ErrRoomNotFound
	}

	var (
		opErr     error
		committed bool
	)
	snap := r.CommitSnapshot(func(r *room.Room) {
		if opErr = playableStatus(r); opErr != nil {
			return
		}
		p, ok := r.Participants.ByID(participantID)
		if !ok {
			opErr = room.ErrParticipantNotFound
			return
		}
		p.Ready = true

		host, guest := r.Participants[0], r.Participants[1]
		if host.Ready && guest.Ready && host.Pending != nil && guest.Pending != nil {
			s.commitTurnLocked(r)
			committed = true
		}
	})
	if opErr != nil {
		return room.Snapshot{}, opErr
	}

	if committed {
		s.logger.Info("confrontation committed",
			zap.String("room_id", roomID),
			zap.String("status", snap.Status),
			zap.String("winner_id", snap.WinnerID),
		)
	}

	s.broadcast(roomID, Event{Type: EventSnapshot, RoomID: roomID, Snapshot: &snap})
	return snap, nil
}

// NewGame re-deals a full room with a fresh shuffled deck, preserving
// participant identities and their cumulative scores.
func (s *Synchronizer) NewGame(roomID string) (room.Snapshot, error) {
	r, ok := s.registry.GetRoom(roomID)
	if !ok {
		return room.Snapshot{}, room.ErrRoomNotFound
	}

	var opErr error
	snap := r.CommitSnapshot(func(r *room.Room) {
		if len(r.Participants) < room.MaxParticipants {
			opErr = ErrRoomNotReady
			return
		}
		r.Status = room.StatusReady
		s.dealLocked(r)
	})
	if opErr != nil {
		return room.Snapshot{}, opErr
	}

	s.logger.Info("new game dealt", zap.String("room_id", roomID))
	s.broadcast(roomID, Event{Type: EventSnapshot, RoomID: roomID, Snapshot: &snap})
	return snap, nil
}

// Leave removes a participant on leave or disconnect. The remaining
// participant is notified; the last leave tears the room down. Committed
// confrontations are never rolled back, only the leaver's pending selection
// is discarded.
func (s *Synchronizer) Leave(roomID, participantID string) error {
	r, ok := s.registry.GetRoom(roomID)
	if !ok {
		return room.ErrRoomNotFound
	}

	var name string
	r.View(func(r *room.Room) {
		if p, ok := r.Participants.ByID(participantID); ok {
			name = p.Name
		}
	})

	_, deleted, err := s.registry.RemoveParticipant(roomID, participantID)
	if err != nil {
		return err
	}

	s.Unsubscribe(roomID, participantID)

	if deleted {
		s.broadcast(roomID, Event{Type: EventRoomClosed, RoomID: roomID})
		s.dropRoomSubscribers(roomID)
		return nil
	}

	snap := r.Snapshot()
	s.broadcast(roomID, Event{
		Type:     EventParticipantLeft,
		RoomID:   roomID,
		Snapshot: &snap,
		Message:  name + " left the room",
	})
	return nil
}

// ReapAbandoned periodically tears down rooms that have sat below capacity
// for longer than the registry's grace period. A reaped room goes through
// the same teardown as the last leave: subscribers are told the room closed
// and their channels dropped. Runs until ctx is cancelled.
func (s *Synchronizer) ReapAbandoned(ctx context.Context) {
	ticker := time.NewTicker(s.registry.GracePeriod() / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.reapOnce(now)
		}
	}
}

func (s *Synchronizer) reapOnce(now time.Time) {
	for _, roomID := range s.registry.ReapOnce(now) {
		s.broadcast(roomID, Event{Type: EventRoomClosed, RoomID: roomID})
		s.dropRoomSubscribers(roomID)
		s.logger.Info("abandoned room reaped", zap.String("room_id", roomID))
	}
}

// LiveRoomCount reports the number of live rooms for the health probe.
func (s *Synchronizer) LiveRoomCount() int {
	return s.registry.LiveCount()
}

// Subscribe registers a participant for authoritative state events. Slow
// subscribers lose intermediate events rather than blocking the committer.
func (s *Synchronizer) Subscribe(roomID, participantID string) (<-chan Event, error) {
	r, ok := s.registry.GetRoom(roomID)
	if !ok {
		return nil, room.ErrRoomNotFound
	}
	var found bool
	r.View(func(r *room.Room) {
		_, found = r.Participants.ByID(participantID)
	})
	if !found {
		return nil, room.ErrParticipantNotFound
	}

	ch := make(chan Event, subscriberBuffer)

	s.subMu.Lock()
	defer s.subMu.Unlock()
	if s.subs[roomID] == nil {
		s.subs[roomID] = make(map[string]chan Event)
	}
	if old, ok := s.subs[roomID][participantID]; ok {
		close(old)
	}
	s.subs[roomID][participantID] = ch
	return ch, nil
}

// Unsubscribe drops a participant's event channel.
func (s *Synchronizer) Unsubscribe(roomID, participantID string) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if ch, ok := s.subs[roomID][participantID]; ok {
		delete(s.subs[roomID], participantID)
		close(ch)
	}
}

func (s *Synchronizer) dropRoomSubscribers(roomID string) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for id, ch := range s.subs[roomID] {
		delete(s.subs[roomID], id)
		close(ch)
	}
	delete(s.subs, roomID)
}

func (s *Synchronizer) broadcast(roomID string, ev Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for participantID, ch := range s.subs[roomID] {
		out := ev
		if ev.Snapshot != nil {
			redacted := ev.Snapshot.RedactFor(participantID)
			out.Snapshot = &redacted
		}
		select {
		case ch <- out:
		default:
		}
	}
}

// dealLocked resets the room to a freshly dealt Ready game. The caller must
// hold the room's write lock.
func (s *Synchronizer) dealLocked(r *room.Room) {
	deck := card.NewDeck()
	s.rngMu.Lock()
	deck.Shuffle(s.rng)
	s.rngMu.Unlock()

	rest := deck
	for _, p := range r.Participants {
		var hand card.Deck
		hand, rest, _ = rest.Deal(s.rules.HandSize)
		p.Hand = hand
		p.Played = nil
		p.Won = nil
		p.Pending = nil
		p.Ready = false
	}

	r.Status = room.StatusReady
	r.LastBattle = nil
	r.WinnerID = ""
	if s.rules.Format == battle.FormatAlternating {
		r.TurnID = r.Participants[0].ID
	} else {
		r.TurnID = ""
	}
}

// commitTurnLocked runs the atomic commit sequence: clear ready flags,
// resolve the confrontation, move the staked cards, clear pending
// selections, evaluate end-of-game, and leave the new state ready to
// snapshot. The caller must hold the room's write lock.
func (s *Synchronizer) commitTurnLocked(r *room.Room) {
	host, guest := r.Participants[0], r.Participants[1]
	host.Ready, guest.Ready = false, false

	hostCard, guestCard := *host.Pending, *guest.Pending
	host.Hand = removeCard(host.Hand, hostCard.ID)
	guest.Hand = removeCard(guest.Hand, guestCard.ID)

	res := battle.Resolve(s.rules, hostCard, guestCard, host.Hand, guest.Hand)

	hostStake := append([]card.Card{hostCard}, host.Hand[:res.HostUsed]...)
	guestStake := append([]card.Card{guestCard}, guest.Hand[:res.GuestUsed]...)
	host.Hand = host.Hand[res.HostUsed:]
	guest.Hand = guest.Hand[res.GuestUsed:]

	switch {
	case res.Draw:
		// A drawn confrontation returns each stake to its own won pile.
		host.Won = append(host.Won, hostStake...)
		guest.Won = append(guest.Won, guestStake...)
	case res.Winner == battle.SeatHost:
		host.Won = append(host.Won, hostStake...)
		host.Won = append(host.Won, guestStake...)
	default:
		guest.Won = append(guest.Won, hostStake...)
		guest.Won = append(guest.Won, guestStake...)
	}

	host.Played = append(host.Played, hostStake...)
	guest.Played = append(guest.Played, guestStake...)
	host.Pending, guest.Pending = nil, nil

	final := res.Reveals[len(res.Reveals)-1]
	lastBattle := &room.Battle{
		HostCard:    final.Host,
		GuestCard:   final.Guest,
		Escalations: res.Escalations,
		Draw:        res.Draw,
	}
	switch res.Winner {
	case battle.SeatHost:
		lastBattle.WinnerID = host.ID
	case battle.SeatGuest:
		lastBattle.WinnerID = guest.ID
	}
	r.LastBattle = lastBattle

	if res.Escalations > 0 {
		r.Status = room.StatusAwaitingBattle
	} else {
		r.Status = room.StatusInProgress
	}
	if s.rules.Format == battle.FormatAlternating {
		r.TurnID = host.ID
	}

	s.evaluateEndLocked(r)
}

// evaluateEndLocked resolves the game once a won pile reaches the win
// threshold or either hand is exhausted. The winner is the participant with
// more won cards; an exact tie resolves with no winner.
func (s *Synchronizer) evaluateEndLocked(r *room.Room) {
	host, guest := r.Participants[0], r.Participants[1]

	thresholdHit := len(host.Won) >= s.rules.WinThreshold || len(guest.Won) >= s.rules.WinThreshold
	exhausted := len(host.Hand) == 0 || len(guest.Hand) == 0
	if !thresholdHit && !exhausted {
		return
	}

	r.Status = room.StatusResolved
	r.TurnID = ""
	switch {
	case len(host.Won) > len(guest.Won):
		r.WinnerID = host.ID
		host.GamesWon++
	case len(guest.Won) > len(host.Won):
		r.WinnerID = guest.ID
		guest.GamesWon++
	default:
		r.WinnerID = ""
	}
}

func playableStatus(r *room.Room) error {
	switch r.Status {
	case room.StatusResolved:
		return ErrGameOver
	case room.StatusWaiting:
		return ErrRoomNotReady
	default:
		return nil
	}
}

func indexOf(cards []card.Card, cardID string) int {
	for i, c := range cards {
		if c.ID == cardID {
			return i
		}
	}
	return -1
}

func removeCard(cards []card.Card, cardID string) []card.Card {
	idx := indexOf(cards, cardID)
	if idx == -1 {
		return cards
	}
	out := make([]card.Card, 0, len(cards)-1)
	out = append(out, cards[:idx]...)
	out = append(out, cards[idx+1:]...)
	return out
}

func otherParticipantID(r *room.Room, participantID string) string {
	for _, p := range r.Participants {
		if p.ID != participantID {
			return p.ID
		}
	}
	return ""
}
