package room

import (
	"fmt"
	"sync"
	"time"

	"github.com/cardbattle/war-server-go/internal/card"
)

// Status represents the lifecycle state of a room.
type Status int

const (
	StatusWaiting Status = iota
	StatusReady
	StatusInProgress
	StatusAwaitingBattle
	StatusResolved
)

func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "WAITING"
	case StatusReady:
		return "READY"
	case StatusInProgress:
		return "IN_PROGRESS"
	case StatusAwaitingBattle:
		return "AWAITING_BATTLE"
	case StatusResolved:
		return "RESOLVED"
	default:
		return fmt.Sprintf("STATUS_%d", int(s))
	}
}

// MaxParticipants is the room capacity: exactly one host and one guest.
const MaxParticipants = 2

// Participant is one of the two players of a room. The room exclusively
// owns its participants; they are never shared across rooms.
type Participant struct {
	ID   string
	Name string

	Hand   []card.Card
	Played []card.Card
	Won    []card.Card

	// Pending is the selected but not yet committed card.
	Pending *card.Card
	Ready   bool

	// GamesWon is the cumulative cross-game score; it survives NewGame.
	GamesWon int
}

// Participants is the ordered participant list of a room (host first).
type Participants []*Participant

// ByID finds a participant by id. The caller must already hold the room
// lock through Update or View.
func (ps Participants) ByID(id string) (*Participant, bool) {
	for _, p := range ps {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Battle records the most recent committed confrontation for snapshots.
type Battle struct {
	HostCard    card.Card
	GuestCard   card.Card
	WinnerID    string
	Escalations int
	Draw        bool
}

// Room is the shared context of one game between two participants. All
// fields are guarded by the room's own mutex: every read goes through View
// or Snapshot, every mutation through Update, so a multi-step commit is
// atomic with respect to all other operations on the same room.
type Room struct {
	mu sync.RWMutex

	ID           string
	Participants Participants
	Status       Status
	LastBattle   *Battle
	WinnerID     string

	// TurnID is the participant expected to select next under the
	// alternating turn format; empty when selection is free.
	TurnID string

	CreatedAt time.Time
	// SoloSince is the time the room dropped below two participants; zero
	// while the room is full. Abandoned rooms are reaped against it.
	SoloSince time.Time

	// closed is set under the lock when the room is deleted from the
	// registry, so a join holding a pointer from before the deletion
	// cannot seat a guest in an orphaned room.
	closed bool
}

func newRoom(id string, host *Participant) *Room {
	now := time.Now()
	return &Room{
		ID:           id,
		Participants: Participants{host},
		Status:       StatusWaiting,
		CreatedAt:    now,
		SoloSince:    now,
	}
}

// Update runs fn while holding the room's write lock.
func (r *Room) Update(fn func(*Room)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r)
}

// View runs fn while holding the room's read lock.
func (r *Room) View(fn func(*Room)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn(r)
}

// ParticipantSnapshot is the externally visible projection of a player.
// Hand carries the actual cards and is only ever delivered to its owner;
// RedactFor strips it before a snapshot crosses to the other seat.
type ParticipantSnapshot struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Remaining int         `json:"remaining"`
	Won       int         `json:"won"`
	Ready     bool        `json:"ready"`
	GamesWon  int         `json:"games_won"`
	Hand      []card.Card `json:"hand,omitempty"`
}

// BattleSnapshot is the externally visible projection of the last
// confrontation.
type BattleSnapshot struct {
	HostCard    card.Card `json:"host_card"`
	GuestCard   card.Card `json:"guest_card"`
	WinnerID    string    `json:"winner_id,omitempty"`
	Escalations int       `json:"escalations"`
	Draw        bool      `json:"draw,omitempty"`
}

// Snapshot is the authoritative room projection broadcast to participants.
// Clients replace their local view wholesale with each snapshot.
type Snapshot struct {
	RoomID       string                `json:"room_id"`
	Status       string                `json:"status"`
	Participants []ParticipantSnapshot `json:"participants"`
	LastBattle   *BattleSnapshot       `json:"last_battle,omitempty"`
	WinnerID     string                `json:"winner_id,omitempty"`
	TurnID       string                `json:"turn_id,omitempty"`
}

// Snapshot returns a consistent copy of the room state.
func (r *Room) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

// snapshotLocked builds a snapshot without taking the lock, for use inside
// Update when the committed state must be captured atomically.
func (r *Room) snapshotLocked() Snapshot {
	participants := make([]ParticipantSnapshot, 0, len(r.Participants))
	for _, p := range r.Participants {
		participants = append(participants, ParticipantSnapshot{
			ID:        p.ID,
			Name:      p.Name,
			Remaining: len(p.Hand),
			Won:       len(p.Won),
			Ready:     p.Ready,
			GamesWon:  p.GamesWon,
			Hand:      append([]card.Card(nil), p.Hand...),
		})
	}

	var battle *BattleSnapshot
	if r.LastBattle != nil {
		battle = &BattleSnapshot{
			HostCard:    r.LastBattle.HostCard,
			GuestCard:   r.LastBattle.GuestCard,
			WinnerID:    r.LastBattle.WinnerID,
			Escalations: r.LastBattle.Escalations,
			Draw:        r.LastBattle.Draw,
		}
	}

	return Snapshot{
		RoomID:       r.ID,
		Status:       r.Status.String(),
		Participants: participants,
		LastBattle:   battle,
		WinnerID:     r.WinnerID,
		TurnID:       r.TurnID,
	}
}

// RedactFor returns a copy of the snapshot safe to deliver to the given
// participant: every other hand is stripped down to its count.
func (s Snapshot) RedactFor(participantID string) Snapshot {
	participants := make([]ParticipantSnapshot, len(s.Participants))
	copy(participants, s.Participants)
	for i := range participants {
		if participants[i].ID != participantID {
			participants[i].Hand = nil
		}
	}
	s.Participants = participants
	return s
}

// CommitSnapshot captures the room state atomically with an update: fn runs
// under the write lock and the snapshot is taken before the lock is
// released, so the returned view can never interleave with another commit.
func (r *Room) CommitSnapshot(fn func(*Room)) Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r)
	return r.snapshotLocked()
}
