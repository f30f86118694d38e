package room

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// idAttempts bounds room id generation before giving up. Collisions on an
// 8-hex-char id are vanishingly rare, so exhaustion practically never
// happens.
const idAttempts = 10

// Manager owns the set of live rooms. Its map is the only globally shared
// mutable structure; each room carries its own lock, so operations on
// different rooms proceed without contention.
type Manager struct {
	rooms map[string]*Room
	mu    sync.RWMutex

	gracePeriod time.Duration
	logger      *zap.Logger
}

// NewManager creates a room manager. gracePeriod bounds how long a room may
// sit with fewer than two connected participants before it is reaped.
func NewManager(gracePeriod time.Duration, logger *zap.Logger) *Manager {
	return &Manager{
		rooms:       make(map[string]*Room),
		gracePeriod: gracePeriod,
		logger:      logger,
	}
}

// CreateRoom allocates a new room in Waiting status holding only the host.
func (m *Manager) CreateRoom(hostName string) (*Room, *Participant, error) {
	hostName = strings.TrimSpace(hostName)
	if hostName == "" {
		return nil, nil, ErrEmptyName
	}

	host := &Participant{
		ID:   uuid.New().String(),
		Name: hostName,
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var id string
	for i := 0; ; i++ {
		if i == idAttempts {
			return nil, nil, ErrIDExhausted
		}
		id = newRoomID()
		if _, taken := m.rooms[id]; !taken {
			break
		}
	}

	r := newRoom(id, host)
	m.rooms[id] = r

	m.logger.Info("room created",
		zap.String("room_id", id),
		zap.String("host_id", host.ID),
		zap.String("host_name", host.Name),
	)

	return r, host, nil
}

// JoinRoom appends a guest to an existing room. Joining the second seat
// transitions the room from Waiting to Ready. A full room is never mutated.
func (m *Manager) JoinRoom(roomID, guestName string) (*Room, *Participant, error) {
	guestName = strings.TrimSpace(guestName)
	if guestName == "" {
		return nil, nil, ErrEmptyName
	}

	r, ok := m.GetRoom(roomID)
	if !ok {
		return nil, nil, ErrRoomNotFound
	}

	guest := &Participant{
		ID:   uuid.New().String(),
		Name: guestName,
	}

	var joinErr error
	r.Update(func(r *Room) {
		if r.closed {
			joinErr = ErrRoomNotFound
			return
		}
		if len(r.Participants) >= MaxParticipants {
			joinErr = ErrRoomFull
			return
		}
		r.Participants = append(r.Participants, guest)
		if len(r.Participants) == MaxParticipants {
			r.Status = StatusReady
			r.SoloSince = time.Time{}
		}
	})
	if joinErr != nil {
		return nil, nil, joinErr
	}

	m.logger.Info("participant joined room",
		zap.String("room_id", roomID),
		zap.String("participant_id", guest.ID),
		zap.String("name", guest.Name),
	)

	return r, guest, nil
}

// RemoveParticipant handles a leave or disconnect. The last participant to
// leave deletes the room; a room left with one participant regresses to
// Waiting and the leaver's uncommitted selection is discarded. Committed
// results are never rolled back.
func (m *Manager) RemoveParticipant(roomID, participantID string) (*Room, bool, error) {
	r, ok := m.GetRoom(roomID)
	if !ok {
		return nil, false, ErrRoomNotFound
	}

	var (
		removeErr error
		remaining int
	)
	r.Update(func(r *Room) {
		idx := -1
		for i, p := range r.Participants {
			if p.ID == participantID {
				idx = i
				break
			}
		}
		if idx == -1 {
			removeErr = ErrParticipantNotFound
			return
		}

		r.Participants = append(r.Participants[:idx], r.Participants[idx+1:]...)
		remaining = len(r.Participants)

		if remaining == 0 {
			r.closed = true
		}
		if remaining == 1 {
			r.Status = StatusWaiting
			r.SoloSince = time.Now()
			for _, p := range r.Participants {
				p.Ready = false
				p.Pending = nil
			}
		}
	})
	if removeErr != nil {
		return nil, false, removeErr
	}

	deleted := false
	if remaining == 0 {
		m.mu.Lock()
		delete(m.rooms, roomID)
		m.mu.Unlock()
		deleted = true
	}

	m.logger.Info("participant removed from room",
		zap.String("room_id", roomID),
		zap.String("participant_id", participantID),
		zap.Int("remaining", remaining),
		zap.Bool("room_deleted", deleted),
	)

	return r, deleted, nil
}

// GetRoom retrieves a room by id.
func (m *Manager) GetRoom(roomID string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[roomID]
	return r, ok
}

// LiveCount returns the number of live rooms.
func (m *Manager) LiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// GracePeriod returns how long a room may sit below capacity before it is
// reaped.
func (m *Manager) GracePeriod() time.Duration {
	return m.gracePeriod
}

// ReapOnce deletes every room whose SoloSince exceeds the grace period and
// returns the reaped ids so the caller can tear down whatever it attached
// to them. Reaped rooms are closed, so a lookup raced against the reap can
// no longer join them.
func (m *Manager) ReapOnce(now time.Time) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var reaped []string
	for id, r := range m.rooms {
		var abandoned bool
		r.Update(func(r *Room) {
			if !r.SoloSince.IsZero() && now.Sub(r.SoloSince) > m.gracePeriod {
				abandoned = true
				r.closed = true
			}
		})
		if abandoned {
			delete(m.rooms, id)
			reaped = append(reaped, id)
			m.logger.Info("abandoned room reaped", zap.String("room_id", id))
		}
	}
	return reaped
}

// newRoomID derives a short shareable room code from a fresh UUID.
func newRoomID() string {
	return uuid.New().String()[:8]
}
