package session

import (
	"errors"
	"slices"
	"sync"
	"time"
)

// MaxParticipants is the number of players sharing a board.
const MaxParticipants = 2

var (
	ErrNotFound    = errors.New("session not found")
	ErrSessionFull = errors.New("session is full")
)

type Session struct {
	GameID       int64   `json:"gameid"`
	Seed         int64   `json:"seed"`
	Participants []int64 `json:"participants"`
}

// Registry maps game ids to sessions. All methods are safe for concurrent
// use; every operation holds the same lock for its whole duration.
type Registry struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	ids      *idSource
}

func NewRegistry() *Registry {
	return newRegistry(time.Now)
}

func newRegistry(now func() time.Time) *Registry {
	return &Registry{
		sessions: make(map[int64]*Session),
		ids:      &idSource{now: now},
	}
}

// Create opens a session owned by userID and returns its game id. The user
// leaves whatever session it was part of before.
func (r *Registry) Create(userID, seed int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.detach(userID)
	gameID := r.ids.next()
	r.sessions[gameID] = &Session{
		GameID:       gameID,
		Seed:         seed,
		Participants: []int64{userID},
	}
	return gameID
}

// Join adds userID to gameID and returns the session seed.
func (r *Registry) Join(gameID, userID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[gameID]
	if !ok {
		return 0, ErrNotFound
	}
	if !slices.Contains(s.Participants, userID) && len(s.Participants) >= MaxParticipants {
		return 0, ErrSessionFull
	}
	r.detach(userID)
	s.Participants = append(s.Participants, userID)
	return s.Seed, nil
}

// FindSessionOf returns the game id userID takes part in. With remove set
// the user is also taken out of the session; the session itself stays even
// when it ends up empty.
func (r *Registry) FindSessionOf(userID int64, remove bool) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.find(userID)
	if s == nil {
		return 0, ErrNotFound
	}
	if remove {
		s.Participants = slices.DeleteFunc(s.Participants, func(id int64) bool {
			return id == userID
		})
	}
	return s.GameID, nil
}

func (r *Registry) SetSeed(gameID, seed int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[gameID]
	if !ok {
		return ErrNotFound
	}
	s.Seed = seed
	return nil
}

// Get returns a copy of the session.
func (r *Registry) Get(gameID int64) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[gameID]
	if !ok {
		return Session{}, ErrNotFound
	}
	return Session{
		GameID:       s.GameID,
		Seed:         s.Seed,
		Participants: slices.Clone(s.Participants),
	}, nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) find(userID int64) *Session {
	for _, s := range r.sessions {
		if slices.Contains(s.Participants, userID) {
			return s
		}
	}
	return nil
}

func (r *Registry) detach(userID int64) {
	for _, s := range r.sessions {
		s.Participants = slices.DeleteFunc(s.Participants, func(id int64) bool {
			return id == userID
		})
	}
}

// idSource hands out strictly increasing millisecond timestamps.
type idSource struct {
	now  func() time.Time
	last int64
}

func (s *idSource) next() int64 {
	id := s.now().UnixMilli()
	if id <= s.last {
		id = s.last + 1
	}
	s.last = id
	return id
}
