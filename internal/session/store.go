package session

import (
	"strings"
	"sync"

	"github.com/louisbranch/growthlab/internal/econ"
)

// Store maps session identifiers to their ordered state histories. Returned
// histories are always copies; the store keeps the only mutable reference.
type Store interface {
	// Join creates the session with the initial state if it does not exist
	// and returns the full history. Joining an existing session is a no-op
	// on state.
	Join(id string) ([]econ.EconomicState, error)
	// History returns the full history, or CodeSessionNotFound if the
	// session was never joined. It never creates a session.
	History(id string) ([]econ.EconomicState, error)
	// Append adds one state to an existing session's history.
	Append(id string, state econ.EconomicState) error
}

type sessionRecord struct {
	mu      sync.Mutex
	history []econ.EconomicState
}

func (r *sessionRecord) snapshot() []econ.EconomicState {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]econ.EconomicState, len(r.history))
	copy(out, r.history)
	return out
}

// MemoryStore is the in-process Store. The outer map has its own lock;
// each session's history is guarded by its record's lock, so sessions never
// contend with each other. Sessions live for process uptime.
type MemoryStore struct {
	initial econ.EconomicState

	mu       sync.RWMutex
	sessions map[string]*sessionRecord
}

// NewMemoryStore creates a store whose sessions all begin with the given
// initial state.
func NewMemoryStore(initial econ.EconomicState) *MemoryStore {
	return &MemoryStore{
		initial:  initial,
		sessions: make(map[string]*sessionRecord),
	}
}

// Join implements Store.
func (s *MemoryStore) Join(id string) ([]econ.EconomicState, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, NewError(CodeSessionNotFound, "session id is required")
	}

	s.mu.Lock()
	record, ok := s.sessions[id]
	if !ok {
		record = &sessionRecord{history: []econ.EconomicState{s.initial}}
		s.sessions[id] = record
	}
	s.mu.Unlock()

	return record.snapshot(), nil
}

// History implements Store.
func (s *MemoryStore) History(id string) ([]econ.EconomicState, error) {
	record, err := s.record(id)
	if err != nil {
		return nil, err
	}
	return record.snapshot(), nil
}

// Append implements Store.
func (s *MemoryStore) Append(id string, state econ.EconomicState) error {
	record, err := s.record(id)
	if err != nil {
		return err
	}
	record.mu.Lock()
	record.history = append(record.history, state)
	record.mu.Unlock()
	return nil
}

func (s *MemoryStore) record(id string) (*sessionRecord, error) {
	id = strings.TrimSpace(id)
	s.mu.RLock()
	record, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, NewError(CodeSessionNotFound, "session "+id+" was never joined")
	}
	return record, nil
}
