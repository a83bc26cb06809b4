package session

import (
	"errors"
	"strings"
	"sync"

	"github.com/louisbranch/growthlab/internal/econ"
)

// Coordinator orchestrates one round for one session: it reads the previous
// state, picks the exogenous row, runs the transition, and appends the
// validated result. Submissions for the same session are serialized by a
// per-session lock; submissions for different sessions run independently.
type Coordinator struct {
	store  Store
	table  econ.Table
	params econ.Params
	base   econ.Baseline

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewCoordinator wires a coordinator over a store and a model configuration.
// An empty exogenous table is a fatal misconfiguration and rejected here.
func NewCoordinator(store Store, table econ.Table, params econ.Params) (*Coordinator, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	base, ok := econ.NewBaseline(table)
	if !ok {
		return nil, NewError(CodeMissingExogenousData, "exogenous table is empty")
	}
	return &Coordinator{
		store:  store,
		table:  table,
		params: params,
		base:   base,
		locks:  make(map[string]*sync.Mutex),
	}, nil
}

// Join creates the session on first use and returns its full history.
// Joining again without an intervening round returns the same history.
func (c *Coordinator) Join(sessionID string) ([]econ.EconomicState, error) {
	return c.store.Join(sessionID)
}

// SubmitRound advances one session by one round and returns the full updated
// history. On any error the history is left untouched: validation happens
// before the append, and the append is the last step.
func (c *Coordinator) SubmitRound(sessionID string, controls econ.Controls) ([]econ.EconomicState, error) {
	if err := controls.Validate(); err != nil {
		return nil, WrapError(CodeInvalidControls, "controls outside playable domain", err)
	}

	lock := c.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	history, err := c.store.History(sessionID)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, NewError(CodeMissingExogenousData, "session has no previous state")
	}
	prev := history[len(history)-1]

	// Once the table is exhausted, late rounds reuse the final row.
	row, ok := c.table.Row(len(history) - 1)
	if !ok {
		return nil, NewError(CodeMissingExogenousData, "exogenous table is empty")
	}

	next, err := econ.Next(prev, controls, row, c.base, c.params)
	if err != nil {
		return nil, WrapError(CodeValidationFailed, "round rejected", err)
	}

	if err := c.store.Append(sessionID, next); err != nil {
		return nil, err
	}
	return append(history, next), nil
}

func (c *Coordinator) sessionLock(sessionID string) *sync.Mutex {
	sessionID = strings.TrimSpace(sessionID)
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[sessionID] = lock
	}
	return lock
}
