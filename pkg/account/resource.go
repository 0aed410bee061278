package account

import (
	"errors"
	"sync"
)

// ErrPending is returned when a resource already has an unconfirmed change in flight.
var ErrPending = errors.New("a change is already being saved")

// State is a point-in-time view of a Resource.
type State[T any] struct {
	Current   T      `json:"current"`
	Pending   bool   `json:"pending"`
	LastError string `json:"lastError,omitempty"`
}

// Resource holds one editable server resource with at most one optimistic change on top.
// Current reports the optimistic value while a change is pending.
type Resource[T any] struct {
	mu        sync.RWMutex
	committed T
	pending   *T
	lastError string
}

func NewResource[T any](initial T) *Resource[T] {
	return &Resource[T]{committed: initial}
}

func (r *Resource[T]) Current() T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.pending != nil {
		return *r.pending
	}
	return r.committed
}

// Committed is the last value confirmed by the server.
func (r *Resource[T]) Committed() T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.committed
}

func (r *Resource[T]) Pending() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pending != nil
}

func (r *Resource[T]) LastError() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastError
}

func (r *Resource[T]) State() State[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := State[T]{Current: r.committed, Pending: r.pending != nil, LastError: r.lastError}
	if r.pending != nil {
		s.Current = *r.pending
	}
	return s
}

// Apply stages next as the optimistic value and clears the last error.
func (r *Resource[T]) Apply(next T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending != nil {
		return ErrPending
	}
	r.pending = &next
	r.lastError = ""
	return nil
}

// Commit replaces the value with the server's copy and drops the optimistic one.
func (r *Resource[T]) Commit(confirmed T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = confirmed
	r.pending = nil
	r.lastError = ""
}

func (r *Resource[T]) Rollback() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = nil
}

// Fail rolls back and records a user-facing message.
func (r *Resource[T]) Fail(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = nil
	r.lastError = message
}
