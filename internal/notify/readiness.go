package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrInvalidTransition indicates a readiness transition that the state machine does not allow.
var ErrInvalidTransition = errors.New("notify: invalid readiness transition")

// State is a position in the store readiness lifecycle.
type State int

const (
	// StateUninitialized is the state at process start.
	StateUninitialized State = iota
	// StateSeeding means the initial data batch is being written.
	StateSeeding
	// StateReady means the store is fully populated. It is terminal.
	StateReady
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateSeeding:
		return "seeding"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Readiness tracks Uninitialized -> Seeding -> Ready and exposes Ready as a closed channel.
type Readiness struct {
	mu    sync.Mutex
	state State
	ready chan struct{}
	bus   *Bus
}

// NewReadiness returns a tracker in StateUninitialized. When bus is non-nil the
// transition to Ready is announced on TopicStore.
func NewReadiness(bus *Bus) *Readiness {
	return &Readiness{
		state: StateUninitialized,
		ready: make(chan struct{}),
		bus:   bus,
	}
}

// State returns the current state.
func (r *Readiness) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Ready returns a channel that is closed once the store reaches StateReady.
func (r *Readiness) Ready() <-chan struct{} {
	return r.ready
}

// IsReady reports whether StateReady has been reached.
func (r *Readiness) IsReady() bool {
	return r.State() == StateReady
}

// BeginSeeding moves Uninitialized to Seeding.
func (r *Readiness) BeginSeeding() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateUninitialized {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.state, StateSeeding)
	}
	r.state = StateSeeding
	return nil
}

// MarkReady moves Uninitialized or Seeding to Ready.
func (r *Readiness) MarkReady() error {
	r.mu.Lock()
	if r.state == StateReady {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.state, StateReady)
	}
	r.state = StateReady
	close(r.ready)
	r.mu.Unlock()

	if r.bus != nil {
		r.bus.Publish(ChangeMessage{
			Topic:     TopicStore,
			EventType: EventStoreReady,
			Timestamp: time.Now().UTC(),
		})
	}
	return nil
}

// Wait blocks until the store is ready or ctx ends.
func (r *Readiness) Wait(ctx context.Context) error {
	select {
	case <-r.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
