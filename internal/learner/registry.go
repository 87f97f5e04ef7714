package learner

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

var (
	// ErrUnknownLearner is returned for IDs the registry has never seen.
	ErrUnknownLearner = errors.New("unknown learner")
	// ErrBusy is returned when a learner is already checked out by a session.
	ErrBusy = errors.New("learner is in a running session")
)

// Registry holds every known learner State by ID. Lookups are safe for
// concurrent use; a State itself is handed to one session at a time via
// Checkout and Release.
type Registry struct {
	mu       sync.Mutex
	learners map[string]*State
	busy     map[string]bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		learners: make(map[string]*State),
		busy:     make(map[string]bool),
	}
}

// Get returns the learner's state or ErrUnknownLearner.
func (r *Registry) Get(id string) (*State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.learners[id]
	if !ok {
		return nil, ErrUnknownLearner
	}
	return s, nil
}

// GetOrCreate returns the learner's state, registering a fresh one if needed.
func (r *Registry) GetOrCreate(id string) *State {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.learners[id]
	if !ok {
		s = New(id)
		r.learners[id] = s
	}
	return s
}

// Put registers s under its LearnerID, replacing any previous state. It
// fails with ErrBusy while a session holds that learner.
func (r *Registry) Put(s *State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.busy[s.LearnerID] {
		return ErrBusy
	}
	r.learners[s.LearnerID] = s
	return nil
}

// Delete forgets a learner. It fails with ErrBusy while a session holds it.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.busy[id] {
		return ErrBusy
	}
	delete(r.learners, id)
	return nil
}

// IDs returns the registered learner IDs, sorted.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Sorted(maps.Keys(r.learners))
}

// Checkout marks the learner as owned by a session and returns its state,
// creating it if needed. A second Checkout before Release fails with
// ErrBusy.
func (r *Registry) Checkout(id string) (*State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.busy[id] {
		return nil, ErrBusy
	}
	s, ok := r.learners[id]
	if !ok {
		s = New(id)
		r.learners[id] = s
	}
	r.busy[id] = true
	return s, nil
}

// CheckoutOrLoad is Checkout for learners the registry may not hold yet:
// an unknown id is marked busy first and then filled from load, so no
// other caller can register or check out a second state for it meanwhile.
// If load fails the id is released and stays unknown.
func (r *Registry) CheckoutOrLoad(id string, load func() (*State, error)) (*State, error) {
	r.mu.Lock()
	if r.busy[id] {
		r.mu.Unlock()
		return nil, ErrBusy
	}
	r.busy[id] = true
	if s, ok := r.learners[id]; ok {
		r.mu.Unlock()
		return s, nil
	}
	r.mu.Unlock()

	s, err := load()

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		delete(r.busy, id)
		return nil, err
	}
	if s.LearnerID != id {
		delete(r.busy, id)
		return nil, fmt.Errorf("loaded state for %q, want %q", s.LearnerID, id)
	}
	r.learners[id] = s
	return s, nil
}

// Release returns a checked-out learner to the registry.
func (r *Registry) Release(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.busy, id)
}
