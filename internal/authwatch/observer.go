// Package authwatch broadcasts a session's authentication state to
// registered listeners.
package authwatch

import (
	"sync"

	"github.com/Antoniofe-cpu/tempus-concierge/internal/models"
)

// State is a snapshot of the authentication state. Loading is true until
// the first resolution; consumers must not act on Identity while it is set.
type State struct {
	Loading  bool
	Identity models.Identity
}

// Observer tracks the current identity and notifies subscribers on every
// change. A new subscriber always receives the current state immediately,
// so the initial loading flag resolves exactly once per listener.
//
// Deliveries are sequenced under the observer's lock: a subscriber sees
// its initial snapshot before any later transition, in order. Callbacks
// must not call back into the Observer.
type Observer struct {
	mu    sync.Mutex
	state State
	subs  map[int]func(State)
	next  int
}

func NewObserver() *Observer {
	return &Observer{
		state: State{Loading: true},
		subs:  make(map[int]func(State)),
	}
}

// Subscribe registers fn and invokes it synchronously with the current
// state before returning. The returned id cancels delivery via Unsubscribe.
func (o *Observer) Subscribe(fn func(State)) int {
	o.mu.Lock()
	defer o.mu.Unlock()

	id := o.next
	o.next++
	o.subs[id] = fn

	// Initial delivery happens under the lock, so a concurrent transition
	// cannot reach the subscriber before its snapshot.
	fn(o.state)
	return id
}

// Unsubscribe stops delivery for the given subscription id.
func (o *Observer) Unsubscribe(id int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.subs, id)
}

// Resolve ends the loading phase with the given identity. An absent
// identity resolves to the signed-out state.
func (o *Observer) Resolve(identity models.Identity) {
	o.transition(State{Loading: false, Identity: identity})
}

// Set publishes a signed-in identity.
func (o *Observer) Set(identity models.Identity) {
	o.transition(State{Loading: false, Identity: identity})
}

// Clear publishes the signed-out state.
func (o *Observer) Clear() {
	o.transition(State{Loading: false})
}

// Current returns the latest state snapshot.
func (o *Observer) Current() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Observer) transition(next State) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.state = next
	for _, fn := range o.subs {
		fn(next)
	}
}
