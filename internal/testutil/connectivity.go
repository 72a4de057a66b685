package testutil

import (
	"context"
	"sync"

	"github.com/mesh-intelligence/notesync/pkg/types"
)

var _ types.Connectivity = (*FakeConnectivity)(nil)

// Offline and Online are convenience states.
var (
	Offline = types.NetState{Kind: types.NetKindNone}
	Online  = types.NetState{Connected: true, Reachable: true, Kind: "wifi"}
)

// FakeConnectivity is a settable connectivity observer. Set notifies every
// registered handler synchronously on the calling goroutine.
type FakeConnectivity struct {
	mu       sync.Mutex
	state    types.NetState
	err      error
	nextID   int
	handlers map[int]func(types.NetState)
	after    func()
}

// NewFakeConnectivity returns an observer reporting initial.
func NewFakeConnectivity(initial types.NetState) *FakeConnectivity {
	return &FakeConnectivity{state: initial, handlers: make(map[int]func(types.NetState))}
}

// Current implements types.Connectivity.
func (c *FakeConnectivity) Current(ctx context.Context) (types.NetState, error) {
	c.mu.Lock()
	state, err := c.state, c.err
	after := c.after
	c.after = nil
	c.mu.Unlock()

	if after != nil {
		after()
	}
	if err != nil {
		return types.NetState{}, err
	}
	return state, nil
}

// AfterCurrent runs fn once, after the next Current has read its state and
// before it returns.
func (c *FakeConnectivity) AfterCurrent(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.after = fn
}

// OnChange implements types.Connectivity.
func (c *FakeConnectivity) OnChange(handler func(types.NetState)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.handlers[id] = handler
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.handlers, id)
	}
}

// Set changes the state and notifies handlers.
func (c *FakeConnectivity) Set(state types.NetState) {
	c.mu.Lock()
	c.state = state
	hs := make([]func(types.NetState), 0, len(c.handlers))
	for _, h := range c.handlers {
		hs = append(hs, h)
	}
	c.mu.Unlock()

	for _, h := range hs {
		h(state)
	}
}

// SetSilently changes the state without notifying handlers.
func (c *FakeConnectivity) SetSilently(state types.NetState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state
}

// FailCurrent makes Current return err until cleared with nil.
func (c *FakeConnectivity) FailCurrent(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

// Handlers returns the number of registered handlers.
func (c *FakeConnectivity) Handlers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.handlers)
}
