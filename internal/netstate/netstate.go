// Package netstate provides connectivity observers for the sync core.
//
// FileObserver follows a JSON state file, which lets scripts and the CLI flip
// the simulated network on and off. ProbeObserver polls the remote
// authority's health endpoint. Static reports a fixed state.
package netstate

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/mesh-intelligence/notesync/pkg/types"
)

// Option configures an observer.
type Option func(*options)

type options struct {
	logger *slog.Logger
	http   *http.Client
}

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithHTTPClient sets the client ProbeObserver uses.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.http = hc }
}

func buildOptions(opts []Option) options {
	o := options{
		logger: slog.New(slog.DiscardHandler),
		http:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// handlers is the change-handler registry shared by the observers.
type handlers struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(types.NetState)
}

func (h *handlers) add(fn func(types.NetState)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.fns == nil {
		h.fns = make(map[int]func(types.NetState))
	}
	id := h.next
	h.next++
	h.fns[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.fns, id)
	}
}

func (h *handlers) notify(state types.NetState) {
	h.mu.Lock()
	fns := make([]func(types.NetState), 0, len(h.fns))
	for _, fn := range h.fns {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}

func (h *handlers) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.fns)
}

var _ types.Connectivity = Static{}

// Static reports a fixed state and never notifies.
type Static struct {
	State types.NetState
}

// Current implements types.Connectivity.
func (s Static) Current(ctx context.Context) (types.NetState, error) {
	return s.State, nil
}

// OnChange implements types.Connectivity.
func (s Static) OnChange(func(types.NetState)) func() {
	return func() {}
}

// AlwaysOnline is the state Static uses in online network mode.
var AlwaysOnline = types.NetState{Connected: true, Reachable: true, Kind: types.NetKindHTTP}
