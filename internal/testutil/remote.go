package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mesh-intelligence/notesync/pkg/types"
)

// Remote method names used for scripting failures and inspecting calls.
const (
	MethodList   = "list"
	MethodCreate = "create"
	MethodUpdate = "update"
	MethodDelete = "delete"
)

var _ types.Remote = (*FakeRemote)(nil)

// Call records one invocation of the fake remote.
type Call struct {
	Method  string
	ID      string
	Payload types.CreatePayload
}

// FakeRemote is an in-memory remote authority. Created notes get ids
// "r-1", "r-2", ... in order. Failures are scripted per method. Update and
// Delete of an unknown id fail with an error matching types.ErrRemoteNotFound,
// as the reference server's 404 does.
type FakeRemote struct {
	mu      sync.Mutex
	notes   []types.RemoteNote
	nextID  int
	fails   map[string][]error
	calls   []Call
	block   chan struct{}
	blocked map[string]bool
	now     func() time.Time
}

// NewFakeRemote returns an empty fake remote.
func NewFakeRemote() *FakeRemote {
	return &FakeRemote{
		fails:   make(map[string][]error),
		blocked: make(map[string]bool),
		now:     func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) },
	}
}

// Seed adds notes to the remote state as if created elsewhere.
func (r *FakeRemote) Seed(notes ...types.RemoteNote) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, notes...)
}

// FailNext makes the next call of method return err. Multiple calls queue
// up in order.
func (r *FakeRemote) FailNext(method string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fails[method] = append(r.fails[method], err)
}

// Block makes calls of method wait until the context expires or Unblock is
// called.
func (r *FakeRemote) Block(method string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.block == nil {
		r.block = make(chan struct{})
	}
	r.blocked[method] = true
}

// Unblock releases every blocked call.
func (r *FakeRemote) Unblock() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.block != nil {
		close(r.block)
		r.block = nil
	}
	r.blocked = make(map[string]bool)
}

// Notes returns a copy of the remote state.
func (r *FakeRemote) Notes() []types.RemoteNote {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]types.RemoteNote(nil), r.notes...)
}

// Calls returns every recorded call in order.
func (r *FakeRemote) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// CallsFor returns the recorded calls of one method.
func (r *FakeRemote) CallsFor(method string) []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Call
	for _, c := range r.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// begin records the call, waits if the method is blocked and pops a
// scripted failure.
func (r *FakeRemote) begin(ctx context.Context, c Call) error {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	block := r.block
	isBlocked := r.blocked[c.Method]
	var err error
	if q := r.fails[c.Method]; len(q) > 0 {
		err = q[0]
		r.fails[c.Method] = q[1:]
	}
	r.mu.Unlock()

	if isBlocked && block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return types.RemoteError(c.Method, ctx.Err())
		}
	}
	if err != nil {
		return types.RemoteError(c.Method, err)
	}
	return nil
}

// List implements types.Remote.
func (r *FakeRemote) List(ctx context.Context) ([]types.RemoteNote, error) {
	if err := r.begin(ctx, Call{Method: MethodList}); err != nil {
		return nil, err
	}
	return r.Notes(), nil
}

// Create implements types.Remote.
func (r *FakeRemote) Create(ctx context.Context, p types.CreatePayload) (types.RemoteNote, error) {
	if err := r.begin(ctx, Call{Method: MethodCreate, Payload: p}); err != nil {
		return types.RemoteNote{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	n := types.RemoteNote{
		ID:          fmt.Sprintf("r-%d", r.nextID),
		Title:       p.Title,
		Description: p.Description,
		Image:       p.Image,
		CreatedAt:   r.now(),
		UpdatedAt:   r.now(),
	}
	r.notes = append(r.notes, n)
	return n, nil
}

// Update implements types.Remote.
func (r *FakeRemote) Update(ctx context.Context, p types.UpdatePayload) (types.RemoteNote, error) {
	call := Call{Method: MethodUpdate, ID: p.ID, Payload: types.CreatePayload{Title: p.Title, Description: p.Description, Image: p.Image}}
	if err := r.begin(ctx, call); err != nil {
		return types.RemoteNote{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notes {
		if r.notes[i].ID == p.ID {
			r.notes[i].Title = p.Title
			r.notes[i].Description = p.Description
			r.notes[i].Image = p.Image
			r.notes[i].UpdatedAt = r.now()
			return r.notes[i], nil
		}
	}
	return types.RemoteNote{}, notFound(MethodUpdate, p.ID)
}

// Delete implements types.Remote.
func (r *FakeRemote) Delete(ctx context.Context, id string) error {
	if err := r.begin(ctx, Call{Method: MethodDelete, ID: id}); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notes {
		if r.notes[i].ID == id {
			r.notes = append(r.notes[:i], r.notes[i+1:]...)
			return nil
		}
	}
	return notFound(MethodDelete, id)
}

// Remove drops a note from the remote state as if deleted elsewhere.
func (r *FakeRemote) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notes {
		if r.notes[i].ID == id {
			r.notes = append(r.notes[:i], r.notes[i+1:]...)
			return
		}
	}
}

// notFound mirrors the reference server's 404 for an unknown id.
func notFound(method, id string) error {
	return types.RemoteError(method, fmt.Errorf("%w: %s", types.ErrRemoteNotFound, id))
}
