package types

import "context"

// KVStore is the durable key-value persistence layer. Values are opaque
// strings; a missing key is reported with ok=false and a nil error.
type KVStore interface {
	// Get returns the value stored under key.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing a missing key succeeds.
	Remove(ctx context.Context, key string) error
}

// CreatePayload is the body submitted to the remote authority for a new note.
type CreatePayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
}

// UpdatePayload is the body submitted to the remote authority for an
// existing note, keyed by its remote id.
type UpdatePayload struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
}

// Remote is the remote authority. Implementations wrap every transport or
// non-success failure in ErrRemote.
type Remote interface {
	// List returns every note the remote authority holds.
	List(ctx context.Context) ([]RemoteNote, error)

	// Create submits a new note and returns it with its assigned id.
	Create(ctx context.Context, payload CreatePayload) (RemoteNote, error)

	// Update replaces the fields of the note with payload.ID.
	Update(ctx context.Context, payload UpdatePayload) (RemoteNote, error)

	// Delete removes the note with the given remote id.
	Delete(ctx context.Context, id string) error
}

// Connectivity observes network reachability.
type Connectivity interface {
	// Current returns the present connectivity state.
	Current(ctx context.Context) (NetState, error)

	// OnChange registers handler for state changes and returns a function
	// that removes the registration. Handlers may be called from any
	// goroutine.
	OnChange(handler func(NetState)) (unsubscribe func())
}

// PayloadFor builds the create payload for n.
func PayloadFor(n Note) CreatePayload {
	return CreatePayload{Title: n.Title, Description: n.Description, Image: n.Image}
}

// UpdatePayloadFor builds the update payload for n keyed by remoteID.
func UpdatePayloadFor(remoteID string, n Note) UpdatePayload {
	return UpdatePayload{ID: remoteID, Title: n.Title, Description: n.Description, Image: n.Image}
}
