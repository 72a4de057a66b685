package types

import "encoding/json"

// Envelope wraps every response of the remote authority.
type Envelope struct {
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Success bool            `json:"success"`
}
