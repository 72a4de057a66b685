package types

// Network kinds reported by connectivity observers.
const (
	NetKindUnknown = "unknown"
	NetKindNone    = "none"
	NetKindHTTP    = "http"
)

// NetState is a connectivity snapshot. The zero value is the initial state:
// disconnected, unreachable, with an unknown kind.
type NetState struct {
	Connected bool   `json:"connected"`
	Reachable bool   `json:"reachable"`
	Kind      string `json:"kind"`
}

// Online reports whether the remote authority can be used.
func (s NetState) Online() bool {
	return s.Connected && s.Reachable
}

// KindOrUnknown returns Kind, or NetKindUnknown when it is empty.
func (s NetState) KindOrUnknown() string {
	if s.Kind == "" {
		return NetKindUnknown
	}
	return s.Kind
}
