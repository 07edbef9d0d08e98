package harness

// TraceEvent is one buffer as seen by one peer.
type TraceEvent struct {
	Seq  int64  `json:"seq"`
	Peer string `json:"peer"`
	Dir  string `json:"dir"`
	Kind string `json:"kind"`
	Hex  string `json:"hex"`
}

// PeerState is a peer's observable state when the scenario ends.
type PeerState struct {
	SessionID string `json:"session_id"`
	Phase     string `json:"phase"`
	HasTurn   bool   `json:"has_turn"`
	Cursor    int    `json:"cursor"`
	Error     string `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held and nothing panicked.
	Pass bool `json:"pass"`

	// Trace is every exchanged buffer in seq order.
	Trace []TraceEvent `json:"trace"`

	// Errors explains each failure. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Peers holds the final state of "host" and "join".
	Peers map[string]PeerState `json:"peers"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		Peers:  make(map[string]PeerState),
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
