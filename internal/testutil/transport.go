package testutil

import "github.com/roach88/rotnet/internal/wire"

// ScriptedTransport is a one-sided transport: tests queue inbound buffers
// and inspect what was sent. Ownership follows the usual rule, lost on
// Send and regained on a successful receive.
type ScriptedTransport struct {
	Turn    bool
	Inbox   []wire.Buffer
	Sent    []wire.Buffer
	SendErr error
	RecvErr error

	Receives int
}

// NewScriptedTransport creates a transport that starts with or without the turn.
func NewScriptedTransport(turn bool) *ScriptedTransport {
	return &ScriptedTransport{Turn: turn}
}

// Queue appends inbound buffers.
func (t *ScriptedTransport) Queue(bufs ...wire.Buffer) {
	t.Inbox = append(t.Inbox, bufs...)
}

// Send records b and gives up the turn.
func (t *ScriptedTransport) Send(b wire.Buffer) error {
	if t.SendErr != nil {
		return t.SendErr
	}
	t.Sent = append(t.Sent, b)
	t.Turn = false
	return nil
}

// TryReceive pops the next queued buffer, if any, and takes the turn.
func (t *ScriptedTransport) TryReceive() (wire.Buffer, bool, error) {
	t.Receives++
	if t.RecvErr != nil {
		return wire.Buffer{}, false, t.RecvErr
	}
	if len(t.Inbox) == 0 {
		return wire.Buffer{}, false, nil
	}
	b := t.Inbox[0]
	t.Inbox = t.Inbox[1:]
	t.Turn = true
	return b, true, nil
}

// HasTurn reports ownership.
func (t *ScriptedTransport) HasTurn() bool {
	return t.Turn
}
