package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/rotnet/internal/session"
)

func (h *Harness) check(a Assertion) error {
	if a.Type == AssertBoardsEqual {
		host, join := h.peers[PeerHost].board, h.peers[PeerJoin].board
		if !boardsEqual(host, join) {
			return fmt.Errorf("boards differ: host at turn %d, join at turn %d", host.Turn(), join.Turn())
		}
		return nil
	}

	p := h.peers[a.Peer]
	switch a.Type {
	case AssertPhase:
		return expectEqual(a.Expect, p.session.Phase().String())
	case AssertHasTurn:
		return expectEqual(a.Expect, p.session.HasTurn())
	case AssertSentCount:
		return expectEqual(a.Count, len(h.sent(a.Peer)))
	case AssertLastSent:
		sent := h.sent(a.Peer)
		if len(sent) == 0 {
			return fmt.Errorf("expected last sent %v, nothing was sent", a.Expect)
		}
		return expectEqual(a.Expect, sent[len(sent)-1].Kind)
	case AssertCursor:
		return expectEqual(a.Count, p.board.Turn())
	case AssertError:
		return checkError(a.Expect, p.err)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// sent returns the peer's sent buffers in order.
func (h *Harness) sent(peer string) []TraceEvent {
	var out []TraceEvent
	for _, ev := range h.result.Trace {
		if ev.Peer == peer && ev.Dir == string(session.Sent) {
			out = append(out, ev)
		}
	}
	return out
}

func expectEqual(expected, actual any) error {
	if fmt.Sprint(expected) != fmt.Sprint(actual) {
		return fmt.Errorf("expected %v, got %v", expected, actual)
	}
	return nil
}

// checkError matches a peer's terminal error against an expectation: empty
// for none, "protocol" for a protocol violation, anything else a substring.
func checkError(expect any, err error) error {
	want, _ := expect.(string)
	switch {
	case want == "":
		if err != nil {
			return fmt.Errorf("expected no error, got %v", err)
		}
	case err == nil:
		return fmt.Errorf("expected error %q, got none", want)
	case want == "protocol":
		if !session.IsProtocolViolation(err) {
			return fmt.Errorf("expected a protocol violation, got %v", err)
		}
	case !strings.Contains(err.Error(), want):
		return fmt.Errorf("expected error containing %q, got %v", want, err)
	}
	return nil
}
