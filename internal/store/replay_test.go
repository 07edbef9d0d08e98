package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rotnet/internal/board"
	"github.com/roach88/rotnet/internal/game"
	"github.com/roach88/rotnet/internal/session"
	"github.com/roach88/rotnet/internal/wire"
)

// recordFullTurn records a host's Move, the guest's ack and the host's
// Rotate of the e-pawn.
func recordFullTurn(t *testing.T, s *Store) {
	t.Helper()
	recordTurn(t, s, 1, session.Sent, game.NewMove(12, 4.5, 4.5), session.PhaseRotate)
	recordTurn(t, s, 2, session.Received, game.None, session.PhaseRotate)
	recordTurn(t, s, 3, session.Sent, game.NewRotate(12, 0), session.PhaseWait)
}

func TestReplay_CleanSession(t *testing.T) {
	s := createTestStore(t)
	createTestSession(t, s, testSessionID)
	recordFullTurn(t, s)

	result, err := s.Replay(context.Background(), testSessionID)
	require.NoError(t, err)

	assert.True(t, result.OK(), "mismatches: %v", result.Mismatches)
	assert.Equal(t, 3, result.Turns)
	assert.Equal(t, 2, result.Effects)
	assert.Equal(t, 2, result.Cursor)

	want := board.StartingPieces(board.LayoutStandard, 0)
	want[12].Y = 4.5
	want[12].Angle = 0
	assert.Equal(t, want, result.Final)
}

func TestReplay_MatchesLiveBoards(t *testing.T) {
	s := createTestStore(t)
	createTestSession(t, s, testSessionID)
	recordFullTurn(t, s)
	recordTurn(t, s, 4, session.Received, game.NewMove(20, 4.5, 3.5), session.PhaseWait)
	recordTurn(t, s, 5, session.Sent, game.None, session.PhaseWait)
	recordTurn(t, s, 6, session.Received, game.Nav(game.KindFirstTurn), session.PhaseWait)

	live := board.New(board.LayoutStandard, 0)
	live.ApplyMove(12, 4.5, 4.5)
	live.ApplyRotate(12, 0)
	live.ApplyMove(20, 4.5, 3.5)
	live.Handle(game.Navigate(game.KindFirstTurn))

	result, err := s.Replay(context.Background(), testSessionID)
	require.NoError(t, err)
	assert.True(t, result.OK())
	assert.Equal(t, live.Turn(), result.Cursor)
	assert.Equal(t, live.Pieces(), result.Final)
}

func TestReplay_ReportsBadBuffers(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestSession(t, s, testSessionID)
	recordTurn(t, s, 1, session.Sent, game.NewMove(12, 4.5, 4.5), session.PhaseRotate)

	padded := wire.Encode(game.None)
	padded[9] = 0xff
	require.NoError(t, s.WriteTurn(ctx, Turn{SessionID: testSessionID, Seq: 2, Direction: session.Received, Tag: 7, Raw: padded, Phase: "rotate"}))
	require.NoError(t, s.WriteTurn(ctx, Turn{SessionID: testSessionID, Seq: 3, Direction: session.Received, Tag: 9, Raw: wire.Buffer{9}, Phase: "rotate"}))
	require.NoError(t, s.WriteTurn(ctx, Turn{SessionID: testSessionID, Seq: 4, Direction: session.Received, Tag: 6, Raw: wire.Encode(game.None), Phase: "rotate"}))

	result, err := s.Replay(ctx, testSessionID)
	require.NoError(t, err)
	assert.False(t, result.OK())
	require.Len(t, result.Mismatches, 3)

	assert.Equal(t, int64(2), result.Mismatches[0].Seq)
	assert.Contains(t, result.Mismatches[0].Reason, "re-encoding")
	assert.Equal(t, int64(3), result.Mismatches[1].Seq)
	assert.Contains(t, result.Mismatches[1].Reason, "decode")
	assert.Equal(t, int64(4), result.Mismatches[2].Seq)
	assert.Contains(t, result.Mismatches[2].Reason, "tag column")

	assert.Equal(t, 1, result.Effects, "bad turns are skipped, good ones still applied")
}

func TestReplay_ReportsWrongPhase(t *testing.T) {
	tests := []struct {
		name   string
		dir    session.Direction
		ev     game.Event
		phase  string
		reason string
	}{
		{"sent move left waiting", session.Sent, game.NewMove(12, 4.5, 4.5), "wait", "recorded phase wait after sent Move, want rotate"},
		{"sent rotate left rotating", session.Sent, game.NewRotate(12, 1), "rotate", "recorded phase rotate after sent Rotate, want wait"},
		{"received move made us move", session.Received, game.NewMove(20, 4.5, 3.5), "move", "recorded phase move after received Move, want wait"},
		{"received rotate left waiting", session.Received, game.NewRotate(20, 1), "wait", "recorded phase wait after received Rotate, want move"},
		{"unparsable phase", session.Received, game.None, "dancing", `phase column: unknown phase "dancing"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := createTestStore(t)
			ctx := context.Background()
			createTestSession(t, s, testSessionID)
			raw := wire.Encode(tt.ev)
			require.NoError(t, s.WriteTurn(ctx, Turn{SessionID: testSessionID, Seq: 1, Direction: tt.dir, Tag: raw.Tag(), Raw: raw, Phase: tt.phase}))

			result, err := s.Replay(ctx, testSessionID)
			require.NoError(t, err)
			require.Len(t, result.Mismatches, 1)
			assert.Equal(t, int64(1), result.Mismatches[0].Seq)
			assert.Equal(t, tt.reason, result.Mismatches[0].Reason)
			assert.Zero(t, result.Effects)
		})
	}
}

// Navigation and acks carry no phase change, and a reset is never recorded,
// so a log where the phase jumps back between turns still verifies.
func TestReplay_PhaseCheckIsPerRow(t *testing.T) {
	s := createTestStore(t)
	createTestSession(t, s, testSessionID)
	recordTurn(t, s, 1, session.Sent, game.NewMove(12, 4.5, 4.5), session.PhaseRotate)
	recordTurn(t, s, 2, session.Received, game.None, session.PhaseRotate)
	recordTurn(t, s, 3, session.Sent, game.Nav(game.KindPrevTurn), session.PhaseMove)
	recordTurn(t, s, 4, session.Sent, game.NewMove(12, 4.5, 5.5), session.PhaseRotate)

	result, err := s.Replay(context.Background(), testSessionID)
	require.NoError(t, err)
	assert.True(t, result.OK(), "%v", result.Mismatches)
	assert.Equal(t, 3, result.Effects)
}

func TestReplay_UnknownSession(t *testing.T) {
	s := createTestStore(t)
	_, err := s.Replay(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReplay_UnknownLayout(t *testing.T) {
	s := createTestStore(t)
	require.NoError(t, s.WriteSession(context.Background(), SessionInfo{ID: testSessionID, Role: RoleHost, Layout: "crazyhouse"}))

	result, err := s.Replay(context.Background(), testSessionID)
	require.NoError(t, err)
	require.Len(t, result.Mismatches, 1)
	assert.Contains(t, result.Mismatches[0].Reason, "crazyhouse")
}
