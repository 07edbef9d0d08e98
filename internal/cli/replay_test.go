package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rotnet/internal/game"
	"github.com/roach88/rotnet/internal/harness"
	"github.com/roach88/rotnet/internal/session"
	"github.com/roach88/rotnet/internal/store"
	"github.com/roach88/rotnet/internal/wire"
)

func TestReplayCommandClean(t *testing.T) {
	db := seedLog(t)

	buf := &bytes.Buffer{}
	cmd := NewReplayCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", db})

	require.NoError(t, cmd.Execute())
	out := buf.String()
	assert.Contains(t, out, "✓ "+harness.HostSessionID+" (scenario): 3 turns, 2 effects, cursor 2")
	assert.Contains(t, out, "✓ "+harness.JoinSessionID)
	assert.Contains(t, out, "2 sessions, 2 verified, 0 with mismatches")
}

func TestReplayCommandJSON(t *testing.T) {
	db := seedLog(t)

	buf := &bytes.Buffer{}
	cmd := NewReplayCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", db, "--session", harness.JoinSessionID})
	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string       `json:"status"`
		Data   ReplayResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.AllOK)
	require.Len(t, resp.Data.Sessions, 1)
	assert.Equal(t, harness.JoinSessionID, resp.Data.Sessions[0].SessionID)
	assert.Equal(t, 2, resp.Data.Sessions[0].Effects)
	assert.Empty(t, resp.Data.Sessions[0].Mismatches)
}

func TestReplayCommandMismatch(t *testing.T) {
	db := seedLog(t)

	st, err := store.Open(db)
	require.NoError(t, err)
	// A row whose tag column disagrees with its buffer.
	require.NoError(t, st.WriteTurn(context.Background(), store.Turn{
		SessionID: harness.HostSessionID,
		Seq:       99,
		Direction: session.Received,
		Tag:       byte(game.KindMove),
		Raw:       wire.Encode(game.None),
		Phase:     session.PhaseMove.String(),
	}))
	require.NoError(t, st.Close())

	buf := &bytes.Buffer{}
	cmd := NewReplayCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", db})

	err = cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	out := buf.String()
	assert.Contains(t, out, "✗ "+harness.HostSessionID)
	assert.Contains(t, out, "seq 99: tag column 6 disagrees with buffer tag 7")
	assert.Contains(t, out, "✓ "+harness.JoinSessionID)
	assert.Contains(t, out, "2 sessions, 1 verified, 1 with mismatches")
}

func TestReplayCommandUnknownSession(t *testing.T) {
	db := seedLog(t)

	buf := &bytes.Buffer{}
	cmd := NewReplayCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", db, "--session", "00000000-0000-7000-8000-00000000ffff"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
}
