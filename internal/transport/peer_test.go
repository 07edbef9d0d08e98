package transport

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rotnet/internal/game"
	"github.com/roach88/rotnet/internal/wire"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// connect hosts a session on a free loopback port and joins it.
func connect(t *testing.T) (host, guest *Peer) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	l, err := Listen("127.0.0.1:0", Hello{SessionID: testSessionID, Name: "host", Layout: "chess960", Seed: 42}, quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	guest, err = Join(ctx, l.Ticket(), Hello{Name: "guest", Layout: "standard"}, quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { guest.Close() })

	host, err = l.Accept(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { host.Close() })
	return host, guest
}

// receive polls until a buffer arrives or the deadline passes.
func receive(t *testing.T, p *Peer) (wire.Buffer, error) {
	t.Helper()
	var (
		b   wire.Buffer
		err error
	)
	require.Eventually(t, func() bool {
		var ok bool
		b, ok, err = p.TryReceive()
		return ok || err != nil
	}, 5*time.Second, 5*time.Millisecond)
	return b, err
}

func TestPeer_Handshake(t *testing.T) {
	host, guest := connect(t)

	assert.True(t, host.HasTurn())
	assert.False(t, guest.HasTurn())

	assert.Equal(t, "guest", host.Remote().Name)
	assert.Equal(t, "host", guest.Remote().Name)
	assert.Equal(t, "chess960", guest.Remote().Layout)
	assert.Equal(t, uint64(42), guest.Remote().Seed)
	assert.Equal(t, testSessionID, host.Remote().SessionID)
}

func TestPeer_TurnRoundTrip(t *testing.T) {
	host, guest := connect(t)
	move := wire.Encode(game.NewMove(12, 4.5, 4.5))

	require.NoError(t, host.Send(move))
	assert.False(t, host.HasTurn())
	assert.ErrorIs(t, host.Send(move), ErrNotYourTurn)

	got, err := receive(t, guest)
	require.NoError(t, err)
	assert.Equal(t, move, got)
	assert.True(t, guest.HasTurn())
	assert.Zero(t, guest.Pending())

	ack := wire.Encode(game.None)
	require.NoError(t, guest.Send(ack))
	got, err = receive(t, host)
	require.NoError(t, err)
	assert.Equal(t, ack, got)
	assert.True(t, host.HasTurn())
}

func TestPeer_RemoteClose(t *testing.T) {
	host, guest := connect(t)
	require.NoError(t, host.Close())

	_, err := receive(t, guest)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestListener_WrongSession(t *testing.T) {
	l, err := Listen("127.0.0.1:0", Hello{SessionID: testSessionID}, quietLogger())
	require.NoError(t, err)
	defer l.Close()

	tk := l.Ticket()
	tk.SessionID = "0190a7e2-0000-7000-8000-000000000000"
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = Join(ctx, tk, Hello{}, quietLogger())
	require.Error(t, err)
}

func TestListener_AcceptCanceled(t *testing.T) {
	l, err := Listen("127.0.0.1:0", Hello{SessionID: testSessionID}, quietLogger())
	require.NoError(t, err)
	defer l.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Accept(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

// dialRaw performs the guest side of the handshake by hand so the test can
// write frames a well-behaved Peer never would.
func dialRaw(t *testing.T, l *Listener) *websocket.Conn {
	t.Helper()
	u := url.URL{Scheme: "ws", Host: l.Ticket().Addr, Path: Path, RawQuery: "session=" + testSessionID}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, conn.WriteJSON(Hello{Version: ProtocolVersion, SessionID: testSessionID, Name: "raw"}))
	var hello Hello
	require.NoError(t, conn.ReadJSON(&hello))
	return conn
}

func TestPeer_MalformedFrames(t *testing.T) {
	tests := []struct {
		name string
		kind int
		data []byte
	}{
		{"short binary frame", websocket.BinaryMessage, []byte{6, 1, 2}},
		{"long binary frame", websocket.BinaryMessage, make([]byte, wire.BufferSize+1)},
		{"text frame", websocket.TextMessage, []byte("0600000000000000000000")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := Listen("127.0.0.1:0", Hello{SessionID: testSessionID}, quietLogger())
			require.NoError(t, err)
			defer l.Close()

			conn := dialRaw(t, l)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			host, err := l.Accept(ctx)
			require.NoError(t, err)
			defer host.Close()

			require.NoError(t, conn.WriteMessage(tt.kind, tt.data))
			_, err = receive(t, host)
			assert.True(t, wire.IsProtocolError(err), "got %v", err)
		})
	}
}

func TestListener_SecondGuestRejected(t *testing.T) {
	l, err := Listen("127.0.0.1:0", Hello{SessionID: testSessionID}, quietLogger())
	require.NoError(t, err)
	defer l.Close()

	_ = dialRaw(t, l)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	host, err := l.Accept(ctx)
	require.NoError(t, err)
	defer host.Close()

	second := dialRaw(t, l)
	require.NoError(t, second.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err = second.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation), "got %v", err)
}
