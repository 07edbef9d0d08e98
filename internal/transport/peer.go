package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/roach88/rotnet/internal/wire"
)

// Path is the HTTP path the host serves turns on.
const Path = "/turns"

const (
	writeTimeout     = 5 * time.Second
	handshakeTimeout = 10 * time.Second
)

// Peer is a WebSocket connection to the other player.
type Peer struct {
	conn   *websocket.Conn
	remote Hello
	inbox  *inbox
	turn   atomic.Bool
	logger *slog.Logger

	writeMu   sync.Mutex
	closeOnce sync.Once
}

func newPeer(conn *websocket.Conn, remote Hello, first bool, logger *slog.Logger) *Peer {
	p := &Peer{conn: conn, remote: remote, inbox: newInbox(), logger: logger}
	p.turn.Store(first)
	go p.readLoop()
	return p
}

// Remote returns the other side's Hello.
func (p *Peer) Remote() Hello {
	return p.remote
}

// HasTurn reports ownership.
func (p *Peer) HasTurn() bool {
	return p.turn.Load()
}

// Send writes b as one binary frame and gives up the turn.
func (p *Peer) Send(b wire.Buffer) error {
	if !p.turn.Load() {
		return ErrNotYourTurn
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	if err := p.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	if err := p.conn.WriteMessage(websocket.BinaryMessage, b[:]); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	p.turn.Store(false)
	return nil
}

// TryReceive returns the next buffer the reader goroutine queued, taking the
// turn. Once the connection is gone and the queue drained, it returns the
// reason: ErrClosed for an orderly close, a *wire.ProtocolError for a bad
// frame, or the read error.
func (p *Peer) TryReceive() (wire.Buffer, bool, error) {
	b, ok, err := p.inbox.tryPop()
	if ok {
		p.turn.Store(true)
	}
	return b, ok, err
}

// Pending returns how many received buffers are queued.
func (p *Peer) Pending() int {
	return p.inbox.len()
}

// Close sends a close frame and tears the connection down.
func (p *Peer) Close() error {
	var err error
	p.closeOnce.Do(func() {
		p.writeMu.Lock()
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")
		_ = p.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		p.writeMu.Unlock()
		err = p.conn.Close()
	})
	return err
}

func (p *Peer) readLoop() {
	for {
		kind, data, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) ||
				errors.Is(err, net.ErrClosed) {
				p.inbox.close(ErrClosed)
				return
			}
			p.logger.Warn("connection read failed", "error", err)
			p.inbox.close(fmt.Errorf("read: %w", err))
			return
		}

		var b wire.Buffer
		if kind != websocket.BinaryMessage {
			err = &wire.ProtocolError{Reason: "turn frame is not binary"}
		} else {
			err = b.UnmarshalBinary(data)
		}
		if err != nil {
			p.inbox.close(err)
			p.conn.Close()
			return
		}
		p.inbox.push(b)
	}
}

// Listener hosts one session and waits for its guest.
type Listener struct {
	ln     net.Listener
	srv    *http.Server
	local  Hello
	logger *slog.Logger
	peers  chan *Peer
	once   sync.Once
}

// Listen starts serving turns on addr (":0" picks a free port).
func Listen(addr string, local Hello, logger *slog.Logger) (*Listener, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}

	local.Version = ProtocolVersion
	local.Name = NormalizeName(local.Name)
	l := &Listener{ln: ln, local: local, logger: logger, peers: make(chan *Peer, 1)}

	mux := http.NewServeMux()
	mux.HandleFunc(Path, l.handleTurns)
	l.srv = &http.Server{Handler: mux, ReadHeaderTimeout: handshakeTimeout}
	go func() {
		if err := l.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("turn server stopped", "error", err)
		}
	}()
	return l, nil
}

// Ticket returns the ticket a guest joins with. Wildcard listen addresses
// are reported as-is; pass an explicit host to make the ticket portable.
func (l *Listener) Ticket() Ticket {
	return Ticket{Addr: l.ln.Addr().String(), SessionID: l.local.SessionID}
}

// Accept blocks until the guest has connected and completed the handshake.
func (l *Listener) Accept(ctx context.Context) (*Peer, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case p := <-l.peers:
		return p, nil
	}
}

// Close stops accepting guests. Connected peers stay open.
func (l *Listener) Close() error {
	return l.srv.Close()
}

func (l *Listener) handleTurns(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("session") != l.local.SessionID {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  wire.BufferSize * 64,
		WriteBufferSize: wire.BufferSize * 64,
		CheckOrigin:     func(*http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	remote, err := handshake(conn, l.local, true)
	if err != nil {
		l.logger.Warn("guest handshake failed", "remote", r.RemoteAddr, "error", err)
		conn.Close()
		return
	}

	accepted := false
	l.once.Do(func() {
		l.logger.Info("guest joined", "remote", r.RemoteAddr, "name", remote.Name)
		l.peers <- newPeer(conn, remote, true, l.logger)
		accepted = true
	})
	if !accepted {
		// Two participants only.
		msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "session full")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		conn.Close()
	}
}

// Join connects to a hosted session. The returned Peer does not hold the
// turn: the host moves first.
func Join(ctx context.Context, t Ticket, local Hello, logger *slog.Logger) (*Peer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	local.Version = ProtocolVersion
	local.SessionID = t.SessionID
	local.Name = NormalizeName(local.Name)

	u := url.URL{Scheme: "ws", Host: t.Addr, Path: Path, RawQuery: url.Values{"session": {t.SessionID}}.Encode()}
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("join %s: %w", t, err)
	}

	remote, err := handshake(conn, local, false)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("join %s: %w", t, err)
	}
	logger.Info("joined session", "host", t.Addr, "name", remote.Name, "layout", remote.Layout)
	return newPeer(conn, remote, false, logger), nil
}

// handshake exchanges Hellos: the guest speaks first, the host answers.
func handshake(conn *websocket.Conn, local Hello, host bool) (Hello, error) {
	deadline := time.Now().Add(handshakeTimeout)
	if err := conn.SetReadDeadline(deadline); err != nil {
		return Hello{}, err
	}
	if err := conn.SetWriteDeadline(deadline); err != nil {
		return Hello{}, err
	}

	var remote Hello
	if host {
		if err := conn.ReadJSON(&remote); err != nil {
			return Hello{}, fmt.Errorf("read hello: %w", err)
		}
		if err := remote.check(local.SessionID); err != nil {
			return Hello{}, err
		}
		if err := conn.WriteJSON(local); err != nil {
			return Hello{}, fmt.Errorf("write hello: %w", err)
		}
	} else {
		if err := conn.WriteJSON(local); err != nil {
			return Hello{}, fmt.Errorf("write hello: %w", err)
		}
		if err := conn.ReadJSON(&remote); err != nil {
			return Hello{}, fmt.Errorf("read hello: %w", err)
		}
		if err := remote.check(local.SessionID); err != nil {
			return Hello{}, err
		}
	}
	remote.Name = NormalizeName(remote.Name)

	// Turns have no read deadline: the other player may think for a while.
	if err := conn.SetReadDeadline(time.Time{}); err != nil {
		return Hello{}, err
	}
	return remote, nil
}
