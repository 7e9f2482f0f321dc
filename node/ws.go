package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/time/rate"

	"github.com/meshworks/gridnode/message"
	"github.com/meshworks/gridnode/worker"
)

const (
	writeWait      = 10 * time.Second    // Time allowed to write a message to the peer.
	pongWait       = 60 * time.Second    // Time allowed to read the next pong message from the peer.
	pingPeriod     = (pongWait * 9) / 10 // Send pings to peer with this period. Must be less than pongWait.
	maxMessageSize = 1 << 20             // Maximum message size allowed from peer.
	sendBufferSize = 256                 // Buffer size for the send channel.
)

type WSConfig struct {
	Logger  *slog.Logger
	Binding string
	// MaxConnections caps concurrent sessions; zero means unlimited.
	MaxConnections int
	// RateLimit / RateBurst throttle per-remote message rates. A zero
	// limit disables throttling.
	RateLimit float64
	RateBurst int

	ReadBufferSize  int
	WriteBufferSize int
}

// WS serves one worker over websocket. Each connection gets a read pump
// and a write pump; every inbound message is decoded to an envelope,
// dispatched, and answered with exactly one response frame on the same
// connection.
type WS struct {
	logger   *slog.Logger
	cfg      WSConfig
	worker   *worker.Worker
	upgrader websocket.Upgrader
	server   *http.Server

	limiters *ttlcache.Cache[string, *rate.Limiter]

	sessionsLock sync.Mutex
	sessions     map[*wsSession]struct{}

	shutdownCh   chan struct{}
	shutdownOnce sync.Once
}

type wsSession struct {
	node    *WS
	conn    *websocket.Conn
	limiter *rate.Limiter

	// Buffered channel of outbound response frames. Closed by the read
	// pump when it exits.
	send chan []byte
	// Closed by the write pump when it exits so the read pump never
	// blocks on a dead writer.
	writerDone chan struct{}
}

func NewWS(w *worker.Worker, cfg WSConfig) (*WS, error) {
	if w == nil {
		return nil, fmt.Errorf("websocket node requires a worker")
	}
	if cfg.Binding == "" {
		return nil, fmt.Errorf("websocket node requires a binding")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	limiters := ttlcache.New[string, *rate.Limiter](
		ttlcache.WithTTL[string, *rate.Limiter](time.Minute*1),
		ttlcache.WithDisableTouchOnHit[string, *rate.Limiter](),
	)
	go limiters.Start()

	s := &WS{
		logger: cfg.Logger.WithGroup("ws").With("node", w.ID()),
		cfg:    cfg,
		worker: w,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
		},
		limiters:   limiters,
		sessions:   make(map[*wsSession]struct{}),
		shutdownCh: make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/msg", s.recvHandler)
	s.server = &http.Server{
		Addr:    cfg.Binding,
		Handler: mux,
	}
	return s, nil
}

// Handler exposes the node's http surface so an embedder can mount it
// on its own server instead of calling Serve. Embedders own calling
// Shutdown to end live sessions.
func (s *WS) Handler() http.Handler {
	return s.server.Handler
}

// ActiveSessions reports the number of live connections.
func (s *WS) ActiveSessions() int {
	s.sessionsLock.Lock()
	defer s.sessionsLock.Unlock()
	return len(s.sessions)
}

// Serve blocks until the context is cancelled or the listener fails.
func (s *WS) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("websocket node listening", "binding", s.cfg.Binding)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("websocket node shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown stops the listener and ends every live session. Hijacked
// websocket connections are invisible to http.Server.Shutdown, so the
// sessions are signalled directly; each write pump closes its own
// connection on the way out.
func (s *WS) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() {
		close(s.shutdownCh)
	})
	err := s.server.Shutdown(ctx)
	s.limiters.Stop()
	return err
}

func (s *WS) recvHandler(w http.ResponseWriter, r *http.Request) {
	s.sessionsLock.Lock()
	if s.cfg.MaxConnections > 0 && len(s.sessions) >= s.cfg.MaxConnections {
		s.sessionsLock.Unlock()
		s.logger.Warn("max connections reached, rejecting", "active", len(s.sessions), "max", s.cfg.MaxConnections)
		http.Error(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}
	s.sessionsLock.Unlock()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("failed to upgrade connection", "error", err)
		return
	}
	s.logger.Info("connection upgraded", "remote_addr", conn.RemoteAddr().String())

	sess := &wsSession{
		node:       s,
		conn:       conn,
		limiter:    s.limiterFor(remoteHost(r)),
		send:       make(chan []byte, sendBufferSize),
		writerDone: make(chan struct{}),
	}
	s.register(sess)

	go sess.writePump()
	go sess.readPump()
}

func (s *WS) register(sess *wsSession) {
	s.sessionsLock.Lock()
	defer s.sessionsLock.Unlock()
	s.sessions[sess] = struct{}{}
}

func (s *WS) unregister(sess *wsSession) {
	s.sessionsLock.Lock()
	defer s.sessionsLock.Unlock()
	delete(s.sessions, sess)
}

// readPump owns the inbound side: read a frame, dispatch it, queue the
// response for the write pump. It never writes to the connection.
func (s *wsSession) readPump() {
	defer func() {
		s.node.unregister(s)
		close(s.send)
		s.node.logger.Info("session closed", "remote_addr", s.conn.RemoteAddr().String())
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.node.logger.Warn("unexpected close", "error", err)
			}
			return
		}

		var resp message.Response
		if s.limiter != nil && !s.limiter.Allow() {
			resp = message.Failure("", message.CodeInternal,
				fmt.Errorf("rate limited; slow down"))
		} else if env, err := message.Decode(raw); err != nil {
			resp = message.Failure("", message.CodeBadMessage, err)
		} else {
			resp = s.node.worker.Recv(env)
		}

		frame, err := message.EncodeResponse(resp)
		if err != nil {
			s.node.logger.Error("failed to encode response", "error", err)
			return
		}

		select {
		case s.send <- frame:
		case <-s.writerDone:
			return
		}
	}
}

// writePump owns the outbound side. Every write to the connection goes
// through here so the connection never sees two concurrent writers:
// response frames, pings, and the close frame alike.
func (s *wsSession) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(s.writerDone)
		s.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// read pump is gone; say goodbye and release the conn
				s.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				s.node.logger.Warn("failed to write response", "error", err)
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.node.shutdownCh:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			s.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "node shutting down"))
			return
		}
	}
}

func (s *WS) limiterFor(remote string) *rate.Limiter {
	if s.cfg.RateLimit <= 0 {
		return nil
	}
	item := s.limiters.Get(remote)
	if item == nil || item.IsExpired() {
		limiter := rate.NewLimiter(rate.Limit(s.cfg.RateLimit), s.cfg.RateBurst)
		item = s.limiters.Set(remote, limiter, time.Minute*1)
	}
	return item.Value()
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
