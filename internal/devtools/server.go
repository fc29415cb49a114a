package devtools

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lumina-dev/lumina/internal/errors"
	"github.com/lumina-dev/lumina/pkg/host"
)

// Options configures the inspector server.
type Options struct {
	// Addr is the listen address used by ListenAndServe.
	Addr string

	// Gatherer backs /metrics. Default: prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer

	// Uploader backs POST /snapshot. Nil disables the route.
	Uploader *Uploader

	// Nested includes mounts created by list primitives in captures.
	Nested bool

	// Logger is used for connection diagnostics. Default: slog.Default().
	Logger *slog.Logger
}

// client is one connected inspector. Writes are serialised per client.
type client struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Server is the inspector server.
type Server struct {
	opts     Options
	router   chi.Router
	upgrader websocket.Upgrader
	logger   *slog.Logger

	changes   atomic.Uint64
	published uint64 // UI goroutine only

	mu      sync.RWMutex
	state   State
	seq     uint64
	clients map[string]*client

	httpServer *http.Server
}

// New creates an inspector server.
func New(opts Options) *Server {
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		opts:    opts,
		logger:  logger,
		clients: make(map[string]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true // local tooling only
			},
		},
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)

	r.Get("/tree", s.handleTree)
	r.Get("/stats", s.handleStats)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
	r.Get("/ws", s.handleWebSocket)
	if s.opts.Uploader != nil {
		r.Post("/snapshot", s.handleSnapshot)
	}
	return r
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Track wraps h so that structural mutations mark the published state
// stale. Install the result with host.Set.
func (s *Server) Track(h host.Host) host.Host {
	return trackedHost{Host: h, changes: &s.changes}
}

// Refresh captures and publishes a new State if the tracked host changed
// since the last publish. It must be called on the UI goroutine.
func (s *Server) Refresh() bool {
	n := s.changes.Load()
	if n == s.published {
		return false
	}
	s.published = n
	s.Publish(Capture(s.opts.Nested))
	return true
}

// Publish stores st as the current state and pushes it to every client.
func (s *Server) Publish(st State) {
	s.mu.Lock()
	s.seq++
	st.Seq = s.seq
	s.state = st
	clients := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	data, err := json.Marshal(st)
	if err != nil {
		s.logger.Error("devtools: encode state", "error", err)
		return
	}
	for _, c := range clients {
		if err := c.send(data); err != nil {
			s.drop(c, err)
		}
	}
}

// State returns the last published state.
func (s *Server) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// ClientCount returns the number of connected inspectors.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	st := s.State()
	writeJSON(w, http.StatusOK, map[string]any{
		"seq":    st.Seq,
		"mounts": st.Mounts,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st := s.State()
	writeJSON(w, http.StatusOK, map[string]any{
		"seq":     st.Seq,
		"time":    st.Time,
		"runtime": st.Stats,
		"clients": s.ClientCount(),
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	key, err := s.opts.Uploader.Upload(r.Context(), s.State())
	if err != nil {
		s.logger.Error("devtools: snapshot upload", errors.FromError(err, "E202").LogAttrs()...)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"bucket": s.opts.Uploader.Bucket(),
		"key":    key,
	})
}

// handleWebSocket registers the client, sends the current state and then
// keeps the connection until the client goes away.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("devtools: upgrade failed", errors.New("E203").Wrap(err).LogAttrs()...)
		return
	}

	c := &client{id: uuid.NewString(), conn: conn}
	s.mu.Lock()
	s.clients[c.id] = c
	st := s.state
	s.mu.Unlock()
	s.logger.Debug("devtools: client connected", "client", c.id)

	data, err := json.Marshal(st)
	if err == nil {
		err = c.send(data)
	}
	if err != nil {
		s.drop(c, err)
		return
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	s.drop(c, nil)
}

func (s *Server) drop(c *client, err error) {
	s.mu.Lock()
	_, ok := s.clients[c.id]
	delete(s.clients, c.id)
	s.mu.Unlock()
	if !ok {
		return
	}
	c.conn.Close()
	if err != nil {
		s.logger.Warn("devtools: client dropped", errors.New("E203").WithSubject(c.id).Wrap(err).LogAttrs()...)
		return
	}
	s.logger.Debug("devtools: client disconnected", "client", c.id)
}

// ListenAndServe serves on Options.Addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Close()
	return s.httpServer.Shutdown(shutdownCtx)
}

// Close disconnects every inspector client.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.clients {
		c.conn.Close()
		delete(s.clients, id)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
