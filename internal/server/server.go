package server

import (
	"context"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/diffdeck/diffdeck/internal/diff"
	apperrors "github.com/diffdeck/diffdeck/internal/errors"
	"github.com/diffdeck/diffdeck/internal/storage"
)

// DiffOptions are the default comparison parameters the CLI configured.
// Individual /api/diff requests may override them via query parameters.
type DiffOptions struct {
	Target           string
	Base             string
	IgnoreWhitespace bool
}

// Server serves the browser UI's API: the parsed diff, generated-status
// queries, review comments, and the WebSocket notification channel.
//
// The parsed DiffResponse is cached until explicitly invalidated by the
// change watcher (or by a change of comparison options); the diff core
// itself stays stateless between calls.
type Server struct {
	addr string
	mode string

	parser *diff.Parser
	store  *storage.Store
	bc     *Broadcaster

	opts DiffOptions

	// patch is set in stdin-patch mode: a fixed response with no
	// underlying repository to re-derive from.
	patch *diff.DiffResponse

	upgrader websocket.Upgrader
	httpSrv  *http.Server

	mu       sync.Mutex
	gen      uint64 // bumped by Invalidate; in-flight parses from older generations are not cached
	cacheKey string
	cached   *diff.DiffResponse
	stopped  bool
}

// New creates a Server. store may be nil to disable the comment API.
func New(addr, mode string, parser *diff.Parser, store *storage.Store, bc *Broadcaster, opts DiffOptions) *Server {
	return &Server{
		addr:   addr,
		mode:   mode,
		parser: parser,
		store:  store,
		bc:     bc,
		opts:   opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Local tool: the UI is served from this same process.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServePatch puts the server in fixed-patch mode: the given response is
// served as-is and never invalidated (stdin patches have no repository
// behind them).
func (s *Server) ServePatch(resp *diff.DiffResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patch = resp
}

// Invalidate clears the cached diff response and the parser's
// generated-status cache. Wired as the change watcher's invalidation
// callback.
func (s *Server) Invalidate() {
	s.mu.Lock()
	s.gen++
	s.cached = nil
	s.cacheKey = ""
	s.mu.Unlock()

	s.parser.InvalidateCache()
}

// Start begins listening. Non-blocking; errors after startup are logged.
func (s *Server) Start() error {
	mux := s.createMux()
	s.httpSrv = &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Bind synchronously so an occupied port fails Start instead of
	// surfacing later in a goroutine.
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeServerListenFailed, "failed to bind "+s.addr, err)
	}
	s.addr = ln.Addr().String()

	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("[Server] Serve error: %v", err)
		}
	}()

	log.Printf("[Server] Listening on http://%s", s.addr)
	return nil
}

// Addr returns the bound listen address. Meaningful after Start, which
// resolves a ":0" port to the real one.
func (s *Server) Addr() string {
	return s.addr
}

// Stop shuts the HTTP server down and drops all sessions. Idempotent.
func (s *Server) Stop(ctx context.Context) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	s.bc.CloseAll()
	if s.httpSrv != nil {
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			log.Printf("[Server] Shutdown error: %v", err)
		}
	}
}

// createMux wires all endpoints.
func (s *Server) createMux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", s.handleWebSocket)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/api/diff", s.handleDiff)
	mux.HandleFunc("/api/generated-status", s.handleGeneratedStatus)
	mux.HandleFunc("/api/comments", s.handleComments)
	mux.HandleFunc("/api/comments/", s.handleCommentByID)

	return mux
}

// handleWebSocket upgrades the connection and attaches the session to
// the broadcaster.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Server] WebSocket upgrade failed: %v", err)
		return
	}

	client := newClient(conn)
	s.bc.AddClient(client)

	onDead := func(c *Client) { s.bc.RemoveClient(c) }
	go client.writePump(onDead)
	go client.readPump(onDead)
}
