// Package serve previews the packaged document over HTTP with live
// reload, so script authors can iterate without reopening the file.
package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// reloadSnippet is injected before </body> of the served page. It is a
// preview-only addition and never appears in the written output file.
const reloadSnippet = `<script>
(function () {
    const proto = location.protocol === 'https:' ? 'wss:' : 'ws:';
    const ws = new WebSocket(proto + '//' + location.host + '/livereload');
    ws.onmessage = () => location.reload();
})();
</script>`

// Server serves the current build output and pushes reload events to
// connected browsers when a rebuild happens.
type Server struct {
	addr   string
	logger *zap.Logger
	page   func() ([]byte, error)

	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// New creates a preview server. page returns the current document text;
// it is called per request so the served page always reflects the last
// build.
func New(addr string, page func() ([]byte, error), logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		addr:    addr,
		logger:  logger,
		page:    page,
		clients: make(map[*websocket.Conn]bool),
	}
}

// Handler returns the HTTP handler tree.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/livereload", s.handleLivereload)
	mux.HandleFunc("/", s.handleIndex)
	return s.logMiddleware(mux)
}

// ListenAndServe blocks serving the preview until ctx is cancelled or
// the server fails. Cancellation drains in-flight requests and drops
// the live-reload clients before returning.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.logger.Info("preview server listening", zap.String("addr", s.addr))
	fmt.Printf("Serving preview at http://localhost%s ...\n", s.addr)

	srv := &http.Server{Addr: s.addr, Handler: s.Handler()}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.dropAll()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	doc, err := s.page()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(injectReload(doc)); err != nil {
		s.logger.Warn("failed to write preview response", zap.Error(err))
	}
}

func (s *Server) handleLivereload(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	// Drain reads until the client goes away.
	go func() {
		defer s.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast tells every connected browser to reload.
func (s *Server) Broadcast() {
	s.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for c := range s.clients {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		if err := c.WriteMessage(websocket.TextMessage, []byte("reload")); err != nil {
			s.drop(c)
		}
	}
}

// dropAll closes every live-reload client, used on shutdown since
// hijacked websocket connections outlive http.Server.Shutdown.
func (s *Server) dropAll() {
	s.mu.Lock()
	for conn := range s.clients {
		delete(s.clients, conn)
		conn.Close()
	}
	s.mu.Unlock()
}

func (s *Server) drop(conn *websocket.Conn) {
	s.mu.Lock()
	if s.clients[conn] {
		delete(s.clients, conn)
		conn.Close()
	}
	s.mu.Unlock()
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)))
	})
}

// injectReload places the live-reload snippet before </body>, or appends
// it when the document has no closing body tag.
func injectReload(doc []byte) []byte {
	text := string(doc)
	if i := strings.LastIndex(strings.ToLower(text), "</body>"); i >= 0 {
		return []byte(text[:i] + reloadSnippet + "\n" + text[i:])
	}
	return []byte(text + "\n" + reloadSnippet)
}
