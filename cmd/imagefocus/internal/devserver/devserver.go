// Package devserver serves pages with the image focus WASM client injected
// and reloads connected browsers when files change
package devserver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/recera/imagefocus/cmd/imagefocus/internal/markdown"
	"github.com/recera/imagefocus/internal/cache"
	"github.com/recera/imagefocus/pkg/dom/htmldom"
)

// Asset routes
const (
	assetPrefix   = "/_imagefocus"
	wsPath        = assetPrefix + "/ws"
	wasmPath      = assetPrefix + "/app.wasm"
	wasmExecPath  = assetPrefix + "/wasm_exec.js"
	bootstrapPath = assetPrefix + "/bootstrap.js"
)

// bootstrapJS resolves assets against its own origin so pages served
// elsewhere can include it
const bootstrapJS = `(function () {
  var base = new URL(document.currentScript.src);
  var go = new Go();
  WebAssembly.instantiateStreaming(fetch(base.origin + "` + wasmPath + `"), go.importObject)
    .then(function (result) { go.run(result.instance); })
    .catch(function (err) { console.error("image focus: failed to load wasm", err); });

  var scheme = base.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(scheme + base.host + "` + wsPath + `");
  ws.onopen = function () { ws.send(JSON.stringify({ type: "HELLO" })); };
  ws.onmessage = function (e) {
    var msg = JSON.parse(e.data);
    if (msg.type === "RELOAD") { location.reload(); }
  };
})();
`

// Config holds the server settings
type Config struct {
	Host string
	Port int
	// Root is the directory of pages and assets
	Root string
	// Wasm is the path of the compiled client
	Wasm string
}

// Server is the development server
type Server struct {
	cfg      Config
	log      *slog.Logger
	router   *chi.Mux
	upgrader websocket.Upgrader
	pages    *cache.Cache

	// wsClients maps each connection to its client id
	wsClients map[*websocket.Conn]string
	wsMutex   sync.RWMutex
}

// New creates a server for cfg
func New(cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:       cfg,
		log:       logger,
		pages:     cache.New(cache.DefaultConfig()),
		wsClients: make(map[*websocket.Conn]string),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins in dev mode
			},
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)
	r.Route(assetPrefix, func(r chi.Router) {
		// Pages served elsewhere may load the client from here
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "OPTIONS"},
			MaxAge:         300,
		}))
		r.Get("/ws", s.handleWebSocket)
		r.Get("/app.wasm", s.serveWASM)
		r.Get("/wasm_exec.js", s.serveWasmExec)
		r.Get("/bootstrap.js", s.serveBootstrap)
	})
	r.Get("/*", s.servePage)
	s.router = r

	return s
}

// Handler returns the server's HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns host:port
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
}

// ListenAndServe serves until ctx is done
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("dev server listening", "addr", "http://"+s.Addr())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.closeClients()
		return srv.Shutdown(shutdownCtx)
	}
}

// Reload drops cached renderings of paths and tells every connected
// browser to reload
func (s *Server) Reload(paths []string) {
	for _, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			s.pages.InvalidateByDependency(abs)
		}
	}
	s.log.Info("reloading clients", "changed", len(paths))
	s.notifyClients("reload", map[string]interface{}{"paths": paths})
}

// ClientCount returns the number of connected browsers
func (s *Server) ClientCount() int {
	s.wsMutex.RLock()
	defer s.wsMutex.RUnlock()
	return len(s.wsClients)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	id := uuid.NewString()
	s.wsMutex.Lock()
	s.wsClients[conn] = id
	s.wsMutex.Unlock()
	s.log.Debug("client connected", "client", id)

	defer func() {
		s.wsMutex.Lock()
		delete(s.wsClients, conn)
		s.wsMutex.Unlock()
		s.log.Debug("client disconnected", "client", id)
	}()

	for {
		var msg map[string]interface{}
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.log.Warn("websocket error", "error", err)
			}
			break
		}

		switch msg["type"] {
		case "HELLO":
			s.wsMutex.Lock()
			err := conn.WriteJSON(map[string]interface{}{"type": "ACK", "client": id})
			s.wsMutex.Unlock()
			if err != nil {
				return
			}
		default:
			s.log.Debug("unknown websocket message", "type", msg["type"])
		}
	}
}

// notifyClients sends a message to every client. Writes hold the write lock
// since a connection allows one concurrent writer.
func (s *Server) notifyClients(msgType string, data map[string]interface{}) {
	s.wsMutex.Lock()
	defer s.wsMutex.Unlock()

	message := map[string]interface{}{
		"type": strings.ToUpper(msgType),
	}
	for k, v := range data {
		message[k] = v
	}

	for client, id := range s.wsClients {
		if err := client.WriteJSON(message); err != nil {
			s.log.Warn("failed to notify client", "client", id, "error", err)
		}
	}
}

func (s *Server) closeClients() {
	s.wsMutex.Lock()
	defer s.wsMutex.Unlock()
	for client := range s.wsClients {
		client.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		client.Close()
	}
}

func (s *Server) serveWASM(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/wasm")
	http.ServeFile(w, r, s.cfg.Wasm)
}

func (s *Server) serveWasmExec(w http.ResponseWriter, r *http.Request) {
	for _, rel := range []string{"lib/wasm/wasm_exec.js", "misc/wasm/wasm_exec.js"} {
		content, err := os.ReadFile(filepath.Join(runtime.GOROOT(), rel))
		if err != nil {
			continue
		}
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		_, _ = w.Write(content)
		return
	}
	http.Error(w, "Failed to load wasm_exec.js", http.StatusInternalServerError)
}

func (s *Server) serveBootstrap(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	_, _ = w.Write([]byte(bootstrapJS))
}

// servePage serves files under Root, injecting the client into HTML pages
func (s *Server) servePage(w http.ResponseWriter, r *http.Request) {
	name := filepath.Join(s.cfg.Root, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
	info, err := os.Stat(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if info.IsDir() {
		name = filepath.Join(name, "index.html")
	}
	if !isPage(name) {
		http.ServeFile(w, r, name)
		return
	}

	page, err := s.renderPage(name)
	if err != nil {
		s.log.Error("failed to render page", "page", name, "error", err)
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

// renderPage returns the page at name with the client injected. Renderings
// are cached per file and modification time.
func (s *Server) renderPage(name string) ([]byte, error) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	key := cache.Key(abs, info.ModTime().String())
	if page, ok := s.pages.Get(key); ok {
		return page, nil
	}

	doc, err := markdown.Load(abs)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := InjectClient(doc, &buf); err != nil {
		return nil, err
	}
	s.pages.PutWithDeps(key, buf.Bytes(), []string{abs})
	return buf.Bytes(), nil
}

// CacheStats reports the page cache
func (s *Server) CacheStats() cache.Stats {
	return s.pages.GetStats()
}

// isPage reports whether name is served with the client injected
func isPage(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".html" || ext == ".htm" || markdown.IsMarkdown(name)
}

// InjectClient appends the client scripts to the body of doc and renders it
func InjectClient(doc *htmldom.Document, w io.Writer) error {
	body := doc.Body()
	if body == nil {
		return fmt.Errorf("page has no body")
	}
	for _, src := range []string{wasmExecPath, bootstrapPath} {
		script, err := doc.ParseElement(`<script src="` + src + `"></script>`)
		if err != nil {
			return err
		}
		body.AppendChild(script)
	}
	return doc.Render(w)
}
