package mapbridge

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"hb2-cli/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

//go:embed static/map.html
var staticFS embed.FS

// Click is a marker click reported by the map page.
type Click struct {
	PlaceID    string `json:"place_id"`
	PlaceClass string `json:"place_class"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4 * 1024,
	WriteBufferSize: 4 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin == "" {
			return true
		}
		// The bridge only ever serves localhost.
		return strings.Contains(origin, "://"+strings.TrimSpace(r.Host))
	},
}

type bridgeClient struct {
	conn *websocket.Conn
	out  chan []byte
}

// Server is the single writer on the map widget. SyncMarkers replaces
// the complete marker list on every connected page; clicks flow the
// other way through the OnClick callback, which the TUI wires into its
// own event queue.
type Server struct {
	mu      sync.RWMutex
	onClick func(Click)
	clients map[string]*bridgeClient
	// last holds the most recent marker frame so a freshly connected
	// page starts from the current state instead of an empty map.
	last []byte

	httpSrv *http.Server
	addr    string
}

// NewServer returns an unstarted bridge server.
func NewServer() *Server {
	return &Server{clients: map[string]*bridgeClient{}}
}

// SetOnClick installs the click callback. Safe to call after Start;
// clicks arriving before a callback is installed are dropped.
func (s *Server) SetOnClick(fn func(Click)) {
	s.mu.Lock()
	s.onClick = fn
	s.mu.Unlock()
}

// Start listens on 127.0.0.1:port (an ephemeral port when 0) and serves
// the map page and websocket. It returns the address actually bound.
func (s *Server) Start(port int) (string, error) {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{http.MethodGet},
	}))
	r.Get("/", s.handleIndex)
	r.Get("/ws", s.handleWS)

	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return "", err
	}
	s.addr = ln.Addr().String()
	s.httpSrv = &http.Server{Handler: r, ReadHeaderTimeout: 5 * time.Second}
	go func() { _ = s.httpSrv.Serve(ln) }()
	return s.addr, nil
}

// URL returns the browser URL of the map page.
func (s *Server) URL() string {
	if s.addr == "" {
		return ""
	}
	return "http://" + s.addr + "/"
}

// Close shuts the server down and disconnects all pages.
func (s *Server) Close() error {
	s.mu.Lock()
	for id, c := range s.clients {
		close(c.out)
		delete(s.clients, id)
	}
	s.mu.Unlock()
	if s.httpSrv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return s.httpSrv.Shutdown(ctx)
}

// SyncMarkers pushes the full marker list to every connected page.
// Fire and forget: no acknowledgment, and a slow page drops frames
// rather than blocking the event loop.
func (s *Server) SyncMarkers(markers []model.PlaceMarker) {
	if markers == nil {
		markers = []model.PlaceMarker{}
	}
	frame, err := json.Marshal(struct {
		Markers []model.PlaceMarker `json:"markers"`
	}{Markers: markers})
	if err != nil {
		return
	}

	s.mu.Lock()
	s.last = frame
	for _, c := range s.clients {
		select {
		case c.out <- frame:
		default:
			// Client is falling behind; the next frame supersedes this
			// one anyway since frames are full replacements.
		}
	}
	s.mu.Unlock()
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := staticFS.ReadFile("static/map.html")
	if err != nil {
		http.Error(w, "map page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "websocket upgrade failed", http.StatusBadRequest)
		return
	}

	id := uuid.NewString()
	client := &bridgeClient{conn: conn, out: make(chan []byte, 8)}

	s.mu.Lock()
	s.clients[id] = client
	last := s.last
	s.mu.Unlock()

	if last != nil {
		select {
		case client.out <- last:
		default:
		}
	}

	go s.writeLoop(client)
	s.readLoop(id, client)
}

func (s *Server) writeLoop(c *bridgeClient) {
	for frame := range c.out {
		_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return
		}
	}
}

func (s *Server) readLoop(id string, c *bridgeClient) {
	defer func() {
		s.mu.Lock()
		if cur, ok := s.clients[id]; ok && cur == c {
			close(c.out)
			delete(s.clients, id)
		}
		s.mu.Unlock()
		_ = c.conn.Close()
	}()

	for {
		mt, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if mt != websocket.TextMessage || len(data) == 0 {
			continue
		}
		var click Click
		if err := json.Unmarshal(data, &click); err != nil {
			continue
		}
		if strings.TrimSpace(click.PlaceID) == "" {
			continue
		}
		s.mu.RLock()
		fn := s.onClick
		s.mu.RUnlock()
		if fn != nil {
			fn(click)
		}
	}
}
