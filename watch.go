package rubeview

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// DefaultPollInterval is how often the scene directory is checked for
	// modified files.
	DefaultPollInterval = 500 * time.Millisecond
	watchWriteTimeout   = 5 * time.Second
)

// SceneChange is the message pushed to /watch subscribers.
type SceneChange struct {
	Scene string `json:"scene"`
}

// SceneServer serves a directory of scene documents for HTTPSource and
// notifies websocket subscribers when a document changes on disk.
//
//	GET /scenes/             JSON array of scene names
//	GET /scenes/<name>.json  the document
//	GET /watch               websocket; one SceneChange per modified file
type SceneServer struct {
	Dir string
	// Poll is the modification check interval used by Run.
	Poll   time.Duration
	Logger *log.Logger

	upgrader websocket.Upgrader
	mux      *http.ServeMux

	mu      sync.Mutex
	clients map[*watchClient]struct{}

	mtimes map[string]time.Time // owned by the Run goroutine
}

// watchClient serializes writes to one subscriber.
type watchClient struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *watchClient) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(watchWriteTimeout))
	return c.conn.WriteJSON(v)
}

// NewSceneServer creates a server for dir. The current modification times
// are recorded so only later edits are reported.
func NewSceneServer(dir string) *SceneServer {
	s := &SceneServer{
		Dir:    dir,
		Poll:   DefaultPollInterval,
		Logger: log.Default(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*watchClient]struct{}),
		mtimes:  make(map[string]time.Time),
	}
	s.mux = http.NewServeMux()
	s.mux.HandleFunc("/scenes/", s.handleScenes)
	s.mux.HandleFunc("/watch", s.handleWatch)
	s.scan()
	return s
}

func (s *SceneServer) logf(format string, args ...any) {
	s.Logger.Printf("sceneserver: "+format, args...)
}

// ServeHTTP implements http.Handler.
func (s *SceneServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *SceneServer) handleScenes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	file := strings.TrimPrefix(r.URL.Path, "/scenes/")
	if file == "" {
		names, err := listScenes(os.DirFS(s.Dir), ".")
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if names == nil {
			names = []string{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(names)
		return
	}
	name, ok := strings.CutSuffix(file, ".json")
	if !ok || validSceneName(name) != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, filepath.Join(s.Dir, file))
}

func (s *SceneServer) handleWatch(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logf("websocket upgrade: %v", err)
		return
	}
	c := &watchClient{conn: conn}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
		conn.Close()
	}()

	// Subscribers never send anything; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logf("websocket: %v", err)
			}
			return
		}
	}
}

// Subscribers returns the number of connected /watch clients.
func (s *SceneServer) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Run polls the directory every Poll and notifies subscribers of each
// modified scene until ctx is done.
func (s *SceneServer) Run(ctx context.Context) error {
	poll := s.Poll
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			return ctx.Err()
		case <-ticker.C:
			for _, name := range s.scan() {
				s.logf("scene %q changed", name)
				s.Broadcast(SceneChange{Scene: name})
			}
		}
	}
}

// scan returns the scenes whose modification time differs from the last
// scan, sorted. New files count as changed.
func (s *SceneServer) scan() []string {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		s.logf("scan %s: %v", s.Dir, err)
		return nil
	}
	var changed []string
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".json")
		if e.IsDir() || !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		mt := info.ModTime()
		if prev, seen := s.mtimes[name]; !seen || !prev.Equal(mt) {
			s.mtimes[name] = mt
			changed = append(changed, name)
		}
	}
	sort.Strings(changed)
	return changed
}

// Broadcast sends msg to every subscriber. Subscribers that fail are
// disconnected.
func (s *SceneServer) Broadcast(msg SceneChange) {
	s.mu.Lock()
	clients := make([]*watchClient, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		if err := c.send(msg); err != nil {
			s.logf("notify %s: %v", c.conn.RemoteAddr(), err)
			c.conn.Close()
		}
	}
}

func (s *SceneServer) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		c.conn.Close()
	}
}

// WatchURL turns an http(s) base URL into the ws(s) URL of its /watch
// endpoint.
func WatchURL(baseURL string) string {
	u := strings.TrimSuffix(baseURL, "/") + "/watch"
	if rest, ok := strings.CutPrefix(u, "http"); ok {
		return "ws" + rest
	}
	return u
}

// WatchScenes connects to a SceneServer's /watch endpoint and calls fn with
// each changed scene name until ctx is done or the connection fails. fn
// runs on the reading goroutine.
func WatchScenes(ctx context.Context, url string, fn func(name string)) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("watch dial %s: %w", url, err)
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	for {
		var msg SceneChange
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("watch read: %w", err)
		}
		if msg.Scene != "" {
			fn(msg.Scene)
		}
	}
}
