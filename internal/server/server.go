package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/OggyMishra/claude-compte/internal/cache"
	"github.com/OggyMishra/claude-compte/internal/model"
	"github.com/OggyMishra/claude-compte/internal/optimizer"
)

//go:embed static
var staticFS embed.FS

// usageResponse is the full payload of /api/usage: the corpus report plus
// the optimizer tips derived from it.
type usageResponse struct {
	*model.Report
	Optimizations []optimizer.Tip `json:"optimizations"`
}

// Server serves the dashboard and the usage API. The aggregate it serves is
// immutable; refreshes build a new one and swap the pointer under the lock.
type Server struct {
	store      *cache.Store
	thresholds optimizer.Thresholds

	// Throttles forced full rescans requested via ?refresh=1.
	refreshLimiter *rate.Limiter

	mu       sync.Mutex
	current  *usageResponse
	stale    bool
	watching bool
}

// New creates a server over the given store.
func New(store *cache.Store, thresholds optimizer.Thresholds) *Server {
	return &Server{
		store:          store,
		thresholds:     thresholds,
		refreshLimiter: rate.NewLimiter(rate.Every(10*time.Second), 1),
		stale:          true,
	}
}

// MarkStale flags the in-memory aggregate for recomputation on the next
// request. Called by the change watcher.
func (s *Server) MarkStale() {
	s.mu.Lock()
	s.stale = true
	s.mu.Unlock()
}

// setWatching records whether a filesystem watcher is feeding MarkStale.
// Without one, every request runs the cheap fingerprint check instead.
func (s *Server) setWatching(on bool) {
	s.mu.Lock()
	s.watching = on
	s.mu.Unlock()
}

// Handler returns the route mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/usage", s.handleUsage)
	mux.HandleFunc("/", s.handleIndex)
	return mux
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("refresh") == "1" || r.URL.Query().Get("refresh") == "true"
	if force && !s.refreshLimiter.Allow() {
		// Too many forced rescans; fall back to the fingerprint check.
		force = false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if force || s.current == nil || s.stale || !s.watching {
		report, err := s.store.GetOrCompute(force)
		if err != nil {
			log.Printf("scan failed: %v", err)
			http.Error(w, fmt.Sprintf("scan failed: %v", err), http.StatusInternalServerError)
			return
		}
		s.current = &usageResponse{
			Report:        report,
			Optimizations: optimizer.Generate(report, s.thresholds),
		}
		s.stale = false
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.current); err != nil {
		log.Printf("encode usage response: %v", err)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	// http.ServeFileFS requires Go 1.22; serve the embedded file the same way
	// on the 1.21 toolchain.
	data, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, "500 internal server error", http.StatusInternalServerError)
		return
	}
	http.ServeContent(w, r, "index.html", time.Time{}, bytes.NewReader(data))
}

// Listen binds the loopback address only; the dashboard is single-user and
// never exposed beyond the local machine.
func (s *Server) Listen(port int) (net.Listener, error) {
	return net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
}

// Serve runs the HTTP server on ln, optionally watching projectsDir for
// changes so unchanged-data requests skip even the fingerprint scan. Blocks
// until the listener closes.
func (s *Server) Serve(ln net.Listener, projectsDir string) error {
	watcher, err := WatchProjects(projectsDir, 2*time.Second, s.MarkStale)
	if err != nil {
		log.Printf("change watcher disabled: %v", err)
	} else {
		s.setWatching(true)
		defer watcher.Close()
	}

	log.Printf("Serving dashboard on http://%s", ln.Addr())
	return http.Serve(ln, s.Handler())
}
