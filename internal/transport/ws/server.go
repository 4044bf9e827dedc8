// Package ws exposes the scheduler over HTTP: a POST endpoint that ingests
// updates and a websocket endpoint that streams diagnostics snapshots.
// Grounded on the source's Server/Broadcaster split (internal/ws in the
// teacher repo), adapted from a session-store viewer to an update-ingress +
// counters feed.
package ws

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/agent-racer/botsched/internal/update"
	"github.com/gorilla/websocket"
)

// Dispatcher is the subset of *scheduler.Scheduler the ingress endpoint
// needs. Declared here, rather than imported, so this package depends on
// the scheduler only through this narrow interface.
type Dispatcher interface {
	HandleMessage(m *update.Message)
	HandleEditedMessage(m *update.Message)
	HandleCallbackQuery(q *update.CallbackQuery)
	HandleInlineQuery(q *update.InlineQuery)
}

type Server struct {
	dispatcher     Dispatcher
	broadcaster    *Broadcaster
	allowedOrigins map[string]bool
	allowedHosts   map[string]bool
	authToken      string
}

func NewServer(dispatcher Dispatcher, broadcaster *Broadcaster, allowedOrigins []string, authToken string) *Server {
	s := &Server{
		dispatcher:     dispatcher,
		broadcaster:    broadcaster,
		allowedOrigins: make(map[string]bool),
		allowedHosts:   make(map[string]bool),
		authToken:      authToken,
	}

	for _, origin := range allowedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		s.allowedOrigins[trimmed] = true
		if parsed, err := url.Parse(trimmed); err == nil && parsed.Host != "" {
			s.allowedHosts[parsed.Host] = true
		}
	}

	return s
}

func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.Handle("/updates", securityHeaders(http.HandlerFunc(s.handleUpdates)))
	mux.HandleFunc("/diagnostics", s.handleDiagnostics)
}

// securityHeaders adds a conservative baseline of response headers to the
// plain-JSON ingress endpoint. Not applied to /diagnostics: the websocket
// upgrade response has no body for a content policy to protect.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleUpdates(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var env UpdateEnvelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		http.Error(w, fmt.Sprintf("invalid body: %v", err), http.StatusBadRequest)
		return
	}

	switch env.Kind {
	case "message":
		s.dispatcher.HandleMessage(env.Message.toDomain())
	case "edited_message":
		s.dispatcher.HandleEditedMessage(env.Message.toDomain())
	case "callback_query":
		s.dispatcher.HandleCallbackQuery(env.CallbackQuery.toDomain())
	case "inline_query":
		s.dispatcher.HandleInlineQuery(env.InlineQuery.toDomain())
	default:
		http.Error(w, fmt.Sprintf("unknown kind %q", env.Kind), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	upgrader := websocket.Upgrader{CheckOrigin: s.checkOrigin}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}

	log.Printf("diagnostics client connected: %s", r.RemoteAddr)
	c := s.broadcaster.AddClient(conn)

	go func() {
		defer func() {
			s.broadcaster.RemoveClient(c)
			log.Printf("diagnostics client disconnected: %s", r.RemoteAddr)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// authorize checks the request's token against every credential the
// ingress endpoint accepts (query param, custom header, bearer auth).
// Comparisons run in constant time: unlike the teacher's tmux-local
// control surface, /updates is a public HTTP endpoint any caller can
// reach and repeatedly probe, so a byte-by-byte token mismatch must not
// leak timing information.
func (s *Server) authorize(r *http.Request) bool {
	if s.authToken == "" {
		return true
	}

	candidates := []string{r.URL.Query().Get("token"), r.Header.Get("X-Botsched-Token")}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		candidates = append(candidates, strings.TrimPrefix(auth, "Bearer "))
	}
	for _, candidate := range candidates {
		if tokensEqual(candidate, s.authToken) {
			return true
		}
	}
	return false
}

func tokensEqual(supplied, want string) bool {
	return subtle.ConstantTimeCompare([]byte(supplied), []byte(want)) == 1
}

// checkOrigin gates the diagnostics websocket upgrade. With an explicit
// allowlist configured, only those origins (or their host) are accepted;
// otherwise same-host and loopback origins are, so a locally-served
// dashboard can still connect.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true // non-browser clients (curl, a websocket library) send no Origin
	}

	parsed, err := url.Parse(origin)
	if err != nil || parsed.Host == "" {
		return false
	}

	if len(s.allowedOrigins) > 0 {
		return s.allowedOrigins[origin] || s.allowedHosts[parsed.Host]
	}
	return parsed.Host == r.Host || isLoopbackHost(parsed.Host)
}

func isLoopbackHost(host string) bool {
	h := host
	if hostOnly, _, err := net.SplitHostPort(host); err == nil {
		h = hostOnly
	}
	return h == "localhost" || h == "127.0.0.1" || h == "::1"
}

// ListenAndServe starts the HTTP server on addr, matching the source's
// package-level helper of the same name.
func ListenAndServe(addr string, mux *http.ServeMux) error {
	log.Printf("schedd listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}
