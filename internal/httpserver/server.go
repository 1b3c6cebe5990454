// internal/httpserver/server.go
//
// HTTP server wiring for the hangman backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/metrics".
//   - Game endpoints (routes_game.go): GET-only queries and commands over
//     the shared session, compatible with the browser client.
//   - Display stream: "/ws" is mounted outside the timeout group so the
//     websocket can stay open.
//
// Notes:
//   - There is no authentication. The address of whoever last performed a
//     privileged action (choose word/length, answer the engine, set mode) is
//     remembered and reported as "controller" in /getGameInfo.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/firebolt55439/airplay-hangman/internal/game"
)

// CorpusInfo is what /debug/words reports on.
type CorpusInfo interface {
	Len() int
	LevelIndices() []int
}

// Deps are the collaborators the server routes to.
type Deps struct {
	Session      *game.Session
	Corpus       CorpusInfo
	Recorder     game.Recorder // optional; /history is empty without it
	Display      http.Handler  // optional; served at /ws
	ClientOrigin string        // CORS origin; "" means http://localhost:5173
}

// Server bundles the router and the game collaborators.
type Server struct {
	r        *chi.Mux
	session  *game.Session
	corpus   CorpusInfo
	recorder game.Recorder
	origin   string

	mu         sync.Mutex
	controller string // client address of the last privileged action
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) *Server {
	s := &Server{
		r:        chi.NewRouter(),
		session:  d.Session,
		corpus:   d.Corpus,
		recorder: d.Recorder,
		origin:   d.ClientOrigin,
	}
	if s.origin == "" {
		s.origin = "http://localhost:5173"
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer) // recover from panics

	// --- long-lived / non-JSON ---
	s.r.Handle("/metrics", promhttp.Handler())
	if d.Display != nil {
		s.r.Handle("/ws", d.Display)
	}

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
		r.Use(jsonContentType)                 // default JSON responses
		r.Use(s.cors)                          // credentials-friendly CORS

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]any{
				"service": "hangman",
				"endpoints": []string{
					"/health", "/getGameInfo", "/getBlankedWord", "/getExtantLetters",
					"/guessPercentage", "/getLatestAlert", "/getWordFillForm",
					"/guessLetter?letter=", "/chooseWord?word=", "/setWordLength?length=",
					"/setLetterInWord?in_word=", "/setWordLocations?word=", "/setMode?mode=",
					"/history", "/ws", "/metrics",
				},
			})
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		})

		s.mountGame(r)

		// Debug: corpus size and level boundaries
		r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]any{"words": s.corpus.Len(), "levels": s.corpus.LevelIndices()})
		})

		// JSON 404 for easier debugging
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			writeJSON(w, map[string]string{"error": "not_found", "path": r.URL.Path})
		})
	})

	return s
}

// Handler exposes the router (useful for tests and http.Server).
func (s *Server) Handler() http.Handler { return s.r }

// Router exposes the internal router.
func (s *Server) Router() chi.Router { return s.r }

// Serve runs an http.Server on addr until ctx is done, then shuts it down.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Controller returns the address of the last privileged client.
func (s *Server) Controller() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controller
}

func (s *Server) setController(r *http.Request) {
	addr := clientIP(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controller = addr
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", s.origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------- small util --------------------------------

func writeJSON(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

// clientIP strips the port from RemoteAddr (already rewritten by RealIP).
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
