package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/cherseta/chersey/internal/auth"
	"github.com/cherseta/chersey/internal/chat"
	"github.com/cherseta/chersey/internal/crumbs"
	"github.com/cherseta/chersey/internal/logger"
	"github.com/cherseta/chersey/internal/notion"
	"github.com/cherseta/chersey/internal/research"
	"github.com/cherseta/chersey/internal/store"
)

const maxBodyBytes = 10 << 20

// Transcripts looks up video titles and caption text.
type Transcripts interface {
	Title(ctx context.Context, videoURL string) string
	Transcript(ctx context.Context, videoID string) (string, error)
}

// Exporter publishes notes to an external document service.
type Exporter interface {
	Configured() bool
	Export(ctx context.Context, title, content string) (*notion.Result, error)
}

// Deps are the collaborators the HTTP API is built on.
type Deps struct {
	DB          *store.DB
	Crumbs      *crumbs.Service
	Awarder     *crumbs.Awarder
	Chat        *chat.Orchestrator
	Research    *research.Agent
	Transcripts Transcripts
	Notion      Exporter
	Verifier    auth.Verifier
	Log         logger.Logger
	Version     string
}

// Server is the chersey HTTP API server.
type Server struct {
	Deps
	router  chi.Router
	started time.Time
}

// New creates a new Server from its dependencies.
func New(d Deps) *Server {
	if d.Log == nil {
		d.Log = logger.NewNop()
	}
	s := &Server{
		Deps:    d,
		started: time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(accessLog(s.Log))
	r.Use(cors.AllowAll().Handler)
	r.Use(middleware.StripSlashes)

	r.Post("/ping", s.handlePing)
	r.Post("/verify-token", s.handleVerifyToken)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/export/notion", s.handleNotionExport)
		r.Post("/research/agent", s.handleResearch)
		r.Get("/users/{uid}/xp", s.handleXP)

		r.Route("/{uid}/projects", func(r chi.Router) {
			r.Post("/", s.handleCreateProject)
			r.Get("/list", s.handleListProjects)

			r.Route("/{projectID}", func(r chi.Router) {
				r.Get("/", s.handleGetProject)
				r.Delete("/", s.handleDeleteProject)
				r.Get("/bookmarks", s.handleListBookmarks)
				r.Post("/bookmarks/toggle", s.handleToggleBookmark)
				r.Post("/transcribe", s.handleTranscribe)
				r.Post("/chat", s.handleChat)
				r.Get("/chats", s.handleListChats)
				r.Post("/notes", s.handleUpdateNotes)
			})
		})
	})

	s.pageRoutes(r)
	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.DB.PingContext(r.Context()); err != nil {
		dbOK = false
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.Version,
		"uptime":  time.Since(s.started).Seconds(),
		"db":      dbOK,
		"db_path": s.DB.Path,
	})
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "pong"})
}

func (s *Server) handleVerifyToken(w http.ResponseWriter, r *http.Request) {
	var creds auth.Credentials
	if !decodeJSON(w, r, &creds) {
		return
	}

	uid, err := s.Verifier.Verify(r.Context(), creds)
	if errors.Is(err, auth.ErrInvalidToken) {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	if err != nil {
		s.Log.Error("token verification failed", logger.Error(err))
		writeError(w, http.StatusBadGateway, "token verification unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"uid":     uid,
		"message": "Session verified",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON reads the request body into v, answering 400 on failure. An
// empty body leaves v at its zero value.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeError(w, http.StatusBadRequest, "invalid json")
	return false
}
