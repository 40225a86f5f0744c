package server

import (
	"html/template"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cherseta/chersey/internal/logger"
)

// uiFS holds the embedded UI filesystem. Set via SetUI before creating the server.
var uiFS fs.FS

// SetUI sets the embedded filesystem for serving the UI.
func SetUI(fsys fs.FS) {
	uiFS = fsys
}

func (s *Server) pageRoutes(r chi.Router) {
	r.Get("/", s.page("get_started.html"))
	r.Get("/login", s.page("login.html"))
	r.Get("/dashboard", s.page("dashboard.html"))
	r.Get("/project_view/{projectID}", s.handleProjectView)
	r.Get("/static/*", s.handleStatic)
}

// page serves a fixed HTML file from the embedded FS.
func (s *Server) page(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if uiFS == nil {
			writeError(w, http.StatusNotFound, "UI not embedded")
			return
		}
		http.ServeFileFS(w, r, uiFS, name)
	}
}

// handleProjectView renders the project page with its id filled in.
func (s *Server) handleProjectView(w http.ResponseWriter, r *http.Request) {
	if uiFS == nil {
		writeError(w, http.StatusNotFound, "UI not embedded")
		return
	}

	tmpl, err := template.ParseFS(uiFS, "project_view.html")
	if err != nil {
		s.Log.Error("parse project view", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "page unavailable")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	tmpl.Execute(w, map[string]string{"ProjectID": chi.URLParam(r, "projectID")})
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	if uiFS == nil {
		http.NotFound(w, r)
		return
	}
	static, err := fs.Sub(uiFS, "static")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeFileFS(w, r, static, chi.URLParam(r, "*"))
}
