package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cherseta/chersey/internal/crumbs"
	"github.com/cherseta/chersey/internal/logger"
	"github.com/cherseta/chersey/internal/store"
	"github.com/cherseta/chersey/internal/transcript"
)

const defaultNoteTitle = "Untitled Note"

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")

	var body struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		writeError(w, http.StatusBadRequest, "No name provided")
		return
	}

	p, err := s.DB.CreateProject(r.Context(), uid, body.Name)
	if err != nil {
		s.Log.Error("create project failed", logger.String("uid", uid), logger.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.award(uid, crumbs.AwardProjectCreated)

	writeJSON(w, http.StatusOK, map[string]string{"id": p.ID, "name": p.Name})
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")

	projects, err := s.DB.ListProjects(r.Context(), uid)
	if err != nil {
		s.Log.Error("list projects failed", logger.String("uid", uid), logger.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	id := chi.URLParam(r, "projectID")

	p, err := s.DB.GetProject(r.Context(), uid, id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	id := chi.URLParam(r, "projectID")

	if err := s.DB.DeleteProject(r.Context(), uid, id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Project " + id + " deleted.",
	})
}

func (s *Server) handleUpdateNotes(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	id := chi.URLParam(r, "projectID")

	var body struct {
		Content string `json:"content"`
		Title   string `json:"title"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Title == "" {
		body.Title = defaultNoteTitle
	}

	err := s.DB.UpdateNotes(r.Context(), uid, id, body.Content, body.Title)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (s *Server) handleListBookmarks(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	id := chi.URLParam(r, "projectID")

	bookmarks, err := s.DB.ListBookmarks(r.Context(), uid, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"bookmarks": bookmarks})
}

func (s *Server) handleToggleBookmark(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	id := chi.URLParam(r, "projectID")

	var body struct {
		URL   string `json:"url"`
		Title string `json:"title"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.URL == "" {
		writeError(w, http.StatusBadRequest, "URL required")
		return
	}

	status, err := s.DB.ToggleBookmark(r.Context(), uid, id, body.URL, body.Title)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	id := chi.URLParam(r, "projectID")
	ctx := r.Context()

	var body struct {
		URL string `json:"url"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	videoID, err := transcript.ExtractVideoID(body.URL)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid YouTube URL")
		return
	}

	exists, err := s.DB.ProjectExists(ctx, uid, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}
	s.award(uid, crumbs.AwardTranscriptAdded)

	title := s.Transcripts.Title(ctx, body.URL)
	text, err := s.Transcripts.Transcript(ctx, videoID)
	if err != nil {
		s.Log.Warn("transcription failed",
			logger.String("video_id", videoID), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "Transcription failed: "+err.Error())
		return
	}

	src := store.Source{
		ID:         videoID,
		URL:        body.URL,
		Title:      title,
		Transcript: text,
		AddedAt:    time.Now().UTC(),
	}
	err = s.DB.AppendSource(ctx, uid, id, src)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "success",
		"new_source": src,
	})
}

func (s *Server) award(uid string, amount int) {
	if s.Awarder != nil {
		s.Awarder.Award(uid, amount)
	}
}
