package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cherseta/chersey/internal/crumbs"
	"github.com/cherseta/chersey/internal/llm"
	"github.com/cherseta/chersey/internal/logger"
	"github.com/cherseta/chersey/internal/notion"
)

func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
		UID  string `json:"uid"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	s.award(body.UID, crumbs.AwardResearchRun)

	results, err := s.Research.Run(r.Context(), body.Text)
	if errors.Is(err, llm.ErrUnavailable) {
		writeError(w, http.StatusServiceUnavailable, "research assistant unavailable")
		return
	}
	if err != nil {
		s.Log.Error("research failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleXP(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")

	state, err := s.Crumbs.Read(r.Context(), uid)
	if err != nil {
		s.Log.Error("read crumbs failed", logger.String("uid", uid), logger.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"crumbs": state.Score,
		"level":  state.Tier,
		"status": state.Status,
	})
}

func (s *Server) handleNotionExport(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if s.Notion == nil || !s.Notion.Configured() {
		writeError(w, http.StatusServiceUnavailable, "Notion export not configured")
		return
	}
	if body.Title == "" {
		body.Title = notion.DefaultTitle
	}

	res, err := s.Notion.Export(r.Context(), body.Title, body.Content)
	if err != nil {
		s.Log.Error("notion export failed", logger.Error(err))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.Status)
	w.Write(res.Body)
}
