package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cherseta/chersey/internal/chat"
	"github.com/cherseta/chersey/internal/logger"
	"github.com/cherseta/chersey/internal/store"
)

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	id := chi.URLParam(r, "projectID")

	var body struct {
		Message     string   `json:"message"`
		SelectedIDs []string `json:"selectedIds"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Message == "" {
		writeError(w, http.StatusBadRequest, "message required")
		return
	}

	turn, err := s.Chat.Prepare(r.Context(), uid, id, body.Message, body.SelectedIDs)
	switch {
	case errors.Is(err, chat.ErrOffline):
		writeJSON(w, http.StatusOK, map[string]string{"response": chat.OfflineMessage})
		return
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Project not found")
		return
	case err != nil:
		s.Log.Error("chat prepare failed", logger.String("uid", uid), logger.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	emit := func(f chat.Frame) error {
		data, err := json.Marshal(f)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}
		return rc.Flush()
	}

	if err := turn.Stream(r.Context(), emit); err != nil {
		s.Log.Debug("chat stream ended", logger.String("project", id), logger.Error(err))
	}
}

func (s *Server) handleListChats(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	id := chi.URLParam(r, "projectID")

	history, err := s.DB.ListChats(r.Context(), uid, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"history": history})
}
