package http

import (
	"net/http"

	"github.com/fwojciec/chatgate/json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/hlog"
)

// handleCreateSession serves POST /sessions. It allocates a fresh id and
// starts an empty conversation under it.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id := s.newID()
	s.sessions.GetOrCreate(id)
	hlog.FromRequest(r).Debug().Str("session_id", id).Msg("session allocated")

	data, err := json.MarshalSessionID(id)
	if err != nil {
		fail(w, r, errors.Wrap(err, "encode session"))
		return
	}
	w.Header().Set("Location", "/sessions/"+id)
	writeJSON(w, http.StatusCreated, data)
}

// handleGetSession serves GET /sessions/{id} without refreshing the
// session's expiry.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	conv, ok := s.sessions.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, codeNotFound, "session "+id+" not found")
		return
	}
	data, err := json.MarshalConversation(conv)
	if err != nil {
		fail(w, r, errors.Wrap(err, "encode conversation"))
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// handleDeleteSession serves DELETE /sessions/{id}.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.sessions.Delete(id) {
		writeError(w, http.StatusNotFound, codeNotFound, "session "+id+" not found")
		return
	}
	hlog.FromRequest(r).Debug().Str("session_id", id).Msg("session deleted")
	w.WriteHeader(http.StatusNoContent)
}
