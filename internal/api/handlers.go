package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Nomadcxx/jellymatch/internal/match"
	"github.com/Nomadcxx/jellymatch/internal/tmdb"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]string{
		"error": msg,
		"code":  code,
	})
}

// handleMatch resolves a filename hint from query parameters. A no-match
// result returns 200 with a null id; only invalid input and service
// failures are error statuses.
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	hint := match.FileHint{
		Title:   strings.TrimSpace(q.Get("title")),
		Year:    intParam(q.Get("year")),
		Season:  intParam(q.Get("season")),
		Episode: intParam(q.Get("episode")),
	}
	switch strings.ToLower(q.Get("kind")) {
	case "tv":
		hint.Kind = match.KindTV
	case "movie":
		hint.Kind = match.KindMovie
	case "":
	default:
		writeError(w, http.StatusBadRequest, "invalid_kind", "kind must be tv or movie")
		return
	}
	if hint.Title == "" {
		writeError(w, http.StatusBadRequest, "missing_title", "title query parameter is required")
		return
	}

	result, err := s.engine.Match(r.Context(), hint)
	if err != nil {
		s.writeMatchError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) writeMatchError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *match.ValidationError
	var rerr *tmdb.RequestError

	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, "invalid_input", verr.Error())
	case errors.Is(err, tmdb.ErrServiceDegraded):
		writeError(w, http.StatusServiceUnavailable, "service_degraded", "metadata service degraded, no cached result available")
	case errors.As(err, &rerr):
		writeError(w, http.StatusBadGateway, "upstream_failure", rerr.Error())
	default:
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg("match request failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"client": s.client.Stats(),
		"engine": s.engine.Stats(),
	})
}

func (s *Server) handleCircuitReset(w http.ResponseWriter, r *http.Request) {
	s.client.ResetCircuit()
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"state":  s.client.CircuitState().String(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"state":  s.client.CircuitState().String(),
	})
}

func intParam(v string) int {
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
