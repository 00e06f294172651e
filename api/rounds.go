package api

import (
	"errors"
	"net/http"
	"strings"

	"goLangClient/config"
	"goLangClient/db"
	"goLangClient/state"
)

type RoundsResponse struct {
	Success bool                 `json:"success"`
	Rounds  []*state.RoundRecord `json:"rounds"`
}

type RoundResponse struct {
	Success bool               `json:"success"`
	Round   *state.RoundRecord `json:"round"`
	Summary *db.RoundSummary   `json:"summary,omitempty"`
}

// HandleGetRounds lists recently archived rounds
// GET /api/rounds?limit=
func (h *Handler) HandleGetRounds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	limit, ok := parseLimit(r, config.DefaultRoundLimit, config.MaxRoundLimit)
	if !ok {
		sendError(w, http.StatusBadRequest, "Invalid limit")
		return
	}

	rounds, err := db.RecentRounds(r.Context(), limit)
	if errors.Is(err, db.ErrNotInitialized) {
		sendError(w, http.StatusServiceUnavailable, "Round archive is not configured")
		return
	}
	if err != nil {
		h.log.Errorf("❌ Failed to list rounds: %v", err)
		sendError(w, http.StatusInternalServerError, "Failed to retrieve rounds")
		return
	}

	sendJSON(w, RoundsResponse{Success: true, Rounds: rounds})
}

// HandleGetRound returns one archived round with its cached summary, if any
// GET /api/rounds/{id}
func (h *Handler) HandleGetRound(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	roundID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/rounds/"), "/")
	if roundID == "" || strings.Contains(roundID, "/") {
		sendError(w, http.StatusBadRequest, "Missing round ID")
		return
	}

	round, err := db.GetRound(r.Context(), roundID)
	switch {
	case errors.Is(err, db.ErrNotInitialized):
		sendError(w, http.StatusServiceUnavailable, "Round archive is not configured")
		return
	case errors.Is(err, db.ErrRoundNotFound):
		sendError(w, http.StatusNotFound, "Round not found")
		return
	case err != nil:
		h.log.Errorf("❌ Failed to get round %s: %v", roundID, err)
		sendError(w, http.StatusInternalServerError, "Failed to retrieve round")
		return
	}

	resp := RoundResponse{Success: true, Round: round}
	if summary, err := db.GetRoundSummary(r.Context(), roundID); err == nil {
		resp.Summary = summary
	}
	sendJSON(w, resp)
}
