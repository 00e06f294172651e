package api

import (
	"errors"
	"net/http"
	"strconv"

	"goLangClient/config"
	"goLangClient/db"
	"goLangClient/state"
)

/* =========================
   RESPONSE TYPES
========================= */

// LeaderboardEntryResponse represents a single leaderboard entry
type LeaderboardEntryResponse struct {
	Rank      int     `json:"rank"`
	PlayerID  string  `json:"playerId"`
	Networth  float64 `json:"networth"`
	Timestamp string  `json:"timestamp"`
}

// LeaderboardResponse represents the leaderboard API response
type LeaderboardResponse struct {
	Success     bool                       `json:"success"`
	Leaderboard []LeaderboardEntryResponse `json:"leaderboard"`
}

/* =========================
   HTTP ENDPOINTS
========================= */

// HandleGetLeaderboard handles GET /api/leaderboard
// Query params: limit (optional, default 10, max 100)
func (h *Handler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	limit, ok := parseLimit(r, config.GlobalTopSize, config.LeaderboardMaxSize)
	if !ok {
		sendError(w, http.StatusBadRequest, "Invalid limit")
		return
	}

	entries, err := db.TopResults(r.Context(), limit)
	if errors.Is(err, db.ErrNotInitialized) {
		sendError(w, http.StatusServiceUnavailable, "Leaderboard storage is not configured")
		return
	}
	if err != nil {
		h.log.Errorf("❌ Failed to get leaderboard: %v", err)
		sendError(w, http.StatusInternalServerError, "Failed to retrieve leaderboard")
		return
	}

	sendJSON(w, LeaderboardResponse{Success: true, Leaderboard: rankEntries(entries)})
	h.log.Debugf("📋 Retrieved leaderboard with %d entries", len(entries))
}

func rankEntries(entries []state.GlobalEntry) []LeaderboardEntryResponse {
	ranked := make([]LeaderboardEntryResponse, 0, len(entries))
	for i, e := range entries {
		ranked = append(ranked, LeaderboardEntryResponse{
			Rank:      i + 1,
			PlayerID:  e.PlayerID,
			Networth:  e.Networth,
			Timestamp: e.Timestamp,
		})
	}
	return ranked
}

// parseLimit reads ?limit=, falling back to def and capping at maxLimit.
func parseLimit(r *http.Request, def, maxLimit int) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	return min(n, maxLimit), true
}
