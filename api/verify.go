package api

import (
	"errors"
	"net/http"

	"goLangClient/db"
)

/* =========================
   HEALTH CHECK ENDPOINT
========================= */

type HealthResponse struct {
	Success  bool   `json:"success"`
	Redis    string `json:"redis"`
	Postgres string `json:"postgres"`
	Phase    string `json:"phase"`
	Message  string `json:"message"`
}

// HandleHealthCheck handles health check requests
// GET /api/health
func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	ctx := r.Context()

	sendJSON(w, HealthResponse{
		Success:  true,
		Redis:    backendStatus(db.HealthCheck(ctx)),
		Postgres: backendStatus(db.HealthCheckPostgres(ctx)),
		Phase:    string(h.chart.Session().Phase),
		Message:  "Health check completed",
	})
}

func backendStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, db.ErrNotInitialized):
		return "disabled"
	default:
		return "error: " + err.Error()
	}
}
