package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"goLangClient/game"
	"goLangClient/state"
	"goLangClient/ws"
)

// ChartSource is the running chart session the API reads and drives.
type ChartSource interface {
	Frame() game.Frame
	Session() state.SessionView
	Act(ctx context.Context, playerID, action string) error
	StartGame(ctx context.Context, symbol string) error
	Join(ctx context.Context, names []string) error
}

// Resizer is the viewport the chart is laid out in.
type Resizer interface {
	Size() (width, height float64)
	Resize(width, height float64) bool
}

// Handler serves the HTTP API.
type Handler struct {
	chart    ChartSource
	viewport Resizer
	log      logrus.FieldLogger
}

func NewHandler(chart ChartSource, viewport Resizer, log logrus.FieldLogger) *Handler {
	return &Handler{chart: chart, viewport: viewport, log: log}
}

// Register adds every API route to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/chart", h.HandleGetChart)
	mux.HandleFunc("/api/viewport", h.HandleViewport)
	mux.HandleFunc("/api/session", h.HandleGetSession)
	mux.HandleFunc("/api/action", h.HandleAction)
	mux.HandleFunc("/api/start", h.HandleStart)
	mux.HandleFunc("/api/join", h.HandleJoin)
	mux.HandleFunc("/api/leaderboard", h.HandleGetLeaderboard)
	mux.HandleFunc("/api/rounds", h.HandleGetRounds)
	mux.HandleFunc("/api/rounds/", h.HandleGetRound)
	mux.HandleFunc("/api/health", h.HandleHealthCheck)
}

/* =========================
   REQUEST/RESPONSE TYPES
========================= */

type ChartResponse struct {
	Success bool       `json:"success"`
	Frame   game.Frame `json:"frame"`
}

type SessionResponse struct {
	Success bool              `json:"success"`
	Session state.SessionView `json:"session"`
}

type ViewportRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type ViewportResponse struct {
	Success bool    `json:"success"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

type ActionRequest struct {
	PlayerID string `json:"playerId"`
	Action   string `json:"action"` // all_in or all_out
}

type StartRequest struct {
	StockA string `json:"stockA"`
}

type JoinRequest struct {
	PlayerNames []string `json:"playerNames"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

/* =========================
   CHART ENDPOINTS
========================= */

// HandleGetChart returns the latest laid-out frame
// GET /api/chart
func (h *Handler) HandleGetChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	sendJSON(w, ChartResponse{Success: true, Frame: h.chart.Frame()})
}

// HandleViewport reads or changes the chart's viewport size
// GET /api/viewport, POST /api/viewport
func (h *Handler) HandleViewport(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		var req ViewportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			sendError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if !h.viewport.Resize(req.Width, req.Height) {
			sendError(w, http.StatusBadRequest, "Width and height must be positive numbers")
			return
		}
	default:
		sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	width, height := h.viewport.Size()
	sendJSON(w, ViewportResponse{Success: true, Width: width, Height: height})
}

// HandleGetSession returns the game session as this client sees it
// GET /api/session
func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	sendJSON(w, SessionResponse{Success: true, Session: h.chart.Session()})
}

/* =========================
   GAME CONTROL ENDPOINTS
========================= */

// HandleAction sends a player action to the game server
// POST /api/action
func (h *Handler) HandleAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PlayerID == "" {
		sendError(w, http.StatusBadRequest, "Missing playerId")
		return
	}

	if err := h.chart.Act(r.Context(), req.PlayerID, req.Action); err != nil {
		h.sendGameError(w, err)
		return
	}
	sendJSON(w, MessageResponse{Success: true, Message: "Action sent"})
}

// HandleStart asks the game server to start a round
// POST /api/start
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req StartRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			sendError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	if err := h.chart.StartGame(r.Context(), req.StockA); err != nil {
		h.sendGameError(w, err)
		return
	}
	sendJSON(w, MessageResponse{Success: true, Message: "Start requested"})
}

// HandleJoin registers the local players with the game server
// POST /api/join
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.PlayerNames) == 0 {
		sendError(w, http.StatusBadRequest, "At least one player name is required")
		return
	}

	if err := h.chart.Join(r.Context(), req.PlayerNames); err != nil {
		h.sendGameError(w, err)
		return
	}
	sendJSON(w, MessageResponse{Success: true, Message: "Join requested"})
}

func (h *Handler) sendGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, state.ErrNotRunning):
		sendError(w, http.StatusConflict, "Round is not running")
	case errors.Is(err, state.ErrAlreadyRunning):
		sendError(w, http.StatusConflict, "Round already running")
	case errors.Is(err, state.ErrUnknownAction):
		sendError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ws.ErrRateLimited):
		sendError(w, http.StatusTooManyRequests, "Too many actions, slow down")
	case errors.Is(err, ws.ErrNotConnected), errors.Is(err, state.ErrNoSender):
		sendError(w, http.StatusServiceUnavailable, "Not connected to game server")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		sendError(w, http.StatusServiceUnavailable, "Chart is not running")
	default:
		h.log.Errorf("❌ Game request failed: %v", err)
		sendError(w, http.StatusBadRequest, err.Error())
	}
}
