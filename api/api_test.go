package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goLangClient/game"
	"goLangClient/logging"
	"goLangClient/state"
	"goLangClient/ws"
)

type fakeChart struct {
	frame   game.Frame
	view    state.SessionView
	actErr  error
	acted   []string
	started []string
	joined  [][]string
}

func (f *fakeChart) Frame() game.Frame          { return f.frame }
func (f *fakeChart) Session() state.SessionView { return f.view }

func (f *fakeChart) Act(_ context.Context, playerID, action string) error {
	if f.actErr != nil {
		return f.actErr
	}
	f.acted = append(f.acted, playerID+":"+action)
	return nil
}

func (f *fakeChart) StartGame(_ context.Context, symbol string) error {
	f.started = append(f.started, symbol)
	return nil
}

func (f *fakeChart) Join(_ context.Context, names []string) error {
	f.joined = append(f.joined, names)
	return nil
}

func newTestMux(t *testing.T) (*http.ServeMux, *fakeChart, *game.ResizableViewport) {
	t.Helper()
	vp := game.NewResizableViewport(400, 300)
	chart := game.NewChart(game.DefaultOptions(), vp)
	chart.Ingest(100, time.UnixMilli(0))
	chart.Ingest(104, time.UnixMilli(100))

	fake := &fakeChart{
		frame: chart.Frame(),
		view:  state.SessionView{Phase: state.PhaseRunning, RoundID: "r1", Tick: 2, Price: 104},
	}
	mux := http.NewServeMux()
	NewHandler(fake, vp, logging.Discard()).Register(mux)
	return mux, fake, vp
}

func do(t *testing.T, mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	return resp
}

func TestHandleGetChart(t *testing.T) {
	mux, _, _ := newTestMux(t)

	rec := do(t, mux, http.MethodGet, "/api/chart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp ChartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Frame.Candles, 1)
	assert.Equal(t, 104.0, resp.Frame.Candles[0].Candle.High)

	rec = do(t, mux, http.MethodPost, "/api/chart", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "Method not allowed", decodeError(t, rec).Error)
}

func TestHandleViewport(t *testing.T) {
	mux, _, vp := newTestMux(t)

	rec := do(t, mux, http.MethodPost, "/api/viewport", `{"width":1280,"height":720}`)
	require.Equal(t, http.StatusOK, rec.Code)
	w, h := vp.Size()
	assert.Equal(t, 1280.0, w)
	assert.Equal(t, 720.0, h)

	rec = do(t, mux, http.MethodPost, "/api/viewport", `{"width":0,"height":720}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	decodeError(t, rec)

	rec = do(t, mux, http.MethodPost, "/api/viewport", `nope`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, mux, http.MethodGet, "/api/viewport", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp ViewportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1280.0, resp.Width)
}

func TestHandleGetSession(t *testing.T) {
	mux, _, _ := newTestMux(t)

	rec := do(t, mux, http.MethodGet, "/api/session", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, state.PhaseRunning, resp.Session.Phase)
	assert.Equal(t, "r1", resp.Session.RoundID)
}

func TestHandleAction(t *testing.T) {
	mux, fake, _ := newTestMux(t)

	rec := do(t, mux, http.MethodPost, "/api/action", `{"playerId":"alice","action":"all_in"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"alice:all_in"}, fake.acted)

	rec = do(t, mux, http.MethodPost, "/api/action", `{"action":"all_in"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	cases := map[error]int{
		state.ErrNotRunning:    http.StatusConflict,
		state.ErrUnknownAction: http.StatusBadRequest,
		ws.ErrRateLimited:      http.StatusTooManyRequests,
		ws.ErrNotConnected:     http.StatusServiceUnavailable,
	}
	for err, code := range cases {
		fake.actErr = err
		rec = do(t, mux, http.MethodPost, "/api/action", `{"playerId":"alice","action":"all_out"}`)
		assert.Equal(t, code, rec.Code, err.Error())
		decodeError(t, rec)
	}
}

func TestHandleStartAndJoin(t *testing.T) {
	mux, fake, _ := newTestMux(t)

	rec := do(t, mux, http.MethodPost, "/api/start", `{"stockA":"AAPL"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, mux, http.MethodPost, "/api/start", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"AAPL", ""}, fake.started)

	rec = do(t, mux, http.MethodPost, "/api/join", `{"playerNames":["alice","bob"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, [][]string{{"alice", "bob"}}, fake.joined)

	rec = do(t, mux, http.MethodPost, "/api/join", `{"playerNames":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBackendEndpointsWithoutStorage(t *testing.T) {
	mux, _, _ := newTestMux(t)

	for _, path := range []string{"/api/leaderboard", "/api/rounds", "/api/rounds/r1"} {
		rec := do(t, mux, http.MethodGet, path, "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
		decodeError(t, rec)
	}

	rec := do(t, mux, http.MethodGet, "/api/leaderboard?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, mux, http.MethodGet, "/api/rounds/", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleHealthCheck(t *testing.T) {
	mux, _, _ := newTestMux(t)

	rec := do(t, mux, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "disabled", resp.Redis)
	assert.Equal(t, "disabled", resp.Postgres)
	assert.Equal(t, "running", resp.Phase)
}

func TestParseLimit(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x?limit=500", nil)
	n, ok := parseLimit(req, 10, 100)
	assert.True(t, ok)
	assert.Equal(t, 100, n)

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	n, ok = parseLimit(req, 10, 100)
	assert.True(t, ok)
	assert.Equal(t, 10, n)

	req = httptest.NewRequest(http.MethodGet, "/x?limit=-1", nil)
	_, ok = parseLimit(req, 10, 100)
	assert.False(t, ok)
}
