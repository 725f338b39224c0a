// handlers_api_test.go - Route-level tests through the full Echo stack
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/jeevamani007/data-analysis-sub000/internal/history"
	"github.com/jeevamani007/data-analysis-sub000/internal/models"
	"github.com/jeevamani007/data-analysis-sub000/internal/pipeline"
	"github.com/jeevamani007/data-analysis-sub000/internal/remote"
	"github.com/jeevamani007/data-analysis-sub000/internal/testutil"
	"github.com/jeevamani007/data-analysis-sub000/internal/view"
)

type stubHistory struct {
	records []history.Record
	err     error
}

func (s stubHistory) Recent(ctx context.Context, limit int) ([]history.Record, error) {
	if s.err != nil {
		return nil, s.err
	}
	if limit < len(s.records) {
		return s.records[:limit], nil
	}
	return s.records, nil
}

type testEnv struct {
	echo    *echo.Echo
	mock    *testutil.MockAnalysisService
	manager *pipeline.Manager
}

func newTestEnv(t *testing.T, hist HistoryReader) *testEnv {
	t.Helper()

	mock := testutil.NewMockAnalysisService()
	t.Cleanup(mock.Close)

	mgr := pipeline.NewManager(remote.NewClient(mock.URL(), 5*time.Second), nil, 25)

	e := echo.New()
	SetupMiddleware(e)
	RegisterRoutes(e, NewHandlers(&Dependencies{
		Pipeline: mgr,
		Renderer: view.NewRenderer(),
		History:  hist,
		Version:  "test",
	}))

	return &testEnv{echo: e, mock: mock, manager: mgr}
}

func (env *testEnv) request(t *testing.T, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	env.echo.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) createRun(t *testing.T) models.Run {
	t.Helper()
	rec := env.request(t, http.MethodPost, "/api/runs", nil, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var run models.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	require.NotEmpty(t, run.ID)
	return run
}

func multipartBody(t *testing.T, names ...string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for _, name := range names {
		part, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("id,open_date\n1,2024-01-01\n"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func (env *testEnv) addFiles(t *testing.T, runID string, names ...string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, names...)
	return env.request(t, http.MethodPost, "/api/runs/"+runID+"/files", body, contentType)
}

func (env *testEnv) waitForStage(t *testing.T, runID string, stage models.Stage) models.Run {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		run, ok := env.manager.GetRun(runID)
		require.True(t, ok)
		if run.Stage == stage {
			return *run
		}
		if run.Stage == models.StageFailed && stage != models.StageFailed {
			t.Fatalf("run failed while waiting for %s: %s", stage, run.Error)
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("run never reached stage %s", stage)
	return models.Run{}
}

func errCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var apiErr APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	return apiErr.Code
}

func TestHandleHealth(t *testing.T) {
	env := newTestEnv(t, stubHistory{})
	rec := env.request(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestCreateAndGetRun(t *testing.T) {
	env := newTestEnv(t, stubHistory{})
	run := env.createRun(t)
	assert.Equal(t, models.StageIdle, run.Stage)
	assert.Equal(t, models.ViewUpload, run.Marker)

	rec := env.request(t, http.MethodGet, "/api/runs/"+run.ID, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/runs/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errCode(t, rec))
}

func TestAddFiles(t *testing.T) {
	env := newTestEnv(t, stubHistory{})
	run := env.createRun(t)

	rec := env.addFiles(t, run.ID, "a.csv", "b.csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":2`)

	// A batch with one rejected file leaves the staged set untouched.
	rec = env.addFiles(t, run.ID, "c.csv", "notes.txt")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", errCode(t, rec))

	rec = env.request(t, http.MethodGet, "/api/runs/"+run.ID+"/files", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":2`)
	assert.NotContains(t, rec.Body.String(), "c.csv")
}

func TestRemoveFileSwapsLastIntoSlot(t *testing.T) {
	env := newTestEnv(t, stubHistory{})
	run := env.createRun(t)
	require.Equal(t, http.StatusOK, env.addFiles(t, run.ID, "a.csv", "b.csv", "c.csv").Code)

	rec := env.request(t, http.MethodDelete, "/api/runs/"+run.ID+"/files/0", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Files []models.BatchFile `json:"files"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Files, 2)
	assert.Equal(t, "c.csv", resp.Files[0].Name)
	assert.Equal(t, "b.csv", resp.Files[1].Name)
}

func TestRemoveFileBadIndex(t *testing.T) {
	env := newTestEnv(t, stubHistory{})
	run := env.createRun(t)

	for _, index := range []string{"abc", "5", "-1"} {
		rec := env.request(t, http.MethodDelete, "/api/runs/"+run.ID+"/files/"+index, nil, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, "index %q", index)
	}
}

func TestStartRejectsEmptyBatch(t *testing.T) {
	env := newTestEnv(t, stubHistory{})
	run := env.createRun(t)

	rec := env.request(t, http.MethodPost, "/api/runs/"+run.ID+"/start", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", errCode(t, rec))
}

func TestFullPipelineOverHTTP(t *testing.T) {
	env := newTestEnv(t, stubHistory{})
	env.mock.Detection = testutil.BankingDetection()
	env.mock.AccountsResult = models.AccountAnalysisResult{
		AgeAnalysis: models.AgeAnalysis{
			New: []models.AccountRow{
				{"customer_id": "c1", "group": "NEW", "age_days": 4.0},
			},
			Counts: map[string]int{"NEW": 1},
		},
		OpenDateTimeline: &models.Timeline{
			Entries: []models.DailyEntry{
				{
					Date:   "2024-01-01",
					Counts: map[string]int{"accounts": 1},
					Details: []models.EventDetail{
						{Actor: "c1", Time: "10:00:00"},
					},
				},
			},
		},
	}

	run := env.createRun(t)
	require.Equal(t, http.StatusOK, env.addFiles(t, run.ID, "accounts.csv").Code)

	// No profiles on the mock: the domain view is skipped and the run
	// pauses at the detected-columns stage.
	rec := env.request(t, http.MethodPost, "/api/runs/"+run.ID+"/start", nil, "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	paused := env.waitForStage(t, run.ID, models.StageColumnsDetected)
	assert.Equal(t, "open_date", paused.OpenColumn)
	assert.Equal(t, "customer_id", paused.IDColumn)

	rec = env.request(t, http.MethodPost, "/api/runs/"+run.ID+"/continue", nil, "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	done := env.waitForStage(t, run.ID, models.StageResultsShown)
	assert.Equal(t, models.ViewResults, done.Marker)

	// Results page renders the timeline and the segmented table.
	rec = env.request(t, http.MethodGet, "/run/"+run.ID+"/view/results", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Account opening timeline")
	assert.Contains(t, rec.Body.String(), "c1")

	// Table partial honors the filter.
	rec = env.request(t, http.MethodGet, "/api/runs/"+run.ID+"/table?filter=TRUSTED", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No accounts in this bucket.")

	// Drill into the single day, then toggle it closed again.
	body := bytes.NewBufferString(`{"index":0,"anchor":"tl-open-0"}`)
	rec = env.request(t, http.MethodPost, "/api/runs/"+run.ID+"/timeline/open/select", body, echo.MIMEApplicationJSON)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "2024-01-01")
	assert.Contains(t, rec.Body.String(), "Morning")

	body = bytes.NewBufferString(`{"index":0,"anchor":"tl-open-0"}`)
	rec = env.request(t, http.MethodPost, "/api/runs/"+run.ID+"/timeline/open/select", body, echo.MIMEApplicationJSON)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Select a day to see its events.")

	// The raw entry sequence is served as msgpack.
	rec = env.request(t, http.MethodGet, "/api/runs/"+run.ID+"/timeline/open/entries/msgpack", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/msgpack", rec.Header().Get(echo.HeaderContentType))
	var entries []models.DailyEntry
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "2024-01-01", entries[0].Date)

	assert.Equal(t, []string{"upload", "analyze", "detect-date-columns", "analyze-accounts"}, env.mock.Calls())
}

func TestRestartReturnsRunToUpload(t *testing.T) {
	env := newTestEnv(t, stubHistory{})
	run := env.createRun(t)
	require.Equal(t, http.StatusOK, env.addFiles(t, run.ID, "a.csv").Code)

	rec := env.request(t, http.MethodPost, "/api/runs/"+run.ID+"/restart", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var restarted models.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &restarted))
	assert.Equal(t, models.StageIdle, restarted.Stage)
	assert.Equal(t, models.ViewUpload, restarted.Marker)

	rec = env.request(t, http.MethodGet, "/api/runs/"+run.ID+"/files", nil, "")
	assert.Contains(t, rec.Body.String(), `"count":0`)
}

func TestTimelineSelectBeforeResults(t *testing.T) {
	env := newTestEnv(t, stubHistory{})
	run := env.createRun(t)

	body := bytes.NewBufferString(`{"index":0}`)
	rec := env.request(t, http.MethodPost, "/api/runs/"+run.ID+"/timeline/open/select", body, echo.MIMEApplicationJSON)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", errCode(t, rec))
}

func TestViewPageUploadShowsBatchAndHistory(t *testing.T) {
	env := newTestEnv(t, stubHistory{records: []history.Record{
		{RunID: "old", StartedAt: time.Now(), FileCount: 3, Outcome: history.OutcomeCompleted, DurationMs: 900},
	}})
	run := env.createRun(t)
	require.Equal(t, http.StatusOK, env.addFiles(t, run.ID, "accounts.csv").Code)

	rec := env.request(t, http.MethodGet, "/run/"+run.ID+"/view/upload", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "accounts.csv")
	assert.Contains(t, rec.Body.String(), "Recent analyses")
}

func TestViewPageUnknownMarker(t *testing.T) {
	env := newTestEnv(t, stubHistory{})
	run := env.createRun(t)

	rec := env.request(t, http.MethodGet, "/run/"+run.ID+"/view/bogus", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecentHistoryEndpoint(t *testing.T) {
	records := make([]history.Record, 0, 3)
	for i := 0; i < 3; i++ {
		records = append(records, history.Record{
			RunID:     fmt.Sprintf("run-%d", i),
			StartedAt: time.Now(),
			Outcome:   history.OutcomeCompleted,
		})
	}
	env := newTestEnv(t, stubHistory{records: records})

	rec := env.request(t, http.MethodGet, "/api/history/recent?limit=2", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":2`)

	rec = env.request(t, http.MethodGet, "/api/history/recent?limit=junk", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteRun(t *testing.T) {
	env := newTestEnv(t, stubHistory{})
	run := env.createRun(t)

	rec := env.request(t, http.MethodDelete, "/api/runs/"+run.ID, nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/runs/"+run.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestKeepAlive(t *testing.T) {
	env := newTestEnv(t, stubHistory{})
	run := env.createRun(t)

	rec := env.request(t, http.MethodPost, "/api/runs/"+run.ID+"/keepalive", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/runs/gone/keepalive", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStartTwiceConflicts(t *testing.T) {
	env := newTestEnv(t, stubHistory{})
	env.mock.Detection = testutil.BankingDetection()
	run := env.createRun(t)
	require.Equal(t, http.StatusOK, env.addFiles(t, run.ID, "a.csv").Code)

	require.Equal(t, http.StatusAccepted, env.request(t, http.MethodPost, "/api/runs/"+run.ID+"/start", nil, "").Code)
	env.waitForStage(t, run.ID, models.StageColumnsDetected)

	rec := env.request(t, http.MethodPost, "/api/runs/"+run.ID+"/start", nil, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", errCode(t, rec))
}

func TestErrorBodyShape(t *testing.T) {
	env := newTestEnv(t, stubHistory{})
	rec := env.request(t, http.MethodGet, "/api/runs/missing", nil, "")

	var apiErr APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
	assert.True(t, strings.Contains(apiErr.Message, "not found"))
}
