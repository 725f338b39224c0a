// Package testutil provides test doubles for the analysis service.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/jeevamani007/data-analysis-sub000/internal/models"
)

// MockAnalysisService is an httptest-backed stand-in for the external
// analysis service. Each endpoint's response is programmable; every received
// call is recorded for assertions.
type MockAnalysisService struct {
	mu sync.Mutex

	Server *httptest.Server

	// Programmable behavior per endpoint.
	SessionID        string
	UploadStatus     int    // non-zero forces an HTTP status on /upload
	UploadMessage    string // overrides the default acknowledgment message
	UploadFail       bool   // success:false on /upload
	AnalyzeStatus    int
	AnalyzeFail      bool
	AnalyzeError     string
	Profiles         []models.AnalysisProfile
	DetectStatus     int
	DetectFail       bool
	Detection        models.ColumnDetection
	AccountsStatus   int
	AccountsFail     bool
	AccountsError    string
	AccountsResult   models.AccountAnalysisResult
	calls            []string
	lastDateColumn   string
	lastIDColumn     string
	uploadFileNames  []string
}

// NewMockAnalysisService starts the mock with benign defaults.
func NewMockAnalysisService() *MockAnalysisService {
	m := &MockAnalysisService{
		SessionID: "sess-1234",
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/upload", m.handleUpload)
	mux.HandleFunc("/analyze/", m.handleAnalyze)
	mux.HandleFunc("/detect-date-columns/", m.handleDetect)
	mux.HandleFunc("/analyze-accounts/", m.handleAccounts)
	m.Server = httptest.NewServer(mux)
	return m
}

// URL returns the mock's base URL.
func (m *MockAnalysisService) URL() string { return m.Server.URL }

// Close shuts the mock down.
func (m *MockAnalysisService) Close() { m.Server.Close() }

// Calls returns the endpoint names hit, in order.
func (m *MockAnalysisService) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// CalledAccounts reports whether the account-analysis endpoint was ever hit.
func (m *MockAnalysisService) CalledAccounts() bool {
	for _, c := range m.Calls() {
		if c == "analyze-accounts" {
			return true
		}
	}
	return false
}

// LastColumns returns the date/id column params of the last account call.
func (m *MockAnalysisService) LastColumns() (dateColumn, idColumn string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastDateColumn, m.lastIDColumn
}

// UploadedFiles returns the file names of the last upload call.
func (m *MockAnalysisService) UploadedFiles() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.uploadFileNames))
	copy(out, m.uploadFileNames)
	return out
}

func (m *MockAnalysisService) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *MockAnalysisService) handleUpload(w http.ResponseWriter, r *http.Request) {
	m.record("upload")

	if err := r.ParseMultipartForm(32 << 20); err == nil && r.MultipartForm != nil {
		m.mu.Lock()
		m.uploadFileNames = nil
		for _, fh := range r.MultipartForm.File["files"] {
			m.uploadFileNames = append(m.uploadFileNames, fh.Filename)
		}
		m.mu.Unlock()
	}

	if m.UploadStatus != 0 {
		w.WriteHeader(m.UploadStatus)
		return
	}
	if m.UploadFail {
		writeJSON(w, map[string]interface{}{"success": false, "error": "upload rejected"})
		return
	}
	message := m.UploadMessage
	if message == "" {
		message = fmt.Sprintf("Files stored. SESSION_ID:%s", m.SessionID)
	}
	writeJSON(w, map[string]interface{}{"success": true, "message": message})
}

func (m *MockAnalysisService) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	m.record("analyze")
	if m.AnalyzeStatus != 0 {
		w.WriteHeader(m.AnalyzeStatus)
		return
	}
	if m.AnalyzeFail {
		writeJSON(w, map[string]interface{}{"success": false, "error": m.AnalyzeError})
		return
	}
	profiles := m.Profiles
	if profiles == nil {
		profiles = []models.AnalysisProfile{}
	}
	writeJSON(w, map[string]interface{}{"success": true, "profiles": profiles})
}

func (m *MockAnalysisService) handleDetect(w http.ResponseWriter, r *http.Request) {
	m.record("detect-date-columns")
	if m.DetectStatus != 0 {
		w.WriteHeader(m.DetectStatus)
		return
	}
	if m.DetectFail {
		writeJSON(w, map[string]interface{}{"success": false, "error": "detection failed"})
		return
	}
	writeJSON(w, map[string]interface{}{
		"success":          true,
		"date_candidates":  emptyIfNil(m.Detection.DateCandidates),
		"login_candidates": emptyIfNil(m.Detection.LoginCandidates),
		"id_candidates":    emptyIDsIfNil(m.Detection.IDCandidates),
	})
}

func (m *MockAnalysisService) handleAccounts(w http.ResponseWriter, r *http.Request) {
	m.record("analyze-accounts")

	m.mu.Lock()
	m.lastDateColumn = r.URL.Query().Get("date_column")
	m.lastIDColumn = r.URL.Query().Get("id_column")
	m.mu.Unlock()

	if m.AccountsStatus != 0 {
		w.WriteHeader(m.AccountsStatus)
		return
	}
	if m.AccountsFail {
		writeJSON(w, map[string]interface{}{"success": false, "error": m.AccountsError})
		return
	}

	// Merge success:true into the configured result payload.
	raw, _ := json.Marshal(m.AccountsResult)
	var payload map[string]interface{}
	json.Unmarshal(raw, &payload)
	payload["success"] = true
	writeJSON(w, payload)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func emptyIfNil(c []models.ColumnCandidate) []models.ColumnCandidate {
	if c == nil {
		return []models.ColumnCandidate{}
	}
	return c
}

func emptyIDsIfNil(c []models.IDCandidate) []models.IDCandidate {
	if c == nil {
		return []models.IDCandidate{}
	}
	return c
}

// BankingDetection is a ready-made detection payload used across tests.
func BankingDetection() models.ColumnDetection {
	return models.ColumnDetection{
		DateCandidates: []models.ColumnCandidate{
			{Column: "open_date", Table: "accounts", Confidence: 90},
		},
		LoginCandidates: []models.ColumnCandidate{},
		IDCandidates: []models.IDCandidate{
			{Column: "customer_id"},
		},
	}
}
