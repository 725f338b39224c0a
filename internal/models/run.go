package models

import "time"

// Stage represents the pipeline stage of an analysis run.
type Stage string

const (
	StageIdle             Stage = "idle"
	StageUploading        Stage = "uploading"
	StageDomainAnalyzed   Stage = "domain_analyzed"
	StageColumnsDetecting Stage = "columns_detecting"
	StageColumnsDetected  Stage = "columns_detected"
	StageAccountAnalyzing Stage = "account_analyzing"
	StageResultsShown     Stage = "results_shown"
	StageFailed           Stage = "failed"
)

// ViewMarker names the dashboard view a run is currently showing.
// Markers are advisory navigation state: they let the browser's
// back/forward track pipeline progress but are never read back to
// reconstruct a run after a reload.
type ViewMarker string

const (
	ViewUpload    ViewMarker = "upload"
	ViewLoading   ViewMarker = "loading"
	ViewDatabases ViewMarker = "databases"
	ViewColumns   ViewMarker = "columns"
	ViewAnalysis  ViewMarker = "analysis"
	ViewResults   ViewMarker = "results"
)

// FailureKind classifies how a run failed.
type FailureKind string

const (
	// FailureTransport covers HTTP-level failures talking to the analysis service.
	FailureTransport FailureKind = "transport"
	// FailureService covers well-formed responses carrying success:false.
	FailureService FailureKind = "service"
	// FailureDetection covers the fatal missing date/id candidate outcome,
	// which gets a dedicated view rather than the generic error banner.
	FailureDetection FailureKind = "detection"
)

// Run is one analysis walkthrough: created when the dashboard opens a new
// batch, discarded on restart. The remote session id is set on first
// successful upload and never mutated afterwards.
type Run struct {
	ID        string     `json:"id"`
	CreatedAt time.Time  `json:"createdAt"`
	Stage     Stage      `json:"stage"`
	Marker    ViewMarker `json:"marker"`

	SessionID string `json:"sessionId,omitempty"`

	Profiles  []AnalysisProfile `json:"profiles,omitempty"`
	Detection *ColumnDetection  `json:"detection,omitempty"`

	// Columns chosen by the orchestrator after detection.
	OpenColumn string `json:"openColumn,omitempty"`
	IDColumn   string `json:"idColumn,omitempty"`

	Result *AccountAnalysisResult `json:"result,omitempty"`

	Error       string      `json:"error,omitempty"`
	FailureKind FailureKind `json:"failureKind,omitempty"`
}

// NewRun creates a run in the idle stage showing the upload view.
func NewRun(id string) *Run {
	return &Run{
		ID:        id,
		CreatedAt: time.Now(),
		Stage:     StageIdle,
		Marker:    ViewUpload,
	}
}
