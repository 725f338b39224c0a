package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jeevamani007/data-analysis-sub000/internal/collector"
	"github.com/jeevamani007/data-analysis-sub000/internal/history"
	"github.com/jeevamani007/data-analysis-sub000/internal/metrics"
	"github.com/jeevamani007/data-analysis-sub000/internal/models"
	"github.com/jeevamani007/data-analysis-sub000/internal/remote"
	"github.com/jeevamani007/data-analysis-sub000/internal/timeline"
)

// Start validates the pending batch and launches the upload + domain
// analysis stages in the background. The run must be idle.
func (m *Manager) Start(id string) error {
	m.mu.Lock()

	st, ok := m.runs[id]
	if !ok {
		m.mu.Unlock()
		return ErrRunNotFound
	}
	if st.busy {
		m.mu.Unlock()
		return ErrStageBusy
	}
	if st.run.Stage != models.StageIdle {
		m.mu.Unlock()
		return fmt.Errorf("%w: run is %s", ErrInvalidStage, st.run.Stage)
	}
	if st.collector.Len() == 0 {
		m.mu.Unlock()
		return collector.ErrEmptyBatch
	}

	ctx, cancel := context.WithCancel(context.Background())
	st.cancel = cancel
	st.busy = true
	st.startedAt = time.Now()
	st.run.Stage = models.StageUploading
	st.run.Marker = models.ViewLoading
	st.run.Error = ""
	st.run.FailureKind = ""
	gen := st.generation
	files := st.collector.Files()
	m.mu.Unlock()

	go m.runUploadAndAnalyze(ctx, id, gen, files)
	return nil
}

// Continue advances a paused run: from the domain-split view into column
// detection, or from the columns view into account analysis.
func (m *Manager) Continue(id string) error {
	m.mu.Lock()

	st, ok := m.runs[id]
	if !ok {
		m.mu.Unlock()
		return ErrRunNotFound
	}
	if st.busy {
		m.mu.Unlock()
		return ErrStageBusy
	}

	gen := st.generation
	switch st.run.Stage {
	case models.StageDomainAnalyzed:
		ctx, cancel := context.WithCancel(context.Background())
		st.cancel = cancel
		st.busy = true
		st.run.Stage = models.StageColumnsDetecting
		st.run.Marker = models.ViewLoading
		sessionID := st.run.SessionID
		m.mu.Unlock()

		go m.runDetection(ctx, id, gen, sessionID)
		return nil

	case models.StageColumnsDetected:
		ctx, cancel := context.WithCancel(context.Background())
		st.cancel = cancel
		st.busy = true
		st.run.Stage = models.StageAccountAnalyzing
		st.run.Marker = models.ViewAnalysis
		st.run.Error = ""
		st.run.FailureKind = ""
		sessionID := st.run.SessionID
		openCol := st.run.OpenColumn
		idCol := st.run.IDColumn
		m.mu.Unlock()

		go m.runAccountAnalysis(ctx, id, gen, sessionID, openCol, idCol)
		return nil

	default:
		stage := st.run.Stage
		m.mu.Unlock()
		return fmt.Errorf("%w: run is %s", ErrInvalidStage, stage)
	}
}

func (m *Manager) runUploadAndAnalyze(ctx context.Context, id string, gen int, files []models.BatchFile) {
	defer m.recoverStage(id, gen)

	fmt.Printf("[Run %s] Uploading %d file(s)\n", shortID(id), len(files))

	start := time.Now()
	sessionID, err := m.svc.Upload(ctx, files)
	metrics.ObserveStage("upload", time.Since(start), err)
	if err != nil {
		fmt.Printf("[Run %s] Upload failed: %v\n", shortID(id), err)
		m.failRun(id, gen, err)
		return
	}

	m.withRun(id, gen, func(st *runState) {
		st.run.SessionID = sessionID
	})

	fmt.Printf("[Run %s] Session %s acquired, running domain analysis\n", shortID(id), sessionID)

	start = time.Now()
	profiles, err := m.svc.Analyze(ctx, sessionID)
	metrics.ObserveStage("analyze", time.Since(start), err)
	if err != nil {
		fmt.Printf("[Run %s] Domain analysis failed: %v\n", shortID(id), err)
		m.failRun(id, gen, err)
		return
	}

	if len(profiles) > 0 {
		m.withRun(id, gen, func(st *runState) {
			st.run.Profiles = profiles
			st.run.Stage = models.StageDomainAnalyzed
			st.run.Marker = models.ViewDatabases
			st.busy = false
			st.cancel = nil
		})
		fmt.Printf("[Run %s] Domain analysis returned %d profile(s)\n", shortID(id), len(profiles))
		return
	}

	// No profiles is not an error: skip the domain-split view and go
	// straight into column detection.
	fmt.Printf("[Run %s] No profiles returned, skipping domain view\n", shortID(id))
	m.withRun(id, gen, func(st *runState) {
		st.run.Stage = models.StageColumnsDetecting
		st.run.Marker = models.ViewLoading
	})
	m.detectColumns(ctx, id, gen, sessionID)
}

func (m *Manager) runDetection(ctx context.Context, id string, gen int, sessionID string) {
	defer m.recoverStage(id, gen)
	m.detectColumns(ctx, id, gen, sessionID)
}

func (m *Manager) detectColumns(ctx context.Context, id string, gen int, sessionID string) {
	start := time.Now()
	det, err := m.svc.DetectColumns(ctx, sessionID)
	metrics.ObserveStage("detect_columns", time.Since(start), err)
	if err != nil {
		fmt.Printf("[Run %s] Column detection failed: %v\n", shortID(id), err)
		m.failRun(id, gen, err)
		return
	}

	openCol, idCol, err := ChooseColumns(det)
	if err != nil {
		// Fatal detection outcome: dedicated view, not the generic banner.
		fmt.Printf("[Run %s] Detection fatal: %v\n", shortID(id), err)
		m.withRun(id, gen, func(st *runState) {
			st.run.Detection = det
			st.run.Stage = models.StageFailed
			st.run.Marker = models.ViewColumns
			st.run.Error = err.Error()
			st.run.FailureKind = models.FailureDetection
			st.busy = false
			st.cancel = nil
			m.recordHistory(st, history.OutcomeFailed)
		})
		return
	}

	m.withRun(id, gen, func(st *runState) {
		st.run.Detection = det
		st.run.OpenColumn = openCol
		st.run.IDColumn = idCol
		st.run.Stage = models.StageColumnsDetected
		st.run.Marker = models.ViewColumns
		st.busy = false
		st.cancel = nil
	})
	fmt.Printf("[Run %s] Columns chosen: open=%s id=%s\n", shortID(id), openCol, idCol)
}

func (m *Manager) runAccountAnalysis(ctx context.Context, id string, gen int, sessionID, openCol, idCol string) {
	defer m.recoverStage(id, gen)

	start := time.Now()
	result, err := m.svc.AnalyzeAccounts(ctx, sessionID, openCol, idCol)
	metrics.ObserveStage("analyze_accounts", time.Since(start), err)
	if err != nil {
		// The only stage with localized recovery: the run reverts to the
		// columns view instead of a full restart.
		fmt.Printf("[Run %s] Account analysis failed, reverting to columns: %v\n", shortID(id), err)
		m.withRun(id, gen, func(st *runState) {
			st.run.Stage = models.StageColumnsDetected
			st.run.Marker = models.ViewColumns
			st.run.Error = err.Error()
			st.run.FailureKind = classifyFailure(err)
			st.busy = false
			st.cancel = nil
		})
		return
	}

	m.withRun(id, gen, func(st *runState) {
		st.run.Result = result
		st.run.Stage = models.StageResultsShown
		st.run.Marker = models.ViewResults
		st.timelines = timeline.NewSet(result)
		st.busy = false
		st.cancel = nil
		m.recordHistory(st, history.OutcomeCompleted)
	})
	fmt.Printf("[Run %s] Results rendered\n", shortID(id))
}

// failRun marks the run failed: blocking notification, view reset to upload,
// full restart required.
func (m *Manager) failRun(id string, gen int, err error) {
	m.withRun(id, gen, func(st *runState) {
		st.run.Stage = models.StageFailed
		st.run.Marker = models.ViewUpload
		st.run.Error = err.Error()
		st.run.FailureKind = classifyFailure(err)
		st.busy = false
		st.cancel = nil
		m.recordHistory(st, history.OutcomeFailed)
	})
}

// recoverStage keeps a panicking stage goroutine from taking the server
// down. Must be called with the run lock NOT held.
func (m *Manager) recoverStage(id string, gen int) {
	if r := recover(); r != nil {
		fmt.Printf("[Run %s] PANIC recovered in pipeline stage: %v\n", shortID(id), r)
		m.failRun(id, gen, fmt.Errorf("pipeline stage panicked: %v", r))
	}
}

// recordHistory persists a terminal run. Caller holds the manager lock.
func (m *Manager) recordHistory(st *runState, outcome string) {
	if m.hist == nil {
		return
	}
	rec := history.Record{
		RunID:        st.run.ID,
		SessionID:    st.run.SessionID,
		StartedAt:    st.startedAt,
		FileCount:    st.collector.Len(),
		StageReached: st.run.Stage,
		Outcome:      outcome,
		DurationMs:   time.Since(st.startedAt).Milliseconds(),
	}
	if rec.StartedAt.IsZero() {
		rec.StartedAt = st.run.CreatedAt
	}

	// Fire and forget; history must never block or fail the pipeline.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.hist.Record(ctx, rec); err != nil {
			fmt.Printf("[Run %s] Failed to record history: %v\n", shortID(rec.RunID), err)
		}
	}()
}

func classifyFailure(err error) models.FailureKind {
	var serr *remote.ServiceError
	if errors.As(err, &serr) {
		return models.FailureService
	}
	return models.FailureTransport
}
