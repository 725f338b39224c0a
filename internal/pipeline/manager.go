// Package pipeline drives analysis runs through the ordered remote stages
// (upload, domain analysis, column detection, account analysis) and holds
// their cross-stage state.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeevamani007/data-analysis-sub000/internal/collector"
	"github.com/jeevamani007/data-analysis-sub000/internal/history"
	"github.com/jeevamani007/data-analysis-sub000/internal/metrics"
	"github.com/jeevamani007/data-analysis-sub000/internal/models"
	"github.com/jeevamani007/data-analysis-sub000/internal/timeline"
)

// RunKeepAliveWindow is how long actively-viewed runs survive cleanup.
const RunKeepAliveWindow = 5 * time.Minute

// Manager errors surfaced to the API layer.
var (
	ErrRunNotFound  = errors.New("run not found")
	ErrStageBusy    = errors.New("a pipeline stage is already in flight for this run")
	ErrInvalidStage = errors.New("operation not valid for the run's current stage")
)

// AnalysisService is the orchestrator's view of the remote analysis client.
type AnalysisService interface {
	Upload(ctx context.Context, files []models.BatchFile) (string, error)
	Analyze(ctx context.Context, sessionID string) ([]models.AnalysisProfile, error)
	DetectColumns(ctx context.Context, sessionID string) (*models.ColumnDetection, error)
	AnalyzeAccounts(ctx context.Context, sessionID, dateColumn, idColumn string) (*models.AccountAnalysisResult, error)
}

// Historian records finished runs. May be nil when history is disabled.
type Historian interface {
	Record(ctx context.Context, rec history.Record) error
}

// runState is the mutable per-run state; everything is mutated under the
// manager's lock, never by the stage goroutine directly.
type runState struct {
	run       *models.Run
	collector *collector.Collector
	timelines *timeline.Set

	lastAccessed time.Time
	startedAt    time.Time

	// generation increments on every restart; a stage goroutine carries
	// the generation it was launched with and its writes are discarded
	// once they no longer match.
	generation int
	cancel     context.CancelFunc
	busy       bool
}

// Manager owns all active runs.
type Manager struct {
	mu      sync.RWMutex
	runs    map[string]*runState
	svc     AnalysisService
	hist    Historian
	maxRuns int
}

// NewManager creates a run manager backed by the given analysis service.
func NewManager(svc AnalysisService, hist Historian, maxRuns int) *Manager {
	if maxRuns <= 0 {
		maxRuns = 25
	}
	return &Manager{
		runs:    make(map[string]*runState),
		svc:     svc,
		hist:    hist,
		maxRuns: maxRuns,
	}
}

// CreateRun registers a new idle run and returns it.
func (m *Manager) CreateRun() *models.Run {
	m.cleanupIfAtCapacity()

	id := uuid.New().String()
	run := models.NewRun(id)

	m.mu.Lock()
	m.runs[id] = &runState{
		run:          run,
		collector:    collector.New(),
		lastAccessed: time.Now(),
	}
	metrics.SetActiveRuns(len(m.runs))
	m.mu.Unlock()

	snapshot := *run
	return &snapshot
}

// GetRun returns a snapshot of the run.
func (m *Manager) GetRun(id string) (*models.Run, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, ok := m.runs[id]
	if !ok {
		return nil, false
	}
	snapshot := *st.run
	return &snapshot, true
}

// Collector returns the run's pending upload batch.
func (m *Manager) Collector(id string) (*collector.Collector, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, ok := m.runs[id]
	if !ok {
		return nil, false
	}
	return st.collector, true
}

// Timelines returns the run's timeline selection controllers. Present only
// once a result has been rendered.
func (m *Manager) Timelines(id string) (*timeline.Set, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, ok := m.runs[id]
	if !ok || st.timelines == nil {
		return nil, false
	}
	return st.timelines, true
}

// TouchRun refreshes the keep-alive timestamp.
func (m *Manager) TouchRun(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.runs[id]
	if !ok {
		return false
	}
	st.lastAccessed = time.Now()
	return true
}

// Restart cancels any in-flight stage, bumps the generation so stale
// goroutine writes are discarded, and resets the run to idle. State from the
// previous walkthrough is deliberately unrecoverable.
func (m *Manager) Restart(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.runs[id]
	if !ok {
		return ErrRunNotFound
	}

	if st.cancel != nil {
		st.cancel()
		st.cancel = nil
	}
	st.generation++
	st.busy = false
	st.timelines = nil
	st.collector.Clear()
	st.run = models.NewRun(id)
	st.lastAccessed = time.Now()

	fmt.Printf("[Run %s] Restarted (generation %d)\n", shortID(id), st.generation)
	return nil
}

// Delete removes a run entirely.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.runs[id]
	if !ok {
		return
	}
	if st.cancel != nil {
		st.cancel()
	}
	delete(m.runs, id)
	metrics.SetActiveRuns(len(m.runs))
}

// CleanupOldRuns removes terminal runs older than maxAge, keeping runs that
// were accessed within the keep-alive window.
func (m *Manager) CleanupOldRuns(maxAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	keepAliveCutoff := time.Now().Add(-RunKeepAliveWindow)

	for id, st := range m.runs {
		if st.busy {
			continue
		}
		if st.lastAccessed.After(keepAliveCutoff) {
			continue
		}
		if st.lastAccessed.After(cutoff) {
			continue
		}
		if st.cancel != nil {
			st.cancel()
		}
		delete(m.runs, id)
		fmt.Printf("[Run %s] Cleaned up aged run (last accessed %s ago)\n",
			shortID(id), time.Since(st.lastAccessed).Round(time.Second))
	}
	metrics.SetActiveRuns(len(m.runs))
}

// cleanupIfAtCapacity drops terminal runs once the map is full.
func (m *Manager) cleanupIfAtCapacity() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.runs) < m.maxRuns {
		return
	}

	toFree := len(m.runs) - m.maxRuns + 1
	for id, st := range m.runs {
		if toFree == 0 {
			break
		}
		if st.busy {
			continue
		}
		stage := st.run.Stage
		if stage != models.StageResultsShown && stage != models.StageFailed && stage != models.StageIdle {
			continue
		}
		if st.cancel != nil {
			st.cancel()
		}
		delete(m.runs, id)
		toFree--
		fmt.Printf("[Run %s] Evicted to stay under the run cap\n", shortID(id))
	}
	metrics.SetActiveRuns(len(m.runs))
}

// withRun runs fn on the run's state under the lock, provided the run still
// exists and its generation matches. Stage goroutines funnel every state
// write through here, which is what makes a stale response harmless.
func (m *Manager) withRun(id string, generation int, fn func(st *runState)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.runs[id]
	if !ok || st.generation != generation {
		return false
	}
	fn(st)
	return true
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
