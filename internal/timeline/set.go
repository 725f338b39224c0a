package timeline

import "github.com/jeevamani007/data-analysis-sub000/internal/models"

// Set holds the three independent controllers of one analysis result. A new
// Set is built whenever a result is rendered, which re-initializes every
// selection to unselected.
type Set struct {
	controllers map[Kind]*Controller
}

// NewSet binds one controller per timeline kind from the result. Absent
// timelines get empty sequences, so selection bookkeeping still works and
// simply renders nothing.
func NewSet(result *models.AccountAnalysisResult) *Set {
	s := &Set{controllers: make(map[Kind]*Controller, 3)}
	s.controllers[KindOpen] = New(KindOpen, timelineEntries(result.OpenDateTimeline))
	s.controllers[KindLogin] = New(KindLogin, timelineEntries(result.DailyLoginAnalysis))
	s.controllers[KindTransaction] = New(KindTransaction, timelineEntries(result.TransactionTimeline))
	return s
}

// Get returns the controller for a kind.
func (s *Set) Get(kind Kind) (*Controller, bool) {
	c, ok := s.controllers[kind]
	return c, ok
}

// ResetAll collapses every controller's selection.
func (s *Set) ResetAll() {
	for _, c := range s.controllers {
		c.Reset()
	}
}

func timelineEntries(t *models.Timeline) []models.DailyEntry {
	if t == nil {
		return nil
	}
	return t.Entries
}
