package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeevamani007/data-analysis-sub000/internal/models"
)

func threeDays() []models.DailyEntry {
	return []models.DailyEntry{
		{
			Date:   "2024-03-01",
			Counts: map[string]int{"accounts": 2},
			Details: []models.EventDetail{
				{Actor: "C001", Time: "03:15:00"},
				{Actor: "C002", Time: "09:30:00"},
			},
		},
		{
			Date:       "2024-03-02",
			Counts:     map[string]int{"accounts": 3},
			MultiActor: true,
			MultiActors: []string{
				"C003",
			},
			Details: []models.EventDetail{
				{Actor: "C003", Time: "13:00:00"},
				{Actor: "C003", Time: "14:45:00"},
				{Actor: "C004", Time: "19:10:00"},
			},
		},
		{
			Date:   "2024-03-05",
			Counts: map[string]int{"accounts": 1},
			Details: []models.EventDetail{
				{Actor: "C005", Time: "22:05:00"},
			},
		},
	}
}

func TestController_ToggleLaw(t *testing.T) {
	c := New(KindOpen, threeDays())

	p := c.Select(1, "day-1")
	require.True(t, p.Rendered)
	assert.Equal(t, "2024-03-02", p.Date)
	sel, ok := c.Selected()
	require.True(t, ok)
	assert.Equal(t, 1, sel)

	// Selecting the same index again collapses back to unselected.
	p = c.Select(1, "day-1")
	assert.True(t, p.Cleared)
	_, ok = c.Selected()
	assert.False(t, ok)

	// The toggle law holds for the sentinels too.
	p = c.Select(First, "boundary-first")
	require.True(t, p.Rendered)
	p = c.Select(First, "boundary-first")
	assert.True(t, p.Cleared)
}

func TestController_ClearSignal(t *testing.T) {
	c := New(KindOpen, threeDays())
	c.Select(2, "day-2")

	p := c.Select(Clear, "")
	assert.True(t, p.Cleared)
	_, ok := c.Selected()
	assert.False(t, ok)
}

func TestController_SentinelResolution(t *testing.T) {
	tests := []struct {
		name     string
		entries  []models.DailyEntry
		index    int
		wantDate string
	}{
		{"first sentinel", threeDays(), First, "2024-03-01"},
		{"last sentinel", threeDays(), Last, "2024-03-05"},
		{"first on length-1", threeDays()[:1], First, "2024-03-01"},
		{"last on length-1", threeDays()[:1], Last, "2024-03-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(KindLogin, tt.entries)
			p := c.Select(tt.index, "n")
			require.True(t, p.Rendered)
			assert.Equal(t, tt.wantDate, p.Date)
		})
	}
}

func TestController_EmptySequence(t *testing.T) {
	c := New(KindLogin, nil)

	p := c.Select(First, "n")
	assert.False(t, p.Rendered, "empty sequence renders nothing")
	assert.False(t, p.Cleared)

	// The selection itself was still recorded, so reselecting toggles off.
	p = c.Select(First, "n")
	assert.True(t, p.Cleared)
}

func TestController_OutOfRangeIndex(t *testing.T) {
	c := New(KindOpen, threeDays())
	p := c.Select(17, "n")
	assert.False(t, p.Rendered)
	assert.False(t, p.Cleared)
}

func TestController_InstanceIndependence(t *testing.T) {
	result := &models.AccountAnalysisResult{
		OpenDateTimeline:   &models.Timeline{Entries: threeDays()},
		DailyLoginAnalysis: &models.Timeline{Entries: threeDays()[:1]},
	}
	set := NewSet(result)

	open, ok := set.Get(KindOpen)
	require.True(t, ok)
	login, ok := set.Get(KindLogin)
	require.True(t, ok)

	open.Select(2, "open-2")
	login.Select(0, "login-0")

	openSel, ok := open.Selected()
	require.True(t, ok)
	assert.Equal(t, 2, openSel)

	loginSel, ok := login.Selected()
	require.True(t, ok)
	assert.Equal(t, 0, loginSel)

	// Collapsing one leaves the other untouched.
	login.Select(0, "login-0")
	_, ok = login.Selected()
	assert.False(t, ok)
	_, ok = open.Selected()
	assert.True(t, ok)
}

func TestController_MultiEventMarkers(t *testing.T) {
	c := New(KindOpen, threeDays())
	p := c.Select(1, "day-1")
	require.True(t, p.Rendered)
	require.Len(t, p.Items, 3)

	assert.True(t, p.Items[0].MultiEvent, "C003 is in the flagged-actor set")
	assert.True(t, p.Items[1].MultiEvent)
	assert.False(t, p.Items[2].MultiEvent, "C004 only appears once")
}

func TestController_TransactionStatus(t *testing.T) {
	entries := []models.DailyEntry{
		{
			Date: "2024-04-01",
			Details: []models.EventDetail{
				{Actor: "C001", Time: "10:00:00", Status: models.TxPass, StatusReason: "settled"},
				{Actor: "C002", Time: "11:30:00", Status: models.TxFail, StatusReason: "insufficient funds"},
				{Actor: "C003", Time: "12:00:00", Status: models.TxPass, StatusReason: "settled"},
			},
		},
	}
	c := New(KindTransaction, entries)

	p := c.Select(0, "tx-0")
	require.True(t, p.Rendered)
	assert.True(t, p.HasStatus)
	assert.Equal(t, 2, p.PassCount)
	assert.Equal(t, 1, p.FailCount)
	assert.Equal(t, "2024-04-01 — 2 passed, 1 failed", p.Header())

	assert.False(t, p.Items[0].Failed)
	assert.True(t, p.Items[1].Failed)
	assert.Equal(t, "insufficient funds", p.Items[1].StatusReason)

	// Non-transaction kinds never carry status, even with status fields set.
	open := New(KindOpen, entries)
	po := open.Select(0, "n")
	assert.False(t, po.HasStatus)
	assert.Zero(t, po.PassCount)
}

func TestDayPart(t *testing.T) {
	tests := []struct {
		time string
		want string
	}{
		{"00:00:00", "Night"},
		{"05:59:59", "Night"},
		{"06:00:00", "Morning"},
		{"11:59:00", "Morning"},
		{"12:00:00", "Afternoon"},
		{"17:30:00", "Afternoon"},
		{"18:00:00", "Evening"},
		{"23:59:59", "Evening"},
		{"garbage", "Unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DayPart(tt.time), tt.time)
	}
}

func TestSet_ResetOnNewResult(t *testing.T) {
	result := &models.AccountAnalysisResult{
		OpenDateTimeline: &models.Timeline{Entries: threeDays()},
	}
	set := NewSet(result)
	open, _ := set.Get(KindOpen)
	open.Select(0, "n")

	// Rendering a fresh result builds a fresh set: everything unselected.
	fresh := NewSet(result)
	c, _ := fresh.Get(KindOpen)
	_, ok := c.Selected()
	assert.False(t, ok)

	// ResetAll collapses in place as well.
	set.ResetAll()
	_, ok = open.Selected()
	assert.False(t, ok)
}
