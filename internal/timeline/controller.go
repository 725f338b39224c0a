// Package timeline implements the drill-down selection controller for the
// daily timelines (account-open, login, transaction). Each controller tracks
// which day is currently expanded; the three kinds never share state.
package timeline

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jeevamani007/data-analysis-sub000/internal/models"
)

// Kind names one of the three timeline instances.
type Kind string

const (
	KindOpen        Kind = "open"
	KindLogin       Kind = "login"
	KindTransaction Kind = "transaction"
)

// Reserved selection indices. First and Last address the boundary nodes,
// which are not part of the entry sequence itself; Clear collapses the
// current selection.
const (
	First = -1
	Last  = -2
	Clear = -3
)

// Controller tracks the selected day of one timeline instance.
type Controller struct {
	kind     Kind
	entries  []models.DailyEntry
	selected int // Clear when unselected
	anchor   string
}

// New creates an unselected controller bound to its entry sequence.
func New(kind Kind, entries []models.DailyEntry) *Controller {
	return &Controller{
		kind:     kind,
		entries:  entries,
		selected: Clear,
	}
}

// Kind returns the controller's timeline kind.
func (c *Controller) Kind() Kind { return c.kind }

// Entries returns the bound entry sequence.
func (c *Controller) Entries() []models.DailyEntry { return c.entries }

// Selected returns the current selection index, false when unselected.
func (c *Controller) Selected() (int, bool) {
	if c.selected == Clear {
		return 0, false
	}
	return c.selected, true
}

// Reset returns the controller to the unselected state.
func (c *Controller) Reset() {
	c.selected = Clear
	c.anchor = ""
}

// Select applies the toggle-to-collapse selection rule and returns the panel
// to render:
//   - selecting the current index again, or passing Clear, collapses back to
//     the placeholder;
//   - otherwise the selection moves to index, the visual marker moves to
//     anchor, and the resolved entry's detail panel is rendered. First/Last
//     resolve to the boundary entries; anything unresolvable renders nothing
//     beyond the marker bookkeeping.
func (c *Controller) Select(index int, anchor string) Panel {
	if index == Clear || index == c.selected {
		c.Reset()
		return Panel{Kind: c.kind, Cleared: true}
	}

	c.selected = index
	c.anchor = anchor

	entry, ok := c.resolve(index)
	if !ok {
		return Panel{Kind: c.kind, Anchor: anchor}
	}
	return c.buildPanel(entry, anchor)
}

// resolve maps a selection index onto the entry sequence.
func (c *Controller) resolve(index int) (models.DailyEntry, bool) {
	if len(c.entries) == 0 {
		return models.DailyEntry{}, false
	}
	switch index {
	case First:
		return c.entries[0], true
	case Last:
		return c.entries[len(c.entries)-1], true
	}
	if index < 0 || index >= len(c.entries) {
		return models.DailyEntry{}, false
	}
	return c.entries[index], true
}

func (c *Controller) buildPanel(entry models.DailyEntry, anchor string) Panel {
	p := Panel{
		Kind:      c.kind,
		Anchor:    anchor,
		Rendered:  true,
		Date:      entry.Date,
		Counts:    entry.Counts,
		HasStatus: c.kind == KindTransaction,
	}

	flagged := make(map[string]bool, len(entry.MultiActors))
	for _, a := range entry.MultiActors {
		flagged[a] = true
	}

	for _, d := range entry.Details {
		item := Item{
			Actor:      d.Actor,
			TimeLabel:  d.Time,
			DayPart:    DayPart(d.Time),
			MultiEvent: entry.MultiActor && flagged[d.Actor],
		}
		if p.HasStatus {
			item.HasStatus = true
			item.Failed = d.Status == models.TxFail
			item.StatusReason = d.StatusReason
			if item.Failed {
				p.FailCount++
			} else {
				p.PassCount++
			}
		}
		p.Items = append(p.Items, item)
	}
	return p
}

// Panel is the render model for the detail surface: either the collapsed
// placeholder or the expanded day.
type Panel struct {
	Kind    Kind   `json:"kind"`
	Cleared bool   `json:"cleared"`          // placeholder shown, detail hidden
	Anchor  string `json:"anchor,omitempty"` // element carrying the selected marker

	// Rendered is false when the selection was recorded but nothing could
	// be resolved (empty sequence or out-of-range index).
	Rendered bool `json:"rendered"`

	Date   string         `json:"date,omitempty"`
	Counts map[string]int `json:"counts,omitempty"`
	Items  []Item         `json:"items,omitempty"`

	// Transaction timeline only: the header's separate pass/fail counts.
	HasStatus bool `json:"hasStatus,omitempty"`
	PassCount int  `json:"passCount,omitempty"`
	FailCount int  `json:"failCount,omitempty"`
}

// Header renders the panel heading, including pass/fail counts for the
// transaction timeline.
func (p Panel) Header() string {
	if p.HasStatus {
		return fmt.Sprintf("%s — %d passed, %d failed", p.Date, p.PassCount, p.FailCount)
	}
	return fmt.Sprintf("%s — %d events", p.Date, len(p.Items))
}

// Item is one detail-list row of the expanded day.
type Item struct {
	Actor      string `json:"actor"`
	TimeLabel  string `json:"time"`
	DayPart    string `json:"dayPart"`
	MultiEvent bool   `json:"multiEvent"`

	HasStatus    bool   `json:"hasStatus,omitempty"`
	Failed       bool   `json:"failed,omitempty"`
	StatusReason string `json:"statusReason,omitempty"`
}

// DayPart buckets an HH:MM:SS time into one of four fixed labels.
func DayPart(hhmmss string) string {
	hourStr, _, _ := strings.Cut(hhmmss, ":")
	hour, err := strconv.Atoi(strings.TrimSpace(hourStr))
	if err != nil || hour < 0 || hour > 23 {
		return "Unknown"
	}
	switch {
	case hour < 6:
		return "Night"
	case hour < 12:
		return "Morning"
	case hour < 18:
		return "Afternoon"
	default:
		return "Evening"
	}
}
