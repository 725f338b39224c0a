package models

// Timeline is an ordered sequence of daily entries, one per calendar day
// present in the data. Days with no events are simply absent, never
// zero-entries. First/last boundary summaries and the peak-day marker are
// optional decorations around the sequence.
type Timeline struct {
	Entries []DailyEntry     `json:"entries"`
	First   *BoundarySummary `json:"first,omitempty"`
	Last    *BoundarySummary `json:"last,omitempty"`
	PeakDay string           `json:"peak_day,omitempty"`
}

// BoundarySummary describes one end of a timeline (earliest or latest day).
type BoundarySummary struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Label string `json:"label,omitempty"`
}

// DailyEntry aggregates the events of one calendar day.
type DailyEntry struct {
	Date    string         `json:"date"` // YYYY-MM-DD
	Counts  map[string]int `json:"counts,omitempty"`
	Details []EventDetail  `json:"details,omitempty"`

	// MultiActor flags days where at least one actor produced more than
	// one event; MultiActors lists exactly which actors did.
	MultiActor  bool     `json:"multi_actor,omitempty"`
	MultiActors []string `json:"multi_actors,omitempty"`
}

// Total returns the sum of the entry's aggregate counts.
func (e DailyEntry) Total() int {
	total := 0
	for _, n := range e.Counts {
		total += n
	}
	return total
}

// TxStatus is the pass/fail outcome of a transaction event.
type TxStatus string

const (
	TxPass TxStatus = "pass"
	TxFail TxStatus = "fail"
)

// EventDetail is one individual event (account creation, login, or
// transaction) inside a daily entry. Status fields are populated only on the
// transaction timeline.
type EventDetail struct {
	Actor        string   `json:"actor"`
	Time         string   `json:"time"` // HH:MM:SS
	Status       TxStatus `json:"status,omitempty"`
	StatusReason string   `json:"status_reason,omitempty"`
}
