package models

// AnalysisProfile describes one detected data group: a domain classification
// split across a fixed label set, a chart-ready representation of that split,
// and free-text explanations. Immutable once received.
type AnalysisProfile struct {
	Name         string             `json:"name"`
	DomainSplit  map[string]float64 `json:"domain_split"` // e.g. {"Banking": 75, "Other": 25}
	Chart        *ChartData         `json:"chart,omitempty"`
	Explanations []string           `json:"explanations,omitempty"`
}

// ChartData is the doughnut-chart payload for a domain split.
type ChartData struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Colors []string  `json:"colors,omitempty"`
}

// ColumnCandidate is a detected column with its owning table and a
// confidence score.
type ColumnCandidate struct {
	Column     string  `json:"column"`
	Table      string  `json:"table"`
	Confidence float64 `json:"confidence"`
}

// IDCandidate is a detected identifier column.
type IDCandidate struct {
	Column string `json:"column"`
}

// ColumnDetection holds the three disjoint candidate lists returned by the
// detection endpoint.
type ColumnDetection struct {
	DateCandidates  []ColumnCandidate `json:"date_candidates"`
	LoginCandidates []ColumnCandidate `json:"login_candidates"`
	IDCandidates    []IDCandidate     `json:"id_candidates"`
}

// AccountRow is one account in an age bucket. The display column set is
// derived dynamically from whatever fields the analysis service returns, so
// rows stay schemaless. Well-known presentation keys are defined below.
type AccountRow map[string]interface{}

// Internal/presentation-only keys on an AccountRow, excluded from the
// dynamically derived display columns.
const (
	RowKeyGroup             = "group"
	RowKeyMeaning           = "meaning"
	RowKeyRecommendedAction = "recommended_action"
	RowKeyAgeDays           = "age_days"
)

// Group returns the row's grouping tag, or "" when absent.
func (r AccountRow) Group() string {
	s, _ := r[RowKeyGroup].(string)
	return s
}

// AgeDays returns the row's precomputed age in days. JSON numbers decode as
// float64; integer values stored directly are handled too.
func (r AccountRow) AgeDays() float64 {
	switch v := r[RowKeyAgeDays].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// AgeAnalysis holds the three age buckets plus their counts.
type AgeAnalysis struct {
	New     []AccountRow   `json:"new"`
	Active  []AccountRow   `json:"active"`
	Trusted []AccountRow   `json:"trusted"`
	Counts  map[string]int `json:"counts,omitempty"`
}

// InactiveSummary summarizes customers without recent activity.
type InactiveSummary struct {
	Count     int      `json:"count"`
	Customers []string `json:"customers,omitempty"`
	Narrative string   `json:"narrative,omitempty"`
}

// MultiAccountHolder is a customer holding more than one account.
type MultiAccountHolder struct {
	CustomerID   string   `json:"customer_id"`
	AccountCount int      `json:"account_count"`
	Accounts     []string `json:"accounts,omitempty"`
}

// LoginMetrics carries login-efficiency aggregates. Present only when a
// login-timestamp column was detected.
type LoginMetrics struct {
	TotalLogins     int     `json:"total_logins"`
	ActiveUsers     int     `json:"active_users"`
	AvgPerUser      float64 `json:"avg_per_user"`
	EfficiencyScore float64 `json:"efficiency_score,omitempty"`
	Narrative       string  `json:"narrative,omitempty"`
}

// SameDaySummary summarizes customers opening multiple accounts on the same
// calendar day.
type SameDaySummary struct {
	Count     int      `json:"count"`
	Customers []string `json:"customers,omitempty"`
	Narrative string   `json:"narrative,omitempty"`
}

// AccountAnalysisResult is the terminal pipeline payload.
type AccountAnalysisResult struct {
	AgeAnalysis         AgeAnalysis          `json:"age_analysis"`
	InactiveCustomers   *InactiveSummary     `json:"inactive_customers,omitempty"`
	MultiAccountHolders []MultiAccountHolder `json:"multi_account_holders,omitempty"`
	LoginMetrics        *LoginMetrics        `json:"login_metrics,omitempty"`
	SameDayAccounts     *SameDaySummary      `json:"same_day_accounts,omitempty"`
	OpenDateTimeline    *Timeline            `json:"open_date_timeline,omitempty"`
	DailyLoginAnalysis  *Timeline            `json:"daily_login_analysis,omitempty"`
	TransactionTimeline *Timeline            `json:"transaction_timeline,omitempty"`
}
