// Package view renders the dashboard's stage views as server-side HTML.
// Templates live as string constants; all conditional rendering is template
// logic driven by the run's state, never string concatenation.
package view

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jeevamani007/data-analysis-sub000/internal/history"
	"github.com/jeevamani007/data-analysis-sub000/internal/models"
	"github.com/jeevamani007/data-analysis-sub000/internal/segment"
	"github.com/jeevamani007/data-analysis-sub000/internal/timeline"
)

var funcMap = template.FuncMap{
	"fmtBytes": func(n int64) string {
		switch {
		case n >= 1<<20:
			return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
		case n >= 1<<10:
			return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
		}
		return fmt.Sprintf("%d B", n)
	},
	"fmtTime": func(t time.Time) string {
		if t.IsZero() {
			return "—"
		}
		return t.Local().Format("Jan 2 15:04:05")
	},
	"fmtDurationMs": func(ms int64) string {
		if ms < 1000 {
			return fmt.Sprintf("%dms", ms)
		}
		return fmt.Sprintf("%.1fs", float64(ms)/1000)
	},
	"fmtPct": func(v float64) string {
		return fmt.Sprintf("%.0f%%", v)
	},
	"groupColor": segment.GroupColor,
	"cell": func(row models.AccountRow, col string) string {
		v, ok := row[col]
		if !ok || v == nil {
			return ""
		}
		return fmt.Sprintf("%v", v)
	},
	"upper": strings.ToUpper,
	"isDetection": func(k models.FailureKind) bool {
		return k == models.FailureDetection
	},
	"filters": func() []string {
		return []string{segment.FilterAll, segment.FilterNew, segment.FilterActive, segment.FilterTrusted}
	},
	"tableData": func(rows []models.AccountRow, columns []string, filter string) TableData {
		return TableData{Rows: rows, Columns: columns, Filter: filter}
	},
	"strip": func(kind string, tl *models.Timeline) stripData {
		headings := map[string]string{
			"open":        "Account opening timeline",
			"login":       "Daily login timeline",
			"transaction": "Transaction timeline",
		}
		return stripData{Kind: kind, Heading: headings[kind], Timeline: tl}
	},
	"chartJSON": func(p models.AnalysisProfile) template.JS {
		data, err := json.Marshal(profileChart(p))
		if err != nil {
			return template.JS("null")
		}
		return template.JS(data)
	},
}

// domainColors is the fixed palette for the domain-split doughnut.
var domainColors = []string{"#1565c0", "#2e7d32", "#ef6c00", "#6a1b9a", "#616161"}

// profileChart returns the profile's chart payload, deriving one from the
// domain split when the service did not send a chart-ready form.
func profileChart(p models.AnalysisProfile) models.ChartData {
	if p.Chart != nil {
		return *p.Chart
	}
	chart := models.ChartData{}
	// Deterministic label order for the derived chart.
	labels := make([]string, 0, len(p.DomainSplit))
	for label := range p.DomainSplit {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for i, label := range labels {
		chart.Labels = append(chart.Labels, label)
		chart.Values = append(chart.Values, p.DomainSplit[label])
		chart.Colors = append(chart.Colors, domainColors[i%len(domainColors)])
	}
	return chart
}

// Renderer holds the parsed stage templates.
type Renderer struct {
	pages    map[models.ViewMarker]*template.Template
	partials *template.Template
}

// NewRenderer parses all templates. Parse failures are programmer errors
// and panic at startup.
func NewRenderer() *Renderer {
	pageSources := map[models.ViewMarker]string{
		models.ViewUpload:    tmplUpload,
		models.ViewLoading:   tmplLoading,
		models.ViewDatabases: tmplDatabases,
		models.ViewColumns:   tmplColumns,
		models.ViewAnalysis:  tmplAnalysis,
		models.ViewResults:   tmplResults,
	}

	pages := make(map[models.ViewMarker]*template.Template, len(pageSources))
	for marker, src := range pageSources {
		t := template.Must(template.New("layout").Funcs(funcMap).Parse(tmplLayout))
		template.Must(t.New("content").Parse(src))
		template.Must(t.Parse(tmplTimelineStrip))
		template.Must(t.New("accountTable").Parse(tmplAccountTable))
		pages[marker] = t
	}

	partials := template.Must(template.New("timelinePanel").Funcs(funcMap).Parse(tmplTimelinePanel))
	template.Must(partials.New("accountTable").Parse(tmplAccountTable))

	return &Renderer{pages: pages, partials: partials}
}

// Page is the data every stage view receives.
type Page struct {
	Title  string
	Run    *models.Run
	Files  []models.BatchFile
	Recent []history.Record

	// Results view extras.
	TableRows    []models.AccountRow
	TableColumns []string
	TableFilter  string
}

// RenderPage writes the view for the given marker.
func (r *Renderer) RenderPage(w io.Writer, marker models.ViewMarker, page Page) error {
	t, ok := r.pages[marker]
	if !ok {
		return fmt.Errorf("no view registered for marker %q", marker)
	}
	if page.Title == "" {
		page.Title = "Account Analysis"
	}
	return t.ExecuteTemplate(w, "layout", page)
}

// RenderTimelinePanel writes the drill-down detail partial (or the
// placeholder when the panel is cleared or unresolved).
func (r *Renderer) RenderTimelinePanel(w io.Writer, panel timeline.Panel) error {
	return r.partials.ExecuteTemplate(w, "timelinePanel", panel)
}

// TableData is the segmented account table partial's payload.
type TableData struct {
	Rows    []models.AccountRow
	Columns []string
	Filter  string
}

// stripData is the payload of one timeline strip in the results view.
type stripData struct {
	Kind     string
	Heading  string
	Timeline *models.Timeline
}

// RenderAccountTable writes the segmented account table partial.
func (r *Renderer) RenderAccountTable(w io.Writer, data TableData) error {
	return r.partials.ExecuteTemplate(w, "accountTable", data)
}
