// Package segment partitions the terminal account list into named buckets
// for tabular display.
package segment

import (
	"sort"
	"strings"

	"github.com/jeevamani007/data-analysis-sub000/internal/models"
)

// Filter names for Rows. FilterAll concatenates all three buckets.
const (
	FilterAll     = "ALL"
	FilterNew     = "NEW"
	FilterActive  = "ACTIVE"
	FilterTrusted = "TRUSTED"
)

// Bucket-keyed colors for the group tag, meaning, and recommended action.
// Unrecognized tags fall back to the neutral default.
var groupColors = map[string]string{
	"NEW":    "#2e7d32",
	"ACTIVE": "#1565c0",
	"OLD":    "#6a1b9a",
}

const defaultGroupColor = "#616161"

// internalFields are presentation-only row keys excluded from the
// dynamically derived display columns.
var internalFields = map[string]bool{
	models.RowKeyGroup:             true,
	models.RowKeyMeaning:           true,
	models.RowKeyRecommendedAction: true,
	models.RowKeyAgeDays:           true,
}

// Rows returns the rows to display for the requested filter, sorted
// ascending by the precomputed age-in-days field.
func Rows(a models.AgeAnalysis, filter string) []models.AccountRow {
	var rows []models.AccountRow
	switch strings.ToUpper(filter) {
	case FilterAll, "":
		rows = make([]models.AccountRow, 0, len(a.New)+len(a.Active)+len(a.Trusted))
		rows = append(rows, a.New...)
		rows = append(rows, a.Active...)
		rows = append(rows, a.Trusted...)
	case FilterNew:
		rows = append(rows, a.New...)
	case FilterActive:
		rows = append(rows, a.Active...)
	case FilterTrusted:
		rows = append(rows, a.Trusted...)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].AgeDays() < rows[j].AgeDays()
	})
	return rows
}

// DisplayColumns derives the column set from the first row's fields,
// excluding internal presentation fields. Columns come back sorted for a
// deterministic header order.
func DisplayColumns(rows []models.AccountRow) []string {
	if len(rows) == 0 {
		return nil
	}
	cols := make([]string, 0, len(rows[0]))
	for k := range rows[0] {
		if internalFields[k] {
			continue
		}
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// GroupColor maps a bucket tag to its display color.
func GroupColor(tag string) string {
	if c, ok := groupColors[strings.ToUpper(tag)]; ok {
		return c
	}
	return defaultGroupColor
}
