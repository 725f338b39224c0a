package pipeline

import (
	"errors"

	"github.com/jeevamani007/data-analysis-sub000/internal/models"
)

// Fatal detection outcomes. These are user-visible and distinct from
// transport failures: the columns view renders a dedicated message.
var (
	ErrNoDateColumn = errors.New("no date column found in the uploaded data")
	ErrNoIDColumn   = errors.New("no identifier column found in the uploaded data")
)

// ChooseColumns picks the open-date column and the identifier column from
// the detection result. The open column is the first date candidate whose
// name is not also a login candidate, so a login timestamp is never mistaken
// for an open date; if every date candidate overlaps with the login set, the
// first date candidate is chosen anyway. The identifier is the first id
// candidate. Missing either candidate list entirely is fatal.
func ChooseColumns(det *models.ColumnDetection) (openColumn, idColumn string, err error) {
	if det == nil || len(det.DateCandidates) == 0 {
		return "", "", ErrNoDateColumn
	}
	if len(det.IDCandidates) == 0 {
		return "", "", ErrNoIDColumn
	}

	loginNames := make(map[string]bool, len(det.LoginCandidates))
	for _, c := range det.LoginCandidates {
		loginNames[c.Column] = true
	}

	openColumn = det.DateCandidates[0].Column
	for _, c := range det.DateCandidates {
		if !loginNames[c.Column] {
			openColumn = c.Column
			break
		}
	}

	return openColumn, det.IDCandidates[0].Column, nil
}
