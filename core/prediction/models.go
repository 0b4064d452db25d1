package prediction

import (
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/alama/core"
)

// History is an immutable record of one prediction.
// StudentName is a snapshot taken at prediction time.
type History struct {
	ID          int       `json:"id" db:"id"`
	StudentID   int       `json:"student_id" db:"student_id"`
	StudentName string    `json:"student_name" db:"student_name"`
	Grade       string    `json:"grade" db:"grade"`
	Score       float64   `json:"score" db:"score"`
	Confidence  float64   `json:"confidence" db:"confidence"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"` // UTC
}

type Result struct {
	StudentName string  `json:"student_name"`
	Grade       string  `json:"grade"`
	Score       float64 `json:"score"`
	Confidence  float64 `json:"confidence"`
}

// QueryFilter narrows history queries. Zero fields do not filter.
type QueryFilter struct {
	Grade     string
	CreatedBy string    // matched against the live Student
	Start     time.Time // inclusive
	End       time.Time // inclusive
}

// HistoryQuery holds the raw history filters sent by clients.
type HistoryQuery struct {
	Grade string `query:"grade"`
	Start string `query:"start"`
	End   string `query:"end"`
}

const dateLayout = "2006-01-02"

// Filter parses the query; date-only bounds are read in loc and a date-only End covers that whole day.
func (q HistoryQuery) Filter(loc *time.Location) (QueryFilter, error) {
	var filter QueryFilter
	var fldErrs []core.FieldError

	// exact match: an unknown grade simply matches nothing
	if grade := core.CleanString(q.Grade); grade != GradeAll {
		filter.Grade = grade
	}

	var err error
	if filter.Start, _, err = parseBound(q.Start, loc); err != nil {
		fldErrs = append(fldErrs, core.FieldError{Field: "start", Error: err.Error()})
	}
	var dateOnly bool
	if filter.End, dateOnly, err = parseBound(q.End, loc); err != nil {
		fldErrs = append(fldErrs, core.FieldError{Field: "end", Error: err.Error()})
	} else if dateOnly {
		// postgres keeps microseconds
		filter.End = filter.End.AddDate(0, 0, 1).Add(-time.Microsecond)
	}

	if len(fldErrs) > 0 {
		return QueryFilter{}, core.NewValidationError(nil, fldErrs...)
	}
	return filter, nil
}

func parseBound(s string, loc *time.Location) (t time.Time, dateOnly bool, err error) {
	s = core.CleanString(s)
	if s == "" {
		return time.Time{}, false, nil
	}
	if t, err = time.ParseInLocation(dateLayout, s, loc); err == nil {
		return t, true, nil
	}
	if t, err = time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}
	return time.Time{}, false, errors.New("must be a date (YYYY-MM-DD) or an RFC3339 timestamp")
}
