package student

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/alama/core"
)

// FeatureCount is the length of the vector returned by Student.Features.
const FeatureCount = 3

type Student struct {
	ID                   int          `json:"id" db:"id"`
	UserID               string       `json:"user_id" db:"user_id"`
	Name                 string       `json:"name" db:"name"`
	WeeklySelfStudyHours float64      `json:"weekly_self_study_hours" db:"weekly_self_study_hours"`
	AttendancePercentage float64      `json:"attendance_percentage" db:"attendance_percentage"`
	ClassParticipation   float64      `json:"class_participation" db:"class_participation"`
	CreatedBy            string       `json:"created_by" db:"created_by"`
	PredictedGrade       null.String  `json:"predicted_grade" db:"predicted_grade"`
	PredictedScore       null.Float64 `json:"predicted_score" db:"predicted_score"`
	CreatedAt            time.Time    `json:"created_at" db:"created_at"` // UTC
}

// Features returns the scoring input, in this order:
// weekly self-study hours, attendance percentage, class participation.
func (s Student) Features() []float64 {
	return []float64{s.WeeklySelfStudyHours, s.AttendancePercentage, s.ClassParticipation}
}

// NewStudent contains information needed to create a new Student.
// Metrics accept JSON numbers as well as numeric strings.
type NewStudent struct {
	UserID        string      `json:"user_id" validate:"required,max=50"`
	Name          string      `json:"name" validate:"required,max=100"`
	Study         json.Number `json:"study" validate:"required,numeric,nonneg"`
	Attendance    json.Number `json:"attendance" validate:"required,numeric"`
	Participation json.Number `json:"participation" validate:"required,numeric"`
}

func (ns *NewStudent) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	ns.clean()
	if err := validate.Struct(ns); err != nil {
		return err
	}
	return svc.checkUniqueness(ctx, ns.UserID, 0)
}

func (ns *NewStudent) clean() {
	ns.UserID = core.CleanString(ns.UserID)
	ns.Name = core.CleanString(ns.Name)
	ns.Study = json.Number(core.CleanString(ns.Study.String()))
	ns.Attendance = json.Number(core.CleanString(ns.Attendance.String()))
	ns.Participation = json.Number(core.CleanString(ns.Participation.String()))
}

// metrics converts the validated metrics, in Features order.
func (ns NewStudent) metrics() (study, attendance, participation float64, err error) {
	if study, err = ns.Study.Float64(); err != nil {
		return 0, 0, 0, errors.Wrap(err, "parsing study")
	}
	if attendance, err = ns.Attendance.Float64(); err != nil {
		return 0, 0, 0, errors.Wrap(err, "parsing attendance")
	}
	if participation, err = ns.Participation.Float64(); err != nil {
		return 0, 0, 0, errors.Wrap(err, "parsing participation")
	}
	return study, attendance, participation, nil
}

// UpdateStudent overwrites every attribute of an existing Student.
type UpdateStudent NewStudent

func (us *UpdateStudent) Validate(ctx context.Context, validate *validator.Validate, svc *Service, id int) error {
	ns := (*NewStudent)(us)
	ns.clean()
	if err := validate.Struct(ns); err != nil {
		return err
	}
	return svc.checkUniqueness(ctx, ns.UserID, id)
}

type QueryFilter struct {
	CreatedBy string // empty: every Student
}
