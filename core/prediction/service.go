package prediction

import (
	"context"
	"math"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/access"
	"github.com/trezcool/alama/core/student"
	"github.com/trezcool/alama/core/user"
)

var NowFunc = time.Now // mockable

type (
	Repository interface {
		CreateHistory(ctx context.Context, h History, exec ...core.DBExecutor) (History, error)
		// QueryHistory returns entries ordered by CreatedAt descending, then ID ascending.
		QueryHistory(ctx context.Context, filter QueryFilter, exec ...core.DBExecutor) ([]History, error)
		CountHistory(ctx context.Context, exec ...core.DBExecutor) (int, error)
	}

	// StudentStore is the part of student.Repository the engine writes through.
	StudentStore interface {
		GetStudent(ctx context.Context, id int, exec ...core.DBExecutor) (student.Student, error)
		SetPrediction(ctx context.Context, id int, grade string, score float64, exec ...core.DBExecutor) error
		CountStudents(ctx context.Context, exec ...core.DBExecutor) (int, error)
	}

	// Observer is notified of prediction outcomes.
	Observer interface {
		PredictionMade(grade string)
		ModelUnavailable()
	}

	Deps struct {
		Tx       core.TxRunner
		History  Repository
		Students StudentStore
		Scorer   Scorer          // nil: every prediction fails with core.ErrModelUnavailable
		Observer Observer        // optional
		Location *time.Location // reference zone of dashboards & date bounds; defaults to UTC
	}

	Service struct {
		tx       core.TxRunner
		history  Repository
		students StudentStore
		scorer   Scorer
		observer Observer
		loc      *time.Location
	}
)

func NewService(deps Deps) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(deps.Tx, "deps.Tx"),
		vala.IsNotNil(deps.History, "deps.History"),
		vala.IsNotNil(deps.Students, "deps.Students"),
	).CheckAndPanic()

	svc := &Service{
		tx:       deps.Tx,
		history:  deps.History,
		students: deps.Students,
		scorer:   deps.Scorer,
		observer: deps.Observer,
		loc:      deps.Location,
	}
	if svc.observer == nil {
		svc.observer = nopObserver{}
	}
	if svc.loc == nil {
		svc.loc = time.UTC
	}
	return svc
}

// ModelLoaded reports whether predictions can be served.
func (svc *Service) ModelLoaded() bool {
	return svc.scorer != nil
}

// Predict scores a Student the caller may manage, then records the outcome:
// a new History entry and the Student's latest prediction, atomically.
func (svc *Service) Predict(ctx context.Context, id user.Identity, studentID int) (Result, error) {
	if err := access.Authenticated(id); err != nil {
		return Result{}, err
	}
	std, err := svc.students.GetStudent(ctx, studentID)
	if err != nil {
		return Result{}, errors.Wrap(err, "finding student")
	}
	if err = access.Authorize(id, std.CreatedBy); err != nil {
		return Result{}, err
	}
	if svc.scorer == nil {
		svc.observer.ModelUnavailable()
		return Result{}, core.ErrModelUnavailable
	}

	raw, err := svc.scorer.Score(std.Features())
	if err != nil {
		return Result{}, errors.Wrap(err, "scoring student")
	}
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return Result{}, errors.Errorf("scorer returned %v", raw)
	}
	score := RoundScore(raw)
	grade := GradeFor(score)
	hist := History{
		StudentID:   std.ID,
		StudentName: std.Name,
		Grade:       grade,
		Score:       score,
		Confidence:  ConfidenceFor(score),
		CreatedAt:   NowFunc().UTC(),
	}

	err = svc.tx.RunInTx(ctx, func(exec core.DBExecutor) error {
		if _, err := svc.history.CreateHistory(ctx, hist, exec); err != nil {
			return errors.Wrap(err, "appending history")
		}
		return errors.Wrap(svc.students.SetPrediction(ctx, std.ID, grade, score, exec), "saving student prediction")
	})
	if err != nil {
		return Result{}, err
	}
	svc.observer.PredictionMade(grade)

	return Result{
		StudentName: hist.StudentName,
		Grade:       hist.Grade,
		Score:       hist.Score,
		Confidence:  hist.Confidence,
	}, nil
}

// ListHistory returns the history visible to the caller, newest first.
func (svc *Service) ListHistory(ctx context.Context, id user.Identity, q HistoryQuery) ([]History, error) {
	if err := access.Authenticated(id); err != nil {
		return nil, err
	}
	filter, err := q.Filter(svc.loc)
	if err != nil {
		return nil, err
	}
	filter.CreatedBy = access.Scope(id)

	entries, err := svc.history.QueryHistory(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "querying history")
	}
	if entries == nil {
		entries = []History{}
	}
	return entries, nil
}

// DashboardStats summarizes every Student and History entry. Admins only.
func (svc *Service) DashboardStats(ctx context.Context, id user.Identity) (Stats, error) {
	if err := access.AdminOnly(id); err != nil {
		return Stats{}, err
	}
	nStudents, err := svc.students.CountStudents(ctx)
	if err != nil {
		return Stats{}, errors.Wrap(err, "counting students")
	}
	nHistory, err := svc.history.CountHistory(ctx)
	if err != nil {
		return Stats{}, errors.Wrap(err, "counting history")
	}
	if nHistory == 0 {
		return ComputeStats(nStudents, nil, svc.loc), nil
	}

	entries, err := svc.history.QueryHistory(ctx, QueryFilter{})
	if err != nil {
		return Stats{}, errors.Wrap(err, "querying history")
	}
	return ComputeStats(nStudents, entries, svc.loc), nil
}

// DashboardCharts aggregates every History entry by grade and by day. Admins only.
func (svc *Service) DashboardCharts(ctx context.Context, id user.Identity) (Charts, error) {
	if err := access.AdminOnly(id); err != nil {
		return Charts{}, err
	}
	entries, err := svc.history.QueryHistory(ctx, QueryFilter{})
	if err != nil {
		return Charts{}, errors.Wrap(err, "querying history")
	}
	return ComputeCharts(entries, svc.loc), nil
}

type nopObserver struct{}

func (nopObserver) PredictionMade(string) {}
func (nopObserver) ModelUnavailable()     {}
