package student

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/access"
	"github.com/trezcool/alama/core/user"
)

var (
	// errors
	ErrNotFound     = core.NewError(core.ErrNotFound, "student not found")
	ErrUserIDExists = core.NewError(core.ErrConflict, "a student with this user_id already exists")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		// CheckUserIDUniqueness returns ErrUserIDExists if a Student other than excludedID holds userID.
		CheckUserIDUniqueness(ctx context.Context, userID string, excludedID int, exec ...core.DBExecutor) error
		CreateStudent(ctx context.Context, std Student, exec ...core.DBExecutor) (Student, error)
		// QueryStudents returns students ordered by ID.
		QueryStudents(ctx context.Context, filter QueryFilter, exec ...core.DBExecutor) ([]Student, error)
		GetStudent(ctx context.Context, id int, exec ...core.DBExecutor) (Student, error)
		// UpdateStudent saves the descriptive attributes; CreatedBy and predictions are kept.
		UpdateStudent(ctx context.Context, std Student, exec ...core.DBExecutor) (Student, error)
		SetPrediction(ctx context.Context, id int, grade string, score float64, exec ...core.DBExecutor) error
		DeleteStudent(ctx context.Context, id int, exec ...core.DBExecutor) error
		CountStudents(ctx context.Context, exec ...core.DBExecutor) (int, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(validate, "validate"),
	).CheckAndPanic()

	return &Service{repo: repo, validate: validate}
}

func (svc *Service) checkUniqueness(ctx context.Context, userID string, excludedID int) error {
	if err := svc.repo.CheckUserIDUniqueness(ctx, userID, excludedID); err != nil {
		if errors.Is(err, ErrUserIDExists) {
			return core.NewValidationError(err, core.FieldError{Field: "user_id", Error: err.Error()})
		}
		return errors.Wrap(err, "checking user_id uniqueness")
	}
	return nil
}

// List returns the students visible to the caller.
func (svc *Service) List(ctx context.Context, id user.Identity) ([]Student, error) {
	if err := access.Authenticated(id); err != nil {
		return nil, err
	}
	stds, err := svc.repo.QueryStudents(ctx, QueryFilter{CreatedBy: access.Scope(id)})
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	if stds == nil {
		stds = []Student{}
	}
	return stds, nil
}

// Get returns a Student the caller may manage.
func (svc *Service) Get(ctx context.Context, id user.Identity, studentID int) (Student, error) {
	if err := access.Authenticated(id); err != nil {
		return Student{}, err
	}
	std, err := svc.repo.GetStudent(ctx, studentID)
	if err != nil {
		return Student{}, err
	}
	if err = access.Authorize(id, std.CreatedBy); err != nil {
		return Student{}, err
	}
	return std, nil
}

// Create adds a Student owned by the caller.
func (svc *Service) Create(ctx context.Context, id user.Identity, ns NewStudent) (Student, error) {
	if err := access.Authenticated(id); err != nil {
		return Student{}, err
	}
	if err := ns.Validate(ctx, svc.validate, svc); err != nil {
		return Student{}, err
	}
	study, attendance, participation, err := ns.metrics()
	if err != nil {
		return Student{}, core.NewValidationError(err)
	}

	std := Student{
		UserID:               ns.UserID,
		Name:                 ns.Name,
		WeeklySelfStudyHours: study,
		AttendancePercentage: attendance,
		ClassParticipation:   participation,
		CreatedBy:            id.Username,
		CreatedAt:            NowFunc().UTC(),
	}
	return svc.repo.CreateStudent(ctx, std)
}

// Update overwrites a Student the caller may manage.
func (svc *Service) Update(ctx context.Context, id user.Identity, studentID int, us UpdateStudent) (Student, error) {
	std, err := svc.Get(ctx, id, studentID)
	if err != nil {
		return Student{}, err
	}
	if err = us.Validate(ctx, svc.validate, svc, std.ID); err != nil {
		return Student{}, err
	}
	study, attendance, participation, err := NewStudent(us).metrics()
	if err != nil {
		return Student{}, core.NewValidationError(err)
	}

	std.UserID = us.UserID
	std.Name = us.Name
	std.WeeklySelfStudyHours = study
	std.AttendancePercentage = attendance
	std.ClassParticipation = participation
	return svc.repo.UpdateStudent(ctx, std)
}

// Delete removes a Student the caller may manage. Its prediction history is kept.
func (svc *Service) Delete(ctx context.Context, id user.Identity, studentID int) error {
	std, err := svc.Get(ctx, id, studentID)
	if err != nil {
		return err
	}
	return svc.repo.DeleteStudent(ctx, std.ID)
}
