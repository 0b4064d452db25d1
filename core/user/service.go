package user

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core"
)

var (
	// errors
	ErrNotFound           = core.NewError(core.ErrNotFound, "user not found")
	ErrUsernameExists     = core.NewError(core.ErrConflict, "Username already exists")
	ErrInvalidCredentials = core.NewError(core.ErrUnauthorized, "Invalid credentials")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		CountUsers(ctx context.Context, exec ...core.DBExecutor) (int, error)
		CreateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		GetUserByUsername(ctx context.Context, username string, exec ...core.DBExecutor) (User, error)
		UpdateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
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

func (svc *Service) checkUniqueness(ctx context.Context, uname string) error {
	if _, err := svc.repo.GetUserByUsername(ctx, uname); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return errors.Wrap(err, "finding user by username")
	}
	return ErrUsernameExists
}

// Register creates a new regular User.
func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	if err := nu.Validate(ctx, svc.validate, svc); err != nil {
		return User{}, err
	}
	return svc.create(ctx, nu.Username, nu.Password, RoleUser)
}

func (svc *Service) create(ctx context.Context, uname, pwd, role string) (User, error) {
	usr := User{
		Username:  uname,
		Role:      role,
		CreatedAt: NowFunc().UTC(),
	}
	if err := usr.SetPassword(pwd); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

// Authenticate returns the User owning the given credentials.
func (svc *Service) Authenticate(ctx context.Context, uname, pwd string) (User, error) {
	usr, err := svc.repo.GetUserByUsername(ctx, core.CleanString(uname))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, errors.Wrap(err, "finding user by username")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return usr, nil
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUserByUsername(ctx, core.CleanString(uname))
}

// SetPassword replaces the password of an existing User.
func (svc *Service) SetPassword(ctx context.Context, uname, pwd string) (User, error) {
	usr, err := svc.GetByUsername(ctx, uname)
	if err != nil {
		return User{}, err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	return svc.repo.UpdateUser(ctx, usr)
}

// AddUser updates or creates a User with the given role and password.
func (svc *Service) AddUser(ctx context.Context, uname, pwd, role string) (User, error) {
	uname = core.CleanString(uname)
	if uname == "" || pwd == "" {
		return User{}, core.NewValidationError(errors.New("username and password are required"))
	}
	if !IsValidRole(role) {
		return User{}, core.NewValidationError(nil, core.FieldError{Field: "role", Error: "invalid role"})
	}

	usr, err := svc.repo.GetUserByUsername(ctx, uname)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return User{}, errors.Wrap(err, "finding user by username")
		}
		return svc.create(ctx, uname, pwd, role)
	}
	usr.Role = role
	if err = usr.SetPassword(pwd); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	return svc.repo.UpdateUser(ctx, usr)
}
