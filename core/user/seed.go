package user

import (
	"context"

	"github.com/pkg/errors"
)

type DefaultAccount struct {
	Username string
	Password string
	Role     string
}

// DefaultAccounts are created on an empty users table.
var DefaultAccounts = []DefaultAccount{
	{Username: "Admin", Password: "Admin@123", Role: RoleAdmin},
	{Username: "User", Password: "User@123", Role: RoleUser},
}

// SeedDefaults creates DefaultAccounts when no User exists yet.
// It reports whether anything was created.
func (svc *Service) SeedDefaults(ctx context.Context) (bool, error) {
	n, err := svc.repo.CountUsers(ctx)
	if err != nil {
		return false, errors.Wrap(err, "counting users")
	}
	if n > 0 {
		return false, nil
	}

	for _, acc := range DefaultAccounts {
		// another instance may be seeding concurrently
		if _, err = svc.create(ctx, acc.Username, acc.Password, acc.Role); err != nil && !errors.Is(err, ErrUsernameExists) {
			return false, errors.Wrapf(err, "creating %s", acc.Username)
		}
	}
	return true, nil
}
