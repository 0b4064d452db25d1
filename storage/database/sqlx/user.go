package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/user"
)

const userColumns = "id, username, password_hash, role, created_at"

type userRepository struct {
	db core.DBExecutor
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db core.DBExecutor) *userRepository {
	return &userRepository{db: db}
}

func (repo userRepository) CountUsers(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, getExec(repo.db, exec), &n, "SELECT COUNT(*) FROM users")
	return n, errors.Wrap(err, "counting users")
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	q := `INSERT INTO users (username, password_hash, role, created_at) VALUES ($1, $2, $3, $4) RETURNING id`
	err := getExec(repo.db, exec).QueryRowxContext(ctx, q, usr.Username, usr.PasswordHash, usr.Role, usr.CreatedAt).Scan(&usr.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrUsernameExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) GetUserByUsername(ctx context.Context, username string, exec ...core.DBExecutor) (user.User, error) {
	var usr user.User
	err := sqlx.GetContext(ctx, getExec(repo.db, exec), &usr, "SELECT "+userColumns+" FROM users WHERE username = $1", username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "selecting user")
	}
	return usr, nil
}

// UpdateUser saves the password and role.
func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	res, err := getExec(repo.db, exec).ExecContext(ctx,
		"UPDATE users SET password_hash = $1, role = $2 WHERE id = $3",
		usr.PasswordHash, usr.Role, usr.ID,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if err = checkAffected(res, user.ErrNotFound); err != nil {
		return user.User{}, err
	}
	return usr, nil
}
