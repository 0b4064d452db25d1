package inmemdb

import (
	"context"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/user"
)

type userRepository struct {
	db *userTable
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db.user}
}

func (repo *userRepository) CountUsers(ctx context.Context, _ ...core.DBExecutor) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return len(repo.db.t), nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, u := range repo.db.t {
		if u.Username == usr.Username {
			return user.User{}, user.ErrUsernameExists
		}
	}
	repo.db.pk++
	usr.ID = repo.db.pk
	repo.db.t[usr.ID] = usr

	id := usr.ID
	journal(exec, func() {
		dropCreated(&repo.db.mutex, &repo.db.pk, id, func() { delete(repo.db.t, id) })
	})
	return usr, nil
}

func (repo *userRepository) GetUserByUsername(ctx context.Context, username string, _ ...core.DBExecutor) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, usr := range repo.db.t {
		if usr.Username == username {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

// UpdateUser saves the password and role.
func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	origUsr, ok := repo.db.t[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	prevHash, prevRole := origUsr.PasswordHash, origUsr.Role
	journal(exec, func() {
		repo.db.mutex.Lock()
		defer repo.db.mutex.Unlock()
		if u, ok := repo.db.t[usr.ID]; ok {
			u.PasswordHash, u.Role = prevHash, prevRole
			repo.db.t[usr.ID] = u
		}
	})

	origUsr.PasswordHash = usr.PasswordHash
	origUsr.Role = usr.Role
	repo.db.t[usr.ID] = origUsr
	return origUsr, nil
}
