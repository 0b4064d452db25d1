package user

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/alama/core"
)

// Roles
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

var AllRoles = []string{RoleAdmin, RoleUser}

func IsValidRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	ID           int       `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(pwd))
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u User) Identity() Identity {
	return Identity{Username: u.Username, Role: u.Role}
}

// Identity is the authenticated caller of an operation.
// The zero value is an anonymous caller.
type Identity struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (id Identity) IsAuthenticated() bool {
	return id.Username != ""
}

func (id Identity) IsAdmin() bool {
	return id.IsAuthenticated() && id.Role == RoleAdmin
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Username        string  `json:"username" validate:"required,min=3,max=50"`
	Password        string  `json:"password" validate:"required,min=6"`
	PasswordConfirm *string `json:"confirm_password"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	nu.Username = core.CleanString(nu.Username)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.checkUniqueness(ctx, nu.Username)
}
