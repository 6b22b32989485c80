package domain

import (
	"context"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// User represents the core user model in the application domain.
type User struct {
	ID       *surrealmodels.RecordID `json:"id,omitempty"`
	Username string                  `json:"username"`
	Password string                  `json:"password,omitempty"`
}

// IDString returns the record id in its "table:key" form, or "" when the
// user has not been persisted yet.
func (u *User) IDString() string {
	if u.ID == nil {
		return ""
	}
	return u.ID.String()
}

// UserRepository defines the contract for user data storage operations.
// It lives in the domain because it's a requirement OF the domain, not
// of the database implementation.
type UserRepository interface {
	// Create returns ErrUserAlreadyExists when the username is taken.
	Create(ctx context.Context, username, passwordHash string) (*User, error)
	// FindByUsername returns ErrNotFound when no user matches.
	FindByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context) ([]User, error)
}
