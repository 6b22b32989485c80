package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nfrund/courier/internal/domain"
	"github.com/surrealdb/surrealdb.go"
)

const userTable = "user"

var _ domain.UserRepository = (*UserStore)(nil)

// UserStore encapsulates database operations for users using SurrealDB.
type UserStore struct {
	db     *surrealdb.DB
	ns     string
	dbName string
}

// NewUserStore creates a new UserStore.
func NewUserStore(db *surrealdb.DB, ns, dbName string) *UserStore {
	return &UserStore{db: db, ns: ns, dbName: dbName}
}

// Create persists a new user with an already-hashed password. It returns
// domain.ErrUserAlreadyExists when the username is taken.
func (s *UserStore) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	if err := s.db.Use(ctx, s.ns, s.dbName); err != nil {
		return nil, fmt.Errorf("failed to set database scope: %w", err)
	}

	existing, err := s.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrUserAlreadyExists
	}

	query := "CREATE " + userTable + " SET username = $username, password = $password RETURN AFTER"
	params := map[string]any{
		"username": username,
		"password": passwordHash,
	}

	created, err := QueryOne[domain.User](ctx, s.db, query, params)
	// The username column carries a unique index; a concurrent create for the
	// same name surfaces here rather than through the lookup above.
	if err != nil && strings.Contains(err.Error(), "already exists") {
		return nil, domain.ErrUserAlreadyExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if created == nil {
		return nil, fmt.Errorf("user was not created or could not be fetched")
	}

	return created, nil
}

// FindByUsername queries for a single user by username. Returns
// domain.ErrNotFound when no user matches.
func (s *UserStore) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	if err := s.db.Use(ctx, s.ns, s.dbName); err != nil {
		return nil, fmt.Errorf("failed to set database scope: %w", err)
	}

	query := "SELECT * FROM " + userTable + " WHERE username = $username"
	params := map[string]any{"username": username}

	user, err := QueryOne[domain.User](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}

	return user, nil
}

// List returns every user, for the people directory. Password hashes are
// not selected.
func (s *UserStore) List(ctx context.Context) ([]domain.User, error) {
	if err := s.db.Use(ctx, s.ns, s.dbName); err != nil {
		return nil, fmt.Errorf("failed to set database scope: %w", err)
	}

	query := "SELECT id, username FROM " + userTable
	users, err := Query[domain.User](ctx, s.db, query, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}
