package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"nlschedule/internal/domain"
)

type userRepository struct {
	db *sql.DB
}

// NewUserRepository returns a UserRepository backed by a migrated SQLite database.
func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, salt, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, u.Username, u.Email, u.PasswordHash, u.Salt, formatTime(u.CreatedAt), formatTime(u.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateUser
		}
		return fmt.Errorf("create user: insert: %w", err)
	}
	u.ID = id
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.get(ctx, `SELECT id, username, email, password_hash, salt, created_at, updated_at FROM users WHERE email = ?`, email)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.get(ctx, `SELECT id, username, email, password_hash, salt, created_at, updated_at FROM users WHERE id = ?`, id)
}

func (r *userRepository) get(ctx context.Context, query, arg string) (*domain.User, error) {
	var u domain.User
	var created, updated string
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Salt, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &u, nil
}
