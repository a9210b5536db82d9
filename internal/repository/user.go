package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/pathwise/pathwise/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
	// ErrUserConflict marks a unique-constraint violation on email or
	// external id. It is recoverable: the caller re-reads the row the
	// concurrent writer created instead of failing the request.
	ErrUserConflict = errors.New("user already exists")
)

const userColumns = `id, external_id, email, industry, experience_level, bio, skills, created_at, updated_at`

// CreateUser inserts a new user into the database.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, external_id, email, industry, experience_level, bio, skills, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.ExternalID,
		user.Email,
		user.Industry,
		user.ExperienceLevel,
		user.Bio,
		pq.Array(user.Skills),
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserConflict
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByExternalID retrieves a user by their identity-provider id.
func (r *Repository) GetUserByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE external_id = $1
	`

	user, err := scanUser(r.pool.QueryRow(ctx, query, externalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by external ID: %w", err)
	}

	return user, nil
}

// GetUserByEmail retrieves a user by their email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1
	`

	user, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// LinkExternalID backfills the identity-provider id on a user that was
// originally created without one.
func (r *Repository) LinkExternalID(ctx context.Context, userID, externalID string) error {
	query := `
		UPDATE users
		SET external_id = $2, updated_at = $3
		WHERE id = $1 AND external_id IS NULL
	`

	tag, err := r.pool.Exec(ctx, query, userID, externalID, time.Now().UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserConflict
		}
		return fmt.Errorf("failed to link external ID: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Already linked by a concurrent resolution, or the row is gone.
		return ErrUserConflict
	}

	return nil
}

// UpdateUserProfile writes the profile fields of user inside the given
// transaction. The transaction handle is explicit so the profile write
// provably shares one atomic scope with the insight write.
func (r *Repository) UpdateUserProfile(ctx context.Context, tx pgx.Tx, user *model.User) error {
	query := `
		UPDATE users
		SET industry = $2, experience_level = $3, bio = $4, skills = $5, updated_at = $6
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query,
		user.ID,
		user.Industry,
		user.ExperienceLevel,
		user.Bio,
		pq.Array(user.Skills),
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update user profile: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// scanUser scans one user row.
func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.ExternalID,
		&user.Email,
		&user.Industry,
		&user.ExperienceLevel,
		&user.Bio,
		pq.Array(&user.Skills),
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
