// Package testutil provides helpers shared by integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/pathwise/pathwise/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 731731

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetUsersSchema drops and recreates the users schema for tests.
func ResetUsersSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return applyMigrationPair(ctx, pool, "000001_users")
}

// ResetInsightsSchema drops and recreates the industry_insights schema for tests.
func ResetInsightsSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return applyMigrationPair(ctx, pool, "000002_industry_insights")
}

func applyMigrationPair(ctx context.Context, pool *pgxpool.Pool, name string) error {
	root, err := ProjectRoot()
	if err != nil {
		return err
	}

	downSQL, err := os.ReadFile(filepath.Join(root, "migrations", name+".down.sql"))
	if err != nil {
		return fmt.Errorf("read down migration: %w", err)
	}
	if _, err := pool.Exec(ctx, string(downSQL)); err != nil {
		return fmt.Errorf("apply down migration: %w", err)
	}

	upSQL, err := os.ReadFile(filepath.Join(root, "migrations", name+".up.sql"))
	if err != nil {
		return fmt.Errorf("read up migration: %w", err)
	}
	if _, err := pool.Exec(ctx, string(upSQL)); err != nil {
		return fmt.Errorf("apply up migration: %w", err)
	}

	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a test user with sensible defaults.
func NewTestUser(t testing.TB, email string) *model.User {
	t.Helper()
	now := time.Now().UTC()
	externalID := UniqueID("ext")
	return &model.User{
		ID:         ulid.Make().String(),
		ExternalID: &externalID,
		Email:      email,
		Bio:        "",
		Skills:     []string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// NewTestInsight creates a test insight with sensible defaults.
func NewTestInsight(t testing.TB, category string) *model.Insight {
	t.Helper()
	payload := model.InsightPayload{
		Summary:         "steady demand for " + category,
		Outlook:         "growing",
		TrendingSkills:  []string{"communication", "sql"},
		MedianSalaryUSD: 95000,
	}
	return model.NewInsight(ulid.Make().String(), category, payload, time.Now().UTC())
}

// UniqueEmail generates a unique email address for tests.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
