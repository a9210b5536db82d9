package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/pathwise/pathwise/internal/model"
)

// Common errors for insight repository operations.
var (
	ErrInsightNotFound = errors.New("insight not found")
	ErrInsightExists   = errors.New("insight already exists for category")
)

// GetInsightByCategory retrieves the cached insight for a category
// inside the given transaction.
func (r *Repository) GetInsightByCategory(ctx context.Context, tx pgx.Tx, category string) (*model.Insight, error) {
	query := `
		SELECT id, category, summary, outlook, trending_skills, median_salary_usd, next_refresh_at, created_at
		FROM industry_insights
		WHERE category = $1
	`

	var ins model.Insight
	err := tx.QueryRow(ctx, query, category).Scan(
		&ins.ID,
		&ins.Category,
		&ins.Payload.Summary,
		&ins.Payload.Outlook,
		pq.Array(&ins.Payload.TrendingSkills),
		&ins.Payload.MedianSalaryUSD,
		&ins.NextRefreshAt,
		&ins.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInsightNotFound
		}
		return nil, fmt.Errorf("failed to get insight by category: %w", err)
	}

	return &ins, nil
}

// CreateInsight inserts a newly computed insight inside the given
// transaction. The category unique constraint is the serialization
// point guaranteeing at most one row per category.
func (r *Repository) CreateInsight(ctx context.Context, tx pgx.Tx, ins *model.Insight) error {
	query := `
		INSERT INTO industry_insights (id, category, summary, outlook, trending_skills, median_salary_usd, next_refresh_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := tx.Exec(ctx, query,
		ins.ID,
		ins.Category,
		ins.Payload.Summary,
		ins.Payload.Outlook,
		pq.Array(ins.Payload.TrendingSkills),
		ins.Payload.MedianSalaryUSD,
		ins.NextRefreshAt,
		ins.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrInsightExists
		}
		return fmt.Errorf("failed to create insight: %w", err)
	}

	return nil
}
