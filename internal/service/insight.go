package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"

	"github.com/pathwise/pathwise/internal/insight"
	"github.com/pathwise/pathwise/internal/metrics"
	"github.com/pathwise/pathwise/internal/model"
	"github.com/pathwise/pathwise/internal/repository"
)

// insightStore is the slice of the repository the cache needs.
type insightStore interface {
	GetInsightByCategory(ctx context.Context, tx pgx.Tx, category string) (*model.Insight, error)
	CreateInsight(ctx context.Context, tx pgx.Tx, ins *model.Insight) error
}

// InsightCache provides get-or-compute-and-store semantics for the
// category-keyed insight artifact.
type InsightCache struct {
	store   insightStore
	gen     insight.Generator
	metrics metrics.Recorder
}

// NewInsightCache creates an InsightCache backed by gen for misses.
func NewInsightCache(store insightStore, gen insight.Generator, recorder metrics.Recorder) *InsightCache {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &InsightCache{
		store:   store,
		gen:     gen,
		metrics: recorder,
	}
}

// GetOrCompute returns the insight for category, computing and storing
// it on first request. tx is the caller's transaction: the miss path
// performs exactly one write inside it, and any failure here propagates
// so the enclosing transaction aborts as a whole. Hits are returned
// as-is with no staleness check.
func (c *InsightCache) GetOrCompute(ctx context.Context, tx pgx.Tx, category string) (*model.Insight, error) {
	ins, err := c.store.GetInsightByCategory(ctx, tx, category)
	if err == nil {
		c.metrics.IncInsightCacheHit()
		return ins, nil
	}
	if !errors.Is(err, repository.ErrInsightNotFound) {
		return nil, err
	}

	payload, err := c.gen.Generate(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("generate insights for %q: %w", category, err)
	}

	ins = model.NewInsight(ulid.Make().String(), category, *payload, time.Now().UTC())
	if err := c.store.CreateInsight(ctx, tx, ins); err != nil {
		return nil, err
	}

	c.metrics.IncInsightComputed()
	return ins, nil
}
