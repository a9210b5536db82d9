package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pathwise/pathwise/internal/insight"
	"github.com/pathwise/pathwise/internal/model"
	"github.com/pathwise/pathwise/internal/repository"
)

// fakeInsightStore is an in-memory insightStore; the tx handle is
// ignored, transactional behavior is covered by repository tests.
type fakeInsightStore struct {
	byCategory map[string]*model.Insight
	createErr  error
	getErr     error
	creates    int
}

func newFakeInsightStore() *fakeInsightStore {
	return &fakeInsightStore{byCategory: make(map[string]*model.Insight)}
}

func (s *fakeInsightStore) GetInsightByCategory(ctx context.Context, tx pgx.Tx, category string) (*model.Insight, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	if ins, ok := s.byCategory[category]; ok {
		return ins, nil
	}
	return nil, repository.ErrInsightNotFound
}

func (s *fakeInsightStore) CreateInsight(ctx context.Context, tx pgx.Tx, ins *model.Insight) error {
	s.creates++
	if s.createErr != nil {
		return s.createErr
	}
	s.byCategory[ins.Category] = ins
	return nil
}

func staticGenerator(payload model.InsightPayload, calls *int) insight.Generator {
	return insight.GeneratorFunc(func(ctx context.Context, category string) (*model.InsightPayload, error) {
		*calls++
		p := payload
		return &p, nil
	})
}

func TestInsightCache_MissComputesAndStores(t *testing.T) {
	t.Parallel()

	store := newFakeInsightStore()
	var calls int
	payload := model.InsightPayload{
		Summary:         "high demand",
		Outlook:         "growing",
		TrendingSkills:  []string{"go", "sql"},
		MedianSalaryUSD: 120000,
	}
	cache := NewInsightCache(store, staticGenerator(payload, &calls), nil)

	before := time.Now().UTC()
	ins, err := cache.GetOrCompute(context.Background(), nil, "software")
	if err != nil {
		t.Fatalf("get or compute: %v", err)
	}

	if calls != 1 {
		t.Errorf("generator calls = %d, want 1", calls)
	}
	if store.creates != 1 {
		t.Errorf("insight writes = %d, want 1", store.creates)
	}
	if ins.Category != "software" {
		t.Errorf("category = %q, want software", ins.Category)
	}
	if ins.Payload.Summary != "high demand" {
		t.Errorf("summary = %q, want high demand", ins.Payload.Summary)
	}

	wantRefresh := before.Add(model.InsightRefreshInterval)
	diff := ins.NextRefreshAt.Sub(wantRefresh)
	if diff < -time.Minute || diff > time.Minute {
		t.Errorf("next refresh = %v, want about %v", ins.NextRefreshAt, wantRefresh)
	}
}

func TestInsightCache_HitSkipsComputation(t *testing.T) {
	t.Parallel()

	store := newFakeInsightStore()
	existing := model.NewInsight("01ABC", "finance", model.InsightPayload{Summary: "cached"}, time.Now().UTC())
	store.byCategory["finance"] = existing

	var calls int
	cache := NewInsightCache(store, staticGenerator(model.InsightPayload{}, &calls), nil)

	ins, err := cache.GetOrCompute(context.Background(), nil, "finance")
	if err != nil {
		t.Fatalf("get or compute: %v", err)
	}

	if calls != 0 {
		t.Errorf("generator calls = %d, want 0", calls)
	}
	if store.creates != 0 {
		t.Errorf("insight writes = %d, want 0", store.creates)
	}
	if ins != existing {
		t.Error("expected the cached record to be returned as-is")
	}
}

func TestInsightCache_GeneratorFailurePropagates(t *testing.T) {
	t.Parallel()

	genErr := errors.New("model overloaded")
	store := newFakeInsightStore()
	cache := NewInsightCache(store, insight.GeneratorFunc(func(ctx context.Context, category string) (*model.InsightPayload, error) {
		return nil, genErr
	}), nil)

	if _, err := cache.GetOrCompute(context.Background(), nil, "software"); !errors.Is(err, genErr) {
		t.Fatalf("expected generator error, got %v", err)
	}
	if store.creates != 0 {
		t.Errorf("insight writes = %d, want 0", store.creates)
	}
}

func TestInsightCache_WriteFailurePropagates(t *testing.T) {
	t.Parallel()

	writeErr := errors.New("disk full")
	store := newFakeInsightStore()
	store.createErr = writeErr

	var calls int
	cache := NewInsightCache(store, staticGenerator(model.InsightPayload{}, &calls), nil)

	if _, err := cache.GetOrCompute(context.Background(), nil, "software"); !errors.Is(err, writeErr) {
		t.Fatalf("expected write error, got %v", err)
	}
}
