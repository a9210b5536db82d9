package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/pathwise/pathwise/internal/model"
	"github.com/pathwise/pathwise/internal/repository"
)

// fakeUserStore is an in-memory userStore keyed by email and external id.
type fakeUserStore struct {
	byEmail    map[string]*model.User
	createErr  error
	linkErr    error
	creates    int
	links      int
	lookupErrs map[string]error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: make(map[string]*model.User)}
}

func (s *fakeUserStore) GetUserByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	for _, u := range s.byEmail {
		if u.ExternalID != nil && *u.ExternalID == externalID {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *fakeUserStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if err := s.lookupErrs[email]; err != nil {
		return nil, err
	}
	if u, ok := s.byEmail[email]; ok {
		return u, nil
	}
	return nil, repository.ErrUserNotFound
}

func (s *fakeUserStore) CreateUser(ctx context.Context, user *model.User) error {
	s.creates++
	if s.createErr != nil {
		return s.createErr
	}
	if _, ok := s.byEmail[user.Email]; ok {
		return repository.ErrUserConflict
	}
	s.byEmail[user.Email] = user
	return nil
}

func (s *fakeUserStore) LinkExternalID(ctx context.Context, userID, externalID string) error {
	s.links++
	if s.linkErr != nil {
		return s.linkErr
	}
	for _, u := range s.byEmail {
		if u.ID == userID && u.ExternalID == nil {
			id := externalID
			u.ExternalID = &id
			return nil
		}
	}
	return repository.ErrUserConflict
}

// fakeFetcher serves canned external profiles and counts calls.
type fakeFetcher struct {
	profile *model.ExternalProfile
	err     error
	calls   int
}

func (f *fakeFetcher) FetchProfile(ctx context.Context, externalID string) (*model.ExternalProfile, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

func profileWithEmail(externalID, email string) *model.ExternalProfile {
	return &model.ExternalProfile{
		ID:             externalID,
		PrimaryEmailID: "em_1",
		Emails:         []model.EmailAddress{{ID: "em_1", Address: email}},
	}
}

func newTestResolver(store *fakeUserStore, fetcher *fakeFetcher) *Resolver {
	return NewResolver(store, fetcher, slog.Default(), nil)
}

func TestResolver_KnownUserSkipsProviderCall(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	externalID := "user_known"
	store.byEmail["known@example.com"] = &model.User{
		ID:         "u1",
		ExternalID: &externalID,
		Email:      "known@example.com",
	}
	fetcher := &fakeFetcher{}

	user, err := newTestResolver(store, fetcher).Resolve(context.Background(), externalID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if user.ID != "u1" {
		t.Errorf("user ID = %q, want u1", user.ID)
	}
	if fetcher.calls != 0 {
		t.Errorf("provider calls = %d, want 0", fetcher.calls)
	}
}

func TestResolver_CreatesNewUserWithDefaults(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	fetcher := &fakeFetcher{profile: profileWithEmail("user_new", "new@example.com")}

	user, err := newTestResolver(store, fetcher).Resolve(context.Background(), "user_new")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if user.Email != "new@example.com" {
		t.Errorf("email = %q, want new@example.com", user.Email)
	}
	if user.ExternalID == nil || *user.ExternalID != "user_new" {
		t.Errorf("external id = %v, want user_new", user.ExternalID)
	}
	if user.Industry != nil || user.ExperienceLevel != nil {
		t.Errorf("expected unset industry and experience, got %v / %v", user.Industry, user.ExperienceLevel)
	}
	if user.Bio != "" || len(user.Skills) != 0 {
		t.Errorf("expected empty bio and skills, got %q / %v", user.Bio, user.Skills)
	}
	if user.ID == "" {
		t.Error("expected a generated user id")
	}
	if store.creates != 1 {
		t.Errorf("creates = %d, want 1", store.creates)
	}
}

func TestResolver_BackfillsExternalID(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	store.byEmail["drift@example.com"] = &model.User{
		ID:    "u1",
		Email: "drift@example.com",
	}
	fetcher := &fakeFetcher{profile: profileWithEmail("user_drift", "drift@example.com")}
	resolver := newTestResolver(store, fetcher)

	user, err := resolver.Resolve(context.Background(), "user_drift")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if user.ID != "u1" {
		t.Fatalf("user ID = %q, want u1", user.ID)
	}
	if user.ExternalID == nil || *user.ExternalID != "user_drift" {
		t.Fatalf("external id not backfilled: %v", user.ExternalID)
	}
	if store.creates != 0 {
		t.Errorf("creates = %d, want 0", store.creates)
	}

	// Second resolution is idempotent: fast path, no further writes.
	again, err := resolver.Resolve(context.Background(), "user_drift")
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if again.ID != "u1" {
		t.Errorf("second resolve user ID = %q, want u1", again.ID)
	}
	if store.links != 1 {
		t.Errorf("link writes = %d, want 1", store.links)
	}
	if fetcher.calls != 1 {
		t.Errorf("provider calls = %d, want 1", fetcher.calls)
	}
}

func TestResolver_AlreadyLinkedIsIdempotent(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	externalID := "user_linked"
	store.byEmail["linked@example.com"] = &model.User{
		ID:         "u1",
		ExternalID: &externalID,
		Email:      "linked@example.com",
	}
	fetcher := &fakeFetcher{profile: profileWithEmail("user_linked", "linked@example.com")}

	// Simulate a race: external-id lookup misses, email lookup finds the
	// row another call just linked.
	resolver := NewResolver(&missesExternalID{store}, fetcher, slog.Default(), nil)

	user, err := resolver.Resolve(context.Background(), "user_linked")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if user.ID != "u1" {
		t.Errorf("user ID = %q, want u1", user.ID)
	}
	if store.links != 0 {
		t.Errorf("link writes = %d, want 0", store.links)
	}
}

// missesExternalID wraps a store so the external-id lookup always misses.
type missesExternalID struct {
	*fakeUserStore
}

func (s *missesExternalID) GetUserByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	return nil, repository.ErrUserNotFound
}

func TestResolver_CreateRaceRecoversWinnerRow(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	winnerID := "user_race"
	winner := &model.User{
		ID:         "u-winner",
		ExternalID: &winnerID,
		Email:      "race@example.com",
	}
	store.createErr = repository.ErrUserConflict
	fetcher := &fakeFetcher{profile: profileWithEmail("user_race", "race@example.com")}

	// The winner's row becomes visible between the create attempt and
	// the recovery read.
	resolver := NewResolver(&raceStore{fakeUserStore: store, winner: winner}, fetcher, slog.Default(), nil)

	user, err := resolver.Resolve(context.Background(), "user_race")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if user.ID != "u-winner" {
		t.Errorf("user ID = %q, want the winner's row", user.ID)
	}
}

// raceStore misses every read until the create conflict, then serves
// the winner's row.
type raceStore struct {
	*fakeUserStore
	winner   *model.User
	conflict bool
}

func (s *raceStore) GetUserByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	return nil, repository.ErrUserNotFound
}

func (s *raceStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if s.conflict {
		return s.winner, nil
	}
	return nil, repository.ErrUserNotFound
}

func (s *raceStore) CreateUser(ctx context.Context, user *model.User) error {
	s.conflict = true
	return repository.ErrUserConflict
}

func TestResolver_ConflictRereadVerifiesIdentity(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	otherID := "user_other"
	winner := &model.User{
		ID:         "u-other",
		ExternalID: &otherID,
		Email:      "race@example.com",
	}
	fetcher := &fakeFetcher{profile: profileWithEmail("user_race", "race@example.com")}
	resolver := NewResolver(&raceStore{fakeUserStore: store, winner: winner}, fetcher, slog.Default(), nil)

	if _, err := resolver.Resolve(context.Background(), "user_race"); !errors.Is(err, ErrIdentityMismatch) {
		t.Fatalf("expected ErrIdentityMismatch, got %v", err)
	}
}

func TestResolver_EmailClaimedByAnotherIdentity(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	otherID := "user_other"
	store.byEmail["taken@example.com"] = &model.User{
		ID:         "u1",
		ExternalID: &otherID,
		Email:      "taken@example.com",
	}
	fetcher := &fakeFetcher{profile: profileWithEmail("user_new", "taken@example.com")}
	resolver := NewResolver(&missesExternalID{store}, fetcher, slog.Default(), nil)

	if _, err := resolver.Resolve(context.Background(), "user_new"); !errors.Is(err, ErrIdentityMismatch) {
		t.Fatalf("expected ErrIdentityMismatch, got %v", err)
	}
}

func TestResolver_NoEmailOnProfile(t *testing.T) {
	t.Parallel()

	store := newFakeUserStore()
	fetcher := &fakeFetcher{profile: &model.ExternalProfile{ID: "user_bare"}}

	if _, err := newTestResolver(store, fetcher).Resolve(context.Background(), "user_bare"); !errors.Is(err, ErrMissingEmail) {
		t.Fatalf("expected ErrMissingEmail, got %v", err)
	}
}

func TestResolver_ProviderFailurePropagates(t *testing.T) {
	t.Parallel()

	providerErr := errors.New("identity provider is down")
	store := newFakeUserStore()
	fetcher := &fakeFetcher{err: providerErr}

	if _, err := newTestResolver(store, fetcher).Resolve(context.Background(), "user_x"); !errors.Is(err, providerErr) {
		t.Fatalf("expected provider error, got %v", err)
	}
	if store.creates != 0 {
		t.Errorf("creates = %d, want 0", store.creates)
	}
}
