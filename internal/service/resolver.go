// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/pathwise/pathwise/internal/metrics"
	"github.com/pathwise/pathwise/internal/model"
	"github.com/pathwise/pathwise/internal/repository"
)

// Service errors.
var (
	ErrUnauthorized = errors.New("caller is not authenticated")
	ErrMissingEmail = errors.New("external profile has no email address")
	// ErrIdentityMismatch means the email resolved from the provider
	// belongs to a user already linked to a different external id.
	// Surfaced instead of silently returning the row so a genuine data
	// inconsistency is never masked.
	ErrIdentityMismatch = errors.New("user is linked to a different identity")
)

// userStore is the slice of the repository the resolver needs.
type userStore interface {
	GetUserByExternalID(ctx context.Context, externalID string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	CreateUser(ctx context.Context, user *model.User) error
	LinkExternalID(ctx context.Context, userID, externalID string) error
}

// profileFetcher fetches profiles from the identity provider.
type profileFetcher interface {
	FetchProfile(ctx context.Context, externalID string) (*model.ExternalProfile, error)
}

// Resolver maps an external identity onto exactly one persisted user,
// creating or reconciling the row as needed.
type Resolver struct {
	store   userStore
	idp     profileFetcher
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewResolver creates a Resolver.
func NewResolver(store userStore, idp profileFetcher, logger *slog.Logger, recorder metrics.Recorder) *Resolver {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Resolver{
		store:   store,
		idp:     idp,
		logger:  logger,
		metrics: recorder,
	}
}

// Resolve returns the user for externalID. The external id is the fast
// path; email is the reconciliation key for identity drift and for
// recovering create races. Each step short-circuits on success:
//
//  1. Lookup by external id - no provider call for known users.
//  2. Fetch the external profile and extract its primary email.
//  3. Lookup by email: backfill the external id if unset, return as-is
//     if already linked to this identity.
//  4. Create the user. A uniqueness conflict means a concurrent call
//     won the race; recover with a second read instead of a retry.
func (r *Resolver) Resolve(ctx context.Context, externalID string) (*model.User, error) {
	user, err := r.store.GetUserByExternalID(ctx, externalID)
	if err == nil {
		r.metrics.IncUserResolved(metrics.ResolveHit)
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("lookup by external ID: %w", err)
	}

	profile, err := r.idp.FetchProfile(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("fetch external profile: %w", err)
	}

	email, ok := profile.PrimaryEmail()
	if !ok {
		return nil, ErrMissingEmail
	}

	user, err = r.store.GetUserByEmail(ctx, email)
	if err == nil {
		return r.reconcile(ctx, user, externalID, email)
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("lookup by email: %w", err)
	}

	return r.create(ctx, externalID, email)
}

// reconcile links an existing row (found by email) to externalID, or
// returns it unchanged when a concurrent call already linked it.
func (r *Resolver) reconcile(ctx context.Context, user *model.User, externalID, email string) (*model.User, error) {
	if user.ExternalID != nil {
		if *user.ExternalID != externalID {
			r.logger.Warn("email claimed by another identity",
				slog.String("user_id", user.ID),
				slog.String("external_id", externalID),
			)
			return nil, ErrIdentityMismatch
		}
		// Already linked - idempotent.
		r.metrics.IncUserResolved(metrics.ResolveHit)
		return user, nil
	}

	err := r.store.LinkExternalID(ctx, user.ID, externalID)
	if err == nil {
		user.ExternalID = &externalID
		r.logger.Info("backfilled external identity",
			slog.String("user_id", user.ID),
		)
		r.metrics.IncUserResolved(metrics.ResolveReconciled)
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserConflict) {
		return nil, fmt.Errorf("link external ID: %w", err)
	}

	// A concurrent resolution linked the row first; re-read and verify.
	return r.recover(ctx, externalID, email)
}

// create inserts a fresh user with default profile fields.
func (r *Resolver) create(ctx context.Context, externalID, email string) (*model.User, error) {
	now := time.Now().UTC()
	user := &model.User{
		ID:         ulid.Make().String(),
		ExternalID: &externalID,
		Email:      email,
		Bio:        "",
		Skills:     []string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := r.store.CreateUser(ctx, user)
	if err == nil {
		r.metrics.IncUserResolved(metrics.ResolveCreated)
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserConflict) {
		return nil, fmt.Errorf("create user: %w", err)
	}

	// Lost a create-create race; the winner's row is authoritative.
	return r.recover(ctx, externalID, email)
}

// recover re-reads the row a concurrent resolution persisted. The row
// must carry the same external id; any other value is a real
// inconsistency, not a race artifact.
func (r *Resolver) recover(ctx context.Context, externalID, email string) (*model.User, error) {
	user, err := r.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("re-read after conflict: %w", err)
	}

	if user.ExternalID != nil && *user.ExternalID != externalID {
		return nil, ErrIdentityMismatch
	}

	r.metrics.IncUserResolved(metrics.ResolveRecovered)
	return user, nil
}
