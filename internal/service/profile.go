package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pathwise/pathwise/internal/metrics"
	"github.com/pathwise/pathwise/internal/model"
	"github.com/pathwise/pathwise/internal/repository"
)

// Profile service errors.
var (
	// ErrProfileUpdate is the generalized failure returned when the
	// update transaction aborts. The underlying cause is logged, never
	// exposed to the caller.
	ErrProfileUpdate     = errors.New("profile update failed")
	ErrMissingIndustry   = errors.New("industry is required")
	ErrInvalidExperience = errors.New("invalid experience level")
)

// userResolver resolves an external identity to a persisted user.
type userResolver interface {
	Resolve(ctx context.Context, externalID string) (*model.User, error)
}

// insightProvider is the transactional insight cache.
type insightProvider interface {
	GetOrCompute(ctx context.Context, tx pgx.Tx, category string) (*model.Insight, error)
}

// profileStore is the slice of the repository the coordinator needs.
type profileStore interface {
	GetUserByExternalID(ctx context.Context, externalID string) (*model.User, error)
	UpdateUserProfile(ctx context.Context, tx pgx.Tx, user *model.User) error
}

// txRunner runs a function inside one bounded transaction.
type txRunner interface {
	InTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// viewInvalidator signals the rendering layer that cached views are stale.
type viewInvalidator interface {
	InvalidateDashboard(ctx context.Context) error
}

// ProfileService coordinates identity resolution, the insight cache and
// the profile write into one atomic operation per request.
type ProfileService struct {
	resolver userResolver
	insights insightProvider
	store    profileStore
	tx       txRunner
	views    viewInvalidator
	logger   *slog.Logger
	metrics  metrics.Recorder
}

// NewProfileService creates a ProfileService.
func NewProfileService(
	resolver userResolver,
	insights insightProvider,
	store profileStore,
	tx txRunner,
	views viewInvalidator,
	logger *slog.Logger,
	recorder metrics.Recorder,
) *ProfileService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ProfileService{
		resolver: resolver,
		insights: insights,
		store:    store,
		tx:       tx,
		views:    views,
		logger:   logger,
		metrics:  recorder,
	}
}

// UpdateProfileInput defines input for updating a profile.
type UpdateProfileInput struct {
	Industry        string
	ExperienceLevel string
	Bio             string
	Skills          []string
}

// UpdateProfile updates the caller's profile. The industry insight is
// looked up (and computed on first sight of the industry) inside the
// same transaction as the profile write: either both persist or
// neither does. On success the dashboard view cache is invalidated
// best-effort.
func (s *ProfileService) UpdateProfile(ctx context.Context, ident *model.Identity, input UpdateProfileInput) (*model.User, error) {
	if ident == nil || ident.ExternalID == "" {
		return nil, ErrUnauthorized
	}

	if input.Industry == "" {
		return nil, ErrMissingIndustry
	}
	if input.ExperienceLevel != "" && !model.ValidExperienceLevel(input.ExperienceLevel) {
		return nil, ErrInvalidExperience
	}

	// Resolution failures abort before any write.
	user, err := s.resolver.Resolve(ctx, ident.ExternalID)
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	user.Industry = &input.Industry
	if input.ExperienceLevel != "" {
		level := input.ExperienceLevel
		user.ExperienceLevel = &level
	} else {
		user.ExperienceLevel = nil
	}
	user.Bio = input.Bio
	user.Skills = input.Skills
	if user.Skills == nil {
		user.Skills = []string{}
	}

	start := time.Now()
	err = s.tx.InTx(ctx, func(tx pgx.Tx) error {
		if _, err := s.insights.GetOrCompute(ctx, tx, input.Industry); err != nil {
			return err
		}
		user.UpdatedAt = time.Now().UTC()
		return s.store.UpdateUserProfile(ctx, tx, user)
	})
	if err != nil {
		s.logger.Error("profile update transaction failed",
			slog.String("user_id", user.ID),
			slog.String("industry", input.Industry),
			slog.String("error", err.Error()),
		)
		return nil, ErrProfileUpdate
	}

	s.metrics.IncProfileUpdated()
	s.metrics.ObserveProfileUpdateDuration(time.Since(start))

	// Fire-and-forget: staleness of the rendered view is acceptable,
	// so invalidation never fails the request.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.views.InvalidateDashboard(ctx); err != nil {
			s.logger.Warn("dashboard invalidation failed", slog.String("error", err.Error()))
		}
	}()

	return user, nil
}

// OnboardingStatus reports whether the caller has set an industry yet.
// A caller with no user row is simply not onboarded, not an error.
func (s *ProfileService) OnboardingStatus(ctx context.Context, ident *model.Identity) (bool, error) {
	if ident == nil || ident.ExternalID == "" {
		return false, ErrUnauthorized
	}

	user, err := s.store.GetUserByExternalID(ctx, ident.ExternalID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("lookup onboarding status: %w", err)
	}

	return user.Onboarded(), nil
}
