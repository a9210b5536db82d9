package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/pathwise/pathwise/internal/auth"
	"github.com/pathwise/pathwise/internal/handler/dto"
	"github.com/pathwise/pathwise/internal/identity"
	"github.com/pathwise/pathwise/internal/model"
	"github.com/pathwise/pathwise/internal/service"
)

// profileService is the service surface the handler depends on.
type profileService interface {
	UpdateProfile(ctx context.Context, ident *model.Identity, input service.UpdateProfileInput) (*model.User, error)
	OnboardingStatus(ctx context.Context, ident *model.Identity) (bool, error)
}

// ProfileHandler handles HTTP requests for profile operations.
type ProfileHandler struct {
	svc    profileService
	logger *slog.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(svc profileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		svc:    svc,
		logger: logger,
	}
}

// Update handles PUT /api/v1/profile.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	input := service.UpdateProfileInput{
		Industry:        req.Industry,
		ExperienceLevel: req.ExperienceLevel,
		Bio:             req.Bio,
		Skills:          req.Skills,
	}

	ident := auth.IdentityFromContext(r.Context())
	user, err := h.svc.UpdateProfile(r.Context(), ident, input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("profile_updated",
		"user_id", user.ID,
		"industry", req.Industry,
	)

	writeJSON(w, http.StatusOK, dto.ToProfileResponse(user))
}

// OnboardingStatus handles GET /api/v1/profile/status.
func (h *ProfileHandler) OnboardingStatus(w http.ResponseWriter, r *http.Request) {
	ident := auth.IdentityFromContext(r.Context())
	onboarded, err := h.svc.OnboardingStatus(r.Context(), ident)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OnboardingStatusResponse{IsOnboarded: onboarded})
}

// handleServiceError maps service errors to HTTP responses.
func (h *ProfileHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	case errors.Is(err, service.ErrMissingIndustry):
		h.writeError(w, http.StatusUnprocessableEntity, "MISSING_INDUSTRY", "Industry is required")
	case errors.Is(err, service.ErrInvalidExperience):
		h.writeError(w, http.StatusUnprocessableEntity, "INVALID_EXPERIENCE_LEVEL", "Experience level must be entry, mid, senior or lead")
	case errors.Is(err, service.ErrMissingEmail):
		h.writeError(w, http.StatusUnprocessableEntity, "NO_EMAIL_ON_IDENTITY", "Identity has no usable email address")
	case errors.Is(err, service.ErrIdentityMismatch):
		h.writeError(w, http.StatusConflict, "IDENTITY_CONFLICT", "Email is linked to a different identity")
	case errors.Is(err, identity.ErrUpstream):
		h.writeError(w, http.StatusBadGateway, "IDENTITY_PROVIDER_UNAVAILABLE", "Identity provider request failed")
	case errors.Is(err, identity.ErrNoCredential):
		h.logger.Error("identity provider credential missing")
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	case errors.Is(err, service.ErrProfileUpdate):
		h.writeError(w, http.StatusInternalServerError, "PROFILE_UPDATE_FAILED", "Profile update failed, please retry")
	default:
		h.logger.Error("internal_error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// writeError writes an error response.
func (h *ProfileHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
