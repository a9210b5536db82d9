// Package dto defines request and response shapes for the HTTP API.
package dto

import (
	"time"

	"github.com/pathwise/pathwise/internal/model"
)

// UpdateProfileRequest is the body of PUT /api/v1/profile.
type UpdateProfileRequest struct {
	Industry        string   `json:"industry"`
	ExperienceLevel string   `json:"experience_level"`
	Bio             string   `json:"bio"`
	Skills          []string `json:"skills"`
}

// ProfileResponse is the API representation of a user profile.
type ProfileResponse struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	Industry        *string   `json:"industry"`
	ExperienceLevel *string   `json:"experience_level"`
	Bio             string    `json:"bio"`
	Skills          []string  `json:"skills"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// OnboardingStatusResponse is the body of GET /api/v1/profile/status.
type OnboardingStatusResponse struct {
	IsOnboarded bool `json:"is_onboarded"`
}

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ToProfileResponse converts a user model to its API representation.
func ToProfileResponse(user *model.User) ProfileResponse {
	skills := user.Skills
	if skills == nil {
		skills = []string{}
	}
	return ProfileResponse{
		ID:              user.ID,
		Email:           user.Email,
		Industry:        user.Industry,
		ExperienceLevel: user.ExperienceLevel,
		Bio:             user.Bio,
		Skills:          skills,
		UpdatedAt:       user.UpdatedAt,
	}
}
