// Package model defines domain entities for the application.
package model

import "time"

// Experience levels accepted on a profile.
const (
	ExperienceEntry  = "entry"
	ExperienceMid    = "mid"
	ExperienceSenior = "senior"
	ExperienceLead   = "lead"
)

// User represents a career profile owned by one authenticated person.
// Email is unique across all users. ExternalID is the identity-provider
// id; it is nil for users who registered before provider login existed
// and is backfilled on their next resolution.
type User struct {
	ID              string    `json:"id"`
	ExternalID      *string   `json:"external_id,omitempty"`
	Email           string    `json:"email"`
	Industry        *string   `json:"industry,omitempty"`
	ExperienceLevel *string   `json:"experience_level,omitempty"`
	Bio             string    `json:"bio"`
	Skills          []string  `json:"skills"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Onboarded reports whether the user has completed onboarding.
// A user counts as onboarded once an industry has been set.
func (u *User) Onboarded() bool {
	return u.Industry != nil && *u.Industry != ""
}

// ValidExperienceLevel reports whether level is one of the accepted values.
func ValidExperienceLevel(level string) bool {
	switch level {
	case ExperienceEntry, ExperienceMid, ExperienceSenior, ExperienceLead:
		return true
	}
	return false
}
