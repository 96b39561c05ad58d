package Models

import (
	"math"
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Profile is a tenant account. Everything else is scoped to one profile.
type Profile struct {
	Base
	Email           string     `gorm:"uniqueIndex;size:191;not null" json:"email"`
	PasswordHash    []byte     `json:"-"`
	FullName        string     `json:"full_name"`
	Mobile          string     `json:"mobile"`
	MobileSecondary string     `json:"mobile_secondary"`
	CountryCode     string     `json:"country_code"`
	ProfilePicture  string     `json:"profile_picture"`
	Role            string     `gorm:"size:20" json:"role"`
	TrialExpiresAt  *time.Time `json:"trial_expires_at"`
	IsBlocked       bool       `json:"is_blocked"`
	IsVerified      bool       `json:"is_verified"`
}

// TrialDaysLeft rounds up, so a trial ending later today counts as one day.
func (p Profile) TrialDaysLeft(now time.Time) int {
	if p.TrialExpiresAt == nil || !p.TrialExpiresAt.After(now) {
		return 0
	}
	return int(math.Ceil(p.TrialExpiresAt.Sub(now).Hours() / 24))
}

// DisplayName falls back to the email when no name was entered.
func (p Profile) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	return p.Email
}
