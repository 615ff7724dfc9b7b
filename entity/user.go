package entity

import (
	"strings"
	"time"
)

// Account is the credential record used by the local identity gateway.
type Account struct {
	ID           string    `json:"id" bson:"_id"`
	DisplayName  string    `json:"display_name" bson:"display_name"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Disabled     bool      `json:"disabled" bson:"disabled"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

func (a *Account) Identity() *Identity {
	return &Identity{
		ID:          a.ID,
		DisplayName: a.DisplayName,
		Email:       a.Email,
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Session is an authenticated browser session. Portal, FranchisorID and
// SchoolID hold the last validated access selection.
type Session struct {
	Token        string    `json:"-" bson:"_id"`
	UserID       string    `json:"user_id" bson:"user_id"`
	Email        string    `json:"email" bson:"email"`
	DisplayName  string    `json:"display_name" bson:"display_name"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	ExpiresAt    time.Time `json:"expires_at" bson:"expires_at"`
	Portal       Portal    `json:"portal,omitempty" bson:"portal,omitempty"`
	FranchisorID string    `json:"franchisor_id,omitempty" bson:"franchisor_id,omitempty"`
	SchoolID     string    `json:"school_id,omitempty" bson:"school_id,omitempty"`
}

func (s *Session) Identity() *Identity {
	return &Identity{
		ID:          s.UserID,
		DisplayName: s.DisplayName,
		Email:       s.Email,
	}
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// LoginAttempts tracks consecutive failures for one email address.
type LoginAttempts struct {
	Email       string    `bson:"_id"`
	Failures    int       `bson:"failures"`
	LockedUntil time.Time `bson:"locked_until"`
}
