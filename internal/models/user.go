package models

import "time"

// User represents a registered player.
// The primary key is the nickname, lowercased and whitespace-trimmed at
// registration time; it is also the identifier persisted on messages,
// lobby memberships and rating markers.
type User struct {
	Nickname     string `gorm:"primaryKey;size:64"`
	PasswordHash string `gorm:"size:255;not null"`
	Avatar       string `gorm:"not null;default:'person.fill'"`

	// Reputation aggregates. ReputationScore is the derived average
	// TotalRating/RatingCount and is meaningless while RatingCount is zero.
	TotalRating     float64 `gorm:"not null;default:0"`
	RatingCount     int     `gorm:"not null;default:0"`
	ReputationScore float64 `gorm:"not null;default:0"`

	// ReportCount resets to zero whenever a ban is issued.
	ReportCount int `gorm:"not null;default:0"`
	BannedUntil *time.Time

	IsOnline bool `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasReputation reports whether the user has been rated at least once.
// An unrated user's score is displayed as "unknown", never as 0.
func (u *User) HasReputation() bool {
	return u.RatingCount > 0
}

// IsBanned reports whether a matchmaking ban is currently in effect.
func (u *User) IsBanned(now time.Time) bool {
	return u.BannedUntil != nil && now.Before(*u.BannedUntil)
}
