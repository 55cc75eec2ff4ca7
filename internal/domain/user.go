package domain

import "time"

// User is the domain entity for a user account.
// RefreshToken is nil when no session is live (never logged in, or logged out).
type User struct {
	ID            int64
	Username      string
	FullName      string
	Email         string
	PasswordHash  string
	AvatarURL     string
	CoverImageURL string
	RefreshToken  *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Sanitized returns a copy without the password hash and refresh token.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	u.RefreshToken = nil
	return u
}

// ChannelProfile is the public read model of a user as a channel.
type ChannelProfile struct {
	ID                int64
	Username          string
	FullName          string
	Email             string
	AvatarURL         string
	CoverImageURL     string
	SubscribersCount  int64
	SubscribedToCount int64
	IsSubscribed      bool
}
