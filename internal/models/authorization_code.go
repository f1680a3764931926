package models

import "time"

// AuthorizationCode stores OAuth 2.0 authorization codes (RFC 6749).
// Codes are short-lived (default 10 minutes) and single-use: redemption
// deletes the row, and the conditional delete decides the winner when
// two exchanges race.
type AuthorizationCode struct {
	ID uint `gorm:"primaryKey;autoIncrement"`

	// Only the SHA256 hash of the plaintext code is stored.
	CodeHash string `gorm:"uniqueIndex;not null"`

	ClientID string `gorm:"not null;index"` // FK → Client.ClientID
	UserID   string `gorm:"not null;index"` // FK → User.ID

	RedirectURI string `gorm:"not null"`
	Scopes      string `gorm:"not null"`
	Nonce       string // echoed into issued tokens for replay detection

	ExpiresAt time.Time
	CreatedAt time.Time
}

func (a *AuthorizationCode) IsExpired() bool {
	return time.Now().After(a.ExpiresAt)
}

func (AuthorizationCode) TableName() string {
	return "authorization_codes"
}
