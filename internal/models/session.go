package models

import "time"

// Session is a server-side login session. The SID is 32 random bytes in hex,
// carried opaquely in the session_id cookie; expiry is enforced lazily on
// validation.
type Session struct {
	SID       string `gorm:"column:sid;primaryKey;size:64"`
	UserID    string `gorm:"not null;index"` // FK → User.ID
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

func (Session) TableName() string {
	return "sessions"
}
