package models

import "time"

// RevokedToken is one entry in the revocation ledger. Tokens are stored as
// SHA256 hashes; ExpiresAt mirrors the token's own expiry so the ledger can
// be pruned once an entry could no longer verify anyway.
type RevokedToken struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	TokenHash string `gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (RevokedToken) TableName() string {
	return "revoked_tokens"
}
