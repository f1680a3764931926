package models

import (
	"encoding/base32"
	"time"

	"github.com/masasa123jp/docshub/internal/util"

	"golang.org/x/crypto/bcrypt"
)

// Base32 characters, but lowercased.
const lowerBase32Chars = "abcdefghijklmnopqrstuvwxyz234567"

// base32 encoder that uses lowered characters without padding.
var base32Lower = base32.NewEncoding(lowerBase32Chars).WithPadding(base32.NoPadding)

// Client is a registered OAuth 2.0 relying application. The secret is never
// stored in plaintext; only the bcrypt digest survives registration.
type Client struct {
	ID               int64  `gorm:"primaryKey;autoIncrement"`
	ClientID         string `gorm:"uniqueIndex;not null"`
	ClientSecretHash string `gorm:"not null"`
	ClientName       string `gorm:"not null"`
	RedirectURI      string `gorm:"not null"` // matched byte-for-byte during authorization
	Scopes           string `gorm:"not null;default:'openid profile'"`
	OwnerID          string `gorm:"not null;index"` // FK → User.ID of the registering user
	IsActive         bool   `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// GenerateClientSecret generates a fresh client secret, stores its bcrypt hash
// on the model, and returns the plaintext. The plaintext is shown exactly once
// at registration and cannot be recovered afterwards.
func (c *Client) GenerateClientSecret() (string, error) {
	rBytes, err := util.CryptoRandomBytes(32)
	if err != nil {
		return "", err
	}
	// Add a prefix to the base32, this is in order to make it easier
	// for code scanners to grab sensitive tokens.
	clientSecret := "dh_" + base32Lower.EncodeToString(rBytes)

	hashedSecret, err := bcrypt.GenerateFromPassword([]byte(clientSecret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	c.ClientSecretHash = string(hashedSecret)
	return clientSecret, nil
}

// ValidateClientSecret validates the given secret against the stored hash
func (c *Client) ValidateClientSecret(secret []byte) bool {
	return bcrypt.CompareHashAndPassword([]byte(c.ClientSecretHash), secret) == nil
}

func (Client) TableName() string {
	return "clients"
}
