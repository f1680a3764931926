package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token type constants
const (
	TokenTypeBearer = "bearer"
)

// Claims is the fixed claim set carried by every access token. Parsing into
// a tagged struct instead of a free-form map keeps the claim surface stable.
type Claims struct {
	ClientID string `json:"client_id"`
	Scope    string `json:"scope"`
	Nonce    string `json:"nonce,omitempty"`
	jwt.RegisteredClaims
}

// Result holds a freshly generated token
type Result struct {
	TokenString string
	TokenType   string
	ExpiresAt   time.Time
	Claims      *Claims
}

// ValidationResult holds the outcome of a successful token validation
type ValidationResult struct {
	UserID    string
	ClientID  string
	Scopes    string
	Nonce     string
	ExpiresAt time.Time
	Claims    *Claims
}
