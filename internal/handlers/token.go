package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/masasa123jp/docshub/internal/services"
	"github.com/masasa123jp/docshub/internal/token"

	"github.com/gin-gonic/gin"
)

// TokenHandler serves the token endpoint family: exchange, introspection,
// and revocation.
type TokenHandler struct {
	authzService  *services.AuthorizationService
	clientService *services.ClientService
	tokenService  *services.TokenService
}

func NewTokenHandler(
	as *services.AuthorizationService,
	cs *services.ClientService,
	ts *services.TokenService,
) *TokenHandler {
	return &TokenHandler{
		authzService:  as,
		clientService: cs,
		tokenService:  ts,
	}
}

// Token exchanges an authorization code for an access token (RFC 6749 §4.1.3).
// Client credentials come from the form body or HTTP Basic auth. Every code
// problem surfaces as the single invalid_grant error.
func (h *TokenHandler) Token(c *gin.Context) {
	// Token responses carry credentials and must never be cached.
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")

	if c.PostForm("grant_type") != "authorization_code" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported_grant_type"})
		return
	}

	clientID, clientSecret := h.clientCredentials(c)
	code := c.PostForm("code")
	redirectURI := c.PostForm("redirect_uri")

	// redirect_uri is optional here; when supplied it must match the one the
	// code was issued against.
	if clientID == "" || code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	if _, err := h.clientService.VerifySecret(c, clientID, clientSecret); err != nil {
		c.Header("WWW-Authenticate", `Basic realm="docshub"`)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_client"})
		return
	}

	record, err := h.authzService.RedeemCode(c, code, clientID, redirectURI)
	if err != nil {
		if errors.Is(err, services.ErrInvalidGrant) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_grant"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}

	result, err := h.tokenService.Issue(c, record)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": result.TokenString,
		"token_type":   result.TokenType,
		"expires_in":   int(time.Until(result.ExpiresAt).Seconds()),
		"scope":        record.Scopes,
	})
}

// TokenInfo introspects the bearer token presented in the Authorization
// header. Expired, revoked and malformed tokens all yield the same
// invalid_token answer.
func (h *TokenHandler) TokenInfo(c *gin.Context) {
	tokenString := bearerToken(c)
	if tokenString == "" {
		c.Header("WWW-Authenticate", `Bearer realm="docshub"`)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
		return
	}

	result, err := h.tokenService.Verify(c, tokenString)
	if err != nil {
		// A ledger read failure is not a verdict on the token.
		if !token.IsRejection(err) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "server_error"})
			return
		}
		c.Header("WWW-Authenticate", `Bearer realm="docshub", error="invalid_token"`)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":    result.UserID,
		"client_id":  result.ClientID,
		"scope":      result.Scopes,
		"nonce":      result.Nonce,
		"expires_at": result.ExpiresAt.Unix(),
	})
}

// Revoke adds the submitted token to the revocation ledger. Per RFC 7009 the
// response is 200 regardless of whether the token was live, so the endpoint
// cannot be used to probe token validity.
func (h *TokenHandler) Revoke(c *gin.Context) {
	tokenString := c.PostForm("token")
	if tokenString == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	if err := h.tokenService.Revoke(c, tokenString); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}

	c.Status(http.StatusOK)
}

// clientCredentials pulls client id/secret from HTTP Basic auth or the form
func (h *TokenHandler) clientCredentials(c *gin.Context) (string, string) {
	if id, secret, ok := c.Request.BasicAuth(); ok {
		return id, secret
	}
	return c.PostForm("client_id"), c.PostForm("client_secret")
}

func bearerToken(c *gin.Context) string {
	const prefix = "Bearer "
	header := c.GetHeader("Authorization")
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}
