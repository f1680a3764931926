// Package hubclient is an HTTP client for relying applications that delegate
// authentication to a docshub instance. It wraps the token endpoint family and
// the session validation endpoint with retry and timeout handling.
package hubclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	httpclient "github.com/appleboy/go-httpclient"
	retry "github.com/appleboy/go-httpretry"
)

var (
	// ErrConnection indicates the hub could not be reached
	ErrConnection = errors.New("hubclient: connection failed")
	// ErrInvalidResponse indicates the hub returned an unparseable response
	ErrInvalidResponse = errors.New("hubclient: invalid response")
	// ErrInvalidGrant indicates the authorization code was rejected
	ErrInvalidGrant = errors.New("hubclient: invalid grant")
	// ErrInvalidClient indicates the client credentials were rejected
	ErrInvalidClient = errors.New("hubclient: invalid client credentials")
	// ErrInvalidToken indicates the access token is expired, revoked, or malformed
	ErrInvalidToken = errors.New("hubclient: invalid token")
	// ErrInvalidSession indicates the session ID is unknown or expired
	ErrInvalidSession = errors.New("hubclient: invalid session")
)

const (
	defaultTimeout       = 10 * time.Second
	defaultRetryDelay    = 1 * time.Second
	defaultMaxRetryDelay = 10 * time.Second
)

// Config holds connection settings for a hub instance
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string

	Timeout            time.Duration
	MaxRetries         int
	RetryDelay         time.Duration
	MaxRetryDelay      time.Duration
	InsecureSkipVerify bool
}

// Client talks to a docshub instance on behalf of a relying application
type Client struct {
	config      Config
	retryClient *retry.Client
}

// New creates a hub client with retry support
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("hubclient: BaseURL is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	if cfg.MaxRetryDelay <= 0 {
		cfg.MaxRetryDelay = defaultMaxRetryDelay
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	httpClient, err := httpclient.NewAuthClient(
		httpclient.AuthModeNone,
		"",
		httpclient.WithTimeout(cfg.Timeout),
		httpclient.WithInsecureSkipVerify(cfg.InsecureSkipVerify),
	)
	if err != nil {
		return nil, fmt.Errorf("hubclient: failed to create HTTP client: %w", err)
	}

	retryClient, err := retry.NewRealtimeClient(
		retry.WithHTTPClient(httpClient),
		retry.WithMaxRetries(cfg.MaxRetries),
		retry.WithInitialRetryDelay(cfg.RetryDelay),
		retry.WithMaxRetryDelay(cfg.MaxRetryDelay),
	)
	if err != nil {
		return nil, fmt.Errorf("hubclient: failed to create retry client: %w", err)
	}

	return &Client{config: cfg, retryClient: retryClient}, nil
}

// TokenResponse is the token endpoint success payload
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
}

// TokenInfo describes a verified access token
type TokenInfo struct {
	UserID    string `json:"user_id"`
	ClientID  string `json:"client_id"`
	Scope     string `json:"scope"`
	Nonce     string `json:"nonce,omitempty"`
	ExpiresAt int64  `json:"expires_at"`
}

// SessionInfo describes a valid login session
type SessionInfo struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Exchange redeems an authorization code for an access token. Client
// credentials are sent in the form body.
func (c *Client) Exchange(ctx context.Context, code, redirectURI string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", redirectURI)
	form.Set("client_id", c.config.ClientID)
	form.Set("client_secret", c.config.ClientSecret)

	resp, err := c.retryClient.Post(
		ctx,
		c.config.BaseURL+"/oauth/token",
		retry.WithBody("application/x-www-form-urlencoded", strings.NewReader(form.Encode())),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response", ErrInvalidResponse)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, tokenEndpointError(resp.StatusCode, body)
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("%w: missing access_token", ErrInvalidResponse)
	}

	return &tokenResp, nil
}

// Verify introspects an access token via the tokeninfo endpoint
func (c *Client) Verify(ctx context.Context, accessToken string) (*TokenInfo, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.config.BaseURL+"/oauth/tokeninfo", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.retryClient.DoWithContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response", ErrInvalidResponse)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrInvalidToken
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", ErrInvalidResponse, resp.StatusCode)
	}

	var info TokenInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	return &info, nil
}

// Revoke invalidates an access token. The hub answers 200 whether or not the
// token was live, so a nil error only means the request was accepted.
func (c *Client) Revoke(ctx context.Context, accessToken string) error {
	form := url.Values{}
	form.Set("token", accessToken)

	resp, err := c.retryClient.Post(
		ctx,
		c.config.BaseURL+"/oauth/revoke",
		retry.WithBody("application/x-www-form-urlencoded", strings.NewReader(form.Encode())),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: HTTP %d - %s", ErrInvalidResponse, resp.StatusCode,
			truncate(string(body), 200))
	}

	return nil
}

// ValidateSession checks a login session ID against the hub
func (c *Client) ValidateSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	endpoint := c.config.BaseURL + "/auth/validate_session?sid=" + url.QueryEscape(sessionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	resp, err := c.retryClient.DoWithContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response", ErrInvalidResponse)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrInvalidSession
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", ErrInvalidResponse, resp.StatusCode)
	}

	var info SessionInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	return &info, nil
}

// tokenEndpointError maps RFC 6749 error codes to sentinel errors
func tokenEndpointError(statusCode int, body []byte) error {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		switch errResp.Error {
		case "invalid_grant":
			return ErrInvalidGrant
		case "invalid_client":
			return ErrInvalidClient
		}
		if errResp.Error != "" {
			return fmt.Errorf("%w: HTTP %d - %s", ErrInvalidResponse, statusCode, errResp.Error)
		}
	}
	return fmt.Errorf("%w: HTTP %d - %s", ErrInvalidResponse, statusCode,
		truncate(string(body), 200))
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
