package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/masasa123jp/docshub/internal/middleware"
	"github.com/masasa123jp/docshub/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Flow-stash session keys. The validated authorization request is parked in
// the signed flow cookie between the GET (consent page) and the POST
// (decision), so the decision cannot be replayed against altered parameters.
const (
	stashClientID    = "authz_client_id"
	stashRedirectURI = "authz_redirect_uri"
	stashScope       = "authz_scope"
	stashState       = "authz_state"
	stashNonce       = "authz_nonce"
)

// AuthorizationHandler drives the authorization code flow: parameter
// validation, the consent page, and the final code-bearing redirect.
type AuthorizationHandler struct {
	authzService *services.AuthorizationService
}

func NewAuthorizationHandler(as *services.AuthorizationService) *AuthorizationHandler {
	return &AuthorizationHandler{authzService: as}
}

// AuthorizePage validates the authorization request and renders the consent
// page. Runs behind RequireSession, so an unauthenticated user has already
// been bounced to /login with this URL as the return target.
func (h *AuthorizationHandler) AuthorizePage(c *gin.Context) {
	user := middleware.CurrentUser(c)

	req, err := h.authzService.ValidateAuthorizationRequest(
		c,
		c.Query("response_type"),
		c.Query("client_id"),
		c.Query("redirect_uri"),
		c.Query("scope"),
		c.Query("state"),
		c.Query("nonce"),
	)
	if err != nil {
		h.renderValidationError(c, err, c.Query("redirect_uri"), c.Query("state"))
		return
	}

	session := sessions.Default(c)
	session.Set(stashClientID, req.Client.ClientID)
	session.Set(stashRedirectURI, req.RedirectURI)
	session.Set(stashScope, req.Scopes)
	session.Set(stashState, req.State)
	session.Set(stashNonce, req.Nonce)
	if err := session.Save(); err != nil {
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{
			"Error": "Failed to prepare authorization request",
		})
		return
	}

	c.HTML(http.StatusOK, "consent.html", gin.H{
		"CSRFToken":  middleware.GetCSRFToken(c),
		"ClientName": req.Client.ClientName,
		"Username":   user.Username,
		"Scopes":     strings.Fields(req.Scopes),
	})
}

// Decide handles the consent form. Approval issues a single-use code and
// redirects with code+state; denial redirects with error=access_denied. The
// state is echoed in both cases.
func (h *AuthorizationHandler) Decide(c *gin.Context) {
	user := middleware.CurrentUser(c)

	session := sessions.Default(c)
	stashed, ok := h.popStash(session)
	if !ok {
		c.HTML(http.StatusBadRequest, "error.html", gin.H{
			"Error": "No authorization request in progress",
		})
		return
	}

	// Re-validate against the registry: the client may have been deactivated
	// or re-registered while the consent page was open.
	req, err := h.authzService.ValidateAuthorizationRequest(
		c, "code",
		stashed.clientID, stashed.redirectURI, stashed.scope,
		stashed.state, stashed.nonce,
	)
	if err != nil {
		h.renderValidationError(c, err, stashed.redirectURI, stashed.state)
		return
	}

	if c.PostForm("decision") != "approve" {
		h.authzService.RecordDenied(c, req, user.ID)
		c.Redirect(http.StatusFound, redirectWith(req.RedirectURI, map[string]string{
			"error": "access_denied",
			"state": req.State,
		}))
		return
	}

	code, err := h.authzService.IssueCode(c, req, user.ID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{
			"Error": "Failed to issue authorization code",
		})
		return
	}

	c.Redirect(http.StatusFound, redirectWith(req.RedirectURI, map[string]string{
		"code":  code,
		"state": req.State,
	}))
}

type authorizeStash struct {
	clientID    string
	redirectURI string
	scope       string
	state       string
	nonce       string
}

// popStash reads and clears the parked authorization request. A missing
// client_id means there is no flow in progress.
func (h *AuthorizationHandler) popStash(session sessions.Session) (authorizeStash, bool) {
	get := func(key string) string {
		if v, ok := session.Get(key).(string); ok {
			return v
		}
		return ""
	}

	stash := authorizeStash{
		clientID:    get(stashClientID),
		redirectURI: get(stashRedirectURI),
		scope:       get(stashScope),
		state:       get(stashState),
		nonce:       get(stashNonce),
	}

	for _, key := range []string{stashClientID, stashRedirectURI, stashScope, stashState, stashNonce} {
		session.Delete(key)
	}
	_ = session.Save()

	return stash, stash.clientID != ""
}

// renderValidationError maps validation failures to responses. Client and
// redirect failures always render locally: redirecting to an unverified URI
// would hand the flow to an attacker. Later failures may redirect because
// the registration binding has already been checked.
func (h *AuthorizationHandler) renderValidationError(
	c *gin.Context,
	err error,
	redirectURI, state string,
) {
	switch {
	case errors.Is(err, services.ErrInvalidAuthRequest):
		c.HTML(http.StatusBadRequest, "error.html", gin.H{
			"Error": "The authorization request is missing required parameters",
		})
	case errors.Is(err, services.ErrUnauthorizedClient):
		c.HTML(http.StatusBadRequest, "error.html", gin.H{
			"Error": "Unknown or inactive application",
		})
	case errors.Is(err, services.ErrRedirectURIMismatch):
		c.HTML(http.StatusBadRequest, "error.html", gin.H{
			"Error": "The redirect URI does not match this application's registration",
		})
	case errors.Is(err, services.ErrUnsupportedResponseType):
		c.Redirect(http.StatusFound, redirectWith(redirectURI, map[string]string{
			"error": "unsupported_response_type",
			"state": state,
		}))
	case errors.Is(err, services.ErrInvalidScope):
		c.Redirect(http.StatusFound, redirectWith(redirectURI, map[string]string{
			"error": "invalid_scope",
			"state": state,
		}))
	default:
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{
			"Error": "Authorization request failed",
		})
	}
}

// redirectWith appends the given query parameters to the redirect URI
func redirectWith(redirectURI string, params map[string]string) string {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return redirectURI
	}
	q := u.Query()
	for key, value := range params {
		if value != "" {
			q.Set(key, value)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}
