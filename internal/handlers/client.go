package handlers

import (
	"errors"
	"net/http"

	"github.com/masasa123jp/docshub/internal/middleware"
	"github.com/masasa123jp/docshub/internal/services"

	"github.com/gin-gonic/gin"
)

// ClientHandler manages the relying-application registry. All endpoints
// require a login session; the acting user becomes (or must be) the owner.
type ClientHandler struct {
	clientService *services.ClientService
}

func NewClientHandler(cs *services.ClientService) *ClientHandler {
	return &ClientHandler{clientService: cs}
}

type registerClientRequest struct {
	ClientName  string `json:"client_name"  binding:"required"`
	RedirectURI string `json:"redirect_uri" binding:"required"`
	Scopes      string `json:"scopes"`
}

// Register creates a new client. The response carries the plaintext secret
// exactly once.
func (h *ClientHandler) Register(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req registerClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "client_name and redirect_uri are required"})
		return
	}

	resp, err := h.clientService.Register(c, user.ID, services.CreateClientRequest{
		ClientName:  req.ClientName,
		RedirectURI: req.RedirectURI,
		Scopes:      req.Scopes,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRedirectURI),
			errors.Is(err, services.ErrClientNameRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register client"})
		}
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// List returns the caller's registered clients, without secrets
func (h *ClientHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)

	clients, err := h.clientService.ListByOwner(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list clients"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"clients": clients})
}

// Deactivate disables one of the caller's clients
func (h *ClientHandler) Deactivate(c *gin.Context) {
	user := middleware.CurrentUser(c)
	clientID := c.Param("client_id")

	if err := h.clientService.Deactivate(c, user.ID, clientID); err != nil {
		if errors.Is(err, services.ErrClientNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to deactivate client"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}

// RotateSecret regenerates the client secret and returns the new plaintext once
func (h *ClientHandler) RotateSecret(c *gin.Context) {
	user := middleware.CurrentUser(c)
	clientID := c.Param("client_id")

	resp, err := h.clientService.RotateSecret(c, user.ID, clientID)
	if err != nil {
		if errors.Is(err, services.ErrClientNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to rotate secret"})
		return
	}

	c.JSON(http.StatusOK, resp)
}
