package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/masasa123jp/docshub/internal/middleware"
	"github.com/masasa123jp/docshub/internal/services"
	"github.com/masasa123jp/docshub/internal/store"

	"github.com/gin-gonic/gin"
)

// DocumentHandler serves the bearer-protected document API
type DocumentHandler struct {
	docService *services.DocumentService
}

func NewDocumentHandler(ds *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{docService: ds}
}

type documentRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (h *DocumentHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req documentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	doc, err := h.docService.Create(c, user.ID, req.Title, req.Content)
	if err != nil {
		if errors.Is(err, services.ErrTitleRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create document"})
		return
	}

	c.JSON(http.StatusCreated, doc)
}

func (h *DocumentHandler) Get(c *gin.Context) {
	user := middleware.CurrentUser(c)
	id, ok := documentID(c)
	if !ok {
		return
	}

	doc, err := h.docService.Get(c, user.ID, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return
	}

	c.JSON(http.StatusOK, doc)
}

func (h *DocumentHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	params := store.NewPaginationParams(page, pageSize, c.Query("search"))

	docs, pagination, err := h.docService.List(c, user.ID, params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list documents"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"documents":  docs,
		"pagination": pagination,
	})
}

func (h *DocumentHandler) Update(c *gin.Context) {
	user := middleware.CurrentUser(c)
	id, ok := documentID(c)
	if !ok {
		return
	}

	var req documentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	doc, err := h.docService.Update(c, user.ID, id, req.Title, req.Content)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return
	}

	c.JSON(http.StatusOK, doc)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)
	id, ok := documentID(c)
	if !ok {
		return
	}

	if err := h.docService.Delete(c, user.ID, id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return
	}

	c.Status(http.StatusNoContent)
}

func documentID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document id"})
		return 0, false
	}
	return uint(id), true
}
