package services

import (
	"context"
	"errors"
	"strings"

	"github.com/masasa123jp/docshub/internal/models"
	"github.com/masasa123jp/docshub/internal/store"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrTitleRequired    = errors.New("title is required")
)

// DocumentService serves the bearer-protected document API. Every operation
// is scoped to the owner taken from the verified token; a document belonging
// to someone else is indistinguishable from one that does not exist.
type DocumentService struct {
	store *store.Store
}

func NewDocumentService(s *store.Store) *DocumentService {
	return &DocumentService{store: s}
}

func (s *DocumentService) Create(
	ctx context.Context,
	ownerID, title, content string,
) (*models.Document, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	doc := &models.Document{
		OwnerID: ownerID,
		Title:   title,
		Content: content,
	}
	if err := s.store.CreateDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *DocumentService) Get(ctx context.Context, ownerID string, id uint) (*models.Document, error) {
	doc, err := s.store.GetDocument(id, ownerID)
	if err != nil {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

func (s *DocumentService) List(
	ctx context.Context,
	ownerID string,
	params store.PaginationParams,
) ([]models.Document, store.PaginationResult, error) {
	return s.store.ListDocumentsByOwner(ownerID, params)
}

func (s *DocumentService) Update(
	ctx context.Context,
	ownerID string,
	id uint,
	title, content string,
) (*models.Document, error) {
	doc, err := s.store.GetDocument(id, ownerID)
	if err != nil {
		return nil, ErrDocumentNotFound
	}

	if title = strings.TrimSpace(title); title != "" {
		doc.Title = title
	}
	doc.Content = content

	if err := s.store.UpdateDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *DocumentService) Delete(ctx context.Context, ownerID string, id uint) error {
	if err := s.store.DeleteDocument(id, ownerID); err != nil {
		return ErrDocumentNotFound
	}
	return nil
}
