package store

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/masasa123jp/docshub/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type Store struct {
	db *gorm.DB
}

func New(driver, dsn string) (*Store, error) {
	dialector, err := openDialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	// An in-memory SQLite database exists per connection; a second pooled
	// connection would see an empty schema.
	if driver == "sqlite" && strings.Contains(dsn, ":memory:") {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}

	// Auto migrate
	if err := db.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Session{},
		&models.AuthorizationCode{},
		&models.RevokedToken{},
		&models.Document{},
		&models.AuditLog{},
	); err != nil {
		return nil, err
	}

	store := &Store{db: db}

	// Seed default data
	if err := store.seedData(); err != nil {
		log.Printf("Warning: failed to seed data: %v", err)
	}

	return store, nil
}

// generateRandomPassword generates a random password of specified length
func generateRandomPassword(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	// Use base64 URL encoding to get a safe, printable password
	return base64.URLEncoding.EncodeToString(bytes)[:length], nil
}

func (s *Store) seedData() error {
	// Create default admin user if no users exist
	var userCount int64
	s.db.Model(&models.User{}).Count(&userCount)
	if userCount == 0 {
		password, err := generateRandomPassword(16)
		if err != nil {
			return err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		user := &models.User{
			ID:           uuid.New().String(),
			Username:     "admin",
			Email:        "admin@localhost",
			PasswordHash: string(hash),
			Role:         "admin",
			IsActive:     true,
		}
		if err := s.db.Create(user).Error; err != nil {
			return err
		}
		log.Printf("Created default user: admin / %s (role: admin)", password)
	}

	return nil
}

// User operations

func (s *Store) CreateUser(user *models.User) error {
	return s.db.Create(user).Error
}

func (s *Store) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) UpdateUser(user *models.User) error {
	return s.db.Save(user).Error
}

// Client operations

func (s *Store) CreateClient(client *models.Client) error {
	return s.db.Create(client).Error
}

func (s *Store) GetClient(clientID string) (*models.Client, error) {
	var client models.Client
	if err := s.db.Where("client_id = ?", clientID).First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (s *Store) ListClientsByOwner(ownerID string) ([]models.Client, error) {
	var clients []models.Client
	if err := s.db.Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (s *Store) UpdateClient(client *models.Client) error {
	return s.db.Save(client).Error
}

// Session operations

func (s *Store) CreateSession(session *models.Session) error {
	return s.db.Create(session).Error
}

func (s *Store) GetSession(sid string) (*models.Session, error) {
	var session models.Session
	if err := s.db.Where("sid = ?", sid).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteSession removes the session row. Deleting an absent session is not
// an error; logout is idempotent.
func (s *Store) DeleteSession(sid string) error {
	return s.db.Where("sid = ?", sid).Delete(&models.Session{}).Error
}

func (s *Store) DeleteSessionsByUserID(userID string) error {
	return s.db.Where("user_id = ?", userID).Delete(&models.Session{}).Error
}

func (s *Store) DeleteExpiredSessions() error {
	return s.db.Where("expires_at < ?", time.Now()).Delete(&models.Session{}).Error
}

// Authorization code operations

func (s *Store) CreateAuthorizationCode(code *models.AuthorizationCode) error {
	return s.db.Create(code).Error
}

func (s *Store) GetAuthorizationCodeByHash(codeHash string) (*models.AuthorizationCode, error) {
	var code models.AuthorizationCode
	if err := s.db.Where("code_hash = ?", codeHash).First(&code).Error; err != nil {
		return nil, err
	}
	return &code, nil
}

// ConsumeAuthorizationCode deletes the code row keyed by hash. The single
// conditional DELETE is the arbiter under concurrency: when two exchanges
// race, exactly one delete affects a row and the loser gets ErrCodeConsumed.
func (s *Store) ConsumeAuthorizationCode(codeHash string) error {
	result := s.db.Where("code_hash = ?", codeHash).Delete(&models.AuthorizationCode{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCodeConsumed
	}
	return nil
}

func (s *Store) DeleteExpiredAuthorizationCodes() error {
	return s.db.Where("expires_at < ?", time.Now()).Delete(&models.AuthorizationCode{}).Error
}

// Revocation ledger operations

// RevokeToken inserts the token hash into the revocation ledger. Revoking a
// token twice is a no-op (insert-or-ignore on the unique hash), so revocation
// stays idempotent under concurrent calls.
func (s *Store) RevokeToken(tokenHash string, expiresAt time.Time) error {
	entry := &models.RevokedToken{
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
	}
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(entry).Error
}

func (s *Store) IsTokenRevoked(tokenHash string) (bool, error) {
	var entry models.RevokedToken
	err := s.db.Where("token_hash = ?", tokenHash).First(&entry).Error
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}

// DeleteExpiredRevokedTokens prunes ledger entries whose tokens could no
// longer verify anyway.
func (s *Store) DeleteExpiredRevokedTokens() error {
	return s.db.Where("expires_at < ?", time.Now()).Delete(&models.RevokedToken{}).Error
}

// Document operations

func (s *Store) CreateDocument(doc *models.Document) error {
	return s.db.Create(doc).Error
}

func (s *Store) GetDocument(id uint, ownerID string) (*models.Document, error) {
	var doc models.Document
	if err := s.db.Where("id = ? AND owner_id = ?", id, ownerID).First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *Store) ListDocumentsByOwner(
	ownerID string,
	params PaginationParams,
) ([]models.Document, PaginationResult, error) {
	query := s.db.Model(&models.Document{}).Where("owner_id = ?", ownerID)
	if params.Search != "" {
		query = query.Where("title LIKE ?", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, PaginationResult{}, err
	}

	pagination := CalculatePagination(total, params.Page, params.PageSize)

	var docs []models.Document
	err := query.Order("updated_at DESC").
		Offset((pagination.CurrentPage - 1) * pagination.PageSize).
		Limit(pagination.PageSize).
		Find(&docs).Error
	if err != nil {
		return nil, PaginationResult{}, err
	}

	return docs, pagination, nil
}

func (s *Store) UpdateDocument(doc *models.Document) error {
	return s.db.Save(doc).Error
}

func (s *Store) DeleteDocument(id uint, ownerID string) error {
	result := s.db.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&models.Document{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountActiveSessions returns the number of sessions that have not expired
func (s *Store) CountActiveSessions() (int64, error) {
	var count int64
	err := s.db.Model(&models.Session{}).
		Where("expires_at > ?", time.Now()).
		Count(&count).Error
	return count, err
}

// CountActiveClients returns the number of active registered clients
func (s *Store) CountActiveClients() (int64, error) {
	var count int64
	err := s.db.Model(&models.Client{}).
		Where("is_active = ?", true).
		Count(&count).Error
	return count, err
}

// Audit log operations

func (s *Store) CreateAuditLog(entry *models.AuditLog) error {
	return s.db.Create(entry).Error
}

// CreateAuditLogBatch writes a batch of audit entries in one insert
func (s *Store) CreateAuditLogBatch(entries []*models.AuditLog) error {
	if len(entries) == 0 {
		return nil
	}
	return s.db.Create(entries).Error
}

// DeleteOldAuditLogs deletes entries older than the cutoff and returns the count
func (s *Store) DeleteOldAuditLogs(cutoff time.Time) (int64, error) {
	result := s.db.Where("event_time < ?", cutoff).Delete(&models.AuditLog{})
	return result.RowsAffected, result.Error
}

// ListAuditLogs returns audit entries matching the filters, newest first.
func (s *Store) ListAuditLogs(
	filters AuditLogFilters,
	params PaginationParams,
) ([]models.AuditLog, PaginationResult, error) {
	query := s.buildAuditQuery(filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, PaginationResult{}, err
	}

	pagination := CalculatePagination(total, params.Page, params.PageSize)

	var logs []models.AuditLog
	err := query.Order("event_time DESC").
		Offset((pagination.CurrentPage - 1) * pagination.PageSize).
		Limit(pagination.PageSize).
		Find(&logs).Error
	if err != nil {
		return nil, PaginationResult{}, err
	}

	return logs, pagination, nil
}

func (s *Store) buildAuditQuery(filters AuditLogFilters) *gorm.DB {
	query := s.db.Model(&models.AuditLog{})

	if filters.EventType != "" {
		query = query.Where("event_type = ?", filters.EventType)
	}
	if filters.ActorUserID != "" {
		query = query.Where("actor_user_id = ?", filters.ActorUserID)
	}
	if filters.ResourceType != "" {
		query = query.Where("resource_type = ?", filters.ResourceType)
	}
	if filters.ResourceID != "" {
		query = query.Where("resource_id = ?", filters.ResourceID)
	}
	if filters.Severity != "" {
		query = query.Where("severity = ?", filters.Severity)
	}
	if filters.Success != nil {
		query = query.Where("success = ?", *filters.Success)
	}
	if !filters.StartTime.IsZero() {
		query = query.Where("event_time >= ?", filters.StartTime)
	}
	if !filters.EndTime.IsZero() {
		query = query.Where("event_time <= ?", filters.EndTime)
	}
	if filters.ActorIP != "" {
		query = query.Where("actor_ip = ?", filters.ActorIP)
	}
	if filters.Search != "" {
		like := "%" + filters.Search + "%"
		query = query.Where("action LIKE ? OR actor_username LIKE ?", like, like)
	}

	return query
}

// GetAuditLogStats aggregates counts over the entries matching the filters.
func (s *Store) GetAuditLogStats(filters AuditLogFilters) (*AuditLogStats, error) {
	stats := &AuditLogStats{
		EventsByType:     make(map[models.EventType]int64),
		EventsBySeverity: make(map[models.EventSeverity]int64),
	}

	if err := s.buildAuditQuery(filters).Count(&stats.TotalEvents).Error; err != nil {
		return nil, err
	}

	type typeCount struct {
		EventType models.EventType
		Count     int64
	}
	var byType []typeCount
	if err := s.buildAuditQuery(filters).
		Select("event_type, COUNT(*) as count").
		Group("event_type").
		Scan(&byType).Error; err != nil {
		return nil, err
	}
	for _, tc := range byType {
		stats.EventsByType[tc.EventType] = tc.Count
	}

	type severityCount struct {
		Severity models.EventSeverity
		Count    int64
	}
	var bySeverity []severityCount
	if err := s.buildAuditQuery(filters).
		Select("severity, COUNT(*) as count").
		Group("severity").
		Scan(&bySeverity).Error; err != nil {
		return nil, err
	}
	for _, sc := range bySeverity {
		stats.EventsBySeverity[sc.Severity] = sc.Count
	}

	if err := s.buildAuditQuery(filters).
		Where("success = ?", true).
		Count(&stats.SuccessCount).Error; err != nil {
		return nil, err
	}
	stats.FailureCount = stats.TotalEvents - stats.SuccessCount

	return stats, nil
}

// Health checks the database connection
func (s *Store) Health() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// DB returns the underlying GORM database connection (for transactions)
func (s *Store) DB() *gorm.DB {
	return s.db
}

// StorageError reports whether err is an infrastructure failure rather than
// a not-found or conflict condition. Handlers map these to 5xx.
func StorageError(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, gorm.ErrRecordNotFound) &&
		!errors.Is(err, ErrCodeConsumed) &&
		!errors.Is(err, ErrUsernameConflict) &&
		!errors.Is(err, ErrEmailConflict)
}
