package metrics

import "time"

// Recorder defines the interface for recording application metrics.
// Handlers and services depend on this interface so metrics can be disabled
// (NoopMetrics) without touching call sites.
type Recorder interface {
	// Authentication
	RecordLogin(success bool)
	RecordLogout()
	RecordSessionValidation(result string) // valid, expired, invalid

	// Authorization code flow
	RecordCodeIssued(success bool)
	RecordCodeRedemption(result string) // success, invalid, consumed

	// Tokens
	RecordTokenIssued(grantType string, generationTime time.Duration)
	RecordTokenValidation(result string, duration time.Duration) // valid, invalid, expired, revoked
	RecordTokenRevoked()

	// Client registry
	RecordClientRegistered()

	// Gauges updated periodically from the database
	SetActiveSessionsCount(count int)
	SetActiveClientsCount(count int)

	// Database
	RecordDatabaseQueryError(operation string)
}
