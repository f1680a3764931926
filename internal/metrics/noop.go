package metrics

import "time"

// NoopMetrics is a no-operation implementation of Recorder.
// All methods are empty and do nothing, providing zero overhead when metrics are disabled.
type NoopMetrics struct{}

// Ensure NoopMetrics implements Recorder interface at compile time
var _ Recorder = (*NoopMetrics)(nil)

// NewNoopMetrics creates a new no-operation metrics recorder
func NewNoopMetrics() Recorder {
	return &NoopMetrics{}
}

// Authentication - noop implementations
func (n *NoopMetrics) RecordLogin(success bool)              {}
func (n *NoopMetrics) RecordLogout()                         {}
func (n *NoopMetrics) RecordSessionValidation(result string) {}

// Authorization code flow - noop implementations
func (n *NoopMetrics) RecordCodeIssued(success bool)      {}
func (n *NoopMetrics) RecordCodeRedemption(result string) {}

// Tokens - noop implementations
func (n *NoopMetrics) RecordTokenIssued(grantType string, generationTime time.Duration) {}
func (n *NoopMetrics) RecordTokenValidation(result string, duration time.Duration)      {}
func (n *NoopMetrics) RecordTokenRevoked()                                              {}

// Client registry - noop implementations
func (n *NoopMetrics) RecordClientRegistered() {}

// Gauge Setters - noop implementations
func (n *NoopMetrics) SetActiveSessionsCount(count int) {}
func (n *NoopMetrics) SetActiveClientsCount(count int)  {}

// Database Operations - noop implementations
func (n *NoopMetrics) RecordDatabaseQueryError(operation string) {}
