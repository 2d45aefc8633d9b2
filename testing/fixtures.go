// Package testing provides test utilities and database setup for testing the onboarding engine
package testing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hirelane/onboarding-engine/models"
	"github.com/hirelane/onboarding-engine/utils"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateAuditEntry creates a single audit row for the given account and action
func (tf *TestFixtures) CreateAuditEntry(accountID int64, action string, success bool) (*models.GateAuditLog, error) {
	entry := &models.GateAuditLog{
		CorrelationID: uuid.New(),
		AccountID:     &accountID,
		Action:        action,
		Success:       &success,
	}

	if err := tf.DB.DB.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to create audit entry: %w", err)
	}
	return entry, nil
}

// CreateStageSequence creates a correlated stage_resolved/redirect_issued pair,
// the shape one guard evaluation leaves behind
func (tf *TestFixtures) CreateStageSequence(accountID int64, stage, fromPath, toPath string) ([]*models.GateAuditLog, error) {
	correlation := uuid.New()

	resolved := &models.GateAuditLog{
		CorrelationID: correlation,
		AccountID:     &accountID,
		Action:        models.AuditActionStageResolved,
		Stage:         stage,
		Path:          utils.ToPtr(fromPath),
		TargetPath:    utils.ToPtr(toPath),
		Success:       utils.ToPtr(true),
	}
	redirect := &models.GateAuditLog{
		CorrelationID: correlation,
		AccountID:     &accountID,
		Action:        models.AuditActionRedirectIssued,
		Stage:         stage,
		Path:          utils.ToPtr(fromPath),
		TargetPath:    utils.ToPtr(toPath),
		Success:       utils.ToPtr(true),
	}

	entries := []*models.GateAuditLog{resolved, redirect}
	for _, entry := range entries {
		if err := tf.DB.DB.Create(entry).Error; err != nil {
			return nil, fmt.Errorf("failed to create %s entry: %w", entry.Action, err)
		}
	}
	return entries, nil
}

// CreateFailedGate creates a gate settlement that failed with the given message
func (tf *TestFixtures) CreateFailedGate(accountID int64, intent models.IntentType, errorMessage string) (*models.GateAuditLog, error) {
	entry := &models.GateAuditLog{
		CorrelationID: uuid.New(),
		AccountID:     &accountID,
		Action:        models.AuditActionGateResolved,
		Detail:        utils.ToPtr(string(intent)),
		Success:       utils.ToPtr(false),
		ErrorMessage:  utils.ToPtr(errorMessage),
	}

	if err := tf.DB.DB.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to create failed gate entry: %w", err)
	}
	return entry, nil
}

// CreateAgedEntry creates an audit row backdated by the given offset
func (tf *TestFixtures) CreateAgedEntry(accountID int64, action string, age time.Duration) (*models.GateAuditLog, error) {
	entry := &models.GateAuditLog{
		CorrelationID: uuid.New(),
		AccountID:     &accountID,
		Action:        action,
		Success:       utils.ToPtr(true),
		CreatedAt:     utils.UTCNow().Add(-age),
	}

	if err := tf.DB.DB.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to create aged audit entry: %w", err)
	}
	return entry, nil
}
