package repository

import (
	"context"
	"fmt"

	"github.com/hirelane/onboarding-engine/models"
	"gorm.io/gorm"
)

// GateAuditLogRepositoryImpl implements GateAuditLogRepository on Postgres.
type GateAuditLogRepositoryImpl struct {
	db *gorm.DB
}

// NewGateAuditLogRepository creates a new gate audit log repository.
func NewGateAuditLogRepository(db *gorm.DB) GateAuditLogRepository {
	return &GateAuditLogRepositoryImpl{db: db}
}

func (r *GateAuditLogRepositoryImpl) Save(ctx context.Context, entry *models.GateAuditLog) error {
	if err := txOrDB(ctx, r.db).WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to save gate audit entry: %w", err)
	}
	return nil
}

func (r *GateAuditLogRepositoryImpl) ByFilter(ctx context.Context, filter models.GateAuditLogFilter, limit, offset int) ([]*models.GateAuditLog, error) {
	db := txOrDB(ctx, r.db).WithContext(ctx)

	if filter.AccountID != nil {
		db = db.Where("account_id = ?", *filter.AccountID)
	}
	if filter.Action != nil {
		db = db.Where("action = ?", *filter.Action)
	}
	if filter.Success != nil {
		db = db.Where("success = ?", *filter.Success)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at <= ?", *filter.CreatedBefore)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}
	if offset > 0 {
		db = db.Offset(offset)
	}

	var entries []*models.GateAuditLog
	if err := db.Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to query gate audit entries: %w", err)
	}
	return entries, nil
}

func (r *GateAuditLogRepositoryImpl) ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*models.GateAuditLog, error) {
	return r.ByFilter(ctx, models.GateAuditLogFilter{AccountID: &accountID}, limit, offset)
}
