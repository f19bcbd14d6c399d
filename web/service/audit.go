package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dailydiet/daily-diet/database/model"
	"github.com/dailydiet/daily-diet/logger"

	"gorm.io/gorm"
)

const (
	DefaultAuditLimit = 50
	MaxAuditLimit     = 500
)

// AuditLogService handles audit logging
type AuditLogService struct {
	db *gorm.DB
}

func NewAuditLogService(db *gorm.DB) *AuditLogService {
	return &AuditLogService{db: db}
}

// AuditEntry describes one event to record.
type AuditEntry struct {
	UserId     int
	UserName   string
	Action     string
	ResourceId int
	IP         string
	UserAgent  string
}

// LogAction logs an audit action. Failures are logged and returned but never
// meant to fail the request that triggered them.
func (s *AuditLogService) LogAction(ctx context.Context, e AuditEntry) error {
	auditLog := model.AuditLog{
		UserId:     e.UserId,
		UserName:   e.UserName,
		Action:     e.Action,
		ResourceId: e.ResourceId,
		IP:         e.IP,
		UserAgent:  truncate(e.UserAgent, 255),
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.db.WithContext(ctx).Create(&auditLog).Error; err != nil {
		logger.Warningf("Failed to create audit log: user=%d, action=%s, error=%v", e.UserId, e.Action, err)
		return err
	}
	return nil
}

// NormalizeAuditPage returns the limit and offset ListLogs applies: a
// non-positive limit means DefaultAuditLimit, larger ones are capped at
// MaxAuditLimit and a negative offset starts at 0.
func NormalizeAuditPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultAuditLimit
	}
	if limit > MaxAuditLimit {
		limit = MaxAuditLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ListLogs returns a page of audit logs, newest first, and the total count.
func (s *AuditLogService) ListLogs(ctx context.Context, limit, offset int) ([]model.AuditLog, int64, error) {
	limit, offset = NormalizeAuditPage(limit, offset)

	query := s.db.WithContext(ctx).Model(&model.AuditLog{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, internal("count audit logs", err)
	}

	logs := make([]model.AuditLog, 0)
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).
		Error
	if err != nil {
		return nil, 0, internal("list audit logs", err)
	}
	return logs, total, nil
}

// CleanOldLogs removes audit logs older than specified days
func (s *AuditLogService) CleanOldLogs(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, fmt.Errorf("days must be greater than 0")
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	result := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&model.AuditLog{})
	if result.Error != nil {
		return 0, result.Error
	}

	logger.Infof("Cleaned %d old audit logs (older than %d days)", result.RowsAffected, days)
	return result.RowsAffected, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.ToValidUTF8(s[:n], "")
}
