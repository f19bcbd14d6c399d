// Package job holds the cron jobs run by the web server.
package job

import (
	"context"

	"github.com/dailydiet/daily-diet/logger"
	"github.com/dailydiet/daily-diet/util/common"
	"github.com/dailydiet/daily-diet/web/service"
)

// AuditCleanupJob cleans up old audit logs
type AuditCleanupJob struct {
	auditService  *service.AuditLogService
	retentionDays int
}

// NewAuditCleanupJob creates a job keeping retentionDays of audit logs.
func NewAuditCleanupJob(auditService *service.AuditLogService, retentionDays int) *AuditCleanupJob {
	return &AuditCleanupJob{
		auditService:  auditService,
		retentionDays: retentionDays,
	}
}

// Run cleans up old audit logs
func (j *AuditCleanupJob) Run() {
	defer common.Recover("audit cleanup job")
	logger.Debug("Audit cleanup job started")

	n, err := j.auditService.CleanOldLogs(context.Background(), j.retentionDays)
	if err != nil {
		logger.Warning("Failed to clean old audit logs:", err)
		return
	}
	logger.Debugf("Audit cleanup completed (removed: %d, retention: %d days)", n, j.retentionDays)
}
