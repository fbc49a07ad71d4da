// Package services – AuditLogger
//
// One summary row is appended per dispatch attempt. Audit writes are strictly
// fire-and-forget: a failed write is logged and never retried, and it never
// fails the notification dispatch it describes.
package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/parishlink/go-notify-backend/internal/domain"
)

// maxErrorSummaryLen bounds the persisted error summary; full error lists
// still reach the caller in the HTTP response.
const maxErrorSummaryLen = 500

// AuditStore is the repository contract for the append-only audit trail.
type AuditStore interface {
	InsertAuditEntry(ctx context.Context, db *gorm.DB, e *domain.AuditLogEntry) error
}

// AuditLogger persists dispatch summaries.
type AuditLogger struct {
	DB    *gorm.DB
	Store AuditStore
}

// NewAuditLogger constructs an AuditLogger over the given store.
func NewAuditLogger(db *gorm.DB, store AuditStore) *AuditLogger {
	return &AuditLogger{DB: db, Store: store}
}

// Record appends one dispatch summary. It never returns an error; failures
// are logged at warn and swallowed.
func (a *AuditLogger) Record(ctx context.Context, tenantID, notificationType string, recipients, sent, failed int, errs []string) {
	summary := strings.Join(errs, "; ")
	if len(summary) > maxErrorSummaryLen {
		summary = summary[:maxErrorSummaryLen]
	}
	entry := &domain.AuditLogEntry{
		TenantID:         tenantID,
		NotificationType: notificationType,
		RecipientCount:   recipients,
		SentCount:        sent,
		FailedCount:      failed,
		ErrorSummary:     summary,
	}
	if err := a.Store.InsertAuditEntry(ctx, a.DB, entry); err != nil {
		log.Warn().
			Err(err).
			Str("tenant_id", tenantID).
			Str("notification_type", notificationType).
			Msg("audit write failed")
	}
}
