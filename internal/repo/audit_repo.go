// Package repo – the append-only notification audit trail.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/parishlink/go-notify-backend/internal/domain"
)

// InsertAuditEntry appends one dispatch summary row. Rows are write-only from
// the core's perspective: nothing in the dispatch path ever reads them back.
func InsertAuditEntry(ctx context.Context, db *gorm.DB, e *domain.AuditLogEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(e).Error
}
