// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for device push
// tokens: eligibility lookup, registration upsert, and idempotent revocation.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
//
// Error semantics:
//   - Lookup failures propagate the raw gorm error; callers treat a read
//     failure as fatal to the enclosing dispatch (fail-closed).
//   - RevokeToken never fails on an already-revoked or unknown token; only
//     genuine DB errors are returned, and callers swallow those after logging
//     (revocation is best-effort cleanup).
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/parishlink/go-notify-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ListEligibleTokens returns the device tokens for the given users that are
// deliverable: not revoked, last used within the freshness window, and scoped
// strictly to tenantID. A token registered under another tenant is never
// returned, even when the same physical device holds memberships in both.
func ListEligibleTokens(ctx context.Context, db *gorm.DB, tenantID string, userIDs []string, freshness time.Duration) ([]domain.DeviceToken, error) {
	if len(userIDs) == 0 {
		return []domain.DeviceToken{}, nil
	}
	cutoff := time.Now().UTC().Add(-freshness)

	var out []domain.DeviceToken
	err := db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("user_id IN ?", userIDs).
		Where("revoked_at IS NULL").
		Where("last_used_at >= ?", cutoff).
		Order("created_at asc").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RevokeToken marks a token as revoked by setting revoked_at. Revoking an
// already-revoked or unknown token is a no-op, not an error: the WHERE clause
// only touches live rows, and zero affected rows is success. Tokens are never
// hard-deleted so the audit history stays intact.
func RevokeToken(ctx context.Context, db *gorm.DB, token string) error {
	return db.WithContext(ctx).
		Model(&domain.DeviceToken{}).
		Where("token = ? AND revoked_at IS NULL", token).
		Update("revoked_at", time.Now().UTC()).Error
}

// UpsertDeviceToken registers or refreshes a device token for a user within a
// tenant. An existing row for the same token string has its owner, platform,
// and last_used_at refreshed and any prior revocation cleared (the device
// re-registered, so it is live again).
func UpsertDeviceToken(ctx context.Context, db *gorm.DB, tenantID, userID, token string, platform domain.Platform) (*domain.DeviceToken, error) {
	now := time.Now().UTC()
	row := &domain.DeviceToken{
		ID:         uuid.NewString(),
		TenantID:   tenantID,
		UserID:     userID,
		Token:      token,
		Platform:   platform,
		LastUsedAt: now,
		CreatedAt:  now,
	}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "token"}},
			DoUpdates: clause.Assignments(map[string]any{
				"tenant_id":    tenantID,
				"user_id":      userID,
				"platform":     platform,
				"last_used_at": now,
				"revoked_at":   nil,
			}),
		}).
		Create(row).Error
	if err != nil {
		return nil, err
	}
	return row, nil
}

// TouchToken refreshes last_used_at for a live token. Used when the client
// reports the token as still active; unknown or revoked tokens are ignored.
func TouchToken(ctx context.Context, db *gorm.DB, token string) error {
	return db.WithContext(ctx).
		Model(&domain.DeviceToken{}).
		Where("token = ? AND revoked_at IS NULL", token).
		Update("last_used_at", time.Now().UTC()).Error
}
