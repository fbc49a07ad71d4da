// Package services – DeviceService
//
// Thin application service over the device-token repository. Registration is
// an upsert keyed by the token string; revocation is idempotent.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/parishlink/go-notify-backend/internal/domain"
)

// ErrBadPlatform is returned when a registration names an unknown platform.
var ErrBadPlatform = errors.New("platform must be ios or android")

// DeviceStore is the repository contract for device-token writes.
type DeviceStore interface {
	UpsertDeviceToken(ctx context.Context, db *gorm.DB, tenantID, userID, token string, platform domain.Platform) (*domain.DeviceToken, error)
	RevokeToken(ctx context.Context, db *gorm.DB, token string) error
}

// DeviceService manages push device registrations.
type DeviceService struct {
	DB    *gorm.DB
	Store DeviceStore
}

// NewDeviceService constructs a DeviceService over the given store.
func NewDeviceService(db *gorm.DB, store DeviceStore) *DeviceService {
	return &DeviceService{DB: db, Store: store}
}

// Register upserts a push token. Re-registering refreshes the freshness
// window and clears any previous revocation.
func (s *DeviceService) Register(ctx context.Context, tenantID, userID, token, platform string) error {
	p := domain.Platform(platform)
	if p != domain.PlatformIOS && p != domain.PlatformAndroid {
		return ErrBadPlatform
	}
	_, err := s.Store.UpsertDeviceToken(ctx, s.DB, tenantID, userID, token, p)
	return err
}

// Revoke marks a token ineligible for future delivery. Unknown or already
// revoked tokens are not an error.
func (s *DeviceService) Revoke(ctx context.Context, token string) error {
	return s.Store.RevokeToken(ctx, s.DB, token)
}
