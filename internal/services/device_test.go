package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/parishlink/go-notify-backend/internal/domain"
)

type fakeDeviceStore struct {
	upserts []domain.DeviceToken
	revoked []string

	upsertErr error
	revokeErr error
}

func (f *fakeDeviceStore) UpsertDeviceToken(ctx context.Context, db *gorm.DB, tenantID, userID, token string, platform domain.Platform) (*domain.DeviceToken, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	dt := domain.DeviceToken{TenantID: tenantID, UserID: userID, Token: token, Platform: platform}
	f.upserts = append(f.upserts, dt)
	return &dt, nil
}

func (f *fakeDeviceStore) RevokeToken(ctx context.Context, db *gorm.DB, token string) error {
	if f.revokeErr != nil {
		return f.revokeErr
	}
	f.revoked = append(f.revoked, token)
	return nil
}

func TestRegister_UpsertsToken(t *testing.T) {
	store := &fakeDeviceStore{}
	svc := NewDeviceService(nil, store)

	if err := svc.Register(context.Background(), "t1", "u1", "ExponentPushToken[abc]", "ios"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if len(store.upserts) != 1 {
		t.Fatalf("want 1 upsert, got %d", len(store.upserts))
	}
	got := store.upserts[0]
	if got.TenantID != "t1" || got.UserID != "u1" || got.Token != "ExponentPushToken[abc]" || got.Platform != domain.PlatformIOS {
		t.Fatalf("upsert fields wrong: %+v", got)
	}
}

func TestRegister_RejectsUnknownPlatform(t *testing.T) {
	store := &fakeDeviceStore{}
	svc := NewDeviceService(nil, store)

	for _, p := range []string{"", "web", "IOS", "Android"} {
		if err := svc.Register(context.Background(), "t1", "u1", "tok", p); !errors.Is(err, ErrBadPlatform) {
			t.Fatalf("platform %q: want ErrBadPlatform, got %v", p, err)
		}
	}
	if len(store.upserts) != 0 {
		t.Fatalf("invalid platform must not reach the store")
	}
}

func TestRegister_PropagatesStoreError(t *testing.T) {
	store := &fakeDeviceStore{upsertErr: errors.New("db down")}
	svc := NewDeviceService(nil, store)

	if err := svc.Register(context.Background(), "t1", "u1", "tok", "android"); err == nil {
		t.Fatalf("want store error surfaced")
	}
}

func TestRevoke_Delegates(t *testing.T) {
	store := &fakeDeviceStore{}
	svc := NewDeviceService(nil, store)

	if err := svc.Revoke(context.Background(), "tok-1"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if len(store.revoked) != 1 || store.revoked[0] != "tok-1" {
		t.Fatalf("revocation not delegated: %v", store.revoked)
	}
}
