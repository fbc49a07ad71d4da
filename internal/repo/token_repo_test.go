package repo

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/parishlink/go-notify-backend/internal/domain"
)

// testDB opens a fresh migrated SQLite database in a per-test temp dir.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedToken(t *testing.T, db *gorm.DB, tenantID, userID, token string, lastUsed time.Time, revoked *time.Time) {
	t.Helper()
	row := domain.DeviceToken{
		ID:         uuid.NewString(),
		TenantID:   tenantID,
		UserID:     userID,
		Token:      token,
		Platform:   domain.PlatformIOS,
		LastUsedAt: lastUsed,
		RevokedAt:  revoked,
		CreatedAt:  time.Now().UTC(),
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("seed token %s: %v", token, err)
	}
}

func tokenStrings(ts []domain.DeviceToken) map[string]bool {
	out := make(map[string]bool, len(ts))
	for _, tk := range ts {
		out[tk.Token] = true
	}
	return out
}

func TestListEligibleTokens_FiltersStaleRevokedAndForeign(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	now := time.Now().UTC()
	freshness := 90 * 24 * time.Hour

	revokedAt := now.Add(-time.Hour)
	seedToken(t, db, "t1", "u1", "tok-fresh", now.Add(-time.Hour), nil)
	seedToken(t, db, "t1", "u1", "tok-stale", now.Add(-freshness-time.Hour), nil)
	seedToken(t, db, "t1", "u1", "tok-revoked", now.Add(-time.Hour), &revokedAt)
	seedToken(t, db, "t2", "u1", "tok-other-tenant", now.Add(-time.Hour), nil)
	seedToken(t, db, "t1", "u2", "tok-other-user", now.Add(-time.Hour), nil)

	got, err := ListEligibleTokens(ctx, db, "t1", []string{"u1"}, freshness)
	if err != nil {
		t.Fatalf("ListEligibleTokens: %v", err)
	}
	set := tokenStrings(got)
	if len(set) != 1 || !set["tok-fresh"] {
		t.Fatalf("eligibility filter wrong: %v", set)
	}
}

func TestListEligibleTokens_EmptyUserList(t *testing.T) {
	db := testDB(t)
	got, err := ListEligibleTokens(context.Background(), db, "t1", nil, time.Hour)
	if err != nil {
		t.Fatalf("ListEligibleTokens: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("want empty result, got %v", got)
	}
}

func TestRevokeToken_Idempotent(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	seedToken(t, db, "t1", "u1", "tok-1", time.Now().UTC(), nil)

	if err := RevokeToken(ctx, db, "tok-1"); err != nil {
		t.Fatalf("first revoke: %v", err)
	}
	if err := RevokeToken(ctx, db, "tok-1"); err != nil {
		t.Fatalf("second revoke must be a no-op: %v", err)
	}
	if err := RevokeToken(ctx, db, "tok-unknown"); err != nil {
		t.Fatalf("unknown token must be a no-op: %v", err)
	}

	got, err := ListEligibleTokens(ctx, db, "t1", []string{"u1"}, time.Hour)
	if err != nil {
		t.Fatalf("ListEligibleTokens: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("revoked token still eligible: %v", got)
	}
}

func TestUpsertDeviceToken_RefreshesAndClearsRevocation(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	first, err := UpsertDeviceToken(ctx, db, "t1", "u1", "tok-1", domain.PlatformIOS)
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := RevokeToken(ctx, db, "tok-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	// Re-registration by a new owner clears the revocation and moves the row.
	if _, err := UpsertDeviceToken(ctx, db, "t1", "u2", "tok-1", domain.PlatformAndroid); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	var rows []domain.DeviceToken
	if err := db.Where("token = ?", "tok-1").Find(&rows).Error; err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("upsert must not duplicate rows, got %d", len(rows))
	}
	got := rows[0]
	if got.ID != first.ID {
		t.Fatalf("row identity must survive the upsert")
	}
	if got.UserID != "u2" || got.Platform != domain.PlatformAndroid {
		t.Fatalf("owner/platform not refreshed: %+v", got)
	}
	if got.RevokedAt != nil {
		t.Fatalf("re-registration must clear revocation")
	}
}

func TestTouchToken_RefreshesOnlyLiveRows(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	stale := time.Now().UTC().Add(-48 * time.Hour)
	seedToken(t, db, "t1", "u1", "tok-live", stale, nil)
	revokedAt := time.Now().UTC()
	seedToken(t, db, "t1", "u1", "tok-dead", stale, &revokedAt)

	if err := TouchToken(ctx, db, "tok-live"); err != nil {
		t.Fatalf("touch live: %v", err)
	}
	if err := TouchToken(ctx, db, "tok-dead"); err != nil {
		t.Fatalf("touch revoked must be a no-op: %v", err)
	}

	var live, dead domain.DeviceToken
	if err := db.Where("token = ?", "tok-live").First(&live).Error; err != nil {
		t.Fatalf("read live: %v", err)
	}
	if err := db.Where("token = ?", "tok-dead").First(&dead).Error; err != nil {
		t.Fatalf("read dead: %v", err)
	}
	if !live.LastUsedAt.After(stale) {
		t.Fatalf("live token freshness not updated")
	}
	if dead.LastUsedAt.Sub(stale).Abs() > time.Second {
		t.Fatalf("revoked token must not be touched")
	}
}
