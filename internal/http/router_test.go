package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/parishlink/go-notify-backend/internal/config"
	"github.com/parishlink/go-notify-backend/internal/domain"
	"github.com/parishlink/go-notify-backend/internal/push"
	"github.com/parishlink/go-notify-backend/internal/repo"
)

const testServiceToken = "svc-test-token"

// newTestServer assembles the full router over a temp SQLite database and a
// stub push gateway that accepts everything.
func newTestServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "router.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	gwSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var msgs []push.Message
		_ = json.NewDecoder(r.Body).Decode(&msgs)
		tickets := make([]push.Ticket, len(msgs))
		for i := range tickets {
			tickets[i] = push.Ticket{Status: "ok", ID: uuid.NewString()}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": tickets})
	}))
	t.Cleanup(gwSrv.Close)

	cfg := config.Config{
		GinMode:        gin.TestMode,
		APIBasePath:    "/api/v1",
		DefaultLocale:  "en",
		TokenFreshness: 90 * 24 * time.Hour,
		RateWindow:     time.Minute,
		RateMaxCalls:   1000,
		EdgeRateRPS:    100,
		EdgeRateBurst:  100,
		Auth:           config.AuthConfig{ServiceToken: testServiceToken},
		Push: config.PushConfig{
			GatewayURL: gwSrv.URL,
			Timeout:    5 * time.Second,
			BatchSize:  100,
		},
	}

	r := gin.New()
	RegisterRoutes(r, db, push.NewClient(cfg.Push.GatewayURL, "", cfg.Push.Timeout), cfg)
	return r, db
}

func do(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_Health(t *testing.T) {
	r, _ := newTestServer(t)
	w := do(r, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
}

func TestRouter_Metrics(t *testing.T) {
	r, _ := newTestServer(t)
	w := do(r, http.MethodGet, "/metrics", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
}

func TestRouter_UnknownRouteEnvelope(t *testing.T) {
	r, _ := newTestServer(t)
	w := do(r, http.MethodGet, "/nope", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("envelope not JSON: %v", err)
	}
	if body["code"] != "not_found" {
		t.Fatalf("code = %v", body["code"])
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	r, _ := newTestServer(t)
	w := do(r, http.MethodGet, "/api/v1/devices", testServiceToken, nil)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("want 405, got %d", w.Code)
	}
}

func TestRouter_AuthBeforeDomainLogic(t *testing.T) {
	r, _ := newTestServer(t)

	// A malformed body must still yield 401, never 400: authentication runs
	// before the body is read.
	w := do(r, http.MethodPost, "/api/v1/events/message-sent", "", map[string]any{"garbage": true})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", w.Code)
	}

	w = do(r, http.MethodPost, "/api/v1/events/message-sent", "wrong-token", map[string]any{"message_id": uuid.NewString()})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: want 401, got %d", w.Code)
	}
}

func TestRouter_EndToEndDispatch(t *testing.T) {
	r, db := newTestServer(t)

	m := domain.Membership{
		ID:          uuid.NewString(),
		TenantID:    "t1",
		UserID:      "u1",
		DisplayName: "Grace",
		Locale:      "en",
		Status:      domain.MembershipActive,
	}
	if err := db.Create(&m).Error; err != nil {
		t.Fatalf("seed membership: %v", err)
	}

	// Register a device through the API, then dispatch to its owner.
	w := do(r, http.MethodPost, "/api/v1/devices", testServiceToken, map[string]any{
		"tenant_id": "t1",
		"user_id":   "u1",
		"token":     "ExponentPushToken[router-test]",
		"platform":  "ios",
	})
	if w.Code != http.StatusNoContent {
		t.Fatalf("register device: want 204, got %d: %s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodPost, "/api/v1/notifications/dispatch", testServiceToken, map[string]any{
		"tenant_id":         "t1",
		"notification_type": "announcement",
		"recipients":        map[string]any{"user_ids": []string{"u1"}},
		"payload":           map[string]any{"title": "Hello", "body": "World"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("dispatch: want 200, got %d: %s", w.Code, w.Body.String())
	}
	var res struct {
		Sent   int `json:"sent"`
		Failed int `json:"failed"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Sent != 1 || res.Failed != 0 {
		t.Fatalf("counts: %+v", res)
	}

	// The dispatch left one audit row behind.
	var count int64
	if err := db.Model(&domain.AuditLogEntry{}).Count(&count).Error; err != nil {
		t.Fatalf("count audit rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("want 1 audit row, got %d", count)
	}

	// Revoke the device; a second dispatch resolves the user but finds no
	// eligible token.
	if w := do(r, http.MethodDelete, "/api/v1/devices/ExponentPushToken[router-test]", testServiceToken, nil); w.Code != http.StatusNoContent {
		t.Fatalf("revoke: want 204, got %d", w.Code)
	}
	w = do(r, http.MethodPost, "/api/v1/notifications/dispatch", testServiceToken, map[string]any{
		"tenant_id":         "t1",
		"notification_type": "announcement",
		"recipients":        map[string]any{"user_ids": []string{"u1"}},
		"payload":           map[string]any{"title": "Hello", "body": "Again"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("post-revoke dispatch: want 200, got %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Sent != 0 {
		t.Fatalf("revoked token must not be delivered to: %+v", res)
	}
}
