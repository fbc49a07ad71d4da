// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements bearer-token authentication for the notification API.
// Two credential kinds are accepted on the same Authorization header:
//
//   - a static service token, used by trusted backend services that post
//     domain events and dispatch requests, and
//   - an HS256 JWT, used by first-party clients (device registration).
//
// Authentication always runs before any request body is read or any domain
// logic executes: a missing or invalid credential yields 401 regardless of
// how malformed the rest of the request is.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// callerIDKey is the Gin context key for the authenticated caller identity
	// ("service" for the static token, the JWT subject otherwise).
	callerIDKey = "callerID"
	// tenantIDKey is the Gin context key for the caller's tenant, when the
	// credential carries one (JWT "tid" claim).
	tenantIDKey = "tenantID"
)

// AuthOptions configures Auth.
//
// ServiceToken is the static bearer credential for backend callers; an empty
// value disables the static path. JWTSecret is the HS256 signing key for
// client JWTs; an empty value disables the JWT path. At least one must be set
// or every request is rejected.
type AuthOptions struct {
	ServiceToken string
	JWTSecret    string
}

// claims is the JWT claim set accepted from clients. TenantID scopes the
// caller to a single congregation.
type claims struct {
	TenantID string `json:"tid,omitempty"`
	jwt.RegisteredClaims
}

// Auth returns a Gin middleware that enforces bearer authentication.
//
// Behavior:
//   - Extracts the token from "Authorization: Bearer <token>".
//   - Compares it against the service token in constant time; on match the
//     caller identity is "service" (unscoped, any tenant).
//   - Otherwise parses it as an HS256 JWT; on success the subject claim
//     becomes the caller identity and the "tid" claim the tenant scope.
//   - Any other outcome is a 401 with the standard error envelope. The
//     request body is never read before this decision.
func Auth(opt AuthOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.Request)
		if !ok {
			unauthorized(c, "missing or malformed authorization header")
			return
		}

		if opt.ServiceToken != "" &&
			subtle.ConstantTimeCompare([]byte(token), []byte(opt.ServiceToken)) == 1 {
			c.Set(callerIDKey, "service")
			c.Next()
			return
		}

		if opt.JWTSecret != "" {
			cl := &claims{}
			parsed, err := jwt.ParseWithClaims(token, cl, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(opt.JWTSecret), nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err == nil && parsed.Valid {
				c.Set(callerIDKey, cl.Subject)
				if cl.TenantID != "" {
					c.Set(tenantIDKey, cl.TenantID)
				}
				c.Next()
				return
			}
		}

		unauthorized(c, "invalid credentials")
	}
}

// CallerID returns the authenticated caller identity set by Auth, or "".
func CallerID(c *gin.Context) string {
	v, _ := c.Get(callerIDKey)
	s, _ := v.(string)
	return s
}

// TenantID returns the tenant scope set by Auth, or "" for unscoped callers.
func TenantID(c *gin.Context) string {
	v, _ := c.Get(tenantIDKey)
	s, _ := v.(string)
	return s
}

// bearerToken extracts the credential from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", false
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// unauthorized aborts the request with the standard 401 envelope.
func unauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", `Bearer realm="api"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       "unauthorized",
		"message":    msg,
	})
}
