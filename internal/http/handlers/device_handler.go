// Device registration HTTP handlers.
//
// This file exposes REST endpoints for push device tokens:
//   - POST   /devices          (register or refresh a token)
//   - DELETE /devices/:token   (revoke a token, e.g. on logout)
//
// Registration is an upsert: re-registering an existing token refreshes its
// freshness window and clears any previous revocation. Revocation is
// idempotent; revoking an unknown or already revoked token succeeds.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RegisterDeviceRequest is the JSON payload for registering a push token.
type RegisterDeviceRequest struct {
	// TenantID scopes the registration to one congregation.
	TenantID string `json:"tenant_id" binding:"required" example:"5f0b9c1e-2d47-4a8b-9c3d-1e2f3a4b5c6d"`
	// UserID is the owner of the device.
	UserID string `json:"user_id" binding:"required" example:"user-7421"`
	// Token is the push token issued by the platform.
	Token string `json:"token" binding:"required" example:"ExponentPushToken[xxxxxxxxxxxxxxxxxxxxxx]"`
	// Platform is "ios" or "android".
	Platform string `json:"platform" binding:"required,oneof=ios android" example:"ios"`
}

// RegisterDevice godoc
// @ID          registerDevice
// @Summary     Register a push device token
// @Description Upserts the token for the user, refreshing its freshness window
// @Description and clearing any previous revocation.
// @Tags        Devices
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.RegisterDeviceRequest  true  "Device registration"
//
// @Success     204  "Registered"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /devices [post]
func (h *Handlers) RegisterDevice(c *gin.Context) {
	ctx := c.Request.Context()

	var req RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "tenant_id, user_id, token and platform (ios|android) are required")
		return
	}
	if strings.TrimSpace(req.Token) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "token must not be blank")
		return
	}

	if err := h.deviceSvc.Register(ctx, req.TenantID, req.UserID, strings.TrimSpace(req.Token), req.Platform); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeRegisterFailed, err.Error())
		return
	}
	noContent(c)
}

// RevokeDevice godoc
// @ID          revokeDevice
// @Summary     Revoke a push device token
// @Description Marks the token ineligible for future delivery. Revoking an
// @Description unknown or already revoked token succeeds.
// @Tags        Devices
// @Produce     json
//
// @Param       token  path  string  true  "Push token to revoke"
//
// @Success     204  "Revoked"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /devices/{token} [delete]
func (h *Handlers) RevokeDevice(c *gin.Context) {
	ctx := c.Request.Context()

	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "token required")
		return
	}

	if err := h.deviceSvc.Revoke(ctx, token); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeRegisterFailed, err.Error())
		return
	}
	noContent(c)
}
