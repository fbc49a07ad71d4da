// Dispatch HTTP handler.
//
// This file exposes the direct dispatch endpoint:
//   - POST /notifications/dispatch  (resolve recipients and deliver a
//     pre-built notification)
//
// Status mapping follows the partial-success model:
//   - 200 when every push was accepted (including zero-recipient no-ops)
//   - 207 when some pushes were accepted and some failed
//   - 429 when the tenant's dispatch quota is exhausted
//   - 400 for malformed requests or an empty recipient list
//   - 500 when the pipeline itself failed (resolution, storage, credentials)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/parishlink/go-notify-backend/internal/push"
	"github.com/parishlink/go-notify-backend/internal/services"
)

// DispatchResponse reports delivery counts for a dispatch request.
type DispatchResponse struct {
	// Success is true whenever the pipeline itself completed, even if some
	// individual pushes failed.
	Success bool `json:"success" example:"true"`
	// Sent is the number of pushes accepted by the gateway.
	Sent int `json:"sent" example:"40"`
	// Failed is the number of pushes rejected or undeliverable.
	Failed int `json:"failed" example:"2"`
	// Errors lists per-recipient or per-batch failure details.
	Errors []string `json:"errors,omitempty"`
}

// Dispatch godoc
// @ID          dispatchNotification
// @Summary     Dispatch a pre-built notification
// @Description Resolves the recipient set (active memberships, exclusions,
// @Description conversation mutes), reads eligible device tokens, and delivers
// @Description the payload in gateway batches.
// @Tags        Notifications
// @Accept      json
// @Produce     json
//
// @Param       body  body  services.DispatchRequest  true  "Dispatch request"
//
// @Success     200  {object}  handlers.DispatchResponse  "All pushes accepted"
// @Success     207  {object}  handlers.DispatchResponse  "Partial delivery"
// @Failure     400  {object}  handlers.ErrorResponse     "Bad request"
// @Failure     429  {object}  handlers.ErrorResponse     "Tenant quota exceeded"
// @Failure     500  {object}  handlers.ErrorResponse     "Internal error"
// @Router      /notifications/dispatch [post]
func (h *Handlers) Dispatch(c *gin.Context) {
	ctx := c.Request.Context()

	var req services.DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "tenant_id, notification_type, recipients and payload are required")
		return
	}

	res, err := h.notifySvc.Dispatch(ctx, req)
	if err != nil {
		var rle *services.RateLimitError
		switch {
		case errors.Is(err, services.ErrEmptyRecipients):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "recipients.user_ids must not be empty")
		case errors.As(err, &rle):
			failRateLimited(c, rle.RetryAfter)
		case errors.Is(err, push.ErrUnauthorized):
			fail(c, http.StatusInternalServerError, ErrCodeDispatchFailed, "push gateway rejected credentials")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeDispatchFailed, err.Error())
		}
		return
	}

	// A well-formed request that delivered nothing is still reported with its
	// counts rather than an error status.
	status := http.StatusOK
	if res.Failed > 0 {
		status = http.StatusMultiStatus
	}
	ok(c, status, DispatchResponse{Success: true, Sent: res.Sent, Failed: res.Failed, Errors: res.Errors})
}
