// Domain event HTTP handlers.
//
// This file exposes the REST endpoints backend services call when a
// notification-triggering domain event occurs:
//   - POST /events/message-sent       (chat message fan-out, incl. mentions)
//   - POST /events/prayer-answered    (prayer card answered)
//   - POST /events/journal-submitted  (pastoral journal routed to shepherd)
//
// Handlers are transport-thin: they validate input, call the notification
// service, and translate results into HTTP responses. Delivery failures that
// the service absorbed (per-recipient or per-batch) surface as a 200 with the
// counts; only pipeline-level failures become error statuses.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/parishlink/go-notify-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// NotificationService defines the fan-out operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type NotificationService interface {
	// NotifyMessageSent fans out pushes for a sent chat message.
	NotifyMessageSent(ctx context.Context, messageID string) (services.EventResult, error)
	// NotifyPrayerAnswered fans out pushes for an answered prayer card.
	NotifyPrayerAnswered(ctx context.Context, prayerCardID string) (services.EventResult, error)
	// NotifyJournalSubmitted notifies the shepherd assigned to a journal.
	NotifyJournalSubmitted(ctx context.Context, journalID string) (services.EventResult, error)
	// Dispatch resolves and delivers a pre-built notification request.
	Dispatch(ctx context.Context, req services.DispatchRequest) (services.DispatchResult, error)
}

// DeviceService defines device-token registration operations.
type DeviceService interface {
	// Register upserts a push token for a user within a tenant.
	Register(ctx context.Context, tenantID, userID, token, platform string) error
	// Revoke marks a push token ineligible for future delivery.
	Revoke(ctx context.Context, token string) error
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for domain events, dispatch, and device
// registration. It depends on abstract service interfaces to keep transport
// concerns separate from business logic.
type Handlers struct {
	notifySvc NotificationService
	deviceSvc DeviceService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(notifySvc NotificationService, deviceSvc DeviceService) *Handlers {
	return &Handlers{notifySvc: notifySvc, deviceSvc: deviceSvc}
}

//
// DTOs
//

// MessageSentRequest is the JSON payload for the message-sent event.
type MessageSentRequest struct {
	// MessageID of the chat message that was sent.
	MessageID string `json:"message_id" binding:"required" example:"3f1c8a52-ae9f-4f9e-93d2-b2f1f6a7c001"`
}

// PrayerAnsweredRequest is the JSON payload for the prayer-answered event.
type PrayerAnsweredRequest struct {
	// PrayerCardID of the card that was marked answered.
	PrayerCardID string `json:"prayer_card_id" binding:"required" example:"9c2d7b14-6e0a-4c3f-8d21-5a4b3c2d1e00"`
}

// JournalSubmittedRequest is the JSON payload for the journal-submitted event.
type JournalSubmittedRequest struct {
	// JournalID of the pastoral journal that was submitted.
	JournalID string `json:"journal_id" binding:"required" example:"7a1b2c3d-4e5f-6071-8293-a4b5c6d7e8f9"`
}

// EventResponse reports the outcome of an event fan-out.
type EventResponse struct {
	// Success is false only when the pipeline itself failed.
	Success bool `json:"success" example:"true"`
	// Notified is the number of pushes accepted by the gateway.
	Notified int `json:"notified" example:"17"`
	// Errors lists recoverable sub-step failures, if any.
	Errors []string `json:"errors,omitempty"`
}

//
// Handlers
//

// MessageSent godoc
// @ID          messageSent
// @Summary     Fan out pushes for a sent chat message
// @Description Resolves the message's conversation participants, detects
// @Description mentions, and delivers localized pushes. Muted event-chat
// @Description participants and the sender are skipped.
// @Tags        Events
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.MessageSentRequest  true  "Message event"
//
// @Success     200  {object}  handlers.EventResponse  "Fan-out outcome"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     429  {object}  handlers.ErrorResponse  "Tenant quota exceeded"
// @Failure     500  {object}  handlers.EventResponse  "Message not found or pipeline failure"
// @Router      /events/message-sent [post]
func (h *Handlers) MessageSent(c *gin.Context) {
	var req MessageSentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message_id required")
		return
	}
	h.runEvent(c, req.MessageID, h.notifySvc.NotifyMessageSent, services.ErrMessageNotFound, "message not found")
}

// PrayerAnswered godoc
// @ID          prayerAnswered
// @Summary     Fan out pushes for an answered prayer card
// @Description Notifies the card's conversation participants, excluding the
// @Description author, in their preferred locale.
// @Tags        Events
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.PrayerAnsweredRequest  true  "Prayer card event"
//
// @Success     200  {object}  handlers.EventResponse  "Fan-out outcome"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     429  {object}  handlers.ErrorResponse  "Tenant quota exceeded"
// @Failure     500  {object}  handlers.EventResponse  "Prayer card not found or pipeline failure"
// @Router      /events/prayer-answered [post]
func (h *Handlers) PrayerAnswered(c *gin.Context) {
	var req PrayerAnsweredRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "prayer_card_id required")
		return
	}
	h.runEvent(c, req.PrayerCardID, h.notifySvc.NotifyPrayerAnswered, services.ErrPrayerCardNotFound, "prayer card not found")
}

// JournalSubmitted godoc
// @ID          journalSubmitted
// @Summary     Notify the shepherd assigned to a submitted journal
// @Description Delivers a single push to the journal's shepherd when their
// @Description membership is still active.
// @Tags        Events
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.JournalSubmittedRequest  true  "Journal event"
//
// @Success     200  {object}  handlers.EventResponse  "Fan-out outcome"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     429  {object}  handlers.ErrorResponse  "Tenant quota exceeded"
// @Failure     500  {object}  handlers.EventResponse  "Journal not found or pipeline failure"
// @Router      /events/journal-submitted [post]
func (h *Handlers) JournalSubmitted(c *gin.Context) {
	var req JournalSubmittedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "journal_id required")
		return
	}
	h.runEvent(c, req.JournalID, h.notifySvc.NotifyJournalSubmitted, services.ErrJournalNotFound, "journal not found")
}

// runEvent implements the shared call/translate flow for the three event
// endpoints after each has bound its own request body. notFound is the
// sentinel the service returns when the event's entity does not exist;
// it and any other pipeline failure yield a 500 with success=false.
func (h *Handlers) runEvent(c *gin.Context, id string, call func(context.Context, string) (services.EventResult, error), notFound error, notFoundMsg string) {
	ctx := c.Request.Context()

	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "id must be a UUID")
		return
	}

	res, err := call(ctx, id)
	if err != nil {
		var rle *services.RateLimitError
		switch {
		case errors.Is(err, notFound):
			ok(c, http.StatusInternalServerError, EventResponse{Success: false, Errors: []string{notFoundMsg}})
		case errors.As(err, &rle):
			failRateLimited(c, rle.RetryAfter)
		default:
			ok(c, http.StatusInternalServerError, EventResponse{Success: false, Errors: []string{err.Error()}})
		}
		return
	}

	ok(c, http.StatusOK, EventResponse{Success: true, Notified: res.Notified, Errors: res.Errors})
}
