// Package services – NotificationService
//
// This file implements the event handlers that orchestrate the fan-out
// pipeline for each triggering domain event (message sent, prayer answered,
// pastoral journal submitted) and the dispatch boundary operation that
// accepts a pre-built NotificationRequest.
//
// The message-sent flow is the most involved: participants are loaded,
// mentions detected, event-chat exclusions applied (exclusion beats mention),
// the tenant's rate budget is checked once, and then the mention branch and
// the ordinary branch run — each grouped by recipient locale, with failures
// isolated per locale group. The sender is never notified.
//
// Observability: public methods are OpenTelemetry-instrumented; spans carry
// tenant and event identifiers.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/parishlink/go-notify-backend/internal/domain"
	"github.com/parishlink/go-notify-backend/internal/push"
)

// EventStore loads the domain events and conversation context that trigger
// notifications.
type EventStore interface {
	GetMessage(ctx context.Context, db *gorm.DB, id string) (*domain.Message, error)
	GetPrayerCard(ctx context.Context, db *gorm.DB, id string) (*domain.PrayerCard, error)
	GetPastoralJournal(ctx context.Context, db *gorm.DB, id string) (*domain.PastoralJournal, error)
	GetConversation(ctx context.Context, db *gorm.DB, id string) (*domain.Conversation, error)
	ListConversationMembers(ctx context.Context, db *gorm.DB, conversationID string) ([]domain.ConversationMember, error)
}

// TokenStore reads eligible device tokens for a recipient set. Read failures
// abort the enclosing dispatch step fail-closed (zero sends for that group).
type TokenStore interface {
	ListEligibleTokens(ctx context.Context, db *gorm.DB, tenantID string, userIDs []string, freshness time.Duration) ([]domain.DeviceToken, error)
}

// EventResult summarizes one event handler invocation. Notified counts
// pushes accepted by the gateway; Errors collects recoverable sub-step
// failures without aborting the rest of the event.
type EventResult struct {
	Notified int
	Errors   []string
}

// DispatchRecipients names the candidate users for a dispatch request.
type DispatchRecipients struct {
	UserIDs        []string `json:"user_ids" binding:"required,min=1"`
	ConversationID string   `json:"conversation_id,omitempty"`
	ExcludeUserIDs []string `json:"exclude_user_ids,omitempty"`
}

// DispatchPayload is the pre-built notification content for a dispatch
// request (the dispatch boundary does not run the content builder).
type DispatchPayload struct {
	Title string            `json:"title" binding:"required"`
	Body  string            `json:"body" binding:"required"`
	Data  map[string]string `json:"data,omitempty"`
}

// DispatchRequestOptions carries delivery hints.
type DispatchRequestOptions struct {
	Priority string `json:"priority,omitempty"`
	Sound    string `json:"sound,omitempty"`
	Badge    *int   `json:"badge,omitempty"`
}

// DispatchRequest is the ephemeral value object accepted at the dispatch
// service boundary. It is constructed per call and never persisted.
type DispatchRequest struct {
	TenantID         string                 `json:"tenant_id" binding:"required"`
	NotificationType string                 `json:"notification_type" binding:"required"`
	Recipients       DispatchRecipients     `json:"recipients" binding:"required"`
	Payload          DispatchPayload        `json:"payload" binding:"required"`
	Options          DispatchRequestOptions `json:"options"`
}

// NotificationService orchestrates recipient resolution, rate limiting,
// content building, batch dispatch, and audit logging per domain event.
// All fields must be set; the service is stateless across invocations.
type NotificationService struct {
	DB         *gorm.DB
	Events     EventStore
	Tokens     TokenStore
	Resolver   *RecipientResolver
	Limiter    *TenantRateLimiter
	Content    *ContentBuilder
	Dispatcher *BatchDispatcher
	Audit      *AuditLogger

	// TokenFreshness is the device-token eligibility window (90 days unless
	// configured otherwise).
	TokenFreshness time.Duration
}

// NotifyMessageSent fans out pushes for a newly sent chat message.
//
// Pipeline: load message+conversation → load participants → detect mentions →
// compute exclusions → rate gate → mention branch → ordinary branch → audit.
// Mentioned recipients get exactly the high-priority mention push and are
// excluded from the ordinary broadcast; event-chat muted participants get
// neither push regardless of mention status.
func (s *NotificationService) NotifyMessageSent(ctx context.Context, messageID string) (EventResult, error) {
	tr := otel.Tracer("services/NotificationService")
	ctx, span := tr.Start(ctx, "NotifyMessageSent",
		trace.WithAttributes(attribute.String("message.id", messageID)),
	)
	defer span.End()

	msg, err := s.Events.GetMessage(ctx, s.DB, messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EventResult{}, ErrMessageNotFound
		}
		return EventResult{}, err
	}
	span.SetAttributes(attribute.String("tenant.id", msg.TenantID))

	members, err := s.Events.ListConversationMembers(ctx, s.DB, msg.ConversationID)
	if err != nil {
		return EventResult{}, err
	}

	// Active participants plus the event-chat exclusion set. Exclusions are
	// computed fresh per message: they can change between two messages in
	// the same conversation.
	participants := make([]domain.Membership, 0, len(members))
	excluded := make(map[string]struct{})
	for _, cm := range members {
		if cm.Membership.Status != domain.MembershipActive {
			continue
		}
		if msg.Conversation.IsEventChat && cm.NotifyExcluded {
			excluded[cm.MembershipID] = struct{}{}
		}
		participants = append(participants, cm.Membership)
	}

	mentioned := detectMentions(msg.Content, participants)

	var mentionTargets, ordinaryTargets []domain.Membership
	for _, p := range participants {
		if p.ID == msg.SenderMembershipID {
			continue
		}
		// Exclusion wins over mention.
		if _, muted := excluded[p.ID]; muted {
			continue
		}
		if mentioned[p.ID] {
			mentionTargets = append(mentionTargets, p)
		} else {
			ordinaryTargets = append(ordinaryTargets, p)
		}
	}

	total := len(mentionTargets) + len(ordinaryTargets)
	if total == 0 {
		s.Audit.Record(ctx, msg.TenantID, string(KindMessage), 0, 0, 0, nil)
		return EventResult{}, nil
	}

	if allowed, retry := s.Limiter.Allow(msg.TenantID); !allowed {
		dispatchesRejected.Inc()
		return EventResult{}, &RateLimitError{RetryAfter: retry}
	}

	data := map[string]string{
		"type":            string(KindMessage),
		"conversation_id": msg.ConversationID,
		"message_id":      msg.ID,
	}

	var sent, failed int
	var errs []string

	mentionIn := ContentInput{
		Kind:       KindMention,
		Category:   msg.ContentType,
		Text:       msg.Content,
		SenderName: msg.Sender.DisplayName,
	}
	gSent, gFailed, gErrs := s.fanout(ctx, msg.TenantID, mentionTargets, mentionIn, data,
		DispatchOptions{Priority: push.PriorityHigh, Sound: "default"}, string(KindMention))
	sent, failed, errs = sent+gSent, failed+gFailed, append(errs, gErrs...)

	ordinaryIn := mentionIn
	ordinaryIn.Kind = KindMessage
	gSent, gFailed, gErrs = s.fanout(ctx, msg.TenantID, ordinaryTargets, ordinaryIn, data,
		DispatchOptions{Priority: push.PriorityDefault, Sound: "default"}, string(KindMessage))
	sent, failed, errs = sent+gSent, failed+gFailed, append(errs, gErrs...)

	s.Audit.Record(ctx, msg.TenantID, string(KindMessage), total, sent, failed, errs)
	return EventResult{Notified: sent, Errors: errs}, nil
}

// NotifyPrayerAnswered fans out pushes to the participants of the answered
// card's conversation. The author is not notified of their own answer, and
// event-chat mutes are honored.
func (s *NotificationService) NotifyPrayerAnswered(ctx context.Context, prayerCardID string) (EventResult, error) {
	tr := otel.Tracer("services/NotificationService")
	ctx, span := tr.Start(ctx, "NotifyPrayerAnswered",
		trace.WithAttributes(attribute.String("prayer_card.id", prayerCardID)),
	)
	defer span.End()

	card, err := s.Events.GetPrayerCard(ctx, s.DB, prayerCardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EventResult{}, ErrPrayerCardNotFound
		}
		return EventResult{}, err
	}
	span.SetAttributes(attribute.String("tenant.id", card.TenantID))

	conv, err := s.Events.GetConversation(ctx, s.DB, card.ConversationID)
	if err != nil {
		return EventResult{}, err
	}
	members, err := s.Events.ListConversationMembers(ctx, s.DB, card.ConversationID)
	if err != nil {
		return EventResult{}, err
	}

	targets := make([]domain.Membership, 0, len(members))
	for _, cm := range members {
		if cm.Membership.Status != domain.MembershipActive {
			continue
		}
		if cm.MembershipID == card.AuthorMembershipID {
			continue
		}
		if conv.IsEventChat && cm.NotifyExcluded {
			continue
		}
		targets = append(targets, cm.Membership)
	}

	if len(targets) == 0 {
		s.Audit.Record(ctx, card.TenantID, string(KindPrayerAnswered), 0, 0, 0, nil)
		return EventResult{}, nil
	}

	if allowed, retry := s.Limiter.Allow(card.TenantID); !allowed {
		dispatchesRejected.Inc()
		return EventResult{}, &RateLimitError{RetryAfter: retry}
	}

	in := ContentInput{
		Kind:       KindPrayerAnswered,
		Text:       card.Title,
		SenderName: card.Author.DisplayName,
	}
	data := map[string]string{
		"type":           string(KindPrayerAnswered),
		"prayer_card_id": card.ID,
	}
	sent, failed, errs := s.fanout(ctx, card.TenantID, targets, in, data,
		DispatchOptions{Priority: push.PriorityDefault, Sound: "default"}, string(KindPrayerAnswered))

	s.Audit.Record(ctx, card.TenantID, string(KindPrayerAnswered), len(targets), sent, failed, errs)
	return EventResult{Notified: sent, Errors: errs}, nil
}

// NotifyJournalSubmitted notifies the journal's assigned shepherd. A shepherd
// whose membership is no longer active simply receives nothing.
func (s *NotificationService) NotifyJournalSubmitted(ctx context.Context, journalID string) (EventResult, error) {
	tr := otel.Tracer("services/NotificationService")
	ctx, span := tr.Start(ctx, "NotifyJournalSubmitted",
		trace.WithAttributes(attribute.String("journal.id", journalID)),
	)
	defer span.End()

	journal, err := s.Events.GetPastoralJournal(ctx, s.DB, journalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EventResult{}, ErrJournalNotFound
		}
		return EventResult{}, err
	}
	span.SetAttributes(attribute.String("tenant.id", journal.TenantID))

	if journal.Shepherd.Status != domain.MembershipActive ||
		journal.ShepherdMembershipID == journal.AuthorMembershipID {
		s.Audit.Record(ctx, journal.TenantID, string(KindJournalSubmitted), 0, 0, 0, nil)
		return EventResult{}, nil
	}

	if allowed, retry := s.Limiter.Allow(journal.TenantID); !allowed {
		dispatchesRejected.Inc()
		return EventResult{}, &RateLimitError{RetryAfter: retry}
	}

	in := ContentInput{
		Kind:       KindJournalSubmitted,
		SenderName: journal.Author.DisplayName,
	}
	data := map[string]string{
		"type":       string(KindJournalSubmitted),
		"journal_id": journal.ID,
	}
	sent, failed, errs := s.fanout(ctx, journal.TenantID, []domain.Membership{journal.Shepherd}, in, data,
		DispatchOptions{Priority: push.PriorityDefault, Sound: "default"}, string(KindJournalSubmitted))

	s.Audit.Record(ctx, journal.TenantID, string(KindJournalSubmitted), 1, sent, failed, errs)
	return EventResult{Notified: sent, Errors: errs}, nil
}

// Dispatch is the boundary operation behind POST /notifications/dispatch: it
// resolves the request's recipients, gates on the tenant's rate budget, reads
// eligible tokens, and hands the pre-built payload to the batch dispatcher.
//
// A token-repository read failure aborts with zero sends (fail-closed). An
// empty resolved set is a valid terminal state and consumes no rate budget.
func (s *NotificationService) Dispatch(ctx context.Context, req DispatchRequest) (DispatchResult, error) {
	tr := otel.Tracer("services/NotificationService")
	ctx, span := tr.Start(ctx, "Dispatch",
		trace.WithAttributes(
			attribute.String("tenant.id", req.TenantID),
			attribute.String("notification.type", req.NotificationType),
		),
	)
	defer span.End()

	if len(req.Recipients.UserIDs) == 0 {
		return DispatchResult{}, ErrEmptyRecipients
	}

	recipients, err := s.Resolver.Resolve(ctx, ResolveInput{
		TenantID:       req.TenantID,
		UserIDs:        req.Recipients.UserIDs,
		ConversationID: req.Recipients.ConversationID,
		ExcludeUserIDs: req.Recipients.ExcludeUserIDs,
	})
	if err != nil {
		return DispatchResult{}, err
	}
	if len(recipients) == 0 {
		s.Audit.Record(ctx, req.TenantID, req.NotificationType, 0, 0, 0, nil)
		return DispatchResult{}, nil
	}

	if allowed, retry := s.Limiter.Allow(req.TenantID); !allowed {
		dispatchesRejected.Inc()
		return DispatchResult{}, &RateLimitError{RetryAfter: retry}
	}

	userIDs := make([]string, 0, len(recipients))
	for _, m := range recipients {
		userIDs = append(userIDs, m.UserID)
	}
	tokens, err := s.Tokens.ListEligibleTokens(ctx, s.DB, req.TenantID, userIDs, s.TokenFreshness)
	if err != nil {
		return DispatchResult{}, err
	}

	res, err := s.Dispatcher.Send(ctx, req.TenantID, tokens,
		Content{Title: req.Payload.Title, Body: req.Payload.Body},
		req.Payload.Data,
		DispatchOptions{
			Priority: req.Options.Priority,
			Sound:    req.Options.Sound,
			Badge:    req.Options.Badge,
		},
		req.NotificationType)
	if err != nil {
		return DispatchResult{}, err
	}

	s.Audit.Record(ctx, req.TenantID, req.NotificationType, len(recipients), res.Sent, res.Failed, res.Errors)
	return res, nil
}

// fanout groups recipients by locale, builds content once per group, reads
// each group's eligible tokens, and dispatches. Failures are isolated per
// locale group: one group's error never aborts the others.
func (s *NotificationService) fanout(ctx context.Context, tenantID string, recipients []domain.Membership, in ContentInput, data map[string]string, opts DispatchOptions, notificationType string) (sent, failed int, errs []string) {
	if len(recipients) == 0 {
		return 0, 0, nil
	}
	for locale, group := range s.Content.GroupByLocale(recipients) {
		content := s.Content.Build(in, locale)

		userIDs := make([]string, 0, len(group))
		for _, m := range group {
			userIDs = append(userIDs, m.UserID)
		}
		tokens, err := s.Tokens.ListEligibleTokens(ctx, s.DB, tenantID, userIDs, s.TokenFreshness)
		if err != nil {
			errs = append(errs, "locale "+locale+": "+err.Error())
			continue
		}

		res, err := s.Dispatcher.Send(ctx, tenantID, tokens, content, data, opts, notificationType)
		if err != nil {
			errs = append(errs, "locale "+locale+": "+err.Error())
			continue
		}
		sent += res.Sent
		failed += res.Failed
		errs = append(errs, res.Errors...)
	}
	return sent, failed, errs
}

// detectMentions scans the message text for @name references and maps them to
// participants by display name (case-insensitive). It returns the mentioned
// membership IDs.
func detectMentions(content string, participants []domain.Membership) map[string]bool {
	if !strings.Contains(content, "@") {
		return nil
	}
	lc := strings.ToLower(content)
	out := make(map[string]bool)
	for _, p := range participants {
		name := strings.ToLower(strings.TrimSpace(p.DisplayName))
		if name == "" {
			continue
		}
		if strings.Contains(lc, "@"+name) {
			out[p.ID] = true
		}
	}
	return out
}
