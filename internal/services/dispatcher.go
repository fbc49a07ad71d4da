// Package services – BatchDispatcher
//
// This file implements the batch dispatcher: it chunks addressed messages to
// the gateway's batch ceiling, transmits batches sequentially, reconciles the
// ordered per-message tickets against the tokens they were built from, and
// revokes tokens the gateway reports as permanently invalid.
//
// Partial failure is the expected steady state: a result with failed > 0 is
// still a successful call from the caller's perspective. Only a gateway
// credential rejection before anything was attempted propagates as an error.
package services

import (
	"context"
	"errors"
	"strconv"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/parishlink/go-notify-backend/internal/domain"
	"github.com/parishlink/go-notify-backend/internal/push"
)

// Gateway is the transport contract the dispatcher sends batches through.
// Implementations must preserve the ticket-to-message positional mapping.
type Gateway interface {
	SendBatch(ctx context.Context, messages []push.Message) ([]push.Ticket, error)
}

// TokenRevoker revokes device tokens reported permanently invalid.
type TokenRevoker interface {
	RevokeToken(ctx context.Context, db *gorm.DB, token string) error
}

// DispatchOptions carries delivery hints embedded into each gateway message.
type DispatchOptions struct {
	Priority string
	Sound    string
	Badge    *int
}

// DispatchResult summarizes one dispatcher call.
type DispatchResult struct {
	Sent   int
	Failed int
	Errors []string
}

// BatchDispatcher transmits notification payloads to device tokens through
// the push gateway. It is safe for concurrent use.
type BatchDispatcher struct {
	DB      *gorm.DB
	Gateway Gateway
	Tokens  TokenRevoker

	// BatchSize caps messages per gateway call; values outside (0,
	// push.MaxBatchSize] are coerced to push.MaxBatchSize.
	BatchSize int
}

// NewBatchDispatcher constructs a dispatcher with the given batch size.
func NewBatchDispatcher(db *gorm.DB, gw Gateway, tokens TokenRevoker, batchSize int) *BatchDispatcher {
	if batchSize <= 0 || batchSize > push.MaxBatchSize {
		batchSize = push.MaxBatchSize
	}
	return &BatchDispatcher{DB: db, Gateway: gw, Tokens: tokens, BatchSize: batchSize}
}

// Send fans one payload out to the given tokens. notificationType labels
// metrics and log lines; data rides along in each gateway message.
//
// Behavior:
//   - Batches are dispatched sequentially; a failed batch counts all its
//     messages as failed and the next batch is still attempted.
//   - Tickets map positionally to the batch's tokens; error tickets increment
//     Failed and, when the gateway signals permanent invalidity, queue the
//     token for revocation.
//   - Revocations run after all batches; their failures are logged and
//     swallowed, never surfaced.
//   - A credential rejection on the first batch (nothing attempted yet)
//     returns push.ErrUnauthorized; on later batches it degrades to per-batch
//     failure like any other transport error.
func (d *BatchDispatcher) Send(ctx context.Context, tenantID string, tokens []domain.DeviceToken, content Content, data map[string]string, opts DispatchOptions, notificationType string) (DispatchResult, error) {
	var res DispatchResult
	if len(tokens) == 0 {
		return res, nil
	}

	messages := make([]push.Message, 0, len(tokens))
	for _, t := range tokens {
		messages = append(messages, push.Message{
			To:       t.Token,
			Title:    content.Title,
			Body:     content.Body,
			Data:     data,
			Sound:    opts.Sound,
			Priority: opts.Priority,
			Badge:    opts.Badge,
		})
	}

	var revoke []string
	attempted := false
	for start := 0; start < len(messages); start += d.BatchSize {
		end := start + d.BatchSize
		if end > len(messages) {
			end = len(messages)
		}
		batch := messages[start:end]

		tickets, err := d.Gateway.SendBatch(ctx, batch)
		if err != nil {
			if errors.Is(err, push.ErrUnauthorized) && !attempted {
				return DispatchResult{}, err
			}
			res.Failed += len(batch)
			res.Errors = append(res.Errors, "batch "+strconv.Itoa(start/d.BatchSize)+": "+err.Error())
			attempted = true
			continue
		}
		attempted = true

		for i, ticket := range tickets {
			if ticket.OK() {
				res.Sent++
				continue
			}
			res.Failed++
			res.Errors = append(res.Errors, ticket.ErrorText())
			if push.ShouldRevoke(ticket) {
				revoke = append(revoke, tokens[start+i].Token)
			}
		}
	}

	pushesSent.WithLabelValues(notificationType).Add(float64(res.Sent))
	pushesFailed.WithLabelValues(notificationType).Add(float64(res.Failed))

	d.revokeAll(ctx, tenantID, revoke)
	return res, nil
}

// revokeAll best-effort revokes every queued token. Failures are logged and
// swallowed: cleanup must never block or fail the dispatch response, and a
// token left live is simply revoked on the next failed delivery.
func (d *BatchDispatcher) revokeAll(ctx context.Context, tenantID string, tokens []string) {
	for _, tok := range tokens {
		if err := d.Tokens.RevokeToken(ctx, d.DB, tok); err != nil {
			log.Warn().
				Err(err).
				Str("tenant_id", tenantID).
				Msg("token revocation failed")
			continue
		}
		tokensRevoked.Inc()
	}
}
