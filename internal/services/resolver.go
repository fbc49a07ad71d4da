// Package services – RecipientResolver
//
// This file implements recipient resolution: turning a raw set of candidate
// user identifiers into the authorized, exclusion-filtered set of notifiable
// memberships. Resolution is a pure read pipeline with no side effects, so a
// later rate-limit rejection can simply discard the result.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/parishlink/go-notify-backend/internal/domain"
)

// MembershipStore is the repository contract required by RecipientResolver.
type MembershipStore interface {
	// ListActiveMemberships resolves user IDs to active memberships within a
	// tenant; users without an active membership are silently dropped.
	ListActiveMemberships(ctx context.Context, db *gorm.DB, tenantID string, userIDs []string) ([]domain.Membership, error)

	// GetConversation fetches a conversation by ID.
	GetConversation(ctx context.Context, db *gorm.DB, id string) (*domain.Conversation, error)

	// ListExcludedMembershipIDs returns the membership IDs muted for a
	// conversation. Computed fresh per call, never cached.
	ListExcludedMembershipIDs(ctx context.Context, db *gorm.DB, conversationID string) ([]string, error)
}

// ResolveInput names the candidate set and the exclusions to apply.
type ResolveInput struct {
	TenantID string
	UserIDs  []string

	// ConversationID, when set, triggers the event-chat exclusion check.
	ConversationID string

	// ExcludeUserIDs are subtracted after resolution (used to avoid
	// double-notifying a mentioned user via both channels).
	ExcludeUserIDs []string

	// SenderMembershipID is always subtracted: the sender is never notified
	// of their own event.
	SenderMembershipID string
}

// RecipientResolver computes the confirmed notifiable recipient set for a
// dispatch. Inactive memberships are dropped, event-chat mutes and explicit
// exclusions are subtracted, and the sender is removed. An empty result is a
// valid terminal state, not an error.
type RecipientResolver struct {
	DB    *gorm.DB
	Store MembershipStore
}

// NewRecipientResolver constructs a resolver over the given store.
func NewRecipientResolver(db *gorm.DB, store MembershipStore) *RecipientResolver {
	return &RecipientResolver{DB: db, Store: store}
}

// Resolve runs the resolution pipeline and returns a deduplicated slice of
// notifiable memberships (carrying locale and display name for grouping).
func (r *RecipientResolver) Resolve(ctx context.Context, in ResolveInput) ([]domain.Membership, error) {
	candidates, err := r.Store.ListActiveMemberships(ctx, r.DB, in.TenantID, in.UserIDs)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []domain.Membership{}, nil
	}

	drop := make(map[string]struct{})

	// Event-chat mutes take precedence over everything else, including
	// mentions handled by the caller.
	if in.ConversationID != "" {
		conv, err := r.Store.GetConversation(ctx, r.DB, in.ConversationID)
		if err != nil {
			return nil, err
		}
		if conv.IsEventChat {
			excluded, err := r.Store.ListExcludedMembershipIDs(ctx, r.DB, in.ConversationID)
			if err != nil {
				return nil, err
			}
			for _, id := range excluded {
				drop[id] = struct{}{}
			}
		}
	}

	// Explicit user-level exclusions resolve through the same membership
	// lookup so that only identifiers within this tenant can match.
	if len(in.ExcludeUserIDs) > 0 {
		excluded, err := r.Store.ListActiveMemberships(ctx, r.DB, in.TenantID, in.ExcludeUserIDs)
		if err != nil {
			return nil, err
		}
		for _, m := range excluded {
			drop[m.ID] = struct{}{}
		}
	}

	if in.SenderMembershipID != "" {
		drop[in.SenderMembershipID] = struct{}{}
	}

	seen := make(map[string]struct{}, len(candidates))
	out := make([]domain.Membership, 0, len(candidates))
	for _, m := range candidates {
		if _, excluded := drop[m.ID]; excluded {
			continue
		}
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	return out, nil
}
