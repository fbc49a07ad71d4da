// Package repo – membership and conversation queries.
//
// The membership subsystem owns these tables; the notification core only
// reads them to resolve candidate user identifiers into active memberships
// and to compute per-conversation exclusion sets.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/parishlink/go-notify-backend/internal/domain"
)

// ListActiveMemberships resolves candidate user IDs to their active
// memberships within tenantID. Users without a membership, or whose
// membership is invited/suspended/removed, are silently dropped.
func ListActiveMemberships(ctx context.Context, db *gorm.DB, tenantID string, userIDs []string) ([]domain.Membership, error) {
	if len(userIDs) == 0 {
		return []domain.Membership{}, nil
	}
	var out []domain.Membership
	err := db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("user_id IN ?", userIDs).
		Where("status = ?", domain.MembershipActive).
		Find(&out).Error
	return out, err
}

// GetMembership fetches a membership by ID, or ErrNotFound.
func GetMembership(ctx context.Context, db *gorm.DB, id string) (*domain.Membership, error) {
	var m domain.Membership
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// GetConversation fetches a conversation by ID, or ErrNotFound.
func GetConversation(ctx context.Context, db *gorm.DB, id string) (*domain.Conversation, error) {
	var c domain.Conversation
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListConversationMembers returns all members of a conversation with their
// memberships preloaded. Callers filter for active status and exclusion
// themselves; the repository stays policy-free.
func ListConversationMembers(ctx context.Context, db *gorm.DB, conversationID string) ([]domain.ConversationMember, error) {
	var out []domain.ConversationMember
	err := db.WithContext(ctx).
		Preload("Membership").
		Where("conversation_id = ?", conversationID).
		Find(&out).Error
	return out, err
}

// ListExcludedMembershipIDs returns the membership IDs muted for a
// conversation. The result is computed fresh on every call: exclusions can
// change between two messages in the same conversation, so it is never cached.
func ListExcludedMembershipIDs(ctx context.Context, db *gorm.DB, conversationID string) ([]string, error) {
	var ids []string
	err := db.WithContext(ctx).
		Model(&domain.ConversationMember{}).
		Where("conversation_id = ? AND notify_excluded = ?", conversationID, true).
		Pluck("membership_id", &ids).Error
	return ids, err
}
