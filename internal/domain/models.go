// Package domain defines the persistence models for device tokens,
// memberships, conversations, messages, prayer cards, pastoral journals, and
// the notification audit trail. These types are mapped with GORM and form the
// core data layer of the notification backend.
package domain

import (
	"time"
)

// Platform identifies the mobile platform a device token belongs to.
type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
)

// MembershipStatus is the lifecycle status of a user's membership in a tenant.
type MembershipStatus string

const (
	MembershipInvited   MembershipStatus = "invited"
	MembershipActive    MembershipStatus = "active"
	MembershipSuspended MembershipStatus = "suspended"
	MembershipRemoved   MembershipStatus = "removed"
)

// ContentType classifies the body of a chat message. Notification copy is
// selected per category (attachments and system messages get fixed
// placeholder bodies instead of raw content).
type ContentType string

const (
	ContentText       ContentType = "text"
	ContentImage      ContentType = "image"
	ContentFile       ContentType = "file"
	ContentPrayerCard ContentType = "prayer_card"
	ContentSystem     ContentType = "system"
)

// DeviceToken is a device push registration owned by a user within a tenant.
// Tokens are never hard-deleted: revocation sets RevokedAt so delivery history
// stays auditable. A token is eligible for delivery only while RevokedAt is
// null and LastUsedAt falls within the configured freshness window.
//
// Tenant isolation invariant: a token row belongs to exactly one tenant; the
// same physical device registers separately per tenant membership.
type DeviceToken struct {
	ID         string     `json:"id"           gorm:"type:char(36);primaryKey"`
	TenantID   string     `json:"tenant_id"    gorm:"type:char(36);not null;index:idx_tenant_user_tokens,priority:1"`
	UserID     string     `json:"user_id"      gorm:"type:varchar(64);not null;index:idx_tenant_user_tokens,priority:2"`
	Token      string     `json:"token"        gorm:"type:varchar(255);not null;uniqueIndex:ux_device_token"`
	Platform   Platform   `json:"platform"     gorm:"type:varchar(10);not null;check:platform IN ('ios','android')"`
	LastUsedAt time.Time  `json:"last_used_at" gorm:"not null;index"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// TableName returns the database table name for DeviceToken.
func (DeviceToken) TableName() string { return "device_tokens" }

// Membership binds a user to a tenant with a role and status. It is owned by
// the membership subsystem; the notification core only reads it to decide
// eligibility (status must be active) and to carry the per-recipient display
// name and locale used when building notification copy.
type Membership struct {
	ID          string           `json:"id"           gorm:"type:char(36);primaryKey"`
	TenantID    string           `json:"tenant_id"    gorm:"type:char(36);not null;index:idx_tenant_members,priority:1"`
	UserID      string           `json:"user_id"      gorm:"type:varchar(64);not null;index:idx_tenant_members,priority:2"`
	DisplayName string           `json:"display_name" gorm:"type:varchar(100);not null"`
	Locale      string           `json:"locale"       gorm:"type:varchar(16);not null;default:'en'"`
	Role        string           `json:"role"         gorm:"type:varchar(20);not null;default:'member'"`
	Status      MembershipStatus `json:"status"       gorm:"type:varchar(16);not null;default:'invited';check:status IN ('invited','active','suspended','removed')"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// TableName returns the database table name for Membership.
func (Membership) TableName() string { return "memberships" }

// Conversation is a chat room within a tenant. Event chats support
// per-participant notification muting (see ConversationMember.NotifyExcluded).
type Conversation struct {
	ID          string    `json:"id"            gorm:"type:char(36);primaryKey"`
	TenantID    string    `json:"tenant_id"     gorm:"type:char(36);not null;index"`
	Name        string    `json:"name"          gorm:"type:varchar(100)"`
	IsEventChat bool      `json:"is_event_chat" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName returns the database table name for Conversation.
func (Conversation) TableName() string { return "conversations" }

// ConversationMember links a membership to a conversation. NotifyExcluded is
// the per-conversation mute: in event chats an excluded participant receives
// no pushes for that conversation while remaining a full participant.
type ConversationMember struct {
	ID             string    `json:"id"              gorm:"type:char(36);primaryKey"`
	ConversationID string    `json:"conversation_id" gorm:"type:char(36);not null;uniqueIndex:ux_conv_member,priority:1"`
	MembershipID   string    `json:"membership_id"   gorm:"type:char(36);not null;uniqueIndex:ux_conv_member,priority:2"`
	NotifyExcluded bool      `json:"notify_excluded" gorm:"not null;default:false"`
	JoinedAt       time.Time `json:"joined_at"`

	// Membership is preloaded when resolving notifiable participants.
	Membership Membership `json:"-" gorm:"foreignKey:MembershipID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for ConversationMember.
func (ConversationMember) TableName() string { return "conversation_members" }

// Message is a chat message; the message-sent event handler loads it together
// with its conversation to drive the notification fan-out.
type Message struct {
	ID                 string      `json:"id"                   gorm:"type:char(36);primaryKey"`
	TenantID           string      `json:"tenant_id"            gorm:"type:char(36);not null;index"`
	ConversationID     string      `json:"conversation_id"      gorm:"type:char(36);not null;index"`
	SenderMembershipID string      `json:"sender_membership_id" gorm:"type:char(36);not null"`
	Content            string      `json:"content"              gorm:"type:text;not null"`
	ContentType        ContentType `json:"content_type"         gorm:"type:varchar(20);not null;default:'text';check:content_type IN ('text','image','file','prayer_card','system')"`
	CreatedAt          time.Time   `json:"created_at"`

	Conversation Conversation `json:"-" gorm:"foreignKey:ConversationID;references:ID"`
	Sender       Membership   `json:"-" gorm:"foreignKey:SenderMembershipID;references:ID"`
}

// TableName returns the database table name for Message.
func (Message) TableName() string { return "messages" }

// PrayerCard is a prayer request posted into a conversation. When marked
// answered, conversation participants are notified.
type PrayerCard struct {
	ID                 string     `json:"id"                   gorm:"type:char(36);primaryKey"`
	TenantID           string     `json:"tenant_id"            gorm:"type:char(36);not null;index"`
	ConversationID     string     `json:"conversation_id"      gorm:"type:char(36);not null;index"`
	AuthorMembershipID string     `json:"author_membership_id" gorm:"type:char(36);not null"`
	Title              string     `json:"title"                gorm:"type:varchar(255);not null"`
	Content            string     `json:"content"              gorm:"type:text"`
	AnsweredAt         *time.Time `json:"answered_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`

	Author Membership `json:"-" gorm:"foreignKey:AuthorMembershipID;references:ID"`
}

// TableName returns the database table name for PrayerCard.
func (PrayerCard) TableName() string { return "prayer_cards" }

// PastoralJournal is a journal entry submitted by a member to their assigned
// shepherd. Submission notifies the shepherd only.
type PastoralJournal struct {
	ID                   string    `json:"id"                     gorm:"type:char(36);primaryKey"`
	TenantID             string    `json:"tenant_id"              gorm:"type:char(36);not null;index"`
	AuthorMembershipID   string    `json:"author_membership_id"   gorm:"type:char(36);not null"`
	ShepherdMembershipID string    `json:"shepherd_membership_id" gorm:"type:char(36);not null"`
	Content              string    `json:"content"                gorm:"type:text;not null"`
	SubmittedAt          time.Time `json:"submitted_at"`
	CreatedAt            time.Time `json:"created_at"`

	Author   Membership `json:"-" gorm:"foreignKey:AuthorMembershipID;references:ID"`
	Shepherd Membership `json:"-" gorm:"foreignKey:ShepherdMembershipID;references:ID"`
}

// TableName returns the database table name for PastoralJournal.
func (PastoralJournal) TableName() string { return "pastoral_journals" }

// AuditLogEntry is the append-only summary record written once per dispatch
// attempt. The core never reads these rows back; they exist for operators.
type AuditLogEntry struct {
	ID               string    `json:"id"                gorm:"type:char(36);primaryKey"`
	TenantID         string    `json:"tenant_id"         gorm:"type:char(36);not null;index"`
	NotificationType string    `json:"notification_type" gorm:"type:varchar(40);not null"`
	RecipientCount   int       `json:"recipient_count"   gorm:"not null"`
	SentCount        int       `json:"sent_count"        gorm:"not null"`
	FailedCount      int       `json:"failed_count"      gorm:"not null"`
	ErrorSummary     string    `json:"error_summary,omitempty" gorm:"type:text"`
	CreatedAt        time.Time `json:"created_at"`
}

// TableName returns the database table name for AuditLogEntry.
func (AuditLogEntry) TableName() string { return "notification_audit_log" }
