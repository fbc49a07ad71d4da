package repo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/parishlink/go-notify-backend/internal/domain"
)

func seedMembership(t *testing.T, db *gorm.DB, tenantID, userID, name string, status domain.MembershipStatus) domain.Membership {
	t.Helper()
	m := domain.Membership{
		ID:          uuid.NewString(),
		TenantID:    tenantID,
		UserID:      userID,
		DisplayName: name,
		Locale:      "en",
		Status:      status,
	}
	if err := db.Create(&m).Error; err != nil {
		t.Fatalf("seed membership %s: %v", userID, err)
	}
	return m
}

func seedConversation(t *testing.T, db *gorm.DB, tenantID string, event bool) domain.Conversation {
	t.Helper()
	c := domain.Conversation{ID: uuid.NewString(), TenantID: tenantID, Name: "test", IsEventChat: event}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed conversation: %v", err)
	}
	return c
}

func seedConvMember(t *testing.T, db *gorm.DB, convID, membershipID string, excluded bool) {
	t.Helper()
	cm := domain.ConversationMember{
		ID:             uuid.NewString(),
		ConversationID: convID,
		MembershipID:   membershipID,
		NotifyExcluded: excluded,
	}
	if err := db.Create(&cm).Error; err != nil {
		t.Fatalf("seed conversation member: %v", err)
	}
}

func TestListActiveMemberships(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	active := seedMembership(t, db, "t1", "u1", "Active", domain.MembershipActive)
	seedMembership(t, db, "t1", "u2", "Suspended", domain.MembershipSuspended)
	seedMembership(t, db, "t1", "u3", "Invited", domain.MembershipInvited)
	seedMembership(t, db, "t2", "u4", "ForeignTenant", domain.MembershipActive)

	got, err := ListActiveMemberships(ctx, db, "t1", []string{"u1", "u2", "u3", "u4", "nobody"})
	if err != nil {
		t.Fatalf("ListActiveMemberships: %v", err)
	}
	if len(got) != 1 || got[0].ID != active.ID {
		t.Fatalf("want only the active t1 membership, got %+v", got)
	}

	empty, err := ListActiveMemberships(ctx, db, "t1", nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty user list: got %v, %v", empty, err)
	}
}

func TestListConversationMembers_PreloadsMembership(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	conv := seedConversation(t, db, "t1", true)
	m1 := seedMembership(t, db, "t1", "u1", "Grace", domain.MembershipActive)
	m2 := seedMembership(t, db, "t1", "u2", "Paul", domain.MembershipActive)
	seedConvMember(t, db, conv.ID, m1.ID, false)
	seedConvMember(t, db, conv.ID, m2.ID, true)

	got, err := ListConversationMembers(ctx, db, conv.ID)
	if err != nil {
		t.Fatalf("ListConversationMembers: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 members, got %d", len(got))
	}
	for _, cm := range got {
		if cm.Membership.ID != cm.MembershipID {
			t.Fatalf("membership not preloaded: %+v", cm)
		}
	}
}

func TestListExcludedMembershipIDs(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	conv := seedConversation(t, db, "t1", true)
	other := seedConversation(t, db, "t1", true)
	m1 := seedMembership(t, db, "t1", "u1", "Grace", domain.MembershipActive)
	m2 := seedMembership(t, db, "t1", "u2", "Paul", domain.MembershipActive)
	seedConvMember(t, db, conv.ID, m1.ID, true)
	seedConvMember(t, db, conv.ID, m2.ID, false)
	seedConvMember(t, db, other.ID, m2.ID, true)

	got, err := ListExcludedMembershipIDs(ctx, db, conv.ID)
	if err != nil {
		t.Fatalf("ListExcludedMembershipIDs: %v", err)
	}
	if len(got) != 1 || got[0] != m1.ID {
		t.Fatalf("exclusion set scoped wrong: %v", got)
	}
}

func TestGetConversation_NotFound(t *testing.T) {
	db := testDB(t)
	if _, err := GetConversation(context.Background(), db, uuid.NewString()); err != ErrNotFound {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
