package services

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/linesmerrill/dinebuddies-api/databases"
	"github.com/linesmerrill/dinebuddies-api/models"
)

// CommunityMembership manages which users belong to a partner's community
type CommunityMembership struct {
	users    databases.UserDatabase
	notifier Notifier
}

// NewCommunityMembership creates a CommunityMembership
func NewCommunityMembership(users databases.UserDatabase, notifier Notifier) *CommunityMembership {
	return &CommunityMembership{users: users, notifier: notifier}
}

// JoinCommunity adds userID to the partner's community. Joining twice is a
// no-op.
func (c *CommunityMembership) JoinCommunity(ctx context.Context, userID, partnerID string) error {
	user, err := c.users.FindByID(ctx, userID)
	if err != nil {
		return lookupFailure("find user", err)
	}
	if user.IsGuest() {
		return ErrGuestNotAllowed
	}
	if _, err := c.partner(ctx, partnerID); err != nil {
		return err
	}
	if _, err := c.users.AddCommunity(ctx, userID, partnerID); err != nil {
		return storageFailure("add community", err)
	}
	return nil
}

// LeaveCommunity removes userID from the partner's community
func (c *CommunityMembership) LeaveCommunity(ctx context.Context, userID, partnerID string) error {
	removed, err := c.users.RemoveCommunity(ctx, userID, partnerID)
	if err != nil {
		return storageFailure("remove community", err)
	}
	if !removed {
		return ErrNotMember
	}
	return nil
}

// RemoveMember removes userID from the partner's community and tells them so
func (c *CommunityMembership) RemoveMember(ctx context.Context, partnerID, userID string) error {
	partner, err := c.partner(ctx, partnerID)
	if err != nil {
		return err
	}
	removed, err := c.users.RemoveCommunity(ctx, userID, partnerID)
	if err != nil {
		return storageFailure("remove community", err)
	}
	if !removed {
		return ErrNotMember
	}

	c.notifier.Notify(ctx, userID, models.Notification{
		Type:    models.NotificationCommunityRemoved,
		Title:   "Removed from community",
		Message: "You were removed from " + partner.Name,
		Payload: map[string]interface{}{"partnerId": partnerID},
	})
	return nil
}

// BroadcastMessage sends a message to every member of the partner's
// community and returns how many members it reached
func (c *CommunityMembership) BroadcastMessage(ctx context.Context, partnerID, title, message string) (sent int, err error) {
	ctx, span := startSpan(ctx, "CommunityMembership.BroadcastMessage", attribute.String("partner.id", partnerID))
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(title) == "" || strings.TrimSpace(message) == "" {
		return 0, invalid("title and message are required")
	}
	partner, err := c.partner(ctx, partnerID)
	if err != nil {
		return 0, err
	}
	members, err := c.users.FindCommunityMembers(ctx, partnerID)
	if err != nil {
		return 0, storageFailure("find community members", err)
	}

	for _, m := range members {
		c.notifier.Notify(ctx, m.ID, models.Notification{
			Type:    models.NotificationCommunityMessage,
			Title:   title,
			Message: message,
			Payload: map[string]interface{}{
				"partnerId":   partnerID,
				"partnerName": partner.Name,
			},
		})
	}
	zap.S().Infow("community broadcast sent", "partner", partnerID, "members", len(members))
	return len(members), nil
}

func (c *CommunityMembership) partner(ctx context.Context, partnerID string) (*models.User, error) {
	partner, err := c.users.FindByID(ctx, partnerID)
	if err != nil {
		return nil, lookupFailure("find partner", err)
	}
	if !partner.IsBusiness() {
		return nil, invalid("%s is not a partner", partnerID)
	}
	return partner, nil
}
