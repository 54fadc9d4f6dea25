package services

import (
	"context"
	"errors"
	"time"

	"github.com/linesmerrill/dinebuddies-api/databases"
)

// dateLayout is the layout of invitation dates
const dateLayout = "2006-01-02"

// DailyCreationGuard keeps a user to one active invitation at a time
type DailyCreationGuard struct {
	invitations databases.InvitationDatabase
	now         func() time.Time
}

// CreationCheck is the verdict of ValidateInvitationCreation
type CreationCheck struct {
	Valid                bool   `json:"valid"`
	ExistingInvitationID string `json:"existingInvitationId,omitempty"`
	ExistingDate         string `json:"existingDate,omitempty"`
}

// NewDailyCreationGuard creates a DailyCreationGuard
func NewDailyCreationGuard(invitations databases.InvitationDatabase, now func() time.Time) *DailyCreationGuard {
	if now == nil {
		now = time.Now
	}
	return &DailyCreationGuard{invitations: invitations, now: now}
}

// ValidateInvitationCreation looks for an invitation by userID that is not
// cancelled and dated today or later
func (g *DailyCreationGuard) ValidateInvitationCreation(ctx context.Context, userID string) (CreationCheck, error) {
	inv, err := g.invitations.FindUpcomingByAuthor(ctx, userID, g.today())
	if errors.Is(err, databases.ErrNotFound) {
		return CreationCheck{Valid: true}, nil
	}
	if err != nil {
		return CreationCheck{}, storageFailure("find upcoming invitation", err)
	}
	return CreationCheck{Valid: false, ExistingInvitationID: inv.ID, ExistingDate: inv.Date}, nil
}

func (g *DailyCreationGuard) today() string {
	return g.now().Format(dateLayout)
}
