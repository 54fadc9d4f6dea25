package memdb

import (
	"context"
	"fmt"
	"time"

	"github.com/linesmerrill/dinebuddies-api/databases"
	"github.com/linesmerrill/dinebuddies-api/models"
)

type invitationCollection struct {
	s *Store
}

func notFound(id string) error {
	return fmt.Errorf("invitation %s: %w", id, databases.ErrNotFound)
}

func (c *invitationCollection) InsertOne(ctx context.Context, invitation models.Invitation) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if _, ok := c.s.invitations[invitation.ID]; ok {
		return fmt.Errorf("duplicate invitation id %s", invitation.ID)
	}
	c.s.invitations[invitation.ID] = cloneInvitation(databases.NormalizeInvitation(invitation))
	return nil
}

func (c *invitationCollection) FindByID(ctx context.Context, id string) (*models.Invitation, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	inv, ok := c.s.invitations[id]
	if !ok {
		return nil, notFound(id)
	}
	inv = cloneInvitation(inv)
	return &inv, nil
}

func (c *invitationCollection) FindUpcomingByAuthor(ctx context.Context, authorID, fromDate string) (*models.Invitation, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	var found *models.Invitation
	for _, inv := range c.s.invitations {
		if inv.Author.ID != authorID || inv.Date < fromDate || inv.IsCancelled() {
			continue
		}
		if found == nil || inv.Date < found.Date {
			cp := cloneInvitation(inv)
			found = &cp
		}
	}
	if found == nil {
		return nil, notFound("by author " + authorID)
	}
	return found, nil
}

// update applies fn to the stored invitation; fn returns false to leave it untouched
func (c *invitationCollection) update(id string, fn func(inv *models.Invitation) bool) (before, after *models.Invitation, changed bool) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	inv, ok := c.s.invitations[id]
	if !ok {
		return nil, nil, false
	}
	prev := cloneInvitation(inv)
	next := cloneInvitation(inv)
	if !fn(&next) {
		return &prev, nil, false
	}
	c.s.invitations[id] = next
	out := cloneInvitation(next)
	return &prev, &out, true
}

func (c *invitationCollection) AddRequest(ctx context.Context, invitationID, userID string) (bool, error) {
	_, _, changed := c.update(invitationID, func(inv *models.Invitation) bool {
		if inv.IsCancelled() || inv.HasJoined(userID) || inv.HasRequested(userID) {
			return false
		}
		inv.Requests = append(inv.Requests, userID)
		return true
	})
	return changed, nil
}

func (c *invitationCollection) RemoveRequest(ctx context.Context, invitationID, userID string) (bool, error) {
	_, _, changed := c.update(invitationID, func(inv *models.Invitation) (ok bool) {
		inv.Requests, ok = pull(inv.Requests, userID)
		return
	})
	return changed, nil
}

func (c *invitationCollection) ApproveRequest(ctx context.Context, invitationID, userID string) (*models.Invitation, error) {
	_, after, changed := c.update(invitationID, func(inv *models.Invitation) bool {
		if inv.IsCancelled() || !inv.HasRequested(userID) || inv.IsFull() {
			return false
		}
		inv.Requests, _ = pull(inv.Requests, userID)
		inv.Joined, _ = addToSet(inv.Joined, userID)
		return true
	})
	if !changed {
		return nil, notFound(invitationID)
	}
	return after, nil
}

func (c *invitationCollection) Reschedule(ctx context.Context, invitationID string, entry models.EditEntry) (*models.Invitation, error) {
	before, _, changed := c.update(invitationID, func(inv *models.Invitation) bool {
		if inv.IsCancelled() || len(inv.EditHistory) > 0 {
			return false
		}
		for _, id := range inv.Joined {
			inv.Requests, _ = addToSet(inv.Requests, id)
			inv.PendingChangeApproval, _ = addToSet(inv.PendingChangeApproval, id)
		}
		inv.Joined = []string{}
		inv.Date = entry.NewDate
		inv.Time = entry.NewTime
		inv.EditHistory = []models.EditEntry{entry}
		return true
	})
	if !changed {
		return nil, notFound(invitationID)
	}
	return before, nil
}

func (c *invitationCollection) ConfirmNewTime(ctx context.Context, invitationID, userID string) (bool, error) {
	_, _, changed := c.update(invitationID, func(inv *models.Invitation) bool {
		var ok bool
		if inv.PendingChangeApproval, ok = pull(inv.PendingChangeApproval, userID); !ok {
			return false
		}
		inv.Requests, _ = pull(inv.Requests, userID)
		inv.Joined, _ = addToSet(inv.Joined, userID)
		return true
	})
	return changed, nil
}

func (c *invitationCollection) DeclineNewTime(ctx context.Context, invitationID, userID string) (bool, error) {
	_, _, changed := c.update(invitationID, func(inv *models.Invitation) bool {
		var ok bool
		if inv.PendingChangeApproval, ok = pull(inv.PendingChangeApproval, userID); !ok {
			return false
		}
		inv.Requests, _ = pull(inv.Requests, userID)
		return true
	})
	return changed, nil
}

func (c *invitationCollection) AdvanceStatus(ctx context.Context, invitationID string, from, to models.MeetingStatus, at time.Time) (bool, error) {
	_, _, changed := c.update(invitationID, func(inv *models.Invitation) bool {
		current := inv.MeetingStatus
		if current == "" {
			current = models.StatusPlanning
		}
		if inv.IsCancelled() || current != from {
			return false
		}
		inv.MeetingStatus = to
		if to == models.StatusCompleted {
			t := at
			inv.CompletedAt = &t
		}
		return true
	})
	return changed, nil
}

func (c *invitationCollection) SetRating(ctx context.Context, invitationID string, rating models.Rating) (bool, error) {
	_, _, changed := c.update(invitationID, func(inv *models.Invitation) bool {
		if inv.MeetingStatus != models.StatusCompleted || inv.Rating != nil {
			return false
		}
		r := rating
		inv.Rating = &r
		return true
	})
	return changed, nil
}

func (c *invitationCollection) MarkCancelled(ctx context.Context, invitationID, reason string, at time.Time) (*models.Invitation, error) {
	before, _, changed := c.update(invitationID, func(inv *models.Invitation) bool {
		if inv.IsCancelled() {
			return false
		}
		t := at
		inv.CancelledAt = &t
		inv.CancelReason = reason
		return true
	})
	if !changed {
		return nil, notFound(invitationID)
	}
	return before, nil
}
