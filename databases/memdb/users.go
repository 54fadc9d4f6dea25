package memdb

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/linesmerrill/dinebuddies-api/databases"
	"github.com/linesmerrill/dinebuddies-api/models"
)

type userCollection struct {
	s *Store
}

func (c *userCollection) FindByID(ctx context.Context, id string) (*models.User, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	u, ok := c.s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, databases.ErrNotFound)
	}
	u = cloneUser(u)
	return &u, nil
}

func (c *userCollection) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	for _, u := range c.s.users {
		if u.Email == email {
			u = cloneUser(u)
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, databases.ErrNotFound)
}

func (c *userCollection) filter(match func(models.User) bool) []models.User {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	out := []models.User{}
	for _, u := range c.s.users {
		if match(u) {
			out = append(out, cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c *userCollection) FindByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	return c.filter(func(u models.User) bool { return indexOf(ids, u.ID) >= 0 }), nil
}

func (c *userCollection) FindFollowers(ctx context.Context, id string) ([]models.User, error) {
	return c.filter(func(u models.User) bool { return indexOf(u.Following, id) >= 0 }), nil
}

func (c *userCollection) FindCommunityMembers(ctx context.Context, partnerID string) ([]models.User, error) {
	return c.filter(func(u models.User) bool { return indexOf(u.JoinedCommunities, partnerID) >= 0 }), nil
}

func (c *userCollection) InsertOne(ctx context.Context, user models.User) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if _, ok := c.s.users[user.ID]; ok {
		return fmt.Errorf("duplicate user id %s", user.ID)
	}
	c.s.users[user.ID] = cloneUser(databases.NormalizeUser(user))
	return nil
}

// update applies fn to the stored user under the write lock
func (c *userCollection) update(id string, fn func(u *models.User) bool) (bool, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	u, ok := c.s.users[id]
	if !ok {
		return false, nil
	}
	changed := fn(&u)
	c.s.users[id] = u
	return changed, nil
}

func (c *userCollection) AddFollowing(ctx context.Context, userID, targetID string) (bool, error) {
	return c.update(userID, func(u *models.User) (changed bool) {
		u.Following, changed = addToSet(u.Following, targetID)
		return
	})
}

func (c *userCollection) RemoveFollowing(ctx context.Context, userID, targetID string) (bool, error) {
	return c.update(userID, func(u *models.User) (changed bool) {
		u.Following, changed = pull(u.Following, targetID)
		return
	})
}

func (c *userCollection) IncrementFollowers(ctx context.Context, userID string, delta int) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	u, ok := c.s.users[userID]
	if !ok {
		return fmt.Errorf("user %s: %w", userID, databases.ErrNotFound)
	}
	u.FollowersCount += delta
	c.s.users[userID] = u
	return nil
}

func (c *userCollection) AddCommunity(ctx context.Context, userID, partnerID string) (bool, error) {
	return c.update(userID, func(u *models.User) (changed bool) {
		u.JoinedCommunities, changed = addToSet(u.JoinedCommunities, partnerID)
		return
	})
}

func (c *userCollection) RemoveCommunity(ctx context.Context, userID, partnerID string) (bool, error) {
	return c.update(userID, func(u *models.User) (changed bool) {
		u.JoinedCommunities, changed = pull(u.JoinedCommunities, partnerID)
		return
	})
}

func (c *userCollection) AppendCancellation(ctx context.Context, userID string, record models.CancellationRecord) error {
	_, err := c.update(userID, func(u *models.User) bool {
		u.CancellationHistory = append(u.CancellationHistory, record)
		return true
	})
	return err
}

func (c *userCollection) SetRestriction(ctx context.Context, userID string, restriction models.InvitationRestriction) error {
	_, err := c.update(userID, func(u *models.User) bool {
		r := restriction
		u.InvitationRestriction = &r
		return true
	})
	return err
}

func (c *userCollection) ClearRestrictionIfExpired(ctx context.Context, userID string, now time.Time) (bool, error) {
	return c.update(userID, func(u *models.User) bool {
		if u.InvitationRestriction == nil || u.InvitationRestriction.Until.After(now) {
			return false
		}
		u.InvitationRestriction = nil
		return true
	})
}

func (c *userCollection) ClaimActiveInvitation(ctx context.Context, userID string, claim models.ActiveInvitation, today string) (bool, error) {
	return c.update(userID, func(u *models.User) bool {
		if u.ActiveInvitation != nil && u.ActiveInvitation.Date >= today {
			return false
		}
		a := claim
		u.ActiveInvitation = &a
		return true
	})
}

func (c *userCollection) ReleaseActiveInvitation(ctx context.Context, userID, invitationID string) error {
	_, err := c.update(userID, func(u *models.User) bool {
		if u.ActiveInvitation == nil || u.ActiveInvitation.InvitationID != invitationID {
			return false
		}
		u.ActiveInvitation = nil
		return true
	})
	return err
}

func (c *userCollection) IncrementReputation(ctx context.Context, userID string, delta int) error {
	_, err := c.update(userID, func(u *models.User) bool {
		u.Reputation += delta
		return true
	})
	return err
}

func (c *userCollection) PruneCancellationHistory(ctx context.Context, cutoff time.Time) (int64, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	var n int64
	for id, u := range c.s.users {
		kept := u.CancellationHistory[:0:0]
		for _, rec := range u.CancellationHistory {
			if !rec.Timestamp.Before(cutoff) {
				kept = append(kept, rec)
			}
		}
		if len(kept) != len(u.CancellationHistory) {
			u.CancellationHistory = kept
			c.s.users[id] = u
			n++
		}
	}
	return n, nil
}

func (c *userCollection) ClearExpiredRestrictions(ctx context.Context, now time.Time) (int64, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	var n int64
	for id, u := range c.s.users {
		if u.InvitationRestriction != nil && !u.InvitationRestriction.Until.After(now) {
			u.InvitationRestriction = nil
			c.s.users[id] = u
			n++
		}
	}
	return n, nil
}
