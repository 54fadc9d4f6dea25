package services

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/linesmerrill/dinebuddies-api/databases"
	"github.com/linesmerrill/dinebuddies-api/models"
)

// FollowGraph maintains the directed follow edges between users together with
// the denormalized followers counter of each target.
type FollowGraph struct {
	users    databases.UserDatabase
	tx       databases.Transactor
	notifier Notifier
}

// FollowResult is the state of the edge after a toggle
type FollowResult struct {
	Following      bool `json:"following"`
	FollowersCount int  `json:"followersCount"`
}

// NewFollowGraph creates a FollowGraph
func NewFollowGraph(users databases.UserDatabase, tx databases.Transactor, notifier Notifier) *FollowGraph {
	return &FollowGraph{users: users, tx: tx, notifier: notifier}
}

// ToggleFollow flips the actor -> target edge. The edge and the target's
// followers counter change together or not at all. Following yourself is a
// no-op that reports the actor's current state.
func (g *FollowGraph) ToggleFollow(ctx context.Context, actorID, targetID string) (res FollowResult, err error) {
	ctx, span := startSpan(ctx, "FollowGraph.ToggleFollow",
		attribute.String("actor.id", actorID), attribute.String("target.id", targetID))
	defer func() { endSpan(span, err) }()

	actor, err := g.users.FindByID(ctx, actorID)
	if err != nil {
		return res, lookupFailure("find actor", err)
	}
	if actor.IsGuest() {
		return res, ErrGuestNotAllowed
	}
	if actorID == targetID {
		return FollowResult{Following: false, FollowersCount: actor.FollowersCount}, nil
	}

	target, err := g.users.FindByID(ctx, targetID)
	if err != nil {
		return res, lookupFailure("find target", err)
	}
	if target.IsBusiness() {
		return res, ErrBusinessAccountNotFollowable
	}

	var following bool
	err = g.tx.WithTransaction(ctx, func(ctx context.Context) error {
		added, err := g.users.AddFollowing(ctx, actorID, targetID)
		if err != nil {
			return err
		}
		if added {
			if err := g.users.IncrementFollowers(ctx, targetID, 1); err != nil {
				g.compensate(ctx, "remove following", func() (bool, error) {
					return g.users.RemoveFollowing(ctx, actorID, targetID)
				})
				return err
			}
			following = true
			return nil
		}

		removed, err := g.users.RemoveFollowing(ctx, actorID, targetID)
		if err != nil {
			return err
		}
		if !removed {
			return nil
		}
		if err := g.users.IncrementFollowers(ctx, targetID, -1); err != nil {
			g.compensate(ctx, "restore following", func() (bool, error) {
				return g.users.AddFollowing(ctx, actorID, targetID)
			})
			return err
		}
		return nil
	})
	if err != nil {
		zap.S().Errorw("failed to toggle follow",
			"actor", actorID,
			"target", targetID,
			"error", err)
		return FollowResult{Following: actor.Follows(targetID), FollowersCount: target.FollowersCount}, storageFailure("toggle follow", err)
	}

	if following {
		g.notifier.Notify(ctx, targetID, models.Notification{
			Type:    models.NotificationNewFollower,
			Title:   "New follower",
			Message: actor.Name + " started following you",
			Payload: map[string]interface{}{
				"followerId":     actor.ID,
				"followerName":   actor.Name,
				"followerAvatar": actor.Avatar,
			},
		})
	}

	res = FollowResult{Following: following, FollowersCount: target.FollowersCount}
	refreshed, ferr := g.users.FindByID(ctx, targetID)
	if ferr == nil {
		res.FollowersCount = refreshed.FollowersCount
	} else {
		zap.S().Warnw("failed to refresh followers count", "target", targetID, "error", ferr)
	}
	return res, nil
}

// compensate undoes a partial write when the store has no real transactions
func (g *FollowGraph) compensate(ctx context.Context, what string, undo func() (bool, error)) {
	if _, err := undo(); err != nil {
		zap.S().Errorw("compensating write failed", "op", what, "error", err)
	}
}

// GetFollowers lists the users following userID
func (g *FollowGraph) GetFollowers(ctx context.Context, userID string) ([]models.User, error) {
	if _, err := g.users.FindByID(ctx, userID); err != nil {
		return nil, lookupFailure("find user", err)
	}
	followers, err := g.users.FindFollowers(ctx, userID)
	if err != nil {
		return nil, storageFailure("find followers", err)
	}
	return followers, nil
}

// GetFollowing lists the users userID follows
func (g *FollowGraph) GetFollowing(ctx context.Context, userID string) ([]models.User, error) {
	user, err := g.users.FindByID(ctx, userID)
	if err != nil {
		return nil, lookupFailure("find user", err)
	}
	following, err := g.users.FindByIDs(ctx, user.Following)
	if err != nil {
		return nil, storageFailure("find following", err)
	}
	return following, nil
}

// GetMutualFollowers lists the users that both follow userID and are followed
// by userID
func (g *FollowGraph) GetMutualFollowers(ctx context.Context, userID string) ([]models.User, error) {
	user, err := g.users.FindByID(ctx, userID)
	if err != nil {
		return nil, lookupFailure("find user", err)
	}
	followers, err := g.users.FindFollowers(ctx, userID)
	if err != nil {
		return nil, storageFailure("find followers", err)
	}

	mutual := []models.User{}
	for _, f := range followers {
		if user.Follows(f.ID) {
			mutual = append(mutual, f)
		}
	}
	return mutual, nil
}

// CountMutual returns how many users two users both follow
func (g *FollowGraph) CountMutual(ctx context.Context, userID, otherID string) (int, error) {
	users, err := g.users.FindByIDs(ctx, []string{userID, otherID})
	if err != nil {
		return 0, storageFailure("find users", err)
	}
	var a, b *models.User
	for i := range users {
		switch users[i].ID {
		case userID:
			a = &users[i]
		case otherID:
			b = &users[i]
		}
	}
	if a == nil || b == nil {
		return 0, ErrTargetNotFound
	}
	return MutualFollowersCount(a.Following, b.Following), nil
}

// IsMutual reports whether a and b follow each other
func (g *FollowGraph) IsMutual(ctx context.Context, a, b string) (bool, error) {
	ua, err := g.users.FindByID(ctx, a)
	if err != nil {
		return false, lookupFailure("find user", err)
	}
	ub, err := g.users.FindByID(ctx, b)
	if err != nil {
		return false, lookupFailure("find user", err)
	}
	return Mutual(*ua, *ub), nil
}

// Mutual reports whether the two users follow each other
func Mutual(a, b models.User) bool {
	return a.ID != b.ID && a.Follows(b.ID) && b.Follows(a.ID)
}

// MutualFollowersCount counts the ids present in both lists. Duplicates are
// counted once.
func MutualFollowersCount(a, b []string) int {
	set := make(map[string]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	count := 0
	for _, id := range b {
		if _, ok := set[id]; ok {
			count++
			delete(set, id)
		}
	}
	return count
}
