package services

import (
	"context"

	"github.com/linesmerrill/dinebuddies-api/databases"
)

// RatingReward is what a rater earns for rating a completed invitation
const RatingReward = 5

// Reputation awards reputation points
type Reputation struct {
	users databases.UserDatabase
}

// NewReputation creates a Reputation
func NewReputation(users databases.UserDatabase) *Reputation {
	return &Reputation{users: users}
}

// AwardReputation adds delta points to userID
func (r *Reputation) AwardReputation(ctx context.Context, userID string, delta int) error {
	if err := r.users.IncrementReputation(ctx, userID, delta); err != nil {
		return lookupFailure("increment reputation", err)
	}
	return nil
}
