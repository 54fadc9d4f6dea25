package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/linesmerrill/dinebuddies-api/databases"
	"github.com/linesmerrill/dinebuddies-api/models"
)

// CancellationWindow is how far back cancellations count toward a penalty
const CancellationWindow = 90 * 24 * time.Hour

// PenaltyTier maps a cancellation count to a penalty
type PenaltyTier struct {
	Cancellations int
	Level         int
	Penalty       string
	Days          int
}

// PenaltyTiers is ordered by Cancellations; the highest tier reached wins
var PenaltyTiers = []PenaltyTier{
	{Cancellations: 1, Level: 1, Penalty: "warning", Days: 0},
	{Cancellations: 2, Level: 2, Penalty: "restriction", Days: 14},
	{Cancellations: 3, Level: 3, Penalty: "ban", Days: 30},
	{Cancellations: 4, Level: 4, Penalty: "long_ban", Days: 90},
}

// TierFor returns the highest tier reached by count
func TierFor(count int) (PenaltyTier, bool) {
	var (
		tier  PenaltyTier
		found bool
	)
	for _, t := range PenaltyTiers {
		if count >= t.Cancellations {
			tier, found = t, true
		}
	}
	return tier, found
}

// CancellationPolicy tracks host cancellations and the restrictions they earn
type CancellationPolicy struct {
	users databases.UserDatabase
	now   func() time.Time
}

// CancellationOutcome describes what a recorded cancellation cost the host
type CancellationOutcome struct {
	Exempt            bool                          `json:"exempt"`
	CancellationCount int                           `json:"cancellationCount"`
	Level             int                           `json:"level"`
	Penalty           string                        `json:"penalty,omitempty"`
	Restriction       *models.InvitationRestriction `json:"restriction,omitempty"`
}

// CreationPermission answers whether a user may create invitations right now
type CreationPermission struct {
	Allowed  bool       `json:"allowed"`
	Reason   string     `json:"reason,omitempty"`
	Until    *time.Time `json:"until,omitempty"`
	DaysLeft int        `json:"daysLeft,omitempty"`
}

// CleanupReport counts what a cleanup pass removed
type CleanupReport struct {
	PrunedUsers         int64 `json:"prunedUsers"`
	ClearedRestrictions int64 `json:"clearedRestrictions"`
}

// NewCancellationPolicy creates a CancellationPolicy
func NewCancellationPolicy(users databases.UserDatabase, now func() time.Time) *CancellationPolicy {
	if now == nil {
		now = time.Now
	}
	return &CancellationPolicy{users: users, now: now}
}

// RecordCancellation records that userID cancelled the invitation described
// by snapshot. Cancelling an invitation nobody joined or asked to join is
// exempt and leaves no trace.
func (p *CancellationPolicy) RecordCancellation(ctx context.Context, userID, invitationID, reason string, snapshot models.Invitation) (out CancellationOutcome, err error) {
	ctx, span := startSpan(ctx, "CancellationPolicy.RecordCancellation",
		attribute.String("user.id", userID), attribute.String("invitation.id", invitationID))
	defer func() { endSpan(span, err) }()

	if len(snapshot.Joined) == 0 && len(snapshot.Requests) == 0 {
		return CancellationOutcome{Exempt: true}, nil
	}

	user, err := p.users.FindByID(ctx, userID)
	if err != nil {
		return out, lookupFailure("find user", err)
	}

	now := p.now()
	record := models.CancellationRecord{
		InvitationID:         invitationID,
		Reason:               reason,
		Timestamp:            now,
		ParticipantsAffected: len(snapshot.Joined) + len(snapshot.Requests),
	}
	if err := p.users.AppendCancellation(ctx, userID, record); err != nil {
		return out, storageFailure("append cancellation", err)
	}

	count := len(withinWindow(append(user.CancellationHistory, record), now))
	out.CancellationCount = count

	tier, ok := TierFor(count)
	if !ok {
		return out, nil
	}
	out.Level = tier.Level
	out.Penalty = tier.Penalty
	if tier.Days == 0 {
		return out, nil
	}

	restriction := models.InvitationRestriction{
		Level:             tier.Level,
		Penalty:           tier.Penalty,
		Reason:            fmt.Sprintf("%d cancellations in the last 90 days", count),
		Until:             now.AddDate(0, 0, tier.Days),
		AppliedAt:         now,
		CancellationCount: count,
	}
	if existing := user.InvitationRestriction; existing != nil && existing.Until.After(restriction.Until) {
		restriction = *existing
	}
	if err := p.users.SetRestriction(ctx, userID, restriction); err != nil {
		return out, storageFailure("set restriction", err)
	}
	out.Restriction = &restriction

	zap.S().Infow("invitation restriction applied",
		"user", userID,
		"level", restriction.Level,
		"until", restriction.Until)
	return out, nil
}

// CanCreateInvitation reports whether an active restriction blocks userID.
// A restriction that has run out is cleared on the way.
func (p *CancellationPolicy) CanCreateInvitation(ctx context.Context, userID string) (CreationPermission, error) {
	user, err := p.users.FindByID(ctx, userID)
	if err != nil {
		return CreationPermission{}, lookupFailure("find user", err)
	}

	r := user.InvitationRestriction
	if r == nil {
		return CreationPermission{Allowed: true}, nil
	}

	now := p.now()
	if r.Until.After(now) {
		until := r.Until
		return CreationPermission{
			Allowed:  false,
			Reason:   r.Reason,
			Until:    &until,
			DaysLeft: daysLeft(now, until),
		}, nil
	}

	if _, err := p.users.ClearRestrictionIfExpired(ctx, userID, now); err != nil {
		zap.S().Warnw("failed to clear expired restriction", "user", userID, "error", err)
	}
	return CreationPermission{Allowed: true}, nil
}

// GetUserCancellationHistory returns the cancellations still inside the window
func (p *CancellationPolicy) GetUserCancellationHistory(ctx context.Context, userID string) ([]models.CancellationRecord, error) {
	user, err := p.users.FindByID(ctx, userID)
	if err != nil {
		return nil, lookupFailure("find user", err)
	}
	return withinWindow(user.CancellationHistory, p.now()), nil
}

// CleanupHistory drops cancellations older than the window from every user
// and clears restrictions that have run out
func (p *CancellationPolicy) CleanupHistory(ctx context.Context, now time.Time) (rep CleanupReport, err error) {
	ctx, span := startSpan(ctx, "CancellationPolicy.CleanupHistory")
	defer func() { endSpan(span, err) }()

	rep.PrunedUsers, err = p.users.PruneCancellationHistory(ctx, now.Add(-CancellationWindow))
	if err != nil {
		return rep, storageFailure("prune cancellation history", err)
	}
	rep.ClearedRestrictions, err = p.users.ClearExpiredRestrictions(ctx, now)
	if err != nil {
		return rep, storageFailure("clear expired restrictions", err)
	}
	return rep, nil
}

func withinWindow(history []models.CancellationRecord, now time.Time) []models.CancellationRecord {
	cutoff := now.Add(-CancellationWindow)
	out := []models.CancellationRecord{}
	for _, c := range history {
		if !c.Timestamp.Before(cutoff) {
			out = append(out, c)
		}
	}
	return out
}

func daysLeft(now, until time.Time) int {
	return int(math.Ceil(until.Sub(now).Hours() / 24))
}
