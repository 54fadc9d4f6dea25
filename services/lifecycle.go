package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/linesmerrill/dinebuddies-api/databases"
	"github.com/linesmerrill/dinebuddies-api/models"
)

const timeLayout = "15:04"

var errClaimTaken = errors.New("daily invitation claim already taken")

// InvitationLifecycle moves an invitation from creation through join
// requests, a single reschedule and the meeting itself to a rating or a
// cancellation.
type InvitationLifecycle struct {
	invitations databases.InvitationDatabase
	users       databases.UserDatabase
	tx          databases.Transactor
	notifier    Notifier
	policy      *CancellationPolicy
	guard       *DailyCreationGuard
	reputation  *Reputation
	now         func() time.Time
	newID       func() string
}

// InvitationDraft is what a host fills in to create an invitation
type InvitationDraft struct {
	Title            string         `json:"title"`
	Date             string         `json:"date"`
	Time             string         `json:"time"`
	Location         string         `json:"location"`
	Lat              float64        `json:"lat"`
	Lng              float64        `json:"lng"`
	GuestsNeeded     int            `json:"guestsNeeded"`
	GenderPreference models.Gender  `json:"genderPreference"`
	AgeRange         string         `json:"ageRange"`
	Privacy          models.Privacy `json:"privacy"`
	InvitedUserIDs   []string       `json:"invitedUserIds"`
	PartnerID        string         `json:"partnerId"`
}

// NewInvitationLifecycle creates an InvitationLifecycle
func NewInvitationLifecycle(d Deps, policy *CancellationPolicy, guard *DailyCreationGuard, reputation *Reputation) *InvitationLifecycle {
	return &InvitationLifecycle{
		invitations: d.Invitations,
		users:       d.Users,
		tx:          d.Tx,
		notifier:    d.Notifier,
		policy:      policy,
		guard:       guard,
		reputation:  reputation,
		now:         d.Now,
		newID:       d.NewID,
	}
}

// GetInvitation returns one invitation
func (l *InvitationLifecycle) GetInvitation(ctx context.Context, invitationID string) (*models.Invitation, error) {
	inv, err := l.invitations.FindByID(ctx, invitationID)
	if err != nil {
		return nil, lookupFailure("find invitation", err)
	}
	return inv, nil
}

// ViewInvitation returns the invitation when its privacy setting lets
// viewerID see it. Participants, the bound partner and admins always can.
func (l *InvitationLifecycle) ViewInvitation(ctx context.Context, invitationID, viewerID string) (*models.Invitation, error) {
	inv, err := l.GetInvitation(ctx, invitationID)
	if err != nil {
		return nil, err
	}
	if inv.Privacy == "" || inv.Privacy == models.PrivacyPublic {
		return inv, nil
	}
	if inv.HasJoined(viewerID) || inv.HasRequested(viewerID) || (inv.PartnerID != "" && inv.PartnerID == viewerID) {
		return inv, nil
	}
	viewer, err := l.users.FindByID(ctx, viewerID)
	if err != nil {
		return nil, lookupFailure("find user", err)
	}
	if viewer.AccountType == models.AccountAdmin || canSee(*viewer, *inv) {
		return inv, nil
	}
	return nil, fmt.Errorf("%w: this invitation is not visible to you", ErrForbidden)
}

// Eligibility checks whether userID may join the invitation
func (l *InvitationLifecycle) Eligibility(ctx context.Context, invitationID, userID string) (EligibilityResult, error) {
	inv, err := l.GetInvitation(ctx, invitationID)
	if err != nil {
		return EligibilityResult{}, err
	}
	user, err := l.users.FindByID(ctx, userID)
	if err != nil {
		return EligibilityResult{}, lookupFailure("find user", err)
	}
	if !canSee(*user, *inv) {
		return EligibilityResult{Reason: "this invitation is not visible to you"}, nil
	}
	return CheckEligibility(*user, *inv), nil
}

func (l *InvitationLifecycle) validateDraft(d *InvitationDraft) error {
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" {
		return invalid("title is required")
	}
	if err := l.validateSchedule(d.Date, d.Time); err != nil {
		return err
	}
	if d.GuestsNeeded < 1 {
		return invalid("guestsNeeded must be at least 1")
	}

	switch d.GenderPreference {
	case "":
		d.GenderPreference = models.GenderAny
	case models.GenderAny, models.GenderMale, models.GenderFemale:
	default:
		return invalid("unknown gender preference %q", d.GenderPreference)
	}

	if d.AgeRange == "" {
		d.AgeRange = models.AgeRangeAny
	}
	if _, _, ok := ParseAgeRange(d.AgeRange); !ok && d.AgeRange != models.AgeRangeAny {
		return invalid("age range %q must look like 18-30 or 50+", d.AgeRange)
	}

	switch d.Privacy {
	case "":
		d.Privacy = models.PrivacyPublic
	case models.PrivacyPublic, models.PrivacyFollowers, models.PrivacyPrivate:
	default:
		return invalid("unknown privacy %q", d.Privacy)
	}
	return nil
}

func (l *InvitationLifecycle) validateSchedule(date, clock string) error {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return invalid("date %q must look like 2006-01-02", date)
	}
	if _, err := time.Parse(timeLayout, clock); err != nil {
		return invalid("time %q must look like 19:30", clock)
	}
	if date < l.now().Format(dateLayout) {
		return invalid("date %s is in the past", date)
	}
	return nil
}

// CreateInvitation creates an invitation hosted by actorID. The host must not
// be restricted and must not already have an invitation dated today or later.
func (l *InvitationLifecycle) CreateInvitation(ctx context.Context, actorID string, draft InvitationDraft) (inv *models.Invitation, err error) {
	ctx, span := startSpan(ctx, "InvitationLifecycle.CreateInvitation", attribute.String("actor.id", actorID))
	defer func() { endSpan(span, err) }()

	actor, err := l.users.FindByID(ctx, actorID)
	if err != nil {
		return nil, lookupFailure("find actor", err)
	}
	if actor.IsGuest() {
		return nil, ErrGuestNotAllowed
	}
	if err := l.validateDraft(&draft); err != nil {
		return nil, err
	}
	if draft.PartnerID != "" {
		partner, err := l.users.FindByID(ctx, draft.PartnerID)
		if err != nil {
			return nil, lookupFailure("find partner", err)
		}
		if !partner.IsBusiness() {
			return nil, invalid("%s is not a partner", draft.PartnerID)
		}
	}

	perm, err := l.policy.CanCreateInvitation(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !perm.Allowed {
		return nil, &RestrictedError{Reason: perm.Reason, Until: *perm.Until, DaysLeft: perm.DaysLeft}
	}

	check, err := l.guard.ValidateInvitationCreation(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !check.Valid {
		return nil, &DuplicateInvitationError{ExistingID: check.ExistingInvitationID, Date: check.ExistingDate}
	}

	now := l.now()
	created := models.Invitation{
		ID:               l.newID(),
		Title:            draft.Title,
		Author:           models.Author{ID: actor.ID, Name: actor.Name, Avatar: actor.Avatar},
		PartnerID:        draft.PartnerID,
		Date:             draft.Date,
		Time:             draft.Time,
		Location:         draft.Location,
		Lat:              draft.Lat,
		Lng:              draft.Lng,
		GuestsNeeded:     draft.GuestsNeeded,
		GenderPreference: draft.GenderPreference,
		AgeRange:         draft.AgeRange,
		MeetingStatus:    models.StatusPlanning,
		Privacy:          draft.Privacy,
		InvitedUserIDs:   draft.InvitedUserIDs,
		CreatedAt:        now,
	}
	claim := models.ActiveInvitation{InvitationID: created.ID, Date: created.Date}

	err = l.tx.WithTransaction(ctx, func(ctx context.Context) error {
		claimed, err := l.users.ClaimActiveInvitation(ctx, actorID, claim, now.Format(dateLayout))
		if err != nil {
			return err
		}
		if !claimed {
			return errClaimTaken
		}
		if err := l.invitations.InsertOne(ctx, created); err != nil {
			if rerr := l.users.ReleaseActiveInvitation(ctx, actorID, created.ID); rerr != nil {
				zap.S().Errorw("failed to release invitation claim", "user", actorID, "error", rerr)
			}
			return err
		}
		return nil
	})
	if errors.Is(err, errClaimTaken) {
		dup := &DuplicateInvitationError{}
		if actor.ActiveInvitation != nil {
			dup.ExistingID, dup.Date = actor.ActiveInvitation.InvitationID, actor.ActiveInvitation.Date
		}
		if check, cerr := l.guard.ValidateInvitationCreation(ctx, actorID); cerr == nil && !check.Valid {
			dup.ExistingID, dup.Date = check.ExistingInvitationID, check.ExistingDate
		}
		return nil, dup
	}
	if err != nil {
		return nil, storageFailure("create invitation", err)
	}

	zap.S().Infow("invitation created", "invitation", created.ID, "host", actorID, "date", created.Date)
	out := databases.NormalizeInvitation(created)
	return &out, nil
}

// RequestToJoin puts userID on the invitation's request list
func (l *InvitationLifecycle) RequestToJoin(ctx context.Context, invitationID, userID string) (err error) {
	ctx, span := startSpan(ctx, "InvitationLifecycle.RequestToJoin",
		attribute.String("invitation.id", invitationID), attribute.String("user.id", userID))
	defer func() { endSpan(span, err) }()

	user, err := l.users.FindByID(ctx, userID)
	if err != nil {
		return lookupFailure("find user", err)
	}
	if user.IsGuest() {
		return ErrGuestNotAllowed
	}
	inv, err := l.GetInvitation(ctx, invitationID)
	if err != nil {
		return err
	}
	if inv.IsCancelled() {
		return ErrInvitationCancelled
	}
	if inv.HasJoined(userID) || inv.HasRequested(userID) {
		return ErrAlreadyRequested
	}
	if !canSee(*user, *inv) {
		return &EligibilityError{Reason: "this invitation is not visible to you"}
	}
	if !inv.IsHost(userID) {
		if res := CheckEligibility(*user, *inv); !res.Eligible {
			return &EligibilityError{Reason: res.Reason}
		}
	}

	added, err := l.invitations.AddRequest(ctx, invitationID, userID)
	if err != nil {
		return storageFailure("add request", err)
	}
	if !added {
		return ErrAlreadyRequested
	}

	if !inv.IsHost(userID) {
		l.notifier.Notify(ctx, inv.Author.ID, models.Notification{
			Type:    models.NotificationJoinRequest,
			Title:   "New join request",
			Message: user.Name + " wants to join " + inv.Title,
			Payload: map[string]interface{}{
				"invitationId":  inv.ID,
				"requesterId":   user.ID,
				"requesterName": user.Name,
			},
		})
	}
	return nil
}

// CancelRequest withdraws userID's pending request
func (l *InvitationLifecycle) CancelRequest(ctx context.Context, invitationID, userID string) error {
	inv, err := l.GetInvitation(ctx, invitationID)
	if err != nil {
		return err
	}
	return l.dropRequest(ctx, inv, userID)
}

// dropRequest removes userID from requests, and from pendingChangeApproval
// when they were waiting on a reschedule
func (l *InvitationLifecycle) dropRequest(ctx context.Context, inv *models.Invitation, userID string) error {
	var (
		removed bool
		err     error
	)
	if inv.AwaitingNewTime(userID) {
		removed, err = l.invitations.DeclineNewTime(ctx, inv.ID, userID)
	} else {
		removed, err = l.invitations.RemoveRequest(ctx, inv.ID, userID)
	}
	if err != nil {
		return storageFailure("remove request", err)
	}
	if !removed {
		return ErrNotPending
	}
	return nil
}

func (l *InvitationLifecycle) hostedBy(ctx context.Context, invitationID, hostID string) (*models.Invitation, error) {
	inv, err := l.GetInvitation(ctx, invitationID)
	if err != nil {
		return nil, err
	}
	if !inv.IsHost(hostID) {
		return nil, ErrNotHost
	}
	if inv.IsCancelled() {
		return nil, ErrInvitationCancelled
	}
	return inv, nil
}

// ApproveUser moves userID from requests to joined
func (l *InvitationLifecycle) ApproveUser(ctx context.Context, invitationID, hostID, userID string) (updated *models.Invitation, err error) {
	ctx, span := startSpan(ctx, "InvitationLifecycle.ApproveUser",
		attribute.String("invitation.id", invitationID), attribute.String("user.id", userID))
	defer func() { endSpan(span, err) }()

	inv, err := l.hostedBy(ctx, invitationID, hostID)
	if err != nil {
		return nil, err
	}
	if !inv.HasRequested(userID) {
		return nil, ErrNotPending
	}
	if inv.AwaitingNewTime(userID) {
		return nil, fmt.Errorf("%w: waiting for the guest to confirm the new time", ErrNotPending)
	}
	if inv.IsFull() {
		return nil, ErrInvitationFull
	}

	updated, err = l.invitations.ApproveRequest(ctx, invitationID, userID)
	if errors.Is(err, databases.ErrNotFound) {
		// lost a race; find out which guard failed
		current, ferr := l.GetInvitation(ctx, invitationID)
		switch {
		case ferr != nil:
			return nil, ferr
		case current.IsCancelled():
			return nil, ErrInvitationCancelled
		case current.IsFull():
			return nil, ErrInvitationFull
		default:
			return nil, ErrNotPending
		}
	}
	if err != nil {
		return nil, storageFailure("approve request", err)
	}

	l.notifier.Notify(ctx, userID, models.Notification{
		Type:    models.NotificationRequestApproved,
		Title:   "You're in!",
		Message: "Your request to join " + updated.Title + " was approved",
		Payload: map[string]interface{}{"invitationId": updated.ID},
	})

	if updated.PartnerID != "" {
		l.notifier.Notify(ctx, updated.PartnerID, models.Notification{
			Type:    models.NotificationPartnerMemberJoined,
			Title:   "A guest joined",
			Message: "A guest joined " + updated.Title,
			Payload: map[string]interface{}{
				"invitationId": updated.ID,
				"userId":       userID,
				"joined":       len(updated.Joined),
			},
		})
		if len(updated.Joined) == updated.GuestsNeeded {
			l.notifier.Notify(ctx, updated.PartnerID, models.Notification{
				Type:    models.NotificationPartnerGroupFull,
				Title:   "Group is full",
				Message: updated.Title + " is full and heading your way on " + updated.Date,
				Payload: map[string]interface{}{
					"invitationId": updated.ID,
					"date":         updated.Date,
					"time":         updated.Time,
					"guests":       len(updated.Joined),
				},
			})
		}
	}
	return updated, nil
}

// RejectUser drops userID's pending request
func (l *InvitationLifecycle) RejectUser(ctx context.Context, invitationID, hostID, userID string) error {
	inv, err := l.hostedBy(ctx, invitationID, hostID)
	if err != nil {
		return err
	}
	return l.dropRequest(ctx, inv, userID)
}

// UpdateInvitationDateTime moves the invitation to a new date and time. This
// is allowed once. Everyone who had joined goes back to requests and must
// confirm the new time.
func (l *InvitationLifecycle) UpdateInvitationDateTime(ctx context.Context, invitationID, newDate, newTime, hostID string) (updated *models.Invitation, err error) {
	ctx, span := startSpan(ctx, "InvitationLifecycle.UpdateInvitationDateTime", attribute.String("invitation.id", invitationID))
	defer func() { endSpan(span, err) }()

	if err := l.validateSchedule(newDate, newTime); err != nil {
		return nil, err
	}
	inv, err := l.hostedBy(ctx, invitationID, hostID)
	if err != nil {
		return nil, err
	}
	if len(inv.EditHistory) > 0 {
		return nil, ErrAlreadyEdited
	}

	entry := models.EditEntry{
		EditedAt: l.now(),
		EditedBy: hostID,
		OldDate:  inv.Date,
		OldTime:  inv.Time,
		NewDate:  newDate,
		NewTime:  newTime,
	}
	before, err := l.invitations.Reschedule(ctx, invitationID, entry)
	if errors.Is(err, databases.ErrNotFound) {
		current, ferr := l.GetInvitation(ctx, invitationID)
		switch {
		case ferr != nil:
			return nil, ferr
		case current.IsCancelled():
			return nil, ErrInvitationCancelled
		default:
			return nil, ErrAlreadyEdited
		}
	}
	if err != nil {
		return nil, storageFailure("reschedule invitation", err)
	}

	for _, id := range before.Joined {
		l.notifier.Notify(ctx, id, models.Notification{
			Type:    models.NotificationInvitationUpdated,
			Title:   "Time changed",
			Message: before.Title + " moved to " + newDate + " " + newTime + ", please confirm",
			Payload: map[string]interface{}{
				"invitationId": before.ID,
				"oldDate":      entry.OldDate,
				"oldTime":      entry.OldTime,
				"newDate":      newDate,
				"newTime":      newTime,
			},
		})
	}
	return l.GetInvitation(ctx, invitationID)
}

// ApproveNewTime confirms userID's seat at the rescheduled time
func (l *InvitationLifecycle) ApproveNewTime(ctx context.Context, invitationID, userID string) error {
	confirmed, err := l.invitations.ConfirmNewTime(ctx, invitationID, userID)
	if err != nil {
		return storageFailure("confirm new time", err)
	}
	if !confirmed {
		return l.notPending(ctx, invitationID)
	}
	return nil
}

// RejectNewTime withdraws userID after a reschedule they cannot make. The
// user leaves requests as well as pendingChangeApproval, so taking part again
// needs a fresh join request.
func (l *InvitationLifecycle) RejectNewTime(ctx context.Context, invitationID, userID string) error {
	declined, err := l.invitations.DeclineNewTime(ctx, invitationID, userID)
	if err != nil {
		return storageFailure("decline new time", err)
	}
	if !declined {
		return l.notPending(ctx, invitationID)
	}
	return nil
}

// notPending explains a guarded update that matched nothing
func (l *InvitationLifecycle) notPending(ctx context.Context, invitationID string) error {
	if _, err := l.GetInvitation(ctx, invitationID); err != nil {
		return err
	}
	return ErrNotPending
}

// UpdateMeetingStatus advances the meeting status by exactly one step
func (l *InvitationLifecycle) UpdateMeetingStatus(ctx context.Context, invitationID, hostID string, status models.MeetingStatus) error {
	if !status.Valid() {
		return invalid("unknown meeting status %q", status)
	}
	inv, err := l.hostedBy(ctx, invitationID, hostID)
	if err != nil {
		return err
	}

	current := inv.MeetingStatus
	if current == "" {
		current = models.StatusPlanning
	}
	next, ok := current.Next()
	if !ok || next != status {
		return ErrInvalidStatusTransition
	}

	advanced, err := l.invitations.AdvanceStatus(ctx, invitationID, current, status, l.now())
	if err != nil {
		return storageFailure("advance status", err)
	}
	if !advanced {
		return ErrInvalidStatusTransition
	}
	zap.S().Infow("meeting status updated", "invitation", invitationID, "status", status)
	return nil
}

// SubmitRating stores the single rating of a completed invitation and
// rewards the rater
func (l *InvitationLifecycle) SubmitRating(ctx context.Context, invitationID, raterID string, stars int) error {
	if stars < 1 || stars > 5 {
		return invalid("stars must be between 1 and 5")
	}
	inv, err := l.GetInvitation(ctx, invitationID)
	if err != nil {
		return err
	}
	if !inv.IsHost(raterID) && !inv.HasJoined(raterID) {
		return ErrNotParticipant
	}
	if inv.MeetingStatus != models.StatusCompleted {
		return ErrNotCompleted
	}
	if inv.Rating != nil {
		return ErrAlreadyRated
	}

	set, err := l.invitations.SetRating(ctx, invitationID, models.Rating{Stars: stars, RatedBy: raterID, RatedAt: l.now()})
	if err != nil {
		return storageFailure("set rating", err)
	}
	if !set {
		return ErrAlreadyRated
	}

	if err := l.reputation.AwardReputation(ctx, raterID, RatingReward); err != nil {
		zap.S().Errorw("failed to award reputation", "user", raterID, "error", err)
	}
	return nil
}

// CancelInvitation calls the invitation off, releases the host's daily slot,
// records the cancellation against the host and tells everyone involved
func (l *InvitationLifecycle) CancelInvitation(ctx context.Context, invitationID, hostID, reason string) (out CancellationOutcome, err error) {
	ctx, span := startSpan(ctx, "InvitationLifecycle.CancelInvitation", attribute.String("invitation.id", invitationID))
	defer func() { endSpan(span, err) }()

	inv, err := l.hostedBy(ctx, invitationID, hostID)
	if err != nil {
		return out, err
	}
	if inv.MeetingStatus == models.StatusCompleted {
		return out, ErrInvalidStatusTransition
	}

	before, err := l.invitations.MarkCancelled(ctx, invitationID, reason, l.now())
	if errors.Is(err, databases.ErrNotFound) {
		return out, ErrInvitationCancelled
	}
	if err != nil {
		return out, storageFailure("cancel invitation", err)
	}

	if err := l.users.ReleaseActiveInvitation(ctx, hostID, invitationID); err != nil {
		zap.S().Warnw("failed to release invitation claim", "user", hostID, "invitation", invitationID, "error", err)
	}

	out, err = l.policy.RecordCancellation(ctx, hostID, invitationID, reason, *before)
	if err != nil {
		return out, err
	}

	affected := append(append([]string{}, before.Joined...), before.Requests...)
	for _, id := range affected {
		l.notifier.Notify(ctx, id, models.Notification{
			Type:    models.NotificationInvitationCancelled,
			Title:   "Invitation cancelled",
			Message: before.Title + " on " + before.Date + " was cancelled",
			Payload: map[string]interface{}{
				"invitationId": before.ID,
				"reason":       reason,
			},
		})
	}
	return out, nil
}
