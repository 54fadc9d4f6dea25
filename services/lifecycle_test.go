package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/dinebuddies-api/databases"
	"github.com/linesmerrill/dinebuddies-api/databases/mocks"
	"github.com/linesmerrill/dinebuddies-api/models"
	"github.com/linesmerrill/dinebuddies-api/services"
)

func assertDisjoint(t *testing.T, inv models.Invitation) {
	t.Helper()
	for _, id := range inv.Requests {
		assert.NotContains(t, inv.Joined, id, "requests and joined overlap on %s", id)
	}
}

func TestInvitationLifecycle_EndToEnd(t *testing.T) {
	f := newFixture(t)
	f.addUsers(t, person("H", models.GenderFemale, 30), person("A", models.GenderMale, 28))
	l := f.svc.Lifecycle

	inv, err := l.CreateInvitation(f.ctx, "H", draft(tomorrow, 2))
	require.NoError(t, err)
	assert.Equal(t, models.StatusPlanning, inv.MeetingStatus)
	assert.Equal(t, "H", inv.Author.ID)

	require.NoError(t, l.RequestToJoin(f.ctx, inv.ID, "A"))
	got := f.invitation(t, inv.ID)
	assert.Equal(t, []string{"A"}, got.Requests)
	assert.Len(t, f.notifier.ofType(models.NotificationJoinRequest), 1)

	_, err = l.ApproveUser(f.ctx, inv.ID, "H", "A")
	require.NoError(t, err)
	got = f.invitation(t, inv.ID)
	assert.Empty(t, got.Requests)
	assert.Equal(t, []string{"A"}, got.Joined)
	approvals := f.notifier.ofType(models.NotificationRequestApproved)
	require.Len(t, approvals, 1)
	assert.Equal(t, "A", approvals[0].userID)

	_, err = l.UpdateInvitationDateTime(f.ctx, inv.ID, "2026-03-12", "20:00", "H")
	require.NoError(t, err)
	got = f.invitation(t, inv.ID)
	assert.Empty(t, got.Joined)
	assert.Equal(t, []string{"A"}, got.Requests)
	assert.Equal(t, []string{"A"}, got.PendingChangeApproval)
	assert.Equal(t, "2026-03-12", got.Date)
	require.Len(t, got.EditHistory, 1)
	assert.Equal(t, tomorrow, got.EditHistory[0].OldDate)
	assert.Len(t, f.notifier.ofType(models.NotificationInvitationUpdated), 1)

	require.NoError(t, l.ApproveNewTime(f.ctx, inv.ID, "A"))
	got = f.invitation(t, inv.ID)
	assert.Equal(t, []string{"A"}, got.Joined)
	assert.Empty(t, got.PendingChangeApproval)
	assertDisjoint(t, got)

	for _, s := range []models.MeetingStatus{models.StatusOnWay, models.StatusArrived, models.StatusCompleted} {
		require.NoError(t, l.UpdateMeetingStatus(f.ctx, inv.ID, "H", s))
	}
	got = f.invitation(t, inv.ID)
	assert.Equal(t, models.StatusCompleted, got.MeetingStatus)
	require.NotNil(t, got.CompletedAt)

	require.NoError(t, l.SubmitRating(f.ctx, inv.ID, "A", 5))
	got = f.invitation(t, inv.ID)
	require.NotNil(t, got.Rating)
	assert.Equal(t, 5, got.Rating.Stars)
	assert.Equal(t, "A", got.Rating.RatedBy)
	assert.Equal(t, services.RatingReward, f.user(t, "A").Reputation)

	assert.ErrorIs(t, l.SubmitRating(f.ctx, inv.ID, "H", 4), services.ErrAlreadyRated)
}

func TestCreateInvitation_Guards(t *testing.T) {
	f := newFixture(t)
	guest := person("guest", "", 0)
	guest.AccountType = models.AccountGuest
	f.addUsers(t, person("H", models.GenderFemale, 30), guest)
	l := f.svc.Lifecycle

	_, err := l.CreateInvitation(f.ctx, "guest", draft(tomorrow, 2))
	assert.ErrorIs(t, err, services.ErrGuestNotAllowed)

	for _, d := range []services.InvitationDraft{
		{Date: tomorrow, Time: "19:00", GuestsNeeded: 1},
		draft(tomorrow, 0),
		draft("2026-03-09", 1),
		draft("tomorrow", 1),
		func() services.InvitationDraft { d := draft(tomorrow, 1); d.AgeRange = "old"; return d }(),
		func() services.InvitationDraft { d := draft(tomorrow, 1); d.GenderPreference = "robot"; return d }(),
	} {
		_, err := l.CreateInvitation(f.ctx, "H", d)
		assert.ErrorIs(t, err, services.ErrInvalidInput)
	}

	first, err := l.CreateInvitation(f.ctx, "H", draft(today, 1))
	require.NoError(t, err)

	_, err = l.CreateInvitation(f.ctx, "H", draft(tomorrow, 1))
	var dup *services.DuplicateInvitationError
	require.ErrorAs(t, err, &dup)
	assert.ErrorIs(t, err, services.ErrDuplicateDailyInvitation)
	assert.Equal(t, first.ID, dup.ExistingID)

	_, err = l.CancelInvitation(f.ctx, first.ID, "H", "change of plans")
	require.NoError(t, err)
	assert.Nil(t, f.user(t, "H").ActiveInvitation)

	_, err = l.CreateInvitation(f.ctx, "H", draft(tomorrow, 1))
	assert.NoError(t, err)
}

func TestCreateInvitation_Restricted(t *testing.T) {
	f := newFixture(t)
	f.addUsers(t, person("H", models.GenderFemale, 30))
	for i := 0; i < 2; i++ {
		_, err := f.svc.Policy.RecordCancellation(f.ctx, "H", "x", "busy", attended("x"))
		require.NoError(t, err)
	}

	_, err := f.svc.Lifecycle.CreateInvitation(f.ctx, "H", draft(tomorrow, 1))
	var restricted *services.RestrictedError
	require.ErrorAs(t, err, &restricted)
	assert.ErrorIs(t, err, services.ErrRestrictedAccount)
	assert.Equal(t, 14, restricted.DaysLeft)
	assert.Contains(t, err.Error(), "14 days left")
}

func TestCreateInvitation_InsertFailureReleasesClaim(t *testing.T) {
	f := newFixture(t)
	f.addUsers(t, person("H", models.GenderFemale, 30))

	invitations := &mocks.InvitationDatabase{}
	invitations.On("FindUpcomingByAuthor", mock.Anything, "H", today).Return(nil, databases.ErrNotFound)
	invitations.On("InsertOne", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	svc := services.New(services.Deps{
		Users:       f.store.Users(),
		Invitations: invitations,
		Tx:          f.store,
		Now:         f.clock.Now,
	})
	_, err := svc.Lifecycle.CreateInvitation(f.ctx, "H", draft(tomorrow, 1))
	assert.ErrorIs(t, err, services.ErrStorageFailure)
	assert.Nil(t, f.user(t, "H").ActiveInvitation)
	invitations.AssertExpectations(t)
}

func hostedInvitation(f *fixture, t *testing.T, guests int) models.Invitation {
	t.Helper()
	inv, err := f.svc.Lifecycle.CreateInvitation(f.ctx, "H", draft(tomorrow, guests))
	require.NoError(t, err)
	return *inv
}

func TestRequestToJoin(t *testing.T) {
	f := newFixture(t)
	guest := person("guest", "", 0)
	guest.AccountType = models.AccountGuest
	f.addUsers(t, person("H", models.GenderFemale, 30), person("A", models.GenderMale, 28), person("B", models.GenderFemale, 45), guest)

	d := draft(tomorrow, 2)
	d.AgeRange = "18-35"
	inv, err := f.svc.Lifecycle.CreateInvitation(f.ctx, "H", d)
	require.NoError(t, err)
	l := f.svc.Lifecycle

	assert.ErrorIs(t, l.RequestToJoin(f.ctx, inv.ID, "guest"), services.ErrGuestNotAllowed)

	err = l.RequestToJoin(f.ctx, inv.ID, "B")
	var notEligible *services.EligibilityError
	require.ErrorAs(t, err, &notEligible)
	assert.Equal(t, "this invitation is for ages 18-35", notEligible.Reason)

	require.NoError(t, l.RequestToJoin(f.ctx, inv.ID, "A"))
	assert.ErrorIs(t, l.RequestToJoin(f.ctx, inv.ID, "A"), services.ErrAlreadyRequested)

	_, err = l.ApproveUser(f.ctx, inv.ID, "H", "A")
	require.NoError(t, err)
	assert.ErrorIs(t, l.RequestToJoin(f.ctx, inv.ID, "A"), services.ErrAlreadyRequested)
	assertDisjoint(t, f.invitation(t, inv.ID))

	assert.ErrorIs(t, l.RequestToJoin(f.ctx, "missing", "A"), services.ErrTargetNotFound)
}

func TestRequestToJoin_Privacy(t *testing.T) {
	f := newFixture(t)
	f.addUsers(t, person("H", models.GenderFemale, 30), person("A", models.GenderMale, 28), person("B", models.GenderMale, 28))

	d := draft(tomorrow, 2)
	d.Privacy = models.PrivacyPrivate
	d.InvitedUserIDs = []string{"A"}
	inv, err := f.svc.Lifecycle.CreateInvitation(f.ctx, "H", d)
	require.NoError(t, err)

	assert.NoError(t, f.svc.Lifecycle.RequestToJoin(f.ctx, inv.ID, "A"))
	assert.ErrorIs(t, f.svc.Lifecycle.RequestToJoin(f.ctx, inv.ID, "B"), services.ErrNotEligible)
}

func TestViewInvitation_Privacy(t *testing.T) {
	f := newFixture(t)
	f.addUsers(t, person("H", models.GenderFemale, 30), person("A", models.GenderMale, 28), person("B", models.GenderMale, 28))
	l := f.svc.Lifecycle

	d := draft(tomorrow, 2)
	d.Privacy = models.PrivacyPrivate
	d.InvitedUserIDs = []string{"A"}
	inv, err := l.CreateInvitation(f.ctx, "H", d)
	require.NoError(t, err)

	got, err := l.ViewInvitation(f.ctx, inv.ID, "H")
	require.NoError(t, err)
	assert.Equal(t, inv.ID, got.ID)

	_, err = l.ViewInvitation(f.ctx, inv.ID, "A")
	assert.NoError(t, err)

	_, err = l.ViewInvitation(f.ctx, inv.ID, "B")
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, err = l.ViewInvitation(f.ctx, "missing", "A")
	assert.ErrorIs(t, err, services.ErrTargetNotFound)
}

func TestApproveUser_Rules(t *testing.T) {
	f := newFixture(t)
	f.addUsers(t, person("H", models.GenderFemale, 30), person("A", models.GenderMale, 28), person("B", models.GenderMale, 29))
	inv := hostedInvitation(f, t, 1)
	l := f.svc.Lifecycle

	require.NoError(t, l.RequestToJoin(f.ctx, inv.ID, "A"))
	require.NoError(t, l.RequestToJoin(f.ctx, inv.ID, "B"))

	_, err := l.ApproveUser(f.ctx, inv.ID, "A", "B")
	assert.ErrorIs(t, err, services.ErrNotHost)

	_, err = l.ApproveUser(f.ctx, inv.ID, "H", "nobody")
	assert.ErrorIs(t, err, services.ErrNotPending)

	_, err = l.ApproveUser(f.ctx, inv.ID, "H", "A")
	require.NoError(t, err)

	_, err = l.ApproveUser(f.ctx, inv.ID, "H", "B")
	assert.ErrorIs(t, err, services.ErrInvitationFull)

	require.NoError(t, l.RejectUser(f.ctx, inv.ID, "H", "B"))
	assert.ErrorIs(t, l.RejectUser(f.ctx, inv.ID, "H", "B"), services.ErrNotPending)

	got := f.invitation(t, inv.ID)
	assert.Equal(t, []string{"A"}, got.Joined)
	assert.Empty(t, got.Requests)
}

func TestApproveUser_NotifiesPartner(t *testing.T) {
	f := newFixture(t)
	venue := person("venue", "", 0)
	venue.Name = "Ichiran"
	venue.AccountType = models.AccountBusiness
	f.addUsers(t, person("H", models.GenderFemale, 30), person("A", models.GenderMale, 28), person("B", models.GenderMale, 29), venue)

	d := draft(tomorrow, 2)
	d.PartnerID = "venue"
	inv, err := f.svc.Lifecycle.CreateInvitation(f.ctx, "H", d)
	require.NoError(t, err)

	for _, id := range []string{"A", "B"} {
		require.NoError(t, f.svc.Lifecycle.RequestToJoin(f.ctx, inv.ID, id))
		_, err := f.svc.Lifecycle.ApproveUser(f.ctx, inv.ID, "H", id)
		require.NoError(t, err)
	}

	joined := f.notifier.ofType(models.NotificationPartnerMemberJoined)
	assert.Len(t, joined, 2)
	full := f.notifier.ofType(models.NotificationPartnerGroupFull)
	require.Len(t, full, 1)
	assert.Equal(t, "venue", full[0].userID)
}

func TestUpdateInvitationDateTime_OnlyOnce(t *testing.T) {
	f := newFixture(t)
	f.addUsers(t, person("H", models.GenderFemale, 30), person("A", models.GenderMale, 28), person("B", models.GenderMale, 29))
	inv := hostedInvitation(f, t, 3)
	l := f.svc.Lifecycle

	for _, id := range []string{"A", "B"} {
		require.NoError(t, l.RequestToJoin(f.ctx, inv.ID, id))
	}
	_, err := l.ApproveUser(f.ctx, inv.ID, "H", "A")
	require.NoError(t, err)

	_, err = l.UpdateInvitationDateTime(f.ctx, inv.ID, "2026-03-12", "20:00", "A")
	assert.ErrorIs(t, err, services.ErrNotHost)

	updated, err := l.UpdateInvitationDateTime(f.ctx, inv.ID, "2026-03-12", "20:00", "H")
	require.NoError(t, err)
	assert.Empty(t, updated.Joined)
	assert.ElementsMatch(t, []string{"A", "B"}, updated.Requests)
	assert.Equal(t, []string{"A"}, updated.PendingChangeApproval)

	_, err = l.UpdateInvitationDateTime(f.ctx, inv.ID, "2026-03-13", "18:00", "H")
	assert.ErrorIs(t, err, services.ErrAlreadyEdited)
	assert.Equal(t, services.ErrAlreadyEdited.Error(), "you may only edit the time once")
	assert.Equal(t, *updated, f.invitation(t, inv.ID))

	require.NoError(t, l.RejectNewTime(f.ctx, inv.ID, "A"))
	got := f.invitation(t, inv.ID)
	assert.Equal(t, []string{"B"}, got.Requests)
	assert.Empty(t, got.PendingChangeApproval)
	assert.Empty(t, got.Joined)

	assert.ErrorIs(t, l.ApproveNewTime(f.ctx, inv.ID, "A"), services.ErrNotPending)
	assert.ErrorIs(t, l.ApproveNewTime(f.ctx, "missing", "A"), services.ErrTargetNotFound)
}

func TestCancelRequest(t *testing.T) {
	f := newFixture(t)
	f.addUsers(t, person("H", models.GenderFemale, 30), person("A", models.GenderMale, 28))
	inv := hostedInvitation(f, t, 2)

	assert.ErrorIs(t, f.svc.Lifecycle.CancelRequest(f.ctx, inv.ID, "A"), services.ErrNotPending)
	require.NoError(t, f.svc.Lifecycle.RequestToJoin(f.ctx, inv.ID, "A"))
	require.NoError(t, f.svc.Lifecycle.CancelRequest(f.ctx, inv.ID, "A"))
	assert.Empty(t, f.invitation(t, inv.ID).Requests)
}

func TestUpdateMeetingStatus_ForwardOneStep(t *testing.T) {
	f := newFixture(t)
	f.addUsers(t, person("H", models.GenderFemale, 30))
	inv := hostedInvitation(f, t, 2)
	l := f.svc.Lifecycle

	assert.ErrorIs(t, l.UpdateMeetingStatus(f.ctx, inv.ID, "H", models.StatusArrived), services.ErrInvalidStatusTransition)
	assert.ErrorIs(t, l.UpdateMeetingStatus(f.ctx, inv.ID, "H", "dancing"), services.ErrInvalidInput)
	require.NoError(t, l.UpdateMeetingStatus(f.ctx, inv.ID, "H", models.StatusOnWay))
	assert.ErrorIs(t, l.UpdateMeetingStatus(f.ctx, inv.ID, "H", models.StatusPlanning), services.ErrInvalidStatusTransition)
	assert.ErrorIs(t, l.UpdateMeetingStatus(f.ctx, inv.ID, "H", models.StatusOnWay), services.ErrInvalidStatusTransition)
	assert.Nil(t, f.invitation(t, inv.ID).CompletedAt)
}

func TestSubmitRating_Rules(t *testing.T) {
	f := newFixture(t)
	f.addUsers(t, person("H", models.GenderFemale, 30), person("A", models.GenderMale, 28))
	inv := hostedInvitation(f, t, 2)
	l := f.svc.Lifecycle

	assert.ErrorIs(t, l.SubmitRating(f.ctx, inv.ID, "H", 0), services.ErrInvalidInput)
	assert.ErrorIs(t, l.SubmitRating(f.ctx, inv.ID, "H", 4), services.ErrNotCompleted)
	assert.ErrorIs(t, l.SubmitRating(f.ctx, inv.ID, "A", 4), services.ErrNotParticipant)
}

func TestCancelInvitation(t *testing.T) {
	f := newFixture(t)
	f.addUsers(t, person("H", models.GenderFemale, 30), person("A", models.GenderMale, 28), person("B", models.GenderMale, 29))
	inv := hostedInvitation(f, t, 2)
	l := f.svc.Lifecycle

	require.NoError(t, l.RequestToJoin(f.ctx, inv.ID, "A"))
	require.NoError(t, l.RequestToJoin(f.ctx, inv.ID, "B"))
	_, err := l.ApproveUser(f.ctx, inv.ID, "H", "A")
	require.NoError(t, err)

	_, err = l.CancelInvitation(f.ctx, inv.ID, "A", "no")
	assert.ErrorIs(t, err, services.ErrNotHost)

	out, err := l.CancelInvitation(f.ctx, inv.ID, "H", "sick")
	require.NoError(t, err)
	assert.False(t, out.Exempt)
	assert.Equal(t, 1, out.Level)

	got := f.invitation(t, inv.ID)
	assert.True(t, got.IsCancelled())
	assert.Equal(t, "sick", got.CancelReason)
	assert.Len(t, f.notifier.ofType(models.NotificationInvitationCancelled), 2)

	_, err = l.CancelInvitation(f.ctx, inv.ID, "H", "again")
	assert.ErrorIs(t, err, services.ErrInvitationCancelled)
	assert.ErrorIs(t, l.RequestToJoin(f.ctx, inv.ID, "A"), services.ErrInvitationCancelled)
}

func TestCancelInvitation_EmptyIsExempt(t *testing.T) {
	f := newFixture(t)
	f.addUsers(t, person("H", models.GenderFemale, 30))
	inv := hostedInvitation(f, t, 2)

	out, err := f.svc.Lifecycle.CancelInvitation(context.Background(), inv.ID, "H", "nobody came")
	require.NoError(t, err)
	assert.True(t, out.Exempt)
	assert.Empty(t, f.user(t, "H").CancellationHistory)
	assert.Nil(t, f.user(t, "H").InvitationRestriction)
}

func TestEligibility(t *testing.T) {
	f := newFixture(t)
	f.addUsers(t, person("H", models.GenderFemale, 30), person("A", models.GenderMale, 28))
	d := draft(tomorrow, 2)
	d.GenderPreference = models.GenderFemale
	inv, err := f.svc.Lifecycle.CreateInvitation(f.ctx, "H", d)
	require.NoError(t, err)

	res, err := f.svc.Lifecycle.Eligibility(f.ctx, inv.ID, "A")
	require.NoError(t, err)
	assert.False(t, res.Eligible)
	assert.Equal(t, "this invitation is for female guests only", res.Reason)
}
