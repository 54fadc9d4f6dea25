package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/dinebuddies-api/models"
	"github.com/linesmerrill/dinebuddies-api/services"
)

func TestCommunityMembership(t *testing.T) {
	f := newFixture(t)
	venue := person("venue", "", 0)
	venue.Name = "Ichiran"
	venue.AccountType = models.AccountBusiness
	guest := person("guest", "", 0)
	guest.AccountType = models.AccountGuest
	f.addUsers(t, venue, guest, person("A", models.GenderMale, 28), person("B", models.GenderFemale, 26))
	c := f.svc.Community

	assert.ErrorIs(t, c.JoinCommunity(f.ctx, "guest", "venue"), services.ErrGuestNotAllowed)
	assert.ErrorIs(t, c.JoinCommunity(f.ctx, "A", "B"), services.ErrInvalidInput)
	assert.ErrorIs(t, c.JoinCommunity(f.ctx, "A", "nowhere"), services.ErrTargetNotFound)

	require.NoError(t, c.JoinCommunity(f.ctx, "A", "venue"))
	require.NoError(t, c.JoinCommunity(f.ctx, "A", "venue"))
	require.NoError(t, c.JoinCommunity(f.ctx, "B", "venue"))
	assert.Equal(t, []string{"venue"}, f.user(t, "A").JoinedCommunities)

	sent, err := c.BroadcastMessage(f.ctx, "venue", "Happy hour", "Half price gyoza tonight")
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	msgs := f.notifier.ofType(models.NotificationCommunityMessage)
	require.Len(t, msgs, 2)
	assert.Equal(t, "Ichiran", msgs[0].notification.Payload["partnerName"])

	_, err = c.BroadcastMessage(f.ctx, "venue", "", "")
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	require.NoError(t, c.RemoveMember(f.ctx, "venue", "B"))
	removed := f.notifier.ofType(models.NotificationCommunityRemoved)
	require.Len(t, removed, 1)
	assert.Equal(t, "B", removed[0].userID)
	assert.ErrorIs(t, c.RemoveMember(f.ctx, "venue", "B"), services.ErrNotMember)

	require.NoError(t, c.LeaveCommunity(f.ctx, "A", "venue"))
	assert.ErrorIs(t, c.LeaveCommunity(f.ctx, "A", "venue"), services.ErrNotMember)
	assert.Empty(t, f.user(t, "A").JoinedCommunities)
}

func TestAwardReputation(t *testing.T) {
	f := newFixture(t)
	f.addUsers(t, person("A", models.GenderMale, 28))

	require.NoError(t, f.svc.Reputation.AwardReputation(f.ctx, "A", 3))
	require.NoError(t, f.svc.Reputation.AwardReputation(f.ctx, "A", 2))
	assert.Equal(t, 5, f.user(t, "A").Reputation)
}
