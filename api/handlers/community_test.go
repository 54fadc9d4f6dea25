package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/dinebuddies-api/models"
)

func TestCommunity_MembershipAndBroadcast(t *testing.T) {
	a := newTestApp(t)
	partner := person("bistro", "", 0)
	partner.AccountType = models.AccountBusiness
	admin := person("root", "", 0)
	admin.AccountType = models.AccountAdmin
	seedUsers(t, a, partner, admin, person("alice", models.GenderFemale, 30), person("bob", models.GenderMale, 32))

	rr := executeRequest(t, a, "POST", "/api/v1/communities/bistro/members", "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	rr = executeRequest(t, a, "POST", "/api/v1/communities/bob/members", "alice", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	message := map[string]string{"title": "Happy hour", "message": "Half price dumplings tonight"}
	rr = executeRequest(t, a, "POST", "/api/v1/communities/bistro/messages", "bob", message)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	rr = executeRequest(t, a, "POST", "/api/v1/communities/bistro/messages", "bistro", map[string]string{"title": "Empty"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = executeRequest(t, a, "POST", "/api/v1/communities/bistro/messages", "bistro", message)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var sent map[string]int
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sent))
	assert.Equal(t, 1, sent["sent"])

	rr = executeRequest(t, a, "GET", "/api/v1/users/alice/notifications", "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list []models.Notification
	decode(t, rr, &list)
	require.Len(t, list, 1)
	assert.Equal(t, models.NotificationCommunityMessage, list[0].Type)
	assert.Equal(t, "Happy hour", list[0].Title)

	rr = executeRequest(t, a, "DELETE", "/api/v1/communities/bistro/members/alice", "root", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	rr = executeRequest(t, a, "DELETE", "/api/v1/communities/bistro/members/alice", "bistro", nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
	rr = executeRequest(t, a, "DELETE", "/api/v1/communities/bistro/members", "alice", nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestCommunity_Leave(t *testing.T) {
	a := newTestApp(t)
	partner := person("bistro", "", 0)
	partner.AccountType = models.AccountBusiness
	seedUsers(t, a, partner, person("alice", models.GenderFemale, 30))

	executeRequest(t, a, "POST", "/api/v1/communities/bistro/members", "alice", nil)
	rr := executeRequest(t, a, "DELETE", "/api/v1/communities/bistro/members", "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = executeRequest(t, a, "GET", "/api/v1/users/alice", "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var alice models.User
	decode(t, rr, &alice)
	assert.Empty(t, alice.JoinedCommunities)
}
