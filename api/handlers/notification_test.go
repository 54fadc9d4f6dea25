package handlers_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/dinebuddies-api/api"
	"github.com/linesmerrill/dinebuddies-api/api/handlers"
	"github.com/linesmerrill/dinebuddies-api/databases/mocks"
	"github.com/linesmerrill/dinebuddies-api/models"
)

func markReadRequest(actorID string) *http.Request {
	req := httptest.NewRequest("PUT", "/api/v1/users/u1/notifications/n1/read", nil)
	req = mux.SetURLVars(req, map[string]string{"userId": "u1", "notificationId": "n1"})
	return req.WithContext(api.WithActor(req.Context(), actorID))
}

func TestNotification_MarkReadHandler(t *testing.T) {
	db := &mocks.NotificationDatabase{}
	db.On("MarkRead", mock.Anything, "u1", "n1").Return(true, nil)

	rr := httptest.NewRecorder()
	handlers.Notification{DB: db}.MarkReadHandler(rr, markReadRequest("u1"))

	assert.Equal(t, http.StatusOK, rr.Code)
	db.AssertExpectations(t)
}

func TestNotification_MarkReadHandlerNotFound(t *testing.T) {
	db := &mocks.NotificationDatabase{}
	db.On("MarkRead", mock.Anything, "u1", "n1").Return(false, nil)

	rr := httptest.NewRecorder()
	handlers.Notification{DB: db}.MarkReadHandler(rr, markReadRequest("u1"))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestNotification_MarkReadHandlerFailed(t *testing.T) {
	db := &mocks.NotificationDatabase{}
	db.On("MarkRead", mock.Anything, "u1", "n1").Return(false, errors.New("connection reset"))

	rr := httptest.NewRecorder()
	handlers.Notification{DB: db}.MarkReadHandler(rr, markReadRequest("u1"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestNotification_MarkReadHandlerOtherUser(t *testing.T) {
	db := &mocks.NotificationDatabase{}

	rr := httptest.NewRecorder()
	handlers.Notification{DB: db}.MarkReadHandler(rr, markReadRequest("u2"))

	assert.Equal(t, http.StatusForbidden, rr.Code)
	db.AssertNotCalled(t, "MarkRead", mock.Anything, mock.Anything, mock.Anything)
}

func TestNotification_NotificationsHandlerPaging(t *testing.T) {
	db := &mocks.NotificationDatabase{}
	db.On("FindByUser", mock.Anything, "u1", 5, 2).Return(nil, nil)

	req := httptest.NewRequest("GET", "/api/v1/users/u1/notifications?limit=5&page=2", nil)
	req = mux.SetURLVars(req, map[string]string{"userId": "u1"})
	req = req.WithContext(api.WithActor(req.Context(), "u1"))
	rr := httptest.NewRecorder()
	handlers.Notification{DB: db}.NotificationsHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
	db.AssertExpectations(t)
}

func TestNotification_WebSocketReceivesNewFollower(t *testing.T) {
	a := newTestApp(t)
	seedUsers(t, a, person("alice", models.GenderFemale, 30), person("bob", models.GenderMale, 32))

	srv := httptest.NewServer(a.Handler)
	defer srv.Close()

	token, _, err := a.Auth.IssueToken("bob")
	require.NoError(t, err)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/notifications?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return a.Hub.Connected("bob") == 1 }, time.Second, 10*time.Millisecond)

	rr := executeRequest(t, a, "POST", "/api/v1/users/bob/follow", "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg struct {
		Event string              `json:"event"`
		Data  models.Notification `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "new_notification", msg.Event)
	assert.Equal(t, models.NotificationNewFollower, msg.Data.Type)
	assert.Equal(t, "bob", msg.Data.UserID)
}

func TestNotification_WebSocketRequiresToken(t *testing.T) {
	a := newTestApp(t)
	srv := httptest.NewServer(a.Handler)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/notifications"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
