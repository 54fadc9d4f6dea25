package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/linesmerrill/dinebuddies-api/databases/mocks"
	"github.com/linesmerrill/dinebuddies-api/models"
)

func newTestAuth(t *testing.T) (*Auth, *mocks.UserDatabase) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	db := &mocks.UserDatabase{}
	db.On("FindByEmail", mock.Anything, "ann@example.com").Return(&models.User{ID: "u1", Email: "ann@example.com", PasswordHash: string(hash)}, nil)
	db.On("FindByEmail", mock.Anything, mock.Anything).Return(nil, errors.New("not found"))
	return NewAuth(db, "test-secret", time.Hour), db
}

func actorEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := ActorFrom(r.Context())
		w.Write([]byte(id))
	})
}

func TestCreateTokenAndUseIt(t *testing.T) {
	a, _ := newTestAuth(t)

	req := httptest.NewRequest("POST", "/api/v1/auth/token", nil)
	req.SetBasicAuth("ann@example.com", "s3cret")
	rr := httptest.NewRecorder()
	a.CreateToken(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var body struct {
		Token string `json:"token"`
		ID    string `json:"_id"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "u1", body.ID)
	assert.NotEmpty(t, body.Token)

	req = httptest.NewRequest("GET", "/api/v1/users/u1", nil)
	req.Header.Set("Authorization", "Bearer "+body.Token)
	rr = httptest.NewRecorder()
	a.Middleware(actorEcho()).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "u1", rr.Body.String())
}

func TestCreateToken_BadPassword(t *testing.T) {
	a, _ := newTestAuth(t)

	req := httptest.NewRequest("POST", "/api/v1/auth/token", nil)
	req.SetBasicAuth("ann@example.com", "wrong")
	rr := httptest.NewRecorder()
	a.CreateToken(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req = httptest.NewRequest("POST", "/api/v1/auth/token", nil)
	rr = httptest.NewRecorder()
	a.CreateToken(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestMiddleware_RejectsBadTokens(t *testing.T) {
	a, _ := newTestAuth(t)

	other := NewAuth(&mocks.UserDatabase{}, "another-secret", time.Hour)
	forged, _, err := other.IssueToken("u1")
	require.NoError(t, err)

	expired := NewAuth(&mocks.UserDatabase{}, "test-secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, _, err := expired.IssueToken("u1")
	require.NoError(t, err)

	for name, header := range map[string]string{
		"missing": "",
		"garbage": "Bearer not-a-jwt",
		"forged":  "Bearer " + forged,
		"expired": "Bearer " + old,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/users/u1", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rr := httptest.NewRecorder()
			a.Middleware(actorEcho()).ServeHTTP(rr, req)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.JSONEq(t, `{"response": "unauthorized"}`, rr.Body.String())
		})
	}
}

func TestTokenFromQuery(t *testing.T) {
	a, _ := newTestAuth(t)
	token, _, err := a.IssueToken("u1")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/ws/notifications?token="+token, nil)
	rr := httptest.NewRecorder()
	TokenFromQuery(a.Middleware(actorEcho())).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "u1", rr.Body.String())
}

func TestActorFrom(t *testing.T) {
	_, ok := ActorFrom(context.Background())
	assert.False(t, ok)

	id, ok := ActorFrom(WithActor(context.Background(), "u1"))
	assert.True(t, ok)
	assert.Equal(t, "u1", id)
}
