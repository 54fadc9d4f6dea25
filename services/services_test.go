package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/dinebuddies-api/databases/memdb"
	"github.com/linesmerrill/dinebuddies-api/models"
	"github.com/linesmerrill/dinebuddies-api/services"
)

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

const (
	today    = "2026-03-10"
	tomorrow = "2026-03-11"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

type delivery struct {
	userID       string
	notification models.Notification
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []delivery
}

func (r *recordingNotifier) Notify(ctx context.Context, userID string, n models.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, delivery{userID: userID, notification: n})
}

func (r *recordingNotifier) ofType(t models.NotificationType) []delivery {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []delivery
	for _, d := range r.sent {
		if d.notification.Type == t {
			out = append(out, d)
		}
	}
	return out
}

type fixture struct {
	ctx      context.Context
	store    *memdb.Store
	clock    *clock
	notifier *recordingNotifier
	svc      *services.Services
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ctx:      context.Background(),
		store:    memdb.New(),
		clock:    &clock{t: testNow},
		notifier: &recordingNotifier{},
	}
	n := 0
	f.svc = services.New(services.Deps{
		Users:       f.store.Users(),
		Invitations: f.store.Invitations(),
		Tx:          f.store,
		Notifier:    f.notifier,
		Now:         f.clock.Now,
		NewID: func() string {
			n++
			return fmt.Sprintf("inv%d", n)
		},
	})
	return f
}

func person(id string, gender models.Gender, age int) models.User {
	return models.User{ID: id, Name: id, AccountType: models.AccountUser, Gender: gender, Age: age}
}

func (f *fixture) addUsers(t *testing.T, users ...models.User) {
	t.Helper()
	for _, u := range users {
		require.NoError(t, f.store.Users().InsertOne(f.ctx, u))
	}
}

func (f *fixture) addInvitation(t *testing.T, inv models.Invitation) {
	t.Helper()
	require.NoError(t, f.store.Invitations().InsertOne(f.ctx, inv))
}

func (f *fixture) user(t *testing.T, id string) models.User {
	t.Helper()
	u, err := f.store.Users().FindByID(f.ctx, id)
	require.NoError(t, err)
	return *u
}

func (f *fixture) invitation(t *testing.T, id string) models.Invitation {
	t.Helper()
	inv, err := f.store.Invitations().FindByID(f.ctx, id)
	require.NoError(t, err)
	return *inv
}

func draft(date string, guests int) services.InvitationDraft {
	return services.InvitationDraft{
		Title:        "Ramen night",
		Date:         date,
		Time:         "19:30",
		Location:     "Ichiran",
		GuestsNeeded: guests,
	}
}
