package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/dinebuddies-api/databases/memdb"
	"github.com/linesmerrill/dinebuddies-api/models"
)

type recordingSink struct {
	name      string
	err       error
	delivered []models.Notification
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Deliver(ctx context.Context, n models.Notification) error {
	s.delivered = append(s.delivered, n)
	return s.err
}

func TestDispatcher_NotifyStampsAndFansOut(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	broken := &recordingSink{name: "broken", err: errors.New("smtp down")}
	working := &recordingSink{name: "working"}
	d := NewDispatcher(func() time.Time { return now }, broken, working)

	d.Notify(context.Background(), "u1", models.Notification{Type: models.NotificationNewFollower, Title: "New follower"})

	require.Len(t, working.delivered, 1)
	got := working.delivered[0]
	assert.Equal(t, "u1", got.UserID)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, now, got.CreatedAt)
	assert.False(t, got.Read)
	assert.Len(t, broken.delivered, 1)
	assert.Equal(t, got.ID, broken.delivered[0].ID)
}

type blockingSink struct {
	release chan struct{}
	ctxErr  error
	got     []models.Notification
}

func (s *blockingSink) Name() string { return "blocking" }

func (s *blockingSink) Deliver(ctx context.Context, n models.Notification) error {
	<-s.release
	s.ctxErr = ctx.Err()
	s.got = append(s.got, n)
	return nil
}

func TestDispatcher_BackgroundSinksDoNotBlockNotify(t *testing.T) {
	inline := &recordingSink{name: "inline"}
	slow := &blockingSink{release: make(chan struct{})}
	d := NewDispatcher(nil, inline).InBackground(slow)

	ctx, cancel := context.WithCancel(context.Background())
	returned := make(chan struct{})
	go func() {
		d.Notify(ctx, "u1", models.Notification{Type: models.NotificationInvitationUpdated})
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("Notify waited for a background sink")
	}
	require.Len(t, inline.delivered, 1)

	// the caller's context ending must not cut the background delivery short
	cancel()
	close(slow.release)
	require.NoError(t, d.Wait(context.Background()))
	require.Len(t, slow.got, 1)
	assert.Equal(t, inline.delivered[0].ID, slow.got[0].ID)
	assert.NoError(t, slow.ctxErr)
}

func TestDispatcher_WaitHonoursContext(t *testing.T) {
	slow := &blockingSink{release: make(chan struct{})}
	d := NewDispatcher(nil).InBackground(slow)
	d.Notify(context.Background(), "u1", models.Notification{Type: models.NotificationCommunityRemoved})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Wait(ctx), context.DeadlineExceeded)

	close(slow.release)
	assert.NoError(t, d.Wait(context.Background()))
}

func TestStoreSink(t *testing.T) {
	store := memdb.New()
	d := NewDispatcher(nil, StoreSink{DB: store.Notifications()})

	d.Notify(context.Background(), "u1", models.Notification{Type: models.NotificationJoinRequest, Title: "New join request"})
	d.Notify(context.Background(), "u2", models.Notification{Type: models.NotificationJoinRequest, Title: "New join request"})

	mine, err := store.Notifications().FindByUser(context.Background(), "u1", 10, 1)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, models.NotificationJoinRequest, mine[0].Type)
}

type capturedPublish struct {
	key string
	v   interface{}
}

type fakePublisher struct {
	published []capturedPublish
}

func (p *fakePublisher) PublishJSON(ctx context.Context, key string, v interface{}) error {
	p.published = append(p.published, capturedPublish{key: key, v: v})
	return nil
}

func TestQueueSink(t *testing.T) {
	pub := &fakePublisher{}
	sink := &QueueSink{pub: pub}

	n := models.Notification{ID: "n1", UserID: "u1", Type: models.NotificationPartnerGroupFull}
	require.NoError(t, sink.Deliver(context.Background(), n))

	require.Len(t, pub.published, 1)
	assert.Equal(t, "notification.partner_group_full", pub.published[0].key)
	assert.Equal(t, n, pub.published[0].v)
}
