// Package services holds the social graph and invitation rules. Every service
// receives its store, notifier and clock explicitly; nothing here reaches for
// package-level state other than the tracer.
package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/linesmerrill/dinebuddies-api/databases"
	"github.com/linesmerrill/dinebuddies-api/models"
)

var tracer = otel.Tracer("github.com/linesmerrill/dinebuddies-api/services")

// Notifier delivers a notification to a user. Delivery is fire-and-forget:
// implementations report their own failures and never fail the caller's
// primary operation.
type Notifier interface {
	Notify(ctx context.Context, userID string, n models.Notification)
}

// Deps are the collaborators shared by every service
type Deps struct {
	Users       databases.UserDatabase
	Invitations databases.InvitationDatabase
	Tx          databases.Transactor
	Notifier    Notifier
	Now         func() time.Time
	NewID       func() string
}

// Services groups the services wired from one set of Deps
type Services struct {
	Follow     *FollowGraph
	Policy     *CancellationPolicy
	Guard      *DailyCreationGuard
	Lifecycle  *InvitationLifecycle
	Community  *CommunityMembership
	Reputation *Reputation
}

// New wires every service
func New(d Deps) *Services {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.NewID == nil {
		d.NewID = func() string { return primitive.NewObjectID().Hex() }
	}
	if d.Notifier == nil {
		d.Notifier = nopNotifier{}
	}

	rep := NewReputation(d.Users)
	policy := NewCancellationPolicy(d.Users, d.Now)
	guard := NewDailyCreationGuard(d.Invitations, d.Now)
	return &Services{
		Follow:     NewFollowGraph(d.Users, d.Tx, d.Notifier),
		Policy:     policy,
		Guard:      guard,
		Lifecycle:  NewInvitationLifecycle(d, policy, guard, rep),
		Community:  NewCommunityMembership(d.Users, d.Notifier),
		Reputation: rep,
	}
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, string, models.Notification) {}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// endSpan records err on the span before ending it
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
