package databases

// go generate: mockery --name InvitationDatabase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/dinebuddies-api/models"
)

const invitationName = "invitations"

// InvitationDatabase contains the methods to use with the invitation database.
// Every membership change is a single guarded update on one document, so
// requests and joined never share an id.
type InvitationDatabase interface {
	InsertOne(ctx context.Context, invitation models.Invitation) error
	FindByID(ctx context.Context, id string) (*models.Invitation, error)
	FindUpcomingByAuthor(ctx context.Context, authorID, fromDate string) (*models.Invitation, error)
	AddRequest(ctx context.Context, invitationID, userID string) (bool, error)
	RemoveRequest(ctx context.Context, invitationID, userID string) (bool, error)
	ApproveRequest(ctx context.Context, invitationID, userID string) (*models.Invitation, error)
	Reschedule(ctx context.Context, invitationID string, entry models.EditEntry) (*models.Invitation, error)
	ConfirmNewTime(ctx context.Context, invitationID, userID string) (bool, error)
	DeclineNewTime(ctx context.Context, invitationID, userID string) (bool, error)
	AdvanceStatus(ctx context.Context, invitationID string, from, to models.MeetingStatus, at time.Time) (bool, error)
	SetRating(ctx context.Context, invitationID string, rating models.Rating) (bool, error)
	MarkCancelled(ctx context.Context, invitationID, reason string, at time.Time) (*models.Invitation, error)
}

type invitationDatabase struct {
	db DatabaseHelper
}

// NewInvitationDatabase initializes a new instance of invitation database with the provided db connection
func NewInvitationDatabase(db DatabaseHelper) InvitationDatabase {
	return &invitationDatabase{
		db: db,
	}
}

func (i *invitationDatabase) InsertOne(ctx context.Context, invitation models.Invitation) error {
	_, err := i.db.Collection(invitationName).InsertOne(ctx, NormalizeInvitation(invitation))
	return err
}

func (i *invitationDatabase) FindByID(ctx context.Context, id string) (*models.Invitation, error) {
	invitation := &models.Invitation{}
	err := i.db.Collection(invitationName).FindOne(ctx, bson.M{"_id": id}).Decode(invitation)
	if err != nil {
		return nil, notFound(err, "invitation")
	}
	return invitation, nil
}

func (i *invitationDatabase) FindUpcomingByAuthor(ctx context.Context, authorID, fromDate string) (*models.Invitation, error) {
	filter := bson.M{
		"author.id":   authorID,
		"date":        bson.M{"$gte": fromDate},
		"cancelledAt": nil,
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "date", Value: 1}})
	invitation := &models.Invitation{}
	err := i.db.Collection(invitationName).FindOne(ctx, filter, opts).Decode(invitation)
	if err != nil {
		return nil, notFound(err, "invitation")
	}
	return invitation, nil
}

func (i *invitationDatabase) modified(ctx context.Context, filter, update interface{}) (bool, error) {
	res, err := i.db.Collection(invitationName).UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (i *invitationDatabase) findOneAndUpdate(ctx context.Context, filter, update interface{}, when options.ReturnDocument) (*models.Invitation, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(when)
	invitation := &models.Invitation{}
	err := i.db.Collection(invitationName).FindOneAndUpdate(ctx, filter, update, opts).Decode(invitation)
	if err != nil {
		return nil, notFound(err, "invitation")
	}
	return invitation, nil
}

func (i *invitationDatabase) AddRequest(ctx context.Context, invitationID, userID string) (bool, error) {
	filter := bson.M{
		"_id":         invitationID,
		"cancelledAt": nil,
		"joined":      bson.M{"$ne": userID},
		"requests":    bson.M{"$ne": userID},
	}
	return i.modified(ctx, filter, bson.M{"$addToSet": bson.M{"requests": userID}})
}

func (i *invitationDatabase) RemoveRequest(ctx context.Context, invitationID, userID string) (bool, error) {
	return i.modified(ctx,
		bson.M{"_id": invitationID, "requests": userID},
		bson.M{"$pull": bson.M{"requests": userID}})
}

// ApproveRequest moves userID from requests to joined while a seat is free
// and returns the updated invitation.
func (i *invitationDatabase) ApproveRequest(ctx context.Context, invitationID, userID string) (*models.Invitation, error) {
	filter := bson.M{
		"_id":         invitationID,
		"cancelledAt": nil,
		"requests":    userID,
		"$expr": bson.M{"$lt": bson.A{
			bson.M{"$size": bson.M{"$ifNull": bson.A{"$joined", bson.A{}}}},
			"$guestsNeeded",
		}},
	}
	update := bson.M{
		"$pull":     bson.M{"requests": userID},
		"$addToSet": bson.M{"joined": userID},
	}
	return i.findOneAndUpdate(ctx, filter, update, options.After)
}

// Reschedule applies the one permitted date/time edit and demotes every joined
// user to requests and pendingChangeApproval in the same write. It returns the
// invitation as it was before the edit.
func (i *invitationDatabase) Reschedule(ctx context.Context, invitationID string, entry models.EditEntry) (*models.Invitation, error) {
	filter := bson.M{
		"_id":         invitationID,
		"cancelledAt": nil,
		"$or": bson.A{
			bson.M{"editHistory": nil},
			bson.M{"editHistory": bson.M{"$size": 0}},
		},
	}
	joined := bson.M{"$ifNull": bson.A{"$joined", bson.A{}}}
	update := bson.A{
		bson.M{"$set": bson.M{
			"requests":              bson.M{"$setUnion": bson.A{bson.M{"$ifNull": bson.A{"$requests", bson.A{}}}, joined}},
			"pendingChangeApproval": bson.M{"$setUnion": bson.A{bson.M{"$ifNull": bson.A{"$pendingChangeApproval", bson.A{}}}, joined}},
			"joined":                bson.A{},
			"date":                  bson.M{"$literal": entry.NewDate},
			"time":                  bson.M{"$literal": entry.NewTime},
			"editHistory":           bson.M{"$literal": bson.A{entry}},
		}},
	}
	return i.findOneAndUpdate(ctx, filter, update, options.Before)
}

func (i *invitationDatabase) ConfirmNewTime(ctx context.Context, invitationID, userID string) (bool, error) {
	return i.modified(ctx,
		bson.M{"_id": invitationID, "pendingChangeApproval": userID},
		bson.M{
			"$pull":     bson.M{"pendingChangeApproval": userID, "requests": userID},
			"$addToSet": bson.M{"joined": userID},
		})
}

// DeclineNewTime pulls userID from pendingChangeApproval and requests
func (i *invitationDatabase) DeclineNewTime(ctx context.Context, invitationID, userID string) (bool, error) {
	return i.modified(ctx,
		bson.M{"_id": invitationID, "pendingChangeApproval": userID},
		bson.M{"$pull": bson.M{"pendingChangeApproval": userID, "requests": userID}})
}

func (i *invitationDatabase) AdvanceStatus(ctx context.Context, invitationID string, from, to models.MeetingStatus, at time.Time) (bool, error) {
	filter := bson.M{"_id": invitationID, "cancelledAt": nil, "meetingStatus": from}
	if from == models.StatusPlanning {
		filter["meetingStatus"] = bson.M{"$in": bson.A{from, "", nil}}
	}
	set := bson.M{"meetingStatus": to}
	if to == models.StatusCompleted {
		set["completedAt"] = at
	}
	return i.modified(ctx, filter, bson.M{"$set": set})
}

func (i *invitationDatabase) SetRating(ctx context.Context, invitationID string, rating models.Rating) (bool, error) {
	return i.modified(ctx,
		bson.M{"_id": invitationID, "meetingStatus": models.StatusCompleted, "rating": nil},
		bson.M{"$set": bson.M{"rating": rating}})
}

// MarkCancelled flags the invitation as called off and returns it as it was before
func (i *invitationDatabase) MarkCancelled(ctx context.Context, invitationID, reason string, at time.Time) (*models.Invitation, error) {
	return i.findOneAndUpdate(ctx,
		bson.M{"_id": invitationID, "cancelledAt": nil},
		bson.M{"$set": bson.M{"cancelledAt": at, "cancelReason": reason}},
		options.Before)
}

// NormalizeInvitation replaces nil sets with empty ones so set operators can apply
func NormalizeInvitation(invitation models.Invitation) models.Invitation {
	if invitation.Requests == nil {
		invitation.Requests = []string{}
	}
	if invitation.Joined == nil {
		invitation.Joined = []string{}
	}
	if invitation.PendingChangeApproval == nil {
		invitation.PendingChangeApproval = []string{}
	}
	if invitation.EditHistory == nil {
		invitation.EditHistory = []models.EditEntry{}
	}
	if invitation.MeetingStatus == "" {
		invitation.MeetingStatus = models.StatusPlanning
	}
	return invitation
}
