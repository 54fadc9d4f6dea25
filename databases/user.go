package databases

// go generate: mockery --name UserDatabase

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/linesmerrill/dinebuddies-api/models"
)

const userName = "users"

// UserDatabase contains the methods to use with the user database. Set
// fields are only ever changed with $addToSet/$pull and counters with $inc.
type UserDatabase interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.User, error)
	FindFollowers(ctx context.Context, id string) ([]models.User, error)
	FindCommunityMembers(ctx context.Context, partnerID string) ([]models.User, error)
	InsertOne(ctx context.Context, user models.User) error
	AddFollowing(ctx context.Context, userID, targetID string) (bool, error)
	RemoveFollowing(ctx context.Context, userID, targetID string) (bool, error)
	IncrementFollowers(ctx context.Context, userID string, delta int) error
	AddCommunity(ctx context.Context, userID, partnerID string) (bool, error)
	RemoveCommunity(ctx context.Context, userID, partnerID string) (bool, error)
	AppendCancellation(ctx context.Context, userID string, record models.CancellationRecord) error
	SetRestriction(ctx context.Context, userID string, restriction models.InvitationRestriction) error
	ClearRestrictionIfExpired(ctx context.Context, userID string, now time.Time) (bool, error)
	ClaimActiveInvitation(ctx context.Context, userID string, claim models.ActiveInvitation, today string) (bool, error)
	ReleaseActiveInvitation(ctx context.Context, userID, invitationID string) error
	IncrementReputation(ctx context.Context, userID string, delta int) error
	PruneCancellationHistory(ctx context.Context, cutoff time.Time) (int64, error)
	ClearExpiredRestrictions(ctx context.Context, now time.Time) (int64, error)
}

type userDatabase struct {
	db DatabaseHelper
}

// NewUserDatabase initializes a new instance of user database with the provided db connection
func NewUserDatabase(db DatabaseHelper) UserDatabase {
	return &userDatabase{
		db: db,
	}
}

func (u *userDatabase) findOne(ctx context.Context, filter interface{}) (*models.User, error) {
	user := &models.User{}
	err := u.db.Collection(userName).FindOne(ctx, filter).Decode(user)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return user, nil
}

func (u *userDatabase) find(ctx context.Context, filter interface{}) ([]models.User, error) {
	cursor, err := u.db.Collection(userName).Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (u *userDatabase) FindByID(ctx context.Context, id string) (*models.User, error) {
	return u.findOne(ctx, bson.M{"_id": id})
}

func (u *userDatabase) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return u.findOne(ctx, bson.M{"email": email})
}

func (u *userDatabase) FindByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	return u.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (u *userDatabase) FindFollowers(ctx context.Context, id string) ([]models.User, error) {
	return u.find(ctx, bson.M{"following": id})
}

func (u *userDatabase) FindCommunityMembers(ctx context.Context, partnerID string) ([]models.User, error) {
	return u.find(ctx, bson.M{"joinedCommunities": partnerID})
}

func (u *userDatabase) InsertOne(ctx context.Context, user models.User) error {
	_, err := u.db.Collection(userName).InsertOne(ctx, NormalizeUser(user))
	return err
}

// modified runs a guarded single-document update and reports whether it changed anything
func (u *userDatabase) modified(ctx context.Context, filter, update interface{}) (bool, error) {
	res, err := u.db.Collection(userName).UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (u *userDatabase) AddFollowing(ctx context.Context, userID, targetID string) (bool, error) {
	return u.modified(ctx,
		bson.M{"_id": userID, "following": bson.M{"$ne": targetID}},
		bson.M{"$addToSet": bson.M{"following": targetID}})
}

func (u *userDatabase) RemoveFollowing(ctx context.Context, userID, targetID string) (bool, error) {
	return u.modified(ctx,
		bson.M{"_id": userID, "following": targetID},
		bson.M{"$pull": bson.M{"following": targetID}})
}

func (u *userDatabase) IncrementFollowers(ctx context.Context, userID string, delta int) error {
	res, err := u.db.Collection(userName).UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$inc": bson.M{"followersCount": delta}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	return nil
}

func (u *userDatabase) AddCommunity(ctx context.Context, userID, partnerID string) (bool, error) {
	return u.modified(ctx,
		bson.M{"_id": userID, "joinedCommunities": bson.M{"$ne": partnerID}},
		bson.M{"$addToSet": bson.M{"joinedCommunities": partnerID}})
}

func (u *userDatabase) RemoveCommunity(ctx context.Context, userID, partnerID string) (bool, error) {
	return u.modified(ctx,
		bson.M{"_id": userID, "joinedCommunities": partnerID},
		bson.M{"$pull": bson.M{"joinedCommunities": partnerID}})
}

func (u *userDatabase) AppendCancellation(ctx context.Context, userID string, record models.CancellationRecord) error {
	_, err := u.db.Collection(userName).UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$push": bson.M{"cancellationHistory": record}})
	return err
}

func (u *userDatabase) SetRestriction(ctx context.Context, userID string, restriction models.InvitationRestriction) error {
	_, err := u.db.Collection(userName).UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{"invitationRestriction": restriction}})
	return err
}

func (u *userDatabase) ClearRestrictionIfExpired(ctx context.Context, userID string, now time.Time) (bool, error) {
	return u.modified(ctx,
		bson.M{"_id": userID, "invitationRestriction.until": bson.M{"$lte": now}},
		bson.M{"$unset": bson.M{"invitationRestriction": ""}})
}

func (u *userDatabase) ClaimActiveInvitation(ctx context.Context, userID string, claim models.ActiveInvitation, today string) (bool, error) {
	filter := bson.M{
		"_id": userID,
		"$or": bson.A{
			bson.M{"activeInvitation": nil},
			bson.M{"activeInvitation.date": bson.M{"$lt": today}},
		},
	}
	return u.modified(ctx, filter, bson.M{"$set": bson.M{"activeInvitation": claim}})
}

func (u *userDatabase) ReleaseActiveInvitation(ctx context.Context, userID, invitationID string) error {
	_, err := u.db.Collection(userName).UpdateOne(ctx,
		bson.M{"_id": userID, "activeInvitation.invitationId": invitationID},
		bson.M{"$unset": bson.M{"activeInvitation": ""}})
	return err
}

func (u *userDatabase) IncrementReputation(ctx context.Context, userID string, delta int) error {
	_, err := u.db.Collection(userName).UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$inc": bson.M{"reputation": delta}})
	return err
}

func (u *userDatabase) PruneCancellationHistory(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := u.db.Collection(userName).UpdateMany(ctx,
		bson.M{"cancellationHistory.timestamp": bson.M{"$lt": cutoff}},
		bson.M{"$pull": bson.M{"cancellationHistory": bson.M{"timestamp": bson.M{"$lt": cutoff}}}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (u *userDatabase) ClearExpiredRestrictions(ctx context.Context, now time.Time) (int64, error) {
	res, err := u.db.Collection(userName).UpdateMany(ctx,
		bson.M{"invitationRestriction.until": bson.M{"$lte": now}},
		bson.M{"$unset": bson.M{"invitationRestriction": ""}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// NormalizeUser replaces nil sets with empty ones; mongo stores a nil slice
// as null and $addToSet refuses to touch a null field.
func NormalizeUser(user models.User) models.User {
	if user.Following == nil {
		user.Following = []string{}
	}
	if user.JoinedCommunities == nil {
		user.JoinedCommunities = []string{}
	}
	if user.CancellationHistory == nil {
		user.CancellationHistory = []models.CancellationRecord{}
	}
	return user
}
