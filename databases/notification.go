package databases

// go generate: mockery --name NotificationDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/linesmerrill/dinebuddies-api/models"
)

const notificationName = "notifications"

// NotificationDatabase contains the methods to use with the notification database
type NotificationDatabase interface {
	InsertOne(ctx context.Context, notification models.Notification) error
	FindByUser(ctx context.Context, userID string, limit, page int) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID string) (bool, error)
}

type notificationDatabase struct {
	db DatabaseHelper
}

// NewNotificationDatabase initializes a new instance of notification database with the provided db connection
func NewNotificationDatabase(db DatabaseHelper) NotificationDatabase {
	return &notificationDatabase{
		db: db,
	}
}

func (n *notificationDatabase) InsertOne(ctx context.Context, notification models.Notification) error {
	_, err := n.db.Collection(notificationName).InsertOne(ctx, notification)
	return err
}

func (n *notificationDatabase) FindByUser(ctx context.Context, userID string, limit, page int) ([]models.Notification, error) {
	opts := newMongoPaginate(limit, page).getPaginatedOpts()
	opts.SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := n.db.Collection(notificationName).Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	notifications := []models.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (n *notificationDatabase) MarkRead(ctx context.Context, userID, notificationID string) (bool, error) {
	res, err := n.db.Collection(notificationName).UpdateOne(ctx,
		bson.M{"_id": notificationID, "userId": userID},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}
