package databases

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// Transactor runs fn so that either every write inside it is applied or none is
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type mongoTransactor struct {
	client ClientHelper
}

// NewTransactor returns a Transactor backed by mongo sessions. Transactions
// need a replica set; a standalone server will reject them.
func NewTransactor(client ClientHelper) Transactor {
	return &mongoTransactor{client: client}
}

func (t *mongoTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := t.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
