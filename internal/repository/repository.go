package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("document not found")

const (
	UsersCollection     = "users"
	FarmersCollection   = "farmers"
	AdminsCollection    = "admins"
	ProductsCollection  = "products"
	OrdersCollection    = "orders"
	FeedbacksCollection = "feedbacks"
)

var newestFirst = bson.D{{Key: "createdAt", Value: -1}}

func decodeAll[T any](ctx context.Context, cur *mongo.Cursor) ([]*T, error) {
	defer cur.Close(ctx)

	out := []*T{}
	for cur.Next(ctx) {
		var v T
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, cur.Err()
}

func findOne[T any](ctx context.Context, col *mongo.Collection, filter any) (*T, error) {
	var v T
	err := col.FindOne(ctx, filter).Decode(&v)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func findOneAndUpdate[T any](ctx context.Context, col *mongo.Collection, filter, update any) (*T, error) {
	var v T
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&v)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// EnsureIndexes creates the per-collection indexes the queries rely on.
// The email indexes only guarantee uniqueness inside one collection; the
// cross-collection check lives in the account service.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)
	plan := map[string][]mongo.IndexModel{
		UsersCollection:   {{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique}},
		FarmersCollection: {{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique}},
		AdminsCollection:  {{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique}},
		ProductsCollection: {
			{Keys: bson.D{{Key: "farmerId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		OrdersCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "items.productId", Value: 1}}},
		},
		FeedbacksCollection: {
			{Keys: bson.D{{Key: "productId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}

	for name, models := range plan {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}
