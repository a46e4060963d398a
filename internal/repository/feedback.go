package repository

import (
	"context"
	"time"

	"farmerfriend-backend/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoFeedbackRepository struct {
	col *mongo.Collection
}

func NewMongoFeedbackRepository(db *mongo.Database) *MongoFeedbackRepository {
	return &MongoFeedbackRepository{col: db.Collection(FeedbacksCollection)}
}

func (m *MongoFeedbackRepository) Create(ctx context.Context, f *model.Feedback) error {
	now := time.Now().UTC()
	f.ID = primitive.NewObjectID()
	f.CreatedAt = now
	f.UpdatedAt = now
	if f.Likes == nil {
		f.Likes = []primitive.ObjectID{}
	}
	if f.Replies == nil {
		f.Replies = []model.Reply{}
	}

	_, err := m.col.InsertOne(ctx, f)
	return err
}

func (m *MongoFeedbackRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Feedback, error) {
	return findOne[model.Feedback](ctx, m.col, bson.M{"_id": id})
}

func (m *MongoFeedbackRepository) FindByProduct(ctx context.Context, productID primitive.ObjectID) ([]*model.Feedback, error) {
	cur, err := m.col.Find(ctx, bson.M{"productId": productID}, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}
	return decodeAll[model.Feedback](ctx, cur)
}

func (m *MongoFeedbackRepository) AddLike(ctx context.Context, id, userID primitive.ObjectID) (*model.Feedback, error) {
	return findOneAndUpdate[model.Feedback](ctx, m.col, bson.M{"_id": id}, bson.M{
		"$addToSet": bson.M{"likes": userID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	})
}

func (m *MongoFeedbackRepository) RemoveLike(ctx context.Context, id, userID primitive.ObjectID) (*model.Feedback, error) {
	return findOneAndUpdate[model.Feedback](ctx, m.col, bson.M{"_id": id}, bson.M{
		"$pull": bson.M{"likes": userID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
}

func (m *MongoFeedbackRepository) AddReply(ctx context.Context, id primitive.ObjectID, r model.Reply) (*model.Feedback, error) {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	return findOneAndUpdate[model.Feedback](ctx, m.col, bson.M{"_id": id}, bson.M{
		"$push": bson.M{"replies": r},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
}

func (m *MongoFeedbackRepository) Count(ctx context.Context) (int64, error) {
	return m.col.CountDocuments(ctx, bson.M{})
}
