package repository

import (
	"context"
	"errors"
	"time"

	"farmerfriend-backend/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoOrderRepository struct {
	col *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{col: db.Collection(OrdersCollection)}
}

func (m *MongoOrderRepository) Create(ctx context.Context, o *model.Order) error {
	now := time.Now().UTC()
	o.ID = primitive.NewObjectID()
	o.CreatedAt = now
	o.UpdatedAt = now

	_, err := m.col.InsertOne(ctx, o)
	return err
}

func (m *MongoOrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Order, error) {
	return findOne[model.Order](ctx, m.col, bson.M{"_id": id})
}

func (m *MongoOrderRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]*model.Order, error) {
	cur, err := m.col.Find(ctx, bson.M{"userId": userID}, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}
	return decodeAll[model.Order](ctx, cur)
}

// FindContainingProducts returns, newest first, every order with at least one
// item referencing one of productIDs.
func (m *MongoOrderRepository) FindContainingProducts(ctx context.Context, productIDs []primitive.ObjectID) ([]*model.Order, error) {
	if len(productIDs) == 0 {
		return []*model.Order{}, nil
	}
	cur, err := m.col.Find(ctx,
		bson.M{"items.productId": bson.M{"$in": productIDs}},
		options.Find().SetSort(newestFirst),
	)
	if err != nil {
		return nil, err
	}
	return decodeAll[model.Order](ctx, cur)
}

// TransitionStatus moves the order from one status to another only while it
// still holds from. A false result means another writer got there first.
func (m *MongoOrderRepository) TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to model.OrderStatus) (*model.Order, bool, error) {
	o, err := findOneAndUpdate[model.Order](ctx, m.col,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now().UTC()}},
	)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return o, true, nil
}

func (m *MongoOrderRepository) Count(ctx context.Context) (int64, error) {
	return m.col.CountDocuments(ctx, bson.M{})
}

// Revenue sums totalAmount over every order.
func (m *MongoOrderRepository) Revenue(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$totalAmount"}}},
		}}},
	}
	cur, err := m.col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var row struct {
		Total float64 `bson:"total"`
	}
	if cur.Next(ctx) {
		if err := cur.Decode(&row); err != nil {
			return 0, err
		}
	}
	return row.Total, cur.Err()
}
