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

type MongoProductRepository struct {
	col *mongo.Collection
}

func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{col: db.Collection(ProductsCollection)}
}

func (m *MongoProductRepository) Create(ctx context.Context, p *model.Product) error {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Image == nil {
		p.Image = []string{}
	}

	_, err := m.col.InsertOne(ctx, p)
	return err
}

func (m *MongoProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Product, error) {
	return findOne[model.Product](ctx, m.col, bson.M{"_id": id})
}

func (m *MongoProductRepository) find(ctx context.Context, filter any, opts ...*options.FindOptions) ([]*model.Product, error) {
	cur, err := m.col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	return decodeAll[model.Product](ctx, cur)
}

func (m *MongoProductRepository) FindAll(ctx context.Context) ([]*model.Product, error) {
	return m.find(ctx, bson.M{})
}

func (m *MongoProductRepository) FindByFarmer(ctx context.Context, farmerID primitive.ObjectID) ([]*model.Product, error) {
	return m.find(ctx, bson.M{"farmerId": farmerID}, options.Find().SetSort(newestFirst))
}

func (m *MongoProductRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*model.Product, error) {
	if len(ids) == 0 {
		return []*model.Product{}, nil
	}
	return m.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (m *MongoProductRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := m.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (m *MongoProductRepository) SetStock(ctx context.Context, id primitive.ObjectID, stock int) (*model.Product, error) {
	return findOneAndUpdate[model.Product](ctx, m.col, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"stock":     stock,
		"updatedAt": time.Now().UTC(),
	}})
}

// DecrementStock takes qty units only while at least qty remain. It reports
// false when the guard did not match, leaving the document untouched.
func (m *MongoProductRepository) DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) (bool, error) {
	res, err := m.col.UpdateOne(ctx,
		bson.M{"_id": id, "stock": bson.M{"$gte": qty}},
		bson.M{
			"$inc": bson.M{"stock": -qty},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (m *MongoProductRepository) IncrementStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	_, err := m.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{"stock": qty},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	})
	return err
}

func (m *MongoProductRepository) Count(ctx context.Context) (int64, error) {
	return m.col.CountDocuments(ctx, bson.M{})
}
