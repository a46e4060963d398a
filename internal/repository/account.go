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

// MongoAccountRepository serves one identity collection; the role it is built
// with is stamped on every account it returns.
type MongoAccountRepository struct {
	col  *mongo.Collection
	role model.Role
}

func NewMongoAccountRepository(db *mongo.Database, role model.Role) *MongoAccountRepository {
	name := UsersCollection
	switch role {
	case model.RoleFarmer:
		name = FarmersCollection
	case model.RoleAdmin:
		name = AdminsCollection
	}
	return &MongoAccountRepository{col: db.Collection(name), role: role}
}

func (m *MongoAccountRepository) Role() model.Role {
	return m.role
}

func (m *MongoAccountRepository) stamp(a *model.Account) *model.Account {
	if a != nil {
		a.Role = m.role
	}
	return a
}

func (m *MongoAccountRepository) one(ctx context.Context, filter any) (*model.Account, error) {
	a, err := findOne[model.Account](ctx, m.col, filter)
	return m.stamp(a), err
}

func (m *MongoAccountRepository) updated(ctx context.Context, id primitive.ObjectID, update any) (*model.Account, error) {
	a, err := findOneAndUpdate[model.Account](ctx, m.col, bson.M{"_id": id}, update)
	return m.stamp(a), err
}

func (m *MongoAccountRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Account, error) {
	return m.one(ctx, bson.M{"_id": id})
}

func (m *MongoAccountRepository) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	return m.one(ctx, bson.M{"email": email})
}

func (m *MongoAccountRepository) FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*model.Account, error) {
	return m.one(ctx, bson.M{
		"resetPasswordToken":  tokenHash,
		"resetPasswordExpire": bson.M{"$gt": now},
	})
}

func (m *MongoAccountRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*model.Account, error) {
	if len(ids) == 0 {
		return []*model.Account{}, nil
	}
	cur, err := m.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	out, err := decodeAll[model.Account](ctx, cur)
	for _, a := range out {
		m.stamp(a)
	}
	return out, err
}

func (m *MongoAccountRepository) List(ctx context.Context) ([]*model.Account, error) {
	cur, err := m.col.Find(ctx, bson.M{}, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}
	out, err := decodeAll[model.Account](ctx, cur)
	for _, a := range out {
		m.stamp(a)
	}
	return out, err
}

func (m *MongoAccountRepository) Count(ctx context.Context) (int64, error) {
	return m.col.CountDocuments(ctx, bson.M{})
}

func (m *MongoAccountRepository) Create(ctx context.Context, a *model.Account) error {
	now := time.Now().UTC()
	a.ID = primitive.NewObjectID()
	a.CreatedAt = now
	a.UpdatedAt = now
	a.Role = m.role

	_, err := m.col.InsertOne(ctx, a)
	return err
}

func (m *MongoAccountRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, name, email string) (*model.Account, error) {
	return m.updated(ctx, id, bson.M{"$set": bson.M{
		"name":      name,
		"email":     email,
		"updatedAt": time.Now().UTC(),
	}})
}

func (m *MongoAccountRepository) SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	res, err := m.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"password":  hash,
		"updatedAt": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoAccountRepository) SetResetToken(ctx context.Context, id primitive.ObjectID, tokenHash string, expire time.Time) error {
	_, err := m.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"resetPasswordToken":  tokenHash,
		"resetPasswordExpire": expire,
	}})
	return err
}

// ResetPassword stores the new hash and drops the reset token in a single write.
func (m *MongoAccountRepository) ResetPassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	_, err := m.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set":   bson.M{"password": hash, "updatedAt": time.Now().UTC()},
		"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpire": ""},
	})
	return err
}

// Delete reports whether a document was removed.
func (m *MongoAccountRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := m.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (m *MongoAccountRepository) AddCartItem(ctx context.Context, id, productID primitive.ObjectID, qty int) (*model.Account, error) {
	return m.updated(ctx, id, bson.M{
		"$inc": bson.M{"cart." + productID.Hex(): qty},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	})
}

func (m *MongoAccountRepository) SetCartItem(ctx context.Context, id, productID primitive.ObjectID, qty int) (*model.Account, error) {
	key := "cart." + productID.Hex()
	update := bson.M{"$set": bson.M{key: qty, "updatedAt": time.Now().UTC()}}
	if qty == 0 {
		update = bson.M{
			"$unset": bson.M{key: ""},
			"$set":   bson.M{"updatedAt": time.Now().UTC()},
		}
	}
	return m.updated(ctx, id, update)
}

func (m *MongoAccountRepository) ClearCart(ctx context.Context, id primitive.ObjectID) error {
	_, err := m.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"cart":      bson.M{},
		"updatedAt": time.Now().UTC(),
	}})
	return err
}
