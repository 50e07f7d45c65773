package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"ewaste-pickup/models"
	"ewaste-pickup/utils"
)

var withoutPassword = bson.M{"password": 0}

// MongoUserStore keeps one document per account in the users collection.
// Orders live in the document's orders array and are only ever changed
// through single-document atomic updates.
type MongoUserStore struct {
	coll *mongo.Collection
}

func NewMongoUserStore(db *mongo.Database) *MongoUserStore {
	return &MongoUserStore{coll: db.Collection(UsersCollection)}
}

// EnsureIndexes creates the unique email index and a partial unique index
// on embedded order ids. The partial filter skips accounts without orders,
// which would otherwise all collide on a missing key.
func (s *MongoUserStore) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_1"),
		},
		{
			Keys: bson.D{{Key: "orders.orderId", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("orders_orderId_unique").
				SetPartialFilterExpression(bson.M{"orders.orderId": bson.M{"$exists": true}}),
		},
	}
	if _, err := s.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create users indexes: %w", err)
	}
	return nil
}

// Ping checks that the primary is reachable.
func (s *MongoUserStore) Ping(ctx context.Context) error {
	return wrapDBError(s.coll.Database().Client().Ping(ctx, readpref.Primary()))
}

// CreateUser inserts user and fills in its generated id. A duplicate email,
// including one that races past the caller's pre-check, is a conflict.
func (s *MongoUserStore) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if user.Orders == nil {
		user.Orders = []models.Order{}
	}
	result, err := s.coll.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, utils.ConflictError("Email already registered")
		}
		return nil, wrapDBError(err)
	}
	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, utils.InternalError(fmt.Errorf("unexpected inserted id type %T", result.InsertedID))
	}
	user.ID = id
	return user, nil
}

// EmailExists reports whether an account already uses email.
func (s *MongoUserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	count, err := s.coll.CountDocuments(ctx, bson.M{"email": email}, options.Count().SetLimit(1))
	if err != nil {
		return false, wrapDBError(err)
	}
	return count > 0, nil
}

// FindUserByEmail returns the account including its password hash.
func (s *MongoUserStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.NotFoundError("User not found")
		}
		return nil, wrapDBError(err)
	}
	return &user, nil
}

// FindUserByID returns the account without its password hash.
func (s *MongoUserStore) FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	opts := options.FindOne().SetProjection(withoutPassword)
	err := s.coll.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.NotFoundError("User not found")
		}
		return nil, wrapDBError(err)
	}
	return &user, nil
}

// UpdateProfile writes the non-nil fields of update and returns the new document.
func (s *MongoUserStore) UpdateProfile(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate, now time.Time) (*models.User, error) {
	set := bson.M{"updatedAt": now}
	for field, value := range map[string]*string{
		"fullName": update.FullName,
		"phone":    update.Phone,
		"address":  update.Address,
		"city":     update.City,
		"state":    update.State,
		"zipCode":  update.ZipCode,
	} {
		if value != nil {
			set[field] = *value
		}
	}
	return s.findAndSet(ctx, id, set)
}

// SetProfilePicture stores the picture URL on the account.
func (s *MongoUserStore) SetProfilePicture(ctx context.Context, id primitive.ObjectID, url string, now time.Time) (*models.User, error) {
	return s.findAndSet(ctx, id, bson.M{"profilePicture": url, "updatedAt": now})
}

func (s *MongoUserStore) findAndSet(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.User, error) {
	var user models.User
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(withoutPassword)
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.NotFoundError("User not found")
		}
		return nil, wrapDBError(err)
	}
	return &user, nil
}

// AppendOrder pushes order onto the account's orders in one atomic update.
// It returns utils.ErrOrderIDTaken when the id is already used, either in
// this account (filter miss) or in another one (unique index).
func (s *MongoUserStore) AppendOrder(ctx context.Context, id primitive.ObjectID, order models.Order) error {
	filter := bson.M{"_id": id, "orders.orderId": bson.M{"$ne": order.OrderID}}
	update := bson.M{
		"$push": bson.M{"orders": order},
		"$set":  bson.M{"updatedAt": order.UpdatedAt},
	}

	result, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return utils.ErrOrderIDTaken
		}
		return wrapDBError(err)
	}
	if result.MatchedCount > 0 {
		return nil
	}

	count, err := s.coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return wrapDBError(err)
	}
	if count == 0 {
		return utils.NotFoundError("User not found")
	}
	return utils.ErrOrderIDTaken
}

type ordersOnly struct {
	Orders []models.Order `bson:"orders"`
}

// ListOrders returns the account's orders in insertion order.
func (s *MongoUserStore) ListOrders(ctx context.Context, id primitive.ObjectID) ([]models.Order, error) {
	var doc ordersOnly
	opts := options.FindOne().SetProjection(bson.M{"orders": 1})
	err := s.coll.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.NotFoundError("User not found")
		}
		return nil, wrapDBError(err)
	}
	if doc.Orders == nil {
		return []models.Order{}, nil
	}
	return doc.Orders, nil
}

// RemoveOrder pulls the order with orderID and returns it. The removed
// element is read from the pre-image of the same update, so no concurrent
// writer can slip in between the read and the delete.
func (s *MongoUserStore) RemoveOrder(ctx context.Context, id primitive.ObjectID, orderID string, now time.Time) (*models.Order, error) {
	filter := bson.M{"_id": id, "orders.orderId": orderID}
	update := bson.M{
		"$pull": bson.M{"orders": bson.M{"orderId": orderID}},
		"$set":  bson.M{"updatedAt": now},
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.Before).
		SetProjection(bson.M{"orders": bson.M{"$elemMatch": bson.M{"orderId": orderID}}})

	var doc ordersOnly
	err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.NotFoundError("Order not found")
		}
		return nil, wrapDBError(err)
	}
	if len(doc.Orders) == 0 {
		return nil, utils.NotFoundError("Order not found")
	}
	return &doc.Orders[0], nil
}
