package accounts

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore is a Store backed by a mongo collection.
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	cfg := ParseConfig()
	return &MongoStore{col: db.Collection(cfg.CollectionName)}
}

func (s *MongoStore) Account(ctx context.Context, id primitive.ObjectID) (a Account, err error) {
	err = s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err == mongo.ErrNoDocuments {
		err = ErrAccountNotFound
	}
	return
}

func (s *MongoStore) InsertAccount(ctx context.Context, a *Account) (primitive.ObjectID, error) {
	res, err := s.col.InsertOne(ctx, a)
	if err != nil {
		return primitive.NilObjectID, err
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}

	return id, nil
}

func (s *MongoStore) ReplaceAccount(ctx context.Context, id primitive.ObjectID, p Payload, updatedAt time.Time) (a Account, err error) {
	// Find and update must be a single operation so concurrent updates to
	// the same identifier can not interleave.
	err = s.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"name": p.Name, "scope": p.Scope, "updatedAt": updatedAt}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&a)

	if err == mongo.ErrNoDocuments {
		err = ErrAccountNotFound
	}

	return
}

func (s *MongoStore) CountByScope(ctx context.Context) (map[Scope]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$scope"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cur, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx) // nolint

	counts := make(map[Scope]int64)
	for cur.Next(ctx) {
		var group struct {
			Scope Scope `bson:"_id"`
			Count int64 `bson:"count"`
		}
		if err := cur.Decode(&group); err != nil {
			return nil, err
		}
		counts[group.Scope] = group.Count
	}

	return counts, cur.Err()
}
