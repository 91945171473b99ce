package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoLogger implements UserActionLogger and UserRepository on MongoDB.
// Activity records are kept outside the spreadsheet so heavy command use
// never burns Sheets quota.
type MongoLogger struct {
	db *mongo.Database
}

// NewMongoLogger creates a new MongoLogger using a connected database.
func NewMongoLogger(db *mongo.Database) *MongoLogger {
	return &MongoLogger{db: db}
}

// LogUserAction writes a user action log entry to the database.
func (m *MongoLogger) LogUserAction(userID int64, action string, details interface{}) error {
	collection := m.db.Collection("user_actions")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := collection.InsertOne(ctx, map[string]interface{}{
		"user_id": userID,
		"action":  action,
		"details": details,
		"time":    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to insert user action log for user %d: %w", userID, err)
	}
	return nil
}

// UpdateUser upserts the per-user activity record, bumping last_seen and the
// action counter.
func (m *MongoLogger) UpdateUser(ctx context.Context, userID int64, username, firstName, lastName string, isAdmin bool, action string) error {
	collection := m.db.Collection("users")

	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"username":    username,
			"first_name":  firstName,
			"last_name":   lastName,
			"is_admin":    isAdmin,
			"last_seen":   now,
			"last_action": action,
		},
		"$inc": bson.M{
			"actions_count": 1,
		},
		"$setOnInsert": bson.M{
			"first_seen": now,
			"user_id":    userID,
		},
	}

	_, err := collection.UpdateOne(
		ctx,
		bson.M{"user_id": userID},
		update,
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to update user %d: %w", userID, err)
	}
	return nil
}
