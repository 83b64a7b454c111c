//go:build integration

package testutil

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	bookingsrepo "servicelink/internal/bookings/repository"
	servicesrepo "servicelink/internal/services/repository"
	usersrepo "servicelink/internal/users/repository"
	"servicelink/pkg/model"
)

const (
	DefaultMongoURI     = "mongodb://localhost:27017"
	DefaultDatabaseName = "servicelink_test"
	ConnectionTimeout   = 10 * time.Second
)

// MongoHelper provides direct database access for assertions and cleanup.
type MongoHelper struct {
	Client   *mongo.Client
	Database *mongo.Database
	DBName   string
}

func NewMongoHelper(t *testing.T, mongoURI, dbName string) *MongoHelper {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), ConnectionTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		t.Fatalf("failed to connect to MongoDB: %v", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		t.Fatalf("failed to ping MongoDB: %v", err)
	}

	return &MongoHelper{
		Client:   client,
		Database: client.Database(dbName),
		DBName:   dbName,
	}
}

func (m *MongoHelper) Close(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.Client.Disconnect(ctx); err != nil {
		t.Logf("warning: failed to disconnect from MongoDB: %v", err)
	}
}

// CleanDocuments empties the application collections but keeps them, so
// validators and indexes from the migration job survive between tests.
func (m *MongoHelper) CleanDocuments(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, name := range []string{servicesrepo.CollectionName, bookingsrepo.CollectionName, usersrepo.CollectionName} {
		if _, err := m.Database.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			t.Fatalf("failed to clean collection %s: %v", name, err)
		}
	}
}

// FindBooking reads a booking straight from storage.
func (m *MongoHelper) FindBooking(t *testing.T, id string) *model.Booking {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		t.Fatalf("invalid booking id %q: %v", id, err)
	}

	var b model.Booking
	if err := m.Database.Collection(bookingsrepo.CollectionName).FindOne(ctx, bson.M{"_id": oid}).Decode(&b); err != nil {
		t.Fatalf("failed to load booking %s: %v", id, err)
	}
	return &b
}

// InsertUser puts a directory entry in place for email joins.
func (m *MongoHelper) InsertUser(t *testing.T, user *model.User) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := m.Database.Collection(usersrepo.CollectionName).InsertOne(ctx, user); err != nil {
		t.Fatalf("failed to insert user: %v", err)
	}
}
