package repository

import (
	"context"
	"errors"
	"fmt"
	serviceserrors "servicelink/internal/services/errors"
	"servicelink/pkg/config"
	mongotx "servicelink/pkg/db/mongo"
	"servicelink/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Services"
)

type ServiceRepository interface {
	Create(ctx context.Context, service *model.Service) error
	FindByID(ctx context.Context, id string) (*model.Service, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.Service, error)
	FindActive(ctx context.Context) ([]*model.Service, error)
	FindByProvider(ctx context.Context, providerID string) ([]*model.Service, error)
	UpdateIfVersion(ctx context.Context, service *model.Service, expectedVersion int64) error
	DeleteIfUnreferenced(ctx context.Context, id string) error
	IncrementBookingCount(ctx context.Context, id string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoServiceRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoServiceRepository(cfg *config.Config) ServiceRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoServiceRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoServiceRepository) Create(ctx context.Context, service *model.Service) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, service)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		service.ID = oid.Hex()
	}
	return nil
}

func (r *mongoServiceRepository) FindByID(ctx context.Context, id string) (*model.Service, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", serviceserrors.ErrInvalidID, id)
	}

	var service model.Service
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&service)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, serviceserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find service: %w", err)
	}

	return &service, nil
}

// FindByIDs skips malformed ids; the result may be shorter than ids.
func (r *mongoServiceRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.Service, error) {
	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			objectIDs = append(objectIDs, oid)
		}
	}
	if len(objectIDs) == 0 {
		return []*model.Service{}, nil
	}

	return r.find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}}, nil)
}

func (r *mongoServiceRepository) FindActive(ctx context.Context) ([]*model.Service, error) {
	return r.find(ctx, bson.M{"is_active": true}, newestFirst())
}

func (r *mongoServiceRepository) FindByProvider(ctx context.Context, providerID string) ([]*model.Service, error) {
	return r.find(ctx, bson.M{"provider_id": providerID}, newestFirst())
}

func (r *mongoServiceRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Service, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find services: %w", err)
	}
	defer cursor.Close(ctx)

	services := []*model.Service{}
	if err = cursor.All(ctx, &services); err != nil {
		return nil, fmt.Errorf("failed to decode services: %w", err)
	}

	return services, nil
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
}

// UpdateIfVersion writes the editable fields only while the stored version
// still equals expectedVersion, and bumps the version in the same update.
func (r *mongoServiceRepository) UpdateIfVersion(ctx context.Context, service *model.Service, expectedVersion int64) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(service.ID)
	if err != nil {
		return fmt.Errorf("%w: %s", serviceserrors.ErrInvalidID, service.ID)
	}

	filter := bson.M{"_id": objectID, "version": expectedVersion}
	update := bson.M{
		"$set": bson.M{
			"title":       service.Title,
			"description": service.Description,
			"category":    service.Category,
			"price":       service.Price,
			"is_active":   service.IsActive,
			"updated_at":  service.UpdatedAt,
		},
		"$inc": bson.M{"version": 1},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update service: %w", err)
	}

	if result.MatchedCount == 0 {
		return r.missOrMismatch(ctx, objectID, serviceserrors.ErrVersionMismatch)
	}

	service.Version = expectedVersion + 1
	return nil
}

// DeleteIfUnreferenced removes the service only while no booking points at
// it. The check and the delete are one server-side operation.
func (r *mongoServiceRepository) DeleteIfUnreferenced(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", serviceserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID, "booking_count": bson.M{"$lte": 0}}
	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}

	if result.DeletedCount == 0 {
		return r.missOrMismatch(ctx, objectID, serviceserrors.ErrHasBookings)
	}

	return nil
}

// IncrementBookingCount reserves a booking reference on an active service.
// Run it in the same transaction as the booking insert.
func (r *mongoServiceRepository) IncrementBookingCount(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", serviceserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID, "is_active": true}
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"booking_count": 1}})
	if err != nil {
		return fmt.Errorf("failed to increment booking count: %w", err)
	}

	if result.MatchedCount == 0 {
		return serviceserrors.ErrNotBookable
	}
	return nil
}

func (r *mongoServiceRepository) missOrMismatch(ctx context.Context, objectID primitive.ObjectID, mismatch error) error {
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": objectID}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("failed to check service existence: %w", err)
	}
	if count == 0 {
		return serviceserrors.ErrNotFound
	}
	return mismatch
}

func (r *mongoServiceRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
