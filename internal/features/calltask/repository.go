package calltask

import (
	"context"
	"errors"
	"fmt"

	"leadcrm/internal/common/models"
	"leadcrm/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CallTaskRepository interface {
	Create(ctx context.Context, task *CallTask) error
	// FindPendingByCaller returns created/acknowledged tasks, oldest first.
	FindPendingByCaller(ctx context.Context, callerID primitive.ObjectID) ([]CallTask, error)
	// Transition atomically moves a task owned by callerID out of one of the
	// fromStates, applying set. Returns nil when no such task matched.
	Transition(ctx context.Context, taskID, callerID primitive.ObjectID, fromStates []TaskState, set bson.M) (*CallTask, error)
	InsertCallLog(ctx context.Context, log *CallLog) error
	EnsureIndexes(ctx context.Context) error
}

type CallTaskRepositoryImpl struct {
	Collection *mongo.Collection
	Logs       *mongo.Collection
}

func NewCallTaskRepository(mongodb *database.MongodbDB) CallTaskRepository {
	return &CallTaskRepositoryImpl{
		Collection: mongodb.DB.Collection("call_tasks"),
		Logs:       mongodb.DB.Collection("call_logs"),
	}
}

func tenantOID(ctx context.Context) (primitive.ObjectID, error) {
	tenantID, ok := ctx.Value(models.TenantIDKey).(string)
	if !ok || tenantID == "" {
		return primitive.NilObjectID, fmt.Errorf("tenant context missing")
	}
	return primitive.ObjectIDFromHex(tenantID)
}

func (r *CallTaskRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "caller_id", Value: 1},
			{Key: "state", Value: 1},
			{Key: "created_at", Value: 1},
		},
		Options: options.Index().SetName("caller_state_created"),
	})
	return err
}

func (r *CallTaskRepositoryImpl) Create(ctx context.Context, task *CallTask) error {
	oid, err := tenantOID(ctx)
	if err != nil {
		return err
	}
	task.TenantID = oid

	_, err = r.Collection.InsertOne(ctx, task)
	return err
}

func (r *CallTaskRepositoryImpl) FindPendingByCaller(ctx context.Context, callerID primitive.ObjectID) ([]CallTask, error) {
	oid, err := tenantOID(ctx)
	if err != nil {
		return nil, err
	}

	filter := bson.M{
		"tenant_id": oid,
		"caller_id": callerID,
		"state":     bson.M{"$in": []TaskState{TaskStateCreated, TaskStateAcknowledged}},
	}
	opts := options.Find().SetSort(bson.M{"created_at": 1})

	cursor, err := r.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tasks []CallTask
	if err = cursor.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *CallTaskRepositoryImpl) Transition(ctx context.Context, taskID, callerID primitive.ObjectID, fromStates []TaskState, set bson.M) (*CallTask, error) {
	oid, err := tenantOID(ctx)
	if err != nil {
		return nil, err
	}

	filter := bson.M{
		"_id":       taskID,
		"tenant_id": oid,
		"caller_id": callerID,
		"state":     bson.M{"$in": fromStates},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var task CallTask
	err = r.Collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

func (r *CallTaskRepositoryImpl) InsertCallLog(ctx context.Context, log *CallLog) error {
	oid, err := tenantOID(ctx)
	if err != nil {
		return err
	}
	log.TenantID = oid

	_, err = r.Logs.InsertOne(ctx, log)
	return err
}
