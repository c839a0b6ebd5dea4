package helprequest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadcrm/internal/common/models"
	"leadcrm/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type HelpRequestRepository interface {
	Create(ctx context.Context, req *HelpRequest) error
	// HasPendingPair reports whether a pending request already targets the same
	// (lead, caller) pair. Advisory only; the partial unique index is what
	// actually closes the check-then-create race.
	HasPendingPair(ctx context.Context, leadID, toCallerID primitive.ObjectID) (bool, error)
	FindIncoming(ctx context.Context, toCallerID primitive.ObjectID, status RequestStatus) ([]HelpRequest, error)
	FindSent(ctx context.Context, fromCallerID primitive.ObjectID, status RequestStatus) ([]HelpRequest, error)
	// Respond atomically resolves a pending request targeting toCallerID.
	// Returns nil when no pending request matched (already resolved, wrong
	// target, or absent).
	Respond(ctx context.Context, requestID, toCallerID primitive.ObjectID, status RequestStatus, respondedAt time.Time) (*HelpRequest, error)
	EnsureIndexes(ctx context.Context) error
}

type HelpRequestRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewHelpRequestRepository(mongodb *database.MongodbDB) HelpRequestRepository {
	return &HelpRequestRepositoryImpl{
		Collection: mongodb.DB.Collection("help_requests"),
	}
}

func tenantOID(ctx context.Context) (primitive.ObjectID, error) {
	tenantID, ok := ctx.Value(models.TenantIDKey).(string)
	if !ok || tenantID == "" {
		return primitive.NilObjectID, fmt.Errorf("tenant context missing")
	}
	return primitive.ObjectIDFromHex(tenantID)
}

func (r *HelpRequestRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	// Unique over pending documents only, so resolved requests never block a
	// new one for the same pair.
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "lead_id", Value: 1},
				{Key: "to_caller_id", Value: 1},
			},
			Options: options.Index().
				SetName("pending_pair").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": RequestStatusPending}),
		},
		{
			Keys: bson.D{
				{Key: "to_caller_id", Value: 1},
				{Key: "status", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("inbox_status_created"),
		},
	})
	return err
}

func (r *HelpRequestRepositoryImpl) Create(ctx context.Context, req *HelpRequest) error {
	oid, err := tenantOID(ctx)
	if err != nil {
		return err
	}
	req.TenantID = oid

	_, err = r.Collection.InsertOne(ctx, req)
	return err
}

func (r *HelpRequestRepositoryImpl) HasPendingPair(ctx context.Context, leadID, toCallerID primitive.ObjectID) (bool, error) {
	oid, err := tenantOID(ctx)
	if err != nil {
		return false, err
	}

	count, err := r.Collection.CountDocuments(ctx, bson.M{
		"tenant_id":    oid,
		"lead_id":      leadID,
		"to_caller_id": toCallerID,
		"status":       RequestStatusPending,
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *HelpRequestRepositoryImpl) FindIncoming(ctx context.Context, toCallerID primitive.ObjectID, status RequestStatus) ([]HelpRequest, error) {
	return r.find(ctx, bson.M{"to_caller_id": toCallerID}, status)
}

func (r *HelpRequestRepositoryImpl) FindSent(ctx context.Context, fromCallerID primitive.ObjectID, status RequestStatus) ([]HelpRequest, error) {
	return r.find(ctx, bson.M{"from_caller_id": fromCallerID}, status)
}

func (r *HelpRequestRepositoryImpl) find(ctx context.Context, filter bson.M, status RequestStatus) ([]HelpRequest, error) {
	oid, err := tenantOID(ctx)
	if err != nil {
		return nil, err
	}
	filter["tenant_id"] = oid
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().SetSort(bson.M{"created_at": -1})

	cursor, err := r.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var requests []HelpRequest
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *HelpRequestRepositoryImpl) Respond(ctx context.Context, requestID, toCallerID primitive.ObjectID, status RequestStatus, respondedAt time.Time) (*HelpRequest, error) {
	oid, err := tenantOID(ctx)
	if err != nil {
		return nil, err
	}

	filter := bson.M{
		"_id":          requestID,
		"tenant_id":    oid,
		"to_caller_id": toCallerID,
		"status":       RequestStatusPending,
	}
	update := bson.M{"$set": bson.M{"status": status, "responded_at": respondedAt}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var req HelpRequest
	err = r.Collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&req)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}
