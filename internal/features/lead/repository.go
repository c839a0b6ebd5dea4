package lead

import (
	"context"
	"fmt"
	"time"

	"leadcrm/internal/common/models"
	"leadcrm/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type LeadRepository interface {
	Create(ctx context.Context, lead *Lead) error
	FindByID(ctx context.Context, id string) (*Lead, error)
	// FindAccessibleTo returns leads the user owns or shares.
	FindAccessibleTo(ctx context.Context, userID primitive.ObjectID) ([]Lead, error)
	// AddSharedAccess idempotently grants non-owning access.
	AddSharedAccess(ctx context.Context, leadID, userID primitive.ObjectID) error
	// TransferOwnership repoints the owner and strips the previous owner from
	// the shared-access list in one document write.
	TransferOwnership(ctx context.Context, leadID, previousOwnerID, newOwnerID primitive.ObjectID) error
}

type LeadRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewLeadRepository(mongodb *database.MongodbDB) LeadRepository {
	return &LeadRepositoryImpl{
		Collection: mongodb.DB.Collection("leads"),
	}
}

func tenantOID(ctx context.Context) (primitive.ObjectID, error) {
	tenantID, ok := ctx.Value(models.TenantIDKey).(string)
	if !ok || tenantID == "" {
		return primitive.NilObjectID, fmt.Errorf("tenant context missing")
	}
	return primitive.ObjectIDFromHex(tenantID)
}

func (r *LeadRepositoryImpl) Create(ctx context.Context, lead *Lead) error {
	oid, err := tenantOID(ctx)
	if err != nil {
		return err
	}
	lead.TenantID = oid

	_, err = r.Collection.InsertOne(ctx, lead)
	return err
}

func (r *LeadRepositoryImpl) FindByID(ctx context.Context, id string) (*Lead, error) {
	oid, err := tenantOID(ctx)
	if err != nil {
		return nil, err
	}

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var lead Lead
	err = r.Collection.FindOne(ctx, bson.M{"_id": objectID, "tenant_id": oid}).Decode(&lead)
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *LeadRepositoryImpl) FindAccessibleTo(ctx context.Context, userID primitive.ObjectID) ([]Lead, error) {
	oid, err := tenantOID(ctx)
	if err != nil {
		return nil, err
	}

	filter := bson.M{
		"tenant_id": oid,
		"$or": []bson.M{
			{"assigned_to": userID},
			{"shared_with": userID},
		},
	}

	cursor, err := r.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var leads []Lead
	if err = cursor.All(ctx, &leads); err != nil {
		return nil, err
	}
	return leads, nil
}

func (r *LeadRepositoryImpl) AddSharedAccess(ctx context.Context, leadID, userID primitive.ObjectID) error {
	oid, err := tenantOID(ctx)
	if err != nil {
		return err
	}

	_, err = r.Collection.UpdateOne(ctx,
		bson.M{"_id": leadID, "tenant_id": oid},
		bson.M{
			"$addToSet": bson.M{"shared_with": userID},
			"$set":      bson.M{"updated_at": time.Now()},
		},
	)
	return err
}

func (r *LeadRepositoryImpl) TransferOwnership(ctx context.Context, leadID, previousOwnerID, newOwnerID primitive.ObjectID) error {
	oid, err := tenantOID(ctx)
	if err != nil {
		return err
	}

	_, err = r.Collection.UpdateOne(ctx,
		bson.M{"_id": leadID, "tenant_id": oid},
		bson.M{
			"$set":  bson.M{"assigned_to": newOwnerID, "updated_at": time.Now()},
			"$pull": bson.M{"shared_with": previousOwnerID},
		},
	)
	return err
}
