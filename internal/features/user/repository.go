package user

import (
	"context"
	"fmt"

	"leadcrm/internal/common/models"
	"leadcrm/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByIDs(ctx context.Context, ids []string) ([]User, error)
	FindAll(ctx context.Context) ([]User, error)
	FindByUsernameGlobal(ctx context.Context, username string) (*User, error)
	CountByRole(ctx context.Context, roleID primitive.ObjectID) (int64, error)
	ReassignRole(ctx context.Context, fromRoleID, toRoleID primitive.ObjectID) (int64, error)
}

type UserRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewUserRepository(mongodb *database.MongodbDB) UserRepository {
	return &UserRepositoryImpl{
		Collection: mongodb.DB.Collection("users"),
	}
}

func tenantOID(ctx context.Context) (primitive.ObjectID, error) {
	tenantID, ok := ctx.Value(models.TenantIDKey).(string)
	if !ok || tenantID == "" {
		return primitive.NilObjectID, fmt.Errorf("tenant context missing")
	}
	return primitive.ObjectIDFromHex(tenantID)
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *User) error {
	oid, err := tenantOID(ctx)
	if err != nil {
		return err
	}
	user.TenantID = oid

	_, err = r.Collection.InsertOne(ctx, user)
	return err
}

func (r *UserRepositoryImpl) FindByID(ctx context.Context, id string) (*User, error) {
	oid, err := tenantOID(ctx)
	if err != nil {
		return nil, err
	}

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var user User
	err = r.Collection.FindOne(ctx, bson.M{"_id": objectID, "tenant_id": oid}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByIDs(ctx context.Context, ids []string) ([]User, error) {
	oid, err := tenantOID(ctx)
	if err != nil {
		return nil, err
	}

	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if objectID, err := primitive.ObjectIDFromHex(id); err == nil {
			objectIDs = append(objectIDs, objectID)
		}
	}

	cursor, err := r.Collection.Find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}, "tenant_id": oid})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepositoryImpl) FindAll(ctx context.Context) ([]User, error) {
	oid, err := tenantOID(ctx)
	if err != nil {
		return nil, err
	}

	cursor, err := r.Collection.Find(ctx, bson.M{"tenant_id": oid})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepositoryImpl) FindByUsernameGlobal(ctx context.Context, username string) (*User, error) {
	var user User
	// No tenant filter, used for login
	err := r.Collection.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) CountByRole(ctx context.Context, roleID primitive.ObjectID) (int64, error) {
	oid, err := tenantOID(ctx)
	if err != nil {
		return 0, err
	}
	return r.Collection.CountDocuments(ctx, bson.M{"role_id": roleID, "tenant_id": oid})
}

func (r *UserRepositoryImpl) ReassignRole(ctx context.Context, fromRoleID, toRoleID primitive.ObjectID) (int64, error) {
	oid, err := tenantOID(ctx)
	if err != nil {
		return 0, err
	}

	res, err := r.Collection.UpdateMany(ctx,
		bson.M{"role_id": fromRoleID, "tenant_id": oid},
		bson.M{"$set": bson.M{"role_id": toRoleID}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
