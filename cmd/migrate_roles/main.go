package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"leadcrm/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Rewrites pre-migration user documents that reference their role by name (the
// legacy "role" string field) to reference it by id. Safe to re-run: already
// migrated users carry no legacy field and are skipped.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal(err)
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.DBName)
	users := db.Collection("users")
	roles := db.Collection("roles")

	fmt.Println("Starting legacy role migration...")

	cursor, err := users.Find(ctx, bson.M{
		"role": bson.M{"$exists": true, "$ne": ""},
		"$or": []bson.M{
			{"role_id": bson.M{"$exists": false}},
			{"role_id": primitive.NilObjectID},
		},
	})
	if err != nil {
		log.Fatal(err)
	}
	defer cursor.Close(ctx)

	type legacyUser struct {
		ID       primitive.ObjectID `bson:"_id"`
		TenantID primitive.ObjectID `bson:"tenant_id"`
		Username string             `bson:"username"`
		Role     string             `bson:"role"`
	}

	migrated := 0
	skipped := 0
	for cursor.Next(ctx) {
		var u legacyUser
		if err := cursor.Decode(&u); err != nil {
			log.Printf("Failed to decode user: %v", err)
			continue
		}

		// Legacy field may hold either a role name or a stringified id.
		roleFilter := bson.M{
			"tenant_id": u.TenantID,
			"name_lc":   strings.ToLower(u.Role),
		}
		if oid, err := primitive.ObjectIDFromHex(u.Role); err == nil {
			roleFilter = bson.M{"tenant_id": u.TenantID, "_id": oid}
		}

		var r struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := roles.FindOne(ctx, roleFilter).Decode(&r); err != nil {
			log.Printf("No matching role for user %s (role=%q), skipping", u.Username, u.Role)
			skipped++
			continue
		}

		_, err = users.UpdateOne(ctx,
			bson.M{"_id": u.ID},
			bson.M{
				"$set":   bson.M{"role_id": r.ID, "updated_at": time.Now()},
				"$unset": bson.M{"role": ""},
			},
		)
		if err != nil {
			log.Printf("Failed to migrate user %s: %v", u.Username, err)
			skipped++
			continue
		}
		migrated++
	}
	if err := cursor.Err(); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Migration complete: %d migrated, %d skipped\n", migrated, skipped)
}
