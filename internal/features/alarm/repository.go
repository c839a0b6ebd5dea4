package alarm

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

type AlarmRepository interface {
	Create(ctx context.Context, alarm *Alarm) error
	// FindByUser lists the user's alarms, soonest first. statuses narrows by
	// status when non-empty.
	FindByUser(ctx context.Context, userID primitive.ObjectID, statuses []AlarmStatus, limit int64) ([]Alarm, error)
	// CountUpcoming counts active/snoozed alarms with alarmTime at or after
	// now. Past-due alarms stay out of the badge.
	CountUpcoming(ctx context.Context, userID primitive.ObjectID, now time.Time) (int64, error)
	// Update applies set to an alarm owned by userID. Returns nil when no
	// owned alarm matched.
	Update(ctx context.Context, alarmID, userID primitive.ObjectID, set bson.M) (*Alarm, error)
	// Delete removes an alarm owned by userID, reporting whether it existed.
	Delete(ctx context.Context, alarmID, userID primitive.ObjectID) (bool, error)
	// FindSoonestForLead returns the soonest active/snoozed alarm for the
	// lead+user pair, or nil.
	FindSoonestForLead(ctx context.Context, leadID, userID primitive.ObjectID) (*Alarm, error)
	// FindDueBetween scans all tenants for active/snoozed alarms whose
	// alarmTime falls in [from, to). Used only by the scheduler, which runs
	// outside any request and therefore outside any tenant scope.
	FindDueBetween(ctx context.Context, from, to time.Time) ([]Alarm, error)
	EnsureIndexes(ctx context.Context) error
}

type AlarmRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewAlarmRepository(mongodb *database.MongodbDB) AlarmRepository {
	return &AlarmRepositoryImpl{
		Collection: mongodb.DB.Collection("alarms"),
	}
}

func tenantOID(ctx context.Context) (primitive.ObjectID, error) {
	tenantID, ok := ctx.Value(models.TenantIDKey).(string)
	if !ok || tenantID == "" {
		return primitive.NilObjectID, fmt.Errorf("tenant context missing")
	}
	return primitive.ObjectIDFromHex(tenantID)
}

func (r *AlarmRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "status", Value: 1},
				{Key: "alarm_time", Value: 1},
			},
			Options: options.Index().SetName("user_status_time"),
		},
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "alarm_time", Value: 1},
			},
			Options: options.Index().SetName("due_scan"),
		},
	})
	return err
}

func (r *AlarmRepositoryImpl) Create(ctx context.Context, alarm *Alarm) error {
	oid, err := tenantOID(ctx)
	if err != nil {
		return err
	}
	alarm.TenantID = oid

	_, err = r.Collection.InsertOne(ctx, alarm)
	return err
}

func (r *AlarmRepositoryImpl) FindByUser(ctx context.Context, userID primitive.ObjectID, statuses []AlarmStatus, limit int64) ([]Alarm, error) {
	oid, err := tenantOID(ctx)
	if err != nil {
		return nil, err
	}

	filter := bson.M{"tenant_id": oid, "user_id": userID}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}
	opts := options.Find().SetSort(bson.M{"alarm_time": 1}).SetLimit(limit)

	cursor, err := r.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var alarms []Alarm
	if err = cursor.All(ctx, &alarms); err != nil {
		return nil, err
	}
	return alarms, nil
}

func (r *AlarmRepositoryImpl) CountUpcoming(ctx context.Context, userID primitive.ObjectID, now time.Time) (int64, error) {
	oid, err := tenantOID(ctx)
	if err != nil {
		return 0, err
	}

	return r.Collection.CountDocuments(ctx, upcomingFilter(oid, userID, now))
}

// upcomingFilter matches the user's pending (active or snoozed) alarms with a
// future alarmTime. Past-due alarms stay out of the badge count.
func upcomingFilter(tenantID, userID primitive.ObjectID, now time.Time) bson.M {
	return bson.M{
		"tenant_id":  tenantID,
		"user_id":    userID,
		"status":     bson.M{"$in": []AlarmStatus{AlarmStatusActive, AlarmStatusSnoozed}},
		"alarm_time": bson.M{"$gte": now},
	}
}

func (r *AlarmRepositoryImpl) Update(ctx context.Context, alarmID, userID primitive.ObjectID, set bson.M) (*Alarm, error) {
	oid, err := tenantOID(ctx)
	if err != nil {
		return nil, err
	}

	filter := bson.M{"_id": alarmID, "tenant_id": oid, "user_id": userID}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var alarm Alarm
	err = r.Collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&alarm)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &alarm, nil
}

func (r *AlarmRepositoryImpl) Delete(ctx context.Context, alarmID, userID primitive.ObjectID) (bool, error) {
	oid, err := tenantOID(ctx)
	if err != nil {
		return false, err
	}

	res, err := r.Collection.DeleteOne(ctx, bson.M{"_id": alarmID, "tenant_id": oid, "user_id": userID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *AlarmRepositoryImpl) FindSoonestForLead(ctx context.Context, leadID, userID primitive.ObjectID) (*Alarm, error) {
	oid, err := tenantOID(ctx)
	if err != nil {
		return nil, err
	}

	filter := bson.M{
		"tenant_id": oid,
		"lead_id":   leadID,
		"user_id":   userID,
		"status":    bson.M{"$in": []AlarmStatus{AlarmStatusActive, AlarmStatusSnoozed}},
	}
	opts := options.FindOne().SetSort(bson.M{"alarm_time": 1})

	var alarm Alarm
	err = r.Collection.FindOne(ctx, filter, opts).Decode(&alarm)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &alarm, nil
}

// dueWindowFilter matches alarms whose next fire time falls in [from, to).
// Active alarms fire at alarm_time; snoozed alarms fire at snoozed_until, since
// their alarm_time is already behind every later scan window.
func dueWindowFilter(from, to time.Time) bson.M {
	window := bson.M{"$gte": from, "$lt": to}
	return bson.M{"$or": []bson.M{
		{"status": AlarmStatusActive, "alarm_time": window},
		{"status": AlarmStatusSnoozed, "snoozed_until": window},
	}}
}

func (r *AlarmRepositoryImpl) FindDueBetween(ctx context.Context, from, to time.Time) ([]Alarm, error) {
	cursor, err := r.Collection.Find(ctx, dueWindowFilter(from, to))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var alarms []Alarm
	if err = cursor.All(ctx, &alarms); err != nil {
		return nil, err
	}
	return alarms, nil
}
