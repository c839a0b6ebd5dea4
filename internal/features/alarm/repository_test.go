package alarm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDueWindowFilterMatchesSnoozesBySnoozedUntil(t *testing.T) {
	from := time.Now()
	to := from.Add(time.Minute)

	filter := dueWindowFilter(from, to)
	branches, ok := filter["$or"].([]bson.M)
	require.True(t, ok)
	require.Len(t, branches, 2)

	window := bson.M{"$gte": from, "$lt": to}

	// Active alarms fire at alarm_time.
	assert.Equal(t, bson.M{"status": AlarmStatusActive, "alarm_time": window}, branches[0])

	// Snoozed alarms fire at snoozed_until; their alarm_time is already in the
	// past and must not be consulted, or the snooze would never re-fire.
	assert.Equal(t, bson.M{"status": AlarmStatusSnoozed, "snoozed_until": window}, branches[1])
}

func TestUpcomingFilterCountsFutureOnly(t *testing.T) {
	tenantID := primitive.NewObjectID()
	userID := primitive.NewObjectID()
	now := time.Now()

	filter := upcomingFilter(tenantID, userID, now)

	assert.Equal(t, tenantID, filter["tenant_id"])
	assert.Equal(t, userID, filter["user_id"])
	assert.Equal(t, bson.M{"$in": []AlarmStatus{AlarmStatusActive, AlarmStatusSnoozed}}, filter["status"])
	assert.Equal(t, bson.M{"$gte": now}, filter["alarm_time"])
}
