package alarm

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AlarmStatus string

const (
	AlarmStatusActive    AlarmStatus = "active"
	AlarmStatusSnoozed   AlarmStatus = "snoozed"
	AlarmStatusDismissed AlarmStatus = "dismissed"
	AlarmStatusCompleted AlarmStatus = "completed"
)

// StatusFilterActive expands to active plus snoozed in list queries; any other
// filter value matches exactly.
const StatusFilterActive = "active"

// Valid reports whether s is one of the four known statuses.
func (s AlarmStatus) Valid() bool {
	switch s {
	case AlarmStatusActive, AlarmStatusSnoozed, AlarmStatusDismissed, AlarmStatusCompleted:
		return true
	}
	return false
}

// Alarm is a per-user, per-lead reminder. Status transitions are caller-driven
// with no ordering rule: the owning user may set any status from any status.
type Alarm struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID     primitive.ObjectID `bson:"tenant_id,omitempty" json:"tenant_id"`
	LeadID       primitive.ObjectID `bson:"lead_id" json:"lead_id"`
	UserID       primitive.ObjectID `bson:"user_id" json:"user_id"`
	AlarmTime    time.Time          `bson:"alarm_time" json:"alarm_time"`
	Status       AlarmStatus        `bson:"status" json:"status"`
	SnoozedUntil *time.Time         `bson:"snoozed_until,omitempty" json:"snoozed_until,omitempty"`
	Notes        string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}
