package calltask

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskState is an open string enum: created, then acknowledged, then completed,
// linear with no back-transitions. New states (e.g. a future cancellation)
// are additive; nothing switches exhaustively over the values.
type TaskState string

const (
	TaskStateCreated      TaskState = "created"
	TaskStateAcknowledged TaskState = "acknowledged"
	TaskStateCompleted    TaskState = "completed"
)

// CallTask is a dial request for a lead+caller pair. Created by a dispatcher,
// mutated only by the assigned caller (ack, complete). Completion is terminal.
type CallTask struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID    primitive.ObjectID `bson:"tenant_id,omitempty" json:"tenant_id"`
	LeadID      primitive.ObjectID `bson:"lead_id" json:"lead_id"`
	CallerID    primitive.ObjectID `bson:"caller_id" json:"caller_id"`
	PhoneNumber string             `bson:"phone_number" json:"phone_number"`
	State       TaskState          `bson:"state" json:"state"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	AckedAt     *time.Time         `bson:"acked_at,omitempty" json:"acked_at,omitempty"`
	CompletedAt *time.Time         `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	Outcome     string             `bson:"outcome,omitempty" json:"outcome,omitempty"`
}

// CallLog is the side record written when a task completes. It lives outside
// the task state machine; the mobile app uploads the recording against it
// separately.
type CallLog struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID    primitive.ObjectID `bson:"tenant_id,omitempty" json:"tenant_id"`
	TaskID      primitive.ObjectID `bson:"task_id" json:"task_id"`
	LeadID      primitive.ObjectID `bson:"lead_id" json:"lead_id"`
	CallerID    primitive.ObjectID `bson:"caller_id" json:"caller_id"`
	StartedAt   time.Time          `bson:"started_at" json:"started_at"`
	EndedAt     time.Time          `bson:"ended_at" json:"ended_at"`
	DurationSec int                `bson:"duration_sec" json:"duration_sec"`
	Outcome     string             `bson:"outcome" json:"outcome"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
