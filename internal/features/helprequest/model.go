package helprequest

import (
	"time"

	"leadcrm/internal/features/user"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RequestType string

const (
	RequestTypeShare    RequestType = "share"
	RequestTypeTransfer RequestType = "transfer"
)

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusAccepted RequestStatus = "accepted"
	RequestStatusRejected RequestStatus = "rejected"
)

// HelpRequest asks another caller to take over (transfer) or join (share) a
// lead. pending to accepted or pending to rejected, exactly once; accepting is
// the only path that mutates lead ownership.
type HelpRequest struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID     primitive.ObjectID `bson:"tenant_id,omitempty" json:"tenant_id"`
	LeadID       primitive.ObjectID `bson:"lead_id" json:"lead_id"`
	FromCallerID primitive.ObjectID `bson:"from_caller_id" json:"from_caller_id"`
	ToCallerID   primitive.ObjectID `bson:"to_caller_id" json:"to_caller_id"`
	Type         RequestType        `bson:"type" json:"type"`
	Reason       string             `bson:"reason,omitempty" json:"reason,omitempty"`
	Status       RequestStatus      `bson:"status" json:"status"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	RespondedAt  *time.Time         `bson:"responded_at,omitempty" json:"responded_at,omitempty"`
}

// EnrichedRequest is the inbox/sent projection: the raw request plus a lead
// display name and the counterpart caller (the sender for incoming requests,
// the target for sent ones).
type EnrichedRequest struct {
	HelpRequest
	LeadName    string       `json:"lead_name"`
	Counterpart user.Summary `json:"counterpart"`
}
