package models

import (
	"slices"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ContextKey string

const (
	TenantIDKey  ContextKey = "tenant_id"
	PrincipalKey ContextKey = "principal"
)

// Principal is the authenticated actor context for a request. It is derived
// at authentication time (role resolved to a live permission set) and never
// persisted.
type Principal struct {
	UserID      primitive.ObjectID
	TenantID    primitive.ObjectID
	RoleID      string
	RoleName    string
	Permissions []string
	// IsSystemAdmin is true iff the resolved role is a protected system role
	// and its name is in the configured admin allow-list.
	IsSystemAdmin bool
}

func (p *Principal) HasPermission(key string) bool {
	return slices.Contains(p.Permissions, key)
}

// HasRoleName reports a case-insensitive match against the coarse role-name
// allow-lists used by legacy checks.
func (p *Principal) HasRoleName(names []string) bool {
	for _, n := range names {
		if strings.EqualFold(p.RoleName, n) {
			return true
		}
	}
	return false
}

type AuditAction string

const (
	AuditActionCreate   AuditAction = "CREATE"
	AuditActionUpdate   AuditAction = "UPDATE"
	AuditActionDelete   AuditAction = "DELETE"
	AuditActionLogin    AuditAction = "LOGIN"
	AuditActionDispatch AuditAction = "DISPATCH"
	AuditActionRespond  AuditAction = "RESPOND"
)

type Change struct {
	Old interface{} `bson:"old" json:"old"`
	New interface{} `bson:"new" json:"new"`
}

type AuditLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID  primitive.ObjectID `bson:"tenant_id,omitempty" json:"tenant_id,omitempty"`
	Action    AuditAction        `bson:"action" json:"action"`
	Module    string             `bson:"module" json:"module"`
	RecordID  string             `bson:"record_id" json:"record_id"`
	ActorID   string             `bson:"actor_id" json:"actor_id"`
	ActorName string             `bson:"-" json:"actor_name,omitempty"`
	Changes   map[string]Change  `bson:"changes,omitempty" json:"changes,omitempty"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

// ActorName pairs a user id with its display name for audit enrichment.
type ActorName struct {
	ID   string
	Name string
}

// Log is the persisted shape of application log entries written by the async
// logger worker.
type Log struct {
	Message      string    `bson:"message"`
	Caller       string    `bson:"caller,omitempty"`
	AppId        string    `bson:"app_id"`
	LogLevelId   int       `bson:"log_level_id"`
	CreatedOnUtc time.Time `bson:"created_on_utc"`
}
