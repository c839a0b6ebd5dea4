package role

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is a named, persisted set of permission keys. System roles are
// protected: they cannot be renamed or deleted.
type Role struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TenantID    primitive.ObjectID `json:"tenant_id" bson:"tenant_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	NameLC      string             `json:"-" bson:"name_lc"` // lower-cased, unique per tenant
	Description string             `json:"description" bson:"description"`
	Permissions []string           `json:"permissions" bson:"permissions"`
	IsSystem    bool               `json:"is_system" bson:"is_system"`
	IsActive    bool               `json:"is_active" bson:"is_active"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}
