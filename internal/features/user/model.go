package user

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a call-center operator account. Role is referenced by id only; the
// legacy name-or-id dual shape is rewritten once by cmd/migrate_roles.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID  primitive.ObjectID `bson:"tenant_id,omitempty" json:"tenant_id"`
	Username  string             `bson:"username" json:"username"`
	Password  string             `bson:"password" json:"-"`
	Email     string             `bson:"email" json:"email"`
	Name      string             `bson:"name" json:"name"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	RoleID    primitive.ObjectID `bson:"role_id,omitempty" json:"role_id"`
	Status    string             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	// LegacyRole holds the pre-migration string role name, if any. Read only
	// by cmd/migrate_roles; new code never writes it.
	LegacyRole string `bson:"role,omitempty" json:"-"`
}

// Summary is the minimal actor shape embedded in enriched projections.
type Summary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u *User) Summary() Summary {
	return Summary{ID: u.ID.Hex(), Name: u.Name, Email: u.Email}
}
