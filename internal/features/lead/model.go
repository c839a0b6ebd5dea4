package lead

import (
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lead is the contact record worked by callers. Field layout is configured
// per tenant, so business fields live in a schemaless map; only ownership and
// shared access are structural, being the one piece of cross-component shared
// state the dispatch flows mutate.
type Lead struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	TenantID   primitive.ObjectID   `bson:"tenant_id,omitempty" json:"tenant_id"`
	Fields     map[string]any       `bson:"fields" json:"fields"`
	AssignedTo primitive.ObjectID   `bson:"assigned_to,omitempty" json:"assigned_to"`
	SharedWith []primitive.ObjectID `bson:"shared_with,omitempty" json:"shared_with"`
	CreatedAt  time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time            `bson:"updated_at" json:"updated_at"`
}

const fallbackDisplayName = "Unnamed lead"

// DisplayName picks the first field whose name contains "name"
// (case-insensitive) for list projections. Keys are walked in sorted order so
// the pick is stable across reads.
func (l *Lead) DisplayName() string {
	keys := make([]string, 0, len(l.Fields))
	for key := range l.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if strings.Contains(strings.ToLower(key), "name") {
			if s, ok := l.Fields[key].(string); ok && s != "" {
				return s
			}
		}
	}
	return fallbackDisplayName
}

// AccessibleTo reports whether the user owns the lead or is on its
// shared-access list.
func (l *Lead) AccessibleTo(userID primitive.ObjectID) bool {
	if l.AssignedTo == userID {
		return true
	}
	for _, id := range l.SharedWith {
		if id == userID {
			return true
		}
	}
	return false
}
