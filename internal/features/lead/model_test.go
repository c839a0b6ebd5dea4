package lead

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]any
		want   string
	}{
		{
			name:   "full name field",
			fields: map[string]any{"full_name": "Ravi Patel", "phone": "+1999"},
			want:   "Ravi Patel",
		},
		{
			name:   "any field containing name",
			fields: map[string]any{"Company Name": "Acme Corp"},
			want:   "Acme Corp",
		},
		{
			name: "stable pick across equally matching keys",
			fields: map[string]any{
				"first_name": "Ravi",
				"last_name":  "Patel",
			},
			want: "Ravi", // sorted key order: first_name before last_name
		},
		{
			name:   "non-string name field skipped",
			fields: map[string]any{"name_score": 42, "nickname": "RP"},
			want:   "RP",
		},
		{
			name:   "no name field",
			fields: map[string]any{"phone": "+1999", "city": "Pune"},
			want:   "Unnamed lead",
		},
		{
			name:   "empty fields",
			fields: nil,
			want:   "Unnamed lead",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &Lead{Fields: tt.fields}
			assert.Equal(t, tt.want, l.DisplayName())
		})
	}
}

func TestAccessibleTo(t *testing.T) {
	owner := primitive.NewObjectID()
	helper := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	l := &Lead{
		AssignedTo: owner,
		SharedWith: []primitive.ObjectID{helper},
	}

	assert.True(t, l.AccessibleTo(owner))
	assert.True(t, l.AccessibleTo(helper))
	assert.False(t, l.AccessibleTo(stranger))
}
