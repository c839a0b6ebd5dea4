package realtime

import (
	"testing"

	common_models "leadcrm/internal/common/models"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPrincipalFromLocals(t *testing.T) {
	p := &common_models.Principal{UserID: primitive.NewObjectID()}

	// Mirrors the conn's post-upgrade locals: string keys only.
	locals := map[string]interface{}{principalLocalKey: p}
	got := principalFromLocals(func(key string) interface{} { return locals[key] })
	assert.Same(t, p, got)
}

func TestPrincipalFromLocalsAbsentOrWrongType(t *testing.T) {
	assert.Nil(t, principalFromLocals(func(string) interface{} { return nil }))
	assert.Nil(t, principalFromLocals(func(string) interface{} { return "not a principal" }))
}
