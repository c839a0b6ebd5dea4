package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{Validation("bad input"), http.StatusBadRequest},
		{NotFound("lead %s not found", "abc"), http.StatusNotFound},
		{Forbidden("missing required permission", "leads.all.view"), http.StatusForbidden},
		{Conflict("duplicate"), http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", NotFound("gone")), http.StatusNotFound},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Status(tt.err), "error: %v", tt.err)
	}
}

func TestErrorMessageIncludesDetails(t *testing.T) {
	err := Validation("unknown permission keys", "a.b.c", "d.e.f")
	assert.Equal(t, "unknown permission keys: a.b.c, d.e.f", err.Error())

	bare := Forbidden("missing principal")
	assert.Equal(t, "missing principal", bare.Error())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindConflict, KindOf(Conflict("dup")))
	assert.Equal(t, Kind(""), KindOf(errors.New("untyped")))
	assert.Equal(t, KindForbidden, KindOf(fmt.Errorf("ctx: %w", Forbidden("no"))))
}
