package auth

import (
	"testing"

	common_models "leadcrm/internal/common/models"
	"leadcrm/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGateCheck(t *testing.T) {
	gate := NewGate(zap.NewNop())

	tests := []struct {
		name      string
		principal *common_models.Principal
		roleNames []string
		keys      []string
		wantKind  apperr.Kind
	}{
		{
			name:      "system admin bypasses everything",
			principal: &common_models.Principal{IsSystemAdmin: true},
			keys:      []string{"leads.all.view"},
		},
		{
			name:      "system admin bypasses even with empty permissions",
			principal: &common_models.Principal{IsSystemAdmin: true, Permissions: []string{}},
			keys:      []string{"anything.at.all"},
		},
		{
			name:      "coarse role name match allows",
			principal: &common_models.Principal{RoleName: "Team Lead"},
			roleNames: []string{"Admin", "Team Lead"},
			keys:      []string{"callTasks.tasks.create"},
		},
		{
			name:      "coarse role name match is case-insensitive",
			principal: &common_models.Principal{RoleName: "team lead"},
			roleNames: []string{"Team Lead"},
			keys:      []string{"callTasks.tasks.create"},
		},
		{
			name: "coarse miss falls through to fine-grained and allows",
			principal: &common_models.Principal{
				RoleName:    "Custom Dispatcher",
				Permissions: []string{"callTasks.tasks.create"},
			},
			roleNames: []string{"Admin", "Team Lead"},
			keys:      []string{"callTasks.tasks.create"},
		},
		{
			name: "coarse miss falls through to fine-grained and denies",
			principal: &common_models.Principal{
				RoleName:    "Custom Dispatcher",
				Permissions: []string{"leads.all.view"},
			},
			roleNames: []string{"Admin"},
			keys:      []string{"callTasks.tasks.create"},
			wantKind:  apperr.KindForbidden,
		},
		{
			name: "disjunction allows on any required key",
			principal: &common_models.Principal{
				Permissions: []string{"helpRequests.sent.view"},
			},
			keys: []string{"helpRequests.inbox.view", "helpRequests.sent.view"},
		},
		{
			name:      "empty permissions and no role match denies",
			principal: &common_models.Principal{RoleName: "Intern", Permissions: []string{}},
			roleNames: []string{"Admin"},
			keys:      []string{"leads.all.view"},
			wantKind:  apperr.KindForbidden,
		},
		{
			name:      "empty required key set fails closed",
			principal: &common_models.Principal{Permissions: []string{"leads.all.view"}},
			wantKind:  apperr.KindForbidden,
		},
		{
			name:     "nil principal denies",
			keys:     []string{"leads.all.view"},
			wantKind: apperr.KindForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := gate.Check(tt.principal, tt.roleNames, tt.keys...)
			if tt.wantKind == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, apperr.KindOf(err))
		})
	}
}

func TestGateCheckDenialNamesRequiredKeys(t *testing.T) {
	gate := NewGate(zap.NewNop())
	p := &common_models.Principal{Permissions: []string{"leads.all.view"}}

	err := gate.Check(p, nil, "callTasks.tasks.create", "callTasks.tasks.ack")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "callTasks.tasks.create")
	assert.Contains(t, err.Error(), "callTasks.tasks.ack")
}
