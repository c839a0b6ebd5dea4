package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryListAll(t *testing.T) {
	r := NewRegistry()

	keys := r.ListAll()
	require.NotEmpty(t, keys)

	seen := make(map[string]bool)
	for _, k := range keys {
		assert.False(t, seen[k], "duplicate key %s", k)
		seen[k] = true
	}

	// A few keys routes depend on.
	for _, k := range []string{
		"leads.detail.helpRequest",
		"callTasks.tasks.create",
		"helpRequests.inbox.respond",
		"alarms.alarms.create",
		"roles.roles.delete",
	} {
		assert.True(t, r.Has(k), "catalog missing %s", k)
	}

	// Stable ordering across calls.
	assert.Equal(t, keys, r.ListAll())
}

func TestRegistryDefaultsAreSubsetOfCatalog(t *testing.T) {
	r := NewRegistry()

	defaults := r.DefaultsForNewRole()
	require.NotEmpty(t, defaults)
	for _, k := range defaults {
		assert.True(t, r.Has(k), "default %s not in catalog", k)
	}
}

func TestRegistryValidate(t *testing.T) {
	r := NewRegistry()

	assert.Empty(t, r.Validate([]string{"leads.all.view", "alarms.alarms.view"}))

	invalid := r.Validate([]string{
		"leads.all.view",
		"leads.all.explode",
		"bogus.module.view",
		"bogus.module.view", // duplicate submissions reported once
	})
	assert.Equal(t, []string{"leads.all.explode", "bogus.module.view"}, invalid)
}
