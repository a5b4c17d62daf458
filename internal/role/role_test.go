// AngelaMos | 2026
// role_test.go

package role

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissionsContains(t *testing.T) {
	t.Parallel()

	perms := Permissions{"tests:take", "results:read:own"}

	assert.True(t, perms.Contains("tests:take"))
	assert.False(t, perms.Contains("users:manage"))
	assert.False(t, Permissions(nil).Contains("anything"))
}

func TestPermissionsScan(t *testing.T) {
	t.Parallel()

	var perms Permissions
	require.NoError(t, perms.Scan([]byte(`["users:manage","stats:read"]`)))
	assert.Equal(t, Permissions{"users:manage", "stats:read"}, perms)

	var fromNull Permissions
	require.NoError(t, fromNull.Scan(nil))
	assert.Nil(t, fromNull)

	assert.Error(t, perms.Scan(42))
}
