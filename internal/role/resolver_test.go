// AngelaMos | 2026
// resolver_test.go

package role

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driveready/driveready-api/internal/core"
)

type countingRepo struct {
	Repository

	roles   map[string]*Role
	lookups int
}

func newCountingRepo(roles ...*Role) *countingRepo {
	repo := &countingRepo{roles: make(map[string]*Role)}
	for _, r := range roles {
		repo.roles[r.Name] = r
	}
	return repo
}

func (c *countingRepo) GetByName(
	ctx context.Context,
	name string,
) (*Role, error) {
	c.lookups++
	role, ok := c.roles[name]
	if !ok {
		return nil, fmt.Errorf("get role by name: %w", core.ErrNotFound)
	}
	return role, nil
}

func (c *countingRepo) GetByID(ctx context.Context, id string) (*Role, error) {
	c.lookups++
	for _, role := range c.roles {
		if role.ID == id {
			return role, nil
		}
	}
	return nil, fmt.Errorf("get role: %w", core.ErrNotFound)
}

func TestResolver_CachesByName(t *testing.T) {
	t.Parallel()

	repo := newCountingRepo(&Role{ID: "role-1", Name: "student"})
	resolver := NewResolver(repo)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		role, err := resolver.ByName(ctx, "student")
		require.NoError(t, err)
		assert.Equal(t, "role-1", role.ID)
	}

	assert.Equal(t, 1, repo.lookups)
}

func TestResolver_NameLookupPrimesIDLookup(t *testing.T) {
	t.Parallel()

	repo := newCountingRepo(&Role{ID: "role-1", Name: "student"})
	resolver := NewResolver(repo)
	ctx := context.Background()

	_, err := resolver.ByName(ctx, "student")
	require.NoError(t, err)

	role, err := resolver.ByID(ctx, "role-1")
	require.NoError(t, err)
	assert.Equal(t, "student", role.Name)

	assert.Equal(t, 1, repo.lookups)
}

func TestResolver_UnknownRole(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(newCountingRepo())

	_, err := resolver.ByName(context.Background(), "superuser")
	require.ErrorIs(t, err, core.ErrNotFound)

	_, err = resolver.IDForName(context.Background(), "superuser")
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestResolver_InvalidateForcesRefetch(t *testing.T) {
	t.Parallel()

	role := &Role{ID: "role-1", Name: "student"}
	repo := newCountingRepo(role)
	resolver := NewResolver(repo)
	ctx := context.Background()

	_, err := resolver.ByName(ctx, "student")
	require.NoError(t, err)

	resolver.Invalidate(role)

	_, err = resolver.ByName(ctx, "student")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.lookups)
}

func TestIDForName(t *testing.T) {
	t.Parallel()

	repo := newCountingRepo(&Role{ID: "role-7", Name: "instructor"})
	resolver := NewResolver(repo)

	id, err := resolver.IDForName(context.Background(), "instructor")
	require.NoError(t, err)
	assert.Equal(t, "role-7", id)
}
