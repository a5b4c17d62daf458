// AngelaMos | 2026
// resolver.go

package role

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	cacheTTL     = 5 * time.Minute
	cacheCleanup = 10 * time.Minute
)

// Resolver answers role lookups from an in-process cache. Role rows
// change rarely but are read on every role assignment, so a short TTL
// keeps the store out of the hot path while still picking up admin
// edits within minutes.
type Resolver struct {
	repo  Repository
	cache *gocache.Cache
}

func NewResolver(repo Repository) *Resolver {
	return &Resolver{
		repo:  repo,
		cache: gocache.New(cacheTTL, cacheCleanup),
	}
}

func (r *Resolver) ByName(ctx context.Context, name string) (*Role, error) {
	if cached, found := r.cache.Get("name:" + name); found {
		if role, ok := cached.(*Role); ok {
			return role, nil
		}
	}

	role, err := r.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	r.cache.Set("name:"+role.Name, role, gocache.DefaultExpiration)
	r.cache.Set("id:"+role.ID, role, gocache.DefaultExpiration)

	return role, nil
}

func (r *Resolver) ByID(ctx context.Context, id string) (*Role, error) {
	if cached, found := r.cache.Get("id:" + id); found {
		if role, ok := cached.(*Role); ok {
			return role, nil
		}
	}

	role, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	r.cache.Set("name:"+role.Name, role, gocache.DefaultExpiration)
	r.cache.Set("id:"+role.ID, role, gocache.DefaultExpiration)

	return role, nil
}

// IDForName satisfies account.RoleResolver.
func (r *Resolver) IDForName(ctx context.Context, name string) (string, error) {
	role, err := r.ByName(ctx, name)
	if err != nil {
		return "", err
	}
	return role.ID, nil
}

// Invalidate drops cached entries after a role write.
func (r *Resolver) Invalidate(role *Role) {
	r.cache.Delete("name:" + role.Name)
	r.cache.Delete("id:" + role.ID)
}
