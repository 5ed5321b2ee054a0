package permission

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/alimikegami/healthcare-microservices/users-service/pkg/errs"
	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultCacheSize = 256

type Catalog interface {
	PermissionsFor(roles []string) ([]string, error)
	RoleMap() map[string][]string
	Roles() []string
	IsKnownRole(role string) bool
}

type CatalogImpl struct {
	mapping map[string][]string
	cache   *lru.Cache[string, []string]

	roleMapOnce sync.Once
	roleMap     map[string][]string
}

var (
	defaultCatalog     *CatalogImpl
	defaultCatalogOnce sync.Once
)

// Default returns the process-wide catalog backed by the static role mapping.
func Default() *CatalogImpl {
	defaultCatalogOnce.Do(func() {
		defaultCatalog = CreateNewCatalog(roleMapping, defaultCacheSize)
	})
	return defaultCatalog
}

func CreateNewCatalog(mapping map[string][]string, cacheSize int) *CatalogImpl {
	cache, err := lru.New[string, []string](cacheSize)
	if err != nil {
		// only returned for a non-positive size
		cache, _ = lru.New[string, []string](defaultCacheSize)
	}

	return &CatalogImpl{
		mapping: mapping,
		cache:   cache,
	}
}

// PermissionsFor returns the sorted union of the permissions of every role.
// The result does not depend on the order or repetition of roles.
func (c *CatalogImpl) PermissionsFor(roles []string) ([]string, error) {
	key := canonicalKey(roles)
	if cached, ok := c.cache.Get(key); ok {
		return append(make([]string, 0, len(cached)), cached...), nil
	}

	set := make(map[string]struct{})
	for _, role := range roles {
		perms, ok := c.mapping[role]
		if !ok {
			return nil, fmt.Errorf("%w: %q", errs.ErrUnknownRole, role)
		}
		for _, p := range perms {
			set[p] = struct{}{}
		}
	}

	result := make([]string, 0, len(set))
	for p := range set {
		result = append(result, p)
	}
	sort.Strings(result)

	c.cache.Add(key, result)

	return append(make([]string, 0, len(result)), result...), nil
}

// RoleMap returns each known role with its own permission set. Callers get a
// copy they are free to modify.
func (c *CatalogImpl) RoleMap() map[string][]string {
	c.roleMapOnce.Do(func() {
		c.roleMap = make(map[string][]string, len(c.mapping))
		for role := range c.mapping {
			perms, _ := c.PermissionsFor([]string{role})
			c.roleMap[role] = perms
		}
	})

	out := make(map[string][]string, len(c.roleMap))
	for role, perms := range c.roleMap {
		out[role] = append([]string(nil), perms...)
	}
	return out
}

func (c *CatalogImpl) Roles() []string {
	roles := make([]string, 0, len(c.mapping))
	for role := range c.mapping {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}

func (c *CatalogImpl) IsKnownRole(role string) bool {
	_, ok := c.mapping[role]
	return ok
}

func canonicalKey(roles []string) string {
	sorted := append([]string(nil), roles...)
	sort.Strings(sorted)

	deduped := sorted[:0]
	for i, r := range sorted {
		if i > 0 && r == sorted[i-1] {
			continue
		}
		deduped = append(deduped, r)
	}

	return strings.Join(deduped, "\x00")
}

// SendClinicianFamily lists the roles that may hold the EWS edit permission.
var SendClinicianFamily = []string{
	RoleSendClinician,
	RoleSendSuperclinician,
}

func IsSendClinician(groups []string) bool {
	for _, g := range groups {
		for _, r := range SendClinicianFamily {
			if g == r {
				return true
			}
		}
	}
	return false
}
