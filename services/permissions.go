package services

import (
	"github.com/kelechukwu/quick-pickup/models"
)

// HasPermission reports whether the principal holds the (resource,
// permission) pair, either individually or through any referenced group.
// Individual grants are scanned first so the common staff case never touches
// the groups. Pure: no fetches, no errors; absence is an ordinary false and
// the caller decides whether that is an authorization failure.
func HasPermission(user *models.User, resource models.Resource, permission models.Permission) bool {
	for _, grant := range user.Grants {
		if grant.Resource == resource && grant.Permission == permission {
			return true
		}
	}
	for _, group := range user.PermissionGroups {
		for _, grant := range group.Grants {
			if grant.Resource == resource && grant.Permission == permission {
				return true
			}
		}
	}
	return false
}

// EffectivePermissions materializes the deduplicated union of individual and
// group grants. Computed on demand, never cached past a request, because
// group membership can change between requests.
func EffectivePermissions(user *models.User) []models.Grant {
	seen := make(map[[2]string]bool)
	var out []models.Grant
	add := func(resource models.Resource, permission models.Permission) {
		key := [2]string{string(resource), string(permission)}
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, models.Grant{Resource: resource, Permission: permission})
	}
	for _, grant := range user.Grants {
		add(grant.Resource, grant.Permission)
	}
	for _, group := range user.PermissionGroups {
		for _, grant := range group.Grants {
			add(grant.Resource, grant.Permission)
		}
	}
	return out
}

type defaultGrant struct {
	Resource    models.Resource
	Permissions []models.Permission
}

var crud = []models.Permission{
	models.PermissionCreate,
	models.PermissionRead,
	models.PermissionUpdate,
	models.PermissionDelete,
}

var readUpdate = []models.Permission{models.PermissionRead, models.PermissionUpdate}

// defaultGrants is the single source of truth for the permissions a freshly
// created principal starts with. Every role has an entry, even if empty, so
// lookups never fall through to an accidental zero value.
var defaultGrants = map[models.Role][]defaultGrant{
	models.RoleSuperAdmin: {
		{models.ResourceUser, crud},
		{models.ResourceOrder, readUpdate},
		{models.ResourcePayment, []models.Permission{models.PermissionRead}},
		{models.ResourceInventory, []models.Permission{models.PermissionRead}},
		{models.ResourceStock, []models.Permission{models.PermissionRead}},
	},
	models.RoleHotelOwner: {
		{models.ResourceUser, crud},
		{models.ResourceItem, crud},
		{models.ResourceOrder, readUpdate},
		{models.ResourcePayment, []models.Permission{models.PermissionRead}},
		{models.ResourceInventory, crud},
		{models.ResourceStock, crud},
	},
	models.RoleManager: {
		{models.ResourceItem, readUpdate},
		{models.ResourceOrder, readUpdate},
		{models.ResourceStock, []models.Permission{models.PermissionCreate, models.PermissionRead, models.PermissionUpdate}},
		{models.ResourceInventory, []models.Permission{models.PermissionRead}},
	},
	models.RoleChef: {
		{models.ResourceItem, readUpdate},
		{models.ResourceOrder, readUpdate},
		{models.ResourceStock, readUpdate},
	},
	models.RoleWaiter: {
		{models.ResourceItem, readUpdate},
		{models.ResourceOrder, readUpdate},
		{models.ResourceStock, readUpdate},
	},
	models.RoleLaundryAttendant: {
		{models.ResourceItem, readUpdate},
		{models.ResourceOrder, readUpdate},
		{models.ResourceStock, readUpdate},
	},
	models.RoleGuest: {
		{models.ResourceOrder, []models.Permission{models.PermissionCreate, models.PermissionRead}},
		{models.ResourcePayment, []models.Permission{models.PermissionRead}},
		{models.ResourceItem, []models.Permission{models.PermissionRead}},
	},
}

// DefaultGrants returns the starting individual grants for a role, one Grant
// row per (resource, permission) pair.
func DefaultGrants(role models.Role) []models.Grant {
	var out []models.Grant
	for _, entry := range defaultGrants[role] {
		for _, permission := range entry.Permissions {
			out = append(out, models.Grant{Resource: entry.Resource, Permission: permission})
		}
	}
	return out
}

// ApplyDefaultGrants seeds a new principal's individual grants from the
// role table. Applied once at creation time.
func ApplyDefaultGrants(user *models.User) {
	user.Grants = DefaultGrants(user.Role)
}
