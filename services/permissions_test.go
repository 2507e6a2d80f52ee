package services

import (
	"math/rand"
	"testing"

	"github.com/kelechukwu/quick-pickup/models"
)

var allResources = []models.Resource{
	models.ResourceUser,
	models.ResourceItem,
	models.ResourceOrder,
	models.ResourceInventory,
	models.ResourcePayment,
	models.ResourceStock,
}

var allPermissions = []models.Permission{
	models.PermissionCreate,
	models.PermissionRead,
	models.PermissionUpdate,
	models.PermissionDelete,
}

func TestHasPermissionIndividualGrant(t *testing.T) {
	user := &models.User{
		Role: models.RoleGuest,
		Grants: []models.Grant{
			{Resource: models.ResourceOrder, Permission: models.PermissionCreate},
		},
	}

	if !HasPermission(user, models.ResourceOrder, models.PermissionCreate) {
		t.Error("expected individual grant to pass")
	}
	if HasPermission(user, models.ResourceOrder, models.PermissionDelete) {
		t.Error("expected missing permission to fail")
	}
	if HasPermission(user, models.ResourceStock, models.PermissionCreate) {
		t.Error("expected missing resource to fail")
	}
}

func TestHasPermissionGroupGrant(t *testing.T) {
	user := &models.User{
		Role: models.RoleWaiter,
		PermissionGroups: []models.PermissionGroup{
			{
				Name: "night shift",
				Grants: []models.GroupGrant{
					{Resource: models.ResourceStock, Permission: models.PermissionCreate},
				},
			},
		},
	}

	if !HasPermission(user, models.ResourceStock, models.PermissionCreate) {
		t.Error("expected group grant to pass")
	}
	if HasPermission(user, models.ResourceStock, models.PermissionDelete) {
		t.Error("expected permission outside group grants to fail")
	}
}

// Randomized grant/group combinations: HasPermission must agree exactly with
// membership in the union of individual and group grants.
func TestHasPermissionMatchesUnion(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 200; trial++ {
		expected := make(map[[2]string]bool)
		user := &models.User{}

		for i := 0; i < rng.Intn(6); i++ {
			resource := allResources[rng.Intn(len(allResources))]
			permission := allPermissions[rng.Intn(len(allPermissions))]
			user.Grants = append(user.Grants, models.Grant{Resource: resource, Permission: permission})
			expected[[2]string{string(resource), string(permission)}] = true
		}
		for g := 0; g < rng.Intn(3); g++ {
			group := models.PermissionGroup{}
			for i := 0; i < rng.Intn(5); i++ {
				resource := allResources[rng.Intn(len(allResources))]
				permission := allPermissions[rng.Intn(len(allPermissions))]
				group.Grants = append(group.Grants, models.GroupGrant{Resource: resource, Permission: permission})
				expected[[2]string{string(resource), string(permission)}] = true
			}
			user.PermissionGroups = append(user.PermissionGroups, group)
		}

		for _, resource := range allResources {
			for _, permission := range allPermissions {
				want := expected[[2]string{string(resource), string(permission)}]
				got := HasPermission(user, resource, permission)
				if got != want {
					t.Fatalf("trial %d: HasPermission(%s, %s) = %v, want %v", trial, resource, permission, got, want)
				}
			}
		}
	}
}

func TestEffectivePermissionsDeduplicates(t *testing.T) {
	user := &models.User{
		Grants: []models.Grant{
			{Resource: models.ResourceOrder, Permission: models.PermissionCreate},
			{Resource: models.ResourceOrder, Permission: models.PermissionRead},
		},
		PermissionGroups: []models.PermissionGroup{
			{Grants: []models.GroupGrant{
				{Resource: models.ResourceOrder, Permission: models.PermissionCreate},
				{Resource: models.ResourceItem, Permission: models.PermissionRead},
			}},
		},
	}

	effective := EffectivePermissions(user)
	if len(effective) != 3 {
		t.Fatalf("expected 3 deduplicated pairs, got %d", len(effective))
	}
}

// The default grant table must stay total: every role in the enumeration has
// an entry, even if it were empty.
func TestDefaultGrantTableIsTotal(t *testing.T) {
	for _, role := range models.Roles {
		if _, ok := defaultGrants[role]; !ok {
			t.Errorf("role %q missing from default grant table", role)
		}
	}
}

// Non-manager staff start with read/update on item, order and stock, and
// nothing wider on stock.
func TestDefaultGrantsStaffStock(t *testing.T) {
	for _, role := range []models.Role{models.RoleChef, models.RoleWaiter, models.RoleLaundryAttendant} {
		user := &models.User{Role: role}
		ApplyDefaultGrants(user)

		if !HasPermission(user, models.ResourceStock, models.PermissionRead) {
			t.Errorf("%s must be able to read stock", role)
		}
		if !HasPermission(user, models.ResourceStock, models.PermissionUpdate) {
			t.Errorf("%s must be able to update stock", role)
		}
		if HasPermission(user, models.ResourceStock, models.PermissionCreate) {
			t.Errorf("%s must not start with stock create", role)
		}
	}
}

func TestDefaultGrantsGuest(t *testing.T) {
	user := &models.User{Role: models.RoleGuest}
	ApplyDefaultGrants(user)

	if !HasPermission(user, models.ResourceOrder, models.PermissionCreate) {
		t.Error("guest must be able to create orders")
	}
	if !HasPermission(user, models.ResourceItem, models.PermissionRead) {
		t.Error("guest must be able to read items")
	}
	if !HasPermission(user, models.ResourcePayment, models.PermissionRead) {
		t.Error("guest must be able to read payments")
	}
	if HasPermission(user, models.ResourceStock, models.PermissionCreate) {
		t.Error("guest must not be able to create stock")
	}
}
