package models

import (
	"time"

	"gorm.io/gorm"
)

// Resource is the closed set of things a permission can gate.
type Resource string

const (
	ResourceUser      Resource = "user"
	ResourceItem      Resource = "item"
	ResourceOrder     Resource = "order"
	ResourceInventory Resource = "inventory"
	ResourcePayment   Resource = "payment"
	ResourceStock     Resource = "stock"
)

// Permission is the closed set of actions on a resource.
type Permission string

const (
	PermissionCreate Permission = "create"
	PermissionRead   Permission = "read"
	PermissionUpdate Permission = "update"
	PermissionDelete Permission = "delete"
)

// Grant is one (resource, permission) pair held individually by a user.
type Grant struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	UserID     uint       `json:"user_id" gorm:"index;uniqueIndex:idx_user_resource_permission"`
	Resource   Resource   `json:"resource" gorm:"uniqueIndex:idx_user_resource_permission"`
	Permission Permission `json:"permission" gorm:"uniqueIndex:idx_user_resource_permission"`
	CreatedAt  time.Time  `json:"created_at"`
}

// GroupGrant is one (resource, permission) pair held by a permission group.
type GroupGrant struct {
	ID                uint       `json:"id" gorm:"primaryKey"`
	PermissionGroupID uint       `json:"permission_group_id" gorm:"index"`
	Resource          Resource   `json:"resource"`
	Permission        Permission `json:"permission"`
}

// PermissionGroup is a company-owned bundle of grants shared by many users.
// Users reference groups; removing a member never deletes the group.
type PermissionGroup struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	CompanyID   uint           `json:"company_id" gorm:"index"`
	Grants      []GroupGrant   `json:"grants,omitempty" gorm:"foreignKey:PermissionGroupID;constraint:OnDelete:CASCADE"`
	Users       []User         `json:"users,omitempty" gorm:"many2many:user_permission_groups;"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
