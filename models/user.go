package models

import (
	"time"
)

// Role is the closed set of principal roles. Configuration supplies policy
// data (the default grant table in services), never new role tags.
type Role string

const (
	RoleSuperAdmin       Role = "super_admin"
	RoleHotelOwner       Role = "hotel_owner"
	RoleManager          Role = "manager"
	RoleChef             Role = "chef"
	RoleWaiter           Role = "waiter"
	RoleGuest            Role = "guest"
	RoleLaundryAttendant Role = "laundry_attendant"
)

// Roles lists every valid role tag.
var Roles = []Role{
	RoleSuperAdmin,
	RoleHotelOwner,
	RoleManager,
	RoleChef,
	RoleWaiter,
	RoleGuest,
	RoleLaundryAttendant,
}

// PaymentGateway is the per-tenant provider configuration embedded in the
// company user. Both secrets are stored only in their encrypted form.
type PaymentGateway struct {
	Provider        PaymentProvider `json:"provider"`
	EncryptedKey    string          `json:"-"`
	EncryptedSecret string          `json:"-"`
}

// Configured reports whether the tenant has a usable gateway config.
func (g PaymentGateway) Configured() bool {
	return g.Provider != "" && g.EncryptedSecret != ""
}

type User struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Email       string  `json:"email" gorm:"unique"`
	Password    string  `json:"password,omitempty"`
	FullName    string  `json:"full_name"`
	CompanyName *string `json:"company_name,omitempty" gorm:"index"`
	Role        Role    `json:"role" gorm:"index"`

	// CompanyID points at the owning company user for staff. It is always
	// set for staff roles and always null for owners (the owner row *is*
	// the company) and platform admins.
	CompanyID *uint `json:"company_id,omitempty" gorm:"index"`
	Company   *User `json:"-" gorm:"foreignKey:CompanyID"`

	Grants           []Grant           `json:"grants,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	PermissionGroups []PermissionGroup `json:"permission_groups,omitempty" gorm:"many2many:user_permission_groups;"`

	PaymentGateway PaymentGateway `json:"payment_gateway" gorm:"embedded;embeddedPrefix:payment_gateway_"`

	IsSubscribed          bool       `json:"is_subscribed"`
	SubscriptionType      *string    `json:"subscription_type,omitempty"`
	SubscriptionStartDate *time.Time `json:"subscription_start_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TenantID returns the company the principal acts for: staff act for their
// parent company, owners and guests stand alone.
func (u *User) TenantID() uint {
	if u.CompanyID != nil {
		return *u.CompanyID
	}
	return u.ID
}
