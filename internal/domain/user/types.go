package user

import "storefront-core/internal/pkg/errs"

var ErrInvalidRole = errs.New("invalid role")

type Role string

const (
	RoleCustomer         Role = "customer"
	RoleCustomerService  Role = "customer_service"
	RoleOrderFulfillment Role = "order_fulfillment"
	RoleInventoryManager Role = "inventory_manager"
	RoleMarketingManager Role = "marketing_manager"
	RoleAdmin            Role = "admin"
	RoleSuperAdmin       Role = "super_admin"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleCustomerService, RoleOrderFulfillment,
		RoleInventoryManager, RoleMarketingManager, RoleAdmin, RoleSuperAdmin:
		return true
	default:
		return false
	}
}

func NewRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() {
		return "", ErrInvalidRole
	}
	return role, nil
}
