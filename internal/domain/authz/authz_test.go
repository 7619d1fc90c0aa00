//go:build unit

package authz_test

import (
	"testing"

	"storefront-core/internal/domain/authz"
	"storefront-core/internal/domain/user"

	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name string
		role user.Role
		cap  authz.Capability
		want bool
	}{
		{"customer may check out", user.RoleCustomer, authz.CapOrderCreate, true},
		{"customer cannot update orders", user.RoleCustomer, authz.CapOrderUpdate, false},
		{"customer cannot read others' orders", user.RoleCustomer, authz.CapOrderRead, false},
		{"customer service reads orders", user.RoleCustomerService, authz.CapOrderRead, true},
		{"customer service updates orders", user.RoleCustomerService, authz.CapOrderUpdate, true},
		{"customer service cannot process", user.RoleCustomerService, authz.CapOrderProcess, false},
		{"fulfillment processes orders", user.RoleOrderFulfillment, authz.CapOrderProcess, true},
		{"fulfillment cannot cancel", user.RoleOrderFulfillment, authz.CapOrderCancel, false},
		{"inventory manager reads via explicit grant", user.RoleInventoryManager, authz.CapOrderRead, true},
		{"marketing manages discounts", user.RoleMarketingManager, authz.CapDiscountCreate, true},
		{"marketing passes order read by level", user.RoleMarketingManager, authz.CapOrderRead, true},
		{"admin cancels orders", user.RoleAdmin, authz.CapOrderCancel, true},
		{"admin is not system admin", user.RoleAdmin, authz.CapSystemAdmin, false},
		{"super admin holds everything", user.RoleSuperAdmin, authz.CapSystemAdmin, true},
		{"unknown role denied", user.Role("intern"), authz.CapOrderCreate, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, authz.Authorize(tt.role, tt.cap))
		})
	}
}

func TestLevelOrdering(t *testing.T) {
	assert.Less(t, authz.Level(user.RoleCustomer), authz.Level(user.RoleCustomerService))
	assert.Less(t, authz.Level(user.RoleCustomerService), authz.Level(user.RoleOrderFulfillment))
	assert.Less(t, authz.Level(user.RoleOrderFulfillment), authz.Level(user.RoleAdmin))
	assert.Less(t, authz.Level(user.RoleAdmin), authz.Level(user.RoleSuperAdmin))
	assert.Zero(t, authz.Level(user.Role("intern")))
}
