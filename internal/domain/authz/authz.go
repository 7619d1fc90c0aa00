package authz

import (
	"storefront-core/internal/domain/user"
)

// Capability names one mutating operation. Checks are evaluated against a
// static role table: a role passes either by holding the capability
// explicitly or by meeting the capability's minimum level.
type Capability string

const (
	CapOrderCreate  Capability = "order:create"
	CapOrderRead    Capability = "order:read"
	CapOrderUpdate  Capability = "order:update"
	CapOrderProcess Capability = "order:process"
	CapOrderCancel  Capability = "order:cancel"

	CapDiscountCreate Capability = "discount:create"
	CapDiscountUpdate Capability = "discount:update"
	CapDiscountDelete Capability = "discount:delete"

	CapUserRead   Capability = "user:read"
	CapUserUpdate Capability = "user:update"
	CapUserDelete Capability = "user:delete"

	CapRoleManage  Capability = "role:manage"
	CapSystemAdmin Capability = "system:admin"
)

type grant struct {
	level        int
	capabilities map[Capability]struct{}
}

func caps(cs ...Capability) map[Capability]struct{} {
	m := make(map[Capability]struct{}, len(cs))
	for _, c := range cs {
		m[c] = struct{}{}
	}
	return m
}

// Adding a role is a data change here, not a new type.
var roleTable = map[user.Role]grant{
	user.RoleCustomer: {level: 1, capabilities: caps()},
	user.RoleCustomerService: {level: 10, capabilities: caps(
		CapOrderRead, CapOrderUpdate, CapUserRead,
	)},
	user.RoleOrderFulfillment: {level: 15, capabilities: caps(
		CapOrderRead, CapOrderUpdate, CapOrderProcess,
	)},
	user.RoleInventoryManager: {level: 20, capabilities: caps(
		CapOrderRead,
	)},
	user.RoleMarketingManager: {level: 20, capabilities: caps(
		CapDiscountCreate, CapDiscountUpdate, CapDiscountDelete,
	)},
	user.RoleAdmin: {level: 90, capabilities: caps(
		CapOrderRead, CapOrderUpdate, CapOrderProcess, CapOrderCancel,
		CapDiscountCreate, CapDiscountUpdate, CapDiscountDelete,
		CapUserRead, CapUserUpdate, CapUserDelete, CapRoleManage,
	)},
	user.RoleSuperAdmin: {level: 100, capabilities: caps(
		CapOrderRead, CapOrderUpdate, CapOrderProcess, CapOrderCancel,
		CapDiscountCreate, CapDiscountUpdate, CapDiscountDelete,
		CapUserRead, CapUserUpdate, CapUserDelete, CapRoleManage, CapSystemAdmin,
	)},
}

// Per-capability minimum levels. A capability absent from this table can only
// be granted through an explicit capability-set entry.
var capabilityMinLevel = map[Capability]int{
	CapOrderCreate:    0, // every principal, guests included, may check out
	CapOrderRead:      10,
	CapOrderUpdate:    10,
	CapOrderProcess:   15,
	CapOrderCancel:    90,
	CapDiscountCreate: 20,
	CapDiscountUpdate: 20,
	CapDiscountDelete: 20,
	CapUserDelete:     90,
	CapRoleManage:     90,
	CapSystemAdmin:    100,
}

// Authorize is a pure function over the static table; no storage access.
func Authorize(role user.Role, c Capability) bool {
	g, ok := roleTable[role]
	if !ok {
		return false
	}
	if _, held := g.capabilities[c]; held {
		return true
	}
	minLevel, gated := capabilityMinLevel[c]
	if !gated {
		return false
	}
	return g.level >= minLevel
}

func Level(role user.Role) int {
	return roleTable[role].level
}
