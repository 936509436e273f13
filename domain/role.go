package domain

import "strings"

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleManager   Role = "manager"
	RoleSales     Role = "sales"
	RoleInventory Role = "inventory"
	RoleQuality   Role = "quality"
	RoleFinance   Role = "finance"
	RoleUser      Role = "user"
)

var Roles = []Role{RoleAdmin, RoleManager, RoleSales, RoleInventory, RoleQuality, RoleFinance, RoleUser}

func ParseRole(s string) (Role, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, r := range Roles {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// Capability names one thing a role is allowed to do.
type Capability string

const (
	CapDashboardView   Capability = "dashboard:view"
	CapOrdersView      Capability = "orders:view"
	CapOrdersManage    Capability = "orders:manage"
	CapEmployeesManage Capability = "employees:manage"
	CapProductsManage  Capability = "products:manage"
	CapFinanceView     Capability = "finance:view"
	CapUsersManage     Capability = "users:manage"
)

var roleCapabilities = map[Role][]Capability{
	RoleAdmin: {
		CapDashboardView, CapOrdersView, CapOrdersManage, CapEmployeesManage,
		CapProductsManage, CapFinanceView, CapUsersManage,
	},
	RoleManager: {
		CapDashboardView, CapOrdersView, CapOrdersManage, CapEmployeesManage,
		CapProductsManage, CapFinanceView,
	},
	RoleSales:     {CapDashboardView, CapOrdersView, CapOrdersManage},
	RoleInventory: {CapDashboardView, CapOrdersView, CapProductsManage},
	RoleQuality:   {CapDashboardView, CapOrdersView},
	RoleFinance:   {CapDashboardView, CapOrdersView, CapFinanceView},
	RoleUser:      {},
}

// Can is the single permission check used by every guard.
func (r Role) Can(c Capability) bool {
	for _, granted := range roleCapabilities[r] {
		if granted == c {
			return true
		}
	}
	return false
}

func (r Role) IsStaff() bool {
	return r.Can(CapDashboardView)
}

func (r Role) Capabilities() []Capability {
	return append([]Capability(nil), roleCapabilities[r]...)
}
