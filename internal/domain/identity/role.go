package identity

// Role is the closed set of account roles. Authorization decisions switch
// over this enum; there is no free-form role string anywhere in the system.
type Role string

const (
	RoleGuest      Role = "GUEST"
	RoleCustomer   Role = "CUSTOMER"
	RoleVendor     Role = "VENDOR"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPERADMIN"
)

// IsValid checks if the role is a member of the closed set
func (r Role) IsValid() bool {
	switch r {
	case RoleGuest, RoleCustomer, RoleVendor, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// ParseRole maps a stored role string to the closed enum; unknown values
// degrade to GUEST rather than granting anything
func ParseRole(s string) Role {
	r := Role(s)
	if !r.IsValid() {
		return RoleGuest
	}
	return r
}

// CanPlaceOrders reports whether the role may check out
func (r Role) CanPlaceOrders() bool {
	switch r {
	case RoleCustomer, RoleVendor, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// CanManageOwnStore reports whether the role may use the vendor back office
func (r Role) CanManageOwnStore() bool {
	switch r {
	case RoleVendor, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// CanManagePlatform reports whether the role may use the admin back office
func (r Role) CanManagePlatform() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// CanManageAdmins reports whether the role may create or block admin accounts
func (r Role) CanManageAdmins() bool {
	return r == RoleSuperAdmin
}
