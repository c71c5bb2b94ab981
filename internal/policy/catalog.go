package policy

// Permission is a fine-grained administrative capability carried by authz
// roles. Ordinary application roles carry no permissions.
type Permission string

const (
	PermViewInternalUser   Permission = "user.view.internal"
	PermViewExternalUser   Permission = "user.view.external"
	PermEditUser           Permission = "user.edit"
	PermDeleteUser         Permission = "user.delete"
	PermEnableDisableUser  Permission = "user.enable_disable"
	PermCreateInternalUser Permission = "user.create.internal"
	PermCreateExternalUser Permission = "user.create.external"
	PermEditUserFirm       Permission = "user.firm.edit"
	PermDelegateExternal   Permission = "firm.delegate_external"
	PermAssignAnyRole      Permission = "role.assign_any"
	PermManageAllUsers     Permission = "user.manage_all"
)

// Names of the built-in authz roles. An AppRole whose AuthzRole flag is set
// carries one of these names; everything else is an ordinary application
// entitlement.
const (
	RoleGlobalAdmin         = "Global Admin"
	RoleInternalUserManager = "Internal User Manager"
	RoleExternalUserManager = "External User Manager"
	RoleFirmUserManager     = "Firm User Manager"
	RoleExternalUserAdmin   = "External User Admin"
	RoleInternalUserViewer  = "Internal User Viewer"
	RoleExternalUserViewer  = "External User Viewer"
	RoleSecurityResponse    = "Security Response"
	RoleSilasAdmin          = "Silas Admin"
)

// DefaultRolePermissions returns the permission set seeded for each built-in
// authz role. The resolver works off the sets persisted on the roles
// themselves; this table is the source the seeds and tests draw from.
func DefaultRolePermissions() map[string][]Permission {
	return map[string][]Permission{
		RoleGlobalAdmin: {
			PermViewInternalUser, PermViewExternalUser, PermEditUser,
			PermDeleteUser, PermEnableDisableUser, PermCreateInternalUser,
			PermCreateExternalUser, PermEditUserFirm, PermDelegateExternal,
			PermAssignAnyRole, PermManageAllUsers,
		},
		RoleSilasAdmin: {
			PermViewInternalUser, PermViewExternalUser, PermEditUser,
			PermDeleteUser, PermEnableDisableUser, PermCreateInternalUser,
			PermCreateExternalUser, PermEditUserFirm,
			PermAssignAnyRole, PermManageAllUsers,
		},
		RoleExternalUserAdmin: {
			PermViewExternalUser, PermEditUser, PermDeleteUser,
			PermEnableDisableUser, PermCreateInternalUser,
			PermCreateExternalUser, PermEditUserFirm, PermDelegateExternal,
		},
		RoleInternalUserManager: {
			PermViewInternalUser, PermEditUser, PermEnableDisableUser,
			PermCreateInternalUser,
		},
		RoleExternalUserManager: {
			PermViewExternalUser, PermEditUser, PermEnableDisableUser,
			PermCreateExternalUser, PermDelegateExternal,
		},
		RoleFirmUserManager: {
			PermViewExternalUser, PermEditUser, PermEnableDisableUser,
			PermCreateExternalUser,
		},
		RoleInternalUserViewer: {PermViewInternalUser},
		RoleExternalUserViewer: {PermViewExternalUser},
		RoleSecurityResponse: {
			PermViewInternalUser, PermViewExternalUser, PermEnableDisableUser,
		},
	}
}

// UserType distinguishes internal staff from external firm users.
type UserType string

const (
	UserTypeInternal           UserType = "INTERNAL"
	UserTypeExternal           UserType = "EXTERNAL"
	UserTypeExternalSingleFirm UserType = "EXTERNAL_SINGLE_FIRM"
)

// ExternalTypes is the derived set of external user types.
var ExternalTypes = []UserType{UserTypeExternal, UserTypeExternalSingleFirm}

// External reports whether the user type belongs to the external set.
func (t UserType) External() bool {
	return t == UserTypeExternal || t == UserTypeExternalSingleFirm
}

// Valid reports whether the value is one of the closed set of user types.
func (t UserType) Valid() bool {
	return t == UserTypeInternal || t.External()
}

// RoleType constrains which user types may hold an application role.
type RoleType string

const (
	RoleTypeInternal            RoleType = "INTERNAL"
	RoleTypeExternal            RoleType = "EXTERNAL"
	RoleTypeInternalAndExternal RoleType = "INTERNAL_AND_EXTERNAL"
)

// firmScopedRoles lists the authz roles bound to the actor's own firm.
// Everything else operates across firms.
var firmScopedRoles = map[string]struct{}{
	RoleExternalUserManager: {},
	RoleFirmUserManager:     {},
}

// topTierRoles are assignable only by holders of the manage-all-users
// permission, independent of the role assignment matrix.
var topTierRoles = map[string]struct{}{
	RoleGlobalAdmin:      {},
	RoleSecurityResponse: {},
}

// reservedInternalRoles may never be assigned to an external profile, for
// any actor. This is an explicit business rule, not a matrix consequence.
var reservedInternalRoles = map[string]struct{}{
	RoleGlobalAdmin:       {},
	RoleExternalUserAdmin: {},
}

// adminFilterRoles is the role set matched by the "firm admins and global
// admins only" listing filter.
var adminFilterRoles = map[string]struct{}{
	RoleGlobalAdmin:       {},
	RoleExternalUserAdmin: {},
}
