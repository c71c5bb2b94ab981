package policy

// Shared fixtures for the policy tests. Role permission sets come from the
// seeded catalog so the tests exercise the same data production starts with.

func catalogRole(id, name string, roleType RoleType) AppRole {
	return AppRole{
		ID:          id,
		AppID:       "app-silas",
		Name:        name,
		AuthzRole:   true,
		RoleType:    roleType,
		Permissions: DefaultRolePermissions()[name],
	}
}

var (
	roleGlobalAdmin     = catalogRole("role-global-admin", RoleGlobalAdmin, RoleTypeInternal)
	roleSilasAdmin      = catalogRole("role-silas-admin", RoleSilasAdmin, RoleTypeInternal)
	roleExternalAdmin   = catalogRole("role-external-admin", RoleExternalUserAdmin, RoleTypeInternal)
	roleInternalManager = catalogRole("role-internal-manager", RoleInternalUserManager, RoleTypeInternal)
	roleExternalManager = catalogRole("role-external-manager", RoleExternalUserManager, RoleTypeExternal)
	roleFirmManager     = catalogRole("role-firm-manager", RoleFirmUserManager, RoleTypeExternal)
	roleInternalViewer  = catalogRole("role-internal-viewer", RoleInternalUserViewer, RoleTypeInternal)
	roleSecurity        = catalogRole("role-security", RoleSecurityResponse, RoleTypeInternal)
)

func plainRole(id, name string, roleType RoleType, restriction ...UserType) AppRole {
	return AppRole{
		ID:                  id,
		AppID:               "app-ccms",
		Name:                name,
		RoleType:            roleType,
		UserTypeRestriction: restriction,
	}
}

func firmWithOffice(id, name string) *Firm {
	return &Firm{
		ID:      id,
		Name:    name,
		Code:    "F-" + id,
		Offices: []Office{{ID: "office-" + id, FirmID: id, Name: name + " HQ"}},
	}
}

func parentFirm(id, name string) *Firm {
	f := firmWithOffice(id, name)
	f.ParentType = true
	return f
}

func childFirmOf(parent *Firm, id, name string) *Firm {
	f := firmWithOffice(id, name)
	f.ParentFirmID = parent.ID
	return f
}

func internalProfile(id string, roles ...AppRole) Profile {
	return Profile{
		ID:       id,
		User:     User{ID: "user-" + id, Name: id, Email: id + "@justice.example", Enabled: true},
		UserType: UserTypeInternal,
		AppRoles: roles,
		Active:   true,
	}
}

func externalProfile(id string, firm *Firm, roles ...AppRole) Profile {
	return Profile{
		ID:       id,
		User:     User{ID: "user-" + id, Name: id, Email: id + "@firm.example", Enabled: true},
		UserType: UserTypeExternal,
		Firm:     firm,
		AppRoles: roles,
		Active:   true,
	}
}
