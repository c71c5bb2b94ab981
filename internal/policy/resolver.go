package policy

// PermissionSet is the resolved set of capabilities held by an actor.
type PermissionSet map[Permission]struct{}

// Has reports whether the set contains the permission.
func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// HasAny reports whether the set contains at least one of the permissions.
func (s PermissionSet) HasAny(perms ...Permission) bool {
	for _, p := range perms {
		if s.Has(p) {
			return true
		}
	}
	return false
}

// ResolvePermissions computes the actor's effective permission set: the
// union of the permission sets of every authz role on the active profile.
// Ordinary application roles contribute nothing. An actor with no authz
// roles resolves to the empty set, which denies every downstream check.
func ResolvePermissions(actor Profile) PermissionSet {
	set := make(PermissionSet)
	for _, role := range actor.AppRoles {
		if !role.AuthzRole {
			continue
		}
		for _, p := range role.Permissions {
			set[p] = struct{}{}
		}
	}
	return set
}

// FirmScoped reports whether the actor is bound to their own firm: they hold
// at least one authz role and every authz role they hold is firm-scoped.
func FirmScoped(actor Profile) bool {
	authz := actor.AuthzRoles()
	if len(authz) == 0 {
		return false
	}
	for _, r := range authz {
		if _, ok := firmScopedRoles[r.Name]; !ok {
			return false
		}
	}
	return true
}
