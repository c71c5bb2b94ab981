package policy

// Engine evaluates every visibility and assignment decision against the
// role assignment matrix supplied at construction. It performs no I/O; all
// aggregates are loaded by the caller before evaluation.
type Engine struct {
	matrix Matrix
}

// NewEngine constructs an engine over the given matrix. Build the matrix
// fresh per request, or reuse a cached one invalidated on matrix mutation.
func NewEngine(matrix Matrix) *Engine {
	if matrix == nil {
		matrix = Matrix{}
	}
	return &Engine{matrix: matrix}
}

// roleCompatibleWithTarget applies user-type compatibility: the role type
// must admit the target's user type, and an explicit user type restriction
// narrows further even where the role type alone would allow it.
func roleCompatibleWithTarget(role AppRole, target UserType) bool {
	switch role.RoleType {
	case RoleTypeInternal:
		if target != UserTypeInternal {
			return false
		}
	case RoleTypeExternal:
		if !target.External() {
			return false
		}
	case RoleTypeInternalAndExternal:
		// always compatible before restriction
	default:
		return false
	}
	if len(role.UserTypeRestriction) == 0 {
		return true
	}
	for _, t := range role.UserTypeRestriction {
		if t == target {
			return true
		}
	}
	return false
}

// reservedFromTarget applies the hard-coded ceiling: Global Admin and
// External User Admin are reserved for internal identities regardless of
// actor or matrix.
func reservedFromTarget(role AppRole, target UserType) bool {
	if !role.AuthzRole {
		return false
	}
	if _, ok := reservedInternalRoles[role.Name]; !ok {
		return false
	}
	return target.External()
}

// withinActorCeiling applies the privilege ceiling. Top-tier authz roles
// need the manage-all-users permission; other authz roles need either the
// assign-any-role permission or a matrix row hit; ordinary application
// roles carry no ceiling beyond target compatibility.
func (e *Engine) withinActorCeiling(actor Profile, perms PermissionSet, role AppRole) bool {
	if !role.AuthzRole {
		return true
	}
	if _, ok := topTierRoles[role.Name]; ok {
		return perms.Has(PermManageAllUsers)
	}
	if perms.Has(PermAssignAnyRole) {
		return true
	}
	return e.matrix.AllowsAny(actor.AuthzRoles(), role.ID)
}

// canSeeUserType reports whether the actor's resolved permissions admit
// targets of the given user type at all.
func canSeeUserType(perms PermissionSet, target UserType) bool {
	if perms.Has(PermManageAllUsers) {
		return true
	}
	if target == UserTypeInternal {
		return perms.Has(PermViewInternalUser)
	}
	return perms.Has(PermViewExternalUser)
}

// FilterApps returns the apps exposing at least one role the actor could
// assign to some reachable target. An actor with no resolved permissions
// sees nothing.
func (e *Engine) FilterApps(actor Profile, apps []App) []App {
	perms := ResolvePermissions(actor)
	if len(perms) == 0 {
		return nil
	}
	var out []App
	for _, app := range apps {
		for _, role := range app.Roles {
			if e.roleReachable(actor, perms, role) {
				out = append(out, app)
				break
			}
		}
	}
	return out
}

// roleReachable reports whether some target user type exists for which the
// actor could assign the role.
func (e *Engine) roleReachable(actor Profile, perms PermissionSet, role AppRole) bool {
	if !e.withinActorCeiling(actor, perms, role) {
		return false
	}
	for _, t := range []UserType{UserTypeInternal, UserTypeExternal, UserTypeExternalSingleFirm} {
		if !canSeeUserType(perms, t) {
			continue
		}
		if reservedFromTarget(role, t) {
			continue
		}
		if roleCompatibleWithTarget(role, t) {
			return true
		}
	}
	return false
}

// FilterAssignableRoles returns the subset of the app's roles the actor may
// grant to the target profile. It returns nothing when the actor may not
// access the target at all.
func (e *Engine) FilterAssignableRoles(actor, target Profile, app App) []AppRole {
	if !e.CanAccessProfile(actor, target) {
		return nil
	}
	perms := ResolvePermissions(actor)
	var out []AppRole
	for _, role := range app.Roles {
		if reservedFromTarget(role, target.UserType) {
			continue
		}
		if !roleCompatibleWithTarget(role, target.UserType) {
			continue
		}
		if !e.withinActorCeiling(actor, perms, role) {
			continue
		}
		out = append(out, role)
	}
	return out
}

// FilterUsers returns the candidate profiles the actor may see. With
// adminsOnly set the candidates are narrowed to holders of the External
// User Admin or Global Admin role, independent of firm scope.
func (e *Engine) FilterUsers(actor Profile, candidates []Profile, adminsOnly bool) []Profile {
	perms := ResolvePermissions(actor)
	if len(perms) == 0 {
		return nil
	}
	var out []Profile
	for _, cand := range candidates {
		if adminsOnly {
			if !canSeeUserType(perms, cand.UserType) {
				continue
			}
			if !holdsAdminRole(cand) {
				continue
			}
			out = append(out, cand)
			continue
		}
		if e.CanAccessProfile(actor, cand) {
			out = append(out, cand)
		}
	}
	return out
}

func holdsAdminRole(p Profile) bool {
	for _, r := range p.AppRoles {
		if !r.AuthzRole {
			continue
		}
		if _, ok := adminFilterRoles[r.Name]; ok {
			return true
		}
	}
	return false
}
