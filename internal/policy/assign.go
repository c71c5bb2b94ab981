package policy

// CanAccessProfile decides whether the actor may see the target's detail
// view or act on it at all. Denials are plain false; not-found targets are
// the calling layer's concern, never the authorizer's.
func (e *Engine) CanAccessProfile(actor, target Profile) bool {
	perms := ResolvePermissions(actor)
	if len(perms) == 0 {
		return false
	}
	if !canSeeUserType(perms, target.UserType) {
		return false
	}
	if FirmScoped(actor) && !withinFirmScope(actor, target) {
		return false
	}
	// Disabled targets stay visible to managers who can re-enable them.
	if !target.User.Enabled && !perms.Has(PermEnableDisableUser) {
		return false
	}
	return true
}

// CanAssignRole decides whether the actor may grant the role to the target
// profile. The reserved-role ceiling applies before anything else, then
// target compatibility, target access, and the actor's privilege ceiling.
func (e *Engine) CanAssignRole(actor, target Profile, role AppRole) bool {
	if reservedFromTarget(role, target.UserType) {
		return false
	}
	if !roleCompatibleWithTarget(role, target.UserType) {
		return false
	}
	if !e.CanAccessProfile(actor, target) {
		return false
	}
	perms := ResolvePermissions(actor)
	return e.withinActorCeiling(actor, perms, role)
}

// CanRevokeRole follows the same rules as grant: an actor who could not
// have granted a role may not revoke it. The user deletion cascade bypasses
// this method entirely.
func (e *Engine) CanRevokeRole(actor, target Profile, role AppRole) bool {
	return e.CanAssignRole(actor, target, role)
}

// CanCreateUser decides whether the actor may create a user of the
// requested type. Creating an internal user demands a strictly
// higher-trust permission than creating an external one.
func (e *Engine) CanCreateUser(actor Profile, requested UserType) bool {
	if !requested.Valid() {
		return false
	}
	perms := ResolvePermissions(actor)
	if requested == UserTypeInternal {
		return perms.Has(PermCreateInternalUser)
	}
	return perms.Has(PermCreateExternalUser)
}
