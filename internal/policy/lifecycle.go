package policy

// CanEnableOrDisable decides status changes. Enabling and disabling demand
// the same permission; the reason-catalog and audit requirements sit with
// the service layer that applies the mutation.
func (e *Engine) CanEnableOrDisable(actor, target Profile) bool {
	if !e.CanAccessProfile(actor, target) {
		return false
	}
	return ResolvePermissions(actor).Has(PermEnableDisableUser)
}

// CanDeleteProfile decides profile deletion.
func (e *Engine) CanDeleteProfile(actor, target Profile) bool {
	if !e.CanAccessProfile(actor, target) {
		return false
	}
	return ResolvePermissions(actor).Has(PermDeleteUser)
}

// CanReassignFirm decides moving an external profile to another firm.
// Internal profiles carry no firm and cannot be reassigned. Whether the new
// firm exists or equals the current one is the service layer's validation,
// not an authorization outcome.
func (e *Engine) CanReassignFirm(actor, target Profile) bool {
	if !target.UserType.External() {
		return false
	}
	if !e.CanAccessProfile(actor, target) {
		return false
	}
	return ResolvePermissions(actor).Has(PermEditUserFirm)
}

// CanConvertToMultiFirm decides converting a profile's user to multi-firm.
// Only actors who could create users of the target's type may convert.
func (e *Engine) CanConvertToMultiFirm(actor, target Profile) bool {
	if !e.CanAccessProfile(actor, target) {
		return false
	}
	return e.CanCreateUser(actor, target.UserType)
}
