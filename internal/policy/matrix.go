package policy

// Matrix is the role assignment matrix as an adjacency map from grantor
// authz role id to the set of role ids it may grant. Built once per request
// from the persisted edge list.
type Matrix map[string]map[string]struct{}

// NewMatrix builds the adjacency map from persisted edges.
func NewMatrix(edges []RoleAssignment) Matrix {
	m := make(Matrix, len(edges))
	for _, e := range edges {
		if e.GrantorRoleID == "" || e.GrantableRoleID == "" {
			continue
		}
		row, ok := m[e.GrantorRoleID]
		if !ok {
			row = make(map[string]struct{})
			m[e.GrantorRoleID] = row
		}
		row[e.GrantableRoleID] = struct{}{}
	}
	return m
}

// Allows reports whether the grantor role's row contains the candidate role.
func (m Matrix) Allows(grantorRoleID, roleID string) bool {
	row, ok := m[grantorRoleID]
	if !ok {
		return false
	}
	_, ok = row[roleID]
	return ok
}

// AllowsAny reports whether any of the actor's authz roles may grant the
// candidate role.
func (m Matrix) AllowsAny(grantorRoles []AppRole, roleID string) bool {
	for _, g := range grantorRoles {
		if m.Allows(g.ID, roleID) {
			return true
		}
	}
	return false
}

// GrantableBy returns the role ids the grantor role may assign.
func (m Matrix) GrantableBy(grantorRoleID string) []string {
	row, ok := m[grantorRoleID]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(row))
	for id := range row {
		out = append(out, id)
	}
	return out
}
