package policy

import "time"

// User is an identity record owned by the identity subsystem. The policy
// engine treats it as read-mostly.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Enabled   bool      `json:"enabled"`
	MultiFirm bool      `json:"multi_firm"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Office belongs to exactly one firm.
type Office struct {
	ID     string `json:"id"`
	FirmID string `json:"firm_id"`
	Name   string `json:"name"`
}

// Firm is a provider organisation. The hierarchy is exactly two levels: a
// firm is either a root or the child of exactly one parent.
type Firm struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Code         string    `json:"code"`
	ParentFirmID string    `json:"parent_firm_id,omitempty"`
	ParentType   bool      `json:"parent_type"`
	Offices      []Office  `json:"offices,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// App is a named application exposing a set of grantable roles.
type App struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Roles []AppRole `json:"roles,omitempty"`
}

// AppRole is a grantable entitlement scoped to one app. Authz roles
// additionally carry administrative permissions within this system.
type AppRole struct {
	ID                  string       `json:"id"`
	AppID               string       `json:"app_id"`
	Name                string       `json:"name"`
	AuthzRole           bool         `json:"authz_role"`
	RoleType            RoleType     `json:"role_type"`
	UserTypeRestriction []UserType   `json:"user_type_restriction,omitempty"`
	Permissions         []Permission `json:"permissions,omitempty"`
}

// Profile binds a user to one firm (or none, for internal users) and carries
// that context's roles and offices. A multi-firm user holds one profile per
// firm with at most one active at a time.
type Profile struct {
	ID       string    `json:"id"`
	User     User      `json:"user"`
	UserType UserType  `json:"user_type"`
	Firm     *Firm     `json:"firm,omitempty"`
	Offices  []Office  `json:"offices,omitempty"`
	AppRoles []AppRole `json:"app_roles,omitempty"`
	Active   bool      `json:"active"`
}

// AuthzRoles returns the subset of the profile's roles that carry
// administrative permissions.
func (p Profile) AuthzRoles() []AppRole {
	var out []AppRole
	for _, r := range p.AppRoles {
		if r.AuthzRole {
			out = append(out, r)
		}
	}
	return out
}

// HasRole reports whether the profile holds a role with the given name.
func (p Profile) HasRole(name string) bool {
	for _, r := range p.AppRoles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// RoleAssignment is an edge of the role assignment matrix: a user holding
// GrantorRole may assign GrantableRole even where default visibility rules
// would hide it. GrantorRole must be an authz role.
type RoleAssignment struct {
	GrantorRoleID   string `json:"grantor_role_id"`
	GrantableRoleID string `json:"grantable_role_id"`
}

// AuditRecord captures a user status change. Records are append-only and
// never mutated.
type AuditRecord struct {
	ID         string    `json:"id"`
	ActorID    string    `json:"actor_id"`
	TargetID   string    `json:"target_id"`
	OldStatus  string    `json:"old_status"`
	NewStatus  string    `json:"new_status"`
	ReasonID   string    `json:"reason_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// DisableReason is an entry of the fixed reason catalog consulted when a
// user is disabled.
type DisableReason struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}
