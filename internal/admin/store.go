package admin

import (
	"context"

	"silas.org/internal/policy"
)

// ProfileFilter narrows a user listing before visibility filtering runs.
type ProfileFilter struct {
	FirmID   string
	UserType policy.UserType
	Query    string
}

// CreateUserInput carries everything needed to provision a user with their
// first profile.
type CreateUserInput struct {
	Name      string
	Email     string
	UserType  policy.UserType
	FirmID    string
	OfficeIDs []string
	RoleIDs   []string
}

// Store describes persistence operations required by the administration
// service. Implementations must make each mutation atomic and idempotent on
// retry.
type Store interface {
	CreateUser(ctx context.Context, user policy.User, profile policy.Profile) (policy.Profile, error)
	AddProfile(ctx context.Context, userID string, profile policy.Profile) (policy.Profile, error)
	GetProfile(ctx context.Context, profileID string) (policy.Profile, error)
	ListProfiles(ctx context.Context, filter ProfileFilter) ([]policy.Profile, error)
	ProfilesForUser(ctx context.Context, userID string) ([]policy.Profile, error)
	DeleteProfile(ctx context.Context, profileID string) error

	AddProfileRole(ctx context.Context, profileID, roleID string) error
	RemoveProfileRole(ctx context.Context, profileID, roleID string) error
	SetProfileOffices(ctx context.Context, profileID string, officeIDs []string) error
	ReassignProfileFirm(ctx context.Context, profileID, firmID string) error
	SwitchActiveProfile(ctx context.Context, userID, profileID string) error

	SetUserEnabled(ctx context.Context, userID string, enabled bool) error
	SetUserMultiFirm(ctx context.Context, userID string, multiFirm bool) error

	GetFirm(ctx context.Context, firmID string) (policy.Firm, error)
	ListFirms(ctx context.Context) ([]policy.Firm, error)
	ChildFirms(ctx context.Context, parentFirmID string) ([]policy.Firm, error)
	CreateFirm(ctx context.Context, firm policy.Firm) (policy.Firm, error)
	SetFirmParent(ctx context.Context, firmID, parentFirmID string) error

	ListApps(ctx context.Context) ([]policy.App, error)
	GetApp(ctx context.Context, appID string) (policy.App, error)
	GetAppRole(ctx context.Context, roleID string) (policy.AppRole, error)
	MatrixEdges(ctx context.Context) ([]policy.RoleAssignment, error)

	AppendAudit(ctx context.Context, record *policy.AuditRecord) error
	ListDisableReasons(ctx context.Context) ([]policy.DisableReason, error)
	GetDisableReason(ctx context.Context, reasonID string) (policy.DisableReason, error)
}

// FirmDirectory is the cached all-firms lookup. Staleness only affects list
// completeness, never an authorization outcome.
type FirmDirectory interface {
	All(ctx context.Context) ([]policy.Firm, error)
	Invalidate()
}
