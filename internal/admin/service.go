package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"silas.org/internal/audit"
	"silas.org/internal/ids"
	"silas.org/internal/obs"
	"silas.org/internal/policy"
)

const (
	statusActive   = "active"
	statusDisabled = "disabled"
)

// Service orchestrates the policy engine against the store: it loads the
// aggregates a decision needs, authorizes, applies the mutation and records
// the audit trail. Every write path re-resolves the actor against the
// latest persisted state before applying the change.
type Service struct {
	store Store
	firms FirmDirectory
	now   func() time.Time
}

// Option configures Service behavior.
type Option func(*Service) error

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Service) error {
		if fn != nil {
			s.now = fn
		}
		return nil
	}
}

// WithFirmDirectory plugs in the cached firm lookup used for firm listings.
func WithFirmDirectory(dir FirmDirectory) Option {
	return func(s *Service) error {
		s.firms = dir
		return nil
	}
}

// NewService constructs the administration service.
func NewService(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("admin: store is required")
	}
	svc := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		if err := opt(svc); err != nil {
			return nil, err
		}
	}
	return svc, nil
}

// engine builds a policy engine over the current role assignment matrix.
func (s *Service) engine(ctx context.Context) (*policy.Engine, error) {
	edges, err := s.store.MatrixEdges(ctx)
	if err != nil {
		return nil, fmt.Errorf("load role assignment matrix: %w", err)
	}
	return policy.NewEngine(policy.NewMatrix(edges)), nil
}

// load fetches actor and target profiles fresh from the store.
func (s *Service) load(ctx context.Context, actorProfileID, targetProfileID string) (actor, target policy.Profile, err error) {
	actor, err = s.store.GetProfile(ctx, actorProfileID)
	if err != nil {
		return policy.Profile{}, policy.Profile{}, err
	}
	target, err = s.store.GetProfile(ctx, targetProfileID)
	if err != nil {
		return policy.Profile{}, policy.Profile{}, err
	}
	return actor, target, nil
}

func decide(op string, allowed bool) error {
	obs.PolicyDecision(op, allowed)
	if !allowed {
		return fmt.Errorf("%w: %s", policy.ErrForbidden, op)
	}
	return nil
}

// ListUsers returns the candidate profiles the actor may see. adminsOnly
// narrows the listing to firm admins and global admins.
func (s *Service) ListUsers(ctx context.Context, actorProfileID string, filter ProfileFilter, adminsOnly bool) ([]policy.Profile, error) {
	actor, err := s.store.GetProfile(ctx, actorProfileID)
	if err != nil {
		return nil, err
	}
	eng, err := s.engine(ctx)
	if err != nil {
		return nil, err
	}
	candidates, err := s.store.ListProfiles(ctx, filter)
	if err != nil {
		return nil, err
	}
	return eng.FilterUsers(actor, candidates, adminsOnly), nil
}

// GetUserDetail loads a target profile after an access check. Not-found and
// forbidden stay distinct outcomes for the presentation layer.
func (s *Service) GetUserDetail(ctx context.Context, actorProfileID, targetProfileID string) (policy.Profile, error) {
	actor, target, err := s.load(ctx, actorProfileID, targetProfileID)
	if err != nil {
		return policy.Profile{}, err
	}
	eng, err := s.engine(ctx)
	if err != nil {
		return policy.Profile{}, err
	}
	if err := decide("profile.access", eng.CanAccessProfile(actor, target)); err != nil {
		return policy.Profile{}, err
	}
	return target, nil
}

// ListAssignableApps returns the apps from which the actor may grant roles.
func (s *Service) ListAssignableApps(ctx context.Context, actorProfileID string) ([]policy.App, error) {
	actor, err := s.store.GetProfile(ctx, actorProfileID)
	if err != nil {
		return nil, err
	}
	eng, err := s.engine(ctx)
	if err != nil {
		return nil, err
	}
	apps, err := s.store.ListApps(ctx)
	if err != nil {
		return nil, err
	}
	return eng.FilterApps(actor, apps), nil
}

// ListAssignableRoles returns the roles of one app the actor may grant to
// the target profile.
func (s *Service) ListAssignableRoles(ctx context.Context, actorProfileID, targetProfileID, appID string) ([]policy.AppRole, error) {
	actor, target, err := s.load(ctx, actorProfileID, targetProfileID)
	if err != nil {
		return nil, err
	}
	app, err := s.store.GetApp(ctx, appID)
	if err != nil {
		return nil, err
	}
	eng, err := s.engine(ctx)
	if err != nil {
		return nil, err
	}
	if err := decide("profile.access", eng.CanAccessProfile(actor, target)); err != nil {
		return nil, err
	}
	return eng.FilterAssignableRoles(actor, target, app), nil
}

// AssignRole grants a role to the target profile.
func (s *Service) AssignRole(ctx context.Context, actorProfileID, targetProfileID, roleID string) error {
	roleID = strings.TrimSpace(roleID)
	if roleID == "" {
		return fmt.Errorf("%w: role_id is required", policy.ErrInvalidState)
	}
	actor, target, err := s.load(ctx, actorProfileID, targetProfileID)
	if err != nil {
		return err
	}
	role, err := s.store.GetAppRole(ctx, roleID)
	if err != nil {
		return err
	}
	eng, err := s.engine(ctx)
	if err != nil {
		return err
	}
	if err := decide("role.assign", eng.CanAssignRole(actor, target, role)); err != nil {
		return err
	}
	if err := s.store.AddProfileRole(ctx, target.ID, role.ID); err != nil {
		return err
	}
	_ = audit.LogEvent(ctx, "user.role.assigned", map[string]any{
		"actor_profile":  actor.ID,
		"target_profile": target.ID,
		"role_id":        role.ID,
		"role_name":      role.Name,
	})
	return nil
}

// RevokeRole removes a role from the target profile under the same rules as
// grant.
func (s *Service) RevokeRole(ctx context.Context, actorProfileID, targetProfileID, roleID string) error {
	roleID = strings.TrimSpace(roleID)
	if roleID == "" {
		return fmt.Errorf("%w: role_id is required", policy.ErrInvalidState)
	}
	actor, target, err := s.load(ctx, actorProfileID, targetProfileID)
	if err != nil {
		return err
	}
	role, err := s.store.GetAppRole(ctx, roleID)
	if err != nil {
		return err
	}
	eng, err := s.engine(ctx)
	if err != nil {
		return err
	}
	if err := decide("role.revoke", eng.CanRevokeRole(actor, target, role)); err != nil {
		return err
	}
	if err := s.store.RemoveProfileRole(ctx, target.ID, role.ID); err != nil {
		return err
	}
	_ = audit.LogEvent(ctx, "user.role.revoked", map[string]any{
		"actor_profile":  actor.ID,
		"target_profile": target.ID,
		"role_id":        role.ID,
	})
	return nil
}

// CreateUser provisions a user with their first profile.
func (s *Service) CreateUser(ctx context.Context, actorProfileID string, in CreateUserInput) (policy.Profile, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Name == "" {
		return policy.Profile{}, fmt.Errorf("%w: name is required", policy.ErrInvalidState)
	}
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return policy.Profile{}, fmt.Errorf("%w: valid email is required", policy.ErrInvalidState)
	}
	if !in.UserType.Valid() {
		return policy.Profile{}, fmt.Errorf("%w: unsupported user type %s", policy.ErrInvalidState, in.UserType)
	}

	actor, err := s.store.GetProfile(ctx, actorProfileID)
	if err != nil {
		return policy.Profile{}, err
	}
	eng, err := s.engine(ctx)
	if err != nil {
		return policy.Profile{}, err
	}
	if err := decide("user.create", eng.CanCreateUser(actor, in.UserType)); err != nil {
		return policy.Profile{}, err
	}

	profile := policy.Profile{
		ID:       ids.New(),
		UserType: in.UserType,
		Active:   true,
	}
	if in.UserType.External() {
		if in.FirmID == "" {
			return policy.Profile{}, fmt.Errorf("%w: external users require a firm", policy.ErrInvalidState)
		}
		firm, err := s.resolveTargetFirm(ctx, actor, in.FirmID)
		if err != nil {
			return policy.Profile{}, err
		}
		if !policy.FirmAssignable(firm) {
			return policy.Profile{}, fmt.Errorf("%w: firm %s has no offices", policy.ErrInvalidState, firm.ID)
		}
		offices, err := selectOffices(firm, in.OfficeIDs)
		if err != nil {
			return policy.Profile{}, err
		}
		profile.Firm = &firm
		profile.Offices = offices
	} else if in.FirmID != "" {
		return policy.Profile{}, fmt.Errorf("%w: internal users carry no firm", policy.ErrInvalidState)
	}

	user := policy.User{
		ID:      ids.New(),
		Name:    in.Name,
		Email:   in.Email,
		Enabled: true,
	}
	created, err := s.store.CreateUser(ctx, user, profile)
	if err != nil {
		return policy.Profile{}, err
	}

	for _, roleID := range dedupeStrings(in.RoleIDs) {
		role, err := s.store.GetAppRole(ctx, roleID)
		if err != nil {
			return policy.Profile{}, err
		}
		if err := decide("role.assign", eng.CanAssignRole(actor, created, role)); err != nil {
			return policy.Profile{}, err
		}
		if err := s.store.AddProfileRole(ctx, created.ID, role.ID); err != nil {
			return policy.Profile{}, err
		}
	}

	_ = audit.LogEvent(ctx, "user.created", map[string]any{
		"actor_profile":  actor.ID,
		"target_profile": created.ID,
		"user_type":      string(in.UserType),
	})
	return created, nil
}

// resolveTargetFirm checks that the actor may place a user at the firm:
// their own firm always, a direct child through delegation, or any firm for
// unscoped actors.
func (s *Service) resolveTargetFirm(ctx context.Context, actor policy.Profile, firmID string) (policy.Firm, error) {
	firm, err := s.store.GetFirm(ctx, firmID)
	if err != nil {
		return policy.Firm{}, err
	}
	if !policy.FirmScoped(actor) {
		return firm, nil
	}
	if actor.Firm == nil {
		return policy.Firm{}, fmt.Errorf("%w: firm selection", policy.ErrForbidden)
	}
	if actor.Firm.ID == firm.ID || policy.DelegatableChildFirm(*actor.Firm, firm) {
		return firm, nil
	}
	return policy.Firm{}, fmt.Errorf("%w: firm selection", policy.ErrForbidden)
}

func selectOffices(firm policy.Firm, officeIDs []string) ([]policy.Office, error) {
	if len(officeIDs) == 0 {
		return nil, nil
	}
	byID := make(map[string]policy.Office, len(firm.Offices))
	for _, o := range firm.Offices {
		byID[o.ID] = o
	}
	var offices []policy.Office
	for _, id := range dedupeStrings(officeIDs) {
		o, ok := byID[id]
		if !ok {
			// Route through the same validation as profile edits so the
			// caller sees a consistent error.
			o = policy.Office{ID: id, FirmID: "unknown"}
		}
		offices = append(offices, o)
	}
	if err := policy.ValidateOffices(&firm, offices); err != nil {
		return nil, err
	}
	return offices, nil
}

// SetOffices replaces the target profile's office set.
func (s *Service) SetOffices(ctx context.Context, actorProfileID, targetProfileID string, officeIDs []string) error {
	actor, target, err := s.load(ctx, actorProfileID, targetProfileID)
	if err != nil {
		return err
	}
	eng, err := s.engine(ctx)
	if err != nil {
		return err
	}
	if err := decide("profile.access", eng.CanAccessProfile(actor, target)); err != nil {
		return err
	}
	if target.Firm == nil {
		return fmt.Errorf("%w: internal profiles carry no offices", policy.ErrInvalidState)
	}
	offices, err := selectOffices(*target.Firm, officeIDs)
	if err != nil {
		return err
	}
	idsOnly := make([]string, 0, len(offices))
	for _, o := range offices {
		idsOnly = append(idsOnly, o.ID)
	}
	return s.store.SetProfileOffices(ctx, target.ID, idsOnly)
}

// DisableUser flips the target user to disabled and appends exactly one
// audit record. A missing or unknown reason is a validation error and
// leaves the enabled flag untouched. Disabling an already disabled user is
// a no-op success.
func (s *Service) DisableUser(ctx context.Context, actorProfileID, targetProfileID, reasonID string) error {
	reasonID = strings.TrimSpace(reasonID)
	if reasonID == "" {
		return fmt.Errorf("%w: reason_id is required", policy.ErrInvalidState)
	}
	reason, err := s.store.GetDisableReason(ctx, reasonID)
	if err != nil {
		if errors.Is(err, policy.ErrNotFound) {
			return fmt.Errorf("%w: unknown disable reason %s", policy.ErrInvalidState, reasonID)
		}
		return err
	}
	actor, target, err := s.load(ctx, actorProfileID, targetProfileID)
	if err != nil {
		return err
	}
	eng, err := s.engine(ctx)
	if err != nil {
		return err
	}
	if err := decide("user.disable", eng.CanEnableOrDisable(actor, target)); err != nil {
		return err
	}
	if !target.User.Enabled {
		return nil
	}
	if err := s.store.SetUserEnabled(ctx, target.User.ID, false); err != nil {
		return err
	}
	if err := s.store.AppendAudit(ctx, &policy.AuditRecord{
		ID:         ids.New(),
		ActorID:    actor.ID,
		TargetID:   target.ID,
		OldStatus:  statusActive,
		NewStatus:  statusDisabled,
		ReasonID:   reason.ID,
		OccurredAt: s.now().UTC(),
	}); err != nil {
		return err
	}
	_ = audit.LogEvent(ctx, "user.disabled", map[string]any{
		"actor_profile":  actor.ID,
		"target_profile": target.ID,
		"reason_id":      reason.ID,
	})
	return nil
}

// EnableUser re-enables a disabled user under the same permission as
// disabling. Enabling an already enabled user is a no-op success.
func (s *Service) EnableUser(ctx context.Context, actorProfileID, targetProfileID string) error {
	actor, target, err := s.load(ctx, actorProfileID, targetProfileID)
	if err != nil {
		return err
	}
	eng, err := s.engine(ctx)
	if err != nil {
		return err
	}
	if err := decide("user.enable", eng.CanEnableOrDisable(actor, target)); err != nil {
		return err
	}
	if target.User.Enabled {
		return nil
	}
	if err := s.store.SetUserEnabled(ctx, target.User.ID, true); err != nil {
		return err
	}
	if err := s.store.AppendAudit(ctx, &policy.AuditRecord{
		ID:         ids.New(),
		ActorID:    actor.ID,
		TargetID:   target.ID,
		OldStatus:  statusDisabled,
		NewStatus:  statusActive,
		OccurredAt: s.now().UTC(),
	}); err != nil {
		return err
	}
	_ = audit.LogEvent(ctx, "user.enabled", map[string]any{
		"actor_profile":  actor.ID,
		"target_profile": target.ID,
	})
	return nil
}

// ReassignFirm moves the target profile to another firm and clears its
// offices, which are firm-scoped and do not carry over. Reassigning to the
// current firm is a validation error, not a silent success.
func (s *Service) ReassignFirm(ctx context.Context, actorProfileID, targetProfileID, newFirmID string) error {
	newFirmID = strings.TrimSpace(newFirmID)
	if newFirmID == "" {
		return fmt.Errorf("%w: firm_id is required", policy.ErrInvalidState)
	}
	actor, target, err := s.load(ctx, actorProfileID, targetProfileID)
	if err != nil {
		return err
	}
	eng, err := s.engine(ctx)
	if err != nil {
		return err
	}
	if err := decide("user.firm.reassign", eng.CanReassignFirm(actor, target)); err != nil {
		return err
	}
	firm, err := s.store.GetFirm(ctx, newFirmID)
	if err != nil {
		return err
	}
	if target.Firm != nil && target.Firm.ID == firm.ID {
		return fmt.Errorf("%w: profile already belongs to firm %s", policy.ErrInvalidState, firm.ID)
	}
	if !policy.FirmAssignable(firm) {
		return fmt.Errorf("%w: firm %s has no offices", policy.ErrInvalidState, firm.ID)
	}
	if err := s.store.ReassignProfileFirm(ctx, target.ID, firm.ID); err != nil {
		return err
	}
	_ = audit.LogEvent(ctx, "user.firm.reassigned", map[string]any{
		"actor_profile":  actor.ID,
		"target_profile": target.ID,
		"firm_id":        firm.ID,
	})
	return nil
}

// ConvertToMultiFirm marks the target's user as multi-firm. Converting an
// already converted user is a no-op success.
func (s *Service) ConvertToMultiFirm(ctx context.Context, actorProfileID, targetProfileID string) error {
	actor, target, err := s.load(ctx, actorProfileID, targetProfileID)
	if err != nil {
		return err
	}
	eng, err := s.engine(ctx)
	if err != nil {
		return err
	}
	if err := decide("user.multi_firm.convert", eng.CanConvertToMultiFirm(actor, target)); err != nil {
		return err
	}
	if target.User.MultiFirm {
		return nil
	}
	if err := s.store.SetUserMultiFirm(ctx, target.User.ID, true); err != nil {
		return err
	}
	_ = audit.LogEvent(ctx, "user.multi_firm.converted", map[string]any{
		"actor_profile":  actor.ID,
		"target_profile": target.ID,
	})
	return nil
}

// GrantFirmAccess adds a profile at another firm to an existing multi-firm
// user. The actor needs the same authority as creating a user of the
// target's type, and firm resolution honors delegation exactly as user
// creation does. The new profile starts inactive; the user switches to it
// explicitly. A user holds at most one profile per firm.
func (s *Service) GrantFirmAccess(ctx context.Context, actorProfileID, targetProfileID, firmID string, officeIDs []string) (policy.Profile, error) {
	firmID = strings.TrimSpace(firmID)
	if firmID == "" {
		return policy.Profile{}, fmt.Errorf("%w: firm is required", policy.ErrInvalidState)
	}

	actor, target, err := s.load(ctx, actorProfileID, targetProfileID)
	if err != nil {
		return policy.Profile{}, err
	}
	if !target.UserType.External() {
		return policy.Profile{}, fmt.Errorf("%w: internal users carry no firm", policy.ErrInvalidState)
	}
	if !target.User.MultiFirm {
		return policy.Profile{}, fmt.Errorf("%w: user %s is not multi-firm", policy.ErrInvalidState, target.User.ID)
	}

	eng, err := s.engine(ctx)
	if err != nil {
		return policy.Profile{}, err
	}
	if err := decide("profile.access", eng.CanAccessProfile(actor, target)); err != nil {
		return policy.Profile{}, err
	}
	if err := decide("user.create", eng.CanCreateUser(actor, target.UserType)); err != nil {
		return policy.Profile{}, err
	}

	firm, err := s.resolveTargetFirm(ctx, actor, firmID)
	if err != nil {
		return policy.Profile{}, err
	}
	if !policy.FirmAssignable(firm) {
		return policy.Profile{}, fmt.Errorf("%w: firm %s has no offices", policy.ErrInvalidState, firm.ID)
	}

	existing, err := s.store.ProfilesForUser(ctx, target.User.ID)
	if err != nil {
		return policy.Profile{}, err
	}
	for _, p := range existing {
		if p.Firm != nil && p.Firm.ID == firm.ID {
			return policy.Profile{}, fmt.Errorf("%w: user already holds a profile at firm %s", policy.ErrConflict, firm.ID)
		}
	}

	offices, err := selectOffices(firm, officeIDs)
	if err != nil {
		return policy.Profile{}, err
	}

	profile := policy.Profile{
		ID:       ids.New(),
		UserType: target.UserType,
		Firm:     &firm,
		Offices:  offices,
	}
	created, err := s.store.AddProfile(ctx, target.User.ID, profile)
	if err != nil {
		return policy.Profile{}, err
	}

	_ = audit.LogEvent(ctx, "user.firm.granted", map[string]any{
		"actor_profile":  actor.ID,
		"target_profile": created.ID,
		"firm":           firm.ID,
	})
	return created, nil
}

// DeleteProfile removes the target profile. Role removal happens inside the
// store's deletion cascade and is exempt from the grant/revoke symmetry
// rule.
func (s *Service) DeleteProfile(ctx context.Context, actorProfileID, targetProfileID string) error {
	actor, target, err := s.load(ctx, actorProfileID, targetProfileID)
	if err != nil {
		return err
	}
	eng, err := s.engine(ctx)
	if err != nil {
		return err
	}
	if err := decide("profile.delete", eng.CanDeleteProfile(actor, target)); err != nil {
		return err
	}
	if err := s.store.DeleteProfile(ctx, target.ID); err != nil {
		return err
	}
	_ = audit.LogEvent(ctx, "user.profile.deleted", map[string]any{
		"actor_profile":  actor.ID,
		"target_profile": target.ID,
	})
	return nil
}

// SwitchActiveProfile atomically deactivates the user's current profile and
// activates the requested one. Only multi-firm users switch.
func (s *Service) SwitchActiveProfile(ctx context.Context, userID, profileID string) error {
	profiles, err := s.store.ProfilesForUser(ctx, userID)
	if err != nil {
		return err
	}
	var match *policy.Profile
	for i := range profiles {
		if profiles[i].ID == profileID {
			match = &profiles[i]
			break
		}
	}
	if match == nil {
		return fmt.Errorf("%w: profile %s does not belong to user %s", policy.ErrNotFound, profileID, userID)
	}
	if !match.User.MultiFirm {
		return fmt.Errorf("%w: user %s is not multi-firm", policy.ErrInvalidState, userID)
	}
	if match.Active {
		return nil
	}
	return s.store.SwitchActiveProfile(ctx, userID, profileID)
}

// FirmSelectionStep computes the firm-selection step for a multi-firm
// grant. The boolean reports whether the step must be offered at all;
// child-firm actors and parents without children skip it.
func (s *Service) FirmSelectionStep(ctx context.Context, actorProfileID, query string) (policy.FirmSelection, bool, error) {
	actor, err := s.store.GetProfile(ctx, actorProfileID)
	if err != nil {
		return policy.FirmSelection{}, false, err
	}
	if actor.Firm == nil {
		return policy.FirmSelection{}, false, fmt.Errorf("%w: firm selection", policy.ErrForbidden)
	}
	children, err := s.store.ChildFirms(ctx, actor.Firm.ID)
	if err != nil {
		return policy.FirmSelection{}, false, err
	}
	if !policy.SelectionRequired(*actor.Firm, children) {
		own := *actor.Firm
		return policy.FirmSelection{Parent: &own, Children: []policy.Firm{}}, false, nil
	}
	return policy.VisibleFirms(*actor.Firm, children, query), true, nil
}

// ListFirms serves the firm directory, preferring the cache when present.
func (s *Service) ListFirms(ctx context.Context) ([]policy.Firm, error) {
	if s.firms != nil {
		return s.firms.All(ctx)
	}
	return s.store.ListFirms(ctx)
}

// CreateFirm registers a new firm and invalidates the cached directory.
func (s *Service) CreateFirm(ctx context.Context, actorProfileID string, firm policy.Firm) (policy.Firm, error) {
	firm.Name = strings.TrimSpace(firm.Name)
	if firm.Name == "" {
		return policy.Firm{}, fmt.Errorf("%w: firm name is required", policy.ErrInvalidState)
	}
	actor, err := s.store.GetProfile(ctx, actorProfileID)
	if err != nil {
		return policy.Firm{}, err
	}
	perms := policy.ResolvePermissions(actor)
	if err := decide("firm.create", perms.Has(policy.PermEditUserFirm)); err != nil {
		return policy.Firm{}, err
	}
	if firm.ID == "" {
		firm.ID = ids.New()
	}
	created, err := s.store.CreateFirm(ctx, firm)
	if err != nil {
		return policy.Firm{}, err
	}
	if s.firms != nil {
		s.firms.Invalidate()
	}
	_ = audit.LogEvent(ctx, "firm.created", map[string]any{
		"actor_profile": actor.ID,
		"firm_id":       created.ID,
	})
	return created, nil
}

// SetFirmParent links a firm under a parent, enforcing the two-level
// hierarchy at construction time.
func (s *Service) SetFirmParent(ctx context.Context, actorProfileID, firmID, parentFirmID string) error {
	actor, err := s.store.GetProfile(ctx, actorProfileID)
	if err != nil {
		return err
	}
	perms := policy.ResolvePermissions(actor)
	if err := decide("firm.parent.set", perms.Has(policy.PermEditUserFirm)); err != nil {
		return err
	}
	child, err := s.store.GetFirm(ctx, firmID)
	if err != nil {
		return err
	}
	parent, err := s.store.GetFirm(ctx, parentFirmID)
	if err != nil {
		return err
	}
	if err := policy.ValidateFirmParent(child, parent); err != nil {
		return err
	}
	if err := s.store.SetFirmParent(ctx, child.ID, parent.ID); err != nil {
		return err
	}
	if s.firms != nil {
		s.firms.Invalidate()
	}
	return nil
}

// ListDisableReasons exposes the fixed reason catalog.
func (s *Service) ListDisableReasons(ctx context.Context) ([]policy.DisableReason, error) {
	return s.store.ListDisableReasons(ctx)
}

func dedupeStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := set[v]; ok {
			continue
		}
		set[v] = struct{}{}
		result = append(result, v)
	}
	return result
}
