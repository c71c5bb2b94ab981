package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"silas.org/internal/admin"
	"silas.org/internal/obs"
	"silas.org/internal/policy"
)

// ReadyProbe reports readiness, e.g. by pinging the database.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// AdminService is the surface of the administration service the HTTP layer
// consumes. Satisfied by *admin.Service.
type AdminService interface {
	ListUsers(ctx context.Context, actorProfileID string, filter admin.ProfileFilter, adminsOnly bool) ([]policy.Profile, error)
	GetUserDetail(ctx context.Context, actorProfileID, targetProfileID string) (policy.Profile, error)
	CreateUser(ctx context.Context, actorProfileID string, in admin.CreateUserInput) (policy.Profile, error)
	AssignRole(ctx context.Context, actorProfileID, targetProfileID, roleID string) error
	RevokeRole(ctx context.Context, actorProfileID, targetProfileID, roleID string) error
	DisableUser(ctx context.Context, actorProfileID, targetProfileID, reasonID string) error
	EnableUser(ctx context.Context, actorProfileID, targetProfileID string) error
	ReassignFirm(ctx context.Context, actorProfileID, targetProfileID, newFirmID string) error
	ConvertToMultiFirm(ctx context.Context, actorProfileID, targetProfileID string) error
	GrantFirmAccess(ctx context.Context, actorProfileID, targetProfileID, firmID string, officeIDs []string) (policy.Profile, error)
	DeleteProfile(ctx context.Context, actorProfileID, targetProfileID string) error
	SetOffices(ctx context.Context, actorProfileID, targetProfileID string, officeIDs []string) error
	SwitchActiveProfile(ctx context.Context, userID, profileID string) error
	ListAssignableApps(ctx context.Context, actorProfileID string) ([]policy.App, error)
	ListAssignableRoles(ctx context.Context, actorProfileID, targetProfileID, appID string) ([]policy.AppRole, error)
	FirmSelectionStep(ctx context.Context, actorProfileID, query string) (policy.FirmSelection, bool, error)
	ListFirms(ctx context.Context) ([]policy.Firm, error)
	CreateFirm(ctx context.Context, actorProfileID string, firm policy.Firm) (policy.Firm, error)
	SetFirmParent(ctx context.Context, actorProfileID, firmID, parentFirmID string) error
	ListDisableReasons(ctx context.Context) ([]policy.DisableReason, error)
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string
	admin      AdminService
}

func New(rp ReadyProbe, version string, svc AdminService) *API {
	a := &API{
		mux:        http.NewServeMux(),
		readyProbe: rp,
		version:    version,
		admin:      svc,
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// session
	a.mux.HandleFunc("/v1/session/token", a.handleSessionToken)
	a.mux.HandleFunc("/v1/session/profile", a.handleProfileSwitch)

	// user administration
	a.mux.HandleFunc("/v1/users", a.handleUsersCollection)
	a.mux.HandleFunc("/v1/users/", a.handleUserResource)

	// apps and assignable roles
	a.mux.HandleFunc("/v1/apps", a.handleApps)
	a.mux.HandleFunc("/v1/apps/", a.handleAppResource)

	// firm directory
	a.mux.HandleFunc("/v1/firms", a.handleFirmsCollection)
	a.mux.HandleFunc("/v1/firms/", a.handleFirmResource)

	// disable reason catalog
	a.mux.HandleFunc("/v1/reasons", a.handleReasons)

	// landing page for denied actors
	a.mux.HandleFunc("/not-authorised", a.NotAuthorised)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler wraps the mux with authentication and request metrics.
func (a *API) Handler() http.Handler {
	return obs.Instrument(a.withAuth(a.mux))
}

// --- Handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "silas-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "silas-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

// NotAuthorised is the terminal page an actor lands on after a forbidden
// navigation. Kept deliberately free of detail about what was denied.
func (a *API) NotAuthorised(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusForbidden, map[string]any{
		"error": "you are not authorised to view this page",
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
