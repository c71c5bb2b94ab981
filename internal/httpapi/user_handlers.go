package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"silas.org/internal/admin"
	"silas.org/internal/policy"
	"silas.org/internal/session"
)

type createUserRequest struct {
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	UserType  string   `json:"user_type"`
	FirmID    string   `json:"firm_id"`
	OfficeIDs []string `json:"office_ids"`
	RoleIDs   []string `json:"role_ids"`
}

type assignRoleRequest struct {
	RoleID string `json:"role_id"`
}

type disableRequest struct {
	ReasonID string `json:"reason_id"`
}

type reassignFirmRequest struct {
	FirmID string `json:"firm_id"`
}

type setOfficesRequest struct {
	OfficeIDs []string `json:"office_ids"`
}

type grantFirmAccessRequest struct {
	FirmID    string   `json:"firm_id"`
	OfficeIDs []string `json:"office_ids"`
}

func (a *API) handleUsersCollection(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actor(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		a.listUsers(w, r, actorID)
	case http.MethodPost:
		a.createUser(w, r, actorID)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleUserResource(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actor(w, r)
	if !ok {
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/v1/users/")
	path = strings.Trim(path, "/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.Split(path, "/")
	targetID := parts[0]

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			a.getUser(w, r, actorID, targetID)
		case http.MethodDelete:
			a.deleteProfile(w, r, actorID, targetID)
		default:
			methodNotAllowed(w, r, http.MethodGet, http.MethodDelete)
		}
		return
	}

	switch parts[1] {
	case "roles":
		a.handleUserRoles(w, r, actorID, targetID, parts[2:])
	case "disable":
		if len(parts) != 2 {
			writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}
		a.disableUser(w, r, actorID, targetID)
	case "enable":
		if len(parts) != 2 {
			writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}
		a.enableUser(w, r, actorID, targetID)
	case "firm":
		if len(parts) != 2 {
			writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}
		a.reassignFirm(w, r, actorID, targetID)
	case "offices":
		if len(parts) != 2 {
			writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}
		a.setOffices(w, r, actorID, targetID)
	case "multi-firm":
		if len(parts) != 2 {
			writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}
		a.convertMultiFirm(w, r, actorID, targetID)
	case "profiles":
		if len(parts) != 2 {
			writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}
		a.grantFirmAccess(w, r, actorID, targetID)
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) listUsers(w http.ResponseWriter, r *http.Request, actorID string) {
	q := r.URL.Query()
	filter := admin.ProfileFilter{
		FirmID:   strings.TrimSpace(q.Get("firm_id")),
		UserType: policy.UserType(strings.TrimSpace(q.Get("user_type"))),
		Query:    strings.TrimSpace(q.Get("q")),
	}
	adminsOnly := q.Get("admins_only") == "true"

	users, err := a.admin.ListUsers(r.Context(), actorID, filter, adminsOnly)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": emptyIfNilProfiles(users)})
}

func (a *API) getUser(w http.ResponseWriter, r *http.Request, actorID, targetID string) {
	profile, err := a.admin.GetUserDetail(r.Context(), actorID, targetID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (a *API) createUser(w http.ResponseWriter, r *http.Request, actorID string) {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	profile, err := a.admin.CreateUser(r.Context(), actorID, admin.CreateUserInput{
		Name:      req.Name,
		Email:     req.Email,
		UserType:  policy.UserType(strings.ToUpper(strings.TrimSpace(req.UserType))),
		FirmID:    strings.TrimSpace(req.FirmID),
		OfficeIDs: req.OfficeIDs,
		RoleIDs:   req.RoleIDs,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/users/"+profile.ID)
	writeJSON(w, http.StatusCreated, profile)
}

func (a *API) handleUserRoles(w http.ResponseWriter, r *http.Request, actorID, targetID string, rest []string) {
	switch {
	case len(rest) == 0:
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, http.MethodPost)
			return
		}
		var req assignRoleRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if err := a.admin.AssignRole(r.Context(), actorID, targetID, req.RoleID); err != nil {
			handleServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case len(rest) == 1:
		if r.Method != http.MethodDelete {
			methodNotAllowed(w, r, http.MethodDelete)
			return
		}
		if err := a.admin.RevokeRole(r.Context(), actorID, targetID, rest[0]); err != nil {
			handleServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) disableUser(w http.ResponseWriter, r *http.Request, actorID, targetID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req disableRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.admin.DisableUser(r.Context(), actorID, targetID, req.ReasonID); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) enableUser(w http.ResponseWriter, r *http.Request, actorID, targetID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if err := a.admin.EnableUser(r.Context(), actorID, targetID); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) reassignFirm(w http.ResponseWriter, r *http.Request, actorID, targetID string) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, r, http.MethodPut)
		return
	}
	var req reassignFirmRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.admin.ReassignFirm(r.Context(), actorID, targetID, req.FirmID); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) setOffices(w http.ResponseWriter, r *http.Request, actorID, targetID string) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, r, http.MethodPut)
		return
	}
	var req setOfficesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.admin.SetOffices(r.Context(), actorID, targetID, req.OfficeIDs); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) convertMultiFirm(w http.ResponseWriter, r *http.Request, actorID, targetID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if err := a.admin.ConvertToMultiFirm(r.Context(), actorID, targetID); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) grantFirmAccess(w http.ResponseWriter, r *http.Request, actorID, targetID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req grantFirmAccessRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.FirmID) == "" {
		writeError(w, r, http.StatusBadRequest, "firm_id is required")
		return
	}
	profile, err := a.admin.GrantFirmAccess(r.Context(), actorID, targetID, req.FirmID, req.OfficeIDs)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/users/"+profile.ID)
	writeJSON(w, http.StatusCreated, profile)
}

func (a *API) deleteProfile(w http.ResponseWriter, r *http.Request, actorID, targetID string) {
	if err := a.admin.DeleteProfile(r.Context(), actorID, targetID); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// actor extracts the acting profile id placed in the context by withAuth.
func actor(w http.ResponseWriter, r *http.Request) (string, bool) {
	profileID, ok := session.ProfileIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return "", false
	}
	return profileID, true
}

func emptyIfNilProfiles(profiles []policy.Profile) []policy.Profile {
	if profiles == nil {
		return []policy.Profile{}
	}
	return profiles
}

// handleServiceError maps domain errors onto HTTP statuses. Browser
// navigations get redirected to the not-authorised page instead of a raw
// 403 payload.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, policy.ErrForbidden):
		if wantsHTML(r) {
			http.Redirect(w, r, "/not-authorised", http.StatusSeeOther)
			return
		}
		writeError(w, r, http.StatusForbidden, "not authorised")
	case errors.Is(err, policy.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, policy.ErrInvalidState):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, policy.ErrConflict):
		writeError(w, r, http.StatusConflict, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func wantsHTML(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}
