package httpapi

import (
	"net/http"
	"strings"

	"silas.org/internal/policy"
)

type createFirmRequest struct {
	Name       string `json:"name"`
	Code       string `json:"code"`
	ParentType bool   `json:"parent_type"`
}

type setFirmParentRequest struct {
	ParentFirmID string `json:"parent_firm_id"`
}

func (a *API) handleApps(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actor(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	apps, err := a.admin.ListAssignableApps(r.Context(), actorID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if apps == nil {
		apps = []policy.App{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": apps})
}

func (a *API) handleAppResource(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actor(w, r)
	if !ok {
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/v1/apps/")
	path = strings.Trim(path, "/")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "roles" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	targetID := strings.TrimSpace(r.URL.Query().Get("target"))
	if targetID == "" {
		writeError(w, r, http.StatusBadRequest, "target query parameter is required")
		return
	}
	roles, err := a.admin.ListAssignableRoles(r.Context(), actorID, targetID, parts[0])
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if roles == nil {
		roles = []policy.AppRole{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": roles})
}

func (a *API) handleFirmsCollection(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actor(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		firms, err := a.admin.ListFirms(r.Context())
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		if firms == nil {
			firms = []policy.Firm{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": firms})
	case http.MethodPost:
		var req createFirmRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		firm, err := a.admin.CreateFirm(r.Context(), actorID, policy.Firm{
			Name:       req.Name,
			Code:       strings.TrimSpace(req.Code),
			ParentType: req.ParentType,
		})
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		w.Header().Set("Location", "/v1/firms/"+firm.ID)
		writeJSON(w, http.StatusCreated, firm)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleFirmResource(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actor(w, r)
	if !ok {
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/v1/firms/")
	path = strings.Trim(path, "/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	// The selection step sits under the collection rather than one firm.
	if path == "selection" {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		a.firmSelection(w, r, actorID)
		return
	}

	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[1] != "parent" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodPut {
		methodNotAllowed(w, r, http.MethodPut)
		return
	}
	var req setFirmParentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	req.ParentFirmID = strings.TrimSpace(req.ParentFirmID)
	if req.ParentFirmID == "" {
		writeError(w, r, http.StatusBadRequest, "parent_firm_id is required")
		return
	}
	if err := a.admin.SetFirmParent(r.Context(), actorID, parts[0], req.ParentFirmID); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) firmSelection(w http.ResponseWriter, r *http.Request, actorID string) {
	selection, required, err := a.admin.FirmSelectionStep(r.Context(), actorID, r.URL.Query().Get("q"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"selection_required": required,
		"parent":             selection.Parent,
		"children":           selection.Children,
	})
}

func (a *API) handleReasons(w http.ResponseWriter, r *http.Request) {
	if _, ok := actor(w, r); !ok {
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	reasons, err := a.admin.ListDisableReasons(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if reasons == nil {
		reasons = []policy.DisableReason{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": reasons})
}
