package httpapi

import (
	"crypto/subtle"
	"net/http"
	"os"
	"strings"
	"time"

	"silas.org/internal/audit"
	"silas.org/internal/session"
)

type tokenRequest struct {
	UserID    string `json:"user_id"`
	ProfileID string `json:"profile_id"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type switchProfileRequest struct {
	ProfileID string `json:"profile_id"`
}

const (
	tokenTTL = 15 * time.Minute

	// gatewayKeyHeader carries the shared key proving the request came
	// through the identity-aware gateway in front of this service.
	gatewayKeyHeader = "X-Gateway-Key"
)

func gatewayAuthorized(r *http.Request) bool {
	secret := os.Getenv("SILAS_GATEWAY_SECRET")
	if secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(r.Header.Get(gatewayKeyHeader)), []byte(secret)) == 1
}

// handleSessionToken issues a signed session token. Identity verification
// happens upstream at the identity provider; the gateway key check ensures
// only the gateway that performed it can mint tokens.
func (a *API) handleSessionToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if !gatewayAuthorized(r) {
		writeError(w, r, http.StatusUnauthorized, "invalid gateway key")
		return
	}

	var req tokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	userID := strings.TrimSpace(req.UserID)
	profileID := strings.TrimSpace(req.ProfileID)
	if userID == "" || profileID == "" {
		writeError(w, r, http.StatusBadRequest, "user_id and profile_id are required")
		return
	}

	token, err := session.GenerateToken(userID, profileID, tokenTTL)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "token generation failed")
		return
	}

	expiresAt := time.Now().UTC().Add(tokenTTL)
	_ = audit.LogEvent(r.Context(), "session.token.issued", map[string]any{
		"user_id":    userID,
		"profile_id": profileID,
		"expires_at": expiresAt.Format(time.RFC3339),
	})

	writeJSON(w, http.StatusOK, tokenResponse{
		Token:     token,
		ExpiresAt: expiresAt,
	})
}

// handleProfileSwitch moves a multi-firm user's session onto another of
// their profiles. The caller then requests a fresh token for the new
// profile.
func (a *API) handleProfileSwitch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	userID, ok := session.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	var req switchProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	req.ProfileID = strings.TrimSpace(req.ProfileID)
	if req.ProfileID == "" {
		writeError(w, r, http.StatusBadRequest, "profile_id is required")
		return
	}
	if err := a.admin.SwitchActiveProfile(r.Context(), userID, req.ProfileID); err != nil {
		handleServiceError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "session.profile.switched", map[string]any{
		"user_id":    userID,
		"profile_id": req.ProfileID,
	})
	w.WriteHeader(http.StatusNoContent)
}
