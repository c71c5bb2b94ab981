package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"silas.org/internal/admin"
	"silas.org/internal/policy"
	"silas.org/internal/session"
)

type stubAdmin struct {
	listUsers           func(ctx context.Context, actorProfileID string, filter admin.ProfileFilter, adminsOnly bool) ([]policy.Profile, error)
	getUserDetail       func(ctx context.Context, actorProfileID, targetProfileID string) (policy.Profile, error)
	createUser          func(ctx context.Context, actorProfileID string, in admin.CreateUserInput) (policy.Profile, error)
	assignRole          func(ctx context.Context, actorProfileID, targetProfileID, roleID string) error
	revokeRole          func(ctx context.Context, actorProfileID, targetProfileID, roleID string) error
	disableUser         func(ctx context.Context, actorProfileID, targetProfileID, reasonID string) error
	enableUser          func(ctx context.Context, actorProfileID, targetProfileID string) error
	reassignFirm        func(ctx context.Context, actorProfileID, targetProfileID, newFirmID string) error
	convertToMultiFirm  func(ctx context.Context, actorProfileID, targetProfileID string) error
	grantFirmAccess     func(ctx context.Context, actorProfileID, targetProfileID, firmID string, officeIDs []string) (policy.Profile, error)
	deleteProfile       func(ctx context.Context, actorProfileID, targetProfileID string) error
	setOffices          func(ctx context.Context, actorProfileID, targetProfileID string, officeIDs []string) error
	switchActiveProfile func(ctx context.Context, userID, profileID string) error
	listAssignableApps  func(ctx context.Context, actorProfileID string) ([]policy.App, error)
	listAssignableRoles func(ctx context.Context, actorProfileID, targetProfileID, appID string) ([]policy.AppRole, error)
	firmSelectionStep   func(ctx context.Context, actorProfileID, query string) (policy.FirmSelection, bool, error)
	listFirms           func(ctx context.Context) ([]policy.Firm, error)
	createFirm          func(ctx context.Context, actorProfileID string, firm policy.Firm) (policy.Firm, error)
	setFirmParent       func(ctx context.Context, actorProfileID, firmID, parentFirmID string) error
	listDisableReasons  func(ctx context.Context) ([]policy.DisableReason, error)
}

func (s *stubAdmin) ListUsers(ctx context.Context, actorProfileID string, filter admin.ProfileFilter, adminsOnly bool) ([]policy.Profile, error) {
	return s.listUsers(ctx, actorProfileID, filter, adminsOnly)
}

func (s *stubAdmin) GetUserDetail(ctx context.Context, actorProfileID, targetProfileID string) (policy.Profile, error) {
	return s.getUserDetail(ctx, actorProfileID, targetProfileID)
}

func (s *stubAdmin) CreateUser(ctx context.Context, actorProfileID string, in admin.CreateUserInput) (policy.Profile, error) {
	return s.createUser(ctx, actorProfileID, in)
}

func (s *stubAdmin) AssignRole(ctx context.Context, actorProfileID, targetProfileID, roleID string) error {
	return s.assignRole(ctx, actorProfileID, targetProfileID, roleID)
}

func (s *stubAdmin) RevokeRole(ctx context.Context, actorProfileID, targetProfileID, roleID string) error {
	return s.revokeRole(ctx, actorProfileID, targetProfileID, roleID)
}

func (s *stubAdmin) DisableUser(ctx context.Context, actorProfileID, targetProfileID, reasonID string) error {
	return s.disableUser(ctx, actorProfileID, targetProfileID, reasonID)
}

func (s *stubAdmin) EnableUser(ctx context.Context, actorProfileID, targetProfileID string) error {
	return s.enableUser(ctx, actorProfileID, targetProfileID)
}

func (s *stubAdmin) ReassignFirm(ctx context.Context, actorProfileID, targetProfileID, newFirmID string) error {
	return s.reassignFirm(ctx, actorProfileID, targetProfileID, newFirmID)
}

func (s *stubAdmin) GrantFirmAccess(ctx context.Context, actorProfileID, targetProfileID, firmID string, officeIDs []string) (policy.Profile, error) {
	return s.grantFirmAccess(ctx, actorProfileID, targetProfileID, firmID, officeIDs)
}

func (s *stubAdmin) ConvertToMultiFirm(ctx context.Context, actorProfileID, targetProfileID string) error {
	return s.convertToMultiFirm(ctx, actorProfileID, targetProfileID)
}

func (s *stubAdmin) DeleteProfile(ctx context.Context, actorProfileID, targetProfileID string) error {
	return s.deleteProfile(ctx, actorProfileID, targetProfileID)
}

func (s *stubAdmin) SetOffices(ctx context.Context, actorProfileID, targetProfileID string, officeIDs []string) error {
	return s.setOffices(ctx, actorProfileID, targetProfileID, officeIDs)
}

func (s *stubAdmin) SwitchActiveProfile(ctx context.Context, userID, profileID string) error {
	return s.switchActiveProfile(ctx, userID, profileID)
}

func (s *stubAdmin) ListAssignableApps(ctx context.Context, actorProfileID string) ([]policy.App, error) {
	return s.listAssignableApps(ctx, actorProfileID)
}

func (s *stubAdmin) ListAssignableRoles(ctx context.Context, actorProfileID, targetProfileID, appID string) ([]policy.AppRole, error) {
	return s.listAssignableRoles(ctx, actorProfileID, targetProfileID, appID)
}

func (s *stubAdmin) FirmSelectionStep(ctx context.Context, actorProfileID, query string) (policy.FirmSelection, bool, error) {
	return s.firmSelectionStep(ctx, actorProfileID, query)
}

func (s *stubAdmin) ListFirms(ctx context.Context) ([]policy.Firm, error) {
	return s.listFirms(ctx)
}

func (s *stubAdmin) CreateFirm(ctx context.Context, actorProfileID string, firm policy.Firm) (policy.Firm, error) {
	return s.createFirm(ctx, actorProfileID, firm)
}

func (s *stubAdmin) SetFirmParent(ctx context.Context, actorProfileID, firmID, parentFirmID string) error {
	return s.setFirmParent(ctx, actorProfileID, firmID, parentFirmID)
}

func (s *stubAdmin) ListDisableReasons(ctx context.Context) ([]policy.DisableReason, error) {
	return s.listDisableReasons(ctx)
}

type apiClient struct {
	baseURL string
	client  *http.Client
	t       *testing.T
}

func newTestAPI(t *testing.T, svc AdminService) *apiClient {
	t.Helper()

	t.Setenv("SILAS_AUTH_SECRET", "test-secret")
	t.Setenv("SILAS_GATEWAY_SECRET", "test-gateway-key")
	session.ResetSecretForTests()
	t.Cleanup(session.ResetSecretForTests)

	api := New(ReadyProbe{}, "test", svc)
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	client := srv.Client()
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return &apiClient{
		baseURL: srv.URL,
		client:  client,
		t:       t,
	}
}

func (c *apiClient) do(method, path string, body any, headers map[string]string) *http.Response {
	c.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
	}
	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("do request: %v", err)
	}
	return resp
}

func (c *apiClient) get(path string, params url.Values, headers map[string]string) *http.Response {
	c.t.Helper()
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		c.t.Fatalf("parse url: %v", err)
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}
	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("get request: %v", err)
	}
	return resp
}

func (c *apiClient) obtainToken(userID, profileID string) string {
	c.t.Helper()
	resp := c.do(http.MethodPost, "/v1/session/token", map[string]any{
		"user_id":    userID,
		"profile_id": profileID,
	}, map[string]string{gatewayKeyHeader: "test-gateway-key"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.t.Fatalf("unexpected token status: %d", resp.StatusCode)
	}
	var payload tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.t.Fatalf("decode token response: %v", err)
	}
	if payload.Token == "" {
		c.t.Fatalf("empty token issued")
	}
	return payload.Token
}

func decode[T any](t *testing.T, r *http.Response) T {
	t.Helper()
	defer r.Body.Close()
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}
