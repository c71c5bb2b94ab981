package httpapi

import (
	"net/http"
	"testing"
)

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "plain", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "lowercase scheme", header: "bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "surrounding space", header: "  Bearer abc.def.ghi  ", want: "abc.def.ghi"},
		{name: "empty header", header: "", wantErr: true},
		{name: "wrong scheme", header: "Basic dXNlcjpwYXNz", wantErr: true},
		{name: "scheme only", header: "Bearer ", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := extractBearerToken(tc.header)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("token = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestIsPublicPath(t *testing.T) {
	public := []string{"/v1/session/token", "/metrics", "/healthz", "/readyz", "/not-authorised", "/"}
	for _, p := range public {
		if !isPublicPath(p) {
			t.Fatalf("%s should be public", p)
		}
	}
	private := []string{"/v1/users", "/v1/users/p-1", "/v1/firms", "/metricsx", "/healthz/extra"}
	for _, p := range private {
		if isPublicPath(p) {
			t.Fatalf("%s should require a token", p)
		}
	}
}

func TestPublicPathsSkipAuthentication(t *testing.T) {
	api := newTestAPI(t, &stubAdmin{})

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		resp := api.get(path, nil, nil)
		resp.Body.Close()
		if resp.StatusCode == http.StatusUnauthorized {
			t.Fatalf("%s must not require a token", path)
		}
	}
}

func TestOptionsRequestsBypassAuth(t *testing.T) {
	api := newTestAPI(t, &stubAdmin{})

	for _, path := range []string{"/v1/users", "/v1/users/p-1", "/v1/firms"} {
		resp := api.do(http.MethodOptions, path, nil, nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("OPTIONS %s must answer 204 without a token, got %d", path, resp.StatusCode)
		}
	}
}
