package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                              "/",
		"/metrics":                      "/metrics",
		"/v1/users/abc":                 "/v1/users/:id",
		"/v1/users/abc/roles":           "/v1/users/:id/roles",
		"/v1/users/abc/roles/extra":     "/v1/users/abc/roles/extra",
		"/v1/apps/ccms/roles":           "/v1/apps/:id/roles",
		"/v1/firms/selection":           "/v1/firms/:id",
		"/v1/reasons":                   "/v1/reasons",
		"/v1/users/abc/status?force=on": "/v1/users/:id/status",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
