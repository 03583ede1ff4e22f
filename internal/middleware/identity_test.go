package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIdentityMiddlewareExtractsHeaders(t *testing.T) {
	var gotUser, gotInstall string
	h := IdentityMiddleware()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotUser = GetUserID(r.Context())
		gotInstall = GetInstallID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(UserIDHeader, "user-1")
	req.Header.Set(InstallIDHeader, "install-1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if gotUser != "user-1" {
		t.Fatalf("user id = %q", gotUser)
	}
	if gotInstall != "install-1" {
		t.Fatalf("install id = %q", gotInstall)
	}
}

func TestIdentityMiddlewareOptionalHeaders(t *testing.T) {
	var gotUser, gotInstall string
	h := IdentityMiddleware()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotUser = GetUserID(r.Context())
		gotInstall = GetInstallID(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if gotUser != "" || gotInstall != "" {
		t.Fatalf("expected empty identity, got %q/%q", gotUser, gotInstall)
	}
}

func TestGettersOnBareContext(t *testing.T) {
	if GetUserID(context.Background()) != "" || GetInstallID(context.Background()) != "" {
		t.Fatal("expected empty identity on bare context")
	}
}
