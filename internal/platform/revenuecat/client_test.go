package revenuecat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL, APIKey: "sk_test"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	c.now = func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }
	return c
}

func TestNewRequiresConfig(t *testing.T) {
	if _, err := New(Config{APIKey: "k"}); err == nil {
		t.Fatal("expected error for missing base URL")
	}
	if _, err := New(Config{BaseURL: "https://example.com"}); err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestGetCustomerInfoParsesActiveSubscriptions(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/subscribers/user-1" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test" {
			t.Fatalf("authorization = %q", got)
		}
		_, _ = w.Write([]byte(`{
			"subscriber": {
				"subscriptions": {
					"premium_monthly": {"expires_date": "2026-12-31T00:00:00Z"},
					"old_plan": {"expires_date": "2025-01-01T00:00:00Z"},
					"lifetime": {"expires_date": null}
				}
			}
		}`))
	})

	info, err := c.GetCustomerInfo(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get customer info: %v", err)
	}
	if info.AppUserID != "user-1" {
		t.Fatalf("app user id = %q", info.AppUserID)
	}
	if len(info.ActiveSubscriptions) != 2 {
		t.Fatalf("active = %v, want premium_monthly and lifetime", info.ActiveSubscriptions)
	}
	if !info.HasActive() {
		t.Fatal("expected active subscription")
	}
}

func TestGetCustomerInfoNoSubscriptions(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"subscriber": {"subscriptions": {}}}`))
	})

	info, err := c.GetCustomerInfo(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get customer info: %v", err)
	}
	if info.HasActive() {
		t.Fatalf("expected no active subscriptions, got %v", info.ActiveSubscriptions)
	}
}

func TestGetOfferingsFiltersToCurrent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"current_offering_id": "default",
			"offerings": [
				{
					"identifier": "default",
					"packages": [
						{"identifier": "monthly", "platform_product_identifier": "premium_monthly", "price_string": "$4.99"},
						{"identifier": "annual", "platform_product_identifier": "premium_annual", "price_string": "$39.99"}
					]
				},
				{
					"identifier": "legacy",
					"packages": [{"identifier": "old", "platform_product_identifier": "old_plan"}]
				}
			]
		}`))
	})

	packages, err := c.GetOfferings(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get offerings: %v", err)
	}
	if len(packages) != 2 {
		t.Fatalf("packages = %d, want 2", len(packages))
	}
	if packages[0].Identifier != "monthly" || packages[0].ProductID != "premium_monthly" {
		t.Fatalf("unexpected package %+v", packages[0])
	}
	for _, p := range packages {
		if p.OfferingID != "default" {
			t.Fatalf("package outside current offering: %+v", p)
		}
	}
}

func TestPurchaseSubmitsReceipt(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/receipts" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload["app_user_id"] != "user-1" || payload["fetch_token"] != "receipt-token" {
			t.Fatalf("unexpected payload %v", payload)
		}
		_, _ = w.Write([]byte(`{
			"subscriber": {
				"subscriptions": {"premium_monthly": {"expires_date": "2026-12-31T00:00:00Z"}}
			}
		}`))
	})

	info, err := c.Purchase(context.Background(), "user-1", "monthly", "receipt-token")
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if !info.HasActive() {
		t.Fatal("expected purchase to activate subscription")
	}
}

func TestProviderErrorSurfaces(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})

	if _, err := c.GetCustomerInfo(context.Background(), "user-1"); err == nil {
		t.Fatal("expected error for 401 response")
	}
}
