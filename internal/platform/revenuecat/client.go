// Package revenuecat is a thin REST client for the hosted purchase provider.
// It maps the provider's subscriber document onto the entitlement domain
// model; expiry interpretation stays here so the gate only sees active
// subscription ids.
package revenuecat

import (
	"context"
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	"github.com/berea-labs/study_layer/internal/app/domain/entitlement"
	svcerrors "github.com/berea-labs/study_layer/internal/errors"
	"github.com/berea-labs/study_layer/internal/httputil"
)

// Config configures the client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client talks to the purchase provider's REST API.
type Client struct {
	http *httputil.Client
	now  func() time.Time
}

// New creates a purchase-provider client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("purchase provider base URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("purchase provider API key is required")
	}
	return &Client{
		http: httputil.New(httputil.Config{
			BaseURL:    cfg.BaseURL,
			APIKey:     "Bearer " + cfg.APIKey,
			Timeout:    cfg.Timeout,
			MaxRetries: 1,
		}),
		now: time.Now,
	}, nil
}

// GetCustomerInfo fetches the current subscriber state. Never cached; the
// gate re-queries on every check so a new purchase takes effect immediately.
func (c *Client) GetCustomerInfo(ctx context.Context, appUserID string) (entitlement.CustomerInfo, error) {
	resp, err := c.http.Get(ctx, "/v1/subscribers/"+appUserID)
	if err != nil {
		return entitlement.CustomerInfo{}, svcerrors.ProviderUnavailable("purchases", err)
	}
	body, err := httputil.ReadBody(resp, 1<<20)
	if err != nil {
		return entitlement.CustomerInfo{}, svcerrors.ProviderUnavailable("purchases", err)
	}
	return c.parseSubscriber(appUserID, body), nil
}

// GetOfferings returns the packages of the current offering.
func (c *Client) GetOfferings(ctx context.Context, appUserID string) ([]entitlement.Package, error) {
	resp, err := c.http.Get(ctx, "/v1/subscribers/"+appUserID+"/offerings")
	if err != nil {
		return nil, svcerrors.ProviderUnavailable("purchases", err)
	}
	body, err := httputil.ReadBody(resp, 1<<20)
	if err != nil {
		return nil, svcerrors.ProviderUnavailable("purchases", err)
	}

	current := gjson.GetBytes(body, "current_offering_id").String()
	var packages []entitlement.Package
	gjson.GetBytes(body, "offerings").ForEach(func(_, offering gjson.Result) bool {
		id := offering.Get("identifier").String()
		if current != "" && id != current {
			return true
		}
		offering.Get("packages").ForEach(func(_, pkg gjson.Result) bool {
			packages = append(packages, entitlement.Package{
				Identifier:  pkg.Get("identifier").String(),
				OfferingID:  id,
				ProductID:   pkg.Get("platform_product_identifier").String(),
				PriceString: pkg.Get("price_string").String(),
			})
			return true
		})
		return true
	})
	return packages, nil
}

// Purchase submits a store receipt for the chosen package and returns the
// resulting subscriber state.
func (c *Client) Purchase(ctx context.Context, appUserID, packageID, receipt string) (entitlement.CustomerInfo, error) {
	payload := map[string]string{
		"app_user_id":        appUserID,
		"fetch_token":        receipt,
		"presented_offering": packageID,
	}
	resp, err := c.http.Post(ctx, "/v1/receipts", payload)
	if err != nil {
		return entitlement.CustomerInfo{}, svcerrors.ProviderUnavailable("purchases", err)
	}
	body, err := httputil.ReadBody(resp, 1<<20)
	if err != nil {
		return entitlement.CustomerInfo{}, svcerrors.ProviderUnavailable("purchases", err)
	}
	return c.parseSubscriber(appUserID, body), nil
}

// Restore re-fetches subscriber state so previously purchased subscriptions
// reattach to this install.
func (c *Client) Restore(ctx context.Context, appUserID string) (entitlement.CustomerInfo, error) {
	return c.GetCustomerInfo(ctx, appUserID)
}

// parseSubscriber extracts active subscription ids from a subscriber
// document. A subscription is active when it has no expiry or the expiry is
// in the future.
func (c *Client) parseSubscriber(appUserID string, body []byte) entitlement.CustomerInfo {
	info := entitlement.CustomerInfo{AppUserID: appUserID}
	now := c.now()

	gjson.GetBytes(body, "subscriber.subscriptions").ForEach(func(id, sub gjson.Result) bool {
		expires := sub.Get("expires_date")
		if !expires.Exists() || expires.Type == gjson.Null {
			info.ActiveSubscriptions = append(info.ActiveSubscriptions, id.String())
			return true
		}
		if t, err := time.Parse(time.RFC3339, expires.String()); err == nil && t.After(now) {
			info.ActiveSubscriptions = append(info.ActiveSubscriptions, id.String())
		}
		return true
	})
	return info
}
