// Package entitlement defines the free-tier gate model: the usage limit, the
// purchase-provider view of a customer, and the pure gate decision.
package entitlement

// FreeStudyLimit is the number of studies an install may complete before a
// subscription is required.
const FreeStudyLimit = 3

// CustomerInfo is the purchase provider's view of a customer.
type CustomerInfo struct {
	AppUserID           string   `json:"app_user_id"`
	ActiveSubscriptions []string `json:"active_subscriptions"`
}

// HasActive reports whether at least one subscription is active.
func (c CustomerInfo) HasActive() bool {
	return len(c.ActiveSubscriptions) > 0
}

// Package is a purchasable subscription package from the current offering.
type Package struct {
	Identifier  string `json:"identifier"`
	OfferingID  string `json:"offering_id,omitempty"`
	ProductID   string `json:"product_id,omitempty"`
	PriceString string `json:"price_string,omitempty"`
}

// PurchaseResult reports the outcome of a purchase attempt alongside the
// resulting customer state.
type PurchaseResult struct {
	CustomerInfo CustomerInfo `json:"customer_info"`
	Successful   bool         `json:"successful"`
}

// Status is the gate state reported to clients.
type Status struct {
	StudyCount        int  `json:"study_count"`
	Subscribed        bool `json:"subscribed"`
	NeedsSubscription bool `json:"needs_subscription"`
}

// NeedsSubscription is the gate decision. Pure: the verdict is recomputed on
// every check so a new purchase takes effect immediately.
func NeedsSubscription(studyCount int, hasActive bool) bool {
	return studyCount >= FreeStudyLimit && !hasActive
}
