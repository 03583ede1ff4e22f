// Package entitlements tracks the per-install study counter and decides
// whether another study may start.
package entitlements

import (
	"context"

	"github.com/berea-labs/study_layer/internal/app/domain/entitlement"
	"github.com/berea-labs/study_layer/internal/app/storage"
	svcerrors "github.com/berea-labs/study_layer/internal/errors"
	"github.com/berea-labs/study_layer/internal/logging"
)

// PurchaseProvider is the external subscription provider contract.
type PurchaseProvider interface {
	GetCustomerInfo(ctx context.Context, appUserID string) (entitlement.CustomerInfo, error)
	GetOfferings(ctx context.Context, appUserID string) ([]entitlement.Package, error)
	Purchase(ctx context.Context, appUserID, packageID, receipt string) (entitlement.CustomerInfo, error)
	Restore(ctx context.Context, appUserID string) (entitlement.CustomerInfo, error)
}

// Service combines the usage counter with the purchase provider. The gate
// verdict is recomputed on every check and never persisted, so a new
// purchase takes effect on the next check.
type Service struct {
	counters storage.CounterStore
	provider PurchaseProvider
	log      *logging.Logger
}

// New creates an entitlements service.
func New(counters storage.CounterStore, provider PurchaseProvider, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewNop()
	}
	return &Service{counters: counters, provider: provider, log: log}
}

// CurrentStudyCount returns the install's completed-study count. Reads fail
// open to zero: an unreadable counter must not lock a user out of the free
// tier.
func (s *Service) CurrentStudyCount(ctx context.Context, installID string) int {
	count, err := s.counters.GetCount(ctx, installID)
	if err != nil {
		s.log.WithError(err).Warnf("reading study count for install %q, assuming 0", installID)
		return 0
	}
	return count
}

// IncrementStudyCount bumps the counter and returns the new value. Errors
// propagate; callers rely on the post-increment value.
func (s *Service) IncrementStudyCount(ctx context.Context, installID string) (int, error) {
	count, err := s.counters.IncrementCount(ctx, installID)
	if err != nil {
		return 0, svcerrors.ProviderUnavailable("counter storage", err)
	}
	return count, nil
}

// IsSubscribed reports whether the user has at least one active
// subscription. Fails closed: on provider error the state is reported as
// inactive and the error is returned for the caller's retry affordance.
func (s *Service) IsSubscribed(ctx context.Context, appUserID string) (bool, error) {
	info, err := s.provider.GetCustomerInfo(ctx, appUserID)
	if err != nil {
		return false, svcerrors.EntitlementCheckFailed(err)
	}
	return info.HasActive(), nil
}

// Status reports the gate state for an install/user pair. On a provider
// failure the verdict is still computed fail-closed (as if unsubscribed) and
// the check error rides along.
func (s *Service) Status(ctx context.Context, installID, appUserID string) (entitlement.Status, error) {
	count := s.CurrentStudyCount(ctx, installID)
	subscribed, err := s.IsSubscribed(ctx, appUserID)

	return entitlement.Status{
		StudyCount:        count,
		Subscribed:        subscribed,
		NeedsSubscription: entitlement.NeedsSubscription(count, subscribed),
	}, err
}

// Offerings returns the purchasable packages of the current offering.
func (s *Service) Offerings(ctx context.Context, appUserID string) ([]entitlement.Package, error) {
	return s.provider.GetOfferings(ctx, appUserID)
}

// Purchase attempts a purchase. A failed attempt is not an error: the result
// carries Successful=false alongside the freshest customer state the
// provider would give us, mirroring how the client surfaces the outcome.
func (s *Service) Purchase(ctx context.Context, appUserID, packageID, receipt string) (entitlement.PurchaseResult, error) {
	info, err := s.provider.Purchase(ctx, appUserID, packageID, receipt)
	if err != nil {
		s.log.WithError(err).Warnf("purchase failed for user %q", appUserID)
		fresh, infoErr := s.provider.GetCustomerInfo(ctx, appUserID)
		if infoErr != nil {
			return entitlement.PurchaseResult{}, svcerrors.ProviderUnavailable("purchases", infoErr)
		}
		return entitlement.PurchaseResult{CustomerInfo: fresh, Successful: false}, nil
	}
	return entitlement.PurchaseResult{CustomerInfo: info, Successful: info.HasActive()}, nil
}

// Restore re-attaches previous purchases and reports whether any
// subscription is now active.
func (s *Service) Restore(ctx context.Context, appUserID string) (bool, error) {
	info, err := s.provider.Restore(ctx, appUserID)
	if err != nil {
		return false, svcerrors.ProviderUnavailable("purchases", err)
	}
	return info.HasActive(), nil
}
