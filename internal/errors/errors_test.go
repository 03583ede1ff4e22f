package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHasCode(t *testing.T) {
	err := ProviderUnavailable("model", errors.New("connection refused"))
	if !HasCode(err, CodeProviderUnavailable) {
		t.Fatal("expected provider code")
	}
	if HasCode(err, CodeTimeout) {
		t.Fatal("unexpected timeout code")
	}

	wrapped := fmt.Errorf("calling model: %w", err)
	if !HasCode(wrapped, CodeProviderUnavailable) {
		t.Fatal("expected code through wrapping")
	}

	if HasCode(errors.New("plain"), CodeProviderUnavailable) {
		t.Fatal("plain error should carry no code")
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{InvalidInput("bad"), http.StatusBadRequest},
		{NotFound("study", "x"), http.StatusNotFound},
		{SubscriptionRequired(3), http.StatusPaymentRequired},
		{ProviderUnavailable("search", nil), http.StatusBadGateway},
		{Timeout("model invocation", nil), http.StatusGatewayTimeout},
		{RateLimitExceeded(10, "1s"), http.StatusTooManyRequests},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusOf(tt.err); got != tt.want {
			t.Fatalf("StatusOf(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestUnwrapPreservesCause(t *testing.T) {
	cause := errors.New("root cause")
	err := MalformedOutput(cause)
	if !errors.Is(err, cause) {
		t.Fatal("cause not reachable through Unwrap")
	}
}
