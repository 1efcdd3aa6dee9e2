package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestRetryPolicySucceedsAfterTransientFailure(t *testing.T) {
	policy := NewRetryPolicy(2, time.Millisecond)

	attempts := 0
	err := policy.Do(func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetryPolicyReturnsLastError(t *testing.T) {
	policy := NewRetryPolicy(1, time.Millisecond)

	want := errors.New("still failing")
	err := policy.Do(func() error { return want })
	if !errors.Is(err, want) {
		t.Fatalf("expected last error, got %v", err)
	}
}

func TestCircuitBreakerOpensAtThreshold(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Minute)

	cb.OnError(errors.New("fail"))
	cb.OnError(errors.New("fail"))
	if !cb.Allow() {
		t.Fatal("breaker opened before threshold")
	}
	cb.OnError(errors.New("fail"))
	if cb.Allow() {
		t.Fatal("breaker should be open after threshold failures")
	}
}

func TestCircuitBreakerOpensImmediatelyOnRateLimit(t *testing.T) {
	cb := NewCircuitBreaker(5, time.Minute)

	cb.OnError(RateLimitError{Provider: "whisperd"})
	if cb.Allow() {
		t.Fatal("breaker should open on first rate limit")
	}
}

func TestCircuitBreakerIgnoresNilError(t *testing.T) {
	cb := NewCircuitBreaker(1, time.Minute)

	cb.OnError(nil)
	if !cb.Allow() {
		t.Fatal("nil error should not open the breaker")
	}
}

func TestCircuitBreakerResetsOnSuccess(t *testing.T) {
	cb := NewCircuitBreaker(2, 10*time.Millisecond)

	cb.OnError(errors.New("fail"))
	cb.OnSuccess()
	cb.OnError(errors.New("fail"))
	if !cb.Allow() {
		t.Fatal("success should reset the failure count")
	}
}

func TestIsRateLimit(t *testing.T) {
	if !IsRateLimit(RateLimitError{Message: "429"}) {
		t.Fatal("expected rate limit detection")
	}
	if IsRateLimit(errors.New("plain")) {
		t.Fatal("plain error misclassified as rate limit")
	}
}
