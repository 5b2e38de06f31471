package middleware

import (
	"testing"

	"ecom-dashboard/internal/config"
)

func TestRateLimiter(t *testing.T) {
	cfg := config.SecurityConfig{
		EnableRateLimit: true,
		RateLimitRPS:    1,
		RateLimitBurst:  2,
	}
	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	if !rl.Allow("10.0.0.1") || !rl.Allow("10.0.0.1") {
		t.Fatal("requests within the burst should be allowed")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("request beyond the burst should be rejected")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("limits are per client, a fresh ip should be allowed")
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := NewRateLimiter(config.SecurityConfig{EnableRateLimit: false})
	defer rl.Stop()

	for i := 0; i < 100; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatal("disabled limiter should allow everything")
		}
	}
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(config.SecurityConfig{
		EnableRateLimit: true,
		RateLimitRPS:    1,
		RateLimitBurst:  1,
	})

	rl.Stop()
	rl.Stop()

	if !rl.Allow("10.0.0.1") {
		t.Error("a stopped limiter still serves Allow")
	}
}
