package middleware

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestCheckRateLimitDisabledOutsideProduction(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	// No Redis at all, yet everything is allowed.
	allowed, err := CheckRateLimit(context.Background(), nil, "login", "ip:1.2.3.4", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestCheckRateLimitEnforcesLimit(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	_, client := newTestRedis(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := CheckRateLimit(ctx, client, "login", "ip:1.2.3.4", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := CheckRateLimit(ctx, client, "login", "ip:1.2.3.4", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestCheckRateLimitWindowExpiry(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	mr, client := newTestRedis(t)
	ctx := context.Background()

	allowed, err := CheckRateLimit(ctx, client, "login", "ip:1.2.3.4", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = CheckRateLimit(ctx, client, "login", "ip:1.2.3.4", 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	mr.FastForward(time.Minute + time.Second)

	allowed, err = CheckRateLimit(ctx, client, "login", "ip:1.2.3.4", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestCheckRateLimitSeparateIdentities(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	_, client := newTestRedis(t)
	ctx := context.Background()

	allowed, err := CheckRateLimit(ctx, client, "login", "ip:1.1.1.1", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	// A different caller has its own budget.
	allowed, err = CheckRateLimit(ctx, client, "login", "ip:2.2.2.2", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	_, client := newTestRedis(t)

	app := fiber.New()
	app.Post("/login", RateLimit(client, 2, time.Minute, "login"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/login", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest("POST", "/login", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestRateLimitFailsOpenWithoutRedis(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	app := fiber.New()
	app.Post("/login", RateLimit(nil, 1, time.Minute, "login"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/login", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
}
