package maintenance

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

type stubRepo struct {
	settings Settings
	err      error
	gets     int
}

func (r *stubRepo) Get() (Settings, error) {
	r.gets++
	if r.err != nil {
		return Settings{}, r.err
	}
	return r.settings, nil
}

func (r *stubRepo) Set(s Settings) error {
	r.settings = s
	return nil
}

func TestCacheServesWithinTTLWithoutRefetch(t *testing.T) {
	repo := &stubRepo{settings: Settings{Enabled: true}}
	c := NewCache(repo, time.Minute, nil)

	for i := 0; i < 5; i++ {
		if !c.Current().Enabled {
			t.Fatal("expected enabled settings")
		}
	}
	if repo.gets != 1 {
		t.Errorf("store hit %d times within TTL, want 1", repo.gets)
	}
}

func TestCacheRefreshesAfterTTL(t *testing.T) {
	repo := &stubRepo{settings: Settings{Enabled: false}}
	c := NewCache(repo, 50*time.Millisecond, nil)

	now := time.Now()
	c.now = func() time.Time { return now }
	c.Current()

	repo.settings = Settings{Enabled: true}
	c.now = func() time.Time { return now.Add(time.Second) }
	if !c.Current().Enabled {
		t.Error("stale entry was not refreshed after TTL")
	}
}

func TestCacheFailsOpenWhenStoreUnavailable(t *testing.T) {
	repo := &stubRepo{err: errors.New("connection refused")}
	c := NewCache(repo, time.Minute, nil)

	if c.Current().Enabled {
		t.Error("unreachable store must fail open (maintenance off)")
	}
}

func TestCacheServesLastKnownOnRefreshFailure(t *testing.T) {
	repo := &stubRepo{settings: Settings{Enabled: true, Message: "back soon"}}
	c := NewCache(repo, 50*time.Millisecond, nil)

	now := time.Now()
	c.now = func() time.Time { return now }
	c.Current()

	repo.err = errors.New("connection refused")
	c.now = func() time.Time { return now.Add(time.Second) }
	got := c.Current()
	if !got.Enabled || got.Message != "back soon" {
		t.Errorf("expected last known settings, got %+v", got)
	}
}

func TestInvalidateForcesRefetch(t *testing.T) {
	repo := &stubRepo{settings: Settings{Enabled: false}}
	c := NewCache(repo, time.Hour, nil)
	c.Current()

	repo.settings = Settings{Enabled: true}
	c.Invalidate()
	if !c.Current().Enabled {
		t.Error("invalidated cache must re-read the store")
	}
}

func newMiddlewareApp(c *Cache) *fiber.App {
	app := fiber.New()
	app.Use(Middleware(c))
	ok := func(ctx *fiber.Ctx) error { return ctx.SendStatus(fiber.StatusOK) }
	app.Get("/api/products", ok)
	app.Get("/api/health", ok)
	app.Get("/api/admin/orders", ok)
	return app
}

func TestMiddlewareBlocksShopperTraffic(t *testing.T) {
	c := NewCache(&stubRepo{settings: Settings{Enabled: true, Message: "closed for restock"}}, time.Minute, nil)
	app := newMiddlewareApp(c)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/products", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestMiddlewareExemptsHealthAndAdmin(t *testing.T) {
	c := NewCache(&stubRepo{settings: Settings{Enabled: true}}, time.Minute, nil)
	app := newMiddlewareApp(c)

	for _, path := range []string{"/api/health", "/api/admin/orders"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		if err != nil {
			t.Fatalf("app.Test %s: %v", path, err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Errorf("%s status = %d, want 200", path, resp.StatusCode)
		}
	}
}

func TestMiddlewarePassesWhenDisabled(t *testing.T) {
	c := NewCache(&stubRepo{settings: Settings{Enabled: false}}, time.Minute, nil)
	app := newMiddlewareApp(c)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/products", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
