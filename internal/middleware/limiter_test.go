package middleware

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"talentbridge/recruiting-api/internal/apperror"
	"talentbridge/recruiting-api/internal/models"
	"talentbridge/recruiting-api/internal/security"
)

func newTestLimiter(start time.Time) (*MemoryLimiter, *time.Time) {
	now := start
	l := NewMemoryLimiter()
	l.now = func() time.Time { return now }
	return l, &now
}

func TestMemoryLimiterWindow(t *testing.T) {
	l, now := newTestLimiter(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if ok, _ := l.Allow(ctx, "apply:1:7", 3, time.Minute); !ok {
			t.Fatalf("hit %d should be allowed", i+1)
		}
	}

	ok, retry := l.Allow(ctx, "apply:1:7", 3, time.Minute)
	if ok {
		t.Fatal("4th hit within the window must be denied")
	}
	if retry <= 0 || retry > time.Minute {
		t.Fatalf("unexpected retry delay %v", retry)
	}

	if ok, _ := l.Allow(ctx, "apply:2:7", 3, time.Minute); !ok {
		t.Fatal("other keys are limited independently")
	}

	*now = now.Add(retry)
	if ok, _ := l.Allow(ctx, "apply:1:7", 3, time.Minute); !ok {
		t.Fatal("hit after the retry delay should be allowed")
	}
}

func TestMemoryLimiterCleanup(t *testing.T) {
	l, now := newTestLimiter(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	l.Allow(context.Background(), "bulk:7", 5, time.Hour)

	*now = now.Add(3 * time.Hour)
	l.Cleanup()

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) != 0 {
		t.Fatalf("expected idle keys dropped, %d left", len(l.entries))
	}
}

func testErrorHandler(c *fiber.Ctx, err error) error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return c.Status(apperror.HTTPStatus(appErr.Code)).JSON(fiber.Map{"error": appErr.Message})
	}
	return fiber.DefaultErrorHandler(c, err)
}

func TestRateLimitSetsRetryAfter(t *testing.T) {
	l, _ := newTestLimiter(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	app := fiber.New(fiber.Config{ErrorHandler: testErrorHandler})
	app.Post("/envois", RateLimit(l, 2, time.Minute, func(c *fiber.Ctx) string { return "apply:1:7" }), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/envois", nil), -1)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		if resp.StatusCode != fiber.StatusCreated {
			t.Fatalf("request %d: expected 201, got %d", i+1, resp.StatusCode)
		}
	}

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/envois", nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get(fiber.HeaderRetryAfter); got != "30" {
		t.Fatalf("expected Retry-After 30, got %q", got)
	}
}

func TestRateLimitSkipsEmptyKey(t *testing.T) {
	l, _ := newTestLimiter(time.Now())
	app := fiber.New(fiber.Config{ErrorHandler: testErrorHandler})
	app.Get("/", RateLimit(l, 1, time.Minute, func(c *fiber.Ctx) string { return "" }), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil), -1)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
	}
}

func TestJWTAndRequireRole(t *testing.T) {
	tokens := security.NewJWTProvider("test-secret", time.Hour)
	users := map[uint]*models.User{
		1: {ID: 1, Username: "alice", Role: models.RoleCandidate},
		2: {ID: 2, Username: "acme", Role: models.RoleCompany},
	}
	loader := UserLoaderFunc(func(c *fiber.Ctx, id uint) (*models.User, error) {
		if u, ok := users[id]; ok {
			return u, nil
		}
		return nil, apperror.NotFound("user not found")
	})

	app := fiber.New(fiber.Config{ErrorHandler: testErrorHandler})
	app.Get("/companies/me", JWT(tokens, loader), RequireRole(models.RoleCompany), func(c *fiber.Ctx) error {
		return c.SendString(CurrentUser(c).Username)
	})

	bearer := func(id uint, role models.Role) string {
		token, _, err := tokens.Generate(id, string(role), time.Now())
		if err != nil {
			t.Fatalf("token: %v", err)
		}
		return "Bearer " + token
	}

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "no token", header: "", want: fiber.StatusUnauthorized},
		{name: "garbage", header: "Bearer nope", want: fiber.StatusUnauthorized},
		{name: "unknown account", header: bearer(42, models.RoleCompany), want: fiber.StatusUnauthorized},
		{name: "wrong role", header: bearer(1, models.RoleCandidate), want: fiber.StatusForbidden},
		{name: "company", header: bearer(2, models.RoleCompany), want: fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/companies/me", nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			resp, err := app.Test(req, -1)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, resp.StatusCode)
			}
		})
	}
}
