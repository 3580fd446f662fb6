package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"tidechain-backend/internal/application/auth"
	"tidechain-backend/internal/domain"
	"tidechain-backend/internal/infrastructure/metrics"
	"tidechain-backend/internal/pkg/constants"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spyStore counts calls that reach the storage layer.
type spyStore struct{ calls int }

func (s *spyStore) CreateProject(context.Context) error {
	s.calls++
	return nil
}

func newGateApp(t *testing.T, tokens *auth.TokenService, m *metrics.Metrics, store *spyStore) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	api := app.Group("/api", RequireAuth(tokens, m))
	api.Post("/projects", AuthorizePermission(constants.CreateProject, m), func(c *fiber.Ctx) error {
		if err := store.CreateProject(c.UserContext()); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusCreated)
	})
	api.Get("/admin/projects", AuthorizePermission(constants.ViewAllProjects, m), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"role": GetClaims(c).Role})
	})
	api.Get("/misconfigured", AuthorizePermission("no_such_permission", m), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func errorBody(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	b, _ := io.ReadAll(body)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func TestGate_MissingOrGarbledCredentialNeverReachesStore(t *testing.T) {
	tokens := auth.NewTokenService("secret", "tidechain", time.Hour)
	m := metrics.New(prometheus.NewRegistry())
	store := &spyStore{}
	app := newGateApp(t, tokens, m, store)

	expired := auth.NewTokenService("secret", "tidechain", -time.Minute)
	stale, err := expired.Issue(1, "ngo@reef.org", constants.Ngo)
	require.NoError(t, err)
	foreign, err := auth.NewTokenService("other", "tidechain", time.Hour).Issue(1, "ngo@reef.org", constants.Ngo)
	require.NoError(t, err)

	headers := []string{"", "Bearer", "Bearer ", "Basic dXNlcjpwYXNz", "Bearer not.a.jwt", "Bearer eyJ1c2VySWQiOjEsInJvbGUiOiJuZ28ifQ==", "Bearer " + stale, "Bearer " + foreign}
	for _, h := range headers {
		req := httptest.NewRequest("POST", "/api/projects", nil)
		if h != "" {
			req.Header.Set("Authorization", h)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, "header %q", h)
		out := errorBody(t, resp.Body)
		assert.Equal(t, false, out["success"])
	}
	assert.Equal(t, 0, store.calls)
	assert.Equal(t, float64(len(headers)), testutil.ToFloat64(m.AuthRejections.WithLabelValues("unauthorized")))
}

func TestGate_BuyerOnNgoRouteIsForbidden(t *testing.T) {
	tokens := auth.NewTokenService("secret", "tidechain", time.Hour)
	m := metrics.New(prometheus.NewRegistry())
	store := &spyStore{}
	app := newGateApp(t, tokens, m, store)

	token, err := tokens.Issue(9, "buyer@acme.com", constants.Buyer)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/api/projects", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Forbidden", errorBody(t, resp.Body)["error"])
	assert.Equal(t, 0, store.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthRejections.WithLabelValues("forbidden")))
}

func TestGate_NoRoleHierarchy(t *testing.T) {
	tokens := auth.NewTokenService("secret", "tidechain", time.Hour)
	store := &spyStore{}
	app := newGateApp(t, tokens, nil, store)

	admin, _ := tokens.Issue(1, "admin@tidechain.org", constants.Admin)
	req := httptest.NewRequest("POST", "/api/projects", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest("GET", "/api/admin/projects", nil)
	req.Header.Set("Authorization", "bearer "+admin)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "admin", errorBody(t, resp.Body)["role"])
}

func TestGate_NgoAllowed(t *testing.T) {
	tokens := auth.NewTokenService("secret", "tidechain", time.Hour)
	store := &spyStore{}
	app := newGateApp(t, tokens, nil, store)

	ngo, _ := tokens.Issue(2, "ngo@reef.org", constants.Ngo)
	req := httptest.NewRequest("POST", "/api/projects", nil)
	req.Header.Set("Authorization", "Bearer "+ngo)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, 1, store.calls)
}

func TestAuthorizePermission_Misconfigured(t *testing.T) {
	tokens := auth.NewTokenService("secret", "tidechain", time.Hour)
	app := newGateApp(t, tokens, nil, &spyStore{})

	ngo, _ := tokens.Issue(2, "ngo@reef.org", constants.Ngo)
	req := httptest.NewRequest("GET", "/api/misconfigured", nil)
	req.Header.Set("Authorization", "Bearer "+ngo)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestAuthorizePermission_WithoutRequireAuth(t *testing.T) {
	app := fiber.New()
	app.Get("/", AuthorizePermission(constants.PurchaseCredits, nil), func(c *fiber.Ctx) error { return nil })
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestErrorHandler_MapsDomainErrors(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/conflict", func(c *fiber.Ctx) error { return domain.Conflict("Email already registered") })
	app.Get("/fiber", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("boom") })

	resp, _ := app.Test(httptest.NewRequest("GET", "/conflict", nil))
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Email already registered", errorBody(t, resp.Body)["error"])

	resp, _ = app.Test(httptest.NewRequest("GET", "/fiber", nil))
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)

	resp, _ = app.Test(httptest.NewRequest("GET", "/boom", nil))
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Internal Server Error", errorBody(t, resp.Body)["error"])
}

func TestTracing_SetsHeader(t *testing.T) {
	app := fiber.New()
	app.Use(Tracing())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(GetTraceID(c)) })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	id := resp.Header.Get("X-Trace-Id")
	assert.Len(t, id, 36)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, id, string(body))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Trace-Id", "11111111-2222-3333-4444-555555555555")
	resp, _ = app.Test(req)
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", resp.Header.Get("X-Trace-Id"))
}

func TestCORS(t *testing.T) {
	app := fiber.New()
	app.Use(CORS(CORSConfig{AllowedOrigins: []string{"https://app.tidechain.org"}, AllowedSuffix: ".tidechain.dev", DevPassword: "pw"}))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	cases := []struct {
		origin, method, devPassword string
		want                        int
	}{
		{"", "GET", "", 200},
		{"https://app.tidechain.org", "GET", "", 200},
		{"https://preview.tidechain.dev", "GET", "", 200},
		{"https://evil.example", "GET", "", 403},
		{"https://evil.example", "GET", "pw", 200},
		{"http://localhost:5173", "OPTIONS", "", 204},
		{"https://app.tidechain.org", "OPTIONS", "", 204},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, "/", nil)
		if tc.origin != "" {
			req.Header.Set("Origin", tc.origin)
		}
		if tc.devPassword != "" {
			req.Header.Set("dev-password", tc.devPassword)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, tc.want, resp.StatusCode, "%s %s", tc.method, tc.origin)
		if tc.want != 403 && tc.origin != "" {
			assert.Equal(t, tc.origin, resp.Header.Get("Access-Control-Allow-Origin"))
			assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "Authorization")
		}
	}
}

func TestHealthMarker_CountsAndLogsErrors(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(Tracing(), HealthMarker(rdb))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/fail", func(c *fiber.Ctx) error {
		return domain.Persistence("Failed to fetch projects", errors.New("db down"))
	})
	app.Get("/health/json", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for _, p := range []string{"/ok", "/ok", "/fail", "/health/json"} {
		_, err := app.Test(httptest.NewRequest("GET", p, nil))
		require.NoError(t, err)
	}

	ctx := context.Background()
	total, _ := rdb.Get(ctx, KeyReqTotal).Int()
	errs, _ := rdb.Get(ctx, KeyReqErrors).Int()
	assert.Equal(t, 3, total)
	assert.Equal(t, 1, errs)

	entries, err := rdb.LRange(ctx, KeyErrorLog, 0, -1).Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(entries[0]), &entry))
	assert.Equal(t, "/fail", entry["path"])
	assert.Equal(t, "Failed to fetch projects", entry["message"])
}

func TestHealthMarker_NilRedisPassesThrough(t *testing.T) {
	app := fiber.New()
	app.Use(HealthMarker(nil))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestTracing_ContextLoggerCarriesTraceID(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	app := fiber.New()
	app.Use(Tracing())
	app.Get("/", func(c *fiber.Ctx) error {
		log.Ctx(c.UserContext()).Info().Msg("inside handler")
		return c.SendStatus(fiber.StatusNoContent)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Trace-Id", "11111111-2222-3333-4444-555555555555")
	_, err := app.Test(req)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"trace_id":"11111111-2222-3333-4444-555555555555"`)
	assert.Contains(t, buf.String(), "inside handler")
}
