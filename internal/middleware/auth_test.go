package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionTestApp(t *testing.T, expiresAt int64) *fiber.App {
	t.Helper()
	store := session.New()
	app := fiber.New()

	// Establishes a session the way a successful browser login does.
	app.Post("/session", func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		require.NoError(t, err)
		sess.Set("user_id", 7)
		sess.Set("username", "maria")
		sess.Set("role", "operator")
		sess.Set("expires_at", expiresAt)
		require.NoError(t, sess.Save())
		return c.SendStatus(fiber.StatusOK)
	})

	app.Get("/login", GuestMiddleware(store), func(c *fiber.Ctx) error {
		return c.SendString("login page")
	})

	app.Get("/protected", WebAuthMiddleware(store), func(c *fiber.Ctx) error {
		return c.SendString("hello " + c.Locals("username").(string))
	})

	return app
}

func openSession(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("POST", "/session", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	cookie := resp.Header.Get("Set-Cookie")
	require.NotEmpty(t, cookie)
	return cookie
}

func TestWebAuthMiddlewareRedirectsAnonymous(t *testing.T) {
	app := sessionTestApp(t, time.Now().Add(time.Hour).Unix())

	resp, err := app.Test(httptest.NewRequest("GET", "/protected", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestWebAuthMiddlewareAllowsActiveSession(t *testing.T) {
	app := sessionTestApp(t, time.Now().Add(time.Hour).Unix())
	cookie := openSession(t, app)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Cookie", cookie)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestWebAuthMiddlewareRejectsExpiredSession(t *testing.T) {
	app := sessionTestApp(t, time.Now().Add(-time.Minute).Unix())
	cookie := openSession(t, app)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Cookie", cookie)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestGuestMiddlewareRedirectsLoggedIn(t *testing.T) {
	app := sessionTestApp(t, time.Now().Add(time.Hour).Unix())
	cookie := openSession(t, app)

	req := httptest.NewRequest("GET", "/login", nil)
	req.Header.Set("Cookie", cookie)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestGuestMiddlewareLetsAnonymousThrough(t *testing.T) {
	app := sessionTestApp(t, time.Now().Add(time.Hour).Unix())

	resp, err := app.Test(httptest.NewRequest("GET", "/login", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
