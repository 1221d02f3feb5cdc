package router

import (
	"benefits-web/internal/config"
	"benefits-web/internal/middleware"
	"benefits-web/internal/models"
	"benefits-web/internal/repository"
	"benefits-web/internal/service"
	"benefits-web/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

func Setup(app *fiber.App, db *sqlx.DB, rdb *redis.Client, cfg *config.Config) {
	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"app":    cfg.AppName,
		})
	})

	// Web routes (HTML)
	web := app.Group("")
	setupWebRoutes(web, db, cfg)

	// API routes (JSON)
	api := app.Group("/api/v1")
	SetupAPIRoutes(api, db, rdb, cfg)
}

func setupWebRoutes(router fiber.Router, db *sqlx.DB, cfg *config.Config) {
	store := session.New()
	authService := service.NewAuthService(repository.NewUserRepository(db), cfg)

	// Authentication pages
	guest := router.Group("", middleware.GuestMiddleware(store))

	guest.Get("/login", func(c *fiber.Ctx) error {
		return c.Render("auth/login", fiber.Map{
			"Title": "Login",
		})
	})

	guest.Get("/register", func(c *fiber.Ctx) error {
		return c.Render("auth/register", fiber.Map{
			"Title": "Register",
		})
	})

	// Browser login opens the cookie session used by the HTML pages.
	// The JSON API keeps its own JWT flow under /api/v1/auth.
	router.Post("/login", func(c *fiber.Ctx) error {
		var req models.LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
		}

		user, err := authService.WebLogin(req, c, store)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, err.Error(), nil)
		}

		return utils.SuccessResponse(c, "Login successful", fiber.Map{
			"username": user.Username,
			"role":     user.Role,
		})
	})

	router.Get("/logout", func(c *fiber.Ctx) error {
		if err := authService.WebLogout(c, store); err != nil {
			utils.GetLogger().WithError(err).Warn("failed to destroy session")
		}
		return c.Redirect("/login")
	})

	// Pages behind the session
	pages := router.Group("", middleware.WebAuthMiddleware(store))

	pages.Get("/", func(c *fiber.Ctx) error {
		user, err := authService.GetCurrentUser(c, store)
		if err != nil {
			return c.Redirect("/login")
		}
		return c.Render("dashboard/index", fiber.Map{
			"Title":    "Dashboard",
			"Username": user.Username,
		})
	})

	// Employee pages
	pages.Get("/employees", func(c *fiber.Ctx) error {
		return c.Render("employees/index", fiber.Map{
			"Title": "Employees",
		})
	})

	pages.Get("/employees/:id", func(c *fiber.Ctx) error {
		return c.Render("employees/detail", fiber.Map{
			"Title": "Employee Detail",
		})
	})

	// Import pages
	pages.Get("/imports", func(c *fiber.Ctx) error {
		return c.Render("imports/index", fiber.Map{
			"Title": "Import Batches",
		})
	})

	pages.Get("/imports/new", func(c *fiber.Ctx) error {
		return c.Render("imports/new", fiber.Map{
			"Title": "New Import",
		})
	})

	pages.Get("/imports/:code", func(c *fiber.Ctx) error {
		return c.Render("imports/detail", fiber.Map{
			"Title": "Import Detail",
		})
	})

	// Alert pages
	pages.Get("/alerts", func(c *fiber.Ctx) error {
		return c.Render("alerts/index", fiber.Map{
			"Title": "Alerts",
		})
	})
}
