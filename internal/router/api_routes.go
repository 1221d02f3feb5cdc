package router

import (
	"benefits-web/internal/config"
	"benefits-web/internal/handler"
	"benefits-web/internal/middleware"
	"benefits-web/internal/repository"
	"benefits-web/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

func SetupAPIRoutes(
	router fiber.Router,
	db *sqlx.DB,
	rdb *redis.Client,
	cfg *config.Config,
) {
	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	planRepo := repository.NewPlanRepository(db)
	importRepo := repository.NewImportRepository(db)
	alertRepo := repository.NewAlertRepository(db)

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg)
	reportService := service.NewReportService(employeeRepo, planRepo, importRepo, alertRepo)

	// Initialize Asynq client (optional - only if Redis is available)
	var asynqClient *asynq.Client
	if rdb != nil {
		asynqClient = asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.AsynqRedisAddr,
			Password: cfg.AsynqRedisPassword,
			DB:       cfg.AsynqRedisDB,
		})
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	employeeHandler := handler.NewEmployeeHandler(employeeRepo, planRepo, cfg)
	planHandler := handler.NewPlanHandler(planRepo, employeeRepo)
	importHandler := handler.NewImportHandler(importRepo, asynqClient, rdb, cfg)
	alertHandler := handler.NewAlertHandler(alertRepo)
	reportHandler := handler.NewReportHandler(reportService, employeeRepo, cfg)

	// Public routes
	auth := router.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/register", authHandler.Register)
	auth.Post("/logout", authHandler.Logout)

	// Protected routes
	protected := router.Group("", middleware.AuthMiddleware(cfg))

	// Auth routes
	protected.Get("/auth/me", authHandler.Me)

	// Dashboard routes
	protected.Get("/dashboard/summary", reportHandler.GetDashboard)

	// Employee routes
	employees := protected.Group("/employees")
	employees.Get("/", employeeHandler.GetEmployees)
	employees.Get("/export", reportHandler.ExportEmployees)
	employees.Post("/", employeeHandler.CreateEmployee)
	employees.Get("/:id", employeeHandler.GetEmployee)
	employees.Put("/:id", employeeHandler.UpdateEmployee)
	employees.Delete("/:id", middleware.AdminOnly(), employeeHandler.DeleteEmployee)
	employees.Post("/:id/restore", middleware.AdminOnly(), employeeHandler.RestoreEmployee)

	// Registration code routes
	employees.Get("/:id/codes", employeeHandler.GetCodeHistory)
	employees.Post("/:id/codes", employeeHandler.AssignCode)

	// Dependent routes
	employees.Get("/:id/dependents", employeeHandler.GetDependents)
	employees.Post("/:id/dependents", employeeHandler.CreateDependent)
	employees.Put("/:id/dependents/:dependentId", employeeHandler.UpdateDependent)
	employees.Delete("/:id/dependents/:dependentId", middleware.AdminOnly(), employeeHandler.DeleteDependent)

	// Plan enrollment routes
	employees.Get("/:id/enrollments", planHandler.GetEnrollments)
	employees.Post("/:id/enrollments", planHandler.CreateEnrollment)
	employees.Put("/:id/enrollments/:enrollmentId", planHandler.UpdateEnrollment)
	employees.Post("/:id/enrollments/:enrollmentId/close", planHandler.CloseEnrollment)

	// Co-participation visits
	employees.Get("/:id/visits", planHandler.GetVisits)
	employees.Post("/:id/visits", planHandler.CreateVisit)

	// Import routes
	imports := protected.Group("/imports")
	imports.Post("/", importHandler.UploadFile)
	imports.Get("/", importHandler.GetBatches)
	imports.Get("/types", importHandler.GetImportTypes)
	imports.Get("/template/:type", importHandler.DownloadTemplate)
	imports.Get("/:code", importHandler.GetBatch)
	imports.Get("/:code/errors", importHandler.GetRowErrors)
	imports.Get("/:code/errors/report", importHandler.DownloadErrorReport)
	imports.Get("/:code/progress", importHandler.GetProgress)
	imports.Post("/:code/cancel", importHandler.Cancel)

	// Alert routes
	alerts := protected.Group("/alerts")
	alerts.Get("/", alertHandler.GetAlerts)
	alerts.Get("/counts", alertHandler.GetCounts)
	alerts.Get("/:id", alertHandler.GetAlert)
	alerts.Post("/:id/resolve", alertHandler.ResolveAlert)
	alerts.Post("/:id/reopen", alertHandler.ReopenAlert)
}
