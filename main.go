package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/iabigrejinha/iab_finance_backend/config"
	"github.com/iabigrejinha/iab_finance_backend/controllers"
	"github.com/iabigrejinha/iab_finance_backend/middleware"
	"github.com/iabigrejinha/iab_finance_backend/repositories"
	"github.com/iabigrejinha/iab_finance_backend/routes"
	"github.com/iabigrejinha/iab_finance_backend/services"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath
	}

	// Connect to database
	db := config.ConnectDB()
	defer db.Close()

	cache := config.NewCache()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	movementRepo := repositories.NewMovementRepository(db)

	// Seed system categories before the root user so the bootstrap account
	// gets grants for all of them.
	if err := categoryRepo.Seed(); err != nil {
		log.Fatal("category seed error:", err)
	}

	// Initialize services
	authService := services.NewAuthService(userRepo, sessionRepo, categoryRepo, cache)
	backupService := services.NewBackupService(db, dbPath)

	if err := authService.InitializeUsers(); err != nil {
		log.Fatal("user bootstrap error:", err)
	}
	if err := sessionRepo.DeleteExpired(); err != nil {
		log.Println("Warning: expired session cleanup failed:", err)
	}

	// Create a new Echo instance
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.GlobalCORS())
	e.Use(rateLimiter.RateLimit())
	e.Use(middleware.SecurityHeaders())

	e.Match([]string{"GET", "HEAD"}, "/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":  "OK",
			"message": "Sistema Financeiro IAB is running",
			"version": "1.0",
		})
	})

	e.Match([]string{"GET", "HEAD"}, "/health", func(c echo.Context) error {
		if err := db.Ping(); err != nil {
			return c.JSON(503, map[string]string{"status": "unhealthy", "database": "down"})
		}
		return c.JSON(200, map[string]string{"status": "healthy", "database": "connected"})
	})

	// Initialize controllers
	authController := controllers.NewAuthController(authService)
	userController := controllers.NewUserController(authService, userRepo)
	categoryController := controllers.NewCategoryController(categoryRepo, cache)
	movementController := controllers.NewMovementController(movementRepo, categoryRepo)
	dashboardController := controllers.NewDashboardController(movementRepo, categoryRepo)
	backupController := controllers.NewBackupController(backupService)

	// Public routes
	routes.RegisterAuthRoutes(e, authController)

	// Authenticated routes
	api := e.Group("/api")
	api.Use(middleware.RequireSession(authService))
	api.Use(middleware.RequirePermissionByMethod())

	routes.RegisterUserRoutes(api, userController, authController)
	routes.RegisterCategoryRoutes(api, categoryController)
	routes.RegisterMovementRoutes(api, movementController, dashboardController)
	routes.RegisterBackupRoutes(api, backupController)

	// Weekly backup email
	scheduler := services.StartBackupScheduler(backupService)
	defer scheduler.Stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	e.Logger.Fatal(e.Start(":" + port))
}
