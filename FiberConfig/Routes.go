package FiberConfig

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/vishwajeetguru/smart-truck-manager/Cache"
	"github.com/vishwajeetguru/smart-truck-manager/Config"
	"github.com/vishwajeetguru/smart-truck-manager/Controllers"
	"github.com/vishwajeetguru/smart-truck-manager/Logger"
	"github.com/vishwajeetguru/smart-truck-manager/email"
	"github.com/vishwajeetguru/smart-truck-manager/middleware"
	"gorm.io/gorm"
)

// Services are the collaborators that differ between production and tests.
type Services struct {
	OTP  Cache.OTPStore
	Mail email.Sender
}

func SetupRoutes(app *fiber.App, cfg *Config.Config, db *gorm.DB, svc Services) {
	auth := middleware.NewAuthenticator(db, cfg.Auth)
	verify := auth.Verify()

	// Initialize handlers
	authHandler := Controllers.NewAuthHandler(db, auth, svc.OTP, svc.Mail, cfg.Auth)
	truckHandler := Controllers.NewTruckHandler(db)
	driverHandler := Controllers.NewDriverHandler(db)
	tripHandler := Controllers.NewTripHandler(db)
	paymentHandler := Controllers.NewPaymentHandler(db)
	expenseHandler := Controllers.NewExpenseHandler(db)
	fuelHandler := Controllers.NewFuelHandler(db)
	masterHandler := Controllers.NewMasterHandler(db)
	noticeHandler := Controllers.NewNoticeHandler(db)
	dashboardHandler := Controllers.NewDashboardHandler(db)
	reportHandler := Controllers.NewReportHandler(db, cfg.Report.MaxRows)
	logHandler := Controllers.NewRequestLogHandler(requestLogPath)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "time": time.Now()})
	})

	// API group
	api := app.Group("/api")

	// Auth routes, public except the profile endpoints
	authRoutes := api.Group("/auth")
	authRoutes.Post("/send-otp", authHandler.SendOTP)
	authRoutes.Post("/verify-otp", authHandler.VerifyOTP)
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Get("/profile", verify, authHandler.GetProfile)
	authRoutes.Patch("/profile", verify, authHandler.UpdateProfile)
	authRoutes.Post("/change-password", verify, authHandler.ChangePassword)

	// Everything below is scoped to the signed in owner

	trucks := api.Group("/trucks", verify)
	trucks.Get("/", truckHandler.GetTrucks)
	trucks.Post("/", truckHandler.CreateTruck)
	trucks.Patch("/:id", truckHandler.UpdateTruck)
	trucks.Delete("/:id", truckHandler.DeleteTruck)

	drivers := api.Group("/drivers", verify)
	drivers.Get("/", driverHandler.GetDrivers)
	drivers.Post("/", driverHandler.CreateDriver)
	drivers.Get("/:id", driverHandler.GetDriver)
	drivers.Patch("/:id", driverHandler.UpdateDriver)
	drivers.Delete("/:id", driverHandler.DeleteDriver)
	drivers.Get("/:id/payments", driverHandler.GetDriverPayments)
	drivers.Post("/:id/payments", driverHandler.CreateDriverPayment)

	// Static routes before the ID routes to avoid conflicts
	trips := api.Group("/trips", verify)
	trips.Post("/calculate", tripHandler.Calculate)
	trips.Get("/", tripHandler.GetTrips)
	trips.Post("/", tripHandler.CreateTrip)
	trips.Get("/:id", tripHandler.GetTrip)
	trips.Patch("/:id", tripHandler.UpdateTrip)
	trips.Delete("/:id", tripHandler.DeleteTrip)

	payments := api.Group("/payments", verify)
	payments.Get("/history", paymentHandler.GetPaymentHistory)
	payments.Get("/", paymentHandler.GetPayments)
	payments.Post("/", paymentHandler.CreatePayment)
	payments.Delete("/:id", paymentHandler.DeletePayment)

	expenses := api.Group("/expenses", verify)
	expenses.Get("/", expenseHandler.GetExpenses)
	expenses.Post("/", expenseHandler.CreateExpense)
	expenses.Delete("/:id", expenseHandler.DeleteExpense)

	fuel := api.Group("/fuel-expenses", verify)
	fuel.Get("/", fuelHandler.GetFuelExpenses)
	fuel.Post("/", fuelHandler.CreateFuelExpense)
	fuel.Delete("/:id", fuelHandler.DeleteFuelExpense)

	pumps := api.Group("/petrol-pumps", verify)
	pumps.Get("/", masterHandler.GetPetrolPumps)
	pumps.Post("/", masterHandler.CreatePetrolPump)
	pumps.Delete("/:id", masterHandler.DeletePetrolPump)

	suppliers := api.Group("/suppliers", verify)
	suppliers.Get("/", masterHandler.GetSuppliers)
	suppliers.Post("/", masterHandler.CreateSupplier)
	suppliers.Patch("/:id", masterHandler.UpdateSupplier)
	suppliers.Delete("/:id", masterHandler.DeleteSupplier)

	materials := api.Group("/materials", verify)
	materials.Get("/", masterHandler.GetMaterials)
	materials.Post("/", masterHandler.CreateMaterial)
	materials.Delete("/:id", masterHandler.DeleteMaterial)

	notices := api.Group("/notices", verify)
	notices.Get("/", noticeHandler.GetNotices)
	notices.Post("/", noticeHandler.CreateNotice)
	notices.Delete("/:id", noticeHandler.DeleteNotice)

	api.Get("/dashboard", verify, dashboardHandler.GetDashboard)
	api.Get("/reports", verify, reportHandler.GetReport)

	api.Get("/admin/logs", verify, logHandler.GetLogs)
}

const requestLogPath = "logs/requests.log"

// NewApp builds the fiber app with middleware and routes, without listening.
func NewApp(cfg *Config.Config, db *gorm.DB, svc Services) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Smart Truck Manager",
		BodyLimit:    8 * 1024 * 1024,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
	})

	app.Use(middleware.LoggingMiddleware(middleware.LogConfig{
		Console:     true,
		File:        cfg.Log.File,
		LogFilePath: requestLogPath,
		SkipPaths:   []string{"/health"},
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestCompression, // 2
	}))

	origins := strings.Join(cfg.Server.AllowedOrigins, ",")
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		ExposeHeaders:    "Content-Disposition, X-Request-ID",
		AllowCredentials: origins != "*", // cookies only with explicit origins
		MaxAge:           300,            // Max age for preflight requests caching (5 minutes)
	}))

	SetupRoutes(app, cfg, db, svc)
	return app
}

func FiberConfig(cfg *Config.Config, db *gorm.DB, svc Services) error {
	app := NewApp(cfg, db, svc)
	Logger.Log.Info().Str("port", cfg.Server.Port).Msg("Server Up...")
	return app.Listen(fmt.Sprintf(":%s", cfg.Server.Port))
}
