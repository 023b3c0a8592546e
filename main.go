package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/campushq/student_admin_backend_go/internal/config"
	"github.com/campushq/student_admin_backend_go/internal/database"
	"github.com/campushq/student_admin_backend_go/internal/handlers"
	"github.com/campushq/student_admin_backend_go/internal/middleware"
	"github.com/campushq/student_admin_backend_go/internal/repositories"
	"github.com/campushq/student_admin_backend_go/internal/services"
	myvalidator "github.com/campushq/student_admin_backend_go/pkg/validator"
)

func main() {
	// 1) Load config sekali di awal (fail-fast kalau JWT_SECRET / DSN kosong)
	cfg := config.Load()

	// 2) Connect DB
	db, err := database.Connect(cfg.DSN)
	if err != nil {
		log.Fatalf("Gagal koneksi database: %v", err)
	}
	defer func() { _ = db.Close() }()

	// 3) Init dependencies
	v := myvalidator.New()
	principals := repositories.NewPrincipalRepo(db)
	requests := repositories.NewPasswordRequestRepo(db)

	studentSvc := services.NewStudentService(principals, requests, v, cfg.BcryptCost)
	requestSvc := services.NewPasswordRequestService(requests, v, cfg.BcryptCost)

	// 4) Init handlers
	authHandler := handlers.NewAuthHandler(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.BcryptCost, principals, studentSvc)
	studentHandler := handlers.NewStudentHandler(studentSvc)
	requestHandler := handlers.NewPasswordRequestHandler(requestSvc)

	// 5) Fiber app dengan timeout & proxy aware (untuk IP akurat di balik reverse proxy)
	app := fiber.New(fiber.Config{
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,

		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies: []string{
			"127.0.0.1", "::1",
			"10.0.0.0/8",
			"172.16.0.0/12",
			"192.168.0.0/16",
		},
		EnableIPValidation: true,
	})

	// 6) CORS
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	// 7) Routes
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })

	protect := middleware.Protect(cfg.JWTSecret, principals)
	adminOnly := middleware.RequireRole("admin")
	studentOnly := middleware.RequireRole("student")
	anyUser := middleware.RequireRole("admin", "student")

	api := app.Group("/api/v1")

	// auth
	api.Post("/auth/student/register", authHandler.RegisterStudent)
	api.Post("/auth/student/login", authHandler.LoginStudent)
	api.Post("/auth/admin/register", authHandler.RegisterAdmin)
	api.Post("/auth/admin/login", authHandler.LoginAdmin)
	api.Get("/auth/me", protect, anyUser, authHandler.Me)
	api.Put("/auth/profile", protect, studentOnly, authHandler.UpdateProfile)

	// password change requests
	api.Post("/password-requests", protect, studentOnly, requestHandler.Submit)
	api.Get("/password-requests/mine", protect, studentOnly, requestHandler.ListMine)
	api.Get("/password-requests", protect, adminOnly, requestHandler.ListAll)
	api.Put("/password-requests/:requestId/approve", protect, adminOnly, requestHandler.Approve)
	api.Put("/password-requests/:requestId/reject", protect, adminOnly, requestHandler.Reject)

	// student management (admin) + dashboard (student)
	api.Get("/students/dashboard/me", protect, studentOnly, studentHandler.Dashboard)
	api.Get("/students", protect, adminOnly, studentHandler.List)
	api.Get("/students/:id", protect, adminOnly, studentHandler.Get)
	api.Post("/students", protect, adminOnly, studentHandler.Create)
	api.Put("/students/:id", protect, adminOnly, studentHandler.Update)
	api.Delete("/students/:id", protect, adminOnly, studentHandler.Delete)

	// 8) Server start
	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting server on %s (CORS origins: %s)", addr, cfg.CORSOrigins)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(addr); err != nil {
			log.Fatalf("Server listen error: %v", err)
		}
	}()

	<-quit
	log.Println("Shutdown signal received, stopping server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped gracefully.")
}
