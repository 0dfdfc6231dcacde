package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"tawteen-backend/internal/config"
	"tawteen-backend/internal/cron"
	"tawteen-backend/internal/database"
	"tawteen-backend/internal/handlers"
	"tawteen-backend/internal/middleware"
	"tawteen-backend/internal/storage"
)

func main() {
	// 1. Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Connect to PostgreSQL (bootstraps schema + seed data)
	db := database.New(&cfg.DB)
	defer db.Close()

	// 3. Initialize the export-archive store
	store, err := newStore(&cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// 4. Set up router with global middleware
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 5. Initialize handlers with their dependencies
	authHandler := handlers.NewAuthHandler(db, cfg.JWTSecret)
	assessmentHandler := handlers.NewAssessmentHandler(db)
	reportHandler := handlers.NewReportHandler(db, store)
	adminHandler := handlers.NewAdminHandler(db)
	dashboardHandler := handlers.NewDashboardHandler(db)
	notificationHandler := handlers.NewNotificationHandler(db)
	activityHandler := handlers.NewActivityHandler(db)
	userHandler := handlers.NewUserHandler(db)

	// Start the daily settings-drift review job
	cron.StartReviewer(db)

	// 6. Public routes (no authentication required)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Tawteen Compliance Risk API"))
	})
	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(db.Health())
	})

	// Questionnaire form data + submission. The submit endpoint is the
	// only public write, so it gets the tightest limiter.
	r.Get("/api/sectors", adminHandler.ListSectors)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(rate.Every(10*time.Second), 3))
		r.Post("/api/assessments", assessmentHandler.Submit)
	})

	// Result lookup by reference — the reference is the capability
	r.Get("/api/assessments/ref/{reference}", assessmentHandler.GetByReference)
	r.Get("/api/reports/{reference}", reportHandler.Get)

	// Auth routes — public, rate-limited (~5 attempts/minute per IP)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(rate.Every(12*time.Second), 5))
		r.Post("/api/auth/register", authHandler.Register)
		r.Post("/api/auth/login", authHandler.Login)
	})

	// 7. Protected routes (require valid JWT)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))

		// Current user profile
		r.Get("/api/auth/me", authHandler.GetMe)

		// Submission review (read-only — accessible to all authenticated users)
		r.Get("/api/assessments", assessmentHandler.List)
		r.Get("/api/assessments/{id}", assessmentHandler.GetByID)

		// Dashboard
		r.Get("/api/dashboard/metrics", dashboardHandler.GetMetrics)
		r.Get("/api/dashboard/sectors", dashboardHandler.GetSectorBreakdown)

		// Notifications (user-scoped)
		r.Get("/api/notifications", notificationHandler.List)
		r.Get("/api/notifications/count", notificationHandler.UnreadCount)
		r.Patch("/api/notifications/read-all", notificationHandler.MarkAllRead)
		r.Patch("/api/notifications/{id}/read", notificationHandler.MarkRead)

		// Write operations restricted to admin role
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireMinRole("admin"))

			// Data export
			r.Get("/api/assessments/export", reportHandler.ExportCSV)

			// Activity log
			r.Get("/api/activity", activityHandler.List)

			// Sector reference data
			r.Post("/api/sectors", adminHandler.CreateSector)
			r.Put("/api/sectors/{id}", adminHandler.UpdateSector)
			r.Delete("/api/sectors/{id}", adminHandler.DeleteSector)

			// Engine settings
			r.Get("/api/settings", adminHandler.GetSettings)
			r.Put("/api/settings", adminHandler.UpdateSettings)
		})

		// User management restricted to super_admin
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireMinRole("super_admin"))

			r.Get("/api/users", userHandler.List)
			r.Patch("/api/users/{id}/role", userHandler.UpdateRole)
			r.Delete("/api/users/{id}", userHandler.Delete)
		})
	})

	// 8. Start server with graceful shutdown
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: r,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Server started on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-done
	log.Println("Server stopped")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited properly")
}

// newStore picks the export-archive backend from configuration.
func newStore(cfg *config.StorageConfig) (storage.Store, error) {
	if cfg.Backend == "r2" {
		return storage.NewR2Store(cfg.R2AccountID, cfg.R2AccessKey, cfg.R2SecretKey, cfg.R2Bucket, cfg.R2PublicURL)
	}
	return storage.NewLocalStore(cfg.Dir, cfg.BaseURL)
}
