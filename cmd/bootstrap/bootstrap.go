package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"panda-service/config"
	deliveryHttp "panda-service/internal/delivery/http"
	"panda-service/internal/delivery/http/handler"
	"panda-service/internal/delivery/http/middleware"
	"panda-service/internal/infrastructure/database"
	"panda-service/internal/repository"
	"panda-service/internal/service"
	"panda-service/internal/usecase"
	"panda-service/internal/validation"
	"panda-service/pkg/validator"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config  *config.Config
	DB      *gorm.DB
	Server  *http.Server
	Sweeper *service.MissedAppointmentService
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	// Setup logger
	setupLogger(cfg.App.LogLevel)
	logrus.Info("Configuration loaded successfully")

	// Initialize database
	db, err := database.NewConnection(cfg.DB, cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	logrus.Info("Database connected successfully")

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db, cfg.DB); err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		logrus.Info("Database migrated successfully")
	}

	// Initialize all layers
	app.Server, app.Sweeper = initializeServer(cfg, db)

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(level string) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)
}

// initializeServer creates and configures the HTTP server and the background sweeper
func initializeServer(cfg *config.Config, db *gorm.DB) (*http.Server, *service.MissedAppointmentService) {
	// Initialize logger
	log := logrus.StandardLogger()

	// Initialize validators
	rules := validation.DefaultRules(cfg.Validation)
	customValidator := validator.NewValidator()
	validation.RegisterDomainRules(customValidator, rules)
	patientValidator := validation.NewPatientValidator(rules)

	// Initialize repositories
	patientRepo := repository.NewPatientRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize services
	auditService := service.NewAuditService(log, auditLogRepo)
	sweeper := service.NewMissedAppointmentService(db, log, cfg.Scheduler, appointmentRepo, auditService)

	// Initialize usecases
	patientUsecase := usecase.NewPatientUsecase(db, log, patientRepo, appointmentRepo, auditService)
	appointmentUsecase := usecase.NewAppointmentUsecase(db, log, appointmentRepo, patientRepo, auditService)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)

	// Initialize handlers
	patientHandler := handler.NewPatientHandler(patientUsecase, appointmentUsecase, patientValidator, customValidator, log)
	appointmentHandler := handler.NewAppointmentHandler(appointmentUsecase, customValidator, log)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase, log)
	healthHandler := handler.NewHealthHandler(db)

	// Initialize middleware
	corsMiddleware := middleware.NewCORSMiddleware()
	loggingMiddleware := middleware.NewLoggingMiddleware(log)

	// Initialize router
	router := deliveryHttp.NewRouter(patientHandler, appointmentHandler, auditLogHandler, healthHandler, corsMiddleware, loggingMiddleware)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	return &http.Server{
		Addr:              serverAddr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}, sweeper
}

// Run starts the HTTP server and the sweeper, and handles graceful shutdown
func (app *App) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.Sweeper.Start(ctx); err != nil {
		logrus.Fatalf("Failed to start missed appointment sweeper: %v", err)
	}

	// Start server in goroutine
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Stop background jobs before the database goes away
	app.Sweeper.Stop()

	// Close connections
	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close closes the database connection
func (app *App) Close() {
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}
