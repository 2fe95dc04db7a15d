package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/secondbrain/tracker/internal/clock"
	"github.com/secondbrain/tracker/internal/config"
	"github.com/secondbrain/tracker/internal/database"
	"github.com/secondbrain/tracker/internal/handlers"
	"github.com/secondbrain/tracker/internal/logger"
	"github.com/secondbrain/tracker/internal/middleware"
	"go.uber.org/zap"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	var zapLogger *zap.Logger
	if cfg.DevLogging {
		zapLogger, err = logger.NewDevelopmentLogger(debugMode)
	} else {
		zapLogger, err = logger.NewProductionLogger(debugMode)
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("db_path", cfg.DBPath),
	)

	db, err := database.New(cfg.DBPath)
	if err != nil {
		zapLogger.Fatal("failed_to_open_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database", zap.Error(err))
		}
	}()

	zapLogger.Info("database_ready")

	// Initialize repositories
	clk := clock.System()
	taskRepo := database.NewTaskRepository(db, clk)
	timerRepo := database.NewTimerRepository(db, clk)
	noteRepo := database.NewNoteRepository(db, clk)
	attachmentRepo := database.NewAttachmentRepository(db, clk)
	dashRepo := database.NewDashboardRepository(db, clk)

	// Initialize handlers
	taskHandler := handlers.NewTaskHandler(taskRepo)
	timerHandler := handlers.NewTimerHandler(timerRepo)
	noteHandler := handlers.NewNoteHandler(noteRepo)
	attachmentHandler := handlers.NewAttachmentHandler(attachmentRepo)
	dashHandler := handlers.NewDashboardHandler(dashRepo)
	healthChecker := handlers.NewHealthChecker(db)

	// Setup router. Middleware executes in reverse order of registration:
	// registered last wraps innermost.
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")

	apiRouter := r.PathPrefix("/api").Subrouter()

	tasksRouter := apiRouter.PathPrefix("/tasks").Subrouter()
	taskHandler.RegisterRoutes(tasksRouter)
	timerHandler.RegisterRoutes(apiRouter)
	noteHandler.RegisterRoutes(apiRouter)
	attachmentHandler.RegisterRoutes(apiRouter)
	dashHandler.RegisterRoutes(apiRouter)

	corsWrapper := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           86400,
	})

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        corsWrapper.Handler(r),
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		zapLogger.Info("server_listening", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}
