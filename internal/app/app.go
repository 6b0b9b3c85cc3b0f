package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"educapta/internal/auth"
	"educapta/internal/class"
	"educapta/internal/config"
	"educapta/internal/db"
	"educapta/internal/events"
	"educapta/internal/health"
	"educapta/internal/logger"
	"educapta/internal/messaging"
	"educapta/internal/metrics"
	"educapta/internal/middleware"
	"educapta/internal/school"
	"educapta/internal/student"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
)

type App struct {
	config   *config.Config
	router   chi.Router
	server   *http.Server
	logger   *slog.Logger
	producer events.Publisher
}

func New() *App {
	slogLogger := logger.NewWithServiceContext(ServiceName, Version)

	// Set as default logger so slog.Info() uses the same handler
	slog.SetDefault(slogLogger)

	slogLogger.Info("initializing application")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	slogLogger.Info("config loaded", "env", cfg.Env)

	app := &App{
		config: cfg,
		router: chi.NewRouter(),
		logger: slogLogger,
	}

	m, err := metrics.New(ServiceName, slogLogger)
	if err != nil {
		log.Fatalf("failed to initialize metrics: %v", err)
	}

	database := db.New(cfg.Database)
	if err := m.Database.RegisterDB(database.DB, otel.Meter(ServiceName)); err != nil {
		slogLogger.Warn("failed to register database pool metrics", "error", err)
	}

	ctx := context.Background()
	err = db.RunMigrations(ctx, database,
		(*school.Escola)(nil),
		(*class.Turma)(nil),
		(*student.Aluno)(nil),
		(*auth.Usuario)(nil),
		(*auth.RefreshToken)(nil),
	)
	if err != nil {
		log.Fatal("failed to run migrations:", err)
	}

	app.router.Use(middleware.CORS(cfg.Server.CORSOrigins))
	app.router.Use(middleware.RequestMetrics(m))

	// Health endpoints (no auth required)
	healthHandler := health.NewHandler()
	healthHandler.RegisterRoutes(app.router)

	// Auth setup
	authRepo := auth.NewRepository(database, m)
	authService := auth.NewService(authRepo, cfg.Auth)
	authHandler := auth.NewHandler(authService, slogLogger, m)
	authHandler.RegisterRoutes(app.router)

	// NATS producer for entity change events (optional)
	producer, err := messaging.NewProducer(cfg.NATS.URL, cfg.NATS.Subject, slogLogger, m)
	var publisher events.Publisher
	if err != nil {
		slogLogger.Warn("failed to initialize NATS producer", "error", err)
	} else {
		publisher = producer
		app.producer = producer
	}

	// Resource registries
	schoolRepo := school.NewRepository(database, m)
	schoolHandler := school.NewHandler(schoolRepo, slogLogger)

	studentRepo := student.NewRepository(database, m)
	studentService := student.NewService(studentRepo, publisher)
	studentHandler := student.NewHandler(studentService, slogLogger, m)

	classRepo := class.NewRepository(database, m)
	classService := class.NewService(classRepo, schoolRepo, publisher)
	classHandler := class.NewHandler(classService, slogLogger, m)

	// Protected routes
	app.router.Route("/api", func(r chi.Router) {
		r.Use(auth.Middleware(cfg.Auth.JWTSecret, slogLogger))
		schoolHandler.RegisterRoutes(r)
		studentHandler.RegisterRoutes(r)
		classHandler.RegisterRoutes(r)
	})

	slogLogger.Info("application initialized successfully")

	return app
}

func (a *App) Run() error {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.config.Server.IdleTimeout) * time.Second,
	}

	a.logger.Info("server starting", "port", a.config.Server.Port)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")
	if a.producer != nil {
		a.producer.Close()
	}
	return a.server.Shutdown(ctx)
}
