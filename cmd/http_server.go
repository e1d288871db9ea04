package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/worklog/api"
	"github.com/frahmantamala/worklog/internal"
	"github.com/frahmantamala/worklog/internal/audit"
	"github.com/frahmantamala/worklog/internal/auth"
	authPostgres "github.com/frahmantamala/worklog/internal/auth/postgres"
	"github.com/frahmantamala/worklog/internal/core/database"
	"github.com/frahmantamala/worklog/internal/core/events"
	"github.com/frahmantamala/worklog/internal/department"
	departmentPostgres "github.com/frahmantamala/worklog/internal/department/postgres"
	"github.com/frahmantamala/worklog/internal/report"
	reportPostgres "github.com/frahmantamala/worklog/internal/report/postgres"
	"github.com/frahmantamala/worklog/internal/settings"
	settingsPostgres "github.com/frahmantamala/worklog/internal/settings/postgres"
	"github.com/frahmantamala/worklog/internal/status"
	statusPostgres "github.com/frahmantamala/worklog/internal/status/postgres"
	"github.com/frahmantamala/worklog/internal/storage"
	"github.com/frahmantamala/worklog/internal/transport"
	"github.com/frahmantamala/worklog/internal/transport/middleware"
	"github.com/frahmantamala/worklog/internal/transport/rest"
	"github.com/frahmantamala/worklog/internal/user"
	userPostgres "github.com/frahmantamala/worklog/internal/user/postgres"
	"github.com/frahmantamala/worklog/internal/workentry"
	workentryPostgres "github.com/frahmantamala/worklog/internal/workentry/postgres"
	"github.com/frahmantamala/worklog/internal/worktype"
	worktypePostgres "github.com/frahmantamala/worklog/internal/worktype/postgres"
	"github.com/frahmantamala/worklog/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *database.Handles
	EventBus *events.EventBus
	Router   *chi.Mux
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "env", deps.Config.App.Env)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		// let in-flight audit handlers finish before the pool goes away
		deps.EventBus.Wait()
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.LoggerWrapper()

	db, err := database.Open(config.Database, lg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	files, err := storage.NewLocal(config.Storage.Root)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	spec, err := api.Load(context.Background())
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	lg.Debug("openapi document loaded", "paths", spec.Paths.Len())

	bus := events.NewEventBus(lg)
	audit.NewLogger(lg).Register(bus)

	router := chi.NewRouter()
	handlers := buildHandlers(config, db, files, bus, lg)
	rest.RegisterAllRoutes(router, handlers, rest.RouterOptions{
		AllowedOrigins: config.Server.Origins(),
		LoginLimiter:   middleware.NewIPRateLimiter(config.RateLimit.LoginPerSecond, config.RateLimit.LoginBurst),
		OpenAPISpec:    api.Spec,
	}, lg)

	return &Dependencies{
		Config:   config,
		DB:       db,
		EventBus: bus,
		Router:   router,
		Logger:   lg,
	}, nil
}

// buildHandlers wires repositories, services and handlers. Settings doubles as the business clock
// for work entries and reports.
func buildHandlers(cfg *internal.Config, db *database.Handles, files storage.FileStore, bus events.Publisher, lg *slog.Logger) rest.Handlers {
	base := transport.NewBaseHandler(lg)
	policy := auth.NewPolicy()
	hasher := auth.NewPasswordHasher(cfg.Security.BCryptCost)

	authService := auth.NewService(authPostgres.NewRepository(db.Gorm), auth.NewJWTTokenGenerator(cfg.Security), hasher, lg)
	settingsService := settings.NewService(settingsPostgres.NewSettingsRepository(db.Gorm), files, bus, lg)
	departmentService := department.NewService(departmentPostgres.NewDepartmentRepository(db.Gorm), policy, lg)
	workTypeService := worktype.NewService(worktypePostgres.NewWorkTypeRepository(db.Gorm), policy, lg)
	statusService := status.NewService(statusPostgres.NewStatusRepository(db.Gorm), policy, lg)
	userService := user.NewService(userPostgres.NewUserRepository(db.Gorm), departmentService, hasher, policy, files, lg)

	entries := workentryPostgres.NewWorkEntryRepository(db.Gorm)
	workEntryService := workentry.NewService(
		entries,
		workentry.References{
			Departments: departmentService,
			WorkTypes:   workTypeService,
			Statuses:    statusService,
		},
		settingsService,
		files,
		bus,
		policy,
		lg,
		cfg.Storage.MaxUploadBytes,
	)
	reportService := report.NewService(entries, reportPostgres.NewDirectoryRepository(db.SQL), settingsService, departmentService, lg)

	return rest.Handlers{
		Health:      rest.NewHealthHandler(db.SQL, cfg.Database.Driver),
		Auth:        auth.NewHandler(base, authService),
		Settings:    settings.NewHandler(base, settingsService),
		Departments: department.NewHandler(base, departmentService),
		WorkTypes:   worktype.NewHandler(base, workTypeService),
		Statuses:    status.NewHandler(base, statusService),
		Users:       user.NewHandler(base, userService),
		WorkEntries: workentry.NewHandler(base, workEntryService),
		Reports:     report.NewHandler(base, reportService),
	}
}
