package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"patient-dashboard/internal/apiclient"
	"patient-dashboard/internal/config"
	"patient-dashboard/internal/dashboard"
	"patient-dashboard/internal/form"
	"patient-dashboard/internal/handlers"
	"patient-dashboard/internal/middleware"
	"patient-dashboard/internal/mockapi"
	"patient-dashboard/internal/models"
	"patient-dashboard/internal/patients"
	"patient-dashboard/internal/routes"
	"patient-dashboard/internal/session"
	"patient-dashboard/internal/utils"
	"patient-dashboard/internal/validation"
	"patient-dashboard/internal/web"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "patient-dashboard",
		Short: "Patient management dashboard",
		// no subcommand means serve
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(mockAPICmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func mockAPICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mockapi",
		Short: "Start a local patient API for development",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMockAPI()
		},
	}
}

// setup loads .env and config and builds the logger.
func setup() (*config.Config, zerolog.Logger, error) {
	// A missing .env is fine; the environment may already be set
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, zerolog.Logger{}, fmt.Errorf("loading .env file: %w", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, zerolog.Logger{}, fmt.Errorf("loading config: %w", err)
	}

	logger := utils.NewLogger(cfg.IsDevelopment())
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	return cfg, logger, nil
}

func newRouter(logger zerolog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	return router
}

func runServe() error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	client, err := apiclient.NewClient(cfg.API.BaseURL, cfg.API.Timeout)
	if err != nil {
		logger.Error().Err(err).Msg("invalid API base URL")
		return err
	}
	patientService := patients.NewService(client)

	validator, err := validation.New(validation.Rules{
		NameMaxLength:       cfg.Validation.NameMaxLength,
		NamePattern:         cfg.Validation.NamePattern,
		AllowedEmailDomains: cfg.Validation.AllowedEmailDomains,
		PhonePattern:        cfg.Validation.PhonePattern,
		PhoneMinDigits:      cfg.Validation.PhoneMinDigits,
		PhoneMaxDigits:      cfg.Validation.PhoneMaxDigits,
		DocumentRequired:    cfg.Validation.DocumentRequired,
		MaxDocumentBytes:    cfg.Validation.DocumentMaxBytes,
		AllowedExtensions:   cfg.Validation.DocumentExtensions,
		AllowedMIMETypes:    cfg.Validation.DocumentMIMETypes,
	})
	if err != nil {
		logger.Error().Err(err).Msg("invalid validation rules")
		return err
	}

	formLogger := logger.With().Str("component", "add-patient-form").Logger()
	dashboardLogger := logger.With().Str("component", "dashboard").Logger()
	newDashboard := func() *dashboard.Dashboard {
		return dashboard.New(patientService, func(onCreated func(models.Patient)) *form.PatientForm {
			return form.NewPatientForm(validator, patientService, onCreated,
				form.WithSubmitTimeout(cfg.SubmitTimeout),
				form.WithLogger(formLogger),
			)
		}, dashboardLogger)
	}
	sessions := session.NewStore(cfg.SessionTTL, newDashboard)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go sessions.Run(ctx, time.Minute)

	router := newRouter(logger)
	router.MaxMultipartMemory = cfg.Validation.DocumentMaxBytes + 1<<20
	router.SetHTMLTemplate(web.Templates())
	routes.SetupRoutes(router, handlers.NewDashboardHandler(validator, logger), sessions, !cfg.IsDevelopment())

	logger.Info().
		Str("port", cfg.Port).
		Str("api_base_url", client.BaseURL()).
		Msg("dashboard running")
	return serve(ctx, router, cfg.Port, logger)
}

func runMockAPI() error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	var store mockapi.Store = mockapi.NewMemoryStore()
	if cfg.MockAPI.DSN != "" {
		db, err := models.InitDB(models.DatabaseConfig{DSN: cfg.MockAPI.DSN, Verbose: cfg.IsDevelopment()})
		if err != nil {
			logger.Error().Err(err).Msg("error connecting to database")
			return err
		}
		store = mockapi.NewGormStore(db)
		logger.Info().Msg("connected to database")
	}

	router := newRouter(logger)

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))

	routes.SetupMockAPIRoutes(router, mockapi.NewHandler(store, cfg.Validation.DocumentMaxBytes, logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().Str("port", cfg.MockAPI.Port).Bool("database", cfg.MockAPI.DSN != "").Msg("mock patient API running")
	return serve(ctx, router, cfg.MockAPI.Port, logger)
}

// serve runs the router until ctx is cancelled, then shuts down gracefully.
func serve(ctx context.Context, handler http.Handler, port string, logger zerolog.Logger) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error().Err(err).Msg("failed to start server")
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
