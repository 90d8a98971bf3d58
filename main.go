package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"

	apihttp "aquasmart-portal/internal/api/http"
	"aquasmart-portal/internal/audit"
	"aquasmart-portal/internal/backend"
	billingapp "aquasmart-portal/internal/billing/application"
	"aquasmart-portal/internal/config"
	consumptionapp "aquasmart-portal/internal/consumption/application"
	consumption "aquasmart-portal/internal/consumption/domain"
	"aquasmart-portal/internal/export"
	"aquasmart-portal/internal/logging"
	"aquasmart-portal/internal/observability/metrics"
	requestsapp "aquasmart-portal/internal/requests/application"
)

func main() {
	configPath := flag.String("config", os.Getenv("PORTAL_CONFIG"), "path to the YAML configuration file")
	envPath := flag.String("env", ".env", "path to an optional .env file")
	flag.Parse()

	bootstrap := logging.New(logging.Options{Level: os.Getenv("LOG_LEVEL"), Format: os.Getenv("LOG_FORMAT")})
	if err := run(*configPath, *envPath, bootstrap); err != nil {
		bootstrap.Error().Err(err).Msg("portal stopped")
		os.Exit(1)
	}
}

func run(configPath, envPath string, bootstrap zerolog.Logger) error {
	if err := config.LoadDotEnv(envPath); err != nil {
		return err
	}
	holder, err := config.NewHolder(configPath, bootstrap)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg := holder.Get()
	logger := logging.New(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Dynamic: true})

	var db *sql.DB
	var auditLogger audit.Logger = audit.NewLogWriter(logger)
	if cfg.Database.URL != "" {
		db, err = sql.Open("pgx", cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("db open: %w", err)
		}
		defer db.Close()

		repo := audit.NewRepository(db)
		if err := prepareAuditStore(db, repo); err != nil {
			return err
		}
		auditLogger = repo
	}
	metrics.Init(db, logger)

	client, err := backend.NewClient(cfg.Backend.BaseURL,
		backend.WithTimeout(cfg.Backend.Timeout),
		backend.WithLogger(logger.With().Str("component", "backend").Logger()),
	)
	if err != nil {
		return fmt.Errorf("backend client: %w", err)
	}

	loc := cfg.Location()
	consumptionSvc, err := consumptionapp.NewService(consumption.NewAggregator(loc, cfg.Consumption.MaxChartPoints), logger)
	if err != nil {
		return err
	}
	invoiceSvc, err := billingapp.NewService(loc, billingapp.SystemClock{}, logger)
	if err != nil {
		return err
	}
	requestSvc, err := requestsapp.NewService(auditLogger, logger)
	if err != nil {
		return err
	}

	branding, err := export.NewBrandingStore(brandingSettings(cfg), logger)
	if err != nil {
		return fmt.Errorf("branding: %w", err)
	}
	holder.OnChange(func(next *config.Config) {
		logging.SetLevel(next.Logging.Level)
		if err := branding.Update(brandingSettings(next)); err != nil {
			logger.Warn().Err(err).Msg("branding reload failed")
		}
	})
	if configPath != "" {
		if err := holder.WatchFile(); err != nil {
			logger.Warn().Err(err).Msg("config watch disabled")
		}
		defer holder.Stop()
	}

	router, err := apihttp.NewRouter(apihttp.Deps{
		Backend:        client,
		Consumption:    consumptionSvc,
		Invoices:       invoiceSvc,
		Requests:       requestSvc,
		Exporter:       export.NewExporter(branding, loc, logger),
		Audit:          auditLogger,
		Logger:         logger,
		JWTSecret:      []byte(cfg.Auth.JWTSecret),
		LoginPath:      cfg.Auth.LoginPath,
		RequestTimeout: cfg.Server.WriteTimeout,
	})
	if err != nil {
		return fmt.Errorf("router: %w", err)
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout + 5*time.Second,
	}
	return serve(server, logger)
}

func prepareAuditStore(db *sql.DB, repo *audit.Repository) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("audit schema: %w", err)
	}
	return nil
}

func serve(server *http.Server, logger zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	}
}

func brandingSettings(cfg *config.Config) export.BrandingSettings {
	return export.BrandingSettings{
		Title:        cfg.Branding.Title,
		Organization: cfg.Branding.Organization,
		Watermark:    cfg.Branding.Watermark,
		LogoPath:     cfg.Branding.LogoPath,
	}
}
