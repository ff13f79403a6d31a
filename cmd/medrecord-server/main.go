package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ngirwi/medrecord/internal/config"
	"github.com/ngirwi/medrecord/internal/domain/billing"
	"github.com/ngirwi/medrecord/internal/domain/hospitalisation"
	"github.com/ngirwi/medrecord/internal/domain/patient"
	"github.com/ngirwi/medrecord/internal/domain/surveillance"
	"github.com/ngirwi/medrecord/internal/platform/auth"
	"github.com/ngirwi/medrecord/internal/platform/db"
	"github.com/ngirwi/medrecord/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "medrecord-server",
		Short: "Medical record API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				state := "pending"
				applied := ""
				if s.Applied {
					state = "applied"
					if s.AppliedAt != nil {
						applied = s.AppliedAt.Format(time.RFC3339)
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, state, applied)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	zlog.Logger = logger

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	billingLoc, err := time.LoadLocation(cfg.BillingTimezone)
	if err != nil {
		logger.Fatal().Err(err).Str("zone", cfg.BillingTimezone).Msg("unknown billing timezone")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:   cfg.AuthIssuer,
			Audience: cfg.AuthAudience,
			JWKSURL:  cfg.AuthJWKSURL,
		}))
	}

	e.Use(middleware.Audit(logger))

	apiV1 := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// Repositories
	patientRepo := patient.NewRepo(pool)
	surveillanceRepo := surveillance.NewRepo(pool)
	hospRepo := hospitalisation.NewRepo(pool)
	billRepo := billing.NewRepo(pool)

	// Services
	patientSvc := patient.NewService(patientRepo)
	billingSvc := billing.NewService(billRepo, &billingPatientAdapter{repo: patientRepo})
	hospSvc := hospitalisation.NewService(
		hospRepo,
		&hospPatientAdapter{repo: patientRepo},
		surveillanceRepo,
		billingSvc,
		func(ctx context.Context, fn func(ctx context.Context) error) error {
			return db.WithTx(ctx, pool, fn)
		},
		billingLoc,
	)
	surveillanceSvc := surveillance.NewService(surveillanceRepo, &admissionAdapter{repo: hospRepo})

	// Handlers
	patient.NewHandler(patientSvc).RegisterRoutes(apiV1)
	hospitalisation.NewHandler(hospSvc).RegisterRoutes(apiV1)
	surveillance.NewHandler(surveillanceSvc).RegisterRoutes(apiV1)
	billing.NewHandler(billingSvc).RegisterRoutes(apiV1)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

// hospPatientAdapter narrows the patient repository to what the admission
// lifecycle needs.
type hospPatientAdapter struct {
	repo patient.Repository
}

func (a *hospPatientAdapter) Info(ctx context.Context, id uuid.UUID) (*hospitalisation.PatientInfo, error) {
	p, err := a.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &hospitalisation.PatientInfo{
		ID:              p.ID,
		HospitalID:      p.HospitalID,
		MedicalRecordID: p.MedicalRecordID,
	}, nil
}

type billingPatientAdapter struct {
	repo patient.Repository
}

func (a *billingPatientAdapter) Info(ctx context.Context, id uuid.UUID) (*billing.PatientInfo, error) {
	p, err := a.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &billing.PatientInfo{ID: p.ID, HospitalID: p.HospitalID}, nil
}

// admissionAdapter exposes admissions to the surveillance service without a
// package cycle.
type admissionAdapter struct {
	repo hospitalisation.Repository
}

func (a *admissionAdapter) Info(ctx context.Context, id uuid.UUID) (*surveillance.AdmissionInfo, error) {
	h, err := a.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &surveillance.AdmissionInfo{
		ID:         h.ID,
		PatientID:  h.PatientID,
		HospitalID: h.HospitalID,
	}, nil
}
