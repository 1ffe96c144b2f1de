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

	"warranty-platform/internal/auth"
	"warranty-platform/internal/config"
	"warranty-platform/internal/infrastructure"
	"warranty-platform/internal/logging"
	"warranty-platform/internal/middleware"
	"warranty-platform/internal/payment"
	"warranty-platform/internal/router"
	"warranty-platform/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "warrantyd",
	Short: "Device warranty and fine settlement API",
	Long: `warrantyd serves the warranty plan catalog, warranty issuance, landing-page
purchases, phone-checker fines and the partner directory.

Configuration is read from the environment (and a .env file when present).`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE:  runMigrate,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the admin account, access rules and starter plans",
	RunE:  runSeed,
}

var skipSeed bool

func init() {
	serveCmd.Flags().BoolVar(&skipSeed, "skip-seed", false, "do not seed missing data on startup")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds what every subcommand needs.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
}

func bootstrap() (*app, error) {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := infrastructure.ConnectDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := infrastructure.MigrateAllSchemas(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database schemas: %w", err)
	}

	logger.Info("database ready", zap.String("driver", cfg.Database.Driver))
	return &app{cfg: cfg, logger: logger, db: db}, nil
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.logger.Sync()
}

func (a *app) seed(ctx context.Context, store *service.DatabaseAccessStore, users service.UserService,
	plans service.WarrantyPlanService, coverage service.CoveragePlanService) error {
	seeder := infrastructure.NewSeedDataManager(a.db, users, store, plans, coverage, a.logger)
	return seeder.SeedAll(ctx, a.cfg.SeedAdminUsername, a.cfg.SeedAdminPassword)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	a.logger.Info("migrations applied")
	return nil
}

func runSeed(cmd *cobra.Command, _ []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	store := service.NewDatabaseAccessStore(a.db)
	return a.seed(cmd.Context(), store,
		service.NewUserService(a.db),
		service.NewWarrantyPlanService(a.db, store, a.logger),
		service.NewCoveragePlanService(a.db, store, a.logger))
}

func newGateway(cfg config.PaymentConfig, logger *zap.Logger) (payment.Gateway, error) {
	switch cfg.Mode {
	case "sandbox":
		logger.Warn("using in-process sandbox payment gateway")
		return payment.NewSandboxGateway(), nil
	case "cashfree":
		if cfg.ClientID == "" || cfg.ClientSecret == "" {
			return nil, errors.New("PAYMENT_CLIENT_ID and PAYMENT_CLIENT_SECRET are required for cashfree")
		}
		return payment.NewCashfreeGateway(payment.CashfreeConfig{
			BaseURL:      cfg.BaseURL,
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			APIVersion:   cfg.APIVersion,
			ReturnURL:    cfg.ReturnURL,
		}, &http.Client{Timeout: 15 * time.Second}, logger), nil
	default:
		return nil, fmt.Errorf("unsupported payment mode: %s", cfg.Mode)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := service.NewDatabaseAccessStore(a.db)
	users := service.NewUserService(a.db)
	plans := service.NewWarrantyPlanService(a.db, store, a.logger)
	coverage := service.NewCoveragePlanService(a.db, store, a.logger)

	if !skipSeed {
		if err := a.seed(ctx, store, users, plans, coverage); err != nil {
			return fmt.Errorf("failed to setup seed data: %w", err)
		}
	}

	authz, err := service.NewAuthorizationService(ctx, store, a.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize authorization service: %w", err)
	}

	gateway, err := newGateway(a.cfg.Payment, a.logger)
	if err != nil {
		return err
	}

	tokens := auth.NewService(a.cfg.Auth.JWTSecret, a.cfg.Auth.TokenTTL)
	limiter := middleware.NewRateLimiter(a.cfg.RateLimitRPS, a.cfg.RateLimitBurst)
	go limiter.Run(ctx)

	gin.SetMode(a.cfg.GinMode)
	engine := router.New(router.Services{
		Tokens:          tokens,
		Authentication:  service.NewAuthenticationService(users, tokens),
		Authorization:   authz,
		Users:           users,
		Plans:           plans,
		CoveragePlans:   coverage,
		Warranties:      service.NewWarrantyService(a.db, a.logger),
		Inspections:     service.NewInspectionService(a.db, a.logger),
		DirectWarranty:  service.NewDirectWarrantyService(a.db, a.logger),
		Fines:           service.NewFineService(a.db, gateway, store, a.logger, a.cfg.Payment.Currency),
		LandingPayments: service.NewLandingPaymentService(a.db, gateway, a.logger, a.cfg.Payment.Currency),
		Partners:        service.NewPartnerService(a.db),
		Audit:           store,
		AccessRules:     service.NewAccessRuleService(store, authz, store, a.logger),
		RateLimiter:     limiter,
		Logger:          a.logger,
	})

	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
