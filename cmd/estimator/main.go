package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alexanderramin/estimator/internal/api"
	"github.com/alexanderramin/estimator/internal/cli"
	"github.com/alexanderramin/estimator/internal/config"
	"github.com/alexanderramin/estimator/internal/db"
	"github.com/alexanderramin/estimator/internal/repository"
	"github.com/alexanderramin/estimator/internal/service"
	"github.com/alexanderramin/estimator/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Defaults, then ~/.estimator/config.yaml (or $ESTIMATOR_CONFIG), then env.
	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := cfg.NewLogger(os.Stderr)

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	customerRepo := repository.NewSQLiteCustomerRepo(database)
	repos := service.EstimateRepos{
		Estimates: repository.NewSQLiteEstimateRepo(database),
		Groups:    repository.NewSQLiteGroupRepo(database),
		Items:     repository.NewSQLiteItemRepo(database),
		Customers: customerRepo,
	}
	jobRepo := repository.NewSQLiteJobRepo(database)

	// Wire unit of work for transactional operations
	uow := db.NewSQLiteUnitOfWork(database)

	// Use-case metrics are collected for every command and exposed by serve.
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := api.NewMetrics(registry)
	observers := []service.UseCaseObserver{service.NewLogUseCaseObserver(logger), metrics}

	// Wire services
	persister := service.NewStorePersister(uow, observers...)
	estimates := service.NewEstimateService(repos, persister, logger, observers...)
	jobs := service.NewJobService(jobRepo, uow, observers...)
	imports := service.NewImportService(repos, uow, observers...)

	app := &cli.App{
		Customers: service.NewCustomerService(customerRepo),
		Estimates: estimates,
		Jobs:      jobs,
		Imports:   imports,
		Currency:  cfg.Currency,
	}

	// Detect interactive terminal for prompts and the tree browser.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	app.Serve = func(ctx context.Context, addr string) error {
		if addr == "" {
			addr = cfg.Server.Addr
		}
		gin.SetMode(gin.ReleaseMode)
		srv := api.NewServer(api.Deps{
			Estimates:   estimates,
			Jobs:        jobs,
			Imports:     imports,
			Sessions:    session.NewRegistry(cfg.Server.SessionTTL, api.SessionOpener(estimates, metrics)),
			Metrics:     metrics,
			Gatherer:    registry,
			Logger:      logger,
			Currency:    cfg.Currency,
			MetricsPath: cfg.Server.MetricsPath,
		})
		logger.Info("serving estimate API", "addr", addr, "db", cfg.DBPath)
		return srv.Run(ctx, addr)
	}

	// Execute root command
	rootCmd := cli.NewRootCmd(app)
	return rootCmd.Execute()
}
