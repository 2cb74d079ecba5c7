package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticketdesk/internal/api/http"
	"github.com/spec-kit/ticketdesk/internal/api/http/handlers"
	"github.com/spec-kit/ticketdesk/internal/auth"
	"github.com/spec-kit/ticketdesk/internal/clock"
	"github.com/spec-kit/ticketdesk/internal/config"
	"github.com/spec-kit/ticketdesk/internal/events"
	"github.com/spec-kit/ticketdesk/internal/observability"
	"github.com/spec-kit/ticketdesk/internal/persistence"
	"github.com/spec-kit/ticketdesk/internal/repository"
	"github.com/spec-kit/ticketdesk/internal/service"
	"github.com/spec-kit/ticketdesk/internal/view"
	"github.com/spec-kit/ticketdesk/internal/worker"
)

const auditHistory = 100

type options struct {
	envFile string
	addr    string
	store   string
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if err == pflag.ErrHelp {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Env)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := persistence.Open(ctx, *cfg, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer store.Close()

	checker, err := auth.NewDemoChecker(cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("failed to prepare credential checker", zap.Error(err))
	}
	renderer, err := view.NewRenderer()
	if err != nil {
		logger.Fatal("failed to parse templates", zap.Error(err))
	}

	clk := clock.Real()
	dispatcher := events.NewInMemoryDispatcher()
	auditService := service.NewAuditService(dispatcher, logger, auditHistory)
	worker.StartAuditWorker(auditService)

	appService := service.NewAppService(ctx, service.AppDependencies{
		Tickets:    repository.NewTicketRepository(store, clk, logger),
		Sessions:   auth.NewSessionStore(store, auth.NewTokenManager(cfg.Auth.JWTSecret, clk.Now), logger),
		Checker:    checker,
		Clock:      clk,
		Dispatcher: dispatcher,
		Logger:     logger,
		LoginDelay: cfg.Auth.LoginDelay(),
	})
	defer appService.Close()

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		View:    handlers.NewViewHandler(appService, renderer),
		Intents: handlers.NewIntentsHandler(appService, metrics),
		Tickets: handlers.NewTicketsHandler(appService),
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, cfg.Store.Driver, store),
		Ops:     handlers.NewOpsHandler(metrics, auditService),
		Session: appService,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("store", cfg.Store.Driver))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func parseFlags(args []string) (options, error) {
	var opts options
	flagSet := pflag.NewFlagSet("ticketdesk", pflag.ContinueOnError)
	flagSet.StringVar(&opts.envFile, "env-file", "", "load environment variables from this file (default: .env if present)")
	flagSet.StringVar(&opts.addr, "addr", "", "listen address host:port (overrides APP_HOST and APP_PORT)")
	flagSet.StringVar(&opts.store, "store", "", "store driver: memory, file, sqlite, redis or postgres (overrides STORE_DRIVER)")

	if err := flagSet.Parse(args); err != nil {
		return options{}, err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return options{}, fmt.Errorf("unexpected argument: %s", rest[0])
	}
	return opts, nil
}

func loadConfig(opts options) (*config.Config, error) {
	var envFiles []string
	if opts.envFile != "" {
		envFiles = append(envFiles, opts.envFile)
	}
	if opts.store != "" {
		os.Setenv("STORE_DRIVER", opts.store)
	}
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return nil, err
	}
	if opts.addr != "" {
		host, port, err := net.SplitHostPort(opts.addr)
		if err != nil {
			return nil, fmt.Errorf("invalid --addr %q: %w", opts.addr, err)
		}
		cfg.App.Host = strings.TrimSpace(host)
		cfg.App.Port = port
	}
	return cfg, nil
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
