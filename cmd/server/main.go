package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	httpadapter "gatehouse/internal/adapters/http"
	"gatehouse/internal/adapters/http/request"
	"gatehouse/internal/adapters/http/response"
	"gatehouse/internal/adapters/http/validator"
	"gatehouse/internal/adapters/oauth"
	"gatehouse/internal/adapters/postgres"
	"gatehouse/internal/adapters/redis"
	"gatehouse/internal/adapters/ws"
	"gatehouse/internal/application/audit"
	"gatehouse/internal/application/auth"
	"gatehouse/internal/application/forms"
	"gatehouse/internal/config"
	"gatehouse/internal/core/guard"
	"gatehouse/internal/domain"
	"gatehouse/internal/event"
	"gatehouse/internal/logger"
	"gatehouse/internal/workers"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	log := logger.New(cfg)

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is mandatory")
	}

	if cfg.AutoMigrate {
		if err := postgres.MigrateUp(cfg.DatabaseURL); err != nil {
			return err
		}
		log.Info("database migrations applied")
	}

	dbPool, err := postgres.InitDB(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	rdb, err := redis.Init(ctx, &redis.ClientOptions{
		Address:  cfg.RedisAddress,
		Username: cfg.RedisUsername,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	userRepo := postgres.NewUserRepository(dbPool)
	accountRepo := postgres.NewAccountRepository(dbPool)
	sessionRepo := postgres.NewSessionRepository(dbPool)

	sessionCache := redis.NewSessionCache(rdb)
	flowStore := redis.NewFlowStore(rdb, redis.DefaultFlowTTL)
	auditStream := redis.NewAuditStream(rdb)

	providers := oauth.NewRegistry(buildProviders(ctx, cfg, log)...)

	bus := event.New()
	audit.NewListener(auditStream, log).Register(bus)

	authService := auth.NewService(auth.Deps{
		Users:     userRepo,
		Accounts:  accountRepo,
		Sessions:  sessionRepo,
		Cache:     sessionCache,
		Flows:     flowStore,
		Providers: providers,
		Bus:       bus,
		Log:       log,
	}, cfg.JWTSecret, cfg.JWTExpiry)

	v := validator.New()
	formsService := forms.NewService(authService, v, log)

	renderer, err := httpadapter.NewRenderer()
	if err != nil {
		return err
	}

	wsLog := log.With("component", "ws")
	wsHub := ws.NewHub(ctx, wsLog)
	ws.RegisterSubscribers(bus, wsHub)
	wsHandler := ws.NewHandler(wsHub, authService, cfg.AllowedOrigins, wsLog)

	authHandler := httpadapter.NewAuthHandler(
		authService,
		formsService,
		cfg,
		log,
		request.NewJSONDecoder(),
		response.NewJSONWriter(),
		v,
	)
	pageHandler := httpadapter.NewPageHandler(authService, formsService, renderer, cfg, log)

	router := httpadapter.NewRouter(cfg, &httpadapter.RouterDeps{
		Auth:      authHandler,
		Pages:     pageHandler,
		WsSession: wsHandler,
		Checker:   authService,
		Matcher:   guard.DefaultMatcher(),
		Log:       log,
	})

	srv := httpadapter.NewServer(router, cfg.Address)

	workerLog := log.With("component", "workers")
	manager := workers.NewManager(workerLog, workers.NewScheduler(workerLog), &workers.ManagerOptions{
		Sessions:        sessionRepo,
		CleanupInterval: cfg.SessionCleanupInterval,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		wsHub.Run()
		return nil
	})

	g.Go(func() error {
		manager.Start(gctx)
		<-gctx.Done()
		return nil
	})

	g.Go(func() error {
		log.Info("http: starting server", "address", cfg.Address, "providers", providers.Names())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("ws: closing session channels", "connected", wsHub.Connected())
		wsHub.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("http: server shutdown error", "error", err)
		}
		return nil
	})

	return g.Wait()
}

// buildProviders skips providers without credentials. A provider that is
// configured but fails to initialise is logged and left out.
func buildProviders(ctx context.Context, cfg *config.Config, log logger.Logger) []domain.OAuthProvider {
	var list []domain.OAuthProvider

	if cfg.GithubClientID != "" {
		gh, err := oauth.NewGithub(cfg.GithubClientID, cfg.GithubClientSecret, cfg.OAuthRedirectURL(domain.ProviderGithub))
		if err != nil {
			log.Warn("oauth: github disabled", "error", err)
		} else {
			list = append(list, gh)
		}
	}

	if cfg.GoogleClientID != "" {
		initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		google, err := oauth.NewGoogle(initCtx, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthRedirectURL(domain.ProviderGoogle), log)
		if err != nil {
			log.Warn("oauth: google disabled", "error", err)
		} else {
			list = append(list, google)
		}
	}

	return list
}
