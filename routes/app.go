package routes

import (
	"canteen-storefront/config"
	"canteen-storefront/libs"
	"canteen-storefront/middleware"
	"canteen-storefront/repositories"
	"canteen-storefront/services"
	"canteen-storefront/utils"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// App is the wired storefront: router plus the resources it owns.
type App struct {
	Router *gin.Engine
	Auths  *services.AuthService

	cfg    *config.Config
	logger *zap.Logger
	db     *pgxpool.Pool
	redis  *redis.Client
}

// NewApp connects the stores and builds the router. Redis and Postgres are
// optional; without them carts and tokens live in process memory.
func NewApp(cfg *config.Config, logger *zap.Logger) (*App, error) {
	app := &App{cfg: cfg, logger: logger}
	memory := repositories.NewMemoryRepository()

	var carts services.CartStore = memory
	if cfg.RedisEnabled() {
		client, err := config.ConnectRedis(cfg, logger)
		if err != nil {
			return nil, err
		}
		app.redis = client
		carts = repositories.NewSessionRepository(client, cfg.SessionTTL)
	} else {
		logger.Warn("redis not configured, carts are kept in memory")
	}

	var tokens services.TokenStore = memory
	if cfg.DatabaseEnabled() {
		db, err := config.ConnectDB(cfg, logger)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.db = db
		tokens = repositories.NewTokenRepository(db)
	} else {
		logger.Warn("database not configured, sign-ins are kept in memory")
	}

	var notifier services.Notifier = services.NoopNotifier{}
	if cfg.SMTPEnabled() {
		notifier = services.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	}

	backend := libs.NewBackendClient(cfg.BackendURL, cfg.BackendTimeout, &http.Client{}, logger.Named("backend"))
	app.Auths = services.NewAuthService(backend, tokens, services.AuthOptions{
		AllowGuest:    cfg.AllowGuest,
		LogoutTimeout: cfg.BackendTimeout,
	}, logger.Named("auth"))

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(logger), middleware.CORSMiddleware(cfg.OriginURL))

	SetupRoutes(router, Dependencies{
		Config:   cfg,
		Logger:   logger,
		Signer:   utils.NewTokenSigner(cfg.SessionSecret, "canteen-storefront"),
		Backend:  backend,
		Auths:    app.Auths,
		Carts:    services.NewCartService(carts, logger.Named("cart")),
		Checkout: services.NewCheckoutService(backend, notifier, logger.Named("checkout")),
		Orders:   services.NewOrderService(backend, cfg.OrderPollInterval, logger.Named("orders")),
	})
	app.Router = router

	return app, nil
}

// SweepIdle evicts idle auth containers until ctx ends.
func (a *App) SweepIdle(ctx context.Context) {
	interval := a.cfg.AuthIdleTTL / 2
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.Auths.Sweep(a.cfg.AuthIdleTTL); n > 0 {
				a.logger.Debug("evicted idle sessions", zap.Int("count", n), zap.Int("remaining", a.Auths.Len()))
			}
		}
	}
}

func (a *App) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
