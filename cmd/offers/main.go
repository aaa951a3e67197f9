package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cacheadapter "github.com/smallbiznis/valora-offers/internal/adapter/cache"
	"github.com/smallbiznis/valora-offers/internal/adapter/pdfrender"
	"github.com/smallbiznis/valora-offers/internal/allowlist"
	"github.com/smallbiznis/valora-offers/internal/bootstrap"
	"github.com/smallbiznis/valora-offers/internal/config"
	httptransport "github.com/smallbiznis/valora-offers/internal/http"
	"github.com/smallbiznis/valora-offers/internal/http/handler"
	httpmiddleware "github.com/smallbiznis/valora-offers/internal/http/middleware"
	"github.com/smallbiznis/valora-offers/internal/identity"
	"github.com/smallbiznis/valora-offers/internal/jwt"
	apimiddleware "github.com/smallbiznis/valora-offers/internal/middleware"
	"github.com/smallbiznis/valora-offers/internal/offer"
	"github.com/smallbiznis/valora-offers/internal/repository"
	"github.com/smallbiznis/valora-offers/internal/server"
	"github.com/smallbiznis/valora-offers/internal/service"
	"github.com/smallbiznis/valora-offers/internal/telemetry"
)

func main() {
	app := fx.New(
		fx.Provide(
			newConfig,
			newLogger,
			newTelemetry,
			newSnowflake,
			newPGXPool,
			newClientRepository,
			newTemplateRepository,
			newOfferRepository,
			newAllowlistRepository,
			newSessionKeyRepository,
			newRedisClient,
			newSessionCache,
			newKeyManager,
			newVerifier,
			newIdentityResolver,
			newRateLimiter,
			newPDFRenderer,
			newOfferEngine,
			allowlist.NewService,
			service.NewClientService,
			service.NewTemplateService,
			service.NewOfferService,
			handler.NewIdentityHandler,
			handler.NewClientHandler,
			handler.NewTemplateHandler,
			handler.NewOfferHandler,
			handler.NewAllowlistHandler,
			newHandlers,
			newAuthMiddleware,
			httptransport.NewRouter,
			server.NewHTTPServer,
		),
		fx.Invoke(useTelemetry, bootstrap.SeedAllowlist, startHTTPServer),
	)

	app.Run()
}

func newConfig() (config.Config, error) {
	return config.Load()
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Environment == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

func newTelemetry(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*telemetry.Provider, error) {
	provider, err := telemetry.New(context.Background(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("telemetry init: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return provider.Shutdown(stopCtx)
		},
	})

	return provider, nil
}

func newSnowflake() (*snowflake.Node, error) {
	node, err := snowflake.NewNode(1)
	return node, err
}

func newPGXPool(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			pool.Close()
			return nil
		},
	})

	return pool, nil
}

func newClientRepository(pool *pgxpool.Pool) repository.ClientRepository {
	return repository.NewPostgresClientRepo(pool)
}

func newTemplateRepository(pool *pgxpool.Pool) repository.TemplateRepository {
	return repository.NewPostgresTemplateRepo(pool)
}

func newOfferRepository(pool *pgxpool.Pool) repository.OfferRepository {
	return repository.NewPostgresOfferRepo(pool)
}

func newAllowlistRepository(pool *pgxpool.Pool) repository.AllowlistRepository {
	return repository.NewPostgresAllowlistRepo(pool)
}

func newSessionKeyRepository(pool *pgxpool.Pool) repository.SessionKeyRepository {
	return repository.NewPostgresSessionKeyRepo(pool)
}

func newRedisClient(lc fx.Lifecycle, cfg config.Config) (redis.UniversalClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}

func newSessionCache(client redis.UniversalClient) identity.SessionCache {
	return cacheadapter.NewRedisSessionCache(client)
}

func newKeyManager(repo repository.SessionKeyRepository) *jwt.KeyManager {
	return jwt.NewKeyManager(repo)
}

func newVerifier(manager *jwt.KeyManager) *jwt.Verifier {
	return jwt.NewVerifier(manager)
}

func newIdentityResolver(verifier *jwt.Verifier, cache identity.SessionCache, cfg config.Config, logger *zap.Logger) *identity.Resolver {
	return identity.NewResolver(verifier, cache, identity.Config{
		DefaultOrgID: cfg.DefaultOrgID,
		CacheTTL:     cfg.SessionCacheTTL,
	}, logger)
}

func newRateLimiter(cfg config.Config) *apimiddleware.RateLimiter {
	return apimiddleware.NewRateLimiter(cfg.RateLimitRPM)
}

func newPDFRenderer(cfg config.Config) pdfrender.Renderer {
	return pdfrender.NewHTTPRenderer(cfg.PDFRenderURL, &http.Client{Timeout: cfg.PDFRenderTimeout})
}

func newOfferEngine(logger *zap.Logger) *offer.Engine {
	return offer.NewEngine(logger)
}

func newHandlers(
	identityHandler *handler.IdentityHandler,
	clients *handler.ClientHandler,
	templates *handler.TemplateHandler,
	offers *handler.OfferHandler,
	allowlistHandler *handler.AllowlistHandler,
) httptransport.Handlers {
	return httptransport.Handlers{
		Identity:  identityHandler,
		Clients:   clients,
		Templates: templates,
		Offers:    offers,
		Allowlist: allowlistHandler,
	}
}

func newAuthMiddleware(resolver *identity.Resolver) *httpmiddleware.Auth {
	return &httpmiddleware.Auth{Resolver: resolver}
}

func startHTTPServer(lc fx.Lifecycle, srv *server.HTTPServer, cfg config.Config, logger *zap.Logger) {
	addr := ":" + cfg.HTTPPort
	var (
		cancel context.CancelFunc
		done   chan struct{}
	)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			runCtx, stop := context.WithCancel(context.Background())
			cancel = stop
			done = make(chan struct{})

			go func() {
				if err := srv.Run(runCtx, addr); err != nil {
					logger.Error("http server stopped", zap.Error(err))
				}
				close(done)
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel != nil {
				cancel()
			}
			if done == nil {
				return nil
			}
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

func useTelemetry(*telemetry.Provider) {}
