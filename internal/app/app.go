package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	emailadapter "github.com/Abdurahmanit/GroupProject/storefront-service/internal/adapter/email"
	mongoadapter "github.com/Abdurahmanit/GroupProject/storefront-service/internal/adapter/mongo"
	natsadapter "github.com/Abdurahmanit/GroupProject/storefront-service/internal/adapter/nats"
	redisadapter "github.com/Abdurahmanit/GroupProject/storefront-service/internal/adapter/redis"
	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/platform/tracer"
	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/port/events"
	grpcserver "github.com/Abdurahmanit/GroupProject/storefront-service/internal/port/grpc"
	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/port/rest"
	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/service"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const seedTimeout = 30 * time.Second

type App struct {
	cfg            *config.Config
	log            logger.Logger
	httpServer     *rest.Server
	grpcServer     *grpcserver.Server
	metricsServer  *http.Server
	subscriber     *events.AuthStateSubscriber
	mongoClient    *mongo.Client
	redisClient    *redis.Client
	natsConn       *nats.Conn
	tracerProvider *sdktrace.TracerProvider
}

func New(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	logCfg := logger.ZapLoggerConfig{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		TimeFormat: cfg.Logger.TimeFormat,
	}
	appLogger, err := logger.NewZapLogger(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	appLogger.Info("Logger initialized")
	appLogger.Infof("Configuration loaded: Env=%s, HTTP Port: %s, gRPC Port: %s", cfg.Env, cfg.HTTPServer.Port, cfg.GRPCServer.Port)

	tp := tracer.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.OTLPEndpoint, appLogger)
	appMetrics := metrics.New("storefront")

	a := &App{cfg: cfg, log: appLogger, tracerProvider: tp}
	fail := func(err error) (*App, error) {
		a.closeConnections(context.Background())
		return nil, err
	}

	appLogger.Info("Initializing MongoDB client...")
	mongoClient, err := mongoadapter.NewClient(ctx, cfg.MongoDB)
	if err != nil {
		appLogger.Errorf("Failed to initialize MongoDB client: %v", err)
		return fail(fmt.Errorf("failed to initialize MongoDB client: %w", err))
	}
	a.mongoClient = mongoClient
	appLogger.Info("MongoDB client initialized successfully")

	appLogger.Info("Initializing Redis client...")
	redisClient, err := redisadapter.NewClient(ctx, cfg.Redis)
	if err != nil {
		appLogger.Errorf("Failed to initialize Redis client: %v", err)
		return fail(fmt.Errorf("failed to initialize Redis client: %w", err))
	}
	a.redisClient = redisClient
	appLogger.Info("Redis client initialized successfully")

	var publisher service.EventPublisher
	natsConn, err := natsadapter.NewConnection(cfg.NATS, appLogger)
	if err != nil {
		appLogger.Warnf("NATS is unavailable, events will not be published or consumed: %v", err)
	} else {
		a.natsConn = natsConn
		natsPublisher, err := natsadapter.NewPublisher(natsConn, appLogger)
		if err != nil {
			return fail(fmt.Errorf("failed to initialize NATS publisher: %w", err))
		}
		publisher = natsPublisher
		appLogger.Infof("Connected to NATS at %s", natsConn.ConnectedUrl())
	}

	var mailer service.Mailer
	if cfg.SMTP.Enabled() {
		sender, err := emailadapter.NewSMTPSender(cfg.SMTP, appLogger)
		if err != nil {
			return fail(fmt.Errorf("failed to initialize SMTP sender: %w", err))
		}
		mailer = sender
		appLogger.Infof("SMTP sender configured for %s:%d", cfg.SMTP.Host, cfg.SMTP.Port)
	} else {
		appLogger.Info("SMTP is not configured, outgoing mail is disabled")
	}

	db := mongoClient.Database(cfg.MongoDB.Database)
	userRepo := mongoadapter.NewUserRepository(ctx, db, appLogger)
	productRepo := mongoadapter.NewProductRepository(db)
	wishlistRepo := mongoadapter.NewWishlistRepository(ctx, db, appLogger)
	newsletterRepo := mongoadapter.NewNewsletterRepository(ctx, db, appLogger)
	guestCartRepo := redisadapter.NewGuestCartRepository(redisClient)
	guestWishlistRepo := redisadapter.NewGuestWishlistRepository(redisClient)
	productCache := redisadapter.NewProductCacheRepository(redisClient)
	tokenRepo := redisadapter.NewTokenRepository(redisClient)
	appLogger.Info("Repositories initialized")

	catalogService := service.NewCatalogService(productRepo, productCache, appLogger, cfg.Catalog.ProductCacheTTL)
	cartService := service.NewCartService(guestCartRepo, userRepo, catalogService, appLogger, appMetrics, service.CartServiceConfig{
		GuestTTL:         cfg.Cart.GuestTTL,
		MaxMergeAttempts: cfg.Cart.MaxMergeAttempts,
	})
	wishlistService := service.NewWishlistService(wishlistRepo, guestWishlistRepo, catalogService, appLogger, appMetrics, cfg.Cart.GuestTTL)
	sessions := service.NewSessionDispatcher(cartService, wishlistService, publisher, appLogger)
	authService, err := service.NewAuthService(userRepo, tokenRepo, sessions, publisher, mailer, appLogger, appMetrics, service.AuthServiceConfig{
		JWTSecret: cfg.Auth.JWTSecret,
		Issuer:    cfg.Auth.Issuer,
		TokenTTL:  cfg.Auth.TokenTTL,
	})
	if err != nil {
		return fail(fmt.Errorf("failed to initialize auth service: %w", err))
	}
	newsletterService := service.NewNewsletterService(newsletterRepo, publisher, mailer, appLogger)
	appLogger.Info("Services initialized")

	if cfg.Catalog.SeedSampleProducts {
		seedCtx, cancel := context.WithTimeout(ctx, seedTimeout)
		if _, err := catalogService.SeedSampleProducts(seedCtx); err != nil {
			appLogger.Warnf("Failed to seed sample products: %v", err)
		}
		cancel()
	}

	router := rest.NewRouter(rest.Services{
		Catalog:    catalogService,
		Cart:       cartService,
		Wishlist:   wishlistService,
		Auth:       authService,
		Newsletter: newsletterService,
	}, rest.RouterOptions{
		SecureCookies: cfg.HTTPServer.SecureCookies,
		GuestTTL:      cfg.Cart.GuestTTL,
	}, appMetrics, appLogger)

	if a.natsConn != nil {
		a.subscriber = events.NewAuthStateSubscriber(a.natsConn, sessions, cfg.NATS.QueueGroup, appLogger)
	}
	a.httpServer = rest.NewServer(cfg.HTTPServer, router, appLogger)
	a.grpcServer = grpcserver.NewServer(appLogger, cfg.GRPCServer.Port, cfg.GRPCServer.MaxConnectionIdle)
	a.metricsServer = metrics.NewServer(cfg.Metrics.Port, appMetrics.Registry)
	return a, nil
}

func (a *App) Run() {
	a.log.Info("Starting application components...")

	go func() {
		if err := a.httpServer.Start(); err != nil {
			a.log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	go func() {
		if err := a.grpcServer.Start(); err != nil {
			a.log.Fatalf("Failed to start gRPC server: %v", err)
		}
	}()

	go func() {
		a.log.Infof("Metrics server is starting on port %s", a.cfg.Metrics.Port)
		if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Errorf("Metrics server failed: %v", err)
		}
	}()

	if a.subscriber != nil {
		if err := a.subscriber.Start(); err != nil {
			a.log.Errorf("Failed to start auth state subscriber: %v", err)
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quit
	a.log.Infof("Received shutdown signal: %v. Shutting down application...", receivedSignal)

	a.shutdown()
}

func (a *App) shutdown() {
	timeout := a.cfg.HTTPServer.TimeoutGraceful
	if a.cfg.GRPCServer.TimeoutGraceful > timeout {
		timeout = a.cfg.GRPCServer.TimeoutGraceful
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout+5*time.Second)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Errorf("Error during HTTP server graceful shutdown: %v", err)
	}
	if err := a.grpcServer.Stop(shutdownCtx); err != nil {
		a.log.Errorf("Error during gRPC server graceful shutdown: %v", err)
	}
	if a.subscriber != nil {
		a.subscriber.Stop()
	}
	if err := a.metricsServer.Shutdown(shutdownCtx); err != nil {
		a.log.Errorf("Error stopping metrics server: %v", err)
	}

	a.closeConnections(shutdownCtx)

	a.log.Info("Application shut down successfully")
	_ = a.log.Sync()
}

// closeConnections releases every client New managed to open. Fields that
// were never set are skipped, so it is safe on a partially built App.
func (a *App) closeConnections(ctx context.Context) {
	a.log.Info("Closing connections...")

	if a.natsConn != nil {
		if err := a.natsConn.Drain(); err != nil {
			a.log.Errorf("Error draining NATS connection: %v", err)
		}
	}

	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(ctx); err != nil {
			a.log.Errorf("Error disconnecting from MongoDB: %v", err)
		} else {
			a.log.Info("MongoDB connection closed successfully")
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Errorf("Error closing Redis client: %v", err)
		} else {
			a.log.Info("Redis client closed successfully")
		}
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			a.log.Errorf("Error shutting down tracer provider: %v", err)
		}
	}
}
