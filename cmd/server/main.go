package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"djbooks_back_end/internal/cache"
	"djbooks_back_end/internal/config"
	"djbooks_back_end/internal/database"
	"djbooks_back_end/internal/events"
	"djbooks_back_end/internal/gateway"
	"djbooks_back_end/internal/handlers"
	"djbooks_back_end/internal/handlers/admin"
	"djbooks_back_end/internal/handlers/payment"
	"djbooks_back_end/internal/handlers/product"
	"djbooks_back_end/internal/handlers/user"
	"djbooks_back_end/internal/middleware"
	"djbooks_back_end/internal/notify"
	"djbooks_back_end/internal/repository"
	"djbooks_back_end/internal/routes"
	"djbooks_back_end/internal/services"
	"djbooks_back_end/internal/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const serviceName = "djbooks"

func main() {
	config.Load()
	cfg := config.MustLoad()

	logger, err := config.NewLogger(config.LoggerConfig{Level: cfg.LogLevel, Env: cfg.Env})
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := utils.InitTracer(ctx, serviceName, cfg.Tracing.Endpoint, cfg.Env)
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	clients, err := database.ConnectDatabases(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect databases", zap.Error(err))
	}
	defer clients.Close()

	store := repository.NewStore(clients.Postgres, logger)
	redisCache := cache.New(clients.Redis, logger)

	var wishlistStore services.WishlistStore = repository.NewPostgresWishlist(clients.Postgres)
	if clients.Scylla != nil {
		scyllaWishlist := repository.NewScyllaWishlist(clients.Scylla)
		if err := scyllaWishlist.EnsureTable(ctx); err != nil {
			logger.Fatal("failed to prepare scylla wishlist", zap.Error(err))
		}
		wishlistStore = scyllaWishlist
		logger.Info("wishlists stored in scylla")
	}

	var publisher *events.Publisher
	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.Brokers[0] != "" {
		producer, err := events.NewProducer(cfg.Kafka.Brokers)
		if err != nil {
			logger.Fatal("failed to connect kafka", zap.Error(err))
		}
		publisher = events.NewPublisher(producer, cfg.Kafka.Topic, logger)
	} else {
		logger.Warn("no kafka brokers configured, order events are only logged")
		publisher = events.NewPublisher(nil, cfg.Kafka.Topic, logger)
	}
	defer publisher.Close()

	mailer, err := utils.NewMailer(cfg.SMTP, logger)
	if err != nil {
		logger.Fatal("failed to init mailer", zap.Error(err))
	}

	mp, err := gateway.NewMercadoPago(cfg.MercadoPago, logger)
	if err != nil {
		logger.Fatal("failed to init mercado pago", zap.Error(err))
	}

	searchIndex := services.NewSearchIndex(clients.Elastic, cfg.Elastic.Index, logger)
	imageStorage := services.NewImageStorage(clients.MinIO, cfg.MinIO.Bucket)

	cart := services.NewCartEngine(store, redisCache, logger)
	catalog := services.NewCatalog(store, redisCache, searchIndex, logger)
	payments := services.NewPayments(store, mp, publisher, mailer, logger)
	flashes := notify.NewFlashes(notify.NewCookieStore(cfg.Auth.SessionSecret), logger)

	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		gin.Recovery(),
		otelgin.Middleware(serviceName),
		middleware.LoggerMiddleware(logger),
		middleware.MetricsMiddleware(),
		cors.New(cors.Config{
			AllowOrigins:     cfg.HTTP.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"X-RateLimit-Remaining", "Retry-After"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		flashes.Middleware(),
	)

	routes.RegisterRoutes(r, routes.Deps{
		JWTSecret: cfg.Auth.JWTSecret,
		Redis:     redisCache,
		Flashes:   flashes,
		Logger:    logger,
		Checks: map[string]handlers.Check{
			"postgres": clients.Postgres.PingContext,
			"redis":    func(ctx context.Context) error { return clients.Redis.Ping(ctx).Err() },
		},

		Auth:      user.NewAuthHandler(services.NewAccounts(store, redisCache, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, logger), logger),
		Cart:      user.NewCartHandler(cart, logger),
		CartWS:    user.NewCartSocket(cart, redisCache, cfg.HTTP.StorefrontURL, logger),
		Wishlist:  user.NewWishlistHandler(services.NewWishlists(wishlistStore, store, redisCache, logger), logger),
		Addresses: user.NewAddressHandler(services.NewAddresses(store), logger),
		Purchases: user.NewPurchasesHandler(payments, logger),
		Catalog:   product.NewCatalogHandler(catalog, logger),
		Requests:  product.NewBookRequestHandler(services.NewBookRequests(mailer), logger),
		Checkout:  payment.NewCheckoutHandler(services.NewCheckout(store, publisher, logger), logger),
		Payments:  payment.NewPaymentHandler(payments, flashes, cfg.HTTP.StorefrontURL, logger),
		Books:     admin.NewBookHandler(catalog, services.NewImages(store, imageStorage, redisCache, logger), logger),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
