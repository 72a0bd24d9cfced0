package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/averyhale/meadowcart-backend/api/controllers"
	"github.com/averyhale/meadowcart-backend/api/routes"
	authsvc "github.com/averyhale/meadowcart-backend/internal/auth"
	cartsvc "github.com/averyhale/meadowcart-backend/internal/cart"
	checkoutsvc "github.com/averyhale/meadowcart-backend/internal/checkout"
	"github.com/averyhale/meadowcart-backend/internal/media"
	"github.com/averyhale/meadowcart-backend/internal/payments"
	product "github.com/averyhale/meadowcart-backend/internal/products"
	"github.com/averyhale/meadowcart-backend/pkg/auth/session"
	"github.com/averyhale/meadowcart-backend/pkg/config"
	"github.com/averyhale/meadowcart-backend/pkg/db"
	"github.com/averyhale/meadowcart-backend/pkg/logger"
	"github.com/averyhale/meadowcart-backend/pkg/migrate"
	"github.com/averyhale/meadowcart-backend/pkg/redis"
	"github.com/averyhale/meadowcart-backend/pkg/storage/gcs"
	"github.com/averyhale/meadowcart-backend/pkg/stripe"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap gcs", err)
		os.Exit(1)
	}
	defer func() {
		if err := gcsClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing gcs", err)
		}
	}()

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	snapshotRepo, err := cartsvc.NewRedisRepository(redisClient, cfg.Checkout.CartSessionTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart snapshot repository", err)
		os.Exit(1)
	}
	cartSessions, err := cartsvc.NewSessions(snapshotRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart sessions", err)
		os.Exit(1)
	}

	authorizer, err := payments.NewStripeAuthorizer(payments.NewStripeIntentClient(stripeClient), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment authorizer", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(cartSessions, authorizer, cfg.Checkout, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	productService, err := product.NewService(product.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	authService, err := authsvc.NewService(authsvc.NewRepository(dbClient.DB()), sessionManager, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	mediaService, err := media.NewService(gcsClient, cfg.GCS.UploadURLExpiry)
	if err != nil {
		logg.Error(context.Background(), "failed to create media service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Dependencies{
			Config: cfg,
			Logger: logg,
			ReadinessProbes: map[string]controllers.Pinger{
				"database": dbClient,
				"redis":    redisClient,
				"gcs":      gcsClient,
			},
			Sessions:        cartSessions,
			ProductService:  productService,
			CheckoutService: checkoutService,
			AuthService:     authService,
			MediaService:    mediaService,
			SessionChecker:  sessionManager,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
