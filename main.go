package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"ewaste-pickup/config"
	"ewaste-pickup/controllers"
	"ewaste-pickup/logger"
	"ewaste-pickup/middleware"
	"ewaste-pickup/routes"
	"ewaste-pickup/services"
	"ewaste-pickup/store"
	"ewaste-pickup/utils"
)

// userStore is what both store implementations offer to the rest of the app.
type userStore interface {
	services.UserRepository
	services.OrderRepository
	controllers.HealthChecker
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		// The logger is not configured yet.
		zap.NewExample().Fatal("invalid configuration", zap.Error(err))
	}

	log := logger.New(cfg.LogLevel, cfg.IsProduction())
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if cfg.UsesDevelopmentSecret() {
		log.Warn("JWT_SECRET not set, using the development secret")
	}

	users, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	limiter, closeLimiter := newLimiter(ctx, cfg, log)
	defer closeLimiter()

	// Initialize EmailService
	var notifier services.Notifier
	if emailService := utils.NewEmailService(cfg.SendGridAPIKey, cfg.EmailSender); emailService != nil {
		notifier = emailService
		log.Info("email notifications enabled")
	} else {
		log.Info("SENDGRID_API_KEY or EMAIL_SENDER not set, email notifications disabled")
	}

	var uploader services.ImageUploader
	if cfg.CloudinaryEnabled() {
		cld, err := utils.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		if err != nil {
			log.Warn("failed to initialize Cloudinary, picture uploads disabled", zap.Error(err))
		} else {
			uploader = cld
			log.Info("profile picture uploads enabled")
		}
	}

	issuer := utils.NewSessionIssuer(cfg.JWTSecret, cfg.TokenTTL)
	accounts := services.NewAccountService(users, issuer, notifier, uploader, cfg.BcryptCost, log.Named("accounts"))
	orders := services.NewOrderService(users, notifier, log.Named("orders"))

	router := mux.NewRouter()
	routes.RegisterRoutes(router, routes.Dependencies{
		Users:    controllers.NewUserController(accounts, cfg.RequestTimeout),
		Orders:   controllers.NewOrderController(orders, cfg.RequestTimeout),
		Health:   controllers.NewHealthController(users),
		Verifier: issuer,
		Limiter:  limiter,
		Logger:   log.Named("http"),
	})

	handler := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	})(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("store", cfg.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (userStore, func(), error) {
	if cfg.Store == "memory" {
		log.Warn("using the in-memory store, data will not survive a restart")
		return store.NewMemoryUserStore(), func() {}, nil
	}

	client, err := store.ConnectDB(ctx, cfg.MongoURI)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			log.Warn("failed to disconnect from MongoDB", zap.Error(err))
		}
	}

	users := store.NewMongoUserStore(client.Database(cfg.MongoDatabase))
	indexCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := users.EnsureIndexes(indexCtx); err != nil {
		closeFn()
		return nil, nil, err
	}
	log.Info("connected to MongoDB", zap.String("database", cfg.MongoDatabase))
	return users, closeFn, nil
}

// newLimiter prefers a shared Redis counter and falls back to in-process buckets.
func newLimiter(ctx context.Context, cfg *config.Config, log *zap.Logger) (middleware.Limiter, func()) {
	if cfg.RedisURL != "" {
		client, err := middleware.ConnectRedis(ctx, cfg.RedisURL)
		if err == nil {
			log.Info("rate limiting through Redis")
			return middleware.NewRedisLimiter(client, cfg.RateLimitRPM+cfg.RateLimitBurst, time.Minute), func() { _ = client.Close() }
		}
		log.Warn("failed to connect to Redis, using in-process rate limiting", zap.Error(err))
	}
	limiter := middleware.NewLimiterStore(cfg.RateLimitRPM, cfg.RateLimitBurst, time.Minute)
	return limiter, limiter.Stop
}
