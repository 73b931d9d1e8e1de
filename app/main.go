package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"example.com/coffee-shop/app/internal/config"
	domcart "example.com/coffee-shop/app/internal/domain/cart"
	domorder "example.com/coffee-shop/app/internal/domain/order"
	domproduct "example.com/coffee-shop/app/internal/domain/product"
	domuser "example.com/coffee-shop/app/internal/domain/user"
	rediscache "example.com/coffee-shop/app/internal/infra/cache/redis"
	"example.com/coffee-shop/app/internal/infra/events"
	"example.com/coffee-shop/app/internal/infra/notify"
	"example.com/coffee-shop/app/internal/infra/payment"
	"example.com/coffee-shop/app/internal/infra/persistence/memory"
	"example.com/coffee-shop/app/internal/infra/persistence/mysql"
	"example.com/coffee-shop/app/internal/infra/persistence/postgres"
	"example.com/coffee-shop/app/internal/infra/security"
	httpapi "example.com/coffee-shop/app/internal/interface/http"
	authuc "example.com/coffee-shop/app/internal/usecase/auth"
	cartuc "example.com/coffee-shop/app/internal/usecase/cart"
	cataloguc "example.com/coffee-shop/app/internal/usecase/catalog"
	checkoutuc "example.com/coffee-shop/app/internal/usecase/checkout"
	orderuc "example.com/coffee-shop/app/internal/usecase/order"
)

func main() {
	cfg, err := config.Load(getenv("CONFIG_FILE", "config.yaml"))
	if err != nil {
		panic(err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	health := map[string]httpapi.HealthCheck{
		"mysql": pingMySQL(cfg.MySQLDSN),
		"pg":    pingPG(cfg.PGDSN),
	}

	var db *sql.DB
	if cfg.UsesMySQL() {
		var err error
		db, err = openMySQL(ctx, cfg.MySQLDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := mysql.Migrate(db); err != nil {
			return err
		}
		health["mysql"] = db.PingContext
		logger.Info("connected to mysql")
	}

	var pool *pgxpool.Pool
	if cfg.CatalogSource == config.StorePG {
		var err error
		pool, err = postgres.Connect(ctx, cfg.PGDSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		health["pg"] = pool.Ping
		logger.Info("connected to postgres")
	}

	var redisClient *goredis.Client
	if cfg.CartStore == config.StoreRedis {
		redisClient = goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		health["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	var productRepo domproduct.Repository
	switch cfg.CatalogSource {
	case config.StoreMySQL:
		productRepo = mysql.NewProductRepository(db)
	case config.StorePG:
		productRepo = postgres.NewProductRepository(pool)
	default:
		productRepo = memory.NewProductRepository(domproduct.SampleCatalog()...)
	}

	var cartRepo domcart.Repository
	switch cfg.CartStore {
	case config.StoreMySQL:
		cartRepo = mysql.NewCartRepository(db)
	case config.StoreRedis:
		cartRepo = rediscache.NewCartStore(redisClient, cfg.CartTTL)
	default:
		cartRepo = memory.NewCartRepository()
	}

	var (
		userRepo  domuser.Repository
		orderRepo domorder.Repository
	)
	if cfg.DataStore == config.StoreMySQL {
		userRepo = mysql.NewUserRepository(db)
		orderRepo = mysql.NewOrderRepository(db)
	} else {
		userRepo = memory.NewUserRepository()
		orderRepo = memory.NewOrderRepository()
	}

	tokenSvc := security.NewJWTService(cfg.JWTSecret, cfg.JWTExpiration)
	passwordSvc := security.NewBcryptService(0)

	catalogSvc := cataloguc.NewService(productRepo, logger.Named("catalog"))
	cartSvc := cartuc.NewService(cartRepo, catalogSvc, logger.Named("cart"))
	orderSvc := orderuc.NewService(orderRepo)
	authSvc := authuc.NewService(userRepo, passwordSvc, tokenSvc)

	declineAbove := decimal.Zero
	if cfg.Payment.DeclineAbove != "" {
		d, err := decimal.NewFromString(cfg.Payment.DeclineAbove)
		if err != nil {
			return err
		}
		declineAbove = d
	}
	gateway := payment.NewBreaker(
		payment.NewSimulated(cfg.Payment.Delay, declineAbove),
		payment.BreakerConfig{
			ConsecutiveFailures: cfg.Payment.BreakerFailures,
			OpenTimeout:         cfg.Payment.BreakerOpenDuration,
		},
		logger.Named("payment"),
	)

	recorders := []checkoutuc.OrderRecorder{orderSvc}
	if len(cfg.KafkaBrokers) > 0 {
		publisher := events.NewOrderPublisher(cfg.KafkaTopic, cfg.KafkaBrokers...)
		defer publisher.Close()
		recorders = append(recorders, publisher)
	}
	if cfg.SMTPAddr != "" {
		recorders = append(recorders, notify.NewReceiptMailer(cfg.SMTPAddr, cfg.MailFrom, userRepo))
	}

	checkoutSvc := checkoutuc.NewService(gateway, recorders, checkoutuc.Config{
		LoginRoute:     cfg.Checkout.LoginRoute,
		LoginMessage:   cfg.Checkout.LoginMessage,
		PaymentTimeout: cfg.Payment.Timeout,
	}, logger.Named("checkout"))

	api := httpapi.NewAPI(httpapi.Dependencies{
		AuthService:     authSvc,
		CatalogService:  catalogSvc,
		CartService:     cartSvc,
		CheckoutService: checkoutSvc,
		OrderService:    orderSvc,
		HealthChecks:    health,
		Logger:          logger.Named("http"),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("addr", srv.Addr),
			zap.String("cart_store", cfg.CartStore),
			zap.String("catalog_source", cfg.CatalogSource),
			zap.String("data_store", cfg.DataStore))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func openMySQL(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// pingMySQL checks a database the process does not otherwise use.
func pingMySQL(dsn string) httpapi.HealthCheck {
	return func(ctx context.Context) error {
		db, err := sql.Open("mysql", dsn)
		if err != nil {
			return err
		}
		defer db.Close()
		return db.PingContext(ctx)
	}
}

func pingPG(dsn string) httpapi.HealthCheck {
	return func(ctx context.Context) error {
		conn, err := pgx.Connect(ctx, dsn)
		if err != nil {
			return err
		}
		defer conn.Close(ctx)
		return conn.Ping(ctx)
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
