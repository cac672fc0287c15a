package main // Entry point package

import (
	"context"       // shutdown deadlines
	"database/sql"  // shared MySQL pool
	"errors"        // sentinel checks on shutdown
	"log"           // Logging library
	"net/http"      // http.ErrServerClosed
	"os"            // signal source and log output
	"os/signal"     // graceful shutdown on SIGINT/SIGTERM
	"syscall"       // SIGTERM
	"time"          // shutdown timeout

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/rinatiamaev/salesFactoryNew/internal/config"     // Internal config loader
	"github.com/rinatiamaev/salesFactoryNew/internal/database"   // MySQL pool and schema
	"github.com/rinatiamaev/salesFactoryNew/internal/handler"    // HTTP handlers
	"github.com/rinatiamaev/salesFactoryNew/internal/identity"   // principal resolution
	"github.com/rinatiamaev/salesFactoryNew/internal/middleware" // identity, rate limit and cache middleware
	"github.com/rinatiamaev/salesFactoryNew/internal/queue"      // order events
	"github.com/rinatiamaev/salesFactoryNew/internal/repository" // storage
	"github.com/rinatiamaev/salesFactoryNew/internal/router"     // Internal router setup
	"github.com/rinatiamaev/salesFactoryNew/internal/service"    // ordering workflow
)

func main() {
	cfg, err := config.Load() // Load environment config
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := map[string]handler.Pinger{}

	// ---- Storage ----
	var (
		db     *sql.DB
		rows   repository.RowRepository
		tables repository.TableRepository
	)
	switch cfg.Storage {
	case config.StorageMemory:
		rows, tables = repository.NewMemoryRowRepo(), repository.NewMemoryTableRepo()
		log.Printf("storage: in-memory, data is lost on exit")
	default:
		db, err = database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Fatalf("mysql: %v", err)
		}
		defer db.Close()
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatalf("mysql: %v", err)
		}
		rows, tables = repository.NewRowRepo(db), repository.NewTableRepo(db)
		deps["mysql"] = db
	}

	// ---- Redis (optional) ----
	rdb, err := config.NewRedisClient(ctx)
	if err != nil {
		log.Printf("redis unavailable, rate limit and caches disabled: %v", err)
	}
	if rdb != nil {
		defer rdb.Close()
		deps["redis"] = handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}

	// ---- Identity ----
	provider, err := newProvider(ctx, cfg, db)
	if err != nil {
		log.Fatalf("identity: %v", err)
	}
	if rdb != nil {
		provider = identity.NewCachedProvider(provider, rdb, cfg.IdentityCacheTTL)
	}

	// ---- Events ----
	var events service.EventPublisher = service.NopPublisher{}
	if cfg.AMQPEnabled {
		pub := queue.NewPublisher(cfg.AMQPURL)
		defer pub.Close()
		async := service.NewAsyncPublisher(pub, cfg.EventBuffer, nil)
		defer func() {
			drainCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := async.Close(drainCtx); err != nil {
				log.Printf("events: %v", err)
			}
		}()
		events = async
	}
	if cfg.KitchenLogEnabled {
		go func() {
			if err := queue.StartKitchenLog(ctx, cfg.AMQPURL, cfg.KitchenLogDir); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("kitchen-log: stopped: %v", err)
			}
		}()
	}

	orders := service.NewOrders(rows, tables, events, log.New(os.Stderr, "", log.LstdFlags))

	// ---- HTTP ----
	e := echo.New() // Create Echo instance
	e.HideBanner = true
	router.UseCommon(e, cfg.CORSOrigins)
	chain := router.Chain{
		Identity:  middleware.Identity(cfg.JWTSecret, provider, cfg.AuthHeaderMode),
		RateLimit: middleware.NewRateLimiter(cfg.RateLimit, rdb, middleware.CallerKey),
		Cache:     middleware.NewRedisCache(cfg.Cache, rdb),
	}
	router.RegisterRoutes(e, handler.Health(deps)) // Register application routes
	router.RegisterAuth(e, handler.NewAuthHandler(provider, cfg.JWTSecret, cfg.AccessTTLMin), chain)
	router.RegisterOrders(e, handler.NewRowHandler(orders), handler.NewTableHandler(orders), chain)

	addr := ":" + cfg.Port                                                        // Address string with port
	log.Printf("listening on %s (env=%s, storage=%s)", addr, cfg.Env, cfg.Storage) // Print startup info

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) { // Start HTTP server
			log.Fatal(err) // Log and exit if server fails
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// newProvider builds the identity source named by the config.
func newProvider(ctx context.Context, cfg config.Config, db *sql.DB) (identity.Provider, error) {
	if cfg.Identity != config.IdentitySQL {
		return identity.NewStaticProvider(identity.DefaultAccounts(), cfg.BcryptCost)
	}
	repo := repository.NewPrincipalRepo(db)
	if cfg.SeedPrincipals {
		n, err := identity.Seed(ctx, repo, identity.DefaultAccounts(), cfg.BcryptCost)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			log.Printf("identity: seeded %d principals", n)
		}
	}
	return identity.NewSQLProvider(repo), nil
}
