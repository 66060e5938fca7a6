package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ovaphlow/pitchfork/service-refiner-go/internal/auth"
	authrepo "github.com/ovaphlow/pitchfork/service-refiner-go/internal/auth/repo"
	"github.com/ovaphlow/pitchfork/service-refiner-go/internal/refine"
	"github.com/ovaphlow/pitchfork/service-refiner-go/internal/router"
	"github.com/ovaphlow/pitchfork/service-refiner-go/internal/setting"
	"github.com/ovaphlow/pitchfork/service-refiner-go/internal/user"
	"github.com/ovaphlow/pitchfork/service-refiner-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-refiner-go/pkg/utilities"
)

func main() {
	cfg, err := setting.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// init logger
	lg, err := utilities.Init(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting service-refiner-go")

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// init db
	sqlDB, err := database.Connect(cfg.Database)
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer sqlDB.Close()
	if err := database.Migrate(ctx, sqlDB); err != nil {
		sugar.Fatalf("db migrate: %v", err)
	}
	sqlxDB := database.Wrap(sqlDB)

	var tokens auth.TokenStore
	switch cfg.Auth.Store {
	case auth.StoreRedis:
		rdb, err := authrepo.NewRedisClient(ctx, cfg.Auth.Redis)
		if err != nil {
			sugar.Fatalf("redis connect: %v", err)
		}
		defer rdb.Close()
		tokens = authrepo.NewRedisTokenRepo(rdb)
	default:
		tokens = authrepo.NewTokenRepo(sqlxDB)
	}

	codec, err := auth.NewCodec(cfg.Auth.Secret)
	if err != nil {
		sugar.Fatalf("token codec: %v", err)
	}
	users := user.NewUserService(sqlxDB, nil, nil)
	authSvc := auth.NewAuthService(users, tokens, codec, cfg.Auth.TokenTTL, sugar)

	completer, err := refine.NewCompleter(ctx, cfg.Refine)
	if err != nil {
		sugar.Fatalf("refine backend: %v", err)
	}
	refiner := refine.NewService(completer, sugar)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router.RegisterRoutes(sugar, authSvc, users, refiner),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()
	sugar.Infow("service is running; press Ctrl+C to stop", "addr", cfg.Addr, "token_store", cfg.Auth.Store, "refine_provider", cfg.Refine.Provider)

	<-ctx.Done()

	sugar.Info("shutting down")

	// give a short grace period for cleanup
	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
