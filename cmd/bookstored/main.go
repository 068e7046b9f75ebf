package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vietbooks/bookstore/config"
	"github.com/vietbooks/bookstore/internal/app"
	"github.com/vietbooks/bookstore/internal/cart"
	"github.com/vietbooks/bookstore/internal/catalog"
	"github.com/vietbooks/bookstore/internal/notify"
	"github.com/vietbooks/bookstore/internal/order"
	"github.com/vietbooks/bookstore/internal/webapi"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	h        bool
	showVer  bool
	conffile string
	initdb   bool
)

func init() {
	flag.BoolVar(&h, "h", false, "help usage")
	flag.BoolVar(&showVer, "v", false, "print version")
	flag.StringVar(&conffile, "c", "", "config file path")
	flag.BoolVar(&initdb, "initdb", false, "drop and recreate all tables, then exit")
}

func main() {
	flag.Parse()
	if h {
		flag.Usage()
		return
	}
	if showVer {
		fmt.Println("bookstored", app.Version)
		return
	}

	cfg := config.LoadConfig(conffile)
	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if initdb {
		application.InitDb()
		zap.L().Info("database initialized")
		return
	}

	db := application.DB()
	catalogRepo := catalog.NewGormRepository(db)
	cartRepo := cart.NewGormRepository(db)
	orderRepo := order.NewGormRepository(db)

	cartSvc := cart.NewService(cartRepo, catalogRepo)
	orderSvc := order.NewService(db, orderRepo, cartRepo, cartSvc, catalogRepo, application.Bus())
	orderQuery := order.NewQuery(db, orderRepo)

	workers := int(application.GetSettingsInt64Value("notify", "workers"))
	notifySvc, err := notify.NewService(db, workers)
	if err != nil {
		zap.L().Fatal("failed to start notification workers", zap.Error(err))
	}
	if err := notifySvc.Register(application.Bus()); err != nil {
		zap.L().Fatal("failed to subscribe notification handlers", zap.Error(err))
	}
	defer notifySvc.Stop()

	server := webapi.NewServer(cfg, cartSvc, orderSvc, orderQuery)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start()
	})
	g.Go(func() error {
		application.StartBackgroundJobs(ctx)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		zap.L().Error("server exited", zap.Error(err))
		os.Exit(1)
	}
	zap.L().Info("bookstored stopped")
}
