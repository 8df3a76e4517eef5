package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/MikeMC777/storefront-orders/internal/admin"
	"github.com/MikeMC777/storefront-orders/internal/analytics"
	"github.com/MikeMC777/storefront-orders/internal/config"
	"github.com/MikeMC777/storefront-orders/internal/grpcapi"
	"github.com/MikeMC777/storefront-orders/internal/idempotency"
	"github.com/MikeMC777/storefront-orders/internal/inventory"
	"github.com/MikeMC777/storefront-orders/internal/logging"
	"github.com/MikeMC777/storefront-orders/internal/metrics"
	"github.com/MikeMC777/storefront-orders/internal/migrations"
	"github.com/MikeMC777/storefront-orders/internal/order"
	"github.com/MikeMC777/storefront-orders/internal/platform"
)

func main() {
	cliApp := &cli.App{
		Name:  "order-service",
		Usage: "storefront checkout, order lifecycle and analytics",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API and the gRPC analytics server",
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "apply or roll back the database schema",
				Subcommands: []*cli.Command{
					{
						Name: "up",
						Action: func(c *cli.Context) error {
							cfg, err := config.Load()
							if err != nil {
								return err
							}
							return migrations.Up(cfg.PostgresDSN)
						},
					},
					{
						Name:  "down",
						Flags: []cli.Flag{&cli.IntFlag{Name: "steps", Value: 1}},
						Action: func(c *cli.Context) error {
							cfg, err := config.Load()
							if err != nil {
								return err
							}
							return migrations.Down(cfg.PostgresDSN, c.Int("steps"))
						},
					},
				},
			},
			{
				Name:  "admin",
				Usage: "manage back-office credentials",
				Subcommands: []*cli.Command{
					{
						Name: "create",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "email", Required: true},
							&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"ADMIN_PASSWORD"}},
						},
						Action: createAdmin,
					},
				},
			},
		},
	}
	if err := cliApp.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("order-service")
	}
}

func createAdmin(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	db, err := platform.OpenPostgres(c.Context, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	a, err := admin.NewService(admin.NewPGRepo(db)).Register(c.Context, c.String("email"), c.String("password"))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "admin %s created (%s)\n", a.Email, a.ID)
	return nil
}

func serve(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := platform.OpenPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	rdb, err := platform.OpenRedis(ctx, cfg)
	if err != nil {
		return err
	}
	var idem idempotency.Store
	if rdb != nil {
		defer rdb.Close()
		idem = idempotency.NewRedisStore(rdb, cfg.IdempotencyTTL)
	} else {
		idem = idempotency.NewMemoryStore(cfg.IdempotencyTTL)
	}

	numbers, err := platform.NewNumberer(cfg, db, rdb)
	if err != nil {
		return err
	}
	publisher, err := platform.NewPublisher(cfg, log)
	if err != nil {
		return err
	}
	defer publisher.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.New(reg, "orders")

	catalog := inventory.NewPGRepo(db)
	store := order.NewPGStore(db)
	orders := order.NewService(order.Deps{
		Store:    store,
		Numbers:  numbers,
		Pricer:   platform.NewPricer(cfg),
		Events:   publisher,
		Observer: rec,
		Logger:   log.WithField("component", "orders"),
	})
	reports := analytics.NewService(store, catalog, log.WithField("component", "analytics"))
	admins := admin.NewService(admin.NewPGRepo(db))

	router := newRouter(app{
		orders:    orders,
		analytics: reports,
		catalog:   catalog,
		idem:      idem,
		auth:      admins,
		metrics:   rec,
		gatherer:  reg,
		log:       log,
	})
	httpSrv := &http.Server{Addr: cfg.OrderSvcAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}
	grpcSrv, health := grpcapi.NewServer(reports, admins, log.WithField("component", "grpc"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("addr", cfg.OrderSvcAddr).Info("order-service listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		lis, err := net.Listen("tcp", cfg.OrderGRPCAddr)
		if err != nil {
			return err
		}
		log.WithField("addr", cfg.OrderGRPCAddr).Info("grpc listening")
		return grpcSrv.Serve(lis)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		health.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		grpcSrv.GracefulStop()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
