package main

import (
	"context"
	"errors"
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

	"github.com/MikeMC777/storefront-orders/internal/admin"
	"github.com/MikeMC777/storefront-orders/internal/config"
	"github.com/MikeMC777/storefront-orders/internal/inventory"
	"github.com/MikeMC777/storefront-orders/internal/logging"
	"github.com/MikeMC777/storefront-orders/internal/metrics"
	"github.com/MikeMC777/storefront-orders/internal/platform"
)

func main() {
	cliApp := &cli.App{
		Name:  "product-service",
		Usage: "catalog reads and the stock ledger",
		Commands: []*cli.Command{
			{Name: "serve", Usage: "run the HTTP API", Action: serve},
		},
		DefaultCommand: "serve",
	}
	if err := cliApp.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("product-service")
	}
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

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.New(reg, "products")

	svc := inventory.NewService(inventory.NewPGRepo(db), log.WithField("component", "inventory"), rec)
	router := newRouter(svc, admin.NewService(admin.NewPGRepo(db)), rec, reg, log)

	srv := &http.Server{Addr: cfg.ProductSvcAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.ProductSvcAddr).Info("product-service listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
