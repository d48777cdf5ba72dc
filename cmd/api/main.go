package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/marketcat/storefront-api/internal/cart"
	"github.com/marketcat/storefront-api/internal/catalog"
	"github.com/marketcat/storefront-api/internal/config"
	"github.com/marketcat/storefront-api/internal/httpx"
	kafkax "github.com/marketcat/storefront-api/internal/kafka"
	"github.com/marketcat/storefront-api/internal/metrics"
	"github.com/marketcat/storefront-api/internal/order"
	"github.com/marketcat/storefront-api/internal/postgres"
	"github.com/marketcat/storefront-api/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	logrus.SetFormatter(&logrus.JSONFormatter{})
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	if err := postgres.Migrate(cfg.PostgresDSN); err != nil {
		logrus.WithError(err).Fatal("migrate")
	}
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logrus.WithError(err).Fatal("db connect")
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, order.TopicOrderRequested, 1024)
	prod.Start(ctx)

	// Services
	catalogSvc := catalog.NewService(&catalog.Repo{DB: db}, rdb, cfg.CountCacheTTL)
	cartStore := cart.NewRedisStore(rdb)
	composer := order.NewComposer(cfg.WhatsAppBaseURL)
	checkout := order.NewCheckoutService(composer, cartStore, prod, cfg.ServiceName, cfg.CheckoutClearDelay)

	// Router & handlers
	m := metrics.NewServerMetrics("api")
	router := httpx.NewRouter(m)
	(&httpx.CatalogHandler{Catalog: catalogSvc}).Register(router)
	(&httpx.CartHandler{Store: cartStore, Products: catalogSvc}).Register(router)
	(&httpx.CheckoutHandler{Store: cartStore, Checkout: checkout}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		logrus.WithField("addr", cfg.HTTPAddr).Info("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("listen")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logrus.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	checkout.Close()  // cancel pending deferred cart clears
	prod.Close()      // stop intake -> flush & close writer
	cancel()          // stop producer loop
	prod.WaitClosed() // drain
}
