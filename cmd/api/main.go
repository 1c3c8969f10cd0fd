package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/febriand/go-shop-api/internal/analytics"
	"github.com/febriand/go-shop-api/internal/auth"
	"github.com/febriand/go-shop-api/internal/config"
	"github.com/febriand/go-shop-api/internal/httpx"
	"github.com/febriand/go-shop-api/internal/kafka"
	"github.com/febriand/go-shop-api/internal/orders"
	"github.com/febriand/go-shop-api/internal/postgres"
	"github.com/febriand/go-shop-api/internal/redisx"
	"github.com/febriand/go-shop-api/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	producer := kafka.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPlaced, 256)
	producer.Start(ctx)

	st := store.NewPostgres(pool)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpx.NewRouter(httpx.Deps{
			Store:       st,
			Orders:      orders.NewService(st),
			Analytics:   analytics.NewService(st, rdb),
			Tokens:      tokens,
			Producer:    producer,
			ServiceName: cfg.ServiceName,
		}),
	}

	go func() {
		log.Printf("%s listening on %s", cfg.ServiceName, cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}

	producer.WaitClosed()
	log.Println("bye")
}
