package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/febriand/go-shop-api/internal/analytics"
	"github.com/febriand/go-shop-api/internal/config"
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

	handler := &analytics.Consumer{
		Store:       store.NewPostgres(pool),
		Redis:       rdb,
		ServiceName: cfg.ServiceName + "-analytics",
	}

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, "analytics-workers", orders.TopicOrderPlaced, 4)
	log.Printf("analytics worker consuming %s", orders.TopicOrderPlaced)
	if err := consumer.Start(ctx, handler.HandleOrderPlaced); err != nil {
		log.Fatalf("consumer: %v", err)
	}
	log.Println("bye")
}
