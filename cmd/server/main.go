// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"

	"github.com/AnhThu09/Duantotnghiep-sub000/internal/api"
	"github.com/AnhThu09/Duantotnghiep-sub000/internal/config"
	"github.com/AnhThu09/Duantotnghiep-sub000/internal/events"
	"github.com/AnhThu09/Duantotnghiep-sub000/internal/order"
	"github.com/AnhThu09/Duantotnghiep-sub000/internal/payment"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[server] connect postgres: %v", err)
	}
	defer pool.Close()

	store := order.NewPostgresStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatalf("[server] ensure schema: %v", err)
	}

	var bus events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.ResultTopic)
		defer kp.Close()
		bus = kp
	}

	payments := payment.NewService(cfg.VNPay, store, bus)

	router := api.NewRouter(api.Deps{
		Payments:   payments,
		Store:      store,
		SuccessURL: cfg.SuccessURL,
		FailureURL: cfg.FailureURL,
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      cors.AllowAll().Handler(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Println("[server] shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("[server] shutdown: %v", err)
		}
	}()

	log.Printf("[server] listening at %s", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("[server] serve: %v", err)
	}
	log.Println("[server] bye")
}
