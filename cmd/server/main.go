package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cristijna/SaboresGo/internal/config"
	"github.com/cristijna/SaboresGo/internal/database"
	"github.com/cristijna/SaboresGo/internal/events"
	"github.com/cristijna/SaboresGo/internal/messaging"
	"github.com/cristijna/SaboresGo/internal/router"
	"github.com/cristijna/SaboresGo/internal/service"
	"github.com/cristijna/SaboresGo/internal/ws"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("ERROR: %v", err)
	}
}

func run() error {
	cfg := config.Load()

	flow, err := service.NewWorkflow(cfg.OrderStatuses)
	if err != nil {
		return fmt.Errorf("order statuses: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	log.Println("Connected to PostgreSQL")

	hub := ws.NewHub()
	go hub.Run()

	publishers := events.Multi{hub}
	if cfg.RabbitMQURL != "" {
		conn, err := messaging.Dial(ctx, cfg.RabbitMQURL)
		if err != nil {
			return fmt.Errorf("connect rabbitmq: %w", err)
		}
		pub := messaging.NewPublisher(conn)
		defer pub.Close()
		publishers = append(publishers, pub)
		log.Printf("Publishing order events to exchange %s", messaging.OrdersExchange)
	} else {
		log.Println("WARN: RABBITMQ_URL not set, order events stay in-process")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.New(cfg, database.New(pool), pool, hub, flow, publishers),
		ReadTimeout:  router.ReadTimeout,
		WriteTimeout: router.WriteTimeout,
		IdleTimeout:  router.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Println("Server stopped")
	return nil
}
