package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leveldesignagency/OnTimelyDriverPortal/internal/backend"
	"github.com/leveldesignagency/OnTimelyDriverPortal/internal/env"
	"github.com/leveldesignagency/OnTimelyDriverPortal/internal/events"
	"github.com/leveldesignagency/OnTimelyDriverPortal/internal/journey"
	"github.com/leveldesignagency/OnTimelyDriverPortal/internal/logger"
	"github.com/leveldesignagency/OnTimelyDriverPortal/internal/notify"
	"github.com/leveldesignagency/OnTimelyDriverPortal/internal/repository"
	"github.com/leveldesignagency/OnTimelyDriverPortal/internal/telemetry"
	"github.com/leveldesignagency/OnTimelyDriverPortal/internal/workflow"
)

const serviceName = "driver-portal"

// Config holds the wired application components. One backend client exists
// per process and is shared by every component that talks to the hosted
// backend.
type Config struct {
	Store     *repository.TripStore
	Workflow  *workflow.Workflow
	JWTSecret string
}

func main() {
	isDevelopment := env.Get("APP_ENV", "development") != "production"
	logger.Init(serviceName, isDevelopment)

	logger.Info("Starting driver portal service")

	shutdownTracer, err := telemetry.InitTracer(serviceName, "1.0.0")
	if err != nil {
		logger.Error("Failed to initialize tracer", "error", err)
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracer(ctx); err != nil {
				logger.Error("Failed to shutdown tracer", "error", err)
			}
		}()
	}

	backendURL, ok := env.Require("BACKEND_URL")
	if !ok {
		logger.Fatal("BACKEND_URL is required")
	}
	backendKey, ok := env.Require("BACKEND_SERVICE_KEY")
	if !ok {
		logger.Fatal("BACKEND_SERVICE_KEY is required")
	}
	jwtSecret, ok := env.Require("BACKEND_JWT_SECRET")
	if !ok {
		logger.Fatal("BACKEND_JWT_SECRET is required")
	}

	client := backend.New(backendURL, backendKey, nil)
	store := repository.NewTripStore(client)
	dispatcher := notify.NewDispatcher(client, logger.With("component", "notify"))
	recorder := journey.NewRecorder(client, logger.With("component", "journey"))

	// The event broker is optional: the portal runs without it.
	var publisher workflow.EventPublisher
	var eventConn *events.Publisher
	if amqpURL := env.Get("RABBITMQ_URL", ""); amqpURL != "" {
		eventConn, err = events.Connect(amqpURL, logger.With("component", "events"))
		if err != nil {
			logger.Error("Failed to connect to RabbitMQ, continuing without status events", "error", err)
		} else {
			defer eventConn.Close()
			publisher = eventConn
		}
	}

	wf := workflow.New(store, dispatcher, recorder, publisher, logger.With("component", "workflow"))

	app := Config{
		Store:     store,
		Workflow:  wf,
		JWTSecret: jwtSecret,
	}

	port := env.Get("PORT", "8080")
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: app.routes(),
	}

	go func() {
		logger.Info("Starting HTTP server", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Drain in-flight notification/checkpoint/event calls before exiting.
	wf.Wait()

	logger.Info("Server exited")
}
