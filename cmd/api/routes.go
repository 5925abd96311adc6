package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/leveldesignagency/OnTimelyDriverPortal/internal/auth"
	portalMiddleware "github.com/leveldesignagency/OnTimelyDriverPortal/internal/middleware"
)

func (app *Config) routes() http.Handler {
	mux := chi.NewRouter()

	// Request ID must be first to inject into all logs
	mux.Use(portalMiddleware.RequestID)
	mux.Use(portalMiddleware.Logger)
	mux.Use(portalMiddleware.Recovery)
	mux.Use(portalMiddleware.PrometheusMetrics(serviceName))

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	mux.Use(middleware.Heartbeat("/ping"))

	mux.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, serviceName+".http",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})

	mux.Get("/health/live", app.Liveness)
	mux.Get("/health/ready", app.Readiness)

	mux.Handle("/metrics", promhttp.Handler())

	mux.Group(func(r chi.Router) {
		r.Use(auth.Middleware(app.JWTSecret, app.Store))

		r.Get("/driver/me", app.CurrentDriver)
		r.Get("/trips", app.ListTrips)
		r.Post("/trips/{trip_id}/scan", app.ScanGuest)
		r.Put("/trips/{trip_id}/arrive", app.MarkArrived)
		r.Put("/trips/{trip_id}/delay", app.SetDelay)
		r.Put("/trips/{trip_id}/cancel", app.CancelTrip)
	})

	return mux
}
