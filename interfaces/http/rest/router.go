package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"cortex-backend/interfaces/http/rest/handlers"
	"cortex-backend/interfaces/http/rest/middleware"
)

// Router creates and configures the HTTP router
type Router struct {
	contextHandler  *handlers.ContextHandler
	feedbackHandler *handlers.FeedbackHandler
	graphHandler    *handlers.GraphHandler
	registry        *prometheus.Registry
	logger          *zap.Logger
	enableCORS      bool
	enableMetrics   bool
}

// NewRouter creates a new router instance
func NewRouter(
	contextHandler *handlers.ContextHandler,
	feedbackHandler *handlers.FeedbackHandler,
	graphHandler *handlers.GraphHandler,
	registry *prometheus.Registry,
	logger *zap.Logger,
	enableCORS bool,
	enableMetrics bool,
) *Router {
	return &Router{
		contextHandler:  contextHandler,
		feedbackHandler: feedbackHandler,
		graphHandler:    graphHandler,
		registry:        registry,
		logger:          logger,
		enableCORS:      enableCORS,
		enableMetrics:   enableMetrics,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.enableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health checks
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	if rt.enableMetrics && rt.registry != nil {
		router.Handle("/metrics", promhttp.HandlerFor(rt.registry, promhttp.HandlerOpts{}))
	}

	// API v1 routes
	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/context-packs", func(r chi.Router) {
			r.Post("/", rt.contextHandler.BuildContextPack)
			r.Get("/{packID}", rt.contextHandler.GetContextPack)
			r.Get("/{packID}/prompt", rt.contextHandler.GetContextPackPrompt)
		})

		r.Post("/feedback", rt.feedbackHandler.SubmitFeedback)

		r.Route("/graphs", func(r chi.Router) {
			r.Post("/", rt.graphHandler.CreateGraph)
			r.Get("/{graphID}", rt.graphHandler.GetGraph)
			r.Post("/{graphID}/neurons", rt.graphHandler.CreateNeuron)
			r.Post("/{graphID}/synapses", rt.graphHandler.CreateSynapse)
		})
	})

	return router
}

// healthCheck reports liveness
func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck reports readiness to take traffic
func (rt *Router) readinessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
