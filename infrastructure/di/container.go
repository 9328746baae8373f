package di

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"cortex-backend/application/ports"
	appservices "cortex-backend/application/services"
	domainconfig "cortex-backend/domain/config"
	"cortex-backend/infrastructure/config"
	"cortex-backend/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	DomainConfig *domainconfig.DomainConfig
	Logger       *zap.Logger
	Registry     *prometheus.Registry
	Metrics      *observability.Metrics
	Tracer       *observability.TracerProvider
	GraphRepo    ports.GraphRepository
	PackRepo     ports.ContextPackRepository
	EventBus     ports.EventPublisher
	Weights      ports.WeightsProvider
	StateBuilder *appservices.StateBuilderService
	Feedback     *appservices.FeedbackService
	Graphs       *appservices.GraphService
	Handler      http.Handler
}
