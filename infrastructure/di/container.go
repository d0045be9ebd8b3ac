package di

import (
	querybus "canvaschat/application/queries/bus"
	"canvaschat/application/services"
	"canvaschat/infrastructure/config"
	"canvaschat/infrastructure/observability"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config    *config.Config
	Logger    *zap.Logger
	Backend   StoreBackend
	Collector *observability.Collector
	Tracing   *observability.TracerProvider
	Contexts  *services.ContextService
	QueryBus  *querybus.QueryBus
}

// FlushMetrics writes the metrics textfile when one is configured
func (c *Container) FlushMetrics() error {
	path := c.Config.Observability.MetricsTextfile
	if !c.Config.Observability.EnableMetrics || path == "" {
		return nil
	}
	return c.Collector.WriteTextfile(path)
}
