//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"canvaschat/infrastructure/config"

	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideStoreBackend,
	ProvideCollector,
	ProvideContextMetrics,
	ProvideTracerProvider,
	ProvideChatStore,
	ProvideDomainConfig,
	ProvideChainService,
	ProvideContextService,
	ProvideQueryBus,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil // Wire will replace this
}
