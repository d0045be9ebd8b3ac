package queries

import (
	"canvaschat/application/queries/bus"
	"canvaschat/application/services"
)

// RegisterHandlers wires every query handler into b
func RegisterHandlers(b *bus.QueryBus, contexts *services.ContextService) error {
	if err := b.Register(AssembleContextQuery{}, NewAssembleContextHandler(contexts).Bus()); err != nil {
		return err
	}
	return b.Register(GetChainQuery{}, NewGetChainHandler(contexts.Chains()).Bus())
}
