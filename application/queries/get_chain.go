package queries

import (
	"context"
	"fmt"

	"canvaschat/application/queries/bus"
	"canvaschat/domain/core/aggregates"
	"canvaschat/domain/core/valueobjects"
	domainservices "canvaschat/domain/services"
	pkgerrors "canvaschat/pkg/errors"
	"canvaschat/pkg/utils"
)

// GetChainQuery asks for the context chain of a node without reading any messages
type GetChainQuery struct {
	Snapshot *aggregates.Snapshot `json:"-" validate:"required"`
	NodeID   string               `json:"node_id" validate:"required_without=NodeRef,excluded_with=NodeRef"`
	NodeRef  string               `json:"node_ref" validate:"required_without=NodeID"`
}

// Validate validates the query
func (q GetChainQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// GetChainHandler handles the GetChainQuery
type GetChainHandler struct {
	chains *domainservices.ChainService
}

// NewGetChainHandler creates a new handler instance
func NewGetChainHandler(chains *domainservices.ChainService) *GetChainHandler {
	return &GetChainHandler{chains: chains}
}

// Handle executes the get chain query
func (h *GetChainHandler) Handle(ctx context.Context, query GetChainQuery) (*domainservices.Chain, error) {
	if err := h.chains.CheckSnapshot(query.Snapshot); err != nil {
		return nil, err
	}

	var chain domainservices.Chain
	if query.NodeID != "" {
		chain = h.chains.ForSnapshot(query.Snapshot, valueobjects.PersistedID(query.NodeID))
	} else {
		chain = h.chains.ForSnapshotRef(query.Snapshot, valueobjects.NodeRef(query.NodeRef))
	}
	return &chain, nil
}

// Bus adapts the handler to the query bus
func (h *GetChainHandler) Bus() bus.QueryHandler {
	return bus.QueryHandlerFunc(func(ctx context.Context, q bus.Query) (interface{}, error) {
		query, ok := q.(GetChainQuery)
		if !ok {
			return nil, pkgerrors.NewInternalError(fmt.Sprintf("unexpected query type %T", q))
		}
		return h.Handle(ctx, query)
	})
}
