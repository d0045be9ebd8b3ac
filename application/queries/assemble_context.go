package queries

import (
	"context"
	"fmt"
	"unicode/utf8"

	"canvaschat/application/queries/bus"
	"canvaschat/application/services"
	"canvaschat/domain/core/aggregates"
	"canvaschat/domain/core/valueobjects"
	pkgerrors "canvaschat/pkg/errors"
	"canvaschat/pkg/utils"
)

// AssembleContextQuery asks for the prompt context of one canvas node.
// The node is addressed either by persisted id or by canvas ref.
type AssembleContextQuery struct {
	Snapshot *aggregates.Snapshot `json:"-" validate:"required"`
	NodeID   string               `json:"node_id" validate:"required_without=NodeRef,excluded_with=NodeRef"`
	NodeRef  string               `json:"node_ref" validate:"required_without=NodeID"`
	OwnerID  string               `json:"owner_id" validate:"required"`
	Message  string               `json:"message" validate:"required"`
}

// Validate validates the query
func (q AssembleContextQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// AssembleContextHandler handles the AssembleContextQuery
type AssembleContextHandler struct {
	contexts *services.ContextService
}

// NewAssembleContextHandler creates a new handler instance
func NewAssembleContextHandler(contexts *services.ContextService) *AssembleContextHandler {
	return &AssembleContextHandler{contexts: contexts}
}

// Handle executes the assemble context query
func (h *AssembleContextHandler) Handle(ctx context.Context, query AssembleContextQuery) (*services.AssembledContext, error) {
	if limit := h.contexts.Chains().Config().MaxNewMessageLength; limit > 0 && utf8.RuneCountInString(query.Message) > limit {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("message must be at most %d characters", limit))
	}

	owner := valueobjects.UserID(query.OwnerID)
	if query.NodeID != "" {
		return h.contexts.AssembleForNode(ctx, query.Snapshot, valueobjects.PersistedID(query.NodeID), query.Message, owner)
	}
	return h.contexts.AssembleForRef(ctx, query.Snapshot, valueobjects.NodeRef(query.NodeRef), query.Message, owner)
}

// Bus adapts the handler to the query bus
func (h *AssembleContextHandler) Bus() bus.QueryHandler {
	return bus.QueryHandlerFunc(func(ctx context.Context, q bus.Query) (interface{}, error) {
		query, ok := q.(AssembleContextQuery)
		if !ok {
			return nil, pkgerrors.NewInternalError(fmt.Sprintf("unexpected query type %T", q))
		}
		return h.Handle(ctx, query)
	})
}
