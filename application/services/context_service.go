package services

import (
	"context"
	"fmt"

	"canvaschat/application/ports"
	"canvaschat/domain/core/aggregates"
	"canvaschat/domain/core/entities"
	"canvaschat/domain/core/valueobjects"
	domainservices "canvaschat/domain/services"

	"go.uber.org/zap"
)

// ContextService turns a chain of nodes into the message list sent to a model.
// It reads owners and messages from the store and never writes.
type ContextService struct {
	store   ports.ChatStore
	chains  *domainservices.ChainService
	metrics ports.ContextMetrics
	logger  *zap.Logger
}

// NewContextService creates a new context service
func NewContextService(
	store ports.ChatStore,
	chains *domainservices.ChainService,
	metrics ports.ContextMetrics,
	logger *zap.Logger,
) *ContextService {
	if chains == nil {
		chains = domainservices.NewChainService(nil)
	}
	if metrics == nil {
		metrics = ports.NoopContextMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContextService{
		store:   store,
		chains:  chains,
		metrics: metrics,
		logger:  logger,
	}
}

// Aggregate returns the messages of every node in nodeIDs owned by ownerID,
// ordered by creation time across all nodes.
// Nodes that are missing or owned by someone else are dropped without an error
// and listed in Excluded.
func (s *ContextService) Aggregate(
	ctx context.Context,
	nodeIDs []valueobjects.PersistedID,
	ownerID valueobjects.UserID,
) (*Aggregation, error) {
	result := &Aggregation{Messages: []valueobjects.ChatMessage{}}
	if len(nodeIDs) == 0 {
		return result, nil
	}

	unique := make([]valueobjects.PersistedID, 0, len(nodeIDs))
	seen := make(map[valueobjects.PersistedID]bool, len(nodeIDs))
	for _, id := range nodeIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}

	owners, err := s.store.GetOwners(ctx, unique)
	if err != nil {
		s.logger.Error("Failed to read node owners",
			zap.Int("nodes", len(unique)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to get node owners: %w", err)
	}

	valid := make([]valueobjects.PersistedID, 0, len(unique))
	for _, id := range unique {
		owner, found := owners[id]
		switch {
		case !found:
			s.exclude(result, id, ExclusionNotFound)
		case owner != ownerID:
			s.exclude(result, id, ExclusionOwnerMismatch)
		default:
			valid = append(valid, id)
		}
	}

	if len(valid) == 0 {
		return result, nil
	}

	stored, err := s.store.ListByNodes(ctx, valid)
	if err != nil {
		s.logger.Error("Failed to read messages",
			zap.Int("nodes", len(valid)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	allowed := make(map[valueobjects.PersistedID]bool, len(valid))
	for _, id := range valid {
		allowed[id] = true
	}

	messages := make([]*entities.Message, 0, len(stored))
	for _, msg := range stored {
		if msg != nil && allowed[msg.NodeID()] {
			messages = append(messages, msg)
		}
	}
	entities.SortByCreatedAt(messages)

	result.Messages = make([]valueobjects.ChatMessage, len(messages))
	for i, msg := range messages {
		result.Messages[i] = msg.ToChatMessage()
	}

	return result, nil
}

// AssembleWithNewMessage aggregates chainIDs and appends the new user turn,
// unless the aggregated history already ends with exactly that turn.
func (s *ContextService) AssembleWithNewMessage(
	ctx context.Context,
	chainIDs []valueobjects.PersistedID,
	newUserMessage string,
	ownerID valueobjects.UserID,
) (*AssembledContext, error) {
	chain := domainservices.Chain{IDs: append([]valueobjects.PersistedID{}, chainIDs...)}
	return s.assemble(ctx, chain, newUserMessage, ownerID)
}

// AssembleForNode builds the chain of a persisted node inside snapshot and
// assembles its context
func (s *ContextService) AssembleForNode(
	ctx context.Context,
	snapshot *aggregates.Snapshot,
	currentID valueobjects.PersistedID,
	newUserMessage string,
	ownerID valueobjects.UserID,
) (*AssembledContext, error) {
	if err := s.chains.CheckSnapshot(snapshot); err != nil {
		return nil, err
	}
	return s.assemble(ctx, s.chains.ForSnapshot(snapshot, currentID), newUserMessage, ownerID)
}

// AssembleForRef is AssembleForNode for a node addressed by its canvas ref
func (s *ContextService) AssembleForRef(
	ctx context.Context,
	snapshot *aggregates.Snapshot,
	current valueobjects.NodeRef,
	newUserMessage string,
	ownerID valueobjects.UserID,
) (*AssembledContext, error) {
	if err := s.chains.CheckSnapshot(snapshot); err != nil {
		return nil, err
	}
	return s.assemble(ctx, s.chains.ForSnapshotRef(snapshot, current), newUserMessage, ownerID)
}

// Chains returns the chain service used for snapshot traversal
func (s *ContextService) Chains() *domainservices.ChainService {
	return s.chains
}

func (s *ContextService) assemble(
	ctx context.Context,
	chain domainservices.Chain,
	newUserMessage string,
	ownerID valueobjects.UserID,
) (*AssembledContext, error) {
	if len(chain.Unmaterialized) > 0 {
		s.logger.Debug("Chain skipped unmaterialized ancestors",
			zap.Strings("refs", valueobjects.NodeRefStrings(chain.Unmaterialized)),
		)
	}
	s.metrics.ObserveChainLength(chain.Len())

	agg, err := s.Aggregate(ctx, chain.IDs, ownerID)
	if err != nil {
		return nil, err
	}

	newTurn := valueobjects.UserMessage(newUserMessage)
	messages := make([]valueobjects.ChatMessage, len(agg.Messages), len(agg.Messages)+1)
	copy(messages, agg.Messages)

	suppressed := len(messages) > 0 && messages[len(messages)-1].Equals(newTurn)
	if !suppressed {
		messages = append(messages, newTurn)
	}

	s.metrics.RecordAssembled(suppressed)
	s.logger.Debug("Assembled context",
		zap.Int("chainLength", chain.Len()),
		zap.Int("messages", len(messages)),
		zap.Int("excluded", len(agg.Excluded)),
		zap.Bool("duplicateSuppressed", suppressed),
	)

	return &AssembledContext{
		Chain:               chain,
		Messages:            messages,
		Excluded:            agg.Excluded,
		DuplicateSuppressed: suppressed,
	}, nil
}

func (s *ContextService) exclude(result *Aggregation, id valueobjects.PersistedID, reason ExclusionReason) {
	result.Excluded = append(result.Excluded, Exclusion{NodeID: id, Reason: reason})
	s.metrics.RecordExclusion(string(reason))
	s.logger.Debug("Excluded node from context",
		zap.String("nodeID", id.String()),
		zap.String("reason", string(reason)),
	)
}
