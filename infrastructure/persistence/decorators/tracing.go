package decorators

import (
	"context"

	"canvaschat/application/ports"
	"canvaschat/domain/core/entities"
	"canvaschat/domain/core/valueobjects"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TraceStore wraps a store with tracing
func TraceStore(store ports.ChatStore, tracer trace.Tracer) ports.ChatStore {
	return &tracedChatStore{
		inner:  store,
		tracer: tracer,
	}
}

type tracedChatStore struct {
	inner  ports.ChatStore
	tracer trace.Tracer
}

func (r *tracedChatStore) GetOwners(ctx context.Context, ids []valueobjects.PersistedID) (map[valueobjects.PersistedID]valueobjects.UserID, error) {
	ctx, span := r.tracer.Start(ctx, "store.GetOwners",
		trace.WithAttributes(
			attribute.Int("nodes.requested", len(ids)),
		),
	)
	defer span.End()

	owners, err := r.inner.GetOwners(ctx, ids)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("nodes.found", len(owners)))
	return owners, nil
}

func (r *tracedChatStore) ListByNodes(ctx context.Context, ids []valueobjects.PersistedID) ([]*entities.Message, error) {
	ctx, span := r.tracer.Start(ctx, "store.ListByNodes",
		trace.WithAttributes(
			attribute.StringSlice("node.ids", valueobjects.PersistedIDStrings(ids)),
		),
	)
	defer span.End()

	messages, err := r.inner.ListByNodes(ctx, ids)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("messages", len(messages)))
	return messages, nil
}
