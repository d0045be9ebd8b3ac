package decorators

import (
	"context"
	"errors"
	"testing"
	"time"

	"canvaschat/application/ports/mocks"
	"canvaschat/domain/core/entities"
	"canvaschat/domain/core/valueobjects"
	pkgerrors "canvaschat/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

func TestCircuitBreakerStore_OpensAfterFailures(t *testing.T) {
	storeErr := errors.New("throttled")
	inner := new(mocks.MockChatStore)
	inner.On("GetOwners", mock.Anything, mock.Anything).Return(nil, storeErr).Times(2)

	var transitions []string
	store := NewCircuitBreakerStore(inner, CircuitBreakerConfig{
		Name:             "chat-store",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 0.5,
		MinRequests:      2,
		OnStateChange:    func(name, to string) { transitions = append(transitions, to) },
	}, zap.NewNop())

	ids := []valueobjects.PersistedID{"n1"}
	for i := 0; i < 2; i++ {
		_, err := store.GetOwners(context.Background(), ids)
		assert.ErrorIs(t, err, storeErr)
	}

	_, err := store.GetOwners(context.Background(), ids)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsUnavailable(err))
	assert.Equal(t, "open", store.State())
	assert.Equal(t, []string{"open"}, transitions)
	inner.AssertNumberOfCalls(t, "GetOwners", 2)
}

func TestCircuitBreakerStore_PassesThrough(t *testing.T) {
	inner := new(mocks.MockChatStore)
	owners := map[valueobjects.PersistedID]valueobjects.UserID{"n1": "u1"}
	inner.On("GetOwners", mock.Anything, mock.Anything).Return(owners, nil)
	inner.On("ListByNodes", mock.Anything, mock.Anything).Return([]*entities.Message{}, nil)

	store := NewCircuitBreakerStore(inner, CircuitBreakerConfig{Name: "chat-store", FailureThreshold: 0.5}, nil)

	got, err := store.GetOwners(context.Background(), []valueobjects.PersistedID{"n1"})
	require.NoError(t, err)
	assert.Equal(t, owners, got)

	msgs, err := store.ListByNodes(context.Background(), []valueobjects.PersistedID{"n1"})
	require.NoError(t, err)
	assert.Empty(t, msgs)
	assert.Equal(t, "closed", store.State())
}

func TestTraceStore(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := trace.NewTracerProvider(trace.WithSpanProcessor(recorder))

	storeErr := errors.New("boom")
	inner := new(mocks.MockChatStore)
	inner.On("GetOwners", mock.Anything, mock.Anything).
		Return(map[valueobjects.PersistedID]valueobjects.UserID{"n1": "u1"}, nil)
	inner.On("ListByNodes", mock.Anything, mock.Anything).Return(nil, storeErr)

	store := TraceStore(inner, tp.Tracer("test"))

	_, err := store.GetOwners(context.Background(), []valueobjects.PersistedID{"n1"})
	require.NoError(t, err)
	_, err = store.ListByNodes(context.Background(), []valueobjects.PersistedID{"n1"})
	assert.ErrorIs(t, err, storeErr)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "store.GetOwners", spans[0].Name())
	assert.Equal(t, "store.ListByNodes", spans[1].Name())
	assert.Len(t, spans[1].Events(), 1)
}
