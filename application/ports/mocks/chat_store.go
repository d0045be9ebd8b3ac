package mocks

import (
	"context"

	"canvaschat/domain/core/entities"
	"canvaschat/domain/core/valueobjects"

	"github.com/stretchr/testify/mock"
)

// MockChatStore is a testify mock of ports.ChatStore
type MockChatStore struct {
	mock.Mock
}

func (m *MockChatStore) GetOwners(ctx context.Context, ids []valueobjects.PersistedID) (map[valueobjects.PersistedID]valueobjects.UserID, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) != nil {
		return args.Get(0).(map[valueobjects.PersistedID]valueobjects.UserID), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockChatStore) ListByNodes(ctx context.Context, ids []valueobjects.PersistedID) ([]*entities.Message, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) != nil {
		return args.Get(0).([]*entities.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockContextMetrics is a testify mock of ports.ContextMetrics
type MockContextMetrics struct {
	mock.Mock
}

func (m *MockContextMetrics) ObserveChainLength(length int) {
	m.Called(length)
}

func (m *MockContextMetrics) RecordExclusion(reason string) {
	m.Called(reason)
}

func (m *MockContextMetrics) RecordAssembled(duplicateSuppressed bool) {
	m.Called(duplicateSuppressed)
}
