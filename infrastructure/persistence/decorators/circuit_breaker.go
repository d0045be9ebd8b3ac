package decorators

import (
	"context"
	"errors"
	"time"

	"canvaschat/application/ports"
	"canvaschat/domain/core/entities"
	"canvaschat/domain/core/valueobjects"
	pkgerrors "canvaschat/pkg/errors"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// CircuitBreakerConfig holds configuration for circuit breaker
type CircuitBreakerConfig struct {
	Name        string
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	// FailureThreshold is the failure ratio that trips the breaker
	FailureThreshold float64
	MinRequests      uint32
	// OnStateChange is called after every transition
	OnStateChange func(name, to string)
}

// CircuitBreakerStore fails fast once the wrapped store keeps failing
type CircuitBreakerStore struct {
	inner   ports.ChatStore
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewCircuitBreakerStore wraps a store with a circuit breaker
func NewCircuitBreakerStore(inner ports.ChatStore, config CircuitBreakerConfig, logger *zap.Logger) *CircuitBreakerStore {
	if logger == nil {
		logger = zap.NewNop()
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < config.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= config.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if config.OnStateChange != nil {
				config.OnStateChange(name, to.String())
			}
		},
		// Caller cancellation says nothing about the store's health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &CircuitBreakerStore{
		inner:   inner,
		breaker: cb,
		logger:  logger,
	}
}

// GetOwners implements ports.NodeOwnerReader
func (s *CircuitBreakerStore) GetOwners(ctx context.Context, ids []valueobjects.PersistedID) (map[valueobjects.PersistedID]valueobjects.UserID, error) {
	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.inner.GetOwners(ctx, ids)
	})
	if err != nil {
		return nil, s.translate(err)
	}
	return result.(map[valueobjects.PersistedID]valueobjects.UserID), nil
}

// ListByNodes implements ports.MessageReader
func (s *CircuitBreakerStore) ListByNodes(ctx context.Context, ids []valueobjects.PersistedID) ([]*entities.Message, error) {
	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.inner.ListByNodes(ctx, ids)
	})
	if err != nil {
		return nil, s.translate(err)
	}
	return result.([]*entities.Message), nil
}

// State returns the current breaker state
func (s *CircuitBreakerStore) State() string {
	return s.breaker.State().String()
}

func (s *CircuitBreakerStore) translate(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		s.logger.Debug("Chat store request rejected by circuit breaker",
			zap.String("breaker", s.breaker.Name()),
			zap.Error(err),
		)
		return pkgerrors.NewUnavailableError("chat store").WithCause(err)
	}
	return err
}
