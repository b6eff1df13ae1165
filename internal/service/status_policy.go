package service

import (
	"fmt"

	"github.com/pabloleguizamon/dragon-challenge/internal/domain"
)

// StatusPolicy decides whether an order may move from one status to another.
type StatusPolicy interface {
	Allow(from, to domain.OrderStatus) error
}

// PermissivePolicy accepts any valid target status.
type PermissivePolicy struct{}

func (PermissivePolicy) Allow(_, to domain.OrderStatus) error {
	if !to.Valid() {
		return invalidField("status", "oneof")
	}
	return nil
}

// LifecyclePolicy follows PENDING -> PROCESSING -> COMPLETED. CANCELLED is
// reachable from PENDING and PROCESSING. Re-applying the current status is a
// no-op.
type LifecyclePolicy struct{}

var lifecycle = map[domain.OrderStatus][]domain.OrderStatus{
	domain.OrderStatusPending:    {domain.OrderStatusProcessing, domain.OrderStatusCancelled},
	domain.OrderStatusProcessing: {domain.OrderStatusCompleted, domain.OrderStatusCancelled},
}

func (LifecyclePolicy) Allow(from, to domain.OrderStatus) error {
	if !to.Valid() {
		return invalidField("status", "oneof")
	}
	if from == to {
		return nil
	}
	for _, next := range lifecycle[from] {
		if next == to {
			return nil
		}
	}
	return &InvalidTransitionError{From: from, To: to}
}

// PolicyByName resolves the ORDER_STATUS_POLICY setting.
func PolicyByName(name string) (StatusPolicy, error) {
	switch name {
	case "", "permissive":
		return PermissivePolicy{}, nil
	case "lifecycle":
		return LifecyclePolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown order status policy %q", name)
	}
}
