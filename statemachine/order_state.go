// Package statemachine holds the role-gated order status transition rules.
// The authorization matrix lives in a table rather than inline handler
// branches so it can be tested on its own.
package statemachine

import (
	"errors"
	"fmt"
	"time"

	"github.com/seblak-delivery/api/models"
)

var (
	ErrTargetNotAllowed = errors.New("status not allowed for this role")
	ErrNotCancellable   = errors.New("order cannot be cancelled at this stage")
)

// allowedTargets maps a role to the statuses it may set. The machine gates
// WHO may set WHICH target; it does not enforce single-step advancement, so
// a restaurant owner can move pending straight to ready_for_pickup. Ownership
// and assignment checks stay with the callers, who have the data in hand.
var allowedTargets = map[models.UserRole][]models.OrderStatus{
	models.RoleRestaurantOwner: {
		models.StatusConfirmed,
		models.StatusPreparing,
		models.StatusReadyForPickup,
	},
	models.RoleDeliveryPartner: {
		models.StatusPickedUp,
		models.StatusOnTheWay,
		models.StatusDelivered,
	},
	models.RoleCustomer: {
		models.StatusCancelled,
	},
}

// cancellableFrom lists the statuses a customer may cancel out of.
var cancellableFrom = map[models.OrderStatus]bool{
	models.StatusPending:   true,
	models.StatusConfirmed: true,
}

// AllowedTargets returns the statuses the given role may set. Admin may set
// any status.
func AllowedTargets(role models.UserRole) []models.OrderStatus {
	if role == models.RoleAdmin {
		return []models.OrderStatus{
			models.StatusPending, models.StatusConfirmed, models.StatusPreparing,
			models.StatusReadyForPickup, models.StatusPickedUp, models.StatusOnTheWay,
			models.StatusDelivered, models.StatusCancelled, models.StatusRefunded,
		}
	}
	return allowedTargets[role]
}

// CanSet checks whether role may move the order to target.
func CanSet(role models.UserRole, order *models.Order, target models.OrderStatus) error {
	if role == models.RoleAdmin {
		return nil
	}

	permitted := false
	for _, s := range allowedTargets[role] {
		if s == target {
			permitted = true
			break
		}
	}
	if !permitted {
		return fmt.Errorf("%w: %s cannot set %s", ErrTargetNotAllowed, role, target)
	}

	if role == models.RoleCustomer && target == models.StatusCancelled && !cancellableFrom[order.Status] {
		return ErrNotCancellable
	}

	return nil
}

// CanCancel checks the customer cancellation window on its own, for the
// dedicated cancel endpoint.
func CanCancel(order *models.Order) error {
	if !cancellableFrom[order.Status] {
		return ErrNotCancellable
	}
	return nil
}

// Apply sets the new status on the order, appends a history record and stamps
// the actual delivery time when the order reaches delivered. It does not
// persist; callers save the order afterwards.
func Apply(order *models.Order, status models.OrderStatus) {
	now := time.Now()
	order.Status = status
	order.StatusHistory = append(order.StatusHistory, models.OrderStatusRecord{
		OrderID:   order.ID,
		Status:    status,
		Timestamp: now,
	})
	if status == models.StatusDelivered {
		order.ActualDeliveryTime = &now
	}
}
