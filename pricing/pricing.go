// Package pricing derives order line items and totals from a restaurant's
// menu configuration.
package pricing

import (
	"errors"
	"fmt"

	"github.com/seblak-delivery/api/models"
)

var (
	ErrItemUnavailable   = errors.New("menu item not found or unavailable")
	ErrBelowMinimumOrder = errors.New("subtotal below restaurant minimum order")
)

// TaxRate is the fixed tax applied to every order's subtotal.
const TaxRate = 0.10

// promoSeblak10 is the single recognized promo code: a flat 10% of subtotal.
const promoSeblak10 = "SEBLAK10"

type ToppingRequest struct {
	ToppingID uint `json:"topping_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

type ItemRequest struct {
	MenuItemID          uint              `json:"menu_item_id" binding:"required"`
	Quantity            int               `json:"quantity" binding:"required,min=1"`
	SpiceLevel          models.SpiceLevel `json:"spice_level" binding:"required"`
	Toppings            []ToppingRequest  `json:"toppings"`
	SpecialInstructions string            `json:"special_instructions"`
}

// Quote is the priced result of an order request, ready to persist.
type Quote struct {
	Items       []models.OrderItem
	Subtotal    float64
	DeliveryFee float64
	Tax         float64
	Discount    float64
	Total       float64
}

// PriceOrder resolves the requested items against the restaurant's menu and
// computes the order totals.
//
// Unit price = base price + spice adjustment for the matched level (0 when
// the item has no such level) + topping price x quantity for toppings that
// exist and are available. Unknown or unavailable toppings are dropped from
// both the price and the persisted order without error.
func PriceOrder(restaurant *models.Restaurant, items []ItemRequest, promoCode string) (*Quote, error) {
	var (
		orderItems []models.OrderItem
		subtotal   float64
	)

	for _, req := range items {
		menuItem := restaurant.FindMenuItem(req.MenuItemID)
		if menuItem == nil || !menuItem.IsAvailable {
			return nil, fmt.Errorf("%w: menu item %d", ErrItemUnavailable, req.MenuItemID)
		}

		unitPrice := menuItem.BasePrice
		for _, level := range menuItem.SpiceLevels {
			if level.Level == req.SpiceLevel {
				unitPrice += level.PriceAdjustment
				break
			}
		}

		var toppings []models.OrderItemTopping
		for _, tr := range req.Toppings {
			topping := findTopping(menuItem, tr.ToppingID)
			if topping == nil || !topping.IsAvailable {
				continue
			}
			toppings = append(toppings, models.OrderItemTopping{
				ToppingID: topping.ID,
				Name:      topping.Name,
				Quantity:  tr.Quantity,
				UnitPrice: topping.Price,
			})
			unitPrice += topping.Price * float64(tr.Quantity)
		}

		orderItems = append(orderItems, models.OrderItem{
			MenuItemID:          menuItem.ID,
			Name:                menuItem.Name,
			Quantity:            req.Quantity,
			UnitPrice:           unitPrice,
			SpiceLevel:          req.SpiceLevel,
			Toppings:            toppings,
			SpecialInstructions: req.SpecialInstructions,
		})
		subtotal += unitPrice * float64(req.Quantity)
	}

	if subtotal < restaurant.MinimumOrder {
		return nil, ErrBelowMinimumOrder
	}

	tax := subtotal * TaxRate

	var discount float64
	if promoCode == promoSeblak10 {
		discount = subtotal * 0.10
	}

	total := subtotal + restaurant.DeliveryFee + tax - discount
	if total < 0 {
		total = 0
	}

	return &Quote{
		Items:       orderItems,
		Subtotal:    subtotal,
		DeliveryFee: restaurant.DeliveryFee,
		Tax:         tax,
		Discount:    discount,
		Total:       total,
	}, nil
}

func findTopping(item *models.MenuItem, id uint) *models.Topping {
	for i := range item.Toppings {
		if item.Toppings[i].ID == id {
			return &item.Toppings[i]
		}
	}
	return nil
}
