package models

import (
	"fmt"
	"math/rand"
	"time"

	"gorm.io/gorm"
)

type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusPreparing      OrderStatus = "preparing"
	StatusReadyForPickup OrderStatus = "ready_for_pickup"
	StatusPickedUp       OrderStatus = "picked_up"
	StatusOnTheWay       OrderStatus = "on_the_way"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
	StatusRefunded       OrderStatus = "refunded"

	// StatusAssigned is written only by the delivery-accept flow and sits
	// outside the canonical enum above. Kept for compatibility with the
	// partner app, which polls for it after accepting.
	StatusAssigned OrderStatus = "assigned"
)

type PaymentMethod string

const (
	PaymentQRIS         PaymentMethod = "qris"
	PaymentGopay        PaymentMethod = "gopay"
	PaymentOVO          PaymentMethod = "ovo"
	PaymentDANA         PaymentMethod = "dana"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCash         PaymentMethod = "cash"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// ValidPaymentMethod reports whether m is one of the supported methods.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentQRIS, PaymentGopay, PaymentOVO, PaymentDANA, PaymentBankTransfer, PaymentCash:
		return true
	}
	return false
}

type OrderItemTopping struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	OrderItemID uint    `gorm:"not null;index" json:"order_item_id"`
	ToppingID   uint    `gorm:"not null" json:"topping_id"`
	Name        string  `gorm:"type:varchar(100);not null" json:"name"`
	Quantity    int     `gorm:"not null" json:"quantity"`
	UnitPrice   float64 `gorm:"type:decimal(10,2);not null" json:"unit_price"`
}

type OrderItem struct {
	ID                  uint               `gorm:"primaryKey" json:"id"`
	OrderID             uint               `gorm:"not null;index" json:"order_id"`
	MenuItemID          uint               `gorm:"not null" json:"menu_item_id"`
	Name                string             `gorm:"type:varchar(255);not null" json:"name"`
	Quantity            int                `gorm:"not null" json:"quantity"`
	UnitPrice           float64            `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	SpiceLevel          SpiceLevel         `gorm:"type:varchar(20);not null" json:"spice_level"`
	Toppings            []OrderItemTopping `gorm:"foreignKey:OrderItemID;constraint:OnDelete:CASCADE" json:"toppings"`
	SpecialInstructions string             `gorm:"type:text" json:"special_instructions,omitempty"`
}

// OrderStatusRecord is one entry of the append-only status history.
type OrderStatusRecord struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	OrderID   uint        `gorm:"not null;index" json:"order_id"`
	Status    OrderStatus `gorm:"type:varchar(20);not null" json:"status"`
	Timestamp time.Time   `gorm:"not null" json:"timestamp"`
	Notes     string      `gorm:"type:text" json:"notes,omitempty"`
}

type Rating struct {
	Food     *int   `json:"food,omitempty"`
	Delivery *int   `json:"delivery,omitempty"`
	Overall  *int   `json:"overall,omitempty"`
	Comment  string `gorm:"type:text" json:"comment,omitempty"`
}

type DeliveryAddress struct {
	Address
	Notes string `gorm:"type:text" json:"notes,omitempty"`
}

type Order struct {
	ID                    uint                `gorm:"primaryKey" json:"id"`
	OrderNumber           string              `gorm:"type:varchar(20);uniqueIndex;not null" json:"order_number"`
	CustomerID            uint                `gorm:"not null;index" json:"customer_id"`
	Customer              *User               `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	RestaurantID          uint                `gorm:"not null;index" json:"restaurant_id"`
	Restaurant            *Restaurant         `gorm:"foreignKey:RestaurantID" json:"restaurant,omitempty"`
	DeliveryPartnerID     *uint               `gorm:"index" json:"delivery_partner_id,omitempty"`
	DeliveryPartner       *User               `gorm:"foreignKey:DeliveryPartnerID" json:"delivery_partner,omitempty"`
	Status                OrderStatus         `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Items                 []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Subtotal              float64             `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	DeliveryFee           float64             `gorm:"type:decimal(10,2);not null" json:"delivery_fee"`
	Tax                   float64             `gorm:"type:decimal(10,2);default:0" json:"tax"`
	Discount              float64             `gorm:"type:decimal(10,2);default:0" json:"discount"`
	TotalAmount           float64             `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	DeliveryAddress       DeliveryAddress     `gorm:"embedded;embeddedPrefix:delivery_" json:"delivery_address"`
	CustomerName          string              `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerPhone         string              `gorm:"type:varchar(20);not null" json:"customer_phone"`
	PaymentMethod         PaymentMethod       `gorm:"type:varchar(20);not null" json:"payment_method"`
	PaymentStatus         PaymentStatus       `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`
	EstimatedDeliveryTime *time.Time          `json:"estimated_delivery_time,omitempty"`
	ActualDeliveryTime    *time.Time          `json:"actual_delivery_time,omitempty"`
	Rating                Rating              `gorm:"embedded;embeddedPrefix:rating_" json:"rating"`
	CancellationReason    string              `gorm:"type:text" json:"cancellation_reason,omitempty"`
	SpecialInstructions   string              `gorm:"type:text" json:"special_instructions,omitempty"`
	PromoCode             string              `gorm:"type:varchar(50)" json:"promo_code,omitempty"`
	StatusHistory         []OrderStatusRecord `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"status_history"`
	CreatedAt             time.Time           `json:"created_at"`
	UpdatedAt             time.Time           `json:"updated_at"`
}

// BeforeCreate generates the human-readable order number: SEB + date + a
// 3-digit random suffix, e.g. SEB20250115042.
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.OrderNumber == "" {
		now := time.Now()
		o.OrderNumber = fmt.Sprintf("SEB%s%03d", now.Format("20060102"), rand.Intn(1000))
	}
	return nil
}

// IsRated reports whether the order already carries an overall rating.
func (o *Order) IsRated() bool {
	return o.Rating.Overall != nil
}
