package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/seblak-delivery/api/middlewares"
	"github.com/seblak-delivery/api/models"
	"github.com/seblak-delivery/api/pricing"
	"github.com/seblak-delivery/api/realtime"
	"github.com/seblak-delivery/api/statemachine"
	"github.com/seblak-delivery/api/utils"
)

// deliveryBuffer is added on top of the restaurant's average preparation
// time when estimating delivery.
const deliveryBuffer = 30 * time.Minute

// availableOrdersLimit caps the candidate set scanned by the distance filter.
const availableOrdersLimit = 20

type OrderController struct {
	DB  *gorm.DB
	Hub realtime.Publisher
}

func NewOrderController(db *gorm.DB, hub realtime.Publisher) *OrderController {
	return &OrderController{DB: db, Hub: hub}
}

// CreateOrder prices the requested items against the restaurant menu and
// persists the order with its initial pending history record. Nothing is
// persisted when pricing fails.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req struct {
		RestaurantID        uint                   `json:"restaurant_id" binding:"required"`
		Items               []pricing.ItemRequest  `json:"items" binding:"required,min=1,dive"`
		DeliveryAddress     models.DeliveryAddress `json:"delivery_address" binding:"required"`
		PaymentMethod       models.PaymentMethod   `json:"payment_method" binding:"required"`
		SpecialInstructions string                 `json:"special_instructions"`
		PromoCode           string                 `json:"promo_code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if !models.ValidPaymentMethod(req.PaymentMethod) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid payment method"))
		return
	}

	var restaurant models.Restaurant
	if err := oc.DB.Preload("Menu.SpiceLevels").Preload("Menu.Toppings").
		First(&restaurant, req.RestaurantID).Error; err != nil || !restaurant.IsActive {
		utils.RespondError(c, http.StatusNotFound, errors.New("restaurant not found or inactive"))
		return
	}

	var customer models.User
	if err := oc.DB.First(&customer, middlewares.GetUserID(c)).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("customer not found"))
		return
	}

	quote, err := pricing.PriceOrder(&restaurant, req.Items, req.PromoCode)
	if err != nil {
		switch {
		case errors.Is(err, pricing.ErrItemUnavailable):
			utils.RespondError(c, http.StatusBadRequest, err)
		case errors.Is(err, pricing.ErrBelowMinimumOrder):
			utils.RespondError(c, http.StatusBadRequest,
				fmt.Errorf("minimum order amount is %s", utils.FormatCurrencyIDR(restaurant.MinimumOrder)))
		default:
			utils.RespondError(c, http.StatusInternalServerError, err)
		}
		return
	}

	now := time.Now()
	estimated := now.Add(time.Duration(restaurant.AveragePreparationTime)*time.Minute + deliveryBuffer)

	order := models.Order{
		CustomerID:            customer.ID,
		RestaurantID:          restaurant.ID,
		Status:                models.StatusPending,
		Items:                 quote.Items,
		Subtotal:              quote.Subtotal,
		DeliveryFee:           quote.DeliveryFee,
		Tax:                   quote.Tax,
		Discount:              quote.Discount,
		TotalAmount:           quote.Total,
		DeliveryAddress:       req.DeliveryAddress,
		CustomerName:          customer.FullName,
		CustomerPhone:         customer.Phone,
		PaymentMethod:         req.PaymentMethod,
		PaymentStatus:         models.PaymentPending,
		EstimatedDeliveryTime: &estimated,
		SpecialInstructions:   req.SpecialInstructions,
		PromoCode:             req.PromoCode,
		StatusHistory: []models.OrderStatusRecord{
			{Status: models.StatusPending, Timestamp: now},
		},
	}

	if err := oc.DB.Create(&order).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	oc.Hub.Emit(realtime.RestaurantRoom(restaurant.ID), realtime.EventNewOrder, gin.H{
		"order_id":      order.ID,
		"order_number":  order.OrderNumber,
		"customer_name": customer.FullName,
		"total_amount":  order.TotalAmount,
		"items":         len(order.Items),
	})

	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// GetCustomerOrders lists the caller's orders, newest first.
func (oc *OrderController) GetCustomerOrders(c *gin.Context) {
	customerID := middlewares.GetUserID(c)
	page, limit := pagination(c)

	query := oc.DB.Model(&models.Order{}).Where("customer_id = ?", customerID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)

	var orders []models.Order
	if err := query.Preload("Restaurant").Preload("DeliveryPartner").Preload("Items.Toppings").
		Order("created_at DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Customer orders", gin.H{
		"orders":       orders,
		"total":        total,
		"current_page": page,
		"total_pages":  totalPages(total, limit),
	})
}

// GetOrderByID returns one order; only the customer, the assigned partner,
// the restaurant owner or an admin may read it.
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	var order models.Order
	if err := oc.DB.Preload("Customer").Preload("Restaurant").Preload("DeliveryPartner").
		Preload("Items.Toppings").Preload("StatusHistory").
		First(&order, c.Param("id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("order not found"))
		return
	}

	if !oc.canAccessOrder(&order, middlewares.GetUserID(c), models.UserRole(middlewares.GetRole(c))) {
		utils.RespondError(c, http.StatusForbidden, errors.New("access denied"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

func (oc *OrderController) canAccessOrder(order *models.Order, userID uint, role models.UserRole) bool {
	if role == models.RoleAdmin || order.CustomerID == userID {
		return true
	}
	if order.DeliveryPartnerID != nil && *order.DeliveryPartnerID == userID {
		return true
	}
	var count int64
	oc.DB.Model(&models.Restaurant{}).
		Where("id = ? AND owner_id = ?", order.RestaurantID, userID).
		Count(&count)
	return count > 0
}

// UpdateOrderStatus applies a role-gated status transition and fans the
// change out to the order's watchers.
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	var req struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var order models.Order
	if err := oc.DB.First(&order, c.Param("id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("order not found"))
		return
	}

	userID := middlewares.GetUserID(c)
	role := models.UserRole(middlewares.GetRole(c))

	switch role {
	case models.RoleRestaurantOwner:
		var count int64
		oc.DB.Model(&models.Restaurant{}).
			Where("id = ? AND owner_id = ?", order.RestaurantID, userID).
			Count(&count)
		if count == 0 {
			utils.RespondError(c, http.StatusForbidden, errors.New("access denied"))
			return
		}
	case models.RoleDeliveryPartner:
		// Unassigned orders pass through for the acceptance flow.
		if order.DeliveryPartnerID != nil && *order.DeliveryPartnerID != userID {
			utils.RespondError(c, http.StatusForbidden, errors.New("access denied"))
			return
		}
	case models.RoleCustomer:
		if order.CustomerID != userID {
			utils.RespondError(c, http.StatusForbidden, errors.New("access denied"))
			return
		}
	}

	if err := statemachine.CanSet(role, &order, req.Status); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	statemachine.Apply(&order, req.Status)
	if err := oc.persistStatus(&order); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	oc.Hub.Emit(realtime.OrderRoom(order.ID), realtime.EventOrderStatusUpdated, gin.H{
		"order_id":  order.ID,
		"status":    order.Status,
		"timestamp": time.Now(),
	})

	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}

// persistStatus writes the status fields and the newest history record in
// one transaction. History rows are only ever inserted, never rewritten.
func (oc *OrderController) persistStatus(order *models.Order) error {
	record := order.StatusHistory[len(order.StatusHistory)-1]
	return oc.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status": order.Status,
		}
		if order.ActualDeliveryTime != nil {
			updates["actual_delivery_time"] = order.ActualDeliveryTime
		}
		if order.CancellationReason != "" {
			updates["cancellation_reason"] = order.CancellationReason
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Create(&record).Error
	})
}

// CancelOrder is the dedicated customer cancellation endpoint; it requires a
// reason, unlike the generic status update.
func (oc *OrderController) CancelOrder(c *gin.Context) {
	var req struct {
		Reason string `json:"reason" binding:"required,min=5"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var order models.Order
	if err := oc.DB.First(&order, c.Param("id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("order not found"))
		return
	}
	if order.CustomerID != middlewares.GetUserID(c) {
		utils.RespondError(c, http.StatusForbidden, errors.New("access denied"))
		return
	}
	if err := statemachine.CanCancel(&order); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order.CancellationReason = req.Reason
	statemachine.Apply(&order, models.StatusCancelled)
	if err := oc.persistStatus(&order); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	oc.Hub.Emit(realtime.OrderRoom(order.ID), realtime.EventOrderCancelled, gin.H{
		"order_id":  order.ID,
		"reason":    req.Reason,
		"timestamp": time.Now(),
	})
	oc.Hub.Emit(realtime.RestaurantRoom(order.RestaurantID), realtime.EventOrderCancelled, gin.H{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"reason":       req.Reason,
	})

	utils.RespondJSON(c, http.StatusOK, "Order cancelled", order)
}

// RateOrder attaches a one-time rating to a delivered order and recomputes
// the restaurant's running average over all of its rated orders.
func (oc *OrderController) RateOrder(c *gin.Context) {
	var req struct {
		Overall  int    `json:"overall" binding:"required,min=1,max=5"`
		Food     *int   `json:"food" binding:"omitempty,min=1,max=5"`
		Delivery *int   `json:"delivery" binding:"omitempty,min=1,max=5"`
		Comment  string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var order models.Order
	if err := oc.DB.First(&order, c.Param("id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("order not found"))
		return
	}
	if order.CustomerID != middlewares.GetUserID(c) {
		utils.RespondError(c, http.StatusForbidden, errors.New("access denied"))
		return
	}
	if order.Status != models.StatusDelivered {
		utils.RespondError(c, http.StatusBadRequest, errors.New("order must be delivered to rate"))
		return
	}
	if order.IsRated() {
		utils.RespondError(c, http.StatusBadRequest, errors.New("order already rated"))
		return
	}

	food := req.Overall
	if req.Food != nil {
		food = *req.Food
	}
	delivery := req.Overall
	if req.Delivery != nil {
		delivery = *req.Delivery
	}

	overall := req.Overall
	order.Rating = models.Rating{
		Food:     &food,
		Delivery: &delivery,
		Overall:  &overall,
		Comment:  req.Comment,
	}
	if err := oc.DB.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
		"rating_food":     food,
		"rating_delivery": delivery,
		"rating_overall":  overall,
		"rating_comment":  req.Comment,
	}).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	oc.recomputeRestaurantRating(order.RestaurantID)

	utils.RespondJSON(c, http.StatusOK, "Order rated", order)
}

// recomputeRestaurantRating is a full recompute over every rated order of
// the restaurant, not an incremental update.
func (oc *OrderController) recomputeRestaurantRating(restaurantID uint) {
	var rated []models.Order
	if err := oc.DB.Where("restaurant_id = ? AND rating_overall IS NOT NULL", restaurantID).
		Find(&rated).Error; err != nil {
		utils.ErrorLogger.Printf("recompute rating for restaurant %d: %v", restaurantID, err)
		return
	}
	if len(rated) == 0 {
		return
	}

	var sum int
	for _, o := range rated {
		sum += *o.Rating.Overall
	}
	avg := float64(sum) / float64(len(rated))

	if err := oc.DB.Model(&models.Restaurant{}).Where("id = ?", restaurantID).Updates(map[string]interface{}{
		"rating":        avg,
		"total_reviews": len(rated),
	}).Error; err != nil {
		utils.ErrorLogger.Printf("update rating for restaurant %d: %v", restaurantID, err)
	}
}

// GetAvailableOrders lists unassigned ready_for_pickup orders whose
// restaurant is within radius km of the partner's position. The distance
// check is a linear scan over a capped, status-filtered candidate set.
func (oc *OrderController) GetAvailableOrders(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("latitude"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("longitude"), 64)
	if latErr != nil || lngErr != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("location coordinates required"))
		return
	}
	radius := 10.0
	if r, err := strconv.ParseFloat(c.Query("radius"), 64); err == nil {
		radius = r
	}

	var candidates []models.Order
	if err := oc.DB.Preload("Restaurant").Preload("Customer").Preload("Items").
		Where("status = ? AND delivery_partner_id IS NULL", models.StatusReadyForPickup).
		Order("created_at ASC").
		Limit(availableOrdersLimit).
		Find(&candidates).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	nearby := make([]models.Order, 0, len(candidates))
	for _, order := range candidates {
		if order.Restaurant == nil {
			continue
		}
		distance := utils.HaversineKm(lat, lng,
			order.Restaurant.Address.Latitude, order.Restaurant.Address.Longitude)
		if distance <= radius {
			nearby = append(nearby, order)
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Available orders", gin.H{"orders": nearby})
}

// AcceptOrder claims an order for the calling delivery partner. The claim is
// an atomic conditional update so two partners cannot accept the same order.
func (oc *OrderController) AcceptOrder(c *gin.Context) {
	partnerID := middlewares.GetUserID(c)

	var partner models.User
	if err := oc.DB.First(&partner, partnerID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("delivery partner not found"))
		return
	}
	if !partner.DeliveryPartnerInfo.IsActive {
		utils.RespondError(c, http.StatusBadRequest, errors.New("delivery partner not active"))
		return
	}

	res := oc.DB.Model(&models.Order{}).
		Where("id = ? AND status = ? AND delivery_partner_id IS NULL",
			c.Param("id"), models.StatusReadyForPickup).
		Updates(map[string]interface{}{
			"delivery_partner_id": partnerID,
			"status":              models.StatusAssigned,
		})
	if res.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("order not available for pickup"))
		return
	}

	var order models.Order
	if err := oc.DB.Preload("Restaurant").First(&order, c.Param("id")).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	oc.DB.Create(&models.OrderStatusRecord{
		OrderID:   order.ID,
		Status:    models.StatusAssigned,
		Timestamp: time.Now(),
	})

	oc.Hub.Emit(realtime.OrderRoom(order.ID), realtime.EventOrderAssigned, gin.H{
		"order_id": order.ID,
		"delivery_partner": gin.H{
			"name":  partner.FullName,
			"phone": partner.Phone,
		},
		"timestamp": time.Now(),
	})

	utils.RespondJSON(c, http.StatusOK, "Order accepted", order)
}

func pagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}

func totalPages(total int64, limit int) int64 {
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return pages
}
