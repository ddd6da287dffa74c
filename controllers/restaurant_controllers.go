package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/seblak-delivery/api/middlewares"
	"github.com/seblak-delivery/api/models"
	"github.com/seblak-delivery/api/realtime"
	"github.com/seblak-delivery/api/statemachine"
	"github.com/seblak-delivery/api/utils"
)

type RestaurantController struct {
	DB  *gorm.DB
	Hub realtime.Publisher
}

func NewRestaurantController(db *gorm.DB, hub realtime.Publisher) *RestaurantController {
	return &RestaurantController{DB: db, Hub: hub}
}

// GetRestaurants lists active restaurants, best rated first. When the caller
// sends its coordinates the list is narrowed to each restaurant's own
// delivery radius.
func (rc *RestaurantController) GetRestaurants(c *gin.Context) {
	page, limit := pagination(c)

	query := rc.DB.Model(&models.Restaurant{}).Where("is_active = ?", true)
	if category := c.Query("category"); category != "" {
		query = query.Where("id IN (?)",
			rc.DB.Model(&models.MenuItem{}).Select("restaurant_id").Where("category = ?", category))
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	var restaurants []models.Restaurant
	if err := query.Order("rating DESC").Find(&restaurants).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	lat, latErr := strconv.ParseFloat(c.Query("latitude"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("longitude"), 64)
	if latErr == nil && lngErr == nil {
		inRange := make([]models.Restaurant, 0, len(restaurants))
		for _, r := range restaurants {
			d := utils.HaversineKm(lat, lng, r.Address.Latitude, r.Address.Longitude)
			if d <= r.DeliveryRadius {
				inRange = append(inRange, r)
			}
		}
		restaurants = inRange
	}

	total := int64(len(restaurants))
	start := (page - 1) * limit
	if start > len(restaurants) {
		start = len(restaurants)
	}
	end := start + limit
	if end > len(restaurants) {
		end = len(restaurants)
	}

	utils.RespondJSON(c, http.StatusOK, "Restaurants", gin.H{
		"restaurants":  restaurants[start:end],
		"total":        total,
		"current_page": page,
		"total_pages":  totalPages(total, limit),
	})
}

func (rc *RestaurantController) GetRestaurantByID(c *gin.Context) {
	var restaurant models.Restaurant
	if err := rc.DB.Preload("Menu.SpiceLevels").Preload("Menu.Toppings").
		First(&restaurant, c.Param("id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("restaurant not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant detail", restaurant)
}

type restaurantRequest struct {
	Name                   string         `json:"name" binding:"required"`
	Description            string         `json:"description"`
	Address                models.Address `json:"address" binding:"required"`
	Phone                  string         `json:"phone" binding:"required"`
	Email                  string         `json:"email" binding:"omitempty,email"`
	DeliveryRadius         float64        `json:"delivery_radius"`
	MinimumOrder           float64        `json:"minimum_order"`
	DeliveryFee            float64        `json:"delivery_fee"`
	ImageURL               string         `json:"image_url"`
	BannerURL              string         `json:"banner_url"`
	BusinessLicense        string         `json:"business_license"`
	AveragePreparationTime int            `json:"average_preparation_time"`
}

func (rc *RestaurantController) CreateRestaurant(c *gin.Context) {
	var req restaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	restaurant := models.Restaurant{
		OwnerID:                middlewares.GetUserID(c),
		Name:                   req.Name,
		Description:            req.Description,
		Address:                req.Address,
		Phone:                  req.Phone,
		Email:                  req.Email,
		IsActive:               true,
		DeliveryRadius:         req.DeliveryRadius,
		MinimumOrder:           req.MinimumOrder,
		DeliveryFee:            req.DeliveryFee,
		ImageURL:               req.ImageURL,
		BannerURL:              req.BannerURL,
		BusinessLicense:        req.BusinessLicense,
		AveragePreparationTime: req.AveragePreparationTime,
	}
	if restaurant.DeliveryRadius == 0 {
		restaurant.DeliveryRadius = 5
	}
	if restaurant.MinimumOrder == 0 {
		restaurant.MinimumOrder = 15000
	}
	if restaurant.DeliveryFee == 0 {
		restaurant.DeliveryFee = 5000
	}
	if restaurant.AveragePreparationTime == 0 {
		restaurant.AveragePreparationTime = 20
	}

	if err := rc.DB.Create(&restaurant).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Restaurant created: %s (owner=%d)", restaurant.Name, restaurant.OwnerID)
	utils.RespondJSON(c, http.StatusCreated, "Restaurant created", restaurant)
}

// UpdateRestaurant updates profile fields of a restaurant the caller owns.
// The owner check happens in the WHERE clause, so a foreign id reads as not
// found rather than forbidden.
func (rc *RestaurantController) UpdateRestaurant(c *gin.Context) {
	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	allowed := map[string]bool{
		"name": true, "description": true, "phone": true, "email": true,
		"is_active": true, "delivery_radius": true, "minimum_order": true,
		"delivery_fee": true, "image_url": true, "banner_url": true,
		"average_preparation_time": true,
	}
	updates := map[string]interface{}{}
	for k, v := range req {
		if allowed[k] {
			updates[k] = v
		}
	}
	if len(updates) == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("no updatable fields provided"))
		return
	}

	res := rc.DB.Model(&models.Restaurant{}).
		Where("id = ? AND owner_id = ?", c.Param("id"), middlewares.GetUserID(c)).
		Updates(updates)
	if res.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("restaurant not found"))
		return
	}

	var restaurant models.Restaurant
	rc.DB.First(&restaurant, c.Param("id"))
	utils.RespondJSON(c, http.StatusOK, "Restaurant updated", restaurant)
}

// ownedRestaurant loads the restaurant in the path and verifies ownership.
// Admin callers bypass the check.
func (rc *RestaurantController) ownedRestaurant(c *gin.Context) (*models.Restaurant, bool) {
	var restaurant models.Restaurant
	if err := rc.DB.First(&restaurant, c.Param("id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("restaurant not found"))
		return nil, false
	}
	role := models.UserRole(middlewares.GetRole(c))
	if role != models.RoleAdmin && restaurant.OwnerID != middlewares.GetUserID(c) {
		utils.RespondError(c, http.StatusForbidden, errors.New("access denied"))
		return nil, false
	}
	return &restaurant, true
}

type menuItemRequest struct {
	Name            string                    `json:"name" binding:"required"`
	Description     string                    `json:"description"`
	BasePrice       float64                   `json:"base_price" binding:"required,gt=0"`
	Category        models.MenuCategory       `json:"category" binding:"required"`
	SpiceLevels     []models.SpiceLevelOption `json:"spice_levels"`
	Toppings        []models.Topping          `json:"available_toppings"`
	IsAvailable     *bool                     `json:"is_available"`
	ImageURL        string                    `json:"image_url"`
	PreparationTime int                       `json:"preparation_time"`
}

func (rc *RestaurantController) AddMenuItem(c *gin.Context) {
	restaurant, ok := rc.ownedRestaurant(c)
	if !ok {
		return
	}

	var req menuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item := models.MenuItem{
		RestaurantID:    restaurant.ID,
		Name:            req.Name,
		Description:     req.Description,
		BasePrice:       req.BasePrice,
		Category:        req.Category,
		SpiceLevels:     req.SpiceLevels,
		Toppings:        req.Toppings,
		IsAvailable:     true,
		ImageURL:        req.ImageURL,
		PreparationTime: req.PreparationTime,
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}
	if item.PreparationTime == 0 {
		item.PreparationTime = 15
	}

	if err := rc.DB.Create(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Menu item added", item)
}

func (rc *RestaurantController) UpdateMenuItem(c *gin.Context) {
	restaurant, ok := rc.ownedRestaurant(c)
	if !ok {
		return
	}

	var item models.MenuItem
	if err := rc.DB.Where("id = ? AND restaurant_id = ?", c.Param("itemId"), restaurant.ID).
		First(&item).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("menu item not found"))
		return
	}

	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	allowed := map[string]bool{
		"name": true, "description": true, "base_price": true, "category": true,
		"is_available": true, "image_url": true, "preparation_time": true,
	}
	updates := map[string]interface{}{}
	for k, v := range req {
		if allowed[k] {
			updates[k] = v
		}
	}
	if len(updates) > 0 {
		if err := rc.DB.Model(&item).Updates(updates).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	}

	rc.DB.Preload("SpiceLevels").Preload("Toppings").First(&item, item.ID)
	utils.RespondJSON(c, http.StatusOK, "Menu item updated", item)
}

func (rc *RestaurantController) DeleteMenuItem(c *gin.Context) {
	restaurant, ok := rc.ownedRestaurant(c)
	if !ok {
		return
	}

	res := rc.DB.Where("id = ? AND restaurant_id = ?", c.Param("itemId"), restaurant.ID).
		Delete(&models.MenuItem{})
	if res.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("menu item not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item deleted", nil)
}

// GetRestaurantOrders lists incoming orders for a restaurant the caller owns.
func (rc *RestaurantController) GetRestaurantOrders(c *gin.Context) {
	restaurant, ok := rc.ownedRestaurant(c)
	if !ok {
		return
	}
	page, limit := pagination(c)

	query := rc.DB.Model(&models.Order{}).Where("restaurant_id = ?", restaurant.ID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)

	var orders []models.Order
	if err := query.Preload("Customer").Preload("Items.Toppings").
		Order("created_at DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Restaurant orders", gin.H{
		"orders":       orders,
		"total":        total,
		"current_page": page,
		"total_pages":  totalPages(total, limit),
	})
}

// UpdateOrderStatus is the restaurant-side transition endpoint; the same
// role-gated table backs it as the generic order route.
func (rc *RestaurantController) UpdateOrderStatus(c *gin.Context) {
	restaurant, ok := rc.ownedRestaurant(c)
	if !ok {
		return
	}

	var req struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var order models.Order
	if err := rc.DB.Where("id = ? AND restaurant_id = ?", c.Param("orderId"), restaurant.ID).
		First(&order).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("order not found"))
		return
	}

	role := models.UserRole(middlewares.GetRole(c))
	if err := statemachine.CanSet(role, &order, req.Status); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	statemachine.Apply(&order, req.Status)
	record := order.StatusHistory[len(order.StatusHistory)-1]
	err := rc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).
			Update("status", order.Status).Error; err != nil {
			return err
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	rc.Hub.Emit(realtime.OrderRoom(order.ID), realtime.EventOrderStatusUpdated, gin.H{
		"order_id": order.ID,
		"status":   order.Status,
	})

	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}

// GetRestaurantAnalytics aggregates completed-order figures for the owner
// dashboard.
func (rc *RestaurantController) GetRestaurantAnalytics(c *gin.Context) {
	restaurant, ok := rc.ownedRestaurant(c)
	if !ok {
		return
	}

	var totalOrders int64
	rc.DB.Model(&models.Order{}).Where("restaurant_id = ?", restaurant.ID).Count(&totalOrders)

	var revenue float64
	rc.DB.Model(&models.Order{}).
		Where("restaurant_id = ? AND status = ?", restaurant.ID, models.StatusDelivered).
		Select("COALESCE(SUM(total_amount), 0)").Scan(&revenue)

	var delivered int64
	rc.DB.Model(&models.Order{}).
		Where("restaurant_id = ? AND status = ?", restaurant.ID, models.StatusDelivered).
		Count(&delivered)

	avgOrderValue := 0.0
	if delivered > 0 {
		avgOrderValue = revenue / float64(delivered)
	}

	type statusCount struct {
		Status models.OrderStatus `json:"status"`
		Count  int64              `json:"count"`
	}
	var byStatus []statusCount
	rc.DB.Model(&models.Order{}).
		Select("status, COUNT(*) as count").
		Where("restaurant_id = ?", restaurant.ID).
		Group("status").
		Scan(&byStatus)

	utils.RespondJSON(c, http.StatusOK, "Restaurant analytics", gin.H{
		"total_orders":     totalOrders,
		"delivered_orders": delivered,
		"total_revenue":    revenue,
		"average_order":    avgOrderValue,
		"orders_by_status": byStatus,
		"rating":           restaurant.Rating,
		"total_reviews":    restaurant.TotalReviews,
	})
}
