package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/seblak-delivery/api/controllers"
	"github.com/seblak-delivery/api/models"
	"github.com/seblak-delivery/api/realtime"
	"github.com/seblak-delivery/api/utils"
)

func patchJSON(t *testing.T, router *gin.Engine, url string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	assert.NoError(t, err)
	req, err := http.NewRequest("PATCH", url, bytes.NewBuffer(body))
	assert.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// asUser plants the auth context the way AuthMiddleware would.
func asUser(id uint, role models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", id)
		c.Set("role", string(role))
		c.Next()
	}
}

func setupTestDBForOrders(name string) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	err = db.AutoMigrate(
		&models.User{}, &models.Restaurant{}, &models.MenuItem{},
		&models.SpiceLevelOption{}, &models.Topping{},
		&models.Order{}, &models.OrderItem{}, &models.OrderItemTopping{},
		&models.OrderStatusRecord{},
	)
	if err != nil {
		panic(err)
	}
	return db
}

// seedMarketplace creates a customer, an owner with one restaurant and a
// priced menu item. IDs: customer=1, owner=2, restaurant=1, menu item=1.
func seedMarketplace(db *gorm.DB) {
	customer := models.User{
		Email: "pelanggan@example.com", Phone: "081211112222",
		Password: "hashed", FullName: "Pelanggan Satu", Role: models.RoleCustomer,
	}
	db.Create(&customer)
	owner := models.User{
		Email: "owner@example.com", Phone: "081233334444",
		Password: "hashed", FullName: "Pemilik Warung", Role: models.RoleRestaurantOwner,
	}
	db.Create(&owner)

	restaurant := models.Restaurant{
		OwnerID: owner.ID, Name: "Seblak Teh Euis", Phone: "0227654321",
		IsActive: true, MinimumOrder: 15000, DeliveryFee: 5000,
		DeliveryRadius: 5, AveragePreparationTime: 20,
		Address: models.Address{Latitude: -6.9147, Longitude: 107.6098},
		Menu: []models.MenuItem{
			{
				Name: "Seblak Kerupuk", BasePrice: 12000, IsAvailable: true,
				Category: models.CategorySeblakKerupuk,
				SpiceLevels: []models.SpiceLevelOption{
					{Level: models.SpiceMild, PriceAdjustment: 0},
					{Level: models.SpiceMedium, PriceAdjustment: 1000},
				},
				Toppings: []models.Topping{
					{Name: "Ceker", Price: 5000, Category: models.ToppingProtein, IsAvailable: true},
				},
			},
		},
	}
	db.Create(&restaurant)
}

func setupOrderRouter(db *gorm.DB, userID uint, role models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	orderCtrl := controllers.NewOrderController(db, realtime.NewHub())
	router.Use(asUser(userID, role))
	router.POST("/orders", orderCtrl.CreateOrder)
	router.GET("/orders", orderCtrl.GetCustomerOrders)
	router.GET("/orders/:id", orderCtrl.GetOrderByID)
	router.PATCH("/orders/:id/status", orderCtrl.UpdateOrderStatus)
	router.POST("/orders/:id/cancel", orderCtrl.CancelOrder)
	router.POST("/orders/:id/rating", orderCtrl.RateOrder)
	return router
}

func orderPayload(quantity int) map[string]interface{} {
	return map[string]interface{}{
		"restaurant_id": 1,
		"items": []map[string]interface{}{
			{"menu_item_id": 1, "quantity": quantity, "spice_level": "medium"},
		},
		"delivery_address": map[string]interface{}{
			"street": "Jl. Braga No. 1", "city": "Bandung",
			"latitude": -6.917, "longitude": 107.619,
		},
		"payment_method": "qris",
	}
}

func TestCreateOrderPricing(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders("ordercreate")
	seedMarketplace(db)
	router := setupOrderRouter(db, 1, models.RoleCustomer)

	w := postJSON(t, router, "/orders", orderPayload(2))
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "pending", data["status"])
	assert.Equal(t, 26000.0, data["subtotal"])
	assert.Equal(t, 2600.0, data["tax"])
	assert.Equal(t, 33600.0, data["total_amount"])
	assert.NotEmpty(t, data["order_number"])
	assert.NotEmpty(t, data["estimated_delivery_time"])

	var history []models.OrderStatusRecord
	db.Where("order_id = ?", uint(data["id"].(float64))).Find(&history)
	assert.Len(t, history, 1)
	assert.Equal(t, models.StatusPending, history[0].Status)
}

func TestCreateOrderBelowMinimum(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders("orderminimum")
	seedMarketplace(db)
	router := setupOrderRouter(db, 1, models.RoleCustomer)

	w := postJSON(t, router, "/orders", orderPayload(1))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["message"], "Rp 15.000")

	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestOwnerStatusTransitions(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders("ordertransitions")
	seedMarketplace(db)

	customerRouter := setupOrderRouter(db, 1, models.RoleCustomer)
	w := postJSON(t, customerRouter, "/orders", orderPayload(2))
	assert.Equal(t, http.StatusCreated, w.Code)

	ownerRouter := setupOrderRouter(db, 2, models.RoleRestaurantOwner)
	w = patchJSON(t, ownerRouter, "/orders/1/status", map[string]interface{}{"status": "confirmed"})
	assert.Equal(t, http.StatusOK, w.Code)

	// Owners cannot set delivery-side statuses.
	w = patchJSON(t, ownerRouter, "/orders/1/status", map[string]interface{}{"status": "delivered"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var order models.Order
	db.First(&order, 1)
	assert.Equal(t, models.StatusConfirmed, order.Status)
}

func TestCancelOrderRequiresReasonAndWindow(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders("ordercancel")
	seedMarketplace(db)
	router := setupOrderRouter(db, 1, models.RoleCustomer)

	w := postJSON(t, router, "/orders", orderPayload(2))
	assert.Equal(t, http.StatusCreated, w.Code)

	// Too-short reason fails the binding.
	w = postJSON(t, router, "/orders/1/cancel", map[string]interface{}{"reason": "no"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(t, router, "/orders/1/cancel", map[string]interface{}{"reason": "ordered the wrong item"})
	assert.Equal(t, http.StatusOK, w.Code)

	var order models.Order
	db.First(&order, 1)
	assert.Equal(t, models.StatusCancelled, order.Status)
	assert.Equal(t, "ordered the wrong item", order.CancellationReason)

	// Cancelling again is out of the window.
	w = postJSON(t, router, "/orders/1/cancel", map[string]interface{}{"reason": "changed my mind again"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRateOrderOnlyDeliveredAndOnce(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders("orderrating")
	seedMarketplace(db)
	router := setupOrderRouter(db, 1, models.RoleCustomer)

	w := postJSON(t, router, "/orders", orderPayload(2))
	assert.Equal(t, http.StatusCreated, w.Code)

	// Not delivered yet.
	w = postJSON(t, router, "/orders/1/rating", map[string]interface{}{"overall": 5})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	db.Model(&models.Order{}).Where("id = ?", 1).Update("status", models.StatusDelivered)

	w = postJSON(t, router, "/orders/1/rating", map[string]interface{}{
		"overall": 4, "comment": "Pedasnya pas",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var order models.Order
	db.First(&order, 1)
	assert.True(t, order.IsRated())
	// Unset sub-scores default to the overall score.
	assert.Equal(t, 4, *order.Rating.Food)
	assert.Equal(t, 4, *order.Rating.Delivery)

	var restaurant models.Restaurant
	db.First(&restaurant, 1)
	assert.Equal(t, 4.0, restaurant.Rating)
	assert.Equal(t, 1, restaurant.TotalReviews)

	// Second rating is rejected.
	w = postJSON(t, router, "/orders/1/rating", map[string]interface{}{"overall": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOrderAccessControl(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders("orderaccess")
	seedMarketplace(db)

	stranger := models.User{
		Email: "lain@example.com", Phone: "081255556666",
		Password: "hashed", FullName: "Orang Lain", Role: models.RoleCustomer,
	}
	db.Create(&stranger)

	customerRouter := setupOrderRouter(db, 1, models.RoleCustomer)
	w := postJSON(t, customerRouter, "/orders", orderPayload(2))
	assert.Equal(t, http.StatusCreated, w.Code)

	req, _ := http.NewRequest("GET", "/orders/1", nil)
	w = httptest.NewRecorder()
	customerRouter.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	strangerRouter := setupOrderRouter(db, stranger.ID, models.RoleCustomer)
	req, _ = http.NewRequest("GET", "/orders/1", nil)
	w = httptest.NewRecorder()
	strangerRouter.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
