package Controllers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/seblak-delivery/api/controllers"
	"github.com/seblak-delivery/api/models"
	"github.com/seblak-delivery/api/realtime"
	"github.com/seblak-delivery/api/utils"
)

func setupRestaurantRouter(db *gorm.DB, userID uint, role models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	restCtrl := controllers.NewRestaurantController(db, realtime.NewHub())
	router.Use(asUser(userID, role))
	router.GET("/restaurants", restCtrl.GetRestaurants)
	router.GET("/restaurants/:id", restCtrl.GetRestaurantByID)
	router.POST("/restaurants", restCtrl.CreateRestaurant)
	router.PATCH("/restaurants/:id", restCtrl.UpdateRestaurant)
	router.POST("/restaurants/:id/menu", restCtrl.AddMenuItem)
	router.DELETE("/restaurants/:id/menu/:itemId", restCtrl.DeleteMenuItem)
	router.GET("/restaurants/:id/analytics", restCtrl.GetRestaurantAnalytics)
	return router
}

func TestListRestaurantsByDistance(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders("restaurantlist")
	seedMarketplace(db)

	router := setupRestaurantRouter(db, 1, models.RoleCustomer)

	// Without coordinates every active restaurant shows up.
	req, _ := http.NewRequest("GET", "/restaurants", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	restaurants := resp["data"].(map[string]interface{})["restaurants"].([]interface{})
	assert.Len(t, restaurants, 1)

	// Within the 5 km delivery radius.
	req, _ = http.NewRequest("GET", "/restaurants?latitude=-6.917&longitude=107.619", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	restaurants = resp["data"].(map[string]interface{})["restaurants"].([]interface{})
	assert.Len(t, restaurants, 1)

	// Jakarta is far outside it.
	req, _ = http.NewRequest("GET", "/restaurants?latitude=-6.175&longitude=106.827", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	restaurants = resp["data"].(map[string]interface{})["restaurants"].([]interface{})
	assert.Len(t, restaurants, 0)
}

func TestUpdateRestaurantOwnershipScoped(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders("restaurantupdate")
	seedMarketplace(db)

	// The owner (id 2) can update.
	ownerRouter := setupRestaurantRouter(db, 2, models.RoleRestaurantOwner)
	w := patchJSON(t, ownerRouter, "/restaurants/1", map[string]interface{}{
		"delivery_fee": 7000.0,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var restaurant models.Restaurant
	db.First(&restaurant, 1)
	assert.Equal(t, 7000.0, restaurant.DeliveryFee)

	// Someone else's update reads as not found.
	otherRouter := setupRestaurantRouter(db, 99, models.RoleRestaurantOwner)
	w = patchJSON(t, otherRouter, "/restaurants/1", map[string]interface{}{
		"delivery_fee": 1.0,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Fields outside the allow-list are rejected, not written.
	w = patchJSON(t, ownerRouter, "/restaurants/1", map[string]interface{}{
		"owner_id": 99,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMenuItemLifecycle(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders("restaurantmenu")
	seedMarketplace(db)

	ownerRouter := setupRestaurantRouter(db, 2, models.RoleRestaurantOwner)
	w := postJSON(t, ownerRouter, "/restaurants/1/menu", map[string]interface{}{
		"name":       "Seblak Ceker Pedas",
		"base_price": 18000,
		"category":   "seblak_ceker",
		"spice_levels": []map[string]interface{}{
			{"level": "spicy", "price_adjustment": 2000},
		},
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	itemID := int(data["id"].(float64))
	assert.Equal(t, true, data["is_available"])
	assert.Equal(t, 15.0, data["preparation_time"])

	// A non-owner cannot touch the menu.
	otherRouter := setupRestaurantRouter(db, 99, models.RoleRestaurantOwner)
	req, _ := http.NewRequest("DELETE", "/restaurants/1/menu/1", nil)
	w2 := httptest.NewRecorder()
	otherRouter.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusForbidden, w2.Code)

	req, _ = http.NewRequest("DELETE", "/restaurants/1/menu/"+strconv.Itoa(itemID), nil)
	w2 = httptest.NewRecorder()
	ownerRouter.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusOK, w2.Code)

	var count int64
	db.Model(&models.MenuItem{}).Where("id = ?", itemID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestRestaurantAnalytics(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders("restaurantanalytics")
	seedMarketplace(db)

	orders := []models.Order{
		{CustomerID: 1, RestaurantID: 1, Status: models.StatusDelivered,
			TotalAmount: 30000, CustomerName: "A", CustomerPhone: "1",
			PaymentMethod: models.PaymentQRIS, Subtotal: 25000, DeliveryFee: 5000},
		{CustomerID: 1, RestaurantID: 1, Status: models.StatusDelivered,
			TotalAmount: 50000, CustomerName: "A", CustomerPhone: "1",
			PaymentMethod: models.PaymentQRIS, Subtotal: 45000, DeliveryFee: 5000},
		{CustomerID: 1, RestaurantID: 1, Status: models.StatusCancelled,
			TotalAmount: 20000, CustomerName: "A", CustomerPhone: "1",
			PaymentMethod: models.PaymentCash, Subtotal: 15000, DeliveryFee: 5000},
	}
	for i := range orders {
		db.Create(&orders[i])
	}

	ownerRouter := setupRestaurantRouter(db, 2, models.RoleRestaurantOwner)
	req, _ := http.NewRequest("GET", "/restaurants/1/analytics", nil)
	w := httptest.NewRecorder()
	ownerRouter.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, 3.0, data["total_orders"])
	assert.Equal(t, 2.0, data["delivered_orders"])
	assert.Equal(t, 80000.0, data["total_revenue"])
	assert.Equal(t, 40000.0, data["average_order"])
}
