package Controllers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/seblak-delivery/api/controllers"
	"github.com/seblak-delivery/api/models"
	"github.com/seblak-delivery/api/realtime"
	"github.com/seblak-delivery/api/utils"
	"gorm.io/gorm"
)

func setupDeliveryRouter(db *gorm.DB, partnerID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	orderCtrl := controllers.NewOrderController(db, realtime.NewHub())
	router.Use(asUser(partnerID, models.RoleDeliveryPartner))
	router.GET("/delivery/orders/available", orderCtrl.GetAvailableOrders)
	router.POST("/delivery/orders/:id/accept", orderCtrl.AcceptOrder)
	return router
}

func seedReadyOrder(db *gorm.DB) models.Order {
	seedMarketplace(db)
	order := models.Order{
		CustomerID: 1, RestaurantID: 1,
		Status:   models.StatusReadyForPickup,
		Subtotal: 26000, DeliveryFee: 5000, Tax: 2600, TotalAmount: 33600,
		CustomerName: "Pelanggan Satu", CustomerPhone: "081211112222",
		PaymentMethod: models.PaymentQRIS, PaymentStatus: models.PaymentCompleted,
	}
	db.Create(&order)
	return order
}

func seedPartner(db *gorm.DB, email, phone string, active bool) models.User {
	partner := models.User{
		Email: email, Phone: phone,
		Password: "hashed", FullName: "Kurir", Role: models.RoleDeliveryPartner,
		DeliveryPartnerInfo: models.DeliveryPartnerInfo{
			VehicleType: models.VehicleMotorcycle, IsActive: active,
		},
	}
	db.Create(&partner)
	return partner
}

func TestGetAvailableOrdersByDistance(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders("deliveryavailable")
	seedReadyOrder(db)
	partner := seedPartner(db, "kurir1@example.com", "081277770001", true)
	router := setupDeliveryRouter(db, partner.ID)

	// Missing coordinates.
	req, _ := http.NewRequest("GET", "/delivery/orders/available", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Near the restaurant.
	req, _ = http.NewRequest("GET", "/delivery/orders/available?latitude=-6.914&longitude=107.610", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	orders := resp["data"].(map[string]interface{})["orders"].([]interface{})
	assert.Len(t, orders, 1)

	// Jakarta is far outside the 10 km default radius.
	req, _ = http.NewRequest("GET", "/delivery/orders/available?latitude=-6.175&longitude=106.827", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	orders = resp["data"].(map[string]interface{})["orders"].([]interface{})
	assert.Len(t, orders, 0)
}

func TestAcceptOrderClaimsAtomically(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders("deliveryaccept")
	order := seedReadyOrder(db)
	first := seedPartner(db, "kurir2@example.com", "081277770002", true)
	second := seedPartner(db, "kurir3@example.com", "081277770003", true)

	firstRouter := setupDeliveryRouter(db, first.ID)
	w := postJSON(t, firstRouter, "/delivery/orders/1/accept", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var claimed models.Order
	db.First(&claimed, order.ID)
	assert.Equal(t, models.StatusAssigned, claimed.Status)
	assert.Equal(t, first.ID, *claimed.DeliveryPartnerID)

	// The second partner loses the race.
	secondRouter := setupDeliveryRouter(db, second.ID)
	w = postJSON(t, secondRouter, "/delivery/orders/1/accept", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	db.First(&claimed, order.ID)
	assert.Equal(t, first.ID, *claimed.DeliveryPartnerID)
}

func TestAcceptOrderRequiresActivePartner(t *testing.T) {
	utils.InitLogger()
	db := setupTestDBForOrders("deliveryinactive")
	seedReadyOrder(db)
	partner := seedPartner(db, "kurir4@example.com", "081277770004", false)

	router := setupDeliveryRouter(db, partner.ID)
	w := postJSON(t, router, "/delivery/orders/1/accept", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
