package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"

	"github.com/seblak-delivery/api/middlewares"
	"github.com/seblak-delivery/api/models"
	"github.com/seblak-delivery/api/realtime"
	"github.com/seblak-delivery/api/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSController struct {
	DB  *gorm.DB
	Hub *realtime.Hub
}

func NewWSController(db *gorm.DB, hub *realtime.Hub) *WSController {
	return &WSController{DB: db, Hub: hub}
}

// SubscribeOrder streams events for one order. Only the customer, the
// assigned partner, the restaurant owner or an admin may subscribe.
func (wc *WSController) SubscribeOrder(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid order id"))
		return
	}

	var order models.Order
	if err := wc.DB.First(&order, orderID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("order not found"))
		return
	}

	userID := middlewares.GetUserID(c)
	role := models.UserRole(middlewares.GetRole(c))
	if !wc.canWatchOrder(&order, userID, role) {
		utils.RespondError(c, http.StatusForbidden, errors.New("access denied"))
		return
	}

	wc.serve(c, realtime.OrderRoom(order.ID))
}

func (wc *WSController) canWatchOrder(order *models.Order, userID uint, role models.UserRole) bool {
	if role == models.RoleAdmin || order.CustomerID == userID {
		return true
	}
	if order.DeliveryPartnerID != nil && *order.DeliveryPartnerID == userID {
		return true
	}
	var count int64
	wc.DB.Model(&models.Restaurant{}).
		Where("id = ? AND owner_id = ?", order.RestaurantID, userID).
		Count(&count)
	return count > 0
}

// SubscribeRestaurant streams incoming-order events for a restaurant the
// caller owns.
func (wc *WSController) SubscribeRestaurant(c *gin.Context) {
	restaurantID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid restaurant id"))
		return
	}

	role := models.UserRole(middlewares.GetRole(c))
	if role != models.RoleAdmin {
		var count int64
		wc.DB.Model(&models.Restaurant{}).
			Where("id = ? AND owner_id = ?", restaurantID, middlewares.GetUserID(c)).
			Count(&count)
		if count == 0 {
			utils.RespondError(c, http.StatusForbidden, errors.New("access denied"))
			return
		}
	}

	wc.serve(c, realtime.RestaurantRoom(uint(restaurantID)))
}

// SubscribeDelivery streams assignment events for a delivery partner. A
// partner may only watch its own feed.
func (wc *WSController) SubscribeDelivery(c *gin.Context) {
	partnerID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid partner id"))
		return
	}

	role := models.UserRole(middlewares.GetRole(c))
	if role != models.RoleAdmin && uint(partnerID) != middlewares.GetUserID(c) {
		utils.RespondError(c, http.StatusForbidden, errors.New("access denied"))
		return
	}

	wc.serve(c, realtime.DeliveryRoom(uint(partnerID)))
}

// serve upgrades the connection, parks it in the room and drains incoming
// frames until the peer goes away. Clients only listen on these sockets.
func (wc *WSController) serve(c *gin.Context, room string) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("websocket upgrade: %v", err)
		return
	}

	wc.Hub.Join(room, conn)
	defer wc.Hub.Leave(room, conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
