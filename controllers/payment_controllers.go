package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/seblak-delivery/api/middlewares"
	"github.com/seblak-delivery/api/models"
	"github.com/seblak-delivery/api/realtime"
	"github.com/seblak-delivery/api/services"
	"github.com/seblak-delivery/api/statemachine"
	"github.com/seblak-delivery/api/utils"
)

type PaymentController struct {
	DB  *gorm.DB
	Hub realtime.Publisher
}

func NewPaymentController(db *gorm.DB, hub realtime.Publisher) *PaymentController {
	return &PaymentController{DB: db, Hub: hub}
}

// ProcessPayment runs the simulated gateway for a pending order the caller
// owns. A successful payment also confirms the order.
func (pc *PaymentController) ProcessPayment(c *gin.Context) {
	var req struct {
		Method  models.PaymentMethod    `json:"payment_method" binding:"required"`
		Details services.PaymentDetails `json:"payment_details"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var order models.Order
	if err := pc.DB.First(&order, c.Param("id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("order not found"))
		return
	}
	if order.CustomerID != middlewares.GetUserID(c) {
		utils.RespondError(c, http.StatusForbidden, errors.New("access denied"))
		return
	}
	if order.PaymentStatus != models.PaymentPending {
		utils.RespondError(c, http.StatusBadRequest, errors.New("payment already processed"))
		return
	}

	result, err := services.ProcessPayment(&order, req.Method, req.Details)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if !result.Success {
		pc.DB.Model(&models.Order{}).Where("id = ?", order.ID).
			Update("payment_status", models.PaymentFailed)
		utils.RespondError(c, http.StatusBadRequest, errors.New("payment failed"))
		return
	}

	statemachine.Apply(&order, models.StatusConfirmed)
	record := order.StatusHistory[len(order.StatusHistory)-1]
	err = pc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
			"payment_status": models.PaymentCompleted,
			"payment_method": result.Method,
			"status":         models.StatusConfirmed,
		}).Error; err != nil {
			return err
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	order.PaymentStatus = models.PaymentCompleted
	order.PaymentMethod = models.PaymentMethod(result.Method)

	utils.InfoLogger.Printf("Payment completed for order #%s via %s (txn=%s)",
		order.OrderNumber, result.Method, result.TransactionID)

	pc.Hub.Emit(realtime.OrderRoom(order.ID), realtime.EventPaymentCompleted, gin.H{
		"order_id":       order.ID,
		"transaction_id": result.TransactionID,
		"method":         result.Method,
		"timestamp":      time.Now(),
	})
	pc.Hub.Emit(realtime.RestaurantRoom(order.RestaurantID), realtime.EventOrderConfirmed, gin.H{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
	})

	utils.RespondJSON(c, http.StatusOK, "Payment processed", gin.H{
		"order":   order,
		"payment": result,
	})
}

// VerifyPayment reports the payment state of one of the caller's orders.
func (pc *PaymentController) VerifyPayment(c *gin.Context) {
	var order models.Order
	if err := pc.DB.First(&order, c.Param("id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("order not found"))
		return
	}
	role := models.UserRole(middlewares.GetRole(c))
	if role != models.RoleAdmin && order.CustomerID != middlewares.GetUserID(c) {
		utils.RespondError(c, http.StatusForbidden, errors.New("access denied"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Payment status", gin.H{
		"order_id":       order.ID,
		"order_number":   order.OrderNumber,
		"payment_status": order.PaymentStatus,
		"payment_method": order.PaymentMethod,
		"total_amount":   order.TotalAmount,
	})
}

func (pc *PaymentController) GetPaymentMethods(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Payment methods", services.ListPaymentMethods())
}
