package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-pdf/fpdf"
	"gorm.io/gorm"

	"github.com/seblak-delivery/api/models"
	"github.com/seblak-delivery/api/utils"
)

type AdminController struct {
	DB *gorm.DB
}

func NewAdminController(db *gorm.DB) *AdminController {
	return &AdminController{DB: db}
}

// GetDashboardStats returns the platform-wide counters shown on the admin
// landing page.
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	var totalUsers, totalRestaurants, totalOrders, activePartners int64
	ac.DB.Model(&models.User{}).Count(&totalUsers)
	ac.DB.Model(&models.Restaurant{}).Where("is_active = ?", true).Count(&totalRestaurants)
	ac.DB.Model(&models.Order{}).Count(&totalOrders)
	ac.DB.Model(&models.User{}).
		Where("role = ? AND dp_is_active = ?", models.RoleDeliveryPartner, true).
		Count(&activePartners)

	var revenue float64
	ac.DB.Model(&models.Order{}).
		Where("status = ?", models.StatusDelivered).
		Select("COALESCE(SUM(total_amount), 0)").Scan(&revenue)

	today := time.Now().Truncate(24 * time.Hour)
	var ordersToday int64
	ac.DB.Model(&models.Order{}).Where("created_at >= ?", today).Count(&ordersToday)

	utils.RespondJSON(c, http.StatusOK, "Dashboard stats", gin.H{
		"total_users":       totalUsers,
		"total_restaurants": totalRestaurants,
		"total_orders":      totalOrders,
		"orders_today":      ordersToday,
		"active_partners":   activePartners,
		"total_revenue":     revenue,
	})
}

func (ac *AdminController) ListOrders(c *gin.Context) {
	page, limit := pagination(c)

	query := ac.DB.Model(&models.Order{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if restaurantID := c.Query("restaurant_id"); restaurantID != "" {
		query = query.Where("restaurant_id = ?", restaurantID)
	}

	var total int64
	query.Count(&total)

	var orders []models.Order
	if err := query.Preload("Customer").Preload("Restaurant").Preload("DeliveryPartner").
		Order("created_at DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Orders", gin.H{
		"orders":       orders,
		"total":        total,
		"current_page": page,
		"total_pages":  totalPages(total, limit),
	})
}

func (ac *AdminController) ListUsers(c *gin.Context) {
	page, limit := pagination(c)

	query := ac.DB.Model(&models.User{})
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	var total int64
	query.Count(&total)

	var users []models.User
	if err := query.Order("created_at DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&users).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Users", gin.H{
		"users":        users,
		"total":        total,
		"current_page": page,
		"total_pages":  totalPages(total, limit),
	})
}

func (ac *AdminController) ListRestaurants(c *gin.Context) {
	page, limit := pagination(c)

	var total int64
	ac.DB.Model(&models.Restaurant{}).Count(&total)

	var restaurants []models.Restaurant
	if err := ac.DB.Preload("Owner").
		Order("created_at DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&restaurants).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Restaurants", gin.H{
		"restaurants":  restaurants,
		"total":        total,
		"current_page": page,
		"total_pages":  totalPages(total, limit),
	})
}

// ExportSalesReport streams a PDF summary of delivered orders in the
// requested period (default: the last 30 days).
func (ac *AdminController) ExportSalesReport(c *gin.Context) {
	end := time.Now()
	start := end.AddDate(0, 0, -30)
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			start = t
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			end = t.AddDate(0, 0, 1)
		}
	}

	var orders []models.Order
	if err := ac.DB.Preload("Restaurant").
		Where("status = ? AND created_at >= ? AND created_at < ?",
			models.StatusDelivered, start, end).
		Order("created_at ASC").
		Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Seblak Delivery - Sales Report")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s to %s",
		start.Format("2 Jan 2006"), end.AddDate(0, 0, -1).Format("2 Jan 2006")))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(35, 8, "Order", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 8, "Date", "1", 0, "L", true, 0, "")
	pdf.CellFormat(65, 8, "Restaurant", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 8, "Total", "1", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	var grandTotal float64
	for _, o := range orders {
		restaurantName := ""
		if o.Restaurant != nil {
			restaurantName = o.Restaurant.Name
		}
		pdf.CellFormat(35, 7, o.OrderNumber, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, o.CreatedAt.Format("02-01-2006"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(65, 7, restaurantName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, utils.FormatCurrencyIDR(o.TotalAmount), "1", 1, "R", false, 0, "")
		grandTotal += o.TotalAmount
	}

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(130, 8, fmt.Sprintf("Total (%d orders)", len(orders)), "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, utils.FormatCurrencyIDR(grandTotal), "1", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	filename := fmt.Sprintf("sales-report-%s.pdf", end.Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
