package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/seblak-delivery/api/middlewares"
	"github.com/seblak-delivery/api/models"
	"github.com/seblak-delivery/api/services"
	"github.com/seblak-delivery/api/utils"
)

type AuthController struct {
	DB  *gorm.DB
	OTP *services.OTPService
}

func NewAuthController(db *gorm.DB, otp *services.OTPService) *AuthController {
	return &AuthController{DB: db, OTP: otp}
}

func validRegistrationRole(role models.UserRole) bool {
	switch role {
	case models.RoleCustomer, models.RoleRestaurantOwner, models.RoleDeliveryPartner:
		return true
	}
	return false
}

// Register creates a new account and returns a signed token.
func (ac *AuthController) Register(c *gin.Context) {
	var req struct {
		Email    string          `json:"email" binding:"required,email"`
		Phone    string          `json:"phone" binding:"required"`
		Password string          `json:"password" binding:"required,min=6"`
		FullName string          `json:"full_name" binding:"required"`
		Role     models.UserRole `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if !validRegistrationRole(req.Role) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid role"))
		return
	}

	var count int64
	ac.DB.Model(&models.User{}).Where("email = ? OR phone = ?", req.Email, req.Phone).Count(&count)
	if count > 0 {
		utils.RespondError(c, http.StatusBadRequest,
			errors.New("user with this email or phone number already exists"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	user := models.User{
		Email:    req.Email,
		Phone:    req.Phone,
		Password: string(hashed),
		FullName: req.FullName,
		Role:     req.Role,
	}
	if err := ac.DB.Create(&user).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("New user registered: %s (role=%s)", user.Email, user.Role)

	utils.RespondJSON(c, http.StatusCreated, "User registered", gin.H{
		"token": token,
		"user":  user,
	})
}

// Login verifies credentials and returns a signed token.
func (ac *AuthController) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := ac.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}

	now := time.Now()
	user.LastLogin = &now
	ac.DB.Model(&user).Update("last_login", now)

	token, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token": token,
		"user":  user,
	})
}

func (ac *AuthController) GetProfile(c *gin.Context) {
	var user models.User
	if err := ac.DB.First(&user, middlewares.GetUserID(c)).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("user not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Profile retrieved", user)
}

// UpdateProfile updates the mutable profile fields. Delivery partner info is
// only applied for delivery partner accounts.
func (ac *AuthController) UpdateProfile(c *gin.Context) {
	var req struct {
		FullName            string                      `json:"full_name"`
		Phone               string                      `json:"phone"`
		Address             *models.Address             `json:"address"`
		DeliveryPartnerInfo *models.DeliveryPartnerInfo `json:"delivery_partner_info"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := ac.DB.First(&user, middlewares.GetUserID(c)).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("user not found"))
		return
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.Address != nil {
		user.Address = *req.Address
	}
	if req.DeliveryPartnerInfo != nil && user.Role == models.RoleDeliveryPartner {
		user.DeliveryPartnerInfo = *req.DeliveryPartnerInfo
	}

	if err := ac.DB.Save(&user).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Profile updated", user)
}

func (ac *AuthController) UpdateFCMToken(c *gin.Context) {
	var req struct {
		FCMToken string `json:"fcm_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := ac.DB.Model(&models.User{}).
		Where("id = ?", middlewares.GetUserID(c)).
		Update("fcm_token", req.FCMToken).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "FCM token updated", nil)
}

// SendOTP generates a phone verification code. The code is logged instead of
// sent; SMS delivery is not wired up.
func (ac *AuthController) SendOTP(c *gin.Context) {
	var req struct {
		Phone string `json:"phone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if ac.OTP == nil {
		utils.RespondError(c, http.StatusServiceUnavailable, errors.New("otp service unavailable"))
		return
	}

	otp, err := ac.OTP.Generate(c.Request.Context(), req.Phone)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("OTP for %s: %s", req.Phone, otp)
	utils.RespondJSON(c, http.StatusOK, "OTP sent", nil)
}

// VerifyOTP checks the submitted code and marks the user verified.
func (ac *AuthController) VerifyOTP(c *gin.Context) {
	var req struct {
		Phone string `json:"phone" binding:"required"`
		OTP   string `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if ac.OTP == nil {
		utils.RespondError(c, http.StatusServiceUnavailable, errors.New("otp service unavailable"))
		return
	}

	if err := ac.OTP.Verify(c.Request.Context(), req.Phone, req.OTP); err != nil {
		if errors.Is(err, services.ErrOTPMismatch) {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	ac.DB.Model(&models.User{}).Where("phone = ?", req.Phone).Update("is_verified", true)

	utils.RespondJSON(c, http.StatusOK, "Phone number verified", nil)
}
