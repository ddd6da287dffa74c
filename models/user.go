package models

import "time"

type UserRole string

const (
	RoleCustomer        UserRole = "customer"
	RoleRestaurantOwner UserRole = "restaurant_owner"
	RoleDeliveryPartner UserRole = "delivery_partner"
	// RoleAdmin is never assigned through registration; it only exists on
	// accounts provisioned directly and bypasses ownership checks.
	RoleAdmin UserRole = "admin"
)

type VehicleType string

const (
	VehicleMotorcycle VehicleType = "motorcycle"
	VehicleBicycle    VehicleType = "bicycle"
	VehicleCar        VehicleType = "car"
)

// Address is embedded in users, restaurants and orders.
type Address struct {
	Street     string  `json:"street"`
	City       string  `json:"city"`
	Province   string  `json:"province"`
	PostalCode string  `json:"postal_code"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

// DeliveryPartnerInfo holds the courier sub-profile. CurrentLatitude and
// CurrentLongitude are refreshed by the partner app while IsActive is set.
type DeliveryPartnerInfo struct {
	VehicleType      VehicleType `gorm:"type:varchar(20)" json:"vehicle_type"`
	VehicleNumber    string      `gorm:"type:varchar(20)" json:"vehicle_number"`
	LicenseNumber    string      `gorm:"type:varchar(50)" json:"license_number"`
	IsActive         bool        `gorm:"default:false" json:"is_active"`
	CurrentLatitude  float64     `json:"current_latitude"`
	CurrentLongitude float64     `json:"current_longitude"`
}

type RestaurantOwnerInfo struct {
	BusinessLicense string `gorm:"type:varchar(100)" json:"business_license"`
	TaxNumber       string `gorm:"type:varchar(50)" json:"tax_number"`
}

type User struct {
	ID                  uint                `gorm:"primaryKey" json:"id"`
	Email               string              `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone               string              `gorm:"type:varchar(20);uniqueIndex;not null" json:"phone"`
	Password            string              `gorm:"type:varchar(255);not null" json:"-"`
	FullName            string              `gorm:"type:varchar(255);not null" json:"full_name"`
	Role                UserRole            `gorm:"type:varchar(20);not null" json:"role"`
	IsVerified          bool                `gorm:"default:false" json:"is_verified"`
	ProfileImage        string              `gorm:"type:varchar(255)" json:"profile_image,omitempty"`
	Address             Address             `gorm:"embedded;embeddedPrefix:address_" json:"address"`
	DeliveryPartnerInfo DeliveryPartnerInfo `gorm:"embedded;embeddedPrefix:dp_" json:"delivery_partner_info"`
	RestaurantOwnerInfo RestaurantOwnerInfo `gorm:"embedded;embeddedPrefix:ro_" json:"restaurant_owner_info"`
	FCMToken            string              `gorm:"type:varchar(255)" json:"fcm_token,omitempty"`
	LastLogin           *time.Time          `json:"last_login,omitempty"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}
