package models

import "time"

type SpiceLevel string

const (
	SpiceMild       SpiceLevel = "mild"
	SpiceMedium     SpiceLevel = "medium"
	SpiceSpicy      SpiceLevel = "spicy"
	SpiceExtraSpicy SpiceLevel = "extra_spicy"
)

type MenuCategory string

const (
	CategorySeblakKerupuk MenuCategory = "seblak_kerupuk"
	CategorySeblakMie     MenuCategory = "seblak_mie"
	CategorySeblakCeker   MenuCategory = "seblak_ceker"
	CategorySeblakSosis   MenuCategory = "seblak_sosis"
	CategorySeblakSeafood MenuCategory = "seblak_seafood"
)

type ToppingCategory string

const (
	ToppingProtein   ToppingCategory = "protein"
	ToppingVegetable ToppingCategory = "vegetable"
	ToppingNoodle    ToppingCategory = "noodle"
	ToppingExtra     ToppingCategory = "extra"
)

// SpiceLevelOption is a per-menu-item heat level with its price adjustment.
type SpiceLevelOption struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	MenuItemID      uint       `gorm:"not null;index" json:"menu_item_id"`
	Level           SpiceLevel `gorm:"type:varchar(20);not null" json:"level"`
	Name            string     `gorm:"type:varchar(50)" json:"name"`
	PriceAdjustment float64    `gorm:"type:decimal(10,2);default:0" json:"price_adjustment"`
}

type Topping struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	MenuItemID  uint            `gorm:"not null;index" json:"menu_item_id"`
	Name        string          `gorm:"type:varchar(100);not null" json:"name"`
	Price       float64         `gorm:"type:decimal(10,2);not null" json:"price"`
	Category    ToppingCategory `gorm:"type:varchar(20);not null" json:"category"`
	IsAvailable bool            `gorm:"default:true" json:"is_available"`
}

type MenuItem struct {
	ID              uint               `gorm:"primaryKey" json:"id"`
	RestaurantID    uint               `gorm:"not null;index" json:"restaurant_id"`
	Name            string             `gorm:"type:varchar(255);not null" json:"name"`
	Description     string             `gorm:"type:text" json:"description"`
	BasePrice       float64            `gorm:"type:decimal(10,2);not null" json:"base_price"`
	SpiceLevels     []SpiceLevelOption `gorm:"foreignKey:MenuItemID;constraint:OnDelete:CASCADE" json:"spice_levels"`
	Toppings        []Topping          `gorm:"foreignKey:MenuItemID;constraint:OnDelete:CASCADE" json:"available_toppings"`
	IsAvailable     bool               `gorm:"default:true" json:"is_available"`
	ImageURL        string             `gorm:"type:varchar(255)" json:"image_url,omitempty"`
	Category        MenuCategory       `gorm:"type:varchar(30);not null" json:"category"`
	PreparationTime int                `gorm:"default:15" json:"preparation_time"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

type Restaurant struct {
	ID                     uint       `gorm:"primaryKey" json:"id"`
	OwnerID                uint       `gorm:"not null;index" json:"owner_id"`
	Owner                  *User      `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Name                   string     `gorm:"type:varchar(255);not null" json:"name"`
	Description            string     `gorm:"type:text" json:"description"`
	Address                Address    `gorm:"embedded;embeddedPrefix:address_" json:"address"`
	Phone                  string     `gorm:"type:varchar(20);not null" json:"phone"`
	Email                  string     `gorm:"type:varchar(255)" json:"email,omitempty"`
	IsActive               bool       `gorm:"default:true" json:"is_active"`
	Rating                 float64    `gorm:"default:0" json:"rating"`
	TotalReviews           int        `gorm:"default:0" json:"total_reviews"`
	Menu                   []MenuItem `gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE" json:"menu"`
	DeliveryRadius         float64    `gorm:"default:5" json:"delivery_radius"`
	MinimumOrder           float64    `gorm:"type:decimal(10,2);default:15000" json:"minimum_order"`
	DeliveryFee            float64    `gorm:"type:decimal(10,2);default:5000" json:"delivery_fee"`
	ImageURL               string     `gorm:"type:varchar(255)" json:"image_url,omitempty"`
	BannerURL              string     `gorm:"type:varchar(255)" json:"banner_url,omitempty"`
	IsVerified             bool       `gorm:"default:false" json:"is_verified"`
	BusinessLicense        string     `gorm:"type:varchar(100)" json:"business_license,omitempty"`
	AveragePreparationTime int        `gorm:"default:20" json:"average_preparation_time"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// FindMenuItem returns the menu item with the given id, or nil.
func (r *Restaurant) FindMenuItem(id uint) *MenuItem {
	for i := range r.Menu {
		if r.Menu[i].ID == id {
			return &r.Menu[i]
		}
	}
	return nil
}
