package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

type Vendor struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     *string   `json:"description"`
	WhatsAppContact string    `json:"whatsapp_contact"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

type Product struct {
	ID          string          `json:"id"`
	VendorID    string          `json:"vendor_id"`
	CategoryID  string          `json:"category_id"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    *string         `json:"image_url"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// loaded with the product when listing
	Vendor   *Vendor   `json:"vendor,omitempty"`
	Category *Category `json:"category,omitempty"`
}

// Filter narrows product listings; zero values mean "all".
type Filter struct {
	VendorID   string
	CategoryID string
}
