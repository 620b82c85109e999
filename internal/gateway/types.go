package gateway

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// envelope is the wrapper every upstream response uses. Success is a pointer
// because a handful of endpoints return bare payloads without the flag.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Cart is the authoritative aggregate as returned by the server. The client
// never derives totals or counts from items; it reads the server's values.
type Cart struct {
	ID            int64           `json:"id"`
	SessionID     string          `json:"session_id"`
	StoreSlug     string          `json:"store_slug"`
	BusinessID    int64           `json:"business_id"`
	Items         []CartItem      `json:"items"`
	ItemCount     int             `json:"itemCount"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Total         decimal.Decimal `json:"total"`
	CustomerEmail *string         `json:"customer_email"`
	CustomerPhone *string         `json:"customer_phone"`
	ExpiresAt     string          `json:"expires_at"`
	CreatedAt     string          `json:"created_at"`
	UpdatedAt     string          `json:"updated_at"`
}

// CartItem is one product line. Price is the unit price snapshotted at add
// time, not the product's current selling price.
type CartItem struct {
	ID        int64           `json:"id"`
	CartID    int64           `json:"cart_id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
	Product   CartItemProduct `json:"product"`
}

// CartItemProduct carries the denormalized display data attached to a line.
type CartItemProduct struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	IsPublished  bool            `json:"is_published"`
	Images       []ProductImage  `json:"images"`
}

// ContactUpdate is a partial contact patch; nil fields are left unchanged
// server-side.
type ContactUpdate struct {
	Email *string `json:"customer_email,omitempty"`
	Phone *string `json:"customer_phone,omitempty"`
}

type ProductImage struct {
	ID           int64  `json:"id"`
	ImageURL     string `json:"image_url"`
	DisplayOrder int    `json:"display_order"`
	IsPrimary    bool   `json:"is_primary"`
}

type Store struct {
	ID                  int64    `json:"id"`
	BusinessID          int64    `json:"business_id"`
	IsActive            bool     `json:"is_active"`
	StoreSlug           string   `json:"store_slug"`
	Address             string   `json:"address,omitempty"`
	OffersDelivery      bool     `json:"offers_delivery"`
	BusinessDescription string   `json:"business_description,omitempty"`
	ContactPhone        string   `json:"contact_phone,omitempty"`
	ContactEmail        string   `json:"contact_email,omitempty"`
	WhatsappNumber      string   `json:"whatsapp_number,omitempty"`
	BusinessMotto       string   `json:"business_motto,omitempty"`
	BusinessLogo        *string  `json:"business_logo"`
	PublishedCategories []string `json:"published_categories"`
	AboutUs             *string  `json:"about_us"`
	Business            Business `json:"Business"`
}

type Business struct {
	ID           int64  `json:"id"`
	BusinessName string `json:"business_name"`
}

type StoreInfo struct {
	BusinessName   string  `json:"business_name"`
	Motto          string  `json:"motto,omitempty"`
	Description    string  `json:"description,omitempty"`
	Address        string  `json:"address,omitempty"`
	Logo           *string `json:"logo"`
	ContactPhone   string  `json:"contact_phone,omitempty"`
	ContactEmail   string  `json:"contact_email,omitempty"`
	WhatsappNumber string  `json:"whatsapp_number,omitempty"`
}

type Product struct {
	ID              int64            `json:"id"`
	BusinessID      int64            `json:"business_id"`
	CategoryID      int64            `json:"category_id"`
	Name            string           `json:"name"`
	SKU             string           `json:"sku,omitempty"`
	Description     string           `json:"description,omitempty"`
	SellingPrice    decimal.Decimal  `json:"selling_price"`
	BrandName       string           `json:"brand_name,omitempty"`
	IsPublished     bool             `json:"is_published"`
	ProductDetails  string           `json:"product_details,omitempty"`
	Unit            string           `json:"unit,omitempty"`
	Category        *ProductCategory `json:"ProductCategory,omitempty"`
	Images          []ProductImage   `json:"images"`
	QuantityDisplay string           `json:"quantity_display,omitempty"`
	InStock         bool             `json:"in_stock"`
}

type ProductCategory struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Count       int    `json:"count,omitempty"`
}

// Pagination is the normalized shape handed to consumers regardless of the
// upstream endpoint's field naming.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type ProductList struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
	StoreInfo  *StoreInfo `json:"storeInfo,omitempty"`
}

type Review struct {
	ID            int64  `json:"id"`
	ProductID     int64  `json:"product_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email,omitempty"`
	Rating        int    `json:"rating"`
	ReviewTitle   string `json:"review_title"`
	ReviewText    string `json:"review_text"`
	HelpfulCount  int    `json:"helpful_count"`
	IsApproved    bool   `json:"is_approved"`
	AdminResponse string `json:"admin_response,omitempty"`
	CreatedAt     string `json:"created_at"`
}

type ReviewSummary struct {
	AverageRating      float64        `json:"averageRating"`
	TotalReviews       int            `json:"totalReviews"`
	RatingDistribution map[string]int `json:"ratingDistribution"`
}

type ReviewList struct {
	Reviews    []Review       `json:"reviews"`
	Pagination *Pagination    `json:"pagination"`
	Summary    *ReviewSummary `json:"summary"`
}

type SubmitReviewInput struct {
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	Rating        int    `json:"rating"`
	ReviewTitle   string `json:"review_title"`
	ReviewText    string `json:"review_text"`
}
