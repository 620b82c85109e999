package cartdto

import "github.com/posbok/storefront/internal/gateway"

// CartView is the snapshot shape the local UI renders from.
type CartView struct {
	Cart      *gateway.Cart `json:"cart"`
	ItemCount int           `json:"itemCount"`
	StoreSlug string        `json:"storeSlug"`
	Loading   bool          `json:"loading"`
	Error     string        `json:"error,omitempty"`
}

type AddItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,min=1"`
	Quantity  int   `json:"quantity" validate:"required,min=1,max=10"`
}

// UpdateItemRequest supports the two mutation shapes the UI produces: a
// stepper (current_quantity plus delta) or a direct quantity input. Exactly
// one shape must be present.
type UpdateItemRequest struct {
	Quantity        *int `json:"quantity,omitempty" validate:"omitempty,min=0,max=10"`
	CurrentQuantity *int `json:"current_quantity,omitempty" validate:"omitempty,min=1,max=10"`
	Delta           *int `json:"delta,omitempty"`
}

type ContactRequest struct {
	CustomerEmail *string `json:"customer_email,omitempty" validate:"omitempty,email"`
	CustomerPhone *string `json:"customer_phone,omitempty" validate:"omitempty,min=5,max=20"`
}

type SetStoreRequest struct {
	StoreSlug string `json:"store_slug" validate:"required,min=1,max=120"`
}

type CountView struct {
	ItemCount int    `json:"itemCount"`
	StoreSlug string `json:"storeSlug"`
}

type ClearView struct {
	Message string `json:"message"`
}
