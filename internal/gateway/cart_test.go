package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	pkgerrors "github.com/posbok/storefront/pkg/errors"
	"github.com/shopspring/decimal"
)

func cartFixture() map[string]any {
	return map[string]any{
		"id":         11,
		"session_id": "session-abc",
		"store_slug": "development-business-inc",
		"items": []map[string]any{
			{
				"id":         1,
				"cart_id":    11,
				"product_id": 42,
				"quantity":   3,
				"price":      5400,
				"product": map[string]any{
					"id":            42,
					"name":          "Bag of Rice",
					"selling_price": 5400,
					"is_published":  true,
				},
			},
		},
		"itemCount": 3,
		"subtotal":  "16200",
		"total":     "16200",
	}
}

func TestAddItemDecodesServerTotals(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/cart/development-business-inc/cart/add" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "added", "data": cartFixture()})
	}))

	cart, err := client.AddItem(context.Background(), "development-business-inc", 42, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotBody["productId"] != float64(42) || gotBody["quantity"] != float64(3) {
		t.Fatalf("unexpected request body: %v", gotBody)
	}
	if cart.ItemCount != 3 {
		t.Fatalf("expected server-reported count 3, got %d", cart.ItemCount)
	}
	if !cart.Subtotal.Equal(decimal.NewFromInt(16200)) {
		t.Fatalf("subtotal not decoded: %s", cart.Subtotal)
	}
	if !cart.Items[0].Price.Equal(decimal.NewFromInt(5400)) {
		t.Fatalf("line price not decoded: %s", cart.Items[0].Price)
	}
}

func TestAddItemRejectsZeroQuantityLocally(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should reach the server")
	}))

	_, err := client.AddItem(context.Background(), "development-business-inc", 42, 0)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected local validation error, got %v", err)
	}
}

func TestUpdateItemQuantityRejectsZeroLocally(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should reach the server")
	}))

	_, err := client.UpdateItemQuantity(context.Background(), "development-business-inc", 1, 0)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected local validation error, got %v", err)
	}
}

func TestRemoveItemPath(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/cart/development-business-inc/cart/items/9" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "removed", "data": cartFixture()})
	}))

	if _, err := client.RemoveItem(context.Background(), "development-business-inc", 9); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClearCartReturnsMessage(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/cart/development-business-inc/cart/clear" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "cart cleared"})
	}))

	msg, err := client.ClearCart(context.Background(), "development-business-inc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg != "cart cleared" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestUpdateContactOmitsNilFields(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "updated", "data": cartFixture()})
	}))

	email := "shopper@example.com"
	if _, err := client.UpdateContact(context.Background(), "development-business-inc", ContactUpdate{Email: &email}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotBody["customer_email"] != email {
		t.Fatalf("email not sent: %v", gotBody)
	}
	if _, present := gotBody["customer_phone"]; present {
		t.Fatal("nil phone must be omitted so the server leaves it unchanged")
	}
}
