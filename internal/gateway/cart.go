package gateway

import (
	"context"
	"fmt"
	"net/http"

	pkgerrors "github.com/posbok/storefront/pkg/errors"
)

// FetchCart returns the current cart for the session+store pair, or a
// NOT_FOUND typed error when none exists yet.
func (c *Client) FetchCart(ctx context.Context, storeSlug string) (*Cart, error) {
	var cart Cart
	err := c.doEnvelope(ctx, request{
		operation:   "FetchCart",
		method:      http.MethodGet,
		path:        fmt.Sprintf("/cart/%s/cart", storeSlug),
		withSession: true,
	}, &cart)
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddItem appends or merges a product line, creating the cart server-side if
// absent, and returns the full updated cart.
func (c *Client) AddItem(ctx context.Context, storeSlug string, productID int64, quantity int) (*Cart, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	var cart Cart
	err := c.doEnvelope(ctx, request{
		operation:   "AddItem",
		method:      http.MethodPost,
		path:        fmt.Sprintf("/cart/%s/cart/add", storeSlug),
		body:        map[string]any{"productId": productID, "quantity": quantity},
		withSession: true,
	}, &cart)
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// UpdateItemQuantity sets an item's quantity. Quantities below 1 are rejected
// here; callers remove the line instead of driving it to zero.
func (c *Client) UpdateItemQuantity(ctx context.Context, storeSlug string, itemID int64, quantity int) (*Cart, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	var cart Cart
	err := c.doEnvelope(ctx, request{
		operation:   "UpdateItemQuantity",
		method:      http.MethodPatch,
		path:        fmt.Sprintf("/cart/%s/cart/items/%d", storeSlug, itemID),
		body:        map[string]any{"quantity": quantity},
		withSession: true,
	}, &cart)
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// RemoveItem deletes a line and returns the updated cart.
func (c *Client) RemoveItem(ctx context.Context, storeSlug string, itemID int64) (*Cart, error) {
	var cart Cart
	err := c.doEnvelope(ctx, request{
		operation:   "RemoveItem",
		method:      http.MethodDelete,
		path:        fmt.Sprintf("/cart/%s/cart/items/%d", storeSlug, itemID),
		withSession: true,
	}, &cart)
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// ClearCart empties all lines server-side and returns the confirmation message.
func (c *Client) ClearCart(ctx context.Context, storeSlug string) (string, error) {
	env, err := c.do(ctx, request{
		operation:   "ClearCart",
		method:      http.MethodDelete,
		path:        fmt.Sprintf("/cart/%s/cart/clear", storeSlug),
		withSession: true,
	})
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// UpdateContact patches the cart's contact fields; nil fields stay unchanged.
// The server echoes back the full cart.
func (c *Client) UpdateContact(ctx context.Context, storeSlug string, update ContactUpdate) (*Cart, error) {
	var cart Cart
	err := c.doEnvelope(ctx, request{
		operation:   "UpdateContact",
		method:      http.MethodPatch,
		path:        fmt.Sprintf("/cart/%s/cart/contact", storeSlug),
		body:        update,
		withSession: true,
	}, &cart)
	if err != nil {
		return nil, err
	}
	return &cart, nil
}
