package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ProductQuery narrows and orders a store's product listing.
type ProductQuery struct {
	Page       int
	Limit      int
	CategoryID int64
	Search     string
	SortBy     string
	MinPrice   int64
	MaxPrice   int64
}

func (q ProductQuery) encode() string {
	params := url.Values{}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.CategoryID > 0 {
		params.Set("categoryId", strconv.FormatInt(q.CategoryID, 10))
	}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.SortBy != "" {
		params.Set("sortBy", q.SortBy)
	}
	if q.MinPrice > 0 {
		params.Set("minPrice", strconv.FormatInt(q.MinPrice, 10))
	}
	if q.MaxPrice > 0 {
		params.Set("maxPrice", strconv.FormatInt(q.MaxPrice, 10))
	}
	if encoded := params.Encode(); encoded != "" {
		return "?" + encoded
	}
	return ""
}

// GetStore returns the public storefront record for a slug.
func (c *Client) GetStore(ctx context.Context, storeSlug string) (*Store, error) {
	var store Store
	err := c.doEnvelope(ctx, request{
		operation: "GetStore",
		method:    http.MethodGet,
		path:      fmt.Sprintf("/storefront/public/%s", storeSlug),
	}, &store)
	if err != nil {
		return nil, err
	}
	return &store, nil
}

// GetProducts lists a store's products. The upstream's pagination field names
// are normalized before returning.
func (c *Client) GetProducts(ctx context.Context, storeSlug string, query ProductQuery) (*ProductList, error) {
	var data struct {
		Products   []Product `json:"products"`
		Pagination struct {
			CurrentPage  int `json:"currentPage"`
			TotalPages   int `json:"totalPages"`
			TotalItems   int `json:"totalItems"`
			ItemsPerPage int `json:"itemsPerPage"`
		} `json:"pagination"`
		StoreInfo *StoreInfo `json:"storeInfo"`
	}
	err := c.doEnvelope(ctx, request{
		operation: "GetProducts",
		method:    http.MethodGet,
		path:      fmt.Sprintf("/storefront/public/%s/products%s", storeSlug, query.encode()),
	}, &data)
	if err != nil {
		return nil, err
	}
	return &ProductList{
		Products: data.Products,
		Pagination: Pagination{
			Page:       data.Pagination.CurrentPage,
			Limit:      data.Pagination.ItemsPerPage,
			Total:      data.Pagination.TotalItems,
			TotalPages: data.Pagination.TotalPages,
		},
		StoreInfo: data.StoreInfo,
	}, nil
}

// GetProduct returns a single product with its store info stripped.
func (c *Client) GetProduct(ctx context.Context, storeSlug string, productID int64) (*Product, error) {
	var data struct {
		Product   Product    `json:"product"`
		StoreInfo *StoreInfo `json:"storeInfo"`
	}
	err := c.doEnvelope(ctx, request{
		operation: "GetProduct",
		method:    http.MethodGet,
		path:      fmt.Sprintf("/storefront/public/%s/products/%d", storeSlug, productID),
	}, &data)
	if err != nil {
		return nil, err
	}
	return &data.Product, nil
}

// GetCategories returns the store's published product categories.
func (c *Client) GetCategories(ctx context.Context, storeSlug string) ([]Category, error) {
	var categories []Category
	err := c.doEnvelope(ctx, request{
		operation: "GetCategories",
		method:    http.MethodGet,
		path:      fmt.Sprintf("/storefront/public/%s/categories", storeSlug),
	}, &categories)
	if err != nil {
		return nil, err
	}
	return categories, nil
}
