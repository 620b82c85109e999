package catalog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/posbok/storefront/api/responses"
	"github.com/posbok/storefront/api/validators"
	"github.com/posbok/storefront/internal/gateway"
	pkgerrors "github.com/posbok/storefront/pkg/errors"
	"github.com/posbok/storefront/pkg/logger"
)

// Catalog is the read-only storefront slice the handlers proxy. The daemon
// adds nothing to catalog data; it forwards the upstream's view.
type Catalog interface {
	GetStore(ctx context.Context, storeSlug string) (*gateway.Store, error)
	GetProducts(ctx context.Context, storeSlug string, query gateway.ProductQuery) (*gateway.ProductList, error)
	GetProduct(ctx context.Context, storeSlug string, productID int64) (*gateway.Product, error)
	GetCategories(ctx context.Context, storeSlug string) ([]gateway.Category, error)
}

func StoreFetch(catalog Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := catalog.GetStore(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, store)
	}
}

func ProductList(catalog Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, err := productQueryFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := catalog.GetProducts(r.Context(), chi.URLParam(r, "slug"), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func ProductFetch(catalog Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
		if err != nil || productID < 1 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id"))
			return
		}
		product, err := catalog.GetProduct(r.Context(), chi.URLParam(r, "slug"), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func CategoryList(catalog Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := catalog.GetCategories(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

func productQueryFromRequest(r *http.Request) (gateway.ProductQuery, error) {
	page, err := validators.ParseQueryInt(r, "page", 0, 1, 10000)
	if err != nil {
		return gateway.ProductQuery{}, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 100)
	if err != nil {
		return gateway.ProductQuery{}, err
	}
	categoryID, err := validators.ParseQueryInt64(r, "categoryId", 0)
	if err != nil {
		return gateway.ProductQuery{}, err
	}
	sortBy, err := validators.ParseQueryString(r, "sortBy", "price_asc", "price_desc", "newest", "popular")
	if err != nil {
		return gateway.ProductQuery{}, err
	}
	minPrice, err := validators.ParseQueryInt64(r, "minPrice", 0)
	if err != nil {
		return gateway.ProductQuery{}, err
	}
	maxPrice, err := validators.ParseQueryInt64(r, "maxPrice", 0)
	if err != nil {
		return gateway.ProductQuery{}, err
	}
	return gateway.ProductQuery{
		Page:       page,
		Limit:      limit,
		CategoryID: categoryID,
		Search:     validators.SanitizeString(r.URL.Query().Get("search"), 200),
		SortBy:     sortBy,
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
	}, nil
}
