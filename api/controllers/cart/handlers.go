package cart

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	cartdto "github.com/posbok/storefront/api/controllers/cart/dto"
	"github.com/posbok/storefront/api/responses"
	"github.com/posbok/storefront/api/validators"
	cartsvc "github.com/posbok/storefront/internal/cart"
	pkgerrors "github.com/posbok/storefront/pkg/errors"
	"github.com/posbok/storefront/pkg/logger"
)

// Engine is the surface of the synchronization engine the handlers drive.
// Handlers hold no cart state of their own.
type Engine interface {
	Snapshot() cartsvc.Snapshot
	Refresh(ctx context.Context) error
	Add(ctx context.Context, productID int64, quantity int) error
	SetQuantity(ctx context.Context, itemID int64, currentQuantity, delta int) error
	UpdateQuantity(ctx context.Context, itemID int64, quantity int) error
	Remove(ctx context.Context, itemID int64) error
	Clear(ctx context.Context) error
	UpdateContact(ctx context.Context, email, phone *string) error
	SetActiveStore(ctx context.Context, slug string) error
}

// CartFetch re-fetches the active store's cart from the server and returns
// the refreshed snapshot. An absent cart renders as cart:null, not an error.
func CartFetch(engine Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if engine == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart engine unavailable"))
			return
		}
		if err := engine.Refresh(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(engine.Snapshot()))
	}
}

// CartCount serves the badge from the cached snapshot without a round trip.
func CartCount(engine Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if engine == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart engine unavailable"))
			return
		}
		snap := engine.Snapshot()
		responses.WriteSuccess(w, cartdto.CountView{ItemCount: snap.ItemCount(), StoreSlug: snap.StoreSlug})
	}
}

// CartAdd appends a product line and returns the server-confirmed snapshot.
func CartAdd(engine Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if engine == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart engine unavailable"))
			return
		}
		var payload cartdto.AddItemRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := engine.Add(r.Context(), payload.ProductID, payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCartView(engine.Snapshot()))
	}
}

// CartUpdateItem steps or sets a line's quantity. A stepper request that
// clamps to the current quantity is answered from the cache without touching
// the server.
func CartUpdateItem(engine Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if engine == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart engine unavailable"))
			return
		}
		itemID, err := itemIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload cartdto.UpdateItemRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		switch {
		case payload.Delta != nil && payload.CurrentQuantity != nil && payload.Quantity == nil:
			err = engine.SetQuantity(r.Context(), itemID, *payload.CurrentQuantity, *payload.Delta)
		case payload.Quantity != nil && payload.Delta == nil && payload.CurrentQuantity == nil:
			err = engine.UpdateQuantity(r.Context(), itemID, *payload.Quantity)
		default:
			err = pkgerrors.New(pkgerrors.CodeValidation, "provide either quantity or current_quantity with delta")
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(engine.Snapshot()))
	}
}

// CartRemoveItem deletes a line.
func CartRemoveItem(engine Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if engine == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart engine unavailable"))
			return
		}
		itemID, err := itemIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := engine.Remove(r.Context(), itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(engine.Snapshot()))
	}
}

// CartClear empties the cart server-side; the snapshot comes back with
// cart:null.
func CartClear(engine Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if engine == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart engine unavailable"))
			return
		}
		if err := engine.Clear(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartdto.ClearView{Message: "cart cleared"})
	}
}

// CartContact patches the contact fields; omitted fields stay unchanged, so
// a background refresh can never clobber a field the shopper didn't submit.
func CartContact(engine Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if engine == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart engine unavailable"))
			return
		}
		var payload cartdto.ContactRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.CustomerEmail == nil && payload.CustomerPhone == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "provide customer_email or customer_phone"))
			return
		}
		sanitizeContact(&payload)
		if err := engine.UpdateContact(r.Context(), payload.CustomerEmail, payload.CustomerPhone); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(engine.Snapshot()))
	}
}

// CartSetStore switches the engine to another storefront.
func CartSetStore(engine Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if engine == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart engine unavailable"))
			return
		}
		var payload cartdto.SetStoreRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := engine.SetActiveStore(r.Context(), payload.StoreSlug); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(engine.Snapshot()))
	}
}

func itemIDFromPath(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "itemID")
	itemID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || itemID < 1 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid item id")
	}
	return itemID, nil
}
