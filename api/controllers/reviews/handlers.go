package reviews

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/posbok/storefront/api/responses"
	"github.com/posbok/storefront/api/validators"
	"github.com/posbok/storefront/internal/gateway"
	reviewsvc "github.com/posbok/storefront/internal/reviews"
	pkgerrors "github.com/posbok/storefront/pkg/errors"
	"github.com/posbok/storefront/pkg/logger"
)

// Browser is the review-browsing surface the handlers drive.
type Browser interface {
	Snapshot() reviewsvc.Snapshot
	SetPage(page int)
	SetSortBy(sortBy string)
	SetRatingFilter(rating int)
	Fetch(ctx context.Context, productID int64) error
	Submit(ctx context.Context, productID int64, input gateway.SubmitReviewInput) (*gateway.Review, error)
	MarkHelpful(ctx context.Context, reviewID int64) error
}

type submitRequest struct {
	CustomerName  string `json:"customer_name" validate:"required,min=2,max=100"`
	CustomerEmail string `json:"customer_email" validate:"required,email"`
	Rating        int    `json:"rating" validate:"required,min=1,max=5"`
	ReviewTitle   string `json:"review_title" validate:"required,min=2,max=150"`
	ReviewText    string `json:"review_text" validate:"required,min=2,max=4000"`
}

// ReviewList fetches a product's approved reviews with the requested page,
// sort and rating filter applied.
func ReviewList(browser Browser, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := productIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := validators.ParseQueryInt(r, "page", 1, 1, 10000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rating, err := validators.ParseQueryInt(r, "rating", 0, 1, 5)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sortBy, err := validators.ParseQueryString(r, "sortBy",
			reviewsvc.SortRecent, reviewsvc.SortHelpful, reviewsvc.SortRatingHigh, reviewsvc.SortRatingLow)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		browser.SetPage(page)
		browser.SetRatingFilter(rating)
		if sortBy != "" {
			browser.SetSortBy(sortBy)
		}
		if err := browser.Fetch(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, browser.Snapshot())
	}
}

// ReviewSubmit posts a new review for moderation.
func ReviewSubmit(browser Browser, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := productIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload submitRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		review, err := browser.Submit(r.Context(), productID, gateway.SubmitReviewInput{
			CustomerName:  validators.SanitizeString(payload.CustomerName, 100),
			CustomerEmail: validators.SanitizeString(payload.CustomerEmail, 254),
			Rating:        payload.Rating,
			ReviewTitle:   validators.SanitizeString(payload.ReviewTitle, 150),
			ReviewText:    validators.SanitizeString(payload.ReviewText, 4000),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, review)
	}
}

// ReviewMarkHelpful bumps a review's helpful counter.
func ReviewMarkHelpful(browser Browser, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reviewID, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
		if err != nil || reviewID < 1 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid review id"))
			return
		}
		if err := browser.MarkHelpful(r.Context(), reviewID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, browser.Snapshot())
	}
}

func productIDFromPath(r *http.Request) (int64, error) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || productID < 1 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id")
	}
	return productID, nil
}
