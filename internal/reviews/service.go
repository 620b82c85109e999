package reviews

import (
	"context"
	"errors"
	"sync"

	"github.com/posbok/storefront/internal/gateway"
	pkgerrors "github.com/posbok/storefront/pkg/errors"
)

// Sort keys accepted by the upstream review listing.
const (
	SortRecent     = "recent"
	SortHelpful    = "helpful"
	SortRatingHigh = "rating_high"
	SortRatingLow  = "rating_low"
)

const defaultPageSize = 10

// API is the review slice of the upstream gateway.
type API interface {
	GetProductReviews(ctx context.Context, productID int64, query gateway.ReviewQuery) (*gateway.ReviewList, error)
	SubmitReview(ctx context.Context, productID int64, input gateway.SubmitReviewInput) (*gateway.Review, error)
	MarkReviewHelpful(ctx context.Context, reviewID int64) (int, error)
}

// Snapshot is the current page of reviews plus its pagination and summary.
// It is served to local UIs as-is.
type Snapshot struct {
	Reviews      []gateway.Review       `json:"reviews"`
	Pagination   *gateway.Pagination    `json:"pagination"`
	Summary      *gateway.ReviewSummary `json:"summary"`
	Page         int                    `json:"page"`
	SortBy       string                 `json:"sortBy"`
	RatingFilter int                    `json:"ratingFilter"`
	Loading      bool                   `json:"loading"`
	Err          string                 `json:"error,omitempty"`
}

// Browser pages through a product's approved reviews. Unlike the cart engine
// it holds no consistency-critical state; a failed fetch just leaves an empty
// list and a message.
type Browser struct {
	api      API
	pageSize int

	mu       sync.Mutex
	reviews  []gateway.Review
	pages    *gateway.Pagination
	summary  *gateway.ReviewSummary
	page     int
	sortBy   string
	rating   int
	inFlight int
	errMsg   string
}

func NewBrowser(api API, pageSize int) (*Browser, error) {
	if api == nil {
		return nil, errors.New("reviews: gateway api is required")
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Browser{api: api, pageSize: pageSize, page: 1, sortBy: SortRecent}, nil
}

func (b *Browser) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Snapshot{
		Reviews:      b.reviews,
		Pagination:   b.pages,
		Summary:      b.summary,
		Page:         b.page,
		SortBy:       b.sortBy,
		RatingFilter: b.rating,
		Loading:      b.inFlight > 0,
		Err:          b.errMsg,
	}
}

func (b *Browser) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	b.mu.Lock()
	b.page = page
	b.mu.Unlock()
}

func (b *Browser) SetSortBy(sortBy string) {
	switch sortBy {
	case SortRecent, SortHelpful, SortRatingHigh, SortRatingLow:
	default:
		sortBy = SortRecent
	}
	b.mu.Lock()
	b.sortBy = sortBy
	b.mu.Unlock()
}

// SetRatingFilter narrows the listing to one star rating; zero clears it.
func (b *Browser) SetRatingFilter(rating int) {
	if rating < 0 || rating > 5 {
		rating = 0
	}
	b.mu.Lock()
	b.rating = rating
	b.mu.Unlock()
}

// Fetch loads the current page for the product. On failure the list is reset
// to empty so consumers always render a valid (possibly empty) slice.
func (b *Browser) Fetch(ctx context.Context, productID int64) error {
	b.mu.Lock()
	b.inFlight++
	b.errMsg = ""
	query := gateway.ReviewQuery{
		Page:   b.page,
		Limit:  b.pageSize,
		SortBy: b.sortBy,
		Rating: b.rating,
	}
	b.mu.Unlock()

	list, err := b.api.GetProductReviews(ctx, productID, query)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.inFlight--
	if err != nil {
		b.reviews = nil
		b.pages = nil
		b.summary = nil
		b.errMsg = errorMessage(err)
		return err
	}
	b.reviews = list.Reviews
	b.pages = list.Pagination
	b.summary = list.Summary
	return nil
}

// Submit posts a review for moderation; the cached list is untouched since
// unapproved reviews are not listed.
func (b *Browser) Submit(ctx context.Context, productID int64, input gateway.SubmitReviewInput) (*gateway.Review, error) {
	review, err := b.api.SubmitReview(ctx, productID, input)
	if err != nil {
		b.mu.Lock()
		b.errMsg = errorMessage(err)
		b.mu.Unlock()
		return nil, err
	}
	return review, nil
}

// MarkHelpful bumps a review's helpful counter and patches the cached entry
// in place rather than refetching the page.
func (b *Browser) MarkHelpful(ctx context.Context, reviewID int64) error {
	count, err := b.api.MarkReviewHelpful(ctx, reviewID)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.reviews {
		if b.reviews[i].ID == reviewID {
			b.reviews[i].HelpfulCount = count
			break
		}
	}
	return nil
}

func errorMessage(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Message()
	}
	return err.Error()
}
