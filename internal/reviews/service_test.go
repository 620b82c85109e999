package reviews

import (
	"context"
	"testing"

	"github.com/posbok/storefront/internal/gateway"
	pkgerrors "github.com/posbok/storefront/pkg/errors"
)

type stubAPI struct {
	list      *gateway.ReviewList
	listErr   error
	lastQuery gateway.ReviewQuery

	helpfulCount int
	helpfulErr   error
}

func (s *stubAPI) GetProductReviews(_ context.Context, _ int64, query gateway.ReviewQuery) (*gateway.ReviewList, error) {
	s.lastQuery = query
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.list, nil
}

func (s *stubAPI) SubmitReview(_ context.Context, _ int64, input gateway.SubmitReviewInput) (*gateway.Review, error) {
	return &gateway.Review{CustomerName: input.CustomerName, Rating: input.Rating}, nil
}

func (s *stubAPI) MarkReviewHelpful(_ context.Context, _ int64) (int, error) {
	if s.helpfulErr != nil {
		return 0, s.helpfulErr
	}
	return s.helpfulCount, nil
}

func TestFetchAppliesQueryState(t *testing.T) {
	t.Parallel()

	api := &stubAPI{list: &gateway.ReviewList{
		Reviews:    []gateway.Review{{ID: 1, Rating: 5}},
		Pagination: &gateway.Pagination{Page: 2, Limit: 5, Total: 12, TotalPages: 3},
	}}
	browser, err := NewBrowser(api, 5)
	if err != nil {
		t.Fatalf("building browser: %v", err)
	}

	browser.SetPage(2)
	browser.SetSortBy(SortHelpful)
	browser.SetRatingFilter(4)

	if err := browser.Fetch(context.Background(), 42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.lastQuery.Page != 2 || api.lastQuery.Limit != 5 || api.lastQuery.SortBy != SortHelpful || api.lastQuery.Rating != 4 {
		t.Fatalf("query state not applied: %+v", api.lastQuery)
	}
	snap := browser.Snapshot()
	if len(snap.Reviews) != 1 || snap.Pagination.TotalPages != 3 {
		t.Fatalf("snapshot not replaced: %+v", snap)
	}
}

func TestFetchFailureResetsList(t *testing.T) {
	t.Parallel()

	api := &stubAPI{
		list:    &gateway.ReviewList{Reviews: []gateway.Review{{ID: 1}}},
		listErr: nil,
	}
	browser, _ := NewBrowser(api, 0)
	if err := browser.Fetch(context.Background(), 42); err != nil {
		t.Fatalf("seeding: %v", err)
	}

	api.listErr = pkgerrors.New(pkgerrors.CodeDependency, "upstream unreachable")
	if err := browser.Fetch(context.Background(), 42); err == nil {
		t.Fatal("expected fetch error")
	}

	snap := browser.Snapshot()
	if snap.Reviews != nil {
		t.Fatal("failed fetch must reset the list")
	}
	if snap.Err != "upstream unreachable" {
		t.Fatalf("expected recorded message, got %q", snap.Err)
	}
}

func TestUnknownSortFallsBackToRecent(t *testing.T) {
	t.Parallel()

	browser, _ := NewBrowser(&stubAPI{list: &gateway.ReviewList{}}, 0)
	browser.SetSortBy("rating_sideways")
	if snap := browser.Snapshot(); snap.SortBy != SortRecent {
		t.Fatalf("expected fallback to recent, got %s", snap.SortBy)
	}
}

func TestMarkHelpfulPatchesCachedEntry(t *testing.T) {
	t.Parallel()

	api := &stubAPI{
		list:         &gateway.ReviewList{Reviews: []gateway.Review{{ID: 7, HelpfulCount: 3}, {ID: 8, HelpfulCount: 1}}},
		helpfulCount: 4,
	}
	browser, _ := NewBrowser(api, 0)
	if err := browser.Fetch(context.Background(), 42); err != nil {
		t.Fatalf("seeding: %v", err)
	}

	if err := browser.MarkHelpful(context.Background(), 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := browser.Snapshot()
	if snap.Reviews[0].HelpfulCount != 4 {
		t.Fatalf("cached entry not patched: %+v", snap.Reviews[0])
	}
	if snap.Reviews[1].HelpfulCount != 1 {
		t.Fatal("unrelated entry must stay untouched")
	}
}
