package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ReviewQuery selects a page of a product's approved reviews.
type ReviewQuery struct {
	Page   int
	Limit  int
	SortBy string
	Rating int
}

func (q ReviewQuery) encode() string {
	params := url.Values{}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.SortBy != "" {
		params.Set("sortBy", q.SortBy)
	}
	if q.Rating > 0 {
		params.Set("rating", strconv.Itoa(q.Rating))
	}
	if encoded := params.Encode(); encoded != "" {
		return "?" + encoded
	}
	return ""
}

// GetProductReviews lists approved reviews with pagination and a rating
// summary. This endpoint returns its payload without the data wrapper.
func (c *Client) GetProductReviews(ctx context.Context, productID int64, query ReviewQuery) (*ReviewList, error) {
	var list ReviewList
	err := c.doBody(ctx, request{
		operation: "GetProductReviews",
		method:    http.MethodGet,
		path:      fmt.Sprintf("/reviews/products/%d/reviews%s", productID, query.encode()),
	}, &list)
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// SubmitReview posts a new review for moderation.
func (c *Client) SubmitReview(ctx context.Context, productID int64, input SubmitReviewInput) (*Review, error) {
	var review Review
	err := c.doBody(ctx, request{
		operation: "SubmitReview",
		method:    http.MethodPost,
		path:      fmt.Sprintf("/reviews/products/%d/reviews", productID),
		body:      input,
	}, &review)
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// MarkReviewHelpful bumps a review's helpful counter and returns the new count.
func (c *Client) MarkReviewHelpful(ctx context.Context, reviewID int64) (int, error) {
	var result struct {
		HelpfulCount int `json:"helpful_count"`
	}
	err := c.doBody(ctx, request{
		operation: "MarkReviewHelpful",
		method:    http.MethodPost,
		path:      fmt.Sprintf("/reviews/reviews/%d/helpful", reviewID),
	}, &result)
	if err != nil {
		return 0, err
	}
	return result.HelpfulCount, nil
}
