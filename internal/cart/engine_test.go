package cart

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/posbok/storefront/internal/gateway"
	"github.com/posbok/storefront/internal/session"
	pkgerrors "github.com/posbok/storefront/pkg/errors"
)

type stubAPI struct {
	mu sync.Mutex

	cartsBySlug map[string]*gateway.Cart
	fetchErr    error
	mutateErr   error
	fetchGate   map[string]chan struct{}

	fetchCalls  int
	updateCalls int
	removeCalls int
	addCalls    int
	clearCalls  int
	lastQty     int
}

func (s *stubAPI) cartFor(slug string) *gateway.Cart {
	if cart, ok := s.cartsBySlug[slug]; ok {
		return cart
	}
	return &gateway.Cart{StoreSlug: slug}
}

func (s *stubAPI) FetchCart(_ context.Context, slug string) (*gateway.Cart, error) {
	s.mu.Lock()
	s.fetchCalls++
	gate := s.fetchGate[slug]
	err := s.fetchErr
	s.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return s.cartFor(slug), nil
}

func (s *stubAPI) AddItem(_ context.Context, slug string, _ int64, qty int) (*gateway.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addCalls++
	s.lastQty = qty
	if s.mutateErr != nil {
		return nil, s.mutateErr
	}
	return s.cartFor(slug), nil
}

func (s *stubAPI) UpdateItemQuantity(_ context.Context, slug string, _ int64, qty int) (*gateway.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateCalls++
	s.lastQty = qty
	if s.mutateErr != nil {
		return nil, s.mutateErr
	}
	return s.cartFor(slug), nil
}

func (s *stubAPI) RemoveItem(_ context.Context, slug string, _ int64) (*gateway.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeCalls++
	if s.mutateErr != nil {
		return nil, s.mutateErr
	}
	return s.cartFor(slug), nil
}

func (s *stubAPI) ClearCart(_ context.Context, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearCalls++
	if s.mutateErr != nil {
		return "", s.mutateErr
	}
	return "cart cleared", nil
}

func (s *stubAPI) UpdateContact(_ context.Context, slug string, _ gateway.ContactUpdate) (*gateway.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mutateErr != nil {
		return nil, s.mutateErr
	}
	return s.cartFor(slug), nil
}

type fixedSession string

func (s fixedSession) GetOrCreate(context.Context) string { return string(s) }

func newTestEngine(t *testing.T, api *stubAPI) *Engine {
	t.Helper()
	engine, err := NewEngine(api, fixedSession("session-abc"), "store-a", nil, nil)
	if err != nil {
		t.Fatalf("building engine: %v", err)
	}
	return engine
}

func TestClamp(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, want int }{
		{0, 1}, {-5, 1}, {1, 1}, {7, 7}, {10, 10}, {11, 10},
	}
	for _, tc := range cases {
		if got := Clamp(tc.in); got != tc.want {
			t.Fatalf("Clamp(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestSetQuantityAtFloorIssuesNoCall(t *testing.T) {
	t.Parallel()

	api := &stubAPI{}
	engine := newTestEngine(t, api)

	if err := engine.SetQuantity(context.Background(), 1, 1, -1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.updateCalls != 0 || api.removeCalls != 0 {
		t.Fatalf("no network call expected at the floor, got %d updates %d removes", api.updateCalls, api.removeCalls)
	}
}

func TestSetQuantityAtCeilingIssuesNoCall(t *testing.T) {
	t.Parallel()

	api := &stubAPI{}
	engine := newTestEngine(t, api)

	if err := engine.SetQuantity(context.Background(), 1, 10, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.updateCalls != 0 {
		t.Fatalf("no network call expected at the ceiling, got %d", api.updateCalls)
	}
}

func TestSetQuantitySendsClampedTarget(t *testing.T) {
	t.Parallel()

	api := &stubAPI{}
	engine := newTestEngine(t, api)

	if err := engine.SetQuantity(context.Background(), 1, 9, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.updateCalls != 1 || api.lastQty != 10 {
		t.Fatalf("expected one call with quantity 10, got %d calls qty %d", api.updateCalls, api.lastQty)
	}
}

func TestUpdateQuantityZeroRoutesToRemove(t *testing.T) {
	t.Parallel()

	api := &stubAPI{}
	engine := newTestEngine(t, api)

	if err := engine.UpdateQuantity(context.Background(), 1, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.removeCalls != 1 || api.updateCalls != 0 {
		t.Fatalf("quantity<=0 must remove, got %d removes %d updates", api.removeCalls, api.updateCalls)
	}
}

func TestRefreshTreatsNotFoundAsEmpty(t *testing.T) {
	t.Parallel()

	api := &stubAPI{fetchErr: pkgerrors.New(pkgerrors.CodeNotFound, "Cart not found")}
	engine := newTestEngine(t, api)

	if err := engine.Refresh(context.Background()); err != nil {
		t.Fatalf("NotFound must not surface as error, got %v", err)
	}
	snap := engine.Snapshot()
	if snap.Cart != nil {
		t.Fatal("expected nil cart for the empty state")
	}
	if snap.Err != "" {
		t.Fatalf("expected no error recorded, got %q", snap.Err)
	}
	if snap.ItemCount() != 0 {
		t.Fatalf("expected zero count, got %d", snap.ItemCount())
	}
}

func TestRefreshRecordsOtherErrors(t *testing.T) {
	t.Parallel()

	api := &stubAPI{fetchErr: pkgerrors.New(pkgerrors.CodeDependency, "upstream unreachable")}
	engine := newTestEngine(t, api)

	if err := engine.Refresh(context.Background()); err == nil {
		t.Fatal("expected error to propagate")
	}
	if snap := engine.Snapshot(); snap.Err != "upstream unreachable" {
		t.Fatalf("expected recorded error message, got %q", snap.Err)
	}
}

func TestAddReplacesSnapshotWithServerCount(t *testing.T) {
	t.Parallel()

	api := &stubAPI{cartsBySlug: map[string]*gateway.Cart{
		"store-a": {
			ID:        11,
			StoreSlug: "store-a",
			Items: []gateway.CartItem{
				{ID: 1, ProductID: 42, Quantity: 3},
			},
			// Server-reported count deliberately disagrees with the
			// quantity sum; the server's value must win.
			ItemCount: 2,
		},
	}}
	engine := newTestEngine(t, api)

	if err := engine.Add(context.Background(), 42, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := engine.ItemCount(); got != 2 {
		t.Fatalf("item count must come from the server, got %d", got)
	}
}

func TestFailedMutationKeepsLastGoodSnapshot(t *testing.T) {
	t.Parallel()

	api := &stubAPI{cartsBySlug: map[string]*gateway.Cart{
		"store-a": {ID: 11, StoreSlug: "store-a", Items: []gateway.CartItem{{ID: 1, Quantity: 2}}, ItemCount: 2},
	}}
	engine := newTestEngine(t, api)
	if err := engine.Refresh(context.Background()); err != nil {
		t.Fatalf("seeding snapshot: %v", err)
	}

	api.mu.Lock()
	api.mutateErr = pkgerrors.New(pkgerrors.CodeDependency, "upstream unreachable")
	api.mu.Unlock()

	if err := engine.SetQuantity(context.Background(), 1, 2, 1); err == nil {
		t.Fatal("expected failure to propagate to the caller")
	}

	snap := engine.Snapshot()
	if snap.Cart == nil || snap.Cart.Items[0].Quantity != 2 {
		t.Fatal("failed update must leave the previous snapshot intact")
	}
	if snap.Err == "" {
		t.Fatal("failed update must record an error message")
	}
}

func TestClearResultsInNilCart(t *testing.T) {
	t.Parallel()

	api := &stubAPI{cartsBySlug: map[string]*gateway.Cart{
		"store-a": {ID: 11, StoreSlug: "store-a", ItemCount: 3},
	}}
	engine := newTestEngine(t, api)
	if err := engine.Refresh(context.Background()); err != nil {
		t.Fatalf("seeding snapshot: %v", err)
	}

	if err := engine.Clear(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snap := engine.Snapshot()
	if snap.Cart != nil {
		t.Fatal("cleared cart must be nil, not an empty cart object")
	}
	if snap.ItemCount() != 0 {
		t.Fatalf("expected zero count after clear, got %d", snap.ItemCount())
	}
	if api.clearCalls != 1 {
		t.Fatalf("expected one clear call, got %d", api.clearCalls)
	}
}

func TestStaleResponseForPreviousStoreIsDiscarded(t *testing.T) {
	t.Parallel()

	gate := make(chan struct{})
	api := &stubAPI{
		cartsBySlug: map[string]*gateway.Cart{
			"store-a": {ID: 1, StoreSlug: "store-a", ItemCount: 5},
			"store-b": {ID: 2, StoreSlug: "store-b", ItemCount: 1},
		},
		fetchGate: map[string]chan struct{}{"store-a": gate},
	}
	engine := newTestEngine(t, api)

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Fetch for store-a stalls on the gate and resolves after the
		// switch to store-b.
		engine.Refresh(context.Background())
	}()

	waitForFetches(t, api, 1)
	if err := engine.SetActiveStore(context.Background(), "store-b"); err != nil {
		t.Fatalf("switching store: %v", err)
	}

	close(gate)
	<-done

	snap := engine.Snapshot()
	if snap.StoreSlug != "store-b" {
		t.Fatalf("active store should be store-b, got %s", snap.StoreSlug)
	}
	if snap.Cart == nil || snap.Cart.StoreSlug != "store-b" {
		t.Fatalf("stale store-a response overwrote store-b cart: %+v", snap.Cart)
	}
	if snap.ItemCount() != 1 {
		t.Fatalf("expected store-b count 1, got %d", snap.ItemCount())
	}
}

func waitForFetches(t *testing.T, api *stubAPI, n int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		api.mu.Lock()
		calls := api.fetchCalls
		api.mu.Unlock()
		if calls >= n {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for %d fetches", n)
		case <-time.After(time.Millisecond):
		}
	}
}

func TestSetActiveStoreSameSlugIsNoop(t *testing.T) {
	t.Parallel()

	api := &stubAPI{}
	engine := newTestEngine(t, api)

	if err := engine.SetActiveStore(context.Background(), "store-a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.fetchCalls != 0 {
		t.Fatalf("same-slug switch must not refetch, got %d", api.fetchCalls)
	}
}

func TestPlaceholderSessionBlocksMutations(t *testing.T) {
	t.Parallel()

	api := &stubAPI{}
	engine, err := NewEngine(api, fixedSession(session.PlaceholderID), "store-a", nil, nil)
	if err != nil {
		t.Fatalf("building engine: %v", err)
	}

	err = engine.Add(context.Background(), 42, 1)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for placeholder session, got %v", err)
	}
	if api.addCalls != 0 {
		t.Fatal("no request may carry the placeholder identity")
	}
}

func TestSubscribersSeeReplacedSnapshot(t *testing.T) {
	t.Parallel()

	api := &stubAPI{cartsBySlug: map[string]*gateway.Cart{
		"store-a": {ID: 11, StoreSlug: "store-a", ItemCount: 3},
	}}
	engine := newTestEngine(t, api)

	var mu sync.Mutex
	var last Snapshot
	engine.Subscribe(func(snap Snapshot) {
		mu.Lock()
		last = snap
		mu.Unlock()
	})

	if err := engine.Add(context.Background(), 42, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if last.Loading {
		t.Fatal("final notification should not be loading")
	}
	if last.ItemCount() != 3 {
		t.Fatalf("subscriber saw stale count %d", last.ItemCount())
	}
}
