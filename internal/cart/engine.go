package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/posbok/storefront/internal/gateway"
	"github.com/posbok/storefront/internal/session"
	pkgerrors "github.com/posbok/storefront/pkg/errors"
	"github.com/posbok/storefront/pkg/logger"
	"github.com/posbok/storefront/pkg/metrics"
)

const (
	// Quantity bounds for a single cart line. The engine clamps before
	// sending; an out-of-range request never reaches the wire.
	MinQuantity = 1
	MaxQuantity = 10
)

// Clamp forces a requested quantity into the allowed per-line range.
func Clamp(quantity int) int {
	if quantity < MinQuantity {
		return MinQuantity
	}
	if quantity > MaxQuantity {
		return MaxQuantity
	}
	return quantity
}

// API is the slice of the upstream gateway the engine mutates through.
type API interface {
	FetchCart(ctx context.Context, storeSlug string) (*gateway.Cart, error)
	AddItem(ctx context.Context, storeSlug string, productID int64, quantity int) (*gateway.Cart, error)
	UpdateItemQuantity(ctx context.Context, storeSlug string, itemID int64, quantity int) (*gateway.Cart, error)
	RemoveItem(ctx context.Context, storeSlug string, itemID int64) (*gateway.Cart, error)
	ClearCart(ctx context.Context, storeSlug string) (string, error)
	UpdateContact(ctx context.Context, storeSlug string, update gateway.ContactUpdate) (*gateway.Cart, error)
}

type sessionProvider interface {
	GetOrCreate(ctx context.Context) string
}

// Snapshot is the read-only view handed to consumers. Cart is nil both when
// no cart exists yet and after a clear; consumers render the two identically.
type Snapshot struct {
	Cart      *gateway.Cart
	StoreSlug string
	Loading   bool
	Err       string
}

// ItemCount reads the server-reported count. It is never recomputed from the
// lines; server business rules may exclude some of them.
func (s Snapshot) ItemCount() int {
	if s.Cart == nil {
		return 0
	}
	return s.Cart.ItemCount
}

// Subscriber receives a snapshot after every state change.
type Subscriber func(Snapshot)

var (
	errAPIRequired      = errors.New("cart: gateway api is required")
	errSessionsRequired = errors.New("cart: session provider is required")
	errSlugRequired     = errors.New("cart: store slug is required")
)

// Engine owns the single cart snapshot for the active store. It is the only
// writer; every mutation round-trips to the server and replaces the whole
// local snapshot with the authoritative response.
//
// Two mutations may be in flight at once; the last response to resolve wins
// within a store scope. Responses issued for a store that is no longer active
// are discarded, so a rapid store switch cannot contaminate the new store's
// cart.
type Engine struct {
	api      API
	sessions sessionProvider
	logg     *logger.Logger
	metrics  *metrics.UpstreamMetrics

	mu          sync.Mutex
	cart        *gateway.Cart
	slug        string
	epoch       uint64
	inFlight    int
	errMsg      string
	subscribers []Subscriber
}

// NewEngine builds the engine scoped to an initial store slug. It does not
// fetch; call Refresh once the caller is ready.
func NewEngine(api API, sessions sessionProvider, initialSlug string, logg *logger.Logger, m *metrics.UpstreamMetrics) (*Engine, error) {
	if api == nil {
		return nil, errAPIRequired
	}
	if sessions == nil {
		return nil, errSessionsRequired
	}
	if initialSlug == "" {
		return nil, errSlugRequired
	}
	return &Engine{
		api:      api,
		sessions: sessions,
		slug:     initialSlug,
		logg:     logg,
		metrics:  m,
	}, nil
}

// Subscribe registers a read-only consumer notified after each state change.
func (e *Engine) Subscribe(fn Subscriber) {
	if fn == nil {
		return
	}
	e.mu.Lock()
	e.subscribers = append(e.subscribers, fn)
	e.mu.Unlock()
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// ActiveStore returns the slug the engine is currently scoped to.
func (e *Engine) ActiveStore() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.slug
}

// ItemCount reads the last-fetched cart's server-reported count.
func (e *Engine) ItemCount() int {
	return e.Snapshot().ItemCount()
}

// SetActiveStore switches scope to another storefront, discards the previous
// store's cached cart, and fetches the new store's cart. Responses still in
// flight for the old store will be dropped when they resolve.
func (e *Engine) SetActiveStore(ctx context.Context, slug string) error {
	if slug == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "store slug is required")
	}

	e.mu.Lock()
	if slug == e.slug {
		e.mu.Unlock()
		return nil
	}
	e.slug = slug
	e.epoch++
	e.cart = nil
	e.errMsg = ""
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)

	return e.Refresh(ctx)
}

// Refresh fetches the active store's cart. A NOT_FOUND reply is the normal
// empty state, not an error: the server creates the cart lazily on first add.
func (e *Engine) Refresh(ctx context.Context) error {
	slug, epoch := e.begin()
	cart, err := e.api.FetchCart(ctx, slug)
	if pkgerrors.IsNotFound(err) {
		cart, err = nil, nil
	}
	return e.finish(slug, epoch, cart, err)
}

// Add sends a product line to the cart, creating it server-side if absent.
// The requested quantity is clamped into range before it is sent.
func (e *Engine) Add(ctx context.Context, productID int64, quantity int) error {
	if err := e.requireSession(ctx); err != nil {
		return err
	}
	slug, epoch := e.begin()
	cart, err := e.api.AddItem(ctx, slug, productID, Clamp(quantity))
	return e.finish(slug, epoch, cart, err)
}

// SetQuantity steps a line's quantity by delta from its current value. When
// the clamped target equals the current quantity the call is a no-op and no
// request is issued; the floor and ceiling are absorbing.
func (e *Engine) SetQuantity(ctx context.Context, itemID int64, currentQuantity, delta int) error {
	next := Clamp(currentQuantity + delta)
	if next == currentQuantity {
		return nil
	}
	if err := e.requireSession(ctx); err != nil {
		return err
	}
	slug, epoch := e.begin()
	cart, err := e.api.UpdateItemQuantity(ctx, slug, itemID, next)
	return e.finish(slug, epoch, cart, err)
}

// UpdateQuantity sets a line's quantity to an absolute value. A target of
// zero or less removes the line instead; the update endpoint never sees an
// out-of-range quantity from this client.
func (e *Engine) UpdateQuantity(ctx context.Context, itemID int64, quantity int) error {
	if quantity <= 0 {
		return e.Remove(ctx, itemID)
	}
	if err := e.requireSession(ctx); err != nil {
		return err
	}
	slug, epoch := e.begin()
	cart, err := e.api.UpdateItemQuantity(ctx, slug, itemID, Clamp(quantity))
	return e.finish(slug, epoch, cart, err)
}

// Remove deletes a line and replaces the snapshot with the server's response.
func (e *Engine) Remove(ctx context.Context, itemID int64) error {
	if err := e.requireSession(ctx); err != nil {
		return err
	}
	slug, epoch := e.begin()
	cart, err := e.api.RemoveItem(ctx, slug, itemID)
	return e.finish(slug, epoch, cart, err)
}

// Clear empties the cart server-side. On success the local cart becomes nil,
// indistinguishable from never having had a cart.
func (e *Engine) Clear(ctx context.Context) error {
	if err := e.requireSession(ctx); err != nil {
		return err
	}
	slug, epoch := e.begin()
	_, err := e.api.ClearCart(ctx, slug)
	return e.finish(slug, epoch, nil, err)
}

// UpdateContact patches the cart's contact fields. Nil fields are omitted so
// the server leaves them unchanged.
func (e *Engine) UpdateContact(ctx context.Context, email, phone *string) error {
	if err := e.requireSession(ctx); err != nil {
		return err
	}
	slug, epoch := e.begin()
	cart, err := e.api.UpdateContact(ctx, slug, gateway.ContactUpdate{Email: email, Phone: phone})
	return e.finish(slug, epoch, cart, err)
}

// requireSession blocks mutations issued from a context whose identity store
// degraded to the placeholder; the server must never see the sentinel.
func (e *Engine) requireSession(ctx context.Context) error {
	if session.IsPlaceholder(e.sessions.GetOrCreate(ctx)) {
		err := pkgerrors.New(pkgerrors.CodeValidation, "no persistent session available")
		e.recordError(err)
		return err
	}
	return nil
}

func (e *Engine) begin() (string, uint64) {
	e.mu.Lock()
	e.inFlight++
	e.errMsg = ""
	slug, epoch := e.slug, e.epoch
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
	return slug, epoch
}

// finish applies a resolved call. Responses tagged with a stale {slug, epoch}
// are discarded wholesale: neither their cart nor their error may touch the
// now-active store's state.
func (e *Engine) finish(slug string, epoch uint64, cart *gateway.Cart, err error) error {
	e.mu.Lock()
	e.inFlight--

	if slug != e.slug || epoch != e.epoch {
		snap := e.snapshotLocked()
		e.mu.Unlock()
		e.metrics.IncStaleDiscard()
		e.notify(snap)
		if e.logg != nil {
			ctx := e.logg.WithStoreSlug(context.Background(), slug)
			e.logg.Warn(ctx, "discarded response for inactive store")
		}
		return err
	}

	if err != nil {
		// Last-known-good snapshot stays in place on failure.
		e.errMsg = errorMessage(err)
	} else {
		e.cart = cart
		e.errMsg = ""
	}
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
	return err
}

func (e *Engine) recordError(err error) {
	e.mu.Lock()
	e.errMsg = errorMessage(err)
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.notify(snap)
}

func (e *Engine) snapshotLocked() Snapshot {
	return Snapshot{
		Cart:      e.cart,
		StoreSlug: e.slug,
		Loading:   e.inFlight > 0,
		Err:       e.errMsg,
	}
}

func (e *Engine) notify(snap Snapshot) {
	e.mu.Lock()
	subs := make([]Subscriber, len(e.subscribers))
	copy(subs, e.subscribers)
	e.mu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
}

func errorMessage(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Message()
	}
	return err.Error()
}
