package cart

import (
	cartdto "github.com/posbok/storefront/api/controllers/cart/dto"
	cartsvc "github.com/posbok/storefront/internal/cart"
)

func newCartView(snap cartsvc.Snapshot) cartdto.CartView {
	return cartdto.CartView{
		Cart:      snap.Cart,
		ItemCount: snap.ItemCount(),
		StoreSlug: snap.StoreSlug,
		Loading:   snap.Loading,
		Error:     snap.Err,
	}
}
