package cart

import (
	cartdto "github.com/posbok/storefront/api/controllers/cart/dto"
	"github.com/posbok/storefront/api/validators"
)

func sanitizeContact(payload *cartdto.ContactRequest) {
	if payload.CustomerEmail != nil {
		email := validators.SanitizeString(*payload.CustomerEmail, 254)
		payload.CustomerEmail = &email
	}
	if payload.CustomerPhone != nil {
		phone := validators.SanitizeString(*payload.CustomerPhone, 20)
		payload.CustomerPhone = &phone
	}
}
