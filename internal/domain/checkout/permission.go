package checkout

import (
	"github.com/brocantio/checkout/internal/domain/errors"
	"github.com/brocantio/checkout/internal/domain/product"
)

// Permission is the result of the purchase permission gate.
type Permission string

const (
	PermissionGranted      Permission = "granted"
	PermissionOwnerBlocked Permission = "owner_blocked"
	PermissionAlreadySold  Permission = "already_sold"
)

// CanInitiatePurchase decides whether userID may open a checkout session for
// the product. The owner check wins over the sold check: a seller looking at
// their own unsold listing is owner-blocked, not merely unavailable.
func CanInitiatePurchase(p *product.Product, userID string) Permission {
	if p.SellerID == userID {
		return PermissionOwnerBlocked
	}
	if p.BuyerID != nil {
		return PermissionAlreadySold
	}
	return PermissionGranted
}

// Err maps the permission to its sentinel error, or nil when granted.
func (p Permission) Err() error {
	switch p {
	case PermissionOwnerBlocked:
		return errors.ErrOwnerBlocked
	case PermissionAlreadySold:
		return errors.ErrProductAlreadySold
	default:
		return nil
	}
}
