package testutil

import (
	"time"

	"github.com/brocantio/checkout/internal/domain/product"
	"github.com/brocantio/checkout/internal/domain/transaction"
)

func NewTestProduct(id, sellerID string) *product.Product {
	return &product.Product{
		ID:          id,
		Title:       "Reading lamp",
		Description: "Warm light, barely used",
		Price:       25.50,
		Category:    product.CategoryFurniture,
		SellerID:    sellerID,
		CreatedAt:   time.Now(),
	}
}

func NewSoldTestProduct(id, sellerID, buyerID string) *product.Product {
	p := NewTestProduct(id, sellerID)
	p.BuyerID = &buyerID
	return p
}

func NewTestTransaction(id, productID, buyerID, sellerID string, price float64) transaction.Transaction {
	return transaction.Transaction{
		ID:        id,
		ProductID: productID,
		BuyerID:   buyerID,
		SellerID:  sellerID,
		Title:     "Reading lamp",
		Price:     price,
		ShippingDetails: transaction.ShippingDetails{
			Address:    "1 Main St",
			PostalCode: "00001",
			Country:    "France",
		},
		CreatedAt: time.Now(),
	}
}
