package transaction

import "time"

// ShippingDetails holds the delivery address collected in the first
// checkout step.
type ShippingDetails struct {
	Address    string `json:"address"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// CardDetails holds the payment card data collected in the second checkout
// step. It lives only for the lifetime of one checkout session and is never
// persisted; the single submission call is the only place it leaves process
// memory.
type CardDetails struct {
	Number string `json:"number"`
	Expiry string `json:"expiry"`
	CVV    string `json:"cvv"`
}

// Request is the payload submitted to the backend of record when a purchase
// is finalized. Built once, at final submission.
type Request struct {
	ProductID       string          `json:"productId"`
	BuyerID         string          `json:"buyerId"`
	ShippingDetails ShippingDetails `json:"shippingDetails"`
	CardDetails     CardDetails     `json:"cardDetails"`
}

// Transaction is the backend record linking a sold product to its buyer,
// as returned by the transactions listing endpoints.
type Transaction struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"productId"`
	BuyerID         string          `json:"buyerId"`
	SellerID        string          `json:"sellerId"`
	Title           string          `json:"title"`
	Price           float64         `json:"price"`
	ShippingDetails ShippingDetails `json:"shippingDetails"`
	CreatedAt       time.Time       `json:"date"`
}
