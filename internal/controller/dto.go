package controller

import (
	"strings"
	"time"

	"github.com/brocantio/checkout/internal/backend"
	"github.com/brocantio/checkout/internal/domain/checkout"
	"github.com/brocantio/checkout/internal/domain/transaction"
	"github.com/brocantio/checkout/internal/service"
)

// --- Request DTOs ---
// These DTOs handle HTTP/JSON concerns (string IDs, validation tags).
// Controllers convert these before calling business logic.

// OpenCheckoutRequest holds the input for opening a checkout session.
type OpenCheckoutRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

// UpdateFieldRequest holds a single form-field write.
type UpdateFieldRequest struct {
	Field string `json:"field" validate:"required"`
	Value string `json:"value"`
}

// --- Response DTOs ---

// CheckoutResponse represents a checkout session in API responses. Card
// fields are masked: the backend of record is the only place raw card data
// ever travels to.
type CheckoutResponse struct {
	ID          string            `json:"id"`
	ProductID   string            `json:"productId"`
	State       string            `json:"state"`
	Step        int               `json:"step"`
	Fields      map[string]string `json:"fields"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// SubmitResponse represents a finalized purchase. The notice fields mirror
// what the front-end shows as a toast.
type SubmitResponse struct {
	TransactionID string `json:"transactionId,omitempty"`
	Redirect      string `json:"redirect"`
	Message       string `json:"message"`
	Description   string `json:"description"`
}

// CountryResponse represents one entry of the shipping country list.
type CountryResponse struct {
	Name string `json:"name"`
	Code string `json:"code"`
	Flag string `json:"flag,omitempty"`
}

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID              string                      `json:"id"`
	ProductID       string                      `json:"productId"`
	BuyerID         string                      `json:"buyerId"`
	SellerID        string                      `json:"sellerId"`
	Title           string                      `json:"title"`
	Price           float64                     `json:"price"`
	ShippingDetails transaction.ShippingDetails `json:"shippingDetails"`
	CreatedAt       time.Time                   `json:"date"`
}

// OverviewResponse groups a user's purchases and sales.
type OverviewResponse struct {
	Purchases      []TransactionResponse `json:"purchases"`
	Sales          []TransactionResponse `json:"sales"`
	TotalPurchased float64               `json:"totalPurchased"`
	TotalSold      float64               `json:"totalSold"`
}

// ErrorResponse represents an error response. FieldErrors carries per-field
// validation messages when a step fails to advance.
type ErrorResponse struct {
	Error       string            `json:"error"`
	Code        string            `json:"code"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

// --- Conversion helpers ---

// FromSession converts a session snapshot to an API response, masking the
// card number down to its last four digits and the cvv entirely.
func FromSession(snap checkout.Snapshot) *CheckoutResponse {
	fields := make(map[string]string, len(snap.Fields))
	for name, value := range snap.Fields {
		switch name {
		case checkout.FieldCardNumber:
			fields[name] = maskCardNumber(value)
		case checkout.FieldCVV:
			fields[name] = strings.Repeat("*", len(value))
		default:
			fields[name] = value
		}
	}

	return &CheckoutResponse{
		ID:          snap.ID.String(),
		ProductID:   snap.ProductID,
		State:       string(snap.State),
		Step:        stepIndex(snap.State),
		Fields:      fields,
		FieldErrors: snap.FieldErrors,
		CreatedAt:   snap.CreatedAt,
		UpdatedAt:   snap.UpdatedAt,
	}
}

func maskCardNumber(value string) string {
	if len(value) <= 4 {
		return strings.Repeat("*", len(value))
	}
	return strings.Repeat("*", len(value)-4) + value[len(value)-4:]
}

func stepIndex(state checkout.State) int {
	if state == checkout.StateShipping {
		return 0
	}
	return 1
}

// FromTransaction converts a backend transaction record to an API response.
func FromTransaction(t transaction.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:              t.ID,
		ProductID:       t.ProductID,
		BuyerID:         t.BuyerID,
		SellerID:        t.SellerID,
		Title:           t.Title,
		Price:           t.Price,
		ShippingDetails: t.ShippingDetails,
		CreatedAt:       t.CreatedAt,
	}
}

// FromOverview converts a transaction overview to an API response.
func FromOverview(o *service.Overview) *OverviewResponse {
	purchases := make([]TransactionResponse, 0, len(o.Purchases))
	for _, t := range o.Purchases {
		purchases = append(purchases, FromTransaction(t))
	}
	sales := make([]TransactionResponse, 0, len(o.Sales))
	for _, t := range o.Sales {
		sales = append(sales, FromTransaction(t))
	}
	return &OverviewResponse{
		Purchases:      purchases,
		Sales:          sales,
		TotalPurchased: o.TotalPurchased,
		TotalSold:      o.TotalSold,
	}
}

// FromCountry converts a country reference entry to an API response.
func FromCountry(c backend.Country) CountryResponse {
	return CountryResponse{Name: c.Name, Code: c.Code, Flag: c.Flag}
}
