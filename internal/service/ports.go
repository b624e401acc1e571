package service

import (
	"context"

	"github.com/brocantio/checkout/internal/backend"
	"github.com/brocantio/checkout/internal/domain/product"
	"github.com/brocantio/checkout/internal/domain/transaction"
)

// ProductFetcher reads product state from the backend of record.
type ProductFetcher interface {
	FetchProduct(ctx context.Context, id, credential string) (*product.Product, error)
}

// TransactionSubmitter performs the single transaction-creation call.
type TransactionSubmitter interface {
	SubmitTransaction(ctx context.Context, req *transaction.Request, credential string) (string, error)
}

// TransactionLister fetches a user's transaction history.
type TransactionLister interface {
	ListTransactions(ctx context.Context, filter backend.ListFilter, credential string) ([]transaction.Transaction, error)
}

// CountrySource provides the shipping form's country reference list.
type CountrySource interface {
	Countries(ctx context.Context) []backend.Country
}

// Notifier is the external notification collaborator: user-facing notices
// about checkout outcomes. Implementations must not block.
type Notifier interface {
	Success(ctx context.Context, userID, message, description string)
	Error(ctx context.Context, userID, message, description string)
}
