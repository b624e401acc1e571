package service

import (
	"context"

	"github.com/brocantio/checkout/internal/backend"
	"github.com/brocantio/checkout/internal/domain/transaction"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// TransactionService serves the "my transactions" view: the purchases and
// sales of the current user, with running totals.
type TransactionService struct {
	lister TransactionLister
	logger zerolog.Logger
}

// NewTransactionService creates a TransactionService.
func NewTransactionService(lister TransactionLister, logger zerolog.Logger) *TransactionService {
	return &TransactionService{
		lister: lister,
		logger: logger.With().Str("component", "transactions").Logger(),
	}
}

// Overview is both sides of a user's trading history.
type Overview struct {
	Purchases      []transaction.Transaction
	Sales          []transaction.Transaction
	TotalPurchased float64
	TotalSold      float64
}

// Overview fetches purchases and sales concurrently.
func (s *TransactionService) Overview(ctx context.Context, userID, credential string) (*Overview, error) {
	var purchases, sales []transaction.Transaction

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		purchases, err = s.lister.ListTransactions(gctx, backend.ListFilter{BuyerID: userID}, credential)
		return err
	})
	g.Go(func() error {
		var err error
		sales, err = s.lister.ListTransactions(gctx, backend.ListFilter{SellerID: userID}, credential)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	overview := &Overview{Purchases: purchases, Sales: sales}
	for _, tx := range purchases {
		overview.TotalPurchased += tx.Price
	}
	for _, tx := range sales {
		overview.TotalSold += tx.Price
	}
	return overview, nil
}
