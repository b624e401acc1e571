package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	domainErrors "github.com/brocantio/checkout/internal/domain/errors"
	"github.com/brocantio/checkout/internal/domain/transaction"
)

// TransactionClient creates and lists transactions against the backend of
// record.
type TransactionClient struct {
	client *Client
}

// NewTransactionClient creates a TransactionClient.
func NewTransactionClient(client *Client) *TransactionClient {
	return &TransactionClient{client: client}
}

type createTransactionResponse struct {
	TransactionID string `json:"transactionId"`
	ID            string `json:"id"`
}

// SubmitTransaction performs exactly one creation call carrying the full
// request body. There is no automatic retry here: retrying a purchase is a
// caller decision.
//
// A non-success response becomes ErrTransactionRejected carrying the
// backend's message list, or the generic ErrSubmissionFailed when the body
// cannot be parsed.
func (t *TransactionClient) SubmitTransaction(ctx context.Context, req *transaction.Request, credential string) (string, error) {
	resp, err := t.client.do(ctx, http.MethodPost, "/transactions", credential, req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domainErrors.ErrSubmissionFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %w", domainErrors.ErrSubmissionFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if msgs := errorMessages(body); msgs != nil {
			return "", domainErrors.NewDomainError(
				"transaction_rejected",
				strings.Join(msgs, "; "),
				domainErrors.ErrTransactionRejected,
			)
		}
		t.client.logger.Warn().
			Int("status", resp.StatusCode).
			Str("product_id", req.ProductID).
			Msg("transaction submission failed with unparseable body")
		return "", domainErrors.ErrSubmissionFailed
	}

	var created createTransactionResponse
	if err := json.Unmarshal(body, &created); err != nil {
		// The purchase went through; only the id is missing.
		return "", nil
	}
	if created.TransactionID != "" {
		return created.TransactionID, nil
	}
	return created.ID, nil
}

// ListFilter restricts a transactions listing to one side of the trade.
type ListFilter struct {
	BuyerID  string
	SellerID string
}

// ListTransactions fetches the caller's transactions from the public listing
// endpoint, filtered by buyer or seller.
func (t *TransactionClient) ListTransactions(ctx context.Context, filter ListFilter, credential string) ([]transaction.Transaction, error) {
	q := url.Values{}
	if filter.BuyerID != "" {
		q.Set("buyerId", filter.BuyerID)
	}
	if filter.SellerID != "" {
		q.Set("sellerId", filter.SellerID)
	}

	resp, err := t.client.do(ctx, http.MethodGet, "/transactions/public?"+q.Encode(), credential, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domainErrors.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domainErrors.NewDomainError(
			"backend_error",
			fmt.Sprintf("transactions listing returned status %d", resp.StatusCode),
			domainErrors.ErrBackendUnavailable,
		)
	}

	var txs []transaction.Transaction
	if err := json.NewDecoder(resp.Body).Decode(&txs); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}
	return txs, nil
}
