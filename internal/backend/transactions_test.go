package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domainErrors "github.com/brocantio/checkout/internal/domain/errors"
	"github.com/brocantio/checkout/internal/domain/transaction"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransactionClient(t *testing.T, handler http.HandlerFunc) *TransactionClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewTransactionClient(NewClient(srv.URL, 5*time.Second, zerolog.Nop()))
}

func testRequest() *transaction.Request {
	return &transaction.Request{
		ProductID: "p1",
		BuyerID:   "u2",
		ShippingDetails: transaction.ShippingDetails{
			Address:    "1 Main St",
			PostalCode: "00001",
			Country:    "France",
		},
		CardDetails: transaction.CardDetails{
			Number: "1111222233334444",
			Expiry: "1299",
			CVV:    "123",
		},
	}
}

func TestSubmitTransaction_Success(t *testing.T) {
	var received transaction.Request
	var gotCredential string

	client := newTestTransactionClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transactions", r.URL.Path)
		gotCredential = r.Header.Get("apikey")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"transactionId": "t1"})
	})

	id, err := client.SubmitTransaction(context.Background(), testRequest(), "secret-key")
	require.NoError(t, err)
	assert.Equal(t, "t1", id)
	assert.Equal(t, "secret-key", gotCredential)

	// The full payload made it over the wire.
	assert.Equal(t, "p1", received.ProductID)
	assert.Equal(t, "u2", received.BuyerID)
	assert.Equal(t, "France", received.ShippingDetails.Country)
	assert.Equal(t, "1111222233334444", received.CardDetails.Number)
}

func TestSubmitTransaction_RejectionWithMessages(t *testing.T) {
	client := newTestTransactionClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"errors": []map[string]string{
				{"msg": "product is no longer available"},
				{"msg": "buyer mismatch"},
			},
		})
	})

	_, err := client.SubmitTransaction(context.Background(), testRequest(), "k")
	assert.ErrorIs(t, err, domainErrors.ErrTransactionRejected)
	assert.Contains(t, err.Error(), "product is no longer available")
	assert.Contains(t, err.Error(), "buyer mismatch")
}

func TestSubmitTransaction_UnparseableBodyFallsBackToGenericError(t *testing.T) {
	client := newTestTransactionClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("<html>boom</html>"))
	})

	_, err := client.SubmitTransaction(context.Background(), testRequest(), "k")
	assert.ErrorIs(t, err, domainErrors.ErrSubmissionFailed)
	assert.NotErrorIs(t, err, domainErrors.ErrTransactionRejected)
}

func TestSubmitTransaction_NetworkError(t *testing.T) {
	client := NewTransactionClient(NewClient("http://127.0.0.1:1", time.Second, zerolog.Nop()))

	_, err := client.SubmitTransaction(context.Background(), testRequest(), "k")
	assert.ErrorIs(t, err, domainErrors.ErrSubmissionFailed)
}

func TestListTransactions_ByBuyer(t *testing.T) {
	client := newTestTransactionClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transactions/public", r.URL.Path)
		assert.Equal(t, "u2", r.URL.Query().Get("buyerId"))
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": "t1", "productId": "p1", "buyerId": "u2", "sellerId": "u1", "title": "Lamp", "price": 20.0},
		})
	})

	txs, err := client.ListTransactions(context.Background(), ListFilter{BuyerID: "u2"}, "k")
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "t1", txs[0].ID)
	assert.Equal(t, "Lamp", txs[0].Title)
	assert.Equal(t, 20.0, txs[0].Price)
}

func TestListTransactions_BackendError(t *testing.T) {
	client := newTestTransactionClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.ListTransactions(context.Background(), ListFilter{SellerID: "u1"}, "k")
	assert.ErrorIs(t, err, domainErrors.ErrBackendUnavailable)
}
