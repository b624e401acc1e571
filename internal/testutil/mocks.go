package testutil

import (
	"context"
	"sync"

	"github.com/brocantio/checkout/internal/backend"
	domainErrors "github.com/brocantio/checkout/internal/domain/errors"
	"github.com/brocantio/checkout/internal/domain/product"
	"github.com/brocantio/checkout/internal/domain/transaction"
)

// --- Product Fetcher Mock ---

// MockProductFetcher is a mock implementation of service.ProductFetcher.
type MockProductFetcher struct {
	mu       sync.Mutex
	products map[string]*product.Product
	calls    int

	FetchProductFunc func(ctx context.Context, id, credential string) (*product.Product, error)
}

func NewMockProductFetcher() *MockProductFetcher {
	return &MockProductFetcher{products: make(map[string]*product.Product)}
}

func (m *MockProductFetcher) AddProduct(p *product.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
}

func (m *MockProductFetcher) FetchCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockProductFetcher) FetchProduct(ctx context.Context, id, credential string) (*product.Product, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.FetchProductFunc != nil {
		return m.FetchProductFunc(ctx, id, credential)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, domainErrors.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

// --- Transaction Submitter Mock ---

// MockTransactionSubmitter is a mock implementation of
// service.TransactionSubmitter.
type MockTransactionSubmitter struct {
	mu       sync.Mutex
	requests []*transaction.Request

	SubmitTransactionFunc func(ctx context.Context, req *transaction.Request, credential string) (string, error)
}

func (m *MockTransactionSubmitter) SubmitTransaction(ctx context.Context, req *transaction.Request, credential string) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.SubmitTransactionFunc != nil {
		return m.SubmitTransactionFunc(ctx, req, credential)
	}
	return "tx-1", nil
}

func (m *MockTransactionSubmitter) Requests() []*transaction.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*transaction.Request(nil), m.requests...)
}

// --- Transaction Lister Mock ---

// MockTransactionLister is a mock implementation of service.TransactionLister.
type MockTransactionLister struct {
	Purchases []transaction.Transaction
	Sales     []transaction.Transaction

	ListTransactionsFunc func(ctx context.Context, filter backend.ListFilter, credential string) ([]transaction.Transaction, error)
}

func (m *MockTransactionLister) ListTransactions(ctx context.Context, filter backend.ListFilter, credential string) ([]transaction.Transaction, error) {
	if m.ListTransactionsFunc != nil {
		return m.ListTransactionsFunc(ctx, filter, credential)
	}
	if filter.BuyerID != "" {
		return m.Purchases, nil
	}
	return m.Sales, nil
}

// --- Country Source Mock ---

// MockCountrySource is a mock implementation of service.CountrySource.
type MockCountrySource struct {
	List []backend.Country
}

func (m *MockCountrySource) Countries(ctx context.Context) []backend.Country {
	return m.List
}

// --- Notifier Mock ---

// Notice records one notification for assertions.
type Notice struct {
	UserID      string
	Message     string
	Description string
}

// MockNotifier is a mock implementation of service.Notifier.
type MockNotifier struct {
	mu        sync.Mutex
	Successes []Notice
	Errors    []Notice
}

func (m *MockNotifier) Success(_ context.Context, userID, message, description string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Successes = append(m.Successes, Notice{UserID: userID, Message: message, Description: description})
}

func (m *MockNotifier) Error(_ context.Context, userID, message, description string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors = append(m.Errors, Notice{UserID: userID, Message: message, Description: description})
}

func (m *MockNotifier) LastError() *Notice {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Errors) == 0 {
		return nil
	}
	n := m.Errors[len(m.Errors)-1]
	return &n
}
