package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	domainErrors "github.com/brocantio/checkout/internal/domain/errors"
	"github.com/brocantio/checkout/internal/domain/product"
	"github.com/sony/gobreaker/v2"
)

// ProductClient reads product state from the backend of record. It sits on
// the open path of every checkout session, so reads go through a circuit
// breaker.
type ProductClient struct {
	client  *Client
	breaker *gobreaker.CircuitBreaker[*product.Product]
}

// NewProductClient wraps the shared backend client with a product breaker.
func NewProductClient(client *Client) *ProductClient {
	return &ProductClient{
		client: client,
		breaker: gobreaker.NewCircuitBreaker[*product.Product](gobreaker.Settings{
			Name:        "backend-products",
			MaxRequests: 5,
			Interval:    60 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 10 && failureRatio >= 0.6
			},
		}),
	}
}

// FetchProduct looks up a product by id, forwarding the caller's credential.
func (p *ProductClient) FetchProduct(ctx context.Context, id, credential string) (*product.Product, error) {
	prod, err := p.breaker.Execute(func() (*product.Product, error) {
		return p.fetch(ctx, id, credential)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %w", domainErrors.ErrBackendUnavailable, err)
		}
		return nil, err
	}
	return prod, nil
}

func (p *ProductClient) fetch(ctx context.Context, id, credential string) (*product.Product, error) {
	resp, err := p.client.do(ctx, http.MethodGet, "/products/"+id, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domainErrors.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domainErrors.ErrProductNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, domainErrors.NewDomainError(
			"backend_error",
			fmt.Sprintf("product lookup returned status %d", resp.StatusCode),
			domainErrors.ErrBackendUnavailable,
		)
	}

	var prod product.Product
	if err := json.NewDecoder(resp.Body).Decode(&prod); err != nil {
		return nil, fmt.Errorf("decode product: %w", err)
	}
	if err := prod.Validate(); err != nil {
		return nil, fmt.Errorf("backend returned invalid product %q: %w", id, err)
	}
	return &prod, nil
}
