package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nazrin/tadikahub/internal/app/models"
	"github.com/nazrin/tadikahub/internal/pkg/apperrors"
)

const apiRequestTimeout = 15 * time.Second

// APIProvider reads invoice amounts from the remote finance HTTP API.
type APIProvider struct {
	baseURL     string
	bearerToken string
	client      *http.Client
}

// NewAPIProvider creates an APIProvider for the given base URL.
func NewAPIProvider(baseURL, bearerToken string) *APIProvider {
	return &APIProvider{
		baseURL:     strings.TrimRight(baseURL, "/"),
		bearerToken: bearerToken,
		client:      &http.Client{Timeout: apiRequestTimeout},
	}
}

// apiAmountPayload is the remote API's response shape.
type apiAmountPayload struct {
	Records []models.InvoiceAmountRecord `json:"records"`
}

// GetAmountByInvoiceNumber fetches a single invoice snapshot.
func (p *APIProvider) GetAmountByInvoiceNumber(ctx context.Context, invoiceNumber string) (*models.InvoiceAmountRecord, error) {
	records, err := p.GetBatchAmounts(ctx, []string{invoiceNumber})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperrors.ErrInvoiceNotFound
	}
	return &records[0], nil
}

// GetBatchAmounts fetches snapshots for the given invoice numbers in one call.
func (p *APIProvider) GetBatchAmounts(ctx context.Context, invoiceNumbers []string) ([]models.InvoiceAmountRecord, error) {
	endpoint := fmt.Sprintf("%s/invoices/amounts?numbers=%s",
		p.baseURL, url.QueryEscape(strings.Join(invoiceNumbers, ",")))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build amounts request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+p.bearerToken)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("amounts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: amounts API returned status %d", apperrors.ErrExternalUnavailable, resp.StatusCode)
	}

	var payload apiAmountPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode amounts response: %w", err)
	}

	return payload.Records, nil
}
