package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// FiscalClient talks to the fiscal authority's HTTP gateway. The gateway
// hands out short-lived bearer tokens; the client caches one and refreshes
// ahead of expiry so concurrent workers don't stampede the token endpoint.
type FiscalClient struct {
	baseURL     string
	issuerTaxID string
	httpClient  *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// AuthorizeRequest asks the authority to authorize one invoice.
type AuthorizeRequest struct {
	InvoiceType   string   `json:"invoice_type"` // invoice_a | invoice_b | invoice_c
	PointOfSale   int      `json:"point_of_sale"`
	Number        int64    `json:"number"`
	IssuerTaxID   string   `json:"issuer_tax_id"`
	ReceiverTaxID *string  `json:"receiver_tax_id,omitempty"`
	NetAmount     float64  `json:"net_amount"`
	TaxAmount     float64  `json:"tax_amount"`
	TotalAmount   float64  `json:"total_amount"`
	SaleRef       string   `json:"sale_ref"`
}

// AuthorizeResponse carries the authorization code or the rejection.
type AuthorizeResponse struct {
	AuthCode   string `json:"auth_code"`
	AuthExpiry string `json:"auth_expiry"` // YYYY-MM-DD
	Result     string `json:"result"`      // "A" approved | "R" rejected
	Observations []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"observations"`
}

// RejectionMessage flattens the observations of a rejected authorization.
func (r *AuthorizeResponse) RejectionMessage() string {
	if len(r.Observations) == 0 {
		return "rejected without observations"
	}
	msg := ""
	for i, o := range r.Observations {
		if i > 0 {
			msg += "; "
		}
		msg += fmt.Sprintf("[%d] %s", o.Code, o.Message)
	}
	return msg
}

func NewFiscalClient(baseURL, issuerTaxID string) *FiscalClient {
	return &FiscalClient{
		baseURL:     baseURL,
		issuerTaxID: issuerTaxID,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

// LastAuthorized returns the highest invoice number the authority has on
// record for (point of sale, type). The next invoice is that plus one, which
// makes issuance idempotent across worker crashes.
func (c *FiscalClient) LastAuthorized(ctx context.Context, pointOfSale int, invoiceType string) (int64, error) {
	url := fmt.Sprintf("%s/v1/invoices/last?point_of_sale=%d&invoice_type=%s", c.baseURL, pointOfSale, invoiceType)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("fiscal: create request: %w", err)
	}
	if err := c.authorizeRequest(ctx, req); err != nil {
		return 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fiscal: gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fiscal: gateway returned %d", resp.StatusCode)
	}

	var result struct {
		Number int64 `json:"number"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("fiscal: decode response: %w", err)
	}
	return result.Number, nil
}

// Authorize submits one invoice for authorization.
func (c *FiscalClient) Authorize(ctx context.Context, payload AuthorizeRequest) (*AuthorizeResponse, error) {
	payload.IssuerTaxID = c.issuerTaxID

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("fiscal: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/invoices/authorize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("fiscal: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if err := c.authorizeRequest(ctx, req); err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fiscal: gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fiscal: gateway returned %d", resp.StatusCode)
	}

	var result AuthorizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("fiscal: decode response: %w", err)
	}
	return &result, nil
}

// authorizeRequest attaches a bearer token, fetching a fresh one when the
// cached token is within 30 seconds of expiring.
func (c *FiscalClient) authorizeRequest(ctx context.Context, req *http.Request) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token == "" || time.Until(c.tokenExpiry) < 30*time.Second {
		if err := c.refreshTokenLocked(ctx); err != nil {
			return err
		}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	return nil
}

func (c *FiscalClient) refreshTokenLocked(ctx context.Context) error {
	body, _ := json.Marshal(map[string]string{"issuer_tax_id": c.issuerTaxID})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/auth/token", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("fiscal: create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fiscal: token endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fiscal: token endpoint returned %d", resp.StatusCode)
	}

	var result struct {
		Token     string `json:"token"`
		ExpiresIn int    `json:"expires_in"` // seconds
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("fiscal: decode token response: %w", err)
	}

	c.token = result.Token
	c.tokenExpiry = time.Now().Add(time.Duration(result.ExpiresIn) * time.Second)
	return nil
}
