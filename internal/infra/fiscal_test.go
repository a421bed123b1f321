package infra

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway serves the three endpoints the client touches and counts token
// requests so the caching behavior is observable.
func fakeGateway(t *testing.T, tokenRequests *int64, authorize http.HandlerFunc) *httptest.Server {
	t.Helper()
	if authorize == nil {
		authorize = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/auth/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(tokenRequests, 1)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"token":      "tok-123",
			"expires_in": 3600,
		})
	})
	mux.HandleFunc("/v1/invoices/last", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]int64{"number": 41})
	})
	mux.HandleFunc("/v1/invoices/authorize", authorize)
	return httptest.NewServer(mux)
}

func TestLastAuthorized_UsesCachedToken(t *testing.T) {
	var tokenRequests int64
	srv := fakeGateway(t, &tokenRequests, nil)
	defer srv.Close()

	client := NewFiscalClient(srv.URL, "20-12345678-9")

	for i := 0; i < 3; i++ {
		n, err := client.LastAuthorized(context.Background(), 1, "invoice_b")
		require.NoError(t, err)
		assert.EqualValues(t, 41, n)
	}
	// One token fetch serves all three calls.
	assert.EqualValues(t, 1, atomic.LoadInt64(&tokenRequests))
}

func TestAuthorize_Approved(t *testing.T) {
	var tokenRequests int64
	var got AuthorizeRequest
	srv := fakeGateway(t, &tokenRequests, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(AuthorizeResponse{
			AuthCode:   "71234567890123",
			AuthExpiry: "2026-09-11",
			Result:     "A",
		})
	})
	defer srv.Close()

	client := NewFiscalClient(srv.URL, "20-12345678-9")
	resp, err := client.Authorize(context.Background(), AuthorizeRequest{
		InvoiceType: "invoice_b",
		PointOfSale: 3,
		Number:      42,
		NetAmount:   100,
		TaxAmount:   21,
		TotalAmount: 121,
		SaleRef:     "SALE-000042",
	})
	require.NoError(t, err)

	assert.Equal(t, "A", resp.Result)
	assert.Equal(t, "71234567890123", resp.AuthCode)
	// The client stamps the issuer on every payload.
	assert.Equal(t, "20-12345678-9", got.IssuerTaxID)
	assert.Equal(t, "SALE-000042", got.SaleRef)
}

func TestAuthorize_RejectionObservations(t *testing.T) {
	var tokenRequests int64
	srv := fakeGateway(t, &tokenRequests, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":"R","observations":[{"code":10015,"message":"invalid receiver tax id"},{"code":10048,"message":"amount mismatch"}]}`))
	})
	defer srv.Close()

	client := NewFiscalClient(srv.URL, "20-12345678-9")
	resp, err := client.Authorize(context.Background(), AuthorizeRequest{InvoiceType: "invoice_a"})
	require.NoError(t, err)

	assert.Equal(t, "R", resp.Result)
	assert.Equal(t, "[10015] invalid receiver tax id; [10048] amount mismatch", resp.RejectionMessage())
}

func TestRejectionMessage_Empty(t *testing.T) {
	r := &AuthorizeResponse{Result: "R"}
	assert.Equal(t, "rejected without observations", r.RejectionMessage())
}

func TestAuthorize_GatewayError(t *testing.T) {
	var tokenRequests int64
	srv := fakeGateway(t, &tokenRequests, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	defer srv.Close()

	client := NewFiscalClient(srv.URL, "20-12345678-9")
	_, err := client.Authorize(context.Background(), AuthorizeRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "returned 502")
}

func TestTokenEndpointFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/auth/token", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewFiscalClient(srv.URL, "20-12345678-9")
	_, err := client.LastAuthorized(context.Background(), 1, "invoice_b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token endpoint")
}
