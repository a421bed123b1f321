package service

import (
	"context"
	"testing"
	"time"

	"github.com/rmoralez/pos-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubInvoiceRepo struct {
	invoices map[uuid.UUID]*model.Invoice
}

func newStubInvoiceRepo() *stubInvoiceRepo {
	return &stubInvoiceRepo{invoices: make(map[uuid.UUID]*model.Invoice)}
}

func (r *stubInvoiceRepo) Create(_ context.Context, inv *model.Invoice) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	r.invoices[inv.ID] = inv
	return nil
}

func (r *stubInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return inv, nil
}

func (r *stubInvoiceRepo) FindBySaleID(_ context.Context, saleID uuid.UUID) (*model.Invoice, error) {
	for _, inv := range r.invoices {
		if inv.SaleID == saleID {
			return inv, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubInvoiceRepo) Update(_ context.Context, inv *model.Invoice) error {
	r.invoices[inv.ID] = inv
	return nil
}

func TestGetBySale_ReturnsIssuedInvoice(t *testing.T) {
	invoices := newStubInvoiceRepo()
	sales := newStubSaleRepo()
	svc := NewInvoiceService(invoices, sales, &stubDispatcher{})

	tenantID := uuid.New()
	saleID := uuid.New()
	require.NoError(t, invoices.Create(context.Background(), &model.Invoice{
		TenantID:    tenantID,
		SaleID:      saleID,
		Type:        model.InvoiceTypeB,
		Number:      42,
		PointOfSale: 3,
		AuthCode:    "71234567890123",
	}))

	inv, err := svc.GetBySale(context.Background(), tenantID, saleID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), inv.Number)
	assert.Equal(t, model.InvoiceTypeB, inv.Type)

	_, err = svc.GetBySale(context.Background(), uuid.New(), saleID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRetry_ReenqueuesFailedSale(t *testing.T) {
	invoices := newStubInvoiceRepo()
	sales := newStubSaleRepo()
	dispatcher := &stubDispatcher{}
	svc := NewInvoiceService(invoices, sales, dispatcher)

	tenantID := uuid.New()
	retryAt := time.Now().Add(10 * time.Minute)
	lastErr := "gateway timeout"
	sale := &model.Sale{
		ID:              uuid.New(),
		TenantID:        tenantID,
		Number:          "SALE-000007",
		Status:          model.SaleStatusCompleted,
		FiscalStatus:    model.FiscalStatusError,
		FiscalRetries:   3,
		NextFiscalRetry: &retryAt,
		LastFiscalError: &lastErr,
	}
	sales.sales[sale.ID] = sale

	require.NoError(t, svc.Retry(context.Background(), tenantID, sale.ID))

	assert.Equal(t, model.FiscalStatusPending, sale.FiscalStatus)
	assert.Nil(t, sale.NextFiscalRetry)
	assert.Nil(t, sale.LastFiscalError)
	require.Len(t, dispatcher.enqueued, 1)
	assert.Equal(t, sale.ID, dispatcher.enqueued[0])
}

func TestRetry_RejectsIssuedAndCancelledSales(t *testing.T) {
	sales := newStubSaleRepo()
	svc := NewInvoiceService(newStubInvoiceRepo(), sales, &stubDispatcher{})

	tenantID := uuid.New()
	issued := &model.Sale{
		ID:           uuid.New(),
		TenantID:     tenantID,
		Number:       "SALE-000001",
		Status:       model.SaleStatusCompleted,
		FiscalStatus: model.FiscalStatusIssued,
	}
	cancelled := &model.Sale{
		ID:           uuid.New(),
		TenantID:     tenantID,
		Number:       "SALE-000002",
		Status:       model.SaleStatusCancelled,
		FiscalStatus: model.FiscalStatusError,
	}
	sales.sales[issued.ID] = issued
	sales.sales[cancelled.ID] = cancelled

	err := svc.Retry(context.Background(), tenantID, issued.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already has an issued invoice")

	err = svc.Retry(context.Background(), tenantID, cancelled.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only COMPLETED sales")

	err = svc.Retry(context.Background(), uuid.New(), issued.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
