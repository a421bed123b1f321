package service

import (
	"context"
	"fmt"

	"github.com/rmoralez/pos-sub000/internal/model"
	"github.com/rmoralez/pos-sub000/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvoiceService exposes issued fiscal invoices and lets the back office
// force a retry for sales whose issuance failed.
type InvoiceService struct {
	invoices   repository.InvoiceRepository
	sales      repository.SaleRepository
	dispatcher FiscalDispatcher
}

func NewInvoiceService(invoices repository.InvoiceRepository, sales repository.SaleRepository, dispatcher FiscalDispatcher) *InvoiceService {
	return &InvoiceService{invoices: invoices, sales: sales, dispatcher: dispatcher}
}

// GetBySale returns the invoice of a sale. gorm.ErrRecordNotFound means the
// sale has no invoice yet, which is a legitimate state while issuance is
// pending or skipped.
func (s *InvoiceService) GetBySale(ctx context.Context, tenantID, saleID uuid.UUID) (*model.Invoice, error) {
	invoice, err := s.invoices.FindBySaleID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if invoice.TenantID != tenantID {
		return nil, gorm.ErrRecordNotFound
	}
	return invoice, nil
}

// Retry re-enqueues fiscal issuance for a sale that is not issued yet.
func (s *InvoiceService) Retry(ctx context.Context, tenantID, saleID uuid.UUID) error {
	sale, err := s.sales.FindByID(ctx, saleID)
	if err != nil {
		return err
	}
	if sale.TenantID != tenantID {
		return gorm.ErrRecordNotFound
	}
	if sale.FiscalStatus == model.FiscalStatusIssued {
		return fmt.Errorf("sale %s already has an issued invoice", sale.Number)
	}
	if sale.Status != model.SaleStatusCompleted {
		return fmt.Errorf("sale %s is %s, only COMPLETED sales are invoiced", sale.Number, sale.Status)
	}

	sale.FiscalStatus = model.FiscalStatusPending
	sale.NextFiscalRetry = nil
	sale.LastFiscalError = nil
	if err := s.sales.UpdateFiscal(ctx, sale); err != nil {
		return err
	}
	if s.dispatcher == nil {
		return fmt.Errorf("fiscal issuance is not configured")
	}
	return s.dispatcher.EnqueueInvoice(ctx, sale.ID)
}
