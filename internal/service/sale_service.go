package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rmoralez/pos-sub000/internal/model"
	"github.com/rmoralez/pos-sub000/internal/pricing"
	"github.com/rmoralez/pos-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FiscalDispatcher enqueues background fiscal issuance for a settled sale.
// The worker package provides the redis-backed implementation; a nil
// dispatcher disables issuance (tests, fiscal-less deployments).
type FiscalDispatcher interface {
	EnqueueInvoice(ctx context.Context, saleID uuid.UUID) error
}

// SaleItemInput is one line of a sale as received from the register.
type SaleItemInput struct {
	ProductID     uuid.UUID
	VariantID     *uuid.UUID
	Quantity      int
	DiscountType  string
	DiscountValue decimal.Decimal
}

// SalePaymentInput is one payment entry of a sale.
type SalePaymentInput struct {
	Method    string
	Amount    decimal.Decimal
	Reference *string
}

// SaleInput is everything needed to settle a sale.
type SaleInput struct {
	TenantID      uuid.UUID
	LocationID    uuid.UUID
	RegisterID    uuid.UUID
	CustomerID    *uuid.UUID
	UserID        uuid.UUID
	Items         []SaleItemInput
	Payments      []SalePaymentInput
	DiscountType  string
	DiscountValue decimal.Decimal
}

// SaleService is the settlement orchestrator. A sale settles in a single
// database transaction: document number, stock decrements, the sale row and
// every ledger posting commit together or not at all. Fiscal issuance is
// deliberately outside the transaction; it is enqueued after commit and the
// sale carries its own retry state.
type SaleService struct {
	sales      repository.SaleRepository
	products   repository.ProductRepository
	customers  repository.CustomerRepository
	stock      *StockService
	ledger     *LedgerService
	reconciler *PaymentReconciler
	dispatcher FiscalDispatcher
}

func NewSaleService(
	sales repository.SaleRepository,
	products repository.ProductRepository,
	customers repository.CustomerRepository,
	stock *StockService,
	ledger *LedgerService,
	reconciler *PaymentReconciler,
	dispatcher FiscalDispatcher,
) *SaleService {
	return &SaleService{
		sales:      sales,
		products:   products,
		customers:  customers,
		stock:      stock,
		ledger:     ledger,
		reconciler: reconciler,
		dispatcher: dispatcher,
	}
}

// CreateSale prices the items from the catalog, validates payments against
// the derived total, then settles everything atomically. On success the sale
// is COMPLETED and fiscal issuance is queued.
func (s *SaleService) CreateSale(ctx context.Context, in SaleInput) (*model.Sale, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("sale requires at least one item")
	}
	if len(in.Payments) == 0 {
		return nil, fmt.Errorf("sale requires at least one payment")
	}

	items, results, err := s.priceItems(ctx, in.TenantID, in.Items)
	if err != nil {
		return nil, err
	}
	totals, err := pricing.ComputeDocument(results, in.DiscountType, in.DiscountValue)
	if err != nil {
		return nil, err
	}

	sale := &model.Sale{
		TenantID:      in.TenantID,
		LocationID:    in.LocationID,
		RegisterID:    in.RegisterID,
		CustomerID:    in.CustomerID,
		UserID:        in.UserID,
		Subtotal:      totals.Subtotal,
		TaxAmount:     totals.TaxAmount,
		DiscountValue: in.DiscountValue,
		DiscountAmount: totals.DiscountAmount,
		Total:         totals.Total,
		Status:        model.SaleStatusCompleted,
		FiscalStatus:  model.FiscalStatusPending,
		Items:         items,
	}
	if in.DiscountType != "" {
		dt := in.DiscountType
		sale.DiscountType = &dt
	}
	for _, p := range in.Payments {
		sale.Payments = append(sale.Payments, model.SalePayment{
			Method:    p.Method,
			Amount:    p.Amount,
			Reference: p.Reference,
		})
	}

	if err := s.reconciler.Validate(sale.Total, sale.Payments); err != nil {
		return nil, err
	}

	customer, err := s.resolveCustomer(ctx, sale)
	if err != nil {
		return nil, err
	}

	if err := runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
		return s.settleTx(tx, sale, customer)
	}); err != nil {
		return nil, err
	}

	s.enqueueFiscal(ctx, sale)
	return sale, nil
}

// settleTx runs the settlement steps inside an open transaction. Also used
// by quote conversion, which arrives with a fully priced sale.
func (s *SaleService) settleTx(tx *gorm.DB, sale *model.Sale, customer *model.Customer) error {
	number, err := s.sales.NextNumberTx(tx, sale.TenantID)
	if err != nil {
		return fmt.Errorf("assigning sale number: %w", err)
	}
	sale.Number = number

	lines := make([]StockLine, len(sale.Items))
	for i, it := range sale.Items {
		lines[i] = StockLine{
			ProductID:   it.ProductID,
			VariantID:   it.VariantID,
			LocationID:  sale.LocationID,
			ProductName: it.Name,
			Quantity:    it.Quantity,
		}
	}

	if err := s.sales.CreateTx(tx, sale); err != nil {
		return fmt.Errorf("writing sale: %w", err)
	}
	if err := s.stock.DecrementTx(tx, sale.TenantID, lines, model.StockMovementSale, &sale.ID, "Sale "+sale.Number, sale.UserID); err != nil {
		return err
	}

	var customerAccountID *uuid.UUID
	if customer != nil {
		id := customer.AccountID
		customerAccountID = &id
	}
	return s.reconciler.SettleTx(tx, sale, customerAccountID)
}

// priceItems maps catalog-priced lines onto sale items.
func (s *SaleService) priceItems(ctx context.Context, tenantID uuid.UUID, inputs []SaleItemInput) ([]model.SaleItem, []pricing.LineResult, error) {
	lines, err := priceCatalogLines(ctx, s.products, tenantID, inputs)
	if err != nil {
		return nil, nil, err
	}
	items := make([]model.SaleItem, len(lines))
	for i, l := range lines {
		items[i] = model.SaleItem{
			ProductID:      l.ProductID,
			VariantID:      l.VariantID,
			Name:           l.Name,
			Quantity:       l.Quantity,
			UnitPrice:      l.UnitPrice,
			TaxRate:        l.TaxRate,
			DiscountType:   optionalDiscountType(l.DiscountType),
			DiscountValue:  l.DiscountValue,
			DiscountAmount: l.Result.DiscountAmount,
			Subtotal:       l.Result.Subtotal,
			TaxAmount:      l.Result.TaxAmount,
			Total:          l.Result.Total,
		}
	}
	return items, lineResults(lines), nil
}

// resolveCustomer loads and checks the sale's customer when one is attached.
// A customer is mandatory for account_credit payments.
func (s *SaleService) resolveCustomer(ctx context.Context, sale *model.Sale) (*model.Customer, error) {
	usesAccount := false
	for _, p := range sale.Payments {
		if p.Method == model.PayMethodAccountCredit {
			usesAccount = true
			break
		}
	}

	if sale.CustomerID == nil {
		if usesAccount {
			return nil, fmt.Errorf("account_credit payment requires a customer")
		}
		return nil, nil
	}

	customer, err := s.customers.FindByID(ctx, *sale.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("loading customer: %w", err)
	}
	if usesAccount && !customer.IsActive {
		return nil, fmt.Errorf("customer %s is inactive, account_credit not allowed", customer.Name)
	}
	return customer, nil
}

// enqueueFiscal hands the settled sale to the background issuer. Failure to
// enqueue is not a settlement failure: the retry sweep picks the sale up
// once next_fiscal_retry is set.
func (s *SaleService) enqueueFiscal(ctx context.Context, sale *model.Sale) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.EnqueueInvoice(ctx, sale.ID); err != nil {
		log.Warn().Err(err).Str("sale", sale.Number).Msg("failed to enqueue fiscal issuance, deferring to retry sweep")
		retry := time.Now().Add(time.Minute)
		sale.NextFiscalRetry = &retry
		if uerr := s.sales.UpdateFiscal(ctx, sale); uerr != nil {
			log.Error().Err(uerr).Str("sale", sale.Number).Msg("failed to persist fiscal retry state")
		}
	}
}

// CancelSale reverses a completed sale: stock flows back in through mirror
// movements and every ledger posting of the sale is voided with a
// compensating entry, all in one transaction. The fiscal invoice, if one was
// issued, remains on record; cancellation does not unissue it.
func (s *SaleService) CancelSale(ctx context.Context, tenantID, saleID, userID uuid.UUID, reason string) (*model.Sale, error) {
	sale, err := s.sales.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale.TenantID != tenantID {
		return nil, gorm.ErrRecordNotFound
	}
	if sale.Status != model.SaleStatusCompleted {
		return nil, fmt.Errorf("sale %s is %s, only COMPLETED sales can be cancelled", sale.Number, sale.Status)
	}

	lines := make([]StockLine, len(sale.Items))
	for i, it := range sale.Items {
		lines[i] = StockLine{
			ProductID:   it.ProductID,
			VariantID:   it.VariantID,
			LocationID:  sale.LocationID,
			ProductName: it.Name,
			Quantity:    it.Quantity,
		}
	}

	concept := fmt.Sprintf("Cancellation of sale %s", sale.Number)
	if reason != "" {
		concept = fmt.Sprintf("%s: %s", concept, reason)
	}

	err = runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
		if err := s.sales.UpdateStatusTx(tx, sale.ID, model.SaleStatusCancelled); err != nil {
			return fmt.Errorf("updating sale status: %w", err)
		}
		if err := s.stock.IncrementTx(tx, sale.TenantID, lines, model.StockMovementCancel, &sale.ID, concept, userID); err != nil {
			return err
		}
		return s.ledger.VoidDocumentTx(tx, sale.ID, model.MovementSaleCancel, concept, userID)
	})
	if err != nil {
		return nil, err
	}

	sale.Status = model.SaleStatusCancelled
	return sale, nil
}

func (s *SaleService) GetSale(ctx context.Context, tenantID, id uuid.UUID) (*model.Sale, error) {
	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale.TenantID != tenantID {
		return nil, gorm.ErrRecordNotFound
	}
	return sale, nil
}

func (s *SaleService) ListSales(ctx context.Context, filter repository.SaleFilter) ([]model.Sale, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 200 {
		filter.Limit = 50
	}
	return s.sales.List(ctx, filter)
}
