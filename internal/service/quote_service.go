package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rmoralez/pos-sub000/internal/model"
	"github.com/rmoralez/pos-sub000/internal/pricing"
	"github.com/rmoralez/pos-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// QuoteInput mirrors SaleInput without payments: a quote commits no money
// and no stock.
type QuoteInput struct {
	TenantID      uuid.UUID
	LocationID    uuid.UUID
	CustomerID    *uuid.UUID
	UserID        uuid.UUID
	Items         []SaleItemInput
	DiscountType  string
	DiscountValue decimal.Decimal
	ValidUntil    *time.Time
}

// ConvertInput carries what a conversion adds on top of the stored quote.
type ConvertInput struct {
	RegisterID uuid.UUID
	UserID     uuid.UUID
	Payments   []SalePaymentInput
}

// quoteTransitions lists the allowed manual status changes. CONVERTED is
// only reachable through Convert.
var quoteTransitions = map[string][]string{
	model.QuoteStatusDraft:    {model.QuoteStatusSent, model.QuoteStatusRejected},
	model.QuoteStatusSent:     {model.QuoteStatusApproved, model.QuoteStatusRejected},
	model.QuoteStatusApproved: {model.QuoteStatusRejected},
}

// QuoteService manages priced offers. Quotes reserve nothing: stock and
// payments are only checked at conversion time, and the stored quote prices
// are honored verbatim even if the catalog moved since.
type QuoteService struct {
	quotes   repository.QuoteRepository
	products repository.ProductRepository
	sales    *SaleService
}

func NewQuoteService(quotes repository.QuoteRepository, products repository.ProductRepository, sales *SaleService) *QuoteService {
	return &QuoteService{quotes: quotes, products: products, sales: sales}
}

// CreateQuote prices the items from the catalog and stores the offer as
// DRAFT with the next quote number.
func (s *QuoteService) CreateQuote(ctx context.Context, in QuoteInput) (*model.Quote, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("quote requires at least one item")
	}

	items, totals, err := s.priceItems(ctx, in.TenantID, in.Items, in.DiscountType, in.DiscountValue)
	if err != nil {
		return nil, err
	}

	quote := &model.Quote{
		TenantID:       in.TenantID,
		LocationID:     in.LocationID,
		CustomerID:     in.CustomerID,
		UserID:         in.UserID,
		Subtotal:       totals.Subtotal,
		TaxAmount:      totals.TaxAmount,
		DiscountType:   optionalDiscountType(in.DiscountType),
		DiscountValue:  in.DiscountValue,
		DiscountAmount: totals.DiscountAmount,
		Total:          totals.Total,
		Status:         model.QuoteStatusDraft,
		ValidUntil:     in.ValidUntil,
		Items:          items,
	}

	err = runTx(ctx, s.quotes.DB(), func(tx *gorm.DB) error {
		number, err := s.quotes.NextNumberTx(tx, in.TenantID)
		if err != nil {
			return fmt.Errorf("assigning quote number: %w", err)
		}
		quote.Number = number
		return s.quotes.CreateTx(tx, quote)
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// UpdateQuote replaces the item set and reprices the whole document. Only
// DRAFT and SENT quotes are editable.
func (s *QuoteService) UpdateQuote(ctx context.Context, tenantID, quoteID uuid.UUID, in QuoteInput) (*model.Quote, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("quote requires at least one item")
	}

	items, totals, err := s.priceItems(ctx, tenantID, in.Items, in.DiscountType, in.DiscountValue)
	if err != nil {
		return nil, err
	}

	var quote *model.Quote
	err = runTx(ctx, s.quotes.DB(), func(tx *gorm.DB) error {
		q, err := s.quotes.FindForUpdateTx(tx, quoteID)
		if err != nil {
			return err
		}
		if q.TenantID != tenantID {
			return gorm.ErrRecordNotFound
		}
		if q.Status != model.QuoteStatusDraft && q.Status != model.QuoteStatusSent {
			return fmt.Errorf("quote %s is %s and can no longer be edited", q.Number, q.Status)
		}

		q.Subtotal = totals.Subtotal
		q.TaxAmount = totals.TaxAmount
		q.DiscountType = optionalDiscountType(in.DiscountType)
		q.DiscountValue = in.DiscountValue
		q.DiscountAmount = totals.DiscountAmount
		q.Total = totals.Total
		q.ValidUntil = in.ValidUntil

		if err := s.quotes.ReplaceItemsTx(tx, q.ID, items); err != nil {
			return fmt.Errorf("replacing quote items: %w", err)
		}
		if err := s.quotes.SaveTx(tx, q); err != nil {
			return fmt.Errorf("saving quote: %w", err)
		}
		q.Items = items
		quote = q
		return nil
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// UpdateStatus applies a manual transition: DRAFT to SENT, SENT to APPROVED
// or REJECTED, APPROVED back to REJECTED.
func (s *QuoteService) UpdateStatus(ctx context.Context, tenantID, quoteID uuid.UUID, status string) (*model.Quote, error) {
	var quote *model.Quote
	err := runTx(ctx, s.quotes.DB(), func(tx *gorm.DB) error {
		q, err := s.quotes.FindForUpdateTx(tx, quoteID)
		if err != nil {
			return err
		}
		if q.TenantID != tenantID {
			return gorm.ErrRecordNotFound
		}
		if !transitionAllowed(q.Status, status) {
			return fmt.Errorf("quote %s cannot move from %s to %s", q.Number, q.Status, status)
		}
		q.Status = status
		if err := s.quotes.SaveTx(tx, q); err != nil {
			return err
		}
		quote = q
		return nil
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// quoteConvertible reports whether a quote in the given status may still be
// settled into a sale.
func quoteConvertible(status string) bool {
	switch status {
	case model.QuoteStatusDraft, model.QuoteStatusSent, model.QuoteStatusApproved:
		return true
	}
	return false
}

func transitionAllowed(from, to string) bool {
	for _, allowed := range quoteTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Convert settles a quote into a sale. Any quote still in the pipeline
// (DRAFT, SENT or APPROVED) converts; REJECTED and CONVERTED do not. The
// quote's stored prices and totals flow into the sale unchanged; stock
// availability and payments are validated now, at settlement. On success the
// quote is CONVERTED and both documents backlink each other.
func (s *QuoteService) Convert(ctx context.Context, tenantID, quoteID uuid.UUID, in ConvertInput) (*model.Sale, error) {
	if len(in.Payments) == 0 {
		return nil, fmt.Errorf("conversion requires at least one payment")
	}

	// Payments are validated against the stored total before opening the
	// settlement transaction.
	preview, err := s.quotes.FindByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if preview.TenantID != tenantID {
		return nil, gorm.ErrRecordNotFound
	}

	payments := make([]model.SalePayment, len(in.Payments))
	for i, p := range in.Payments {
		payments[i] = model.SalePayment{Method: p.Method, Amount: p.Amount, Reference: p.Reference}
	}
	if err := s.sales.reconciler.Validate(preview.Total, payments); err != nil {
		return nil, err
	}

	sale := &model.Sale{
		TenantID:     tenantID,
		RegisterID:   in.RegisterID,
		UserID:       in.UserID,
		Status:       model.SaleStatusCompleted,
		FiscalStatus: model.FiscalStatusPending,
		Payments:     payments,
	}

	customer, err := s.resolveQuoteCustomer(ctx, preview, sale)
	if err != nil {
		return nil, err
	}

	err = runTx(ctx, s.quotes.DB(), func(tx *gorm.DB) error {
		quote, err := s.quotes.FindForUpdateTx(tx, quoteID)
		if err != nil {
			return err
		}
		if !quoteConvertible(quote.Status) {
			return fmt.Errorf("quote %s is %s and cannot be converted", quote.Number, quote.Status)
		}
		if quote.ValidUntil != nil && quote.ValidUntil.Before(time.Now()) {
			return fmt.Errorf("quote %s expired on %s", quote.Number, quote.ValidUntil.Format("2006-01-02"))
		}
		// The pre-transaction check read an unlocked row; the totals that
		// count are the ones under lock here.
		if err := s.sales.reconciler.Validate(quote.Total, payments); err != nil {
			return err
		}

		sale.LocationID = quote.LocationID
		sale.CustomerID = quote.CustomerID
		sale.QuoteID = &quote.ID
		sale.Subtotal = quote.Subtotal
		sale.TaxAmount = quote.TaxAmount
		sale.DiscountType = quote.DiscountType
		sale.DiscountValue = quote.DiscountValue
		sale.DiscountAmount = quote.DiscountAmount
		sale.Total = quote.Total
		sale.Items = make([]model.SaleItem, len(quote.Items))
		for i, qi := range quote.Items {
			sale.Items[i] = model.SaleItem{
				ProductID:      qi.ProductID,
				VariantID:      qi.VariantID,
				Name:           qi.Name,
				Quantity:       qi.Quantity,
				UnitPrice:      qi.UnitPrice,
				TaxRate:        qi.TaxRate,
				DiscountType:   qi.DiscountType,
				DiscountValue:  qi.DiscountValue,
				DiscountAmount: qi.DiscountAmount,
				Subtotal:       qi.Subtotal,
				TaxAmount:      qi.TaxAmount,
				Total:          qi.Total,
			}
		}

		if err := s.sales.settleTx(tx, sale, customer); err != nil {
			return err
		}

		quote.Status = model.QuoteStatusConverted
		quote.SaleID = &sale.ID
		return s.quotes.SaveTx(tx, quote)
	})
	if err != nil {
		return nil, err
	}

	s.sales.enqueueFiscal(ctx, sale)
	return sale, nil
}

func (s *QuoteService) resolveQuoteCustomer(ctx context.Context, quote *model.Quote, sale *model.Sale) (*model.Customer, error) {
	sale.CustomerID = quote.CustomerID
	return s.sales.resolveCustomer(ctx, sale)
}

func (s *QuoteService) priceItems(ctx context.Context, tenantID uuid.UUID, inputs []SaleItemInput, discountType string, discountValue decimal.Decimal) ([]model.QuoteItem, pricing.DocumentTotals, error) {
	lines, err := priceCatalogLines(ctx, s.products, tenantID, inputs)
	if err != nil {
		return nil, pricing.DocumentTotals{}, err
	}
	totals, err := pricing.ComputeDocument(lineResults(lines), discountType, discountValue)
	if err != nil {
		return nil, pricing.DocumentTotals{}, err
	}
	items := make([]model.QuoteItem, len(lines))
	for i, l := range lines {
		items[i] = model.QuoteItem{
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
	return items, totals, nil
}

func (s *QuoteService) GetQuote(ctx context.Context, tenantID, id uuid.UUID) (*model.Quote, error) {
	quote, err := s.quotes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if quote.TenantID != tenantID {
		return nil, gorm.ErrRecordNotFound
	}
	return quote, nil
}

func (s *QuoteService) ListQuotes(ctx context.Context, filter repository.QuoteFilter) ([]model.Quote, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 200 {
		filter.Limit = 50
	}
	return s.quotes.List(ctx, filter)
}
