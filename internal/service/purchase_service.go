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

// PurchaseItemInput is one ordered line. UnitCost overrides the catalog cost
// when set; costs are tax inclusive like sale prices.
type PurchaseItemInput struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Quantity  int
	UnitCost  *decimal.Decimal
}

// PurchaseInput creates a supplier order.
type PurchaseInput struct {
	TenantID   uuid.UUID
	SupplierID uuid.UUID
	LocationID uuid.UUID
	UserID     uuid.UUID
	Items      []PurchaseItemInput
}

// PurchaseService manages supplier orders. Receiving an order adds stock
// through the same movement-logged path sales remove it, and raises the
// supplier invoice that treasury later settles.
type PurchaseService struct {
	orders    repository.PurchaseOrderRepository
	suppliers repository.SupplierRepository
	products  repository.ProductRepository
	stock     *StockService
}

func NewPurchaseService(
	orders repository.PurchaseOrderRepository,
	suppliers repository.SupplierRepository,
	products repository.ProductRepository,
	stock *StockService,
) *PurchaseService {
	return &PurchaseService{orders: orders, suppliers: suppliers, products: products, stock: stock}
}

// CreateOrder prices the lines from the catalog cost (or the given
// override) and stores the order as DRAFT.
func (s *PurchaseService) CreateOrder(ctx context.Context, in PurchaseInput) (*model.PurchaseOrder, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("purchase order requires at least one item")
	}

	supplier, err := s.suppliers.FindByID(ctx, in.SupplierID)
	if err != nil {
		return nil, fmt.Errorf("loading supplier: %w", err)
	}
	if supplier.TenantID != in.TenantID {
		return nil, gorm.ErrRecordNotFound
	}

	items := make([]model.PurchaseOrderItem, 0, len(in.Items))
	results := make([]pricing.LineResult, 0, len(in.Items))
	for _, it := range in.Items {
		product, err := s.products.FindByID(ctx, it.ProductID)
		if err != nil {
			return nil, fmt.Errorf("loading product %s: %w", it.ProductID, err)
		}
		if product.TenantID != in.TenantID {
			return nil, fmt.Errorf("product %s not found", it.ProductID)
		}

		name := product.Name
		if it.VariantID != nil {
			variant, err := s.products.FindVariantByID(ctx, *it.VariantID)
			if err != nil {
				return nil, fmt.Errorf("loading variant %s: %w", *it.VariantID, err)
			}
			if variant.ProductID != product.ID {
				return nil, fmt.Errorf("variant %s does not belong to product %s", *it.VariantID, product.Name)
			}
			name = fmt.Sprintf("%s (%s)", product.Name, variant.Name)
		}

		cost := product.CostPrice
		if it.UnitCost != nil {
			cost = *it.UnitCost
		}

		result, err := pricing.ComputeLine(pricing.Line{
			Quantity:  it.Quantity,
			UnitPrice: cost,
			TaxRate:   product.TaxRate,
		})
		if err != nil {
			return nil, fmt.Errorf("pricing %s: %w", name, err)
		}

		items = append(items, model.PurchaseOrderItem{
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Name:      name,
			Quantity:  it.Quantity,
			UnitCost:  cost,
			TaxRate:   product.TaxRate,
			Subtotal:  result.Subtotal,
			TaxAmount: result.TaxAmount,
			Total:     result.Total,
		})
		results = append(results, result)
	}

	totals, err := pricing.ComputeDocument(results, "", decimal.Zero)
	if err != nil {
		return nil, err
	}

	order := &model.PurchaseOrder{
		TenantID:   in.TenantID,
		SupplierID: in.SupplierID,
		LocationID: in.LocationID,
		UserID:     in.UserID,
		Subtotal:   totals.Subtotal,
		TaxAmount:  totals.TaxAmount,
		Total:      totals.Total,
		Status:     model.PurchaseStatusDraft,
		Items:      items,
	}

	err = runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		number, err := s.orders.NextNumberTx(tx, in.TenantID)
		if err != nil {
			return fmt.Errorf("assigning order number: %w", err)
		}
		order.Number = number
		return s.orders.CreateTx(tx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Send marks a draft order as sent to the supplier.
func (s *PurchaseService) Send(ctx context.Context, tenantID, orderID uuid.UUID) (*model.PurchaseOrder, error) {
	return s.updateStatus(ctx, tenantID, orderID, model.PurchaseStatusDraft, model.PurchaseStatusSent)
}

// Cancel drops an order that has not been received.
func (s *PurchaseService) Cancel(ctx context.Context, tenantID, orderID uuid.UUID) (*model.PurchaseOrder, error) {
	var order *model.PurchaseOrder
	err := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		o, err := s.lockOrder(tx, tenantID, orderID)
		if err != nil {
			return err
		}
		if o.Status != model.PurchaseStatusDraft && o.Status != model.PurchaseStatusSent {
			return fmt.Errorf("order %s is %s and cannot be cancelled", o.Number, o.Status)
		}
		o.Status = model.PurchaseStatusCancelled
		if err := s.orders.SaveTx(tx, o); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *PurchaseService) updateStatus(ctx context.Context, tenantID, orderID uuid.UUID, from, to string) (*model.PurchaseOrder, error) {
	var order *model.PurchaseOrder
	err := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		o, err := s.lockOrder(tx, tenantID, orderID)
		if err != nil {
			return err
		}
		if o.Status != from {
			return fmt.Errorf("order %s is %s, expected %s", o.Number, o.Status, from)
		}
		o.Status = to
		if err := s.orders.SaveTx(tx, o); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *PurchaseService) lockOrder(tx *gorm.DB, tenantID, orderID uuid.UUID) (*model.PurchaseOrder, error) {
	order, err := s.orders.FindForUpdateTx(tx, orderID)
	if err != nil {
		return nil, err
	}
	if order.TenantID != tenantID {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

// Receive books the goods into stock and raises the supplier invoice, all in
// one transaction. invoiceNumber is the supplier's own document number.
func (s *PurchaseService) Receive(ctx context.Context, tenantID, orderID uuid.UUID, invoiceNumber string, userID uuid.UUID) (*model.PurchaseOrder, *model.SupplierInvoice, error) {
	if invoiceNumber == "" {
		return nil, nil, fmt.Errorf("supplier invoice number is required")
	}

	var (
		order   *model.PurchaseOrder
		invoice *model.SupplierInvoice
	)
	err := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		o, err := s.lockOrder(tx, tenantID, orderID)
		if err != nil {
			return err
		}
		if o.Status != model.PurchaseStatusSent {
			return fmt.Errorf("order %s is %s, only SENT orders can be received", o.Number, o.Status)
		}

		lines := make([]StockLine, len(o.Items))
		for i, it := range o.Items {
			lines[i] = StockLine{
				ProductID:   it.ProductID,
				VariantID:   it.VariantID,
				LocationID:  o.LocationID,
				ProductName: it.Name,
				Quantity:    it.Quantity,
			}
		}
		reason := fmt.Sprintf("Receipt of order %s", o.Number)
		if err := s.stock.IncrementTx(tx, o.TenantID, lines, model.StockMovementReceipt, &o.ID, reason, userID); err != nil {
			return err
		}

		invoice = &model.SupplierInvoice{
			TenantID:        o.TenantID,
			SupplierID:      o.SupplierID,
			PurchaseOrderID: &o.ID,
			Number:          invoiceNumber,
			Total:           o.Total,
			PaidAmount:      decimal.Zero,
			Status:          model.SupplierInvoicePending,
		}
		if err := s.suppliers.CreateInvoiceTx(tx, invoice); err != nil {
			return fmt.Errorf("raising supplier invoice: %w", err)
		}

		now := time.Now()
		o.Status = model.PurchaseStatusReceived
		o.ReceivedAt = &now
		if err := s.orders.SaveTx(tx, o); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return order, invoice, nil
}

func (s *PurchaseService) GetOrder(ctx context.Context, tenantID, id uuid.UUID) (*model.PurchaseOrder, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.TenantID != tenantID {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (s *PurchaseService) ListOrders(ctx context.Context, filter repository.PurchaseOrderFilter) ([]model.PurchaseOrder, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 200 {
		filter.Limit = 50
	}
	return s.orders.List(ctx, filter)
}

// Suppliers

func (s *PurchaseService) CreateSupplier(ctx context.Context, supplier *model.Supplier) error {
	return s.suppliers.Create(ctx, supplier)
}

func (s *PurchaseService) ListSuppliers(ctx context.Context, tenantID uuid.UUID) ([]model.Supplier, error) {
	return s.suppliers.List(ctx, tenantID)
}

func (s *PurchaseService) ListSupplierInvoices(ctx context.Context, tenantID uuid.UUID, supplierID *uuid.UUID, status string) ([]model.SupplierInvoice, error) {
	return s.suppliers.ListInvoices(ctx, tenantID, supplierID, status)
}
