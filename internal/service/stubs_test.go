package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rmoralez/pos-sub000/internal/model"
	"github.com/rmoralez/pos-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory repository stubs. DB() returns nil so runTx executes the body
// without a real transaction; the Tx-suffixed methods ignore their tx
// argument. Rollback semantics are not simulated, which is fine for tests
// that assert either full success or the first failure.

// ── Ledger ───────────────────────────────────────────────────────────────────

type stubLedgerRepo struct {
	accounts  map[uuid.UUID]*model.LedgerAccount
	movements []*model.LedgerMovement
}

func newStubLedgerRepo() *stubLedgerRepo {
	return &stubLedgerRepo{accounts: make(map[uuid.UUID]*model.LedgerAccount)}
}

func (r *stubLedgerRepo) DB() *gorm.DB { return nil }

func (r *stubLedgerRepo) CreateAccount(_ context.Context, a *model.LedgerAccount) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = time.Now()
	r.accounts[a.ID] = a
	return nil
}

func (r *stubLedgerRepo) FindAccountByID(_ context.Context, id uuid.UUID) (*model.LedgerAccount, error) {
	a, ok := r.accounts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (r *stubLedgerRepo) ListAccounts(_ context.Context, tenantID uuid.UUID, kind string) ([]model.LedgerAccount, error) {
	var out []model.LedgerAccount
	for _, a := range r.accounts {
		if a.TenantID == tenantID && (kind == "" || a.Kind == kind) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *stubLedgerRepo) FindAccountForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.LedgerAccount, error) {
	return r.FindAccountByID(context.Background(), id)
}

func (r *stubLedgerRepo) UpdateBalanceTx(_ *gorm.DB, id uuid.UUID, balance decimal.Decimal) error {
	a, ok := r.accounts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.CurrentBalance = balance
	return nil
}

func (r *stubLedgerRepo) CreateMovementTx(_ *gorm.DB, m *model.LedgerMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	cloned := *m
	r.movements = append(r.movements, &cloned)
	return nil
}

func (r *stubLedgerRepo) DeleteMovementTx(_ *gorm.DB, id uuid.UUID) error {
	for i, m := range r.movements {
		if m.ID == id {
			r.movements = append(r.movements[:i], r.movements[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubLedgerRepo) FindMovementsByDocumentTx(_ *gorm.DB, documentID uuid.UUID) ([]model.LedgerMovement, error) {
	var out []model.LedgerMovement
	for _, m := range r.movements {
		if m.DocumentID != nil && *m.DocumentID == documentID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *stubLedgerRepo) ListMovements(_ context.Context, filter repository.LedgerMovementFilter) ([]model.LedgerMovement, int64, error) {
	var out []model.LedgerMovement
	for _, m := range r.movements {
		if m.AccountID == filter.AccountID && (filter.Type == "" || m.Type == filter.Type) {
			out = append(out, *m)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubLedgerRepo) movementsFor(accountID uuid.UUID) []*model.LedgerMovement {
	var out []*model.LedgerMovement
	for _, m := range r.movements {
		if m.AccountID == accountID {
			out = append(out, m)
		}
	}
	return out
}

// ── Stock ────────────────────────────────────────────────────────────────────

type stubStockRepo struct {
	items     map[string]*model.StockItem
	movements []*model.StockMovement
}

func newStubStockRepo() *stubStockRepo {
	return &stubStockRepo{items: make(map[string]*model.StockItem)}
}

func stockKey(tenantID, productID uuid.UUID, variantID *uuid.UUID, locationID uuid.UUID) string {
	v := "-"
	if variantID != nil {
		v = variantID.String()
	}
	return fmt.Sprintf("%s|%s|%s|%s", tenantID, productID, v, locationID)
}

func (r *stubStockRepo) seed(tenantID, productID uuid.UUID, variantID *uuid.UUID, locationID uuid.UUID, qty int) *model.StockItem {
	item := &model.StockItem{
		ID:         uuid.New(),
		TenantID:   tenantID,
		ProductID:  productID,
		VariantID:  variantID,
		LocationID: locationID,
		Quantity:   qty,
	}
	r.items[stockKey(tenantID, productID, variantID, locationID)] = item
	return item
}

func (r *stubStockRepo) DB() *gorm.DB { return nil }

func (r *stubStockRepo) CreateItem(_ context.Context, item *model.StockItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	r.items[stockKey(item.TenantID, item.ProductID, item.VariantID, item.LocationID)] = item
	return nil
}

func (r *stubStockRepo) FindItem(_ context.Context, tenantID, productID uuid.UUID, variantID *uuid.UUID, locationID uuid.UUID) (*model.StockItem, error) {
	item, ok := r.items[stockKey(tenantID, productID, variantID, locationID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return item, nil
}

func (r *stubStockRepo) FindItemForUpdateTx(_ *gorm.DB, tenantID, productID uuid.UUID, variantID *uuid.UUID, locationID uuid.UUID) (*model.StockItem, error) {
	return r.FindItem(context.Background(), tenantID, productID, variantID, locationID)
}

func (r *stubStockRepo) FindOrCreateItemTx(_ *gorm.DB, tenantID, productID uuid.UUID, variantID *uuid.UUID, locationID uuid.UUID) (*model.StockItem, error) {
	if item, err := r.FindItem(context.Background(), tenantID, productID, variantID, locationID); err == nil {
		return item, nil
	}
	item := &model.StockItem{
		ID:         uuid.New(),
		TenantID:   tenantID,
		ProductID:  productID,
		VariantID:  variantID,
		LocationID: locationID,
	}
	r.items[stockKey(tenantID, productID, variantID, locationID)] = item
	return item, nil
}

func (r *stubStockRepo) UpdateQuantityTx(_ *gorm.DB, itemID uuid.UUID, quantity int) error {
	for _, item := range r.items {
		if item.ID == itemID {
			item.Quantity = quantity
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubStockRepo) CreateMovementTx(_ *gorm.DB, m *model.StockMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	cloned := *m
	r.movements = append(r.movements, &cloned)
	return nil
}

func (r *stubStockRepo) LowStock(_ context.Context, tenantID uuid.UUID) ([]model.StockItem, error) {
	var out []model.StockItem
	for _, item := range r.items {
		if item.TenantID == tenantID && item.Quantity <= item.MinQuantity {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *stubStockRepo) ListMovements(_ context.Context, filter repository.StockMovementFilter) ([]model.StockMovement, int64, error) {
	var out []model.StockMovement
	for _, m := range r.movements {
		if m.TenantID == filter.TenantID && (filter.Type == "" || m.Type == filter.Type) {
			out = append(out, *m)
		}
	}
	return out, int64(len(out)), nil
}

// ── Sales ────────────────────────────────────────────────────────────────────

type stubSaleRepo struct {
	sales map[uuid.UUID]*model.Sale
	seq   int
}

func newStubSaleRepo() *stubSaleRepo {
	return &stubSaleRepo{sales: make(map[uuid.UUID]*model.Sale)}
}

func (r *stubSaleRepo) DB() *gorm.DB { return nil }

func (r *stubSaleRepo) CreateTx(_ *gorm.DB, s *model.Sale) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.CreatedAt = time.Now()
	r.sales[s.ID] = s
	return nil
}

func (r *stubSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubSaleRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, status string) error {
	s, ok := r.sales[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.Status = status
	return nil
}

func (r *stubSaleRepo) NextNumberTx(_ *gorm.DB, _ uuid.UUID) (string, error) {
	r.seq++
	return repository.FormatNumber(repository.FamilySale, r.seq), nil
}

func (r *stubSaleRepo) List(_ context.Context, filter repository.SaleFilter) ([]model.Sale, int64, error) {
	var out []model.Sale
	for _, s := range r.sales {
		if s.TenantID == filter.TenantID {
			out = append(out, *s)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubSaleRepo) UpdateFiscal(_ context.Context, s *model.Sale) error {
	stored, ok := r.sales[s.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.FiscalStatus = s.FiscalStatus
	stored.FiscalRetries = s.FiscalRetries
	stored.NextFiscalRetry = s.NextFiscalRetry
	stored.LastFiscalError = s.LastFiscalError
	return nil
}

func (r *stubSaleRepo) ListPendingFiscalRetries(_ context.Context, due time.Time, limit int) ([]model.Sale, error) {
	var out []model.Sale
	for _, s := range r.sales {
		if s.FiscalStatus == model.FiscalStatusPending && s.NextFiscalRetry != nil && !s.NextFiscalRetry.After(due) {
			out = append(out, *s)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// ── Products ─────────────────────────────────────────────────────────────────

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
	variants map[uuid.UUID]*model.ProductVariant
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{
		products: make(map[uuid.UUID]*model.Product),
		variants: make(map[uuid.UUID]*model.ProductVariant),
	}
}

func (r *stubProductRepo) seed(tenantID uuid.UUID, name, price, taxRate string) *model.Product {
	p := &model.Product{
		ID:        uuid.New(),
		TenantID:  tenantID,
		SKU:       name,
		Name:      name,
		UnitPrice: mustDec(price),
		TaxRate:   mustDec(taxRate),
		IsActive:  true,
	}
	r.products[p.ID] = p
	return p
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductRepo) FindVariantByID(_ context.Context, id uuid.UUID) (*model.ProductVariant, error) {
	v, ok := r.variants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (r *stubProductRepo) List(_ context.Context, filter repository.ProductFilter) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.TenantID == filter.TenantID {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.IsActive = false
	return nil
}

// ── Customers ────────────────────────────────────────────────────────────────

type stubCustomerRepo struct {
	customers map[uuid.UUID]*model.Customer
}

func newStubCustomerRepo() *stubCustomerRepo {
	return &stubCustomerRepo{customers: make(map[uuid.UUID]*model.Customer)}
}

func (r *stubCustomerRepo) DB() *gorm.DB { return nil }

func (r *stubCustomerRepo) Create(_ context.Context, c *model.Customer) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.customers[c.ID] = c
	return nil
}

func (r *stubCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubCustomerRepo) List(_ context.Context, tenantID uuid.UUID, includeInactive bool) ([]model.Customer, error) {
	var out []model.Customer
	for _, c := range r.customers {
		if c.TenantID == tenantID && (includeInactive || c.IsActive) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubCustomerRepo) Update(_ context.Context, c *model.Customer) error {
	r.customers[c.ID] = c
	return nil
}

// ── Payment method mappings ──────────────────────────────────────────────────

type stubMethodRepo struct {
	mappings map[string]*model.PaymentMethodMapping
}

func newStubMethodRepo() *stubMethodRepo {
	return &stubMethodRepo{mappings: make(map[string]*model.PaymentMethodMapping)}
}

func (r *stubMethodRepo) Upsert(_ context.Context, m *model.PaymentMethodMapping) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.mappings[m.TenantID.String()+"|"+m.Method] = m
	return nil
}

func (r *stubMethodRepo) FindByMethod(_ context.Context, tenantID uuid.UUID, method string) (*model.PaymentMethodMapping, error) {
	m, ok := r.mappings[tenantID.String()+"|"+method]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m, nil
}

func (r *stubMethodRepo) List(_ context.Context, tenantID uuid.UUID) ([]model.PaymentMethodMapping, error) {
	var out []model.PaymentMethodMapping
	for _, m := range r.mappings {
		if m.TenantID == tenantID {
			out = append(out, *m)
		}
	}
	return out, nil
}

// ── Quotes ───────────────────────────────────────────────────────────────────

type stubQuoteRepo struct {
	quotes map[uuid.UUID]*model.Quote
	seq    int
}

func newStubQuoteRepo() *stubQuoteRepo {
	return &stubQuoteRepo{quotes: make(map[uuid.UUID]*model.Quote)}
}

func (r *stubQuoteRepo) DB() *gorm.DB { return nil }

func (r *stubQuoteRepo) CreateTx(_ *gorm.DB, q *model.Quote) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	q.CreatedAt = time.Now()
	r.quotes[q.ID] = q
	return nil
}

func (r *stubQuoteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Quote, error) {
	q, ok := r.quotes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return q, nil
}

func (r *stubQuoteRepo) FindForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Quote, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubQuoteRepo) SaveTx(_ *gorm.DB, q *model.Quote) error {
	r.quotes[q.ID] = q
	return nil
}

func (r *stubQuoteRepo) ReplaceItemsTx(_ *gorm.DB, quoteID uuid.UUID, items []model.QuoteItem) error {
	q, ok := r.quotes[quoteID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	q.Items = items
	return nil
}

func (r *stubQuoteRepo) NextNumberTx(_ *gorm.DB, _ uuid.UUID) (string, error) {
	r.seq++
	return repository.FormatNumber(repository.FamilyQuote, r.seq), nil
}

func (r *stubQuoteRepo) List(_ context.Context, filter repository.QuoteFilter) ([]model.Quote, int64, error) {
	var out []model.Quote
	for _, q := range r.quotes {
		if q.TenantID == filter.TenantID {
			out = append(out, *q)
		}
	}
	return out, int64(len(out)), nil
}

// ── Suppliers ────────────────────────────────────────────────────────────────

type stubSupplierRepo struct {
	suppliers   map[uuid.UUID]*model.Supplier
	invoices    map[uuid.UUID]*model.SupplierInvoice
	payments    map[uuid.UUID]*model.SupplierPayment
	allocations map[uuid.UUID][]model.PaymentAllocation
}

func newStubSupplierRepo() *stubSupplierRepo {
	return &stubSupplierRepo{
		suppliers:   make(map[uuid.UUID]*model.Supplier),
		invoices:    make(map[uuid.UUID]*model.SupplierInvoice),
		payments:    make(map[uuid.UUID]*model.SupplierPayment),
		allocations: make(map[uuid.UUID][]model.PaymentAllocation),
	}
}

func (r *stubSupplierRepo) DB() *gorm.DB { return nil }

func (r *stubSupplierRepo) Create(_ context.Context, s *model.Supplier) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.suppliers[s.ID] = s
	return nil
}

func (r *stubSupplierRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Supplier, error) {
	s, ok := r.suppliers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubSupplierRepo) List(_ context.Context, tenantID uuid.UUID) ([]model.Supplier, error) {
	var out []model.Supplier
	for _, s := range r.suppliers {
		if s.TenantID == tenantID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubSupplierRepo) CreateInvoiceTx(_ *gorm.DB, inv *model.SupplierInvoice) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	r.invoices[inv.ID] = inv
	return nil
}

func (r *stubSupplierRepo) FindInvoiceByID(_ context.Context, id uuid.UUID) (*model.SupplierInvoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return inv, nil
}

func (r *stubSupplierRepo) FindInvoiceForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.SupplierInvoice, error) {
	return r.FindInvoiceByID(context.Background(), id)
}

func (r *stubSupplierRepo) SaveInvoiceTx(_ *gorm.DB, inv *model.SupplierInvoice) error {
	r.invoices[inv.ID] = inv
	return nil
}

func (r *stubSupplierRepo) ListInvoices(_ context.Context, tenantID uuid.UUID, supplierID *uuid.UUID, status string) ([]model.SupplierInvoice, error) {
	var out []model.SupplierInvoice
	for _, inv := range r.invoices {
		if inv.TenantID != tenantID {
			continue
		}
		if supplierID != nil && inv.SupplierID != *supplierID {
			continue
		}
		if status != "" && status != "all" && inv.Status != status {
			continue
		}
		out = append(out, *inv)
	}
	return out, nil
}

func (r *stubSupplierRepo) CreatePaymentTx(_ *gorm.DB, p *model.SupplierPayment) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	r.payments[p.ID] = p
	r.allocations[p.ID] = p.Allocations
	return nil
}

func (r *stubSupplierRepo) FindPaymentByID(_ context.Context, id uuid.UUID) (*model.SupplierPayment, error) {
	p, ok := r.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	p.Allocations = r.allocations[id]
	return p, nil
}

func (r *stubSupplierRepo) DeleteAllocationsTx(_ *gorm.DB, paymentID uuid.UUID) error {
	delete(r.allocations, paymentID)
	return nil
}

func (r *stubSupplierRepo) DeletePaymentTx(_ *gorm.DB, paymentID uuid.UUID) error {
	delete(r.payments, paymentID)
	return nil
}

// ── Purchase orders ──────────────────────────────────────────────────────────

type stubPurchaseRepo struct {
	orders map[uuid.UUID]*model.PurchaseOrder
	seq    int
}

func newStubPurchaseRepo() *stubPurchaseRepo {
	return &stubPurchaseRepo{orders: make(map[uuid.UUID]*model.PurchaseOrder)}
}

func (r *stubPurchaseRepo) DB() *gorm.DB { return nil }

func (r *stubPurchaseRepo) CreateTx(_ *gorm.DB, po *model.PurchaseOrder) error {
	if po.ID == uuid.Nil {
		po.ID = uuid.New()
	}
	po.CreatedAt = time.Now()
	r.orders[po.ID] = po
	return nil
}

func (r *stubPurchaseRepo) FindByID(_ context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	po, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return po, nil
}

func (r *stubPurchaseRepo) FindForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.PurchaseOrder, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubPurchaseRepo) SaveTx(_ *gorm.DB, po *model.PurchaseOrder) error {
	r.orders[po.ID] = po
	return nil
}

func (r *stubPurchaseRepo) NextNumberTx(_ *gorm.DB, _ uuid.UUID) (string, error) {
	r.seq++
	return repository.FormatNumber(repository.FamilyPurchase, r.seq), nil
}

func (r *stubPurchaseRepo) List(_ context.Context, filter repository.PurchaseOrderFilter) ([]model.PurchaseOrder, int64, error) {
	var out []model.PurchaseOrder
	for _, po := range r.orders {
		if po.TenantID == filter.TenantID {
			out = append(out, *po)
		}
	}
	return out, int64(len(out)), nil
}

// ── Fiscal dispatcher ────────────────────────────────────────────────────────

type stubDispatcher struct {
	enqueued []uuid.UUID
	fail     bool
}

func (d *stubDispatcher) EnqueueInvoice(_ context.Context, saleID uuid.UUID) error {
	if d.fail {
		return fmt.Errorf("redis unavailable")
	}
	d.enqueued = append(d.enqueued, saleID)
	return nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func mustDec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}
