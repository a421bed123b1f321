package service

import (
	"context"
	"testing"

	"github.com/rmoralez/pos-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type purchaseFixture struct {
	orders    *stubPurchaseRepo
	suppliers *stubSupplierRepo
	products  *stubProductRepo
	stock     *stubStockRepo
	svc       *PurchaseService

	tenantID   uuid.UUID
	locationID uuid.UUID
	userID     uuid.UUID
	supplier   *model.Supplier
}

func newPurchaseFixture() *purchaseFixture {
	f := &purchaseFixture{
		orders:     newStubPurchaseRepo(),
		suppliers:  newStubSupplierRepo(),
		products:   newStubProductRepo(),
		stock:      newStubStockRepo(),
		tenantID:   uuid.New(),
		locationID: uuid.New(),
		userID:     uuid.New(),
	}
	f.supplier = &model.Supplier{ID: uuid.New(), TenantID: f.tenantID, Name: "Acme Distribuciones", IsActive: true}
	f.suppliers.suppliers[f.supplier.ID] = f.supplier
	f.svc = NewPurchaseService(f.orders, f.suppliers, f.products, NewStockService(f.stock))
	return f
}

func (f *purchaseFixture) createOrder(t *testing.T, items []PurchaseItemInput) *model.PurchaseOrder {
	t.Helper()
	order, err := f.svc.CreateOrder(context.Background(), PurchaseInput{
		TenantID:   f.tenantID,
		SupplierID: f.supplier.ID,
		LocationID: f.locationID,
		UserID:     f.userID,
		Items:      items,
	})
	require.NoError(t, err)
	return order
}

func TestCreateOrder_PricesFromCatalogCost(t *testing.T) {
	f := newPurchaseFixture()
	p := f.products.seed(f.tenantID, "Widget", "121.00", "21")
	p.CostPrice = mustDec("60.50")

	order := f.createOrder(t, []PurchaseItemInput{{ProductID: p.ID, Quantity: 10}})

	assert.Equal(t, "PO-000001", order.Number)
	assert.Equal(t, model.PurchaseStatusDraft, order.Status)
	assert.True(t, order.Total.Equal(mustDec("605.00")))
	require.Len(t, order.Items, 1)
	assert.True(t, order.Items[0].UnitCost.Equal(mustDec("60.50")))
	// Costs are tax inclusive, same extraction as sale prices.
	assert.True(t, order.Items[0].TaxAmount.Equal(mustDec("105.00")))
}

func TestCreateOrder_UnitCostOverride(t *testing.T) {
	f := newPurchaseFixture()
	p := f.products.seed(f.tenantID, "Widget", "121.00", "0")
	p.CostPrice = mustDec("60.00")

	override := mustDec("55.00")
	order := f.createOrder(t, []PurchaseItemInput{{ProductID: p.ID, Quantity: 2, UnitCost: &override}})

	assert.True(t, order.Total.Equal(mustDec("110.00")))
}

func TestSendCancel_Transitions(t *testing.T) {
	f := newPurchaseFixture()
	p := f.products.seed(f.tenantID, "Widget", "10.00", "0")
	p.CostPrice = mustDec("5.00")

	order := f.createOrder(t, []PurchaseItemInput{{ProductID: p.ID, Quantity: 1}})

	sent, err := f.svc.Send(context.Background(), f.tenantID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PurchaseStatusSent, sent.Status)

	// Sending twice bounces.
	_, err = f.svc.Send(context.Background(), f.tenantID, order.ID)
	require.Error(t, err)

	cancelled, err := f.svc.Cancel(context.Background(), f.tenantID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PurchaseStatusCancelled, cancelled.Status)

	_, err = f.svc.Cancel(context.Background(), f.tenantID, order.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be cancelled")
}

func TestReceive_AddsStockAndRaisesInvoice(t *testing.T) {
	f := newPurchaseFixture()
	p := f.products.seed(f.tenantID, "Widget", "121.00", "21")
	p.CostPrice = mustDec("60.50")

	order := f.createOrder(t, []PurchaseItemInput{{ProductID: p.ID, Quantity: 10}})
	_, err := f.svc.Send(context.Background(), f.tenantID, order.ID)
	require.NoError(t, err)

	received, invoice, err := f.svc.Receive(context.Background(), f.tenantID, order.ID, "FC-A-00001234", f.userID)
	require.NoError(t, err)

	assert.Equal(t, model.PurchaseStatusReceived, received.Status)
	require.NotNil(t, received.ReceivedAt)

	// Stock item is created on the fly and loaded with the delivered goods.
	item, err := f.stock.FindItem(context.Background(), f.tenantID, p.ID, nil, f.locationID)
	require.NoError(t, err)
	assert.Equal(t, 10, item.Quantity)
	require.Len(t, f.stock.movements, 1)
	assert.Equal(t, model.StockMovementReceipt, f.stock.movements[0].Type)
	assert.Contains(t, f.stock.movements[0].Reason, "Receipt of order PO-000001")

	// The supplier invoice carries the order total, unpaid.
	assert.Equal(t, "FC-A-00001234", invoice.Number)
	assert.Equal(t, model.SupplierInvoicePending, invoice.Status)
	assert.True(t, invoice.Total.Equal(order.Total))
	assert.True(t, invoice.PaidAmount.IsZero())
	require.NotNil(t, invoice.PurchaseOrderID)
	assert.Equal(t, order.ID, *invoice.PurchaseOrderID)
}

func TestReceive_OnlySentOrders(t *testing.T) {
	f := newPurchaseFixture()
	p := f.products.seed(f.tenantID, "Widget", "10.00", "0")
	p.CostPrice = mustDec("5.00")

	order := f.createOrder(t, []PurchaseItemInput{{ProductID: p.ID, Quantity: 1}})

	_, _, err := f.svc.Receive(context.Background(), f.tenantID, order.ID, "FC-0001", f.userID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only SENT orders")
	assert.Empty(t, f.stock.movements)
	assert.Empty(t, f.suppliers.invoices)
}

func TestReceive_RequiresInvoiceNumber(t *testing.T) {
	f := newPurchaseFixture()
	_, _, err := f.svc.Receive(context.Background(), f.tenantID, uuid.New(), "", f.userID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invoice number is required")
}

func TestCreateOrder_ForeignSupplierRejected(t *testing.T) {
	f := newPurchaseFixture()
	p := f.products.seed(f.tenantID, "Widget", "10.00", "0")
	foreign := &model.Supplier{ID: uuid.New(), TenantID: uuid.New(), Name: "Other"}
	f.suppliers.suppliers[foreign.ID] = foreign

	_, err := f.svc.CreateOrder(context.Background(), PurchaseInput{
		TenantID:   f.tenantID,
		SupplierID: foreign.ID,
		LocationID: f.locationID,
		UserID:     f.userID,
		Items:      []PurchaseItemInput{{ProductID: p.ID, Quantity: 1}},
	})
	require.Error(t, err)
}
