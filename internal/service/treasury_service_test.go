package service

import (
	"context"
	"testing"

	"github.com/rmoralez/pos-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type treasuryFixture struct {
	ledger    *stubLedgerRepo
	suppliers *stubSupplierRepo
	svc       *TreasuryService
	tenantID  uuid.UUID
	userID    uuid.UUID
}

func newTreasuryFixture() *treasuryFixture {
	f := &treasuryFixture{
		ledger:    newStubLedgerRepo(),
		suppliers: newStubSupplierRepo(),
		tenantID:  uuid.New(),
		userID:    uuid.New(),
	}
	f.svc = NewTreasuryService(NewLedgerService(f.ledger), f.suppliers)
	return f
}

func (f *treasuryFixture) seedBank(balance string) *model.LedgerAccount {
	a := seedAccount(f.ledger, model.LedgerKindCashAccount, balance, "0")
	a.TenantID = f.tenantID
	return a
}

func (f *treasuryFixture) seedSupplier() *model.Supplier {
	s := &model.Supplier{ID: uuid.New(), TenantID: f.tenantID, Name: "Acme Distribuciones", IsActive: true}
	f.suppliers.suppliers[s.ID] = s
	return s
}

func (f *treasuryFixture) seedInvoice(supplierID uuid.UUID, number, total string) *model.SupplierInvoice {
	inv := &model.SupplierInvoice{
		ID:         uuid.New(),
		TenantID:   f.tenantID,
		SupplierID: supplierID,
		Number:     number,
		Total:      mustDec(total),
		PaidAmount: mustDec("0"),
		Status:     model.SupplierInvoicePending,
	}
	f.suppliers.invoices[inv.ID] = inv
	return inv
}

func TestCreateTreasuryAccount_KindRestricted(t *testing.T) {
	f := newTreasuryFixture()

	account, err := f.svc.CreateAccount(context.Background(), f.tenantID, model.LedgerKindCashAccount, "Banco Nación", mustDec("1000.00"), f.userID)
	require.NoError(t, err)
	assert.True(t, account.CurrentBalance.Equal(mustDec("1000.00")))

	_, err = f.svc.CreateAccount(context.Background(), f.tenantID, model.LedgerKindPettyCash, "Nope", mustDec("0"), f.userID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "treasury accounts must be")
}

func TestTransfer_CrossTenantRejected(t *testing.T) {
	f := newTreasuryFixture()
	from := f.seedBank("500.00")
	foreign := seedAccount(f.ledger, model.LedgerKindCashAccount, "0", "0")

	_, err := f.svc.Transfer(context.Background(), f.tenantID, from.ID, foreign.ID, mustDec("100.00"), "x", f.userID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestTransfer_SameAccountRejected(t *testing.T) {
	f := newTreasuryFixture()
	from := f.seedBank("500.00")

	_, err := f.svc.Transfer(context.Background(), f.tenantID, from.ID, from.ID, mustDec("100.00"), "x", f.userID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must differ")
}

func TestPaySupplier_SplitsAcrossInvoices(t *testing.T) {
	f := newTreasuryFixture()
	bank := f.seedBank("1000.00")
	supplier := f.seedSupplier()
	inv1 := f.seedInvoice(supplier.ID, "FC-0001", "300.00")
	inv2 := f.seedInvoice(supplier.ID, "FC-0002", "500.00")

	payment, err := f.svc.PaySupplier(context.Background(), SupplierPaymentInput{
		TenantID:   f.tenantID,
		SupplierID: supplier.ID,
		AccountID:  bank.ID,
		Method:     model.PayMethodTransfer,
		Amount:     mustDec("500.00"),
		Allocations: []AllocationInput{
			{InvoiceID: inv1.ID, Amount: mustDec("300.00")},
			{InvoiceID: inv2.ID, Amount: mustDec("200.00")},
		},
		UserID: f.userID,
	})
	require.NoError(t, err)

	// Paid state advances per invoice: full pays, partial stays partial.
	assert.Equal(t, model.SupplierInvoicePaid, inv1.Status)
	assert.True(t, inv1.PaidAmount.Equal(mustDec("300.00")))
	assert.Equal(t, model.SupplierInvoicePartial, inv2.Status)
	assert.True(t, inv2.PaidAmount.Equal(mustDec("200.00")))

	// One treasury debit for the whole payment.
	assert.True(t, bank.CurrentBalance.Equal(mustDec("500.00")))
	movs := f.ledger.movementsFor(bank.ID)
	require.Len(t, movs, 1)
	assert.Equal(t, model.MovementSupplierPayout, movs[0].Type)
	assert.True(t, movs[0].Amount.Equal(mustDec("-500.00")))
	require.NotNil(t, movs[0].DocumentID)
	assert.Equal(t, payment.ID, *movs[0].DocumentID)
}

func TestPaySupplier_ForeignAccountLooksLikeMissing(t *testing.T) {
	f := newTreasuryFixture()
	supplier := f.seedSupplier()
	inv := f.seedInvoice(supplier.ID, "FC-0001", "300.00")
	foreign := seedAccount(f.ledger, model.LedgerKindCashAccount, "1000.00", "0")

	_, err := f.svc.PaySupplier(context.Background(), SupplierPaymentInput{
		TenantID:    f.tenantID,
		SupplierID:  supplier.ID,
		AccountID:   foreign.ID,
		Method:      model.PayMethodTransfer,
		Amount:      mustDec("300.00"),
		Allocations: []AllocationInput{{InvoiceID: inv.ID, Amount: mustDec("300.00")}},
		UserID:      f.userID,
	})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.True(t, foreign.CurrentBalance.Equal(mustDec("1000.00")))
	assert.Equal(t, model.SupplierInvoicePending, inv.Status)
}

func TestPaySupplier_NonTreasuryAccountRejected(t *testing.T) {
	f := newTreasuryFixture()
	supplier := f.seedSupplier()
	inv := f.seedInvoice(supplier.ID, "FC-0001", "300.00")
	fund := seedAccount(f.ledger, model.LedgerKindPettyCash, "1000.00", "0")
	fund.TenantID = f.tenantID

	_, err := f.svc.PaySupplier(context.Background(), SupplierPaymentInput{
		TenantID:    f.tenantID,
		SupplierID:  supplier.ID,
		AccountID:   fund.ID,
		Method:      model.PayMethodTransfer,
		Amount:      mustDec("300.00"),
		Allocations: []AllocationInput{{InvoiceID: inv.ID, Amount: mustDec("300.00")}},
		UserID:      f.userID,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "supplier payments come out of")
	assert.True(t, fund.CurrentBalance.Equal(mustDec("1000.00")))
}

func TestPaySupplier_AllocationsMustSumToAmount(t *testing.T) {
	f := newTreasuryFixture()
	bank := f.seedBank("1000.00")
	supplier := f.seedSupplier()
	inv := f.seedInvoice(supplier.ID, "FC-0001", "300.00")

	_, err := f.svc.PaySupplier(context.Background(), SupplierPaymentInput{
		TenantID:    f.tenantID,
		SupplierID:  supplier.ID,
		AccountID:   bank.ID,
		Method:      model.PayMethodTransfer,
		Amount:      mustDec("300.00"),
		Allocations: []AllocationInput{{InvoiceID: inv.ID, Amount: mustDec("250.00")}},
		UserID:      f.userID,
	})
	var mismatch *PaymentsMismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestPaySupplier_OverAllocationRejected(t *testing.T) {
	f := newTreasuryFixture()
	bank := f.seedBank("1000.00")
	supplier := f.seedSupplier()
	inv := f.seedInvoice(supplier.ID, "FC-0001", "300.00")
	inv.PaidAmount = mustDec("200.00")
	inv.Status = model.SupplierInvoicePartial

	_, err := f.svc.PaySupplier(context.Background(), SupplierPaymentInput{
		TenantID:    f.tenantID,
		SupplierID:  supplier.ID,
		AccountID:   bank.ID,
		Method:      model.PayMethodTransfer,
		Amount:      mustDec("150.00"),
		Allocations: []AllocationInput{{InvoiceID: inv.ID, Amount: mustDec("150.00")}},
		UserID:      f.userID,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds remaining")
}

func TestPaySupplier_ForeignInvoiceRejected(t *testing.T) {
	f := newTreasuryFixture()
	bank := f.seedBank("1000.00")
	supplier := f.seedSupplier()
	other := f.seedSupplier()
	inv := f.seedInvoice(other.ID, "FC-0009", "100.00")

	_, err := f.svc.PaySupplier(context.Background(), SupplierPaymentInput{
		TenantID:    f.tenantID,
		SupplierID:  supplier.ID,
		AccountID:   bank.ID,
		Method:      model.PayMethodTransfer,
		Amount:      mustDec("100.00"),
		Allocations: []AllocationInput{{InvoiceID: inv.ID, Amount: mustDec("100.00")}},
		UserID:      f.userID,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "different supplier")
}

func TestVoidSupplierPayment_RestoresEverything(t *testing.T) {
	f := newTreasuryFixture()
	bank := f.seedBank("1000.00")
	supplier := f.seedSupplier()
	inv := f.seedInvoice(supplier.ID, "FC-0001", "400.00")

	payment, err := f.svc.PaySupplier(context.Background(), SupplierPaymentInput{
		TenantID:    f.tenantID,
		SupplierID:  supplier.ID,
		AccountID:   bank.ID,
		Method:      model.PayMethodTransfer,
		Amount:      mustDec("400.00"),
		Allocations: []AllocationInput{{InvoiceID: inv.ID, Amount: mustDec("400.00")}},
		UserID:      f.userID,
	})
	require.NoError(t, err)
	assert.Equal(t, model.SupplierInvoicePaid, inv.Status)

	err = f.svc.VoidSupplierPayment(context.Background(), f.tenantID, payment.ID, f.userID)
	require.NoError(t, err)

	assert.Equal(t, model.SupplierInvoicePending, inv.Status)
	assert.True(t, inv.PaidAmount.IsZero())
	assert.True(t, bank.CurrentBalance.Equal(mustDec("1000.00")))

	_, err = f.suppliers.FindPaymentByID(context.Background(), payment.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSupplierInvoiceStatus_Derivation(t *testing.T) {
	assert.Equal(t, model.SupplierInvoicePending, supplierInvoiceStatus(mustDec("100"), mustDec("0")))
	assert.Equal(t, model.SupplierInvoicePartial, supplierInvoiceStatus(mustDec("100"), mustDec("40")))
	assert.Equal(t, model.SupplierInvoicePaid, supplierInvoiceStatus(mustDec("100"), mustDec("100")))
	// Within a cent of the total counts as paid.
	assert.Equal(t, model.SupplierInvoicePaid, supplierInvoiceStatus(mustDec("100"), mustDec("99.99")))
}
