package service

import (
	"context"
	"fmt"

	"github.com/rmoralez/pos-sub000/internal/model"
	"github.com/rmoralez/pos-sub000/internal/pricing"
	"github.com/rmoralez/pos-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AllocationInput assigns part of a supplier payment to one invoice.
type AllocationInput struct {
	InvoiceID uuid.UUID
	Amount    decimal.Decimal
}

// SupplierPaymentInput settles one or more supplier invoices from a
// treasury account.
type SupplierPaymentInput struct {
	TenantID    uuid.UUID
	SupplierID  uuid.UUID
	AccountID   uuid.UUID
	Method      string
	Amount      decimal.Decimal
	Reference   *string
	Allocations []AllocationInput
	UserID      uuid.UUID
}

// TreasuryService manages cash accounts and registers, transfers between
// accounts, and supplier payments with their invoice allocations. All money
// movement goes through the ledger service.
type TreasuryService struct {
	ledger    *LedgerService
	suppliers repository.SupplierRepository
}

func NewTreasuryService(ledger *LedgerService, suppliers repository.SupplierRepository) *TreasuryService {
	return &TreasuryService{ledger: ledger, suppliers: suppliers}
}

// CreateAccount opens a treasury account (cash account or register).
func (s *TreasuryService) CreateAccount(ctx context.Context, tenantID uuid.UUID, kind, name string, opening decimal.Decimal, userID uuid.UUID) (*model.LedgerAccount, error) {
	if kind != model.LedgerKindCashAccount && kind != model.LedgerKindCashRegister {
		return nil, fmt.Errorf("treasury accounts must be %s or %s, got %q",
			model.LedgerKindCashAccount, model.LedgerKindCashRegister, kind)
	}
	account := &model.LedgerAccount{
		TenantID: tenantID,
		Kind:     kind,
		Name:     name,
		IsActive: true,
	}
	if err := s.ledger.CreateAccount(ctx, account, opening, userID); err != nil {
		return nil, err
	}
	return account, nil
}

// Transfer moves money between two accounts of the same tenant atomically.
func (s *TreasuryService) Transfer(ctx context.Context, tenantID, fromID, toID uuid.UUID, amount decimal.Decimal, concept string, userID uuid.UUID) (uuid.UUID, error) {
	if fromID == toID {
		return uuid.Nil, fmt.Errorf("transfer source and destination must differ")
	}
	from, err := s.ledger.GetAccount(ctx, fromID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("loading source account: %w", err)
	}
	to, err := s.ledger.GetAccount(ctx, toID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("loading destination account: %w", err)
	}
	if from.TenantID != tenantID || to.TenantID != tenantID {
		return uuid.Nil, gorm.ErrRecordNotFound
	}

	var correlation uuid.UUID
	err = runTx(ctx, s.ledger.repo.DB(), func(tx *gorm.DB) error {
		correlation, err = s.ledger.TransferTx(tx, fromID, toID, amount, concept, userID)
		return err
	})
	if err != nil {
		return uuid.Nil, err
	}
	return correlation, nil
}

// PaySupplier settles supplier invoices: the treasury account is debited
// once and the amount is split across the allocated invoices, whose paid
// state advances. Everything commits together.
func (s *TreasuryService) PaySupplier(ctx context.Context, in SupplierPaymentInput) (*model.SupplierPayment, error) {
	if !in.Amount.IsPositive() {
		return nil, fmt.Errorf("payment amount must be positive")
	}
	if len(in.Allocations) == 0 {
		return nil, fmt.Errorf("payment requires at least one invoice allocation")
	}
	sum := decimal.Zero
	for _, a := range in.Allocations {
		if !a.Amount.IsPositive() {
			return nil, fmt.Errorf("allocation amounts must be positive")
		}
		sum = sum.Add(a.Amount)
	}
	if !pricing.WithinTolerance(sum, in.Amount) {
		return nil, &PaymentsMismatchError{Expected: in.Amount, Got: sum}
	}

	supplier, err := s.suppliers.FindByID(ctx, in.SupplierID)
	if err != nil {
		return nil, fmt.Errorf("loading supplier: %w", err)
	}
	if supplier.TenantID != in.TenantID {
		return nil, gorm.ErrRecordNotFound
	}

	account, err := s.ledger.GetAccount(ctx, in.AccountID)
	if err != nil {
		return nil, fmt.Errorf("loading payment account: %w", err)
	}
	if account.TenantID != in.TenantID {
		return nil, gorm.ErrRecordNotFound
	}
	if account.Kind != model.LedgerKindCashAccount && account.Kind != model.LedgerKindCashRegister {
		return nil, fmt.Errorf("supplier payments come out of a %s or %s account, got %s",
			model.LedgerKindCashAccount, model.LedgerKindCashRegister, account.Kind)
	}

	payment := &model.SupplierPayment{
		TenantID:   in.TenantID,
		SupplierID: in.SupplierID,
		AccountID:  in.AccountID,
		Method:     in.Method,
		Amount:     in.Amount,
		Reference:  in.Reference,
		UserID:     in.UserID,
	}
	for _, a := range in.Allocations {
		payment.Allocations = append(payment.Allocations, model.PaymentAllocation{
			InvoiceID: a.InvoiceID,
			Amount:    a.Amount,
		})
	}

	err = runTx(ctx, s.suppliers.DB(), func(tx *gorm.DB) error {
		if err := s.suppliers.CreatePaymentTx(tx, payment); err != nil {
			return fmt.Errorf("writing supplier payment: %w", err)
		}

		for _, a := range in.Allocations {
			invoice, err := s.suppliers.FindInvoiceForUpdateTx(tx, a.InvoiceID)
			if err != nil {
				return fmt.Errorf("loading supplier invoice %s: %w", a.InvoiceID, err)
			}
			if invoice.SupplierID != in.SupplierID {
				return fmt.Errorf("invoice %s belongs to a different supplier", invoice.Number)
			}
			remaining := invoice.Total.Sub(invoice.PaidAmount)
			if a.Amount.GreaterThan(remaining.Add(pricing.Tolerance)) {
				return fmt.Errorf("allocation %s exceeds remaining %s on invoice %s",
					a.Amount.StringFixed(2), remaining.StringFixed(2), invoice.Number)
			}
			invoice.PaidAmount = invoice.PaidAmount.Add(a.Amount)
			invoice.Status = supplierInvoiceStatus(invoice.Total, invoice.PaidAmount)
			if err := s.suppliers.SaveInvoiceTx(tx, invoice); err != nil {
				return fmt.Errorf("saving supplier invoice: %w", err)
			}
		}

		_, err := s.ledger.ApplyDeltaTx(tx, LedgerDelta{
			AccountID:  in.AccountID,
			TenantID:   in.TenantID,
			Type:       model.MovementSupplierPayout,
			Amount:     in.Amount.Neg(),
			Concept:    fmt.Sprintf("Payment to %s", supplier.Name),
			DocumentID: &payment.ID,
			UserID:     in.UserID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// VoidSupplierPayment undoes a supplier payment: each allocated invoice gets
// its paid amount restored, the treasury debit is reversed with a
// compensating entry, and the payment record is removed.
func (s *TreasuryService) VoidSupplierPayment(ctx context.Context, tenantID, paymentID, userID uuid.UUID) error {
	payment, err := s.suppliers.FindPaymentByID(ctx, paymentID)
	if err != nil {
		return err
	}
	if payment.TenantID != tenantID {
		return gorm.ErrRecordNotFound
	}

	return runTx(ctx, s.suppliers.DB(), func(tx *gorm.DB) error {
		for _, a := range payment.Allocations {
			invoice, err := s.suppliers.FindInvoiceForUpdateTx(tx, a.InvoiceID)
			if err != nil {
				return fmt.Errorf("loading supplier invoice %s: %w", a.InvoiceID, err)
			}
			invoice.PaidAmount = invoice.PaidAmount.Sub(a.Amount)
			if invoice.PaidAmount.IsNegative() {
				invoice.PaidAmount = decimal.Zero
			}
			invoice.Status = supplierInvoiceStatus(invoice.Total, invoice.PaidAmount)
			if err := s.suppliers.SaveInvoiceTx(tx, invoice); err != nil {
				return fmt.Errorf("saving supplier invoice: %w", err)
			}
		}

		concept := fmt.Sprintf("Void supplier payment %s", payment.ID)
		if err := s.ledger.VoidDocumentTx(tx, payment.ID, model.MovementVoid, concept, userID); err != nil {
			return err
		}
		if err := s.suppliers.DeleteAllocationsTx(tx, payment.ID); err != nil {
			return fmt.Errorf("removing allocations: %w", err)
		}
		if err := s.suppliers.DeletePaymentTx(tx, payment.ID); err != nil {
			return fmt.Errorf("removing payment: %w", err)
		}
		return nil
	})
}

// supplierInvoiceStatus derives the paid state within the cent tolerance.
func supplierInvoiceStatus(total, paid decimal.Decimal) string {
	switch {
	case paid.GreaterThanOrEqual(total.Sub(pricing.Tolerance)):
		return model.SupplierInvoicePaid
	case paid.IsPositive():
		return model.SupplierInvoicePartial
	default:
		return model.SupplierInvoicePending
	}
}
