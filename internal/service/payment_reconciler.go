package service

import (
	"context"
	"fmt"

	"github.com/rmoralez/pos-sub000/internal/model"
	"github.com/rmoralez/pos-sub000/internal/pricing"
	"github.com/rmoralez/pos-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentReconciler validates a sale's payment entries against its total and
// books each entry into the right ledger account: cash into the register,
// account credit against the customer's running account, everything else
// into the treasury account mapped for the method.
type PaymentReconciler struct {
	ledger  *LedgerService
	methods repository.PaymentMethodRepository
}

func NewPaymentReconciler(ledger *LedgerService, methods repository.PaymentMethodRepository) *PaymentReconciler {
	return &PaymentReconciler{ledger: ledger, methods: methods}
}

// Validate checks that the entries sum to total within one cent. Called
// before any document or movement is written.
func (r *PaymentReconciler) Validate(total decimal.Decimal, payments []model.SalePayment) error {
	sum := decimal.Zero
	for _, p := range payments {
		if !p.Amount.IsPositive() {
			return fmt.Errorf("payment amount must be positive, got %s", p.Amount.StringFixed(2))
		}
		sum = sum.Add(p.Amount)
	}
	if !pricing.WithinTolerance(sum, total) {
		return &PaymentsMismatchError{Expected: total, Got: sum}
	}
	return nil
}

// SettleTx books the ledger side of a settled sale inside the caller's
// transaction. Entries for methods without a treasury mapping are accepted
// but not posted; the gap is logged for the back office to reconcile by hand.
func (r *PaymentReconciler) SettleTx(tx *gorm.DB, sale *model.Sale, customerAccountID *uuid.UUID) error {
	for _, p := range sale.Payments {
		leg, err := r.routeTx(tx, sale, p, customerAccountID)
		if err != nil {
			return err
		}
		if leg == nil {
			log.Warn().
				Str("sale", sale.Number).
				Str("method", p.Method).
				Str("amount", p.Amount.StringFixed(2)).
				Msg("no treasury account mapped for payment method, skipping ledger posting")
			continue
		}
		_, err = r.ledger.ApplyDeltaTx(tx, LedgerDelta{
			AccountID:  leg.accountID,
			TenantID:   sale.TenantID,
			Kind:       leg.kind,
			Type:       leg.movementType,
			Amount:     leg.amount,
			Concept:    fmt.Sprintf("Sale %s (%s)", sale.Number, p.Method),
			DocumentID: &sale.ID,
			UserID:     sale.UserID,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// paymentLeg is one resolved ledger posting for a payment entry. kind, when
// set, constrains the kind of account the posting may land on.
type paymentLeg struct {
	accountID    uuid.UUID
	kind         string
	movementType string
	amount       decimal.Decimal
}

// routeTx resolves the target account and signed amount for one payment
// entry. A nil leg means "accept without posting".
func (r *PaymentReconciler) routeTx(tx *gorm.DB, sale *model.Sale, p model.SalePayment, customerAccountID *uuid.UUID) (*paymentLeg, error) {
	switch p.Method {
	case model.PayMethodCash:
		// RegisterID comes from the request; the ledger rejects it unless it
		// is one of this tenant's cash registers.
		return &paymentLeg{
			accountID:    sale.RegisterID,
			kind:         model.LedgerKindCashRegister,
			movementType: model.MovementSalePayment,
			amount:       p.Amount,
		}, nil

	case model.PayMethodAccountCredit:
		if customerAccountID == nil {
			return nil, fmt.Errorf("account_credit payment requires a customer with a running account")
		}
		// Charging the customer's account debits it (negative delta); the
		// credit-limit check lives in the ledger service.
		return &paymentLeg{
			accountID:    *customerAccountID,
			kind:         model.LedgerKindCustomerAccount,
			movementType: model.MovementAccountCharge,
			amount:       p.Amount.Neg(),
		}, nil

	default:
		mapping, err := r.findMappingTx(tx, sale.TenantID, p.Method)
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("resolving payment method mapping: %w", err)
		}
		return &paymentLeg{
			accountID:    mapping.AccountID,
			movementType: model.MovementSalePayment,
			amount:       p.Amount,
		}, nil
	}
}

func (r *PaymentReconciler) findMappingTx(tx *gorm.DB, tenantID uuid.UUID, method string) (*model.PaymentMethodMapping, error) {
	if tx == nil {
		return r.methods.FindByMethod(context.Background(), tenantID, method)
	}
	var m model.PaymentMethodMapping
	err := tx.Where("tenant_id = ? AND method = ?", tenantID, method).First(&m).Error
	return &m, err
}
