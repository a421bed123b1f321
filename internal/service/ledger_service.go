package service

import (
	"context"
	"fmt"

	"github.com/rmoralez/pos-sub000/internal/model"
	"github.com/rmoralez/pos-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerDelta describes one posting against a ledger account. Amount is
// signed: positive credits the account, negative debits it. TenantID and
// Kind, when set, must match the locked account row; a mismatch reads as a
// missing account so request payloads cannot aim postings at another
// tenant's ledger.
type LedgerDelta struct {
	AccountID     uuid.UUID
	TenantID      uuid.UUID
	Kind          string
	Type          string
	Amount        decimal.Decimal
	Concept       string
	DocumentID    *uuid.UUID
	CorrelationID *uuid.UUID
	UserID        uuid.UUID
}

// LedgerService owns every balance mutation in the system. All four account
// kinds (customer account, petty cash, treasury, cash register) go through
// the same ApplyDeltaTx path: lock the row, validate, write the movement with
// before/after balances, persist the new balance.
type LedgerService struct {
	repo repository.LedgerRepository
}

func NewLedgerService(repo repository.LedgerRepository) *LedgerService {
	return &LedgerService{repo: repo}
}

// CreateAccount registers a new balance-bearing account. OpeningBalance, when
// nonzero, is booked as an initial deposit movement so the movement log is
// complete from day one.
func (s *LedgerService) CreateAccount(ctx context.Context, a *model.LedgerAccount, opening decimal.Decimal, userID uuid.UUID) error {
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		balance := a.CurrentBalance
		a.CurrentBalance = decimal.Zero
		if err := s.createAccountTx(tx, a); err != nil {
			return err
		}
		if opening.IsZero() && balance.IsZero() {
			return nil
		}
		amount := opening
		if amount.IsZero() {
			amount = balance
		}
		_, err := s.ApplyDeltaTx(tx, LedgerDelta{
			AccountID: a.ID,
			TenantID:  a.TenantID,
			Type:      model.MovementDeposit,
			Amount:    amount,
			Concept:   "Opening balance",
			UserID:    userID,
		})
		if err != nil {
			return err
		}
		a.CurrentBalance = amount
		return nil
	})
}

func (s *LedgerService) createAccountTx(tx *gorm.DB, a *model.LedgerAccount) error {
	if tx == nil {
		return s.repo.CreateAccount(context.Background(), a)
	}
	return tx.Create(a).Error
}

func (s *LedgerService) GetAccount(ctx context.Context, id uuid.UUID) (*model.LedgerAccount, error) {
	return s.repo.FindAccountByID(ctx, id)
}

func (s *LedgerService) ListAccounts(ctx context.Context, tenantID uuid.UUID, kind string) ([]model.LedgerAccount, error) {
	return s.repo.ListAccounts(ctx, tenantID, kind)
}

// Statement returns the movement log of an account, newest first.
func (s *LedgerService) Statement(ctx context.Context, filter repository.LedgerMovementFilter) ([]model.LedgerMovement, int64, error) {
	return s.repo.ListMovements(ctx, filter)
}

// ApplyDeltaTx applies one signed delta to an account inside the caller's
// transaction. The account row is locked for the duration, the movement is
// written with the balance before and after, and the stored balance is
// advanced. Inactive accounts reject every posting; customer accounts with a
// positive credit limit reject debits that would push the balance below
// -CreditLimit, reporting the remaining headroom.
func (s *LedgerService) ApplyDeltaTx(tx *gorm.DB, d LedgerDelta) (*model.LedgerMovement, error) {
	account, err := s.repo.FindAccountForUpdateTx(tx, d.AccountID)
	if err != nil {
		return nil, fmt.Errorf("loading ledger account: %w", err)
	}
	if d.TenantID != uuid.Nil && account.TenantID != d.TenantID {
		return nil, gorm.ErrRecordNotFound
	}
	if d.Kind != "" && account.Kind != d.Kind {
		return nil, gorm.ErrRecordNotFound
	}
	if !account.IsActive {
		return nil, &AccountInactiveError{Account: account.Name}
	}

	newBalance := account.CurrentBalance.Add(d.Amount)

	if account.Kind == model.LedgerKindCustomerAccount &&
		d.Amount.IsNegative() &&
		account.CreditLimit.IsPositive() &&
		newBalance.LessThan(account.CreditLimit.Neg()) {
		available := account.CreditLimit.Add(account.CurrentBalance)
		if available.IsNegative() {
			available = decimal.Zero
		}
		return nil, &CreditLimitExceededError{
			Account:   account.Name,
			Requested: d.Amount.Neg(),
			Available: available,
		}
	}

	movement := &model.LedgerMovement{
		TenantID:      account.TenantID,
		AccountID:     account.ID,
		Type:          d.Type,
		Amount:        d.Amount,
		BalanceBefore: account.CurrentBalance,
		BalanceAfter:  newBalance,
		Concept:       d.Concept,
		DocumentID:    d.DocumentID,
		CorrelationID: d.CorrelationID,
		UserID:        d.UserID,
	}
	if err := s.repo.CreateMovementTx(tx, movement); err != nil {
		return nil, fmt.Errorf("writing ledger movement: %w", err)
	}
	if err := s.repo.UpdateBalanceTx(tx, account.ID, newBalance); err != nil {
		return nil, fmt.Errorf("updating account balance: %w", err)
	}
	return movement, nil
}

// VoidMovementTx reverses a movement by applying its negated amount as a
// compensating entry, then removing the original booking. The compensating
// entry keeps the balance chain continuous; the original is deleted so it no
// longer counts toward statements. movementType labels the compensating
// entry (void, sale_cancel).
func (s *LedgerService) VoidMovementTx(tx *gorm.DB, original *model.LedgerMovement, movementType, concept string, userID uuid.UUID) (*model.LedgerMovement, error) {
	comp, err := s.ApplyDeltaTx(tx, LedgerDelta{
		AccountID:     original.AccountID,
		TenantID:      original.TenantID,
		Type:          movementType,
		Amount:        original.Amount.Neg(),
		Concept:       concept,
		DocumentID:    original.DocumentID,
		CorrelationID: original.CorrelationID,
		UserID:        userID,
	})
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteMovementTx(tx, original.ID); err != nil {
		return nil, fmt.Errorf("removing voided movement: %w", err)
	}
	return comp, nil
}

// VoidDocumentTx voids every movement booked against a document, in order.
// Used by sale cancellation and supplier-payment voiding.
func (s *LedgerService) VoidDocumentTx(tx *gorm.DB, documentID uuid.UUID, movementType, concept string, userID uuid.UUID) error {
	movements, err := s.repo.FindMovementsByDocumentTx(tx, documentID)
	if err != nil {
		return fmt.Errorf("loading document movements: %w", err)
	}
	for i := range movements {
		if _, err := s.VoidMovementTx(tx, &movements[i], movementType, concept, userID); err != nil {
			return err
		}
	}
	return nil
}

// TransferTx moves an amount between two accounts atomically. Both legs share
// a correlation id so a statement reader can pair them. Amount must be
// positive; the source is debited, the destination credited.
func (s *LedgerService) TransferTx(tx *gorm.DB, fromID, toID uuid.UUID, amount decimal.Decimal, concept string, userID uuid.UUID) (uuid.UUID, error) {
	if !amount.IsPositive() {
		return uuid.Nil, fmt.Errorf("transfer amount must be positive, got %s", amount.StringFixed(2))
	}
	correlation := uuid.New()
	_, err := s.ApplyDeltaTx(tx, LedgerDelta{
		AccountID:     fromID,
		Type:          model.MovementTransferOut,
		Amount:        amount.Neg(),
		Concept:       concept,
		CorrelationID: &correlation,
		UserID:        userID,
	})
	if err != nil {
		return uuid.Nil, err
	}
	_, err = s.ApplyDeltaTx(tx, LedgerDelta{
		AccountID:     toID,
		Type:          model.MovementTransferIn,
		Amount:        amount,
		Concept:       concept,
		CorrelationID: &correlation,
		UserID:        userID,
	})
	if err != nil {
		return uuid.Nil, err
	}
	return correlation, nil
}
