package service

import (
	"context"
	"fmt"

	"github.com/rmoralez/pos-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PettyCashService manages small expense funds. A fund is a ledger account
// of kind petty_cash whose balance may never go negative: an expense larger
// than the fund is rejected, not overdrawn.
type PettyCashService struct {
	ledger *LedgerService
}

func NewPettyCashService(ledger *LedgerService) *PettyCashService {
	return &PettyCashService{ledger: ledger}
}

// CreateFund opens a petty-cash fund, optionally seeded with an opening
// deposit.
func (s *PettyCashService) CreateFund(ctx context.Context, tenantID uuid.UUID, name string, opening decimal.Decimal, userID uuid.UUID) (*model.LedgerAccount, error) {
	account := &model.LedgerAccount{
		TenantID: tenantID,
		Kind:     model.LedgerKindPettyCash,
		Name:     name,
		IsActive: true,
	}
	if err := s.ledger.CreateAccount(ctx, account, opening, userID); err != nil {
		return nil, err
	}
	return account, nil
}

// Deposit replenishes a fund.
func (s *PettyCashService) Deposit(ctx context.Context, tenantID, fundID uuid.UUID, amount decimal.Decimal, concept string, userID uuid.UUID) (*model.LedgerMovement, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("deposit amount must be positive")
	}
	return s.apply(ctx, tenantID, fundID, LedgerDelta{
		AccountID: fundID,
		TenantID:  tenantID,
		Type:      model.MovementDeposit,
		Amount:    amount,
		Concept:   concept,
		UserID:    userID,
	})
}

// Expense books an outflow. The fund balance may not go negative.
func (s *PettyCashService) Expense(ctx context.Context, tenantID, fundID uuid.UUID, amount decimal.Decimal, concept string, userID uuid.UUID) (*model.LedgerMovement, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("expense amount must be positive")
	}
	return s.apply(ctx, tenantID, fundID, LedgerDelta{
		AccountID: fundID,
		TenantID:  tenantID,
		Type:      model.MovementExpense,
		Amount:    amount.Neg(),
		Concept:   concept,
		UserID:    userID,
	})
}

func (s *PettyCashService) apply(ctx context.Context, tenantID, fundID uuid.UUID, delta LedgerDelta) (*model.LedgerMovement, error) {
	fund, err := s.ledger.GetAccount(ctx, fundID)
	if err != nil {
		return nil, fmt.Errorf("loading fund: %w", err)
	}
	if fund.TenantID != tenantID || fund.Kind != model.LedgerKindPettyCash {
		return nil, gorm.ErrRecordNotFound
	}

	var movement *model.LedgerMovement
	err = runTx(ctx, s.ledger.repo.DB(), func(tx *gorm.DB) error {
		m, err := s.ledger.ApplyDeltaTx(tx, delta)
		if err != nil {
			return err
		}
		if m.BalanceAfter.IsNegative() {
			return fmt.Errorf("expense %s exceeds fund balance %s",
				delta.Amount.Neg().StringFixed(2), m.BalanceBefore.StringFixed(2))
		}
		movement = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}
