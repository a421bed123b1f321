package service

import (
	"context"
	"testing"

	"github.com/rmoralez/pos-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedAccount(repo *stubLedgerRepo, kind, balance, creditLimit string) *model.LedgerAccount {
	a := &model.LedgerAccount{
		ID:             uuid.New(),
		TenantID:       uuid.New(),
		Kind:           kind,
		Name:           "Test " + kind,
		CurrentBalance: mustDec(balance),
		CreditLimit:    mustDec(creditLimit),
		IsActive:       true,
	}
	repo.accounts[a.ID] = a
	return a
}

func TestCreateAccount_OpeningBalanceBooksDeposit(t *testing.T) {
	repo := newStubLedgerRepo()
	svc := NewLedgerService(repo)
	userID := uuid.New()

	a := &model.LedgerAccount{
		TenantID: uuid.New(),
		Kind:     model.LedgerKindCashAccount,
		Name:     "Main bank",
		IsActive: true,
	}
	err := svc.CreateAccount(context.Background(), a, mustDec("500.00"), userID)
	require.NoError(t, err)

	assert.True(t, a.CurrentBalance.Equal(mustDec("500.00")))

	movs := repo.movementsFor(a.ID)
	require.Len(t, movs, 1)
	assert.Equal(t, model.MovementDeposit, movs[0].Type)
	assert.Equal(t, "Opening balance", movs[0].Concept)
	assert.True(t, movs[0].BalanceBefore.IsZero())
	assert.True(t, movs[0].BalanceAfter.Equal(mustDec("500.00")))
}

func TestCreateAccount_ZeroOpeningHasNoMovement(t *testing.T) {
	repo := newStubLedgerRepo()
	svc := NewLedgerService(repo)

	a := &model.LedgerAccount{
		TenantID: uuid.New(),
		Kind:     model.LedgerKindPettyCash,
		Name:     "Caja chica",
		IsActive: true,
	}
	err := svc.CreateAccount(context.Background(), a, decimal.Zero, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, repo.movementsFor(a.ID))
}

func TestApplyDeltaTx_BalanceChain(t *testing.T) {
	repo := newStubLedgerRepo()
	svc := NewLedgerService(repo)
	a := seedAccount(repo, model.LedgerKindCashRegister, "100.00", "0")

	m1, err := svc.ApplyDeltaTx(nil, LedgerDelta{
		AccountID: a.ID, Type: model.MovementSalePayment,
		Amount: mustDec("40.00"), Concept: "Sale SALE-000001", UserID: uuid.New(),
	})
	require.NoError(t, err)
	assert.True(t, m1.BalanceBefore.Equal(mustDec("100.00")))
	assert.True(t, m1.BalanceAfter.Equal(mustDec("140.00")))

	m2, err := svc.ApplyDeltaTx(nil, LedgerDelta{
		AccountID: a.ID, Type: model.MovementExpense,
		Amount: mustDec("-15.50"), Concept: "Supplies", UserID: uuid.New(),
	})
	require.NoError(t, err)
	assert.True(t, m2.BalanceBefore.Equal(mustDec("140.00")))
	assert.True(t, m2.BalanceAfter.Equal(mustDec("124.50")))
	assert.True(t, a.CurrentBalance.Equal(mustDec("124.50")))
}

func TestApplyDeltaTx_InactiveAccountRejected(t *testing.T) {
	repo := newStubLedgerRepo()
	svc := NewLedgerService(repo)
	a := seedAccount(repo, model.LedgerKindCashAccount, "0", "0")
	a.IsActive = false

	_, err := svc.ApplyDeltaTx(nil, LedgerDelta{
		AccountID: a.ID, Type: model.MovementDeposit,
		Amount: mustDec("10.00"), UserID: uuid.New(),
	})
	var inactive *AccountInactiveError
	require.ErrorAs(t, err, &inactive)
	assert.Equal(t, a.Name, inactive.Account)
	assert.Empty(t, repo.movements)
}

func TestApplyDeltaTx_TenantAndKindConstraints(t *testing.T) {
	repo := newStubLedgerRepo()
	svc := NewLedgerService(repo)
	a := seedAccount(repo, model.LedgerKindCashRegister, "0", "0")

	// A delta aimed at another tenant's account reads as missing.
	_, err := svc.ApplyDeltaTx(nil, LedgerDelta{
		AccountID: a.ID, TenantID: uuid.New(), Type: model.MovementDeposit,
		Amount: mustDec("10.00"), UserID: uuid.New(),
	})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// Same for a kind the caller did not expect.
	_, err = svc.ApplyDeltaTx(nil, LedgerDelta{
		AccountID: a.ID, TenantID: a.TenantID, Kind: model.LedgerKindCustomerAccount,
		Type: model.MovementDeposit, Amount: mustDec("10.00"), UserID: uuid.New(),
	})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Empty(t, repo.movements)
	assert.True(t, a.CurrentBalance.IsZero())

	// Matching constraints post normally.
	m, err := svc.ApplyDeltaTx(nil, LedgerDelta{
		AccountID: a.ID, TenantID: a.TenantID, Kind: model.LedgerKindCashRegister,
		Type: model.MovementDeposit, Amount: mustDec("10.00"), UserID: uuid.New(),
	})
	require.NoError(t, err)
	assert.True(t, m.BalanceAfter.Equal(mustDec("10.00")))
}

func TestApplyDeltaTx_CreditLimitEnforced(t *testing.T) {
	repo := newStubLedgerRepo()
	svc := NewLedgerService(repo)
	a := seedAccount(repo, model.LedgerKindCustomerAccount, "-50.00", "100.00")

	// 50 of headroom left; a 60 charge must bounce.
	_, err := svc.ApplyDeltaTx(nil, LedgerDelta{
		AccountID: a.ID, Type: model.MovementAccountCharge,
		Amount: mustDec("-60.00"), UserID: uuid.New(),
	})
	var exceeded *CreditLimitExceededError
	require.ErrorAs(t, err, &exceeded)
	assert.True(t, exceeded.Requested.Equal(mustDec("60.00")))
	assert.True(t, exceeded.Available.Equal(mustDec("50.00")))
	assert.True(t, a.CurrentBalance.Equal(mustDec("-50.00")))

	// A 50 charge lands exactly on the limit and passes.
	m, err := svc.ApplyDeltaTx(nil, LedgerDelta{
		AccountID: a.ID, Type: model.MovementAccountCharge,
		Amount: mustDec("-50.00"), UserID: uuid.New(),
	})
	require.NoError(t, err)
	assert.True(t, m.BalanceAfter.Equal(mustDec("-100.00")))
}

func TestApplyDeltaTx_AvailableFlooredAtZero(t *testing.T) {
	repo := newStubLedgerRepo()
	svc := NewLedgerService(repo)
	a := seedAccount(repo, model.LedgerKindCustomerAccount, "-120.00", "100.00")

	_, err := svc.ApplyDeltaTx(nil, LedgerDelta{
		AccountID: a.ID, Type: model.MovementAccountCharge,
		Amount: mustDec("-1.00"), UserID: uuid.New(),
	})
	var exceeded *CreditLimitExceededError
	require.ErrorAs(t, err, &exceeded)
	assert.True(t, exceeded.Available.IsZero())
}

func TestApplyDeltaTx_ZeroCreditLimitIsUnlimited(t *testing.T) {
	repo := newStubLedgerRepo()
	svc := NewLedgerService(repo)
	a := seedAccount(repo, model.LedgerKindCustomerAccount, "0", "0")

	m, err := svc.ApplyDeltaTx(nil, LedgerDelta{
		AccountID: a.ID, Type: model.MovementAccountCharge,
		Amount: mustDec("-9999.00"), UserID: uuid.New(),
	})
	require.NoError(t, err)
	assert.True(t, m.BalanceAfter.Equal(mustDec("-9999.00")))
}

func TestVoidMovementTx_RestoresBalanceAndRemovesOriginal(t *testing.T) {
	repo := newStubLedgerRepo()
	svc := NewLedgerService(repo)
	a := seedAccount(repo, model.LedgerKindCashRegister, "0", "0")
	userID := uuid.New()

	original, err := svc.ApplyDeltaTx(nil, LedgerDelta{
		AccountID: a.ID, Type: model.MovementSalePayment,
		Amount: mustDec("80.00"), Concept: "Sale SALE-000007", UserID: userID,
	})
	require.NoError(t, err)

	comp, err := svc.VoidMovementTx(nil, original, model.MovementSaleCancel, "Cancellation of sale SALE-000007", userID)
	require.NoError(t, err)

	assert.Equal(t, model.MovementSaleCancel, comp.Type)
	assert.True(t, comp.Amount.Equal(mustDec("-80.00")))
	assert.True(t, a.CurrentBalance.IsZero())

	// Only the compensating entry survives.
	movs := repo.movementsFor(a.ID)
	require.Len(t, movs, 1)
	assert.Equal(t, comp.ID, movs[0].ID)
}

func TestVoidDocumentTx_VoidsEveryLeg(t *testing.T) {
	repo := newStubLedgerRepo()
	svc := NewLedgerService(repo)
	register := seedAccount(repo, model.LedgerKindCashRegister, "0", "0")
	account := seedAccount(repo, model.LedgerKindCustomerAccount, "0", "0")
	docID := uuid.New()
	userID := uuid.New()

	_, err := svc.ApplyDeltaTx(nil, LedgerDelta{
		AccountID: register.ID, Type: model.MovementSalePayment,
		Amount: mustDec("30.00"), DocumentID: &docID, UserID: userID,
	})
	require.NoError(t, err)
	_, err = svc.ApplyDeltaTx(nil, LedgerDelta{
		AccountID: account.ID, Type: model.MovementAccountCharge,
		Amount: mustDec("-70.00"), DocumentID: &docID, UserID: userID,
	})
	require.NoError(t, err)

	err = svc.VoidDocumentTx(nil, docID, model.MovementSaleCancel, "Cancellation", userID)
	require.NoError(t, err)

	assert.True(t, register.CurrentBalance.IsZero())
	assert.True(t, account.CurrentBalance.IsZero())
}

func TestTransferTx_LegsShareCorrelation(t *testing.T) {
	repo := newStubLedgerRepo()
	svc := NewLedgerService(repo)
	from := seedAccount(repo, model.LedgerKindCashRegister, "200.00", "0")
	to := seedAccount(repo, model.LedgerKindCashAccount, "1000.00", "0")

	correlation, err := svc.TransferTx(nil, from.ID, to.ID, mustDec("150.00"), "End of day deposit", uuid.New())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, correlation)

	assert.True(t, from.CurrentBalance.Equal(mustDec("50.00")))
	assert.True(t, to.CurrentBalance.Equal(mustDec("1150.00")))

	out := repo.movementsFor(from.ID)
	in := repo.movementsFor(to.ID)
	require.Len(t, out, 1)
	require.Len(t, in, 1)
	assert.Equal(t, model.MovementTransferOut, out[0].Type)
	assert.Equal(t, model.MovementTransferIn, in[0].Type)
	require.NotNil(t, out[0].CorrelationID)
	require.NotNil(t, in[0].CorrelationID)
	assert.Equal(t, correlation, *out[0].CorrelationID)
	assert.Equal(t, correlation, *in[0].CorrelationID)
}

func TestTransferTx_RejectsNonPositiveAmount(t *testing.T) {
	repo := newStubLedgerRepo()
	svc := NewLedgerService(repo)
	from := seedAccount(repo, model.LedgerKindCashRegister, "100.00", "0")
	to := seedAccount(repo, model.LedgerKindCashAccount, "0", "0")

	_, err := svc.TransferTx(nil, from.ID, to.ID, decimal.Zero, "noop", uuid.New())
	assert.Error(t, err)
	assert.Empty(t, repo.movements)
}
