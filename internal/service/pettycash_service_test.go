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

func newPettyCashFixture() (*stubLedgerRepo, *PettyCashService, uuid.UUID, uuid.UUID) {
	repo := newStubLedgerRepo()
	svc := NewPettyCashService(NewLedgerService(repo))
	return repo, svc, uuid.New(), uuid.New()
}

func TestCreateFund_OpensPettyCashAccount(t *testing.T) {
	repo, svc, tenantID, userID := newPettyCashFixture()

	fund, err := svc.CreateFund(context.Background(), tenantID, "Caja chica depósito", mustDec("200.00"), userID)
	require.NoError(t, err)

	assert.Equal(t, model.LedgerKindPettyCash, fund.Kind)
	assert.True(t, fund.CurrentBalance.Equal(mustDec("200.00")))
	require.Len(t, repo.movementsFor(fund.ID), 1)
	assert.Equal(t, model.MovementDeposit, repo.movementsFor(fund.ID)[0].Type)
}

func TestDeposit_Replenishes(t *testing.T) {
	_, svc, tenantID, userID := newPettyCashFixture()
	fund, err := svc.CreateFund(context.Background(), tenantID, "Fondo", mustDec("50.00"), userID)
	require.NoError(t, err)

	m, err := svc.Deposit(context.Background(), tenantID, fund.ID, mustDec("30.00"), "Replenishment", userID)
	require.NoError(t, err)
	assert.True(t, m.BalanceAfter.Equal(mustDec("80.00")))

	_, err = svc.Deposit(context.Background(), tenantID, fund.ID, mustDec("0"), "zero", userID)
	assert.Error(t, err)
}

func TestExpense_CannotOverdraw(t *testing.T) {
	_, svc, tenantID, userID := newPettyCashFixture()
	fund, err := svc.CreateFund(context.Background(), tenantID, "Fondo", mustDec("100.00"), userID)
	require.NoError(t, err)

	m, err := svc.Expense(context.Background(), tenantID, fund.ID, mustDec("60.00"), "Stationery", userID)
	require.NoError(t, err)
	assert.Equal(t, model.MovementExpense, m.Type)
	assert.True(t, m.BalanceAfter.Equal(mustDec("40.00")))

	_, err = svc.Expense(context.Background(), tenantID, fund.ID, mustDec("45.00"), "Too much", userID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds fund balance")
}

func TestPettyCash_OnlyPettyCashAccounts(t *testing.T) {
	repo, svc, tenantID, userID := newPettyCashFixture()
	bank := seedAccount(repo, model.LedgerKindCashAccount, "500.00", "0")
	bank.TenantID = tenantID

	_, err := svc.Deposit(context.Background(), tenantID, bank.ID, mustDec("10.00"), "x", userID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPettyCash_CrossTenantLooksLikeMissing(t *testing.T) {
	repo, svc, tenantID, userID := newPettyCashFixture()
	foreign := seedAccount(repo, model.LedgerKindPettyCash, "100.00", "0")

	_, err := svc.Expense(context.Background(), tenantID, foreign.ID, mustDec("10.00"), "x", userID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
