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

// CustomerInput is the customer master data plus the running-account terms.
type CustomerInput struct {
	TenantID    uuid.UUID
	Name        string
	TaxID       *string
	TaxStatus   string
	Email       *string
	Phone       *string
	CreditLimit decimal.Decimal
	UserID      uuid.UUID
}

// CustomerService manages customers and their 1:1 running accounts. Creating
// a customer creates the ledger account in the same transaction; charges and
// credits against it flow through the ledger service like any other posting.
type CustomerService struct {
	customers repository.CustomerRepository
	ledger    *LedgerService
}

func NewCustomerService(customers repository.CustomerRepository, ledger *LedgerService) *CustomerService {
	return &CustomerService{customers: customers, ledger: ledger}
}

// CreateCustomer stores the customer together with a fresh running account.
func (s *CustomerService) CreateCustomer(ctx context.Context, in CustomerInput) (*model.Customer, error) {
	if in.TaxStatus == "" {
		in.TaxStatus = model.TaxStatusFinalConsumer
	}
	switch in.TaxStatus {
	case model.TaxStatusRegistered, model.TaxStatusFinalConsumer, model.TaxStatusExempt:
	default:
		return nil, fmt.Errorf("unknown tax status %q", in.TaxStatus)
	}
	if in.CreditLimit.IsNegative() {
		return nil, fmt.Errorf("credit limit must not be negative")
	}

	account := &model.LedgerAccount{
		TenantID:    in.TenantID,
		Kind:        model.LedgerKindCustomerAccount,
		Name:        fmt.Sprintf("Account of %s", in.Name),
		CreditLimit: in.CreditLimit,
		IsActive:    true,
	}
	customer := &model.Customer{
		TenantID:  in.TenantID,
		Name:      in.Name,
		TaxID:     in.TaxID,
		TaxStatus: in.TaxStatus,
		Email:     in.Email,
		Phone:     in.Phone,
		IsActive:  true,
	}

	err := runTx(ctx, s.customers.DB(), func(tx *gorm.DB) error {
		if err := s.ledger.createAccountTx(tx, account); err != nil {
			return fmt.Errorf("creating running account: %w", err)
		}
		customer.AccountID = account.ID
		if tx == nil {
			return s.customers.Create(ctx, customer)
		}
		return tx.Create(customer).Error
	})
	if err != nil {
		return nil, err
	}
	customer.Account = account
	return customer, nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, tenantID, id uuid.UUID) (*model.Customer, error) {
	customer, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer.TenantID != tenantID {
		return nil, gorm.ErrRecordNotFound
	}
	return customer, nil
}

func (s *CustomerService) ListCustomers(ctx context.Context, tenantID uuid.UUID, includeInactive bool) ([]model.Customer, error) {
	return s.customers.List(ctx, tenantID, includeInactive)
}

// UpdateCustomer updates master data and the account's credit limit.
func (s *CustomerService) UpdateCustomer(ctx context.Context, tenantID, id uuid.UUID, in CustomerInput) (*model.Customer, error) {
	customer, err := s.GetCustomer(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if in.CreditLimit.IsNegative() {
		return nil, fmt.Errorf("credit limit must not be negative")
	}

	customer.Name = in.Name
	customer.TaxID = in.TaxID
	if in.TaxStatus != "" {
		customer.TaxStatus = in.TaxStatus
	}
	customer.Email = in.Email
	customer.Phone = in.Phone

	err = runTx(ctx, s.customers.DB(), func(tx *gorm.DB) error {
		if tx != nil {
			if err := tx.Model(&model.LedgerAccount{}).Where("id = ?", customer.AccountID).
				Update("credit_limit", in.CreditLimit).Error; err != nil {
				return fmt.Errorf("updating credit limit: %w", err)
			}
			return tx.Omit("Account").Save(customer).Error
		}
		return s.customers.Update(ctx, customer)
	})
	if err != nil {
		return nil, err
	}
	return customer, nil
}

// Statement returns the running-account movement log.
func (s *CustomerService) Statement(ctx context.Context, tenantID, customerID uuid.UUID, filter repository.LedgerMovementFilter) ([]model.LedgerMovement, int64, error) {
	customer, err := s.GetCustomer(ctx, tenantID, customerID)
	if err != nil {
		return nil, 0, err
	}
	filter.AccountID = customer.AccountID
	return s.ledger.Statement(ctx, filter)
}

// CreditAccount books a manual credit: the customer paid down their debt or
// deposited in advance.
func (s *CustomerService) CreditAccount(ctx context.Context, tenantID, customerID uuid.UUID, amount decimal.Decimal, concept string, userID uuid.UUID) (*model.LedgerMovement, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("credit amount must be positive")
	}
	return s.adjust(ctx, tenantID, customerID, model.MovementAccountCredit, amount, concept, userID)
}

// ChargeAccount books a manual charge against the running account; the
// credit limit applies as on account-credit sales.
func (s *CustomerService) ChargeAccount(ctx context.Context, tenantID, customerID uuid.UUID, amount decimal.Decimal, concept string, userID uuid.UUID) (*model.LedgerMovement, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("charge amount must be positive")
	}
	return s.adjust(ctx, tenantID, customerID, model.MovementAccountCharge, amount.Neg(), concept, userID)
}

func (s *CustomerService) adjust(ctx context.Context, tenantID, customerID uuid.UUID, movementType string, amount decimal.Decimal, concept string, userID uuid.UUID) (*model.LedgerMovement, error) {
	customer, err := s.GetCustomer(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}

	var movement *model.LedgerMovement
	err = runTx(ctx, s.customers.DB(), func(tx *gorm.DB) error {
		m, err := s.ledger.ApplyDeltaTx(tx, LedgerDelta{
			AccountID: customer.AccountID,
			TenantID:  tenantID,
			Kind:      model.LedgerKindCustomerAccount,
			Type:      movementType,
			Amount:    amount,
			Concept:   concept,
			UserID:    userID,
		})
		if err != nil {
			return err
		}
		movement = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}
