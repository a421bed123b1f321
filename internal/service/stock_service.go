package service

import (
	"context"
	"fmt"

	"github.com/rmoralez/pos-sub000/internal/model"
	"github.com/rmoralez/pos-sub000/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockLine names one (product, variant, location) quantity in a stock
// operation. Quantity is always positive; the operation decides the sign.
type StockLine struct {
	ProductID   uuid.UUID
	VariantID   *uuid.UUID
	LocationID  uuid.UUID
	ProductName string
	Quantity    int
}

// StockService maintains on-hand quantities and their append-only movement
// log. Multi-line operations validate every line against locked rows before
// mutating any of them, so a sale either reserves all of its stock or none.
type StockService struct {
	repo repository.StockRepository
}

func NewStockService(repo repository.StockRepository) *StockService {
	return &StockService{repo: repo}
}

// DecrementTx removes stock for every line inside the caller's transaction.
// All rows are locked and validated first; the first line that would go
// negative aborts the whole operation with the offending product's figures.
func (s *StockService) DecrementTx(tx *gorm.DB, tenantID uuid.UUID, lines []StockLine, movementType string, documentID *uuid.UUID, reason string, userID uuid.UUID) error {
	items := make([]*model.StockItem, len(lines))
	for i, line := range lines {
		item, err := s.repo.FindItemForUpdateTx(tx, tenantID, line.ProductID, line.VariantID, line.LocationID)
		if err == gorm.ErrRecordNotFound {
			return &InsufficientStockError{Product: line.ProductName, Requested: line.Quantity, Available: 0}
		}
		if err != nil {
			return fmt.Errorf("loading stock item: %w", err)
		}
		if item.Quantity < line.Quantity {
			return &InsufficientStockError{
				Product:   line.ProductName,
				Requested: line.Quantity,
				Available: item.Quantity,
			}
		}
		items[i] = item
	}
	for i, line := range lines {
		if err := s.applyTx(tx, items[i], -line.Quantity, movementType, documentID, reason, userID); err != nil {
			return err
		}
	}
	return nil
}

// IncrementTx adds stock for every line, creating missing stock items on the
// fly. Used by sale cancellation, purchase receipts and positive adjustments.
func (s *StockService) IncrementTx(tx *gorm.DB, tenantID uuid.UUID, lines []StockLine, movementType string, documentID *uuid.UUID, reason string, userID uuid.UUID) error {
	for _, line := range lines {
		item, err := s.repo.FindOrCreateItemTx(tx, tenantID, line.ProductID, line.VariantID, line.LocationID)
		if err != nil {
			return fmt.Errorf("loading stock item: %w", err)
		}
		if err := s.applyTx(tx, item, line.Quantity, movementType, documentID, reason, userID); err != nil {
			return err
		}
	}
	return nil
}

func (s *StockService) applyTx(tx *gorm.DB, item *model.StockItem, delta int, movementType string, documentID *uuid.UUID, reason string, userID uuid.UUID) error {
	after := item.Quantity + delta
	movement := &model.StockMovement{
		TenantID:       item.TenantID,
		StockItemID:    item.ID,
		Type:           movementType,
		Quantity:       delta,
		QuantityBefore: item.Quantity,
		QuantityAfter:  after,
		Reason:         reason,
		DocumentID:     documentID,
		UserID:         userID,
	}
	if err := s.repo.CreateMovementTx(tx, movement); err != nil {
		return fmt.Errorf("writing stock movement: %w", err)
	}
	if err := s.repo.UpdateQuantityTx(tx, item.ID, after); err != nil {
		return fmt.Errorf("updating stock quantity: %w", err)
	}
	item.Quantity = after
	return nil
}

// Adjust applies a manual correction to a single item. Negative adjustments
// may not take the quantity below zero.
func (s *StockService) Adjust(ctx context.Context, tenantID uuid.UUID, line StockLine, delta int, reason string, userID uuid.UUID) error {
	if delta == 0 {
		return fmt.Errorf("adjustment delta must be nonzero")
	}
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		l := line
		l.Quantity = delta
		if delta > 0 {
			return s.IncrementTx(tx, tenantID, []StockLine{l}, model.StockMovementAdjust, nil, reason, userID)
		}
		l.Quantity = -delta
		return s.DecrementTx(tx, tenantID, []StockLine{l}, model.StockMovementAdjust, nil, reason, userID)
	})
}

// Availability reports the current on-hand quantity, zero when no stock item
// exists yet for the key.
func (s *StockService) Availability(ctx context.Context, tenantID, productID uuid.UUID, variantID *uuid.UUID, locationID uuid.UUID) (int, error) {
	item, err := s.repo.FindItem(ctx, tenantID, productID, variantID, locationID)
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return item.Quantity, nil
}

// LowStock lists items at or below their minimum quantity.
func (s *StockService) LowStock(ctx context.Context, tenantID uuid.UUID) ([]model.StockItem, error) {
	return s.repo.LowStock(ctx, tenantID)
}

func (s *StockService) ListMovements(ctx context.Context, filter repository.StockMovementFilter) ([]model.StockMovement, int64, error) {
	return s.repo.ListMovements(ctx, filter)
}
