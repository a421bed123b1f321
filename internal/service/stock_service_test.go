package service

import (
	"context"
	"testing"

	"github.com/rmoralez/pos-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjust_PositiveAndNegative(t *testing.T) {
	repo := newStubStockRepo()
	svc := NewStockService(repo)
	tenantID := uuid.New()
	productID := uuid.New()
	locationID := uuid.New()
	userID := uuid.New()

	line := StockLine{ProductID: productID, LocationID: locationID, ProductName: "Widget"}

	// Positive adjustment creates the item on the fly.
	err := svc.Adjust(context.Background(), tenantID, line, 15, "Initial count", userID)
	require.NoError(t, err)

	qty, err := svc.Availability(context.Background(), tenantID, productID, nil, locationID)
	require.NoError(t, err)
	assert.Equal(t, 15, qty)

	err = svc.Adjust(context.Background(), tenantID, line, -5, "Breakage", userID)
	require.NoError(t, err)

	qty, err = svc.Availability(context.Background(), tenantID, productID, nil, locationID)
	require.NoError(t, err)
	assert.Equal(t, 10, qty)

	require.Len(t, repo.movements, 2)
	assert.Equal(t, model.StockMovementAdjust, repo.movements[0].Type)
	assert.Equal(t, 15, repo.movements[0].Quantity)
	assert.Equal(t, -5, repo.movements[1].Quantity)
	assert.Equal(t, 15, repo.movements[1].QuantityBefore)
	assert.Equal(t, 10, repo.movements[1].QuantityAfter)
}

func TestAdjust_CannotGoNegative(t *testing.T) {
	repo := newStubStockRepo()
	svc := NewStockService(repo)
	tenantID := uuid.New()
	item := repo.seed(tenantID, uuid.New(), nil, uuid.New(), 3)

	line := StockLine{ProductID: item.ProductID, LocationID: item.LocationID, ProductName: "Widget"}
	err := svc.Adjust(context.Background(), tenantID, line, -4, "Oops", uuid.New())
	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 3, insufficient.Available)
	assert.Equal(t, 3, item.Quantity)
}

func TestAdjust_ZeroDeltaRejected(t *testing.T) {
	svc := NewStockService(newStubStockRepo())
	err := svc.Adjust(context.Background(), uuid.New(), StockLine{}, 0, "noop", uuid.New())
	assert.Error(t, err)
}

func TestAvailability_UnknownItemIsZero(t *testing.T) {
	svc := NewStockService(newStubStockRepo())
	qty, err := svc.Availability(context.Background(), uuid.New(), uuid.New(), nil, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 0, qty)
}

func TestLowStock_AtOrBelowMinimum(t *testing.T) {
	repo := newStubStockRepo()
	svc := NewStockService(repo)
	tenantID := uuid.New()

	low := repo.seed(tenantID, uuid.New(), nil, uuid.New(), 2)
	low.MinQuantity = 5
	ok := repo.seed(tenantID, uuid.New(), nil, uuid.New(), 50)
	ok.MinQuantity = 5

	items, err := svc.LowStock(context.Background(), tenantID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, low.ID, items[0].ID)
}
