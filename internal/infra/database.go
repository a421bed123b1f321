package infra

import (
	"fmt"

	"github.com/rmoralez/pos-sub000/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and runs
// AutoMigrate to create or update all tables.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return db, nil
}

// RunMigrations applies the schema. Uuid generation relies on pgcrypto's
// gen_random_uuid, built in since PostgreSQL 13.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Product{},
		&model.ProductVariant{},
		&model.Location{},
		&model.StockItem{},
		&model.StockMovement{},
		&model.LedgerAccount{},
		&model.LedgerMovement{},
		&model.Customer{},
		&model.Sale{},
		&model.SaleItem{},
		&model.SalePayment{},
		&model.Quote{},
		&model.QuoteItem{},
		&model.Supplier{},
		&model.PurchaseOrder{},
		&model.PurchaseOrderItem{},
		&model.SupplierInvoice{},
		&model.SupplierPayment{},
		&model.PaymentAllocation{},
		&model.PaymentMethodMapping{},
		&model.Invoice{},
		&model.User{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}

	// Partial index backing the fiscal retry sweep.
	return db.Exec(`
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_sales_pending_fiscal_retry') THEN
    CREATE INDEX idx_sales_pending_fiscal_retry
        ON sales (next_fiscal_retry)
        WHERE fiscal_status = 'pending' AND next_fiscal_retry IS NOT NULL;
  END IF;
END $$`).Error
}
