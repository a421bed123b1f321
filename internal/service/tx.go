package service

import (
	"context"

	"gorm.io/gorm"
)

// runTx opens a database transaction and runs fn inside it. When db is nil
// (unit tests exercising services against stub repositories) fn runs with a
// nil tx; stub repositories ignore the tx handle.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}
