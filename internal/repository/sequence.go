package repository

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document number families exposed to callers as PREFIX-000001.
const (
	FamilySale     = "SALE"
	FamilyQuote    = "QUOTE"
	FamilyPurchase = "PO"
)

const sequenceWidth = 6

// NextDocumentNumber returns the next number for a document family within a
// tenant by scanning the current maximum suffix inside the caller's
// transaction. Zero padding keeps lexical and numeric order aligned, so the
// lexical max is the numeric max. Two concurrent settlements can still
// compute the same number; the unique constraint on (tenant_id, number) is
// the backstop — the later commit fails and is surfaced as a conflict, never
// silently reassigned.
func NextDocumentNumber(tx *gorm.DB, table string, tenantID uuid.UUID, family string) (string, error) {
	var last *string
	err := tx.Raw(
		fmt.Sprintf("SELECT MAX(number) FROM %s WHERE tenant_id = ? AND number LIKE ?", table),
		tenantID, family+"-%",
	).Scan(&last).Error
	if err != nil {
		return "", fmt.Errorf("next document number for %s: %w", family, err)
	}

	seq := 0
	if last != nil {
		n, err := ParseSequence(*last)
		if err != nil {
			return "", err
		}
		seq = n
	}
	return FormatNumber(family, seq+1), nil
}

// FormatNumber renders a family + sequence as SALE-000042.
func FormatNumber(family string, seq int) string {
	return fmt.Sprintf("%s-%0*d", family, sequenceWidth, seq)
}

// ParseSequence extracts the numeric suffix of a formatted document number.
func ParseSequence(number string) (int, error) {
	idx := strings.LastIndex(number, "-")
	if idx < 0 || idx == len(number)-1 {
		return 0, fmt.Errorf("malformed document number %q", number)
	}
	n, err := strconv.Atoi(number[idx+1:])
	if err != nil {
		return 0, fmt.Errorf("malformed document number %q: %w", number, err)
	}
	return n, nil
}
