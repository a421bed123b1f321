package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "SALE-000001", FormatNumber(FamilySale, 1))
	assert.Equal(t, "QUOTE-000042", FormatNumber(FamilyQuote, 42))
	assert.Equal(t, "PO-123456", FormatNumber(FamilyPurchase, 123456))
	// beyond the padding width the number keeps growing
	assert.Equal(t, "SALE-1000000", FormatNumber(FamilySale, 1000000))
}

func TestParseSequence(t *testing.T) {
	n, err := ParseSequence("SALE-000042")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	n, err = ParseSequence("PO-000001")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestParseSequence_Malformed(t *testing.T) {
	for _, number := range []string{"SALE", "SALE-", "SALE-abc", ""} {
		_, err := ParseSequence(number)
		assert.Error(t, err, "number %q", number)
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	for _, seq := range []int{1, 99, 999999, 1000001} {
		n, err := ParseSequence(FormatNumber(FamilySale, seq))
		require.NoError(t, err)
		assert.Equal(t, seq, n)
	}
}
