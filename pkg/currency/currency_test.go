package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertSameCurrencyIsIdentity(t *testing.T) {
	assert.Equal(t, 123.45, Convert(123.45, "SAR", "SAR"))
	assert.Equal(t, 9.99, Convert(9.99, "KWD", "KWD"))
}

func TestConvertFromBase(t *testing.T) {
	// 1 SAR = 0.12 KWD, rounded to 3 decimal places.
	assert.InDelta(t, 12.0, Convert(100, "SAR", "KWD"), 1e-9)
	// 1 SAR = 8.20 EGP, 2 decimal places.
	assert.InDelta(t, 82.0, Convert(10, "SAR", "EGP"), 1e-9)
}

func TestConvertPivotsThroughBase(t *testing.T) {
	// 98 AED -> 100 SAR -> 12 KWD.
	assert.InDelta(t, 12.0, Convert(98, "AED", "KWD"), 1e-9)
}

func TestConvertUnknownCodeLeavesAmount(t *testing.T) {
	assert.Equal(t, 55.5, Convert(55.5, "SAR", "USD"))
	assert.Equal(t, 55.5, Convert(55.5, "XXX", "SAR"))
}

func TestConvertRoundsToTargetPlaces(t *testing.T) {
	// 1 SAR = 0.12 KWD; 3.333 SAR -> 0.39996 -> 0.400 at 3 places.
	assert.InDelta(t, 0.400, Convert(3.333, "SAR", "KWD"), 1e-9)
}

func TestFormatSymbolPlacement(t *testing.T) {
	// SAR carries its symbol on the right, AED on the left.
	assert.Equal(t, "100.00 ريال", Format(100, "SAR"))
	assert.Equal(t, "د.إ 98.00", Format(98, "AED"))
	// KWD formats with 3 decimal places.
	assert.Equal(t, "د.ك 0.400", Format(0.4, "KWD"))
}

func TestFormatUnknownCodeFallsBack(t *testing.T) {
	assert.Equal(t, "10.00 ريال", Format(10, "USD"))
}

func TestFormatWithFlag(t *testing.T) {
	assert.Equal(t, "🇸🇦 100.00 ريال", FormatWithFlag(100, "SAR"))
	assert.Equal(t, "🇰🇼 د.ك 12.000", FormatWithFlag(12, "KWD"))
}

func TestTaxAndTotal(t *testing.T) {
	assert.InDelta(t, 30.0, Tax(200, 0.15, "SAR"), 1e-9)
	assert.InDelta(t, 230.0, TotalWithTax(200, 0.15, "SAR"), 1e-9)
	// KWD rounds tax to 3 places.
	assert.InDelta(t, 0.15, Tax(1, 0.15, "KWD"), 1e-9)
}

func TestListIsSortedAndComplete(t *testing.T) {
	list := List()
	require.Len(t, list, 7)
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].Code, list[i].Code)
	}
}

func TestGetAndIsValid(t *testing.T) {
	c, ok := Get("BHD")
	require.True(t, ok)
	assert.Equal(t, 3, c.DecimalPlaces)
	assert.Equal(t, PositionLeft, c.Position)

	_, ok = Get("USD")
	assert.False(t, ok)
	assert.True(t, IsValid("SAR"))
	assert.False(t, IsValid(""))
}
