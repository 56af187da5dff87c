package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestNew_NegativeAmount_Fails(t *testing.T) {
	_, err := New(decimal.NewFromFloat(-0.01))
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = FromFloat(-10)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = Parse("-1.00")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestAdd_IsExact(t *testing.T) {
	// 0.1 + 0.2 drifts under float64; must stay exact here.
	a := MustParse("0.1")
	b := MustParse("0.2")

	assert.Equal(t, "0.30", a.Add(b).String())
}

func TestMul_ScalesByQuantity(t *testing.T) {
	unit := MustParse("19.99")

	assert.Equal(t, "59.97", unit.Mul(3).String())
	assert.Equal(t, "0.00", unit.Mul(0).String())
}

func TestApplyDiscount_PixRate(t *testing.T) {
	total := MustParse("130.00")
	got := total.ApplyDiscount(decimal.NewFromFloat(0.05))

	assert.Equal(t, "123.50", got.String())
}

func TestApplyDiscount_RoundsHalfToEven(t *testing.T) {
	// Amounts whose discounted value lands exactly on a half cent must tie
	// to the even neighbour.
	cases := []struct {
		amount   string
		fraction float64
		want     string
	}{
		{"1.10", 0.5, "0.55"},
		{"0.25", 0.5, "0.12"}, // 0.125 ties to even: 0.12
		{"0.75", 0.5, "0.38"}, // 0.375 ties to even: 0.38
		{"100.00", 0.05, "95.00"},
	}

	for _, tc := range cases {
		got := MustParse(tc.amount).ApplyDiscount(decimal.NewFromFloat(tc.fraction))
		assert.Equal(t, tc.want, got.String(), "amount %s fraction %v", tc.amount, tc.fraction)
	}
}

func TestApplyDiscount_ZeroFraction_Unchanged(t *testing.T) {
	total := MustParse("99.90")
	assert.True(t, total.Equal(total.ApplyDiscount(decimal.Zero)))
}

func TestJSON_RoundTrip(t *testing.T) {
	orig := MustParse("123.50")

	data, err := json.Marshal(orig)
	require.NoError(t, err)

	var back Money
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, orig.Equal(back))
}

func TestJSON_Unmarshal_RejectsNegative(t *testing.T) {
	var m Money
	err := json.Unmarshal([]byte(`"-5.00"`), &m)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestFormat_CarriesNumericValue(t *testing.T) {
	m := MustParse("123.50")
	out := m.Format(language.BrazilianPortuguese)

	// Correctness of locale punctuation is out of scope; the numeric value
	// must survive formatting.
	assert.Contains(t, out, "123")
}
