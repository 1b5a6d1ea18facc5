package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRound_HalfAwayFromZero(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"1.005", "1.01"},
		{"1.004", "1"},
		{"-1.005", "-1.01"},
		{"2.675", "2.68"},
		{"333.3333333", "333.33"},
		{"0.125", "0.13"},
	}

	for _, c := range cases {
		assert.True(t, Round(d(c.in)).Equal(d(c.want)), "Round(%s) = %s, want %s", c.in, Round(d(c.in)), c.want)
	}
}

func TestDiv_KeepsPrecisionUntilRound(t *testing.T) {
	t.Parallel()

	daily := Div(d("10000"), 30)

	// Act
	earned := Round(daily.Mul(decimal.NewFromInt(30)))

	// Assert
	assert.True(t, earned.Equal(d("10000")), "got %s", earned)
	assert.True(t, Round(daily).Equal(d("333.33")))
}

func TestFormat(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"0", "0.00"},
		{"5", "5.00"},
		{"999.999", "1,000.00"},
		{"1234.5", "1,234.50"},
		{"45000", "45,000.00"},
		{"1234567.891", "1,234,567.89"},
		{"-9800", "-9,800.00"},
		{"100000", "100,000.00"},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, Format(d(c.in)), "Format(%s)", c.in)
	}
}

func TestMinMaxSum(t *testing.T) {
	t.Parallel()

	assert.True(t, Min(d("1"), d("2")).Equal(d("1")))
	assert.True(t, Max(d("1"), d("2")).Equal(d("2")))
	assert.True(t, Sum(d("1.10"), d("2.20"), d("3.30")).Equal(d("6.6")))
	assert.True(t, Sum().Equal(decimal.Zero))
}
