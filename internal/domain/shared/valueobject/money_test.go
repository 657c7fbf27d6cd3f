package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoneyFromString(t *testing.T) {
	t.Run("valid string", func(t *testing.T) {
		m, err := NewMoneyFromString("123.45")
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(123.45)))
	})

	t.Run("invalid string", func(t *testing.T) {
		_, err := NewMoneyFromString("not-a-number")
		assert.Error(t, err)
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	a := NewMoneyFromFloat(100)
	b := NewMoneyFromFloat(40)

	assert.True(t, a.Add(b).Equals(NewMoneyFromFloat(140)))
	assert.True(t, a.Subtract(b).Equals(NewMoneyFromFloat(60)))
	assert.True(t, b.Subtract(a).IsNegative())
	assert.True(t, a.Min(b).Equals(b))
	assert.True(t, b.Min(a).Equals(b))
	assert.True(t, b.LessThan(a))
	assert.True(t, a.GreaterThan(b))
	assert.True(t, Zero().IsZero())
}

func TestMoney_Grouped(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		want   string
	}{
		{"zero", 0, "0.00"},
		{"small", 500, "500.00"},
		{"thousands", 12000, "12,000.00"},
		{"millions with cents", 1234567.891, "1,234,567.89"},
		{"negative", -1500, "-1,500.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewMoneyFromFloat(tt.amount).Grouped())
		})
	}
}

func TestMoney_Format(t *testing.T) {
	assert.Equal(t, "₹10,000.00", NewMoneyFromFloat(10000).Format(DefaultCurrencySymbol))
	assert.Equal(t, "$2.50", NewMoneyFromFloat(2.5).Format("$"))
}

func TestMoney_JSON(t *testing.T) {
	data, err := json.Marshal(NewMoneyFromFloat(99.5))
	require.NoError(t, err)
	assert.Equal(t, `"99.5"`, string(data))

	var m Money
	require.NoError(t, json.Unmarshal([]byte(`"250.75"`), &m))
	assert.Equal(t, "250.75", m.String())

	require.NoError(t, json.Unmarshal([]byte(`42`), &m))
	assert.Equal(t, "42.00", m.String())
}
