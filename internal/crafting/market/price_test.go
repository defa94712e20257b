package market

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RedVerrask/Discord-bot-sub000/pkg/crafting"
)

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		gold, silver, copper int64
		want                 string
	}{
		{1, 50, 0, "1g 50s"},
		{0, 0, 0, "0c"},
		{0, 0, 7, "7c"},
		{2, 0, 5, "2g 5c"},
		{0, 150, 0, "1g 50s"},
		{12, 3, 45, "12g 3s 45c"},
	}
	for _, tt := range tests {
		got := FormatPrice(ToMinorUnits(tt.gold, tt.silver, tt.copper))
		assert.Equal(t, tt.want, got, "%dg %ds %dc", tt.gold, tt.silver, tt.copper)
	}
	assert.Equal(t, "-1s", FormatPrice(-100))
	assert.Equal(t, "-922337203685477g 58s 8c", FormatPrice(math.MinInt64))
}

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(15000), ToMinorUnits(1, 50, 0))
	assert.Equal(t, int64(10203), ToMinorUnits(1, 2, 3))
}

func TestCheckedMinorUnits(t *testing.T) {
	copper, err := CheckedMinorUnits(1, 50, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(15000), copper)

	copper, err = CheckedMinorUnits(922337203685477, 58, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), copper)

	_, err = CheckedMinorUnits(922337203685478, 0, 0)
	assert.ErrorIs(t, err, ErrPriceOverflow)
	_, err = CheckedMinorUnits(0, 0, math.MaxInt64)
	assert.NoError(t, err)
	_, err = CheckedMinorUnits(0, 1, math.MaxInt64)
	assert.ErrorIs(t, err, ErrPriceOverflow)
	_, err = CheckedMinorUnits(1, -1, 0)
	assert.ErrorIs(t, err, ErrNegativePrice)
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want crafting.Price
	}{
		{"250", crafting.CopperPrice(250)},
		{"1g 50s", crafting.CopperPrice(15000)},
		{"2G5C", crafting.CopperPrice(20005)},
		{" 3s ", crafting.CopperPrice(300)},
		{"", crafting.Price{}},
		{"-5", crafting.Price{Display: "-5"}},
		{"1.5g", crafting.Price{Display: "1.5g"}},
		{"1g 2g", crafting.Price{Display: "1g 2g"}},
		{"12 gold", crafting.Price{Display: "12 gold"}},
		{"5g 3", crafting.Price{Display: "5g 3"}},
		{"best offer", crafting.Price{Display: "best offer"}},
		{"922337203685478g", crafting.Price{Display: "922337203685478g"}},
		{"922337203685477g 58s 8c", crafting.Price{Display: "922337203685477g 58s 8c"}},
		{"99999999999999999999", crafting.Price{Display: "99999999999999999999"}},
		{"1 2g", crafting.Price{Display: "1 2g"}},
		{"1 g 2 s", crafting.CopperPrice(10200)},
		{"1,000c", crafting.CopperPrice(1000)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePrice(tt.in))
		})
	}
}

func TestDisplayPrice(t *testing.T) {
	assert.Equal(t, "1g 50s", DisplayPrice(crafting.CopperPrice(15000)))
	assert.Equal(t, "best offer", DisplayPrice(crafting.Price{Display: "best offer"}))
}
