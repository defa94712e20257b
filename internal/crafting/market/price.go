package market

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/RedVerrask/Discord-bot-sub000/pkg/crafting"
)

// Currency units in copper.
const (
	CopperPerSilver = 100
	CopperPerGold   = 100 * CopperPerSilver
)

// Price amount errors.
var (
	ErrNegativePrice = errors.New("price amounts must not be negative")
	ErrPriceOverflow = errors.New("price is too large")
)

// ToMinorUnits converts a gold/silver/copper amount to copper. It does not
// check for overflow; use CheckedMinorUnits for user input.
func ToMinorUnits(gold, silver, copper int64) int64 {
	return gold*CopperPerGold + silver*CopperPerSilver + copper
}

// CheckedMinorUnits is ToMinorUnits for non-negative amounts whose total
// fits in an int64.
func CheckedMinorUnits(gold, silver, copper int64) (int64, error) {
	if gold < 0 || silver < 0 || copper < 0 {
		return 0, ErrNegativePrice
	}
	var total int64
	for _, part := range [...]struct{ n, unit int64 }{
		{gold, CopperPerGold},
		{silver, CopperPerSilver},
		{copper, 1},
	} {
		next, ok := addUnits(total, part.n, part.unit)
		if !ok {
			return 0, ErrPriceOverflow
		}
		total = next
	}
	return total, nil
}

// addUnits returns total + n*unit for non-negative operands, or false on overflow.
func addUnits(total, n, unit int64) (int64, bool) {
	if n > (math.MaxInt64-total)/unit {
		return 0, false
	}
	return total + n*unit, true
}

// FormatPrice renders copper with only its non-zero units, e.g. "1g 50s".
// Zero renders as "0c".
func FormatPrice(copper int64) string {
	sign := ""
	amount := uint64(copper)
	if copper < 0 {
		sign = "-"
		amount = -amount
	}
	g, rem := amount/CopperPerGold, amount%CopperPerGold
	s, c := rem/CopperPerSilver, rem%CopperPerSilver

	var parts []string
	if g > 0 {
		parts = append(parts, strconv.FormatUint(g, 10)+"g")
	}
	if s > 0 {
		parts = append(parts, strconv.FormatUint(s, 10)+"s")
	}
	if c > 0 {
		parts = append(parts, strconv.FormatUint(c, 10)+"c")
	}
	if len(parts) == 0 {
		return "0c"
	}
	return sign + strings.Join(parts, " ")
}

// ParsePrice reads a price typed by a user. Plain digits are copper;
// "1g 50s", "2g5c" and similar unit forms are summed. Anything else,
// including amounts too large for an int64, is kept as an unparsed
// display string.
func ParsePrice(s string) crafting.Price {
	s = strings.TrimSpace(s)
	if s == "" {
		return crafting.Price{}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return crafting.Price{Display: s}
		}
		return crafting.CopperPrice(n)
	}

	var total int64
	var digits strings.Builder
	gap := false
	seen := map[byte]bool{}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch >= '0' && ch <= '9':
			// "1 2g" is two numbers, not 12.
			if gap {
				return crafting.Price{Display: s}
			}
			digits.WriteByte(ch)
		case ch == ' ':
			gap = digits.Len() > 0
		case ch == ',':
			continue
		default:
			gap = false
			unit := ch | 0x20 // lower-case ASCII
			if digits.Len() == 0 || seen[unit] {
				return crafting.Price{Display: s}
			}
			n, err := strconv.ParseInt(digits.String(), 10, 64)
			if err != nil {
				return crafting.Price{Display: s}
			}
			var per int64
			switch unit {
			case 'g':
				per = CopperPerGold
			case 's':
				per = CopperPerSilver
			case 'c':
				per = 1
			default:
				return crafting.Price{Display: s}
			}
			next, ok := addUnits(total, n, per)
			if !ok {
				return crafting.Price{Display: s}
			}
			total = next
			seen[unit] = true
			digits.Reset()
		}
	}
	if digits.Len() > 0 {
		return crafting.Price{Display: s}
	}
	return crafting.CopperPrice(total)
}

// DisplayPrice renders a stored price for humans.
func DisplayPrice(p crafting.Price) string {
	if p.Parsed {
		return FormatPrice(p.Copper)
	}
	return p.Display
}
