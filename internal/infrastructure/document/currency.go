package document

import (
	"fmt"
	"strings"

	"github.com/lotiva/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const currencyWord = "Reais"

// FormatCurrency renders v as "R$ 1.234,56 (Mil Duzentos e Trinta e Quatro Reais)".
// The value is rounded half-up to cents; only the integer part is spelled out.
func FormatCurrency(v decimal.Decimal) (string, error) {
	if v.IsNegative() {
		return "", shared.NewValidationError("currency value cannot be negative")
	}

	rounded := v.Round(2)
	words, err := NumberToWords(rounded.Floor().IntPart())
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s (%s %s)", FormatMoney(rounded), words, currencyWord), nil
}

// FormatMoney renders v as "R$ 1.234,56" without the spelled-out amount
func FormatMoney(v decimal.Decimal) string {
	if v.IsNegative() {
		return "-R$ " + FormatDecimal2(v.Neg())
	}
	return "R$ " + FormatDecimal2(v)
}

// FormatDecimal2 renders v with two decimals and Brazilian separators ("1.250,50")
func FormatDecimal2(v decimal.Decimal) string {
	sign := ""
	if v.IsNegative() {
		sign = "-"
		v = v.Neg()
	}

	fixed := v.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	return sign + groupThousands(intPart) + "," + frac
}

// groupThousands inserts "." every three digits from the right
func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
