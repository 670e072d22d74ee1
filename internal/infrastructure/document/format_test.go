package document

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatLongDate(t *testing.T) {
	saoPaulo := time.FixedZone("BRT", -3*60*60)

	t.Run("pads day", func(t *testing.T) {
		d := time.Date(2025, 1, 2, 15, 0, 0, 0, time.UTC)
		assert.Equal(t, "02 de janeiro de 2025", FormatLongDate(d, time.UTC))
	})

	t.Run("converts to location", func(t *testing.T) {
		d := time.Date(2025, 3, 1, 1, 0, 0, 0, time.UTC)
		assert.Equal(t, "28 de fevereiro de 2025", FormatLongDate(d, saoPaulo))
	})

	t.Run("month with accent", func(t *testing.T) {
		d := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
		assert.Equal(t, "15 de março de 2024", FormatLongDate(d, nil))
	})
}

func TestFormatShortDate(t *testing.T) {
	d := time.Date(1990, 7, 9, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "09/07/1990", FormatShortDate(d, nil))
}

func TestFormatCPF(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12345678901", "123.456.789-01"},
		{"123.456.789-01", "123.456.789-01"},
		{"1234", "1234"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCPF(tt.in), tt.in)
	}
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "12345678901", DigitsOnly("123.456.789-01"))
	assert.Equal(t, "", DigitsOnly("abc"))
}
