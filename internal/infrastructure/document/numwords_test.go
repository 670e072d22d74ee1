package document

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/lotiva/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberToWords(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "Zero"},
		{1, "Um"},
		{10, "Dez"},
		{14, "Quatorze"},
		{16, "Dezesseis"},
		{20, "Vinte"},
		{21, "Vinte e Um"},
		{99, "Noventa e Nove"},
		{100, "Cem"},
		{101, "Cento e Um"},
		{123, "Cento e Vinte e Três"},
		{200, "Duzentos"},
		{999, "Novecentos e Noventa e Nove"},
		{1000, "Mil"},
		{1001, "Mil e Um"},
		{1500, "Mil e Quinhentos"},
		{1234, "Mil Duzentos e Trinta e Quatro"},
		{2000, "Dois Mil"},
		{2020, "Dois Mil e Vinte"},
		{7500, "Sete Mil e Quinhentos"},
		{10000, "Dez Mil"},
		{100000, "Cem Mil"},
		{101000, "Cento e Um Mil"},
		{1000000, "Um Milhão"},
		{1000001, "Um Milhão e Um"},
		{2500000, "Dois Milhões e Quinhentos Mil"},
		{1234567, "Um Milhão Duzentos e Trinta e Quatro Mil Quinhentos e Sessenta e Sete"},
		{1000000000, "Um Bilhão"},
		{3000000000, "Três Bilhões"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := NumberToWords(tt.n)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNumberToWords_Rejects(t *testing.T) {
	t.Run("negative", func(t *testing.T) {
		_, err := NumberToWords(-1)
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("too large", func(t *testing.T) {
		_, err := NumberToWords(MaxSpelledNumber)
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("largest accepted", func(t *testing.T) {
		_, err := NumberToWords(MaxSpelledNumber - 1)
		assert.NoError(t, err)
	})
}

func TestNumberToWords_RoundTrip(t *testing.T) {
	r := rand.New(rand.NewPCG(42, 1024))

	samples := []int64{0, 1, 19, 20, 100, 101, 110, 999, 1000, 1100, 100100, 999999, 1000000, 999999999}
	for i := 0; i < 5000; i++ {
		samples = append(samples, r.Int64N(1_000_000_000))
	}
	for i := 0; i < 500; i++ {
		samples = append(samples, r.Int64N(MaxSpelledNumber))
	}

	for _, n := range samples {
		words, err := NumberToWords(n)
		require.NoError(t, err)

		back, err := wordsToNumber(words)
		require.NoError(t, err, "parse %q", words)
		require.Equal(t, n, back, "round trip of %q", words)
	}
}

// wordsToNumber parses the output of NumberToWords
func wordsToNumber(s string) (int64, error) {
	values := map[string]int64{"Cem": 100}
	for i, w := range unitWords {
		values[w] = int64(i)
	}
	for i, w := range tenWords {
		if w != "" {
			values[w] = int64(i * 10)
		}
	}
	for i, w := range hundredWords {
		if w != "" {
			values[w] = int64(i * 100)
		}
	}
	multipliers := map[string]int64{
		"Mil":     1_000,
		"Milhão":  1_000_000,
		"Milhões": 1_000_000,
		"Bilhão":  1_000_000_000,
		"Bilhões": 1_000_000_000,
	}

	var total, current int64
	for _, tok := range strings.Fields(s) {
		if tok == "e" {
			continue
		}
		if v, ok := values[tok]; ok {
			current += v
			continue
		}
		m, ok := multipliers[tok]
		if !ok {
			return 0, errors.New("unknown word " + tok)
		}
		if current == 0 {
			current = 1
		}
		total += current * m
		current = 0
	}
	return total + current, nil
}
