package document

import (
	"strings"

	"github.com/lotiva/backend/internal/domain/shared"
)

// MaxSpelledNumber is the first value NumberToWords refuses to spell
const MaxSpelledNumber int64 = 1_000_000_000_000

var (
	unitWords = [...]string{
		"Zero", "Um", "Dois", "Três", "Quatro", "Cinco", "Seis", "Sete", "Oito", "Nove",
		"Dez", "Onze", "Doze", "Treze", "Quatorze", "Quinze", "Dezesseis", "Dezessete", "Dezoito", "Dezenove",
	}
	tenWords = [...]string{
		"", "", "Vinte", "Trinta", "Quarenta", "Cinquenta", "Sessenta", "Setenta", "Oitenta", "Noventa",
	}
	hundredWords = [...]string{
		"", "Cento", "Duzentos", "Trezentos", "Quatrocentos", "Quinhentos", "Seiscentos", "Setecentos", "Oitocentos", "Novecentos",
	}
)

// scale is one power-of-thousand group above the units group
type scale struct {
	value    int64
	singular string
	plural   string
}

var scales = []scale{
	{value: 1_000_000_000, singular: "Um Bilhão", plural: "Bilhões"},
	{value: 1_000_000, singular: "Um Milhão", plural: "Milhões"},
	{value: 1_000, singular: "Mil", plural: "Mil"},
}

// NumberToWords spells n as a Portuguese cardinal in title case,
// e.g. 1234 -> "Mil Duzentos e Trinta e Quatro".
func NumberToWords(n int64) (string, error) {
	if n < 0 {
		return "", shared.NewValidationError("cannot spell a negative number")
	}
	if n >= MaxSpelledNumber {
		return "", shared.NewValidationError("number too large to spell")
	}
	if n == 0 {
		return unitWords[0], nil
	}

	var b strings.Builder
	rest := n
	for _, s := range scales {
		group := rest / s.value
		rest %= s.value
		if group == 0 {
			continue
		}
		writeJoined(&b, group)
		switch {
		case group == 1:
			b.WriteString(s.singular)
		default:
			b.WriteString(spellHundreds(group))
			b.WriteByte(' ')
			b.WriteString(s.plural)
		}
	}
	if rest > 0 {
		writeJoined(&b, rest)
		b.WriteString(spellHundreds(rest))
	}

	return b.String(), nil
}

// writeJoined writes the connector that precedes a group of value g.
// Groups below one hundred and round hundreds take "e", others a plain space.
func writeJoined(b *strings.Builder, g int64) {
	if b.Len() == 0 {
		return
	}
	if g < 100 || g%100 == 0 {
		b.WriteString(" e ")
		return
	}
	b.WriteByte(' ')
}

// spellHundreds spells 1..999
func spellHundreds(n int64) string {
	if n == 100 {
		return "Cem"
	}
	h, r := n/100, n%100
	switch {
	case h == 0:
		return spellTens(r)
	case r == 0:
		return hundredWords[h]
	default:
		return hundredWords[h] + " e " + spellTens(r)
	}
}

// spellTens spells 1..99
func spellTens(n int64) string {
	if n < 20 {
		return unitWords[n]
	}
	t, u := n/10, n%10
	if u == 0 {
		return tenWords[t]
	}
	return tenWords[t] + " e " + unitWords[u]
}
