package export

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// formatNumber renders v with '.' thousands and ',' decimals, as amounts are
// printed in Colombia.
func formatNumber(v float64, decimals int) string {
	neg := v < 0
	raw := strconv.FormatFloat(math.Abs(v), 'f', decimals, 64)
	intPart, fracPart, _ := strings.Cut(raw, ".")

	var b strings.Builder
	if neg && strings.Trim(raw, "0.") != "" {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if fracPart != "" {
		b.WriteByte(',')
		b.WriteString(fracPart)
	}
	return b.String()
}

func formatMoney(v float64) string {
	return "$ " + formatNumber(v, 2)
}

func percent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}

func truncate(value string, max int) string {
	value = strings.TrimSpace(value)
	if utf8.RuneCountInString(value) <= max {
		return value
	}
	runes := []rune(value)
	return string(runes[:max-1]) + "…"
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
