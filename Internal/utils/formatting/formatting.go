package formatting

import (
	"fmt"
	"strings"
	"time"
)

// Separator prints a horizontal rule to stdout, for CLI menu output.
func Separator(width int) {
	if width <= 0 {
		width = 60
	}
	fmt.Println(strings.Repeat("=", width))
}

func RepeatString(s string, count int) string {
	return strings.Repeat(s, count)
}

// ParseDate accepts the date layouts seen across the data sources.
// Brazilian formats come first since operator input is dd/mm/yyyy.
func ParseDate(value string) (time.Time, error) {
	layouts := []string{
		"02/01/2006",
		"02/01/2006 15:04",
		"2006-01-02",
		"2006-01-02 15:04:05",
		time.RFC3339,
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("data inválida: %q", value)
}

// FormatBRL renders a price with comma decimals, e.g. 12.5 -> "R$ 12,50".
func FormatBRL(value float64) string {
	s := fmt.Sprintf("%.2f", value)
	return "R$ " + strings.Replace(s, ".", ",", 1)
}

// FormatPct renders a signed percentage, e.g. 12.345 -> "+12.35%".
func FormatPct(value float64) string {
	return fmt.Sprintf("%+.2f%%", value)
}
