package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var frenchPrinter = message.NewPrinter(language.French)

var frenchMonths = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// FormatCurrency formats an amount with French digit grouping, e.g. "12 500 FCFA".
func FormatCurrency(amount decimal.Decimal, currency string) string {
	value, _ := amount.Round(0).Float64()
	formatted := frenchPrinter.Sprint(number.Decimal(value, number.MaxFractionDigits(0)))
	if currency == "" {
		return formatted
	}
	return formatted + " " + currency
}

// FormatDateFR formats a date the way the storefront displays it, e.g. "15 mars 2024".
func FormatDateFR(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d %s %d", t.Day(), frenchMonths[t.Month()-1], t.Year())
}

// NormalizePage clamps page/limit query values to sane defaults.
func NormalizePage(page, limit, defaultLimit, maxLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

// Paginate returns the requested page of items along with the total count.
func Paginate[T any](items []T, page, limit int) ([]T, int) {
	total := len(items)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return items[start:end], total
}

// ContainsFold reports whether substr is within s, ignoring case.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// Contains checks if a slice contains a specific item
func Contains[T comparable](slice []T, item T) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// DerefString safely dereferences a string pointer
func DerefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// JoinURL joins a base URL and a path with exactly one slash between them.
func JoinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// InQuietHours reports whether the clock time of t falls in [start, end).
// The window may wrap past midnight, e.g. 22:00 to 07:00.
func InQuietHours(t time.Time, start, end string) bool {
	from, err := time.Parse("15:04", start)
	if err != nil {
		return false
	}
	to, err := time.Parse("15:04", end)
	if err != nil {
		return false
	}

	minute := t.Hour()*60 + t.Minute()
	lo := from.Hour()*60 + from.Minute()
	hi := to.Hour()*60 + to.Minute()
	if lo <= hi {
		return minute >= lo && minute < hi
	}
	return minute >= lo || minute < hi
}
