package record

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankrecon/internal/domain"
)

// DateLayouts are tried in priority order against the first 10 characters of
// a date string. Month and day accept one or two digits.
var DateLayouts = []string{
	"2006-1-2",
	"1/2/2006",
	"1-2-2006",
	"2/1/2006",
}

// ParseDate converts a date value to a calendar date.
func ParseDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		return domain.CalendarDate(d), nil
	case *time.Time:
		if d == nil {
			return time.Time{}, domain.ErrMissingDate
		}
		return domain.CalendarDate(*d), nil
	case string:
		s := strings.TrimSpace(d)
		if s == "" {
			return time.Time{}, domain.ErrMissingDate
		}
		if len(s) > 10 {
			s = s[:10]
		}
		for _, layout := range DateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("%w: %q", domain.ErrUnparseableDate, d)
	case nil:
		return time.Time{}, domain.ErrMissingDate
	default:
		return time.Time{}, fmt.Errorf("%w: unsupported type %T", domain.ErrUnparseableDate, v)
	}
}

// ParseAmount coerces a numeric value to a signed decimal. Strings may carry
// a currency symbol, thousands separators and accounting-style parentheses.
func ParseAmount(v any) (decimal.Decimal, error) {
	switch a := v.(type) {
	case nil:
		return decimal.Zero, nil
	case decimal.Decimal:
		return a, nil
	case float64:
		return decimal.NewFromFloat(a), nil
	case float32:
		return decimal.NewFromFloat32(a), nil
	case int:
		return decimal.NewFromInt(int64(a)), nil
	case int64:
		return decimal.NewFromInt(a), nil
	case json.Number:
		return parseAmountString(a.String())
	case string:
		return parseAmountString(a)
	default:
		return decimal.Zero, fmt.Errorf("%w: unsupported type %T", domain.ErrInvalidAmount, v)
	}
}

func parseAmountString(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	if clean == "" {
		return decimal.Zero, nil
	}

	clean = strings.NewReplacer("$", "", ",", "", " ", "").Replace(clean)
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		clean = "-" + clean[1:len(clean)-1]
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", domain.ErrInvalidAmount, s)
	}
	return d, nil
}

// text renders a lookup value as a trimmed string.
func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case fmt.Stringer:
		return strings.TrimSpace(t.String())
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}
