package statement

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const defaultDateLayout = "02/01/2006"

// Short date layouts by region. Regions not listed write day first.
var (
	monthFirstRegions = map[string]bool{"US": true, "PH": true, "FM": true, "PR": true}
	dottedRegions     = map[string]bool{"DE": true, "AT": true, "CH": true, "RU": true, "PL": true, "NO": true, "FI": true, "CZ": true, "TR": true, "UA": true}
	yearSlashRegions  = map[string]bool{"JP": true, "CN": true, "TW": true, "KR": true}
	isoRegions        = map[string]bool{"SE": true, "LT": true, "CA": true}
)

// formatter renders numbers and dates for one business locale.
type formatter struct {
	printer    *message.Printer
	currency   string
	dateLayout string
}

func newFormatter(locale, currency, dateLayout string) formatter {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if strings.TrimSpace(dateLayout) == "" {
		dateLayout = defaultDateLayout
		if err == nil {
			dateLayout = shortDateLayout(tag)
		}
	}
	if err != nil {
		tag = language.English
	}
	return formatter{
		printer:    message.NewPrinter(tag),
		currency:   strings.TrimSpace(currency),
		dateLayout: dateLayout,
	}
}

// shortDateLayout picks the numeric date order used in the tag's region.
func shortDateLayout(tag language.Tag) string {
	region, conf := tag.Region()
	if conf == language.No {
		return defaultDateLayout
	}
	code := region.String()
	switch {
	case monthFirstRegions[code]:
		return "01/02/2006"
	case dottedRegions[code]:
		return "02.01.2006"
	case yearSlashRegions[code]:
		return "2006/01/02"
	case isoRegions[code]:
		return "2006-01-02"
	}
	return defaultDateLayout
}

// Money has two decimals and a thousands separator, e.g. 12,450.00.
func (f formatter) Money(d decimal.Decimal) string {
	return f.printer.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

// Amount prefixes Money with the currency code.
func (f formatter) Amount(d decimal.Decimal) string {
	if f.currency == "" {
		return f.Money(d)
	}
	return f.currency + " " + f.Money(d)
}

// Quantity keeps up to two fractional digits and drops trailing zeros.
func (f formatter) Quantity(d decimal.Decimal) string {
	return f.printer.Sprint(number.Decimal(d.Round(2).InexactFloat64(), number.MaxFractionDigits(2)))
}

func (f formatter) OptionalQuantity(d *decimal.Decimal) string {
	if d == nil {
		return NotAvailable
	}
	return f.Quantity(*d)
}

func (f formatter) Count(d decimal.Decimal) string {
	return f.printer.Sprintf("%d", d.IntPart())
}

func (f formatter) Percent(d decimal.Decimal) string {
	return f.printer.Sprintf("%.1f%%", d.Round(1).InexactFloat64())
}

func (f formatter) Date(t time.Time) string {
	if t.IsZero() {
		return NotAvailable
	}
	return t.Format(f.dateLayout)
}

func (f formatter) Value(v Value) string {
	switch v.Kind {
	case ValueCount:
		return f.Count(v.Number)
	case ValueMoney:
		return f.Money(v.Number)
	case ValueQuantity:
		return f.Quantity(v.Number)
	case ValuePercent:
		return f.Percent(v.Number)
	case ValueDate:
		return f.Date(v.Date)
	default:
		return orPlaceholder(v.Text, NotAvailable)
	}
}

func orPlaceholder(value, placeholder string) string {
	if strings.TrimSpace(value) == "" {
		return placeholder
	}
	return value
}
