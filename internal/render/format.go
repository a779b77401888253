package render

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/snaplens/gateway/internal/domain"
)

// DefaultCurrency is the prefix applied to every price
const DefaultCurrency = "¥"

// currencySymbols are stripped from pre-formatted prices before the
// canonical prefix is applied
var currencySymbols = []string{"¥", "￥"}

// FormatScore renders a relevance score as an integer percentage, rounding
// half up. ok is false when the score is absent.
func FormatScore(score *float64) (text string, ok bool) {
	if score == nil {
		return "", false
	}
	percent := math.Floor(*score*100 + 0.5)
	return fmt.Sprintf("%d%%", int64(percent)), true
}

// PriceFormatter renders prices with a fixed currency prefix
type PriceFormatter struct {
	currency string
	printer  *message.Printer
}

// NewPriceFormatter creates a formatter grouping thousands for the given locale
func NewPriceFormatter(currency string, tag language.Tag) *PriceFormatter {
	if currency == "" {
		currency = DefaultCurrency
	}
	return &PriceFormatter{
		currency: currency,
		printer:  message.NewPrinter(tag),
	}
}

// Format renders p as "<currency> <amount>". Numbers get thousands
// separators; strings are normalized so formatting a formatted price is a
// no-op.
func (f *PriceFormatter) Format(p domain.Price) string {
	if p.IsNumeric() {
		return f.currency + " " + f.formatNumber(p.Value())
	}

	amount := p.Text()
	amount = strings.ReplaceAll(amount, f.currency, "")
	for _, symbol := range currencySymbols {
		amount = strings.ReplaceAll(amount, symbol, "")
	}
	return f.currency + " " + strings.TrimSpace(amount)
}

func (f *PriceFormatter) formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return f.printer.Sprintf("%d", int64(v))
	}
	return f.printer.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}

var defaultPriceFormatter = NewPriceFormatter(DefaultCurrency, language.English)

// FormatPrice formats p with the default currency and English grouping
func FormatPrice(p domain.Price) string {
	return defaultPriceFormatter.Format(p)
}
