// Package currencyutils provides parsing of free-text monetary and location
// strings as they appear in Costa Rican bank notifications.
package currencyutils

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sebascrugu/finanzas-email-tracker/internal/models"
)

var nonNumeric = regexp.MustCompile(`[^0-9.,]`)

// ParseAmount parses a free-text fragment containing a monetary amount, e.g.
// "CRC 1,290.00", "$100.50", "USD 25.99", "₡52,000.00". Currency detection
// scans markers in priority order USD → CAD → EUR → CRC and defaults to CRC,
// the base-currency assumption for this market.
//
// FAIL-SOFT WARNING: an unparseable numeric remainder yields decimal.Zero and
// ok=false instead of an error. A ₡0 amount silently flowing downstream is
// the single most likely source of financial-data corruption here, so callers
// MUST check ok and mark the resulting record for review; a zero with
// ok=false is a parse failure, not ground truth.
func ParseAmount(text string) (models.Currency, decimal.Decimal, bool) {
	currency := detectCurrency(text)

	cleaned := nonNumeric.ReplaceAllString(text, "")
	// Commas are thousands separators in both BAC and Popular notifications.
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.Trim(cleaned, ".")

	if cleaned == "" {
		return currency, decimal.Zero, false
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return currency, decimal.Zero, false
	}

	return currency, amount, true
}

// detectCurrency scans for currency codes and symbols. Order matters: "$"
// must be claimed by USD before CRC's default applies.
func detectCurrency(text string) models.Currency {
	upper := strings.ToUpper(text)
	switch {
	case strings.Contains(upper, "USD") || strings.Contains(upper, "$"):
		return models.USD
	case strings.Contains(upper, "CAD"):
		return models.CAD
	case strings.Contains(upper, "EUR") || strings.Contains(upper, "€"):
		return models.EUR
	default:
		return models.CRC
	}
}

// ParseLocation splits a free-text location into (city, country). One
// comma-separated part yields only a city; two or more yield city and
// country, ignoring the rest. Empty input yields two empty strings.
func ParseLocation(text string) (string, string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ""
	}

	parts := strings.Split(text, ",")
	city := strings.TrimSpace(parts[0])
	if len(parts) < 2 {
		return city, ""
	}
	return city, strings.TrimSpace(parts[1])
}

// FormatAmount renders an amount for display, e.g. "CRC 1290.00".
func FormatAmount(amount decimal.Decimal, currency models.Currency) string {
	return string(currency) + " " + amount.StringFixed(2)
}
