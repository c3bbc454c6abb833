package currencyutils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/sebascrugu/finanzas-email-tracker/internal/models"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		currency models.Currency
		amount   string
		ok       bool
	}{
		{"CRC code with thousands", "CRC 1,290.00", models.CRC, "1290.00", true},
		{"USD code", "USD 25.99", models.USD, "25.99", true},
		{"Dollar symbol", "$100.50", models.USD, "100.50", true},
		{"Colon symbol with thousands", "₡52,000.00", models.CRC, "52000.00", true},
		{"EUR code", "EUR 12.00", models.EUR, "12.00", true},
		{"Euro symbol", "€34.10", models.EUR, "34.10", true},
		{"CAD code", "CAD 7.25", models.CAD, "7.25", true},
		{"No currency marker defaults to CRC", "1,500.00", models.CRC, "1500.00", true},
		{"Zero amount", "CRC 0.00", models.CRC, "0.00", true},
		{"Trailing text", "Monto: CRC 3,400.50 aplicado", models.CRC, "3400.50", true},
		{"Empty string", "", models.CRC, "0", false},
		{"Non-numeric", "monto pendiente", models.CRC, "0", false},
		{"Multiple decimal points", "12.34.56", models.CRC, "0", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			currency, amount, ok := ParseAmount(tc.input)

			assert.Equal(t, tc.currency, currency)
			assert.Equal(t, tc.ok, ok)
			expected, err := decimal.NewFromString(tc.amount)
			assert.NoError(t, err)
			assert.True(t, expected.Equal(amount),
				"expected %s but got %s", expected.String(), amount.String())
		})
	}
}

func TestParseAmountFailSoftNeverPanics(t *testing.T) {
	// The fail-soft contract: garbage in, zero out, ok=false. Callers rely
	// on ok to distinguish a parse failure from a genuine zero.
	for _, input := range []string{"...", ",,,", "₡", "$ USD EUR", "\x00\xff"} {
		currency, amount, ok := ParseAmount(input)
		assert.False(t, ok, "input %q should not parse", input)
		assert.True(t, amount.IsZero())
		assert.NotEmpty(t, currency)
	}
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		city    string
		country string
	}{
		{"City and country", "San Jose, Costa Rica", "San Jose", "Costa Rica"},
		{"City only", "Tres Rios", "Tres Rios", ""},
		{"Empty", "", "", ""},
		{"Whitespace only", "   ", "", ""},
		{"Extra parts ignored", "Escazu, Costa Rica, CR", "Escazu", "Costa Rica"},
		{"Untrimmed parts", "  Heredia ,  Costa Rica ", "Heredia", "Costa Rica"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			city, country := ParseLocation(tc.input)
			assert.Equal(t, tc.city, city)
			assert.Equal(t, tc.country, country)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	amount := decimal.NewFromFloat(1290)
	assert.Equal(t, "CRC 1290.00", FormatAmount(amount, models.CRC))
}
