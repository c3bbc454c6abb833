package statementparser

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebascrugu/finanzas-email-tracker/internal/models"
)

// at builds a statement line by placing text fragments at fixed byte offsets,
// the way the PDF text extraction preserves column alignment.
func at(fields map[int]string) string {
	end := 0
	for offset, text := range fields {
		if offset+len(text) > end {
			end = offset + len(text)
		}
	}
	buf := []byte(strings.Repeat(" ", end))
	for offset, text := range fields {
		copy(buf[offset:], text)
	}
	return string(buf)
}

// colonesBlock is a balanced single-account statement: 100,000.00 opening,
// 62,500.00 in debits, 250,000.00 in credits, 287,500.00 closing.
func colonesBlock() []string {
	return []string{
		at(map[int]string{0: "CUENTA CR05015202001026284066 COLONES"}),
		at(map[int]string{0: "FECHA", 11: "CONCEPTO", 45: "DEBITO", 60: "CREDITO", 76: "SALDO"}),
		at(map[int]string{0: "SALDO ANTERIOR", 72: "100,000.00"}),
		at(map[int]string{0: "06/11/2025", 11: "COMPRA AUTO MERCADO", 42: "12,500.00", 73: "87,500.00"}),
		at(map[int]string{0: "07/11/2025", 11: "PLANILLA EMPRESA SA", 57: "250,000.00", 72: "337,500.00"}),
		at(map[int]string{0: "08/11/2025", 11: "RETIRO ATM", 42: "50,000.00", 72: "287,500.00"}),
		at(map[int]string{0: "TOTAL DEBITOS", 42: "62,500.00"}),
		at(map[int]string{0: "TOTAL CREDITOS", 57: "250,000.00"}),
		at(map[int]string{0: "SALDO FINAL", 72: "287,500.00"}),
	}
}

func statementText(blocks ...[]string) string {
	lines := []string{"BAC CREDOMATIC", "ESTADO DE CUENTA", ""}
	for _, block := range blocks {
		lines = append(lines, block...)
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func TestParseSingleAccount(t *testing.T) {
	p := New(nil)

	result := p.ParseText(statementText(colonesBlock()))

	require.Len(t, result.Cuentas, 1)
	assert.Equal(t, 0, result.BloquesOmitidos)

	account := result.Cuentas[0]
	assert.Equal(t, "CR05015202001026284066", account.CuentaIBAN)
	assert.Equal(t, models.CRC, account.Moneda)
	assert.True(t, decimal.NewFromFloat(100000).Equal(account.SaldoAnterior))
	assert.True(t, decimal.NewFromFloat(287500).Equal(account.SaldoFinal))

	require.Len(t, account.Movimientos, 3)

	first := account.Movimientos[0]
	assert.Equal(t, "COMPRA AUTO MERCADO", first.Concepto)
	assert.Equal(t, models.Debito, first.Tipo)
	assert.True(t, decimal.NewFromFloat(12500).Equal(first.Monto))
	assert.Equal(t, "CR05015202001026284066", first.CuentaIBAN)

	second := account.Movimientos[1]
	assert.Equal(t, "PLANILLA EMPRESA SA", second.Concepto)
	assert.Equal(t, models.Credito, second.Tipo)
	assert.True(t, decimal.NewFromFloat(250000).Equal(second.Monto))

	third := account.Movimientos[2]
	assert.Equal(t, models.Debito, third.Tipo)
	assert.True(t, decimal.NewFromFloat(50000).Equal(third.Monto))
}

func TestParseComputesAndCrossChecksTotals(t *testing.T) {
	p := New(nil)

	result := p.ParseText(statementText(colonesBlock()))
	require.Len(t, result.Cuentas, 1)
	account := result.Cuentas[0]

	// Computed from ledger lines.
	assert.True(t, decimal.NewFromFloat(62500).Equal(account.TotalDebitos))
	assert.True(t, decimal.NewFromFloat(250000).Equal(account.TotalCreditos))
	// Declared by the statement itself.
	assert.True(t, decimal.NewFromFloat(62500).Equal(account.DebitosDeclarados))
	assert.True(t, decimal.NewFromFloat(250000).Equal(account.CreditosDeclarados))

	// saldo anterior - debitos + creditos = saldo final
	assert.True(t, account.Descuadre().IsZero(),
		"descuadre: %s", account.Descuadre().StringFixed(2))
	assert.True(t, account.Cuadrado(decimal.NewFromFloat(0.01)))
}

func TestParseSkipsUnreadableBlocks(t *testing.T) {
	p := New(nil)

	noIBAN := []string{
		at(map[int]string{0: "CUENTA ILEGIBLE DOLARES"}),
		at(map[int]string{0: "SALDO ANTERIOR", 40: "500.00"}),
	}
	noOpeningBalance := []string{
		at(map[int]string{0: "CUENTA CR94015202001026284999 COLONES"}),
		at(map[int]string{0: "06/11/2025", 11: "COMPRA", 42: "100.00"}),
	}

	result := p.ParseText(statementText(noIBAN, colonesBlock(), noOpeningBalance))

	// The readable account still comes through; the broken ones are counted.
	require.Len(t, result.Cuentas, 1)
	assert.Equal(t, "CR05015202001026284066", result.Cuentas[0].CuentaIBAN)
	assert.Equal(t, 2, result.BloquesOmitidos)
}

func TestParseMultipleAccountsAndCurrencies(t *testing.T) {
	p := New(nil)

	usdBlock := []string{
		at(map[int]string{0: "CUENTA CR94015202001026284123 DOLARES"}),
		at(map[int]string{0: "SALDO ANTERIOR", 40: "500.00"}),
		at(map[int]string{0: "SALDO FINAL", 40: "500.00"}),
	}

	result := p.ParseText(statementText(colonesBlock(), usdBlock))

	require.Len(t, result.Cuentas, 2)
	assert.Equal(t, models.CRC, result.Cuentas[0].Moneda)
	assert.Equal(t, models.USD, result.Cuentas[1].Moneda)
	assert.Empty(t, result.Cuentas[1].Movimientos)
	assert.True(t, result.Cuentas[1].Cuadrado(decimal.NewFromFloat(0.01)))
}

func TestParseFallbackClassificationWithoutColumnHeader(t *testing.T) {
	p := New(nil)

	block := []string{
		at(map[int]string{0: "CUENTA CR94015202001026284321 COLONES"}),
		at(map[int]string{0: "SALDO ANTERIOR", 40: "100.00"}),
		"06/11/2025 PAGO RECIBIDO 50.00 CR",
		"07/11/2025 COMPRA SODA 20.00 DB",
		at(map[int]string{0: "SALDO FINAL", 40: "130.00"}),
	}

	result := p.ParseText(statementText(block))
	require.Len(t, result.Cuentas, 1)
	account := result.Cuentas[0]

	require.Len(t, account.Movimientos, 2)
	assert.Equal(t, models.Credito, account.Movimientos[0].Tipo)
	assert.Equal(t, models.Debito, account.Movimientos[1].Tipo)
	assert.True(t, account.Cuadrado(decimal.NewFromFloat(0.01)))
}

func TestParseAmountsWithoutThousandsSeparators(t *testing.T) {
	p := New(nil)

	// An amount printed without thousands commas must be taken whole, not
	// truncated to its trailing groups.
	block := []string{
		at(map[int]string{0: "CUENTA CR94015202001026284777 COLONES"}),
		at(map[int]string{0: "SALDO ANTERIOR", 40: "20000.00"}),
		"06/11/2025 COMPRA MAYORISTA 12500.00 DB",
		at(map[int]string{0: "SALDO FINAL", 40: "7500.00"}),
	}

	result := p.ParseText(statementText(block))
	require.Len(t, result.Cuentas, 1)
	account := result.Cuentas[0]

	assert.True(t, decimal.NewFromFloat(20000).Equal(account.SaldoAnterior))
	require.Len(t, account.Movimientos, 1)
	assert.True(t, decimal.NewFromFloat(12500).Equal(account.Movimientos[0].Monto))
	assert.True(t, account.Cuadrado(decimal.NewFromFloat(0.01)))
}

func TestParseAttachesContinuationLines(t *testing.T) {
	p := New(nil)

	block := []string{
		at(map[int]string{0: "CUENTA CR94015202001026284555 COLONES"}),
		at(map[int]string{0: "SALDO ANTERIOR", 40: "100.00"}),
		"06/11/2025 SINPE MOVIL 50.00 DB",
		"           A JUAN PEREZ",
		at(map[int]string{0: "SALDO FINAL", 40: "50.00"}),
	}

	result := p.ParseText(statementText(block))
	require.Len(t, result.Cuentas, 1)

	movimientos := result.Cuentas[0].Movimientos
	require.Len(t, movimientos, 1)
	assert.Equal(t, "SINPE MOVIL A JUAN PEREZ", movimientos[0].Concepto)
}

func TestParseEmptyInput(t *testing.T) {
	p := New(nil)

	result := p.ParseText("")

	assert.Empty(t, result.Cuentas)
	assert.Equal(t, 0, result.BloquesOmitidos)
}

func TestParseReader(t *testing.T) {
	p := New(nil)

	result, err := p.Parse(strings.NewReader(statementText(colonesBlock())))

	require.NoError(t, err)
	require.Len(t, result.Cuentas, 1)
}
