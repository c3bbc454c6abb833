package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatementEntryType marks a ledger line as a debit or a credit.
type StatementEntryType string

const (
	Debito  StatementEntryType = "DEBITO"
	Credito StatementEntryType = "CREDITO"
)

// StatementTransaction is one ledger line inside a bank statement.
// Monto is always positive; the sign is conveyed by Tipo.
type StatementTransaction struct {
	CuentaIBAN string             `json:"cuenta_iban" yaml:"cuenta_iban"`
	Fecha      time.Time          `json:"fecha" yaml:"fecha"`
	Concepto   string             `json:"concepto" yaml:"concepto"`
	Tipo       StatementEntryType `json:"tipo" yaml:"tipo"`
	Moneda     Currency           `json:"moneda" yaml:"moneda"`
	Monto      decimal.Decimal    `json:"monto" yaml:"monto"`
}

// StatementAccount is one physical account inside a (possibly multi-account)
// statement. TotalDebitos/TotalCreditos are computed by the parser from the
// classified lines; DebitosDeclarados/CreditosDeclarados are the totals the
// statement itself prints (zero when the statement omits them). The parser
// surfaces both so the caller can decide how strictly to cross-check.
type StatementAccount struct {
	CuentaIBAN         string                 `json:"cuenta_iban" yaml:"cuenta_iban"`
	Moneda             Currency               `json:"moneda" yaml:"moneda"`
	SaldoAnterior      decimal.Decimal        `json:"saldo_anterior" yaml:"saldo_anterior"`
	SaldoFinal         decimal.Decimal        `json:"saldo_final" yaml:"saldo_final"`
	TotalDebitos       decimal.Decimal        `json:"total_debitos" yaml:"total_debitos"`
	TotalCreditos      decimal.Decimal        `json:"total_creditos" yaml:"total_creditos"`
	DebitosDeclarados  decimal.Decimal        `json:"debitos_declarados" yaml:"debitos_declarados"`
	CreditosDeclarados decimal.Decimal        `json:"creditos_declarados" yaml:"creditos_declarados"`
	Movimientos        []StatementTransaction `json:"movimientos" yaml:"movimientos"`
}

// Descuadre returns saldo_anterior - total_debitos + total_creditos - saldo_final.
// A balanced account yields zero within rounding tolerance; enforcement is a
// caller concern.
func (a *StatementAccount) Descuadre() decimal.Decimal {
	return a.SaldoAnterior.
		Sub(a.TotalDebitos).
		Add(a.TotalCreditos).
		Sub(a.SaldoFinal)
}

// Cuadrado reports whether the balance equation holds within tolerance.
func (a *StatementAccount) Cuadrado(tolerance decimal.Decimal) bool {
	return a.Descuadre().Abs().LessThanOrEqual(tolerance)
}

// StatementResult is the outcome of parsing one statement text dump.
// A block whose header could not be located is skipped and counted, never
// raised: multi-account statements yield partial results instead of an
// all-or-nothing failure.
type StatementResult struct {
	Cuentas         []StatementAccount `json:"cuentas" yaml:"cuentas"`
	BloquesOmitidos int                `json:"bloques_omitidos" yaml:"bloques_omitidos"`
}
