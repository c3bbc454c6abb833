// Package models defines the value objects produced by the bank parsers.
// All records are transient: created fresh per parse call, never mutated by
// the parser that produced them. Persistence and deduplication are the
// caller's responsibility.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a parsed notification.
type TransactionType string

const (
	TipoCompra        TransactionType = "compra"
	TipoTransferencia TransactionType = "transferencia"
	TipoRetiro        TransactionType = "retiro"
	TipoPagoServicio  TransactionType = "pago_servicio"
	TipoSinpeEnviado  TransactionType = "sinpe_enviado"
	TipoSinpeRecibido TransactionType = "sinpe_recibido"
)

// Currency is an ISO 4217 code. CRC is the base currency for this market.
type Currency string

const (
	CRC Currency = "CRC"
	USD Currency = "USD"
	EUR Currency = "EUR"
	CAD Currency = "CAD"
)

// ComercioDesconocido is the sentinel merchant name used when neither body
// nor subject yields one. A transaction with an unknown merchant is still
// worth recording; the merchant field is never left blank.
const ComercioDesconocido = "Desconocido"

// Metadata keys populated by the parsers. Only keys relevant to the specific
// transaction kind are present.
const (
	MetaAutorizacion   = "autorizacion"    // authorization code
	MetaTarjeta        = "tarjeta"         // masked/last-4 card digits
	MetaReferencia     = "referencia"      // bank reference number
	MetaDestinatario   = "destinatario"    // transfer beneficiary name
	MetaConcepto       = "concepto"        // transfer memo text
	MetaPreauth        = "preauth"         // "true" on zero-amount pre-authorization holds
	MetaMontoIlegible  = "monto_ilegible"  // "true" when the amount text could not be parsed
	MetaRevisionManual = "revision_manual" // "true" when the record needs human reconciliation
)

// ParsedTransaction is the normalized output of parsing a single bank
// notification email. It is a value record: parsers create it and hand it
// off; downstream categorization and deduplication never feed back into it.
type ParsedTransaction struct {
	Banco            string            `json:"banco" yaml:"banco"`
	Tipo             TransactionType   `json:"tipo_transaccion" yaml:"tipo_transaccion"`
	MontoOriginal    decimal.Decimal   `json:"monto_original" yaml:"monto_original"`
	MonedaOriginal   Currency          `json:"moneda_original" yaml:"moneda_original"`
	Comercio         string            `json:"comercio" yaml:"comercio"`
	FechaTransaccion time.Time         `json:"fecha_transaccion" yaml:"fecha_transaccion"`
	Ciudad           string            `json:"ciudad,omitempty" yaml:"ciudad,omitempty"`
	Pais             string            `json:"pais,omitempty" yaml:"pais,omitempty"`
	Categoria        string            `json:"categoria,omitempty" yaml:"categoria,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Meta returns the metadata value for key, or "" when absent.
func (t *ParsedTransaction) Meta(key string) string {
	if t.Metadata == nil {
		return ""
	}
	return t.Metadata[key]
}

// SetMeta records a metadata value, allocating the map on first use.
func (t *ParsedTransaction) SetMeta(key, value string) {
	if t.Metadata == nil {
		t.Metadata = make(map[string]string)
	}
	t.Metadata[key] = value
}

// EsPreautorizacion reports whether this is a zero-amount pre-authorization
// hold (airline, car-rental, subscription trial). These are legitimate
// records, distinct from amounts that failed to parse.
func (t *ParsedTransaction) EsPreautorizacion() bool {
	return t.Meta(MetaPreauth) == "true"
}

// MontoIlegible reports whether the zero amount stems from an unparseable
// amount string rather than a genuine zero. Downstream must route these to
// review instead of trusting the value.
func (t *ParsedTransaction) MontoIlegible() bool {
	return t.Meta(MetaMontoIlegible) == "true"
}
