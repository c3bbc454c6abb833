// Package bacparser extracts transactions from BAC Credomatic notification
// emails: card purchase notices, SINPE Móvil transfers, account transfers,
// ATM withdrawals and card payments. BAC has changed its notification layout
// several times over the years, so extraction runs a prioritized chain of
// strategies (structured table lookup → labeled line scan → subject-line
// fallback) and gives up gracefully on anything outside the known corpus.
package bacparser

import (
	"regexp"
	"time"

	"github.com/sebascrugu/finanzas-email-tracker/internal/currencyutils"
	"github.com/sebascrugu/finanzas-email-tracker/internal/dateutils"
	"github.com/sebascrugu/finanzas-email-tracker/internal/logging"
	"github.com/sebascrugu/finanzas-email-tracker/internal/models"
	"github.com/sebascrugu/finanzas-email-tracker/internal/parser"
	"github.com/sebascrugu/finanzas-email-tracker/internal/textutils"
)

// BankName identifies this parser in routing and logging.
const BankName = "BAC Credomatic"

// Domains are the sender domains BAC notifications arrive from.
var Domains = []string{
	"notificacionesbaccr.com",
	"baccredomatic.com",
	"baccredomatic.cr",
	"sinpemovil.baccredomatic.com",
}

// nonTransactionalPhrases identifies affiliation and configuration notices
// that must be rejected before any amount extraction is attempted. All
// entries are pre-folded lowercase; subjects are folded before matching.
var nonTransactionalPhrases = []string{
	"afiliacion sinpe",
	"desafiliacion sinpe",
	"afiliacion a sinpe",
	"cambio de pin",
	"cambio de clave",
	"activacion de tarjeta",
	"afiliacion de cuenta",
	"actualizacion de datos",
	"registro de dispositivo",
	"configuracion de notificaciones",
	"bloqueo de tarjeta",
}

// Subject templates BAC has used for purchase notifications, most specific
// first. The capture group is the merchant name.
var subjectMerchantPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)notificaci[oó]n de transacci[oó]n\s+(.+?)\s+\d{1,2}-\d{1,2}-\d{4}`),
	regexp.MustCompile(`(?i)notificaci[oó]n de transacci[oó]n\s+(.+)$`),
	regexp.MustCompile(`(?i)compra (?:realizada )?en\s+(.+)$`),
}

var subjectDatePattern = regexp.MustCompile(`(\d{1,2}-\d{1,2}-\d{4})`)

var lastCardDigits = regexp.MustCompile(`(\d{4})\s*$`)

// Parser is the BAC Credomatic email parser. It holds only its compiled
// tables and a logger, so concurrent Parse calls are safe.
type Parser struct {
	parser.BaseParser
}

// New creates a BAC parser.
func New(logger logging.Logger) *Parser {
	return &Parser{BaseParser: parser.NewBaseParser(logger)}
}

// BankName implements parser.EmailParser.
func (p *Parser) BankName() string { return BankName }

// Parse extracts a transaction from a BAC notification, or nil for
// non-transactional and unrecognized mail.
func (p *Parser) Parse(msg models.EmailMessage) (*models.ParsedTransaction, error) {
	subject := textutils.FoldLower(msg.Subject)

	// Special formats short-circuit before any generic extraction.
	if textutils.ContainsAny(subject, nonTransactionalPhrases...) {
		p.Logger().Debug("Non-transactional BAC notice rejected",
			logging.Field{Key: "subject", Value: msg.Subject})
		return nil, nil
	}

	if kind := classifyTransfer(msg.From, subject); kind != kindNone {
		return p.parseTransfer(msg, kind)
	}

	if textutils.ContainsAny(subject, "notificacion de transaccion", "transaccion", "compra") {
		return p.parsePurchase(msg)
	}

	p.Logger().Debug("Unrecognized BAC email",
		logging.Field{Key: "subject", Value: msg.Subject})
	return nil, nil
}

// parsePurchase handles the card purchase notification layout.
func (p *Parser) parsePurchase(msg models.EmailMessage) (*models.ParsedTransaction, error) {
	c := parser.NewEmailContent(msg)

	comercio := parser.FirstMatch(
		func() string { return c.Field("comercio", "establecimiento", "nombre del comercio") },
		func() string { return c.Line("comercio", "establecimiento") },
		func() string { return p.merchantFromSubject(c) },
	)
	if comercio == "" {
		comercio = models.ComercioDesconocido
	}

	montoText := parser.FirstMatch(
		func() string { return c.Field("monto", "monto de transaccion", "monto de la transaccion", "total") },
		func() string { return c.Line("monto", "total de la compra") },
	)
	moneda, monto, montoOK := currencyutils.ParseAmount(montoText)

	fecha, ok := p.resolveDate(c)
	if !ok {
		return nil, nil
	}

	tx := &models.ParsedTransaction{
		Banco:            BankName,
		Tipo:             purchaseType(c),
		MontoOriginal:    monto,
		MonedaOriginal:   moneda,
		Comercio:         comercio,
		FechaTransaccion: fecha,
	}

	tx.Ciudad, tx.Pais = currencyutils.ParseLocation(
		c.Field("ciudad y pais", "ciudad, pais", "ciudad"))

	if auth := parser.FirstMatch(
		func() string { return c.Field("autorizacion", "numero de autorizacion", "codigo de autorizacion") },
		func() string { return c.Line("autorizacion") },
	); auth != "" {
		tx.SetMeta(models.MetaAutorizacion, auth)
	}

	if card := c.Field("visa", "mastercard", "tarjeta", "numero de tarjeta"); card != "" {
		if m := lastCardDigits.FindStringSubmatch(card); len(m) > 1 {
			tx.SetMeta(models.MetaTarjeta, m[1])
		}
	}

	if ref := c.Field("referencia", "numero de referencia"); ref != "" {
		tx.SetMeta(models.MetaReferencia, ref)
	}

	parser.MarkAmountQuality(tx, montoOK)

	p.Logger().Debug("Parsed BAC purchase",
		logging.Field{Key: "comercio", Value: tx.Comercio},
		logging.Field{Key: "monto", Value: currencyutils.FormatAmount(tx.MontoOriginal, tx.MonedaOriginal)})
	return tx, nil
}

// purchaseType refines the transaction type from the notification's own
// "Tipo de Transacción" field when present.
func purchaseType(c *parser.EmailContent) models.TransactionType {
	tipo := textutils.FoldLower(c.Field("tipo de transaccion", "tipo"))
	switch {
	case tipo == "":
		return models.TipoCompra
	case textutils.ContainsAny(tipo, "retiro"):
		return models.TipoRetiro
	case textutils.ContainsAny(tipo, "pago de servicio", "pago servicio"):
		return models.TipoPagoServicio
	default:
		return models.TipoCompra
	}
}

// merchantFromSubject tries the known subject templates in order.
func (p *Parser) merchantFromSubject(c *parser.EmailContent) string {
	for _, re := range subjectMerchantPatterns {
		if m := c.SubjectMatch(re); m != "" {
			return m
		}
	}
	return ""
}

// resolveDate finds the transaction date: body field, labeled line, subject
// date token, then the email's received timestamp. A date string that is
// present but matches no known bank template fails the whole parse; we do
// not guess at dates.
func (p *Parser) resolveDate(c *parser.EmailContent) (time.Time, bool) {
	fechaText := parser.FirstMatch(
		func() string { return c.Field("fecha", "fecha de transaccion", "fecha y hora") },
		func() string { return c.Line("fecha") },
		func() string { return c.SubjectMatch(subjectDatePattern) },
	)

	if fechaText != "" {
		fecha, err := dateutils.ParseBankDate(fechaText)
		if err != nil {
			p.Logger().WithError(err).Warn("Unparseable BAC transaction date",
				logging.Field{Key: "fecha", Value: fechaText})
			return time.Time{}, false
		}
		return fecha, true
	}

	if !c.Msg.ReceivedAt.IsZero() {
		return c.Msg.ReceivedAt, true
	}
	return time.Time{}, false
}
