// Package popularparser extracts transactions from Banco Popular
// notification emails. Popular's notifications are closer to narrative
// prose than BAC's tabular layout ("Se realizó una compra en X por
// ₡12,500.00"), so the extraction chain leans on labeled line scans and
// sentence patterns, with the subject line as the final fallback.
package popularparser

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
const BankName = "Banco Popular"

// Domains are the sender domains Banco Popular notifications arrive from.
var Domains = []string{
	"bancopopular.fi.cr",
	"bpop.fi.cr",
	"popularenlinea.fi.cr",
}

var nonTransactionalPhrases = []string{
	"afiliacion sinpe",
	"desafiliacion sinpe",
	"cambio de pin",
	"cambio de contrasena",
	"activacion de tarjeta",
	"actualizacion de datos",
	"verificacion de identidad",
	"token de seguridad",
}

// Sentence patterns Popular has used in notification bodies. Group 1 is the
// merchant, group 2 the amount text.
var narrativePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)compra\s+(?:realizada\s+)?en\s+(.+?)\s+por\s+((?:[A-Z]{3}|₡|\$)?\s*[\d.,]+)`),
	regexp.MustCompile(`(?i)pago\s+(?:realizado\s+)?(?:a|en)\s+(.+?)\s+por\s+((?:[A-Z]{3}|₡|\$)?\s*[\d.,]+)`),
}

var subjectMerchantPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)banco popular:?\s*compra en\s+(.+)$`),
	regexp.MustCompile(`(?i)notificaci[oó]n de transacci[oó]n\s+(.+?)\s+\d{1,2}[-/]\d{1,2}[-/]\d{4}`),
	regexp.MustCompile(`(?i)notificaci[oó]n de transacci[oó]n\s+(.+)$`),
}

var subjectDatePattern = regexp.MustCompile(`(\d{1,2}[-/]\d{1,2}[-/]\d{4})`)

// Parser is the Banco Popular email parser. Stateless beyond its compiled
// tables; safe for concurrent use.
type Parser struct {
	parser.BaseParser
}

// New creates a Banco Popular parser.
func New(logger logging.Logger) *Parser {
	return &Parser{BaseParser: parser.NewBaseParser(logger)}
}

// BankName implements parser.EmailParser.
func (p *Parser) BankName() string { return BankName }

// Parse extracts a transaction from a Banco Popular notification, or nil for
// non-transactional and unrecognized mail.
func (p *Parser) Parse(msg models.EmailMessage) (*models.ParsedTransaction, error) {
	subject := textutils.FoldLower(msg.Subject)

	if textutils.ContainsAny(subject, nonTransactionalPhrases...) {
		p.Logger().Debug("Non-transactional Popular notice rejected",
			logging.Field{Key: "subject", Value: msg.Subject})
		return nil, nil
	}

	if textutils.ContainsAny(subject, "sinpe movil", "transferencia sinpe") {
		return p.parseSinpe(msg, subject)
	}

	if textutils.ContainsAny(subject, "notificacion de transaccion", "transaccion", "compra", "pago") {
		return p.parsePurchase(msg)
	}

	p.Logger().Debug("Unrecognized Popular email",
		logging.Field{Key: "subject", Value: msg.Subject})
	return nil, nil
}

func (p *Parser) parsePurchase(msg models.EmailMessage) (*models.ParsedTransaction, error) {
	c := parser.NewEmailContent(msg)
	merchant, amountText := p.narrativeMatch(c.Text)

	comercio := parser.FirstMatch(
		func() string { return c.Field("comercio", "establecimiento") },
		func() string { return c.Line("comercio", "establecimiento") },
		func() string { return merchant },
		func() string { return p.merchantFromSubject(c) },
	)
	if comercio == "" {
		comercio = models.ComercioDesconocido
	}

	montoText := parser.FirstMatch(
		func() string { return c.Field("monto", "monto de la transaccion", "total") },
		func() string { return c.Line("monto") },
		func() string { return amountText },
	)
	moneda, monto, montoOK := currencyutils.ParseAmount(montoText)

	fecha, ok := p.resolveDate(c)
	if !ok {
		return nil, nil
	}

	tx := &models.ParsedTransaction{
		Banco:            BankName,
		Tipo:             models.TipoCompra,
		MontoOriginal:    monto,
		MonedaOriginal:   moneda,
		Comercio:         comercio,
		FechaTransaccion: fecha,
	}

	tx.Ciudad, tx.Pais = currencyutils.ParseLocation(
		c.Field("ciudad y pais", "ubicacion", "ciudad"))

	if auth := parser.FirstMatch(
		func() string { return c.Field("autorizacion", "numero de autorizacion") },
		func() string { return c.Line("autorizacion") },
	); auth != "" {
		tx.SetMeta(models.MetaAutorizacion, auth)
	}
	if ref := c.Field("referencia", "numero de documento"); ref != "" {
		tx.SetMeta(models.MetaReferencia, ref)
	}

	parser.MarkAmountQuality(tx, montoOK)

	p.Logger().Debug("Parsed Popular purchase",
		logging.Field{Key: "comercio", Value: tx.Comercio})
	return tx, nil
}

// parseSinpe handles Popular's SINPE Móvil notifications.
func (p *Parser) parseSinpe(msg models.EmailMessage, subject string) (*models.ParsedTransaction, error) {
	c := parser.NewEmailContent(msg)

	tipo := models.TipoSinpeEnviado
	if textutils.ContainsAny(subject, "recibid", "ha recibido", "acreditad") {
		tipo = models.TipoSinpeRecibido
	}

	montoText := parser.FirstMatch(
		func() string { return c.Field("monto", "monto transferido") },
		func() string { return c.Line("monto") },
	)
	moneda, monto, montoOK := currencyutils.ParseAmount(montoText)

	fecha, ok := p.resolveDate(c)
	if !ok {
		return nil, nil
	}

	destinatario := parser.FirstMatch(
		func() string { return c.Field("destinatario", "beneficiario", "a favor de") },
		func() string { return c.Line("destinatario", "beneficiario") },
	)
	remitente := c.Field("remitente", "ordenante")
	concepto := parser.FirstMatch(
		func() string { return c.Field("concepto", "descripcion", "motivo") },
		func() string { return c.Line("concepto") },
	)
	referencia := c.Field("referencia", "numero de referencia", "comprobante")

	comercio := destinatario
	if tipo == models.TipoSinpeRecibido && remitente != "" {
		comercio = remitente
	}
	if comercio == "" {
		comercio = models.ComercioDesconocido
	}

	tx := &models.ParsedTransaction{
		Banco:            BankName,
		Tipo:             tipo,
		MontoOriginal:    monto,
		MonedaOriginal:   moneda,
		Comercio:         comercio,
		FechaTransaccion: fecha,
	}

	if destinatario != "" {
		tx.SetMeta(models.MetaDestinatario, destinatario)
	}
	if concepto != "" {
		tx.SetMeta(models.MetaConcepto, concepto)
	}
	if referencia != "" {
		tx.SetMeta(models.MetaReferencia, referencia)
	}
	if destinatario == "" && remitente == "" && concepto == "" {
		tx.SetMeta(models.MetaRevisionManual, "true")
	}

	parser.MarkAmountQuality(tx, montoOK)
	return tx, nil
}

// narrativeMatch scans the body text for Popular's sentence-style purchase
// phrasing and returns (merchant, amount text).
func (p *Parser) narrativeMatch(text string) (string, string) {
	for _, re := range narrativePatterns {
		if m := re.FindStringSubmatch(text); len(m) > 2 {
			return textutils.CollapseWhitespace(m[1]), m[2]
		}
	}
	return "", ""
}

func (p *Parser) merchantFromSubject(c *parser.EmailContent) string {
	for _, re := range subjectMerchantPatterns {
		if m := c.SubjectMatch(re); m != "" {
			return m
		}
	}
	return ""
}

func (p *Parser) resolveDate(c *parser.EmailContent) (time.Time, bool) {
	fechaText := parser.FirstMatch(
		func() string { return c.Field("fecha", "fecha y hora", "fecha de transaccion") },
		func() string { return c.Line("fecha") },
		func() string { return c.SubjectMatch(subjectDatePattern) },
	)

	if fechaText != "" {
		fecha, err := dateutils.ParseBankDate(fechaText)
		if err != nil {
			p.Logger().WithError(err).Warn("Unparseable Popular transaction date",
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
