package bacparser

import (
	"strings"

	"github.com/sebascrugu/finanzas-email-tracker/internal/currencyutils"
	"github.com/sebascrugu/finanzas-email-tracker/internal/logging"
	"github.com/sebascrugu/finanzas-email-tracker/internal/models"
	"github.com/sebascrugu/finanzas-email-tracker/internal/parser"
	"github.com/sebascrugu/finanzas-email-tracker/internal/textutils"
)

// transferKind distinguishes the BAC transfer notification variants, which
// share a layout but carry different counterparty semantics.
type transferKind int

const (
	kindNone transferKind = iota
	kindSinpeEnviado
	kindSinpeRecibido
	kindTransferenciaLocal
	kindTransferenciaPropia
	kindPagoTarjeta
	kindRetiro
)

// classifyTransfer decides the variant from sender address and subject
// keywords. The subject is already folded lowercase. SINPE checks run first:
// "transferencia sinpe movil" must not fall through to the generic
// transfer branch.
func classifyTransfer(from, subject string) transferKind {
	fromLower := strings.ToLower(from)

	if strings.Contains(subject, "sinpe movil") || strings.Contains(fromLower, "sinpemovil") {
		if textutils.ContainsAny(subject, "recibid", "ha recibido", "acreditad") {
			return kindSinpeRecibido
		}
		return kindSinpeEnviado
	}

	switch {
	case textutils.ContainsAny(subject, "transferencia entre cuentas", "cuentas propias"):
		return kindTransferenciaPropia
	case strings.Contains(subject, "transferencia"):
		return kindTransferenciaLocal
	case textutils.ContainsAny(subject, "pago de tarjeta", "pago a tarjeta"):
		return kindPagoTarjeta
	case textutils.ContainsAny(subject, "retiro de efectivo", "retiro atm", "retiro sin tarjeta"):
		return kindRetiro
	default:
		return kindNone
	}
}

func (k transferKind) transactionType() models.TransactionType {
	switch k {
	case kindSinpeEnviado:
		return models.TipoSinpeEnviado
	case kindSinpeRecibido:
		return models.TipoSinpeRecibido
	case kindPagoTarjeta:
		return models.TipoPagoServicio
	case kindRetiro:
		return models.TipoRetiro
	default:
		return models.TipoTransferencia
	}
}

// parseTransfer handles SINPE Móvil and account-transfer notifications.
// These carry counterparty and memo fields that purchases do not.
func (p *Parser) parseTransfer(msg models.EmailMessage, kind transferKind) (*models.ParsedTransaction, error) {
	c := parser.NewEmailContent(msg)

	montoText := parser.FirstMatch(
		func() string {
			return c.Field("monto", "monto transferido", "monto de la transferencia", "total")
		},
		func() string { return c.Line("monto") },
	)
	moneda, monto, montoOK := currencyutils.ParseAmount(montoText)

	fecha, ok := p.resolveDate(c)
	if !ok {
		return nil, nil
	}

	destinatario := parser.FirstMatch(
		func() string {
			return c.Field("destinatario", "beneficiario", "a nombre de", "nombre del destinatario")
		},
		func() string { return c.Line("destinatario", "beneficiario") },
	)
	remitente := c.Field("remitente", "ordenante", "de")
	concepto := parser.FirstMatch(
		func() string { return c.Field("concepto", "detalle", "motivo", "descripcion") },
		func() string { return c.Line("concepto", "detalle") },
	)
	referencia := parser.FirstMatch(
		func() string { return c.Field("referencia", "numero de referencia", "comprobante", "documento") },
		func() string { return c.Line("referencia") },
	)

	// The counterparty is the beneficiary for outgoing money and the sender
	// for incoming SINPE credits.
	comercio := destinatario
	if kind == kindSinpeRecibido && remitente != "" {
		comercio = remitente
	}
	if comercio == "" {
		comercio = models.ComercioDesconocido
	}

	tx := &models.ParsedTransaction{
		Banco:            BankName,
		Tipo:             kind.transactionType(),
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
	if kind == kindTransferenciaPropia {
		tx.SetMeta("cuenta_propia", "true")
	}

	// A bare SINPE with neither counterparty nor memo is ambiguous. Policy:
	// flag it for manual reconciliation instead of guessing.
	sinpe := kind == kindSinpeEnviado || kind == kindSinpeRecibido
	if sinpe && destinatario == "" && remitente == "" && concepto == "" {
		tx.SetMeta(models.MetaRevisionManual, "true")
	}

	parser.MarkAmountQuality(tx, montoOK)

	p.Logger().Debug("Parsed BAC transfer",
		logging.Field{Key: "tipo", Value: string(tx.Tipo)},
		logging.Field{Key: "comercio", Value: tx.Comercio})
	return tx, nil
}
