package popularparser

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebascrugu/finanzas-email-tracker/internal/models"
)

func TestParseNarrativePurchase(t *testing.T) {
	p := New(nil)

	// Popular phrases the purchase as a sentence rather than a table.
	tx, err := p.Parse(models.EmailMessage{
		Subject: "Banco Popular: notificación de compra",
		From:    "notificaciones@bancopopular.fi.cr",
		BodyHTML: `<p>Estimado cliente:</p>
			<p>Se realizó una compra en MAS X MENOS CURRIDABAT por ₡12,500.00</p>
			<p>Fecha: 06/11/2025 18:20</p>`,
	})

	require.NoError(t, err)
	require.NotNil(t, tx)

	assert.Equal(t, "Banco Popular", tx.Banco)
	assert.Equal(t, models.TipoCompra, tx.Tipo)
	assert.Equal(t, "MAS X MENOS CURRIDABAT", tx.Comercio)
	assert.Equal(t, models.CRC, tx.MonedaOriginal)
	assert.True(t, decimal.NewFromFloat(12500).Equal(tx.MontoOriginal))
	assert.Equal(t, time.Date(2025, 11, 6, 18, 20, 0, 0, time.UTC), tx.FechaTransaccion)
	assert.False(t, tx.MontoIlegible())
}

func TestParseTabularPurchase(t *testing.T) {
	p := New(nil)

	tx, err := p.Parse(models.EmailMessage{
		Subject: "Notificación de transacción",
		From:    "notificaciones@bancopopular.fi.cr",
		BodyHTML: `<table>
			<tr><td>Comercio</td><td>FARMACIA SUCRE</td></tr>
			<tr><td>Monto</td><td>CRC 8,750.00</td></tr>
			<tr><td>Fecha</td><td>06/11/2025</td></tr>
			<tr><td>Autorización</td><td>987654</td></tr>
		</table>`,
	})

	require.NoError(t, err)
	require.NotNil(t, tx)

	assert.Equal(t, "FARMACIA SUCRE", tx.Comercio)
	assert.True(t, decimal.NewFromFloat(8750).Equal(tx.MontoOriginal))
	assert.Equal(t, "987654", tx.Meta(models.MetaAutorizacion))
}

func TestParseRejectsNonTransactionalNotices(t *testing.T) {
	p := New(nil)

	subjects := []string{
		"Afiliación SINPE Móvil",
		"Cambio de PIN",
		"Token de seguridad generado",
		"Verificación de identidad requerida",
	}

	for _, subject := range subjects {
		tx, err := p.Parse(models.EmailMessage{
			Subject:  subject,
			From:     "notificaciones@bancopopular.fi.cr",
			BodyHTML: "<p>Monto: CRC 1,000.00</p>",
		})

		assert.NoError(t, err, "subject %q", subject)
		assert.Nil(t, tx, "subject %q should be rejected", subject)
	}
}

func TestParseUnrecognizedEmail(t *testing.T) {
	p := New(nil)

	tx, err := p.Parse(models.EmailMessage{
		Subject:  "Boletín mensual",
		From:     "notificaciones@bancopopular.fi.cr",
		BodyHTML: "<p>Conozca nuestros productos</p>",
	})

	assert.NoError(t, err)
	assert.Nil(t, tx)
}

func TestParseMerchantFromSubject(t *testing.T) {
	p := New(nil)

	tx, err := p.Parse(models.EmailMessage{
		Subject:    "Banco Popular: compra en PERIFERICOS SA",
		From:       "notificaciones@bancopopular.fi.cr",
		BodyHTML:   "",
		ReceivedAt: time.Date(2025, 11, 6, 12, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.Equal(t, "PERIFERICOS SA", tx.Comercio)
	assert.True(t, tx.MontoIlegible())
}

func TestParseSinpeSent(t *testing.T) {
	p := New(nil)

	tx, err := p.Parse(models.EmailMessage{
		Subject: "Transferencia SINPE Móvil realizada",
		From:    "notificaciones@bancopopular.fi.cr",
		BodyHTML: `<table>
			<tr><td>Monto</td><td>₡7,500.00</td></tr>
			<tr><td>Destinatario</td><td>CARLOS JIMENEZ ROJAS</td></tr>
			<tr><td>Descripción</td><td>Pago alquiler</td></tr>
			<tr><td>Fecha</td><td>06/11/2025 08:00</td></tr>
		</table>`,
	})

	require.NoError(t, err)
	require.NotNil(t, tx)

	assert.Equal(t, models.TipoSinpeEnviado, tx.Tipo)
	assert.Equal(t, "CARLOS JIMENEZ ROJAS", tx.Comercio)
	assert.True(t, decimal.NewFromFloat(7500).Equal(tx.MontoOriginal))
	assert.Equal(t, "Pago alquiler", tx.Meta(models.MetaConcepto))
}

func TestParseSinpeReceived(t *testing.T) {
	p := New(nil)

	tx, err := p.Parse(models.EmailMessage{
		Subject: "SINPE Móvil: ha recibido una transferencia",
		From:    "notificaciones@bancopopular.fi.cr",
		BodyHTML: `<table>
			<tr><td>Monto</td><td>₡15,000.00</td></tr>
			<tr><td>Remitente</td><td>ANA VARGAS CASTRO</td></tr>
			<tr><td>Fecha</td><td>06/11/2025 16:40</td></tr>
		</table>`,
	})

	require.NoError(t, err)
	require.NotNil(t, tx)

	assert.Equal(t, models.TipoSinpeRecibido, tx.Tipo)
	assert.Equal(t, "ANA VARGAS CASTRO", tx.Comercio)
}

func TestParseBareSinpeNeedsManualReview(t *testing.T) {
	p := New(nil)

	tx, err := p.Parse(models.EmailMessage{
		Subject: "Transferencia SINPE Móvil",
		From:    "notificaciones@bancopopular.fi.cr",
		BodyHTML: `<table>
			<tr><td>Monto</td><td>₡2,000.00</td></tr>
			<tr><td>Fecha</td><td>06/11/2025</td></tr>
		</table>`,
	})

	require.NoError(t, err)
	require.NotNil(t, tx)

	assert.Equal(t, models.ComercioDesconocido, tx.Comercio)
	assert.Equal(t, "true", tx.Meta(models.MetaRevisionManual))
}

func TestNarrativeMatch(t *testing.T) {
	p := New(nil)

	tests := []struct {
		name     string
		text     string
		merchant string
		amount   string
	}{
		{
			"Compra realizada en",
			"Se realizó una compra realizada en SUBWAY por CRC 4,200.00",
			"SUBWAY",
			"CRC 4,200.00",
		},
		{
			"Compra en with symbol",
			"compra en PALI GUADALUPE por ₡3,100.00",
			"PALI GUADALUPE",
			"₡3,100.00",
		},
		{
			"Pago a",
			"pago a CNFL por ₡22,340.00",
			"CNFL",
			"₡22,340.00",
		},
		{
			"No narrative",
			"Estimado cliente, gracias por preferirnos",
			"",
			"",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			merchant, amount := p.narrativeMatch(tc.text)
			assert.Equal(t, tc.merchant, merchant)
			assert.Equal(t, tc.amount, amount)
		})
	}
}
