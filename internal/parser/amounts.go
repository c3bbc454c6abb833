package parser

import (
	"github.com/sebascrugu/finanzas-email-tracker/internal/models"
)

// MarkAmountQuality records how trustworthy a transaction's zero amount is.
//
// Two very different situations produce a zero: a legitimate zero-amount
// pre-authorization hold (airlines, car rentals, subscription trials), and an
// amount string the fail-soft parser could not read. The first is a real
// record some of which are later captured; the second is a parse failure
// masquerading as ₡0 and must never flow downstream unmarked. The metadata
// flags keep the two distinguishable.
func MarkAmountQuality(tx *models.ParsedTransaction, parsedOK bool) {
	if !parsedOK {
		tx.SetMeta(models.MetaMontoIlegible, "true")
		return
	}
	if tx.MontoOriginal.IsZero() {
		tx.SetMeta(models.MetaPreauth, "true")
	}
}
