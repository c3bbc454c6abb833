// Package statementparser extracts per-account and per-transaction records
// from the text dump of a BAC Credomatic bank statement. PDF decoding itself
// is out of scope: the input is layout-preserving text already pulled from
// the PDF by an external extraction collaborator, with whitespace carrying
// the column alignment.
//
// Statements may hold several accounts. A block whose header cannot be
// located is skipped and counted, never raised; multi-account statements
// yield partial results instead of an all-or-nothing failure.
package statementparser

import (
	"io"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sebascrugu/finanzas-email-tracker/internal/currencyutils"
	"github.com/sebascrugu/finanzas-email-tracker/internal/dateutils"
	"github.com/sebascrugu/finanzas-email-tracker/internal/logging"
	"github.com/sebascrugu/finanzas-email-tracker/internal/models"
	"github.com/sebascrugu/finanzas-email-tracker/internal/parser"
	"github.com/sebascrugu/finanzas-email-tracker/internal/textutils"
)

// ParserName identifies this parser in logs.
const ParserName = "BAC Estado de Cuenta"

var (
	ibanPattern   = regexp.MustCompile(`CR\d{20}`)
	datePattern   = regexp.MustCompile(`^\s*(\d{2}[/-]\d{2}[/-]\d{4})\s+`)
	// Amounts print with thousands commas, but an amount without them must
	// match whole rather than silently truncating to its last groups.
	amountPattern = regexp.MustCompile(`\d{1,3}(?:,\d{3})*\.\d{2}|\d+\.\d{2}`)
	creditMarker  = regexp.MustCompile(`\bCR\b`)
	debitMarker   = regexp.MustCompile(`\bDB\b`)
)

// Parser parses BAC statement text dumps. It holds only compiled tables and
// a logger; concurrent Parse calls are safe.
type Parser struct {
	parser.BaseParser
}

// New creates a statement parser.
func New(logger logging.Logger) *Parser {
	return &Parser{BaseParser: parser.NewBaseParser(logger)}
}

// Parse reads the full statement text from r and parses it.
func (p *Parser) Parse(r io.Reader) (*models.StatementResult, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return p.ParseText(string(raw)), nil
}

// ParseText segments the statement into per-account blocks and parses each.
// Never returns an error: unusable blocks are counted in BloquesOmitidos.
func (p *Parser) ParseText(text string) *models.StatementResult {
	result := &models.StatementResult{}
	lines := strings.Split(text, "\n")

	// Segment into blocks at account-header lines.
	var blocks [][]string
	var current []string
	for _, line := range lines {
		if isBlockStart(line) {
			if current != nil {
				blocks = append(blocks, current)
			}
			current = []string{line}
			continue
		}
		if current != nil {
			current = append(current, line)
		}
	}
	if current != nil {
		blocks = append(blocks, current)
	}

	for _, block := range blocks {
		account, ok := p.parseBlock(block)
		if !ok {
			result.BloquesOmitidos++
			continue
		}
		result.Cuentas = append(result.Cuentas, *account)
	}

	if len(result.Cuentas) == 0 {
		p.Logger().Warn("No account blocks recognized in statement text",
			logging.Field{Key: "parser", Value: ParserName},
			logging.Field{Key: "bloques_omitidos", Value: result.BloquesOmitidos})
	}

	return result
}

// isBlockStart reports whether a line opens an account block. Account headers
// open with "CUENTA" ("CUENTA CR05015202001026284066 COLONES"); the document
// title "ESTADO DE CUENTA" does not count.
func isBlockStart(line string) bool {
	folded := textutils.FoldLower(strings.TrimSpace(line))
	return strings.HasPrefix(folded, "cuenta")
}

// parseBlock extracts one account and its ledger lines. Returns ok=false
// when the header is unusable (no IBAN, or no opening balance anywhere in
// the block) so the caller can count it as skipped.
func (p *Parser) parseBlock(block []string) (*models.StatementAccount, bool) {
	header := block[0]

	iban := ibanPattern.FindString(header)
	if iban == "" {
		p.Logger().Warn("Statement block header without IBAN, skipping",
			logging.Field{Key: "header", Value: textutils.CollapseWhitespace(header)})
		return nil, false
	}

	account := &models.StatementAccount{
		CuentaIBAN: iban,
		Moneda:     blockCurrency(header),
	}

	saldoAnteriorFound := false
	cols := columnLayout{}

	for _, line := range block[1:] {
		folded := textutils.FoldLower(line)

		switch {
		case strings.Contains(folded, "saldo anterior"):
			if amt, ok := lastAmount(line); ok {
				account.SaldoAnterior = amt
				saldoAnteriorFound = true
			}
		case strings.Contains(folded, "saldo final") || strings.Contains(folded, "saldo actual"):
			if amt, ok := lastAmount(line); ok {
				account.SaldoFinal = amt
			}
		case strings.Contains(folded, "total debitos") || strings.Contains(folded, "total de debitos"):
			p.parseDeclaredTotals(line, folded, account)
		case strings.Contains(folded, "total creditos") || strings.Contains(folded, "total de creditos"):
			p.parseDeclaredTotals(line, folded, account)
		case isColumnHeader(folded):
			cols = detectColumns(folded)
		case datePattern.MatchString(line):
			if tx, ok := p.parseTransactionLine(line, account, cols); ok {
				account.Movimientos = append(account.Movimientos, *tx)
			}
		default:
			// Statement layouts routinely break description text across the
			// amount-alignment boundary; continuation lines attach to the
			// previous ledger line.
			p.appendContinuation(line, account)
		}
	}

	if !saldoAnteriorFound {
		p.Logger().Warn("Statement block without opening balance, skipping",
			logging.Field{Key: "cuenta", Value: iban})
		return nil, false
	}

	for _, tx := range account.Movimientos {
		if tx.Tipo == models.Debito {
			account.TotalDebitos = account.TotalDebitos.Add(tx.Monto)
		} else {
			account.TotalCreditos = account.TotalCreditos.Add(tx.Monto)
		}
	}

	p.Logger().Info("Parsed statement account",
		logging.Field{Key: "cuenta", Value: iban},
		logging.Field{Key: "movimientos", Value: len(account.Movimientos)},
		logging.Field{Key: "descuadre", Value: account.Descuadre().StringFixed(2)})
	return account, true
}

// columnLayout holds the byte offsets of the debit, credit and balance
// column headings within the folded header line. A value of -1 means the
// heading was not seen.
type columnLayout struct {
	debito  int
	credito int
	saldo   int
}

func (c columnLayout) known() bool { return c.debito > 0 && c.credito > 0 }

func isColumnHeader(folded string) bool {
	return strings.Contains(folded, "debito") && strings.Contains(folded, "credito")
}

func detectColumns(folded string) columnLayout {
	return columnLayout{
		debito:  strings.Index(folded, "debito"),
		credito: strings.Index(folded, "credito"),
		saldo:   strings.LastIndex(folded, "saldo"),
	}
}

// parseTransactionLine recognizes a column-aligned ledger line: date token,
// free-text description, and amount tokens whose horizontal position decides
// debit versus credit. Textual DB/CR markers are sometimes absent, so the
// populated column is the primary classifier.
func (p *Parser) parseTransactionLine(line string, account *models.StatementAccount, cols columnLayout) (*models.StatementTransaction, bool) {
	dateMatch := datePattern.FindStringSubmatch(line)
	fecha, err := dateutils.ParseBankDate(dateMatch[1])
	if err != nil {
		p.Logger().WithError(err).Warn("Unparseable statement line date",
			logging.Field{Key: "line", Value: textutils.CollapseWhitespace(line)})
		return nil, false
	}

	amounts := amountPattern.FindAllStringIndex(line, -1)
	if len(amounts) == 0 {
		return nil, false
	}

	// Pick the movement amount: with a known layout, the token closest to
	// the debit or credit heading; the token under the balance heading is
	// the running balance and is ignored.
	idx, tipo := classifyAmount(line, amounts, cols)
	montoText := line[amounts[idx][0]:amounts[idx][1]]
	_, monto, ok := currencyutils.ParseAmount(montoText)
	if !ok {
		return nil, false
	}

	// Description runs from the end of the date token to the first amount.
	descEnd := amounts[0][0]
	descStart := len(dateMatch[0])
	if descStart > descEnd {
		descStart = descEnd
	}
	concepto := textutils.CollapseWhitespace(line[descStart:descEnd])

	return &models.StatementTransaction{
		CuentaIBAN: account.CuentaIBAN,
		Fecha:      fecha,
		Concepto:   concepto,
		Tipo:       tipo,
		Moneda:     account.Moneda,
		Monto:      monto,
	}, true
}

// classifyAmount selects which amount token is the movement and whether it
// sits in the debit or the credit column.
func classifyAmount(line string, amounts [][]int, cols columnLayout) (int, models.StatementEntryType) {
	if cols.known() {
		bestIdx, bestDist := -1, 0
		bestTipo := models.Debito
		for i, span := range amounts {
			mid := (span[0] + span[1]) / 2
			// Skip the running-balance column.
			if cols.saldo > cols.credito && abs(mid-cols.saldo) < abs(mid-cols.debito) && abs(mid-cols.saldo) < abs(mid-cols.credito) {
				continue
			}
			dist := abs(mid - cols.debito)
			tipo := models.Debito
			if abs(mid-cols.credito) < dist {
				dist = abs(mid - cols.credito)
				tipo = models.Credito
			}
			if bestIdx < 0 || dist < bestDist {
				bestIdx, bestDist, bestTipo = i, dist, tipo
			}
		}
		if bestIdx >= 0 {
			return bestIdx, bestTipo
		}
	}

	// Fallback when no column header was seen: textual markers, then sign.
	folded := textutils.FoldLower(line)
	switch {
	case strings.Contains(folded, "credito") || creditMarker.MatchString(line):
		return 0, models.Credito
	case strings.Contains(folded, "debito") || debitMarker.MatchString(line):
		return 0, models.Debito
	case strings.Contains(line, "-"):
		return 0, models.Debito
	default:
		return 0, models.Debito
	}
}

// parseDeclaredTotals reads the statement's own printed totals so the caller
// can cross-check them against the computed sums.
func (p *Parser) parseDeclaredTotals(line, folded string, account *models.StatementAccount) {
	amounts := amountPattern.FindAllString(line, -1)
	hasDeb := strings.Contains(folded, "debito")
	hasCre := strings.Contains(folded, "credito")

	switch {
	case hasDeb && hasCre && len(amounts) >= 2:
		account.DebitosDeclarados, _ = decimal.NewFromString(strings.ReplaceAll(amounts[0], ",", ""))
		account.CreditosDeclarados, _ = decimal.NewFromString(strings.ReplaceAll(amounts[1], ",", ""))
	case hasDeb && len(amounts) >= 1:
		account.DebitosDeclarados, _ = decimal.NewFromString(strings.ReplaceAll(amounts[len(amounts)-1], ",", ""))
	case hasCre && len(amounts) >= 1:
		account.CreditosDeclarados, _ = decimal.NewFromString(strings.ReplaceAll(amounts[len(amounts)-1], ",", ""))
	}
}

// appendContinuation attaches stray description text to the previous ledger
// line when the layout wrapped it past the amount columns.
func (p *Parser) appendContinuation(line string, account *models.StatementAccount) {
	trimmed := textutils.CollapseWhitespace(line)
	if trimmed == "" || len(account.Movimientos) == 0 {
		return
	}
	if amountPattern.MatchString(trimmed) || ibanPattern.MatchString(trimmed) {
		return
	}
	last := &account.Movimientos[len(account.Movimientos)-1]
	last.Concepto = textutils.CollapseWhitespace(last.Concepto + " " + trimmed)
}

func blockCurrency(header string) models.Currency {
	folded := textutils.FoldLower(header)
	switch {
	case strings.Contains(folded, "usd") || strings.Contains(folded, "dolares") || strings.Contains(header, "$"):
		return models.USD
	case strings.Contains(folded, "eur") || strings.Contains(folded, "euros"):
		return models.EUR
	default:
		return models.CRC
	}
}

func lastAmount(line string) (decimal.Decimal, bool) {
	matches := amountPattern.FindAllString(line, -1)
	if len(matches) == 0 {
		return decimal.Zero, false
	}
	_, amt, ok := currencyutils.ParseAmount(matches[len(matches)-1])
	return amt, ok
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
