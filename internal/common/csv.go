// Package common provides the standardized CSV output shared by all
// commands.
package common

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/sebascrugu/finanzas-email-tracker/internal/dateutils"
	"github.com/sebascrugu/finanzas-email-tracker/internal/models"
)

// Delimiter is the CSV field delimiter, configurable via SetDelimiter.
var Delimiter rune = ','

// SetDelimiter changes the CSV field delimiter for subsequent writes.
func SetDelimiter(d rune) {
	Delimiter = d
	gocsv.SetCSVWriter(func(out io.Writer) *gocsv.SafeCSVWriter {
		writer := csv.NewWriter(out)
		writer.Comma = Delimiter
		return gocsv.NewSafeCSVWriter(writer)
	})
}

// transactionRow is the CSV projection of a ParsedTransaction.
type transactionRow struct {
	Fecha        string `csv:"Fecha"`
	Banco        string `csv:"Banco"`
	Tipo         string `csv:"Tipo"`
	Comercio     string `csv:"Comercio"`
	Monto        string `csv:"Monto"`
	Moneda       string `csv:"Moneda"`
	Ciudad       string `csv:"Ciudad"`
	Pais         string `csv:"Pais"`
	Categoria    string `csv:"Categoria"`
	Autorizacion string `csv:"Autorizacion"`
	Referencia   string `csv:"Referencia"`
	Revision     string `csv:"Revision"`
}

// statementRow is the CSV projection of a StatementTransaction.
type statementRow struct {
	Cuenta   string `csv:"Cuenta"`
	Fecha    string `csv:"Fecha"`
	Concepto string `csv:"Concepto"`
	Tipo     string `csv:"Tipo"`
	Moneda   string `csv:"Moneda"`
	Monto    string `csv:"Monto"`
}

// WriteTransactionsToCSV writes parsed email transactions to a CSV file,
// creating parent directories as needed. An empty slice produces a
// headers-only file.
func WriteTransactionsToCSV(transactions []models.ParsedTransaction, csvFile string) error {
	rows := make([]transactionRow, 0, len(transactions))
	for i := range transactions {
		tx := &transactions[i]
		revision := ""
		if tx.MontoIlegible() || tx.Meta(models.MetaRevisionManual) == "true" {
			revision = "true"
		}
		rows = append(rows, transactionRow{
			Fecha:        tx.FechaTransaccion.Format("2006-01-02 15:04"),
			Banco:        tx.Banco,
			Tipo:         string(tx.Tipo),
			Comercio:     tx.Comercio,
			Monto:        tx.MontoOriginal.StringFixed(2),
			Moneda:       string(tx.MonedaOriginal),
			Ciudad:       tx.Ciudad,
			Pais:         tx.Pais,
			Categoria:    tx.Categoria,
			Autorizacion: tx.Meta(models.MetaAutorizacion),
			Referencia:   tx.Meta(models.MetaReferencia),
			Revision:     revision,
		})
	}
	return writeRows(&rows, csvFile)
}

// WriteStatementToCSV writes every ledger line of a statement result to a
// CSV file, one row per movement across all accounts.
func WriteStatementToCSV(result *models.StatementResult, csvFile string) error {
	var rows []statementRow
	for _, account := range result.Cuentas {
		for _, mov := range account.Movimientos {
			rows = append(rows, statementRow{
				Cuenta:   mov.CuentaIBAN,
				Fecha:    dateutils.ToISODate(mov.Fecha),
				Concepto: mov.Concepto,
				Tipo:     string(mov.Tipo),
				Moneda:   string(mov.Moneda),
				Monto:    mov.Monto.StringFixed(2),
			})
		}
	}
	if rows == nil {
		rows = []statementRow{}
	}
	return writeRows(&rows, csvFile)
}

func writeRows(rows interface{}, csvFile string) error {
	if dir := filepath.Dir(csvFile); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	f, err := os.Create(csvFile)
	if err != nil {
		return fmt.Errorf("failed to create CSV file %s: %w", csvFile, err)
	}
	defer func() {
		_ = f.Close()
	}()

	if err := gocsv.MarshalFile(rows, f); err != nil {
		return fmt.Errorf("failed to write CSV file %s: %w", csvFile, err)
	}
	return nil
}
