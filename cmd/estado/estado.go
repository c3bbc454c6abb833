// Package estado implements the command that converts a bank statement text
// dump into per-account ledger lines in CSV format.
package estado

import (
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/sebascrugu/finanzas-email-tracker/cmd/root"
	"github.com/sebascrugu/finanzas-email-tracker/internal/common"
	"github.com/sebascrugu/finanzas-email-tracker/internal/logging"
	"github.com/sebascrugu/finanzas-email-tracker/internal/statementparser"
)

// balanceTolerance is the rounding slack allowed when cross-checking the
// balance equation of each account.
var balanceTolerance = decimal.NewFromFloat(0.01)

// Cmd is the estado command.
var Cmd = &cobra.Command{
	Use:   "estado",
	Short: "Procesa un estado de cuenta (texto extraído del PDF) a CSV",
	Long: `Procesa el texto extraído de un estado de cuenta BAC, potencialmente con
varias cuentas, y escribe los movimientos a CSV. Los bloques ilegibles se
omiten y se reportan, sin detener el resto del estado.`,
	Run: estadoFunc,
}

func estadoFunc(cmd *cobra.Command, args []string) {
	log := root.Log
	input := root.SharedFlags.Input
	output := root.SharedFlags.Output
	if input == "" || output == "" {
		log.Fatal("Both --input and --output are required")
	}

	file, err := os.Open(input)
	if err != nil {
		log.WithError(err).Fatal("Failed to open statement file",
			logging.Field{Key: "input", Value: input})
	}
	defer func() {
		_ = file.Close()
	}()

	p := statementparser.New(log)
	result, err := p.Parse(file)
	if err != nil {
		log.WithError(err).Fatal("Failed to read statement file")
	}

	if result.BloquesOmitidos > 0 {
		log.Warn("Some statement blocks could not be parsed",
			logging.Field{Key: "bloques_omitidos", Value: result.BloquesOmitidos})
	}

	for i := range result.Cuentas {
		account := &result.Cuentas[i]
		if !account.Cuadrado(balanceTolerance) {
			log.Warn("Account does not balance against its printed saldos",
				logging.Field{Key: "cuenta", Value: account.CuentaIBAN},
				logging.Field{Key: "descuadre", Value: account.Descuadre().StringFixed(2)})
		}
	}

	if err := common.WriteStatementToCSV(result, output); err != nil {
		log.WithError(err).Fatal("Failed to write CSV",
			logging.Field{Key: "output", Value: output})
	}
	log.Info("Wrote statement movements to CSV",
		logging.Field{Key: "file", Value: output},
		logging.Field{Key: "cuentas", Value: len(result.Cuentas)})
}
