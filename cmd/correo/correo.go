// Package correo implements the command that converts bank notification
// email records (JSON) into categorized transactions in CSV format.
package correo

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sebascrugu/finanzas-email-tracker/cmd/root"
	"github.com/sebascrugu/finanzas-email-tracker/internal/bacparser"
	"github.com/sebascrugu/finanzas-email-tracker/internal/categorizer"
	"github.com/sebascrugu/finanzas-email-tracker/internal/common"
	"github.com/sebascrugu/finanzas-email-tracker/internal/logging"
	"github.com/sebascrugu/finanzas-email-tracker/internal/merchant"
	"github.com/sebascrugu/finanzas-email-tracker/internal/models"
	"github.com/sebascrugu/finanzas-email-tracker/internal/parser"
	"github.com/sebascrugu/finanzas-email-tracker/internal/popularparser"
	"github.com/sebascrugu/finanzas-email-tracker/internal/store"
)

// Cmd is the correo command.
var Cmd = &cobra.Command{
	Use:   "correo",
	Short: "Procesa correos de notificación bancaria a CSV",
	Long: `Procesa uno o varios registros de correo (JSON) de BAC Credomatic o
Banco Popular y escribe las transacciones normalizadas y categorizadas a CSV.`,
	Run: correoFunc,
}

func correoFunc(cmd *cobra.Command, args []string) {
	log := root.Log
	input := root.SharedFlags.Input
	output := root.SharedFlags.Output
	if input == "" || output == "" {
		log.Fatal("Both --input and --output are required")
	}

	registry := buildRegistry(log)
	ruleStore := store.NewRuleStore(
		root.Cfg.Reglas.Categorias, root.Cfg.Reglas.Comercios, root.Cfg.Reglas.Ruido)
	cat := categorizer.New(ruleStore, log)

	extraNoise, err := ruleStore.LoadRuido()
	if err != nil {
		log.WithError(err).Warn("Failed to load merchant noise tokens")
	}
	normalizer := merchant.New(extraNoise...)

	records, err := loadRecords(input)
	if err != nil {
		log.WithError(err).Fatal("Failed to read email records",
			logging.Field{Key: "input", Value: input})
	}

	var transactions []models.ParsedTransaction
	skipped := 0
	for _, record := range records {
		tx, err := registry.ParseRecord(record)
		if err != nil {
			// Contract violations are bugs in the record source, never
			// routine input variance. Fail loudly.
			log.WithError(err).Fatal("Email record violates the parse contract")
		}
		if tx == nil {
			skipped++
			continue
		}

		tx.Comercio = normalizer.Normalize(tx.Comercio)
		category, _ := cat.Categorize(categorizer.Transaction{
			Comercio:    tx.Comercio,
			Descripcion: tx.Meta(models.MetaConcepto),
		})
		tx.Categoria = category.Name

		transactions = append(transactions, *tx)
	}

	log.Info("Processed email records",
		logging.Field{Key: "total", Value: len(records)},
		logging.Field{Key: "transacciones", Value: len(transactions)},
		logging.Field{Key: "descartados", Value: skipped})

	if err := common.WriteTransactionsToCSV(transactions, output); err != nil {
		log.WithError(err).Fatal("Failed to write CSV",
			logging.Field{Key: "output", Value: output})
	}
	log.Info("Wrote transactions to CSV",
		logging.Field{Key: "file", Value: output},
		logging.Field{Key: "count", Value: len(transactions)})
}

// buildRegistry wires the closed set of bank parsers.
func buildRegistry(log logging.Logger) *parser.Registry {
	registry := parser.NewRegistry(log)
	registry.Register(bacparser.New(log), bacparser.Domains...)
	registry.Register(popularparser.New(log), popularparser.Domains...)
	return registry
}

// loadRecords reads email records from a JSON file, or from every .json file
// in a directory. Each file may hold a single record object or an array.
func loadRecords(input string) ([]map[string]any, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return readRecordFile(input)
	}

	entries, err := os.ReadDir(input)
	if err != nil {
		return nil, err
	}

	var records []map[string]any
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".json") {
			continue
		}
		fileRecords, err := readRecordFile(filepath.Join(input, entry.Name()))
		if err != nil {
			return nil, err
		}
		records = append(records, fileRecords...)
	}
	return records, nil
}

func readRecordFile(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var many []map[string]any
	if err := json.Unmarshal(data, &many); err == nil {
		return many, nil
	}

	var one map[string]any
	if err := json.Unmarshal(data, &one); err != nil {
		return nil, err
	}
	return []map[string]any{one}, nil
}
