// Package categorizar implements the one-off merchant categorization command.
package categorizar

import (
	"github.com/spf13/cobra"

	"github.com/sebascrugu/finanzas-email-tracker/cmd/root"
	"github.com/sebascrugu/finanzas-email-tracker/internal/categorizer"
	"github.com/sebascrugu/finanzas-email-tracker/internal/logging"
	"github.com/sebascrugu/finanzas-email-tracker/internal/merchant"
	"github.com/sebascrugu/finanzas-email-tracker/internal/store"
)

var (
	comercio    string
	descripcion string
)

// Cmd is the categorizar command.
var Cmd = &cobra.Command{
	Use:   "categorizar",
	Short: "Categoriza un comercio usando las reglas configuradas",
	Run:   categorizarFunc,
}

func init() {
	Cmd.Flags().StringVarP(&comercio, "comercio", "c", "", "Nombre del comercio (requerido)")
	Cmd.Flags().StringVarP(&descripcion, "descripcion", "d", "", "Texto descriptivo adicional")
	_ = Cmd.MarkFlagRequired("comercio")
}

func categorizarFunc(cmd *cobra.Command, args []string) {
	log := root.Log

	ruleStore := store.NewRuleStore(
		root.Cfg.Reglas.Categorias, root.Cfg.Reglas.Comercios, root.Cfg.Reglas.Ruido)
	cat := categorizer.New(ruleStore, log)

	extraNoise, err := ruleStore.LoadRuido()
	if err != nil {
		log.WithError(err).Warn("Failed to load merchant noise tokens")
	}
	normalized := merchant.New(extraNoise...).Normalize(comercio)

	category, matched := cat.Categorize(categorizer.Transaction{
		Comercio:    normalized,
		Descripcion: descripcion,
	})

	log.Info("Categorization result",
		logging.Field{Key: "comercio", Value: normalized},
		logging.Field{Key: "categoria", Value: category.Name},
		logging.Field{Key: "matched", Value: matched})
}
