// Package root contains the root command for the application.
package root

import (
	"github.com/spf13/cobra"

	"github.com/sebascrugu/finanzas-email-tracker/internal/common"
	"github.com/sebascrugu/finanzas-email-tracker/internal/config"
	"github.com/sebascrugu/finanzas-email-tracker/internal/logging"
)

// CommonFlags represents the flags shared by multiple commands.
type CommonFlags struct {
	Input  string
	Output string
}

var (
	// Log is the shared logger instance for commands.
	Log logging.Logger = logging.GetLogger()

	// Cfg is the loaded application configuration.
	Cfg *config.Config

	// SharedFlags are common flags accessible to all commands.
	SharedFlags = CommonFlags{}

	// Cmd is the root command.
	Cmd = &cobra.Command{
		Use:   "finanzas-email-tracker",
		Short: "Convierte notificaciones bancarias y estados de cuenta en transacciones normalizadas.",
		Long: `finanzas-email-tracker procesa correos de notificación de BAC Credomatic y
Banco Popular, y estados de cuenta BAC, y produce transacciones
normalizadas y categorizadas en formato CSV.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to finanzas-email-tracker!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadEnv()

			cfg, err := config.InitializeConfig()
			if err != nil {
				Log.WithError(err).Fatal("Invalid configuration")
			}
			Cfg = cfg
			Log = cfg.ConfigureLogging()

			if cfg.CSV.Delimiter != "" {
				common.SetDelimiter([]rune(cfg.CSV.Delimiter)[0])
			}
		},
	}
)

// Init initializes the root command and all persistent flags.
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input file or directory")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output CSV file")
}
