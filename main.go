package main

import (
	"os"

	"github.com/sebascrugu/finanzas-email-tracker/cmd/categorizar"
	"github.com/sebascrugu/finanzas-email-tracker/cmd/correo"
	"github.com/sebascrugu/finanzas-email-tracker/cmd/estado"
	"github.com/sebascrugu/finanzas-email-tracker/cmd/root"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(correo.Cmd)
	root.Cmd.AddCommand(estado.Cmd)
	root.Cmd.AddCommand(categorizar.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
