package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "lifthubctl",
		Short: "Operator tooling for the LiftHub student registry",
		Long: `lifthubctl runs maintenance tasks against a LiftHub deployment.

Examples:
  lifthubctl migrate                    Apply the database schema
  lifthubctl cpf check 111.444.777-35   Validate identifiers
  lifthubctl cpf format 11144477735     Print the display form`,
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config-dir", ".", "directory holding the .env file")

	root.AddCommand(newMigrateCmd(), newCPFCmd())
	return root
}
