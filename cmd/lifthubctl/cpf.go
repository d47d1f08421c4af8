package main

import (
	"fmt"

	"github.com/DioGolang/lifthub/pkg/cpf"
	"github.com/spf13/cobra"
)

func newCPFCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cpf",
		Short: "Validate and format CPF identifiers",
	}
	cmd.AddCommand(newCPFCheckCmd(), newCPFFormatCmd())
	return cmd
}

func newCPFCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <cpf>...",
		Short: "Report whether each identifier is valid",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			invalid := 0
			for _, raw := range args {
				status := "valid"
				if !cpf.IsValid(raw) {
					status = "invalid"
					invalid++
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", cpf.Format(raw), status)
			}
			if invalid > 0 {
				return fmt.Errorf("%d of %d identifiers are invalid", invalid, len(args))
			}
			return nil
		},
	}
}

func newCPFFormatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "format <cpf>...",
		Short: "Print identifiers in ddd.ddd.ddd-dd form",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, raw := range args {
				fmt.Fprintln(cmd.OutOrStdout(), cpf.Format(raw))
			}
			return nil
		},
	}
}
