package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cashflow",
	Short: "Single-account micro-credit ledger",
	Long: `cashflow keeps one ledger per client: balance, savings and a single
active loan. Movements are applied with optimistic concurrency and every
accepted movement leaves exactly one transaction record.

Configuration comes from defaults, the TOML file named by CONFIG_FILE and
environment variables, in that order.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}
