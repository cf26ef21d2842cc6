package main

import (
	"os"

	"github.com/api-sage/cashflow-ledger/src/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
