package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "plancalc",
	Short:        "Payment plan calculator",
	Long:         "Compute a down payment + installment schedule offline, without the API.",
	SilenceUsage: true,
}
