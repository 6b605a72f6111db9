package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "clinic-booking",
		Short:        "Clinic appointment booking core",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().Bool("console", false, "Human-readable log output")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(expireCmd())
	rootCmd.AddCommand(generateSlotsCmd())
	rootCmd.AddCommand(doctorCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
