package main

import (
	"os"

	"github.com/spf13/cobra"

	"jtrac/internal/interfaces/cli/demo"
	"jtrac/internal/interfaces/cli/schema"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "jtrac",
		Short: "jtrac - issue tracking workflow engine",
		Long:  `jtrac is an issue tracking engine with metadata-driven workflows, per-space permissions, and live dashboard counts.`,
	}

	rootCmd.AddCommand(
		schema.NewCommand(),
		demo.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
