package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const programName = "certd"

func main() {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Certificate issuance service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serveRun,
	}

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(mintCommand())
	rootCmd.AddCommand(renderCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", programName, err)
		os.Exit(1)
	}
}
