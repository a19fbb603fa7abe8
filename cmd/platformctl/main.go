package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/handlers"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "platformctl",
		Short:         "Cosmos Platform admin tool",
		Long:          "Operator commands for the Cosmos Platform: credentials, schema setup, cost estimates and offline config checks.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       fmt.Sprintf("%s (%s %s/%s)", handlers.Version, runtime.Version(), runtime.GOOS, runtime.GOARCH),
	}

	root.AddCommand(
		newHashPasswordCmd(),
		newTokenCmd(),
		newEstimateCmd(),
		newValidateCmd(),
		newMigrateCmd(),
		newCreateUserCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
