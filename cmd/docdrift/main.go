// docdrift keeps developer documentation in sync with the code it describes:
// it analyzes a source repository, rewrites the docs to match, and verifies
// them by executing every documented step in a clean environment.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "docdrift",
	Short: "Automatically update and verify developer documentation",
	Long: `docdrift coordinates a three-phase documentation pipeline:

1. Analyze a source repository (dependencies, setup steps, env vars, commands)
2. Update the documentation repository to match the analysis
3. Verify the documentation by executing every step in a clean environment

The update/verify cycle repeats with accumulated failure feedback until the
documentation verifies or the iteration budget runs out, then the changes are
committed on an isolated branch with a diff against the base branch.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
