package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the environment can run the pipeline",
	Run: func(cmd *cobra.Command, args []string) {
		ok := true
		ok = checkBinary("claude", "reasoning engine CLI", true) && ok
		ok = checkBinary("git", "version control", true) && ok
		// Docker is optional; verification falls back to a temp directory.
		checkBinary("docker", "verification container runtime (optional)", false)
		checkBinary("gh", "GitHub CLI for --create-pr (optional)", false)

		if os.Getenv("ANTHROPIC_API_KEY") == "" {
			warn("ANTHROPIC_API_KEY not set; commit messages will use the fixed default")
		}

		if !ok {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func checkBinary(name, purpose string, required bool) bool {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	if _, err := exec.LookPath(name); err != nil {
		if required {
			fmt.Printf("%s %s not found (%s)\n", red("✗"), name, purpose)
			return false
		}
		warn(fmt.Sprintf("%s not found (%s)", name, purpose))
		return true
	}
	fmt.Printf("%s %s (%s)\n", green("✓"), name, purpose)
	return true
}

func warn(message string) {
	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Printf("%s %s\n", yellow("!"), message)
}
