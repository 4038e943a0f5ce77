// Command meritctl scores portfolios offline, exports ordinances and load
// tests a running merit service.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/merit/internal/domain/rules"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. A fresh tree per call keeps flag state
// out of package globals.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "meritctl",
		Short: "Admission merit scoring tools",
		Long: `meritctl scores self-reported achievement portfolios under a versioned
admission ordinance without a running server, exports ordinances in the YAML
layout the server loads, and load tests a running merit service.`,
		SilenceUsage: true,
	}
	root.AddCommand(newScoreCmd(), newRulesCmd(), newLoadtestCmd())
	return root
}

// loadRegistry builds a ruleset registry from the built-in ordinance plus
// every file in dir.
func loadRegistry(dir string) (*rules.Registry, error) {
	reg, err := rules.NewRegistry(rules.WithDir(dir))
	if err != nil {
		return nil, fmt.Errorf("load rulesets: %w", err)
	}
	return reg, nil
}
