package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/merit/internal/domain/rules"
)

func newRulesCmd() *cobra.Command {
	var rulesDir string
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect scoring ordinances",
	}
	cmd.PersistentFlags().StringVar(&rulesDir, "rules-dir", "", "Directory of additional ordinance YAML files")

	list := &cobra.Command{
		Use:   "list",
		Short: "List registered ordinance versions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := loadRegistry(rulesDir)
			if err != nil {
				return err
			}
			for _, v := range reg.Versions() {
				marker := ""
				if v == reg.Default() {
					marker = " (default)"
				}
				fmt.Fprintln(cmd.OutOrStdout(), v+marker)
			}
			return nil
		},
	}

	var version string
	export := &cobra.Command{
		Use:   "export",
		Short: "Print an ordinance in the loadable YAML layout",
		Long: `Export prints an ordinance as YAML. The output can be edited, given a new
version and dropped into the server's ruleset_dir.

Examples:
  meritctl rules export > rulesets/2026.yaml
  meritctl rules export --version 2026 --rules-dir ./rulesets`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := loadRegistry(rulesDir)
			if err != nil {
				return err
			}
			rs, err := reg.Get(version)
			if err != nil {
				return err
			}
			return rules.Encode(cmd.OutOrStdout(), rs)
		},
	}
	export.Flags().StringVar(&version, "version", "", "Ordinance version; empty exports the default")

	cmd.AddCommand(list, export)
	return cmd
}
