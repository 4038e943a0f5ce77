package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/okian/merit/internal/domain/model"
	"github.com/okian/merit/internal/domain/scoring"
)

func newScoreCmd() *cobra.Command {
	var (
		file     string
		ruleset  string
		rulesDir string
	)
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score one application and print the evaluation",
		Long: `Score reads one application in YAML or JSON and prints its evaluation as
JSON. Nothing is ranked or stored.

Examples:
  meritctl score --file application.yaml
  meritctl score --file - --ruleset 2026 --rules-dir ./rulesets < app.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := readApplication(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			if ruleset != "" {
				app.RulesetVersion = ruleset
			}

			reg, err := loadRegistry(rulesDir)
			if err != nil {
				return err
			}
			rs, err := reg.Get(app.RulesetVersion)
			if err != nil {
				return err
			}

			ev := scoring.New(scoring.WithRuleset(rs)).Evaluate(app)
			ev.EvaluatedAt = time.Now().UTC()

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(ev)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "Application file (YAML or JSON); - reads stdin")
	cmd.Flags().StringVar(&ruleset, "ruleset", "", "Ordinance version; overrides the application's ruleset_version")
	cmd.Flags().StringVar(&rulesDir, "rules-dir", "", "Directory of additional ordinance YAML files")
	return cmd
}

// readApplication decodes an application from path, or from stdin when path
// is "-". JSON documents are valid YAML, so one decoder serves both.
func readApplication(stdin io.Reader, path string) (model.Application, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return model.Application{}, fmt.Errorf("open application: %w", err)
		}
		defer f.Close()
		r = f
	}

	var app model.Application
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&app); err != nil {
		return model.Application{}, fmt.Errorf("decode application: %w", err)
	}
	if app.Applicant == "" {
		return model.Application{}, fmt.Errorf("decode application: applicant is required")
	}
	return app, nil
}
