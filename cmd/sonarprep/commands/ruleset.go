// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sonarprep/sonarprep/cmd/sonarprep/internal/clierr"
	"github.com/sonarprep/sonarprep/internal/ruleset"
)

func newRuleSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ruleset",
		Short: "Analyzer rule-set file operations",
	}
	cmd.AddCommand(newRuleSetGenerateCmd())
	return cmd
}

func newRuleSetGenerateCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "generate [checkID...]",
		Short: "Generate an analyzer rule-set file",
		Long: `Generate the rule-set XML document for the given CheckIds.
CheckIds come from the arguments, or from the settings file when no
arguments are given. Without --output the document goes to stdout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return clierr.Wrap(2, "loading settings", err)
			}

			ids := args
			if len(ids) == 0 {
				ids = cfg.RuleSet.Rules
			}

			doc, err := ruleset.Emit(ids)
			if err != nil {
				var verr *ruleset.ValidationError
				if errors.As(err, &verr) {
					return clierr.Wrap(2, "rule set validation failed", err)
				}
				return err
			}

			dest := output
			if dest == "" {
				dest = cfg.RuleSet.Output
			}
			if dest == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), doc)
				return err
			}

			if err := os.WriteFile(dest, []byte(doc), 0o644); err != nil { //nolint:gosec // rule-set files are world-readable build inputs
				return fmt.Errorf("writing rule set to %s: %w", dest, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote rule set with %d rule(s) to %s\n", len(ids), dest)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write the rule set to (default: stdout or the settings file's ruleset.output)")
	return cmd
}
