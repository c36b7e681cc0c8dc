// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ruleset renders analyzer rule-set documents for the
// static-analysis service. The document layout is fixed: the analysis
// toolchain consumes it byte-for-byte, so emission is a pure function
// of the input identifiers.
package ruleset

import (
	"fmt"
	"strings"
)

// ValidationError reports CheckIds that appear more than once in a
// single emission request. Each distinct offender is listed exactly
// once, in first-occurrence order.
type ValidationError struct {
	Duplicates []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("The following CheckId should not appear multiple times: %s", strings.Join(e.Duplicates, ", "))
}

// Emit renders the rule-set document containing one rule entry per
// CheckId, in input order. Identifiers must be unique; duplicates fail
// with a *ValidationError and no output. An empty input is valid and
// yields a document with an empty Rules element.
func Emit(ids []string) (string, error) {
	if dups := duplicates(ids); len(dups) > 0 {
		return "", &ValidationError{Duplicates: dups}
	}

	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n")
	b.WriteString("<RuleSet Name=\"SonarQube\" Description=\"Rule set generated by SonarQube\" ToolsVersion=\"12.0\">\n")
	b.WriteString("  <Rules AnalyzerId=\"Microsoft.Analyzers.ManagedCodeAnalysis\" RuleNamespace=\"Microsoft.Rules.Managed\">\n")
	for _, id := range ids {
		fmt.Fprintf(&b, "    <Rule Id=\"%s\" Action=\"Warning\" />\n", id)
	}
	b.WriteString("  </Rules>\n")
	b.WriteString("</RuleSet>\n")
	return b.String(), nil
}

// duplicates returns the distinct ids occurring more than once,
// ordered by each id's first occurrence.
func duplicates(ids []string) []string {
	counts := make(map[string]int, len(ids))
	for _, id := range ids {
		counts[id]++
	}

	var dups []string
	reported := make(map[string]bool)
	for _, id := range ids {
		if counts[id] > 1 && !reported[id] {
			reported[id] = true
			dups = append(dups, id)
		}
	}
	return dups
}
