package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonarprep/sonarprep/cmd/sonarprep/internal/clierr"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	out := bytes.NewBufferString("")
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRuleSetGenerateToStdout(t *testing.T) {
	out, err := runCLI(t, "ruleset", "generate", "CA1000", "MyCustomCheckId")
	require.NoError(t, err)

	want := `<?xml version="1.0" encoding="utf-8"?>
<RuleSet Name="SonarQube" Description="Rule set generated by SonarQube" ToolsVersion="12.0">
  <Rules AnalyzerId="Microsoft.Analyzers.ManagedCodeAnalysis" RuleNamespace="Microsoft.Rules.Managed">
    <Rule Id="CA1000" Action="Warning" />
    <Rule Id="MyCustomCheckId" Action="Warning" />
  </Rules>
</RuleSet>
`
	assert.Equal(t, want, out)
}

func TestRuleSetGenerateToFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "analyzers.ruleset")

	out, err := runCLI(t, "ruleset", "generate", "CA1000", "-o", dest)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote rule set with 1 rule(s)")

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<Rule Id="CA1000" Action="Warning" />`)
}

func TestRuleSetGenerateFromSettingsFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "sonarprep.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("ruleset:\n  rules: [S100, S200]\n"), 0o600))

	out, err := runCLI(t, "ruleset", "generate", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, `<Rule Id="S100" Action="Warning" />`)
	assert.Contains(t, out, `<Rule Id="S200" Action="Warning" />`)
}

func TestRuleSetGenerateDuplicateIDs(t *testing.T) {
	out, err := runCLI(t, "ruleset", "generate", "CA1000", "CA1000", "CA1001", "CA1002", "CA1002", "CA1002")
	require.Error(t, err)

	assert.Equal(t, 2, clierr.ExitCodeOf(err))
	assert.Contains(t, err.Error(), "The following CheckId should not appear multiple times: CA1000, CA1002")
	assert.NotContains(t, out, "<RuleSet", "no document on validation failure")
}
