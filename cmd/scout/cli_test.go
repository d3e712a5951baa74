package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scout/internal/config"
	"scout/internal/llm"
	"scout/internal/sources"
)

type stubClient struct {
	searchText string
	report     string
}

func (s *stubClient) Search(ctx context.Context, req llm.SearchRequest) (*llm.Response, error) {
	if s.searchText == "" {
		return &llm.Response{}, nil
	}
	return &llm.Response{Content: []llm.ContentBlock{
		llm.TextBlock(s.searchText, llm.Citation{URL: "https://docs.example.com/a", Title: "A"}),
	}}, nil
}

func (s *stubClient) CompleteWithSystem(ctx context.Context, system, user string) (string, error) {
	return s.report, nil
}

// setupWorkspace points the global config at a temp dir with every input file.
func setupWorkspace(t *testing.T) string {
	t.Helper()
	logger = zap.NewNop()
	dir := t.TempDir()

	files := map[string]string{
		"prompts.yaml": "base_instruction: B\noutput_format: F\nprompts:\n  - id: p1\n    name: Een\n    query: q1\n  - id: p2\n    name: Twee\n    query: q2\n",
		"design.md":    "design",
		"setup.md":     "setup",
		"sources.yaml": "default_weight: 5\nsources:\n  - domain: anthropic.com\n    weight: 9\n    implemented_count: 2\n  - domain: reddit.com\n    weight: 3\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}

	c := config.DefaultConfig()
	c.LLM.APIKey = "test-key"
	c.Search.DelayBetweenCalls = "0"
	c.Paths = config.PathsConfig{
		Prompts:       filepath.Join(dir, "prompts.yaml"),
		SystemDesign:  filepath.Join(dir, "design.md"),
		CurrentSetup:  filepath.Join(dir, "setup.md"),
		SourceWeights: filepath.Join(dir, "sources.yaml"),
		ReportsDir:    filepath.Join(dir, "reports"),
	}
	cfg = c
	t.Cleanup(func() { cfg = nil })
	return dir
}

func stubLLM(t *testing.T, client llm.Client) {
	t.Helper()
	orig := newClient
	newClient = func(ctx context.Context, c *config.Config, l *zap.Logger) (llm.Client, error) {
		return client, nil
	}
	t.Cleanup(func() { newClient = orig })
}

func outputOf(t *testing.T, run func(cmd *cobra.Command) error) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	err := run(cmd)
	return buf.String(), err
}

func TestRunScout_NoEmail(t *testing.T) {
	dir := setupWorkspace(t)
	stubLLM(t, &stubClient{searchText: "bevinding", report: "# Weekrapport\n"})
	noEmail = true
	defer func() { noEmail = false }()

	out, err := outputOf(t, func(cmd *cobra.Command) error { return runScout(cmd, nil) })
	require.NoError(t, err)
	assert.Contains(t, out, "Rapport opgeslagen:")

	entries, err := os.ReadDir(filepath.Join(dir, "reports"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "rapport-"))
}

func TestRunScout_NoResultsIsNotAnError(t *testing.T) {
	dir := setupWorkspace(t)
	stubLLM(t, &stubClient{})
	noEmail = true
	defer func() { noEmail = false }()

	out, err := outputOf(t, func(cmd *cobra.Command) error { return runScout(cmd, nil) })
	require.NoError(t, err)
	assert.Contains(t, out, "Geen resultaten gevonden")
	assert.NoDirExists(t, filepath.Join(dir, "reports"))
}

func TestRunScout_EmailConfigRequired(t *testing.T) {
	setupWorkspace(t)
	stubLLM(t, &stubClient{})

	_, err := outputOf(t, func(cmd *cobra.Command) error { return runScout(cmd, nil) })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--no-email")
}

func TestRunSearch(t *testing.T) {
	setupWorkspace(t)
	stubLLM(t, &stubClient{searchText: "gevonden"})

	out, err := outputOf(t, func(cmd *cobra.Command) error { return runSearch(cmd, []string{"p2"}) })
	require.NoError(t, err)
	assert.Contains(t, out, "--- Twee (p2) [found, 1 attempt(s)] ---")
	assert.Contains(t, out, "gevonden\n\nGEVERIFIEERDE BRONNEN:\n- [A](https://docs.example.com/a)")

	_, err = outputOf(t, func(cmd *cobra.Command) error { return runSearch(cmd, []string{"nope"}) })
	assert.Error(t, err)
}

func TestLedgerShow(t *testing.T) {
	setupWorkspace(t)

	out, err := outputOf(t, func(cmd *cobra.Command) error { return ledgerShow(cmd, nil) })
	require.NoError(t, err)
	assert.Contains(t, out, "Gewogen bronnen")
	assert.Less(t, strings.Index(out, "anthropic.com"), strings.Index(out, "reddit.com"))
	assert.Contains(t, out, "2x geïmplementeerd")
}

func TestLedgerRecord(t *testing.T) {
	setupWorkspace(t)
	implemented = true
	defer func() { implemented = false }()

	out, err := outputOf(t, func(cmd *cobra.Command) error {
		return ledgerRecord(cmd, []string{"https://www.anthropic.com/engineering/post"})
	})
	require.NoError(t, err)
	assert.Equal(t, "anthropic.com: weight 10, 3x geïmplementeerd\n", out)

	_, err = outputOf(t, func(cmd *cobra.Command) error {
		return ledgerRecord(cmd, []string{"https://simonwillison.net/2026/x"})
	})
	require.NoError(t, err)

	ledger, err := sources.Load(cfg.Paths.SourceWeights)
	require.NoError(t, err)
	rec, ok := ledger.Find("simonwillison.net")
	require.True(t, ok)
	assert.Equal(t, 6, rec.Weight)
	assert.Equal(t, 1, rec.ImplementedCount)
}

func TestLedgerRecord_CreatesMissingLedger(t *testing.T) {
	setupWorkspace(t)
	cfg.Paths.SourceWeights = filepath.Join(t.TempDir(), "new", "sources.yaml")

	out, err := outputOf(t, func(cmd *cobra.Command) error { return ledgerRecord(cmd, []string{"example.com"}) })
	require.NoError(t, err)
	assert.Equal(t, "example.com: weight 5, 0x geïmplementeerd\n", out)
	assert.FileExists(t, cfg.Paths.SourceWeights)
}

func TestReportShow(t *testing.T) {
	dir := setupWorkspace(t)
	reports := filepath.Join(dir, "reports")
	require.NoError(t, os.MkdirAll(reports, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(reports, "rapport-2026-03-02.md"), []byte("# Oud\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(reports, "rapport-2026-03-09.md"), []byte("# Nieuw\n"), 0644))

	rawReport = true
	defer func() { rawReport = false }()

	out, err := outputOf(t, func(cmd *cobra.Command) error { return reportShow(cmd, nil) })
	require.NoError(t, err)
	assert.Equal(t, "# Nieuw\n", out)

	out, err = outputOf(t, func(cmd *cobra.Command) error { return reportShow(cmd, []string{"2026-03-02"}) })
	require.NoError(t, err)
	assert.Equal(t, "# Oud\n", out)

	out, err = outputOf(t, func(cmd *cobra.Command) error { return reportList(cmd, nil) })
	require.NoError(t, err)
	assert.Equal(t, "2026-03-09\n2026-03-02\n", out)
}

func TestReportShow_Rendered(t *testing.T) {
	dir := setupWorkspace(t)
	reports := filepath.Join(dir, "reports")
	require.NoError(t, os.MkdirAll(reports, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(reports, "rapport-2026-03-09.md"), []byte("# Samenvatting\n\nTekst"), 0644))

	out, err := outputOf(t, func(cmd *cobra.Command) error { return reportShow(cmd, nil) })
	require.NoError(t, err)
	assert.Contains(t, out, "Samenvatting")
	assert.Contains(t, out, "Tekst")
}

func TestReportShow_NoReports(t *testing.T) {
	setupWorkspace(t)
	_, err := outputOf(t, func(cmd *cobra.Command) error { return reportShow(cmd, nil) })
	assert.Error(t, err)
}

func TestExecute_ClosesLoggerOnCommandError(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "scout.log")
	configFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(`llm:
  provider: anthropic
  api_key: test-key
paths:
  reports_dir: `+filepath.Join(dir, "reports")+`
logging:
  level: info
  file: `+logFile+`
`), 0644))

	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		logger = zap.NewNop()
		cfg = nil
	})
	rootCmd.SetArgs([]string{"--config", configFile, "report", "show"})

	// No reports yet, so the command fails after the logger was opened.
	require.Error(t, rootCmd.Execute())
	assert.Nil(t, closeLogger)
	assert.FileExists(t, logFile)
}
