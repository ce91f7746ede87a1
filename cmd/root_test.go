package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args in a temp working dir.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("XBRL_LOG_LEVEL", "error")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"parse", "summary", "transform", "cache", "serve"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "xbrl-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestParseCommand_Flags(t *testing.T) {
	for _, name := range []string{"url", "format", "out"} {
		require.NotNil(t, parseCmd.Flags().Lookup(name), "parse command should have --%s flag", name)
	}
	assert.Equal(t, "", parseCmd.Flags().Lookup("format").DefValue)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestCacheCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range cacheCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["path"])
	assert.True(t, names["purge"])
}

func TestTransformCommand(t *testing.T) {
	out, err := execute(t, "transform", "ixt:num-comma-decimal", "1.234,5")
	require.NoError(t, err)
	assert.Equal(t, "1234.5\n", out)

	_, err = execute(t, "transform", "ixt:nosuchformat", "1")
	assert.Error(t, err)
}

func TestApplyTransform_UnsupportedSECKeepsValue(t *testing.T) {
	out, err := applyTransform("ixt-sec:exchnameen", "New York Stock Exchange")
	require.NoError(t, err)
	assert.Equal(t, "New York Stock Exchange", out)
}

func TestCachePathCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XBRL_CACHE_DIR", dir)

	out, err := execute(t, "cache", "path", "https://www.sec.gov/Archives/edgar/data/1/report.htm")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "www.sec.gov", "Archives", "edgar", "data", "1", "report.htm"), strings.TrimSpace(out))

	_, err = execute(t, "cache", "path", "ftp://example.com/x")
	assert.Error(t, err)
}

func TestCachePurgeCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XBRL_CACHE_DIR", dir)
	writeFileAll(t, filepath.Join(dir, "example.com", "a.xsd"), "<xs:schema/>")

	out, err := execute(t, "cache", "purge", "https://example.com/a.xsd", "https://example.com/b.xsd")
	require.NoError(t, err)
	assert.Contains(t, out, "purged\thttps://example.com/a.xsd")
	assert.Contains(t, out, "not cached\thttps://example.com/b.xsd")
	assert.NoFileExists(t, filepath.Join(dir, "example.com", "a.xsd"))
}

func TestParseCommand_Local(t *testing.T) {
	path := localFiling(t)
	t.Setenv("XBRL_CACHE_DIR", t.TempDir())
	t.Cleanup(func() { parseFormat, parseOut, parseSourceURL = "", "", "" })

	out, err := execute(t, "parse", "--format", "json", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"taxonomy": "http://example.com/2024"`)
	assert.Contains(t, out, `"text": "Sample Inc"`)
}

func TestParseCommand_XLSX(t *testing.T) {
	path := localFiling(t)
	t.Setenv("XBRL_CACHE_DIR", t.TempDir())
	t.Cleanup(func() { parseFormat, parseOut, parseSourceURL = "", "", "" })

	_, err := execute(t, "parse", "--format", "xlsx", path)
	assert.Error(t, err, "xlsx needs --out")

	dest := filepath.Join(t.TempDir(), "report.xlsx")
	_, err = execute(t, "parse", "--format", "xlsx", "--out", dest, path)
	require.NoError(t, err)
	assert.FileExists(t, dest)
}

func TestSummaryCommand(t *testing.T) {
	path := localFiling(t)
	t.Setenv("XBRL_CACHE_DIR", t.TempDir())

	out, err := execute(t, "summary", path)
	require.NoError(t, err)
	assert.Contains(t, out, "CONCEPT")
	assert.Contains(t, out, "Sample Inc")
	assert.Contains(t, out, "2024-01-01/2024-12-31")
	assert.Contains(t, out, "5000000")
}
