package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/xbrl-cli/internal/export"
	"github.com/sells-group/xbrl-cli/internal/xbrl"
)

func TestEnvParse_Local(t *testing.T) {
	e := newEnv(testConfig(t))

	inst, err := e.parse(context.Background(), localFiling(t), "", zap.NewNop())
	require.NoError(t, err)
	require.Len(t, inst.Facts, 3)
	assert.Equal(t, "http://example.com/2024", inst.Taxonomy.Namespace)
	assert.Equal(t, 5000000.0, *inst.Facts[0].Value)
	assert.Equal(t, "Sample Inc", inst.Facts[2].Text)
	assert.Positive(t, e.comparer.Len())
}

func TestEnvParse_Remote(t *testing.T) {
	srv := filingServer(t)
	c := testConfig(t)
	e := newEnv(c)

	inst, err := e.parse(context.Background(), srv.URL+"/filing/report.xml", "", zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, inst.Facts, 3)
	assert.Equal(t, srv.URL+"/filing/report.xml", inst.URL)

	p, err := e.cache.Path(srv.URL + "/filing/ex-2024.xsd")
	require.NoError(t, err)
	assert.FileExists(t, p)
	assert.True(t, strings.HasPrefix(p, c.Cache.Dir))
}

func TestParseAll_KeepsOrder(t *testing.T) {
	path := localFiling(t)
	other := filepath.Join(filepath.Dir(path), "copy.xml")
	writeFile(t, other, strings.Replace(sampleInstance, "Sample Inc", "Copy Inc", 1))

	insts, err := parseAll(context.Background(), newEnv(testConfig(t)), []string{path, other, path}, "", 2, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, insts, 3)
	assert.Equal(t, path, insts[0].URL)
	assert.Equal(t, "Copy Inc", insts[1].Facts[2].Text)
	assert.Equal(t, path, insts[2].URL)
	assert.NotSame(t, insts[0].Taxonomy, insts[2].Taxonomy, "each parse loads its own taxonomy")
}

func TestParseAll_Error(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.xml")

	insts, err := parseAll(context.Background(), newEnv(testConfig(t)), []string{localFiling(t), missing}, "", 2, zap.NewNop())
	require.Error(t, err)
	assert.Nil(t, insts)
	assert.Contains(t, err.Error(), "missing.xml")
}

func TestParseAll_MalformedDocument(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "broken.xml"), brokenInstance)

	_, err := parseAll(context.Background(), newEnv(testConfig(t)), []string{path}, "", 1, zap.NewNop())
	require.Error(t, err)
	assert.ErrorIs(t, err, xbrl.ErrMalformedDocument)
}

func TestRender(t *testing.T) {
	inst, err := newEnv(testConfig(t)).parse(context.Background(), localFiling(t), "", zap.NewNop())
	require.NoError(t, err)
	insts := []*xbrl.Instance{inst, inst}

	var buf bytes.Buffer
	require.NoError(t, render(&buf, export.FormatYAML, insts))
	assert.Equal(t, 1, strings.Count(buf.String(), "---\n"))

	buf.Reset()
	require.NoError(t, render(&buf, export.FormatTable, insts[:1]))
	assert.Contains(t, buf.String(), "report.xml with 3 facts")
	assert.Contains(t, buf.String(), "5000000")

	buf.Reset()
	require.NoError(t, render(&buf, export.FormatJSON, insts[:1]))
	assert.Contains(t, buf.String(), `"concept": "Revenues"`)

	assert.Error(t, render(&buf, export.FormatXLSX, insts))
}
