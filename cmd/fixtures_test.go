package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/xbrl-cli/internal/config"
)

const sampleXSD = `<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
           xmlns:xbrli="http://www.xbrl.org/2003/instance"
           targetNamespace="http://example.com/2024">
  <xs:element id="ex_Assets" name="Assets" type="xbrli:monetaryItemType" xbrli:periodType="instant"/>
  <xs:element id="ex_Revenues" name="Revenues" type="xbrli:monetaryItemType" xbrli:periodType="duration"/>
  <xs:element id="ex_EntityRegistrantName" name="EntityRegistrantName" type="xbrli:stringItemType" xbrli:periodType="duration"/>
</xs:schema>`

const sampleInstance = `<?xml version="1.0" encoding="UTF-8"?>
<xbrli:xbrl xmlns:xbrli="http://www.xbrl.org/2003/instance"
            xmlns:link="http://www.xbrl.org/2003/linkbase"
            xmlns:xlink="http://www.w3.org/1999/xlink"
            xmlns:iso4217="http://www.xbrl.org/2003/iso4217"
            xmlns:ex="http://example.com/2024">
  <link:schemaRef xlink:type="simple" xlink:href="ex-2024.xsd"/>
  <xbrli:context id="I2024">
    <xbrli:entity><xbrli:identifier scheme="http://www.sec.gov/CIK">0000000002</xbrli:identifier></xbrli:entity>
    <xbrli:period><xbrli:instant>2024-12-31</xbrli:instant></xbrli:period>
  </xbrli:context>
  <xbrli:context id="FY2024">
    <xbrli:entity><xbrli:identifier scheme="http://www.sec.gov/CIK">0000000002</xbrli:identifier></xbrli:entity>
    <xbrli:period><xbrli:startDate>2024-01-01</xbrli:startDate><xbrli:endDate>2024-12-31</xbrli:endDate></xbrli:period>
  </xbrli:context>
  <xbrli:unit id="usd"><xbrli:measure>iso4217:USD</xbrli:measure></xbrli:unit>
  <ex:Assets contextRef="I2024" unitRef="usd" decimals="-3">5000000</ex:Assets>
  <ex:Revenues contextRef="FY2024" unitRef="usd" decimals="-3">1200000</ex:Revenues>
  <ex:EntityRegistrantName contextRef="FY2024">Sample Inc</ex:EntityRegistrantName>
</xbrli:xbrl>`

// brokenInstance has no schemaRef.
const brokenInstance = `<?xml version="1.0" encoding="UTF-8"?>
<xbrli:xbrl xmlns:xbrli="http://www.xbrl.org/2003/instance"/>`

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// localFiling writes the sample filing to a temp dir and returns the
// instance path.
func localFiling(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "ex-2024.xsd"), sampleXSD)
	return writeFile(t, filepath.Join(dir, "report.xml"), sampleInstance)
}

// filingServer serves the sample filing under /filing/ and a broken one
// under /broken/.
func filingServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/filing/report.xml", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleInstance))
	})
	mux.HandleFunc("/filing/ex-2024.xsd", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleXSD))
	})
	mux.HandleFunc("/broken/report.xml", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(brokenInstance))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c := &config.Config{}
	c.Cache.Dir = t.TempDir()
	c.HTTP.TimeoutSecs = 5
	c.HTTP.MaxRetries = 1
	c.Parse.Concurrency = 2
	c.Output.Format = "table"
	c.URI.CacheSize = 64
	c.Server.Port = 8080
	return c
}

func writeFileAll(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	return writeFile(t, path, content)
}
