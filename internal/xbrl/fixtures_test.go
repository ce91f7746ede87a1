package xbrl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/xbrl-cli/internal/xbrl/taxonomy"
)

const (
	nsExt    = "http://example.com/20231231"
	nsUSGAAP = "http://fasb.org/us-gaap/2023"
	nsDEI    = "http://xbrl.sec.gov/dei/2023"

	usGAAPSchemaURL = "https://xbrl.fasb.org/us-gaap/2023/elts/us-gaap-2023.xsd"
	deiSchemaURL    = "https://xbrl.sec.gov/dei/2023/dei-2023.xsd"
	filingBase      = "https://www.sec.gov/Archives/edgar/data/1/000000000123000001/"
)

const extXSD = `<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
           xmlns:xbrli="http://www.xbrl.org/2003/instance"
           targetNamespace="http://example.com/20231231">
  <xs:import namespace="http://fasb.org/us-gaap/2023" schemaLocation="https://xbrl.fasb.org/us-gaap/2023/elts/us-gaap-2023.xsd"/>
  <xs:element id="ex_WidgetsAxis" name="WidgetsAxis" type="xbrli:stringItemType" abstract="true" xbrli:periodType="duration"/>
  <xs:element id="ex_BlueMember" name="BlueMember" type="xbrli:stringItemType" abstract="true" xbrli:periodType="duration"/>
  <xs:element id="ex_CustomText" name="CustomText" type="xbrli:stringItemType" xbrli:periodType="duration"/>
  <xs:element id="ex_UnitsSold" name="UnitsSold" type="xbrli:integerItemType" xbrli:periodType="duration"/>
</xs:schema>`

const usGAAPXSD = `<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
           xmlns:xbrli="http://www.xbrl.org/2003/instance"
           targetNamespace="http://fasb.org/us-gaap/2023">
  <xs:element id="us-gaap_Assets" name="Assets" type="xbrli:monetaryItemType" xbrli:periodType="instant" xbrli:balance="debit"/>
  <xs:element id="us-gaap_Liabilities" name="Liabilities" type="xbrli:monetaryItemType" xbrli:periodType="instant" xbrli:balance="credit"/>
  <xs:element id="us-gaap_Revenues" name="Revenues" type="xbrli:monetaryItemType" xbrli:periodType="duration" xbrli:balance="credit"/>
  <xs:element id="us-gaap_NetIncomeLoss" name="NetIncomeLoss" type="xbrli:monetaryItemType" xbrli:periodType="duration" xbrli:balance="credit"/>
  <xs:element id="us-gaap_EarningsPerShareBasic" name="EarningsPerShareBasic" type="xbrli:perShareItemType" xbrli:periodType="duration"/>
</xs:schema>`

const deiXSD = `<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
           xmlns:xbrli="http://www.xbrl.org/2003/instance"
           targetNamespace="http://xbrl.sec.gov/dei/2023">
  <xs:element id="dei_EntityRegistrantName" name="EntityRegistrantName" type="xbrli:stringItemType" xbrli:periodType="duration"/>
  <xs:element id="dei_DocumentType" name="DocumentType" type="xbrli:stringItemType" xbrli:periodType="duration"/>
</xs:schema>`

const instanceNamespaces = `xmlns:xbrli="http://www.xbrl.org/2003/instance"
  xmlns:link="http://www.xbrl.org/2003/linkbase"
  xmlns:xlink="http://www.w3.org/1999/xlink"
  xmlns:xbrldi="http://xbrl.org/2006/xbrldi"
  xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
  xmlns:iso4217="http://www.xbrl.org/2003/iso4217"
  xmlns:us-gaap="http://fasb.org/us-gaap/2023"
  xmlns:ex="http://example.com/20231231"`

const contextsXML = `
  <xbrli:context id="FY2023">
    <xbrli:entity><xbrli:identifier scheme="http://www.sec.gov/CIK"> 0000000001 </xbrli:identifier></xbrli:entity>
    <xbrli:period><xbrli:startDate>2022-10-01</xbrli:startDate><xbrli:endDate> 2023-09-30 </xbrli:endDate></xbrli:period>
  </xbrli:context>
  <xbrli:context id="I2023">
    <xbrli:entity><xbrli:identifier scheme="http://www.sec.gov/CIK">0000000001</xbrli:identifier></xbrli:entity>
    <xbrli:period><xbrli:instant>2023-09-30</xbrli:instant></xbrli:period>
  </xbrli:context>
  <xbrli:context id="F">
    <xbrli:entity><xbrli:identifier scheme="http://www.sec.gov/CIK">0000000001</xbrli:identifier></xbrli:entity>
    <xbrli:period><xbrli:forever/></xbrli:period>
  </xbrli:context>
  <xbrli:context id="I2023_Blue">
    <xbrli:entity>
      <xbrli:identifier scheme="http://www.sec.gov/CIK">0000000001</xbrli:identifier>
      <xbrli:segment><xbrldi:explicitMember dimension="ex:WidgetsAxis">ex:BlueMember</xbrldi:explicitMember></xbrli:segment>
    </xbrli:entity>
    <xbrli:period><xbrli:instant>2023-09-30</xbrli:instant></xbrli:period>
  </xbrli:context>
  <xbrli:unit id="usd"><xbrli:measure>iso4217:USD</xbrli:measure></xbrli:unit>
  <xbrli:unit id="pure"><xbrli:measure>xbrli:pure</xbrli:measure></xbrli:unit>
  <xbrli:unit id="usdPerShare">
    <xbrli:divide>
      <xbrli:unitNumerator><xbrli:measure>iso4217:USD</xbrli:measure></xbrli:unitNumerator>
      <xbrli:unitDenominator><xbrli:measure>xbrli:shares</xbrli:measure></xbrli:unitDenominator>
    </xbrli:divide>
  </xbrli:unit>`

const instanceFacts = `
  <dei:EntityRegistrantName xmlns:dei="http://xbrl.sec.gov/dei/2023" contextRef="FY2023"> Example Corp </dei:EntityRegistrantName>
  <us-gaap:Assets contextRef="I2023" unitRef="usd" decimals="-6">352583000000</us-gaap:Assets>
  <us-gaap:Assets contextRef="I2023_Blue" unitRef="usd" decimals="INF">1000</us-gaap:Assets>
  <us-gaap:EarningsPerShareBasic contextRef="FY2023" unitRef="usdPerShare" decimals="2">6.16</us-gaap:EarningsPerShareBasic>
  <us-gaap:Revenues contextRef="FY2023" unitRef="usd">383285000000</us-gaap:Revenues>
  <us-gaap:NetIncomeLoss contextRef="FY2023" unitRef="usd" decimals="-6" xsi:nil="true"/>
  <ex:CustomText contextRef="F">hello</ex:CustomText>
  <ex:UnitsSold contextRef="FY2023" unitRef="pure" decimals="0">42</ex:UnitsSold>
  <link:footnoteLink xlink:type="extended" xlink:role="http://www.xbrl.org/2003/role/link"/>`

// xbrlInstance renders a plain XBRL instance with the shared contexts and
// units around body.
func xbrlInstance(schemaRef, body string) string {
	ref := ""
	if schemaRef != "" {
		ref = fmt.Sprintf(`<link:schemaRef xlink:type="simple" xlink:href="%s"/>`, schemaRef)
	}
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<xbrli:xbrl %s>
  %s
  %s
  %s
</xbrli:xbrl>`, instanceNamespaces, ref, contextsXML, body)
}

const inlineFacts = `
<p>Registrant: <ix:nonNumeric name="dei:EntityRegistrantName" contextRef="FY2023">Example <b>Corp</b></ix:nonNumeric></p>
<p>Assets <ix:nonFraction name="us-gaap:Assets" contextRef="I2023" unitRef="usd" decimals="-6" scale="6" format="ixt:num-dot-decimal">352,583</ix:nonFraction></p>
<p>Loss <ix:nonFraction name="us-gaap:NetIncomeLoss" contextRef="FY2023" unitRef="usd" scale="3" sign="-" format="ixt:numdotdecimal">1,234.5</ix:nonFraction></p>
<p>EPS <ix:nonFraction name="us-gaap:EarningsPerShareBasic" contextRef="FY2023" unitRef="usdPerShare" decimals="2">6.16</ix:nonFraction></p>
<p>Revenue <ix:nonFraction name="us-gaap:Revenues" contextRef="FY2023" unitRef="usd" xsi:nil="true"></ix:nonFraction></p>
<p>Blue <ix:nonFraction name="us-gaap:Assets" contextRef="I2023_Blue" unitRef="usd" format="ixt-sec:numwordsen">None</ix:nonFraction></p>
<p>Year end <ix:nonNumeric name="ex:CustomText" contextRef="F" format="ixt:date-month-day-en">December 31</ix:nonNumeric></p>`

// inlineDocument renders an XHTML inline XBRL document. resources and body
// are placed in the hidden header and the visible body.
func inlineDocument(schemaRef, resources, body string) string {
	ref := ""
	if schemaRef != "" {
		ref = fmt.Sprintf(`<ix:references><link:schemaRef xlink:type="simple" xlink:href="%s"/></ix:references>`, schemaRef)
	}
	res := ""
	if resources != "" {
		res = "<ix:resources>" + resources + "</ix:resources>"
	}
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
<html xmlns="http://www.w3.org/1999/xhtml"
  xmlns:ix="http://www.xbrl.org/2013/inlineXBRL"
  xmlns:ixt="http://www.xbrl.org/inlineXBRL/transformation/2020-02-12"
  xmlns:ixt-sec="http://www.sec.gov/inlineXBRL/transformation/2015-08-31"
  %s>
<head><title>10-K</title></head>
<body>
<div style="display:none"><ix:header>
  <ix:hidden><ix:nonNumeric name="dei:DocumentType" contextRef="FY2023" xmlns:dei="http://xbrl.sec.gov/dei/2023">10-K</ix:nonNumeric></ix:hidden>
  %s
  %s
</ix:header></div>
%s
</body>
</html>`, instanceNamespaces, ref, res, body)
}

// fakeCache serves local files for known addresses.
type fakeCache struct {
	dir   string
	mu    sync.Mutex
	files map[string]string
	hits  map[string]int
}

func (c *fakeCache) Fetch(_ context.Context, u string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hits[u]++
	p, ok := c.files[u]
	if !ok {
		return "", eris.Errorf("not cached: %s", u)
	}
	return p, nil
}

func (c *fakeCache) Dir() string { return c.dir }

func (c *fakeCache) add(u, p string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files[u] = p
}

// countingLoader records common taxonomy loads.
type countingLoader struct {
	*taxonomy.Loader
	mu     sync.Mutex
	common map[string]int
}

func (l *countingLoader) LoadCommon(ctx context.Context, ns string) (*taxonomy.Taxonomy, error) {
	l.mu.Lock()
	l.common[ns]++
	l.mu.Unlock()
	return l.Loader.LoadCommon(ctx, ns)
}

type fixture struct {
	dir    string
	cache  *fakeCache
	parser *Parser
}

func write(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// newFixture lays out the extension schema next to the instance files and
// serves the common taxonomies and the filing folder from the fake cache.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	ext := write(t, filepath.Join(dir, "ex-20231231.xsd"), extXSD)

	c := &fakeCache{dir: dir, files: map[string]string{}, hits: map[string]int{}}
	c.add(usGAAPSchemaURL, write(t, filepath.Join(dir, "us-gaap-2023.xsd"), usGAAPXSD))
	c.add(deiSchemaURL, write(t, filepath.Join(dir, "dei-2023.xsd"), deiXSD))
	c.add(filingBase+"ex-20231231.xsd", ext)

	return &fixture{
		dir:    dir,
		cache:  c,
		parser: NewParser(c, WithLogger(zap.NewNop())),
	}
}

func (f *fixture) file(t *testing.T, name, content string) string {
	t.Helper()
	return write(t, filepath.Join(f.dir, name), content)
}
