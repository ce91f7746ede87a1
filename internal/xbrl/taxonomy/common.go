package taxonomy

import (
	"fmt"
	"regexp"
)

type commonSchema struct {
	pattern *regexp.Regexp
	url     func(m []string) string
}

// commonSchemas maps the namespaces of widely used taxonomies to the
// location of their entry schema.
var commonSchemas = []commonSchema{
	{
		pattern: regexp.MustCompile(`^https?://fasb\.org/(us-gaap|srt)/(\d{4})$`),
		url: func(m []string) string {
			return fmt.Sprintf("https://xbrl.fasb.org/%s/%s/elts/%s-%s.xsd", m[1], m[2], m[1], m[2])
		},
	},
	{
		pattern: regexp.MustCompile(`^https?://xbrl\.sec\.gov/(dei|country|currency|exch|naics|sic|stpr|ecd|cyd|snj)/(\d{4})$`),
		url: func(m []string) string {
			return fmt.Sprintf("https://xbrl.sec.gov/%s/%s/%s-%s.xsd", m[1], m[2], m[1], m[2])
		},
	},
	{
		pattern: regexp.MustCompile(`^https?://xbrl\.ifrs\.org/taxonomy/(\d{4}-\d{2}-\d{2})/ifrs-full$`),
		url: func(m []string) string {
			return fmt.Sprintf("https://xbrl.ifrs.org/taxonomy/%s/full_ifrs/full_ifrs-cor_%s.xsd", m[1], m[1])
		},
	},
	{
		pattern: regexp.MustCompile(`^https?://www\.esma\.europa\.eu/taxonomy/(\d{4}-\d{2}-\d{2})/esef_cor$`),
		url: func(m []string) string {
			return fmt.Sprintf("https://www.esma.europa.eu/taxonomy/%s/esef_cor.xsd", m[1])
		},
	},
}

// CommonSchemaURL returns the schema location of a well-known taxonomy
// namespace such as http://fasb.org/us-gaap/2023.
func CommonSchemaURL(namespace string) (string, bool) {
	for _, s := range commonSchemas {
		if m := s.pattern.FindStringSubmatch(namespace); m != nil {
			return s.url(m), true
		}
	}
	return "", false
}
