package xbrl

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/xbrl-cli/internal/xbrl/transform"
)

// Error kinds. Errors returned by the parser wrap one of these; test with
// errors.Is. Any of them aborts the parse.
var (
	ErrTaxonomyNotFound      = eris.New("taxonomy not found")
	ErrConceptNotFound       = eris.New("concept not found")
	ErrUnitNotFound          = eris.New("unit not found")
	ErrContextNotFound       = eris.New("context not found")
	ErrResourceBlockNotFound = eris.New("inline xbrl resources not found")
	ErrMalformedDocument     = eris.New("malformed document")
	ErrValue                 = eris.New("invalid fact value")

	ErrParse  = transform.ErrParse
	ErrFormat = transform.ErrUnknownFormat
)
