package transform

import (
	"math"
	"strings"
)

const secTransformNS = "www.sec.gov/inlinexbrl/transformation"

// IsSEC reports whether a qualified format name ("ixt-sec:numwordsen")
// belongs to the SEC transformation registry. nsMap resolves the prefix.
func IsSEC(format string, nsMap map[string]string) bool {
	prefix, _, ok := strings.Cut(format, ":")
	if !ok {
		return false
	}
	if prefix == "ixt-sec" {
		return true
	}
	return strings.Contains(strings.ToLower(nsMap[prefix]), secTransformNS)
}

// Apply normalizes value with the qualified format. SEC formats go through
// NormalizeSEC, everything else through Normalize. applied is false when an
// SEC keyword is not implemented and the value was left as is.
func Apply(value, format string, nsMap map[string]string) (out string, applied bool, err error) {
	if IsSEC(format, nsMap) {
		return NormalizeSEC(value, format)
	}
	out, err = Normalize(value, format)
	return out, err == nil, err
}

// Scale multiplies value by 10^scale. Results above one million in
// magnitude are rounded to the nearest integer to drop binary
// representation noise, and the sign is applied last.
func Scale(value float64, scale int, sign string) float64 {
	v := value * math.Pow(10, float64(scale))
	if math.Abs(v) > 1e6 {
		v = math.RoundToEven(v)
	}
	if sign == "-" {
		v = -v
	}
	return v
}
