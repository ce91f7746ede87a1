// Package transform decodes inline XBRL display values into canonical
// XBRL values.
//
// The ixt registry is documented at
// https://www.xbrl.org/Specification/inlineXBRL-transformationRegistry/REC-2015-02-26/inlineXBRL-transformationRegistry-REC-2015-02-26.html
// and the SEC additions (ixt-sec) in the EDGAR Filer Manual, volume II.
package transform

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

var (
	// ErrUnknownFormat is returned for a transform keyword outside the registry.
	ErrUnknownFormat = eris.New("unknown transformation format")

	// ErrParse is returned when a value does not fit its transform.
	ErrParse = eris.New("value does not match format")
)

var (
	dateSeparators = regexp.MustCompile(`[,\-._/]`)
	multiSpace     = regexp.MustCompile(`\s{2,}`)
	commaDecimal   = regexp.MustCompile(`(\s|-|\.)`)
	dotDecimal     = regexp.MustCompile(`(\s|-|,)`)
)

// Normalize converts a displayed value into its canonical form according
// to an ixt transform keyword such as "numdotdecimal" or "datemonthdayen".
//
// Outputs:
//   - numbers: digits with "." as the decimal separator, no grouping
//   - full dates: YYYY-MM-DD
//   - month/day: --MM-DD
//   - year/month: YYYY-MM
//   - booleans: "true" or "false"
func Normalize(value, format string) (string, error) {
	value = clean(value)

	switch key := Keyword(format); key {
	case "booleanfalse", "fixedfalse":
		return "false", nil
	case "booleantrue", "fixedtrue":
		return "true", nil
	case "zerodash", "fixedzero":
		return "0", nil
	case "nocontent", "fixedempty":
		return "", nil
	case "numcommadecimal":
		return strings.ReplaceAll(commaDecimal.ReplaceAllString(value, ""), ",", "."), nil
	case "numdotdecimal":
		return dotDecimal.ReplaceAllString(value, ""), nil
	default:
		if strings.HasPrefix(key, "date") {
			return normalizeDate(value, key)
		}
		return "", eris.Wrapf(ErrUnknownFormat, "transform: %s", format)
	}
}

// Keyword reduces a format name to the registry keyword used for dispatch:
// lower case, without namespace prefix and without the dashes of ixt v3+.
func Keyword(format string) string {
	if i := strings.LastIndex(format, ":"); i >= 0 {
		format = format[i+1:]
	}
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(format)), "-", "")
}

func clean(value string) string {
	return strings.TrimSpace(strings.ReplaceAll(strings.ToLower(value), "\u00a0", " "))
}

func dateSegments(value string) []string {
	value = dateSeparators.ReplaceAllString(value, " ")
	value = multiSpace.ReplaceAllString(value, " ")
	return strings.Fields(value)
}

func normalizeDate(value, key string) (string, error) {
	seg := dateSegments(value)

	need := 3
	switch key {
	case "datedaymonth", "datedaymonthen", "datemonthday", "datemonthdayen",
		"datemonthyear", "datemonthyearen", "dateyearmonthen":
		need = 2
	}
	if len(seg) < need {
		return "", eris.Wrapf(ErrParse, "transform: %s: %q has %d segments, want %d", key, value, len(seg), need)
	}

	switch key {
	case "datedaymonth":
		return "--" + zfill(seg[1]) + "-" + zfill(seg[0]), nil
	case "datedaymonthen":
		return monthDay(seg[1], seg[0], true)
	case "datedaymonthyear":
		return zfill(seg[2]) + "-" + zfill(seg[1]) + "-" + zfill(seg[0]), nil
	case "datedaymonthyearen":
		return fullDate(seg[2], seg[1], seg[0], true)
	case "datemonthday":
		return "--" + zfill(seg[0]) + "-" + zfill(seg[1]), nil
	case "datemonthdayen":
		return monthDay(seg[0], seg[1], true)
	case "datemonthdayyear":
		return fullDate(seg[2], seg[0], seg[1], false)
	case "datemonthdayyearen":
		return fullDate(seg[2], seg[0], seg[1], true)
	case "dateyearmonthday":
		return fullDate(seg[0], seg[1], seg[2], false)
	case "datemonthyear":
		return seg[1] + "-" + zfill(seg[0]), nil
	case "datemonthyearen":
		return yearMonth(seg[1], seg[0])
	case "dateyearmonthen":
		return yearMonth(seg[0], seg[1])
	}
	return "", eris.Wrapf(ErrUnknownFormat, "transform: %s", key)
}

// zfill left-pads s with zeros to width 2.
func zfill(s string) string {
	if len(s) >= 2 {
		return s
	}
	return strings.Repeat("0", 2-len(s)) + s
}

var months = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// monthNumber maps an English month name to 1..12. A three letter token is
// read as an abbreviation, anything longer as the full name.
func monthNumber(tok string) (int, error) {
	for i, m := range months {
		if len(tok) == 3 && m[:3] == tok {
			return i + 1, nil
		}
		if len(tok) != 3 && m == tok {
			return i + 1, nil
		}
	}
	return 0, eris.Wrapf(ErrParse, "transform: unknown month %q", tok)
}

func monthOf(tok string, english bool) (int, error) {
	if english {
		return monthNumber(tok)
	}
	m, err := strconv.Atoi(tok)
	if err != nil || m < 1 || m > 12 {
		return 0, eris.Wrapf(ErrParse, "transform: invalid month %q", tok)
	}
	return m, nil
}

func dayOf(tok string) (int, error) {
	d, err := strconv.Atoi(tok)
	if err != nil || d < 1 || d > 31 {
		return 0, eris.Wrapf(ErrParse, "transform: invalid day %q", tok)
	}
	return d, nil
}

func yearOf(tok string) (int, error) {
	y, err := strconv.Atoi(tok)
	if err != nil || y < 0 {
		return 0, eris.Wrapf(ErrParse, "transform: invalid year %q", tok)
	}
	if len(tok) <= 2 {
		y += 2000
	}
	return y, nil
}

func monthDay(monthTok, dayTok string, english bool) (string, error) {
	m, err := monthOf(monthTok, english)
	if err != nil {
		return "", err
	}
	d, err := dayOf(dayTok)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("--%02d-%02d", m, d), nil
}

func yearMonth(yearTok, monthTok string) (string, error) {
	y, err := yearOf(yearTok)
	if err != nil {
		return "", err
	}
	m, err := monthNumber(monthTok)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d-%02d", y, m), nil
}

func fullDate(yearTok, monthTok, dayTok string, english bool) (string, error) {
	y, err := yearOf(yearTok)
	if err != nil {
		return "", err
	}
	m, err := monthOf(monthTok, english)
	if err != nil {
		return "", err
	}
	d, err := dayOf(dayTok)
	if err != nil {
		return "", err
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d {
		return "", eris.Wrapf(ErrParse, "transform: %04d-%02d-%02d is not a calendar date", y, m, d)
	}
	return t.Format("2006-01-02"), nil
}
