package transform

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// NormalizeSEC applies an ixt-sec transform. ok is false when the keyword
// is not implemented; the value is then returned untouched.
func NormalizeSEC(value, format string) (string, bool, error) {
	v := clean(value)
	v = dateSeparators.ReplaceAllString(v, " ")
	v = strings.TrimSpace(multiSpace.ReplaceAllString(v, " "))

	switch Keyword(format) {
	case "numwordsen":
		if v == "no" || v == "none" {
			return "0", true, nil
		}
		n, err := wordsToNumber(strings.ReplaceAll(v, " and ", " "))
		if err != nil {
			return "", true, err
		}
		return strconv.FormatInt(n, 10), true, nil
	case "boolballotbox":
		if v == "☐" {
			return "false", true, nil
		}
		return "true", true, nil
	case "durwordsen":
		return durationWords(v), true, nil
	}
	return value, false, nil
}

var smallNumbers = map[string]int64{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

var magnitudes = map[string]int64{
	"thousand": 1e3,
	"million":  1e6,
	"billion":  1e9,
	"trillion": 1e12,
}

// wordsToNumber reads English number words ("nineteen hundred forty four").
func wordsToNumber(s string) (int64, error) {
	words := strings.Fields(s)
	if len(words) == 0 {
		return 0, eris.Wrap(ErrParse, "transform: empty number words")
	}
	var total, current int64
	for _, w := range words {
		if n, ok := smallNumbers[w]; ok {
			current += n
			continue
		}
		if w == "hundred" && current != 0 {
			current *= 100
			continue
		}
		if m, ok := magnitudes[w]; ok {
			total += current * m
			current = 0
			continue
		}
		return 0, eris.Wrapf(ErrParse, "transform: unknown number word %q", w)
	}
	return total + current, nil
}

// durationWords turns "five years two months" into P5Y2M0D.
func durationWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if n, err := wordsToNumber(w); err == nil {
			words[i] = strconv.FormatInt(n, 10)
		}
	}

	var years, months, days int
	for i := 0; i < len(words)-1; i++ {
		n, err := strconv.Atoi(words[i])
		if err != nil {
			continue
		}
		unit := words[i+1]
		switch {
		case strings.Contains(unit, "year"):
			years = n
		case strings.Contains(unit, "month"):
			months = n
		case strings.Contains(unit, "day"):
			days = n
		}
	}
	return fmt.Sprintf("P%dY%dM%dD", years, months, days)
}
