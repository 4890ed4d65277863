package llmjson

import (
	"regexp"
	"strconv"
)

var divisionValue = regexp.MustCompile(`:\s*(-?\d+(?:\.\d+)?)\s*/\s*(\d+(?:\.\d+)?)`)

// Normalize evaluates "a/b" fractions that models sometimes emit as JSON
// values (for instance `"hourly_wage": 761040/60`).
func Normalize(text string) string {
	return divisionValue.ReplaceAllStringFunc(text, func(match string) string {
		m := divisionValue.FindStringSubmatch(match)
		num, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return match
		}
		den, err := strconv.ParseFloat(m[2], 64)
		if err != nil || den == 0 {
			return match
		}
		return ": " + strconv.FormatFloat(num/den, 'f', -1, 64)
	})
}
