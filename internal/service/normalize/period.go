package normalize

import (
	"fmt"
	"regexp"
	"strconv"
)

// CBS period codes: bare year (2024), full year (2024JJ00), quarter
// (2024KW01..04) or month (2024MM01..12).
var periodRe = regexp.MustCompile(`^(\d{4})(JJ00|KW0[1-4]|MM(?:0[1-9]|1[0-2]))?$`)

// ParsePeriod derives the year from a period code. Codes outside the known
// encoding are rejected, never guessed.
func ParsePeriod(code string) (int, error) {
	m := periodRe.FindStringSubmatch(code)
	if m == nil {
		return 0, fmt.Errorf("malformed period code %q", code)
	}

	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("malformed period code %q: %w", code, err)
	}

	return year, nil
}
