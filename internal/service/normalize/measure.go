package normalize

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CBS publishes "." for not-applicable cells; "-" shows up in older vintages.
var sentinels = map[string]struct{}{
	"": {},
	".": {},
	"-": {},
}

// parseMeasure coerces a raw measure value to a float. Sentinels and anything
// non-numeric normalize to nil, never to zero.
func parseMeasure(v any) *float64 {
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		return &t
	case int64:
		f := float64(t)
		return &f
	case string:
		s := strings.TrimSpace(t)
		if _, ok := sentinels[s]; ok {
			return nil
		}

		d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
		if err != nil {
			return nil
		}

		f := d.InexactFloat64()
		return &f
	default:
		return nil
	}
}
