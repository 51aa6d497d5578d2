package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMeasure(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want *float64
	}{
		{"json number", float64(42), fptr(42)},
		{"int64", int64(7), fptr(7)},
		{"zero stays zero", float64(0), fptr(0)},
		{"negative passes through", float64(-3), fptr(-3)},
		{"numeric string", "12.5", fptr(12.5)},
		{"comma decimal string", "12,5", fptr(12.5)},
		{"padded string", "  8 ", fptr(8)},
		{"null", nil, nil},
		{"not applicable dot", ".", nil},
		{"dash", "-", nil},
		{"empty string", "", nil},
		{"garbage string", "n/a", nil},
		{"bool", true, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := parseMeasure(tc.in)
			if tc.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tc.want, *got, 1e-9)
		})
	}
}

func fptr(f float64) *float64 {
	return &f
}
