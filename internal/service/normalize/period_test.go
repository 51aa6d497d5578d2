package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	valid := []struct {
		code string
		year int
	}{
		{"2024", 2024},
		{"2024JJ00", 2024},
		{"2010JJ00", 2010},
		{"2023KW01", 2023},
		{"2023KW04", 2023},
		{"2022MM01", 2022},
		{"2022MM12", 2022},
	}
	for _, tc := range valid {
		t.Run(tc.code, func(t *testing.T) {
			year, err := ParsePeriod(tc.code)
			require.NoError(t, err)
			assert.Equal(t, tc.year, year)
		})
	}

	invalid := []string{
		"",
		"JJ00",
		"20244",
		"2024JJ01",
		"2024KW05",
		"2024KW00",
		"2024MM13",
		"2024MM00",
		"24JJ00",
		"abcdJJ00",
		"2024 JJ00",
	}
	for _, code := range invalid {
		t.Run("invalid_"+code, func(t *testing.T) {
			_, err := ParsePeriod(code)
			assert.Error(t, err)
		})
	}
}
