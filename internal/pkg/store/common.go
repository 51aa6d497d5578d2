package store

import (
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/mvisser/crimemap/internal/pkg/constants"
)

const (
	tableDimRegions    = "dim_regions"
	tableDimCrimeTypes = "dim_crime_types"
	tableDimPeriods    = "dim_periods"
	tableFactCrimes    = "fact_crimes"
)

var mapping = map[error]error{pgx.ErrNoRows: constants.ErrDBNotFound}

func wrapErr(err error) error {
	for k, v := range mapping {
		if errors.Is(err, k) {
			return v
		}
	}
	return err
}

// builder returns a squirrel builder with Postgres placeholders.
func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// chunk splits rows so multi-value inserts stay well under the Postgres
// prepared-statement parameter limit.
func chunk[T any](rows []T, size int) [][]T {
	var out [][]T
	for size < len(rows) {
		rows, out = rows[size:], append(out, rows[:size])
	}
	return append(out, rows)
}
