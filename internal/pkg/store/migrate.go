package store

import (
	"context"
	"fmt"
)

var ddl = []string{
	`create extension if not exists postgis`,
	`create table if not exists dim_regions (
		id bigserial primary key,
		region_code varchar(10) not null unique,
		region_name varchar(200) not null,
		geometry geometry(MultiPolygon, 4326)
	)`,
	`create table if not exists dim_crime_types (
		id bigserial primary key,
		crime_code varchar(50) not null unique,
		crime_name varchar(300) not null
	)`,
	`create table if not exists dim_periods (
		id bigserial primary key,
		period_code varchar(20) not null unique,
		year integer not null
	)`,
	`create table if not exists fact_crimes (
		id bigserial primary key,
		region_id bigint not null references dim_regions(id),
		crime_type_id bigint not null references dim_crime_types(id),
		period_id bigint not null references dim_periods(id),
		registered_crimes double precision,
		registered_crimes_per_1000 double precision,
		constraint uq_crime_fact unique (region_id, crime_type_id, period_id)
	)`,
	`create index if not exists idx_fact_crimes_period on fact_crimes(period_id)`,
	`create index if not exists idx_fact_crimes_crime_type on fact_crimes(crime_type_id)`,
}

func (s *store) Migrate(ctx context.Context) error {
	for _, stmt := range ddl {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
