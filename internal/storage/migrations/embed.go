package migrations

import "embed"

// PostgresFS embeds the PostgreSQL schema (policies, price decisions).
//
//go:embed postgres/*.sql
var PostgresFS embed.FS

// ClickhouseFS embeds the ClickHouse schema (experiment results).
//
//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS
