package database

import "database/sql"

// Querier is the subset of database/sql operations shared by *sql.DB and
// *sql.Tx. Repository helpers that must run either standalone or inside a
// caller-owned transaction accept this instead of a concrete handle.
type Querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)
