package sqldb

import "strconv"

// Dialect captures the few places SQL engines disagree.
type Dialect struct {
	Name string

	// Placeholder renders the n-th (1-based) bind parameter.
	Placeholder func(n int) string

	// LockAccount takes a transaction scoped lock keyed by the account id
	// (one bind parameter). Empty means the engine serialises writers.
	LockAccount string
}

var SQLite = Dialect{
	Name:        "sqlite",
	Placeholder: func(int) string { return "?" },
}

var Postgres = Dialect{
	Name:        "postgres",
	Placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	LockAccount: "SELECT pg_advisory_xact_lock(hashtext($1))",
}
