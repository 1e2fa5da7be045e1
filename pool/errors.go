package pool

import "errors"

var (
	// ErrInvalidMint is returned when a quote names a mint the pool does not
	// connect.
	ErrInvalidMint = errors.New("pool: mint not part of pool")

	// ErrMalformedAccountData is returned when a refresh payload cannot be
	// decoded into the expected account layout.
	ErrMalformedAccountData = errors.New("pool: malformed account data")

	// ErrMissingAccount is returned when a required account was absent from
	// a refresh batch.
	ErrMissingAccount = errors.New("pool: missing account in refresh batch")

	// ErrInvalidDefinition is returned for venue definitions that cannot
	// form a tradable pool (fewer than two distinct mints, degenerate fees,
	// zero lot sizes). The loader skips such definitions with a warning.
	ErrInvalidDefinition = errors.New("pool: invalid definition")
)
