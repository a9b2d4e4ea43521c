// Package tx defines the transaction contract shared by the postgres and
// sqlite stores. Domain services depend on it, never on a driver.
package tx

import (
	"context"
)

// Manager runs work inside one database transaction carried in the context.
type Manager interface {
	// RunInTransaction commits when fn returns nil and rolls back otherwise.
	// A call made inside fn joins the outer transaction.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager is a Manager that can also open read-only transactions.
// Report reads against postgres go through it.
type ReadOnlyManager interface {
	Manager

	// ReadOnly executes fn in a read-only transaction.
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
