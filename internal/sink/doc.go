// Package sink holds the destinations the normalized table is loaded into.
//
// Each subpackage exposes a Writer with Name() and Write(ctx, table) bool.
// Writers log their own failures and report them as false; they never panic
// or return errors past that boundary, so the load coordinator can invoke all
// of them regardless of earlier outcomes.
package sink
