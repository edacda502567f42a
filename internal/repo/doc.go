// Package repo implements the user and invoice repositories - the full
// public contract the CLI dispatches to.
//
// Every operation validates its inputs through the validate package before
// touching storage, runs multi-row mutations inside a single transaction,
// and surfaces failures as typed domain errors (Error) the CLI can map to
// exit codes. The storage engine's own constraints (unique email index,
// cascade foreign key) back up the explicit checks: a constraint violation
// is translated to the same domain error the check would have produced.
package repo
