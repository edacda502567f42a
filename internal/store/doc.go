// Package store owns the SQLite database file and its schema lifecycle.
//
// A Store wraps a single-connection *sql.DB with the pragmas the schema
// depends on (foreign keys on, recursive triggers off). The schema itself -
// users and invoices tables, the case-insensitive unique email index, the
// updated_at triggers, the cascade foreign key and the user_invoice_summary
// view - lives in the embedded schema.sql and is applied by Init.
//
// Lifecycle operations (Init, Drop, Destroy) are structural and run outside
// any data transaction. Data mutations go through WithTx.
package store
