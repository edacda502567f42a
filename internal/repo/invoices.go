package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mvasquez/invctl/internal/store"
	"github.com/mvasquez/invctl/internal/validate"
)

// Invoices provides CRUD over the invoice entity and enforces the
// user->invoice relationship.
type Invoices struct {
	st *store.Store
}

// NewInvoices creates an invoice repository backed by st.
func NewInvoices(st *store.Store) *Invoices {
	return &Invoices{st: st}
}

const invoiceColumns = "id, user_id, total, date_due, created_at, updated_at"

func scanInvoice(row interface{ Scan(...any) error }) (*Invoice, error) {
	var inv Invoice
	var due sql.NullString
	if err := row.Scan(&inv.ID, &inv.UserID, &inv.Total, &due, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
		return nil, err
	}
	inv.DateDue = due.String
	return &inv, nil
}

func dueValue(due string) any {
	if due == "" {
		return nil
	}
	return due
}

// Create validates and inserts a new invoice for an existing user. Total is
// a decimal dollar string, dateDue an optional date string (empty for none).
// The due date must not precede the invoice's creation date.
func (r *Invoices) Create(ctx context.Context, userID int64, total, dateDue string) (*Invoice, error) {
	cents, err := validate.Cents(total)
	if err != nil {
		return nil, NewInvalidInput(err.Error())
	}
	due, err := validate.Date(dateDue)
	if err != nil {
		return nil, NewInvalidInput(err.Error())
	}
	if due != "" {
		today := time.Now().Format("2006-01-02")
		if due < today {
			return nil, NewInvalidInput(fmt.Sprintf("due date %s precedes the invoice date %s", due, today))
		}
	}

	var created *Invoice
	err = r.st.WithTx(ctx, func(tx *sql.Tx) error {
		if err := assertUserExists(ctx, tx, userID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			"INSERT INTO invoices (user_id, total, date_due) VALUES (?, ?, ?)",
			userID, cents, dueValue(due))
		if err != nil {
			return mapConstraint(err, "", userID)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		created, err = scanInvoice(tx.QueryRowContext(ctx,
			"SELECT "+invoiceColumns+" FROM invoices WHERE id = ?", id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Get returns the invoice with the given id, or NotFound.
func (r *Invoices) Get(ctx context.Context, id int64) (*Invoice, error) {
	inv, err := scanInvoice(r.st.DB().QueryRowContext(ctx,
		"SELECT "+invoiceColumns+" FROM invoices WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewNotFound("invoice", id)
	}
	if err != nil {
		return nil, store.MapQueryErr(err)
	}
	return inv, nil
}

// Filter restricts List and Count. Zero values mean "no restriction":
// UserID 0 matches all users, empty Email skips the email lookup, Limit 0
// returns everything.
type Filter struct {
	UserID int64
	Email  string
	Limit  int
	Offset int
}

func (f Filter) where() (string, []any) {
	if f.UserID != 0 {
		return " WHERE user_id = ?", []any{f.UserID}
	}
	return "", nil
}

// resolve turns an email filter into a user-id filter. An unknown email
// matches nothing, reported through the ok return.
func (f Filter) resolve(ctx context.Context, db *sql.DB) (Filter, bool, error) {
	if f.Email == "" {
		return f, true, nil
	}
	var id int64
	err := db.QueryRowContext(ctx,
		"SELECT id FROM users WHERE lower(email) = lower(?)",
		strings.TrimSpace(f.Email)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return f, false, nil
	}
	if err != nil {
		return f, false, store.MapQueryErr(err)
	}
	f.UserID = id
	return f, true, nil
}

// List returns invoices matching the filter, ordered by id ascending.
func (r *Invoices) List(ctx context.Context, f Filter) ([]Invoice, error) {
	f, ok, err := f.resolve(ctx, r.st.DB())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	where, args := f.where()
	query := "SELECT " + invoiceColumns + " FROM invoices" + where + " ORDER BY id"
	if f.Limit > 0 || f.Offset > 0 {
		limit := f.Limit
		if limit <= 0 {
			limit = -1 // no limit, offset only
		}
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, f.Offset)
	}

	rows, err := r.st.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.MapQueryErr(err)
	}
	defer rows.Close()

	var out []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	return out, rows.Err()
}

// Count returns the number of invoices matching the filter. Limit and
// Offset are ignored; the filter semantics otherwise match List.
func (r *Invoices) Count(ctx context.Context, f Filter) (int64, error) {
	f, ok, err := f.resolve(ctx, r.st.DB())
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}

	where, args := f.where()
	var n int64
	err = r.st.DB().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM invoices"+where, args...).Scan(&n)
	if err != nil {
		return 0, store.MapQueryErr(err)
	}
	return n, nil
}

// SumByUser returns the total cents invoiced to one user.
// Fails with UserNotFound when the user does not exist, so a zero sum is
// always a real zero.
func (r *Invoices) SumByUser(ctx context.Context, userID int64) (int64, error) {
	var exists int64
	err := r.st.DB().QueryRowContext(ctx,
		"SELECT 1 FROM users WHERE id = ?", userID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, NewUserNotFound(userID)
	}
	if err != nil {
		return 0, store.MapQueryErr(err)
	}

	var sum int64
	err = r.st.DB().QueryRowContext(ctx,
		"SELECT COALESCE(SUM(total), 0) FROM invoices WHERE user_id = ?", userID).Scan(&sum)
	if err != nil {
		return 0, store.MapQueryErr(err)
	}
	return sum, nil
}

// InvoiceUpdate names the fields Update may change. Nil fields are left
// untouched. The owning user is immutable; there is deliberately no way to
// repoint an invoice at another user.
type InvoiceUpdate struct {
	Total   *string
	DateDue *string
}

// Update applies the supplied fields to an existing invoice, re-validating
// each. A due-date change is checked against the invoice's own creation
// date. An empty DateDue clears the due date.
func (r *Invoices) Update(ctx context.Context, id int64, upd InvoiceUpdate) (*Invoice, error) {
	var sets []string
	var args []any

	if upd.Total != nil {
		cents, err := validate.Cents(*upd.Total)
		if err != nil {
			return nil, NewInvalidInput(err.Error())
		}
		sets = append(sets, "total = ?")
		args = append(args, cents)
	}
	var due string
	if upd.DateDue != nil {
		var err error
		due, err = validate.Date(*upd.DateDue)
		if err != nil {
			return nil, NewInvalidInput(err.Error())
		}
		sets = append(sets, "date_due = ?")
		args = append(args, dueValue(due))
	}
	if len(sets) == 0 {
		return nil, NewInvalidInput("nothing to update: supply a total or a due date")
	}

	var updated *Invoice
	err := r.st.WithTx(ctx, func(tx *sql.Tx) error {
		current, err := scanInvoice(tx.QueryRowContext(ctx,
			"SELECT "+invoiceColumns+" FROM invoices WHERE id = ?", id))
		if errors.Is(err, sql.ErrNoRows) {
			return NewNotFound("invoice", id)
		}
		if err != nil {
			return store.MapQueryErr(err)
		}

		if upd.DateDue != nil && due != "" {
			issued := current.CreatedAt
			if len(issued) > 10 {
				issued = issued[:10]
			}
			if due < issued {
				return NewInvalidInput(fmt.Sprintf("due date %s precedes the invoice date %s", due, issued))
			}
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE invoices SET "+strings.Join(sets, ", ")+" WHERE id = ?",
			append(args, id)...); err != nil {
			return store.MapQueryErr(err)
		}
		updated, err = scanInvoice(tx.QueryRowContext(ctx,
			"SELECT "+invoiceColumns+" FROM invoices WHERE id = ?", id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the invoice; NotFound when it does not exist.
func (r *Invoices) Delete(ctx context.Context, id int64) error {
	res, err := r.st.DB().ExecContext(ctx, "DELETE FROM invoices WHERE id = ?", id)
	if err != nil {
		return store.MapQueryErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return NewNotFound("invoice", id)
	}
	return nil
}

// assertUserExists fails with UserNotFound if the user id has no row.
func assertUserExists(ctx context.Context, tx *sql.Tx, userID int64) error {
	var one int64
	err := tx.QueryRowContext(ctx,
		"SELECT 1 FROM users WHERE id = ?", userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return NewUserNotFound(userID)
	}
	if err != nil {
		return store.MapQueryErr(err)
	}
	return nil
}
