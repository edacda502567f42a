package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mvasquez/invctl/internal/store"
	"github.com/mvasquez/invctl/internal/validate"
)

// Users provides CRUD over the user entity.
type Users struct {
	st *store.Store
}

// NewUsers creates a user repository backed by st.
func NewUsers(st *store.Store) *Users {
	return &Users{st: st}
}

const userColumns = "id, name, email, created_at, updated_at"

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create validates and inserts a new user, returning it with its generated
// id and timestamps. The email uniqueness check runs inside the insert
// transaction; the unique index backs it up should the check ever race.
func (r *Users) Create(ctx context.Context, name, email string) (*User, error) {
	name, err := validate.Name(name)
	if err != nil {
		return nil, NewInvalidInput(err.Error())
	}
	email, err = validate.Email(email)
	if err != nil {
		return nil, NewInvalidInput(err.Error())
	}

	var created *User
	err = r.st.WithTx(ctx, func(tx *sql.Tx) error {
		if err := assertEmailUnique(ctx, tx, email, 0); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			"INSERT INTO users (name, email) VALUES (?, ?)", name, email)
		if err != nil {
			return mapConstraint(err, email, 0)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		created, err = scanUser(tx.QueryRowContext(ctx,
			"SELECT "+userColumns+" FROM users WHERE id = ?", id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetByID returns the user with the given id, or NotFound.
func (r *Users) GetByID(ctx context.Context, id int64) (*User, error) {
	u, err := scanUser(r.st.DB().QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewNotFound("user", id)
	}
	if err != nil {
		return nil, store.MapQueryErr(err)
	}
	return u, nil
}

// GetByEmail returns the user with the given email, or NotFound.
// The match is case-insensitive, as fixed by the schema's unique index.
func (r *Users) GetByEmail(ctx context.Context, email string) (*User, error) {
	email = strings.TrimSpace(email)
	u, err := scanUser(r.st.DB().QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE lower(email) = lower(?)", email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &Error{Code: ErrCodeNotFound, Message: fmt.Sprintf("user not found (email=%s)", email), Entity: "user"}
	}
	if err != nil {
		return nil, store.MapQueryErr(err)
	}
	return u, nil
}

// List returns all users ordered by id ascending.
func (r *Users) List(ctx context.Context) ([]User, error) {
	rows, err := r.st.DB().QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, store.MapQueryErr(err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

// ListWithTotals returns users joined to the sum of their invoice totals,
// restricted to users with at least minCents invoiced. minCents of zero
// includes everyone, invoiced or not.
func (r *Users) ListWithTotals(ctx context.Context, minCents int64) ([]UserTotal, error) {
	rows, err := r.st.DB().QueryContext(ctx, `
		SELECT u.id, u.name, u.email, COALESCE(SUM(i.total), 0) AS total
		FROM users u
		LEFT JOIN invoices i ON i.user_id = u.id
		GROUP BY u.id, u.name, u.email
		HAVING COALESCE(SUM(i.total), 0) >= ?
		ORDER BY u.id
	`, minCents)
	if err != nil {
		return nil, store.MapQueryErr(err)
	}
	defer rows.Close()

	var out []UserTotal
	for rows.Next() {
		var ut UserTotal
		if err := rows.Scan(&ut.ID, &ut.Name, &ut.Email, &ut.TotalCents); err != nil {
			return nil, err
		}
		out = append(out, ut)
	}
	return out, rows.Err()
}

// UserUpdate names the fields Update may change. Nil fields are left
// untouched.
type UserUpdate struct {
	Name  *string
	Email *string
}

// Update applies the supplied fields to an existing user, re-validating
// each. Supplying no fields is an input error, not a silent no-op.
func (r *Users) Update(ctx context.Context, id int64, upd UserUpdate) (*User, error) {
	var sets []string
	var args []any

	if upd.Name != nil {
		name, err := validate.Name(*upd.Name)
		if err != nil {
			return nil, NewInvalidInput(err.Error())
		}
		sets = append(sets, "name = ?")
		args = append(args, name)
	}
	var email string
	if upd.Email != nil {
		var err error
		email, err = validate.Email(*upd.Email)
		if err != nil {
			return nil, NewInvalidInput(err.Error())
		}
		sets = append(sets, "email = ?")
		args = append(args, email)
	}
	if len(sets) == 0 {
		return nil, NewInvalidInput("nothing to update: supply a name or an email")
	}

	var updated *User
	err := r.st.WithTx(ctx, func(tx *sql.Tx) error {
		if upd.Email != nil {
			if err := assertEmailUnique(ctx, tx, email, id); err != nil {
				return err
			}
		}
		res, err := tx.ExecContext(ctx,
			"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id = ?",
			append(args, id)...)
		if err != nil {
			return mapConstraint(err, email, 0)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return NewNotFound("user", id)
		}
		updated, err = scanUser(tx.QueryRowContext(ctx,
			"SELECT "+userColumns+" FROM users WHERE id = ?", id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the user and every invoice referencing it, in one
// transaction: children first, then the parent. The schema's ON DELETE
// CASCADE would do the same, but the explicit form keeps the atomicity
// visible and testable. A second delete of the same id reports NotFound.
func (r *Users) Delete(ctx context.Context, id int64) error {
	return r.st.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM invoices WHERE user_id = ?", id); err != nil {
			return store.MapQueryErr(err)
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
		if err != nil {
			return store.MapQueryErr(err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return NewNotFound("user", id)
		}
		return nil
	})
}

// assertEmailUnique fails with DuplicateEmail if another user already holds
// the email. excludeID skips the user being updated.
func assertEmailUnique(ctx context.Context, tx *sql.Tx, email string, excludeID int64) error {
	var existing int64
	err := tx.QueryRowContext(ctx,
		"SELECT id FROM users WHERE lower(email) = lower(?)", email).Scan(&existing)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return store.MapQueryErr(err)
	}
	if existing != excludeID {
		return NewDuplicateEmail(email)
	}
	return nil
}
