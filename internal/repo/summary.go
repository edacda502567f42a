package repo

import (
	"context"

	"github.com/mvasquez/invctl/internal/store"
)

// Summary reads the user_invoice_summary view: one row per user with their
// invoice count and total cents, ordered by user id. Users whose total is
// below minCents are skipped; zero includes everyone.
func Summary(ctx context.Context, st *store.Store, minCents int64) ([]UserSummary, error) {
	rows, err := st.DB().QueryContext(ctx, `
		SELECT user_id, name, email, invoice_count, total_cents
		FROM user_invoice_summary
		WHERE total_cents >= ?
		ORDER BY user_id
	`, minCents)
	if err != nil {
		return nil, store.MapQueryErr(err)
	}
	defer rows.Close()

	var out []UserSummary
	for rows.Next() {
		var s UserSummary
		if err := rows.Scan(&s.UserID, &s.Name, &s.Email, &s.InvoiceCount, &s.TotalCents); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
