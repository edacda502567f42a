package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/mvasquez/invctl/internal/repo"
	"github.com/mvasquez/invctl/internal/validate"
)

// Text renderers for the entity types. Kept apart from command logic so the
// golden tests can exercise them directly.

func formatUser(u *repo.User) string {
	return fmt.Sprintf("%d %s %s", u.ID, u.Name, u.Email)
}

func printUsers(w io.Writer, users []repo.User) {
	if len(users) == 0 {
		fmt.Fprintln(w, "No users found.")
		return
	}
	for i := range users {
		fmt.Fprintln(w, formatUser(&users[i]))
	}
}

func printUserTotals(w io.Writer, users []repo.UserTotal) {
	if len(users) == 0 {
		fmt.Fprintln(w, "No users found.")
		return
	}
	for _, u := range users {
		fmt.Fprintf(w, "%d %s %s %s\n", u.ID, u.Name, u.Email, validate.FormatCents(u.TotalCents))
	}
}

func formatInvoice(inv *repo.Invoice) string {
	due := ""
	if inv.DateDue != "" {
		due = " | Due: " + inv.DateDue
	}
	return fmt.Sprintf("Invoice #%d | user %d | %s%s | %s",
		inv.ID, inv.UserID, inv.CreatedAt, due, validate.FormatCents(inv.Total))
}

func printInvoices(w io.Writer, invoices []repo.Invoice) {
	if len(invoices) == 0 {
		fmt.Fprintln(w, "No invoices found.")
		return
	}
	for i := range invoices {
		fmt.Fprintln(w, formatInvoice(&invoices[i]))
	}
}

func printSummary(w io.Writer, rows []repo.UserSummary) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No summaries found.")
		return
	}
	fmt.Fprintln(w, center("User Invoice Summary", 60, '-'))
	for _, r := range rows {
		fmt.Fprintf(w, "User #%d | %-15s | Invoices: %d | Total: %s\n",
			r.UserID, r.Name, r.InvoiceCount, validate.FormatCents(r.TotalCents))
	}
}

func center(s string, width int, pad rune) string {
	if len(s) >= width {
		return s
	}
	left := (width - len(s)) / 2
	right := width - len(s) - left
	return strings.Repeat(string(pad), left) + s + strings.Repeat(string(pad), right)
}
