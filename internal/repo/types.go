package repo

// User is one row of the users table. Timestamps are local datetimes in
// "YYYY-MM-DD HH:MM:SS" form, assigned by the storage layer.
type User struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Invoice is one row of the invoices table. Total is integer cents.
// DateDue is an ISO date (YYYY-MM-DD) or empty for no due date.
type Invoice struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Total     int64  `json:"total_cents"`
	DateDue   string `json:"date_due,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// UserTotal is a user together with the sum of their invoice totals,
// produced by the min-total listing.
type UserTotal struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	TotalCents int64  `json:"total_cents"`
}

// UserSummary is one row of the user_invoice_summary view.
type UserSummary struct {
	UserID       int64  `json:"user_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	InvoiceCount int64  `json:"invoice_count"`
	TotalCents   int64  `json:"total_cents"`
}
