// domain.go implements the fixed domain helpers over the customer and
// invoice tables: parameterised transactions that enforce referential shape
// beyond what raw guarded SQL can promise (an invoice is created atomically
// with all of its line items, or not at all).
//
// Design: validation happens before a transaction opens. Execution errors
// (constraint violations, lock contention) roll the transaction back and
// are surfaced without retry.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"
)

// emailRe is intentionally loose: one @, no whitespace, a dot in the domain.
// The reference database carries free-text emails, so strict RFC parsing
// would reject existing rows.
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// tableNames records which naming variant the working copy uses. Classic
// Chinook ships PascalCase names (Customer, Invoice, InvoiceLine); some
// exports use snake_case (customers, invoices, invoice_items). Column names
// are identical in both and SQLite matches identifiers case-insensitively.
type tableNames struct {
	customers    string
	invoices     string
	invoiceItems string
}

// detectTables resolves the naming variant once at startup. Failing here is
// fatal: without these tables the domain helpers cannot operate.
func detectTables(db *sql.DB) (tableNames, error) {
	ctx := context.Background()
	var tn tableNames
	var err error

	if tn.customers, err = pickTable(ctx, db, "customers", "Customer"); err != nil {
		return tn, err
	}
	if tn.invoices, err = pickTable(ctx, db, "invoices", "Invoice"); err != nil {
		return tn, err
	}
	if tn.invoiceItems, err = pickTable(ctx, db, "invoice_items", "InvoiceLine"); err != nil {
		return tn, err
	}
	return tn, nil
}

// pickTable returns the first candidate that exists in the database.
func pickTable(ctx context.Context, db *sql.DB, candidates ...string) (string, error) {
	for _, cand := range candidates {
		ok, err := hasTable(ctx, db, cand)
		if err != nil {
			return "", err
		}
		if ok {
			return cand, nil
		}
	}
	return "", fmt.Errorf("%w: none of %v exist", ErrTableNotFound, candidates)
}

// InsertCustomer creates a customer row and returns its generated id.
// FirstName, LastName and Email are required; City and Country are stored
// as NULL when empty. Email format validation applies when enabled in
// Options.
func (s *Store) InsertCustomer(ctx context.Context, in CustomerInput) (int64, error) {
	if in.FirstName == "" || in.LastName == "" || in.Email == "" {
		return 0, fmt.Errorf("%w: first_name, last_name and email are required", ErrMissingField)
	}
	if err := s.checkEmail(in.Email); err != nil {
		return 0, err
	}

	var id int64
	err := s.Tx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, fmt.Sprintf(
			`INSERT INTO %q (FirstName, LastName, Email, City, Country) VALUES (?, ?, ?, ?, ?)`,
			s.tables.customers),
			in.FirstName, in.LastName, in.Email, nullIfEmpty(in.City), nullIfEmpty(in.Country))
		if err != nil {
			return fmt.Errorf("insert customer: %w", err)
		}
		id, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("customer id: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateCustomerEmail sets a customer's email and returns the affected-row
// count. A missing customer id yields 0, not an error, so callers can
// distinguish "not found" from a failed write.
func (s *Store) UpdateCustomerEmail(ctx context.Context, customerID int64, email string) (int64, error) {
	if err := s.checkEmail(email); err != nil {
		return 0, err
	}

	var affected int64
	err := s.Tx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, fmt.Sprintf(
			`UPDATE %q SET Email = ? WHERE CustomerId = ?`, s.tables.customers),
			email, customerID)
		if err != nil {
			return fmt.Errorf("update email: %w", err)
		}
		affected, err = result.RowsAffected()
		if err != nil {
			return fmt.Errorf("affected rows: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// TopCustomers ranks customers by total invoice amount, descending. Limit
// must be between 1 and 100. Customers without invoices appear with a total
// of zero, which keeps the ranking meaningful on a freshly seeded copy.
func (s *Store) TopCustomers(ctx context.Context, limit int) ([]CustomerSpend, error) {
	if limit < 1 || limit > 100 {
		return nil, fmt.Errorf("limit must be between 1 and 100, got %d", limit)
	}

	q := fmt.Sprintf(`
		SELECT c.CustomerId, c.FirstName, c.LastName, c.Email, IFNULL(SUM(i.Total), 0.0) AS TotalSpent
		FROM %q c
		LEFT JOIN %q i ON i.CustomerId = c.CustomerId
		GROUP BY c.CustomerId
		ORDER BY TotalSpent DESC, c.CustomerId ASC
		LIMIT ?`, s.tables.customers, s.tables.invoices)

	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("top customers: %w", err)
	}
	defer rows.Close()

	var out []CustomerSpend
	for rows.Next() {
		var c CustomerSpend
		if err := rows.Scan(&c.CustomerID, &c.FirstName, &c.LastName, &c.Email, &c.TotalSpent); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateInvoice creates an invoice header plus one row per line item in a
// single transaction. The stored total is the sum of unit_price x quantity
// across the items. An empty item list, a non-positive quantity or a
// missing track reference is rejected before the transaction opens; any
// execution error (such as an unknown customer or track id under foreign
// keys) rolls the whole invoice back.
func (s *Store) CreateInvoice(ctx context.Context, customerID int64, items []InvoiceItem) (*InvoiceReceipt, error) {
	if len(items) == 0 {
		return nil, ErrEmptyInvoice
	}
	for i, it := range items {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item %d quantity must be > 0", ErrInvalidItem, i)
		}
		if it.TrackID <= 0 {
			return nil, fmt.Errorf("%w: item %d requires a track_id", ErrInvalidItem, i)
		}
	}

	var total float64
	for _, it := range items {
		total += it.UnitPrice * float64(it.Quantity)
	}

	receipt := &InvoiceReceipt{Total: total}
	err := s.Tx(ctx, func(tx *sql.Tx) error {
		now := time.Now().UTC().Format("2006-01-02 15:04:05")
		result, err := tx.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO %q (CustomerId, InvoiceDate, BillingAddress, BillingCity,
			                BillingState, BillingCountry, BillingPostalCode, Total)
			VALUES (?, ?, '', '', NULL, '', '', ?)`, s.tables.invoices),
			customerID, now, total)
		if err != nil {
			return fmt.Errorf("insert invoice: %w", err)
		}
		receipt.InvoiceID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("invoice id: %w", err)
		}

		for _, it := range items {
			_, err := tx.ExecContext(ctx, fmt.Sprintf(`
				INSERT INTO %q (InvoiceId, TrackId, UnitPrice, Quantity)
				VALUES (?, ?, ?, ?)`, s.tables.invoiceItems),
				receipt.InvoiceID, it.TrackID, it.UnitPrice, it.Quantity)
			if err != nil {
				return fmt.Errorf("insert line item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// checkEmail applies format validation when enabled.
func (s *Store) checkEmail(email string) error {
	if !s.validateEmail {
		return nil
	}
	if !emailRe.MatchString(email) {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	return nil
}

// nullIfEmpty maps empty strings to NULL so optional locality fields stay
// unset rather than empty.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
