// tools_sales.go implements the domain helper tools over the customer and
// invoice tables. These are fixed parameterised transactions - the agent
// supplies values, never SQL - so they enforce referential shape that the
// raw write path cannot (an invoice always carries at least one line item).

package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/jpl-au/chinookd/internal/audit"
	"github.com/jpl-au/chinookd/internal/store"
	"github.com/mark3labs/mcp-go/mcp"
)

var errItemsRequired = errors.New("items is required and must be an array of line items")

func errItem(index int, msg string) error {
	return fmt.Errorf("item %d: %s (each item needs track_id, unit_price, quantity)", index, msg)
}

// topCustomers handles top_customers tool calls.
func (h *handlers) topCustomers(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := getInt(req, "limit", 5)

	var err error
	l := audit.Event("mcp:top_customers", "sales").Detail("limit", limit)
	defer func() { l.Write(err) }()

	customers, err := h.st.TopCustomers(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(customers)
}

// insertCustomer handles insert_customer tool calls.
func (h *handlers) insertCustomer(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in := store.CustomerInput{
		FirstName: getString(req, "first_name", ""),
		LastName:  getString(req, "last_name", ""),
		Email:     getString(req, "email", ""),
		City:      getString(req, "city", ""),
		Country:   getString(req, "country", ""),
	}

	var err error
	l := audit.Event("mcp:insert_customer", "sales")
	defer func() { l.Write(err) }()

	id, err := h.st.InsertCustomer(ctx, in)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	l.Detail("customer_id", id)
	return jsonResult(map[string]int64{"customer_id": id})
}

// updateCustomerEmail handles update_customer_email tool calls. A missing
// customer reports affected_rows 0 rather than an error, letting the agent
// decide whether that is a problem.
func (h *handlers) updateCustomerEmail(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	customerID, err := requireInt64(req, "customer_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	email, err := req.RequireString("new_email")
	if err != nil {
		return mcp.NewToolResultError("new_email is required"), nil
	}

	l := audit.Event("mcp:update_customer_email", "sales").Detail("customer_id", customerID)
	defer func() { l.Write(err) }()

	affected, err := h.st.UpdateCustomerEmail(ctx, customerID, email)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(map[string]int64{"affected_rows": affected})
}

// createInvoice handles create_invoice tool calls. The item list is
// validated before any transaction opens; the insert of header plus lines
// is all-or-nothing.
func (h *handlers) createInvoice(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	customerID, err := requireInt64(req, "customer_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	items, err := invoiceItems(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	l := audit.Event("mcp:create_invoice", "sales").
		Detail("customer_id", customerID).
		Detail("items", len(items))
	defer func() { l.Write(err) }()

	receipt, err := h.st.CreateInvoice(ctx, customerID, items)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	l.Detail("invoice_id", receipt.InvoiceID)
	return jsonResult(receipt)
}

// invoiceItems extracts and shapes the items argument. Each element must be
// an object carrying track_id, unit_price and quantity; anything else is
// rejected with a message naming the offending element.
func invoiceItems(req mcp.CallToolRequest) ([]store.InvoiceItem, error) {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return nil, errItemsRequired
	}
	raw, ok := args["items"].([]any)
	if !ok {
		return nil, errItemsRequired
	}

	items := make([]store.InvoiceItem, 0, len(raw))
	for i, el := range raw {
		m, ok := el.(map[string]any)
		if !ok {
			return nil, errItem(i, "must be an object")
		}
		trackID, ok := m["track_id"].(float64)
		if !ok {
			return nil, errItem(i, "missing track_id")
		}
		unitPrice, ok := m["unit_price"].(float64)
		if !ok {
			return nil, errItem(i, "missing unit_price")
		}
		quantity, ok := m["quantity"].(float64)
		if !ok {
			return nil, errItem(i, "missing quantity")
		}
		items = append(items, store.InvoiceItem{
			TrackID:   int64(trackID),
			UnitPrice: unitPrice,
			Quantity:  int64(quantity),
		})
	}
	return items, nil
}
