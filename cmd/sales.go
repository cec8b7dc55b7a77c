// sales.go implements the domain commands: top, customer add,
// customer email and invoice create. They mirror the sales MCP tools and
// share the same store operations and validation.

package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/jpl-au/chinookd/internal/audit"
	"github.com/jpl-au/chinookd/internal/store"
	"github.com/spf13/cobra"
)

var topLimit int

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Show top customers by total invoice amount",
	Args:  cobra.NoArgs,
	RunE:  runTop,
}

var customerCmd = &cobra.Command{
	Use:   "customer",
	Short: "Customer operations",
}

var (
	customerCity    string
	customerCountry string
)

var customerAddCmd = &cobra.Command{
	Use:   "add <first-name> <last-name> <email>",
	Short: "Add a customer",
	Args:  cobra.ExactArgs(3),
	RunE:  runCustomerAdd,
}

var customerEmailCmd = &cobra.Command{
	Use:   "email <customer-id> <new-email>",
	Short: "Update a customer's email address",
	Args:  cobra.ExactArgs(2),
	RunE:  runCustomerEmail,
}

var invoiceCmd = &cobra.Command{
	Use:   "invoice",
	Short: "Invoice operations",
}

var invoiceCreateCmd = &cobra.Command{
	Use:   "create <customer-id> <track-id:unit-price:quantity>...",
	Short: "Create an invoice with line items",
	Long: `Create an invoice atomically. Each line item is track:price:quantity:

  chinookd invoice create 12 1:0.99:2 410:1.99:1

The invoice total is computed as the sum of price x quantity.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runInvoiceCreate,
}

func runTop(c *cobra.Command, _ []string) error {
	customers, err := st.TopCustomers(c.Context(), topLimit)

	audit.Event("cli:top", "sales").Detail("limit", topLimit).Write(err)

	if err != nil {
		return PrintJSONError(fmt.Errorf("top: %w", err))
	}

	if JSON() {
		return PrintJSON(customers)
	}

	w := tabwriter.NewWriter(Out(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTOTAL")
	for _, cust := range customers {
		fmt.Fprintf(w, "%d\t%s %s\t%.2f\n", cust.CustomerID, cust.FirstName, cust.LastName, cust.TotalSpent)
	}
	return w.Flush()
}

func runCustomerAdd(c *cobra.Command, args []string) error {
	in := store.CustomerInput{
		FirstName: args[0],
		LastName:  args[1],
		Email:     args[2],
		City:      customerCity,
		Country:   customerCountry,
	}

	id, err := st.InsertCustomer(c.Context(), in)

	audit.Event("cli:customer-add", "sales").Detail("customer_id", id).Write(err)

	if err != nil {
		return PrintJSONError(fmt.Errorf("customer add: %w", err))
	}

	if JSON() {
		return PrintJSON(map[string]int64{"customer_id": id})
	}
	fmt.Fprintf(Out(), "customer %d created\n", id)
	return nil
}

func runCustomerEmail(c *cobra.Command, args []string) error {
	customerID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return PrintJSONError(fmt.Errorf("customer email: invalid customer id %q", args[0]))
	}

	affected, err := st.UpdateCustomerEmail(c.Context(), customerID, args[1])

	audit.Event("cli:customer-email", "sales").Detail("customer_id", customerID).Write(err)

	if err != nil {
		return PrintJSONError(fmt.Errorf("customer email: %w", err))
	}

	if JSON() {
		return PrintJSON(map[string]int64{"affected_rows": affected})
	}
	if affected == 0 {
		fmt.Fprintf(Out(), "no customer with id %d\n", customerID)
	} else {
		fmt.Fprintf(Out(), "customer %d updated\n", customerID)
	}
	return nil
}

func runInvoiceCreate(c *cobra.Command, args []string) error {
	customerID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return PrintJSONError(fmt.Errorf("invoice create: invalid customer id %q", args[0]))
	}

	items, err := parseItems(args[1:])
	if err != nil {
		return PrintJSONError(fmt.Errorf("invoice create: %w", err))
	}

	receipt, err := st.CreateInvoice(c.Context(), customerID, items)

	audit.Event("cli:invoice-create", "sales").
		Detail("customer_id", customerID).
		Detail("items", len(items)).
		Write(err)

	if err != nil {
		return PrintJSONError(fmt.Errorf("invoice create: %w", err))
	}

	if JSON() {
		return PrintJSON(receipt)
	}
	fmt.Fprintf(Out(), "invoice %d created, total %.2f\n", receipt.InvoiceID, receipt.Total)
	return nil
}

// parseItems parses track:price:quantity specs into line items.
func parseItems(specs []string) ([]store.InvoiceItem, error) {
	items := make([]store.InvoiceItem, 0, len(specs))
	for _, spec := range specs {
		parts := strings.Split(spec, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid item %q: expected track:price:quantity", spec)
		}
		trackID, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid track id in %q", spec)
		}
		price, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid unit price in %q", spec)
		}
		quantity, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity in %q", spec)
		}
		items = append(items, store.InvoiceItem{TrackID: trackID, UnitPrice: price, Quantity: quantity})
	}
	return items, nil
}

func init() {
	topCmd.Flags().IntVarP(&topLimit, "limit", "n", 5, "Number of customers to return (1-100)")
	customerAddCmd.Flags().StringVar(&customerCity, "city", "", "Customer city")
	customerAddCmd.Flags().StringVar(&customerCountry, "country", "", "Customer country")

	customerCmd.AddCommand(customerAddCmd)
	customerCmd.AddCommand(customerEmailCmd)
	invoiceCmd.AddCommand(invoiceCreateCmd)

	rootCmd.AddCommand(topCmd)
	rootCmd.AddCommand(customerCmd)
	rootCmd.AddCommand(invoiceCmd)
}
