package cmd

import "testing"

func TestStatus(t *testing.T) {
	t.Run("fresh copy has no drift", func(t *testing.T) {
		env := newTestEnv(t)

		out := env.run("status")
		env.contains(out, "customers")
		env.contains(out, "+0")
		env.contains(out, "schema: identical")
	})

	t.Run("row deltas after writes", func(t *testing.T) {
		env := newTestEnv(t)

		env.run("--persist", "exec", "DELETE FROM invoices WHERE InvoiceId = 1")

		out := env.run("--persist", "status")
		env.contains(out, "-1")
	})

	t.Run("json output", func(t *testing.T) {
		env := newTestEnv(t)

		out := env.run("status", "-o", "json")
		env.contains(out, `"base"`)
		env.contains(out, `"working_rows"`)
	})
}

func TestReset(t *testing.T) {
	env := newTestEnv(t)

	env.run("--persist", "exec", "DELETE FROM invoices WHERE InvoiceId = 1")

	out := env.run("--persist", "query", "SELECT COUNT(*) FROM invoices")
	env.contains(out, "0")

	out = env.run("--persist", "reset")
	env.contains(out, "re-seeded")

	out = env.run("--persist", "query", "SELECT COUNT(*) FROM invoices")
	env.contains(out, "1")
}
