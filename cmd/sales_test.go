package cmd

import "testing"

func TestTop(t *testing.T) {
	t.Run("ranking includes zero-spend customers", func(t *testing.T) {
		env := newTestEnv(t)

		out := env.run("top")
		env.contains(out, "Luis Goncalves")
		env.contains(out, "9.90")
		env.contains(out, "Helena Holy")
		env.contains(out, "0.00")
	})

	t.Run("limit flag", func(t *testing.T) {
		env := newTestEnv(t)

		out := env.run("top", "-n", "1")
		env.contains(out, "Luis")
		env.notContains(out, "Helena")
	})

	t.Run("limit out of range", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.runErr("top", "-n", "0")
		if err == nil {
			t.Error("top(-n 0) = nil, want error")
		}
	})
}

func TestCustomerAdd(t *testing.T) {
	t.Run("created with optional fields", func(t *testing.T) {
		env := newTestEnv(t)

		out := env.run("--persist", "customer", "add", "Ada", "Lovelace", "ada@example.com", "--country", "UK")
		env.contains(out, "customer 3 created")

		out = env.run("--persist", "query", "SELECT Country FROM customers WHERE Email = ?", "ada@example.com")
		env.contains(out, "UK")
	})

	t.Run("invalid email rejected", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.runErr("customer", "add", "Ada", "Lovelace", "not-an-email")
		if err == nil {
			t.Error("customer add(bad email) = nil, want error")
		}
	})
}

func TestCustomerEmail(t *testing.T) {
	t.Run("existing customer", func(t *testing.T) {
		env := newTestEnv(t)

		out := env.run("customer", "email", "1", "luis@new.example.com")
		env.contains(out, "customer 1 updated")
	})

	t.Run("unknown customer reports not found", func(t *testing.T) {
		env := newTestEnv(t)

		out := env.run("customer", "email", "999", "ghost@example.com")
		env.contains(out, "no customer with id 999")
	})
}

func TestInvoiceCreate(t *testing.T) {
	t.Run("computed total", func(t *testing.T) {
		env := newTestEnv(t)

		out := env.run("--persist", "invoice", "create", "1", "1:0.99:2")
		env.contains(out, "total 1.98")

		out = env.run("--persist", "query", "SELECT COUNT(*) FROM invoice_items")
		env.contains(out, "1")
	})

	t.Run("multiple items", func(t *testing.T) {
		env := newTestEnv(t)

		out := env.run("invoice", "create", "1", "1:0.99:2", "1:0.99:1")
		env.contains(out, "total 2.97")
	})

	t.Run("malformed item spec", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.runErr("invoice", "create", "1", "not-an-item")
		if err == nil {
			t.Error("invoice create(bad item) = nil, want error")
		}
	})

	t.Run("zero quantity rejected", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.runErr("invoice", "create", "1", "1:0.99:0")
		if err == nil {
			t.Error("invoice create(zero quantity) = nil, want error")
		}
	})
}
