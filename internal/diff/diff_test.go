package diff_test

import (
	"strings"
	"testing"

	"github.com/jpl-au/chinookd/internal/diff"
	"github.com/stretchr/testify/assert"
)

func TestCompute_Identical(t *testing.T) {
	r := diff.Compute("CREATE TABLE a (x);\n", "CREATE TABLE a (x);\n", "base", "working")
	assert.True(t, r.Same())
	assert.Empty(t, r.Format())
}

func TestCompute_Changed(t *testing.T) {
	oldSQL := "CREATE TABLE a (x);\nCREATE TABLE b (y);\n"
	newSQL := "CREATE TABLE a (x);\nCREATE TABLE b (y, z);\n"

	r := diff.Compute(oldSQL, newSQL, "base", "working")
	assert.False(t, r.Same())

	out := r.Format()
	assert.True(t, strings.HasPrefix(out, "--- base\n+++ working\n"))
	assert.Contains(t, out, "-")
	assert.Contains(t, out, "+")
}

func TestCompute_CollapsesLongEqualSections(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 20; i++ {
		b.WriteString("line\n")
	}
	oldSQL := "first\n" + b.String() + "last-old\n"
	newSQL := "first\n" + b.String() + "last-new\n"

	r := diff.Compute(oldSQL, newSQL, "a", "b")
	assert.Contains(t, r.Diff, "...")
	assert.Less(t, strings.Count(r.Diff, "line"), 20)
}
