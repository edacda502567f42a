package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the full command tree against a fresh root command.
func execute(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := NewRootCommand()
	outBuf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	cmd.SetOut(outBuf)
	cmd.SetErr(errBuf)
	if stdin != "" {
		cmd.SetIn(strings.NewReader(stdin))
	}
	cmd.SetArgs(args)
	err = cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

func tempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.db")
}

func initDB(t *testing.T, db string) {
	t.Helper()
	_, _, err := execute(t, "", "db", "init", "--db", db)
	require.NoError(t, err)
}

func TestDBInit(t *testing.T) {
	db := tempDB(t)

	out, _, err := execute(t, "", "db", "init", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized database")

	// Second init reports the condition but still succeeds.
	out, _, err = execute(t, "", "db", "init", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "already initialized")
}

func TestDBDropAndNotInitialized(t *testing.T) {
	db := tempDB(t)
	initDB(t, db)

	_, _, err := execute(t, "", "users", "create", "-n", "John", "-e", "john@x.com", "--db", db)
	require.NoError(t, err)

	out, _, err := execute(t, "", "db", "drop", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Dropped all tables")

	_, stderr, err := execute(t, "", "users", "list", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr, "NOT_INITIALIZED")
}

func TestDBDelete(t *testing.T) {
	db := tempDB(t)
	initDB(t, db)

	// Declining the prompt cancels.
	out, _, err := execute(t, "n\n", "db", "delete", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Deletion cancelled")

	out, _, err = execute(t, "", "db", "delete", "--yes", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "deleted")

	// Gone now: a second delete fails.
	_, stderr, err := execute(t, "", "db", "delete", "--yes", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr, "no database found")
}

func TestUsersCreateAndGet(t *testing.T) {
	db := tempDB(t)
	initDB(t, db)

	out, _, err := execute(t, "", "users", "create", "-n", "John", "-e", "john@x.com", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Created user John <john@x.com> (id=1)")

	out, _, err = execute(t, "", "users", "get", "-i", "1", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "1 John john@x.com\n", out)

	out, _, err = execute(t, "", "users", "get", "-e", "john@x.com", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "1 John john@x.com\n", out)
}

func TestUsersGetJSON(t *testing.T) {
	db := tempDB(t)
	initDB(t, db)

	_, _, err := execute(t, "", "users", "create", "-n", "John", "-e", "john@x.com", "--db", db)
	require.NoError(t, err)

	out, _, err := execute(t, "", "users", "get", "-i", "1", "--format", "json", "--db", db)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.TraceID)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "John", data["name"])
	assert.Equal(t, "john@x.com", data["email"])
	assert.EqualValues(t, 1, data["id"])
}

func TestUsersGetRequiresExactlyOneSelector(t *testing.T) {
	db := tempDB(t)
	initDB(t, db)

	_, _, err := execute(t, "", "users", "get", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, _, err = execute(t, "", "users", "get", "-i", "1", "-e", "a@x.com", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestUsersDuplicateEmailExitCode(t *testing.T) {
	db := tempDB(t)
	initDB(t, db)

	_, _, err := execute(t, "", "users", "create", "-n", "Alice", "-e", "a@x.com", "--db", db)
	require.NoError(t, err)

	_, stderr, err := execute(t, "", "users", "create", "-n", "Bob", "-e", "a@x.com", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stderr, "DUPLICATE_EMAIL")
	assert.Contains(t, stderr, "a@x.com")
}

func TestUsersErrorsAsJSON(t *testing.T) {
	db := tempDB(t)
	initDB(t, db)

	out, _, err := execute(t, "", "users", "get", "-i", "42", "--format", "json", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestUsersUpdateAndDelete(t *testing.T) {
	db := tempDB(t)
	initDB(t, db)

	_, _, err := execute(t, "", "users", "create", "-n", "John", "-e", "john@x.com", "--db", db)
	require.NoError(t, err)

	out, _, err := execute(t, "", "users", "update", "1", "-n", "Johnny", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Johnny <john@x.com>")

	out, _, err = execute(t, "", "users", "delete", "1", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted user 1")

	_, stderr, err := execute(t, "", "users", "delete", "1", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stderr, "NOT_FOUND")
}

func TestInvoicesFlow(t *testing.T) {
	db := tempDB(t)
	initDB(t, db)

	_, _, err := execute(t, "", "users", "create", "-n", "John", "-e", "john@x.com", "--db", db)
	require.NoError(t, err)

	out, _, err := execute(t, "", "invoices", "create", "-u", "1", "-t", "400", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Created invoice 1 for user 1 ($400.00)")

	_, _, err = execute(t, "", "invoices", "create", "-u", "1", "-t", "100", "-d", "2099-12-20", "--db", db)
	require.NoError(t, err)

	out, _, err = execute(t, "", "invoices", "list", "--user", "1", "--db", db)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Invoice #1")
	assert.Contains(t, lines[0], "$400.00")
	assert.Contains(t, lines[1], "Invoice #2")
	assert.Contains(t, lines[1], "Due: 2099-12-20")

	out, _, err = execute(t, "", "invoices", "count", "--user", "1", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)

	out, _, err = execute(t, "", "invoices", "sum", "--user", "1", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "$500.00\n", out)
}

func TestInvoicesCreateRejectionExitCodes(t *testing.T) {
	db := tempDB(t)
	initDB(t, db)

	_, _, err := execute(t, "", "users", "create", "-n", "John", "-e", "john@x.com", "--db", db)
	require.NoError(t, err)

	_, stderr, err := execute(t, "", "invoices", "create", "-u", "1", "-t", "-5", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stderr, "INVALID_INPUT")

	_, stderr, err = execute(t, "", "invoices", "create", "-u", "42", "-t", "10", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stderr, "USER_NOT_FOUND")
}

func TestInvalidFormatFlag(t *testing.T) {
	_, _, err := execute(t, "", "users", "list", "--format", "xml", "--db", tempDB(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestVersionFlag(t *testing.T) {
	out, _, err := execute(t, "", "--version")
	require.NoError(t, err)
	assert.Contains(t, out, Version)
}
