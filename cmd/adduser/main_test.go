package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useSQLite points configuration at a fresh SQLite file for one test.
func useSQLite(t *testing.T) {
	t.Helper()
	t.Setenv("ENV", "test")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "adduser.db"))
	t.Setenv("BCRYPT_COST", "4")
}

func TestRun_Success(t *testing.T) {
	useSQLite(t)
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)

	args := []string{"-name", "Alice", "-email", "Alice@Test.com", "-password", "secret1"}
	err := run(args, new(bytes.Buffer), stdout, stderr)
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "User alice@test.com created successfully")
}

func TestRun_DuplicateUser(t *testing.T) {
	useSQLite(t)
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)

	args := []string{"-name", "Alice", "-email", "alice@test.com", "-password", "secret1"}
	require.NoError(t, run(args, new(bytes.Buffer), stdout, stderr), "first run should succeed")

	err := run(args, new(bytes.Buffer), stdout, stderr)
	require.Error(t, err, "expected error on duplicate user")
	assert.Contains(t, err.Error(), "already exists")
}

func TestRun_MissingFlags(t *testing.T) {
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)

	err := run([]string{"-password", "secret1"}, new(bytes.Buffer), stdout, stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required flags")
	assert.Contains(t, stdout.String(), "Usage: adduser")
}

func TestRun_PasswordFromStdin(t *testing.T) {
	useSQLite(t)
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	stdin := bytes.NewBufferString("piped-secret\n")

	err := run([]string{"-name", "Bob", "-email", "bob@test.com"}, stdin, stdout, stderr)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Password: ")
	assert.Contains(t, stdout.String(), "User bob@test.com created successfully")
}

func TestRun_EmptyPassword(t *testing.T) {
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	stdin := bytes.NewBufferString("   \n")

	err := run([]string{"-name", "Bob", "-email", "bob@test.com"}, stdin, stdout, stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password cannot be empty")
}

func TestRun_ShortPasswordRejected(t *testing.T) {
	useSQLite(t)

	err := run([]string{"-name", "Bob", "-email", "bob@test.com", "-password", "123"},
		new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 6 characters")
}
