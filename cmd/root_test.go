package cmd_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AmitPr/libkv/cmd"
)

// execute runs the root command with args and returns what it wrote.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rc := cmd.NewRootCommand(strings.NewReader(""), &out, &errOut)
	rc.SetArgs(args)
	err = rc.Execute()
	return out.String(), errOut.String(), err
}

func mustExecute(t *testing.T, args ...string) string {
	t.Helper()
	out, stderr, err := execute(t, args...)
	require.NoError(t, err, stderr)
	return out
}

func boltArgs(t *testing.T) []string {
	return []string{"--backend", "bolt", "--path", filepath.Join(t.TempDir(), "cli.db")}
}

func with(base []string, args ...string) []string {
	return append(append([]string{}, base...), args...)
}

func TestRootCommand(t *testing.T) {
	out := mustExecute(t, "--help")
	require.Contains(t, out, "Usage:")
	require.Contains(t, out, "Available Commands:")
	require.Contains(t, out, "--backend")
}

func TestQueueCommands(t *testing.T) {
	base := boltArgs(t)
	mustExecute(t, with(base, "queue", "push", "3", "third")...)
	mustExecute(t, with(base, "queue", "push", "1", "first")...)
	mustExecute(t, with(base, "queue", "push", "--", "-2", "negative")...)

	require.Equal(t, "-2\tnegative\n", mustExecute(t, with(base, "queue", "peek")...))
	require.Equal(t, "3\tthird\n", mustExecute(t, with(base, "queue", "peek", "--desc")...))
	require.Equal(t, "-2\tnegative\n1\tfirst\n3\tthird\n", mustExecute(t, with(base, "queue", "list")...))

	require.Equal(t, "3\tthird\n", mustExecute(t, with(base, "queue", "pop", "--desc")...))
	require.Equal(t, "-2\tnegative\n", mustExecute(t, with(base, "queue", "pop")...))
	require.Equal(t, "1\tfirst\n", mustExecute(t, with(base, "queue", "pop")...))

	_, _, err := execute(t, with(base, "queue", "pop")...)
	require.ErrorContains(t, err, "empty")

	_, _, err = execute(t, with(base, "queue", "push", "high", "x")...)
	require.ErrorContains(t, err, "priority")
}

func TestQueuesAreSeparate(t *testing.T) {
	base := boltArgs(t)
	mustExecute(t, with(base, "queue", "--name", "a", "push", "1", "in-a")...)
	mustExecute(t, with(base, "queue", "--name", "b", "push", "1", "in-b")...)
	require.Equal(t, "1\tin-b\n", mustExecute(t, with(base, "queue", "--name", "b", "peek")...))
}

func TestVectorCommands(t *testing.T) {
	base := []string{"--backend", "badger", "--path", t.TempDir()}
	require.Equal(t, "0\n1\n2\n", mustExecute(t, with(base, "vector", "push", "a", "b", "c")...))
	require.Equal(t, "3\n", mustExecute(t, with(base, "vector", "len")...))
	require.Equal(t, "b\n", mustExecute(t, with(base, "vector", "get", "1")...))
	require.Equal(t, "0\ta\n1\tb\n2\tc\n", mustExecute(t, with(base, "vector", "list")...))
	require.Equal(t, "c\n", mustExecute(t, with(base, "vector", "pop")...))
	require.Equal(t, "2\n", mustExecute(t, with(base, "vector", "len")...))

	_, _, err := execute(t, with(base, "vector", "get", "7")...)
	require.ErrorContains(t, err, "index out of range")
}

func TestVectorCompression(t *testing.T) {
	for _, algo := range []string{"none", "lz4", "zstd"} {
		t.Run(algo, func(t *testing.T) {
			base := with(boltArgs(t), "--compression", algo)
			value := strings.Repeat("abcd", 64)
			mustExecute(t, with(base, "vector", "push", value)...)
			require.Equal(t, value+"\n", mustExecute(t, with(base, "vector", "get", "0")...))
		})
	}
	_, _, err := execute(t, "--backend", "memory", "--compression", "snappy", "vector", "len")
	require.ErrorContains(t, err, "unknown compression")
}

func TestScanCommand(t *testing.T) {
	base := boltArgs(t)
	mustExecute(t, with(base, "vector", "--name", "vec", "push", "x", "y")...)
	mustExecute(t, with(base, "queue", "--name", "q", "push", "1", "z")...)

	out := mustExecute(t, with(base, "scan", "--prefix", "vec", "--hex", "--limit", "1")...)
	require.Equal(t, "766563 0000000000000002\n", out)

	out = mustExecute(t, with(base, "scan")...)
	require.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 4)

	out = mustExecute(t, with(base, "scan", "--reverse", "--limit", "1")...)
	require.True(t, strings.HasPrefix(out, `"vec`), out)
}

func TestDomain(t *testing.T) {
	base := boltArgs(t)
	mustExecute(t, with(base, "--domain", "tenant/", "queue", "push", "5", "five")...)

	require.Equal(t, "5\tfive\n", mustExecute(t, with(base, "--domain", "tenant/", "queue", "peek")...))
	_, _, err := execute(t, with(base, "queue", "peek")...)
	require.ErrorContains(t, err, "empty")

	out := mustExecute(t, with(base, "scan")...)
	require.True(t, strings.HasPrefix(out, `"tenant/queue`), out)
	out = mustExecute(t, with(base, "--domain", "tenant/", "scan")...)
	require.True(t, strings.HasPrefix(out, `"queue`), out)
}

func TestMetricsFlag(t *testing.T) {
	_, stderr, err := execute(t, "--backend", "memory", "--metrics", "queue", "push", "1", "a")
	require.NoError(t, err)
	require.Contains(t, stderr, "libkv_store_transactions_total{kind=update,outcome=commit} 1")
	require.Contains(t, stderr, "libkv_store_operations_total{op=set} 1")
}

func TestConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "libkv.toml")
	require.NoError(t, os.WriteFile(file, []byte(`
backend = "bolt"
path = "/var/lib/libkv.db"
log-level = "info"
domain = "from-file"
`), 0600))
	t.Setenv("LIBKV_LOG_LEVEL", "error")

	out := mustExecute(t, "--config", file, "--domain", "from-flag", "config")
	require.Contains(t, out, `backend = "bolt"`)
	require.Contains(t, out, `path = "/var/lib/libkv.db"`)
	require.Contains(t, out, `log-level = "error"`)
	require.Contains(t, out, `domain = "from-flag"`)
	require.Contains(t, out, `compression = "none"`)
}

func TestConfigInvalidOption(t *testing.T) {
	file := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(file, []byte("bogus = 1\n"), 0600))
	_, _, err := execute(t, "--config", file, "config")
	require.ErrorContains(t, err, "invalid option")
}

func TestUnknownBackend(t *testing.T) {
	_, _, err := execute(t, "--backend", "cassandra", "vector", "len")
	require.ErrorContains(t, err, "unknown backend")

	_, _, err = execute(t, "--backend", "badger", "vector", "len")
	require.ErrorContains(t, err, "needs --path")
}
