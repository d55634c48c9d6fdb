package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	err := newApp(&out).Run(append([]string{service, "--no-color", "--log-level", "error"}, args...))
	return out.String(), err
}

func TestParseCommand(t *testing.T) {
	out, err := run(t, "parse", "00:1A:2b:3C:4d:5E")
	require.NoError(t, err)
	assert.Contains(t, out, "00:1a:2b:3c:4d:5e")

	out, err = run(t, "parse", "00:1a:2b:3c:4d:5e", "00-1a-2b-3c-4d-5e")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2")
	assert.Contains(t, out, "00-1a-2b-3c-4d-5e")

	_, err = run(t, "parse")
	assert.Error(t, err)
}

func TestDemoWritesJournalThatReplays(t *testing.T) {
	journal := filepath.Join(t.TempDir(), "journal", "events.bin")

	out, err := run(t, "demo", "--capacity", "5", "--ttl", "30s", "--journal", journal)
	require.NoError(t, err)
	assert.Contains(t, out, "full")
	assert.Contains(t, out, "timeout")
	assert.Contains(t, out, "Inserts")

	out, err = run(t, "replay", filepath.Join(filepath.Dir(journal), "*.bin"))
	require.NoError(t, err)
	for _, want := range []string{"inserted", "full", "updated", "deleted", "timeout"} {
		assert.Contains(t, out, want)
	}
}

func TestDemoReadsConfigFile(t *testing.T) {
	config := filepath.Join(t.TempDir(), "table.toml")
	require.NoError(t, os.WriteFile(config, []byte("capacity = 3\ndefault_ttl_seconds = 10\nhash = \"crc32\"\n"), 0o644))

	out, err := run(t, "demo", "--config", config)
	require.NoError(t, err)
	assert.Contains(t, out, "Inserting 4 addresses into 3 slots")
}

func TestDemoRejectsBadOptions(t *testing.T) {
	_, err := run(t, "demo", "--capacity", "0")
	assert.Error(t, err)

	_, err = run(t, "demo", "--config", filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	zero := filepath.Join(t.TempDir(), "zero.toml")
	require.NoError(t, os.WriteFile(zero, []byte("capacity = 0\n"), 0o644))
	_, err = run(t, "demo", "--config", zero)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "capacity")
}

func TestReplayErrors(t *testing.T) {
	_, err := run(t, "replay")
	assert.Error(t, err)

	_, err = run(t, "replay", filepath.Join(t.TempDir(), "*.bin"))
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "no journal matches"))
}
