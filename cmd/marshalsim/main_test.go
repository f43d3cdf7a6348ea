package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{
		"--config", filepath.Join(dir, "absent.yaml"),
		"--db", filepath.Join(dir, "save", "marshals.db"),
		"--seed", "9",
	}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestRunThenShow(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, dir, "run", "-n", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "New campaign")
	assert.Contains(t, out, "1st turn")

	out, err = execute(t, dir, "run", "-n", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Resuming campaign")

	out, err = execute(t, dir, "show", "--events", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Factions")
	assert.Contains(t, out, "Marshals")
	assert.Contains(t, out, "(player)")
}

func TestShowWithoutCampaign(t *testing.T) {
	_, err := execute(t, t.TempDir(), "show")
	assert.Error(t, err)
}

func TestOrderArguments(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, dir, "run", "-n", "0")
	require.NoError(t, err)

	_, err = execute(t, dir, "order", "m1", "charge")
	assert.ErrorContains(t, err, "unknown action")

	out, err := execute(t, dir, "order", "ghost", "wait")
	require.NoError(t, err)
	assert.Contains(t, out, "unknown_agent")

	out, err = execute(t, dir, "order", "m1", "hold", "--if", "Strength +")
	require.NoError(t, err)
	assert.Contains(t, out, "bad_condition")

	_, err = execute(t, dir, "resolve", "no-such-id", "accept")
	assert.ErrorContains(t, err, "objection not found")

	_, err = execute(t, dir, "resolve", "no-such-id", "shrug")
	assert.Error(t, err)

	_, err = execute(t, dir, "standing", "cancel", "ghost")
	assert.Error(t, err)
}
