package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/specialistvlad/missiongraph/internal/cli"
	"github.com/specialistvlad/missiongraph/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Help(t *testing.T) {
	// --- Arrange ---
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(out, &bytes.Buffer{}, []string{"--help"})

	// --- Assert ---
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Usage:")
	assert.Contains(t, out.String(), "palette")
}

func TestRun_Palette(t *testing.T) {
	root := testutil.WriteFiles(t, map[string]string{
		"kinds/escort.hcl": `
kind "EscortQuest" {
  parent       = "MainQuest"
  category     = "Quests"
  display_name = "Escort"
}
`,
	})
	out := &bytes.Buffer{}

	err := run(out, &bytes.Buffer{}, []string{"palette", "--assets", root, "--no-color"})

	require.NoError(t, err)
	assert.Contains(t, out.String(), `EscortQuest "Escort" [Quests] from kinds/escort`)
}

func TestRun_RootKindPanicIsRecovered(t *testing.T) {
	// --- Arrange ---
	// A root kind no module registers makes registry validation panic
	// inside app.NewApp.
	args := []string{"palette", "--assets", t.TempDir(), "--root-kind", "Nothing"}

	// --- Act ---
	err := run(&bytes.Buffer{}, &bytes.Buffer{}, args)

	// --- Assert ---
	require.Error(t, err)
	assert.Contains(t, err.Error(), "application startup panicked")
	assert.Contains(t, err.Error(), "registry validation failed")
}

func TestRun_UsageError(t *testing.T) {
	err := run(&bytes.Buffer{}, &bytes.Buffer{}, []string{"palette"})

	var exitErr *cli.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, cli.ExitUsage, exitErr.Code)
}
