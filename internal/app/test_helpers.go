package app

import (
	"os"
	"testing"

	"github.com/specialistvlad/missiongraph/internal/registry"
	"github.com/specialistvlad/missiongraph/internal/testutil"
	"github.com/stretchr/testify/require"
)

// SetupAppTest creates a loaded app over assetsPath for system testing.
func SetupAppTest(t *testing.T, cfg Config, modules ...registry.Module) (*App, *testutil.SafeBuffer) {
	t.Helper()

	cfg.LogLevel = "debug"
	validated, err := NewConfig(cfg)
	require.NoError(t, err)

	logBuffer := &testutil.SafeBuffer{}
	testApp := NewApp(logBuffer, validated, modules...)
	require.NoError(t, testApp.Load(testApp.Context()))

	t.Cleanup(func() {
		if os.Getenv("MISSIONGRAPH_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}
