package env

import (
	"fmt"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftkit/sleeper-mcp/logger"
)

func newTestCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("log-level", "", "")
	cmd.Flags().String("custom", "", "")
	return cmd
}

func TestFlagOrEnvPrefersFlag(t *testing.T) {
	cmd := newTestCmd()
	require.NoError(t, cmd.Flags().Set("custom", "from-flag"))
	t.Setenv("TEST_CUSTOM", "from-env")

	assert.Equal(t, "from-flag", FlagOrEnv(cmd, "custom", "TEST_CUSTOM", "fallback"))
}

func TestFlagOrEnvFallsBackToEnv(t *testing.T) {
	cmd := newTestCmd()
	t.Setenv("TEST_CUSTOM", "from-env")

	assert.Equal(t, "from-env", FlagOrEnv(cmd, "custom", "TEST_CUSTOM", "fallback"))
}

func TestFlagOrEnvDefault(t *testing.T) {
	cmd := newTestCmd()
	assert.Equal(t, "fallback", FlagOrEnv(cmd, "custom", "TEST_UNSET_CUSTOM", "fallback"))
}

func TestLogLevel(t *testing.T) {
	cmd := newTestCmd()
	assert.Equal(t, logger.LevelInfo, LogLevel(cmd))

	require.NoError(t, cmd.Flags().Set("log-level", "debug"))
	assert.Equal(t, logger.LevelDebug, LogLevel(cmd))
}

func TestTTLOverrides(t *testing.T) {
	t.Setenv("SLEEPER_MCP_TTL_PLAYER_DATA", "2h")
	t.Setenv("SLEEPER_MCP_TTL_MATCHUP_DATA", "90s")

	opts := TTLOverrides(nil)
	assert.Len(t, opts, 2)
}

func TestTTLOverridesSkipsInvalid(t *testing.T) {
	t.Setenv("SLEEPER_MCP_TTL_PLAYER_DATA", "not-a-duration")

	var warnings []string
	opts := TTLOverrides(func(format string, args ...interface{}) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	})
	assert.Empty(t, opts)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "SLEEPER_MCP_TTL_PLAYER_DATA")
}

func TestTTLOverridesDayUnits(t *testing.T) {
	t.Setenv("SLEEPER_MCP_TTL_LEAGUE_SETTINGS", "1d")

	opts := TTLOverrides(nil)
	assert.Len(t, opts, 1)
}
