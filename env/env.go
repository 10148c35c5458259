package env

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	str2duration "github.com/xhit/go-str2duration/v2"

	"github.com/draftkit/sleeper-mcp/cache"
	"github.com/draftkit/sleeper-mcp/logger"
)

// FlagOrEnv will try and get a flag from the cobra.Command and if not found, look it up in the environment
// and fallback to defaultValue if non found
func FlagOrEnv(cmd *cobra.Command, flagName string, envName string, defaultValue string) string {
	flagValue, _ := cmd.Flags().GetString(flagName)
	if flagValue != "" {
		return flagValue
	}
	if val, ok := os.LookupEnv(envName); ok {
		return val
	}
	return defaultValue
}

func LogLevel(cmd *cobra.Command) logger.LogLevel {
	level := FlagOrEnv(cmd, "log-level", "SLEEPER_MCP_LOG_LEVEL", "info")
	return logger.ParseLevel(level)
}

// ttlEnvPrefix is the prefix for per-category cache TTL overrides. The
// category name is upper-cased, so SLEEPER_MCP_TTL_PLAYER_DATA=2h overrides
// the player_data category. Values use Go duration syntax plus day units,
// e.g. "90m", "1d".
const ttlEnvPrefix = "SLEEPER_MCP_TTL_"

// TTLOverrides reads per-category cache TTLs from the environment. Unknown
// categories and unparseable durations are reported through warn and
// skipped.
func TTLOverrides(warn func(format string, args ...interface{})) []cache.Option {
	var opts []cache.Option
	for _, category := range cache.Categories() {
		envName := ttlEnvPrefix + strings.ToUpper(string(category))
		val, ok := os.LookupEnv(envName)
		if !ok || val == "" {
			continue
		}
		dur, err := str2duration.ParseDuration(val)
		if err != nil {
			if warn != nil {
				warn("ignoring %s=%q: %v", envName, val, err)
			}
			continue
		}
		opts = append(opts, cache.WithTTL(category, dur))
	}
	return opts
}
