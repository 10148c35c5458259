package tools

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/draftkit/sleeper-mcp/cache"
)

var serverStart = time.Now()

// processMemory returns the resident set size of this process in bytes.
func processMemory() uint64 {
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if info, err := p.MemoryInfo(); err == nil {
			return info.RSS
		}
	}
	// Fallback if gopsutil fails
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.Sys
}

func systemMemory() uint64 {
	if vmStat, err := mem.VirtualMemory(); err == nil {
		return vmStat.Total
	}
	return 0
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func (t *Toolset) serverStatusTool() Tool {
	return Tool{
		Name:        "server_status",
		Description: "Report server health, cache statistics, and upstream API reachability",
		InputSchema: schema(`{}`),
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			stats := t.cache.Stats()
			info := t.cache.CacheInfo()

			upstream := "ok"
			if !t.api.HealthCheck(ctx) {
				upstream = "unreachable"
			}

			var b strings.Builder
			b.WriteString("Server status:\n")
			fmt.Fprintf(&b, "- Uptime: %s\n", time.Since(serverStart).Round(time.Second))
			fmt.Fprintf(&b, "- Sleeper API: %s\n", upstream)
			fmt.Fprintf(&b, "- Process memory: %s (system total %s)\n",
				formatBytes(processMemory()), formatBytes(systemMemory()))
			fmt.Fprintf(&b, "- Goroutines: %d\n", runtime.NumGoroutine())
			b.WriteString("Cache:\n")
			fmt.Fprintf(&b, "- Entries: %d\n", stats.TotalEntries)
			fmt.Fprintf(&b, "- Requests: %d (hits %d, misses %d, hit rate %.2f%%)\n",
				stats.TotalRequests, stats.Hits, stats.Misses, stats.HitRatePercent)
			fmt.Fprintf(&b, "- Evictions: %d, invalidations: %d\n",
				stats.Evictions, stats.Invalidations)
			if info.TotalEntries > 0 {
				fmt.Fprintf(&b, "- Expired awaiting sweep: %d\n", info.ExpiredEntries)
				fmt.Fprintf(&b, "- Oldest entry age: %s, newest: %s\n",
					info.OldestEntryAge.Round(time.Second), info.NewestEntryAge.Round(time.Second))
				categories := make([]string, 0, len(info.EntriesByCategory))
				for c := range info.EntriesByCategory {
					categories = append(categories, string(c))
				}
				sort.Strings(categories)
				b.WriteString("Cache by category:\n")
				for _, c := range categories {
					ci := info.EntriesByCategory[cache.Category(c)]
					fmt.Fprintf(&b, "- %s: %d entries (%d expired)\n", c, ci.Count, ci.Expired)
				}
			}
			return b.String(), nil
		},
	}
}
