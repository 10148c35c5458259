package tools

import (
	"context"

	"github.com/draftkit/sleeper-mcp/cache"
	"github.com/draftkit/sleeper-mcp/logger"
	"github.com/draftkit/sleeper-mcp/sleeper"
)

// API is the slice of the Sleeper client the tools need. Tests substitute a
// fake.
type API interface {
	GetUser(ctx context.Context, username string) (*sleeper.User, error)
	GetUserLeagues(ctx context.Context, userID, season string) ([]sleeper.League, error)
	GetLeague(ctx context.Context, leagueID string) (*sleeper.League, error)
	GetLeagueUsers(ctx context.Context, leagueID string) ([]sleeper.User, error)
	GetLeagueRosters(ctx context.Context, leagueID string) ([]sleeper.Roster, error)
	GetPlayers(ctx context.Context, sport string) (map[string]sleeper.Player, error)
	GetTrendingPlayers(ctx context.Context, sport, addDrop string, hours, limit int) ([]sleeper.TrendingPlayer, error)
	GetPlayerStats(ctx context.Context, sport, season, seasonType string, week int) (map[string]sleeper.PlayerStats, error)
	GetMatchups(ctx context.Context, leagueID string, week int) ([]sleeper.Matchup, error)
	GetDraft(ctx context.Context, draftID string) (*sleeper.Draft, error)
	GetDraftPicks(ctx context.Context, draftID string) ([]sleeper.DraftPick, error)
	SearchPlayersByName(ctx context.Context, name, sport, position string) ([]sleeper.Player, error)
	HealthCheck(ctx context.Context) bool
}

var _ API = (*sleeper.Client)(nil)

// Toolset wires the Sleeper client and the cache into the MCP tool surface.
type Toolset struct {
	api   API
	cache *cache.Manager
	log   logger.Logger
}

func New(api API, c *cache.Manager, log logger.Logger) *Toolset {
	return &Toolset{api: api, cache: c, log: log}
}

// Registry builds the full tool registry.
func (t *Toolset) Registry() *Registry {
	r := NewRegistry()
	for _, tool := range []Tool{
		t.getUserLeaguesTool(),
		t.getLeagueInfoTool(),
		t.getLeagueRostersTool(),
		t.getLeagueUsersTool(),
		t.getRosterUserMappingTool(),
		t.getLeagueDraftTool(),
		t.getLeagueRostersWithDraftInfoTool(),
		t.searchPlayersTool(),
		t.getTrendingPlayersTool(),
		t.getPlayerStatsTool(),
		t.getMatchupsTool(),
		t.getMatchupScoresTool(),
		t.analyzeTradeTargetsTool(),
		t.evaluateRosterNeedsTool(),
		t.serverStatusTool(),
	} {
		if err := r.Register(tool); err != nil {
			// duplicate registration is a bug in this file
			t.log.Fatal("registering tool: %v", err)
		}
	}
	return r
}
