package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/draftkit/sleeper-mcp/cache"
	"github.com/draftkit/sleeper-mcp/sleeper"
)

func (t *Toolset) searchPlayersTool() Tool {
	return Tool{
		Name:        "search_players",
		Description: "Search for NFL players by name, optionally filtered by position",
		InputSchema: schema(`{
			"query": {"type": "string", "description": "Player name to search for"},
			"position": {"type": "string", "description": "Optional position filter (QB, RB, WR, TE, K, DEF)"}
		}`, "query"),
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			query, err := requiredStringArg(args, "query")
			if err != nil {
				return "", err
			}
			position := stringArg(args, "position", "")

			posKey := position
			if posKey == "" {
				posKey = "all"
			}
			key := fmt.Sprintf("search_players:%s:%s", strings.ToLower(query), strings.ToLower(posKey))
			if cached, found := cache.Get[string](t.cache, key, cache.PlayerData); found {
				return cached, nil
			}

			players, err := t.api.SearchPlayersByName(ctx, query, "nfl", position)
			if err != nil {
				return "", err
			}

			var b strings.Builder
			if len(players) == 0 {
				fmt.Fprintf(&b, "No players matched %q", query)
				if position != "" {
					fmt.Fprintf(&b, " at %s", strings.ToUpper(position))
				}
				b.WriteString(".\n")
			} else {
				fmt.Fprintf(&b, "Players matching %q: %d\n", query, len(players))
				for _, p := range players {
					team := p.Team
					if team == "" {
						team = "FA"
					}
					line := fmt.Sprintf("- %s (%s, %s, id %s)", p.Name(), p.Position, team, p.PlayerID)
					if p.InjuryStatus != "" {
						line += " [" + p.InjuryStatus + "]"
					}
					b.WriteString(line + "\n")
				}
			}

			result := b.String()
			t.cache.SetWithTTL(key, result, cache.PlayerData, time.Hour)
			return result, nil
		},
	}
}

func (t *Toolset) getTrendingPlayersTool() Tool {
	return Tool{
		Name:        "get_trending_players",
		Description: "Get the most added or dropped players over the last 24 hours",
		InputSchema: schema(`{
			"sport": {"type": "string", "description": "Sport (default: nfl)"},
			"add_drop": {"type": "string", "description": "\"add\" or \"drop\" (default: add)", "enum": ["add", "drop"]}
		}`),
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			sport := stringArg(args, "sport", "nfl")
			addDrop := stringArg(args, "add_drop", "add")
			if addDrop != "add" && addDrop != "drop" {
				return fmt.Sprintf("add_drop must be \"add\" or \"drop\", got %q.", addDrop), nil
			}

			key := fmt.Sprintf("trending_players:%s:%s", sport, addDrop)
			if cached, found := cache.Get[string](t.cache, key, cache.TrendingPlayers); found {
				return cached, nil
			}

			trending, err := t.api.GetTrendingPlayers(ctx, sport, addDrop, 24, 25)
			if err != nil {
				return "", err
			}
			if len(trending) == 0 {
				return "No trending player data available right now.", nil
			}

			// resolve ids to names from the player catalog; on failure the
			// raw ids are still useful
			names := map[string]string{}
			if catalog, err := t.players(ctx, sport); err == nil {
				for _, tp := range trending {
					if p, ok := catalog[tp.PlayerID]; ok {
						names[tp.PlayerID] = fmt.Sprintf("%s (%s, %s)", p.Name(), p.Position, p.Team)
					}
				}
			}

			verb := "added"
			if addDrop == "drop" {
				verb = "dropped"
			}
			var b strings.Builder
			fmt.Fprintf(&b, "Most %s players (last 24h):\n", verb)
			for i, tp := range trending {
				label := names[tp.PlayerID]
				if label == "" {
					label = "player " + tp.PlayerID
				}
				fmt.Fprintf(&b, "%d. %s: %d %ss\n", i+1, label, tp.Count, addDrop)
			}

			result := b.String()
			t.cache.SetWithTTL(key, result, cache.TrendingPlayers, 30*time.Minute)
			return result, nil
		},
	}
}

func (t *Toolset) getPlayerStatsTool() Tool {
	return Tool{
		Name:        "get_player_stats",
		Description: "Get season statistics for a specific player",
		InputSchema: schema(`{
			"player_id": {"type": "string", "description": "Sleeper player ID"},
			"season": {"type": "string", "description": "Season year (default: current season)"}
		}`, "player_id"),
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			playerID, err := requiredStringArg(args, "player_id")
			if err != nil {
				return "", err
			}
			season := stringArg(args, "season", defaultSeason())

			key := fmt.Sprintf("player_stats:%s:%s", playerID, season)
			if cached, found := cache.Get[string](t.cache, key, cache.PlayerData); found {
				return cached, nil
			}

			stats, err := t.api.GetPlayerStats(ctx, "nfl", season, "regular", 0)
			if err != nil {
				return "", err
			}
			ps, ok := stats[playerID]
			if !ok || len(ps.Stats) == 0 {
				return fmt.Sprintf("No %s stats found for player %s.", season, playerID), nil
			}

			label := "player " + playerID
			if catalog, err := t.players(ctx, "nfl"); err == nil {
				if p, ok := catalog[playerID]; ok {
					label = fmt.Sprintf("%s (%s, %s)", p.Name(), p.Position, p.Team)
				}
			}

			keys := make([]string, 0, len(ps.Stats))
			for k := range ps.Stats {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			var b strings.Builder
			fmt.Fprintf(&b, "%s season stats for %s:\n", season, label)
			for _, k := range keys {
				fmt.Fprintf(&b, "- %s: %g\n", k, ps.Stats[k])
			}

			result := b.String()
			t.cache.SetWithTTL(key, result, cache.PlayerData, time.Hour)
			return result, nil
		},
	}
}

// players fetches the full catalog through the cache: the payload is
// megabytes, so every tool shares one entry under the catalog key.
func (t *Toolset) players(ctx context.Context, sport string) (map[string]sleeper.Player, error) {
	key := "players:" + sport
	if cached, found := cache.Get[map[string]sleeper.Player](t.cache, key, cache.PlayerData); found {
		return cached, nil
	}
	catalog, err := t.api.GetPlayers(ctx, sport)
	if err != nil {
		return nil, err
	}
	t.cache.Set(key, catalog, cache.PlayerData)
	return catalog, nil
}
