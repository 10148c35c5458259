package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/draftkit/sleeper-mcp/cache"
	"github.com/draftkit/sleeper-mcp/sleeper"
)

const (
	minWeek = 1
	maxWeek = 22 // 18 regular season weeks plus playoffs
)

func validWeek(week int) bool {
	return week >= minWeek && week <= maxWeek
}

func weekError(week int) string {
	return fmt.Sprintf("Week %d is out of range. Use 1-18 for the regular season and 19-22 for playoffs.", week)
}

// leagueWeek is the fan-out every matchup tool needs: matchups plus the
// roster-to-owner mapping, fetched concurrently.
type leagueWeek struct {
	matchups []sleeper.Matchup
	owners   map[int]string // roster_id -> display name
}

func (t *Toolset) fetchLeagueWeek(ctx context.Context, leagueID string, week int) (*leagueWeek, error) {
	var (
		matchups []sleeper.Matchup
		rosters  []sleeper.Roster
		users    []sleeper.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		matchups, err = t.api.GetMatchups(gctx, leagueID, week)
		return err
	})
	g.Go(func() error {
		var err error
		rosters, err = t.api.GetLeagueRosters(gctx, leagueID)
		return err
	})
	g.Go(func() error {
		var err error
		users, err = t.api.GetLeagueUsers(gctx, leagueID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.UserID] = displayName(u)
	}
	owners := make(map[int]string, len(rosters))
	for _, r := range rosters {
		if name, ok := names[r.OwnerID]; ok {
			owners[r.RosterID] = name
		}
	}
	return &leagueWeek{matchups: matchups, owners: owners}, nil
}

func (lw *leagueWeek) teamName(rosterID int) string {
	if name, ok := lw.owners[rosterID]; ok {
		return name
	}
	return fmt.Sprintf("Roster %d", rosterID)
}

// isLive reports whether scoring appears to be in progress: points on the
// board with per-player breakdowns still attached means the week is being
// scored right now, so the cache entry gets the short TTL.
func (lw *leagueWeek) isLive() bool {
	for _, m := range lw.matchups {
		if m.Points > 0 && len(m.PlayersPoints) > 0 {
			return true
		}
	}
	return false
}

// pairings groups the flat per-roster matchup rows into head-to-head pairs.
// Rows without a matchup id are byes.
func (lw *leagueWeek) pairings() ([][]sleeper.Matchup, []sleeper.Matchup) {
	byID := make(map[int][]sleeper.Matchup)
	var ids []int
	var byes []sleeper.Matchup
	for _, m := range lw.matchups {
		if m.MatchupID == nil {
			byes = append(byes, m)
			continue
		}
		if _, seen := byID[*m.MatchupID]; !seen {
			ids = append(ids, *m.MatchupID)
		}
		byID[*m.MatchupID] = append(byID[*m.MatchupID], m)
	}
	sort.Ints(ids)
	pairs := make([][]sleeper.Matchup, 0, len(ids))
	for _, id := range ids {
		pairs = append(pairs, byID[id])
	}
	return pairs, byes
}

func (t *Toolset) getMatchupsTool() Tool {
	return Tool{
		Name:        "get_matchups",
		Description: "Get head-to-head matchups for a league and week",
		InputSchema: schema(`{
			"league_id": {"type": "string", "description": "League ID to retrieve matchups for"},
			"week": {"type": "integer", "description": "Week number (1-22)"}
		}`, "league_id", "week"),
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			leagueID, err := requiredStringArg(args, "league_id")
			if err != nil {
				return "", err
			}
			week, err := requiredIntArg(args, "week")
			if err != nil {
				return "", err
			}
			if !validWeek(week) {
				return weekError(week), nil
			}

			key := fmt.Sprintf("matchups:%s:%d", leagueID, week)
			if cached, found := cache.Get[string](t.cache, key, cache.MatchupData); found {
				return cached, nil
			}

			lw, err := t.fetchLeagueWeek(ctx, leagueID, week)
			if err != nil {
				return "", err
			}
			if len(lw.matchups) == 0 {
				return fmt.Sprintf("No matchups found for week %d in league %s. The week may not have started yet.", week, leagueID), nil
			}

			pairs, byes := lw.pairings()
			var b strings.Builder
			fmt.Fprintf(&b, "Week %d matchups for league %s:\n", week, leagueID)
			for _, teams := range pairs {
				var sides []string
				for _, m := range teams {
					sides = append(sides, fmt.Sprintf("%s %.2f", lw.teamName(m.RosterID), m.Points))
				}
				fmt.Fprintf(&b, "- %s\n", strings.Join(sides, " vs "))
			}
			for _, m := range byes {
				fmt.Fprintf(&b, "- %s (bye)\n", lw.teamName(m.RosterID))
			}

			result := b.String()
			t.cache.SetWithTTL(key, result, cache.MatchupData, t.cache.MatchupTTL(lw.isLive()))
			return result, nil
		},
	}
}

func (t *Toolset) getMatchupScoresTool() Tool {
	return Tool{
		Name:        "get_matchup_scores",
		Description: "Get detailed scoring for each matchup in a week, including top starters",
		InputSchema: schema(`{
			"league_id": {"type": "string", "description": "League ID to retrieve scores for"},
			"week": {"type": "integer", "description": "Week number (1-22)"}
		}`, "league_id", "week"),
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			leagueID, err := requiredStringArg(args, "league_id")
			if err != nil {
				return "", err
			}
			week, err := requiredIntArg(args, "week")
			if err != nil {
				return "", err
			}
			if !validWeek(week) {
				return weekError(week), nil
			}

			key := fmt.Sprintf("matchup_scores:%s:%d", leagueID, week)
			if cached, found := cache.Get[string](t.cache, key, cache.MatchupData); found {
				return cached, nil
			}

			lw, err := t.fetchLeagueWeek(ctx, leagueID, week)
			if err != nil {
				return "", err
			}
			if len(lw.matchups) == 0 {
				return fmt.Sprintf("No scores found for week %d in league %s.", week, leagueID), nil
			}

			pairs, byes := lw.pairings()
			var b strings.Builder
			fmt.Fprintf(&b, "Week %d scores for league %s:\n", week, leagueID)
			for _, teams := range pairs {
				sort.Slice(teams, func(a, c int) bool { return teams[a].Points > teams[c].Points })
				var sides []string
				for _, m := range teams {
					sides = append(sides, fmt.Sprintf("%s %.2f", lw.teamName(m.RosterID), m.Points))
				}
				b.WriteString(strings.Join(sides, " vs ") + "\n")
				for _, m := range teams {
					if top := topScorers(m, 3); top != "" {
						fmt.Fprintf(&b, "  %s top: %s\n", lw.teamName(m.RosterID), top)
					}
				}
			}
			for _, m := range byes {
				fmt.Fprintf(&b, "%s %.2f (bye)\n", lw.teamName(m.RosterID), m.Points)
			}

			result := b.String()
			t.cache.SetWithTTL(key, result, cache.MatchupData, t.cache.MatchupTTL(lw.isLive()))
			return result, nil
		},
	}
}

// topScorers lists a team's n highest-scoring players for the week.
func topScorers(m sleeper.Matchup, n int) string {
	type score struct {
		id  string
		pts float64
	}
	scores := make([]score, 0, len(m.PlayersPoints))
	for id, pts := range m.PlayersPoints {
		scores = append(scores, score{id, pts})
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].pts != scores[j].pts {
			return scores[i].pts > scores[j].pts
		}
		return scores[i].id < scores[j].id
	})
	if len(scores) > n {
		scores = scores[:n]
	}
	parts := make([]string, 0, len(scores))
	for _, s := range scores {
		parts = append(parts, fmt.Sprintf("%s %.1f", s.id, s.pts))
	}
	return strings.Join(parts, ", ")
}
