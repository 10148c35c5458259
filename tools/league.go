package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/draftkit/sleeper-mcp/cache"
	"github.com/draftkit/sleeper-mcp/sleeper"
)

func (t *Toolset) getUserLeaguesTool() Tool {
	return Tool{
		Name:        "get_user_leagues",
		Description: "Get all leagues for a username in a specific season",
		InputSchema: schema(`{
			"username": {"type": "string", "description": "Sleeper username to look up"},
			"season": {"type": "string", "description": "Season year (default: current season)"}
		}`, "username"),
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			username, err := requiredStringArg(args, "username")
			if err != nil {
				return "", err
			}
			season := stringArg(args, "season", defaultSeason())

			key := fmt.Sprintf("user_leagues:%s:%s", username, season)
			if cached, found := cache.Get[string](t.cache, key, cache.LeagueSettings); found {
				return cached, nil
			}

			user, err := t.api.GetUser(ctx, username)
			if err != nil {
				return "", err
			}
			if user == nil {
				return fmt.Sprintf("User %q not found. Check the spelling and make sure the profile is public.", username), nil
			}

			leagues, err := t.api.GetUserLeagues(ctx, user.UserID, season)
			if err != nil {
				return "", err
			}

			var b strings.Builder
			fmt.Fprintf(&b, "Leagues for %s (%s season): %d\n", displayName(*user), season, len(leagues))
			for _, l := range leagues {
				fmt.Fprintf(&b, "- %s (id %s): %d teams, %s, status %s\n",
					l.Name, l.LeagueID, l.TotalRosters, l.SeasonType, l.Status)
			}
			if len(leagues) == 0 {
				b.WriteString("No leagues found for this season.\n")
			}

			result := b.String()
			t.cache.SetWithTTL(key, result, cache.LeagueSettings, time.Hour)
			return result, nil
		},
	}
}

func (t *Toolset) getLeagueInfoTool() Tool {
	return Tool{
		Name:        "get_league_info",
		Description: "Get detailed information about a specific league",
		InputSchema: schema(`{
			"league_id": {"type": "string", "description": "League ID to retrieve information for"}
		}`, "league_id"),
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			leagueID, err := requiredStringArg(args, "league_id")
			if err != nil {
				return "", err
			}

			key := "league_info:" + leagueID
			if cached, found := cache.Get[string](t.cache, key, cache.LeagueSettings); found {
				return cached, nil
			}

			league, err := t.api.GetLeague(ctx, leagueID)
			if err != nil {
				return "", err
			}
			if league == nil {
				return leagueNotFound(leagueID), nil
			}

			var b strings.Builder
			fmt.Fprintf(&b, "League: %s (id %s)\n", league.Name, league.LeagueID)
			fmt.Fprintf(&b, "Season: %s (%s), status %s\n", league.Season, league.SeasonType, league.Status)
			fmt.Fprintf(&b, "Teams: %d, playoff teams: %d\n", league.TotalRosters, league.Settings.PlayoffTeams)
			fmt.Fprintf(&b, "Roster positions: %s\n", strings.Join(league.RosterPositions, ", "))
			if len(league.ScoringSettings) > 0 {
				fmt.Fprintf(&b, "Scoring: %s\n", summarizeScoring(league.ScoringSettings))
			}
			if league.DraftID != "" {
				fmt.Fprintf(&b, "Draft id: %s\n", league.DraftID)
			}

			result := b.String()
			t.cache.Set(key, result, cache.LeagueSettings)
			return result, nil
		},
	}
}

func (t *Toolset) getLeagueRostersTool() Tool {
	return Tool{
		Name:        "get_league_rosters",
		Description: "Get all team rosters in a league",
		InputSchema: schema(`{
			"league_id": {"type": "string", "description": "League ID to retrieve rosters for"}
		}`, "league_id"),
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			leagueID, err := requiredStringArg(args, "league_id")
			if err != nil {
				return "", err
			}

			key := "league_rosters:" + leagueID
			if cached, found := cache.Get[string](t.cache, key, cache.RosterData); found {
				return cached, nil
			}

			rosters, err := t.api.GetLeagueRosters(ctx, leagueID)
			if err != nil {
				return "", err
			}
			if len(rosters) == 0 {
				return leagueNotFound(leagueID), nil
			}

			owners := t.ownerNames(ctx, leagueID)

			var b strings.Builder
			fmt.Fprintf(&b, "Rosters in league %s: %d\n", leagueID, len(rosters))
			for _, r := range rosters {
				owner := owners[r.OwnerID]
				if owner == "" {
					owner = fmt.Sprintf("roster %d", r.RosterID)
				}
				fmt.Fprintf(&b, "- Roster %d (%s): record %d-%d-%d, %d players, %d starters\n",
					r.RosterID, owner, r.Settings.Wins, r.Settings.Losses, r.Settings.Ties,
					len(r.Players), len(r.Starters))
			}

			result := b.String()
			t.cache.Set(key, result, cache.RosterData)
			return result, nil
		},
	}
}

func (t *Toolset) getLeagueUsersTool() Tool {
	return Tool{
		Name:        "get_league_users",
		Description: "Get all users in a league",
		InputSchema: schema(`{
			"league_id": {"type": "string", "description": "League ID to retrieve users for"}
		}`, "league_id"),
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			leagueID, err := requiredStringArg(args, "league_id")
			if err != nil {
				return "", err
			}

			key := "league_users:" + leagueID
			if cached, found := cache.Get[string](t.cache, key, cache.LeagueSettings); found {
				return cached, nil
			}

			users, err := t.api.GetLeagueUsers(ctx, leagueID)
			if err != nil {
				return "", err
			}
			if len(users) == 0 {
				return leagueNotFound(leagueID), nil
			}

			var b strings.Builder
			fmt.Fprintf(&b, "Users in league %s: %d\n", leagueID, len(users))
			for _, u := range users {
				line := fmt.Sprintf("- %s (id %s)", displayName(u), u.UserID)
				if u.IsOwner {
					line += " [commissioner]"
				}
				b.WriteString(line + "\n")
			}

			result := b.String()
			t.cache.SetWithTTL(key, result, cache.LeagueSettings, time.Hour)
			return result, nil
		},
	}
}

func (t *Toolset) getRosterUserMappingTool() Tool {
	return Tool{
		Name:        "get_roster_user_mapping",
		Description: "Map each roster ID in a league to the user who owns it",
		InputSchema: schema(`{
			"league_id": {"type": "string", "description": "League ID to map"}
		}`, "league_id"),
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			leagueID, err := requiredStringArg(args, "league_id")
			if err != nil {
				return "", err
			}

			key := "roster_user_mapping:" + leagueID
			if cached, found := cache.Get[string](t.cache, key, cache.RosterData); found {
				return cached, nil
			}

			rosters, err := t.api.GetLeagueRosters(ctx, leagueID)
			if err != nil {
				return "", err
			}
			if len(rosters) == 0 {
				return leagueNotFound(leagueID), nil
			}
			owners := t.ownerNames(ctx, leagueID)

			sort.Slice(rosters, func(i, j int) bool { return rosters[i].RosterID < rosters[j].RosterID })

			var b strings.Builder
			fmt.Fprintf(&b, "Roster ownership for league %s:\n", leagueID)
			for _, r := range rosters {
				owner := owners[r.OwnerID]
				if owner == "" {
					owner = "(unowned)"
				}
				fmt.Fprintf(&b, "- Roster %d -> %s\n", r.RosterID, owner)
			}

			result := b.String()
			t.cache.SetWithTTL(key, result, cache.RosterData, 15*time.Minute)
			return result, nil
		},
	}
}

func (t *Toolset) getLeagueDraftTool() Tool {
	return Tool{
		Name:        "get_league_draft",
		Description: "Get draft information and pick-by-pick results for a league",
		InputSchema: schema(`{
			"league_id": {"type": "string", "description": "League ID whose draft to retrieve"}
		}`, "league_id"),
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			leagueID, err := requiredStringArg(args, "league_id")
			if err != nil {
				return "", err
			}

			key := "league_draft:" + leagueID
			if cached, found := cache.Get[string](t.cache, key, cache.LeagueSettings); found {
				return cached, nil
			}

			league, err := t.api.GetLeague(ctx, leagueID)
			if err != nil {
				return "", err
			}
			if league == nil {
				return leagueNotFound(leagueID), nil
			}
			if league.DraftID == "" {
				return fmt.Sprintf("League %s has no draft.", league.Name), nil
			}

			draft, err := t.api.GetDraft(ctx, league.DraftID)
			if err != nil {
				return "", err
			}
			if draft == nil {
				return fmt.Sprintf("Draft %s not found for league %s.", league.DraftID, league.Name), nil
			}

			picks, err := t.api.GetDraftPicks(ctx, league.DraftID)
			if err != nil {
				return "", err
			}

			var b strings.Builder
			fmt.Fprintf(&b, "Draft for %s: %s %s, status %s\n", league.Name, draft.Season, draft.Type, draft.Status)
			fmt.Fprintf(&b, "Picks: %d\n", len(picks))
			for _, p := range picks {
				name := p.Metadata["first_name"] + " " + p.Metadata["last_name"]
				if strings.TrimSpace(name) == "" {
					name = p.PlayerID
				}
				fmt.Fprintf(&b, "- %d.%02d roster %d: %s\n", p.Round, p.PickNo, p.RosterID, strings.TrimSpace(name))
			}

			result := b.String()
			t.cache.SetWithTTL(key, result, cache.LeagueSettings, 24*time.Hour)
			return result, nil
		},
	}
}

func (t *Toolset) getLeagueRostersWithDraftInfoTool() Tool {
	return Tool{
		Name:        "get_league_rosters_with_draft_info",
		Description: "Get all rosters in a league with the draft round and pick for each starter",
		InputSchema: schema(`{
			"league_id": {"type": "string", "description": "League ID to retrieve rosters for"}
		}`, "league_id"),
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			leagueID, err := requiredStringArg(args, "league_id")
			if err != nil {
				return "", err
			}

			key := "league_rosters_with_draft:" + leagueID
			if cached, found := cache.Get[string](t.cache, key, cache.RosterData); found {
				return cached, nil
			}

			// rosters are required; league, users, and the player catalog
			// degrade to partial output on failure
			var (
				league  *sleeper.League
				rosters []sleeper.Roster
				users   []sleeper.User
				catalog map[string]sleeper.Player
			)
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				var err error
				rosters, err = t.api.GetLeagueRosters(gctx, leagueID)
				return err
			})
			g.Go(func() error {
				var err error
				if league, err = t.api.GetLeague(gctx, leagueID); err != nil {
					t.log.Warn("fetching league %s: %v", leagueID, err)
				}
				return nil
			})
			g.Go(func() error {
				var err error
				if users, err = t.api.GetLeagueUsers(gctx, leagueID); err != nil {
					t.log.Warn("fetching users for league %s: %v", leagueID, err)
				}
				return nil
			})
			g.Go(func() error {
				var err error
				if catalog, err = t.players(gctx, "nfl"); err != nil {
					t.log.Warn("fetching player catalog: %v", err)
				}
				return nil
			})
			if err := g.Wait(); err != nil {
				return "", err
			}
			if len(rosters) == 0 {
				return fmt.Sprintf("No rosters found for league %s.", leagueID), nil
			}

			picksByPlayer := map[string]sleeper.DraftPick{}
			if league != nil && league.DraftID != "" {
				if picks, err := t.api.GetDraftPicks(ctx, league.DraftID); err != nil {
					t.log.Warn("fetching draft %s: %v", league.DraftID, err)
				} else {
					for _, p := range picks {
						if p.PlayerID != "" {
							picksByPlayer[p.PlayerID] = p
						}
					}
				}
			}

			names := make(map[string]string, len(users))
			for _, u := range users {
				names[u.UserID] = displayName(u)
			}

			var b strings.Builder
			fmt.Fprintf(&b, "Rosters with draft info for league %s", leagueID)
			if len(picksByPlayer) > 0 {
				fmt.Fprintf(&b, " (%d drafted players)", len(picksByPlayer))
			} else {
				b.WriteString(" (no draft data)")
			}
			b.WriteString(":\n")

			for _, r := range rosters {
				owner := names[r.OwnerID]
				if owner == "" {
					owner = "user " + r.OwnerID
				}
				drafted := 0
				for _, id := range r.Players {
					if _, ok := picksByPlayer[id]; ok {
						drafted++
					}
				}
				fmt.Fprintf(&b, "- Roster %d (%s): %d players, %d starters, %d drafted, %d free agent pickups\n",
					r.RosterID, owner, len(r.Players), len(r.Starters), drafted, len(r.Players)-drafted)
				for _, id := range r.Starters {
					label := id
					if p, ok := catalog[id]; ok {
						label = fmt.Sprintf("%s (%s)", p.Name(), p.Position)
					}
					if pick, ok := picksByPlayer[id]; ok {
						by := names[pick.PickedBy]
						if by == "" {
							by = "user " + pick.PickedBy
						}
						fmt.Fprintf(&b, "  %s: drafted %d.%02d by %s\n", label, pick.Round, pick.PickNo, by)
					} else {
						fmt.Fprintf(&b, "  %s: free agent pickup\n", label)
					}
				}
			}

			result := b.String()
			t.cache.Set(key, result, cache.RosterData)
			t.log.Info("retrieved %d rosters with draft info for league %s", len(rosters), leagueID)
			return result, nil
		},
	}
}

// ownerNames maps user_id -> display name for a league. Failures degrade to
// an empty map; roster listings still render without names.
func (t *Toolset) ownerNames(ctx context.Context, leagueID string) map[string]string {
	users, err := t.api.GetLeagueUsers(ctx, leagueID)
	if err != nil {
		t.log.Warn("fetching users for league %s: %v", leagueID, err)
		return map[string]string{}
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.UserID] = displayName(u)
	}
	return names
}

func displayName(u sleeper.User) string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if u.Username != "" {
		return u.Username
	}
	return u.UserID
}

func leagueNotFound(leagueID string) string {
	return fmt.Sprintf("League %q not found. Verify the league ID and that you have access to it.", leagueID)
}

// summarizeScoring picks out the handful of settings people actually ask
// about.
func summarizeScoring(scoring map[string]float64) string {
	var parts []string
	for _, k := range []string{"rec", "pass_td", "rush_td", "rec_td", "pass_int", "fum_lost"} {
		if v, ok := scoring[k]; ok {
			parts = append(parts, fmt.Sprintf("%s=%g", k, v))
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%d settings", len(scoring))
	}
	return strings.Join(parts, ", ")
}

// defaultSeason returns the NFL season for today: seasons roll over in
// March, well after the Super Bowl.
func defaultSeason() string {
	now := time.Now()
	year := now.Year()
	if now.Month() < time.March {
		year--
	}
	return fmt.Sprintf("%d", year)
}
