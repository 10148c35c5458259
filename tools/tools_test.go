package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftkit/sleeper-mcp/cache"
	"github.com/draftkit/sleeper-mcp/logger"
	"github.com/draftkit/sleeper-mcp/sleeper"
)

// fakeAPI implements API with canned data and per-method call counters so
// tests can assert how often the upstream was hit.
type fakeAPI struct {
	user     *sleeper.User
	leagues  []sleeper.League
	league   *sleeper.League
	users    []sleeper.User
	rosters  []sleeper.Roster
	players  map[string]sleeper.Player
	trending []sleeper.TrendingPlayer
	stats    map[string]sleeper.PlayerStats
	matchups []sleeper.Matchup
	draft    *sleeper.Draft
	picks    []sleeper.DraftPick
	found    []sleeper.Player
	healthy  bool

	calls map[string]int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{healthy: true, calls: make(map[string]int)}
}

func (f *fakeAPI) GetUser(ctx context.Context, username string) (*sleeper.User, error) {
	f.calls["GetUser"]++
	return f.user, nil
}

func (f *fakeAPI) GetUserLeagues(ctx context.Context, userID, season string) ([]sleeper.League, error) {
	f.calls["GetUserLeagues"]++
	return f.leagues, nil
}

func (f *fakeAPI) GetLeague(ctx context.Context, leagueID string) (*sleeper.League, error) {
	f.calls["GetLeague"]++
	return f.league, nil
}

func (f *fakeAPI) GetLeagueUsers(ctx context.Context, leagueID string) ([]sleeper.User, error) {
	f.calls["GetLeagueUsers"]++
	return f.users, nil
}

func (f *fakeAPI) GetLeagueRosters(ctx context.Context, leagueID string) ([]sleeper.Roster, error) {
	f.calls["GetLeagueRosters"]++
	return f.rosters, nil
}

func (f *fakeAPI) GetPlayers(ctx context.Context, sport string) (map[string]sleeper.Player, error) {
	f.calls["GetPlayers"]++
	return f.players, nil
}

func (f *fakeAPI) GetTrendingPlayers(ctx context.Context, sport, addDrop string, hours, limit int) ([]sleeper.TrendingPlayer, error) {
	f.calls["GetTrendingPlayers"]++
	return f.trending, nil
}

func (f *fakeAPI) GetPlayerStats(ctx context.Context, sport, season, seasonType string, week int) (map[string]sleeper.PlayerStats, error) {
	f.calls["GetPlayerStats"]++
	return f.stats, nil
}

func (f *fakeAPI) GetMatchups(ctx context.Context, leagueID string, week int) ([]sleeper.Matchup, error) {
	f.calls["GetMatchups"]++
	return f.matchups, nil
}

func (f *fakeAPI) GetDraft(ctx context.Context, draftID string) (*sleeper.Draft, error) {
	f.calls["GetDraft"]++
	return f.draft, nil
}

func (f *fakeAPI) GetDraftPicks(ctx context.Context, draftID string) ([]sleeper.DraftPick, error) {
	f.calls["GetDraftPicks"]++
	return f.picks, nil
}

func (f *fakeAPI) SearchPlayersByName(ctx context.Context, name, sport, position string) ([]sleeper.Player, error) {
	f.calls["SearchPlayersByName"]++
	return f.found, nil
}

func (f *fakeAPI) HealthCheck(ctx context.Context) bool {
	f.calls["HealthCheck"]++
	return f.healthy
}

func newTestToolset(api *fakeAPI) *Toolset {
	return New(api, cache.New(), logger.NewTestLogger())
}

func intPtr(v int) *int { return &v }

func testLeague() *sleeper.League {
	return &sleeper.League{
		LeagueID:        "league1",
		Name:            "Test League",
		Season:          "2025",
		Status:          sleeper.LeagueStatusInSeason,
		TotalRosters:    2,
		RosterPositions: []string{"QB", "RB", "RB", "WR", "WR", "TE", "FLEX", "K", "DEF"},
	}
}

func testCatalog() map[string]sleeper.Player {
	return map[string]sleeper.Player{
		"qb1": {PlayerID: "qb1", FirstName: "Quinn", LastName: "Back", FullName: "Quinn Back", Position: "QB"},
		"rb1": {PlayerID: "rb1", FullName: "Run One", Position: "RB"},
		"rb2": {PlayerID: "rb2", FullName: "Run Two", Position: "RB"},
		"rb3": {PlayerID: "rb3", FullName: "Run Three", Position: "RB"},
		"wr1": {PlayerID: "wr1", FullName: "Wide One", Position: "WR"},
		"wr2": {PlayerID: "wr2", FullName: "Wide Two", Position: "WR"},
		"te1": {PlayerID: "te1", FullName: "Tight One", Position: "TE"},
		"k1":  {PlayerID: "k1", FullName: "Kick One", Position: "K"},
		"df1": {PlayerID: "df1", FullName: "Def One", Position: "DEF"},
	}
}

func TestRegistryRegisterAndCall(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Tool{
		Name: "echo",
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			return stringArg(args, "text", ""), nil
		},
	}))

	err := r.Register(Tool{Name: "echo"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	out, err := r.Call(context.Background(), "echo", map[string]any{"text": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi", out)

	_, err = r.Call(context.Background(), "missing", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tool")
}

func TestRegistryRecoversPanics(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Tool{
		Name: "boom",
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			panic("handler bug")
		},
	}))

	_, err := r.Call(context.Background(), "boom", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")
}

func TestRegistryListOrder(t *testing.T) {
	api := newFakeAPI()
	ts := newTestToolset(api)
	tools := ts.Registry().List()

	require.Len(t, tools, 15)
	assert.Equal(t, "get_user_leagues", tools[0].Name)
	assert.Equal(t, "server_status", tools[len(tools)-1].Name)
	for _, tool := range tools {
		assert.NotEmpty(t, tool.Description, tool.Name)
		assert.NotEmpty(t, tool.InputSchema, tool.Name)
	}
}

func TestRequiredIntArg(t *testing.T) {
	v, err := requiredIntArg(map[string]any{"week": float64(7)}, "week")
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	v, err = requiredIntArg(map[string]any{"week": 3}, "week")
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	_, err = requiredIntArg(map[string]any{}, "week")
	assert.Error(t, err)

	_, err = requiredIntArg(map[string]any{"week": "seven"}, "week")
	assert.Error(t, err)
}

func TestGetUserLeaguesCachesResult(t *testing.T) {
	api := newFakeAPI()
	api.user = &sleeper.User{UserID: "u1", Username: "tester", DisplayName: "Tester"}
	api.leagues = []sleeper.League{*testLeague()}
	ts := newTestToolset(api)
	r := ts.Registry()

	args := map[string]any{"username": "tester", "season": "2025"}
	first, err := r.Call(context.Background(), "get_user_leagues", args)
	require.NoError(t, err)
	assert.Contains(t, first, "Test League")

	second, err := r.Call(context.Background(), "get_user_leagues", args)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, api.calls["GetUser"])
	assert.Equal(t, 1, api.calls["GetUserLeagues"])
}

func TestGetMatchupsWeekValidation(t *testing.T) {
	api := newFakeAPI()
	ts := newTestToolset(api)
	r := ts.Registry()

	for _, week := range []int{0, 23, -1} {
		out, err := r.Call(context.Background(), "get_matchups", map[string]any{
			"league_id": "league1",
			"week":      float64(week),
		})
		require.NoError(t, err)
		assert.Contains(t, out, "out of range")
	}
	assert.Equal(t, 0, api.calls["GetMatchups"])
}

func TestGetMatchupsPairsTeams(t *testing.T) {
	api := newFakeAPI()
	api.users = []sleeper.User{
		{UserID: "u1", DisplayName: "Alice"},
		{UserID: "u2", DisplayName: "Bob"},
		{UserID: "u3", DisplayName: "Carol"},
	}
	api.rosters = []sleeper.Roster{
		{RosterID: 1, OwnerID: "u1"},
		{RosterID: 2, OwnerID: "u2"},
		{RosterID: 3, OwnerID: "u3"},
	}
	api.matchups = []sleeper.Matchup{
		{RosterID: 1, MatchupID: intPtr(1), Points: 101.5},
		{RosterID: 2, MatchupID: intPtr(1), Points: 88.2},
		{RosterID: 3, Points: 0}, // bye week
	}
	ts := newTestToolset(api)
	r := ts.Registry()

	out, err := r.Call(context.Background(), "get_matchups", map[string]any{
		"league_id": "league1",
		"week":      float64(4),
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Alice 101.50")
	assert.Contains(t, out, "Bob 88.20")
	assert.Contains(t, out, " vs ")
	assert.Contains(t, out, "Carol (bye)")

	// concurrent fan-out hits all three endpoints once
	assert.Equal(t, 1, api.calls["GetMatchups"])
	assert.Equal(t, 1, api.calls["GetLeagueRosters"])
	assert.Equal(t, 1, api.calls["GetLeagueUsers"])

	_, err = r.Call(context.Background(), "get_matchups", map[string]any{
		"league_id": "league1",
		"week":      float64(4),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, api.calls["GetMatchups"], "second call should be served from cache")
}

func TestGetMatchupScoresShowsTopPlayers(t *testing.T) {
	api := newFakeAPI()
	api.users = []sleeper.User{{UserID: "u1", DisplayName: "Alice"}, {UserID: "u2", DisplayName: "Bob"}}
	api.rosters = []sleeper.Roster{{RosterID: 1, OwnerID: "u1"}, {RosterID: 2, OwnerID: "u2"}}
	api.matchups = []sleeper.Matchup{
		{RosterID: 1, MatchupID: intPtr(1), Points: 95.0, PlayersPoints: map[string]float64{"qb1": 24.5, "rb1": 12.0, "wr1": 8.0, "k1": 3.0}},
		{RosterID: 2, MatchupID: intPtr(1), Points: 80.0},
	}
	ts := newTestToolset(api)
	r := ts.Registry()

	out, err := r.Call(context.Background(), "get_matchup_scores", map[string]any{
		"league_id": "league1",
		"week":      float64(4),
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Alice 95.00 vs Bob 80.00")
	assert.Contains(t, out, "Alice top: qb1 24.5, rb1 12.0, wr1 8.0")
	assert.NotContains(t, out, "k1 3.0")
}

func TestLeagueWeekLiveDetection(t *testing.T) {
	lw := &leagueWeek{matchups: []sleeper.Matchup{
		{RosterID: 1, Points: 0},
		{RosterID: 2, Points: 0},
	}}
	assert.False(t, lw.isLive(), "no points means nothing is in progress")

	lw.matchups[0].Points = 12.4
	assert.False(t, lw.isLive(), "points without player breakdowns means final scores")

	lw.matchups[0].PlayersPoints = map[string]float64{"qb1": 12.4}
	assert.True(t, lw.isLive())
}

func TestAnalyzeRosterStrength(t *testing.T) {
	league := testLeague()
	catalog := testCatalog()

	// 1 QB for 1 slot, 3 RB for 2+1 flex slots, 2 WR for 2+1, 1 TE for 1+1,
	// 1 K and 1 DEF for their slots.
	roster := sleeper.Roster{
		RosterID: 1,
		Players:  []string{"qb1", "rb1", "rb2", "rb3", "wr1", "wr2", "te1", "k1", "df1"},
	}

	a := analyzeRoster(roster, league, catalog)

	// QB: coverage 1/1, strength 0.8 + 0.05 depth
	assert.InDelta(t, 0.85, a.strength["QB"], 0.001)
	// RB: coverage 3/3, strength 0.8 + 0.15 depth
	assert.InDelta(t, 0.95, a.strength["RB"], 0.001)
	// WR: coverage 2/3
	assert.InDelta(t, 2.0/3.0*0.8+0.10, a.strength["WR"], 0.001)
	// TE: coverage 1/2
	assert.InDelta(t, 0.45, a.strength["TE"], 0.001)

	assert.Equal(t, needMedium, a.needs["QB"], "coverage 1.0 is medium need")
	assert.Equal(t, needHigh, a.needs["WR"])
	assert.Equal(t, needHigh, a.needs["TE"])

	assert.Contains(t, a.weakest, "TE")
	assert.NotContains(t, a.weakest, "RB")
	assert.Contains(t, a.strongest, "RB")
	assert.Greater(t, a.overall, 0.0)
	assert.LessOrEqual(t, a.overall, 1.0)
}

func TestAnalyzeRosterUnusedPosition(t *testing.T) {
	league := testLeague()
	league.RosterPositions = []string{"QB", "RB", "WR"} // no TE, K, DEF slots
	catalog := testCatalog()
	roster := sleeper.Roster{RosterID: 1, Players: []string{"qb1", "rb1", "wr1"}}

	a := analyzeRoster(roster, league, catalog)
	assert.Equal(t, 1.0, a.strength["K"], "unused positions count as covered")
	assert.Equal(t, needNone, a.needs["K"])
}

func TestComplementaryScore(t *testing.T) {
	req := rosterAnalysis{strongest: []string{"RB"}, weakest: []string{"WR", "TE"}}
	partner := rosterAnalysis{strongest: []string{"WR"}, weakest: []string{"RB"}}

	// mutual help 2 of 3, no target bonus, no shared strengths
	score := complementaryScore(req, partner, "")
	assert.InDelta(t, 2.0/3.0*0.6, score, 0.001)

	// target position the partner can supply adds 0.3
	withTarget := complementaryScore(req, partner, "WR")
	assert.InDelta(t, score+0.3, withTarget, 0.001)

	// shared strengths are penalized
	similar := rosterAnalysis{strongest: []string{"RB"}, weakest: []string{"QB"}}
	assert.Less(t, complementaryScore(req, similar, ""), score)
}

func TestMutualBenefitPositions(t *testing.T) {
	req := rosterAnalysis{strongest: []string{"RB"}, weakest: []string{"WR"}}
	partner := rosterAnalysis{strongest: []string{"WR"}, weakest: []string{"RB"}}
	assert.Equal(t, []string{"RB", "WR"}, mutualBenefitPositions(req, partner))
}

func TestAnalyzeTradeTargets(t *testing.T) {
	api := newFakeAPI()
	api.league = testLeague()
	api.players = testCatalog()
	api.rosters = []sleeper.Roster{
		{RosterID: 1, OwnerID: "u1", Players: []string{"qb1", "rb1", "rb2", "rb3", "k1", "df1"}},
		{RosterID: 2, OwnerID: "u2", Players: []string{"qb1", "wr1", "wr2", "te1", "k1", "df1"}},
	}
	ts := newTestToolset(api)
	r := ts.Registry()

	out, err := r.Call(context.Background(), "analyze_trade_targets", map[string]any{
		"league_id": "league1",
		"roster_id": float64(1),
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Trade analysis for roster 1")
	assert.Contains(t, out, "Weakest positions")

	// cached on repeat
	_, err = r.Call(context.Background(), "analyze_trade_targets", map[string]any{
		"league_id": "league1",
		"roster_id": float64(1),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, api.calls["GetLeague"])
}

func TestAnalyzeTradeTargetsUnknownRoster(t *testing.T) {
	api := newFakeAPI()
	api.league = testLeague()
	api.players = testCatalog()
	api.rosters = []sleeper.Roster{{RosterID: 1, OwnerID: "u1"}}
	ts := newTestToolset(api)
	r := ts.Registry()

	out, err := r.Call(context.Background(), "analyze_trade_targets", map[string]any{
		"league_id": "league1",
		"roster_id": float64(99),
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Roster 99 not found")
}

func TestEvaluateRosterNeeds(t *testing.T) {
	api := newFakeAPI()
	api.league = testLeague()
	api.players = testCatalog()
	api.rosters = []sleeper.Roster{
		{RosterID: 1, OwnerID: "u1", Players: []string{"qb1", "rb1", "rb2", "rb3", "wr1", "wr2", "te1", "k1", "df1"}},
		{RosterID: 2, OwnerID: "u2", Players: []string{"qb1", "wr1", "te1"}},
	}
	ts := newTestToolset(api)
	r := ts.Registry()

	out, err := r.Call(context.Background(), "evaluate_roster_needs", map[string]any{
		"league_id": "league1",
		"roster_id": float64(1),
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Roster 1 evaluation")
	assert.Contains(t, out, "Overall rating")
	assert.Contains(t, out, "vs league average")
	assert.Contains(t, out, "Recommendation")
}

func TestGetLeagueRostersWithDraftInfo(t *testing.T) {
	api := newFakeAPI()
	api.league = testLeague()
	api.league.DraftID = "draft1"
	api.players = testCatalog()
	api.users = []sleeper.User{
		{UserID: "u1", DisplayName: "Alice"},
		{UserID: "u2", DisplayName: "Bob"},
	}
	api.rosters = []sleeper.Roster{
		{RosterID: 1, OwnerID: "u1", Players: []string{"qb1", "rb1", "wr1"}, Starters: []string{"qb1", "rb1"}},
		{RosterID: 2, OwnerID: "u2", Players: []string{"te1"}, Starters: []string{"te1"}},
	}
	api.picks = []sleeper.DraftPick{
		{Round: 1, PickNo: 1, PlayerID: "rb1", PickedBy: "u1"},
		{Round: 2, PickNo: 14, PlayerID: "te1", PickedBy: "u2"},
	}
	ts := newTestToolset(api)
	r := ts.Registry()

	args := map[string]any{"league_id": "league1"}
	out, err := r.Call(context.Background(), "get_league_rosters_with_draft_info", args)
	require.NoError(t, err)
	assert.Contains(t, out, "2 drafted players")
	assert.Contains(t, out, "Roster 1 (Alice): 3 players, 2 starters, 1 drafted, 2 free agent pickups")
	assert.Contains(t, out, "Run One (RB): drafted 1.01 by Alice")
	assert.Contains(t, out, "Quinn Back (QB): free agent pickup")
	assert.Contains(t, out, "Tight One (TE): drafted 2.14 by Bob")

	// league, rosters, users, and players fetched concurrently, picks after
	assert.Equal(t, 1, api.calls["GetLeague"])
	assert.Equal(t, 1, api.calls["GetLeagueRosters"])
	assert.Equal(t, 1, api.calls["GetLeagueUsers"])
	assert.Equal(t, 1, api.calls["GetDraftPicks"])

	_, err = r.Call(context.Background(), "get_league_rosters_with_draft_info", args)
	require.NoError(t, err)
	assert.Equal(t, 1, api.calls["GetLeagueRosters"], "second call should be served from cache")
}

func TestGetLeagueRostersWithDraftInfoNoDraft(t *testing.T) {
	api := newFakeAPI()
	api.league = testLeague()
	api.players = testCatalog()
	api.rosters = []sleeper.Roster{
		{RosterID: 1, OwnerID: "u1", Players: []string{"qb1"}, Starters: []string{"qb1"}},
	}
	ts := newTestToolset(api)
	r := ts.Registry()

	out, err := r.Call(context.Background(), "get_league_rosters_with_draft_info", map[string]any{"league_id": "league1"})
	require.NoError(t, err)
	assert.Contains(t, out, "no draft data")
	assert.Contains(t, out, "free agent pickup")
	assert.Equal(t, 0, api.calls["GetDraftPicks"])
}

func TestGetTrendingPlayersValidation(t *testing.T) {
	api := newFakeAPI()
	ts := newTestToolset(api)
	r := ts.Registry()

	out, err := r.Call(context.Background(), "get_trending_players", map[string]any{
		"add_drop": "hold",
	})
	require.NoError(t, err)
	assert.Contains(t, out, `add_drop must be "add" or "drop"`)
	assert.Equal(t, 0, api.calls["GetTrendingPlayers"])
}

func TestGetTrendingPlayersResolvesNames(t *testing.T) {
	api := newFakeAPI()
	api.players = testCatalog()
	api.trending = []sleeper.TrendingPlayer{
		{PlayerID: "rb1", Count: 420},
		{PlayerID: "ghost", Count: 7},
	}
	ts := newTestToolset(api)
	r := ts.Registry()

	out, err := r.Call(context.Background(), "get_trending_players", map[string]any{
		"add_drop": "add",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Most added players")
	assert.Contains(t, out, "Run One")
	assert.Contains(t, out, "player ghost")
}

func TestServerStatus(t *testing.T) {
	api := newFakeAPI()
	ts := newTestToolset(api)
	ts.cache.Set("warm", "entry", cache.PlayerData)
	r := ts.Registry()

	out, err := r.Call(context.Background(), "server_status", nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Server status:")
	assert.Contains(t, out, "Sleeper API: ok")
	assert.Contains(t, out, "Entries: 1")
	assert.Contains(t, out, string(cache.PlayerData))

	api.healthy = false
	out, err = r.Call(context.Background(), "server_status", nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Sleeper API: unreachable")
}
