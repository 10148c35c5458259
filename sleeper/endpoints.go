package sleeper

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// GetUser looks up a user by username or user id. Returns (nil, nil) when the
// user does not exist.
func (c *Client) GetUser(ctx context.Context, username string) (*User, error) {
	var user *User
	err := c.get(ctx, "/user/"+url.PathEscape(username), nil, &user)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserLeagues returns every NFL league the user belongs to for a season.
func (c *Client) GetUserLeagues(ctx context.Context, userID, season string) ([]League, error) {
	var leagues []League
	err := c.get(ctx, fmt.Sprintf("/user/%s/leagues/nfl/%s", url.PathEscape(userID), url.PathEscape(season)), nil, &leagues)
	if err != nil {
		return nil, err
	}
	return leagues, nil
}

// GetLeague returns a league by id, or (nil, nil) when it does not exist.
func (c *Client) GetLeague(ctx context.Context, leagueID string) (*League, error) {
	var league *League
	err := c.get(ctx, "/league/"+url.PathEscape(leagueID), nil, &league)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return league, nil
}

// GetLeagueUsers returns every user in a league.
func (c *Client) GetLeagueUsers(ctx context.Context, leagueID string) ([]User, error) {
	var users []User
	err := c.get(ctx, fmt.Sprintf("/league/%s/users", url.PathEscape(leagueID)), nil, &users)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// GetLeagueRosters returns every roster in a league.
func (c *Client) GetLeagueRosters(ctx context.Context, leagueID string) ([]Roster, error) {
	var rosters []Roster
	err := c.get(ctx, fmt.Sprintf("/league/%s/rosters", url.PathEscape(leagueID)), nil, &rosters)
	if err != nil {
		return nil, err
	}
	return rosters, nil
}

// GetPlayers fetches the full player catalog for a sport, keyed by player id.
// The payload is several megabytes; callers are expected to cache it.
func (c *Client) GetPlayers(ctx context.Context, sport string) (map[string]Player, error) {
	players := make(map[string]Player)
	err := c.get(ctx, "/players/"+url.PathEscape(sport), nil, &players)
	if err != nil {
		return nil, err
	}
	// the catalog keys by id but omits player_id inside some records
	for id, p := range players {
		if p.PlayerID == "" {
			p.PlayerID = id
			players[id] = p
		}
	}
	return players, nil
}

// GetTrendingPlayers returns the most added or dropped players. addDrop is
// "add" or "drop".
func (c *Client) GetTrendingPlayers(ctx context.Context, sport, addDrop string, hours, limit int) ([]TrendingPlayer, error) {
	params := url.Values{}
	params.Set("lookback_hours", fmt.Sprintf("%d", hours))
	params.Set("limit", fmt.Sprintf("%d", limit))
	var trending []TrendingPlayer
	err := c.get(ctx, fmt.Sprintf("/players/%s/trending/%s", url.PathEscape(sport), url.PathEscape(addDrop)), params, &trending)
	if err != nil {
		return nil, err
	}
	return trending, nil
}

// GetPlayerStats returns stats keyed by player id for a season, optionally
// narrowed to one week (week <= 0 means season totals).
func (c *Client) GetPlayerStats(ctx context.Context, sport, season, seasonType string, week int) (map[string]PlayerStats, error) {
	endpoint := fmt.Sprintf("/stats/%s/%s/%s", url.PathEscape(sport), url.PathEscape(seasonType), url.PathEscape(season))
	if week > 0 {
		endpoint += fmt.Sprintf("/%d", week)
	}
	raw := make(map[string]map[string]float64)
	err := c.get(ctx, endpoint, nil, &raw)
	if err != nil {
		return nil, err
	}
	stats := make(map[string]PlayerStats, len(raw))
	for playerID, values := range raw {
		stats[playerID] = PlayerStats{
			PlayerID:   playerID,
			Season:     season,
			SeasonType: seasonType,
			Week:       week,
			Stats:      values,
		}
	}
	return stats, nil
}

// GetMatchups returns every team's matchup entry for a week.
func (c *Client) GetMatchups(ctx context.Context, leagueID string, week int) ([]Matchup, error) {
	var matchups []Matchup
	err := c.get(ctx, fmt.Sprintf("/league/%s/matchups/%d", url.PathEscape(leagueID), week), nil, &matchups)
	if err != nil {
		return nil, err
	}
	return matchups, nil
}

// GetWinnersBracket returns the winners playoff bracket for a league.
func (c *Client) GetWinnersBracket(ctx context.Context, leagueID string) ([]Matchup, error) {
	var matchups []Matchup
	err := c.get(ctx, fmt.Sprintf("/league/%s/winners_bracket", url.PathEscape(leagueID)), nil, &matchups)
	if err != nil {
		return nil, err
	}
	return matchups, nil
}

// GetLosersBracket returns the losers playoff bracket for a league.
func (c *Client) GetLosersBracket(ctx context.Context, leagueID string) ([]Matchup, error) {
	var matchups []Matchup
	err := c.get(ctx, fmt.Sprintf("/league/%s/losers_bracket", url.PathEscape(leagueID)), nil, &matchups)
	if err != nil {
		return nil, err
	}
	return matchups, nil
}

// GetDraftsForUser returns a user's drafts for a sport and season.
func (c *Client) GetDraftsForUser(ctx context.Context, userID, sport, season string) ([]Draft, error) {
	var drafts []Draft
	err := c.get(ctx, fmt.Sprintf("/user/%s/drafts/%s/%s", url.PathEscape(userID), url.PathEscape(sport), url.PathEscape(season)), nil, &drafts)
	if err != nil {
		return nil, err
	}
	return drafts, nil
}

// GetDraft returns a draft by id, or (nil, nil) when it does not exist.
func (c *Client) GetDraft(ctx context.Context, draftID string) (*Draft, error) {
	var draft *Draft
	err := c.get(ctx, "/draft/"+url.PathEscape(draftID), nil, &draft)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return draft, nil
}

// GetDraftPicks returns every pick of a draft; a missing draft yields an
// empty slice.
func (c *Client) GetDraftPicks(ctx context.Context, draftID string) ([]DraftPick, error) {
	var picks []DraftPick
	err := c.get(ctx, fmt.Sprintf("/draft/%s/picks", url.PathEscape(draftID)), nil, &picks)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return picks, nil
}

// SearchPlayersByName filters the full player catalog by name, client-side:
// Sleeper has no search endpoint. Exact matches sort first, then prefix, then
// contains. Results are capped at 50.
func (c *Client) SearchPlayersByName(ctx context.Context, name, sport, position string) ([]Player, error) {
	all, err := c.GetPlayers(ctx, sport)
	if err != nil {
		return nil, err
	}

	nameLower := strings.ToLower(name)
	position = strings.ToUpper(position)
	var matches []Player
	for _, p := range all {
		full := strings.ToLower(p.Name())
		if !strings.Contains(full, nameLower) &&
			!strings.Contains(strings.ToLower(p.FirstName), nameLower) &&
			!strings.Contains(strings.ToLower(p.LastName), nameLower) {
			continue
		}
		if position != "" && p.Position != position {
			continue
		}
		matches = append(matches, p)
	}

	rank := func(p Player) int {
		full := strings.ToLower(p.Name())
		switch {
		case full == nameLower:
			return 0
		case strings.HasPrefix(full, nameLower):
			return 1
		default:
			return 2
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		ri, rj := rank(matches[i]), rank(matches[j])
		if ri != rj {
			return ri < rj
		}
		return matches[i].Name() < matches[j].Name()
	})

	if len(matches) > 50 {
		matches = matches[:50]
	}
	return matches, nil
}

// HealthCheck reports whether the upstream API is reachable.
func (c *Client) HealthCheck(ctx context.Context) bool {
	err := c.get(ctx, "/state/nfl", nil, nil)
	if err != nil {
		c.log.Warn("health check failed: %v", err)
		return false
	}
	return true
}
