package cache

import "time"

// Category identifies a class of Sleeper data with its own default TTL.
// Adding a category requires extending defaultTTLs.
type Category string

const (
	PlayerData      Category = "player_data"
	LeagueSettings  Category = "league_settings"
	MatchupData     Category = "matchup_data"
	TrendingPlayers Category = "trending_players"
	RosterData      Category = "roster_data"
)

var defaultTTLs = map[Category]time.Duration{
	PlayerData:      time.Hour,
	LeagueSettings:  24 * time.Hour,
	MatchupData:     time.Hour,
	TrendingPlayers: 30 * time.Minute,
	RosterData:      15 * time.Minute,
}

// Categories returns every known category.
func Categories() []Category {
	return []Category{PlayerData, LeagueSettings, MatchupData, TrendingPlayers, RosterData}
}

// DefaultTTL returns the built-in TTL for a category. Unknown categories get
// an hour so a caller-invented tag still expires.
func DefaultTTL(c Category) time.Duration {
	if ttl, ok := defaultTTLs[c]; ok {
		return ttl
	}
	return time.Hour
}
