package sleeper

// Wire types for the Sleeper API (https://docs.sleeper.com). Decoding is
// permissive: unknown fields are dropped and absent fields stay zero, since
// the upstream omits keys freely depending on league configuration.

type LeagueSettings struct {
	NumTeams            int   `json:"num_teams"`
	PlayoffTeams        int   `json:"playoff_teams"`
	PlayoffWeekStart    int   `json:"playoff_week_start"`
	PlayoffRoundType    int   `json:"playoff_round_type"`
	PlayoffSeedType     int   `json:"playoff_seed_type"`
	DailyWaivers        int   `json:"daily_waivers"`
	WaiverType          int   `json:"waiver_type"`
	WaiverClearDays     int   `json:"waiver_clear_days"`
	DailyWaiversLastRan int64 `json:"daily_waivers_last_ran"`
	ReserveSlots        int   `json:"reserve_slots"`
	TaxiSlots           int   `json:"taxi_slots"`
	BenchLock           int   `json:"bench_lock"`
	Leg                 int   `json:"leg"`
}

// League status values as returned by the API.
const (
	LeagueStatusPreDraft = "pre_draft"
	LeagueStatusDrafting = "drafting"
	LeagueStatusInSeason = "in_season"
	LeagueStatusComplete = "complete"
)

type League struct {
	LeagueID        string             `json:"league_id"`
	Name            string             `json:"name"`
	Season          string             `json:"season"`
	SeasonType      string             `json:"season_type"`
	Status          string             `json:"status"`
	Sport           string             `json:"sport"`
	Settings        LeagueSettings     `json:"settings"`
	ScoringSettings map[string]float64 `json:"scoring_settings"`
	RosterPositions []string           `json:"roster_positions"`
	TotalRosters    int                `json:"total_rosters"`
	DraftID         string             `json:"draft_id"`
	Avatar          string             `json:"avatar"`
	PreviousLeague  string             `json:"previous_league_id"`
}

type User struct {
	UserID      string            `json:"user_id"`
	Username    string            `json:"username"`
	DisplayName string            `json:"display_name"`
	Avatar      string            `json:"avatar"`
	Metadata    map[string]string `json:"metadata"`
	IsOwner     bool              `json:"is_owner"`
}

type Player struct {
	PlayerID         string   `json:"player_id"`
	FullName         string   `json:"full_name"`
	FirstName        string   `json:"first_name"`
	LastName         string   `json:"last_name"`
	Position         string   `json:"position"`
	Team             string   `json:"team"`
	Status           string   `json:"status"`
	InjuryStatus     string   `json:"injury_status"`
	Height           string   `json:"height"`
	Weight           string   `json:"weight"`
	Age              int      `json:"age"`
	YearsExp         int      `json:"years_exp"`
	College          string   `json:"college"`
	FantasyPositions []string `json:"fantasy_positions"`
}

// Name returns the best display name available. Team defenses have no
// full_name, only first/last (city and mascot).
func (p Player) Name() string {
	if p.FullName != "" {
		return p.FullName
	}
	if p.FirstName != "" || p.LastName != "" {
		if p.FirstName == "" {
			return p.LastName
		}
		if p.LastName == "" {
			return p.FirstName
		}
		return p.FirstName + " " + p.LastName
	}
	return p.PlayerID
}

type TrendingPlayer struct {
	PlayerID string `json:"player_id"`
	Count    int    `json:"count"`
}

type PlayerStats struct {
	PlayerID   string             `json:"player_id"`
	Season     string             `json:"season"`
	SeasonType string             `json:"season_type"`
	Week       int                `json:"week,omitempty"`
	Stats      map[string]float64 `json:"stats"`
}

type Roster struct {
	RosterID int               `json:"roster_id"`
	OwnerID  string            `json:"owner_id"`
	LeagueID string            `json:"league_id"`
	Players  []string          `json:"players"`
	Starters []string          `json:"starters"`
	Reserve  []string          `json:"reserve"`
	Taxi     []string          `json:"taxi"`
	Settings RosterSettings    `json:"settings"`
	Metadata map[string]string `json:"metadata"`
}

type RosterSettings struct {
	Wins             int `json:"wins"`
	Losses           int `json:"losses"`
	Ties             int `json:"ties"`
	FPTS             int `json:"fpts"`
	FPTSDecimal      int `json:"fpts_decimal"`
	FPTSAgainst      int `json:"fpts_against"`
	WaiverPosition   int `json:"waiver_position"`
	WaiverBudgetUsed int `json:"waiver_budget_used"`
}

type Matchup struct {
	// MatchupID is nil for bye weeks
	MatchupID      *int               `json:"matchup_id"`
	RosterID       int                `json:"roster_id"`
	Points         float64            `json:"points"`
	PointsBonus    float64            `json:"points_bonus"`
	Players        []string           `json:"players"`
	Starters       []string           `json:"starters"`
	StartersPoints []float64          `json:"starters_points"`
	PlayersPoints  map[string]float64 `json:"players_points"`
	CustomPoints   *float64           `json:"custom_points"`
}

type Draft struct {
	DraftID      string         `json:"draft_id"`
	LeagueID     string         `json:"league_id"`
	Status       string         `json:"status"`
	Type         string         `json:"type"`
	Season       string         `json:"season"`
	SeasonType   string         `json:"season_type"`
	Sport        string         `json:"sport"`
	StartTime    int64          `json:"start_time"`
	DraftOrder   map[string]int `json:"draft_order"`
	SlotToRoster map[string]int `json:"slot_to_roster_id"`
	Settings     map[string]int `json:"settings"`
}

type DraftPick struct {
	Round    int               `json:"round"`
	PickNo   int               `json:"pick_no"`
	DraftID  string            `json:"draft_id"`
	RosterID int               `json:"roster_id"`
	PlayerID string            `json:"player_id"`
	PickedBy string            `json:"picked_by"`
	IsKeeper bool              `json:"is_keeper"`
	Metadata map[string]string `json:"metadata"`
}
