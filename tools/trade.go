package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/draftkit/sleeper-mcp/cache"
	"github.com/draftkit/sleeper-mcp/sleeper"
)

var analyzedPositions = []string{"QB", "RB", "WR", "TE", "K", "DEF"}

// positionScarcity weights positions by how hard replacements are to find.
// Higher means more scarce.
var positionScarcity = map[string]float64{
	"QB":  1.0,
	"RB":  1.5,
	"WR":  1.2,
	"TE":  1.8,
	"K":   0.5,
	"DEF": 0.7,
}

// need levels per position, derived from starter coverage.
const (
	needNone = iota
	needLow
	needMedium
	needHigh
)

type rosterAnalysis struct {
	strength  map[string]float64
	needs     map[string]int
	weakest   []string
	strongest []string
	overall   float64
}

// analyzeRoster scores a roster position by position. Starter coverage drives
// the score: 80% of it is how many rostered players cover the required
// starting slots, the rest is a depth bonus capped at 0.2. FLEX slots count
// toward every flex-eligible position's requirement.
func analyzeRoster(roster sleeper.Roster, league *sleeper.League, catalog map[string]sleeper.Player) rosterAnalysis {
	counts := make(map[string]int)
	for _, id := range roster.Players {
		if p, ok := catalog[id]; ok {
			counts[p.Position]++
		}
	}

	flexSlots := 0
	for _, slot := range league.RosterPositions {
		if slot == "FLEX" {
			flexSlots++
		}
	}

	strength := make(map[string]float64, len(analyzedPositions))
	needs := make(map[string]int, len(analyzedPositions))
	for _, pos := range analyzedPositions {
		required := 0
		for _, slot := range league.RosterPositions {
			if slot == pos {
				required++
			}
		}
		if pos == "RB" || pos == "WR" || pos == "TE" {
			required += flexSlots
		}

		if required == 0 {
			strength[pos] = 1.0
			needs[pos] = needNone
			continue
		}

		coverage := float64(counts[pos]) / float64(required)
		depthBonus := float64(counts[pos]) * 0.05
		if depthBonus > 0.2 {
			depthBonus = 0.2
		}
		s := coverage*0.8 + depthBonus
		if s > 1.0 {
			s = 1.0
		}
		strength[pos] = s

		switch {
		case coverage < 1.0:
			needs[pos] = needHigh
		case coverage < 1.5:
			needs[pos] = needMedium
		case coverage < 2.0:
			needs[pos] = needLow
		default:
			needs[pos] = needNone
		}
	}

	sorted := make([]string, 0, len(strength))
	for pos := range strength {
		sorted = append(sorted, pos)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if strength[sorted[i]] != strength[sorted[j]] {
			return strength[sorted[i]] < strength[sorted[j]]
		}
		return sorted[i] < sorted[j]
	})

	var weakest []string
	for _, pos := range sorted[:min(3, len(sorted))] {
		if strength[pos] < 0.7 {
			weakest = append(weakest, pos)
		}
	}
	var strongest []string
	for _, pos := range sorted[max(0, len(sorted)-3):] {
		if strength[pos] > 0.8 {
			strongest = append(strongest, pos)
		}
	}

	var weighted, totalWeight float64
	for pos, s := range strength {
		w := positionScarcity[pos]
		if w == 0 {
			w = 1.0
		}
		weighted += s * w
		totalWeight += w
	}
	overall := 0.5
	if totalWeight > 0 {
		overall = weighted / totalWeight
	}

	return rosterAnalysis{
		strength:  strength,
		needs:     needs,
		weakest:   weakest,
		strongest: strongest,
		overall:   overall,
	}
}

// complementaryScore rates how well two rosters fit as trade partners. Mutual
// coverage of each other's weaknesses dominates, a stated target position
// adds a bonus, and overlapping strengths subtract since similar rosters have
// little to trade.
func complementaryScore(req, partner rosterAnalysis, targetPosition string) float64 {
	reqStrong := toSet(req.strongest)
	reqWeak := toSet(req.weakest)
	pStrong := toSet(partner.strongest)
	pWeak := toSet(partner.weakest)

	score := 0.0
	mutual := len(intersect(reqWeak, pStrong)) + len(intersect(reqStrong, pWeak))
	maxMutual := len(reqWeak) + len(reqStrong)
	if maxMutual > 0 {
		score += float64(mutual) / float64(maxMutual) * 0.6
	}

	if targetPosition != "" {
		if pStrong[targetPosition] && reqWeak[targetPosition] {
			score += 0.3
		} else if reqStrong[targetPosition] && pWeak[targetPosition] {
			score += 0.2
		}
	}

	score -= float64(len(intersect(reqStrong, pStrong))) * 0.1
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}

func mutualBenefitPositions(req, partner rosterAnalysis) []string {
	reqStrong := toSet(req.strongest)
	reqWeak := toSet(req.weakest)
	pStrong := toSet(partner.strongest)
	pWeak := toSet(partner.weakest)

	seen := make(map[string]bool)
	var out []string
	for pos := range intersect(reqStrong, pWeak) {
		if !seen[pos] {
			seen[pos] = true
			out = append(out, pos)
		}
	}
	for pos := range intersect(pStrong, reqWeak) {
		if !seen[pos] {
			seen[pos] = true
			out = append(out, pos)
		}
	}
	sort.Strings(out)
	return out
}

func toSet(positions []string) map[string]bool {
	s := make(map[string]bool, len(positions))
	for _, p := range positions {
		s[p] = true
	}
	return s
}

func intersect(a, b map[string]bool) map[string]bool {
	out := make(map[string]bool)
	for k := range a {
		if b[k] {
			out[k] = true
		}
	}
	return out
}

type tradePartner struct {
	rosterID int
	score    float64
	mutual   []string
	analysis rosterAnalysis
}

func findTradePartners(req rosterAnalysis, reqRosterID int, rosters []sleeper.Roster, league *sleeper.League, catalog map[string]sleeper.Player, targetPosition string) []tradePartner {
	var partners []tradePartner
	for _, r := range rosters {
		if r.RosterID == reqRosterID {
			continue
		}
		analysis := analyzeRoster(r, league, catalog)
		score := complementaryScore(req, analysis, targetPosition)
		if score > 0.3 {
			partners = append(partners, tradePartner{
				rosterID: r.RosterID,
				score:    score,
				mutual:   mutualBenefitPositions(req, analysis),
				analysis: analysis,
			})
		}
	}
	sort.Slice(partners, func(i, j int) bool {
		if partners[i].score != partners[j].score {
			return partners[i].score > partners[j].score
		}
		return partners[i].rosterID < partners[j].rosterID
	})
	if len(partners) > 5 {
		partners = partners[:5]
	}
	return partners
}

// leagueContext fetches the league, its rosters, and the player catalog, and
// locates the requested roster.
func (t *Toolset) leagueContext(ctx context.Context, leagueID string, rosterID int) (*sleeper.League, []sleeper.Roster, *sleeper.Roster, map[string]sleeper.Player, string, error) {
	league, err := t.api.GetLeague(ctx, leagueID)
	if err != nil {
		return nil, nil, nil, nil, "", err
	}
	if league == nil {
		return nil, nil, nil, nil, leagueNotFound(leagueID), nil
	}
	rosters, err := t.api.GetLeagueRosters(ctx, leagueID)
	if err != nil {
		return nil, nil, nil, nil, "", err
	}
	if len(rosters) == 0 {
		return nil, nil, nil, nil, fmt.Sprintf("No rosters found for league %s.", leagueID), nil
	}
	var target *sleeper.Roster
	for i := range rosters {
		if rosters[i].RosterID == rosterID {
			target = &rosters[i]
			break
		}
	}
	if target == nil {
		return nil, nil, nil, nil, fmt.Sprintf("Roster %d not found in league %s.", rosterID, leagueID), nil
	}
	catalog, err := t.players(ctx, "nfl")
	if err != nil {
		return nil, nil, nil, nil, "", err
	}
	return league, rosters, target, catalog, "", nil
}

func describeStrength(strength map[string]float64) string {
	parts := make([]string, 0, len(analyzedPositions))
	for _, pos := range analyzedPositions {
		parts = append(parts, fmt.Sprintf("%s %.2f", pos, strength[pos]))
	}
	return strings.Join(parts, ", ")
}

func joinOrNone(positions []string) string {
	if len(positions) == 0 {
		return "none"
	}
	return strings.Join(positions, ", ")
}

func (t *Toolset) analyzeTradeTargetsTool() Tool {
	return Tool{
		Name:        "analyze_trade_targets",
		Description: "Analyze potential trade partners for a roster based on positional needs",
		InputSchema: schema(`{
			"league_id": {"type": "string", "description": "League ID to analyze"},
			"roster_id": {"type": "integer", "description": "Roster ID requesting the analysis"},
			"position": {"type": "string", "description": "Optional position to focus on (QB, RB, WR, TE, K, DEF)"}
		}`, "league_id", "roster_id"),
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			leagueID, err := requiredStringArg(args, "league_id")
			if err != nil {
				return "", err
			}
			rosterID, err := requiredIntArg(args, "roster_id")
			if err != nil {
				return "", err
			}
			position := strings.ToUpper(stringArg(args, "position", ""))

			posLabel := position
			if posLabel == "" {
				posLabel = "all"
			}
			key := fmt.Sprintf("trade_targets:%s:%d:%s", leagueID, rosterID, posLabel)
			if cached, found := cache.Get[string](t.cache, key, cache.RosterData); found {
				return cached, nil
			}

			league, rosters, target, catalog, msg, err := t.leagueContext(ctx, leagueID, rosterID)
			if err != nil {
				return "", err
			}
			if msg != "" {
				return msg, nil
			}

			analysis := analyzeRoster(*target, league, catalog)
			partners := findTradePartners(analysis, rosterID, rosters, league, catalog, position)

			var b strings.Builder
			fmt.Fprintf(&b, "Trade analysis for roster %d in %s:\n", rosterID, league.Name)
			fmt.Fprintf(&b, "Positional strength: %s\n", describeStrength(analysis.strength))
			fmt.Fprintf(&b, "Weakest positions: %s\n", joinOrNone(analysis.weakest))
			fmt.Fprintf(&b, "Strongest positions: %s\n", joinOrNone(analysis.strongest))
			if position != "" {
				fmt.Fprintf(&b, "Target position: %s\n", position)
			}
			if len(partners) == 0 {
				b.WriteString("No viable trade partners identified in the current league.\n")
			} else {
				fmt.Fprintf(&b, "Potential trade partners (%d):\n", len(partners))
				for _, p := range partners {
					fmt.Fprintf(&b, "- Roster %d (fit %.2f)", p.rosterID, p.score)
					if len(p.mutual) > 0 {
						fmt.Fprintf(&b, ", mutual benefit at %s", strings.Join(p.mutual, ", "))
					}
					b.WriteString("\n")
				}
			}

			result := b.String()
			t.cache.Set(key, result, cache.RosterData)
			t.log.Info("generated trade analysis for roster %d in league %s", rosterID, leagueID)
			return result, nil
		},
	}
}

func (t *Toolset) evaluateRosterNeedsTool() Tool {
	return Tool{
		Name:        "evaluate_roster_needs",
		Description: "Evaluate a roster's strengths and weaknesses across all positions",
		InputSchema: schema(`{
			"league_id": {"type": "string", "description": "League ID to analyze"},
			"roster_id": {"type": "integer", "description": "Roster ID to evaluate"}
		}`, "league_id", "roster_id"),
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			leagueID, err := requiredStringArg(args, "league_id")
			if err != nil {
				return "", err
			}
			rosterID, err := requiredIntArg(args, "roster_id")
			if err != nil {
				return "", err
			}

			key := fmt.Sprintf("roster_needs:%s:%d", leagueID, rosterID)
			if cached, found := cache.Get[string](t.cache, key, cache.RosterData); found {
				return cached, nil
			}

			league, rosters, target, catalog, msg, err := t.leagueContext(ctx, leagueID, rosterID)
			if err != nil {
				return "", err
			}
			if msg != "" {
				return msg, nil
			}

			analysis := analyzeRoster(*target, league, catalog)

			// League-average strength per position for context.
			averages := make(map[string]float64, len(analyzedPositions))
			for _, r := range rosters {
				other := analyzeRoster(r, league, catalog)
				for pos, s := range other.strength {
					averages[pos] += s
				}
			}
			for pos := range averages {
				averages[pos] /= float64(len(rosters))
			}

			var b strings.Builder
			fmt.Fprintf(&b, "Roster %d evaluation for %s:\n", rosterID, league.Name)
			fmt.Fprintf(&b, "Overall rating: %.2f\n", analysis.overall)
			b.WriteString("Position breakdown:\n")
			for _, pos := range analyzedPositions {
				diff := analysis.strength[pos] - averages[pos]
				fmt.Fprintf(&b, "- %s: strength %.2f (%+.2f vs league average), need %s\n",
					pos, analysis.strength[pos], diff, needLabel(analysis.needs[pos]))
			}
			fmt.Fprintf(&b, "Weakest positions: %s\n", joinOrNone(analysis.weakest))
			fmt.Fprintf(&b, "Strongest positions: %s\n", joinOrNone(analysis.strongest))

			recommended := false
			for _, pos := range analysis.weakest {
				if analysis.needs[pos] >= needMedium {
					fmt.Fprintf(&b, "Recommendation: acquire %s depth.\n", pos)
					recommended = true
				}
			}
			if !recommended {
				b.WriteString("Recommendation: roster appears well balanced across all positions.\n")
			}

			result := b.String()
			t.cache.Set(key, result, cache.RosterData)
			return result, nil
		},
	}
}

func needLabel(level int) string {
	switch level {
	case needHigh:
		return "high"
	case needMedium:
		return "medium"
	case needLow:
		return "low"
	default:
		return "none"
	}
}
