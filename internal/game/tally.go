package game

import "github.com/jason-s-yu/partygames/internal/models"

func countVotes(votes map[string]Vote) map[string]int {
	counts := make(map[string]int)
	for _, v := range votes {
		counts[v.Target]++
	}
	return counts
}

// sumPoints weighs each vote by its points. A 0-point vote is an unweighted
// vote worth 1.
func sumPoints(votes map[string]Vote) map[string]int {
	points := make(map[string]int)
	for _, v := range votes {
		w := v.Points
		if w <= 0 {
			w = 1
		}
		points[v.Target] += w
	}
	return points
}

// leaders returns every player holding the highest positive tally, in roster order.
func leaders(tally map[string]int, roster []models.Player) []string {
	best := 0
	for _, n := range tally {
		if n > best {
			best = n
		}
	}
	out := []string{}
	if best == 0 {
		return out
	}
	for _, p := range roster {
		if tally[p.ClientID] == best {
			out = append(out, p.ClientID)
		}
	}
	return out
}

// scoreUniqueWinner awards one point to a sole vote leader. Ties award nothing.
func scoreUniqueWinner(inst *Instance) *RoundResult {
	counts := countVotes(inst.Votes)
	top := leaders(counts, inst.Roster)
	res := &RoundResult{
		Winners:    top,
		VoteCounts: counts,
		Awards:     map[string]int{},
	}
	if len(top) == 1 {
		w := top[0]
		res.Winner = &w
		res.Awards[w] = 1
	}
	return res
}

// scorePointsWeighted adds each player's round points to their score and reports
// every leader as a joint winner. A round where every vote carries 0 points is
// decided by vote counts.
func scorePointsWeighted(inst *Instance) *RoundResult {
	counts := countVotes(inst.Votes)
	points := sumPoints(inst.Votes)
	top := leaders(points, inst.Roster)
	res := &RoundResult{
		Winners:    top,
		VoteCounts: counts,
		Points:     points,
		Awards:     map[string]int{},
	}
	for id, n := range points {
		if n > 0 {
			res.Awards[id] = n
		}
	}
	if len(top) == 1 {
		w := top[0]
		res.Winner = &w
	}
	return res
}
