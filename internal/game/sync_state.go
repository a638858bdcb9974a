// internal/game/sync_state.go
package game

import (
	"sort"
	"time"
)

// view projects the instance for one viewer. An empty viewer builds the public
// projection that is broadcast to the room. The caller holds inst.mu.
func (inst *Instance) view(now time.Time, viewer string) interface{} {
	submit, vote, _ := inst.rules.Phases()
	switch {
	case submit != "" && inst.Phase == submit:
		return inst.submissionView(now, viewer)
	case inst.Phase == vote:
		return inst.votingView(now, viewer)
	default:
		return inst.resultsView(now, viewer)
	}
}

func (inst *Instance) players() []PlayerView {
	out := make([]PlayerView, len(inst.Roster))
	for i, p := range inst.Roster {
		out[i] = PlayerView{ClientID: p.ClientID, Username: p.Username}
	}
	return out
}

func (inst *Instance) scores() map[string]int {
	out := make(map[string]int, len(inst.Scores))
	for id, s := range inst.Scores {
		out[id] = s
	}
	return out
}

func (inst *Instance) czar() *PlayerView {
	if inst.Judge == "" {
		return nil
	}
	return &PlayerView{ClientID: inst.Judge, Username: inst.username(inst.Judge)}
}

func (inst *Instance) viewer(viewer string) *ViewerState {
	if viewer == "" || !inst.inRoster(viewer) {
		return nil
	}
	_, submitted := inst.Submissions[viewer]
	_, voted := inst.Votes[viewer]
	vs := &ViewerState{
		ClientID:     viewer,
		IsCreator:    viewer == inst.Creator,
		IsCzar:       inst.Judge != "" && viewer == inst.Judge,
		HasSubmitted: submitted,
		HasVoted:     voted,
	}
	if hand, ok := inst.Hands[viewer]; ok {
		vs.Hand = append([]string{}, hand...)
	}
	return vs
}

func (inst *Instance) submissionView(now time.Time, viewer string) *SubmissionUpdate {
	done, needed := inst.submittedCount()
	return &SubmissionUpdate{
		Type:      TypeGameUpdate,
		Game:      inst.Kind,
		Status:    inst.Phase,
		Round:     inst.Round,
		Remaining: inst.remaining(now),
		Players:   inst.players(),
		Scores:    inst.scores(),
		Submitted: done,
		Needed:    needed,
		Question:  inst.Question,
		Meme:      inst.Meme,
		Czar:      inst.czar(),
		You:       inst.viewer(viewer),
	}
}

func (inst *Instance) votingView(now time.Time, viewer string) *VotingUpdate {
	candidates := inst.rules.Candidates(inst, viewer)
	inst.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	return &VotingUpdate{
		Type:        TypeGameUpdate,
		Game:        inst.Kind,
		Status:      inst.Phase,
		Round:       inst.Round,
		Remaining:   inst.remaining(now),
		Players:     inst.players(),
		Scores:      inst.scores(),
		Submissions: candidates,
		VotesCast:   len(inst.Votes),
		Question:    inst.Question,
		Meme:        inst.Meme,
		Poll:        inst.Poll,
		Czar:        inst.czar(),
		You:         inst.viewer(viewer),
	}
}

func (inst *Instance) resultsView(now time.Time, viewer string) *ResultsUpdate {
	res := inst.LastResult
	if res == nil {
		res = &RoundResult{Winners: []string{}, VoteCounts: map[string]int{}}
	}
	out := &ResultsUpdate{
		Type:        TypeGameUpdate,
		Game:        inst.Kind,
		Status:      inst.Phase,
		Round:       inst.Round,
		Remaining:   inst.remaining(now),
		Players:     inst.players(),
		Scores:      inst.scores(),
		RoundWinner: res.Winner,
		Winners:     append([]string{}, res.Winners...),
		VoteCounts:  res.VoteCounts,
		Points:      res.Points,
		Question:    inst.Question,
		Meme:        inst.Meme,
		Poll:        inst.Poll,
		Czar:        inst.czar(),
		GameOver:    inst.Over,
		You:         inst.viewer(viewer),
	}
	for _, p := range inst.Roster {
		sub, ok := inst.Submissions[p.ClientID]
		if !ok {
			continue
		}
		out.Submissions = append(out.Submissions, RevealedSubmission{
			ClientID: p.ClientID,
			Username: p.Username,
			Content:  sub.Content,
			Votes:    res.VoteCounts[p.ClientID],
			Points:   res.Points[p.ClientID],
		})
	}
	return out
}

// standings orders the roster by score, keeping roster order among equals.
func (inst *Instance) standings() []Standing {
	out := make([]Standing, len(inst.Roster))
	for i, p := range inst.Roster {
		out[i] = Standing{ClientID: p.ClientID, Username: p.Username, Score: inst.Scores[p.ClientID]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func (inst *Instance) gameOverMessage() *GameOver {
	standings := inst.standings()
	winners := []string{}
	if len(standings) > 0 && standings[0].Score > 0 {
		for _, s := range standings {
			if s.Score == standings[0].Score {
				winners = append(winners, s.ClientID)
			}
		}
	}
	msg := "Game over"
	if inst.OverReason == ReasonPoolExhausted {
		msg = "No more content left to play"
	}
	return &GameOver{
		Type:      TypeGameOver,
		Game:      inst.Kind,
		Reason:    inst.OverReason,
		Message:   msg,
		Standings: standings,
		Winners:   winners,
	}
}
