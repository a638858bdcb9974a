package game

import "github.com/jason-s-yu/partygames/internal/content"

// Message type discriminators.
const (
	TypeGameUpdate      = "game_update"
	TypePlayerSubmitted = "player_submitted"
	TypePlayerVoted     = "player_voted"
	TypeGameOver        = "game_over"
)

// PlayerView is a roster entry as shown to clients.
type PlayerView struct {
	ClientID string `json:"client_id"`
	Username string `json:"username"`
}

// ViewerState carries the fields private to the requesting player. It is
// never part of a room broadcast.
type ViewerState struct {
	ClientID     string   `json:"client_id"`
	IsCreator    bool     `json:"is_creator"`
	IsCzar       bool     `json:"is_czar"`
	Hand         []string `json:"player_hand,omitempty"`
	HasSubmitted bool     `json:"has_submitted"`
	HasVoted     bool     `json:"has_voted"`
}

// SubmissionUpdate is the game_update of a submission phase (playing, captioning).
type SubmissionUpdate struct {
	Type      string            `json:"type"`
	Game      Kind              `json:"game"`
	Status    Phase             `json:"status"`
	Round     int               `json:"round"`
	Remaining int               `json:"remaining"`
	Players   []PlayerView      `json:"players"`
	Scores    map[string]int    `json:"scores"`
	Submitted int               `json:"submitted_count"`
	Needed    int               `json:"needed_count"`
	Question  *content.Question `json:"current_question,omitempty"`
	Meme      *content.Meme     `json:"current_meme,omitempty"`
	Czar      *PlayerView       `json:"card_czar,omitempty"`
	You       *ViewerState      `json:"you,omitempty"`
}

// VotingUpdate is the game_update of a voting phase. Submissions are anonymized
// and shuffled independently for every view.
type VotingUpdate struct {
	Type        string            `json:"type"`
	Game        Kind              `json:"game"`
	Status      Phase             `json:"status"`
	Round       int               `json:"round"`
	Remaining   int               `json:"remaining"`
	Players     []PlayerView      `json:"players"`
	Scores      map[string]int    `json:"scores"`
	Submissions []Candidate       `json:"submissions"`
	VotesCast   int               `json:"votes_cast"`
	Question    *content.Question `json:"current_question,omitempty"`
	Meme        *content.Meme     `json:"current_meme,omitempty"`
	Poll        string            `json:"question,omitempty"`
	Czar        *PlayerView       `json:"card_czar,omitempty"`
	You         *ViewerState      `json:"you,omitempty"`
}

// RevealedSubmission is a submission with its author, shown once voting closed.
type RevealedSubmission struct {
	ClientID string   `json:"client_id"`
	Username string   `json:"username"`
	Content  []string `json:"content"`
	Votes    int      `json:"votes"`
	Points   int      `json:"points,omitempty"`
}

// ResultsUpdate is the game_update of a results phase (results, finished).
type ResultsUpdate struct {
	Type        string               `json:"type"`
	Game        Kind                 `json:"game"`
	Status      Phase                `json:"status"`
	Round       int                  `json:"round"`
	Remaining   int                  `json:"remaining"`
	Players     []PlayerView         `json:"players"`
	Scores      map[string]int       `json:"scores"`
	RoundWinner *string              `json:"round_winner"`
	Winners     []string             `json:"winners"`
	VoteCounts  map[string]int       `json:"vote_counts"`
	Points      map[string]int       `json:"points,omitempty"`
	Submissions []RevealedSubmission `json:"submissions,omitempty"`
	Question    *content.Question    `json:"current_question,omitempty"`
	Meme        *content.Meme        `json:"current_meme,omitempty"`
	Poll        string               `json:"question,omitempty"`
	Czar        *PlayerView          `json:"card_czar,omitempty"`
	GameOver    bool                 `json:"game_over"`
	You         *ViewerState         `json:"you,omitempty"`
}

// PlayerSubmitted tells the room someone submitted, without revealing what.
type PlayerSubmitted struct {
	Type     string `json:"type"`
	Game     Kind   `json:"game"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Count    int    `json:"submitted_count"`
	Needed   int    `json:"needed_count"`
}

// PlayerVoted tells the room a vote was cast. The voter and target stay hidden.
type PlayerVoted struct {
	Type   string `json:"type"`
	Game   Kind   `json:"game"`
	Count  int    `json:"votes_cast"`
	Needed int    `json:"voters"`
}

// Standing is one line of the final scoreboard.
type Standing struct {
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// GameOver is broadcast once when a game ends.
type GameOver struct {
	Type      string     `json:"type"`
	Game      Kind       `json:"game"`
	Reason    string     `json:"reason"`
	Message   string     `json:"message"`
	Standings []Standing `json:"standings"`
	Winners   []string   `json:"winners"`
}
