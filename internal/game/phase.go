package game

import "fmt"

// Kind identifies a game mode.
type Kind string

const (
	KindCAH    Kind = "cah"
	KindMeme   Kind = "meme"
	KindVoting Kind = "voting"
)

// ParseKind validates a game mode name taken from a request.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindCAH, KindMeme, KindVoting:
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown game %q", ErrInvalidPayload, s)
}

// Phase is a named stage of a round. The set of phases a game uses depends on its kind.
type Phase string

const (
	PhasePlaying    Phase = "playing"
	PhaseCaptioning Phase = "captioning"
	PhaseVoting     Phase = "voting"
	PhaseResults    Phase = "results"
	PhaseFinished   Phase = "finished"
)
