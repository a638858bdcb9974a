// internal/handlers/game.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/jason-s-yu/partygames/internal/game"
	"github.com/jason-s-yu/partygames/internal/models"
	"github.com/sirupsen/logrus"
)

// NoGameStatus answers a status request for a room that has no game of that kind.
var NoGameStatus = map[string]string{"status": "no_game"}

// SubmitCardsRequest is the body of /cah/submit_cards.
type SubmitCardsRequest struct {
	Cards    []string `json:"cards"`
	PlayerID string   `json:"player_id,omitempty"`
}

// SubmitCaptionRequest is the body of /meme/submit_caption.
type SubmitCaptionRequest struct {
	Captions []string `json:"captions"`
	PlayerID string   `json:"player_id,omitempty"`
}

// VoteRequest is the body of the vote routes.
type VoteRequest struct {
	game.VotePayload
	VoterID string `json:"voter_id,omitempty"`
}

// actor prefers the header identity and falls back to the one in the body.
func actor(r *http.Request, fromBody string) string {
	if id := clientID(r); id != "" {
		return id
	}
	return fromBody
}

// StartGameHandler starts a game of {kind} in the room. Only the creator may.
func (s *Server) StartGameHandler(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	roomID, err := roomParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	inst, err := s.Manager.Start(r.Context(), kind, roomID, clientID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.Registry.SetStatus(r.Context(), roomID, models.RoomPlaying); err != nil {
		s.Logger.WithField("room", roomID).Warnf("failed to mark room playing: %v", err)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "game started",
		"room_id": roomID.String(),
		"game":    kind,
		"game_id": inst.ID.String(),
	})
}

// GameStatusHandler returns the caller's view of the room's game.
func (s *Server) GameStatusHandler(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	roomID, err := roomParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.status(w, r, kind, roomID.String())
}

// LegacyStatusHandler serves /game_status?room_id= for the card game.
func (s *Server) LegacyStatusHandler(w http.ResponseWriter, r *http.Request) {
	s.status(w, r, game.KindCAH, r.URL.Query().Get("room_id"))
}

func (s *Server) status(w http.ResponseWriter, r *http.Request, kind game.Kind, rawRoomID string) {
	roomID, err := parseRoomID(rawRoomID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	view, err := s.Manager.Status(r.Context(), kind, roomID, clientID(r))
	if errors.Is(err, game.ErrNotFound) {
		writeJSON(w, http.StatusOK, NoGameStatus)
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// SubmitCardsHandler plays cards from the caller's hand.
func (s *Server) SubmitCardsHandler(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req SubmitCardsRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.Manager.SubmitCards(r.Context(), roomID, actor(r, req.PlayerID), req.Cards); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cards_received"})
}

// SubmitCaptionHandler captions the current meme.
func (s *Server) SubmitCaptionHandler(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req SubmitCaptionRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.Manager.SubmitCaptions(r.Context(), roomID, actor(r, req.PlayerID), req.Captions); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "caption_received"})
}

// VoteHandler records the caller's vote.
func (s *Server) VoteHandler(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	roomID, err := roomParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req VoteRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.Manager.Vote(r.Context(), kind, roomID, actor(r, req.VoterID), req.VotePayload); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Vote registered"})
}

// AdvanceHandler moves the room's game to its next round.
func (s *Server) AdvanceHandler(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	roomID, err := roomParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.Manager.Advance(r.Context(), kind, roomID, clientID(r))
	if res != nil && res.GameOver {
		if err := s.Registry.SetStatus(r.Context(), roomID, models.RoomWaiting); err != nil {
			s.Logger.WithField("room", roomID).Warnf("failed to mark room waiting: %v", err)
		}
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// CardsHandler lists the answer cards.
func (s *Server) CardsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"cards": s.Pools.Cards()})
}

// QuestionsHandler lists the card game's questions.
func (s *Server) QuestionsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"questions": s.Pools.Questions()})
}

// MemeTemplatesHandler lists the meme templates.
func (s *Server) MemeTemplatesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Pools.Memes())
}

// TimersHandler lists rooms with a running phase timer.
func (s *Server) TimersHandler(w http.ResponseWriter, r *http.Request) {
	rooms := s.Manager.ActiveTimers()
	ids := make([]string, len(rooms))
	for i, id := range rooms {
		ids[i] = id.String()
	}
	s.Logger.WithFields(logrus.Fields{"count": len(ids)}).Debug("listing active timers")
	writeJSON(w, http.StatusOK, map[string]interface{}{"active_timers": ids, "count": len(ids)})
}
