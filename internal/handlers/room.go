// internal/handlers/room.go
package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jason-s-yu/partygames/internal/auth"
	"github.com/skip2/go-qrcode"
)

// qrSize is the edge length of the join QR code in pixels.
const qrSize = 320

// JoinRoomRequest is the body of /join_room_with_username.
type JoinRoomRequest struct {
	Username string `json:"username"`
	ClientID string `json:"client_id"`
}

// RoomMessagesResponse is the body of /room_messages.
type RoomMessagesResponse struct {
	RoomID    string            `json:"room_id"`
	Messages  []string          `json:"messages"`
	IsCreator bool              `json:"is_creator"`
	PlayerMap map[string]string `json:"player_map"`
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// CreateRoomHandler opens a room owned by the caller and hands out its session cookie.
func (s *Server) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	room, err := s.Registry.Create(r.Context(), clientID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	token, err := auth.CreateRoomToken(room.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]string{"room_id": room.ID.String()})
}

// JoinRoomHandler adds the caller to a room under a display name. Joining
// again renames the player in place.
func (s *Server) JoinRoomHandler(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req JoinRoomRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.ClientID == "" {
		req.ClientID = clientID(r)
	}

	player, err := s.Registry.Join(r.Context(), roomID, req.ClientID, req.Username)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	token, err := auth.CreateRoomToken(roomID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("User '%s' joined room %s", player.Username, roomID),
		"room_id": roomID.String(),
	})
}

// RoomMessagesHandler describes the room named by the session cookie.
func (s *Server) RoomMessagesHandler(w http.ResponseWriter, r *http.Request) {
	roomID, err := auth.AuthenticateRoomToken(extractCookieToken(r, auth.CookieName))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	room, err := s.Registry.Room(r.Context(), roomID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	players, err := s.Registry.Players(r.Context(), roomID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	playerMap := make(map[string]string, len(players))
	for _, p := range players {
		playerMap[p.ClientID] = p.Username
	}
	writeJSON(w, http.StatusOK, RoomMessagesResponse{
		RoomID:    roomID.String(),
		Messages:  []string{fmt.Sprintf("Welcome to room %s!", roomID)},
		IsCreator: clientID(r) != "" && room.Creator == clientID(r),
		PlayerMap: playerMap,
	})
}

// RoomQRHandler renders the room's join link as a PNG QR code.
func (s *Server) RoomQRHandler(w http.ResponseWriter, r *http.Request) {
	roomID, err := roomParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.Registry.Room(r.Context(), roomID); err != nil {
		s.writeError(w, r, err)
		return
	}

	url := strings.TrimRight(s.FrontendURL, "/") + "/room/" + roomID.String()
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("qr generation failed: %w", err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}
