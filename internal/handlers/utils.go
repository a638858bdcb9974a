package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jason-s-yu/partygames/internal/game"
)

// clientID returns the caller's client id from the header.
func clientID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(ClientIDHeader))
}

// roomParam parses the {room_id} path parameter.
func roomParam(r *http.Request) (uuid.UUID, error) {
	return parseRoomID(chi.URLParam(r, "room_id"))
}

func parseRoomID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed room id %q", game.ErrInvalidPayload, s)
	}
	return id, nil
}

// kindParam resolves the game kind from the {kind} parameter or, for the
// fixed per-game routes, the first path segment.
func kindParam(r *http.Request) (game.Kind, error) {
	if k := chi.URLParam(r, "kind"); k != "" {
		return game.ParseKind(k)
	}
	seg := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 2)[0]
	return game.ParseKind(seg)
}

// decodeBody reads a JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", game.ErrInvalidPayload, err)
	}
	return nil
}

// extractCookieToken returns the named cookie's value, or empty if not found.
func extractCookieToken(r *http.Request, cookieName string) string {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
