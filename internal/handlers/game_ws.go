// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jason-s-yu/partygames/internal/game"
	"github.com/jason-s-yu/partygames/internal/middleware"
	"github.com/jason-s-yu/partygames/internal/models"
	"github.com/jason-s-yu/partygames/internal/realtime"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Inbound rate limit per connection. A client that keeps sending while
// limited for wsMaxDropped messages in a row is disconnected.
const (
	wsRate       = 10
	wsBurst      = 20
	wsMaxDropped = 100
)

// Inbound message types.
const (
	MsgGetStatus     = "get_status"
	MsgSubmitCards   = "submit_cards"
	MsgSubmitCaption = "submit_caption"
	MsgSubmitVote    = "submit_vote"
	MsgNextRound     = "next_round"
	MsgNextMeme      = "next_meme"
	MsgNextQuestion  = "next_question"
	MsgPong          = "pong"
)

// GameMessage is an inbound websocket message. Which fields apply depends on Type.
type GameMessage struct {
	Type     string      `json:"type"`
	Cards    []string    `json:"cards,omitempty"`
	Caption  captionList `json:"caption,omitempty"`
	Captions []string    `json:"captions,omitempty"`
	VoteFor  string      `json:"vote_for,omitempty"`
	Points   looseInt    `json:"points,omitempty"`
}

// captions accepts either field, preferring the plural one.
func (m GameMessage) captions() []string {
	if len(m.Captions) > 0 {
		return m.Captions
	}
	return m.Caption
}

// captionList decodes "caption" given as a single string or as a list.
type captionList []string

func (c *captionList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one == "" {
			*c = nil
		} else {
			*c = captionList{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("caption must be a string or a list of strings")
	}
	*c = many
	return nil
}

// looseInt decodes a JSON number or a numeric string. null and "" are 0.
type looseInt int

func (n *looseInt) UnmarshalJSON(data []byte) error {
	var v int
	if err := json.Unmarshal(data, &v); err == nil {
		*n = looseInt(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("points must be an integer")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*n = 0
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("points must be an integer, got %q", s)
	}
	*n = looseInt(v)
	return nil
}

// WsError is the outbound error variant.
type WsError struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	GameOver bool   `json:"game_over,omitempty"`
}

// ActionAck confirms an accepted action to its sender.
type ActionAck struct {
	Type   string      `json:"type"`
	Action string      `json:"action"`
	Result interface{} `json:"result,omitempty"`
}

// wsClient is one socket's dispatcher state.
type wsClient struct {
	s        *Server
	conn     *realtime.Conn
	roomID   uuid.UUID
	clientID string
	kind     game.Kind // empty: follow whatever game the room runs
	log      *logrus.Entry
}

// GameWSHandler upgrades /ws/{room_id}?client_id=&game= and serves the room's game
// over the socket until the client leaves.
func (s *Server) GameWSHandler(w http.ResponseWriter, r *http.Request) {
	roomID, err := uuid.Parse(chi.URLParam(r, "room_id"))
	if err != nil {
		http.Error(w, "invalid room id", http.StatusBadRequest)
		return
	}
	clientID := strings.TrimSpace(r.URL.Query().Get("client_id"))
	if clientID == "" {
		http.Error(w, "missing client_id", http.StatusBadRequest)
		return
	}
	var kind game.Kind
	if g := r.URL.Query().Get("game"); g != "" {
		if kind, err = game.ParseKind(g); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if _, err := s.Registry.Room(r.Context(), roomID); err != nil {
		if errors.Is(err, models.ErrRoomNotFound) {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		s.writeError(w, r, err)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.originPatterns(),
	})
	if err != nil {
		s.Logger.Warnf("websocket accept error for room %s: %v", roomID, err)
		return
	}
	defer ws.CloseNow()
	middleware.LogWebSocketConnect(s.Logger, r.RemoteAddr, r.URL.Path)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn := realtime.NewConn(roomID, clientID, ws)
	s.Hub.Register(conn)
	defer s.Hub.Unregister(conn)

	go func() {
		if err := s.Hub.Pump(ctx, conn); err != nil && ctx.Err() == nil {
			s.Logger.WithFields(logrus.Fields{"room": roomID, "client": clientID}).Warnf("write pump stopped: %v", err)
		}
		cancel()
	}()

	c := &wsClient{
		s:        s,
		conn:     conn,
		roomID:   roomID,
		clientID: clientID,
		kind:     kind,
		log:      s.Logger.WithFields(logrus.Fields{"room": roomID, "client": clientID}),
	}
	if err := s.Registry.Touch(ctx, roomID, clientID); err != nil {
		c.log.Warnf("failed to touch player: %v", err)
	}
	c.sendStatus(ctx)

	err = c.readLoop(ctx, ws)
	middleware.LogWebSocketDisconnect(s.Logger, r.RemoteAddr, r.URL.Path, err)
	if errors.Is(err, errRateLimited) {
		ws.Close(RateLimitedError, "rate limit exceeded")
		return
	}
	ws.Close(websocket.StatusNormalClosure, "")
}

var errRateLimited = errors.New("rate limit exceeded")

// readLoop returns nil on a normal close.
func (c *wsClient) readLoop(ctx context.Context, ws *websocket.Conn) error {
	limiter := rate.NewLimiter(rate.Limit(wsRate), wsBurst)
	dropped := 0
	for {
		msgType, data, err := ws.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || ctx.Err() != nil {
				return nil
			}
			return err
		}
		if !limiter.Allow() {
			dropped++
			if dropped >= wsMaxDropped {
				return errRateLimited
			}
			if dropped == 1 {
				c.log.Warn("websocket rate limit exceeded")
				c.sendError("rate limit exceeded, slow down", false)
			}
			continue
		}
		dropped = 0
		if msgType != websocket.MessageText {
			c.sendError("only text messages are accepted", false)
			continue
		}

		var msg GameMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError("invalid JSON format", false)
			continue
		}
		c.dispatch(ctx, msg)
	}
}

// dispatch routes one inbound message to the engine.
func (c *wsClient) dispatch(ctx context.Context, msg GameMessage) {
	c.log.WithField("type", msg.Type).Debug("websocket message")

	if msg.Type == MsgPong {
		return
	}
	if msg.Type == MsgGetStatus {
		c.sendStatus(ctx)
		return
	}

	kind, err := c.resolveKind()
	if err != nil {
		c.sendActionError(err)
		return
	}

	var result interface{}
	switch msg.Type {
	case MsgSubmitCards:
		err = c.s.Manager.SubmitCards(ctx, c.roomID, c.clientID, msg.Cards)
	case MsgSubmitCaption:
		err = c.s.Manager.SubmitCaptions(ctx, c.roomID, c.clientID, msg.captions())
	case MsgSubmitVote:
		err = c.s.Manager.Vote(ctx, kind, c.roomID, c.clientID, game.VotePayload{For: msg.VoteFor, Points: int(msg.Points)})
	case MsgNextRound, MsgNextMeme, MsgNextQuestion:
		var res *game.AdvanceResult
		res, err = c.s.Manager.Advance(ctx, kind, c.roomID, c.clientID)
		if res != nil && res.GameOver {
			if serr := c.s.Registry.SetStatus(ctx, c.roomID, models.RoomWaiting); serr != nil {
				c.log.Warnf("failed to mark room waiting: %v", serr)
			}
		}
		result = res
	default:
		c.sendError(fmt.Sprintf("unknown message type: %s", msg.Type), false)
		return
	}
	if err != nil {
		c.sendActionError(err)
		return
	}
	c.send(ActionAck{Type: "ack", Action: msg.Type, Result: result})
}

// resolveKind is the socket's game, or the one the room currently runs.
func (c *wsClient) resolveKind() (game.Kind, error) {
	if c.kind != "" {
		return c.kind, nil
	}
	inst, ok := c.s.Manager.Instance(c.roomID)
	if !ok {
		return "", fmt.Errorf("%w: room %s has no game", game.ErrNotFound, c.roomID)
	}
	return inst.Kind, nil
}

func (c *wsClient) sendStatus(ctx context.Context) {
	kind, err := c.resolveKind()
	if errors.Is(err, game.ErrNotFound) {
		c.send(NoGameStatus)
		return
	}
	view, err := c.s.Manager.Status(ctx, kind, c.roomID, c.clientID)
	if errors.Is(err, game.ErrNotFound) {
		c.send(NoGameStatus)
		return
	}
	if err != nil {
		c.sendActionError(err)
		return
	}
	c.send(view)
}

func (c *wsClient) send(msg interface{}) {
	if err := c.s.Hub.Send(c.conn, msg); err != nil {
		c.log.Debugf("dropped reply: %v", err)
	}
}

func (c *wsClient) sendError(message string, gameOver bool) {
	c.send(WsError{Type: "error", Message: message, GameOver: gameOver})
}

func (c *wsClient) sendActionError(err error) {
	if statusFor(err) == http.StatusInternalServerError {
		c.log.Errorf("action failed: %v", err)
		c.sendError("internal server error", false)
		return
	}
	c.sendError(err.Error(), errors.Is(err, game.ErrPoolExhausted))
}

// originPatterns allows the configured frontend host.
func (s *Server) originPatterns() []string {
	u, err := url.Parse(s.FrontendURL)
	if err != nil || u.Host == "" {
		return nil
	}
	return []string{u.Host}
}
