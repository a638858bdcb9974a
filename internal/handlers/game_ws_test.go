package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/jason-s-yu/partygames/internal/content"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) dial(roomID uuid.UUID, query string) *websocket.Conn {
	e.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(e.srv.URL, "http") + "/ws/" + roomID.String() + "?" + query
	c, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(e.t, err)
	e.t.Cleanup(func() { c.CloseNow() })
	return c
}

func send(t *testing.T, c *websocket.Conn, msg interface{}) {
	t.Helper()
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Write(ctx, websocket.MessageText, data))
}

func recv(t *testing.T, c *websocket.Conn) map[string]interface{} {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, data, err := c.Read(ctx)
	require.NoError(t, err)
	var msg map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

// recvType reads until a message of the given type arrives.
func recvType(t *testing.T, c *websocket.Conn, typ string) map[string]interface{} {
	t.Helper()
	for i := 0; i < 10; i++ {
		msg := recv(t, c)
		if msg["type"] == typ {
			return msg
		}
	}
	t.Fatalf("no %s message received", typ)
	return nil
}

func TestWebSocketRejectsBadRequests(t *testing.T) {
	e := newTestEnv(t)
	roomID, _ := e.room(2)
	ctx := context.Background()
	base := "ws" + strings.TrimPrefix(e.srv.URL, "http") + "/ws/"

	_, resp, err := websocket.Dial(ctx, base+roomID.String(), nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, resp, err = websocket.Dial(ctx, base+uuid.NewString()+"?client_id=p1", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, resp, err = websocket.Dial(ctx, base+roomID.String()+"?client_id=p1&game=chess", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWebSocketWithoutGame(t *testing.T) {
	e := newTestEnv(t)
	roomID, _ := e.room(2)

	c := e.dial(roomID, "client_id=p1")
	msg := recv(t, c)
	assert.Equal(t, "no_game", msg["status"])

	send(t, c, GameMessage{Type: MsgSubmitVote, VoteFor: "p2"})
	errMsg := recvType(t, c, "error")
	assert.NotEmpty(t, errMsg["message"])
}

func TestWebSocketVotingRound(t *testing.T) {
	e := newTestEnv(t)
	roomID, _ := e.room(3)
	require.Equal(t, http.StatusOK, e.do(http.MethodPost, "/voting/start_game/"+roomID.String(), "p1", nil, nil).StatusCode)

	p1 := e.dial(roomID, "client_id=p1&game=voting")
	p2 := e.dial(roomID, "client_id=p2")

	first := recv(t, p1)
	assert.Equal(t, "game_update", first["type"])
	assert.Equal(t, "voting", first["status"])
	you := first["you"].(map[string]interface{})
	assert.Equal(t, "p1", you["client_id"])
	assert.True(t, you["is_creator"].(bool))
	recvType(t, p2, "game_update")

	require.Eventually(t, func() bool { return e.server.Hub.Count(roomID) == 2 }, 5*time.Second, 10*time.Millisecond)

	send(t, p1, GameMessage{Type: MsgSubmitVote, VoteFor: "p2"})
	voted := recvType(t, p2, "player_voted")
	assert.Equal(t, float64(1), voted["votes_cast"])
	_, leaked := voted["vote_for"]
	assert.False(t, leaked)
	ack := recvType(t, p1, "ack")
	assert.Equal(t, MsgSubmitVote, ack["action"])

	send(t, p1, GameMessage{Type: MsgSubmitVote, VoteFor: "p3"})
	dup := recvType(t, p1, "error")
	assert.Contains(t, dup["message"], "already voted")

	send(t, p2, GameMessage{Type: "dance"})
	unknown := recvType(t, p2, "error")
	assert.Contains(t, unknown["message"], "unknown message type")

	send(t, p2, GameMessage{Type: MsgNextQuestion})
	early := recvType(t, p2, "error")
	assert.NotEmpty(t, early["message"])

	// pongs are swallowed; the next reply belongs to get_status
	send(t, p2, GameMessage{Type: MsgPong})
	send(t, p2, GameMessage{Type: MsgGetStatus})
	status := recv(t, p2)
	assert.Equal(t, "game_update", status["type"])
	assert.False(t, status["you"].(map[string]interface{})["is_creator"].(bool))
}

func TestWebSocketCaptionForms(t *testing.T) {
	decode := func(raw string) GameMessage {
		var m GameMessage
		require.NoError(t, json.Unmarshal([]byte(raw), &m))
		return m
	}
	assert.Equal(t, []string{"one"}, decode(`{"type":"submit_caption","caption":"one"}`).captions())
	assert.Equal(t, []string{"a", "b"}, decode(`{"type":"submit_caption","caption":["a","b"]}`).captions())
	assert.Equal(t, []string{"a", "b"}, decode(`{"caption":"x","captions":["a","b"]}`).captions())
	assert.Nil(t, decode(`{"type":"submit_caption"}`).captions())
	assert.Nil(t, decode(`{"caption":""}`).captions())

	var m GameMessage
	assert.Error(t, json.Unmarshal([]byte(`{"caption":7}`), &m))
}

func TestWebSocketPointsForms(t *testing.T) {
	cases := map[string]int{
		`{"points":3}`:     3,
		`{"points":"3"}`:   3,
		`{"points":" 2 "}`: 2,
		`{"points":""}`:    0,
		`{"points":null}`:  0,
		`{}`:               0,
	}
	for raw, want := range cases {
		var m GameMessage
		require.NoError(t, json.Unmarshal([]byte(raw), &m), raw)
		assert.Equal(t, want, int(m.Points), raw)
	}

	for _, raw := range []string{`{"points":"three"}`, `{"points":true}`, `{"points":1.5}`} {
		var m GameMessage
		assert.Error(t, json.Unmarshal([]byte(raw), &m), raw)
	}
}

func TestWebSocketMemeCaptionList(t *testing.T) {
	e := newTestEnv(t, content.Meme{
		ID:           "drake",
		Name:         "Drake",
		CaptionSlots: []content.CaptionSlot{{Label: "no"}, {Label: "yes"}},
	})
	roomID, _ := e.room(2)
	require.Equal(t, http.StatusOK, e.do(http.MethodPost, "/meme/start_game/"+roomID.String(), "p1", nil, nil).StatusCode)

	p2 := e.dial(roomID, "client_id=p2&game=meme")
	recvType(t, p2, "game_update")

	send(t, p2, json.RawMessage(`{"type":"submit_caption","caption":["tests","shipping"]}`))
	ack := recvType(t, p2, "ack")
	assert.Equal(t, MsgSubmitCaption, ack["action"])

	send(t, p2, json.RawMessage(`{"type":"submit_caption","caption":["again","twice"]}`))
	dup := recvType(t, p2, "error")
	assert.NotEmpty(t, dup["message"])
}

func TestWebSocketClosesFloodingClient(t *testing.T) {
	e := newTestEnv(t)
	roomID, _ := e.room(2)
	c := e.dial(roomID, "client_id=p1")
	recv(t, c)

	closed := make(chan websocket.StatusCode, 1)
	go func() {
		for {
			if _, _, err := c.Read(context.Background()); err != nil {
				closed <- websocket.CloseStatus(err)
				return
			}
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pong, err := json.Marshal(GameMessage{Type: MsgPong})
	require.NoError(t, err)
	for i := 0; i < wsBurst+wsMaxDropped+50; i++ {
		if c.Write(ctx, websocket.MessageText, pong) != nil {
			break
		}
	}

	select {
	case code := <-closed:
		assert.Equal(t, websocket.StatusCode(RateLimitedError), code)
	case <-time.After(5 * time.Second):
		t.Fatal("flooding client was not disconnected")
	}
}
