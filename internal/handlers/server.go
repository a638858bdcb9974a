// internal/handlers/server.go
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jason-s-yu/partygames/internal/content"
	"github.com/jason-s-yu/partygames/internal/game"
	"github.com/jason-s-yu/partygames/internal/middleware"
	"github.com/jason-s-yu/partygames/internal/realtime"
	"github.com/jason-s-yu/partygames/internal/rooms"
	"github.com/sirupsen/logrus"
)

// ClientIDHeader carries the caller's opaque client id on HTTP requests.
const ClientIDHeader = "X-Client-ID"

// Server holds everything the HTTP and websocket handlers need.
type Server struct {
	Manager     *game.Manager
	Registry    *rooms.Registry
	Hub         *realtime.Hub
	Pools       *content.Pools
	Logger      *logrus.Logger
	FrontendURL string
	// SecureCookies marks the session cookie Secure; set it behind HTTPS.
	SecureCookies bool
}

// Routes builds the chi router with the full route table.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{s.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", ClientIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ws/{room_id}", s.GameWSHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.LogMiddleware(s.Logger))

		r.Post("/create_room", s.CreateRoomHandler)
		r.Post("/join_room_with_username/{room_id}", s.JoinRoomHandler)
		r.Get("/room_messages", s.RoomMessagesHandler)
		r.Get("/rooms/{room_id}/qr", s.RoomQRHandler)

		r.Post("/{kind}/start_game/{room_id}", s.StartGameHandler)
		r.Get("/{kind}/game_status/{room_id}", s.GameStatusHandler)
		r.Get("/game_status", s.LegacyStatusHandler)

		r.Post("/cah/submit_cards/{room_id}", s.SubmitCardsHandler)
		r.Post("/meme/submit_caption/{room_id}", s.SubmitCaptionHandler)
		r.Post("/{kind}/vote/{room_id}", s.VoteHandler)
		r.Post("/cah/submit_vote/{room_id}", s.VoteHandler)

		r.Post("/cah/next_round/{room_id}", s.AdvanceHandler)
		r.Post("/meme/next_meme/{room_id}", s.AdvanceHandler)
		r.Post("/voting/next_question/{room_id}", s.AdvanceHandler)

		r.Get("/cah/cards", s.CardsHandler)
		r.Get("/cah/questions", s.QuestionsHandler)
		r.Get("/meme/templates", s.MemeTemplatesHandler)

		r.Get("/debug/timers", s.TimersHandler)
	})
	return r
}
