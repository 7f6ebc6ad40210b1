package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Dosada05/fight-league/brackets"
	"github.com/Dosada05/fight-league/services"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// TODO: check Origin against the CORS allow-list once it is configurable.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	hub               *brackets.Hub
	tournamentService services.TournamentService
	bracketService    services.BracketService
	logger            *slog.Logger
}

func NewWebSocketHandler(hub *brackets.Hub, ts services.TournamentService, bs services.BracketService, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:               hub,
		tournamentService: ts,
		bracketService:    bs,
		logger:            logger,
	}
}

// ServeWs subscribes the client to a tournament's room at /ws/tournaments/{tournamentID}.
// The current bracket, when there is one, is sent first.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if _, err := h.tournamentService.GetByID(r.Context(), tournamentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	snapshot, err := h.bracketService.Bracket(r.Context(), tournamentID)
	if err != nil && !errors.Is(err, services.ErrBracketNotGenerated) {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		h.logger.Warn("websocket upgrade failed", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		return
	}

	room := brackets.RoomForTournament(tournamentID)
	client := &brackets.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: room,
	}

	if snapshot != nil {
		msg, err := json.Marshal(brackets.WebSocketMessage{Type: brackets.MessageBracketSnapshot, Payload: snapshot, RoomID: room})
		if err == nil {
			client.Send <- msg
		}
	}

	client.Hub.Register <- client
	go client.WritePump()
	go client.ReadPump()

	h.logger.Info("websocket client subscribed", slog.Int("tournament_id", tournamentID))
}
