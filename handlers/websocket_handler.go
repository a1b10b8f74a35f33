package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Dosada05/scoreboard/live"
	"github.com/Dosada05/scoreboard/services"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub      *live.Hub
	session  *services.Session
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler allows any origin when allowedOrigins is empty or contains "*".
func NewWebSocketHandler(hub *live.Hub, session *services.Session, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketHandler{
		hub:     hub,
		session: session,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	if len(set) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// ServeScoreboard godoc
// @Summary Живая лента табло (WebSocket)
// @Description Первое сообщение содержит текущее состояние (type=snapshot), затем приходят события.
// @Tags live
// @Router /ws/scoreboard [get]
func (h *WebSocketHandler) ServeScoreboard(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту ошибкой.
		h.logger.Warn("failed to upgrade scoreboard connection", slog.Any("error", err))
		return
	}
	initial := &live.Message{Type: "snapshot", Payload: h.session.Snapshot(), SentAt: time.Now().UTC()}
	h.hub.Attach(conn, initial)
}
