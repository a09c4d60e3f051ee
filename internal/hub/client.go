package hub

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The hub carries no credentials and all event payloads are public
	// within the platform, so cross-origin dashboards may connect.
	CheckOrigin: func(*http.Request) bool { return true },
}

// clientMessage is an inbound subscription command from the client.
type clientMessage struct {
	Action     string `json:"action"` // "join" or "leave"
	DisasterID string `json:"disaster_id"`
}

// ServeWS upgrades an HTTP request to a websocket connection and runs its
// read/write pumps until the peer goes away.
func ServeWS(h *Hub, w http.ResponseWriter, r *http.Request, logger *slog.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	connID := uuid.NewString()
	send := h.Connect(connID)

	go writePump(conn, send, logger)
	go readPump(h, conn, connID, logger)
}

// readPump consumes join/leave commands until the connection errors, then
// tears the connection down. Membership cleanup happens exactly once, here.
func readPump(h *Hub, conn *websocket.Conn, connID string, logger *slog.Logger) {
	defer func() {
		h.Disconnect(connID)
		conn.Close()
	}()

	conn.SetReadLimit(maxMsgSize)
	conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("websocket read error", "conn_id", connID, "error", err)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warn("malformed client message", "conn_id", connID, "error", err)
			continue
		}

		switch msg.Action {
		case "join":
			h.Join(connID, msg.DisasterID)
		case "leave":
			h.Leave(connID, msg.DisasterID)
		default:
			logger.Warn("unknown client action", "conn_id", connID, "action", msg.Action)
		}
	}
}

// writePump forwards hub deliveries to the peer and keeps the connection
// alive with pings. Exits when the hub closes the send channel.
func writePump(conn *websocket.Conn, send <-chan []byte, logger *slog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case data, ok := <-send:
			conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logger.Debug("websocket write failed", "error", err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
