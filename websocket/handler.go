package websocket

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/taxdesk_backend/apperrors"
	"github.com/HSouheill/taxdesk_backend/middleware"
)

const (
	authPrefix  = "AUTH:"
	authTimeout = 10 * time.Second
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = pongWait * 9 / 10
)

// Handler upgrades admin connections onto the activity feed. The token comes
// from ?token=, the Authorization header or the auth cookie; without one the
// first frame must be "AUTH:<token>".
func Handler(hub *Hub, jwt *middleware.JWTManager, allowOrigin func(string) bool) echo.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || allowOrigin == nil || allowOrigin(origin)
		},
	}

	return func(c echo.Context) error {
		token := c.QueryParam("token")
		if token == "" {
			token = middleware.TokenFromRequest(c.Request())
		}

		var user *middleware.AuthUser
		if token != "" {
			user = jwt.UserFromToken(token)
			if user == nil {
				return apperrors.Unauthenticated("Invalid or expired token")
			}
			if !user.IsAdmin() {
				return apperrors.Forbidden("Activity feed is available to admins only")
			}
		}

		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			// the upgrader already wrote the response
			hub.log.Warn("WebSocket upgrade failed", "error", err.Error())
			return nil
		}

		if user == nil {
			user = awaitAuth(conn, jwt)
			if user == nil {
				conn.Close()
				return nil
			}
		}

		client := &Client{AdminID: user.ID, conn: conn, send: make(chan Notification, sendBuffer)}
		client.send <- Notification{
			Type:      TypeConnected,
			Message:   "WebSocket connection established",
			UserID:    user.ID.Hex(),
			Timestamp: time.Now().UTC(),
		}
		if !hub.add(client) {
			conn.Close()
			return nil
		}

		go client.writePump()
		go client.readPump(hub)
		return nil
	}
}

// awaitAuth asks the peer for a token and validates the first frame.
func awaitAuth(conn *websocket.Conn, jwt *middleware.JWTManager) *middleware.AuthUser {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	conn.WriteJSON(Notification{
		Type:         TypeConnected,
		Message:      "WebSocket connection established. Please authenticate to receive notifications.",
		RequiresAuth: true,
		Timestamp:    time.Now().UTC(),
	})

	conn.SetReadDeadline(time.Now().Add(authTimeout))
	messageType, message, err := conn.ReadMessage()
	if err != nil || messageType != websocket.TextMessage {
		return nil
	}

	reply := Notification{Type: TypeAuthResponse, Timestamp: time.Now().UTC()}
	msg := string(message)
	var user *middleware.AuthUser
	if strings.HasPrefix(msg, authPrefix) {
		user = jwt.UserFromToken(strings.TrimSpace(strings.TrimPrefix(msg, authPrefix)))
	}

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	switch {
	case user == nil:
		reply.Message = "Invalid or expired token"
		reply.RequiresAuth = true
		conn.WriteJSON(reply)
		return nil
	case !user.IsAdmin():
		reply.Message = "Activity feed is available to admins only"
		conn.WriteJSON(reply)
		return nil
	}

	reply.Message = "Authenticated"
	reply.UserID = user.ID.Hex()
	conn.WriteJSON(reply)
	conn.SetReadDeadline(time.Time{})
	return user
}

// readPump drains inbound frames so control messages are handled, and
// unregisters the client when the peer goes away.
func (c *Client) readPump(hub *Hub) {
	defer hub.remove(c)

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case n, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(n); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
