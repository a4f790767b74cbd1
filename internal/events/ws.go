package events

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Activity is the session a socket belongs to.
type Activity interface {
	ID() string
	Touch()
}

// Inbound is a message from a page. Only "activity" is understood.
type Inbound struct {
	Type string `json:"type"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// WSHandler upgrades the request and keeps the socket registered under the
// caller's session until the page goes away.
func WSHandler(hub *Hub, current func(*gin.Context) Activity) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := current(c)
		if sess == nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		_ = ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"welcome"}`))
		hub.Add(sess.ID(), ws)

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				break
			}
			var msg Inbound
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}
			if msg.Type == "activity" {
				sess.Touch()
			}
		}

		hub.Remove(sess.ID(), ws)
		log.Printf("[events] socket closed")
	}
}
