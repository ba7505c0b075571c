package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hackgods/clinic-booking/internal/events"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

const actionJoinAdmin = "joinAdmin"

type clientMessage struct {
	Action string `json:"action"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// websocketHandler streams bus messages to one client. The client may send
// {"action":"joinAdmin"} to also receive admin notifications.
func websocketHandler(bus *events.Bus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("websocket upgrade failed request_id=%s err=%v", GetRequestID(r.Context()), err)
			return
		}
		defer conn.Close()

		sub := bus.Subscribe()
		defer sub.Close()
		log.Printf("client connected subscriber=%s", sub.ID)

		done := make(chan struct{})
		go readPump(conn, sub, done)

		writePump(conn, sub, done)
		log.Printf("client disconnected subscriber=%s", sub.ID)
	}
}

func readPump(conn *websocket.Conn, sub *events.Subscription, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Action == actionJoinAdmin {
			sub.JoinAdmin()
			log.Printf("admin joined subscriber=%s", sub.ID)
		}
	}
}

func writePump(conn *websocket.Conn, sub *events.Subscription, done <-chan struct{}) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-sub.C():
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				// evicted or bus closed; the client reconnects and refetches
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "resubscribe"))
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
