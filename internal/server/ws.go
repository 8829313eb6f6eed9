package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// statusPingInterval bounds how long an idle connection goes without
// traffic before a ping keeps it alive.
const statusPingInterval = 30 * time.Second

func serveWS(hub *Hub, controller *GameController, w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &Client{out: make(chan []byte, 16)}
	hub.Attach(client)
	client.sendMessage(wsMessage{Type: "status", Payload: mustMarshal(controllerStatus(controller))})

	go writeLoop(conn, client.out)

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			hub.Detach(client)
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "request_status":
			client.sendMessage(wsMessage{Type: "status", Payload: mustMarshal(controllerStatus(controller))})
		}
	}
}

// writeLoop drains the client queue onto the socket, pinging whenever a
// full interval passes without traffic. It owns the connection and
// closes it when the queue is closed or a write fails.
func writeLoop(conn *websocket.Conn, out <-chan []byte) {
	defer conn.Close()
	ticker := time.NewTicker(statusPingInterval)
	defer ticker.Stop()
	ping := mustMarshal(wsMessage{Type: "ping"})
	idleSince := time.Now()

	for {
		select {
		case msg, ok := <-out:
			if !ok {
				return
			}
			if conn.WriteMessage(websocket.TextMessage, msg) != nil {
				return
			}
			idleSince = time.Now()
		case <-ticker.C:
			if time.Since(idleSince) < statusPingInterval {
				continue
			}
			if conn.WriteMessage(websocket.TextMessage, ping) != nil {
				return
			}
			idleSince = time.Now()
		}
	}
}
