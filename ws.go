package main

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/CodedInternet/goservod/comms"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func EchoHandler(w http.ResponseWriter, r *http.Request) {
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Print("upgrade:", err)
		return
	}
	defer c.Close()
	for {
		mt, message, err := c.ReadMessage()
		if err != nil {
			log.Println("read:", err)
			break
		}
		log.Printf("recv: %s", message)
		err = c.WriteMessage(mt, message)
		if err != nil {
			log.Println("write:", err)
			break
		}
	}
}

// StateSocketHandler subscribes the client to the conductor broadcast and
// feeds any commands it sends back through the attribute table. All writes
// to the connection go through the conductor so broadcast frames and
// command results never interleave.
func StateSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Print("upgrade:", err)
		return
	}

	ENV.Conductor.AddClient(conn)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			log.Println("read:", err)
			break
		}

		var cmd comms.Cmd
		if err = json.Unmarshal(msg, &cmd); err != nil {
			log.Printf("ws: bad command %q: %v", msg, err)
			continue
		}

		if err = ENV.Conductor.ProcessCommand(cmd); err != nil {
			log.Printf("ws: command %s %s=%s failed: %v", cmd.Cmd, cmd.Name, cmd.Value, err)
		}
	}
}
