// Command wsprobe drives the progress stream endpoint by hand: it connects,
// requests a course snapshot every few seconds and prints whatever comes back.
package main

import (
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

type message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

func main() {
	url := flag.String("url", "ws://localhost:8080/api/v1/ws/progress/COURSE_ID/USER_ID", "progress stream url")
	token := flag.String("token", "", "bearer token")
	interval := flag.Duration("interval", 5*time.Second, "snapshot interval")
	flag.Parse()

	header := http.Header{}
	if *token != "" {
		header.Add("Authorization", "Bearer "+*token)
	}

	conn, _, err := websocket.DefaultDialer.Dial(*url, header)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer conn.Close()

	go func() {
		for {
			_, p, err := conn.ReadMessage()
			if err != nil {
				log.Println("read error:", err)
				return
			}
			log.Printf("Received:\n%s\n", p)
		}
	}()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for range ticker.C {
		data, err := json.Marshal(message{Type: "course_progress"})
		if err != nil {
			log.Println("json marshal error:", err)
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Println("write error:", err)
			return
		}
	}
}
