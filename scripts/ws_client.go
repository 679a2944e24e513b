// Package main runs a demo WebSocket client for query events.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

type wsMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	base := fmt.Sprintf("http://localhost:%s", port)

	// Connect WS first so we do not miss the terminal event
	u := url.URL{Scheme: "ws", Host: "localhost:" + port, Path: "/ws/queries"}
	hdr := http.Header{}
	hdr.Set("X-Tenant-Id", "t_demo")
	if tok := os.Getenv("API_TOKEN"); tok != "" {
		hdr.Set("X-Api-Token", tok)
	}
	c, _, err := websocket.DefaultDialer.Dial(u.String(), hdr)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer func() { _ = c.Close() }()

	// connection_init
	if err := c.WriteJSON(wsMessage{Type: "connection_init"}); err != nil {
		log.Fatal(err)
	}

	// Issue a routing query
	body := []byte(`{"startNode":1,"endNode":2,"budget":{"initialEnergyKwh":5.0,"consumptionRateKwhPerKm":0.17,"minEnergyBufferKwh":0.5}}`)
	req, _ := http.NewRequest(http.MethodPost, base+"/v1/route", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-Id", "t_demo")
	if tok := os.Getenv("API_TOKEN"); tok != "" {
		req.Header.Set("X-Api-Token", tok)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	var routeResp struct {
		QueryID string `json:"queryId"`
		Reason  string `json:"reason"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&routeResp); err != nil {
		log.Fatal(err)
	}
	log.Printf("Query ID: %s (reason %s)", routeResp.QueryID, routeResp.Reason)

	// subscribe to the query's events
	payload := map[string]any{
		"variables": map[string]any{"queryId": routeResp.QueryID},
	}
	pl, _ := json.Marshal(payload)
	if err := c.WriteJSON(wsMessage{Type: "subscribe", ID: "1", Payload: pl}); err != nil {
		log.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var m wsMessage
			if err := c.ReadJSON(&m); err != nil {
				log.Printf("read: %v", err)
				return
			}
			log.Printf("WS <- %s: %s", m.Type, string(m.Payload))
		}
	}()

	// Wait briefly to receive a few messages
	select {
	case <-time.After(2 * time.Second):
	case <-done:
	}
}
