package main

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// diagStats is the per-broadcast snapshot sent to diagnostics clients.
type diagStats struct {
	Frame      uint64  `json:"frame"`
	TPS        float64 `json:"tps"`
	StepMillis float64 `json:"stepMillis"`
	InkMass    float64 `json:"inkMass"`
	Divergence float64 `json:"divergence"`
	BrushMode  string  `json:"brushMode"`
	Viscosity  float64 `json:"viscosity"`
}

// diagServer broadcasts simulation statistics to WebSocket clients. It is
// read-only observability: clients cannot mutate simulation state.
type diagServer struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]struct{}
	upgrader websocket.Upgrader

	lastLogErr time.Time
}

// startDiagServer serves the /ws endpoint on addr in a background goroutine.
func startDiagServer(addr string) *diagServer {
	s := &diagServer{
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	go func() {
		log.Printf("Diagnostics server listening on ws://%s/ws", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("Diagnostics server stopped: %v", err)
		}
	}()
	return s
}

func (s *diagServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Diagnostics upgrade failed: %v", err)
		return
	}
	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()
}

// broadcast sends stats to every connected client, dropping clients whose
// writes fail.
func (s *diagServer) broadcast(stats diagStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		if err := conn.WriteJSON(stats); err != nil {
			conn.Close()
			delete(s.clients, conn)
			if time.Since(s.lastLogErr) > time.Second {
				log.Printf("Dropping diagnostics client: %v", err)
				s.lastLogErr = time.Now()
			}
		}
	}
}
