package handlers

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/audioscribe/backend/internal/job"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS is enforced at the router level; the upgrade itself accepts
	// any origin the router let through.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ProgressEvent is one message on the job progress stream.
type ProgressEvent struct {
	JobID    string        `json:"job_id"`
	Status   job.JobStatus `json:"status"`
	Progress float64       `json:"progress"`
}

// WSHandler streams job progress events to connected clients.
type WSHandler struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan ProgressEvent
}

func NewWSHandler() *WSHandler {
	return &WSHandler{clients: make(map[*websocket.Conn]chan ProgressEvent)}
}

// Listener returns the job queue listener that feeds the stream.
func (h *WSHandler) Listener() job.ProgressListener {
	return func(jobID string, status job.JobStatus, progress float64) {
		event := ProgressEvent{JobID: jobID, Status: status, Progress: progress}
		h.mu.Lock()
		for _, ch := range h.clients {
			select {
			case ch <- event:
			default:
				// Slow client, drop the event. Progress is re-sent on the
				// next segment anyway.
			}
		}
		h.mu.Unlock()
	}
}

// Serve upgrades the connection and streams events until the client
// disconnects.
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}

	ch := make(chan ProgressEvent, 32)
	h.mu.Lock()
	h.clients[conn] = ch
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	// Reader goroutine: only there to detect disconnects.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case event := <-ch:
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	}
}
