package websocket

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"framepruner/internal/dto"
	"framepruner/internal/logger"
	"framepruner/internal/models"
	"framepruner/internal/prune"
)

// broadcastBuffer bounds how many events may wait for the hub loop.
const broadcastBuffer = 256

// Hub fans progress events out to connected websocket clients.
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	quit       chan struct{}
	stopOnce   sync.Once
	mutex      sync.RWMutex
	logger     *logger.Logger

	runMu sync.RWMutex
	runID string
}

// NewHub creates a Hub. Call Run to start delivering messages.
func NewHub(logger *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		quit:       make(chan struct{}),
		logger:     logger,
	}
}

// Run serves registrations and broadcasts until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("Client connected. Total: %d", count)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			count := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("Client disconnected. Total: %d", count)

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					h.logger.Error("Error sending message: %v", err)
					delete(h.clients, client)
					client.Close()
				}
			}
			h.mutex.Unlock()

		case <-h.quit:
			h.mutex.Lock()
			for client := range h.clients {
				client.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
				client.Close()
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			return
		}
	}
}

// Stop ends Run and closes all clients. It is safe to call more than once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
}

// Register adds a client connection.
func (h *Hub) Register(client *websocket.Conn) {
	select {
	case h.register <- client:
	case <-h.quit:
		client.Close()
	}
}

// Unregister removes and closes a client connection.
func (h *Hub) Unregister(client *websocket.Conn) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// Broadcast queues message for every client. It never blocks: when the
// queue is full the message is dropped.
func (h *Hub) Broadcast(message []byte) {
	select {
	case <-h.quit:
		return
	default:
	}

	select {
	case h.broadcast <- message:
	default:
		h.logger.Warning("Progress queue full, dropping message")
	}
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// SetRun tags subsequent frame events with run's ID and announces it.
func (h *Hub) SetRun(run *models.Run) {
	h.runMu.Lock()
	h.runID = run.ID
	h.runMu.Unlock()
	h.Publish(dto.RunEvent(dto.EventRunStarted, run))
}

// FinishRun announces the outcome of run.
func (h *Hub) FinishRun(run *models.Run) {
	h.Publish(dto.RunEvent(dto.EventRunFinished, run))
}

// Observe streams a scored frame to all clients.
func (h *Hub) Observe(result prune.FrameResult) {
	h.runMu.RLock()
	runID := h.runID
	h.runMu.RUnlock()
	h.Publish(dto.FrameEvent(runID, result))
}

// Publish encodes event as JSON and broadcasts it.
func (h *Hub) Publish(event dto.ProgressEvent) {
	message, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Error encoding progress event: %v", err)
		return
	}
	h.Broadcast(message)
}
