// Package live pushes tournament updates to websocket subscribers.
// Every tournament is a room; score entry and bracket progression
// publish typed events into the room.
package live

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pitchside/tournament-engine/models"
	"github.com/pitchside/tournament-engine/services"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Event is the wire format for all pushed updates.
type Event struct {
	Type         string      `json:"type"`
	TournamentID int         `json:"tournament_id"`
	Payload      interface{} `json:"payload,omitempty"`
}

type Client struct {
	hub          *Hub
	conn         *websocket.Conn
	send         chan []byte
	tournamentID int

	mu     sync.Mutex
	closed bool
}

type Hub struct {
	register   chan *Client
	unregister chan *Client

	mu     sync.RWMutex
	rooms  map[int]map[*Client]bool
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[int]map[*Client]bool),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.rooms[client.tournamentID]; !ok {
				h.rooms[client.tournamentID] = make(map[*Client]bool)
			}
			h.rooms[client.tournamentID][client] = true
			h.logger.Debug("live client joined",
				slog.Int("tournament_id", client.tournamentID),
				slog.Int("room_size", len(h.rooms[client.tournamentID])))
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[client.tournamentID]; ok {
				if room[client] {
					client.mu.Lock()
					if !client.closed {
						close(client.send)
						client.closed = true
					}
					client.mu.Unlock()
					delete(room, client)
					if len(room) == 0 {
						delete(h.rooms, client.tournamentID)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish sends an event to every subscriber of its tournament. Slow
// clients are skipped rather than blocking the caller.
func (h *Hub) Publish(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal live event",
			slog.String("type", event.Type), slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[event.TournamentID] {
		client.mu.Lock()
		if client.closed {
			client.mu.Unlock()
			continue
		}
		select {
		case client.send <- payload:
		default:
		}
		client.mu.Unlock()
	}
}

// NotifyMatchResult implements services.ResultNotifier.
func (h *Hub) NotifyMatchResult(match *models.Match) {
	h.Publish(Event{
		Type:         "MATCH_RESULT",
		TournamentID: match.TournamentID,
		Payload:      match,
	})
}

// NotifyProgression implements services.ProgressionNotifier.
func (h *Hub) NotifyProgression(event services.ProgressionEvent) {
	h.Publish(Event{
		Type:         event.Type,
		TournamentID: event.TournamentID,
		Payload:      map[string]string{"round": event.RoundLabel},
	})
}

// Join registers a websocket connection as a subscriber of one
// tournament and starts its read and write pumps.
func (h *Hub) Join(conn *websocket.Conn, tournamentID int) {
	client := &Client{
		hub:          h,
		conn:         conn,
		send:         make(chan []byte, 256),
		tournamentID: tournamentID,
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump discards inbound messages; the stream is one-way. Its job is
// keeping the read deadline fresh via pongs and detecting disconnects.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
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
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
