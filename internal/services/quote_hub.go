package services

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"

	"portfolio-tracker/internal/logger"
	"portfolio-tracker/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// QuoteUpdate is the message pushed to websocket clients.
type QuoteUpdate struct {
	Symbol string       `json:"symbol"`
	Quote  models.Quote `json:"quote"`
	At     time.Time    `json:"at"`
}

// QuoteHub fans live quotes out to connected websocket clients.
type QuoteHub struct {
	clients    map[*QuoteClient]bool
	broadcast  chan QuoteUpdate
	register   chan *QuoteClient
	unregister chan *QuoteClient
	log        *logger.Logger
}

type QuoteClient struct {
	hub  *QuoteHub
	conn *websocket.Conn
	send chan []byte
}

func NewQuoteHub(log *logger.Logger) *QuoteHub {
	return &QuoteHub{
		clients:    make(map[*QuoteClient]bool),
		broadcast:  make(chan QuoteUpdate),
		register:   make(chan *QuoteClient),
		unregister: make(chan *QuoteClient),
		log:        log,
	}
}

func (h *QuoteHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.log.Info("stream client connected", "clients", len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.log.Info("stream client disconnected", "clients", len(h.clients))
			}

		case update := <-h.broadcast:
			message, err := json.Marshal(update)
			if err != nil {
				h.log.Error("marshal quote update", "error", err)
				continue
			}
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

func (h *QuoteHub) Broadcast(update QuoteUpdate) {
	h.broadcast <- update
}

func (h *QuoteHub) RegisterClient(conn *websocket.Conn) *QuoteClient {
	client := &QuoteClient{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
	}
	h.register <- client
	return client
}

// Poll fetches quotes for the configured symbols on a fixed interval and
// broadcasts them. A rate-limited or failed fetch skips that tick for the
// symbol; the stream carries whatever the gateway admits.
func (h *QuoteHub) Poll(quotes QuoteProvider, symbols []string, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		for _, symbol := range symbols {
			quote, err := quotes.GetQuote(symbol)
			if err != nil {
				if !errors.Is(err, ErrRateLimited) {
					h.log.Warn("stream quote fetch failed", "symbol", symbol, "error", err)
				}
				continue
			}
			h.Broadcast(QuoteUpdate{Symbol: symbol, Quote: *quote, At: time.Now()})
		}
	}
}

func (c *QuoteClient) WritePump() {
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

func (c *QuoteClient) ReadPump() {
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
