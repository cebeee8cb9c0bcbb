// Package hub fans push notifications out to every subscriber of a board.
// Clients subscribe over a websocket per board; mutations broadcast a typed
// frame to everyone except the originating client, which already got the
// same state in its confirmation response.
package hub

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 512
)

// Message is the push frame. Type is "<entity><Action>" (cardCreate,
// listDelete, ...); Item is the full row after the mutation, or at least its
// id for deletes.
type Message struct {
	Type string `json:"type"`
	Item any    `json:"item"`
}

// Client is one subscribed websocket connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	// BoardID scopes which broadcasts this connection receives; ClientID
	// identifies the sync engine instance so its own mutations are not
	// echoed back.
	BoardID  string
	ClientID string
}

func NewClient(h *Hub, conn *websocket.Conn, boardID, clientID string) *Client {
	return &Client{
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, 64),
		BoardID:  boardID,
		ClientID: clientID,
	}
}

// ReadPump drains the connection until it drops. Subscribers never publish
// mutations over the socket; everything inbound besides control frames is
// discarded.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
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
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("hub: read error: %v", err)
			}
			return
		}
	}
}

// WritePump pumps broadcasts from the hub to the connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
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

type envelope struct {
	boardID string
	exclude string
	payload []byte
}

// Hub maintains the set of subscribed clients per board.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan envelope
}

func New() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan envelope, 64),
	}
}

func (h *Hub) Register(c *Client)   { h.register <- c }
func (h *Hub) Unregister(c *Client) { h.unregister <- c }

// Broadcast sends msg to every subscriber of the board except the
// originating client.
func (h *Hub) Broadcast(boardID string, msg Message, excludeClientID string) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("hub: marshal %s: %v", msg.Type, err)
		return
	}
	h.broadcast <- envelope{boardID: boardID, exclude: excludeClientID, payload: payload}
}

// Run executes the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
		case env := <-h.broadcast:
			for c := range h.clients {
				if c.BoardID != env.boardID {
					continue
				}
				if env.exclude != "" && c.ClientID == env.exclude {
					continue
				}
				select {
				case c.send <- env.payload:
				default:
					// Send buffer full, assume the client is gone.
					close(c.send)
					delete(h.clients, c)
				}
			}
		}
	}
}
