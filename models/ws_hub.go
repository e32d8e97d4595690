package models

import (
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Hub holds the admin clients subscribed to post events. Only the hub's run
// loop touches Clients, and it is the only writer of a client's Send queue.
type Hub struct {
	Clients    map[*Client]bool
	Broadcast  chan []byte
	Direct     chan Delivery
	Register   chan *Client
	Unregister chan *Client
}

// Client is one open events connection. Send is closed by the hub when the
// client is dropped, which tells the write pump to hang up.
type Client struct {
	ID     string
	Hub    *Hub
	Conn   *websocket.Conn
	Send   chan []byte
	UserID string
}

// Delivery is a frame meant for a single client.
type Delivery struct {
	Client  *Client
	Message []byte
}

// WSMessage is the JSON envelope of every frame on the feed.
type WSMessage struct {
	Type     string      `json:"type"`
	Data     interface{} `json:"data"`
	ClientID string      `json:"client_id,omitempty"`
}

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Broadcast:  make(chan []byte, 64),
		Direct:     make(chan Delivery),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		ID:     uuid.New().String(),
		Hub:    hub,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		UserID: userID,
	}
}
