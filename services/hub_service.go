package services

import (
	"encoding/json"
	"log"

	"inkwell/models"
)

// HubService fans post events out to connected admin clients.
type HubService struct {
	hub *models.Hub
}

func NewHubService() *HubService {
	hub := models.NewHub()
	service := &HubService{hub: hub}

	go service.Run()

	return service
}

func (h *HubService) GetHub() *models.Hub {
	return h.hub
}

func (h *HubService) Run() {
	for {
		select {
		case client := <-h.hub.Register:
			h.hub.Clients[client] = true
			log.Printf("Client %s registered for user: %s", client.ID, client.UserID)

		case client := <-h.hub.Unregister:
			h.unregisterClient(client)

		case message := <-h.hub.Broadcast:
			h.broadcastToAll(message)

		case delivery := <-h.hub.Direct:
			h.deliver(delivery.Client, delivery.Message)
		}
	}
}

func (h *HubService) unregisterClient(client *models.Client) {
	if _, ok := h.hub.Clients[client]; ok {
		delete(h.hub.Clients, client)
		close(client.Send)
		log.Printf("Client %s unregistered for user: %s", client.ID, client.UserID)
	}
}

func (h *HubService) broadcastToAll(message []byte) {
	for client := range h.hub.Clients {
		h.deliver(client, message)
	}
}

// deliver queues message for a registered client and drops the client when
// its queue is full. Frames for clients already dropped are discarded.
func (h *HubService) deliver(client *models.Client, message []byte) {
	if _, ok := h.hub.Clients[client]; !ok {
		return
	}
	select {
	case client.Send <- message:
	default:
		delete(h.hub.Clients, client)
		close(client.Send)
		log.Printf("Send queue full for client %s, dropping it", client.ID)
	}
}

// Broadcast queues an event for every connected client. It drops the event
// rather than block a request when the queue is full.
func (h *HubService) Broadcast(messageType string, data interface{}) {
	messageBytes, err := json.Marshal(models.WSMessage{Type: messageType, Data: data})
	if err != nil {
		log.Printf("Error marshaling WebSocket message: %v", err)
		return
	}

	select {
	case h.hub.Broadcast <- messageBytes:
	default:
		log.Printf("Dropping %s event: broadcast queue full", messageType)
	}
}

// SendTo queues an event for one client through the hub's run loop.
func (h *HubService) SendTo(client *models.Client, messageType string, data interface{}) {
	messageBytes, err := json.Marshal(models.WSMessage{Type: messageType, Data: data})
	if err != nil {
		log.Printf("Error marshaling '%s' message for client %s: %v", messageType, client.ID, err)
		return
	}
	h.hub.Direct <- models.Delivery{Client: client, Message: messageBytes}
}
