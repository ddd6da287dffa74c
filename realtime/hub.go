// Package realtime is the WebSocket fan-out used to push order lifecycle
// events to customers, restaurants and delivery partners. Delivery is
// best-effort and at-most-once: a disconnected subscriber misses the event.
package realtime

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/seblak-delivery/api/utils"
)

// Event names emitted into rooms.
const (
	EventNewOrder           = "new_order"
	EventOrderStatusUpdated = "order_status_updated"
	EventOrderCancelled     = "order_cancelled"
	EventOrderAssigned      = "order_assigned"
	EventPaymentCompleted   = "payment_completed"
	EventOrderConfirmed     = "order_confirmed"
)

// Room name helpers, keyed by entity id.
func OrderRoom(orderID uint) string      { return fmt.Sprintf("order_%d", orderID) }
func RestaurantRoom(id uint) string      { return fmt.Sprintf("restaurant_%d", id) }
func DeliveryRoom(partnerID uint) string { return fmt.Sprintf("delivery_%d", partnerID) }

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Publisher is what controllers depend on; tests substitute a fake.
type Publisher interface {
	Emit(room, event string, data interface{})
}

// Hub tracks live connections per room. It is injected into the controllers
// rather than held as package state.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[*websocket.Conn]bool
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*websocket.Conn]bool),
	}
}

func (h *Hub) Join(room string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*websocket.Conn]bool)
	}
	h.rooms[room][conn] = true
}

func (h *Hub) Leave(room string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms[room], conn)
	if len(h.rooms[room]) == 0 {
		delete(h.rooms, room)
	}
	conn.Close()
}

// Emit pushes an event to every subscriber of the room. Write errors drop
// the message for that subscriber only; nothing is retried or queued.
func (h *Hub) Emit(room, event string, data interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()

	payload, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		if utils.ErrorLogger != nil {
			utils.ErrorLogger.Printf("realtime: marshal %s: %v", event, err)
		}
		return
	}

	for conn := range h.rooms[room] {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			if utils.ErrorLogger != nil {
				utils.ErrorLogger.Printf("realtime: write %s to %s: %v", event, room, err)
			}
		}
	}
}
