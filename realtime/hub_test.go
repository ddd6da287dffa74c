package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"

	"github.com/seblak-delivery/api/utils"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func dialRoom(t *testing.T, hub *Hub, room string) *websocket.Conn {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		hub.Join(room, conn)
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	assert.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestEmitReachesAllRoomSubscribers(t *testing.T) {
	utils.InitLogger()
	hub := NewHub()

	first := dialRoom(t, hub, OrderRoom(42))
	second := dialRoom(t, hub, OrderRoom(42))
	outsider := dialRoom(t, hub, OrderRoom(99))

	hub.Emit(OrderRoom(42), EventOrderStatusUpdated, map[string]interface{}{
		"order_id": 42,
		"status":   "confirmed",
	})

	for _, conn := range []*websocket.Conn{first, second} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, payload, err := conn.ReadMessage()
		assert.NoError(t, err)

		var msg Message
		assert.NoError(t, json.Unmarshal(payload, &msg))
		assert.Equal(t, EventOrderStatusUpdated, msg.Event)
		data := msg.Data.(map[string]interface{})
		assert.Equal(t, "confirmed", data["status"])
	}

	// The other room stays silent.
	outsider.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err := outsider.ReadMessage()
	assert.Error(t, err)
}

func TestLeaveRemovesSubscriber(t *testing.T) {
	utils.InitLogger()
	hub := NewHub()

	room := DeliveryRoom(7)
	client := dialRoom(t, hub, room)

	hub.mu.Lock()
	assert.Len(t, hub.rooms[room], 1)
	var serverConn *websocket.Conn
	for c := range hub.rooms[room] {
		serverConn = c
	}
	hub.mu.Unlock()

	hub.Leave(room, serverConn)

	hub.mu.Lock()
	_, exists := hub.rooms[room]
	hub.mu.Unlock()
	assert.False(t, exists)

	// The server side closed the connection; the client read fails.
	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := client.ReadMessage()
	assert.Error(t, err)
}

func TestRoomNames(t *testing.T) {
	assert.Equal(t, "order_5", OrderRoom(5))
	assert.Equal(t, "restaurant_3", RestaurantRoom(3))
	assert.Equal(t, "delivery_8", DeliveryRoom(8))
}
