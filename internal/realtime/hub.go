// Package realtime fans status events out to websocket clients grouped by
// organization.
package realtime

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

var (
	orgClients   = make(map[uint]map[*websocket.Conn]bool)
	orgClientsMu sync.RWMutex
)

// Register adds a connection to the organization's room.
func Register(orgID uint, conn *websocket.Conn) {
	orgClientsMu.Lock()
	if orgClients[orgID] == nil {
		orgClients[orgID] = make(map[*websocket.Conn]bool)
	}
	orgClients[orgID][conn] = true
	orgClientsMu.Unlock()
}

// Unregister removes a connection, dropping the room once it empties.
func Unregister(orgID uint, conn *websocket.Conn) {
	orgClientsMu.Lock()

	if clients, exists := orgClients[orgID]; exists {
		delete(clients, conn)

		if len(clients) == 0 {
			delete(orgClients, orgID)
		}
	}

	orgClientsMu.Unlock()
}

// Broadcast sends an event to every client in the organization's room.
// Failed connections are dropped.
func Broadcast(orgID uint, event string, payload interface{}) {
	orgClientsMu.RLock()
	clients, exists := orgClients[orgID]
	if !exists || len(clients) == 0 {
		orgClientsMu.RUnlock()
		return
	}

	// Copy the clients so the lock is not held during sends
	clientsCopy := make([]*websocket.Conn, 0, len(clients))
	for conn := range clients {
		clientsCopy = append(clientsCopy, conn)
	}
	orgClientsMu.RUnlock()

	message := map[string]interface{}{
		"event":   event,
		"payload": payload,
	}

	for _, conn := range clientsCopy {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			log.Printf("Failed to set write deadline for broadcast: %v", err)
			continue
		}

		if err := conn.WriteJSON(message); err != nil {
			log.Printf("Failed to broadcast %s to client: %v", event, err)
			Unregister(orgID, conn)
			conn.Close()
		}
	}
}
