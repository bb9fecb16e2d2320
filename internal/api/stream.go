package api

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// LeadEvent describes websocket payloads pushed to the admin lead feed.
type LeadEvent struct {
	Type      string       `json:"type"`
	Lead      *FitGuideDTO `json:"lead,omitempty"`
	Total     int64        `json:"total,omitempty"`
	Message   string       `json:"message,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// wsClient wraps a websocket connection with write locking.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// LeadNotifier keeps track of connected admin dashboards and fans out new leads.
type LeadNotifier struct {
	mu       sync.Mutex
	clients  map[*wsClient]struct{}
	lastLead *LeadEvent
}

// NewLeadNotifier constructs a notifier instance.
func NewLeadNotifier() *LeadNotifier {
	return &LeadNotifier{clients: make(map[*wsClient]struct{})}
}

// Register attaches a websocket connection and replays the most recent lead.
func (n *LeadNotifier) Register(conn *websocket.Conn) *wsClient {
	client := &wsClient{conn: conn}
	n.mu.Lock()
	n.clients[client] = struct{}{}
	last := n.lastLead
	n.mu.Unlock()

	if last != nil {
		_ = client.writeJSON(*last)
	}
	return client
}

// Unregister removes the websocket client and closes the socket.
func (n *LeadNotifier) Unregister(client *wsClient) {
	if client == nil {
		return
	}
	n.mu.Lock()
	delete(n.clients, client)
	n.mu.Unlock()
	_ = client.conn.Close()
}

// Broadcast sends the event to every registered client, dropping the ones that fail.
func (n *LeadNotifier) Broadcast(event LeadEvent) {
	event.Timestamp = time.Now().UTC()

	n.mu.Lock()
	if event.Type == "lead" {
		snapshot := event
		n.lastLead = &snapshot
	}
	for client := range n.clients {
		if err := client.writeJSON(event); err != nil {
			delete(n.clients, client)
			_ = client.conn.Close()
		}
	}
	n.mu.Unlock()
}

// Clients reports how many dashboards are connected.
func (n *LeadNotifier) Clients() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.clients)
}

func (n *LeadNotifier) LastLead() *LeadEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.lastLead == nil {
		return nil
	}
	copy := *n.lastLead
	return &copy
}

func (c *wsClient) writeJSON(payload interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteJSON(payload)
}
