package realtime

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Conn is the minimal write surface the hub needs from a transport
// connection. *websocket.Conn satisfies it.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// EmitOptions addresses a message. To lists target rooms; IncludeAdmins fans
// out to every connected admin as a secondary audience. BroadcastOnZero must
// be set explicitly for an empty To to reach everyone; otherwise an empty
// recipient list is a logged no-op, so a bug that resolves to zero recipients
// cannot turn into a global broadcast.
type EmitOptions struct {
	To              []string
	IncludeAdmins   bool
	BroadcastOnZero bool
	// Except excludes rooms from broadcast fan-out.
	Except []string
}

// Envelope is the wire shape of every pushed event.
type Envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Emitter is what the dispatch services depend on. Delivery is best-effort:
// Emit never blocks the caller on socket writes and never returns an error.
type Emitter interface {
	Emit(event string, payload interface{}, opts EmitOptions)
}

type client struct {
	id      string
	room    string
	admin   bool
	conn    Conn
	writeMu sync.Mutex
}

func (c *client) send(env Envelope) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(env)
}

// Hub maintains room membership for connected principals. One room per
// principal ("user:<id>"); a principal may hold several connections (multiple
// devices) in the same room. No state survives a disconnect.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client            // connID -> client
	rooms   map[string]map[string]*client // roomID -> connID -> client
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*client),
		rooms:   make(map[string]map[string]*client),
		logger:  logger,
	}
}

// RoomForUser names the room a principal's connections join. Deterministic so
// emitters can address a user without the hub resolving identities.
func RoomForUser(userID string) string {
	return fmt.Sprintf("user:%s", userID)
}

// Register joins a verified connection to its principal's room and returns
// the connection id used to release it on disconnect.
func (h *Hub) Register(room string, admin bool, conn Conn) string {
	c := &client{
		id:    uuid.NewString(),
		room:  room,
		admin: admin,
		conn:  conn,
	}

	h.mu.Lock()
	h.clients[c.id] = c
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[string]*client)
	}
	h.rooms[room][c.id] = c
	h.mu.Unlock()

	h.logger.Debug("realtime connection joined", zap.String("room", room), zap.Bool("admin", admin))
	return c.id
}

// Unregister releases a connection's room membership.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[connID]
	if !ok {
		return
	}
	delete(h.clients, connID)
	if members, ok := h.rooms[c.room]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(h.rooms, c.room)
		}
	}
}

// RoomSize reports the number of live connections in a room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Emit pushes an event to the addressed rooms. The recipient set is resolved
// synchronously; socket writes happen in the background and failures are
// logged, never surfaced: persistence, not delivery, is the source of truth.
func (h *Hub) Emit(event string, payload interface{}, opts EmitOptions) {
	if len(opts.To) == 0 && !opts.BroadcastOnZero {
		h.logger.Info("realtime emit with no recipients dropped", zap.String("event", event))
		return
	}

	recipients := h.resolve(opts)
	if len(recipients) == 0 {
		h.logger.Debug("realtime emit found no live connections", zap.String("event", event))
		return
	}

	env := Envelope{Event: event, Data: payload}
	go func() {
		for _, c := range recipients {
			if err := c.send(env); err != nil {
				h.logger.Warn("realtime delivery failed",
					zap.String("event", event),
					zap.String("room", c.room),
					zap.Error(err))
			}
		}
	}()
}

func (h *Hub) resolve(opts EmitOptions) []*client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []*client
	add := func(c *client) {
		if _, dup := seen[c.id]; dup {
			return
		}
		seen[c.id] = struct{}{}
		out = append(out, c)
	}

	if len(opts.To) == 0 && opts.BroadcastOnZero {
		excluded := make(map[string]struct{}, len(opts.Except))
		for _, room := range opts.Except {
			excluded[room] = struct{}{}
		}
		for _, c := range h.clients {
			if _, skip := excluded[c.room]; !skip {
				add(c)
			}
		}
		return out
	}

	for _, room := range opts.To {
		for _, c := range h.rooms[room] {
			add(c)
		}
	}
	if opts.IncludeAdmins {
		for _, c := range h.clients {
			if c.admin {
				add(c)
			}
		}
	}
	return out
}
